// Package doctor diagnoses why sysdeck can't read or act on its host.
//
// Each Check inspects one thing (the config file, the settings store, SSH
// credentials, the gateway, Docker) and reports a CheckResult. Checks that
// can repair what they find also implement Fixer.
package doctor

import (
	"context"
	"fmt"
	"sync"

	"github.com/rileyhilliard/sysdeck/internal/util"
)

// CheckStatus represents the result status of a check.
type CheckStatus int

const (
	StatusPass CheckStatus = iota
	StatusWarn
	StatusFail
)

// Categories, in report order.
const (
	CategoryConfig  = "CONFIG"
	CategoryState   = "STATE"
	CategorySSH     = "SSH"
	CategoryGateway = "GATEWAY"
	CategoryDocker  = "DOCKER"
)

var categoryOrder = []string{CategoryConfig, CategoryState, CategorySSH, CategoryGateway, CategoryDocker}

// String returns a human-readable status string.
func (s CheckStatus) String() string {
	switch s {
	case StatusPass:
		return "pass"
	case StatusWarn:
		return "warn"
	case StatusFail:
		return "fail"
	default:
		return "unknown"
	}
}

// MarshalText encodes the status by name so JSON reports read "pass"
// rather than 0.
func (s CheckStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// CheckResult contains the outcome of running a check.
type CheckResult struct {
	Name       string      `json:"name"`
	Category   string      `json:"category"`
	Status     CheckStatus `json:"status"`
	Message    string      `json:"message"`
	Suggestion string      `json:"suggestion,omitempty"`
	Fixable    bool        `json:"fixable,omitempty"` // Whether --fix can address this
}

// Check defines the interface for diagnostic checks.
type Check interface {
	// Name returns the check's identifier.
	Name() string

	// Category returns one of the Category constants.
	Category() string

	// Run executes the check. Checks that talk to the gateway honor ctx.
	Run(ctx context.Context) CheckResult
}

// Fixer is implemented by checks that can repair what they report.
type Fixer interface {
	Fix() error
}

// Section is one category of results in report order.
type Section struct {
	Category string        `json:"category"`
	Results  []CheckResult `json:"results"`
}

// RunAll executes all checks in order and returns the results.
func RunAll(ctx context.Context, checks []Check) []CheckResult {
	results := make([]CheckResult, len(checks))
	for i, check := range checks {
		results[i] = run(ctx, check)
	}
	return results
}

// RunAllParallel executes all checks concurrently. Results keep the order
// of checks.
func RunAllParallel(ctx context.Context, checks []Check) []CheckResult {
	results := make([]CheckResult, len(checks))
	var wg sync.WaitGroup

	for i, check := range checks {
		wg.Add(1)
		go func(idx int, c Check) {
			defer wg.Done()
			results[idx] = run(ctx, c)
		}(i, check)
	}

	wg.Wait()
	return results
}

func run(ctx context.Context, c Check) CheckResult {
	r := c.Run(ctx)
	if r.Name == "" {
		r.Name = c.Name()
	}
	if r.Category == "" {
		r.Category = c.Category()
	}
	return r
}

// FixAll runs Fix on every fixable check whose result has an issue, then
// reruns it. It returns the updated results and the fixes that failed.
func FixAll(ctx context.Context, checks []Check, results []CheckResult) ([]CheckResult, []error) {
	out := append([]CheckResult(nil), results...)
	var errs []error
	for i, c := range checks {
		if i >= len(out) || !out[i].Fixable || out[i].Status == StatusPass {
			continue
		}
		f, ok := c.(Fixer)
		if !ok {
			continue
		}
		if err := f.Fix(); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", c.Name(), err))
			continue
		}
		out[i] = run(ctx, c)
	}
	return out, errs
}

// Group splits results into sections in report order. Unknown categories
// follow the known ones in first-seen order.
func Group(results []CheckResult) []Section {
	byCat := make(map[string][]CheckResult)
	var extra []string
	for _, r := range results {
		if _, seen := byCat[r.Category]; !seen && !isKnownCategory(r.Category) {
			extra = append(extra, r.Category)
		}
		byCat[r.Category] = append(byCat[r.Category], r)
	}

	var sections []Section
	for _, cat := range append(append([]string(nil), categoryOrder...), extra...) {
		if rs := byCat[cat]; len(rs) > 0 {
			sections = append(sections, Section{Category: cat, Results: rs})
		}
	}
	return sections
}

func isKnownCategory(cat string) bool {
	for _, c := range categoryOrder {
		if c == cat {
			return true
		}
	}
	return false
}

// CountByStatus counts results by status.
func CountByStatus(results []CheckResult) map[CheckStatus]int {
	counts := make(map[CheckStatus]int)
	for _, r := range results {
		counts[r.Status]++
	}
	return counts
}

// HasFailures returns true if any result has a fail status.
func HasFailures(results []CheckResult) bool {
	for _, r := range results {
		if r.Status == StatusFail {
			return true
		}
	}
	return false
}

// HasIssues returns true if any result has a fail or warn status.
func HasIssues(results []CheckResult) bool {
	for _, r := range results {
		if r.Status == StatusFail || r.Status == StatusWarn {
			return true
		}
	}
	return false
}

// FixableCount returns the number of issues that can be fixed automatically.
func FixableCount(results []CheckResult) int {
	count := 0
	for _, r := range results {
		if r.Fixable && r.Status != StatusPass {
			count++
		}
	}
	return count
}

// Summary returns a summary string of the check results.
func Summary(results []CheckResult) string {
	counts := CountByStatus(results)
	total := counts[StatusWarn] + counts[StatusFail]
	if total == 0 {
		return "Everything looks good"
	}
	return fmt.Sprintf("%d %s found", total, util.Pluralize(total, "issue", "issues"))
}

func pass(msg string) CheckResult {
	return CheckResult{Status: StatusPass, Message: msg}
}

func warn(msg, suggestion string) CheckResult {
	return CheckResult{Status: StatusWarn, Message: msg, Suggestion: suggestion}
}

func fail(msg, suggestion string) CheckResult {
	return CheckResult{Status: StatusFail, Message: msg, Suggestion: suggestion}
}
