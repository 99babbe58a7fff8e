package classify

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"github.com/rileyhilliard/sysdeck/internal/errors"
	"github.com/rileyhilliard/sysdeck/internal/model"
	"gopkg.in/yaml.v3"
)

//go:embed rules.yaml
var defaultRules []byte

// Rules is the classification table. Everything the engine decides by
// name comes from here.
type Rules struct {
	Interfaces        InterfaceRules `yaml:"interfaces"`
	GPUs              GPURules       `yaml:"gpus"`
	Projects          ProjectRules   `yaml:"projects"`
	CriticalProcesses []string       `yaml:"critical_processes"`
}

// InterfaceRules drives display-name repair and presentation order.
type InterfaceRules struct {
	Mojibake       []string                        `yaml:"mojibake"`
	Rules          []InterfaceRule                 `yaml:"rules"`
	Fallback       string                          `yaml:"fallback"`
	FallbackLabels map[string]string               `yaml:"fallback_labels"`
	Ranks          map[model.InterfaceCategory]int `yaml:"ranks"`
}

// InterfaceRule maps name tokens to a category and label.
type InterfaceRule struct {
	Category model.InterfaceCategory `yaml:"category"`
	Label    string                  `yaml:"label"`
	Labels   map[string]string       `yaml:"labels"`
	Contains []string                `yaml:"contains"`
	Prefix   []string                `yaml:"prefix"`
	Exact    []string                `yaml:"exact"`
	All      []string                `yaml:"all"`
	Exclude  []string                `yaml:"exclude"`
}

// GPURules filters pseudo adapters and assigns vendors.
type GPURules struct {
	Skip    []string    `yaml:"skip"`
	Vendors []GPUVendor `yaml:"vendors"`
}

// GPUVendor maps name tokens to a vendor.
type GPUVendor struct {
	Vendor   model.GPUVendor `yaml:"vendor"`
	Contains []string        `yaml:"contains"`
}

// ProjectRules detects which development project owns a port.
type ProjectRules struct {
	Signatures []ProjectSignature `yaml:"signatures"`
	Fallbacks  []ProjectSignature `yaml:"fallbacks"`
}

// ProjectSignature is one project detection rule.
type ProjectSignature struct {
	Name        string     `yaml:"name"`
	Type        string     `yaml:"type"`
	Description string     `yaml:"description"`
	Processes   []string   `yaml:"processes"`
	Patterns    []string   `yaml:"patterns"`
	Ports       [][]uint16 `yaml:"ports"`
	NoPath      bool       `yaml:"no_path"`
}

// DefaultRules parses the embedded rule table.
func DefaultRules() *Rules {
	r, err := ParseRules(defaultRules)
	if err != nil {
		// The embedded table is part of the binary; failing to parse it is
		// a build defect.
		panic(fmt.Sprintf("embedded classification rules: %v", err))
	}
	return r
}

// ParseRules decodes a YAML rule table.
func ParseRules(data []byte) (*Rules, error) {
	var r Rules
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Classification rules aren't valid YAML",
			"Compare your rules file with 'sysdeck rules --default'.")
	}
	if len(r.Interfaces.Rules) == 0 {
		return nil, errors.New(errors.ErrConfig,
			"Classification rules define no interface rules",
			"Add at least one entry under interfaces.rules.")
	}
	if r.Interfaces.Fallback == "" {
		r.Interfaces.Fallback = "Interface %s"
	}
	return &r, nil
}

// LoadRules reads a rule table from path. An empty path returns the
// embedded defaults.
func LoadRules(path string) (*Rules, error) {
	if path == "" {
		return DefaultRules(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Couldn't read classification rules: "+path,
			"Check classify.rules in your config points at a readable file.")
	}
	return ParseRules(data)
}

// DefaultRulesYAML returns the embedded rule table, for `sysdeck rules`.
func DefaultRulesYAML() []byte {
	return append([]byte(nil), defaultRules...)
}

// matches reports whether the rule fires for any of the candidate names.
func (r InterfaceRule) matches(names ...string) bool {
	for _, n := range names {
		for _, ex := range r.Exclude {
			if strings.Contains(n, ex) {
				return false
			}
		}
	}

	if len(r.All) > 0 {
		for _, tok := range r.All {
			if !anyContains(names, tok) {
				return false
			}
		}
		return true
	}

	for _, tok := range r.Contains {
		if anyContains(names, tok) {
			return true
		}
	}
	for _, n := range names {
		for _, p := range r.Prefix {
			if strings.HasPrefix(n, p) {
				return true
			}
		}
		for _, e := range r.Exact {
			if n == e {
				return true
			}
		}
	}
	return false
}

func (r InterfaceRule) label(locale string) string {
	if l, ok := r.Labels[locale]; ok && l != "" {
		return l
	}
	return r.Label
}

func anyContains(names []string, tok string) bool {
	for _, n := range names {
		if strings.Contains(n, tok) {
			return true
		}
	}
	return false
}
