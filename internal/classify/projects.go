package classify

import (
	"strings"

	"github.com/rileyhilliard/sysdeck/internal/model"
)

// DetectProject guesses which development project owns a port from the
// owning process. Signatures are tried first, then the name-only
// fallbacks. It returns nil when nothing matches.
func (e *Engine) DetectProject(proc model.PortProcess, port uint16) *model.ProjectInfo {
	name := strings.ToLower(proc.Name)
	args := lowerAll(proc.Cmd)

	for _, sig := range e.rules.Projects.Signatures {
		if !containsAny(name, sig.Processes) || !argsContain(args, sig.Patterns) {
			continue
		}
		if len(sig.Ports) > 0 && !inRanges(port, sig.Ports) {
			continue
		}
		return projectFrom(sig, proc.Cmd)
	}

	base := strings.TrimSuffix(name, ".exe")
	for _, fb := range e.rules.Projects.Fallbacks {
		if !equalsAny(base, fb.Processes) {
			continue
		}
		if len(fb.Patterns) > 0 && !argsContain(args, fb.Patterns) {
			continue
		}
		return projectFrom(fb, proc.Cmd)
	}
	return nil
}

func projectFrom(sig ProjectSignature, cmd []string) *model.ProjectInfo {
	info := &model.ProjectInfo{
		Name:        sig.Name,
		ProjectType: sig.Type,
		Description: sig.Description,
	}
	if !sig.NoPath {
		info.Path = ProjectPath(cmd)
	}
	return info
}

// ProjectPath returns the parent directory of the first argument that looks
// like a path, or "" if none does. Both separators are accepted because the
// backend may be reporting for another OS.
func ProjectPath(cmd []string) string {
	for _, arg := range cmd {
		i := strings.LastIndexAny(arg, `/\`)
		if i < 0 {
			continue
		}
		if i == 0 {
			return arg[:1]
		}
		return arg[:i]
	}
	return ""
}

func inRanges(port uint16, ranges [][]uint16) bool {
	for _, r := range ranges {
		switch len(r) {
		case 1:
			if port == r[0] {
				return true
			}
		case 2:
			if port >= r[0] && port <= r[1] {
				return true
			}
		}
	}
	return false
}

func containsAny(s string, toks []string) bool {
	for _, t := range toks {
		if strings.Contains(s, strings.ToLower(t)) {
			return true
		}
	}
	return false
}

func equalsAny(s string, toks []string) bool {
	for _, t := range toks {
		if s == strings.ToLower(t) {
			return true
		}
	}
	return false
}

func argsContain(args, patterns []string) bool {
	for _, p := range patterns {
		if anyContains(args, strings.ToLower(p)) {
			return true
		}
	}
	return false
}

func lowerAll(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.ToLower(s)
	}
	return out
}
