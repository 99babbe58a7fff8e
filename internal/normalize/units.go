package normalize

import (
	"strconv"
	"strings"
	"unicode"
)

const (
	kib = 1024
	mib = 1024 * 1024
	mhz = 1e6
)

// ParseLinkSpeed converts a link speed to bits per second. Strings carry a
// unit ("1 Gbps", "100 Mbps", "10 Kbps"); bare numbers are Mbps. The
// second return is false when the value could not be read.
func ParseLinkSpeed(v any) (uint64, bool) {
	if v == nil {
		return 0, false
	}
	s, isStr := v.(string)
	if !isStr {
		f, ok := toFloat(v)
		if !ok {
			return 0, false
		}
		return toUint(f, 1e6), true
	}

	s = strings.ToLower(strings.TrimSpace(s))
	end := strings.IndexFunc(s, func(r rune) bool {
		return !unicode.IsDigit(r) && r != '.'
	})
	num, unit := s, ""
	if end >= 0 {
		num, unit = s[:end], strings.TrimSpace(s[end:])
	}
	f, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0, false
	}

	mult := 1e6
	switch {
	case strings.HasPrefix(unit, "t"):
		mult = 1e12
	case strings.HasPrefix(unit, "g"):
		mult = 1e9
	case strings.HasPrefix(unit, "m"):
		mult = 1e6
	case strings.HasPrefix(unit, "k"):
		mult = 1e3
	case strings.HasPrefix(unit, "b"):
		mult = 1
	}
	return toUint(f, mult), true
}
