package classify

// Tier is a coarse usage bucket that drives color and warnings.
type Tier int

const (
	TierNominal Tier = iota
	TierElevated
	TierHigh
	TierCritical
)

func (t Tier) String() string {
	switch t {
	case TierElevated:
		return "elevated"
	case TierHigh:
		return "high"
	case TierCritical:
		return "critical"
	default:
		return "nominal"
	}
}

// LowSpaceThreshold is the disk usage above which a volume is flagged.
const LowSpaceThreshold = 90.0

// TierFor buckets a usage percent. The critical boundary is exclusive:
// exactly 90 is still high.
func TierFor(pct float64) Tier {
	switch {
	case pct > 90:
		return TierCritical
	case pct >= 80:
		return TierHigh
	case pct >= 60:
		return TierElevated
	default:
		return TierNominal
	}
}

// LowSpace reports whether a disk at pct usage should warn.
func LowSpace(pct float64) bool {
	return pct > LowSpaceThreshold
}
