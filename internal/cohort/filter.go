package cohort

import "strings"

// FilterMode selects the subpopulation a command analyses.
type FilterMode int

const (
	FilterAll FilterMode = iota
	FilterHealthy
)

func (m FilterMode) String() string {
	switch m {
	case FilterHealthy:
		return "healthy"
	default:
		return "all"
	}
}

// FilterFromFlag maps the --healthy flag to a FilterMode.
func FilterFromFlag(healthy bool) FilterMode {
	if healthy {
		return FilterHealthy
	}
	return FilterAll
}

// HealthyFilter keeps subjects with no diagnosed lung disease: GOLD stage 0,
// no COPD or asthma diagnosis and no excluded cancer type.
type HealthyFilter struct {
	ExcludedCancerTypes []string
}

// Keep reports whether s belongs to the healthy subpopulation.
func (f HealthyFilter) Keep(s Subject) bool {
	if !goldStageZero(s.GOLDStage) {
		return false
	}
	if s.COPD || s.Asthma {
		return false
	}
	for _, c := range f.ExcludedCancerTypes {
		if strings.EqualFold(strings.TrimSpace(c), s.CancerType) {
			return false
		}
	}
	return true
}

// goldStageZero accepts "0" as written by both string and numeric exports.
func goldStageZero(v string) bool {
	v = strings.TrimSpace(v)
	return v == "0" || v == "0.0"
}
