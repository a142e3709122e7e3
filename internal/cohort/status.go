package cohort

import "strings"

// SmokingStatus is the derived smoking category of a subject.
type SmokingStatus string

const (
	NoStatus      SmokingStatus = ""
	CurrentSmoker SmokingStatus = "current_smoker"
	ExSmoker      SmokingStatus = "ex_smoker"
	NeverSmoker   SmokingStatus = "never_smoker"
)

// Statuses lists the valid categories in derivation priority order.
var Statuses = []SmokingStatus{CurrentSmoker, ExSmoker, NeverSmoker}

// DeriveSmokingStatus maps the three mutually exclusive flags to a category.
// The first true flag wins in the order current > ex > never; NoStatus is
// returned when no flag is set. The loader reads each flag cell with
// parseBool, so "True", "1", "1.0", "yes", "y" and "t" (any case) all count as
// set; every other value, including blanks, counts as unset.
func DeriveSmokingStatus(current, ex, never bool) SmokingStatus {
	switch {
	case current:
		return CurrentSmoker
	case ex:
		return ExSmoker
	case never:
		return NeverSmoker
	default:
		return NoStatus
	}
}

// Valid reports whether s is one of the three categories.
func (s SmokingStatus) Valid() bool {
	return s == CurrentSmoker || s == ExSmoker || s == NeverSmoker
}

// Label renders the category for chart axes and titles, e.g. "Ex Smoker".
func (s SmokingStatus) Label() string {
	if !s.Valid() {
		return "No Status"
	}
	parts := strings.Split(string(s), "_")
	for i, p := range parts {
		parts[i] = strings.ToUpper(p[:1]) + p[1:]
	}
	return strings.Join(parts, " ")
}

func (s SmokingStatus) String() string { return string(s) }
