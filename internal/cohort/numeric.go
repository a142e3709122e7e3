package cohort

import (
	"math"
	"strconv"
	"strings"
)

var missingMarkers = map[string]struct{}{
	"":      {},
	"na":    {},
	"nan":   {},
	"null":  {},
	"none":  {},
	"<nil>": {},
}

func isMissing(s string) bool {
	_, ok := missingMarkers[strings.ToLower(strings.TrimSpace(s))]
	return ok
}

// parseNumeric parses a cell as float64. decimal selects the decimal
// separator; 0 auto-detects per value. Missing or unparsable cells yield NaN.
func parseNumeric(s string, decimal rune) float64 {
	raw := strings.TrimSpace(s)
	if isMissing(raw) {
		return math.NaN()
	}
	raw = strings.ReplaceAll(raw, "\u00A0", "")
	raw = strings.ReplaceAll(raw, " ", "")
	dec := decimal
	if dec == 0 {
		cpos := strings.LastIndex(raw, ",")
		dpos := strings.LastIndex(raw, ".")
		if cpos > dpos {
			dec = ','
		} else {
			dec = '.'
		}
	}
	// Remove thousands separators, keep the decimal one
	if dec == ',' {
		raw = strings.ReplaceAll(raw, ".", "")
		raw = strings.ReplaceAll(raw, ",", ".")
	} else {
		raw = strings.ReplaceAll(raw, ",", "")
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return math.NaN()
	}
	return f
}

// parseBool accepts the spellings pandas and spreadsheet exports produce.
func parseBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "t", "1", "1.0", "yes", "y":
		return true
	default:
		return false
	}
}
