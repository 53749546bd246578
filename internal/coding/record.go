// Package coding turns raw model responses into validated CPT coding records.
package coding

import (
	"strconv"
	"strings"
)

// Record is the canonical coding unit typed back into the billing grid.
// Code may be empty when the source entry omitted it; that is a defect
// condition surfaced by the population layer, not a structural error here.
type Record struct {
	Code        string `json:"code"`
	Modifier1   string `json:"modifier1"`
	Modifier2   string `json:"modifier2"`
	Description string `json:"description"`
}

// codeKeys is the resolution order for the procedure code value.
// Models answer with any of these key spellings depending on the prompt run.
var codeKeys = []string{"cpt", "cptCode", "code"}

// Normalize maps heterogeneous raw entries into canonical Records.
// No format validation and no truncation happens here: the prompt requests a
// ceiling, but entries beyond it pass through untouched.
func Normalize(entries []RawEntry) []Record {
	records := make([]Record, 0, len(entries))
	for _, entry := range entries {
		records = append(records, Record{
			Code:        resolveCode(entry),
			Modifier1:   stringValue(entry["modifier1"]),
			Modifier2:   stringValue(entry["modifier2"]),
			Description: stringValue(entry["description"]),
		})
	}
	return records
}

// MissingCodeCount reports how many entries resolve to an empty procedure code.
func MissingCodeCount(entries []RawEntry) int {
	missing := 0
	for _, entry := range entries {
		if strings.TrimSpace(resolveCode(entry)) == "" {
			missing++
		}
	}
	return missing
}

// resolveCode returns the first truthy value among the known code keys.
func resolveCode(entry RawEntry) string {
	for _, key := range codeKeys {
		if v, ok := entry[key]; ok && truthy(v) {
			return stringValue(v)
		}
	}
	return ""
}

// truthy mirrors the loose presence check the coding prompt contract assumes:
// empty strings, zero numbers, false, and null do not count as a code value.
func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case string:
		return strings.TrimSpace(t) != ""
	case float64:
		return t != 0
	case bool:
		return t
	default:
		return true
	}
}

// stringValue coerces a decoded JSON value to its string form.
// Numbers render without a trailing fraction so 99213 stays "99213".
func stringValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return ""
	}
}
