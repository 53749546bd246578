package coding

import (
	"encoding/json"
	"regexp"
	"strings"
)

// RawEntry is one undecoded coding entry from a model response.
type RawEntry map[string]any

// The response is prose with a JSON island somewhere inside it. The first
// array-looking substring wins; an object-looking substring is the fallback.
var (
	jsonArrayPattern  = regexp.MustCompile(`(?s)\[.*?\]`)
	jsonObjectPattern = regexp.MustCompile(`(?s)\{.*?\}`)
)

// Parse extracts coding entries from a raw model response.
//
// Accepted payload shapes, in priority order: a direct array of entry
// objects, an object with a "cpt_codes" array, an object with a "codes"
// array. Any other object shape decodes to zero entries, which is a valid
// result distinct from a decode failure; both mean "no usable codes" to
// callers, so ok=false only signals that no JSON could be decoded at all.
func Parse(responseText string) ([]RawEntry, bool) {
	cleaned := strings.TrimSpace(responseText)
	if cleaned == "" {
		return nil, false
	}

	match := jsonArrayPattern.FindString(cleaned)
	if match == "" {
		match = jsonObjectPattern.FindString(cleaned)
	}
	if match == "" {
		return nil, false
	}

	var payload any
	if err := json.Unmarshal([]byte(match), &payload); err != nil {
		return nil, false
	}

	switch t := payload.(type) {
	case []any:
		return toEntries(t), true
	case map[string]any:
		if list, ok := t["cpt_codes"].([]any); ok {
			return toEntries(list), true
		}
		if list, ok := t["codes"].([]any); ok {
			return toEntries(list), true
		}
		// Object with neither recognized key: zero entries by contract.
		return nil, true
	default:
		return nil, true
	}
}

// toEntries keeps the object entries of a decoded list; anything that is not
// an object carries no coding fields and is dropped.
func toEntries(list []any) []RawEntry {
	entries := make([]RawEntry, 0, len(list))
	for _, item := range list {
		if m, ok := item.(map[string]any); ok {
			entries = append(entries, RawEntry(m))
		}
	}
	return entries
}
