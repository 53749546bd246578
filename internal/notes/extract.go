// Package notes converts raw progress-notes HTML into plain clinical text.
//
// The source document is rendered by a third-party EHR and is not under our
// control: section headers are bold-tagged labels in loosely structured table
// markup. Each section is located by an independent case-insensitive rule
// matched against the whole document, then stripped of markup and normalized.
package notes

import (
	"regexp"
	"strings"
)

// NoNotesSentinel is returned when no clinical content can be extracted.
const NoNotesSentinel = "No clinical notes found in the provided HTML content"

// MinUsableChars is the floor under which combined section text is considered
// unusable and the fallback table-cell scan kicks in.
const MinUsableChars = 100

// Section rules. The original document terminates each section with the next
// bold label; the terminator is consumed rather than looked ahead at, which is
// equivalent because every rule matches independently against the full text.
var (
	patientSubjectivePattern = regexp.MustCompile(`(?is)<b>Patient:\s*</b>([^<]+).*?<span[^>]*><b>Subjective:</b></span>(.*?)(?:<span[^>]*><b>Assessment:</b></span>|$)`)
	hpiPattern               = regexp.MustCompile(`(?is)<b>HPI:\s*</b>(.*?)(?:<b>(?:Objective|Examination|Assessment):|$)`)
	pfptPattern              = regexp.MustCompile(`(?is)(PFPT[^<]*(?:<[^>]*>[^<]*)*?(?:pelvic\s+(?:floor|pain)|physical\s+therapy)[^<]*(?:<[^>]*>[^<]*)*?(?:stimulation|therapy|muscles)[^<]*(?:<[^>]*>[^<]*)*)`)
	examinationPattern       = regexp.MustCompile(`(?is)<b>Examination:[^<]*</b>(.*?)(?:<b>(?:Assessment|Plan):|$)`)
	assessmentPattern        = regexp.MustCompile(`(?is)<b>Assessment:\s*</b>(.*?)(?:<b>(?:Plan|Treatment):|$)`)
	procedureCodesPattern    = regexp.MustCompile(`(?is)<b>Procedure\s+Codes:</b>(.*?)(?:</table>|<b>[^>]*</b>|$)`)
	visitCodePattern         = regexp.MustCompile(`(?is)<b>Visit\s+Code:</b>(.*?)(?:</table>|<b>[^>]*</b>|$)`)

	tagPattern        = regexp.MustCompile(`<[^>]+>`)
	whitespacePattern = regexp.MustCompile(`\s+`)
	tableCellPattern  = regexp.MustCompile(`(?is)<td[^>]*>(.*?)</td>`)
)

// Fixed entity table; anything outside it passes through untouched.
var htmlEntities = [][2]string{
	{"&nbsp;", " "},
	{"&amp;", "&"},
	{"&lt;", "<"},
	{"&gt;", ">"},
	{"&quot;", `"`},
	{"&#39;", "'"},
	{"&apos;", "'"},
}

// fallback cell scan limits
const (
	minCellChars     = 20
	maxFallbackCells = 20
)

// Extractor pulls clinical text out of progress-notes HTML. The fallback
// keyword list is configuration data so it can be tuned without code changes.
type Extractor struct {
	fallbackKeywords []string
}

// NewExtractor creates an Extractor with the given fallback keywords.
// Nil keywords fall back to the built-in clinical list.
func NewExtractor(fallbackKeywords []string) *Extractor {
	if len(fallbackKeywords) == 0 {
		fallbackKeywords = []string{
			"patient", "pelvic", "pain", "therapy",
			"stimulation", "examination", "assessment", "pfpt",
		}
	}
	return &Extractor{fallbackKeywords: fallbackKeywords}
}

// Extract converts raw HTML to plain clinical text. Present sections are
// concatenated in a fixed priority order separated by blank lines. If the
// result is under MinUsableChars, table cells containing clinical keywords
// are scanned instead; if nothing qualifies, NoNotesSentinel is returned.
// Extract is a pure function of its input and never fails.
func (e *Extractor) Extract(html string) string {
	if html == "" {
		return NoNotesSentinel
	}

	var parts []string
	add := func(label, body string) {
		body = CleanFragment(body)
		if body == "" {
			return
		}
		parts = append(parts, label+"\n"+body)
	}

	if m := patientSubjectivePattern.FindStringSubmatch(html); m != nil {
		name := strings.TrimSpace(m[1])
		subjective := CleanFragment(m[2])
		if subjective != "" {
			parts = append(parts, "Patient: "+name+"\n\nSubjective:\n"+subjective)
		} else {
			parts = append(parts, "Patient: "+name)
		}
	}
	if m := hpiPattern.FindStringSubmatch(html); m != nil {
		add("HPI:", m[1])
	}
	if matches := pfptPattern.FindAllStringSubmatch(html, -1); len(matches) > 0 {
		joined := make([]string, 0, len(matches))
		for _, m := range matches {
			joined = append(joined, m[1])
		}
		add("PFPT Details:", strings.Join(joined, " "))
	}
	if m := examinationPattern.FindStringSubmatch(html); m != nil {
		add("Examination:", m[1])
	}
	if m := assessmentPattern.FindStringSubmatch(html); m != nil {
		add("Assessment:", m[1])
	}
	if m := procedureCodesPattern.FindStringSubmatch(html); m != nil {
		add("Procedure Codes:", m[1])
	}
	if m := visitCodePattern.FindStringSubmatch(html); m != nil {
		add("Visit Code:", m[1])
	}

	combined := strings.TrimSpace(strings.Join(parts, "\n\n"))
	if len(combined) >= MinUsableChars {
		return combined
	}

	if fallback := e.scanTableCells(html); fallback != "" {
		return fallback
	}

	return NoNotesSentinel
}

// scanTableCells is the fallback path: keep each cleaned <td> fragment longer
// than minCellChars that mentions at least one clinical keyword, up to
// maxFallbackCells cells.
func (e *Extractor) scanTableCells(html string) string {
	matches := tableCellPattern.FindAllStringSubmatch(html, -1)
	if len(matches) == 0 {
		return ""
	}

	var kept []string
	for _, m := range matches {
		cleaned := CleanFragment(m[1])
		if len(cleaned) <= minCellChars {
			continue
		}
		if !e.containsKeyword(cleaned) {
			continue
		}
		kept = append(kept, cleaned)
		if len(kept) == maxFallbackCells {
			break
		}
	}

	return strings.Join(kept, "\n")
}

func (e *Extractor) containsKeyword(text string) bool {
	lower := strings.ToLower(text)
	for _, kw := range e.fallbackKeywords {
		if strings.Contains(lower, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}

// CleanFragment strips markup from a captured fragment: tags become a single
// space, the fixed entity table is decoded, whitespace runs collapse to one
// space, and empty lines are dropped.
func CleanFragment(fragment string) string {
	if fragment == "" {
		return ""
	}

	text := tagPattern.ReplaceAllString(fragment, " ")
	for _, ent := range htmlEntities {
		text = strings.ReplaceAll(text, ent[0], ent[1])
	}
	text = whitespacePattern.ReplaceAllString(text, " ")

	lines := strings.Split(text, "\n")
	cleaned := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" {
			cleaned = append(cleaned, line)
		}
	}
	return strings.Join(cleaned, "\n")
}
