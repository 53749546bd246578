package coding

import "strings"

// ManometryStatus classifies whether anorectal manometry was performed,
// which decides whether CPT 91122 belongs on the claim.
type ManometryStatus string

const (
	ManometryPerformed   ManometryStatus = "performed"
	ManometryDeferred    ManometryStatus = "deferred"
	ManometryConflicting ManometryStatus = "conflicting"
	ManometryUnknown     ManometryStatus = "unknown"
)

// Advisory is the result of the manometry keyword scan. It is informational
// only: the pipeline never removes a code on its own, it flags the claim for
// operator review.
type Advisory struct {
	Status  ManometryStatus
	Keyword string // the matched phrase, empty for unknown
}

var manometryNegative = []string{
	"anorectal manometry was deferred",
	"anorectal manometry deferred",
	"manometry was deferred",
	"manometry deferred",
	"anorectal manometry was not done",
	"anorectal manometry not done",
	"manometry was not done",
	"manometry not done",
	"anorectal manometry was cancelled",
	"anorectal manometry cancelled",
	"manometry was cancelled",
	"manometry cancelled",
	"anorectal manometry was unavailable",
	"anorectal manometry unavailable",
	"manometry was unavailable",
	"manometry unavailable",
}

var manometryPositive = []string{
	"anorectal manometry is performed",
	"anorectal manometry was performed",
	"anorectal manometry performed",
	"manometry is performed",
	"manometry was performed",
	"manometry performed",
	"anal pressure probe is used",
	"anal pressure probe was used",
	"anal pressure record",
}

// CheckManometry scans clinical notes for manometry status phrases.
// Negative phrasing ("deferred", "not done") and positive phrasing
// ("performed") are searched independently; both present is a conflict.
func CheckManometry(clinicalNotes string) Advisory {
	lower := strings.ToLower(clinicalNotes)

	negMatch := firstMatch(lower, manometryNegative)
	posMatch := firstMatch(lower, manometryPositive)

	switch {
	case negMatch != "" && posMatch == "":
		return Advisory{Status: ManometryDeferred, Keyword: negMatch}
	case posMatch != "" && negMatch == "":
		return Advisory{Status: ManometryPerformed, Keyword: posMatch}
	case negMatch != "" && posMatch != "":
		return Advisory{Status: ManometryConflicting, Keyword: negMatch}
	default:
		return Advisory{Status: ManometryUnknown}
	}
}

// Recommendation renders the operator-facing advice for this advisory.
func (a Advisory) Recommendation() string {
	switch a.Status {
	case ManometryDeferred:
		return "manometry not performed: CPT 91122 should be removed"
	case ManometryPerformed:
		return "manometry performed: CPT 91122 should be kept"
	case ManometryConflicting:
		return "conflicting manometry phrasing: manual review required"
	default:
		return "no manometry status found: manual review required"
	}
}

func firstMatch(haystack string, phrases []string) string {
	for _, p := range phrases {
		if strings.Contains(haystack, p) {
			return p
		}
	}
	return ""
}
