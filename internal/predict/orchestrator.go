package predict

import (
	"context"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/claimloop/ecwcoder/internal/coding"
	perrors "github.com/claimloop/ecwcoder/internal/errors"
)

// MinNotesChars is the floor below which clinical notes are too thin to
// produce a meaningful prediction.
const MinNotesChars = 50

// DefaultMaxRetries bounds the prediction attempt loop.
const DefaultMaxRetries = 3

// Options configures an Orchestrator. Zero values fall back to the built-in
// template, the plan-derived code minimum, and DefaultMaxRetries.
type Options struct {
	Template         string
	InsurancePlan    string
	MinExpectedCodes int
	MaxRetries       int
}

// Result is the accepted prediction after the retry loop settles.
type Result struct {
	// Raw is the model text of the accepted attempt.
	Raw string
	// Entries are the parsed coding entries from Raw.
	Entries []coding.RawEntry
	// Attempts is how many service calls were made.
	Attempts int
}

// Orchestrator runs the prediction retry loop: call the service, probe-parse
// the reply, and either accept it or escalate the prompt and try again.
type Orchestrator struct {
	service    Service
	template   string
	plan       string
	minCodes   int
	maxRetries int
}

// NewOrchestrator builds an orchestrator around a prediction service.
func NewOrchestrator(service Service, opts Options) *Orchestrator {
	template := opts.Template
	if template == "" {
		template = defaultPromptTemplate
	}
	minCodes := opts.MinExpectedCodes
	if minCodes <= 0 {
		if strings.EqualFold(opts.InsurancePlan, "commercial") {
			minCodes = 4
		} else {
			minCodes = 3
		}
	}
	maxRetries := opts.MaxRetries
	if maxRetries <= 0 {
		maxRetries = DefaultMaxRetries
	}
	return &Orchestrator{
		service:    service,
		template:   template,
		plan:       opts.InsurancePlan,
		minCodes:   minCodes,
		maxRetries: maxRetries,
	}
}

// PredictCodes runs the full loop for one set of clinical notes. Each reply is
// probe-parsed and checked against the quality gate: at least the expected
// number of entries and none missing a code value. A deficient reply on a
// non-final attempt appends an escalation suffix to the template; the reply of
// the final attempt is accepted as-is. Notes below MinNotesChars fail before
// any service call.
func (o *Orchestrator) PredictCodes(ctx context.Context, clinicalNotes string) (*Result, error) {
	trimmed := strings.TrimSpace(clinicalNotes)
	if len(trimmed) < MinNotesChars {
		return nil, perrors.NewInsufficientInput(MinNotesChars, len(trimmed))
	}

	notes := trimmed
	if o.plan != "" {
		notes = o.plan + " plan: " + trimmed
	}

	template := o.template
	var lastText string
	attempts := 0

	for attempt := 1; attempt <= o.maxRetries; attempt++ {
		log.Info().Int("attempt", attempt).Int("max", o.maxRetries).Msg("prediction attempt")

		text, err := o.service.Predict(ctx, RenderPrompt(template, notes))
		attempts++
		if err != nil {
			text = ""
		}
		lastText = strings.TrimSpace(text)
		if lastText == "" {
			log.Warn().Int("attempt", attempt).Msg("prediction attempt returned no text")
			continue
		}

		entries, _ := coding.Parse(lastText)
		count := len(entries)
		missing := coding.MissingCodeCount(entries)
		log.Info().Int("attempt", attempt).Int("codes", count).Int("missing_code_values", missing).
			Msg("probe-parsed prediction reply")

		if count >= o.minCodes && missing == 0 {
			break
		}
		if attempt == o.maxRetries {
			log.Warn().Int("codes", count).Int("missing_code_values", missing).
				Msg("accepting deficient reply, retries exhausted")
			break
		}
		switch {
		case missing > 0:
			template += missingCodeSuffix(missing)
		case count > 0:
			template += minCodesSuffix(o.plan, o.minCodes, count)
		}
	}

	if lastText == "" {
		return nil, perrors.NewNoResponse(attempts)
	}

	entries, ok := coding.Parse(lastText)
	if !ok {
		return &Result{Raw: lastText, Attempts: attempts},
			perrors.NewParseFailure("no recognizable coding payload in prediction reply")
	}
	return &Result{Raw: lastText, Entries: entries, Attempts: attempts}, nil
}
