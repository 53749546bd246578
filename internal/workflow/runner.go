package workflow

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog/log"

	"github.com/claimloop/ecwcoder/internal/browser"
	"github.com/claimloop/ecwcoder/internal/coding"
	"github.com/claimloop/ecwcoder/internal/config"
	perrors "github.com/claimloop/ecwcoder/internal/errors"
	"github.com/claimloop/ecwcoder/internal/notes"
	"github.com/claimloop/ecwcoder/internal/predict"
)

// MinExtractedChars is the floor for a usable extraction result; shorter
// output triggers a retry.
const MinExtractedChars = 50

const extractionAttempts = 3

// placeholderNotes stands in when extraction failed and the operator chose to
// continue anyway.
const placeholderNotes = "No clinical notes extracted - manual intervention required"

// Runner executes the end-to-end billing flow: sign in, open the claim,
// extract the progress note, predict procedure codes, and populate the grid.
// Each run writes its artifacts under a fresh ULID-named directory so
// successive runs never clobber each other.
type Runner struct {
	cfg     *config.Config
	page    browser.Page
	service predict.Service

	// operator is read when extraction fails and a human has to decide
	// whether to continue. Defaults to stdin.
	operator io.Reader
}

// NewRunner wires a runner from its collaborators.
func NewRunner(cfg *config.Config, page browser.Page, service predict.Service) *Runner {
	return &Runner{cfg: cfg, page: page, service: service, operator: os.Stdin}
}

// SetOperatorInput overrides where the manual-intervention prompt reads from.
func (r *Runner) SetOperatorInput(in io.Reader) { r.operator = in }

// Run drives the whole flow. Navigation hiccups after login are logged and
// survived where the page may already be in a workable state; login failure
// and operator abort are fatal.
func (r *Runner) Run(ctx context.Context) error {
	runDir, err := r.makeRunDir()
	if err != nil {
		return perrors.NewInternal(err)
	}
	log.Info().Str("run_dir", runDir).Msg("starting billing run")

	if err := Login(ctx, r.page, LoginInput{
		URL:      r.cfg.URL,
		Username: r.cfg.Username,
		Password: r.cfg.Password,
	}); err != nil {
		return err
	}
	r.page.Wait(ctx, 3*time.Second)

	if err := NavigateToClaims(ctx, r.page); err != nil {
		return err
	}
	if err := SetServiceDates(ctx, r.page, r.cfg.TargetDate); err != nil {
		log.Warn().Err(err).Msg("service dates not set, continuing with current range")
	}
	if err := ClaimsLookup(ctx, r.page, r.cfg.ClaimID); err != nil {
		log.Warn().Err(err).Msg("claims lookup failed, continuing")
	}

	clinicalNotes, err := r.extractNotes(ctx, runDir)
	if err != nil {
		return err
	}

	records, err := r.predictCodes(ctx, runDir, clinicalNotes)
	if err != nil {
		return err
	}

	if err := PopulateCodes(ctx, r.page, records, r.cfg.ICDCode); err != nil {
		log.Warn().Err(err).Msg("code population incomplete")
	}

	r.page.Wait(ctx, 2*time.Second)
	if r.cfg.Screenshot {
		shot := filepath.Join(runDir, "final_state.png")
		if err := r.page.Screenshot(ctx, shot); err != nil {
			log.Warn().Err(err).Msg("final screenshot failed")
		}
	}

	log.Info().Str("run_dir", runDir).Msg("billing run complete")
	return nil
}

// extractNotes retries the dialog extraction, then falls back to the
// configured notes file, then asks the operator whether to continue with
// placeholder text.
func (r *Runner) extractNotes(ctx context.Context, runDir string) (string, error) {
	extraction := NewNotesExtraction(
		r.page,
		notes.NewExtractor(r.cfg.FallbackKeywords),
		r.cfg.ClinicalMarkers,
		r.cfg.FrameIndicators,
	)

	var extracted string
	for attempt := 1; attempt <= extractionAttempts; attempt++ {
		log.Info().Int("attempt", attempt).Int("max", extractionAttempts).
			Msg("progress notes extraction attempt")

		text, err := extraction.Run(ctx)
		if err == nil && len(strings.TrimSpace(text)) >= MinExtractedChars {
			extracted = text
			break
		}
		if err != nil {
			log.Warn().Err(err).Int("attempt", attempt).Msg("extraction attempt failed")
		} else {
			log.Warn().Int("attempt", attempt).Int("chars", len(strings.TrimSpace(text))).
				Msg("extracted notes too short")
		}
		if attempt < extractionAttempts {
			r.page.Wait(ctx, 2*time.Second)
		}
	}

	if extracted == "" {
		if text, err := notes.ReadFile(r.cfg.NotesFile); err == nil {
			log.Info().Str("path", r.cfg.NotesFile).Msg("using notes file fallback")
			extracted = notes.Format(text)
		}
	}

	if extracted == "" {
		log.Error().Msg("progress notes extraction failed after all attempts, manual intervention required")
		if !r.operatorContinues() {
			return "", perrors.NewNoClinicalContent(0)
		}
		extracted = placeholderNotes
	} else {
		advisory := coding.CheckManometry(extracted)
		log.Info().Str("manometry_status", string(advisory.Status)).Str("keyword", advisory.Keyword).
			Msg(advisory.Recommendation())
	}

	r.dump(runDir, "clinical_notes.txt", []byte(extracted))
	return extracted, nil
}

// predictCodes runs the prediction loop and normalizes the reply. A reply
// with no recognizable payload downgrades to zero codes rather than aborting,
// so the diagnosis code still gets populated.
func (r *Runner) predictCodes(ctx context.Context, runDir, clinicalNotes string) ([]coding.Record, error) {
	orchestrator := predict.NewOrchestrator(r.service, predict.Options{
		Template:         predict.LoadTemplate(r.cfg.PromptDir, r.cfg.InsurancePlan),
		InsurancePlan:    r.cfg.InsurancePlan,
		MinExpectedCodes: r.cfg.MinExpectedCodes,
		MaxRetries:       r.cfg.MaxRetries,
	})

	result, err := orchestrator.PredictCodes(ctx, clinicalNotes)
	if err != nil {
		if perrors.Is(err, perrors.ErrParseFailure) && result != nil {
			log.Warn().Msg("prediction reply had no parseable payload, continuing with zero codes")
			r.dump(runDir, "prediction_raw.txt", []byte(result.Raw))
			return nil, nil
		}
		return nil, err
	}
	r.dump(runDir, "prediction_raw.txt", []byte(result.Raw))

	records := coding.Normalize(result.Entries)
	if data, err := json.MarshalIndent(records, "", "  "); err == nil {
		r.dump(runDir, "codes.json", data)
	}
	log.Info().Int("codes", len(records)).Int("attempts", result.Attempts).Msg("procedure codes predicted")
	return records, nil
}

// operatorContinues prompts for a decision: 'q' aborts, anything else
// continues with placeholder notes.
func (r *Runner) operatorContinues() bool {
	os.Stderr.WriteString("Enter 'c' to continue with empty notes, or 'q' to quit: ")
	scanner := bufio.NewScanner(r.operator)
	if !scanner.Scan() {
		return false
	}
	return strings.ToLower(strings.TrimSpace(scanner.Text())) != "q"
}

func (r *Runner) makeRunDir() (string, error) {
	dir := filepath.Join(r.cfg.OutputDir, ulid.Make().String())
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return dir, nil
}

// dump writes a run artifact, logging rather than failing on error.
func (r *Runner) dump(runDir, name string, data []byte) {
	path := filepath.Join(runDir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		log.Warn().Err(err).Str("path", path).Msg("could not write run artifact")
	}
}
