package workflow

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/claimloop/ecwcoder/internal/browser"
	perrors "github.com/claimloop/ecwcoder/internal/errors"
	"github.com/claimloop/ecwcoder/internal/notes"
)

var (
	progNotesButtonSelectors = []string{
		`text=Prog. Notes`,
		`input[value*="Prog. Notes"]`,
		`button[title*="Progress Notes"]`,
		`text=Progress Notes`,
		`input[value="Prog. Notes"]`,
		`text*=Prog`,
	}
	dialogCloseSelectors = []string{
		`text=Close`,
		`.close`,
		`[aria-label="Close"]`,
		`.modal-close`,
		`button.close`,
	}
)

// NotesExtraction pulls the clinical note text out of the progress notes
// dialog. The note body lives inside a nested frame the dialog hosts; frames
// whose id or name carry none of the configured indicators are skipped, and
// the first frame whose markup contains a clinical marker wins.
type NotesExtraction struct {
	page            browser.Page
	extractor       *notes.Extractor
	clinicalMarkers []string
	frameIndicators []string
}

// NewNotesExtraction wires an extraction flow. Nil marker or indicator lists
// fall back to the builtin heuristics.
func NewNotesExtraction(page browser.Page, extractor *notes.Extractor, markers, indicators []string) *NotesExtraction {
	if len(markers) == 0 {
		markers = []string{
			"Patient:", "HPI:", "PFPT", "Subjective:", "Assessment:",
			"Examination:", "Pelvic Pain", "physical therapy", "electrical stimulation",
		}
	}
	if len(indicators) == 0 {
		indicators = []string{"prognote", "progress"}
	}
	return &NotesExtraction{
		page:            page,
		extractor:       extractor,
		clinicalMarkers: markers,
		frameIndicators: indicators,
	}
}

// Run opens the dialog, scans its frames, and returns the extracted note
// text. The dialog is closed before returning regardless of outcome. When the
// structured extraction yields less than the usable minimum, the raw frame
// markup is returned instead so downstream prediction still has something to
// work with.
func (x *NotesExtraction) Run(ctx context.Context) (string, error) {
	if err := x.openDialog(ctx); err != nil {
		return "", err
	}
	defer x.closeDialog(ctx)

	x.page.Wait(ctx, 5*time.Second)

	html, err := x.scanFrames(ctx)
	if err != nil {
		return "", err
	}

	parsed := x.extractor.Extract(html)
	if len(parsed) > notes.MinUsableChars && parsed != notes.NoNotesSentinel {
		log.Info().Int("chars", len(parsed)).Msg("clinical notes extracted")
		return parsed, nil
	}
	log.Warn().Int("parsed_chars", len(parsed)).
		Msg("structured extraction too thin, falling back to raw frame markup")
	return html, nil
}

func (x *NotesExtraction) openDialog(ctx context.Context) error {
	if _, err := x.page.FindAndClick(ctx, progNotesButtonSelectors); err != nil {
		return perrors.NewDialogNotFound()
	}
	x.page.Wait(ctx, 3*time.Second)
	return nil
}

// scanFrames walks the dialog's frames looking for clinical content.
func (x *NotesExtraction) scanFrames(ctx context.Context) (string, error) {
	frames, err := x.page.Frames(ctx)
	if err != nil {
		return "", perrors.NewInternal(err)
	}
	log.Debug().Int("frames", len(frames)).Msg("scanning dialog frames")

	for _, frame := range frames {
		if !x.frameLooksRelevant(frame) {
			log.Debug().Int("frame", frame.Index).Str("id", frame.ID).
				Msg("skipping frame without progress note indicator")
			continue
		}

		html, err := x.page.FrameHTML(ctx, frame.Index)
		if err != nil || html == "" {
			log.Debug().Int("frame", frame.Index).Msg("frame content not accessible")
			continue
		}

		if markers := x.foundMarkers(html); len(markers) > 0 {
			log.Info().Int("frame", frame.Index).Strs("markers", markers).
				Msg("clinical content found")
			return html, nil
		}
		log.Debug().Int("frame", frame.Index).Msg("no clinical markers in frame")
	}
	return "", perrors.NewNoClinicalContent(len(frames))
}

func (x *NotesExtraction) frameLooksRelevant(frame browser.FrameInfo) bool {
	id := strings.ToLower(frame.ID)
	name := strings.ToLower(frame.Name)
	for _, ind := range x.frameIndicators {
		ind = strings.ToLower(ind)
		if strings.Contains(id, ind) || strings.Contains(name, ind) {
			return true
		}
	}
	return false
}

func (x *NotesExtraction) foundMarkers(html string) []string {
	var found []string
	for _, marker := range x.clinicalMarkers {
		if strings.Contains(html, marker) {
			found = append(found, marker)
		}
	}
	return found
}

// closeDialog dismisses the progress notes dialog, falling back to the Escape
// key when no close control is visible.
func (x *NotesExtraction) closeDialog(ctx context.Context) {
	if _, err := x.page.FindAndClick(ctx, dialogCloseSelectors); err != nil {
		log.Debug().Msg("no close control found, pressing Escape")
		x.page.PressKey(ctx, "Escape")
	}
	x.page.Wait(ctx, time.Second)
}
