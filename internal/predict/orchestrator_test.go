package predict

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	perrors "github.com/claimloop/ecwcoder/internal/errors"
)

// scriptedService replays canned replies and records every prompt it receives.
type scriptedService struct {
	replies []string
	errs    []error
	prompts []string
}

func (s *scriptedService) Predict(_ context.Context, prompt string) (string, error) {
	s.prompts = append(s.prompts, prompt)
	i := len(s.prompts) - 1
	var err error
	if i < len(s.errs) {
		err = s.errs[i]
	}
	reply := ""
	if i < len(s.replies) {
		reply = s.replies[i]
	} else if len(s.replies) > 0 {
		reply = s.replies[len(s.replies)-1]
	}
	return reply, err
}

const testNotes = "Patient: Jane Doe. Subjective: abdominal pain for three weeks, worse after meals, no relief with antacids."

func codesReply(n int) string {
	items := make([]string, n)
	for i := range items {
		items[i] = `{"code": "99213", "modifier1": "", "modifier2": "", "description": "visit"}`
	}
	return "[" + strings.Join(items, ", ") + "]"
}

func TestPredictCodesRetriesUntilQualityGate(t *testing.T) {
	svc := &scriptedService{replies: []string{codesReply(2), codesReply(5)}}
	o := NewOrchestrator(svc, Options{InsurancePlan: "Commercial", MaxRetries: 3})

	res, err := o.PredictCodes(context.Background(), testNotes)
	require.NoError(t, err)
	require.Len(t, svc.prompts, 2)
	require.Len(t, res.Entries, 5)
	require.Equal(t, 2, res.Attempts)

	// The second prompt carries the too-few-codes escalation.
	require.NotContains(t, svc.prompts[0], "at least 4 CPT codes")
	require.Contains(t, svc.prompts[1], "For Commercial plan, you MUST provide at least 4 CPT codes")
}

func TestPredictCodesAcceptsDeficientFinalReply(t *testing.T) {
	reply := `[{"code": "", "description": "mystery line item"}]`
	svc := &scriptedService{replies: []string{reply, reply, reply}}
	o := NewOrchestrator(svc, Options{InsurancePlan: "Commercial", MaxRetries: 3})

	res, err := o.PredictCodes(context.Background(), testNotes)
	require.NoError(t, err)
	require.Len(t, svc.prompts, 3)
	require.Equal(t, 3, res.Attempts)
	require.Len(t, res.Entries, 1)

	// Later prompts carry the missing-code escalation, compounding per retry.
	require.Contains(t, svc.prompts[1], "missing the 'code' field")
	require.Equal(t, 1, strings.Count(svc.prompts[1], "CRITICAL:"))
	require.Equal(t, 2, strings.Count(svc.prompts[2], "CRITICAL:"))
}

func TestPredictCodesShortNotesFailWithoutServiceCall(t *testing.T) {
	svc := &scriptedService{replies: []string{codesReply(4)}}
	o := NewOrchestrator(svc, Options{InsurancePlan: "Commercial"})

	_, err := o.PredictCodes(context.Background(), strings.Repeat("x", 40))
	require.Error(t, err)
	require.True(t, perrors.Is(err, perrors.ErrInsufficientInput))
	require.Empty(t, svc.prompts)
}

func TestPredictCodesNoResponseAfterAllAttempts(t *testing.T) {
	svc := &scriptedService{replies: []string{"", "", ""}}
	o := NewOrchestrator(svc, Options{InsurancePlan: "Medicare", MaxRetries: 3})

	_, err := o.PredictCodes(context.Background(), testNotes)
	require.Error(t, err)
	require.True(t, perrors.Is(err, perrors.ErrNoResponse))
	require.Len(t, svc.prompts, 3)
}

func TestPredictCodesUnparseableFinalReply(t *testing.T) {
	svc := &scriptedService{replies: []string{"not json at all"}}
	o := NewOrchestrator(svc, Options{InsurancePlan: "Medicare", MaxRetries: 2})

	res, err := o.PredictCodes(context.Background(), testNotes)
	require.Error(t, err)
	require.True(t, perrors.Is(err, perrors.ErrParseFailure))
	require.NotNil(t, res)
	require.Equal(t, "not json at all", res.Raw)
	require.Empty(t, res.Entries)
}

func TestPredictCodesPlanPrefixAndSubstitution(t *testing.T) {
	svc := &scriptedService{replies: []string{codesReply(4)}}
	o := NewOrchestrator(svc, Options{
		Template:      "Notes follow:\n{notes}\nReply with JSON.",
		InsurancePlan: "Commercial",
	})

	_, err := o.PredictCodes(context.Background(), testNotes)
	require.NoError(t, err)
	require.Len(t, svc.prompts, 1)
	require.Contains(t, svc.prompts[0], "Commercial plan: "+testNotes)
	require.NotContains(t, svc.prompts[0], "{notes}")
}

func TestPredictCodesZeroParsedRetriesWithoutEscalation(t *testing.T) {
	svc := &scriptedService{replies: []string{"the model rambles with no payload", codesReply(3)}}
	o := NewOrchestrator(svc, Options{InsurancePlan: "Medicare", MaxRetries: 3})

	res, err := o.PredictCodes(context.Background(), testNotes)
	require.NoError(t, err)
	require.Len(t, svc.prompts, 2)
	require.Equal(t, svc.prompts[0], svc.prompts[1])
	require.Len(t, res.Entries, 3)
}

func TestNewOrchestratorPlanMinimums(t *testing.T) {
	tests := []struct {
		plan     string
		explicit int
		want     int
	}{
		{"Commercial", 0, 4},
		{"commercial", 0, 4},
		{"Medicare", 0, 3},
		{"", 0, 3},
		{"Commercial", 2, 2},
	}
	for _, tt := range tests {
		o := NewOrchestrator(nil, Options{InsurancePlan: tt.plan, MinExpectedCodes: tt.explicit})
		if o.minCodes != tt.want {
			t.Errorf("plan %q explicit %d: minCodes = %d, want %d", tt.plan, tt.explicit, o.minCodes, tt.want)
		}
	}
}

func TestLoadTemplateResolutionOrder(t *testing.T) {
	dir := t.TempDir()

	// Nothing present: built-in default.
	got := LoadTemplate(dir, "Commercial")
	require.Equal(t, defaultPromptTemplate, got)

	// Generic prompt.txt: plan phrase rewritten.
	generic := "Predict codes for a Commercial or Medicare plan visit.\n{notes}"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "prompt.txt"), []byte(generic), 0o644))
	got = LoadTemplate(dir, "Medicare")
	require.Contains(t, got, "Medicare plan visit")
	require.NotContains(t, got, "Commercial or Medicare plan")

	// Plan-specific file wins and is used verbatim.
	specific := "Medicare-specific instructions.\n{notes}"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "prompt_medicare.txt"), []byte(specific), 0o644))
	got = LoadTemplate(dir, "Medicare")
	require.Equal(t, specific, got)
}
