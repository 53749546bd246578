package mcp

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/claimloop/ecwcoder/internal/config"
)

// makeRequest creates a CallToolRequest with the given arguments.
func makeRequest(args map[string]any) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Arguments: args,
		},
	}
}

// scriptedService replays canned model replies for codes_predict tests.
type scriptedService struct {
	replies []string
	calls   int
}

func (s *scriptedService) Predict(context.Context, string) (string, error) {
	i := s.calls
	s.calls++
	if i >= len(s.replies) {
		i = len(s.replies) - 1
	}
	return s.replies[i], nil
}

func resultPayload(t *testing.T, result *mcp.CallToolResult) map[string]any {
	t.Helper()
	var payload map[string]any
	if err := json.Unmarshal([]byte(result.Content[0].(mcp.TextContent).Text), &payload); err != nil {
		t.Fatalf("failed to unmarshal result: %v", err)
	}
	return payload
}

func assertErrorCode(t *testing.T, result *mcp.CallToolResult, code string) {
	t.Helper()
	payload := resultPayload(t, result)
	errObj, ok := payload["error"].(map[string]any)
	if !ok {
		t.Fatalf("result has no error object: %v", payload)
	}
	if errObj["code"] != code {
		t.Errorf("error code = %v, want %v", errObj["code"], code)
	}
}

const extractableHTML = `<html><body><table>
<tr><td>Patient presents with chronic pelvic pain and muscle weakness</td></tr>
<tr><td>Electrical stimulation therapy applied for twenty minutes</td></tr>
</table></body></html>`

func TestHandleNotesExtract(t *testing.T) {
	h := NewHandlers(config.DefaultConfig(), nil)
	ctx := context.Background()

	tests := []struct {
		name       string
		args       map[string]any
		wantError  bool
		errorCode  string
		wantUsable bool
	}{
		{
			name:       "extract clinical table cells",
			args:       map[string]any{"html": extractableHTML},
			wantUsable: true,
		},
		{
			name:       "no clinical content yields sentinel",
			args:       map[string]any{"html": "<html><body><p>billing summary</p></body></html>"},
			wantUsable: false,
		},
		{
			name:      "empty html rejected",
			args:      map[string]any{"html": "   "},
			wantError: true,
			errorCode: "INVALID_REQUEST",
		},
		{
			name: "custom fallback keywords",
			args: map[string]any{
				"html":              "<table><tr><td>banana smoothie recipe with extra protein</td></tr></table>",
				"fallback_keywords": "banana, smoothie",
			},
			wantUsable: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := h.HandleNotesExtract(ctx, makeRequest(tt.args))
			if err != nil {
				t.Fatalf("handler returned error: %v", err)
			}
			if tt.wantError {
				if !result.IsError {
					t.Fatalf("expected error result, got success")
				}
				assertErrorCode(t, result, tt.errorCode)
				return
			}
			if result.IsError {
				t.Fatalf("expected success, got error result")
			}
			payload := resultPayload(t, result)
			if payload["usable"] != tt.wantUsable {
				t.Errorf("usable = %v, want %v", payload["usable"], tt.wantUsable)
			}
		})
	}
}

func TestHandleCodesParse(t *testing.T) {
	h := NewHandlers(config.DefaultConfig(), nil)
	ctx := context.Background()

	result, err := h.HandleCodesParse(ctx, makeRequest(map[string]any{
		"response_text": `Here are the codes: [{"cptCode": "99213", "modifier1": "25"}, {"code": "91122"}]`,
	}))
	if err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if result.IsError {
		t.Fatalf("expected success, got error result")
	}

	payload := resultPayload(t, result)
	if payload["count"].(float64) != 2 {
		t.Errorf("count = %v, want 2", payload["count"])
	}
	codes := payload["codes"].([]any)
	first := codes[0].(map[string]any)
	if first["code"] != "99213" {
		t.Errorf("first code = %v, want 99213", first["code"])
	}
}

func TestHandleCodesParseFailure(t *testing.T) {
	h := NewHandlers(config.DefaultConfig(), nil)

	result, err := h.HandleCodesParse(context.Background(), makeRequest(map[string]any{
		"response_text": "not json at all",
	}))
	if err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if !result.IsError {
		t.Fatalf("expected error result")
	}
	assertErrorCode(t, result, "PARSE_FAILURE")
}

func TestHandleCodesPredict(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.PromptDir = t.TempDir()
	svc := &scriptedService{replies: []string{
		`[{"code": "99213"}, {"code": "91122"}, {"code": "97110"}, {"code": "97032"}]`,
	}}
	h := NewHandlers(cfg, svc)

	notes := strings.Repeat("Patient reports pelvic pain improving with therapy. ", 3)
	result, err := h.HandleCodesPredict(context.Background(), makeRequest(map[string]any{
		"clinical_notes": notes,
	}))
	if err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if result.IsError {
		t.Fatalf("expected success, got error result")
	}

	payload := resultPayload(t, result)
	if payload["attempts"].(float64) != 1 {
		t.Errorf("attempts = %v, want 1", payload["attempts"])
	}
	if len(payload["codes"].([]any)) != 4 {
		t.Errorf("codes = %v, want 4 entries", payload["codes"])
	}
	if svc.calls != 1 {
		t.Errorf("service calls = %d, want 1", svc.calls)
	}
}

func TestHandleCodesPredictShortNotes(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.PromptDir = t.TempDir()
	svc := &scriptedService{replies: []string{"[]"}}
	h := NewHandlers(cfg, svc)

	result, err := h.HandleCodesPredict(context.Background(), makeRequest(map[string]any{
		"clinical_notes": "too short",
	}))
	if err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if !result.IsError {
		t.Fatalf("expected error result")
	}
	assertErrorCode(t, result, "INSUFFICIENT_INPUT")
	if svc.calls != 0 {
		t.Errorf("service calls = %d, want 0", svc.calls)
	}
}

func TestHandleManometryStatus(t *testing.T) {
	h := NewHandlers(config.DefaultConfig(), nil)
	ctx := context.Background()

	tests := []struct {
		name       string
		notes      string
		wantStatus string
	}{
		{"performed", "Anorectal manometry was performed without complication.", "performed"},
		{"deferred", "Anorectal manometry was deferred at patient request.", "deferred"},
		{"conflicting", "Manometry was performed. Later note: manometry was deferred.", "conflicting"},
		{"unknown", "Routine follow-up, no procedures documented.", "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := h.HandleManometryStatus(ctx, makeRequest(map[string]any{
				"clinical_notes": tt.notes,
			}))
			if err != nil {
				t.Fatalf("handler returned error: %v", err)
			}
			if result.IsError {
				t.Fatalf("expected success, got error result")
			}
			payload := resultPayload(t, result)
			if payload["status"] != tt.wantStatus {
				t.Errorf("status = %v, want %v", payload["status"], tt.wantStatus)
			}
		})
	}
}

func TestAllToolNames(t *testing.T) {
	names := AllToolNames()
	if len(names) != 4 {
		t.Fatalf("expected 4 tools, got %d: %v", len(names), names)
	}
	want := map[string]bool{
		"notes_extract": true, "codes_parse": true,
		"codes_predict": true, "manometry_status": true,
	}
	for _, name := range names {
		if !want[name] {
			t.Errorf("unexpected tool %q", name)
		}
	}
}
