package mcp

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/claimloop/ecwcoder/internal/coding"
	"github.com/claimloop/ecwcoder/internal/config"
	"github.com/claimloop/ecwcoder/internal/errors"
	"github.com/claimloop/ecwcoder/internal/notes"
	"github.com/claimloop/ecwcoder/internal/predict"
)

// Handlers holds dependencies for MCP tool handlers.
type Handlers struct {
	cfg     *config.Config
	service predict.Service
}

// NewHandlers creates a new Handlers instance. A nil service defers Bedrock
// client construction to the first codes_predict call.
func NewHandlers(cfg *config.Config, service predict.Service) *Handlers {
	return &Handlers{cfg: cfg, service: service}
}

// Request types for each tool

// NotesExtractRequest represents the arguments for notes_extract.
type NotesExtractRequest struct {
	HTML             string `json:"html"`
	FallbackKeywords string `json:"fallback_keywords,omitempty"`
}

// CodesParseRequest represents the arguments for codes_parse.
type CodesParseRequest struct {
	ResponseText string `json:"response_text"`
}

// CodesPredictRequest represents the arguments for codes_predict.
type CodesPredictRequest struct {
	ClinicalNotes    string `json:"clinical_notes"`
	InsurancePlan    string `json:"insurance_plan,omitempty"`
	MinExpectedCodes int    `json:"min_expected_codes,omitempty"`
	MaxRetries       int    `json:"max_retries,omitempty"`
}

// ManometryStatusRequest represents the arguments for manometry_status.
type ManometryStatusRequest struct {
	ClinicalNotes string `json:"clinical_notes"`
}

// HandleNotesExtract runs the HTML-to-text extraction.
func (h *Handlers) HandleNotesExtract(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[NotesExtractRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	if strings.TrimSpace(input.HTML) == "" {
		return errorResult(errors.NewInvalidRequest("html must not be empty")), nil
	}

	keywords := h.cfg.FallbackKeywords
	if input.FallbackKeywords != "" {
		keywords = splitCSV(input.FallbackKeywords)
	}

	text := notes.NewExtractor(keywords).Extract(input.HTML)
	return successResult(map[string]any{
		"clinical_notes": text,
		"usable":         text != notes.NoNotesSentinel,
		"chars":          len(text),
	})
}

// HandleCodesParse parses and normalizes a model reply.
func (h *Handlers) HandleCodesParse(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[CodesParseRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	entries, ok := coding.Parse(input.ResponseText)
	if !ok {
		return errorResult(errors.NewParseFailure("no recognizable coding payload in response text")), nil
	}

	return successResult(map[string]any{
		"codes":               coding.Normalize(entries),
		"count":               len(entries),
		"missing_code_values": coding.MissingCodeCount(entries),
	})
}

// HandleCodesPredict runs the full prediction loop against the model service.
func (h *Handlers) HandleCodesPredict(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[CodesPredictRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	service := h.service
	if service == nil {
		bedrock, err := predict.NewBedrockService(ctx, h.cfg.AWSRegion, h.cfg.ModelID, h.cfg.MaxTokens)
		if err != nil {
			return errorResult(errors.NewInternal(err)), nil
		}
		service = bedrock
	}

	plan := input.InsurancePlan
	if plan == "" {
		plan = h.cfg.InsurancePlan
	}
	maxRetries := input.MaxRetries
	if maxRetries <= 0 {
		maxRetries = h.cfg.MaxRetries
	}

	orchestrator := predict.NewOrchestrator(service, predict.Options{
		Template:         predict.LoadTemplate(h.cfg.PromptDir, plan),
		InsurancePlan:    plan,
		MinExpectedCodes: input.MinExpectedCodes,
		MaxRetries:       maxRetries,
	})

	result, err := orchestrator.PredictCodes(ctx, input.ClinicalNotes)
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(map[string]any{
		"codes":    coding.Normalize(result.Entries),
		"raw":      result.Raw,
		"attempts": result.Attempts,
	})
}

// HandleManometryStatus reports the manometry advisory for the notes.
func (h *Handlers) HandleManometryStatus(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ManometryStatusRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	if strings.TrimSpace(input.ClinicalNotes) == "" {
		return errorResult(errors.NewInvalidRequest("clinical_notes must not be empty")), nil
	}

	advisory := coding.CheckManometry(input.ClinicalNotes)
	return successResult(map[string]any{
		"status":         advisory.Status,
		"keyword":        advisory.Keyword,
		"recommendation": advisory.Recommendation(),
	})
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// errorResult converts an error into an MCP error result.
func errorResult(err error) *mcp.CallToolResult {
	var payload map[string]any

	if pipeErr, ok := err.(*errors.PipelineError); ok {
		errorObj := map[string]any{
			"code":    pipeErr.Code,
			"message": pipeErr.Message,
			"status":  pipeErr.Status,
		}
		// Only include details for non-internal errors to avoid leaking
		// sensitive info like file paths or transport errors
		if pipeErr.Code != errors.ErrInternal && pipeErr.Details != nil {
			errorObj["details"] = pipeErr.Details
		}
		payload = map[string]any{"error": errorObj}
	} else {
		payload = map[string]any{
			"error": map[string]any{
				"code":    "INTERNAL",
				"message": "an internal error occurred",
				"status":  500,
			},
		}
	}

	content, _ := json.Marshal(payload)
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: string(content)}},
		IsError: true,
	}
}

// successResult wraps data in a JSON tool result.
func successResult(data any) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultJSON(data)
}
