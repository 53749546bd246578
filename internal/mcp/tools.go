package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
)

var notesExtractToolDef = mcp.NewTool("notes_extract",
	mcp.WithDescription("Extract plain clinical note text from progress-notes HTML. Falls back to a keyword-driven table cell scan when no structured sections are found."),
	mcp.WithString("html",
		mcp.Required(),
		mcp.Description("Raw HTML of the progress notes document or frame."),
	),
	mcp.WithString("fallback_keywords",
		mcp.Description("Comma-separated keywords for the table cell fallback scan. Defaults to the built-in clinical list."),
	),
)

var codesParseToolDef = mcp.NewTool("codes_parse",
	mcp.WithDescription("Parse a model reply into normalized procedure code records. Accepts a JSON array, or an object wrapping the array under cpt_codes or codes."),
	mcp.WithString("response_text",
		mcp.Required(),
		mcp.Description("Raw model reply text containing a JSON payload."),
	),
)

var codesPredictToolDef = mcp.NewTool("codes_predict",
	mcp.WithDescription("Predict procedure codes for clinical notes, with retry and quality gating against the configured minimum code count."),
	mcp.WithString("clinical_notes",
		mcp.Required(),
		mcp.Description("Plain-text clinical notes, at least 50 characters."),
	),
	mcp.WithString("insurance_plan",
		mcp.Description("Insurance plan name. Defaults to the configured plan."),
	),
	mcp.WithNumber("min_expected_codes",
		mcp.Description("Minimum code count the reply must reach. Defaults by plan: 4 for commercial, 3 otherwise."),
	),
	mcp.WithNumber("max_retries",
		mcp.Description("Prediction attempt ceiling. Defaults to the configured retry count."),
	),
)

var manometryStatusToolDef = mcp.NewTool("manometry_status",
	mcp.WithDescription("Report whether anorectal manometry was performed or deferred per the clinical notes, and whether CPT 91122 should be kept."),
	mcp.WithString("clinical_notes",
		mcp.Required(),
		mcp.Description("Plain-text clinical notes to scan."),
	),
)
