package predict

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
)

// notesPlaceholder marks where the clinical notes are substituted into a
// prompt template.
const notesPlaceholder = "{notes}"

// genericPlanPhrase appears in the shared prompt.txt and is rewritten to the
// configured plan when no plan-specific template exists.
const genericPlanPhrase = "Commercial or Medicare plan"

const defaultPromptTemplate = `
You are a medical coding expert. Analyze the following clinical notes and predict appropriate CPT codes with modifiers.

Rules:
1. Return only valid CPT codes that match the documented services
2. Include appropriate modifiers (25 for E/M with procedure, 59 for distinct procedures, etc.)
3. Return JSON format with the structure below
4. Limit to maximum 6 CPT codes
5. Focus on procedures, evaluations, and treatments documented

Return JSON in this exact format:
[
  {
    "code": "99213",
    "modifier1": "25",
    "modifier2": "",
    "description": "Office visit, established patient, level 3"
  }
]

Clinical Notes:
{notes}

JSON Response:
`

// DefaultTemplate returns the built-in prediction prompt.
func DefaultTemplate() string {
	return defaultPromptTemplate
}

// LoadTemplate resolves the prompt template for an insurance plan. It prefers
// prompt_<plan>.txt in dir, then the generic prompt.txt with the plan phrase
// rewritten, then the built-in default.
func LoadTemplate(dir, insurancePlan string) string {
	if insurancePlan != "" {
		specific := filepath.Join(dir, "prompt_"+strings.ToLower(insurancePlan)+".txt")
		if data, err := os.ReadFile(specific); err == nil {
			log.Debug().Str("path", specific).Msg("loaded plan-specific prompt template")
			return string(data)
		}
	}
	generic := filepath.Join(dir, "prompt.txt")
	if data, err := os.ReadFile(generic); err == nil {
		template := string(data)
		if insurancePlan != "" {
			template = strings.ReplaceAll(template, genericPlanPhrase, insurancePlan+" plan")
		}
		log.Debug().Str("path", generic).Msg("loaded generic prompt template")
		return template
	}
	log.Debug().Msg("no prompt file found, using built-in template")
	return defaultPromptTemplate
}

// RenderPrompt substitutes the clinical notes into a template.
func RenderPrompt(template, notes string) string {
	return strings.ReplaceAll(template, notesPlaceholder, notes)
}

func missingCodeSuffix(missing int) string {
	return fmt.Sprintf("\n\nCRITICAL: %d CPT entries are missing the 'code' field. You MUST include valid CPT code numbers (like 99213, 91122, etc.) in the 'code' field for each entry. Do not leave any 'code' fields empty or null.", missing)
}

func minCodesSuffix(insurancePlan string, minExpected, got int) string {
	return fmt.Sprintf("\n\nIMPORTANT: For %s plan, you MUST provide at least %d CPT codes. Always include 99213 for office visit. If you only provided %d codes, please add the missing codes.", insurancePlan, minExpected, got)
}
