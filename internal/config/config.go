// Package config loads runtime configuration from a config.properties file.
//
// The file uses ini-style sections (DEFAULT, BROWSER, CLAIMS, BEDROCK,
// PREDICTION, EXTRACTION) matching the operator-facing layout used against the
// target EHR. Extraction heuristics (clinical markers, frame indicators,
// fallback keywords) are configuration data, not constants, so they can be
// tuned against a changing third-party DOM without a rebuild.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	// DEFAULT
	URL         string
	Username    string
	Password    string
	AWSRegion   string
	TargetDate  string
	PatientName string
	Env         string
	LogLevel    string

	// BROWSER
	Headless   bool
	Screenshot bool

	// CLAIMS
	ClaimID       string
	InsurancePlan string
	ICDCode       string

	// BEDROCK
	ModelID   string
	MaxTokens int

	// PREDICTION
	MaxRetries       int
	MinExpectedCodes int // 0 means derive from insurance plan
	PromptDir        string
	NotesFile        string

	// EXTRACTION
	ClinicalMarkers  []string
	FrameIndicators  []string
	FallbackKeywords []string

	// OUTPUT
	OutputDir string
}

// Default extraction heuristics, overridable via the EXTRACTION section.
var (
	defaultClinicalMarkers = []string{
		"Patient:", "HPI:", "PFPT", "Subjective:", "Assessment:",
		"Examination:", "Pelvic Pain", "physical therapy", "electrical stimulation",
	}
	defaultFrameIndicators  = []string{"prognote", "progress"}
	defaultFallbackKeywords = []string{
		"patient", "pelvic", "pain", "therapy",
		"stimulation", "examination", "assessment", "pfpt",
	}
)

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		AWSRegion:        "us-east-1",
		Env:              "development",
		LogLevel:         "info",
		Screenshot:       true,
		ClaimID:          "38939",
		InsurancePlan:    "Commercial",
		ICDCode:          "A42.1",
		ModelID:          "anthropic.claude-3-sonnet-20240229-v1:0",
		MaxTokens:        2000,
		MaxRetries:       3,
		PromptDir:        ".",
		NotesFile:        "notes.txt",
		ClinicalMarkers:  defaultClinicalMarkers,
		FrameIndicators:  defaultFrameIndicators,
		FallbackKeywords: defaultFallbackKeywords,
		OutputDir:        "runs",
	}
}

// Load reads configuration from the given config.properties path.
// A missing file yields the defaults; a malformed file is an error.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		path = "config.properties"
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("ini")
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	setString(v, "default.url", &cfg.URL)
	setString(v, "default.username", &cfg.Username)
	setString(v, "default.password", &cfg.Password)
	setString(v, "default.aws_region", &cfg.AWSRegion)
	setString(v, "default.target_date", &cfg.TargetDate)
	setString(v, "default.patient_name", &cfg.PatientName)
	setString(v, "default.env", &cfg.Env)
	setString(v, "default.log_level", &cfg.LogLevel)

	setBool(v, "browser.headless", &cfg.Headless)
	setBool(v, "browser.screenshot", &cfg.Screenshot)

	setString(v, "claims.claim_id", &cfg.ClaimID)
	setString(v, "claims.insurance_plan", &cfg.InsurancePlan)
	setString(v, "claims.icd_code", &cfg.ICDCode)

	setString(v, "bedrock.model_id", &cfg.ModelID)
	setInt(v, "bedrock.max_tokens", &cfg.MaxTokens)

	setInt(v, "prediction.max_retries", &cfg.MaxRetries)
	setInt(v, "prediction.min_expected_codes", &cfg.MinExpectedCodes)
	setString(v, "prediction.prompt_dir", &cfg.PromptDir)
	setString(v, "prediction.notes_file", &cfg.NotesFile)

	setList(v, "extraction.clinical_markers", &cfg.ClinicalMarkers)
	setList(v, "extraction.frame_indicators", &cfg.FrameIndicators)
	setList(v, "extraction.fallback_keywords", &cfg.FallbackKeywords)

	setString(v, "output.dir", &cfg.OutputDir)

	return cfg, nil
}

// MinCodesForPlan returns the minimum expected code count for the configured
// insurance plan. An explicit min_expected_codes wins; otherwise commercial
// plans expect 4 codes and all other plans 3.
func (c *Config) MinCodesForPlan() int {
	if c.MinExpectedCodes > 0 {
		return c.MinExpectedCodes
	}
	if strings.EqualFold(strings.TrimSpace(c.InsurancePlan), "commercial") {
		return 4
	}
	return 3
}

func setString(v *viper.Viper, key string, dst *string) {
	if v.IsSet(key) {
		*dst = strings.TrimSpace(v.GetString(key))
	}
}

func setBool(v *viper.Viper, key string, dst *bool) {
	if v.IsSet(key) {
		*dst = v.GetBool(key)
	}
}

func setInt(v *viper.Viper, key string, dst *int) {
	if v.IsSet(key) {
		*dst = v.GetInt(key)
	}
}

// setList parses a comma-separated value into a string slice, dropping empties.
func setList(v *viper.Viper, key string, dst *[]string) {
	if !v.IsSet(key) {
		return
	}
	parts := strings.Split(v.GetString(key), ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	if len(out) > 0 {
		*dst = out
	}
}
