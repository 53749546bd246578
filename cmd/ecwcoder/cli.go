package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/claimloop/ecwcoder/internal/browser"
	"github.com/claimloop/ecwcoder/internal/coding"
	"github.com/claimloop/ecwcoder/internal/config"
	"github.com/claimloop/ecwcoder/internal/errors"
	"github.com/claimloop/ecwcoder/internal/notes"
	"github.com/claimloop/ecwcoder/internal/predict"
	"github.com/claimloop/ecwcoder/internal/workflow"
)

// newCLIApp creates the CLI application with all commands.
func newCLIApp(cfg *config.Config) *cli.App {
	app := &cli.App{
		Name:    "ecwcoder",
		Usage:   "EHR claim coding automation",
		Version: Version,
		Commands: []*cli.Command{
			runCmd(cfg),
			extractCmd(cfg),
			predictCmd(cfg),
			parseCmd(),
			manometryCmd(),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

// runCmd creates the run command: the full browser-driven billing flow.
func runCmd(cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "run",
		Usage: "Run the full billing flow: login, open claim, extract notes, predict and populate codes",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "headless", Usage: "Run the browser headless (overrides config)"},
		},
		Action: func(c *cli.Context) error {
			ctx := context.Background()

			headless := cfg.Headless
			if c.IsSet("headless") {
				headless = c.Bool("headless")
			}

			chrome, err := browser.Launch(ctx, headless)
			if err != nil {
				return outputError(errors.NewInternal(err))
			}
			defer chrome.Close()

			service, err := predict.NewBedrockService(ctx, cfg.AWSRegion, cfg.ModelID, cfg.MaxTokens)
			if err != nil {
				return outputError(errors.NewInternal(err))
			}

			runner := workflow.NewRunner(cfg, chrome, service)
			if err := runner.Run(ctx); err != nil {
				return outputError(err)
			}
			return nil
		},
	}
}

// extractCmd creates the extract command: HTML in, clinical text out.
func extractCmd(cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:      "extract",
		Usage:     "Extract clinical note text from a progress-notes HTML file (or stdin)",
		ArgsUsage: "[html-file]",
		Action: func(c *cli.Context) error {
			html, err := readInput(c)
			if err != nil {
				return outputError(err)
			}
			if html == "" {
				return outputError(errors.NewInvalidRequest("no HTML input: pass a file or pipe via stdin"))
			}

			text := notes.NewExtractor(cfg.FallbackKeywords).Extract(html)
			return outputJSON(map[string]any{
				"clinical_notes": text,
				"usable":         text != notes.NoNotesSentinel,
				"chars":          len(text),
			})
		},
	}
}

// predictCmd creates the predict command: clinical notes in, codes out.
func predictCmd(cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:      "predict",
		Usage:     "Predict procedure codes for clinical notes via the model service",
		ArgsUsage: "[notes-file]",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "plan", Usage: "Insurance plan name (overrides config)"},
		},
		Action: func(c *cli.Context) error {
			notesText, err := readInput(c)
			if err != nil {
				return outputError(err)
			}
			if notesText == "" {
				text, ferr := notes.ReadFile(cfg.NotesFile)
				if ferr != nil {
					return outputError(errors.NewInvalidRequest("no notes input: pass a file, pipe via stdin, or configure notes_file"))
				}
				notesText = text
			}
			notesText = notes.Format(notesText)

			plan := cfg.InsurancePlan
			if c.String("plan") != "" {
				plan = c.String("plan")
			}

			ctx := context.Background()
			service, err := predict.NewBedrockService(ctx, cfg.AWSRegion, cfg.ModelID, cfg.MaxTokens)
			if err != nil {
				return outputError(errors.NewInternal(err))
			}

			orchestrator := predict.NewOrchestrator(service, predict.Options{
				Template:         predict.LoadTemplate(cfg.PromptDir, plan),
				InsurancePlan:    plan,
				MinExpectedCodes: cfg.MinExpectedCodes,
				MaxRetries:       cfg.MaxRetries,
			})
			result, err := orchestrator.PredictCodes(ctx, notesText)
			if err != nil {
				return outputError(err)
			}

			return outputJSON(map[string]any{
				"codes":    coding.Normalize(result.Entries),
				"raw":      result.Raw,
				"attempts": result.Attempts,
			})
		},
	}
}

// parseCmd creates the parse command: model reply in, normalized codes out.
func parseCmd() *cli.Command {
	return &cli.Command{
		Name:      "parse",
		Usage:     "Parse a raw model reply into normalized procedure code records",
		ArgsUsage: "[reply-file]",
		Action: func(c *cli.Context) error {
			text, err := readInput(c)
			if err != nil {
				return outputError(err)
			}

			entries, ok := coding.Parse(text)
			if !ok {
				return outputError(errors.NewParseFailure("no recognizable coding payload in input"))
			}

			return outputJSON(map[string]any{
				"codes":               coding.Normalize(entries),
				"count":               len(entries),
				"missing_code_values": coding.MissingCodeCount(entries),
			})
		},
	}
}

// manometryCmd creates the manometry command: the CPT 91122 advisory.
func manometryCmd() *cli.Command {
	return &cli.Command{
		Name:      "manometry",
		Usage:     "Report the anorectal manometry advisory for clinical notes",
		ArgsUsage: "[notes-file]",
		Action: func(c *cli.Context) error {
			text, err := readInput(c)
			if err != nil {
				return outputError(err)
			}
			if text == "" {
				return outputError(errors.NewInvalidRequest("no notes input: pass a file or pipe via stdin"))
			}

			advisory := coding.CheckManometry(text)
			return outputJSON(map[string]any{
				"status":         advisory.Status,
				"keyword":        advisory.Keyword,
				"recommendation": advisory.Recommendation(),
			})
		},
	}
}

// readInput reads from the positional file argument, falling back to stdin.
func readInput(c *cli.Context) (string, error) {
	if c.NArg() > 0 {
		data, err := os.ReadFile(c.Args().First())
		if err != nil {
			return "", errors.NewInvalidRequest(fmt.Sprintf("could not read %s: %v", c.Args().First(), err))
		}
		return strings.TrimSpace(string(data)), nil
	}
	if !stdinHasData() {
		return "", nil
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", errors.NewInternal(err)
	}
	return strings.TrimSpace(string(data)), nil
}

func outputJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func outputError(err error) error {
	if pipeErr, ok := err.(*errors.PipelineError); ok {
		return cli.Exit(fmt.Sprintf("[%s] %s", pipeErr.Code, pipeErr.Message), 1)
	}
	return cli.Exit(err.Error(), 1)
}

func stdinHasData() bool {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) == 0
}
