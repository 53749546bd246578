// Package predict drives CPT code prediction against a hosted LLM endpoint,
// with retry and quality gating around its noisy, under-constrained output.
package predict

import "context"

// Service is the prediction capability: one fully rendered prompt in, the raw
// model text out. Implementations surface transport and auth failures as an
// error; the orchestrator treats an error or empty text as a failed attempt
// rather than a pipeline-halting fault.
type Service interface {
	Predict(ctx context.Context, prompt string) (string, error)
}
