// File: api/schemas/vision.go
package schemas

import "context"

// TransitionRequest carries one before/after screenshot pair to the vision
// model. Prompt text is composed by the caller; the client only owns
// transport.
type TransitionRequest struct {
	BeforeImage []byte // PNG bytes of the state before the action.
	AfterImage  []byte // PNG bytes of the state after the action.

	SystemPrompt string // Contract the model must follow.
	UserPrompt   string // Per-transition context (step description, position).
}

// VisionClient is the boundary to the multimodal model. Implementations own
// transport policy end to end (auth, rate limiting, per-call timeout); the
// inference engine only ever sees raw text or an error and converts either
// failure mode into a per-transition fallback.
type VisionClient interface {
	// AnalyzeTransition submits one screenshot pair and returns the model's
	// raw textual analysis, which is expected (but not guaranteed) to be the
	// JSON contract described by the inference prompts.
	AnalyzeTransition(ctx context.Context, req TransitionRequest) (string, error)

	// Model reports the model identifier used, for sequence metadata.
	Model() string
}
