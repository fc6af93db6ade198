// File: internal/inference/engine.go
package inference

import (
	"context"
	"errors"
	"fmt"
	"time"

	json "github.com/json-iterator/go"
	"go.uber.org/zap"

	"github.com/xkilldash9x/mimic-cli/api/schemas"
)

// ProgressFunc is notified once per transition, synchronously, before the
// transition is processed. current is 1-based.
type ProgressFunc func(current, total int)

// Engine turns a recorded workflow into one canonical ActionSequence by
// analyzing every adjacent screenshot pair through the vision collaborator.
//
// Transitions are processed strictly in step order: the sequence must
// preserve recording order for script replay, so this loop must not be
// parallelized. Each Analyze call owns its sequence; independent engines may
// run concurrently.
type Engine struct {
	vision   schemas.VisionClient
	log      *zap.Logger
	progress ProgressFunc
}

// Option configures an Engine.
type Option func(*Engine)

// WithProgress installs a per-transition progress callback. A panicking
// callback is recovered and logged; it never aborts the run.
func WithProgress(fn ProgressFunc) Option {
	return func(e *Engine) { e.progress = fn }
}

// NewEngine builds an engine around the given vision collaborator.
func NewEngine(vision schemas.VisionClient, logger *zap.Logger, opts ...Option) (*Engine, error) {
	if vision == nil {
		return nil, errors.New("inference: vision client is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	e := &Engine{
		vision: vision,
		log:    logger.Named("inference"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Analyze processes all N-1 transitions of an N-step workflow and returns the
// resulting sequence together with a run classification. Every transition
// contributes at least one action: when inference cannot complete for a pair,
// a single fallback action (type unknown, confidence 0) takes its place, so
// no step pair is ever silently dropped.
//
// No engine-level timeout is imposed; latency bounds belong to the vision
// collaborator. A canceled context therefore does not abort the loop either:
// remaining collaborator calls fail fast and degrade to fallbacks, and the
// caller still receives a complete sequence.
func (e *Engine) Analyze(ctx context.Context, w *schemas.Workflow) (*schemas.ActionSequence, schemas.RunClassification, error) {
	if w == nil {
		return nil, "", errors.New("inference: workflow is nil")
	}
	total := w.TransitionCount()
	if total == 0 {
		return nil, "", fmt.Errorf("inference: workflow %q needs at least 2 steps, got %d", w.Name, len(w.Steps))
	}

	seq := &schemas.ActionSequence{
		WorkflowName:     w.Name,
		TotalTransitions: total,
		AnalyzedAt:       time.Now().UTC(),
		ModelUsed:        e.vision.Model(),
	}

	e.log.Info("Starting workflow analysis.",
		zap.String("workflow", w.Name),
		zap.Int("steps", len(w.Steps)),
		zap.Int("transitions", total),
	)

	fallbacks := 0
	for i := 0; i < total; i++ {
		e.notifyProgress(i+1, total)

		before := &w.Steps[i]
		after := &w.Steps[i+1]

		actions, fellBack := e.analyzeTransition(ctx, w, before, after, i+1, total)
		for _, a := range actions {
			seq.Append(a)
		}
		if fellBack {
			fallbacks++
		}
	}

	classification := classifyRun(fallbacks, total)
	e.log.Info("Workflow analysis complete.",
		zap.String("workflow", w.Name),
		zap.Int("actions", len(seq.Actions)),
		zap.Int("fallbacks", fallbacks),
		zap.String("classification", string(classification)),
	)
	return seq, classification, nil
}

// analyzeTransition handles one before/after pair. The bool reports whether
// the transition degraded to a fallback action.
func (e *Engine) analyzeTransition(ctx context.Context, w *schemas.Workflow, before, after *schemas.Step, current, total int) ([]schemas.Action, bool) {
	log := e.log.With(zap.Int("transition", current), zap.Int("of", total))

	beforeImg := before.ImageBytes()
	afterImg := after.ImageBytes()
	if len(beforeImg) == 0 || len(afterImg) == 0 {
		log.Warn("Screenshot data missing; synthesizing fallback without a vision call.",
			zap.Bool("before_present", len(beforeImg) > 0),
			zap.Bool("after_present", len(afterImg) > 0),
		)
		return []schemas.Action{fallbackAction(after, "missing screenshot data")}, true
	}

	req := schemas.TransitionRequest{
		BeforeImage:  beforeImg,
		AfterImage:   afterImg,
		SystemPrompt: analysisSystemPrompt,
		UserPrompt:   buildTransitionPrompt(w.Name, after.Description, current, total),
	}

	raw, err := e.vision.AnalyzeTransition(ctx, req)
	if err != nil {
		log.Warn("Vision collaborator failed; synthesizing fallback.", zap.Error(err))
		return []schemas.Action{fallbackAction(after, fmt.Sprintf("vision call failed: %v", err))}, true
	}

	payload, failure := ParseJSONResponse[VisionPayload](raw)
	if failure != nil {
		log.Warn("Vision response not parseable; synthesizing fallback.",
			zap.String("detail", failure.Detail),
		)
		return []schemas.Action{fallbackAction(after, fmt.Sprintf("unparseable response: %s", failure.Detail))}, true
	}
	if len(payload.Actions) == 0 {
		log.Warn("Vision response carried no action list; synthesizing fallback.")
		return []schemas.Action{fallbackAction(after, "response contained no recognizable actions")}, true
	}

	actions := e.buildActions(payload, log)
	if len(actions) == 0 {
		return []schemas.Action{fallbackAction(after, "no usable actions after resolution")}, true
	}
	return actions, false
}

// buildActions decodes each raw payload entry independently so that one
// malformed entry never discards its siblings.
func (e *Engine) buildActions(payload *VisionPayload, log *zap.Logger) []schemas.Action {
	actions := make([]schemas.Action, 0, len(payload.Actions))
	for idx, raw := range payload.Actions {
		var entry payloadAction
		if err := json.Unmarshal(raw, &entry); err != nil {
			log.Warn("Skipping malformed action entry.", zap.Int("entry", idx), zap.Error(err))
			continue
		}
		actions = append(actions, entry.toAction(raw))
	}
	return actions
}

// fallbackAction synthesizes the placeholder that stands in for one failed
// transition, carrying the failure cause in its reasoning.
func fallbackAction(after *schemas.Step, cause string) schemas.Action {
	desc := after.Description
	if desc == "" {
		desc = fmt.Sprintf("Transition to step %d", after.Number)
	}
	return schemas.Action{
		Type:        schemas.ActionUnknown,
		Confidence:  0,
		Description: desc,
		Reasoning:   cause,
	}
}

func (e *Engine) notifyProgress(current, total int) {
	if e.progress == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			e.log.Warn("Progress callback panicked; continuing analysis.", zap.Any("panic", r))
		}
	}()
	e.progress(current, total)
}

func classifyRun(fallbacks, total int) schemas.RunClassification {
	switch {
	case fallbacks == 0:
		return schemas.RunSuccess
	case fallbacks == total:
		return schemas.RunFailed
	default:
		return schemas.RunPartial
	}
}
