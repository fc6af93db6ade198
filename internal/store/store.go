// File: internal/store/store.go
package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	json "github.com/json-iterator/go"
	"github.com/xeipuuv/gojsonschema"
	"go.uber.org/zap"

	"github.com/xkilldash9x/mimic-cli/api/schemas"
)

const (
	workflowFile   = "workflow.json"
	sequenceFile   = "actions.json"
	screenshotsDir = "screenshots"

	dirMode  = 0o750
	fileMode = 0o640
)

// workflowSchema is the wire contract for workflow.json. Bundles that fail it
// are rejected on load with every violation spelled out, so a hand-edited or
// truncated file surfaces as a configuration problem instead of a zero-value
// workflow.
const workflowSchema = `{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"type": "object",
	"required": ["id", "name", "steps"],
	"properties": {
		"id": {"type": "string", "minLength": 1},
		"name": {"type": "string", "minLength": 1},
		"description": {"type": "string"},
		"created_at": {"type": "string"},
		"steps": {
			"type": "array",
			"items": {
				"type": "object",
				"required": ["number"],
				"properties": {
					"number": {"type": "integer", "minimum": 0},
					"description": {"type": "string"},
					"url": {"type": "string"},
					"title": {"type": "string"},
					"screenshot_path": {"type": "string"}
				}
			}
		}
	}
}`

// Store persists workflow bundles on disk. Each workflow gets one directory
// under baseDir holding workflow.json, a screenshots/ directory with one PNG
// per step, and (after analysis) actions.json.
type Store struct {
	baseDir string
	log     *zap.Logger
}

// New creates a store rooted at baseDir. The directory is created lazily on
// first save.
func New(baseDir string, logger *zap.Logger) *Store {
	return &Store{
		baseDir: baseDir,
		log:     logger.Named("store"),
	}
}

// WorkflowDir returns the bundle directory for a workflow ID.
func (s *Store) WorkflowDir(id string) string {
	return filepath.Join(s.baseDir, id)
}

// SaveWorkflow writes the bundle: every step's screenshot as
// screenshots/step_NNN.png and the workflow itself as workflow.json with
// bundle-relative screenshot paths. Returns the bundle directory.
func (s *Store) SaveWorkflow(w *schemas.Workflow) (string, error) {
	if w == nil || w.ID == "" {
		return "", errors.New("store: workflow has no ID")
	}
	if len(w.Steps) == 0 {
		return "", errors.New("store: workflow has no steps")
	}

	dir := s.WorkflowDir(w.ID)
	shotsDir := filepath.Join(dir, screenshotsDir)
	if err := os.MkdirAll(shotsDir, dirMode); err != nil {
		return "", fmt.Errorf("store: failed to create bundle directory: %w", err)
	}

	// Persist a copy so the caller's step paths stay usable in memory.
	persisted := *w
	persisted.Steps = make([]schemas.Step, len(w.Steps))
	copy(persisted.Steps, w.Steps)

	for i := range persisted.Steps {
		step := &persisted.Steps[i]
		data := step.ImageBytes()
		if data == nil {
			continue
		}
		rel := filepath.Join(screenshotsDir, fmt.Sprintf("step_%03d.png", step.Number))
		if err := os.WriteFile(filepath.Join(dir, rel), data, fileMode); err != nil {
			return "", fmt.Errorf("store: failed to write screenshot for step %d: %w", step.Number, err)
		}
		step.ScreenshotPath = rel
	}

	encoded, err := json.MarshalIndent(&persisted, "", "  ")
	if err != nil {
		return "", fmt.Errorf("store: failed to encode workflow: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, workflowFile), encoded, fileMode); err != nil {
		return "", fmt.Errorf("store: failed to write %s: %w", workflowFile, err)
	}

	s.log.Info("Workflow bundle saved.",
		zap.String("id", w.ID),
		zap.String("dir", dir),
		zap.Int("steps", len(w.Steps)))
	return dir, nil
}

// LoadWorkflow reads and validates a bundle. Screenshot paths come back
// absolute so steps resolve regardless of the caller's working directory.
func (s *Store) LoadWorkflow(id string) (*schemas.Workflow, error) {
	dir := s.WorkflowDir(id)
	data, err := os.ReadFile(filepath.Join(dir, workflowFile))
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("store: workflow %q not found under %s", id, s.baseDir)
	}
	if err != nil {
		return nil, fmt.Errorf("store: failed to read workflow bundle: %w", err)
	}

	if err := validateWorkflowDocument(data); err != nil {
		return nil, err
	}

	var w schemas.Workflow
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("store: failed to decode %s: %w", workflowFile, err)
	}

	for i := range w.Steps {
		if p := w.Steps[i].ScreenshotPath; p != "" && !filepath.IsAbs(p) {
			w.Steps[i].ScreenshotPath = filepath.Join(dir, p)
		}
	}

	s.log.Debug("Workflow bundle loaded.",
		zap.String("id", id),
		zap.Int("steps", len(w.Steps)))
	return &w, nil
}

// SaveSequence writes the analyzed action sequence next to the workflow it
// came from. Returns the file path.
func (s *Store) SaveSequence(id string, seq *schemas.ActionSequence) (string, error) {
	if seq == nil {
		return "", errors.New("store: sequence is nil")
	}
	dir := s.WorkflowDir(id)
	if err := os.MkdirAll(dir, dirMode); err != nil {
		return "", fmt.Errorf("store: failed to create bundle directory: %w", err)
	}

	encoded, err := json.MarshalIndent(seq, "", "  ")
	if err != nil {
		return "", fmt.Errorf("store: failed to encode sequence: %w", err)
	}
	path := filepath.Join(dir, sequenceFile)
	if err := os.WriteFile(path, encoded, fileMode); err != nil {
		return "", fmt.Errorf("store: failed to write %s: %w", sequenceFile, err)
	}

	s.log.Info("Action sequence saved.",
		zap.String("id", id),
		zap.Int("actions", len(seq.Actions)))
	return path, nil
}

// LoadSequence reads a previously analyzed action sequence.
func (s *Store) LoadSequence(id string) (*schemas.ActionSequence, error) {
	path := filepath.Join(s.WorkflowDir(id), sequenceFile)
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("store: workflow %q has no analyzed sequence (run analyze first)", id)
	}
	if err != nil {
		return nil, fmt.Errorf("store: failed to read sequence: %w", err)
	}

	var seq schemas.ActionSequence
	if err := json.Unmarshal(data, &seq); err != nil {
		return nil, fmt.Errorf("store: failed to decode %s: %w", sequenceFile, err)
	}
	return &seq, nil
}

// validateWorkflowDocument checks raw workflow.json bytes against the bundle
// schema and reports every violation at once.
func validateWorkflowDocument(data []byte) error {
	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(workflowSchema),
		gojsonschema.NewBytesLoader(data),
	)
	if err != nil {
		return fmt.Errorf("store: workflow validation error: %w", err)
	}
	if result.Valid() {
		return nil
	}

	var sb strings.Builder
	for _, violation := range result.Errors() {
		fmt.Fprintf(&sb, "\n  - %s", violation)
	}
	return fmt.Errorf("store: workflow.json failed schema validation:%s", sb.String())
}
