// File: api/schemas/workflow.go
package schemas

import (
	"os"
	"time"
)

// Workflow is one recorded session: an ordered set of captured steps plus the
// metadata needed to analyze and regenerate it later. It round-trips through
// the on-disk bundle (workflow.json next to a screenshots directory).
type Workflow struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	Steps       []Step    `json:"steps"`
}

// Step is a single captured moment: a screenshot plus what the user said they
// did to reach it. Step numbers start at 0 (the initial state before any
// action).
type Step struct {
	Number      int    `json:"number"`
	Description string `json:"description"`
	URL         string `json:"url,omitempty"`
	Title       string `json:"title,omitempty"`
	// ScreenshotPath is relative to the bundle directory when persisted, or
	// absolute once a bundle has been loaded.
	ScreenshotPath string `json:"screenshot_path,omitempty"`

	// pngData holds the capture in memory before the bundle is written.
	// It is never serialized.
	pngData []byte
}

// AttachImage stores freshly captured PNG bytes on the step.
func (s *Step) AttachImage(data []byte) {
	s.pngData = data
}

// ImageBytes returns the step's screenshot, preferring in-memory capture data
// over the persisted file. Returns nil when neither is available; the
// inference engine treats a nil result as a missing screenshot and falls back
// without calling the vision model.
func (s *Step) ImageBytes() []byte {
	if len(s.pngData) > 0 {
		return s.pngData
	}
	if s.ScreenshotPath == "" {
		return nil
	}
	data, err := os.ReadFile(s.ScreenshotPath)
	if err != nil {
		return nil
	}
	return data
}

// TransitionCount reports how many adjacent step pairs the workflow yields:
// always N-1 for N steps, zero for fewer than two steps.
func (w *Workflow) TransitionCount() int {
	if len(w.Steps) < 2 {
		return 0
	}
	return len(w.Steps) - 1
}
