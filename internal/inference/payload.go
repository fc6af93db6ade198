// File: internal/inference/payload.go
package inference

import (
	"math"

	json "github.com/json-iterator/go"

	"github.com/xkilldash9x/mimic-cli/api/schemas"
)

// VisionPayload is the JSON contract the analysis prompts instruct the model
// to emit for one screenshot transition. Action entries stay raw here so that
// one malformed entry cannot poison its siblings; each is decoded individually.
type VisionPayload struct {
	Actions           []json.RawMessage `json:"actions"`
	TransitionSummary string            `json:"transition_summary,omitempty"`
}

// payloadAction mirrors one entry of the "actions" array as loosely as the
// models produce it. Everything is optional; conversion applies defaults.
type payloadAction struct {
	ActionType     string         `json:"action_type"`
	Description    string         `json:"description"`
	Confidence     float64        `json:"confidence"`
	Target         *payloadTarget `json:"target"`
	Value          string         `json:"value"`
	IsVariable     bool           `json:"is_variable"`
	VariableName   string         `json:"variable_name"`
	Key            string         `json:"key"`
	Modifiers      []string       `json:"modifiers"`
	ScrollAmount   int            `json:"scroll_amount"`
	URL            string         `json:"url"`
	DragStart      []float64      `json:"drag_start"`
	DragEnd        []float64      `json:"drag_end"`
	Preconditions  []string       `json:"preconditions"`
	Postconditions []string       `json:"postconditions"`
	Reasoning      string         `json:"reasoning"`
}

// payloadTarget mirrors the nested "target" object. Coordinates arrive as an
// [x, y] array, the form models reliably produce.
type payloadTarget struct {
	Description       string            `json:"description"`
	VisualDescription string            `json:"visual_description"`
	Selectors         []payloadSelector `json:"selectors"`
	Coordinates       []float64         `json:"coordinates"`
	BoundingBox       *schemas.Rect     `json:"bounding_box"`
	TagName           string            `json:"tag_name"`
	TextContent       string            `json:"text_content"`
	ElementType       string            `json:"element_type"`
}

type payloadSelector struct {
	Strategy   string  `json:"strategy"`
	Value      string  `json:"value"`
	Confidence float64 `json:"confidence"`
}

// toAction converts a decoded entry into a canonical Action. Loose fields
// degrade to defaults; the raw entry rides along untouched as RawAnalysis.
func (p *payloadAction) toAction(raw json.RawMessage) schemas.Action {
	a := schemas.Action{
		Type:           ResolveActionType(p.ActionType),
		Target:         p.Target.toTarget(),
		Value:          p.Value,
		IsVariable:     p.IsVariable,
		VariableName:   p.VariableName,
		Key:            p.Key,
		Modifiers:      p.Modifiers,
		ScrollAmount:   p.ScrollAmount,
		URL:            p.URL,
		DragStart:      pointFromSlice(p.DragStart),
		DragEnd:        pointFromSlice(p.DragEnd),
		Confidence:     schemas.ClampConfidence(p.Confidence),
		Preconditions:  p.Preconditions,
		Postconditions: p.Postconditions,
		Description:    p.Description,
		Reasoning:      p.Reasoning,
	}

	var analysis map[string]any
	if err := json.Unmarshal(raw, &analysis); err == nil {
		a.RawAnalysis = analysis
	}
	return a
}

// toTarget converts the nested target, resolving every proposed selector's
// strategy and clamping its confidence. Nil in, nil out.
func (p *payloadTarget) toTarget() *schemas.ElementTarget {
	if p == nil {
		return nil
	}
	t := &schemas.ElementTarget{
		Description:       p.Description,
		VisualDescription: p.VisualDescription,
		Coordinates:       pointFromSlice(p.Coordinates),
		BoundingBox:       p.BoundingBox,
		TagName:           p.TagName,
		TextContent:       p.TextContent,
		ElementType:       p.ElementType,
	}
	for _, s := range p.Selectors {
		if s.Value == "" {
			continue
		}
		t.AddSelector(ResolveSelectorStrategy(s.Strategy), s.Value, s.Confidence)
	}
	return t
}

// pointFromSlice interprets an [x, y] array, rounding fractional pixels.
// Anything other than exactly two elements is treated as absent.
func pointFromSlice(v []float64) *schemas.Point {
	if len(v) != 2 {
		return nil
	}
	return &schemas.Point{
		X: int(math.Round(v[0])),
		Y: int(math.Round(v[1])),
	}
}
