// File: api/schemas/actions.go
package schemas

import (
	"time"
)

// -- Selector Schemas --

// SelectorStrategy identifies how a UI element is located on a page or screen.
// The vocabulary is closed; anything a model invents outside of it is folded
// onto a canonical member before it reaches this type.
type SelectorStrategy string

const (
	StrategyCSS         SelectorStrategy = "css"         // CSS selector query.
	StrategyXPath       SelectorStrategy = "xpath"       // XPath expression.
	StrategyText        SelectorStrategy = "text"        // Visible text match.
	StrategyRole        SelectorStrategy = "role"        // Accessibility role.
	StrategyLabel       SelectorStrategy = "label"       // Associated label text.
	StrategyPlaceholder SelectorStrategy = "placeholder" // Input placeholder text.
	StrategyTestID      SelectorStrategy = "test_id"     // data-testid style test hook.
	StrategyCoordinates SelectorStrategy = "coordinates" // Raw screen coordinates.
)

// Selector is a single way of locating an element, scored by the model's
// confidence that it will still resolve at replay time.
type Selector struct {
	Strategy   SelectorStrategy `json:"strategy"`
	Value      string           `json:"value"`
	Confidence float64          `json:"confidence"` // Always within [0,1].
}

// NewSelector builds a Selector with the confidence clamped into [0,1].
func NewSelector(strategy SelectorStrategy, value string, confidence float64) Selector {
	return Selector{
		Strategy:   strategy,
		Value:      value,
		Confidence: ClampConfidence(confidence),
	}
}

// ClampConfidence forces a confidence score into the [0,1] range.
func ClampConfidence(c float64) float64 {
	if c < 0 {
		return 0
	}
	if c > 1 {
		return 1
	}
	return c
}

// Point is an absolute screen or page coordinate.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Rect is an axis-aligned bounding box in page coordinates.
type Rect struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// ElementTarget describes the element an action operates on, carrying every
// locator the model proposed plus whatever visual context it extracted.
// Selectors preserve insertion order; that order is the tie-breaker when
// confidences collide.
type ElementTarget struct {
	Description       string     `json:"description"`
	VisualDescription string     `json:"visual_description,omitempty"`
	Selectors         []Selector `json:"selectors,omitempty"`
	Coordinates       *Point     `json:"coordinates,omitempty"`
	BoundingBox       *Rect      `json:"bounding_box,omitempty"`
	TagName           string     `json:"tag_name,omitempty"`
	TextContent       string     `json:"text_content,omitempty"`
	ElementType       string     `json:"element_type,omitempty"`
}

// AddSelector appends a selector, clamping its confidence.
func (t *ElementTarget) AddSelector(strategy SelectorStrategy, value string, confidence float64) {
	t.Selectors = append(t.Selectors, NewSelector(strategy, value, confidence))
}

// PrimarySelector returns the highest-confidence selector. A tie goes to the
// earliest-inserted selector (strict greater-than scan keeps it stable).
// Returns nil when the target carries no selectors at all.
func (t *ElementTarget) PrimarySelector() *Selector {
	if t == nil || len(t.Selectors) == 0 {
		return nil
	}
	best := 0
	for i := 1; i < len(t.Selectors); i++ {
		if t.Selectors[i].Confidence > t.Selectors[best].Confidence {
			best = i
		}
	}
	return &t.Selectors[best]
}

// -- Action Schemas --

// ActionType enumerates every action the inference pipeline can emit.
// Values are the wire vocabulary the vision model is instructed to use.
type ActionType string

const (
	// -- Pointer interactions --
	ActionClick       ActionType = "click"
	ActionDoubleClick ActionType = "double_click"
	ActionRightClick  ActionType = "right_click"
	ActionHover       ActionType = "hover"
	ActionDrag        ActionType = "drag"

	// -- Text and form input --
	ActionTypeText ActionType = "type" // "ActionType" itself is the enum type name, hence the suffix.
	ActionClear    ActionType = "clear"
	ActionSelect   ActionType = "select"
	ActionCheck    ActionType = "check"
	ActionUncheck  ActionType = "uncheck"
	ActionUpload   ActionType = "upload"

	// -- Scrolling --
	ActionScrollUp   ActionType = "scroll_up"
	ActionScrollDown ActionType = "scroll_down"
	ActionScrollTo   ActionType = "scroll_to"

	// -- Navigation --
	ActionNavigate  ActionType = "navigate"
	ActionRefresh   ActionType = "refresh"
	ActionGoBack    ActionType = "go_back"
	ActionGoForward ActionType = "go_forward"

	// -- Keyboard --
	ActionPressKey ActionType = "press_key"
	ActionHotkey   ActionType = "hotkey"

	// -- Waiting --
	ActionWait           ActionType = "wait"
	ActionWaitForElement ActionType = "wait_for_element"

	// -- Miscellaneous --
	ActionDownload   ActionType = "download"
	ActionScreenshot ActionType = "screenshot"

	// ActionUnknown is the graceful-degradation member: unresolvable inputs
	// land here instead of failing the pipeline.
	ActionUnknown ActionType = "unknown"
)

// KnownActionTypes lists the full closed vocabulary, unknown included.
// The resolver uses it for direct hits before consulting synonyms.
var KnownActionTypes = []ActionType{
	ActionClick, ActionDoubleClick, ActionRightClick, ActionHover, ActionDrag,
	ActionTypeText, ActionClear, ActionSelect, ActionCheck, ActionUncheck, ActionUpload,
	ActionScrollUp, ActionScrollDown, ActionScrollTo,
	ActionNavigate, ActionRefresh, ActionGoBack, ActionGoForward,
	ActionPressKey, ActionHotkey,
	ActionWait, ActionWaitForElement,
	ActionDownload, ActionScreenshot,
	ActionUnknown,
}

// Action is one canonical, typed record of something the user did between two
// captured screenshots. Instances are owned exclusively by their sequence;
// the optional target is owned exclusively by the action.
type Action struct {
	Type     ActionType `json:"action_type"`
	Sequence int        `json:"sequence"` // 1-based position, assigned by ActionSequence.Append.

	Target *ElementTarget `json:"target,omitempty"`

	// Value carries typed text, a selected option, or an upload path.
	Value string `json:"value,omitempty"`
	// IsVariable marks the value as run-time parameterized (credentials and
	// the like); generators then emit a variable reference, never the literal.
	IsVariable   bool   `json:"is_variable,omitempty"`
	VariableName string `json:"variable_name,omitempty"`

	Key       string   `json:"key,omitempty"`       // Single key for press_key.
	Modifiers []string `json:"modifiers,omitempty"` // Modifier chain for hotkey.

	ScrollAmount int    `json:"scroll_amount,omitempty"`
	URL          string `json:"url,omitempty"`

	DragStart *Point `json:"drag_start,omitempty"`
	DragEnd   *Point `json:"drag_end,omitempty"`

	Confidence float64 `json:"confidence"` // Always within [0,1].

	Preconditions  []string `json:"preconditions,omitempty"`
	Postconditions []string `json:"postconditions,omitempty"`

	Description string `json:"description"`
	Reasoning   string `json:"reasoning,omitempty"`

	// RawAnalysis is the untouched model output for this action. It is
	// schema-less passthrough; nothing downstream inspects its shape.
	RawAnalysis map[string]any `json:"raw_analysis,omitempty"`
}

// Parameter tracks one run-time variable discovered during analysis, such as
// a password the generated script must prompt for instead of hard-coding.
type Parameter struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	// Sequence is the sequence number of the action that introduced the
	// parameter.
	Sequence int `json:"action_sequence"`
}

// ActionSequence is the complete, ordered result of analyzing one workflow.
// Appending is the only sanctioned mutation; it keeps sequence numbers dense
// (1..N, no gaps) regardless of how many upstream transitions failed.
type ActionSequence struct {
	WorkflowName     string      `json:"workflow_name"`
	Actions          []Action    `json:"actions"`
	Parameters       []Parameter `json:"parameters,omitempty"`
	TotalTransitions int         `json:"total_transitions"`
	AnalyzedAt       time.Time   `json:"analyzed_at"`
	ModelUsed        string      `json:"model_used,omitempty"`
}

// Append adds an action, renumbering it to len(actions)+1 and registering a
// parameter for any variable-bound action whose name is not yet tracked.
func (s *ActionSequence) Append(a Action) {
	a.Sequence = len(s.Actions) + 1
	a.Confidence = ClampConfidence(a.Confidence)
	if a.IsVariable && a.VariableName != "" && !s.hasParameter(a.VariableName) {
		s.Parameters = append(s.Parameters, Parameter{
			Name:        a.VariableName,
			Description: a.Description,
			Sequence:    a.Sequence,
		})
	}
	s.Actions = append(s.Actions, a)
}

func (s *ActionSequence) hasParameter(name string) bool {
	for _, p := range s.Parameters {
		if p.Name == name {
			return true
		}
	}
	return false
}

// VariableNames returns tracked parameter names in first-seen order.
func (s *ActionSequence) VariableNames() []string {
	names := make([]string, 0, len(s.Parameters))
	for _, p := range s.Parameters {
		names = append(names, p.Name)
	}
	return names
}

// -- Run Classification --

// RunClassification summarizes how an analysis run fared. It is reporting
// metadata only and never alters the sequence itself.
type RunClassification string

const (
	RunSuccess RunClassification = "success" // Every transition inferred cleanly.
	RunPartial RunClassification = "partial" // Some transitions fell back.
	RunFailed  RunClassification = "failed"  // Every transition fell back.
)
