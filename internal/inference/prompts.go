// File: internal/inference/prompts.go
package inference

import (
	"fmt"
	"strings"
)

// analysisSystemPrompt fixes the JSON contract for transition analysis. The
// parser and payload types are written against exactly this shape, so changes
// here must stay in sync with VisionPayload.
const analysisSystemPrompt = `You are a precise UI automation analyst. You receive two screenshots of the same application: BEFORE and AFTER a user performed one step of a recorded workflow, plus the user's own description of that step.

Identify the concrete UI action(s) the user performed to get from BEFORE to AFTER. Most transitions contain exactly one action; emit several only when the change clearly required them (for example: click a field, then type into it).

Respond with a single JSON object and nothing else:
{
  "actions": [
    {
      "action_type": "<see vocabulary below>",
      "description": "<one human-readable sentence>",
      "confidence": <0.0-1.0>,
      "target": {
        "description": "<what the element is>",
        "visual_description": "<what it looks like, for template matching>",
        "selectors": [
          {"strategy": "css|xpath|text|role|label|placeholder|test_id", "value": "...", "confidence": <0.0-1.0>}
        ],
        "coordinates": [x, y],
        "bounding_box": {"x": 0, "y": 0, "width": 0, "height": 0},
        "tag_name": "...", "text_content": "...", "element_type": "..."
      },
      "value": "<typed text / selected option / upload path>",
      "is_variable": false,
      "variable_name": null,
      "key": "<single key for press_key>",
      "modifiers": ["ctrl"],
      "scroll_amount": 0,
      "url": "<for navigate>",
      "reasoning": "<why you concluded this>"
    }
  ],
  "transition_summary": "<one sentence>"
}

Action vocabulary: click, double_click, right_click, hover, type, clear, select, check, uncheck, scroll_up, scroll_down, scroll_to, navigate, refresh, go_back, go_forward, wait, wait_for_element, press_key, hotkey, drag, upload, download, screenshot. Use "unknown" only when you truly cannot tell.

Selector rules:
- Propose every selector you can justify, ordered best first. Prefer stable attributes (id, data-testid, name) over positional CSS.
- Confidence reflects how likely the selector still resolves on a future run, not how sure you are of the action.
- Always include coordinates of the element's center when it is visible.

Variable rule: when the typed value is a credential, token, email address, or anything user-specific, set "is_variable": true, give a short snake_case "variable_name", and keep the observed text in "value".`

// buildTransitionPrompt assembles the user prompt for one screenshot pair.
// The images themselves travel separately as binary parts.
func buildTransitionPrompt(workflowName, userDescription string, stepNumber, totalSteps int) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Workflow: %q (step %d of %d)\n", workflowName, stepNumber, totalSteps)
	b.WriteString("The first image is the BEFORE state, the second the AFTER state.\n")

	desc := strings.TrimSpace(userDescription)
	if desc != "" {
		fmt.Fprintf(&b, "The user described this step as: %q\n", desc)
		b.WriteString("Trust the screenshots over the description when they disagree, but use the description to disambiguate.\n")
	} else {
		b.WriteString("The user gave no description for this step; infer the action purely from the visual change.\n")
	}

	b.WriteString("\nAnalyze the transition and respond with the JSON object only.")
	return b.String()
}
