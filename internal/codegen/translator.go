// File: internal/codegen/translator.go

package codegen

import (
	"fmt"
	"strings"

	"github.com/xkilldash9x/mimic-cli/api/schemas"
)

// Selector translation is model-specific: each execution model has its own
// locator syntax and its own set of strategies it simply cannot express.
// Translation therefore returns (locator, ok) pairs and leaves the fallback
// decision to the generator, which knows what else the target carries
// (coordinates, description text).

// playwrightLocator maps a selector onto Playwright's engine-prefixed string
// syntax. CSS is the implicit default engine and stays bare; everything else
// gets its engine prefix. Coordinate pseudo-selectors have no locator form.
func playwrightLocator(sel *schemas.Selector) (string, bool) {
	if sel == nil || sel.Value == "" {
		return "", false
	}
	switch sel.Strategy {
	case schemas.StrategyCSS:
		return sel.Value, true
	case schemas.StrategyXPath:
		return "xpath=" + sel.Value, true
	case schemas.StrategyText:
		return "text=" + sel.Value, true
	case schemas.StrategyRole:
		return "role=" + sel.Value, true
	case schemas.StrategyLabel:
		return "label=" + sel.Value, true
	case schemas.StrategyPlaceholder:
		return "placeholder=" + sel.Value, true
	case schemas.StrategyTestID:
		return "data-testid=" + sel.Value, true
	case schemas.StrategyCoordinates:
		return "", false
	default:
		// Unrecognized strategies read best as raw CSS.
		return sel.Value, true
	}
}

// seleniumLocator is a (By constant, value) pair as used by
// driver.find_element.
type seleniumLocator struct {
	By    string
	Value string
}

func (l seleniumLocator) args() string {
	return l.By + ", " + pyString(l.Value)
}

// seleniumLocatorFor maps a selector onto WebDriver's By-based API. Semantic
// strategies without a native By are lowered to CSS attribute selectors so
// the locator still points at the same element.
func seleniumLocatorFor(sel *schemas.Selector) (seleniumLocator, bool) {
	if sel == nil || sel.Value == "" {
		return seleniumLocator{}, false
	}
	switch sel.Strategy {
	case schemas.StrategyCSS:
		return seleniumLocator{"By.CSS_SELECTOR", sel.Value}, true
	case schemas.StrategyXPath:
		return seleniumLocator{"By.XPATH", sel.Value}, true
	case schemas.StrategyText:
		return seleniumLocator{"By.LINK_TEXT", sel.Value}, true
	case schemas.StrategyLabel:
		return seleniumLocator{"By.NAME", sel.Value}, true
	case schemas.StrategyRole:
		return seleniumLocator{"By.CSS_SELECTOR", fmt.Sprintf("[role=%q]", sel.Value)}, true
	case schemas.StrategyPlaceholder:
		return seleniumLocator{"By.CSS_SELECTOR", fmt.Sprintf("[placeholder=%q]", sel.Value)}, true
	case schemas.StrategyTestID:
		return seleniumLocator{"By.CSS_SELECTOR", fmt.Sprintf("[data-testid=%q]", sel.Value)}, true
	case schemas.StrategyCoordinates:
		return seleniumLocator{}, false
	default:
		return seleniumLocator{"By.CSS_SELECTOR", sel.Value}, true
	}
}

// templateName derives a screenshot-template filename stem from an element
// description for the coordinate model's image fallback: lowercase, every
// non-alphanumeric collapsed to an underscore, capped at 20 characters.
func templateName(desc string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(desc) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		} else {
			b.WriteRune('_')
		}
	}
	s := b.String()
	if len(s) > 20 {
		s = s[:20]
	}
	if s == "" {
		s = "element"
	}
	return s
}

// targetPoint returns the concrete point a target carries: explicit
// coordinates first, else the bounding-box center.
func targetPoint(t *schemas.ElementTarget) *schemas.Point {
	if t == nil {
		return nil
	}
	if t.Coordinates != nil {
		return t.Coordinates
	}
	if t.BoundingBox != nil {
		return &schemas.Point{
			X: t.BoundingBox.X + t.BoundingBox.Width/2,
			Y: t.BoundingBox.Y + t.BoundingBox.Height/2,
		}
	}
	return nil
}

// targetDescription returns the best human label a target carries, for
// comments and image-template names.
func targetDescription(t *schemas.ElementTarget) string {
	if t == nil {
		return ""
	}
	if t.Description != "" {
		return t.Description
	}
	if t.TextContent != "" {
		return t.TextContent
	}
	return t.VisualDescription
}
