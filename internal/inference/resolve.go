// File: internal/inference/resolve.go
package inference

import (
	"strings"

	"github.com/xkilldash9x/mimic-cli/api/schemas"
)

// knownActionTypes indexes the closed vocabulary for direct hits.
var knownActionTypes = func() map[string]schemas.ActionType {
	m := make(map[string]schemas.ActionType, len(schemas.KnownActionTypes))
	for _, at := range schemas.KnownActionTypes {
		m[string(at)] = at
	}
	return m
}()

// actionTypeSynonyms folds the verbs vision models actually emit onto the
// canonical vocabulary. Keys are post-normalization (lowercase, underscores).
var actionTypeSynonyms = map[string]schemas.ActionType{
	// Typing
	"input":      schemas.ActionTypeText,
	"fill":       schemas.ActionTypeText,
	"enter_text": schemas.ActionTypeText,
	"enter":      schemas.ActionTypeText,
	"write":      schemas.ActionTypeText,

	// Clicking
	"submit":        schemas.ActionClick,
	"press":         schemas.ActionClick,
	"tap":           schemas.ActionClick,
	"dblclick":      schemas.ActionDoubleClick,
	"doubleclick":   schemas.ActionDoubleClick,
	"rightclick":    schemas.ActionRightClick,
	"context_click": schemas.ActionRightClick,

	// Navigation
	"goto":    schemas.ActionNavigate,
	"url":     schemas.ActionNavigate,
	"open":    schemas.ActionNavigate,
	"visit":   schemas.ActionNavigate,
	"back":    schemas.ActionGoBack,
	"forward": schemas.ActionGoForward,
	"reload":  schemas.ActionRefresh,

	// Scrolling. A bare scroll verb with no direction maps to scroll_down;
	// carried convention from recorded corpora, not an inference about intent.
	"scroll":      schemas.ActionScrollDown,
	"swipe":       schemas.ActionScrollDown,
	"scroll_into": schemas.ActionScrollTo,

	// Keyboard
	"keypress":  schemas.ActionPressKey,
	"key":       schemas.ActionPressKey,
	"shortcut":  schemas.ActionHotkey,
	"keycombo":  schemas.ActionHotkey,
	"key_combo": schemas.ActionHotkey,

	// Pointer
	"mouseover":     schemas.ActionHover,
	"mouse_over":    schemas.ActionHover,
	"drag_and_drop": schemas.ActionDrag,
	"dnd":           schemas.ActionDrag,

	// Forms
	"select_option": schemas.ActionSelect,
	"choose":        schemas.ActionSelect,
	"pick":          schemas.ActionSelect,
	"tick":          schemas.ActionCheck,
	"untick":        schemas.ActionUncheck,
	"file_upload":   schemas.ActionUpload,
	"attach":        schemas.ActionUpload,

	// Waiting
	"pause": schemas.ActionWait,
	"sleep": schemas.ActionWait,
	"delay": schemas.ActionWait,
}

// selectorStrategySynonyms maps the strategy spellings models produce onto the
// canonical set. Canonical members themselves resolve via direct comparison.
var selectorStrategySynonyms = map[string]schemas.SelectorStrategy{
	"testid":       schemas.StrategyTestID,
	"data_testid":  schemas.StrategyTestID,
	"test_id":      schemas.StrategyTestID,
	"selector":     schemas.StrategyCSS,
	"query":        schemas.StrategyCSS,
	"css_selector": schemas.StrategyCSS,
	"path":         schemas.StrategyXPath,
	"link_text":    schemas.StrategyText,
	"visible_text": schemas.StrategyText,
	"content":      schemas.StrategyText,
	"aria_role":    schemas.StrategyRole,
	"aria_label":   schemas.StrategyLabel,
	"for":          schemas.StrategyLabel,
	"hint":         schemas.StrategyPlaceholder,
	"point":        schemas.StrategyCoordinates,
	"position":     schemas.StrategyCoordinates,
	"coord":        schemas.StrategyCoordinates,
	"coords":       schemas.StrategyCoordinates,
	"xy":           schemas.StrategyCoordinates,
}

var knownStrategies = map[string]schemas.SelectorStrategy{
	string(schemas.StrategyCSS):         schemas.StrategyCSS,
	string(schemas.StrategyXPath):       schemas.StrategyXPath,
	string(schemas.StrategyText):        schemas.StrategyText,
	string(schemas.StrategyRole):        schemas.StrategyRole,
	string(schemas.StrategyLabel):       schemas.StrategyLabel,
	string(schemas.StrategyPlaceholder): schemas.StrategyPlaceholder,
	string(schemas.StrategyTestID):      schemas.StrategyTestID,
	string(schemas.StrategyCoordinates): schemas.StrategyCoordinates,
}

// normalizeToken lowercases, trims, and folds separators so that
// "Double-Click", "double click" and "double_click" all compare equal.
func normalizeToken(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, " ", "_")
	return s
}

// ResolveActionType maps a loosely-typed action name onto the canonical
// vocabulary. Unrecognized input resolves to ActionUnknown; this function
// never fails.
func ResolveActionType(s string) schemas.ActionType {
	token := normalizeToken(s)
	if token == "" {
		return schemas.ActionUnknown
	}
	if at, ok := knownActionTypes[token]; ok {
		return at
	}
	if at, ok := actionTypeSynonyms[token]; ok {
		return at
	}
	return schemas.ActionUnknown
}

// ResolveSelectorStrategy maps a loosely-typed strategy name onto the
// canonical set. Unrecognized input defaults to the css strategy (the most
// broadly usable one); the caller-supplied confidence is left untouched.
func ResolveSelectorStrategy(s string) schemas.SelectorStrategy {
	token := normalizeToken(s)
	if st, ok := knownStrategies[token]; ok {
		return st
	}
	if st, ok := selectorStrategySynonyms[token]; ok {
		return st
	}
	return schemas.StrategyCSS
}
