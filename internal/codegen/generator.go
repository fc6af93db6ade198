// File: internal/codegen/generator.go

// Package codegen turns canonical action sequences into runnable automation
// scripts. Three execution models are supported: asynchronous in-browser
// scripting (Playwright), synchronous WebDriver scripting (Selenium), and
// OS-level coordinate scripting (PyAutoGUI). All targets emit Python source.
package codegen

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xkilldash9x/mimic-cli/api/schemas"
)

// Generator is the shared contract of all execution-model backends.
//
// Generate is total: it accepts any sequence, degrades unsupported action
// types to inline comments, and always returns non-empty, syntactically valid
// source. That is why it returns only a string; generation failure is a
// contract violation, not an error state.
type Generator interface {
	// Name returns the registry key of the backend.
	Name() string
	// Description returns a one-line human description.
	Description() string
	// Generate renders the complete script for the sequence.
	Generate(seq *schemas.ActionSequence) string
	// Save writes source to path, creating parent directories, and returns
	// the path written.
	Save(source, path string) (string, error)
}

// Options carries per-generator settings. The registry merges caller
// overrides onto the framework defaults before construction, so generators
// only ever see the final view.
type Options map[string]any

// merged returns a copy of base with overrides applied on top.
func (o Options) merged(overrides Options) Options {
	result := make(Options, len(o)+len(overrides))
	for k, v := range o {
		result[k] = v
	}
	for k, v := range overrides {
		result[k] = v
	}
	return result
}

// Bool reads a boolean option, tolerating absence and foreign types.
func (o Options) Bool(key string, def bool) bool {
	if v, ok := o[key].(bool); ok {
		return v
	}
	return def
}

// String reads a string option.
func (o Options) String(key, def string) string {
	if v, ok := o[key].(string); ok && v != "" {
		return v
	}
	return def
}

// Int reads an integer option. JSON round-trips deliver numbers as float64,
// so both forms are accepted.
func (o Options) Int(key string, def int) int {
	switch v := o[key].(type) {
	case int:
		return v
	case float64:
		return int(v)
	}
	return def
}

// Float reads a float option, tolerating ints.
func (o Options) Float(key string, def float64) float64 {
	switch v := o[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	}
	return def
}

// saveScript is the shared Save implementation: a single scoped write with
// directory creation on the path's ancestors.
func saveScript(source, path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("codegen: save path is empty")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return "", fmt.Errorf("codegen: creating script directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(source), 0o644); err != nil {
		return "", fmt.Errorf("codegen: writing script: %w", err)
	}
	return path, nil
}

// sanitizeFunctionName turns a workflow name into a valid Python identifier:
// lowercase, runs of non-alphanumerics collapsed to single underscores.
func sanitizeFunctionName(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		} else {
			b.WriteRune('_')
		}
	}
	s := b.String()
	for strings.Contains(s, "__") {
		s = strings.ReplaceAll(s, "__", "_")
	}
	s = strings.Trim(s, "_")
	if s == "" {
		return "automated_workflow"
	}
	if s[0] >= '0' && s[0] <= '9' {
		s = "workflow_" + s
	}
	return s
}

// pyString escapes a value for inclusion inside a double-quoted Python string
// literal and returns the quoted literal.
func pyString(s string) string {
	r := strings.NewReplacer(
		`\`, `\\`,
		`"`, `\"`,
		"\n", `\n`,
		"\r", `\r`,
		"\t", `\t`,
	)
	return `"` + r.Replace(s) + `"`
}

// valueExpr renders an action's value: a bare variable reference when the
// action is variable-bound (so secrets never land in source), otherwise a
// quoted literal.
func valueExpr(a *schemas.Action) string {
	if a.IsVariable && a.VariableName != "" {
		return sanitizeFunctionName(a.VariableName)
	}
	return pyString(a.Value)
}

// stepComment renders the human-readable comment that precedes every action
// block.
func stepComment(a *schemas.Action) string {
	desc := strings.TrimSpace(a.Description)
	if desc == "" {
		desc = string(a.Type)
	}
	// Keep the comment single-line.
	desc = strings.ReplaceAll(desc, "\n", " ")
	return fmt.Sprintf("# Step %d: %s", a.Sequence, desc)
}

// unsupportedComment is the degradation marker for action types a backend
// cannot express. Generation always succeeds; the script simply documents
// the gap at the point it occurs.
func unsupportedComment(a *schemas.Action, model string) string {
	return fmt.Sprintf("# [%s] unsupported action type %q - manual step required", model, a.Type)
}

// emptySequence normalizes a nil sequence so Generate stays total.
func emptySequence(seq *schemas.ActionSequence) *schemas.ActionSequence {
	if seq == nil {
		return &schemas.ActionSequence{WorkflowName: "workflow"}
	}
	return seq
}

// paramList renders the entry-point parameter list from tracked variables.
func paramList(seq *schemas.ActionSequence) string {
	names := make([]string, 0, len(seq.Parameters))
	for _, p := range seq.Parameters {
		names = append(names, sanitizeFunctionName(p.Name))
	}
	return strings.Join(names, ", ")
}

// itoa3 zero-pads a sequence number to three digits for stable filenames.
func itoa3(n int) string {
	return fmt.Sprintf("%03d", n)
}

// pyBool renders a Go bool as a Python literal.
func pyBool(v bool) string {
	if v {
		return "True"
	}
	return "False"
}

// workflowTitle returns a display name for script headers.
func workflowTitle(seq *schemas.ActionSequence) string {
	if name := strings.TrimSpace(seq.WorkflowName); name != "" {
		return name
	}
	return "Automated workflow"
}

// pausesAfter reports whether the fixed inter-action pause applies to an
// action type. Waits pace themselves and navigation blocks on page load, so
// neither gets an extra pause.
func pausesAfter(t schemas.ActionType) bool {
	switch t {
	case schemas.ActionWait, schemas.ActionWaitForElement, schemas.ActionNavigate:
		return false
	}
	return true
}

// waitSeconds parses an explicit wait duration from the action value,
// defaulting to one second when the value is absent or not numeric.
func waitSeconds(a *schemas.Action) float64 {
	v := strings.TrimSpace(a.Value)
	if v == "" {
		return 1
	}
	sec, err := strconv.ParseFloat(v, 64)
	if err != nil || sec < 0 {
		return 1
	}
	return sec
}

// formatSeconds renders a duration for Python source without a trailing
// exponent or spurious precision.
func formatSeconds(sec float64) string {
	return strconv.FormatFloat(sec, 'g', -1, 64)
}

// scrollDelta returns the pixel distance for scroll actions, falling back to
// a screen-height-ish default when the model did not supply one.
func scrollDelta(a *schemas.Action) int {
	if a.ScrollAmount > 0 {
		return a.ScrollAmount
	}
	return 500
}

// scriptWriter accumulates Python source with 4-space indentation tracking.
type scriptWriter struct {
	b      strings.Builder
	indent int
}

func (w *scriptWriter) line(format string, args ...any) {
	for i := 0; i < w.indent; i++ {
		w.b.WriteString("    ")
	}
	fmt.Fprintf(&w.b, format, args...)
	w.b.WriteByte('\n')
}

func (w *scriptWriter) blank() {
	w.b.WriteByte('\n')
}

func (w *scriptWriter) in() { w.indent++ }

func (w *scriptWriter) out() {
	if w.indent > 0 {
		w.indent--
	}
}

func (w *scriptWriter) String() string { return w.b.String() }

// ParamEnvName returns the environment variable a generated script consults
// for a parameter before falling back to an interactive prompt. The runner
// uses the same mapping when injecting parameter values.
func ParamEnvName(name string) string {
	return "MIMIC_PARAM_" + strings.ToUpper(sanitizeFunctionName(name))
}

// ScriptFileName is the canonical on-disk name for a generated script:
// the sanitized workflow name suffixed with the framework, for example
// "login_flow_playwright.py".
func ScriptFileName(workflowName, framework string) string {
	return sanitizeFunctionName(workflowName) + "_" + strings.ToLower(framework) + ".py"
}

// promptVariables emits the __main__ preamble that resolves every tracked
// parameter, preferring an environment override over an interactive prompt so
// unattended runs never block on stdin.
func promptVariables(w *scriptWriter, seq *schemas.ActionSequence) {
	for _, p := range seq.Parameters {
		name := sanitizeFunctionName(p.Name)
		prompt := p.Name
		if p.Description != "" {
			prompt = p.Description
		}
		w.line(`%s = os.environ.get(%s) or input(%s)`, name, pyString(ParamEnvName(p.Name)), pyString("Enter "+prompt+": "))
	}
}
