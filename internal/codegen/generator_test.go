package codegen

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xkilldash9x/mimic-cli/api/schemas"
)

// -- Shared fixtures --

// newTarget builds an element target with optional selectors already ranked.
func newTarget(desc string, sels ...schemas.Selector) *schemas.ElementTarget {
	t := &schemas.ElementTarget{Description: desc}
	for _, s := range sels {
		t.AddSelector(s.Strategy, s.Value, s.Confidence)
	}
	return t
}

// newSequence assembles a sequence and lets Append handle numbering and
// parameter tracking, exactly as the inference layer would.
func newSequence(name string, actions ...schemas.Action) *schemas.ActionSequence {
	seq := &schemas.ActionSequence{WorkflowName: name}
	for _, a := range actions {
		seq.Append(a)
	}
	return seq
}

func clickOn(t *schemas.ElementTarget) schemas.Action {
	return schemas.Action{Type: schemas.ActionClick, Target: t, Description: "Click the thing"}
}

func typeInto(t *schemas.ElementTarget, value string) schemas.Action {
	return schemas.Action{Type: schemas.ActionTypeText, Target: t, Value: value}
}

// -- Helper coverage --

func TestSanitizeFunctionName(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		in   string
		want string
	}{
		{"simple", "Checkout Flow", "checkout_flow"},
		{"punctuation collapses", "Login -- then pay!", "login_then_pay"},
		{"leading digit prefixed", "2fa setup", "workflow_2fa_setup"},
		{"empty falls back", "", "automated_workflow"},
		{"symbols only fall back", "!!!", "automated_workflow"},
		{"already clean", "submit_order", "submit_order"},
	}
	for _, tc := range cases {
		tt := tc
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, sanitizeFunctionName(tt.in))
		})
	}
}

func TestPyString(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "hello", `"hello"`},
		{"double quotes", `say "hi"`, `"say \"hi\""`},
		{"backslash", `c:\temp`, `"c:\\temp"`},
		{"newline and tab", "a\nb\tc", `"a\nb\tc"`},
		{"empty", "", `""`},
	}
	for _, tc := range cases {
		tt := tc
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, pyString(tt.in))
		})
	}
}

func TestValueExpr(t *testing.T) {
	t.Parallel()

	literal := schemas.Action{Type: schemas.ActionTypeText, Value: "alice@example.com"}
	assert.Equal(t, `"alice@example.com"`, valueExpr(&literal))

	variable := schemas.Action{
		Type:         schemas.ActionTypeText,
		Value:        "hunter2",
		IsVariable:   true,
		VariableName: "Password",
	}
	assert.Equal(t, "password", valueExpr(&variable),
		"variable-bound values must reference the variable, never the literal")
}

func TestWaitSeconds(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		in   string
		want float64
	}{
		{"integer seconds", "2", 2},
		{"fractional", "0.5", 0.5},
		{"blank defaults", "", 1},
		{"junk defaults", "soon", 1},
		{"negative defaults", "-3", 1},
	}
	for _, tc := range cases {
		tt := tc
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			a := schemas.Action{Type: schemas.ActionWait, Value: tt.in}
			assert.InDelta(t, tt.want, waitSeconds(&a), 1e-9)
		})
	}
}

func TestOptionsAccessors(t *testing.T) {
	t.Parallel()

	o := Options{
		"headless": true,
		"browser":  "firefox",
		"timeout":  float64(15000), // JSON round-trips numbers as float64
		"pause":    0.25,
		"count":    7,
	}

	assert.True(t, o.Bool("headless", false))
	assert.False(t, o.Bool("absent", false))
	assert.Equal(t, "firefox", o.String("browser", "chromium"))
	assert.Equal(t, "chromium", o.String("absent", "chromium"))
	assert.Equal(t, 15000, o.Int("timeout", 0))
	assert.Equal(t, 7, o.Int("count", 0))
	assert.InDelta(t, 0.25, o.Float("pause", 0), 1e-9)
	assert.InDelta(t, 7, o.Float("count", 0), 1e-9)
	assert.Equal(t, 42, o.Int("absent", 42))
}

func TestOptionsMerged(t *testing.T) {
	t.Parallel()

	base := Options{"headless": false, "browser": "chromium"}
	got := base.merged(Options{"headless": true, "timeout": 5000})

	assert.Equal(t, true, got["headless"], "override wins")
	assert.Equal(t, "chromium", got["browser"], "defaults survive")
	assert.Equal(t, 5000, got["timeout"], "new keys land")
	assert.Equal(t, false, base["headless"], "base is not mutated")
}

func TestSaveScript(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "out", "script.py")

	got, err := saveScript("print('ok')\n", path)
	require.NoError(t, err)
	assert.Equal(t, path, got)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "print('ok')\n", string(data))
}

func TestSaveScriptEmptyPath(t *testing.T) {
	t.Parallel()

	_, err := saveScript("x", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "path is empty")
}

func TestStepComment(t *testing.T) {
	t.Parallel()

	a := schemas.Action{Type: schemas.ActionClick, Sequence: 3, Description: "Open the\nmenu"}
	assert.Equal(t, "# Step 3: Open the menu", stepComment(&a), "newlines must not break the comment")

	bare := schemas.Action{Type: schemas.ActionHover, Sequence: 1}
	assert.Equal(t, "# Step 1: hover", stepComment(&bare), "falls back to the action type")
}

func TestFormatSeconds(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "1", formatSeconds(1))
	assert.Equal(t, "0.5", formatSeconds(0.5))
	assert.Equal(t, "2.25", formatSeconds(2.25))
}

func TestPromptVariablesPrefersEnvOverride(t *testing.T) {
	t.Parallel()

	seq := newSequence("login",
		schemas.Action{
			Type:         schemas.ActionTypeText,
			Value:        "secret",
			IsVariable:   true,
			VariableName: "password",
			Target:       newTarget("Password field", schemas.NewSelector(schemas.StrategyCSS, "#pwd", 0.9)),
		},
	)

	w := &scriptWriter{}
	promptVariables(w, seq)
	out := w.String()

	assert.Contains(t, out, `os.environ.get("MIMIC_PARAM_PASSWORD")`)
	assert.Contains(t, out, `input("Enter password: ")`)
	assert.NotContains(t, out, "secret", "the recorded literal must never surface")
}

func TestScriptWriterIndentation(t *testing.T) {
	t.Parallel()

	w := &scriptWriter{}
	w.line("def f():")
	w.in()
	w.line("if x:")
	w.in()
	w.line("pass")
	w.out()
	w.out()
	w.out() // extra out must not underflow
	w.line("f()")

	want := strings.Join([]string{
		"def f():",
		"    if x:",
		"        pass",
		"f()",
		"",
	}, "\n")
	assert.Equal(t, want, w.String())
}
