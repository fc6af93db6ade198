package codegen

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xkilldash9x/mimic-cli/api/schemas"
)

func newPyAutoGUI(t *testing.T, overrides Options) *PyAutoGUIGenerator {
	t.Helper()
	gen, err := New("pyautogui", overrides)
	require.NoError(t, err)
	pg, ok := gen.(*PyAutoGUIGenerator)
	require.True(t, ok)
	return pg
}

func atPoint(x, y int) *schemas.ElementTarget {
	return &schemas.ElementTarget{Coordinates: &schemas.Point{X: x, Y: y}}
}

func TestPyAutoGUIScriptShape(t *testing.T) {
	t.Parallel()

	seq := newSequence("Desktop Sync",
		schemas.Action{Type: schemas.ActionClick, Target: atPoint(640, 360), Description: "Click sync"},
	)
	seq.TotalTransitions = 1

	src := newPyAutoGUI(t, nil).Generate(seq)

	assert.True(t, strings.HasPrefix(src, "#!/usr/bin/env python3\n"))
	assert.Contains(t, src, `"""Desktop Sync - generated desktop automation.`)
	assert.Contains(t, src, "import pyautogui")
	assert.Contains(t, src, "pyautogui.FAILSAFE = True")
	assert.Contains(t, src, "pyautogui.PAUSE = 0.5")
	assert.Contains(t, src, "def desktop_sync():")
	assert.Contains(t, src, "pyautogui.click(640, 360)")
	assert.Contains(t, src, `print("Starting in 3 seconds - switch to the target window now.")`)
	assert.Contains(t, src, "time.sleep(3)")
	assert.Contains(t, src, "except pyautogui.FailSafeException:")
	assert.Contains(t, src, `print("Aborted by fail-safe.")`)
}

func TestPyAutoGUINoPerActionPause(t *testing.T) {
	t.Parallel()

	src := newPyAutoGUI(t, nil).Generate(newSequence("s",
		schemas.Action{Type: schemas.ActionClick, Target: atPoint(1, 2)},
		schemas.Action{Type: schemas.ActionClick, Target: atPoint(3, 4)},
	))

	// Pacing comes from the PAUSE global; no per-action sleeps.
	assert.NotContains(t, src, "time.sleep(0.3)")
	assert.Contains(t, src, "pyautogui.PAUSE = 0.5")
}

func TestPyAutoGUIOptions(t *testing.T) {
	t.Parallel()

	src := newPyAutoGUI(t, Options{
		"failsafe":      false,
		"pause":         1.5,
		"startup_delay": 0,
	}).Generate(newSequence("s"))

	assert.Contains(t, src, "pyautogui.FAILSAFE = False")
	assert.Contains(t, src, "pyautogui.PAUSE = 1.5")
	assert.NotContains(t, src, "Starting in")
	assert.NotContains(t, src, "slam the mouse")
}

func TestPyAutoGUIImageTemplateFallback(t *testing.T) {
	t.Parallel()

	target := &schemas.ElementTarget{Description: "Login Button (blue)"}
	src := newPyAutoGUI(t, nil).Generate(newSequence("s", clickOn(target)))

	assert.Contains(t, src, `location = pyautogui.locateCenterOnScreen("login_button__blue_.png", confidence=0.8)`)
	assert.Contains(t, src, "if location:")
	assert.Contains(t, src, "pyautogui.click(location)")
	assert.Contains(t, src, "else:")
	assert.Contains(t, src, "not found on screen - skipping step 1")
	assert.Contains(t, src, "opencv-python", "the template lookup documents its extra dependency")
}

func TestPyAutoGUIActionDispatch(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		action schemas.Action
		want   []string
	}{
		{
			"double click",
			schemas.Action{Type: schemas.ActionDoubleClick, Target: atPoint(10, 20)},
			[]string{"pyautogui.doubleClick(10, 20)"},
		},
		{
			"right click",
			schemas.Action{Type: schemas.ActionRightClick, Target: atPoint(10, 20)},
			[]string{"pyautogui.rightClick(10, 20)"},
		},
		{
			"hover moves",
			schemas.Action{Type: schemas.ActionHover, Target: atPoint(10, 20)},
			[]string{"pyautogui.moveTo(10, 20)"},
		},
		{
			"drag four step",
			schemas.Action{Type: schemas.ActionDrag, DragStart: &schemas.Point{X: 1, Y: 2}, DragEnd: &schemas.Point{X: 3, Y: 4}},
			[]string{
				"pyautogui.moveTo(1, 2)",
				"pyautogui.mouseDown()",
				"pyautogui.moveTo(3, 4, duration=0.5)",
				"pyautogui.mouseUp()",
			},
		},
		{
			"type clicks then writes",
			schemas.Action{Type: schemas.ActionTypeText, Target: atPoint(5, 6), Value: "hello"},
			[]string{
				"pyautogui.click(5, 6)",
				`pyautogui.write("hello", interval=0.05)`,
			},
		},
		{
			"clear selects all and deletes",
			schemas.Action{Type: schemas.ActionClear, Target: atPoint(5, 6)},
			[]string{
				`pyautogui.hotkey("ctrl", "a")`,
				`pyautogui.press("delete")`,
			},
		},
		{
			"select types the option",
			schemas.Action{Type: schemas.ActionSelect, Target: atPoint(5, 6), Value: "Canada"},
			[]string{
				"pyautogui.click(5, 6)",
				`pyautogui.write("Canada")`,
				`pyautogui.press("enter")`,
			},
		},
		{
			"upload drives the file dialog",
			schemas.Action{Type: schemas.ActionUpload, Target: atPoint(5, 6), Value: "/tmp/cv.pdf"},
			[]string{
				"time.sleep(1)  # wait for the file dialog",
				`pyautogui.write("/tmp/cv.pdf")`,
				`pyautogui.press("enter")`,
			},
		},
		{
			"scroll down is negative",
			schemas.Action{Type: schemas.ActionScrollDown, ScrollAmount: 400},
			[]string{"pyautogui.scroll(-400)"},
		},
		{
			"scroll up is positive",
			schemas.Action{Type: schemas.ActionScrollUp},
			[]string{"pyautogui.scroll(500)"},
		},
		{
			"navigate opens the default browser",
			schemas.Action{Type: schemas.ActionNavigate, URL: "https://example.com"},
			[]string{
				"import webbrowser",
				`webbrowser.open("https://example.com")`,
			},
		},
		{
			"refresh is unsupported",
			schemas.Action{Type: schemas.ActionRefresh},
			[]string{`# [pyautogui] unsupported action type "refresh" - manual step required`},
		},
		{
			"go back is unsupported",
			schemas.Action{Type: schemas.ActionGoBack},
			[]string{`# [pyautogui] unsupported action type "go_back" - manual step required`},
		},
		{
			"press key lowercases",
			schemas.Action{Type: schemas.ActionPressKey, Key: "Enter"},
			[]string{`pyautogui.press("enter")`},
		},
		{
			"hotkey lowercases modifiers",
			schemas.Action{Type: schemas.ActionHotkey, Key: "S", Modifiers: []string{"Ctrl", "Shift"}},
			[]string{`pyautogui.hotkey("ctrl", "shift", "s")`},
		},
		{
			"wait sleeps",
			schemas.Action{Type: schemas.ActionWait, Value: "2"},
			[]string{"time.sleep(2)"},
		},
		{
			"screenshot",
			schemas.Action{Type: schemas.ActionScreenshot},
			[]string{`pyautogui.screenshot("screenshot_step_001.png")`},
		},
		{
			"unknown degrades to comment",
			schemas.Action{Type: schemas.ActionUnknown},
			[]string{`# [pyautogui] unsupported action type "unknown" - manual step required`},
		},
	}
	for _, tc := range cases {
		tt := tc
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			src := newPyAutoGUI(t, nil).Generate(newSequence("s", tt.action))
			for _, want := range tt.want {
				assert.Contains(t, src, want)
			}
		})
	}
}

func TestPyAutoGUIWaitForElementPollsTemplate(t *testing.T) {
	t.Parallel()

	target := &schemas.ElementTarget{Description: "Success banner"}
	src := newPyAutoGUI(t, nil).Generate(newSequence("s",
		schemas.Action{Type: schemas.ActionWaitForElement, Target: target}))

	assert.Contains(t, src, "for _ in range(20):")
	assert.Contains(t, src, `if pyautogui.locateOnScreen("success_banner.png", confidence=0.8):`)
	assert.Contains(t, src, "break")
	assert.Contains(t, src, "time.sleep(0.5)")
}

func TestPyAutoGUIVariableBoundValue(t *testing.T) {
	t.Parallel()

	a := schemas.Action{
		Type:         schemas.ActionTypeText,
		Target:       atPoint(100, 200),
		Value:        "hunter2",
		IsVariable:   true,
		VariableName: "password",
	}
	src := newPyAutoGUI(t, nil).Generate(newSequence("login", a))

	assert.Contains(t, src, "def login(password):")
	assert.Contains(t, src, "pyautogui.write(password, interval=0.05)")
	assert.NotContains(t, src, "hunter2")
}

func TestPyAutoGUIUnresolvableClick(t *testing.T) {
	t.Parallel()

	src := newPyAutoGUI(t, nil).Generate(newSequence("s",
		schemas.Action{Type: schemas.ActionClick}))

	assert.Contains(t, src, "# click target has no coordinates or description - manual step required")
}
