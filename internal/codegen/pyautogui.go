// File: internal/codegen/pyautogui.go

package codegen

import (
	"strings"

	"github.com/xkilldash9x/mimic-cli/api/schemas"
)

// PyAutoGUIGenerator emits OS-level Python scripts that drive the mouse and
// keyboard by screen coordinate. There is no DOM: selectors degrade to
// recorded coordinates, then to image-template lookups, then to comments.
// Pacing comes from the library's global PAUSE rather than per-action sleeps.
type PyAutoGUIGenerator struct {
	opts Options
}

// NewPyAutoGUIGenerator builds a generator with pre-merged options.
func NewPyAutoGUIGenerator(opts Options) *PyAutoGUIGenerator {
	return &PyAutoGUIGenerator{opts: opts}
}

func (g *PyAutoGUIGenerator) Name() string { return "pyautogui" }

func (g *PyAutoGUIGenerator) Description() string {
	return "OS-level desktop automation (PyAutoGUI, Python)"
}

func (g *PyAutoGUIGenerator) Save(source, path string) (string, error) {
	return saveScript(source, path)
}

func (g *PyAutoGUIGenerator) Generate(seq *schemas.ActionSequence) string {
	seq = emptySequence(seq)
	fn := sanitizeFunctionName(seq.WorkflowName)
	w := &scriptWriter{}

	g.header(w, seq, fn)
	for i := range seq.Actions {
		g.emitAction(w, &seq.Actions[i])
	}
	g.footer(w, seq, fn)
	return w.String()
}

// pyautoguiNeeds records which optional pieces the action set pulls in.
type pyautoguiNeeds struct {
	browser  bool
	template bool
}

func scanPyAutoGUINeeds(seq *schemas.ActionSequence) pyautoguiNeeds {
	var n pyautoguiNeeds
	for i := range seq.Actions {
		a := &seq.Actions[i]
		switch a.Type {
		case schemas.ActionNavigate:
			n.browser = true
		case schemas.ActionClick, schemas.ActionDoubleClick, schemas.ActionRightClick,
			schemas.ActionHover, schemas.ActionTypeText, schemas.ActionDownload:
			if targetPoint(a.Target) == nil && targetDescription(a.Target) != "" {
				n.template = true
			}
		case schemas.ActionWaitForElement:
			if targetDescription(a.Target) != "" {
				n.template = true
			}
		}
	}
	return n
}

func (g *PyAutoGUIGenerator) header(w *scriptWriter, seq *schemas.ActionSequence, fn string) {
	needs := scanPyAutoGUINeeds(seq)

	w.line("#!/usr/bin/env python3")
	w.line(`"""%s - generated desktop automation.`, workflowTitle(seq))
	w.blank()
	w.line("Derived from %d recorded transition(s).", seq.TotalTransitions)
	w.line("Coordinates are screen-absolute and resolution-dependent; re-record")
	w.line("them if the display layout changes.")
	w.line("Requires: pip install pyautogui")
	if needs.template {
		w.line("Image-template lookups additionally require: pip install opencv-python")
	}
	w.line(`"""`)
	w.blank()
	if len(seq.Parameters) > 0 {
		w.line("import os")
	}
	w.line("import time")
	if needs.browser {
		w.line("import webbrowser")
	}
	w.blank()
	w.line("import pyautogui")
	w.blank()
	w.line("pyautogui.FAILSAFE = %s", pyBool(g.opts.Bool("failsafe", true)))
	w.line("pyautogui.PAUSE = %s", formatSeconds(g.opts.Float("pause", 0.5)))
	w.blank()
	w.blank()
	w.line("def %s(%s):", fn, paramList(seq))
	w.in()
	if len(seq.Actions) == 0 {
		w.line("pass  # no actions were inferred for this workflow")
	}
}

func (g *PyAutoGUIGenerator) footer(w *scriptWriter, seq *schemas.ActionSequence, fn string) {
	w.out()
	w.blank()
	w.blank()
	w.line(`if __name__ == "__main__":`)
	w.in()
	if g.opts.Bool("failsafe", true) {
		w.line(`print("Fail-safe is on: slam the mouse into a screen corner to abort.")`)
	}
	delay := g.opts.Int("startup_delay", 3)
	if delay > 0 {
		w.line(`print("Starting in %d seconds - switch to the target window now.")`, delay)
		w.line("time.sleep(%d)", delay)
	}
	promptVariables(w, seq)
	w.line("try:")
	w.in()
	w.line("%s(%s)", fn, paramList(seq))
	w.out()
	w.line("except pyautogui.FailSafeException:")
	w.in()
	w.line(`print("Aborted by fail-safe.")`)
	w.out()
	w.out()
}

func (g *PyAutoGUIGenerator) emitAction(w *scriptWriter, a *schemas.Action) {
	w.line("%s", stepComment(a))

	switch a.Type {
	case schemas.ActionClick:
		g.emitPointer(w, a, "pyautogui.click")
	case schemas.ActionDoubleClick:
		g.emitPointer(w, a, "pyautogui.doubleClick")
	case schemas.ActionRightClick:
		g.emitPointer(w, a, "pyautogui.rightClick")
	case schemas.ActionHover:
		g.emitPointer(w, a, "pyautogui.moveTo")
	case schemas.ActionDrag:
		g.emitDrag(w, a)
	case schemas.ActionTypeText:
		g.emitType(w, a)
	case schemas.ActionClear:
		g.emitClear(w, a)
	case schemas.ActionSelect:
		g.emitSelect(w, a)
	case schemas.ActionCheck, schemas.ActionUncheck:
		g.emitToggle(w, a)
	case schemas.ActionUpload:
		g.emitUpload(w, a)
	case schemas.ActionScrollUp:
		w.line("pyautogui.scroll(%d)", scrollDelta(a))
	case schemas.ActionScrollDown:
		w.line("pyautogui.scroll(-%d)", scrollDelta(a))
	case schemas.ActionScrollTo:
		g.emitScrollTo(w, a)
	case schemas.ActionNavigate:
		g.emitNavigate(w, a)
	case schemas.ActionRefresh, schemas.ActionGoBack, schemas.ActionGoForward:
		w.line("%s", unsupportedComment(a, "pyautogui"))
	case schemas.ActionPressKey:
		w.line("pyautogui.press(%s)", pyString(pyautoguiKeyName(actionKey(a))))
	case schemas.ActionHotkey:
		g.emitHotkey(w, a)
	case schemas.ActionWait:
		w.line("time.sleep(%s)", formatSeconds(waitSeconds(a)))
	case schemas.ActionWaitForElement:
		g.emitWaitForElement(w, a)
	case schemas.ActionDownload:
		g.emitDownload(w, a)
	case schemas.ActionScreenshot:
		w.line("pyautogui.screenshot(%s)", pyString(screenshotPath(a)))
	default:
		w.line("%s", unsupportedComment(a, "pyautogui"))
	}
	w.blank()
}

// emitPointer renders the coordinate-model resolution chain for pointer
// actions: recorded coordinates, then an image-template lookup with a
// not-found branch, then a comment.
func (g *PyAutoGUIGenerator) emitPointer(w *scriptWriter, a *schemas.Action, call string) {
	if pt := targetPoint(a.Target); pt != nil {
		w.line("%s(%d, %d)", call, pt.X, pt.Y)
		return
	}
	desc := targetDescription(a.Target)
	if desc == "" {
		w.line("# %s target has no coordinates or description - manual step required", a.Type)
		return
	}
	g.emitTemplateLookup(w, a, desc, func() {
		w.line("%s(location)", call)
	})
}

// emitTemplateLookup emits the locate-by-screenshot fallback. The template
// image must sit next to the script; the not-found branch keeps the run
// alive.
func (g *PyAutoGUIGenerator) emitTemplateLookup(w *scriptWriter, a *schemas.Action, desc string, hit func()) {
	tmpl := templateName(desc) + ".png"
	w.line("# no coordinates recorded - locating %s on screen by image template", pyString(desc))
	w.line("location = pyautogui.locateCenterOnScreen(%s, confidence=0.8)", pyString(tmpl))
	w.line("if location:")
	w.in()
	hit()
	w.out()
	w.line("else:")
	w.in()
	w.line(`print("Template %s not found on screen - skipping step %d")`, tmpl, a.Sequence)
	w.out()
}

func (g *PyAutoGUIGenerator) emitDrag(w *scriptWriter, a *schemas.Action) {
	if a.DragStart == nil || a.DragEnd == nil {
		w.line("# drag endpoints were not captured - manual step required")
		return
	}
	w.line("pyautogui.moveTo(%d, %d)", a.DragStart.X, a.DragStart.Y)
	w.line("pyautogui.mouseDown()")
	w.line("pyautogui.moveTo(%d, %d, duration=0.5)", a.DragEnd.X, a.DragEnd.Y)
	w.line("pyautogui.mouseUp()")
}

func (g *PyAutoGUIGenerator) emitType(w *scriptWriter, a *schemas.Action) {
	if pt := targetPoint(a.Target); pt != nil {
		w.line("pyautogui.click(%d, %d)", pt.X, pt.Y)
		w.line("pyautogui.write(%s, interval=0.05)", valueExpr(a))
		return
	}
	if desc := targetDescription(a.Target); desc != "" {
		g.emitTemplateLookup(w, a, desc, func() {
			w.line("pyautogui.click(location)")
			w.line("pyautogui.write(%s, interval=0.05)", valueExpr(a))
		})
		return
	}
	w.line("# no coordinates for the input field - assuming it already has focus")
	w.line("pyautogui.write(%s, interval=0.05)", valueExpr(a))
}

func (g *PyAutoGUIGenerator) emitClear(w *scriptWriter, a *schemas.Action) {
	if pt := targetPoint(a.Target); pt != nil {
		w.line("pyautogui.click(%d, %d)", pt.X, pt.Y)
	} else {
		w.line("# no coordinates for the input field - assuming it already has focus")
	}
	w.line(`pyautogui.hotkey("ctrl", "a")`)
	w.line(`pyautogui.press("delete")`)
}

func (g *PyAutoGUIGenerator) emitSelect(w *scriptWriter, a *schemas.Action) {
	pt := targetPoint(a.Target)
	if pt == nil {
		w.line("# select target has no coordinates - manual step required")
		return
	}
	w.line("# open the dropdown, type the option label, confirm")
	w.line("pyautogui.click(%d, %d)", pt.X, pt.Y)
	w.line("pyautogui.write(%s)", valueExpr(a))
	w.line(`pyautogui.press("enter")`)
}

func (g *PyAutoGUIGenerator) emitToggle(w *scriptWriter, a *schemas.Action) {
	pt := targetPoint(a.Target)
	if pt == nil {
		w.line("# %s target has no coordinates - manual step required", a.Type)
		return
	}
	w.line("# a click toggles the control; verify the resulting state visually")
	w.line("pyautogui.click(%d, %d)", pt.X, pt.Y)
}

func (g *PyAutoGUIGenerator) emitUpload(w *scriptWriter, a *schemas.Action) {
	pt := targetPoint(a.Target)
	if pt == nil {
		w.line("# upload target has no coordinates - manual step required")
		return
	}
	w.line("pyautogui.click(%d, %d)", pt.X, pt.Y)
	w.line("time.sleep(1)  # wait for the file dialog")
	w.line("pyautogui.write(%s)", valueExpr(a))
	w.line(`pyautogui.press("enter")`)
}

func (g *PyAutoGUIGenerator) emitScrollTo(w *scriptWriter, a *schemas.Action) {
	pt := targetPoint(a.Target)
	if pt == nil {
		w.line("# scroll destination has no coordinates - manual step required")
		return
	}
	w.line("pyautogui.moveTo(%d, %d)", pt.X, pt.Y)
}

// emitNavigate hands the URL to the OS default browser; the coordinate model
// has no page object to drive.
func (g *PyAutoGUIGenerator) emitNavigate(w *scriptWriter, a *schemas.Action) {
	url := actionURL(a)
	if url == "" {
		w.line("# navigation had no destination URL - manual step required")
		return
	}
	w.line("webbrowser.open(%s)", pyString(url))
	w.line("time.sleep(3)  # give the browser time to reach the foreground")
}

func (g *PyAutoGUIGenerator) emitHotkey(w *scriptWriter, a *schemas.Action) {
	key := actionKey(a)
	if key == "" && len(a.Modifiers) == 0 {
		w.line("# hotkey had no key - manual step required")
		return
	}
	parts := make([]string, 0, len(a.Modifiers)+1)
	for _, m := range a.Modifiers {
		switch strings.ToLower(strings.TrimSpace(m)) {
		case "ctrl", "control":
			parts = append(parts, pyString("ctrl"))
		case "shift":
			parts = append(parts, pyString("shift"))
		case "alt", "option":
			parts = append(parts, pyString("alt"))
		case "meta", "cmd", "command", "win", "super":
			parts = append(parts, pyString("win"))
		}
	}
	if key != "" {
		parts = append(parts, pyString(pyautoguiKeyName(key)))
	}
	w.line("pyautogui.hotkey(%s)", strings.Join(parts, ", "))
}

func (g *PyAutoGUIGenerator) emitWaitForElement(w *scriptWriter, a *schemas.Action) {
	desc := targetDescription(a.Target)
	if desc == "" {
		w.line("time.sleep(%s)", formatSeconds(waitSeconds(a)))
		return
	}
	tmpl := templateName(desc) + ".png"
	w.line("# poll the screen until %s appears", pyString(desc))
	w.line("for _ in range(20):")
	w.in()
	w.line("if pyautogui.locateOnScreen(%s, confidence=0.8):", pyString(tmpl))
	w.in()
	w.line("break")
	w.out()
	w.line("time.sleep(0.5)")
	w.out()
}

func (g *PyAutoGUIGenerator) emitDownload(w *scriptWriter, a *schemas.Action) {
	if pt := targetPoint(a.Target); pt != nil {
		w.line("# the file lands wherever the foreground application saves it")
		w.line("pyautogui.click(%d, %d)", pt.X, pt.Y)
		return
	}
	if desc := targetDescription(a.Target); desc != "" {
		g.emitTemplateLookup(w, a, desc, func() {
			w.line("pyautogui.click(location)")
		})
		return
	}
	w.line("# download trigger could not be resolved - manual step required")
}

// pyautoguiKeyName maps loose key spellings onto the library's lowercase
// key names.
func pyautoguiKeyName(key string) string {
	k := strings.ToLower(strings.TrimSpace(key))
	if k == "" {
		return "enter"
	}
	switch k {
	case "return":
		return "enter"
	case "escape":
		return "esc"
	case "arrowup":
		return "up"
	case "arrowdown":
		return "down"
	case "arrowleft":
		return "left"
	case "arrowright":
		return "right"
	case "spacebar":
		return "space"
	case "page_up":
		return "pageup"
	case "page_down":
		return "pagedown"
	case "del":
		return "delete"
	}
	return k
}
