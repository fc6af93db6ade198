// File: internal/codegen/playwright.go

package codegen

import (
	"strings"

	"github.com/xkilldash9x/mimic-cli/api/schemas"
)

// playwrightPauseMillis is the fixed settle pause inserted after most
// actions so the page can react before the next step fires.
const playwrightPauseMillis = 300

// PlaywrightGenerator emits asynchronous Python scripts against the
// Playwright async API: a single async entry point, a managed browser
// lifecycle in try/finally, and awaited page calls per action.
type PlaywrightGenerator struct {
	opts Options
}

// NewPlaywrightGenerator builds a generator with pre-merged options.
func NewPlaywrightGenerator(opts Options) *PlaywrightGenerator {
	return &PlaywrightGenerator{opts: opts}
}

func (g *PlaywrightGenerator) Name() string { return "playwright" }

func (g *PlaywrightGenerator) Description() string {
	return "Asynchronous browser automation (Playwright, Python)"
}

func (g *PlaywrightGenerator) Save(source, path string) (string, error) {
	return saveScript(source, path)
}

func (g *PlaywrightGenerator) Generate(seq *schemas.ActionSequence) string {
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

func (g *PlaywrightGenerator) header(w *scriptWriter, seq *schemas.ActionSequence, fn string) {
	w.line("#!/usr/bin/env python3")
	w.line(`"""%s - generated Playwright automation.`, workflowTitle(seq))
	w.blank()
	w.line("Derived from %d recorded transition(s).", seq.TotalTransitions)
	w.line("Requires: pip install playwright && playwright install")
	w.line(`"""`)
	w.blank()
	w.line("import asyncio")
	if len(seq.Parameters) > 0 {
		w.line("import os")
	}
	w.blank()
	w.line("from playwright.async_api import async_playwright")
	w.blank()
	w.blank()
	w.line("async def %s(%s):", fn, paramList(seq))
	w.in()
	w.line("async with async_playwright() as p:")
	w.in()
	w.line("browser = await p.%s.launch(headless=%s)",
		g.browserName(), pyBool(g.opts.Bool("headless", false)))
	w.line("page = await browser.new_page()")
	if t := g.opts.Int("timeout", 30000); t > 0 {
		w.line("page.set_default_timeout(%d)", t)
	}
	w.line("try:")
	w.in()
	if len(seq.Actions) == 0 {
		w.line("pass  # no actions were inferred for this workflow")
	}
}

func (g *PlaywrightGenerator) footer(w *scriptWriter, seq *schemas.ActionSequence, fn string) {
	w.out()
	w.line("finally:")
	w.in()
	w.line("await browser.close()")
	w.out()
	w.out()
	w.out()
	w.blank()
	w.blank()
	w.line(`if __name__ == "__main__":`)
	w.in()
	promptVariables(w, seq)
	w.line("asyncio.run(%s(%s))", fn, paramList(seq))
	w.out()
}

// browserName restricts the browser option to engines the async API exposes.
func (g *PlaywrightGenerator) browserName() string {
	switch b := g.opts.String("browser", "chromium"); b {
	case "chromium", "firefox", "webkit":
		return b
	default:
		return "chromium"
	}
}

func (g *PlaywrightGenerator) emitAction(w *scriptWriter, a *schemas.Action) {
	w.line("%s", stepComment(a))

	switch a.Type {
	case schemas.ActionClick, schemas.ActionDoubleClick, schemas.ActionRightClick, schemas.ActionHover:
		g.emitPointer(w, a)
	case schemas.ActionDrag:
		g.emitDrag(w, a)
	case schemas.ActionTypeText:
		g.emitType(w, a)
	case schemas.ActionClear:
		g.emitClear(w, a)
	case schemas.ActionSelect:
		g.emitOnLocator(w, a, func(loc string) {
			w.line("await page.select_option(%s, %s)", pyString(loc), valueExpr(a))
		})
	case schemas.ActionCheck:
		g.emitCheckable(w, a, "check")
	case schemas.ActionUncheck:
		g.emitCheckable(w, a, "uncheck")
	case schemas.ActionUpload:
		g.emitOnLocator(w, a, func(loc string) {
			w.line("await page.set_input_files(%s, %s)", pyString(loc), valueExpr(a))
		})
	case schemas.ActionScrollUp:
		w.line("await page.mouse.wheel(0, -%d)", scrollDelta(a))
	case schemas.ActionScrollDown:
		w.line("await page.mouse.wheel(0, %d)", scrollDelta(a))
	case schemas.ActionScrollTo:
		g.emitScrollTo(w, a)
	case schemas.ActionNavigate:
		g.emitNavigate(w, a)
	case schemas.ActionRefresh:
		w.line("await page.reload()")
	case schemas.ActionGoBack:
		w.line("await page.go_back()")
	case schemas.ActionGoForward:
		w.line("await page.go_forward()")
	case schemas.ActionPressKey:
		w.line("await page.keyboard.press(%s)", pyString(playwrightKeyName(actionKey(a))))
	case schemas.ActionHotkey:
		g.emitHotkey(w, a)
	case schemas.ActionWait:
		w.line("await page.wait_for_timeout(%d)", int(waitSeconds(a)*1000))
	case schemas.ActionWaitForElement:
		g.emitWaitForElement(w, a)
	case schemas.ActionDownload:
		g.emitDownload(w, a)
	case schemas.ActionScreenshot:
		w.line("await page.screenshot(path=%s)", pyString(screenshotPath(a)))
	default:
		w.line("%s", unsupportedComment(a, "playwright"))
	}

	if pausesAfter(a.Type) {
		w.line("await page.wait_for_timeout(%d)", playwrightPauseMillis)
	}
	w.blank()
}

// emitPointer renders click, double-click, right-click, and hover with the
// full degradation chain: locator, then recorded coordinates, then a
// visible-text match, then a comment.
func (g *PlaywrightGenerator) emitPointer(w *scriptWriter, a *schemas.Action) {
	if loc, ok := resolveLocator(a.Target); ok {
		g.pointerOnLocator(w, a.Type, loc)
		return
	}
	if pt := targetPoint(a.Target); pt != nil {
		w.line("# selector unavailable - using recorded coordinates")
		switch a.Type {
		case schemas.ActionDoubleClick:
			w.line("await page.mouse.dblclick(%d, %d)", pt.X, pt.Y)
		case schemas.ActionRightClick:
			w.line(`await page.mouse.click(%d, %d, button="right")`, pt.X, pt.Y)
		case schemas.ActionHover:
			w.line("await page.mouse.move(%d, %d)", pt.X, pt.Y)
		default:
			w.line("await page.mouse.click(%d, %d)", pt.X, pt.Y)
		}
		return
	}
	if desc := targetDescription(a.Target); desc != "" {
		w.line("# no selector or coordinates recorded - matching on visible text")
		g.pointerOnLocator(w, a.Type, "text="+desc)
		return
	}
	w.line("# %s target could not be resolved - manual step required", a.Type)
}

func (g *PlaywrightGenerator) pointerOnLocator(w *scriptWriter, t schemas.ActionType, loc string) {
	switch t {
	case schemas.ActionDoubleClick:
		w.line("await page.dblclick(%s)", pyString(loc))
	case schemas.ActionRightClick:
		w.line(`await page.click(%s, button="right")`, pyString(loc))
	case schemas.ActionHover:
		w.line("await page.hover(%s)", pyString(loc))
	default:
		w.line("await page.click(%s)", pyString(loc))
	}
}

func (g *PlaywrightGenerator) emitDrag(w *scriptWriter, a *schemas.Action) {
	if a.DragStart == nil || a.DragEnd == nil {
		w.line("# drag endpoints were not captured - manual step required")
		return
	}
	w.line("await page.mouse.move(%d, %d)", a.DragStart.X, a.DragStart.Y)
	w.line("await page.mouse.down()")
	w.line("await page.mouse.move(%d, %d)", a.DragEnd.X, a.DragEnd.Y)
	w.line("await page.mouse.up()")
}

func (g *PlaywrightGenerator) emitType(w *scriptWriter, a *schemas.Action) {
	if loc, ok := resolveLocator(a.Target); ok {
		w.line("await page.fill(%s, %s)", pyString(loc), valueExpr(a))
		return
	}
	if pt := targetPoint(a.Target); pt != nil {
		w.line("# selector unavailable - clicking recorded coordinates before typing")
		w.line("await page.mouse.click(%d, %d)", pt.X, pt.Y)
		w.line("await page.keyboard.type(%s)", valueExpr(a))
		return
	}
	if desc := targetDescription(a.Target); desc != "" {
		w.line("# no selector or coordinates recorded - matching on visible text")
		w.line("await page.fill(%s, %s)", pyString("text="+desc), valueExpr(a))
		return
	}
	w.line("# type target could not be resolved - manual step required")
}

func (g *PlaywrightGenerator) emitClear(w *scriptWriter, a *schemas.Action) {
	if loc, ok := resolveLocator(a.Target); ok {
		w.line(`await page.fill(%s, "")`, pyString(loc))
		return
	}
	if pt := targetPoint(a.Target); pt != nil {
		w.line("# selector unavailable - clearing via keyboard at recorded coordinates")
		w.line("await page.mouse.click(%d, %d)", pt.X, pt.Y)
		w.line(`await page.keyboard.press("ControlOrMeta+A")`)
		w.line(`await page.keyboard.press("Delete")`)
		return
	}
	w.line("# clear target could not be resolved - manual step required")
}

func (g *PlaywrightGenerator) emitCheckable(w *scriptWriter, a *schemas.Action, verb string) {
	if loc, ok := resolveLocator(a.Target); ok {
		w.line("await page.%s(%s)", verb, pyString(loc))
		return
	}
	if pt := targetPoint(a.Target); pt != nil {
		w.line("# selector unavailable - toggling via click at recorded coordinates")
		w.line("await page.mouse.click(%d, %d)", pt.X, pt.Y)
		return
	}
	w.line("# %s target could not be resolved - manual step required", verb)
}

// emitOnLocator covers actions that only make sense against a real locator.
func (g *PlaywrightGenerator) emitOnLocator(w *scriptWriter, a *schemas.Action, emit func(loc string)) {
	if loc, ok := resolveLocator(a.Target); ok {
		emit(loc)
		return
	}
	w.line("# %s target could not be resolved - manual step required", a.Type)
}

func (g *PlaywrightGenerator) emitScrollTo(w *scriptWriter, a *schemas.Action) {
	if loc, ok := resolveLocator(a.Target); ok {
		w.line("await page.locator(%s).scroll_into_view_if_needed()", pyString(loc))
		return
	}
	if pt := targetPoint(a.Target); pt != nil {
		w.line(`await page.evaluate("window.scrollTo(%d, %d)")`, pt.X, pt.Y)
		return
	}
	w.line("# scroll destination could not be resolved - manual step required")
}

func (g *PlaywrightGenerator) emitNavigate(w *scriptWriter, a *schemas.Action) {
	url := actionURL(a)
	if url == "" {
		w.line("# navigation had no destination URL - manual step required")
		return
	}
	w.line("await page.goto(%s)", pyString(url))
}

func (g *PlaywrightGenerator) emitHotkey(w *scriptWriter, a *schemas.Action) {
	combo := playwrightCombo(a)
	if combo == "" {
		w.line("# hotkey had no key - manual step required")
		return
	}
	w.line("await page.keyboard.press(%s)", pyString(combo))
}

func (g *PlaywrightGenerator) emitWaitForElement(w *scriptWriter, a *schemas.Action) {
	if loc, ok := resolveLocator(a.Target); ok {
		w.line("await page.wait_for_selector(%s)", pyString(loc))
		return
	}
	w.line("# element to wait for could not be resolved - pausing instead")
	w.line("await page.wait_for_timeout(%d)", int(waitSeconds(a)*1000))
}

func (g *PlaywrightGenerator) emitDownload(w *scriptWriter, a *schemas.Action) {
	loc, ok := resolveLocator(a.Target)
	pt := targetPoint(a.Target)
	if !ok && pt == nil {
		w.line("# download trigger could not be resolved - manual step required")
		return
	}
	w.line("async with page.expect_download() as dl_info:")
	w.in()
	if ok {
		w.line("await page.click(%s)", pyString(loc))
	} else {
		w.line("await page.mouse.click(%d, %d)", pt.X, pt.Y)
	}
	w.out()
	w.line("download = await dl_info.value")
	w.line("await download.save_as(download.suggested_filename)")
}

// resolveLocator translates a target's primary selector for Playwright.
func resolveLocator(t *schemas.ElementTarget) (string, bool) {
	if t == nil {
		return "", false
	}
	return playwrightLocator(t.PrimarySelector())
}

// actionKey returns the key an action presses, tolerating models that put it
// in value instead.
func actionKey(a *schemas.Action) string {
	if a.Key != "" {
		return a.Key
	}
	return a.Value
}

// actionURL returns the navigation destination, tolerating models that put
// it in value instead.
func actionURL(a *schemas.Action) string {
	if a.URL != "" {
		return a.URL
	}
	return strings.TrimSpace(a.Value)
}

// screenshotPath names the capture file, preferring an explicit value.
func screenshotPath(a *schemas.Action) string {
	if a.Value != "" {
		return a.Value
	}
	return "screenshot_step_" + itoa3(a.Sequence) + ".png"
}

// playwrightKeyName maps loose key spellings onto Playwright key names.
func playwrightKeyName(key string) string {
	k := strings.TrimSpace(key)
	if k == "" {
		return "Enter"
	}
	switch strings.ToLower(k) {
	case "enter", "return":
		return "Enter"
	case "esc", "escape":
		return "Escape"
	case "tab":
		return "Tab"
	case "space", "spacebar":
		return "Space"
	case "backspace":
		return "Backspace"
	case "delete", "del":
		return "Delete"
	case "up", "arrowup":
		return "ArrowUp"
	case "down", "arrowdown":
		return "ArrowDown"
	case "left", "arrowleft":
		return "ArrowLeft"
	case "right", "arrowright":
		return "ArrowRight"
	case "home":
		return "Home"
	case "end":
		return "End"
	case "pageup", "page_up":
		return "PageUp"
	case "pagedown", "page_down":
		return "PageDown"
	}
	if len(k) == 1 {
		return k
	}
	// Capitalize multi-letter names the way Playwright expects (F1, Insert).
	return strings.ToUpper(k[:1]) + k[1:]
}

// playwrightCombo joins modifiers and key into Playwright's "Mod+Key" form.
func playwrightCombo(a *schemas.Action) string {
	key := actionKey(a)
	if key == "" && len(a.Modifiers) == 0 {
		return ""
	}
	parts := make([]string, 0, len(a.Modifiers)+1)
	for _, m := range a.Modifiers {
		switch strings.ToLower(strings.TrimSpace(m)) {
		case "ctrl", "control":
			parts = append(parts, "Control")
		case "shift":
			parts = append(parts, "Shift")
		case "alt", "option":
			parts = append(parts, "Alt")
		case "meta", "cmd", "command", "win", "super":
			parts = append(parts, "Meta")
		}
	}
	if key != "" {
		parts = append(parts, playwrightKeyName(key))
	}
	return strings.Join(parts, "+")
}
