// File: internal/codegen/selenium.go

package codegen

import (
	"strings"

	"github.com/xkilldash9x/mimic-cli/api/schemas"
)

// seleniumPauseSeconds is the fixed settle pause between actions in the
// synchronous model.
const seleniumPauseSeconds = "0.3"

// SeleniumGenerator emits synchronous Python scripts against the Selenium
// WebDriver API: blocking find_element calls, explicit waits, and a
// driver.quit() guarantee in try/finally.
type SeleniumGenerator struct {
	opts Options
}

// NewSeleniumGenerator builds a generator with pre-merged options.
func NewSeleniumGenerator(opts Options) *SeleniumGenerator {
	return &SeleniumGenerator{opts: opts}
}

func (g *SeleniumGenerator) Name() string { return "selenium" }

func (g *SeleniumGenerator) Description() string {
	return "Synchronous WebDriver automation (Selenium, Python)"
}

func (g *SeleniumGenerator) Save(source, path string) (string, error) {
	return saveScript(source, path)
}

func (g *SeleniumGenerator) Generate(seq *schemas.ActionSequence) string {
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

// seleniumNeeds records which optional imports the action set pulls in.
type seleniumNeeds struct {
	keys    bool
	chains  bool
	selects bool
	waits   bool
}

func scanSeleniumNeeds(seq *schemas.ActionSequence) seleniumNeeds {
	var n seleniumNeeds
	for i := range seq.Actions {
		switch seq.Actions[i].Type {
		case schemas.ActionPressKey, schemas.ActionHotkey:
			n.keys = true
			n.chains = true
		case schemas.ActionDoubleClick, schemas.ActionRightClick, schemas.ActionHover, schemas.ActionDrag:
			n.chains = true
		case schemas.ActionTypeText:
			// The coordinate fallback types through an ActionChains gesture.
			a := &seq.Actions[i]
			if _, ok := seleniumLocatorFor(primarySelector(a.Target)); !ok && targetPoint(a.Target) != nil {
				n.chains = true
			}
		case schemas.ActionSelect:
			n.selects = true
		case schemas.ActionWaitForElement:
			n.waits = true
		}
	}
	return n
}

func (g *SeleniumGenerator) header(w *scriptWriter, seq *schemas.ActionSequence, fn string) {
	needs := scanSeleniumNeeds(seq)

	w.line("#!/usr/bin/env python3")
	w.line(`"""%s - generated Selenium automation.`, workflowTitle(seq))
	w.blank()
	w.line("Derived from %d recorded transition(s).", seq.TotalTransitions)
	w.line("Requires: pip install selenium")
	w.line(`"""`)
	w.blank()
	if len(seq.Parameters) > 0 {
		w.line("import os")
	}
	w.line("import time")
	w.blank()
	w.line("from selenium import webdriver")
	w.line("from selenium.webdriver.common.by import By")
	if needs.keys {
		w.line("from selenium.webdriver.common.keys import Keys")
	}
	if needs.chains {
		w.line("from selenium.webdriver.common.action_chains import ActionChains")
	}
	if needs.selects {
		w.line("from selenium.webdriver.support.ui import Select")
	}
	if needs.waits {
		w.line("from selenium.webdriver.support.ui import WebDriverWait")
		w.line("from selenium.webdriver.support import expected_conditions as EC")
	}
	w.blank()
	w.blank()
	w.line("def %s(%s):", fn, paramList(seq))
	w.in()
	g.emitDriverSetup(w)
	w.line("try:")
	w.in()
	if len(seq.Actions) == 0 {
		w.line("pass  # no actions were inferred for this workflow")
	}
}

func (g *SeleniumGenerator) emitDriverSetup(w *scriptWriter) {
	headless := g.opts.Bool("headless", false)
	switch g.browserName() {
	case "firefox":
		w.line("options = webdriver.FirefoxOptions()")
		if headless {
			w.line(`options.add_argument("--headless")`)
		}
		w.line("driver = webdriver.Firefox(options=options)")
	case "edge":
		w.line("options = webdriver.EdgeOptions()")
		if headless {
			w.line(`options.add_argument("--headless=new")`)
		}
		w.line("driver = webdriver.Edge(options=options)")
	default:
		w.line("options = webdriver.ChromeOptions()")
		if headless {
			w.line(`options.add_argument("--headless=new")`)
		}
		w.line("driver = webdriver.Chrome(options=options)")
	}
	if iw := g.opts.Int("implicit_wait", 10); iw > 0 {
		w.line("driver.implicitly_wait(%d)", iw)
	}
}

func (g *SeleniumGenerator) footer(w *scriptWriter, seq *schemas.ActionSequence, fn string) {
	w.out()
	w.line("finally:")
	w.in()
	w.line("driver.quit()")
	w.out()
	w.out()
	w.blank()
	w.blank()
	w.line(`if __name__ == "__main__":`)
	w.in()
	promptVariables(w, seq)
	w.line("%s(%s)", fn, paramList(seq))
	w.out()
}

func (g *SeleniumGenerator) browserName() string {
	switch b := g.opts.String("browser", "chrome"); b {
	case "chrome", "firefox", "edge":
		return b
	default:
		return "chrome"
	}
}

func (g *SeleniumGenerator) emitAction(w *scriptWriter, a *schemas.Action) {
	w.line("%s", stepComment(a))

	switch a.Type {
	case schemas.ActionClick:
		g.emitClick(w, a)
	case schemas.ActionDoubleClick:
		g.emitChained(w, a, "double_click")
	case schemas.ActionRightClick:
		g.emitChained(w, a, "context_click")
	case schemas.ActionHover:
		g.emitChained(w, a, "move_to_element")
	case schemas.ActionDrag:
		g.emitDrag(w, a)
	case schemas.ActionTypeText:
		g.emitType(w, a)
	case schemas.ActionClear:
		g.emitOnElement(w, a, func() {
			w.line("element.clear()")
		})
	case schemas.ActionSelect:
		g.emitOnElement(w, a, func() {
			w.line("Select(element).select_by_visible_text(%s)", valueExpr(a))
		})
	case schemas.ActionCheck:
		g.emitToggle(w, a, "if not element.is_selected():")
	case schemas.ActionUncheck:
		g.emitToggle(w, a, "if element.is_selected():")
	case schemas.ActionUpload:
		g.emitOnElement(w, a, func() {
			w.line("element.send_keys(%s)", valueExpr(a))
		})
	case schemas.ActionScrollUp:
		w.line(`driver.execute_script("window.scrollBy(0, -%d)")`, scrollDelta(a))
	case schemas.ActionScrollDown:
		w.line(`driver.execute_script("window.scrollBy(0, %d)")`, scrollDelta(a))
	case schemas.ActionScrollTo:
		g.emitScrollTo(w, a)
	case schemas.ActionNavigate:
		g.emitNavigate(w, a)
	case schemas.ActionRefresh:
		w.line("driver.refresh()")
	case schemas.ActionGoBack:
		w.line("driver.back()")
	case schemas.ActionGoForward:
		w.line("driver.forward()")
	case schemas.ActionPressKey:
		w.line("ActionChains(driver).send_keys(%s).perform()", seleniumKeyExpr(actionKey(a)))
	case schemas.ActionHotkey:
		g.emitHotkey(w, a)
	case schemas.ActionWait:
		w.line("time.sleep(%s)", formatSeconds(waitSeconds(a)))
	case schemas.ActionWaitForElement:
		g.emitWaitForElement(w, a)
	case schemas.ActionDownload:
		g.emitDownload(w, a)
	case schemas.ActionScreenshot:
		w.line("driver.save_screenshot(%s)", pyString(screenshotPath(a)))
	default:
		w.line("%s", unsupportedComment(a, "selenium"))
	}

	if pausesAfter(a.Type) {
		w.line("time.sleep(%s)", seleniumPauseSeconds)
	}
	w.blank()
}

func (g *SeleniumGenerator) emitClick(w *scriptWriter, a *schemas.Action) {
	if loc, ok := seleniumLocatorFor(primarySelector(a.Target)); ok {
		w.line("driver.find_element(%s).click()", loc.args())
		return
	}
	if pt := targetPoint(a.Target); pt != nil {
		w.line("# selector unavailable - clicking the element at recorded coordinates")
		w.line(`driver.execute_script("document.elementFromPoint(%d, %d).click()")`, pt.X, pt.Y)
		return
	}
	if desc := targetDescription(a.Target); desc != "" {
		w.line("# no selector or coordinates recorded - matching on visible text")
		w.line("driver.find_element(By.XPATH, %s).click()", pyString(textMatchXPath(desc)))
		return
	}
	w.line("# click target could not be resolved - manual step required")
}

// emitChained covers pointer actions that need an ActionChains gesture on a
// located element.
func (g *SeleniumGenerator) emitChained(w *scriptWriter, a *schemas.Action, gesture string) {
	if loc, ok := seleniumLocatorFor(primarySelector(a.Target)); ok {
		w.line("element = driver.find_element(%s)", loc.args())
		w.line("ActionChains(driver).%s(element).perform()", gesture)
		return
	}
	if desc := targetDescription(a.Target); desc != "" {
		w.line("# no selector recorded - matching on visible text")
		w.line("element = driver.find_element(By.XPATH, %s)", pyString(textMatchXPath(desc)))
		w.line("ActionChains(driver).%s(element).perform()", gesture)
		return
	}
	w.line("# %s target could not be resolved - manual step required", a.Type)
}

func (g *SeleniumGenerator) emitDrag(w *scriptWriter, a *schemas.Action) {
	if a.DragStart == nil || a.DragEnd == nil {
		w.line("# drag endpoints were not captured - manual step required")
		return
	}
	dx := a.DragEnd.X - a.DragStart.X
	dy := a.DragEnd.Y - a.DragStart.Y
	w.line("chain = ActionChains(driver)")
	w.line("chain.move_by_offset(%d, %d)", a.DragStart.X, a.DragStart.Y)
	w.line("chain.click_and_hold()")
	w.line("chain.move_by_offset(%d, %d)", dx, dy)
	w.line("chain.release()")
	w.line("chain.perform()")
}

func (g *SeleniumGenerator) emitType(w *scriptWriter, a *schemas.Action) {
	if loc, ok := seleniumLocatorFor(primarySelector(a.Target)); ok {
		w.line("element = driver.find_element(%s)", loc.args())
		w.line("element.clear()")
		w.line("element.send_keys(%s)", valueExpr(a))
		return
	}
	if pt := targetPoint(a.Target); pt != nil {
		w.line("# selector unavailable - focusing the element at recorded coordinates")
		w.line(`driver.execute_script("document.elementFromPoint(%d, %d).focus()")`, pt.X, pt.Y)
		w.line("ActionChains(driver).send_keys(%s).perform()", valueExpr(a))
		return
	}
	w.line("# type target could not be resolved - manual step required")
}

// emitOnElement locates the element, binds it to a variable, and hands off.
func (g *SeleniumGenerator) emitOnElement(w *scriptWriter, a *schemas.Action, emit func()) {
	if loc, ok := seleniumLocatorFor(primarySelector(a.Target)); ok {
		w.line("element = driver.find_element(%s)", loc.args())
		emit()
		return
	}
	w.line("# %s target could not be resolved - manual step required", a.Type)
}

func (g *SeleniumGenerator) emitToggle(w *scriptWriter, a *schemas.Action, guard string) {
	g.emitOnElement(w, a, func() {
		w.line("%s", guard)
		w.in()
		w.line("element.click()")
		w.out()
	})
}

func (g *SeleniumGenerator) emitScrollTo(w *scriptWriter, a *schemas.Action) {
	if loc, ok := seleniumLocatorFor(primarySelector(a.Target)); ok {
		w.line("element = driver.find_element(%s)", loc.args())
		w.line(`driver.execute_script("arguments[0].scrollIntoView(true)", element)`)
		return
	}
	if pt := targetPoint(a.Target); pt != nil {
		w.line(`driver.execute_script("window.scrollTo(%d, %d)")`, pt.X, pt.Y)
		return
	}
	w.line("# scroll destination could not be resolved - manual step required")
}

func (g *SeleniumGenerator) emitNavigate(w *scriptWriter, a *schemas.Action) {
	url := actionURL(a)
	if url == "" {
		w.line("# navigation had no destination URL - manual step required")
		return
	}
	w.line("driver.get(%s)", pyString(url))
}

func (g *SeleniumGenerator) emitHotkey(w *scriptWriter, a *schemas.Action) {
	key := actionKey(a)
	if key == "" && len(a.Modifiers) == 0 {
		w.line("# hotkey had no key - manual step required")
		return
	}
	var b strings.Builder
	b.WriteString("ActionChains(driver)")
	mods := seleniumModifiers(a.Modifiers)
	for _, m := range mods {
		b.WriteString(".key_down(" + m + ")")
	}
	if key != "" {
		b.WriteString(".send_keys(" + seleniumKeyExpr(key) + ")")
	}
	for i := len(mods) - 1; i >= 0; i-- {
		b.WriteString(".key_up(" + mods[i] + ")")
	}
	b.WriteString(".perform()")
	w.line("%s", b.String())
}

func (g *SeleniumGenerator) emitWaitForElement(w *scriptWriter, a *schemas.Action) {
	if loc, ok := seleniumLocatorFor(primarySelector(a.Target)); ok {
		w.line("WebDriverWait(driver, 10).until(EC.presence_of_element_located((%s)))", loc.args())
		return
	}
	w.line("# element to wait for could not be resolved - pausing instead")
	w.line("time.sleep(%s)", formatSeconds(waitSeconds(a)))
}

func (g *SeleniumGenerator) emitDownload(w *scriptWriter, a *schemas.Action) {
	if loc, ok := seleniumLocatorFor(primarySelector(a.Target)); ok {
		w.line("# the file lands in the browser's default download directory")
		w.line("driver.find_element(%s).click()", loc.args())
		return
	}
	w.line("# download trigger could not be resolved - manual step required")
}

// primarySelector is a nil-safe accessor used by locator translation.
func primarySelector(t *schemas.ElementTarget) *schemas.Selector {
	if t == nil {
		return nil
	}
	return t.PrimarySelector()
}

// textMatchXPath builds the generic visible-text locator. Double quotes are
// stripped because XPath 1.0 string literals cannot escape them.
func textMatchXPath(desc string) string {
	clean := strings.ReplaceAll(desc, `"`, "")
	return `//*[contains(text(), "` + clean + `")]`
}

// seleniumKeyExpr returns a Python expression for a key press: a Keys
// constant for named keys, a quoted literal for characters.
func seleniumKeyExpr(key string) string {
	k := strings.TrimSpace(key)
	if k == "" {
		return "Keys.ENTER"
	}
	switch strings.ToLower(k) {
	case "enter", "return":
		return "Keys.ENTER"
	case "esc", "escape":
		return "Keys.ESCAPE"
	case "tab":
		return "Keys.TAB"
	case "space", "spacebar":
		return "Keys.SPACE"
	case "backspace":
		return "Keys.BACK_SPACE"
	case "delete", "del":
		return "Keys.DELETE"
	case "up", "arrowup":
		return "Keys.ARROW_UP"
	case "down", "arrowdown":
		return "Keys.ARROW_DOWN"
	case "left", "arrowleft":
		return "Keys.ARROW_LEFT"
	case "right", "arrowright":
		return "Keys.ARROW_RIGHT"
	case "home":
		return "Keys.HOME"
	case "end":
		return "Keys.END"
	case "pageup", "page_up":
		return "Keys.PAGE_UP"
	case "pagedown", "page_down":
		return "Keys.PAGE_DOWN"
	}
	if len(k) == 1 {
		return pyString(strings.ToLower(k))
	}
	return pyString(k)
}

// seleniumModifiers maps loose modifier spellings onto Keys constants.
func seleniumModifiers(mods []string) []string {
	out := make([]string, 0, len(mods))
	for _, m := range mods {
		switch strings.ToLower(strings.TrimSpace(m)) {
		case "ctrl", "control":
			out = append(out, "Keys.CONTROL")
		case "shift":
			out = append(out, "Keys.SHIFT")
		case "alt", "option":
			out = append(out, "Keys.ALT")
		case "meta", "cmd", "command", "win", "super":
			out = append(out, "Keys.META")
		}
	}
	return out
}
