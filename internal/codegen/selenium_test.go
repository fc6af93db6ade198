package codegen

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xkilldash9x/mimic-cli/api/schemas"
)

func newSelenium(t *testing.T, overrides Options) *SeleniumGenerator {
	t.Helper()
	gen, err := New("selenium", overrides)
	require.NoError(t, err)
	se, ok := gen.(*SeleniumGenerator)
	require.True(t, ok)
	return se
}

func TestSeleniumScriptShape(t *testing.T) {
	t.Parallel()

	seq := newSequence("Order Lookup",
		clickOn(newTarget("Search", schemas.NewSelector(schemas.StrategyCSS, "#search", 0.9))),
	)
	seq.TotalTransitions = 1

	src := newSelenium(t, nil).Generate(seq)

	assert.True(t, strings.HasPrefix(src, "#!/usr/bin/env python3\n"))
	assert.Contains(t, src, `"""Order Lookup - generated Selenium automation.`)
	assert.Contains(t, src, "from selenium import webdriver")
	assert.Contains(t, src, "from selenium.webdriver.common.by import By")
	assert.Contains(t, src, "def order_lookup():")
	assert.Contains(t, src, "options = webdriver.ChromeOptions()")
	assert.Contains(t, src, "driver = webdriver.Chrome(options=options)")
	assert.Contains(t, src, "driver.implicitly_wait(10)")
	assert.Contains(t, src, `driver.find_element(By.CSS_SELECTOR, "#search").click()`)
	assert.Contains(t, src, "finally:")
	assert.Contains(t, src, "driver.quit()")
	assert.Contains(t, src, "order_lookup()")
}

func TestSeleniumConditionalImports(t *testing.T) {
	t.Parallel()

	el := newTarget("x", schemas.NewSelector(schemas.StrategyCSS, "#x", 0.9))

	t.Run("plain clicks need no extras", func(t *testing.T) {
		t.Parallel()
		src := newSelenium(t, nil).Generate(newSequence("s", clickOn(el)))
		assert.NotContains(t, src, "import Keys")
		assert.NotContains(t, src, "ActionChains")
		assert.NotContains(t, src, "WebDriverWait")
		assert.NotContains(t, src, "import Select")
	})

	t.Run("key press pulls in Keys and ActionChains", func(t *testing.T) {
		t.Parallel()
		src := newSelenium(t, nil).Generate(newSequence("s",
			schemas.Action{Type: schemas.ActionPressKey, Key: "enter"}))
		assert.Contains(t, src, "from selenium.webdriver.common.keys import Keys")
		assert.Contains(t, src, "from selenium.webdriver.common.action_chains import ActionChains")
	})

	t.Run("waits pull in WebDriverWait", func(t *testing.T) {
		t.Parallel()
		src := newSelenium(t, nil).Generate(newSequence("s",
			schemas.Action{Type: schemas.ActionWaitForElement, Target: el}))
		assert.Contains(t, src, "from selenium.webdriver.support.ui import WebDriverWait")
		assert.Contains(t, src, "from selenium.webdriver.support import expected_conditions as EC")
	})

	t.Run("select pulls in Select", func(t *testing.T) {
		t.Parallel()
		src := newSelenium(t, nil).Generate(newSequence("s",
			schemas.Action{Type: schemas.ActionSelect, Target: el, Value: "CA"}))
		assert.Contains(t, src, "from selenium.webdriver.support.ui import Select")
	})
}

func TestSeleniumHighestConfidenceSelectorWins(t *testing.T) {
	t.Parallel()

	target := newTarget("Login button",
		schemas.NewSelector(schemas.StrategyCSS, "#login-button", 0.95),
		schemas.NewSelector(schemas.StrategyText, "Log in", 0.80),
	)
	src := newSelenium(t, nil).Generate(newSequence("login", clickOn(target)))

	assert.Contains(t, src, `driver.find_element(By.CSS_SELECTOR, "#login-button").click()`)
	assert.NotContains(t, src, "By.LINK_TEXT")
}

func TestSeleniumActionDispatch(t *testing.T) {
	t.Parallel()

	el := func() *schemas.ElementTarget {
		return newTarget("El", schemas.NewSelector(schemas.StrategyCSS, "#el", 0.9))
	}

	cases := []struct {
		name   string
		action schemas.Action
		want   []string
	}{
		{
			"type clears then sends",
			schemas.Action{Type: schemas.ActionTypeText, Target: el(), Value: "hello"},
			[]string{
				`element = driver.find_element(By.CSS_SELECTOR, "#el")`,
				"element.clear()",
				`element.send_keys("hello")`,
			},
		},
		{
			"double click uses a chain",
			schemas.Action{Type: schemas.ActionDoubleClick, Target: el()},
			[]string{"ActionChains(driver).double_click(element).perform()"},
		},
		{
			"right click uses context click",
			schemas.Action{Type: schemas.ActionRightClick, Target: el()},
			[]string{"ActionChains(driver).context_click(element).perform()"},
		},
		{
			"hover moves to element",
			schemas.Action{Type: schemas.ActionHover, Target: el()},
			[]string{"ActionChains(driver).move_to_element(element).perform()"},
		},
		{
			"check guards on state",
			schemas.Action{Type: schemas.ActionCheck, Target: el()},
			[]string{"if not element.is_selected():", "element.click()"},
		},
		{
			"uncheck guards on state",
			schemas.Action{Type: schemas.ActionUncheck, Target: el()},
			[]string{"if element.is_selected():"},
		},
		{
			"select by visible text",
			schemas.Action{Type: schemas.ActionSelect, Target: el(), Value: "Canada"},
			[]string{`Select(element).select_by_visible_text("Canada")`},
		},
		{
			"upload sends the path",
			schemas.Action{Type: schemas.ActionUpload, Target: el(), Value: "/tmp/cv.pdf"},
			[]string{`element.send_keys("/tmp/cv.pdf")`},
		},
		{
			"scroll uses js",
			schemas.Action{Type: schemas.ActionScrollDown, ScrollAmount: 400},
			[]string{`driver.execute_script("window.scrollBy(0, 400)")`},
		},
		{
			"scroll to element",
			schemas.Action{Type: schemas.ActionScrollTo, Target: el()},
			[]string{`driver.execute_script("arguments[0].scrollIntoView(true)", element)`},
		},
		{
			"navigate",
			schemas.Action{Type: schemas.ActionNavigate, URL: "https://example.com"},
			[]string{`driver.get("https://example.com")`},
		},
		{
			"history",
			schemas.Action{Type: schemas.ActionGoForward},
			[]string{"driver.forward()"},
		},
		{
			"press key",
			schemas.Action{Type: schemas.ActionPressKey, Key: "escape"},
			[]string{"ActionChains(driver).send_keys(Keys.ESCAPE).perform()"},
		},
		{
			"hotkey holds modifiers",
			schemas.Action{Type: schemas.ActionHotkey, Key: "s", Modifiers: []string{"ctrl"}},
			[]string{`ActionChains(driver).key_down(Keys.CONTROL).send_keys("s").key_up(Keys.CONTROL).perform()`},
		},
		{
			"wait sleeps",
			schemas.Action{Type: schemas.ActionWait, Value: "2"},
			[]string{"time.sleep(2)"},
		},
		{
			"wait for element",
			schemas.Action{Type: schemas.ActionWaitForElement, Target: el()},
			[]string{`WebDriverWait(driver, 10).until(EC.presence_of_element_located((By.CSS_SELECTOR, "#el")))`},
		},
		{
			"drag via offsets",
			schemas.Action{Type: schemas.ActionDrag, DragStart: &schemas.Point{X: 10, Y: 20}, DragEnd: &schemas.Point{X: 110, Y: 50}},
			[]string{
				"chain.move_by_offset(10, 20)",
				"chain.click_and_hold()",
				"chain.move_by_offset(100, 30)",
				"chain.release()",
			},
		},
		{
			"screenshot",
			schemas.Action{Type: schemas.ActionScreenshot, Value: "shot.png"},
			[]string{`driver.save_screenshot("shot.png")`},
		},
		{
			"unknown degrades to comment",
			schemas.Action{Type: schemas.ActionUnknown},
			[]string{`# [selenium] unsupported action type "unknown" - manual step required`},
		},
	}
	for _, tc := range cases {
		tt := tc
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			src := newSelenium(t, nil).Generate(newSequence("s", tt.action))
			for _, want := range tt.want {
				assert.Contains(t, src, want)
			}
		})
	}
}

func TestSeleniumCoordinateFallback(t *testing.T) {
	t.Parallel()

	target := &schemas.ElementTarget{
		Description: "Mystery button",
		Coordinates: &schemas.Point{X: 300, Y: 400},
	}
	src := newSelenium(t, nil).Generate(newSequence("s", clickOn(target)))

	assert.Contains(t, src, `driver.execute_script("document.elementFromPoint(300, 400).click()")`)
}

func TestSeleniumTextFallbackBuildsXPath(t *testing.T) {
	t.Parallel()

	target := &schemas.ElementTarget{Description: `the "big" button`}
	src := newSelenium(t, nil).Generate(newSequence("s", clickOn(target)))

	// Double quotes are stripped before the description enters the XPath.
	assert.Contains(t, src, `driver.find_element(By.XPATH, "//*[contains(text(), \"the big button\")]").click()`)
}

func TestSeleniumTypeAtCoordinatesImportsChains(t *testing.T) {
	t.Parallel()

	target := &schemas.ElementTarget{Coordinates: &schemas.Point{X: 5, Y: 6}}
	src := newSelenium(t, nil).Generate(newSequence("s",
		schemas.Action{Type: schemas.ActionTypeText, Target: target, Value: "hi"}))

	assert.Contains(t, src, "from selenium.webdriver.common.action_chains import ActionChains")
	assert.Contains(t, src, `driver.execute_script("document.elementFromPoint(5, 6).focus()")`)
	assert.Contains(t, src, `ActionChains(driver).send_keys("hi").perform()`)
}

func TestSeleniumBrowserOptions(t *testing.T) {
	t.Parallel()

	t.Run("firefox headless", func(t *testing.T) {
		t.Parallel()
		src := newSelenium(t, Options{"browser": "firefox", "headless": true}).
			Generate(newSequence("s"))
		assert.Contains(t, src, "options = webdriver.FirefoxOptions()")
		assert.Contains(t, src, `options.add_argument("--headless")`)
		assert.Contains(t, src, "driver = webdriver.Firefox(options=options)")
	})

	t.Run("edge", func(t *testing.T) {
		t.Parallel()
		src := newSelenium(t, Options{"browser": "edge"}).Generate(newSequence("s"))
		assert.Contains(t, src, "driver = webdriver.Edge(options=options)")
	})

	t.Run("unrecognized falls back to chrome", func(t *testing.T) {
		t.Parallel()
		src := newSelenium(t, Options{"browser": "opera"}).Generate(newSequence("s"))
		assert.Contains(t, src, "driver = webdriver.Chrome(options=options)")
	})
}

func TestSeleniumPausePolicy(t *testing.T) {
	t.Parallel()

	gen := newSelenium(t, nil)

	paused := gen.Generate(newSequence("s",
		clickOn(newTarget("x", schemas.NewSelector(schemas.StrategyCSS, "#x", 0.9)))))
	assert.Contains(t, paused, "time.sleep(0.3)")

	navOnly := gen.Generate(newSequence("s",
		schemas.Action{Type: schemas.ActionNavigate, URL: "https://example.com"}))
	assert.NotContains(t, navOnly, "time.sleep(0.3)")
}

func TestSeleniumVariableBoundValue(t *testing.T) {
	t.Parallel()

	field := newTarget("Password", schemas.NewSelector(schemas.StrategyCSS, "#pwd", 0.9))
	a := typeInto(field, "hunter2")
	a.IsVariable = true
	a.VariableName = "password"

	src := newSelenium(t, nil).Generate(newSequence("login", a))

	assert.Contains(t, src, "def login(password):")
	assert.Contains(t, src, "element.send_keys(password)")
	assert.NotContains(t, src, "hunter2")
}
