// File: internal/codegen/registry.go

package codegen

import (
	"context"
	"fmt"
	"os/exec"
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
	"golang.org/x/sync/errgroup"
)

// frameworkEntry wires a backend's constructor to its defaults and its
// runtime footprint.
type frameworkEntry struct {
	description string
	defaults    Options
	imports     []string
	install     string
	build       func(Options) Generator
}

var frameworks = map[string]frameworkEntry{
	"playwright": {
		description: "Asynchronous browser automation (Playwright, Python)",
		defaults: Options{
			"headless": false,
			"browser":  "chromium",
			"timeout":  30000,
		},
		imports: []string{"playwright"},
		install: "pip install playwright && playwright install",
		build:   func(o Options) Generator { return NewPlaywrightGenerator(o) },
	},
	"selenium": {
		description: "Synchronous WebDriver automation (Selenium, Python)",
		defaults: Options{
			"headless":      false,
			"browser":       "chrome",
			"implicit_wait": 10,
		},
		imports: []string{"selenium"},
		install: "pip install selenium",
		build:   func(o Options) Generator { return NewSeleniumGenerator(o) },
	},
	"pyautogui": {
		description: "OS-level desktop automation (PyAutoGUI, Python)",
		defaults: Options{
			"failsafe":      true,
			"pause":         0.5,
			"startup_delay": 3,
		},
		imports: []string{"pyautogui"},
		install: "pip install pyautogui",
		build:   func(o Options) Generator { return NewPyAutoGUIGenerator(o) },
	},
}

// suggestionDistance caps how far a typo may be from a known name before we
// stop offering it as a correction.
const suggestionDistance = 3

// New builds the generator registered under name. Caller overrides are
// merged onto the framework defaults, overrides winning. Unknown names are
// an explicit error, with a nearest-match hint when one is plausible.
func New(name string, overrides Options) (Generator, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	entry, ok := frameworks[key]
	if !ok {
		msg := fmt.Sprintf("codegen: unknown framework %q (known: %s)",
			name, strings.Join(knownNames(), ", "))
		if hint := nearestFramework(key); hint != "" {
			msg += fmt.Sprintf(" - did you mean %q?", hint)
		}
		return nil, fmt.Errorf("%s", msg)
	}
	return entry.build(entry.defaults.merged(overrides)), nil
}

// FrameworkInfo is the catalog row exposed to listings.
type FrameworkInfo struct {
	Name        string
	Description string
	PythonDeps  []string
	Install     string
}

// Frameworks returns the registered backends sorted by name.
func Frameworks() []FrameworkInfo {
	out := make([]FrameworkInfo, 0, len(frameworks))
	for name, entry := range frameworks {
		out = append(out, FrameworkInfo{
			Name:        name,
			Description: entry.description,
			PythonDeps:  append([]string(nil), entry.imports...),
			Install:     entry.install,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// MissingDependencies probes the local Python installation for the packages
// a framework's scripts import, in parallel, and returns the ones that are
// absent. The check is advisory: generation works without them, the scripts
// just will not run until they are installed.
func MissingDependencies(ctx context.Context, pythonBin, name string) ([]string, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	entry, ok := frameworks[key]
	if !ok {
		return nil, fmt.Errorf("codegen: unknown framework %q (known: %s)",
			name, strings.Join(knownNames(), ", "))
	}
	if pythonBin == "" {
		pythonBin = "python3"
	}

	results := make([]string, len(entry.imports))
	g, ctx := errgroup.WithContext(ctx)
	for i, mod := range entry.imports {
		g.Go(func() error {
			cmd := exec.CommandContext(ctx, pythonBin, "-c", "import "+mod)
			if err := cmd.Run(); err != nil {
				results[i] = mod
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	missing := make([]string, 0, len(results))
	for _, m := range results {
		if m != "" {
			missing = append(missing, m)
		}
	}
	return missing, nil
}

func knownNames() []string {
	names := make([]string, 0, len(frameworks))
	for name := range frameworks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// nearestFramework returns the closest registered name within the
// suggestion threshold, or "".
func nearestFramework(name string) string {
	if name == "" {
		return ""
	}
	best, bestDist := "", suggestionDistance+1
	for _, known := range knownNames() {
		if d := levenshtein.ComputeDistance(name, known); d < bestDist {
			best, bestDist = known, d
		}
	}
	if bestDist > suggestionDistance {
		return ""
	}
	return best
}
