// File: internal/runner/validate.go
package runner

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"
)

// Validate parses source as Python and reports whether the grammar accepts
// it. Generated scripts always pass; a failure points at a hand-edit gone
// wrong, and the error names where the parse broke.
func Validate(ctx context.Context, source string) error {
	if strings.TrimSpace(source) == "" {
		return errors.New("runner: script is empty")
	}

	tree, err := parsePython(ctx, source)
	if err != nil {
		return err
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.ChildCount() == 0 {
		return errors.New("runner: script is empty")
	}
	if root.HasError() {
		return fmt.Errorf("runner: script has Python syntax errors near %s", firstErrorLocation(root))
	}
	return nil
}

// Imports returns the sorted set of top-level module names the script
// imports, covering both `import x` and `from x.y import z` forms. Relative
// imports are skipped; generated scripts never use them.
func Imports(ctx context.Context, source string) ([]string, error) {
	tree, err := parsePython(ctx, source)
	if err != nil {
		return nil, err
	}
	defer tree.Close()

	src := []byte(source)
	seen := make(map[string]struct{})

	stack := []*sitter.Node{tree.RootNode()}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		switch n.Type() {
		case "import_statement":
			for i := 0; i < int(n.NamedChildCount()); i++ {
				child := n.NamedChild(i)
				if child.Type() == "aliased_import" {
					child = child.ChildByFieldName("name")
				}
				addModule(seen, child, src)
			}
		case "import_from_statement":
			addModule(seen, n.ChildByFieldName("module_name"), src)
		}

		for i := int(n.ChildCount()) - 1; i >= 0; i-- {
			stack = append(stack, n.Child(i))
		}
	}

	out := make([]string, 0, len(seen))
	for name := range seen {
		out = append(out, name)
	}
	sort.Strings(out)
	return out, nil
}

// MissingImports reports the script's third-party imports that are not in
// the framework's declared dependency set. A non-empty result is advisory:
// the script was probably edited to reach beyond what the framework's
// install line provides.
func MissingImports(ctx context.Context, source string, declared []string) ([]string, error) {
	imports, err := Imports(ctx, source)
	if err != nil {
		return nil, err
	}

	covered := make(map[string]struct{}, len(declared))
	for _, d := range declared {
		covered[d] = struct{}{}
	}

	var missing []string
	for _, mod := range imports {
		if _, ok := covered[mod]; ok {
			continue
		}
		if _, ok := pythonStdlib[mod]; ok {
			continue
		}
		missing = append(missing, mod)
	}
	return missing, nil
}

// pythonStdlib covers the standard-library modules generated and lightly
// edited scripts reach for. Not exhaustive; unknown stdlib modules surface
// as false advisories, which is acceptable for a warning.
var pythonStdlib = map[string]struct{}{
	"asyncio":    {},
	"datetime":   {},
	"json":       {},
	"logging":    {},
	"math":       {},
	"os":         {},
	"pathlib":    {},
	"random":     {},
	"re":         {},
	"subprocess": {},
	"sys":        {},
	"time":       {},
	"typing":     {},
	"webbrowser": {},
}

func parsePython(ctx context.Context, source string) (*sitter.Tree, error) {
	parser := sitter.NewParser()
	parser.SetLanguage(python.GetLanguage())

	tree, err := parser.ParseCtx(ctx, nil, []byte(source))
	if err != nil {
		return nil, fmt.Errorf("runner: failed to parse script: %w", err)
	}
	return tree, nil
}

func addModule(seen map[string]struct{}, node *sitter.Node, src []byte) {
	if node == nil {
		return
	}
	name := node.Content(src)
	if name == "" || strings.HasPrefix(name, ".") {
		return
	}
	if i := strings.IndexByte(name, '.'); i > 0 {
		name = name[:i]
	}
	seen[name] = struct{}{}
}

// firstErrorLocation finds the earliest ERROR or missing node and renders a
// 1-based position for the error message.
func firstErrorLocation(root *sitter.Node) string {
	stack := []*sitter.Node{root}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if n.Type() == "ERROR" || n.IsMissing() {
			p := n.StartPoint()
			return fmt.Sprintf("line %d, column %d", p.Row+1, p.Column+1)
		}

		for i := int(n.ChildCount()) - 1; i >= 0; i-- {
			stack = append(stack, n.Child(i))
		}
	}
	return "line 1"
}
