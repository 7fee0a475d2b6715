package treesitter

import (
	"strconv"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// branch is the outcome of a conditional directive.
type branch int

const (
	// branchUnknown means the condition cannot be decided; every branch is mapped.
	branchUnknown branch = iota
	branchTaken
	branchSkipped
)

// macroTable records the object and function-like macros defined so far.
// Values are kept for diagnostics only; macros are never expanded.
type macroTable map[string]string

func newMacroTable(defines map[string]string) macroTable {
	m := make(macroTable, len(defines))
	for name, value := range defines {
		m[name] = value
	}
	return m
}

func (m macroTable) defined(name string) bool {
	_, ok := m[name]
	return ok
}

// ifdef evaluates #ifdef name, or #ifndef name when negate is set.
func (m macroTable) ifdef(name string, negate bool) branch {
	if m.defined(name) != negate {
		return branchTaken
	}
	return branchSkipped
}

// condition evaluates the expression of an #if or #elif. Only integer
// literals are decided; everything else depends on macros the front end
// cannot see (compiler builtins among them).
func condition(n *sitter.Node, src []byte) branch {
	if n == nil {
		return branchUnknown
	}
	switch n.Type() {
	case "number_literal":
		text := strings.TrimRight(n.Content(src), "uUlL")
		v, err := strconv.ParseInt(text, 0, 64)
		if err != nil {
			return branchUnknown
		}
		if v == 0 {
			return branchSkipped
		}
		return branchTaken
	case "parenthesized_expression":
		if n.NamedChildCount() == 1 {
			return condition(n.NamedChild(0), src)
		}
	case "unary_expression":
		op := n.ChildByFieldName("operator")
		if op != nil && op.Type() == "!" {
			switch condition(n.ChildByFieldName("argument"), src) {
			case branchTaken:
				return branchSkipped
			case branchSkipped:
				return branchTaken
			case branchUnknown:
			}
		}
	}
	return branchUnknown
}

// directiveKind returns the directive token of a conditional node, e.g. "#ifndef".
func directiveKind(n *sitter.Node) string {
	if n.ChildCount() == 0 {
		return ""
	}
	return strings.TrimSpace(n.Child(0).Type())
}

// branchItems returns the body of a conditional directive: its named
// children other than the directive operands and the alternative.
func branchItems(n *sitter.Node) []*sitter.Node {
	skip := []*sitter.Node{
		n.ChildByFieldName("name"),
		n.ChildByFieldName("condition"),
		n.ChildByFieldName("alternative"),
	}
	var items []*sitter.Node
	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		if containsNode(skip, child) || child.Type() == "comment" {
			continue
		}
		items = append(items, child)
	}
	return items
}

// selectBranches returns the items of the branches of conditional n that a
// compiler given the current macro table would (or might) see.
func (m macroTable) selectBranches(n *sitter.Node, src []byte) []*sitter.Node {
	if n == nil {
		return nil
	}

	var outcome branch
	switch n.Type() {
	case "preproc_else":
		return branchItems(n)
	case "preproc_ifdef", "preproc_elifdef":
		name := n.ChildByFieldName("name")
		if name == nil {
			outcome = branchUnknown
			break
		}
		kind := directiveKind(n)
		negate := kind == "#ifndef" || kind == "#elifndef"
		outcome = m.ifdef(name.Content(src), negate)
	case "preproc_if", "preproc_elif":
		outcome = condition(n.ChildByFieldName("condition"), src)
	default:
		return nil
	}

	alternative := n.ChildByFieldName("alternative")
	switch outcome {
	case branchTaken:
		return branchItems(n)
	case branchSkipped:
		return m.selectBranches(alternative, src)
	default:
		return append(branchItems(n), m.selectBranches(alternative, src)...)
	}
}

func isConditional(n *sitter.Node) bool {
	switch n.Type() {
	case "preproc_if", "preproc_ifdef":
		return true
	default:
		return false
	}
}

func sameNode(a, b *sitter.Node) bool {
	return a != nil && b != nil &&
		a.StartByte() == b.StartByte() && a.EndByte() == b.EndByte() && a.Type() == b.Type()
}

func containsNode(nodes []*sitter.Node, n *sitter.Node) bool {
	for _, candidate := range nodes {
		if sameNode(candidate, n) {
			return true
		}
	}
	return false
}
