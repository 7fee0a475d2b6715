package treesitter

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

type ctypeKind int

const (
	kindBase ctypeKind = iota
	kindPointer
	kindArray
	kindFunction
)

// ctype is a C type built from a specifier list and a declarator.
type ctype struct {
	kind  ctypeKind
	quals []string

	// base is the specifier text of a kindBase type.
	base string

	// elem is the pointee, array element, or return type.
	elem *ctype

	// size is the dimension text of a kindArray type.
	size string

	// params lists the parameter spellings of a kindFunction type.
	params []string
}

// qualifierOrder fixes the order qualifiers are printed in.
var qualifierOrder = []string{"const", "volatile", "restrict", "_Atomic"}

func normalizeQualifier(q string) string {
	switch q {
	case "__const", "__const__":
		return "const"
	case "__volatile", "__volatile__":
		return "volatile"
	case "__restrict", "__restrict__":
		return "restrict"
	default:
		return q
	}
}

// canonicalQualifiers deduplicates qs and sorts them into print order.
func canonicalQualifiers(qs []string) []string {
	seen := make(map[string]bool, len(qs))
	for _, q := range qs {
		seen[normalizeQualifier(q)] = true
	}
	var out []string
	for _, q := range qualifierOrder {
		if seen[q] {
			out = append(out, q)
			delete(seen, q)
		}
	}
	for _, q := range qs {
		q = normalizeQualifier(q)
		if seen[q] {
			out = append(out, q)
			delete(seen, q)
		}
	}
	return out
}

func (t *ctype) pointerTo() *ctype {
	return &ctype{kind: kindPointer, elem: t}
}

// decay converts a parameter's array or function type to a pointer.
func (t *ctype) decay() *ctype {
	switch t.kind {
	case kindArray:
		return &ctype{kind: kindPointer, elem: t.elem, quals: t.quals}
	case kindFunction:
		return t.pointerTo()
	default:
		return t
	}
}

// String prints the type the way a declaration of an unnamed object would
// read with the name removed, e.g. "char *[4]", "char * volatile" or
// "int (*)(int)".
func (t *ctype) String() string {
	if s, ok := t.simpleString(); ok {
		return s
	}
	return t.declString("")
}

// simpleString prints types whose derivations are arrays of (pointers to)*
// base types. Other shapes need a parenthesized declarator.
func (t *ctype) simpleString() (string, bool) {
	var dims []string
	cur := t
	for cur.kind == kindArray {
		dims = append(dims, cur.size)
		cur = cur.elem
	}

	var levels [][]string
	for cur.kind == kindPointer {
		levels = append(levels, cur.quals)
		cur = cur.elem
	}
	if cur.kind != kindBase {
		return "", false
	}

	var b strings.Builder
	b.WriteString(baseString(cur))
	lastStar := false
	for i := len(levels) - 1; i >= 0; i-- {
		if !lastStar {
			b.WriteByte(' ')
		}
		b.WriteByte('*')
		for _, q := range levels[i] {
			b.WriteByte(' ')
			b.WriteString(q)
		}
		lastStar = len(levels[i]) == 0
	}
	for i, dim := range dims {
		if i == 0 && !lastStar {
			b.WriteByte(' ')
		}
		b.WriteString("[" + dim + "]")
	}
	return b.String(), true
}

func (t *ctype) declString(inner string) string {
	switch t.kind {
	case kindPointer:
		d := "*"
		for _, q := range t.quals {
			d += " " + q
		}
		if inner != "" {
			if len(t.quals) > 0 {
				d += " "
			}
			d += inner
		}
		if t.elem.kind == kindArray || t.elem.kind == kindFunction {
			d = "(" + d + ")"
		}
		return t.elem.declString(d)
	case kindArray:
		return t.elem.declString(inner + "[" + t.size + "]")
	case kindFunction:
		params := strings.Join(t.params, ", ")
		return t.elem.declString(inner + "(" + params + ")")
	default:
		if inner == "" {
			return baseString(t)
		}
		return baseString(t) + " " + inner
	}
}

func baseString(t *ctype) string {
	if len(t.quals) == 0 {
		return t.base
	}
	return strings.Join(t.quals, " ") + " " + t.base
}

// specifiers is the type-relevant part of a declaration's specifier list.
type specifiers struct {
	base  string
	quals []string
	attrs []string

	// typedef is set for a type_definition's specifiers.
	typedef bool
}

func (s specifiers) ctype() *ctype {
	base := s.base
	if base == "" {
		base = "int"
	}
	return &ctype{kind: kindBase, base: base, quals: canonicalQualifiers(s.quals)}
}

// derive applies the declarator d to base and returns the declared name
// node (nil for abstract declarators) and the resulting type. Parameter
// spellings of function declarators are produced by spellParams.
func derive(d *sitter.Node, base *ctype, src []byte, spellParams func(*sitter.Node) []string) (*sitter.Node, *ctype) {
	t := base
	for d != nil {
		switch d.Type() {
		case "pointer_declarator", "abstract_pointer_declarator":
			t = &ctype{kind: kindPointer, elem: t, quals: canonicalQualifiers(declaratorQualifiers(d, src))}
			d = d.ChildByFieldName("declarator")
		case "array_declarator", "abstract_array_declarator":
			t = &ctype{
				kind:  kindArray,
				elem:  t,
				size:  compactText(d.ChildByFieldName("size"), src),
				quals: canonicalQualifiers(declaratorQualifiers(d, src)),
			}
			d = d.ChildByFieldName("declarator")
		case "function_declarator", "abstract_function_declarator":
			var params []string
			if spellParams != nil {
				params = spellParams(d.ChildByFieldName("parameters"))
			}
			t = &ctype{kind: kindFunction, elem: t, params: params}
			d = d.ChildByFieldName("declarator")
		case "parenthesized_declarator", "abstract_parenthesized_declarator":
			d = firstNamedChild(d, isDeclaratorNode)
		case "attributed_declarator":
			d = firstNamedChild(d, isDeclaratorNode)
		case "init_declarator":
			d = d.ChildByFieldName("declarator")
		default:
			return d, t
		}
	}
	return nil, t
}

func isDeclaratorNode(n *sitter.Node) bool {
	switch n.Type() {
	case "identifier", "field_identifier", "type_identifier",
		"pointer_declarator", "array_declarator", "function_declarator",
		"parenthesized_declarator", "attributed_declarator",
		"abstract_pointer_declarator", "abstract_array_declarator",
		"abstract_function_declarator", "abstract_parenthesized_declarator":
		return true
	default:
		return false
	}
}

func firstNamedChild(n *sitter.Node, pred func(*sitter.Node) bool) *sitter.Node {
	for i := 0; i < int(n.NamedChildCount()); i++ {
		if child := n.NamedChild(i); pred(child) {
			return child
		}
	}
	return nil
}

// declaratorQualifiers returns the qualifiers written directly on a pointer
// declarator or inside an array declarator's brackets.
func declaratorQualifiers(d *sitter.Node, src []byte) []string {
	var quals []string
	for i := 0; i < int(d.NamedChildCount()); i++ {
		child := d.NamedChild(i)
		if child.Type() == "type_qualifier" {
			quals = append(quals, child.Content(src))
		}
	}
	return quals
}

// compactText returns the node's text with runs of whitespace collapsed.
func compactText(n *sitter.Node, src []byte) string {
	if n == nil {
		return ""
	}
	return strings.Join(strings.Fields(n.Content(src)), " ")
}

// typeSpecifierText prints a type specifier node: "unsigned long",
// "struct point", "uint8_t".
func typeSpecifierText(n *sitter.Node, src []byte) string {
	switch n.Type() {
	case "struct_specifier", "union_specifier", "enum_specifier":
		keyword := strings.TrimSuffix(n.Type(), "_specifier")
		if name := n.ChildByFieldName("name"); name != nil {
			return keyword + " " + name.Content(src)
		}
		return keyword + " (anonymous)"
	default:
		return compactText(n, src)
	}
}
