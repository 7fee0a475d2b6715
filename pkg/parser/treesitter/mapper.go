package treesitter

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/charmbracelet/log"
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/yaklabco/volblock/pkg/cast"
)

// builder maps the tree-sitter trees of one translation unit, main file and
// headers alike, into a single cast tree.
type builder struct {
	ctx         context.Context
	parser      *sitter.Parser
	logger      *log.Logger
	maxFileSize int64
	search      SearchPath
	macros      macroTable
	unit        *cast.Unit

	// mapped holds the canonical paths already read into the unit.
	mapped map[string]bool

	scope *scope

	// cur and src are the file being mapped and its content.
	cur *cast.SourceFile
	src []byte

	// err is the first fatal error (context cancellation).
	err error
}

// mapFile parses sf and appends its top-level items to the unit root.
func (b *builder) mapFile(sf *cast.SourceFile) error {
	if err := b.ctx.Err(); err != nil {
		return fmt.Errorf("parse cancelled: %w", err)
	}

	tree, err := b.parser.ParseCtx(b.ctx, nil, sf.Content)
	if err != nil {
		return fmt.Errorf("tree-sitter parse of %s failed: %w", sf.Path, err)
	}
	defer tree.Close()

	root := tree.RootNode()
	if root == nil {
		b.unit.Errors = append(b.unit.Errors, sf.Path+": tree-sitter returned no tree")
		return nil
	}

	prevFile, prevSrc := b.cur, b.src
	b.cur, b.src = sf, sf.Content
	defer func() { b.cur, b.src = prevFile, prevSrc }()

	if root.HasError() {
		b.reportSyntaxErrors(root)
	}

	for i := 0; i < int(root.NamedChildCount()); i++ {
		b.mapItem(b.unit.Root, root.NamedChild(i))
		if b.err != nil {
			return b.err
		}
	}
	return nil
}

func (b *builder) reportSyntaxErrors(root *sitter.Node) {
	reported := 0
	var visit func(n *sitter.Node)
	visit = func(n *sitter.Node) {
		if reported >= maxSyntaxErrors {
			return
		}
		if n.Type() == "ERROR" || n.IsMissing() {
			line, col := b.cur.Position(int(n.StartByte()))
			what := "syntax error"
			if n.IsMissing() {
				what = "missing " + n.Type()
			}
			b.unit.Errors = append(b.unit.Errors, fmt.Sprintf("%s:%d:%d: %s", b.cur.Path, line, col, what))
			reported++
			if n.IsMissing() {
				return
			}
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			if child := n.Child(i); child.HasError() || child.IsMissing() {
				visit(child)
			}
		}
	}
	visit(root)
}

// place sets the file and byte range of node from ts.
func (b *builder) place(node *cast.Node, ts *sitter.Node) *cast.Node {
	node.File = b.cur
	if ts != nil {
		node.Range = rangeOf(ts)
	}
	return node
}

func rangeOf(ts *sitter.Node) cast.SourceRange {
	if ts == nil {
		return cast.SourceRange{}
	}
	return cast.SourceRange{StartOffset: int(ts.StartByte()), EndOffset: int(ts.EndByte())}
}

func (b *builder) pushScope() {
	b.scope = newScope(b.scope)
}

func (b *builder) popScope() {
	if b.scope.parent != nil {
		b.scope = b.scope.parent
	}
}

// mapItem maps a declaration, directive, or statement and appends the
// resulting nodes to parent.
func (b *builder) mapItem(parent *cast.Node, n *sitter.Node) {
	if n == nil || b.err != nil {
		return
	}

	switch n.Type() {
	case "comment":
	case "preproc_include":
		b.include(n)
	case "preproc_def", "preproc_function_def":
		if name := n.ChildByFieldName("name"); name != nil {
			b.macros[name.Content(b.src)] = compactText(n.ChildByFieldName("value"), b.src)
		}
	case "preproc_call":
		directive := compactText(n.ChildByFieldName("directive"), b.src)
		if directive == "#undef" {
			delete(b.macros, compactText(n.ChildByFieldName("argument"), b.src))
		}
	case "preproc_if", "preproc_ifdef":
		for _, item := range b.macros.selectBranches(n, b.src) {
			b.mapItem(parent, item)
		}
	case "function_definition":
		cast.AppendChild(parent, b.mapFunction(n))
	case "declaration":
		b.mapDeclaration(parent, n, cast.DeclVariable)
	case "type_definition":
		b.mapTypedef(parent, n)
	case "enum_specifier", "struct_specifier", "union_specifier":
		// A tag defined on its own, as in "enum color { RED };".
		b.declareTagEnumerators(n)
	case "ERROR":
		container := b.place(cast.NewNode(cast.NodeStmt), n)
		for i := 0; i < int(n.NamedChildCount()); i++ {
			b.mapItem(container, n.NamedChild(i))
		}
		cast.AppendChild(parent, container)
	default:
		cast.AppendChild(parent, b.mapNode(n))
	}
}

// include maps the header named by an #include directive into the unit.
func (b *builder) include(n *sitter.Node) {
	operand := compactText(n.ChildByFieldName("path"), b.src)
	name, angled, ok := includeTarget(operand)
	if !ok {
		b.logger.Debug("computed include not followed", "file", b.cur.Path, "include", operand)
		return
	}

	resolved, found := b.search.resolve(name, angled, filepath.Dir(b.cur.Path))
	if !found {
		b.logger.Debug("header not found", "file", b.cur.Path, "include", operand)
		return
	}

	canonical := Canonical(resolved)
	if b.mapped[canonical] {
		return
	}
	b.mapped[canonical] = true

	info, err := os.Stat(resolved)
	if err != nil {
		b.warn("%s: %v", resolved, err)
		return
	}
	if info.Size() > b.maxFileSize {
		b.warn("%s: header skipped: %v (%d bytes, limit %d)", resolved, ErrFileTooLarge, info.Size(), b.maxFileSize)
		return
	}
	content, err := os.ReadFile(resolved)
	if err != nil {
		b.warn("%s: %v", resolved, err)
		return
	}

	sf := cast.NewSourceFile(resolved, canonical, content)
	b.unit.Files = append(b.unit.Files, sf)
	if err := b.mapFile(sf); err != nil && b.err == nil {
		b.err = err
	}
}

func (b *builder) warn(format string, args ...any) {
	b.unit.Errors = append(b.unit.Errors, fmt.Sprintf(format, args...))
}

// specifiers collects the base type, qualifiers, and attributes written
// before the declarators of n. Enumerators of an enum defined there are
// declared in the current scope.
func (b *builder) specifiers(n *sitter.Node) specifiers {
	var spec specifiers
	typeNode := n.ChildByFieldName("type")
	if typeNode != nil {
		spec.base = b.typeName(typeNode)
		b.declareTagEnumerators(typeNode)
	}

	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		switch child.Type() {
		case "type_qualifier":
			spec.quals = append(spec.quals, child.Content(b.src))
		case "attribute_specifier", "attribute_declaration", "ms_declspec_modifier":
			spec.attrs = append(spec.attrs, compactText(child, b.src))
		}
	}
	return spec
}

// typeName prints a type specifier, normalizing sized integer types the way
// a compiler prints them ("unsigned" is "unsigned int", "long int" is "long").
func (b *builder) typeName(n *sitter.Node) string {
	if n.Type() != "sized_type_specifier" {
		return typeSpecifierText(n, b.src)
	}

	words := strings.Fields(n.Content(b.src))
	var mods []string
	base := ""
	for _, w := range words {
		switch w {
		case "signed", "unsigned", "short", "long":
			mods = append(mods, w)
		default:
			base = w
		}
	}
	sized := false
	for _, m := range mods {
		if m == "short" || m == "long" {
			sized = true
		}
	}
	switch {
	case base == "" && !sized:
		base = "int"
	case base == "int" && sized:
		base = ""
	}
	if base != "" {
		mods = append(mods, base)
	}
	return strings.Join(mods, " ")
}

// declareTagEnumerators declares the enumerators of an enum defined by n,
// including enums nested in the members of a struct or union body.
// Enumerators belong to the enclosing scope, not the tag.
func (b *builder) declareTagEnumerators(n *sitter.Node) {
	switch n.Type() {
	case "enum_specifier":
		b.declareEnumerators(n)
	case "struct_specifier", "union_specifier":
		body := n.ChildByFieldName("body")
		if body == nil {
			return
		}
		for i := 0; i < int(body.NamedChildCount()); i++ {
			member := body.NamedChild(i)
			if member.Type() != "field_declaration" {
				continue
			}
			if typeNode := member.ChildByFieldName("type"); typeNode != nil {
				b.declareTagEnumerators(typeNode)
			}
		}
	}
}

func (b *builder) declareEnumerators(n *sitter.Node) {
	body := n.ChildByFieldName("body")
	if body == nil {
		return
	}
	enumName := typeSpecifierText(n, b.src)
	for i := 0; i < int(body.NamedChildCount()); i++ {
		e := body.NamedChild(i)
		if e.Type() != "enumerator" {
			continue
		}
		name := e.ChildByFieldName("name")
		if name == nil {
			continue
		}
		b.scope.declare(&cast.Decl{
			Kind:  cast.DeclEnumConstant,
			Name:  name.Content(b.src),
			Type:  enumName,
			File:  b.cur,
			Range: rangeOf(name),
		})
	}
}

// declarators returns the declarator children of a declaration-like node.
func declarators(n *sitter.Node) []*sitter.Node {
	typeNode := n.ChildByFieldName("type")
	var out []*sitter.Node
	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		if sameNode(child, typeNode) {
			continue
		}
		if child.Type() == "init_declarator" || isDeclaratorNode(child) {
			out = append(out, child)
		}
	}
	return out
}

// declaratorAttrs returns the attributes written inside a declarator chain,
// e.g. after a function's parameter list.
func (b *builder) declaratorAttrs(d *sitter.Node) []string {
	var attrs []string
	for d != nil {
		for i := 0; i < int(d.NamedChildCount()); i++ {
			child := d.NamedChild(i)
			switch child.Type() {
			case "attribute_specifier", "attribute_declaration", "ms_declspec_modifier":
				attrs = append(attrs, compactText(child, b.src))
			}
		}
		switch d.Type() {
		case "parenthesized_declarator", "attributed_declarator":
			d = firstNamedChild(d, isDeclaratorNode)
		default:
			d = d.ChildByFieldName("declarator")
		}
	}
	return attrs
}

// functionDeclaratorOf returns the function declarator that introduces the
// declared function's own parameters: the innermost one on the chain.
func functionDeclaratorOf(d *sitter.Node) *sitter.Node {
	var found *sitter.Node
	for d != nil {
		switch d.Type() {
		case "function_declarator":
			found = d
			d = d.ChildByFieldName("declarator")
		case "pointer_declarator", "array_declarator", "init_declarator":
			d = d.ChildByFieldName("declarator")
		case "parenthesized_declarator", "attributed_declarator":
			d = firstNamedChild(d, isDeclaratorNode)
		default:
			return found
		}
	}
	return found
}

// spellParams prints the parameter types of a function type.
func (b *builder) spellParams(list *sitter.Node) []string {
	if list == nil {
		return nil
	}
	var params []string
	for i := 0; i < int(list.NamedChildCount()); i++ {
		p := list.NamedChild(i)
		switch p.Type() {
		case "parameter_declaration":
			spec := b.specifiers(p)
			_, t := derive(p.ChildByFieldName("declarator"), spec.ctype(), b.src, b.spellParams)
			params = append(params, t.decay().String())
		case "variadic_parameter":
			params = append(params, "...")
		case "identifier":
			params = append(params, "int")
		}
	}
	return params
}

// mapFunction maps a function definition: its parameters become NodeParamDecl
// children followed by the body.
func (b *builder) mapFunction(n *sitter.Node) *cast.Node {
	spec := b.specifiers(n)
	declarator := n.ChildByFieldName("declarator")
	nameNode, t := derive(declarator, spec.ctype(), b.src, b.spellParams)

	fn := b.place(cast.NewNode(cast.NodeFunctionDecl), n)
	if nameNode != nil {
		fn.Name = nameNode.Content(b.src)
	}
	fn.Attrs = append(spec.attrs, b.declaratorAttrs(declarator)...)

	decl := &cast.Decl{
		Kind:  cast.DeclFunction,
		Name:  fn.Name,
		Type:  t.String(),
		File:  b.cur,
		Range: rangeOf(nameNode),
		Attrs: fn.Attrs,
	}
	b.scope.declare(decl)
	fn.Decl = decl

	b.pushScope()
	defer b.popScope()

	if fd := functionDeclaratorOf(declarator); fd != nil {
		b.mapParams(fn, fd.ChildByFieldName("parameters"))
	}

	// Old-style parameter declarations between the declarator and the body.
	for i := 0; i < int(n.NamedChildCount()); i++ {
		if child := n.NamedChild(i); child.Type() == "declaration" {
			b.mapDeclaration(fn, child, cast.DeclParameter)
		}
	}

	if body := n.ChildByFieldName("body"); body != nil {
		fn.Body = b.mapCompound(body)
		cast.AppendChild(fn, fn.Body)
	}
	return fn
}

func (b *builder) mapParams(fn *cast.Node, list *sitter.Node) {
	if list == nil {
		return
	}
	for i := 0; i < int(list.NamedChildCount()); i++ {
		p := list.NamedChild(i)
		var decl *cast.Decl
		switch p.Type() {
		case "parameter_declaration":
			spec := b.specifiers(p)
			nameNode, t := derive(p.ChildByFieldName("declarator"), spec.ctype(), b.src, b.spellParams)
			if nameNode == nil || nameNode.Type() != "identifier" {
				continue
			}
			decl = &cast.Decl{
				Kind:  cast.DeclParameter,
				Name:  nameNode.Content(b.src),
				Type:  t.decay().String(),
				File:  b.cur,
				Range: rangeOf(nameNode),
				Attrs: spec.attrs,
			}
		case "identifier":
			decl = &cast.Decl{
				Kind:  cast.DeclParameter,
				Name:  p.Content(b.src),
				Type:  "int",
				File:  b.cur,
				Range: rangeOf(p),
			}
		default:
			continue
		}
		b.scope.declare(decl)
		node := b.place(cast.NewNode(cast.NodeParamDecl), p)
		node.Name = decl.Name
		node.Decl = decl
		cast.AppendChild(fn, node)
	}
}

// mapDeclaration maps every declarator of a declaration. Objects become
// NodeVarDecl children holding their initializer; prototypes become
// body-less NodeFunctionDecl children.
func (b *builder) mapDeclaration(parent *cast.Node, n *sitter.Node, kind cast.DeclKind) {
	spec := b.specifiers(n)
	for _, d := range declarators(n) {
		var value *sitter.Node
		if d.Type() == "init_declarator" {
			value = d.ChildByFieldName("value")
		}

		// Array sizes are evaluated before the declared name is in scope.
		sizes := b.mapArraySizes(d)

		nameNode, t := derive(d, spec.ctype(), b.src, b.spellParams)
		if nameNode == nil || nameNode.Type() != "identifier" {
			for _, size := range sizes {
				cast.AppendChild(parent, size)
			}
			if value != nil {
				cast.AppendChild(parent, b.mapNode(value))
			}
			continue
		}
		name := nameNode.Content(b.src)

		if t.kind == kindFunction {
			attrs := append(append([]string{}, spec.attrs...), b.declaratorAttrs(d)...)
			decl := &cast.Decl{
				Kind:  cast.DeclFunction,
				Name:  name,
				Type:  t.String(),
				File:  b.cur,
				Range: rangeOf(nameNode),
				Attrs: attrs,
			}
			b.scope.declare(decl)
			node := b.place(cast.NewNode(cast.NodeFunctionDecl), n)
			node.Name = name
			node.Decl = decl
			node.Attrs = attrs
			cast.AppendChild(parent, node)
			continue
		}

		if kind == cast.DeclParameter {
			t = t.decay()
		}
		decl := &cast.Decl{
			Kind:  kind,
			Name:  name,
			Type:  t.String(),
			File:  b.cur,
			Range: rangeOf(nameNode),
			Attrs: spec.attrs,
		}
		b.scope.declare(decl)

		node := b.place(cast.NewNode(cast.NodeVarDecl), d)
		node.Name = name
		node.Decl = decl
		for _, size := range sizes {
			cast.AppendChild(node, size)
		}
		if value != nil {
			cast.AppendChild(node, b.mapNode(value))
		}
		cast.AppendChild(parent, node)
	}
}

// mapArraySizes maps the size expressions of the array declarators on d's
// chain, in source order. Parameter lists of function declarators are not
// entered.
func (b *builder) mapArraySizes(d *sitter.Node) []*cast.Node {
	var sizes []*cast.Node
	for d != nil {
		switch d.Type() {
		case "array_declarator":
			if size := b.mapNode(d.ChildByFieldName("size")); size != nil {
				sizes = append(sizes, size)
			}
			d = d.ChildByFieldName("declarator")
		case "init_declarator", "pointer_declarator":
			d = d.ChildByFieldName("declarator")
		case "parenthesized_declarator", "attributed_declarator":
			d = firstNamedChild(d, isDeclaratorNode)
		default:
			d = nil
		}
	}
	slices.Reverse(sizes)
	return sizes
}

func (b *builder) mapTypedef(parent *cast.Node, n *sitter.Node) {
	spec := b.specifiers(n)
	for _, d := range declarators(n) {
		nameNode, t := derive(d, spec.ctype(), b.src, b.spellParams)
		if nameNode == nil {
			continue
		}
		decl := &cast.Decl{
			Kind:  cast.DeclTypedef,
			Name:  nameNode.Content(b.src),
			Type:  t.String(),
			File:  b.cur,
			Range: rangeOf(nameNode),
		}
		b.scope.declare(decl)
		node := b.place(cast.NewNode(cast.NodeTypedefDecl), d)
		node.Name = decl.Name
		node.Decl = decl
		cast.AppendChild(parent, node)
	}
}

func (b *builder) mapCompound(n *sitter.Node) *cast.Node {
	node := b.place(cast.NewNode(cast.NodeCompoundStmt), n)
	b.pushScope()
	defer b.popScope()
	for i := 0; i < int(n.NamedChildCount()); i++ {
		b.mapItem(node, n.NamedChild(i))
	}
	return node
}

// mapIf maps an if statement to a NodeIfStmt whose children are the test
// (the expression inside the statement's own parentheses), the body, and the
// optional else branch.
func (b *builder) mapIf(n *sitter.Node) *cast.Node {
	node := b.place(cast.NewNode(cast.NodeIfStmt), n)

	condition := n.ChildByFieldName("condition")
	var test *cast.Node
	if condition != nil && condition.Type() == "parenthesized_expression" {
		if inner := firstNamedChild(condition, notComment); inner != nil {
			test = b.mapNode(inner)
		}
	}
	if test == nil {
		test = b.place(cast.NewNode(cast.NodeExpr), condition)
	}
	cast.AppendChild(node, test)

	then := b.mapNode(n.ChildByFieldName("consequence"))
	if then == nil {
		then = b.place(cast.NewNode(cast.NodeStmt), nil)
	}
	cast.AppendChild(node, then)

	if alt := n.ChildByFieldName("alternative"); alt != nil {
		if alt.Type() == "else_clause" {
			alt = firstNamedChild(alt, notComment)
		}
		if elseNode := b.mapNode(alt); elseNode != nil {
			cast.AppendChild(node, elseNode)
		}
	}
	return node
}

func notComment(n *sitter.Node) bool {
	return n.Type() != "comment"
}

func (b *builder) mapFor(n *sitter.Node) *cast.Node {
	node := b.place(cast.NewNode(cast.NodeStmt), n)
	b.pushScope()
	defer b.popScope()
	for i := 0; i < int(n.NamedChildCount()); i++ {
		b.mapItem(node, n.NamedChild(i))
	}
	return node
}

// mapNode maps a statement or expression to a single node. It returns nil
// for type names and other nodes without evaluated content.
func (b *builder) mapNode(n *sitter.Node) *cast.Node {
	if n == nil {
		return nil
	}

	switch n.Type() {
	case "comment", "type_descriptor", "primitive_type", "type_identifier", "sized_type_specifier",
		"struct_specifier", "union_specifier", "enum_specifier", "macro_type_specifier",
		"type_qualifier", "storage_class_specifier", "attribute_specifier", "attribute_declaration",
		"field_identifier", "statement_identifier", "ms_declspec_modifier":
		return nil

	case "identifier":
		ref := b.place(cast.NewNode(cast.NodeDeclRef), n)
		ref.Name = n.Content(b.src)
		ref.Decl = b.scope.lookup(ref.Name)
		return ref

	case "number_literal", "string_literal", "char_literal", "concatenated_string",
		"true", "false", "null", "system_lib_string":
		return b.place(cast.NewNode(cast.NodeExpr), n)

	case "compound_statement":
		return b.mapCompound(n)

	case "if_statement":
		return b.mapIf(n)

	case "for_statement":
		return b.mapFor(n)

	case "cast_expression":
		node := b.place(cast.NewNode(cast.NodeCast), n)
		node.TypeName = b.typeDescriptor(n.ChildByFieldName("type"))
		cast.AppendChild(node, b.mapNode(n.ChildByFieldName("value")))
		return node

	case "parenthesized_expression":
		return b.mapChildren(cast.NodeParen, n)

	case "sizeof_expression", "alignof_expression", "offsetof_expression":
		return b.mapChildren(cast.NodeUnevaluated, n)

	case "call_expression":
		if castNode := b.callAsCast(n); castNode != nil {
			return castNode
		}
		return b.mapChildren(cast.NodeExpr, n)

	case "binary_expression":
		if castNode := b.binaryAsCast(n); castNode != nil {
			return castNode
		}
		return b.mapChildren(cast.NodeExpr, n)

	case "declaration", "type_definition", "function_definition",
		"preproc_if", "preproc_ifdef", "preproc_include", "preproc_def",
		"preproc_function_def", "preproc_call", "ERROR":
		container := b.place(cast.NewNode(cast.NodeStmt), n)
		b.mapItem(container, n)
		return container
	}

	if strings.HasSuffix(n.Type(), "_statement") {
		return b.mapChildren(cast.NodeStmt, n)
	}
	return b.mapChildren(cast.NodeExpr, n)
}

// mapChildren creates a node of kind and maps every named child of n into it.
func (b *builder) mapChildren(kind cast.NodeKind, n *sitter.Node) *cast.Node {
	node := b.place(cast.NewNode(kind), n)
	for i := 0; i < int(n.NamedChildCount()); i++ {
		b.mapItem(node, n.NamedChild(i))
	}
	return node
}

// typeDescriptor prints the type named in a cast or compound literal.
func (b *builder) typeDescriptor(td *sitter.Node) string {
	if td == nil {
		return ""
	}
	if td.Type() != "type_descriptor" {
		return compactText(td, b.src)
	}
	spec := b.specifiers(td)
	_, t := derive(td.ChildByFieldName("declarator"), spec.ctype(), b.src, b.spellParams)
	return t.String()
}

// parenthesizedTypedef reports whether n is "(T)" for a typedef name T in scope.
func (b *builder) parenthesizedTypedef(n *sitter.Node) (string, bool) {
	if n == nil || n.Type() != "parenthesized_expression" || n.NamedChildCount() != 1 {
		return "", false
	}
	inner := n.NamedChild(0)
	if inner.Type() != "identifier" {
		return "", false
	}
	name := inner.Content(b.src)
	return name, b.scope.isTypedef(name)
}

// callAsCast maps "(T)(x)", which tree-sitter reads as a call, to a cast
// when T names a typedef.
func (b *builder) callAsCast(n *sitter.Node) *cast.Node {
	name, ok := b.parenthesizedTypedef(n.ChildByFieldName("function"))
	if !ok {
		return nil
	}
	args := n.ChildByFieldName("arguments")
	if args == nil {
		return nil
	}

	node := b.place(cast.NewNode(cast.NodeCast), n)
	node.TypeName = name
	cast.AppendChild(node, b.mapChildren(cast.NodeParen, args))
	return node
}

// binaryAsCast maps "(T) -x", "(T) *p", "(T) &v" and "(T) +x", which
// tree-sitter reads as binary expressions, to casts when T names a typedef.
func (b *builder) binaryAsCast(n *sitter.Node) *cast.Node {
	name, ok := b.parenthesizedTypedef(n.ChildByFieldName("left"))
	if !ok {
		return nil
	}
	op := n.ChildByFieldName("operator")
	if op == nil {
		return nil
	}
	switch op.Type() {
	case "-", "+", "*", "&":
	default:
		return nil
	}

	node := b.place(cast.NewNode(cast.NodeCast), n)
	node.TypeName = name

	operand := b.place(cast.NewNode(cast.NodeExpr), nil)
	operand.Range = cast.SourceRange{StartOffset: int(op.StartByte()), EndOffset: int(n.EndByte())}
	cast.AppendChild(operand, b.mapNode(n.ChildByFieldName("right")))
	cast.AppendChild(node, operand)
	return node
}
