package cast

// NodeKind classifies the type of a syntax tree node.
type NodeKind uint16

// Node kinds for the C constructs the passes care about. Everything else is
// kept as NodeStmt or NodeExpr so nested statements stay reachable.
const (
	NodeTranslationUnit NodeKind = iota

	// Declarations.
	NodeFunctionDecl
	NodeVarDecl
	NodeParamDecl
	NodeTypedefDecl

	// Statements.
	NodeCompoundStmt
	NodeIfStmt
	NodeStmt

	// Expressions.
	NodeDeclRef
	NodeCast
	NodeParen
	NodeUnevaluated
	NodeExpr
)

var nodeKindNames = [...]string{
	NodeTranslationUnit: "TranslationUnit",
	NodeFunctionDecl:    "FunctionDecl",
	NodeVarDecl:         "VarDecl",
	NodeParamDecl:       "ParamDecl",
	NodeTypedefDecl:     "TypedefDecl",
	NodeCompoundStmt:    "CompoundStmt",
	NodeIfStmt:          "IfStmt",
	NodeStmt:            "Stmt",
	NodeDeclRef:         "DeclRef",
	NodeCast:            "Cast",
	NodeParen:           "Paren",
	NodeUnevaluated:     "Unevaluated",
	NodeExpr:            "Expr",
}

func (k NodeKind) String() string {
	if int(k) < len(nodeKindNames) {
		return nodeKindNames[k]
	}
	return "NodeKind(?)"
}

// Node represents a single node in the C syntax tree.
// Nodes form a tree structure with parent/child/sibling relationships.
type Node struct {
	// Kind identifies what type of node this is.
	Kind NodeKind

	// Tree structure pointers.
	Parent     *Node
	FirstChild *Node
	LastChild  *Node
	Prev       *Node
	Next       *Node

	// File is the source file the node's bytes were read from.
	File *SourceFile

	// Range is the node's byte span within File.
	Range SourceRange

	// Name is the identifier text for NodeDeclRef and declaration nodes.
	Name string

	// TypeName is the written target type of a NodeCast.
	TypeName string

	// Decl is the declaration a NodeDeclRef resolves to (nil when unresolved),
	// or the declaration introduced by a declaration node.
	Decl *Decl

	// Attrs holds the raw attribute texts written on a NodeFunctionDecl.
	Attrs []string

	// Body is the function body of a NodeFunctionDecl with a definition.
	Body *Node
}

// NewNode creates a new node of the specified kind.
func NewNode(kind NodeKind) *Node {
	return &Node{Kind: kind}
}

// AppendChild appends a child node to a parent.
func AppendChild(parent, child *Node) {
	if parent == nil || child == nil {
		return
	}

	child.Parent = parent
	child.Prev = parent.LastChild
	child.Next = nil

	if parent.LastChild != nil {
		parent.LastChild.Next = child
	} else {
		parent.FirstChild = child
	}

	parent.LastChild = child
}

// Children returns a slice of all direct children.
func (n *Node) Children() []*Node {
	var children []*Node
	for child := n.FirstChild; child != nil; child = child.Next {
		children = append(children, child)
	}
	return children
}

// Child returns the i-th direct child, or nil.
func (n *Node) Child(i int) *Node {
	child := n.FirstChild
	for ; child != nil && i > 0; i-- {
		child = child.Next
	}
	return child
}

// Cond returns the test expression of a NodeIfStmt: the expression written
// directly inside the statement's parentheses.
func (n *Node) Cond() *Node {
	if n.Kind != NodeIfStmt {
		return nil
	}
	return n.Child(0)
}

// Then returns the body of a NodeIfStmt.
func (n *Node) Then() *Node {
	if n.Kind != NodeIfStmt {
		return nil
	}
	return n.Child(1)
}

// Else returns the alternative branch of a NodeIfStmt, or nil.
func (n *Node) Else() *Node {
	if n.Kind != NodeIfStmt {
		return nil
	}
	return n.Child(2)
}

// Text returns the source text spanned by the node.
func (n *Node) Text() string {
	if n.File == nil {
		return ""
	}
	return n.File.Text(n.Range)
}
