// Package cast provides the C syntax tree the transformation passes consume.
// It is produced by a front end (see pkg/parser/treesitter) and carries:
// - SourceFile: bytes of the main file and every header read for it
// - Node: the statement and expression tree with byte ranges
// - Decl: resolved declarations that references point at
package cast

// Unit is one parsed translation unit.
type Unit struct {
	// Main is the file the unit was compiled from.
	Main *SourceFile

	// Files lists Main followed by every header mapped into the unit.
	Files []*SourceFile

	// Root is the NodeTranslationUnit root.
	Root *Node

	// Errors collects non-fatal problems reported by the front end.
	Errors []string
}

// Location resolves a node to its canonical file and start offset.
func (u *Unit) Location(n *Node) Location {
	if n == nil || n.File == nil {
		return Location{}
	}
	return Location{File: n.File.Canonical, Offset: n.Range.StartOffset}
}

// InMain reports whether the node's bytes lie in the unit's main file.
func (u *Unit) InMain(n *Node) bool {
	return n != nil && u.Main != nil && n.File == u.Main
}
