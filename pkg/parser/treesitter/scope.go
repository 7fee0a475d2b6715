package treesitter

import "github.com/yaklabco/volblock/pkg/cast"

// scope is one level of ordinary-identifier visibility: the file, a
// function's parameters, a block, or a for statement.
type scope struct {
	parent *scope
	names  map[string]*cast.Decl
}

func newScope(parent *scope) *scope {
	return &scope{parent: parent, names: make(map[string]*cast.Decl)}
}

// lookup finds the innermost declaration of name.
func (s *scope) lookup(name string) *cast.Decl {
	for cur := s; cur != nil; cur = cur.parent {
		if d, ok := cur.names[name]; ok {
			return d
		}
	}
	return nil
}

// declare binds d in s. A redeclaration of the same entity in the same
// scope is chained to the earlier one.
func (s *scope) declare(d *cast.Decl) {
	if d == nil || d.Name == "" {
		return
	}
	if prev, ok := s.names[d.Name]; ok && prev.Kind == d.Kind {
		d.Previous = prev
	}
	s.names[d.Name] = d
}

// isTypedef reports whether name currently denotes a typedef.
func (s *scope) isTypedef(name string) bool {
	d := s.lookup(name)
	return d != nil && d.Kind == cast.DeclTypedef
}
