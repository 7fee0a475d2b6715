package cast

// DeclKind classifies named entities.
type DeclKind uint8

const (
	DeclVariable DeclKind = iota
	DeclParameter
	DeclFunction
	DeclEnumConstant
	DeclTypedef
)

func (k DeclKind) String() string {
	switch k {
	case DeclVariable:
		return "variable"
	case DeclParameter:
		return "parameter"
	case DeclFunction:
		return "function"
	case DeclEnumConstant:
		return "enum constant"
	case DeclTypedef:
		return "typedef"
	default:
		return "unknown"
	}
}

// Decl is a named entity introduced by a declaration.
type Decl struct {
	Kind DeclKind

	// Name is the declared identifier.
	Name string

	// Type is the declared type spelling, e.g. "char *[4]".
	Type string

	// File and Range locate the declared identifier.
	File  *SourceFile
	Range SourceRange

	// Attrs holds the raw attribute texts written on this declaration.
	Attrs []string

	// Previous links to an earlier declaration of the same entity.
	Previous *Decl
}

// IsVariable reports whether the entity is an object (variable or parameter).
func (d *Decl) IsVariable() bool {
	return d != nil && (d.Kind == DeclVariable || d.Kind == DeclParameter)
}

// Redeclarations returns d followed by every earlier declaration of the entity.
func (d *Decl) Redeclarations() []*Decl {
	var chain []*Decl
	for cur := d; cur != nil; cur = cur.Previous {
		chain = append(chain, cur)
	}
	return chain
}
