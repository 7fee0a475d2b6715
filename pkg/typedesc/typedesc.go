// Package typedesc decomposes C declared-type spellings and synthesizes the
// volatile-qualified pointer type used to force an access through memory.
package typedesc

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// Qualifier spellings recognized after a pointer star or inside the base.
const (
	QualConst    = "const"
	QualVolatile = "volatile"
	QualRestrict = "restrict"
)

// volatileSegment is the qualifier plus pointer level appended when the
// targeted level is not volatile yet.
const volatileSegment = " volatile *"

// ErrUnsupported is the category for spellings the engine cannot rewrite.
var ErrUnsupported = errors.New("unsupported type spelling")

// UnsupportedError describes a spelling that matches none of the shapes the
// engine understands, such as function pointers or pointers to arrays.
type UnsupportedError struct {
	Spelling string
	Reason   string
}

func (e *UnsupportedError) Error() string {
	return fmt.Sprintf("unsupported type spelling %q: %s", e.Spelling, e.Reason)
}

// Unwrap allows errors.Is(err, ErrUnsupported).
func (e *UnsupportedError) Unwrap() error {
	return ErrUnsupported
}

// Pointer is one level of indirection with the qualifiers written after its star.
type Pointer struct {
	Qualifiers []string
}

// IsVolatile reports whether the level is volatile-qualified.
func (p Pointer) IsVolatile() bool {
	return slices.Contains(p.Qualifiers, QualVolatile)
}

// Descriptor is the decomposed form of a declared type.
type Descriptor struct {
	// Base is the base type text including its qualifiers, e.g. "const char".
	Base string

	// BaseQualifiers lists the qualifiers found among the base words.
	BaseQualifiers []string

	// Pointers holds the pointer levels, innermost (nearest the base) first.
	Pointers []Pointer

	// Dims holds the array dimensions as written, outermost first.
	// An empty string stands for an incomplete dimension ("[]").
	Dims []string

	// VolatileAdjacent reports that the level a new pointer would point at
	// is already volatile, so no further qualifier is added.
	VolatileAdjacent bool
}

// IsArray reports whether the type has at least one array dimension.
func (d Descriptor) IsArray() bool {
	return len(d.Dims) > 0
}

// PointerDepth returns the number of pointer levels of the element type.
func (d Descriptor) PointerDepth() int {
	return len(d.Pointers)
}

// ArrayDims returns the number of array dimensions.
func (d Descriptor) ArrayDims() int {
	return len(d.Dims)
}

// Element returns the spelling of the type without its array dimensions.
func (d Descriptor) Element() string {
	var b strings.Builder
	b.WriteString(d.Base)
	qualified := false
	for i, p := range d.Pointers {
		if i == 0 || qualified {
			b.WriteByte(' ')
		}
		b.WriteByte('*')
		for _, q := range p.Qualifiers {
			b.WriteByte(' ')
			b.WriteString(q)
		}
		qualified = len(p.Qualifiers) > 0
	}
	return b.String()
}

// String returns the canonical spelling of the described type.
func (d Descriptor) String() string {
	elem := d.Element()
	if len(d.Dims) == 0 {
		return elem
	}
	var b strings.Builder
	b.WriteString(elem)
	if len(d.Pointers) == 0 || len(d.Pointers[len(d.Pointers)-1].Qualifiers) > 0 {
		b.WriteByte(' ')
	}
	for _, dim := range d.Dims {
		b.WriteByte('[')
		b.WriteString(dim)
		b.WriteByte(']')
	}
	return b.String()
}

// PointerType returns the spelling of a pointer type through which a single
// dereference performs a volatile access to the described variable.
//
// For a scalar of type T the result is a pointer to volatile T. For an array
// of N dimensions the variable decays to its address, so the element spelling
// gets N-1 extra stars before the synthesized volatile pointer level.
func (d Descriptor) PointerType() string {
	var prefix string
	if d.IsArray() {
		prefix = d.Element() + strings.Repeat("*", len(d.Dims)-1)
	} else {
		prefix = d.Element() + " "
	}

	if d.VolatileAdjacent {
		return strings.TrimRight(prefix, " ") + " *"
	}
	return prefix + volatileSegment
}

// Parse decomposes a type spelling as printed by the front end, for example
// "int", "const char **", "char * volatile", "int [4]" or "char *[2][3]".
func Parse(spelling string) (Descriptor, error) {
	toks, err := tokenize(spelling)
	if err != nil {
		return Descriptor{}, err
	}
	if len(toks) == 0 {
		return Descriptor{}, &UnsupportedError{Spelling: spelling, Reason: "empty spelling"}
	}

	var desc Descriptor
	var baseWords []string
	hasTypeWord := false
	i := 0

	for ; i < len(toks) && toks[i].kind == tokWord; i++ {
		word := toks[i].text
		if isQualifier(word) {
			desc.BaseQualifiers = append(desc.BaseQualifiers, word)
		} else {
			hasTypeWord = true
		}
		baseWords = append(baseWords, word)
	}
	if !hasTypeWord {
		return Descriptor{}, &UnsupportedError{Spelling: spelling, Reason: "no base type"}
	}
	desc.Base = canonicalBase(baseWords)

	for ; i < len(toks) && toks[i].kind == tokStar; i++ {
		var level Pointer
		for i+1 < len(toks) && toks[i+1].kind == tokWord {
			word := toks[i+1].text
			if !isQualifier(word) {
				return Descriptor{}, &UnsupportedError{
					Spelling: spelling,
					Reason:   fmt.Sprintf("%q after pointer is not a qualifier", word),
				}
			}
			level.Qualifiers = append(level.Qualifiers, word)
			i++
		}
		desc.Pointers = append(desc.Pointers, level)
	}

	for ; i < len(toks) && toks[i].kind == tokDim; i++ {
		desc.Dims = append(desc.Dims, toks[i].text)
	}

	if i != len(toks) {
		return Descriptor{}, &UnsupportedError{
			Spelling: spelling,
			Reason:   fmt.Sprintf("unexpected %q", toks[i].text),
		}
	}

	desc.VolatileAdjacent = desc.targetIsVolatile()
	return desc, nil
}

// VolatilePointer parses spelling and returns the synthesized pointer type
// together with whether the spelling denotes an array.
func VolatilePointer(spelling string) (string, bool, error) {
	desc, err := Parse(spelling)
	if err != nil {
		return "", false, err
	}
	return desc.PointerType(), desc.IsArray(), nil
}

// targetIsVolatile inspects the level the synthesized pointer points at: the
// outermost pointer of the element type, or the base when there is none.
func (d Descriptor) targetIsVolatile() bool {
	if n := len(d.Pointers); n > 0 {
		return d.Pointers[n-1].IsVolatile()
	}
	return slices.Contains(d.BaseQualifiers, QualVolatile)
}

func isQualifier(word string) bool {
	switch word {
	case QualConst, QualVolatile, QualRestrict,
		"__restrict", "__restrict__", "__const", "__volatile__", "_Atomic":
		return true
	default:
		return false
	}
}

// canonicalBase moves qualifiers in front of the type words, the way clang
// prints them ("char const" becomes "const char").
func canonicalBase(words []string) string {
	quals := make([]string, 0, len(words))
	rest := make([]string, 0, len(words))
	for _, w := range words {
		if isQualifier(w) {
			if !slices.Contains(quals, w) {
				quals = append(quals, w)
			}
			continue
		}
		rest = append(rest, w)
	}
	return strings.Join(append(quals, rest...), " ")
}
