package typedesc

import (
	"fmt"
	"strings"
)

type tokenKind int

const (
	tokWord tokenKind = iota
	tokStar
	tokDim
)

type token struct {
	kind tokenKind
	// text is the word, "*", or the dimension contents without brackets.
	text string
}

// tokenize splits a spelling into words, stars, and bracketed dimensions.
// Parentheses never appear in the spellings the engine supports; they mark
// function types and pointers to arrays.
func tokenize(spelling string) ([]token, error) {
	var toks []token
	for i := 0; i < len(spelling); {
		c := spelling[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n':
			i++
		case c == '*':
			toks = append(toks, token{kind: tokStar, text: "*"})
			i++
		case c == '[':
			end := strings.IndexByte(spelling[i:], ']')
			if end < 0 {
				return nil, &UnsupportedError{Spelling: spelling, Reason: "unterminated array dimension"}
			}
			inner := strings.TrimSpace(spelling[i+1 : i+end])
			if strings.ContainsAny(inner, "[()") {
				return nil, &UnsupportedError{Spelling: spelling, Reason: "complex array dimension"}
			}
			toks = append(toks, token{kind: tokDim, text: inner})
			i += end + 1
		case isWordByte(c):
			start := i
			for i < len(spelling) && isWordByte(spelling[i]) {
				i++
			}
			toks = append(toks, token{kind: tokWord, text: spelling[start:i]})
		case c == '(' || c == ')':
			return nil, &UnsupportedError{Spelling: spelling, Reason: "function or parenthesized declarator"}
		default:
			return nil, &UnsupportedError{Spelling: spelling, Reason: fmt.Sprintf("unexpected character %q", c)}
		}
	}
	return toks, nil
}

func isWordByte(c byte) bool {
	return c == '_' || c == '$' ||
		(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}
