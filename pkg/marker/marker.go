// Package marker recognizes volatile block markers: if statements whose test
// is a cast to a reserved sentinel type, e.g.
//
//	if ((___VOLATILE_BLOCK_MARKER) 1) { ... }
package marker

import "github.com/yaklabco/volblock/pkg/cast"

// DefaultSentinel is the reserved type name that tags a marker block.
const DefaultSentinel = "___VOLATILE_BLOCK_MARKER"

// Matcher recognizes marker blocks tagged with Sentinel.
type Matcher struct {
	// Sentinel is compared case-sensitively against the cast's written type.
	Sentinel string
}

// NewMatcher returns a Matcher for sentinel, or for DefaultSentinel if empty.
func NewMatcher(sentinel string) Matcher {
	if sentinel == "" {
		sentinel = DefaultSentinel
	}
	return Matcher{Sentinel: sentinel}
}

// Region is a recognized marker block.
type Region struct {
	// If is the guarding conditional statement.
	If *cast.Node

	// Body is the statement executed when the guard holds.
	Body *cast.Node
}

// Match reports whether n is a marker conditional. Only the literal test
// counts: a sentinel cast under extra parentheses or inside a larger
// expression is not a marker.
func (m Matcher) Match(n *cast.Node) (Region, bool) {
	if n == nil || n.Kind != cast.NodeIfStmt {
		return Region{}, false
	}
	cond := n.Cond()
	if cond == nil || cond.Kind != cast.NodeCast || cond.TypeName != m.Sentinel {
		return Region{}, false
	}
	return Region{If: n, Body: n.Then()}, true
}

// Scan walks root and calls visit for every marker region. The body of a
// region is left to visit; the walk continues with the conditional's else
// branch and with everything outside the region.
func Scan(root *cast.Node, m Matcher, visit func(Region)) {
	cast.Inspect(root, func(n *cast.Node) bool {
		region, ok := m.Match(n)
		if !ok {
			return true
		}
		visit(region)
		Scan(n.Else(), m, visit)
		return false
	})
}

// Contains reports whether any marker region occurs under root.
func Contains(root *cast.Node, m Matcher) bool {
	found := false
	cast.Inspect(root, func(n *cast.Node) bool {
		if found {
			return false
		}
		if _, ok := m.Match(n); ok {
			found = true
			return false
		}
		return true
	})
	return found
}
