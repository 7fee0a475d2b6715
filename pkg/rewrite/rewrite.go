// Package rewrite forces every variable access inside a marker block through
// a volatile-qualified pointer.
//
// A scalar reference V of type T becomes
//
//	(* (T volatile *) (&V))
//
// and an array reference becomes ((E volatile *) V) for element type E, so
// that the compiler can neither cache nor elide the access.
package rewrite

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/yaklabco/volblock/internal/logging"
	"github.com/yaklabco/volblock/pkg/cast"
	"github.com/yaklabco/volblock/pkg/fix"
	"github.com/yaklabco/volblock/pkg/marker"
	"github.com/yaklabco/volblock/pkg/session"
	"github.com/yaklabco/volblock/pkg/typedesc"
)

// Options configures a Rewriter.
type Options struct {
	// Marker is the sentinel type name; empty selects marker.DefaultSentinel.
	Marker string

	// Logger receives conflicts and unsupported spellings. Nil discards them.
	Logger *log.Logger
}

// Stats counts what happened to the references of one or more units.
type Stats struct {
	Regions     int
	Rewritten   int
	NonVariable int
	OutsideMain int
	Unsupported int
	Conflicts   int
}

// Add accumulates other into s.
func (s *Stats) Add(other Stats) {
	s.Regions += other.Regions
	s.Rewritten += other.Rewritten
	s.NonVariable += other.NonVariable
	s.OutsideMain += other.OutsideMain
	s.Unsupported += other.Unsupported
	s.Conflicts += other.Conflicts
}

// Rewriter submits access rewrites for the marker blocks of a unit to the
// session's edit ledger.
type Rewriter struct {
	sess    *session.Session
	matcher marker.Matcher
	logger  *log.Logger
}

// New creates a Rewriter recording into sess.
func New(sess *session.Session, opts Options) *Rewriter {
	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	return &Rewriter{
		sess:    sess,
		matcher: marker.NewMatcher(opts.Marker),
		logger:  logger,
	}
}

// Process rewrites the references inside every marker block of unit. Only
// identifiers spelled in the unit's main file are touched.
func (r *Rewriter) Process(unit *cast.Unit) Stats {
	var stats Stats
	marker.Scan(unit.Root, r.matcher, func(region marker.Region) {
		stats.Regions++
		r.rewriteBody(unit, region.Body, &stats)
	})
	return stats
}

func (r *Rewriter) rewriteBody(unit *cast.Unit, body *cast.Node, stats *Stats) {
	cast.Inspect(body, func(n *cast.Node) bool {
		switch n.Kind {
		case cast.NodeUnevaluated:
			return false
		case cast.NodeDeclRef:
			r.rewriteRef(unit, n, stats)
			return false
		default:
			return true
		}
	})
}

func (r *Rewriter) rewriteRef(unit *cast.Unit, ref *cast.Node, stats *Stats) {
	if !ref.Decl.IsVariable() {
		stats.NonVariable++
		return
	}
	if !unit.InMain(ref) {
		stats.OutsideMain++
		return
	}
	if ref.Range.Len() == 0 {
		panic(fmt.Sprintf("rewrite: zero-length reference to %q at %s:%d",
			ref.Name, unit.Main.Canonical, ref.Range.StartOffset))
	}

	text, err := Replacement(ref.Text(), ref.Decl.Type)
	if err != nil {
		stats.Unsupported++
		r.logger.Error("unsupported type spelling",
			logging.FieldFile, unit.Main.Canonical,
			logging.FieldOffset, ref.Range.StartOffset,
			logging.FieldName, ref.Name,
			logging.FieldSpelling, ref.Decl.Type,
			logging.FieldError, err)
		return
	}

	file := unit.Main.Canonical
	if err := r.sess.Edits.Add(file, ref.Range.StartOffset, ref.Range.Len(), text); err != nil {
		stats.Conflicts++
		if !errors.Is(err, fix.ErrConflict) {
			r.logger.Error("invalid replacement", logging.FieldFile, file, logging.FieldError, err)
			return
		}
		r.logger.Error("failed to insert a replacement",
			logging.FieldFile, file,
			logging.FieldRange, fmt.Sprintf("%d..%d", ref.Range.StartOffset, ref.Range.EndOffset-1),
			logging.FieldError, err)
		return
	}
	stats.Rewritten++
}

// Replacement returns the expression that accesses the variable name of
// type spelling through a volatile pointer.
func Replacement(name, spelling string) (string, error) {
	ptr, isArray, err := typedesc.VolatilePointer(spelling)
	if err != nil {
		return "", err
	}
	if isArray {
		return "((" + ptr + ") " + name + ")", nil
	}
	return "(* (" + ptr + ") (&" + name + "))", nil
}
