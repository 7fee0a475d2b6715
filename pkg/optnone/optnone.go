// Package optnone annotates every function that contains a marker block with
// a directive that disables optimization for the whole function.
package optnone

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/yaklabco/volblock/internal/logging"
	"github.com/yaklabco/volblock/pkg/cast"
	"github.com/yaklabco/volblock/pkg/fix"
	"github.com/yaklabco/volblock/pkg/marker"
	"github.com/yaklabco/volblock/pkg/session"
)

// DefaultDirective is inserted in front of a function's first declaration
// specifier.
const DefaultDirective = "__attribute__((optnone)) "

// Options configures a Suppressor.
type Options struct {
	// Marker is the sentinel type name; empty selects marker.DefaultSentinel.
	Marker string

	// Directive is the text inserted before the function; empty selects
	// DefaultDirective.
	Directive string

	// Logger receives ledger conflicts. Nil discards them.
	Logger *log.Logger

	// Out receives one "name@file:offset" line per insertion. Nil selects
	// os.Stdout.
	Out io.Writer
}

// Insertion is a directive accepted into the ledger.
type Insertion struct {
	Name     string
	Location cast.Location
}

func (i Insertion) String() string {
	return fmt.Sprintf("%s@%s:%d", i.Name, i.Location.File, i.Location.Offset)
}

// Suppressor records directive insertions into a session.
type Suppressor struct {
	sess      *session.Session
	matcher   marker.Matcher
	directive string
	logger    *log.Logger
	out       io.Writer
}

// New creates a Suppressor recording into sess.
func New(sess *session.Session, opts Options) *Suppressor {
	s := &Suppressor{
		sess:      sess,
		matcher:   marker.NewMatcher(opts.Marker),
		directive: opts.Directive,
		logger:    opts.Logger,
		out:       opts.Out,
	}
	if s.directive == "" {
		s.directive = DefaultDirective
	}
	if s.logger == nil {
		s.logger = logging.Discard()
	}
	if s.out == nil {
		s.out = os.Stdout
	}
	return s
}

// frame is the state of one function definition being traversed. Frames
// stack so that a nested function keeps its own state apart from the
// enclosing one.
type frame struct {
	fn        *cast.Node
	requested bool
	disabled  bool
}

// Process walks unit and inserts the directive before every function
// definition whose body contains a marker block, unless the function is
// already annotated or its position was handled by an earlier unit.
func (s *Suppressor) Process(unit *cast.Unit) []Insertion {
	var (
		stack      []*frame
		insertions []Insertion
	)

	enter := func(n *cast.Node) error {
		switch {
		case n.Kind == cast.NodeFunctionDecl && n.Body != nil:
			stack = append(stack, &frame{fn: n, disabled: s.alreadyDisabled(n)})
		case n.Kind == cast.NodeIfStmt && len(stack) > 0:
			if _, ok := s.matcher.Match(n); ok {
				stack[len(stack)-1].requested = true
			}
		}
		return nil
	}

	leave := func(n *cast.Node) error {
		if n.Kind != cast.NodeFunctionDecl || n.Body == nil {
			return nil
		}
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if ins, ok := s.finish(unit, top); ok {
			insertions = append(insertions, ins)
		}
		return nil
	}

	// The callbacks never fail.
	_ = cast.WalkWithContext(unit.Root, enter, leave)
	return insertions
}

func (s *Suppressor) finish(unit *cast.Unit, f *frame) (Insertion, bool) {
	if !f.requested {
		return Insertion{}, false
	}
	loc := unit.Location(f.fn)
	if f.disabled {
		s.logger.Debug("optimization already disabled",
			logging.FieldName, f.fn.Name,
			logging.FieldFile, loc.File,
			logging.FieldOffset, loc.Offset)
		return Insertion{}, false
	}
	if !s.sess.Inserted.Insert(loc) {
		return Insertion{}, false
	}

	if err := s.sess.Edits.Add(loc.File, loc.Offset, 0, s.directive); err != nil {
		// Forget the position so that it only counts as handled once its
		// directive is in the ledger.
		s.sess.Inserted.Remove(loc)
		msg := "failed to insert a directive"
		if !errors.Is(err, fix.ErrConflict) {
			msg = "invalid directive insertion"
		}
		s.logger.Error(msg,
			logging.FieldName, f.fn.Name,
			logging.FieldFile, loc.File,
			logging.FieldOffset, loc.Offset,
			logging.FieldError, err)
		return Insertion{}, false
	}

	ins := Insertion{Name: f.fn.Name, Location: loc}
	fmt.Fprintln(s.out, ins.String())
	return ins, true
}

// alreadyDisabled reports whether fn, or an earlier declaration of it,
// carries an optimization-disabling attribute.
func (s *Suppressor) alreadyDisabled(fn *cast.Node) bool {
	attrs := append([]string{}, fn.Attrs...)
	for _, d := range fn.Decl.Redeclarations() {
		attrs = append(attrs, d.Attrs...)
	}
	for _, attr := range attrs {
		if s.disabling(attr) {
			return true
		}
	}
	directive := strings.TrimSpace(s.directive)
	return directive != "" && strings.HasPrefix(fn.Text(), directive)
}

// disabling matches optnone, __optnone__ and clang::optnone spellings as well
// as the configured directive, ignoring whitespace.
func (s *Suppressor) disabling(attr string) bool {
	compact := squeeze(attr)
	if strings.Contains(compact, "optnone") {
		return true
	}
	directive := squeeze(s.directive)
	return directive != "" && strings.Contains(compact, directive)
}

func squeeze(s string) string {
	return strings.Join(strings.Fields(s), "")
}
