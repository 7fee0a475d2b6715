package runner

import (
	"github.com/yaklabco/volblock/pkg/cast"
	"github.com/yaklabco/volblock/pkg/optnone"
	"github.com/yaklabco/volblock/pkg/rewrite"
)

// Counts summarizes what a pass did to one unit.
type Counts struct {
	// Regions is the number of marker blocks visited.
	Regions int

	// Edits is the number of edits accepted into the ledger.
	Edits int

	// Skipped counts references that were left alone on purpose.
	Skipped int

	// Unsupported counts references whose type could not be rewritten.
	Unsupported int

	// Conflicts counts edits the ledger rejected.
	Conflicts int
}

// Add accumulates other into c.
func (c *Counts) Add(other Counts) {
	c.Regions += other.Regions
	c.Edits += other.Edits
	c.Skipped += other.Skipped
	c.Unsupported += other.Unsupported
	c.Conflicts += other.Conflicts
}

// Pass transforms one parsed unit, recording its edits in the session it was
// created with.
type Pass interface {
	Name() string
	Process(unit *cast.Unit) Counts
}

// Volatilize adapts an access rewriter to a Pass.
func Volatilize(r *rewrite.Rewriter) Pass {
	return volatilizePass{r}
}

type volatilizePass struct{ rw *rewrite.Rewriter }

func (volatilizePass) Name() string { return "volatilize" }

func (p volatilizePass) Process(unit *cast.Unit) Counts {
	stats := p.rw.Process(unit)
	return Counts{
		Regions:     stats.Regions,
		Edits:       stats.Rewritten,
		Skipped:     stats.NonVariable + stats.OutsideMain,
		Unsupported: stats.Unsupported,
		Conflicts:   stats.Conflicts,
	}
}

// Optnone adapts an optimization suppressor to a Pass.
func Optnone(s *optnone.Suppressor) Pass {
	return optnonePass{s}
}

type optnonePass struct{ s *optnone.Suppressor }

func (optnonePass) Name() string { return "optnone" }

func (p optnonePass) Process(unit *cast.Unit) Counts {
	return Counts{Edits: len(p.s.Process(unit))}
}
