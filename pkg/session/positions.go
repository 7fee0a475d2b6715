package session

import (
	"sync"

	"github.com/yaklabco/volblock/pkg/cast"
)

// Positions is a set of source locations. It is safe for concurrent use.
type Positions struct {
	mu   sync.Mutex
	seen map[cast.Location]struct{}
}

// NewPositions creates an empty set.
func NewPositions() *Positions {
	return &Positions{seen: make(map[cast.Location]struct{})}
}

// Insert adds loc and reports whether it was absent.
func (p *Positions) Insert(loc cast.Location) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.seen == nil {
		p.seen = make(map[cast.Location]struct{})
	}
	if _, ok := p.seen[loc]; ok {
		return false
	}
	p.seen[loc] = struct{}{}
	return true
}

// Remove deletes loc from the set.
func (p *Positions) Remove(loc cast.Location) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.seen, loc)
}

// Contains reports whether loc is in the set.
func (p *Positions) Contains(loc cast.Location) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.seen[loc]
	return ok
}

// Len returns the number of locations in the set.
func (p *Positions) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.seen)
}
