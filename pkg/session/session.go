// Package session holds the state shared by every translation unit of one run.
package session

import "github.com/yaklabco/volblock/pkg/fix"

// Session is the explicitly owned context of one invocation. Passes receive
// it by reference; nothing is kept in package state.
type Session struct {
	// Edits accumulates the text edits of every unit, keyed by canonical path.
	Edits *fix.Ledger

	// Inserted records where directives have already been inserted.
	Inserted *Positions
}

// New creates an empty session.
func New() *Session {
	return &Session{
		Edits:    fix.NewLedger(),
		Inserted: NewPositions(),
	}
}
