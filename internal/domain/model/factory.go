// Package model contains the validated domain entities: players, their
// sporting data, per-match player statistics and matches.
//
// Entities validate every field when they are built and fail fast on the
// first rejected field. Identifiers are drawn from explicit sequences owned
// by a Factory rather than from package state.
package model

import "time"

// Clock returns the current time. "Today" for date checks is derived from it.
type Clock func() time.Time

// Factory builds entities. It owns the player and match id sequences and the
// clock used for "not in the future" checks. A Factory is safe for
// concurrent use.
type Factory struct {
	players  *Sequence
	matches  *Sequence
	clock    Clock
	location *time.Location
}

// Option applies a configuration option to the Factory.
type Option func(*Factory)

// WithPlayerSequence sets the sequence used for auto-assigned player ids.
func WithPlayerSequence(seq *Sequence) Option {
	return func(f *Factory) {
		if seq != nil {
			f.players = seq
		}
	}
}

// WithMatchSequence sets the sequence used for auto-assigned match ids.
func WithMatchSequence(seq *Sequence) Option {
	return func(f *Factory) {
		if seq != nil {
			f.matches = seq
		}
	}
}

// WithClock overrides the wall clock.
func WithClock(clock Clock) Option {
	return func(f *Factory) {
		if clock != nil {
			f.clock = clock
		}
	}
}

// WithLocation sets the zone in which "today" is evaluated.
func WithLocation(loc *time.Location) Option {
	return func(f *Factory) {
		if loc != nil {
			f.location = loc
		}
	}
}

// NewFactory creates a Factory with fresh sequences and the system clock.
func NewFactory(opts ...Option) *Factory {
	f := &Factory{
		players:  NewSequence(0),
		matches:  NewSequence(0),
		clock:    time.Now,
		location: time.Local,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Today returns the current calendar date according to the factory clock.
func (f *Factory) Today() Date {
	return DateOf(f.clock().In(f.location))
}

// PlayerSequence exposes the player id sequence.
func (f *Factory) PlayerSequence() *Sequence { return f.players }

// MatchSequence exposes the match id sequence.
func (f *Factory) MatchSequence() *Sequence { return f.matches }
