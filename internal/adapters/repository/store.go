// Package repository holds pool data and the recorded entry totals.
package repository

import (
	"context"
	"maps"
	"slices"
	"time"

	"github.com/okian/calcutta/internal/domain/model"
	"github.com/okian/calcutta/internal/domain/scoring"
)

// Pool is everything the standings engine needs for one Calcutta pool.
type Pool struct {
	ID         string
	Name       string
	Rules      []model.ScoringRule
	Payouts    model.PayoutSchedule
	Teams      []model.Team
	Entries    []model.Entry
	Ownerships []model.Ownership

	// RecordedTotals holds each entry's persisted total points, used verbatim
	// for current standings.
	RecordedTotals map[string]float64
}

// ScoringInput returns the pool data in the shape the scoring package reads.
func (p Pool) ScoringInput() scoring.Input {
	return scoring.Input{
		Entries:    p.Entries,
		Teams:      p.Teams,
		Ownerships: p.Ownerships,
		Rules:      p.Rules,
	}
}

// Entry looks up an entry by id.
func (p Pool) Entry(id string) (model.Entry, bool) {
	for _, e := range p.Entries {
		if e.ID == id {
			return e, true
		}
	}
	return model.Entry{}, false
}

// Team looks up a team by id.
func (p Pool) Team(id string) (model.Team, bool) {
	for _, t := range p.Teams {
		if t.ID == id {
			return t, true
		}
	}
	return model.Team{}, false
}

func (p Pool) clone() Pool {
	p.Rules = slices.Clone(p.Rules)
	p.Payouts = maps.Clone(p.Payouts)
	p.Teams = slices.Clone(p.Teams)
	p.Entries = slices.Clone(p.Entries)
	p.Ownerships = slices.Clone(p.Ownerships)
	p.RecordedTotals = maps.Clone(p.RecordedTotals)
	return p
}

// Summary describes a pool without its contents.
type Summary struct {
	ID      string
	Name    string
	Entries int
	Teams   int
}

// ProgressUpdate sets a team's absolute progress as of TS. An update older
// than the team's last applied one is ignored. A zero TS always applies.
type ProgressUpdate struct {
	PoolID     string
	TeamID     string
	Wins       int
	Byes       int
	Eliminated bool
	TS         time.Time
}

// Store provides read/write access to pools.
type Store interface {
	// Pool returns a snapshot of the pool. Callers may modify the copy.
	// Returns ErrPoolNotFound if the pool is unknown.
	Pool(ctx context.Context, id string) (Pool, error)

	// Pools lists every pool ordered by id.
	Pools(ctx context.Context) []Summary

	// ApplyProgress updates a team and refreshes the pool's recorded totals.
	// Returns false when the update changed nothing or is older than the
	// team's last applied update.
	ApplyProgress(ctx context.Context, u ProgressUpdate) (bool, error)

	// Count returns the number of pools.
	Count(ctx context.Context) int
}
