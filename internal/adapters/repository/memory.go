package repository

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/okian/calcutta/internal/domain/model"
	"github.com/okian/calcutta/internal/domain/scoring"
	"github.com/okian/calcutta/pkg/logger"
	"github.com/okian/calcutta/pkg/metrics"
)

// MemoryStore is an in-memory Store guarded by a RWMutex.
type MemoryStore struct {
	mu     sync.RWMutex
	pools  map[string]Pool
	logger logger.Logger
}

// NewMemoryStore creates an empty store.
func NewMemoryStore(opts ...Option) *MemoryStore {
	s := &MemoryStore{
		pools:  make(map[string]Pool),
		logger: logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Put validates and stores a pool, replacing any pool with the same id.
// When p.RecordedTotals is nil, totals are derived from current progress.
func (s *MemoryStore) Put(ctx context.Context, p Pool) error {
	if err := Validate(p); err != nil {
		return err
	}
	p = p.clone()
	live := scoring.LiveTotals(p.ScoringInput())
	if p.RecordedTotals == nil {
		p.RecordedTotals = live
	} else {
		// Entries without a recorded total fall back to their live total.
		for id, v := range live {
			if _, ok := p.RecordedTotals[id]; !ok {
				p.RecordedTotals[id] = v
			}
		}
	}

	s.mu.Lock()
	s.pools[p.ID] = p
	n := len(s.pools)
	s.mu.Unlock()

	metrics.UpdatePoolsLoaded(n)
	s.logger.Debug(ctx, "pool stored",
		logger.String("pool", p.ID),
		logger.Int("entries", len(p.Entries)),
		logger.Int("teams", len(p.Teams)),
	)
	return nil
}

// Pool returns a copy of the pool.
func (s *MemoryStore) Pool(_ context.Context, id string) (Pool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.pools[id]
	if !ok {
		return Pool{}, fmt.Errorf("pool %q: %w", id, ErrPoolNotFound)
	}
	return p.clone(), nil
}

// Pools lists every pool ordered by id.
func (s *MemoryStore) Pools(_ context.Context) []Summary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Summary, 0, len(s.pools))
	for _, id := range slices.Sorted(maps.Keys(s.pools)) {
		p := s.pools[id]
		out = append(out, Summary{ID: p.ID, Name: p.Name, Entries: len(p.Entries), Teams: len(p.Teams)})
	}
	return out
}

// ApplyProgress sets a team's progress and refreshes recorded totals.
func (s *MemoryStore) ApplyProgress(ctx context.Context, u ProgressUpdate) (bool, error) {
	if u.Wins < 0 || u.Byes < 0 {
		return false, fmt.Errorf("team %q wins=%d byes=%d: %w", u.TeamID, u.Wins, u.Byes, ErrInvalidProgress)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.pools[u.PoolID]
	if !ok {
		return false, fmt.Errorf("pool %q: %w", u.PoolID, ErrPoolNotFound)
	}
	idx := slices.IndexFunc(p.Teams, func(t model.Team) bool { return t.ID == u.TeamID })
	if idx < 0 {
		return false, fmt.Errorf("pool %q team %q: %w", u.PoolID, u.TeamID, ErrTeamNotFound)
	}
	team := p.Teams[idx]
	if !u.TS.IsZero() && u.TS.Before(team.UpdatedAt) {
		s.logger.Debug(ctx, "stale team progress ignored",
			logger.String("pool", p.ID),
			logger.String("team", u.TeamID),
			logger.String("ts", u.TS.Format(time.RFC3339Nano)),
			logger.String("updatedAt", team.UpdatedAt.Format(time.RFC3339Nano)),
		)
		return false, nil
	}
	same := team.Wins == u.Wins && team.Byes == u.Byes && team.Eliminated == u.Eliminated
	if same && !u.TS.After(team.UpdatedAt) {
		return false, nil
	}

	// Copy on write so snapshots handed out earlier stay untouched.
	p.Teams = slices.Clone(p.Teams)
	if u.TS.After(team.UpdatedAt) {
		p.Teams[idx].UpdatedAt = u.TS
	}
	if same {
		s.pools[p.ID] = p
		return false, nil
	}
	p.Teams[idx].Wins = u.Wins
	p.Teams[idx].Byes = u.Byes
	p.Teams[idx].Eliminated = u.Eliminated
	p.RecordedTotals = scoring.LiveTotals(p.ScoringInput())
	s.pools[p.ID] = p

	s.logger.Info(ctx, "team progress applied",
		logger.String("pool", p.ID),
		logger.String("team", u.TeamID),
		logger.Int("wins", u.Wins),
		logger.Int("byes", u.Byes),
		logger.Bool("eliminated", u.Eliminated),
	)
	return true, nil
}

// Count returns the number of pools.
func (s *MemoryStore) Count(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.pools)
}

// Validate checks a pool at the boundary before it reaches the engine.
func Validate(p Pool) error {
	var problems []string
	add := func(format string, args ...any) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	if strings.TrimSpace(p.ID) == "" {
		add("missing id")
	}
	for i, r := range p.Rules {
		if r.WinIndex < 0 {
			add("scoring rule %d: negative win index", i)
		}
	}
	for pos, cents := range p.Payouts {
		if pos < 1 {
			add("payout position %d: must be >= 1", pos)
		}
		if cents < 0 {
			add("payout position %d: negative amount", pos)
		}
	}

	teams := make(map[string]bool, len(p.Teams))
	for _, t := range p.Teams {
		switch {
		case strings.TrimSpace(t.ID) == "":
			add("team with empty id")
		case teams[t.ID]:
			add("duplicate team %q", t.ID)
		}
		if t.Wins < 0 || t.Byes < 0 {
			add("team %q: negative progress", t.ID)
		}
		teams[t.ID] = true
	}

	entries := make(map[string]bool, len(p.Entries))
	for _, e := range p.Entries {
		switch {
		case strings.TrimSpace(e.ID) == "":
			add("entry with empty id")
		case entries[e.ID]:
			add("duplicate entry %q", e.ID)
		}
		if strings.TrimSpace(e.CreatedAt) == "" {
			add("entry %q: missing created_at", e.ID)
		}
		entries[e.ID] = true
	}

	for _, o := range p.Ownerships {
		if !entries[o.EntryID] {
			add("ownership references unknown entry %q", o.EntryID)
		}
		if !teams[o.TeamID] {
			add("ownership references unknown team %q", o.TeamID)
		}
		if o.Share < 0 || o.Share > 1 {
			add("ownership %s/%s: share %v outside [0,1]", o.EntryID, o.TeamID, o.Share)
		}
	}

	if len(problems) > 0 {
		slices.Sort(problems)
		return fmt.Errorf("pool %q: %s: %w", p.ID, strings.Join(problems, "; "), ErrInvalidPool)
	}
	return nil
}
