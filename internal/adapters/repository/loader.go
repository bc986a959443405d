package repository

import (
	"context"
	"fmt"
	"reflect"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/okian/calcutta/internal/domain/model"
	"github.com/okian/calcutta/pkg/logger"
)

// poolFile mirrors the YAML pool fixture format:
//
//	pools:
//	  - id: march-2026
//	    name: March Madness 2026
//	    scoring_rules: [{win_index: 1, points: 1}, ...]
//	    payouts: [{position: 1, cents: 50000}, ...]
//	    teams: [{id: duke, name: Duke, wins: 2, byes: 0, eliminated: false}, ...]
//	    entries: [{id: e1, name: Alice, created_at: "2026-03-01T12:00:00Z", total_points: 4.5}, ...]
//	    ownerships: [{entry_id: e1, team_id: duke, share: 0.25}, ...]
//
// total_points is optional; when absent the entry's total is derived from
// current team progress. An unquoted created_at is a YAML timestamp and is
// normalized to RFC 3339.
type poolFile struct {
	Pools []poolDoc `koanf:"pools"`
}

type poolDoc struct {
	ID           string         `koanf:"id"`
	Name         string         `koanf:"name"`
	ScoringRules []ruleDoc      `koanf:"scoring_rules"`
	Payouts      []payoutDoc    `koanf:"payouts"`
	Teams        []teamDoc      `koanf:"teams"`
	Entries      []entryDoc     `koanf:"entries"`
	Ownerships   []ownershipDoc `koanf:"ownerships"`
}

type ruleDoc struct {
	WinIndex int     `koanf:"win_index"`
	Points   float64 `koanf:"points"`
}

type payoutDoc struct {
	Position int   `koanf:"position"`
	Cents    int64 `koanf:"cents"`
}

type teamDoc struct {
	ID         string `koanf:"id"`
	Name       string `koanf:"name"`
	Wins       int    `koanf:"wins"`
	Byes       int    `koanf:"byes"`
	Eliminated bool   `koanf:"eliminated"`
}

type entryDoc struct {
	ID          string   `koanf:"id"`
	Name        string   `koanf:"name"`
	CreatedAt   string   `koanf:"created_at"`
	TotalPoints *float64 `koanf:"total_points"`
}

type ownershipDoc struct {
	EntryID string  `koanf:"entry_id"`
	TeamID  string  `koanf:"team_id"`
	Share   float64 `koanf:"share"`
}

// LoadFile reads a YAML pool fixture and stores every pool in it.
func (s *MemoryStore) LoadFile(ctx context.Context, path string) error {
	k := koanf.New(".")
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return fmt.Errorf("%w: read %s: %w", ErrLoadPools, path, err)
	}
	var doc poolFile
	if err := k.UnmarshalWithConf("", &doc, koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.DecodeHookFuncType(timeToStringHook),
				mapstructure.StringToTimeDurationHookFunc(),
			),
			Result:           &doc,
			WeaklyTypedInput: true,
		},
	}); err != nil {
		return fmt.Errorf("%w: decode %s: %w", ErrLoadPools, path, err)
	}

	// The file is all or nothing: every pool is built and validated before
	// any is stored.
	pools := make([]Pool, 0, len(doc.Pools))
	seen := make(map[string]bool, len(doc.Pools))
	for _, d := range doc.Pools {
		if seen[d.ID] {
			return fmt.Errorf("%w: duplicate pool %q: %w", ErrLoadPools, d.ID, ErrInvalidPool)
		}
		seen[d.ID] = true

		p, err := d.pool()
		if err != nil {
			return fmt.Errorf("%w: %w", ErrLoadPools, err)
		}
		if err := Validate(p); err != nil {
			return fmt.Errorf("%w: %w", ErrLoadPools, err)
		}
		pools = append(pools, p)
	}
	for _, p := range pools {
		if err := s.Put(ctx, p); err != nil {
			return fmt.Errorf("%w: %w", ErrLoadPools, err)
		}
	}
	s.logger.Info(ctx, "pools loaded", logger.String("path", path), logger.Int("count", len(doc.Pools)))
	return nil
}

func (d poolDoc) pool() (Pool, error) {
	p := Pool{
		ID:         d.ID,
		Name:       d.Name,
		Rules:      make([]model.ScoringRule, len(d.ScoringRules)),
		Payouts:    make(model.PayoutSchedule, len(d.Payouts)),
		Teams:      make([]model.Team, len(d.Teams)),
		Entries:    make([]model.Entry, len(d.Entries)),
		Ownerships: make([]model.Ownership, len(d.Ownerships)),
	}
	for i, r := range d.ScoringRules {
		p.Rules[i] = model.ScoringRule{WinIndex: r.WinIndex, PointsAwarded: r.Points}
	}
	for _, po := range d.Payouts {
		if _, dup := p.Payouts[po.Position]; dup {
			return Pool{}, fmt.Errorf("pool %q: duplicate payout position %d: %w", d.ID, po.Position, ErrInvalidPool)
		}
		p.Payouts[po.Position] = po.Cents
	}
	for i, t := range d.Teams {
		p.Teams[i] = model.Team{ID: t.ID, Name: t.Name, Wins: t.Wins, Byes: t.Byes, Eliminated: t.Eliminated}
	}
	for i, e := range d.Entries {
		p.Entries[i] = model.Entry{ID: e.ID, Name: e.Name, CreatedAt: e.CreatedAt}
		if e.TotalPoints != nil {
			if p.RecordedTotals == nil {
				p.RecordedTotals = make(map[string]float64, len(d.Entries))
			}
			p.RecordedTotals[e.ID] = *e.TotalPoints
		}
	}
	for i, o := range d.Ownerships {
		p.Ownerships[i] = model.Ownership{EntryID: o.EntryID, TeamID: o.TeamID, Share: o.Share}
	}
	return p, nil
}

var timeType = reflect.TypeOf(time.Time{})

// timeToStringHook renders YAML timestamps decoded into string fields.
func timeToStringHook(from, to reflect.Type, data any) (any, error) {
	if from != timeType || to.Kind() != reflect.String {
		return data, nil
	}
	return data.(time.Time).Format(time.RFC3339Nano), nil
}
