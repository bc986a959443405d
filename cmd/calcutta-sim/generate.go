package main

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math/rand/v2"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/spf13/cobra"
)

var errInvalidFlags = errors.New("invalid flags")

// Prize for each paid position, largest first.
var defaultPayouts = []int64{50_000, 30_000, 20_000}

// Round points double each round, six rounds.
const rounds = 6

var epoch = time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)

type generateOptions struct {
	poolID  string
	entries int
	teams   int
	seed    uint64
	out     string
}

func newGenerateCmd() *cobra.Command {
	var o generateOptions
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Write a random, valid pool fixture",
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, err := generatePool(o)
			if err != nil {
				return err
			}
			if o.out == "" || o.out == "-" {
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}
			if err := os.WriteFile(o.out, data, 0o600); err != nil {
				return fmt.Errorf("write %s: %w", o.out, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote pool %q (%d entries, %d teams) to %s\n", o.poolID, o.entries, o.teams, o.out)
			return nil
		},
	}
	cmd.Flags().StringVar(&o.poolID, "pool", "sim", "Pool id")
	cmd.Flags().IntVar(&o.entries, "entries", 16, "Number of entries")
	cmd.Flags().IntVar(&o.teams, "teams", 64, "Number of teams")
	cmd.Flags().Uint64Var(&o.seed, "seed", 1, "Random seed; the same seed produces the same fixture")
	cmd.Flags().StringVar(&o.out, "out", "-", "Output file, - for stdout")
	return cmd
}

// generatePool builds a fixture in the format repository.LoadFile reads.
// Each team is split evenly between one to three distinct entries.
func generatePool(o generateOptions) ([]byte, error) {
	if o.poolID == "" || o.entries < 1 || o.teams < 1 {
		return nil, fmt.Errorf("%w: pool=%q entries=%d teams=%d", errInvalidFlags, o.poolID, o.entries, o.teams)
	}

	var seed [32]byte
	binary.LittleEndian.PutUint64(seed[:], o.seed)
	src := rand.NewChaCha8(seed)
	rng := rand.New(src)

	rules := make([]any, 0, rounds)
	for i := 1; i <= rounds; i++ {
		rules = append(rules, map[string]any{"win_index": i, "points": float64(int(1) << (i - 1))})
	}

	payouts := make([]any, 0, len(defaultPayouts))
	for i, cents := range defaultPayouts {
		if i >= o.entries {
			break
		}
		payouts = append(payouts, map[string]any{"position": i + 1, "cents": cents})
	}

	teams := make([]any, 0, o.teams)
	for i := range o.teams {
		wins := rng.IntN(rounds + 1)
		byes := 0
		if wins < rounds && rng.IntN(4) == 0 {
			byes = 1
		}
		teams = append(teams, map[string]any{
			"id":         fmt.Sprintf("t%03d", i+1),
			"name":       fmt.Sprintf("Team %d", i+1),
			"wins":       wins,
			"byes":       byes,
			"eliminated": wins+byes < rounds && rng.IntN(2) == 0,
		})
	}

	entryIDs := make([]string, o.entries)
	entries := make([]any, 0, o.entries)
	for i := range o.entries {
		id, err := uuid.NewRandomFromReader(src)
		if err != nil {
			return nil, fmt.Errorf("entry id: %w", err)
		}
		entryIDs[i] = id.String()
		entries = append(entries, map[string]any{
			"id":         entryIDs[i],
			"name":       fmt.Sprintf("Entry %d", i+1),
			"created_at": epoch.Add(time.Duration(i) * time.Minute).Format(time.RFC3339),
		})
	}

	var ownerships []any
	for i := range o.teams {
		owners := min(1+rng.IntN(3), o.entries)
		share := 1 / float64(owners)
		for _, e := range rng.Perm(o.entries)[:owners] {
			ownerships = append(ownerships, map[string]any{
				"entry_id": entryIDs[e],
				"team_id":  fmt.Sprintf("t%03d", i+1),
				"share":    share,
			})
		}
	}

	doc := map[string]any{
		"pools": []any{map[string]any{
			"id":            o.poolID,
			"name":          fmt.Sprintf("Simulated pool %s", o.poolID),
			"scoring_rules": rules,
			"payouts":       payouts,
			"teams":         teams,
			"entries":       entries,
			"ownerships":    ownerships,
		}},
	}
	data, err := yaml.Parser().Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("marshal pool: %w", err)
	}
	return data, nil
}
