package main

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/okian/calcutta/internal/adapters/repository"
	app "github.com/okian/calcutta/internal/app"
	"github.com/okian/calcutta/internal/domain/types"
)

type standingsOptions struct {
	poolFile string
	poolID   string
	round    int
}

func newStandingsCmd() *cobra.Command {
	var o standingsOptions
	cmd := &cobra.Command{
		Use:   "standings",
		Short: "Print a pool's leaderboard",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var round *int
			if cmd.Flags().Changed("round") {
				round = &o.round
			}
			board, err := computeStandings(cmd.Context(), o.poolFile, o.poolID, round)
			if err != nil {
				return err
			}
			return printLeaderboard(cmd.OutOrStdout(), board)
		},
	}
	cmd.Flags().StringVar(&o.poolFile, "pool-file", "", "YAML pool fixture")
	cmd.Flags().StringVar(&o.poolID, "pool", "", "Pool id")
	cmd.Flags().IntVar(&o.round, "round", 0, "Cap each team's progress at this round; omit for current standings")
	_ = cmd.MarkFlagRequired("pool-file")
	_ = cmd.MarkFlagRequired("pool")
	return cmd
}

func computeStandings(ctx context.Context, poolFile, poolID string, round *int) (types.Leaderboard, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	store := repository.NewMemoryStore()
	if err := store.LoadFile(ctx, poolFile); err != nil {
		return types.Leaderboard{}, err
	}
	return app.New(app.WithStore(store)).Standings(ctx, poolID, round)
}

func printLeaderboard(w io.Writer, board types.Leaderboard) error {
	label := "current"
	if board.Round != nil {
		label = fmt.Sprintf("round %d", *board.Round)
	}
	fmt.Fprintf(w, "Pool %s (%s), total %s\n\n", board.PoolID, label, dollars(board.PoolTotalCents))

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "POS\tENTRY\tNAME\tPOINTS\tPAYOUT")
	for _, s := range board.Standings {
		pos := fmt.Sprintf("%d", s.FinishPosition)
		if s.IsTied {
			pos = "T" + pos
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%.4f\t%s\n", pos, s.EntryID, s.EntryName, s.TotalPoints, dollars(s.PayoutCents))
	}
	return tw.Flush()
}

func dollars(cents int64) string {
	return fmt.Sprintf("$%d.%02d", cents/100, cents%100)
}
