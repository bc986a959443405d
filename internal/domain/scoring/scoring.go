// Package scoring turns team tournament progress into points.
//
// The scoring ladder is cumulative: a team whose progress reached round k
// earns the sum of every rule with WinIndex <= k, not only round k's reward.
package scoring

import (
	"github.com/okian/calcutta/internal/domain/model"
)

// uncapped disables the round cap in holdings.
const uncapped = -1

// PointsForProgress returns the cumulative points for a team with the given
// wins and byes. Negative inputs contribute nothing.
func PointsForProgress(rules []model.ScoringRule, wins, byes int) float64 {
	progress := max(wins, 0) + max(byes, 0)
	if progress <= 0 {
		return 0
	}
	var points float64
	for _, r := range rules {
		if r.WinIndex <= progress {
			points += r.PointsAwarded
		}
	}
	return points
}

// CappedProgress returns the team's progress limited to round.
func CappedProgress(team model.Team, round int) int {
	return min(team.Progress(), max(round, 0))
}

// Holding is one ownership's contribution to an entry's total.
type Holding struct {
	TeamID     string
	Share      float64
	Progress   int     // progress used for scoring, capped when a round was given
	TeamPoints float64 // points the whole team earned
	Points     float64 // Share * TeamPoints
}

// Input bundles the pool data needed to derive entry totals.
type Input struct {
	Entries    []model.Entry
	Teams      []model.Team
	Ownerships []model.Ownership
	Rules      []model.ScoringRule
}

// CappedTotals computes each entry's total as if the tournament had stopped
// after round. Every entry in in.Entries appears in the result.
func CappedTotals(in Input, round int) map[string]float64 {
	return totals(in, max(round, 0))
}

// LiveTotals computes each entry's total from the teams' current progress.
func LiveTotals(in Input) map[string]float64 {
	return totals(in, uncapped)
}

func totals(in Input, limit int) map[string]float64 {
	out := make(map[string]float64, len(in.Entries))
	for _, e := range in.Entries {
		out[e.ID] = 0
	}
	teams := indexTeams(in.Teams)
	for _, o := range in.Ownerships {
		if _, ok := out[o.EntryID]; !ok {
			continue
		}
		h, ok := holding(o, teams, in.Rules, limit)
		if !ok {
			continue
		}
		out[o.EntryID] += h.Points
	}
	return out
}

// Holdings lists the contributions of every team owned by entryID, in
// ownership order. round < 0 means uncapped.
func Holdings(in Input, entryID string, round int) []Holding {
	teams := indexTeams(in.Teams)
	var out []Holding
	for _, o := range in.Ownerships {
		if o.EntryID != entryID {
			continue
		}
		if h, ok := holding(o, teams, in.Rules, round); ok {
			out = append(out, h)
		}
	}
	return out
}

func holding(o model.Ownership, teams map[string]model.Team, rules []model.ScoringRule, limit int) (Holding, bool) {
	team, ok := teams[o.TeamID]
	if !ok {
		return Holding{}, false
	}
	var teamPoints float64
	progress := team.Progress()
	if limit >= 0 {
		// Byes are folded into the capped value, so the scorer sees byes=0.
		progress = CappedProgress(team, limit)
		teamPoints = PointsForProgress(rules, progress, 0)
	} else {
		teamPoints = PointsForProgress(rules, team.Wins, team.Byes)
	}
	return Holding{
		TeamID:     o.TeamID,
		Share:      o.Share,
		Progress:   progress,
		TeamPoints: teamPoints,
		Points:     o.Share * teamPoints,
	}, true
}

func indexTeams(teams []model.Team) map[string]model.Team {
	idx := make(map[string]model.Team, len(teams))
	for _, t := range teams {
		idx[t.ID] = t
	}
	return idx
}
