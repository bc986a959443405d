// Package standings ranks pool entries and splits the payout pool.
//
// Ordering is points DESC, then CreatedAt DESC (the later entry ranks first),
// then input order. Entries whose points are within Epsilon of the first
// member of their run share a finish position and pool the prizes of every
// slot the run occupies. Pooled prizes are split evenly in integer cents;
// the indivisible remainder goes one cent at a time to the earliest members
// of the run in sort order.
package standings

import (
	"cmp"
	"math"
	"slices"

	"github.com/okian/calcutta/internal/domain/model"
)

// Epsilon is the absolute tolerance for treating two totals as tied.
const Epsilon = 0.0001

type ranked struct {
	entry  model.Entry
	points float64
}

// Compute builds one Standing per entry, returned in leaderboard order.
// Entries missing from pointsByEntry have zero points. Compute is pure and
// deterministic: identical inputs produce identical output.
func Compute(entries []model.Entry, pointsByEntry map[string]float64, payouts model.PayoutSchedule) []model.Standing {
	out := make([]model.Standing, 0, len(entries))
	if len(entries) == 0 {
		return out
	}

	rows := make([]ranked, len(entries))
	for i, e := range entries {
		p := pointsByEntry[e.ID]
		if math.IsNaN(p) {
			p = 0
		}
		rows[i] = ranked{entry: e, points: p}
	}
	slices.SortStableFunc(rows, func(a, b ranked) int {
		if c := cmp.Compare(b.points, a.points); c != 0 {
			return c
		}
		return cmp.Compare(b.entry.CreatedAt, a.entry.CreatedAt)
	})

	for _, g := range Groups(pointsOf(rows)) {
		var pool int64
		for pos := g.Position; pos < g.Position+g.Size; pos++ {
			pool += payouts.At(pos)
		}
		size := int64(g.Size)
		base, remainder := pool/size, pool%size
		for k := range g.Size {
			r := rows[g.Start+k]
			cents := base
			if int64(k) < remainder {
				cents++
			}
			out = append(out, model.Standing{
				EntryID:        r.entry.ID,
				TotalPoints:    r.points,
				FinishPosition: g.Position,
				IsTied:         g.Size > 1,
				PayoutCents:    cents,
				InTheMoney:     cents > 0,
			})
		}
	}
	return out
}

// Group is a maximal run of tied rows in sorted order.
type Group struct {
	Start    int // index of the first member in the sorted sequence
	Size     int
	Position int // shared finish position
}

// Groups splits points, already sorted descending, into tie groups. A group
// extends while |points[j] - points[start]| < Epsilon, measured against the
// group's first member so a long near-equal run cannot drift. Positions use
// competition ranking: each group starts Size slots after the previous one.
func Groups(points []float64) []Group {
	var groups []Group
	position := 1
	for i := 0; i < len(points); {
		j := i + 1
		for j < len(points) && math.Abs(points[j]-points[i]) < Epsilon {
			j++
		}
		groups = append(groups, Group{Start: i, Size: j - i, Position: position})
		position += j - i
		i = j
	}
	return groups
}

// TieGroups counts the groups of size two or more in a computed leaderboard.
func TieGroups(rows []model.Standing) int {
	n := 0
	for i := 0; i < len(rows); {
		j := i + 1
		for j < len(rows) && rows[j].FinishPosition == rows[i].FinishPosition {
			j++
		}
		if j-i > 1 {
			n++
		}
		i = j
	}
	return n
}

// SortForDisplay orders standings by finish position, then by the same
// tie-break Compute uses. Standings whose entry is unknown sort last within
// their position.
func SortForDisplay(rows []model.Standing, entries []model.Entry) {
	created := make(map[string]string, len(entries))
	for _, e := range entries {
		created[e.ID] = e.CreatedAt
	}
	slices.SortStableFunc(rows, func(a, b model.Standing) int {
		if c := cmp.Compare(a.FinishPosition, b.FinishPosition); c != 0 {
			return c
		}
		if c := cmp.Compare(b.TotalPoints, a.TotalPoints); c != 0 {
			return c
		}
		return cmp.Compare(created[b.EntryID], created[a.EntryID])
	})
}

// PayoutTotal sums the payouts of a computed leaderboard.
func PayoutTotal(rows []model.Standing) int64 {
	var sum int64
	for _, r := range rows {
		sum += r.PayoutCents
	}
	return sum
}

func pointsOf(rows []ranked) []float64 {
	out := make([]float64, len(rows))
	for i, r := range rows {
		out[i] = r.points
	}
	return out
}
