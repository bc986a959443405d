package model

import "time"

// ScoringRule awards PointsAwarded to a team whose progress reached WinIndex.
type ScoringRule struct {
	WinIndex      int
	PointsAwarded float64
}

// Entry is one participant's submission in a pool. The standings engine
// only reads ID and CreatedAt.
type Entry struct {
	ID        string
	Name      string
	CreatedAt string // ISO-8601, compared as a string
}

// Team is a tournament team and its progress so far.
type Team struct {
	ID         string
	Name       string
	Wins       int
	Byes       int
	Eliminated bool
	UpdatedAt  time.Time // timestamp of the last applied progress event
}

// Progress returns wins plus byes. Negative counts contribute nothing.
func (t Team) Progress() int {
	return max(t.Wins, 0) + max(t.Byes, 0)
}

// Ownership is the share of a team's points credited to an entry.
type Ownership struct {
	EntryID string
	TeamID  string
	Share   float64 // fraction in [0, 1]
}

// PayoutSchedule maps a 1-based finish position to a prize in integer cents.
type PayoutSchedule map[int]int64

// At returns the prize for position. Missing and negative amounts are 0.
func (p PayoutSchedule) At(position int) int64 {
	if c := p[position]; c > 0 {
		return c
	}
	return 0
}

// Total sums the prizes for positions 1..n.
func (p PayoutSchedule) Total(n int) int64 {
	var sum int64
	for pos := 1; pos <= n; pos++ {
		sum += p.At(pos)
	}
	return sum
}

// Standing is one entry's row of a computed leaderboard.
type Standing struct {
	EntryID        string
	TotalPoints    float64
	FinishPosition int
	IsTied         bool
	PayoutCents    int64
	InTheMoney     bool
}
