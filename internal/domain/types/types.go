// Package types contains the read shapes returned by the API.
package types

import "time"

// Standing is one leaderboard row.
type Standing struct {
	EntryID        string  `json:"entry_id"`
	EntryName      string  `json:"entry_name"`
	TotalPoints    float64 `json:"total_points"`
	FinishPosition int     `json:"finish_position"`
	IsTied         bool    `json:"is_tied"`
	PayoutCents    int64   `json:"payout_cents"`
	InTheMoney     bool    `json:"in_the_money"`
}

// Leaderboard is a pool's computed standings. Round is nil for current
// standings and set for round-capped recomputation.
type Leaderboard struct {
	PoolID         string     `json:"pool_id"`
	Round          *int       `json:"round,omitempty"`
	ComputedAt     time.Time  `json:"computed_at"`
	PoolTotalCents int64      `json:"pool_total_cents"`
	Standings      []Standing `json:"standings"`
}

// Holding is one owned team's contribution to an entry.
type Holding struct {
	TeamID      string  `json:"team_id"`
	TeamName    string  `json:"team_name"`
	Share       float64 `json:"share"`
	Progress    int     `json:"progress"`
	Eliminated  bool    `json:"eliminated"`
	TeamPoints  float64 `json:"team_points"`
	EntryPoints float64 `json:"entry_points"`
}

// EntryDetail is an entry's standing plus its holdings breakdown.
type EntryDetail struct {
	PoolID   string    `json:"pool_id"`
	Round    *int      `json:"round,omitempty"`
	Standing Standing  `json:"standing"`
	Holdings []Holding `json:"holdings"`
}

// PoolSummary lists a pool without its standings.
type PoolSummary struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Entries int    `json:"entries"`
	Teams   int    `json:"teams"`
}
