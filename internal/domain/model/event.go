// Package model contains domain models passed between layers.
package model

import "time"

// ProgressEvent reports a team's absolute tournament progress.
// Fields mirror the JSON body of POST /events.
type ProgressEvent struct {
	EventID    string    // unique id for idempotency
	PoolID     string    // pool the team belongs to
	TeamID     string    // team whose progress changed
	Wins       int       // total wins so far
	Byes       int       // total byes so far
	Eliminated bool      // team is out of the tournament
	TS         time.Time // event timestamp
}
