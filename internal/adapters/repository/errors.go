package repository

import "errors"

// Sentinel kinds for repository errors.
var (
	ErrPoolNotFound    = errors.New("pool not found")
	ErrTeamNotFound    = errors.New("team not found")
	ErrEntryNotFound   = errors.New("entry not found")
	ErrInvalidPool     = errors.New("invalid pool")
	ErrInvalidProgress = errors.New("invalid progress")
	ErrLoadPools       = errors.New("load pools failed")
)
