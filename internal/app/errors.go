package service

import "errors"

// Sentinel kinds for service errors.
var (
	ErrInvalidRound = errors.New("invalid round")
)
