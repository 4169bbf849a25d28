package scheduler

import "errors"

var (
	// ErrSweeperNotRunning is returned when triggering a job on a stopped sweeper
	ErrSweeperNotRunning = errors.New("sweeper is not running")

	// ErrInvalidConfig is returned when sweeper configuration is invalid
	ErrInvalidConfig = errors.New("invalid sweeper configuration")
)
