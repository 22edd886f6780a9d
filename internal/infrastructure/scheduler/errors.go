package scheduler

import "errors"

var (
	// ErrSchedulerNotRunning means Enqueue was called outside Start/Stop
	ErrSchedulerNotRunning = errors.New("scheduler: not running")

	// ErrQueueFull means the bounded job queue rejected the request
	ErrQueueFull = errors.New("scheduler: queue full")

	ErrInvalidConfig = errors.New("scheduler: invalid configuration")
)
