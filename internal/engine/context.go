package engine

import (
	"errors"
	"time"
)

var (
	ErrQueryTimeout          = errors.New("query execution timeout")
	ErrPositionLimitExceeded = errors.New("phrase position limit exceeded")
	ErrMatchLimitExceeded    = errors.New("document match limit exceeded")
)

// Default execution limits.
const (
	DefaultTimeout             = 5 * time.Second
	DefaultMaxPositionsVisited = 1_000_000
	DefaultMaxDocsMatched      = 100_000
)

// ExecutionContext tracks execution limits and timeout for a query.
type ExecutionContext struct {
	Deadline time.Time

	MaxPositionsVisited int
	MaxDocsMatched      int

	PositionsVisited int
	DocsMatched      int

	// checkCounter amortizes time checks.
	checkCounter  int
	checkInterval int

	TimedOut      bool
	LimitExceeded bool
}

// NewExecutionContext creates a context with the given timeout and limits.
// Non-positive limits select the defaults.
func NewExecutionContext(timeout time.Duration, maxPositions, maxDocs int) *ExecutionContext {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if maxPositions <= 0 {
		maxPositions = DefaultMaxPositionsVisited
	}
	if maxDocs <= 0 {
		maxDocs = DefaultMaxDocsMatched
	}
	return &ExecutionContext{
		Deadline:            time.Now().Add(timeout),
		MaxPositionsVisited: maxPositions,
		MaxDocsMatched:      maxDocs,
		checkInterval:       128,
	}
}

// CheckLimits checks whether any execution limit has been exceeded.
// Time checks are amortized to avoid calling time.Now() on every iteration.
func (ctx *ExecutionContext) CheckLimits() error {
	if ctx.PositionsVisited > ctx.MaxPositionsVisited {
		ctx.LimitExceeded = true
		return ErrPositionLimitExceeded
	}
	if ctx.DocsMatched > ctx.MaxDocsMatched {
		ctx.LimitExceeded = true
		return ErrMatchLimitExceeded
	}

	ctx.checkCounter++
	if ctx.checkCounter%ctx.checkInterval == 0 {
		if time.Now().After(ctx.Deadline) {
			ctx.TimedOut = true
			return ErrQueryTimeout
		}
	}
	return nil
}
