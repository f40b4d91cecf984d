package strategy

import (
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/muggins/cribbage/internal/game"
)

// Timeout wraps a strategy with a decision deadline. When the inner
// strategy blocks past the deadline — a human away from the keyboard, a
// slow network round-trip — the wrapper answers with a deterministic legal
// move instead so the round never deadlocks. The quartz clock lets tests
// drive the deadline synthetically.
//
// A late answer from the inner strategy is discarded; its goroutine is left
// to finish and the buffered channel lets it exit.
type Timeout struct {
	inner    game.Strategy
	fallback game.Strategy
	timeout  time.Duration
	clock    quartz.Clock
	logger   *log.Logger
}

// NewTimeout wraps inner with a decision deadline, falling back to greedy
func NewTimeout(inner game.Strategy, timeout time.Duration, clock quartz.Clock, logger *log.Logger) *Timeout {
	return &Timeout{
		inner:    inner,
		fallback: NewGreedy(),
		timeout:  timeout,
		clock:    clock,
		logger:   logger.WithPrefix("timeout").With("strategy", inner.Name()),
	}
}

// Name implements game.Strategy
func (t *Timeout) Name() string { return t.inner.Name() }

// Retryable implements game.Retryable; the wrapper is as retryable as what
// it wraps.
func (t *Timeout) Retryable() bool {
	r, ok := t.inner.(game.Retryable)
	return ok && r.Retryable()
}

type discardResult struct {
	indices []int
	err     error
}

type playResult struct {
	index int
	err   error
}

// SelectDiscard asks the inner strategy, with a deadline
func (t *Timeout) SelectDiscard(req game.DiscardRequest) ([]int, error) {
	done := make(chan discardResult, 1)
	go func() {
		indices, err := t.inner.SelectDiscard(req)
		done <- discardResult{indices: indices, err: err}
	}()

	timedOut := make(chan struct{})
	timer := t.clock.AfterFunc(t.timeout, func() {
		close(timedOut)
	})
	defer timer.Stop()

	select {
	case res := <-done:
		return res.indices, res.err
	case <-timedOut:
		t.logger.Warn("discard selection timed out, using fallback")
		return t.fallback.SelectDiscard(req)
	}
}

// SelectPlay asks the inner strategy, with a deadline
func (t *Timeout) SelectPlay(req game.PlayRequest) (int, error) {
	done := make(chan playResult, 1)
	go func() {
		idx, err := t.inner.SelectPlay(req)
		done <- playResult{index: idx, err: err}
	}()

	timedOut := make(chan struct{})
	timer := t.clock.AfterFunc(t.timeout, func() {
		close(timedOut)
	})
	defer timer.Stop()

	select {
	case res := <-done:
		return res.index, res.err
	case <-timedOut:
		t.logger.Warn("play selection timed out, using fallback")
		return t.fallback.SelectPlay(req)
	}
}
