// SPDX-License-Identifier: MIT

// Package limiter bounds the number of in-flight operations, used by
// githubclient to cap concurrent requests to the code-hosting service.
package limiter

import (
	"context"

	"golang.org/x/sync/semaphore"
)

// DefaultMaxConcurrent is used when a caller doesn't configure one
// explicitly.
const DefaultMaxConcurrent = 8

// Limiter gates execution so that at most maxConcurrent calls to Do are
// running at once. Waiters are served in roughly FIFO order, per
// golang.org/x/sync/semaphore's own ordering guarantee.
type Limiter struct {
	sem *semaphore.Weighted
}

// New returns a Limiter that allows at most maxConcurrent concurrent calls
// to Do. maxConcurrent <= 0 is treated as DefaultMaxConcurrent.
func New(maxConcurrent int) *Limiter {
	if maxConcurrent <= 0 {
		maxConcurrent = DefaultMaxConcurrent
	}
	return &Limiter{sem: semaphore.NewWeighted(int64(maxConcurrent))}
}

// Do acquires a slot, runs fn, and releases the slot, including when fn
// returns an error or ctx is canceled while fn runs. It returns ctx's error
// if the slot could not be acquired before ctx was canceled.
func (l *Limiter) Do(ctx context.Context, fn func(context.Context) error) error {
	if err := l.sem.Acquire(ctx, 1); err != nil {
		return err
	}
	defer l.sem.Release(1)
	return fn(ctx)
}
