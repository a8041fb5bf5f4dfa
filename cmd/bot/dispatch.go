package main

import (
	"context"
	"sync"
	"time"
)

// dispatcher runs update handlers with a concurrency cap and a per-call
// deadline, and can wait for the ones still running.
type dispatcher struct {
	sem     chan struct{}
	timeout time.Duration
	wg      sync.WaitGroup
}

func newDispatcher(limit int, timeout time.Duration) *dispatcher {
	if limit < 1 {
		limit = 1
	}
	return &dispatcher{
		sem:     make(chan struct{}, limit),
		timeout: timeout,
	}
}

// dispatch blocks for a free slot and starts fn in its own goroutine. It
// returns false without running fn when ctx ends first.
func (d *dispatcher) dispatch(ctx context.Context, fn func(context.Context)) bool {
	select {
	case d.sem <- struct{}{}:
	case <-ctx.Done():
		return false
	}

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		defer func() { <-d.sem }()

		reqCtx, cancel := context.WithTimeout(ctx, d.timeout)
		defer cancel()
		fn(reqCtx)
	}()
	return true
}

func (d *dispatcher) wait() {
	d.wg.Wait()
}
