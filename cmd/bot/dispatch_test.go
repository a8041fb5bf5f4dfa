package main

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

func TestDispatcherCapsConcurrency(t *testing.T) {
	d := newDispatcher(2, time.Second)
	release := make(chan struct{})
	var running, peak atomic.Int32

	time.AfterFunc(30*time.Millisecond, func() { close(release) })

	for i := 0; i < 6; i++ {
		ok := d.dispatch(context.Background(), func(context.Context) {
			n := running.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			<-release
			running.Add(-1)
		})
		if !ok {
			t.Fatalf("dispatch %d refused", i)
		}
	}
	d.wait()

	if got := peak.Load(); got > 2 {
		t.Fatalf("peak concurrency = %d, want <= 2", got)
	}
}

func TestDispatcherAppliesTimeout(t *testing.T) {
	d := newDispatcher(1, 20*time.Millisecond)
	var deadline atomic.Bool
	d.dispatch(context.Background(), func(ctx context.Context) {
		_, ok := ctx.Deadline()
		deadline.Store(ok)
		<-ctx.Done()
	})
	d.wait()

	if !deadline.Load() {
		t.Fatal("handler context has no deadline")
	}
}

func TestDispatcherStopsWhenContextEnds(t *testing.T) {
	d := newDispatcher(1, time.Second)
	block := make(chan struct{})
	d.dispatch(context.Background(), func(context.Context) { <-block })

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	ran := false
	if d.dispatch(ctx, func(context.Context) { ran = true }) {
		t.Fatal("dispatch started after cancel")
	}

	close(block)
	d.wait()
	if ran {
		t.Fatal("handler ran after cancel")
	}
}
