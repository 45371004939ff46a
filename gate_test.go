package bridge

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestReadinessGate_StartsUnsignaled(t *testing.T) {
	g := NewReadinessGate()
	if g.Signaled() {
		t.Fatal("new gate reports signaled")
	}
	select {
	case <-g.Done():
		t.Fatal("Done channel closed before Signal")
	default:
	}
}

func TestReadinessGate_SignalIdempotent(t *testing.T) {
	g := NewReadinessGate()
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			g.Signal()
		}()
	}
	wg.Wait()
	if !g.Signaled() {
		t.Fatal("gate not signaled after Signal")
	}
	g.Signal() // still a no-op
}

func TestReadinessGate_ReleasesWaitersBeforeAndAfter(t *testing.T) {
	g := NewReadinessGate()

	released := make(chan error, 1)
	go func() {
		released <- g.AwaitReady(context.Background())
	}()

	select {
	case <-released:
		t.Fatal("waiter released before Signal")
	case <-time.After(10 * time.Millisecond):
	}

	g.Signal()
	if err := <-released; err != nil {
		t.Fatalf("AwaitReady = %v, want nil", err)
	}
	// Late waiter returns immediately.
	if err := g.AwaitReady(context.Background()); err != nil {
		t.Fatalf("AwaitReady after signal = %v, want nil", err)
	}
}

func TestReadinessGate_AwaitReadyContextCancel(t *testing.T) {
	g := NewReadinessGate()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := g.AwaitReady(ctx); err != context.Canceled {
		t.Fatalf("AwaitReady = %v, want context.Canceled", err)
	}
	if g.Signaled() {
		t.Fatal("cancellation must not signal the gate")
	}
}

func TestReadinessGate_AwaitReadySignaledWinsOverCancel(t *testing.T) {
	g := NewReadinessGate()
	g.Signal()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := g.AwaitReady(ctx); err != nil {
		t.Fatalf("AwaitReady on signaled gate = %v, want nil", err)
	}
}

func TestReadinessGate_SignalOn(t *testing.T) {
	g := NewReadinessGate()
	ev := make(chan struct{})
	g.SignalOn(nil, ev)

	if g.Signaled() {
		t.Fatal("gate signaled before event")
	}
	close(ev)
	select {
	case <-g.Done():
	case <-time.After(time.Second):
		t.Fatal("gate not signaled after event")
	}
}

func TestReadinessGate_SignalOnFirstEventWins(t *testing.T) {
	g := NewReadinessGate()
	a := make(chan struct{})
	b := make(chan struct{})
	g.SignalOn(a, b)
	a <- struct{}{}
	select {
	case <-g.Done():
	case <-time.After(time.Second):
		t.Fatal("gate not signaled after first event")
	}
}
