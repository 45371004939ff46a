package bridge

import (
	"context"
	"sync"
)

// ReadinessGate is a one-shot synchronization primitive gating cross-runtime
// calls until the embedded interpreter has finished initializing. It starts
// unsignaled; Signal transitions it to signaled exactly once, releasing all
// current and future waiters. Further Signal calls are no-ops.
//
// In auto mode the host arranges for Signal to fire on the interpreter's
// completion event (see SignalOn and the bootstrap's py:done/mpy:done
// listeners). Non-terminating embedded programs — a py-game render loop —
// never fire that event and must signal manually from the embedded side.
type ReadinessGate struct {
	once sync.Once
	done chan struct{}
}

// NewReadinessGate returns an unsignaled gate.
func NewReadinessGate() *ReadinessGate {
	return &ReadinessGate{done: make(chan struct{})}
}

// Signal transitions the gate to signaled. Idempotent; never fails.
func (g *ReadinessGate) Signal() {
	g.once.Do(func() { close(g.done) })
}

// Signaled reports whether the gate has been signaled.
func (g *ReadinessGate) Signaled() bool {
	select {
	case <-g.done:
		return true
	default:
		return false
	}
}

// Done returns a channel closed when the gate signals.
func (g *ReadinessGate) Done() <-chan struct{} {
	return g.done
}

// AwaitReady blocks until the gate signals or ctx is canceled. Returns
// immediately if already signaled.
func (g *ReadinessGate) AwaitReady(ctx context.Context) error {
	select {
	case <-g.done:
		return nil
	default:
	}
	select {
	case <-g.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// SignalOn signals the gate the first time any of the given event channels
// delivers or is closed. Each subscription is fire-once: its goroutine exits
// after the first event, or as soon as the gate is signaled by anyone else.
func (g *ReadinessGate) SignalOn(events ...<-chan struct{}) {
	for _, ev := range events {
		if ev == nil {
			continue
		}
		go func(ev <-chan struct{}) {
			select {
			case <-ev:
				g.Signal()
			case <-g.done:
			}
		}(ev)
	}
}
