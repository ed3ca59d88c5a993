package domain

import (
	"context"
	"sync"
)

// fillFlight is one shared fill and the callers waiting on it.
type fillFlight struct {
	ctx     context.Context
	cancel  context.CancelFunc
	waiters int
	done    bool
}

// fillFlights reference-counts the waiters of each shared fill. A fill's
// context is cancelled as soon as its last waiter leaves, so abandoned work
// stops instead of running to completion in the background.
type fillFlights struct {
	mu      sync.Mutex
	flights map[string]*fillFlight
}

// join registers a waiter on key, opening a new flight when none is live.
// The flight context keeps ctx's values but not its cancellation.
func (f *fillFlights) join(ctx context.Context, key string) *fillFlight {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.flights == nil {
		f.flights = make(map[string]*fillFlight)
	}
	fl, ok := f.flights[key]
	if !ok || fl.done {
		fctx, cancel := context.WithCancel(context.WithoutCancel(ctx))
		fl = &fillFlight{ctx: fctx, cancel: cancel}
		f.flights[key] = fl
	}
	fl.waiters++
	return fl
}

// leave drops a waiter. The last one out cancels the flight.
func (f *fillFlights) leave(key string, fl *fillFlight) {
	f.mu.Lock()
	defer f.mu.Unlock()

	fl.waiters--
	if fl.waiters > 0 {
		return
	}
	fl.cancel()
	if f.flights[key] == fl {
		delete(f.flights, key)
	}
}

// finish marks the fill as complete; later callers open a fresh flight.
func (f *fillFlights) finish(key string, fl *fillFlight) {
	f.mu.Lock()
	defer f.mu.Unlock()

	fl.done = true
	if f.flights[key] == fl {
		delete(f.flights, key)
	}
}

func (f *fillFlights) waiting(key string) int {
	f.mu.Lock()
	defer f.mu.Unlock()

	if fl, ok := f.flights[key]; ok {
		return fl.waiters
	}
	return 0
}
