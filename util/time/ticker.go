// Package time provides an injectable ticker abstraction so the
// scheduler's periodic loops can be driven by a fake clock in tests
// instead of wall time.
package time

import "time"

// Ticker is the subset of *time.Ticker the scheduler depends on.
// Production code uses realTicker; tests use a fake that fires on demand.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

type realTicker struct {
	t *time.Ticker
}

// NewTicker returns a Ticker backed by the standard library, firing every d.
func NewTicker(d time.Duration) Ticker {
	return &realTicker{t: time.NewTicker(d)}
}

func (r *realTicker) C() <-chan time.Time {
	return r.t.C
}

func (r *realTicker) Stop() {
	r.t.Stop()
}

// FakeTicker is a test double whose channel is fired explicitly by calling
// Tick. It never fires on its own.
type FakeTicker struct {
	c chan time.Time
}

// NewFakeTicker returns a Ticker that only fires when Tick is called.
func NewFakeTicker() *FakeTicker {
	return &FakeTicker{c: make(chan time.Time, 1)}
}

func (f *FakeTicker) C() <-chan time.Time {
	return f.c
}

func (f *FakeTicker) Stop() {}

// Tick fires the ticker once.
func (f *FakeTicker) Tick() {
	f.c <- time.Now()
}
