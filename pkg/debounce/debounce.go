package debounce

import (
	"sync"
	"time"
)

// Debouncer delays calls to a handler until no further Trigger has happened
// for the configured delay. Only the argument of the last Trigger in a burst
// is delivered.
type Debouncer[T any] struct {
	delay   time.Duration
	handler func(T)

	mu    sync.Mutex
	timer *time.Timer
	gen   uint64
}

func New[T any](delay time.Duration, handler func(T)) *Debouncer[T] {
	return &Debouncer[T]{
		delay:   delay,
		handler: handler,
	}
}

// Trigger supersedes any pending call and schedules handler(arg) after the delay.
func (d *Debouncer[T]) Trigger(arg T) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopLocked()
	gen := d.gen
	d.timer = time.AfterFunc(d.delay, func() {
		d.mu.Lock()
		if gen != d.gen {
			// superseded after the timer had already fired
			d.mu.Unlock()
			return
		}
		d.timer = nil
		d.mu.Unlock()

		d.handler(arg)
	})
}

// Cancel drops the pending call, if any.
func (d *Debouncer[T]) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopLocked()
}

// Pending reports whether a call is scheduled and has not fired yet.
func (d *Debouncer[T]) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.timer != nil
}

func (d *Debouncer[T]) stopLocked() {
	d.gen++
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
