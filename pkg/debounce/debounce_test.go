package debounce

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// TestDebounce ensures that multiple rapid calls to the debounced function
// only result in a single invocation of the provided function after the debounce period.
func TestDebounce(t *testing.T) {
	var callCount int
	var mu sync.Mutex

	fn := func() {
		mu.Lock()
		defer mu.Unlock()
		callCount++
	}

	d := New(100*time.Millisecond, func(struct{}) { fn() })
	debouncedFn := func() { d.Trigger(struct{}{}) }

	// Call the debounced function multiple times in quick succession
	for i := 0; i < 5; i++ {
		debouncedFn()
		time.Sleep(10 * time.Millisecond) // simulate rapid calls
	}

	// At this point, fn should not have been called yet, since the debounce period hasn't elapsed.
	mu.Lock()
	assert.Equal(t, 0, callCount, "Expected callCount to be 0 before debounce period")
	mu.Unlock()

	// Wait for the debounce period to pass
	time.Sleep(150 * time.Millisecond)

	// Now fn should have been called exactly once.
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 1, callCount, "Expected callCount to be 1 after debounce period")
}

// TestConsecutiveDebounce ensures that if calls resume before the previous debounce completes,
// the timer resets and only one call is made after the final series of calls.
func TestConsecutiveDebounce(t *testing.T) {
	var callCount int
	var mu sync.Mutex

	fn := func() {
		mu.Lock()
		callCount++
		mu.Unlock()
	}

	d := New(100*time.Millisecond, func(struct{}) { fn() })
	debouncedFn := func() { d.Trigger(struct{}{}) }

	// Call once
	debouncedFn()

	// Wait less than the debounce period, call again
	time.Sleep(50 * time.Millisecond)
	debouncedFn()

	// Wait again less than the debounce period, call again
	time.Sleep(50 * time.Millisecond)
	debouncedFn()

	// Now wait long enough for the debounce to trigger
	time.Sleep(200 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 1, callCount, "Expected callCount to be 1")
}

// TestDebounceDeliversLastArgument ensures only the final argument of a burst reaches the handler.
func TestDebounceDeliversLastArgument(t *testing.T) {
	var mu sync.Mutex
	var received []string

	d := New(50*time.Millisecond, func(query string) {
		mu.Lock()
		defer mu.Unlock()
		received = append(received, query)
	})

	for _, q := range []string{"f", "fr", "fra", "fran"} {
		d.Trigger(q)
		time.Sleep(5 * time.Millisecond)
	}
	assert.True(t, d.Pending())

	time.Sleep(150 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"fran"}, received)
	assert.False(t, d.Pending())
}

// TestCancel ensures a cancelled call never fires.
func TestCancel(t *testing.T) {
	var mu sync.Mutex
	callCount := 0

	d := New(50*time.Millisecond, func(int) {
		mu.Lock()
		callCount++
		mu.Unlock()
	})

	d.Trigger(1)
	d.Cancel()
	assert.False(t, d.Pending())

	time.Sleep(120 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 0, callCount)
}

// TestTriggerAfterFire ensures the debouncer can be reused once a call has been delivered.
func TestTriggerAfterFire(t *testing.T) {
	calls := make(chan int, 4)
	d := New(20*time.Millisecond, func(v int) { calls <- v })

	d.Trigger(1)
	assert.Equal(t, 1, <-calls)

	d.Trigger(2)
	d.Trigger(3)
	assert.Equal(t, 3, <-calls)

	select {
	case v := <-calls:
		t.Fatalf("unexpected extra call with %d", v)
	case <-time.After(80 * time.Millisecond):
	}
}
