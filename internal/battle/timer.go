package battle

import (
	"fmt"
	"sync"
	"time"
)

// RoundTimer is a cancellable countdown. Start arms it for a number of tick
// units; onTick fires once per unit until the duration elapses, then
// onExpire fires exactly once. After Cancel neither callback fires again.
// Re-arming a running timer cancels the previous run first, so two expiries
// can never be delivered for the same arming.
//
// Delivery is fenced by a generation counter: a run whose generation has
// been superseded goes silent even if its tick was already in flight.
type RoundTimer struct {
	interval time.Duration

	mu      sync.Mutex
	gen     uint64
	stop    chan struct{}
	running bool
}

func NewRoundTimer(interval time.Duration) (*RoundTimer, error) {
	if interval <= 0 {
		return nil, fmt.Errorf("round timer interval must be positive, got %s", interval)
	}
	return &RoundTimer{interval: interval}, nil
}

// Start arms the countdown. onTick receives the remaining tick count after
// each unit elapses (reaching 0 on the final tick, immediately before
// onExpire).
func (t *RoundTimer) Start(durationTicks int, onTick func(remaining int), onExpire func()) error {
	if durationTicks <= 0 {
		return fmt.Errorf("round timer duration must be positive, got %d ticks", durationTicks)
	}
	t.mu.Lock()
	if t.running && t.stop != nil {
		close(t.stop)
	}
	t.gen++
	gen := t.gen
	stop := make(chan struct{})
	t.stop = stop
	t.running = true
	t.mu.Unlock()

	go t.run(gen, stop, durationTicks, onTick, onExpire)
	return nil
}

// Cancel stops the countdown; no further callbacks are delivered.
func (t *RoundTimer) Cancel() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.running {
		return
	}
	if t.stop != nil {
		close(t.stop)
		t.stop = nil
	}
	t.gen++
	t.running = false
}

// IsRunning reports whether a countdown is armed.
func (t *RoundTimer) IsRunning() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.running
}

func (t *RoundTimer) run(gen uint64, stop chan struct{}, remaining int, onTick func(int), onExpire func()) {
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if !t.currentGen(gen) {
				return
			}
			remaining--
			if onTick != nil {
				onTick(remaining)
			}
			if remaining <= 0 {
				if t.expire(gen) && onExpire != nil {
					onExpire()
				}
				return
			}
		}
	}
}

func (t *RoundTimer) currentGen(gen uint64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.running && t.gen == gen
}

// expire marks the run finished; returns false when the run was superseded.
func (t *RoundTimer) expire(gen uint64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.running || t.gen != gen {
		return false
	}
	t.running = false
	t.stop = nil
	return true
}
