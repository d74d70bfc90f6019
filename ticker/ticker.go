// Package ticker drives periodic evaluation of all time-based bot
// state. A single loop goroutine fires at a fixed wall-clock interval;
// each tick runs the isolation sweep first, then broadcasts to every
// registered subscriber in subscription order. All tick work runs
// sequentially, so persisted-state writes never race each other.
package ticker

import (
	"log"
	"sync"
	"time"
)

// TickFunc receives the tick timestamp (UTC). A returned error is
// logged and does not affect other subscribers.
type TickFunc func(now time.Time) error

type subscriber struct {
	key string
	fn  TickFunc
}

// TickLoop fires ticks at a fixed interval and fans them out to a
// keyed list of subscribers. An interval of zero or less disables the
// loop entirely.
type TickLoop struct {
	interval time.Duration

	mu    sync.Mutex
	sweep TickFunc
	subs  []subscriber

	done    chan struct{}
	wg      sync.WaitGroup
	started bool
}

// NewTickLoop creates a loop with the given interval in milliseconds.
func NewTickLoop(intervalMS int) *TickLoop {
	return &TickLoop{
		interval: time.Duration(intervalMS) * time.Millisecond,
		done:     make(chan struct{}),
	}
}

// SetSweep installs the routine that runs at the start of every tick,
// before the subscriber broadcast.
func (l *TickLoop) SetSweep(fn TickFunc) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.sweep = fn
}

// Subscribe registers a tick callback under the given key, replacing
// any previous callback with the same key.
func (l *TickLoop) Subscribe(key string, fn TickFunc) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for idx, sub := range l.subs {
		if sub.key == key {
			l.subs[idx].fn = fn
			return
		}
	}
	l.subs = append(l.subs, subscriber{key: key, fn: fn})
}

// Unsubscribe removes the callback registered under the given key.
func (l *TickLoop) Unsubscribe(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for idx, sub := range l.subs {
		if sub.key == key {
			l.subs = append(l.subs[:idx], l.subs[idx+1:]...)
			return
		}
	}
}

// SubscriberCount returns the number of registered callbacks.
func (l *TickLoop) SubscriberCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.subs)
}

// Start launches the loop goroutine. With a non-positive interval the
// loop does not start; this is logged, not fatal.
func (l *TickLoop) Start() {
	if l.interval <= 0 {
		log.Println("[TickLoop] Tick loop interval is zero or negative. Loop will not start.")
		return
	}
	l.mu.Lock()
	if l.started {
		l.mu.Unlock()
		return
	}
	l.started = true
	l.mu.Unlock()

	log.Printf("[TickLoop] Started with interval %s at %s.", l.interval, time.Now().UTC().Format(time.RFC3339))

	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				log.Printf("[TickLoop] CRITICAL: loop terminated unexpectedly: %v", r)
			}
		}()

		t := time.NewTicker(l.interval)
		defer t.Stop()
		for {
			select {
			case <-l.done:
				log.Println("[TickLoop] Loop was cancelled.")
				return
			case <-t.C:
				l.Tick(time.Now().UTC())
			}
		}
	}()
}

// Stop cancels the loop and waits for it to finish, so in-flight tick
// work completes before shutdown proceeds.
func (l *TickLoop) Stop() {
	l.mu.Lock()
	if !l.started {
		l.mu.Unlock()
		return
	}
	l.started = false
	l.mu.Unlock()

	close(l.done)
	l.wg.Wait()
	log.Println("[TickLoop] Stopped.")
}

// Tick runs one full tick at the given timestamp: the sweep first,
// then every subscriber in subscription order. A panic or error in
// one subscriber is logged and does not prevent the others from
// running, nor does it stop the loop.
func (l *TickLoop) Tick(now time.Time) {
	l.mu.Lock()
	sweep := l.sweep
	subs := make([]subscriber, len(l.subs))
	copy(subs, l.subs)
	l.mu.Unlock()

	if sweep != nil {
		l.invoke("isolation-sweep", sweep, now)
	}
	for _, sub := range subs {
		l.invoke(sub.key, sub.fn, now)
	}
}

func (l *TickLoop) invoke(key string, fn TickFunc, now time.Time) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[TickLoop] Panic in tick subscriber %q: %v", key, r)
		}
	}()
	if err := fn(now); err != nil {
		log.Printf("[TickLoop] Error in tick subscriber %q: %v", key, err)
	}
}
