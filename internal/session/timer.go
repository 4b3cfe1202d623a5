package session

import (
	"sync"
	"time"
)

// SecondsRemaining computes how long the contest has left, applying the
// fixed skew between the candidate's clock and the reference time zone
// the store records contest times in. Never negative.
func SecondsRemaining(endsAt, now time.Time, skew time.Duration) int {
	remaining := endsAt.Sub(now.Add(skew)) / time.Second
	if remaining < 0 {
		return 0
	}
	return int(remaining)
}

// Timer counts a contest session down. It ticks once per interval,
// decrementing by exactly one, and fires the expiry callback exactly
// once when the count reaches zero. Stop is idempotent and suppresses
// any expiry that has not fired yet.
type Timer struct {
	onExpire func()
	interval time.Duration

	mu        sync.Mutex
	remaining int

	stopOnce sync.Once
	stopCh   chan struct{}
}

func NewTimer(endsAt time.Time, skew time.Duration, onExpire func()) *Timer {
	return &Timer{
		onExpire:  onExpire,
		interval:  time.Second,
		remaining: SecondsRemaining(endsAt, time.Now(), skew),
		stopCh:    make(chan struct{}),
	}
}

// Start begins ticking. A timer that was created with nothing remaining
// never ticks and never fires; the session entry guard keeps such
// contests out in the first place.
func (t *Timer) Start() {
	t.mu.Lock()
	remaining := t.remaining
	t.mu.Unlock()
	if remaining <= 0 {
		return
	}
	go t.run()
}

func (t *Timer) run() {
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-t.stopCh:
			return
		case <-ticker.C:
			t.mu.Lock()
			t.remaining--
			expired := t.remaining <= 0
			t.mu.Unlock()

			if expired {
				// Stopping first guarantees the callback cannot race a
				// concurrent Stop into firing after teardown.
				var fire bool
				t.stopOnce.Do(func() {
					close(t.stopCh)
					fire = true
				})
				if fire {
					t.onExpire()
				}
				return
			}
		}
	}
}

// Remaining reports the current count in seconds.
func (t *Timer) Remaining() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.remaining
}

// Stop halts ticking. After Stop returns, the expiry callback will not
// fire unless it was already in flight.
func (t *Timer) Stop() {
	t.stopOnce.Do(func() {
		close(t.stopCh)
	})
}
