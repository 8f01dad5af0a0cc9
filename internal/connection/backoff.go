package connection

import (
	"math/rand"
	"time"
)

// backoff produces the reconnect delay sequence: exponential growth from a
// base delay, capped at a maximum, with jitter so simultaneous reconnects
// don't align. The sequence before jitter is non-decreasing.
type backoff struct {
	base time.Duration
	max  time.Duration

	cur      time.Duration
	attempts int
}

func newBackoff(base, max time.Duration) *backoff {
	if base <= 0 {
		base = time.Second
	}
	if max < base {
		max = base
	}
	return &backoff{base: base, max: max, cur: base}
}

// Next returns the delay to wait before the next attempt and advances the
// sequence. The returned value is jittered to 0.5x-1.5x of the current
// delay, the same shape the REST client uses between retries.
func (b *backoff) Next() time.Duration {
	d := b.cur
	b.attempts++

	b.cur *= 2
	if b.cur > b.max {
		b.cur = b.max
	}

	return d/2 + time.Duration(rand.Int63n(int64(d)))
}

// Reset returns the sequence to the base delay. Called after a sustained
// period of healthy streaming.
func (b *backoff) Reset() {
	b.cur = b.base
	b.attempts = 0
}

// Attempts returns the number of delays handed out since the last reset.
func (b *backoff) Attempts() int {
	return b.attempts
}
