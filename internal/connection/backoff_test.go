package connection

import (
	"testing"
	"time"
)

func TestBackoff_NonDecreasingAndCapped(t *testing.T) {
	base := time.Second
	max := 8 * time.Second
	bo := newBackoff(base, max)

	var prev time.Duration
	for i := 0; i < 10; i++ {
		cur := bo.cur
		if cur < prev {
			t.Errorf("attempt %d: delay %s decreased from %s", i, cur, prev)
		}
		if cur > max {
			t.Errorf("attempt %d: delay %s exceeds max %s", i, cur, max)
		}
		prev = cur

		jittered := bo.Next()
		if jittered < cur/2 || jittered > cur+cur/2 {
			t.Errorf("attempt %d: jittered delay %s outside [%s, %s]", i, jittered, cur/2, cur+cur/2)
		}
	}

	if bo.cur != max {
		t.Errorf("delay after many failures = %s, want cap %s", bo.cur, max)
	}
	if bo.Attempts() != 10 {
		t.Errorf("Attempts() = %d, want 10", bo.Attempts())
	}
}

func TestBackoff_ResetAfterStability(t *testing.T) {
	bo := newBackoff(time.Second, time.Minute)

	for i := 0; i < 5; i++ {
		bo.Next()
	}
	if bo.cur == time.Second {
		t.Fatal("delay should have grown before reset")
	}

	bo.Reset()

	if bo.cur != time.Second {
		t.Errorf("delay after reset = %s, want base 1s", bo.cur)
	}
	if bo.Attempts() != 0 {
		t.Errorf("Attempts() after reset = %d, want 0", bo.Attempts())
	}
}

func TestBackoff_DegenerateConfig(t *testing.T) {
	bo := newBackoff(0, -time.Second)
	if bo.base <= 0 {
		t.Errorf("base = %s, want positive", bo.base)
	}
	if bo.max < bo.base {
		t.Errorf("max %s < base %s", bo.max, bo.base)
	}
}
