package game

import "time"

// ticker fires every period of simulated time, advanced in fixed steps by the
// game loop. Leftover time carries into the next period so the average rate
// matches the period even when it is not a multiple of the step.
type ticker struct {
	period  time.Duration
	elapsed time.Duration
}

// newTicker returns a ticker that fires on its first advance.
func newTicker(period time.Duration) *ticker {
	return &ticker{period: period, elapsed: period}
}

func (t *ticker) advance(step time.Duration) bool {
	fire := t.elapsed >= t.period
	if fire {
		t.elapsed -= t.period
	}
	t.elapsed += step
	return fire
}
