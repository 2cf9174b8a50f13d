package game

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTicker_FiresImmediately(t *testing.T) {
	tk := newTicker(100 * time.Millisecond)
	assert.True(t, tk.advance(16*time.Millisecond))
	assert.False(t, tk.advance(16*time.Millisecond))
}

func TestTicker_AverageRate(t *testing.T) {
	tests := []struct {
		name   string
		period time.Duration
		step   time.Duration
		steps  int
		want   int
	}{
		{"poll over motion ticks", 100 * time.Millisecond, 16 * time.Millisecond, 625, 100},
		{"exact multiple", 64 * time.Millisecond, 16 * time.Millisecond, 400, 100},
		{"period shorter than step", 10 * time.Millisecond, 20 * time.Millisecond, 50, 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tk := newTicker(tt.period)
			fired := 0
			for i := 0; i < tt.steps; i++ {
				if tk.advance(tt.step) {
					fired++
				}
			}
			assert.InDelta(t, tt.want, fired, 1)
		})
	}
}

func TestTPS(t *testing.T) {
	assert.Equal(t, 63, TPS(16*time.Millisecond))
	assert.Equal(t, 60, TPS(time.Second/60))
	assert.Equal(t, 1, TPS(2*time.Second))
	assert.Equal(t, 60, TPS(0))
}
