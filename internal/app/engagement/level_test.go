package engagement

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeXP_Linear(t *testing.T) {
	for _, m := range []float64{1.2, 1.1, 1.3, 1.0, -1.0} {
		assert.InDelta(t, 2*ComputeXP(45, m), ComputeXP(90, m), 1e-9)
		assert.InDelta(t, ComputeXP(30, m)+ComputeXP(15, m), ComputeXP(45, m), 1e-9)
	}
	assert.InDelta(t, 108.0, ComputeXP(90, 1.2), 1e-9)
	assert.Zero(t, ComputeXP(0, 1.3))
}

func TestLevelProgress(t *testing.T) {
	tests := []struct {
		total   float64
		level   int
		current float64
	}{
		{0, 0, 0},
		{499.99, 0, 499.99},
		{500, 1, 0},
		{1250, 2, 250},
		{10_000.5, 20, 0.5},
	}
	for _, tt := range tests {
		p := LevelProgress(tt.total)
		assert.Equal(t, tt.level, p.Level, "total %v", tt.total)
		assert.InDelta(t, tt.current, p.XPCurrent, 1e-9, "total %v", tt.total)
		assert.Equal(t, 500, p.XPNeeded)
		assert.Equal(t, tt.total, p.TotalXP)
	}
}

func TestLevelProgress_Identity(t *testing.T) {
	for total := 0.0; total < 5000; total += 37.25 {
		p := LevelProgress(total)
		assert.InDelta(t, total, float64(p.Level*p.XPNeeded)+p.XPCurrent, 1e-9)
		assert.GreaterOrEqual(t, p.XPCurrent, 0.0)
		assert.Less(t, p.XPCurrent, 500.0)
	}
}

func TestLevelProgress_Negative(t *testing.T) {
	p := LevelProgress(-120)
	assert.Equal(t, 0, p.Level)
	assert.Equal(t, -120.0, p.XPCurrent, "truncating remainder keeps the sign")
	assert.Equal(t, -120.0, p.TotalXP)

	assert.Equal(t, 0, LevelForXP(-1500))
}

func TestRound2(t *testing.T) {
	assert.Equal(t, 108.0, Round2(108.00000000000001))
	assert.Equal(t, 59.99, Round2(59.99399))
	assert.Equal(t, -12.35, Round2(-12.349999))
}
