package core

import (
	"math"
	"testing"

	"lending/pkg/number"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimiterWindows(t *testing.T) {
	limiter := NewRateLimiter(RateLimiterConfig{WindowDuration: 10, MaxOutflow: 100}, 0)

	require.Nil(t, limiter.Update(5, number.FromInteger(100)))

	before := limiter
	assert.Equal(t, ErrRateLimitReached, limiter.Update(6, number.FromInteger(1)))
	assert.Equal(t, before, limiter)

	require.Nil(t, limiter.Update(20, number.FromInteger(100)))
	assert.Equal(t, uint64(20), limiter.WindowStart)
	assert.True(t, limiter.PrevQty.IsZero())
}

func TestRateLimiterPreviousWindowDecays(t *testing.T) {
	limiter := NewRateLimiter(RateLimiterConfig{WindowDuration: 10, MaxOutflow: 100}, 3)
	assert.Equal(t, uint64(0), limiter.WindowStart)

	require.Nil(t, limiter.Update(9, number.FromInteger(100)))

	outflow, err := limiter.CurrentOutflow(10)
	require.Nil(t, err)
	assert.Equal(t, "90", outflow.String())

	// reading does not roll the window
	assert.Equal(t, uint64(0), limiter.WindowStart)

	remaining, err := limiter.RemainingOutflow(15)
	require.Nil(t, err)
	assert.Equal(t, "60", remaining.String())

	require.Nil(t, limiter.Update(10, number.FromInteger(10)))
	assert.Equal(t, ErrRateLimitReached, limiter.Update(10, number.FromInteger(1)))
	assert.Equal(t, uint64(10), limiter.WindowStart)
	assert.Equal(t, "100", limiter.PrevQty.String())
	assert.Equal(t, "10", limiter.CurQty.String())
}

func TestRateLimiterBound(t *testing.T) {
	const (
		window    = 10
		maxOut    = 100
		slots     = 200
		perUpdate = 7
	)

	limiter := NewRateLimiter(RateLimiterConfig{WindowDuration: window, MaxOutflow: maxOut}, 0)

	var outflow [slots]uint64
	for slot := uint64(0); slot < slots; slot++ {
		for limiter.Update(slot, number.FromInteger(perUpdate)) == nil {
			outflow[slot] += perUpdate
		}
	}

	for start := 0; start+window <= slots; start++ {
		var sum uint64
		for _, qty := range outflow[start : start+window] {
			sum += qty
		}
		assert.LessOrEqual(t, sum, uint64(2*maxOut), "window starting at %d", start)
	}
}

func TestRateLimiterDisabled(t *testing.T) {
	limiter := NewRateLimiter(RateLimiterConfig{}, 7)
	assert.True(t, limiter.Config.Disabled())

	for i := 0; i < 10; i++ {
		require.Nil(t, limiter.Update(7, number.FromInteger(math.MaxUint64)))
	}

	remaining, err := limiter.RemainingOutflow(8)
	require.Nil(t, err)
	assert.Equal(t, number.FromInteger(math.MaxUint64), remaining)
}

func TestRateLimiterClockGoesBack(t *testing.T) {
	limiter := NewRateLimiter(RateLimiterConfig{WindowDuration: 10, MaxOutflow: 100}, 20)

	assert.Equal(t, ErrSlotLessThanWindowStart, limiter.Update(5, number.FromInteger(1)))

	_, err := limiter.CurrentOutflow(19)
	assert.Equal(t, ErrSlotLessThanWindowStart, err)
}

func TestLastUpdate(t *testing.T) {
	l := NewLastUpdate(5)
	stale, err := l.IsStale(5)
	require.Nil(t, err)
	assert.True(t, stale)

	l.UpdateSlot(6)
	stale, err = l.IsStale(6)
	require.Nil(t, err)
	assert.False(t, stale)

	stale, err = l.IsStale(7)
	require.Nil(t, err)
	assert.True(t, stale)

	l.MarkStale()
	stale, err = l.IsStale(6)
	require.Nil(t, err)
	assert.True(t, stale)

	_, err = l.IsStale(4)
	assert.Equal(t, ErrMathOverflow, err)
}
