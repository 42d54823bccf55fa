package core

import (
	"database/sql/driver"
	"math"

	"lending/pkg/number"
)

// RateLimiterConfig outflow window, a zero window duration disables the limiter
type RateLimiterConfig struct {
	WindowDuration uint64 `json:"window_duration" yaml:"window_duration"`
	MaxOutflow     uint64 `json:"max_outflow" yaml:"max_outflow"`
}

// DefaultRateLimiterConfig one slot window without an outflow cap
func DefaultRateLimiterConfig() RateLimiterConfig {
	return RateLimiterConfig{
		WindowDuration: 1,
		MaxOutflow:     math.MaxUint64,
	}
}

// Disabled no outflow checks at all
func (c RateLimiterConfig) Disabled() bool {
	return c.WindowDuration == 0
}

// RateLimiter sliding window outflow counter approximated with two buckets.
//
// Outflow within any WindowDuration long interval stays below 2 * MaxOutflow.
type RateLimiter struct {
	Config      RateLimiterConfig `json:"config"`
	PrevQty     number.Decimal    `json:"prev_qty"`
	WindowStart uint64            `json:"window_start"`
	CurQty      number.Decimal    `json:"cur_qty"`
}

// NewRateLimiter limiter whose first window contains slot
func NewRateLimiter(config RateLimiterConfig, slot uint64) RateLimiter {
	start := slot
	if !config.Disabled() {
		start = slot / config.WindowDuration * config.WindowDuration
	}

	return RateLimiter{
		Config:      config,
		WindowStart: start,
	}
}

// DefaultRateLimiter NewRateLimiter with DefaultRateLimiterConfig
func DefaultRateLimiter(slot uint64) RateLimiter {
	return NewRateLimiter(DefaultRateLimiterConfig(), slot)
}

func (r *RateLimiter) roll(slot uint64) error {
	if slot < r.WindowStart {
		return ErrSlotLessThanWindowStart
	}

	duration := r.Config.WindowDuration
	floor := slot / duration * duration
	next := r.WindowStart + duration

	switch {
	case floor < next:
	case floor == next:
		r.PrevQty = r.CurQty
		r.CurQty = number.Zero()
		r.WindowStart = floor
	default:
		r.PrevQty = number.Zero()
		r.CurQty = number.Zero()
		r.WindowStart = floor
	}

	return nil
}

func (r *RateLimiter) currentOutflow(slot uint64) (number.Decimal, error) {
	if r.Config.Disabled() {
		return number.Zero(), nil
	}

	if err := r.roll(slot); err != nil {
		return number.Zero(), err
	}

	duration := number.FromInteger(r.Config.WindowDuration)
	elapsed := number.FromInteger(slot - r.WindowStart + 1)
	remaining, err := duration.Sub(elapsed)
	if err != nil {
		return number.Zero(), err
	}

	weight, err := remaining.Div(duration)
	if err != nil {
		return number.Zero(), err
	}

	prev, err := weight.Mul(r.PrevQty)
	if err != nil {
		return number.Zero(), err
	}

	return prev.Add(r.CurQty)
}

// CurrentOutflow weighted outflow at slot, the limiter itself is not modified
func (r RateLimiter) CurrentOutflow(slot uint64) (number.Decimal, error) {
	return r.currentOutflow(slot)
}

// RemainingOutflow outflow still allowed at slot
func (r RateLimiter) RemainingOutflow(slot uint64) (number.Decimal, error) {
	if r.Config.Disabled() {
		return number.FromInteger(math.MaxUint64), nil
	}

	outflow, err := r.currentOutflow(slot)
	if err != nil {
		return number.Zero(), err
	}

	return number.FromInteger(r.Config.MaxOutflow).SaturatingSub(outflow), nil
}

// Update record qty of outflow at slot, fails with ErrRateLimitReached and
// leaves the limiter untouched when the window would overflow
func (r *RateLimiter) Update(slot uint64, qty number.Decimal) error {
	if r.Config.Disabled() {
		return nil
	}

	next := *r
	outflow, err := next.currentOutflow(slot)
	if err != nil {
		return err
	}

	total, err := outflow.Add(qty)
	if err != nil {
		return err
	}

	if total.GreaterThan(number.FromInteger(r.Config.MaxOutflow)) {
		return ErrRateLimitReached
	}

	if next.CurQty, err = next.CurQty.Add(qty); err != nil {
		return err
	}

	*r = next
	return nil
}

func (r RateLimiter) Value() (driver.Value, error) {
	return jsonValue(r)
}

func (r *RateLimiter) Scan(src interface{}) error {
	return jsonScan(src, r)
}
