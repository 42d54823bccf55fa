package slot

import (
	"context"
	"errors"
	"time"

	"lending/core"

	"github.com/facebookgo/clock"
)

// DefaultSlotDuration slot length when none is configured
const DefaultSlotDuration = 500 * time.Millisecond

type service struct {
	clock    clock.Clock
	genesis  time.Time
	duration time.Duration
}

// New slot service counting slots of config.App.SlotDuration since config.App.Genesis
func New(config *core.Config, clk clock.Clock) core.ISlotService {
	duration := config.App.SlotDuration
	if duration <= 0 {
		duration = DefaultSlotDuration
	}

	return &service{
		clock:    clk,
		genesis:  time.Unix(config.App.Genesis, 0),
		duration: duration,
	}
}

// CurrentSlot current slot
func (s *service) CurrentSlot(ctx context.Context) (uint64, error) {
	return s.SlotAt(ctx, s.clock.Now())
}

// SlotAt slot containing t
func (s *service) SlotAt(ctx context.Context, t time.Time) (uint64, error) {
	if t.Before(s.genesis) {
		return 0, errors.New("time is before genesis")
	}

	return uint64(t.Sub(s.genesis) / s.duration), nil
}
