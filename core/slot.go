package core

import (
	"context"
	"time"
)

// ISlotService clock measured in slots, never decreasing
type ISlotService interface {
	CurrentSlot(ctx context.Context) (uint64, error)
	SlotAt(ctx context.Context, t time.Time) (uint64, error)
}
