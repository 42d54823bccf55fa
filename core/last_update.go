package core

import "database/sql/driver"

// StaleAfterSlotsElapsed slots after which a refreshed entity becomes stale
const StaleAfterSlotsElapsed uint64 = 1

// LastUpdate freshness of a slot dependent entity
type LastUpdate struct {
	Slot  uint64 `json:"slot"`
	Stale bool   `json:"stale"`
}

// NewLastUpdate stale at slot, a refresh is required before use
func NewLastUpdate(slot uint64) LastUpdate {
	return LastUpdate{Slot: slot, Stale: true}
}

// SlotsElapsed slots since the last update
func (l LastUpdate) SlotsElapsed(slot uint64) (uint64, error) {
	if slot < l.Slot {
		return 0, ErrMathOverflow
	}
	return slot - l.Slot, nil
}

// UpdateSlot mark fresh at slot
func (l *LastUpdate) UpdateSlot(slot uint64) {
	l.Slot = slot
	l.Stale = false
}

// MarkStale force a refresh before the next use
func (l *LastUpdate) MarkStale() {
	l.Stale = true
}

// IsStale true if flagged or not updated in the current slot
func (l LastUpdate) IsStale(slot uint64) (bool, error) {
	elapsed, err := l.SlotsElapsed(slot)
	if err != nil {
		return false, err
	}
	return l.Stale || elapsed >= StaleAfterSlotsElapsed, nil
}

func (l LastUpdate) Value() (driver.Value, error) {
	return jsonValue(l)
}

func (l *LastUpdate) Scan(src interface{}) error {
	return jsonScan(src, l)
}
