package stats

import (
	snapshotv1 "github.com/quantfeed/bookreplay/internal/domain/snapshot/v1"
)

// Tracker accumulates the session statistics across applied fills. The
// opening price latches on the first fill and never changes afterwards.
type Tracker struct {
	current    snapshotv1.SessionStats
	hasOpening bool
}

// NewTracker creates a zeroed tracker.
func NewTracker() *Tracker {
	return &Tracker{}
}

// ApplyFill folds one filled trade into the session statistics. Each non-zero
// order reference counts once toward the cumulative trade-order total.
func (t *Tracker) ApplyFill(price, qty, bidSeq, askSeq int64) {
	t.current.CumulativeVolume += qty
	t.current.LastPrice = price
	t.current.Trades++

	if bidSeq != 0 {
		t.current.TradeOrders++
	}
	if askSeq != 0 {
		t.current.TradeOrders++
	}

	if !t.hasOpening {
		t.current.OpeningPrice = price
		t.hasOpening = true
	}
}

// Snapshot returns the current statistics by value.
func (t *Tracker) Snapshot() snapshotv1.SessionStats {
	return t.current
}
