package sequencer

import (
	"sort"

	feedv1 "github.com/quantfeed/bookreplay/internal/domain/feed/v1"
)

// Merge combines the order and trade streams into a single sequence ordered
// by transact-time. When an order and a trade share a transact-time the order
// comes first: it must build the resting state the trade consumes. Ties among
// same-type events keep their input order, so the sort must be stable.
func Merge(orders []feedv1.OrderRecord, trades []feedv1.TradeRecord) []feedv1.Event {
	events := make([]feedv1.Event, 0, len(orders)+len(trades))
	for i := range orders {
		events = append(events, feedv1.Event{Order: &orders[i]})
	}
	for i := range trades {
		events = append(events, feedv1.Event{Trade: &trades[i]})
	}

	sort.SliceStable(events, func(i, j int) bool {
		ti, tj := events[i].TransactTime(), events[j].TransactTime()
		if ti != tj {
			return ti < tj
		}
		return events[i].IsOrder() && !events[j].IsOrder()
	})

	return events
}
