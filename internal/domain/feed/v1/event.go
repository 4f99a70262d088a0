package feedv1

// Event is one element of the merged replay stream: either an order or a trade.
type Event struct {
	Order *OrderRecord
	Trade *TradeRecord
}

// IsOrder reports whether the event carries an order record.
func (e Event) IsOrder() bool {
	return e.Order != nil
}

// TransactTime returns the session time of the underlying record.
func (e Event) TransactTime() int64 {
	if e.Order != nil {
		return e.Order.TransactTime
	}
	return e.Trade.TransactTime
}
