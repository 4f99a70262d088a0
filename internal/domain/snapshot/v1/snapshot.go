package snapshotv1

import (
	orderbookv1 "github.com/quantfeed/bookreplay/internal/domain/orderbook/v1"
)

// SessionStats are the cumulative trading statistics of a replayed session.
// Prices are fixed-point hundredths.
type SessionStats struct {
	CumulativeVolume int64
	LastPrice        int64
	TradeOrders      int64
	Trades           int64
	OpeningPrice     int64
}

// Row is one emitted snapshot: the book's top and bottom levels on both
// sides plus the session statistics at one moment of the replayed stream.
type Row struct {
	ClockAtArrival int64
	TransactTime   int64
	BestBids       orderbookv1.Levels
	BestAsks       orderbookv1.Levels
	WorstBids      orderbookv1.Levels
	WorstAsks      orderbookv1.Levels
	Stats          SessionStats
}
