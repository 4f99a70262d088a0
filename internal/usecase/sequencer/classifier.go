package sequencer

import (
	feedv1 "github.com/quantfeed/bookreplay/internal/domain/feed/v1"
)

// Immediate is the set of application sequence numbers whose arrival caused a
// fill within the classification window. A market or best order in this set
// executed on arrival; once the market is open it is not deposited into the
// resting book.
type Immediate map[int64]struct{}

// Contains reports whether seq was classified as immediately executing.
func (im Immediate) Contains(seq int64) bool {
	_, ok := im[seq]
	return ok
}

// ClassifyImmediate runs the pre-pass over both streams: for every filled
// trade, any order matching the trade's bid or ask reference whose
// transact-time lies within ±window of the trade's is marked. Orders are
// indexed by sequence number first, so the pass is linear in the input size.
func ClassifyImmediate(orders []feedv1.OrderRecord, trades []feedv1.TradeRecord, window int64) Immediate {
	timesBySeq := make(map[int64][]int64, len(orders))
	for i := range orders {
		o := &orders[i]
		timesBySeq[o.ApplSeqNum] = append(timesBySeq[o.ApplSeqNum], o.TransactTime)
	}

	marked := make(Immediate)
	mark := func(seq, tradeTime int64) {
		if seq == 0 {
			return
		}
		for _, orderTime := range timesBySeq[seq] {
			d := orderTime - tradeTime
			if d < 0 {
				d = -d
			}
			if d <= window {
				marked[seq] = struct{}{}
				return
			}
		}
	}

	for i := range trades {
		t := &trades[i]
		if t.ExecType != feedv1.ExecTypeFill {
			continue
		}
		mark(t.BidApplSeqNum, t.TransactTime)
		mark(t.AskApplSeqNum, t.TransactTime)
	}

	return marked
}
