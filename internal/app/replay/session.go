package replay

import (
	"context"

	feedv1 "github.com/quantfeed/bookreplay/internal/domain/feed/v1"
	snapshotv1 "github.com/quantfeed/bookreplay/internal/domain/snapshot/v1"
	"github.com/quantfeed/bookreplay/internal/usecase/orderbook"
	"github.com/quantfeed/bookreplay/internal/usecase/sequencer"
	"github.com/quantfeed/bookreplay/internal/usecase/stats"
	"github.com/quantfeed/bookreplay/pkg/logger"
)

// Session owns all replay state: the resting book, the session statistics,
// the immediate-execution set, and the snapshot sinks. It is a
// single-threaded deterministic state machine; two runs over identical
// inputs produce identical emissions.
type Session struct {
	book      *orderbook.Book
	stats     *stats.Tracker
	immediate sequencer.Immediate
	sinks     []snapshotv1.Sink
	opts      *Options
	logger    *logger.Logger

	marketOpened bool
	emitted      int64
}

// NewSession creates a session that emits snapshots to the given sinks.
func NewSession(log *logger.Logger, opts *Options, sinks ...snapshotv1.Sink) *Session {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &Session{
		book:   orderbook.NewBook(),
		stats:  stats.NewTracker(),
		sinks:  sinks,
		opts:   opts,
		logger: log,
	}
}

// Run replays both streams to completion: classifier pre-pass, merge, then
// one pass over the merged sequence. Only a sink failure aborts the replay.
func (s *Session) Run(ctx context.Context, orders []feedv1.OrderRecord, trades []feedv1.TradeRecord) error {
	s.immediate = sequencer.ClassifyImmediate(orders, trades, s.opts.ImmediateWindow)
	events := sequencer.Merge(orders, trades)

	s.logger.InfoContext(ctx, "replay started",
		logger.Field{Key: "orders", Value: len(orders)},
		logger.Field{Key: "trades", Value: len(trades)},
		logger.Field{Key: "immediate", Value: len(s.immediate)},
	)

	for _, ev := range events {
		var err error
		if ev.IsOrder() {
			err = s.applyOrder(ctx, ev.Order)
		} else {
			err = s.applyTrade(ctx, ev.Trade)
		}
		if err != nil {
			return err
		}
	}

	s.logger.InfoContext(ctx, "replay finished",
		logger.Field{Key: "snapshots", Value: s.emitted},
		logger.Field{Key: "resting_bids", Value: s.book.BidCount()},
		logger.Field{Key: "resting_asks", Value: s.book.AskCount()},
	)
	return nil
}

// applyOrder inserts one order event. From the opening cutoff on, a market or
// best order classified as immediately executing is not deposited; its fill
// arrives as a trade event. Pre-opening orders always insert, building the
// call-auction book, but emit nothing.
func (s *Session) applyOrder(ctx context.Context, o *feedv1.OrderRecord) error {
	immediate := (o.Type == feedv1.OrderTypeMarket || o.Type == feedv1.OrderTypeBest) &&
		s.immediate.Contains(o.ApplSeqNum)

	if o.TransactTime < s.opts.OpeningTime || !immediate {
		if !s.book.Add(o) {
			s.logger.Debug("order not deposited",
				logger.Field{Key: "applseqnum", Value: o.ApplSeqNum},
				logger.Field{Key: "ordertype", Value: string(o.Type)},
			)
		}
	}

	if o.TransactTime >= s.opts.OpeningTime && !immediate {
		if !s.marketOpened {
			s.marketOpened = true
			s.logger.InfoContext(ctx, "market opened",
				logger.Field{Key: "transacttime", Value: o.TransactTime},
			)
		}
		return s.emit(ctx, o.ClockAtArrival, o.TransactTime)
	}
	return nil
}

// applyTrade mutates stats and resting state for one trade event, then
// emits. Missing resting references are tolerated: auction-executed orders
// were never deposited.
func (s *Session) applyTrade(ctx context.Context, t *feedv1.TradeRecord) error {
	switch t.ExecType {
	case feedv1.ExecTypeFill:
		s.stats.ApplyFill(t.Price, t.Qty, t.BidApplSeqNum, t.AskApplSeqNum)
		if t.BidApplSeqNum != 0 {
			if !s.book.Reduce(feedv1.SideBuy, t.BidApplSeqNum, t.Qty) {
				s.logger.Debug("fill references unknown bid",
					logger.Field{Key: "bidapplseqnum", Value: t.BidApplSeqNum},
				)
			}
		}
		if t.AskApplSeqNum != 0 {
			if !s.book.Reduce(feedv1.SideSell, t.AskApplSeqNum, t.Qty) {
				s.logger.Debug("fill references unknown ask",
					logger.Field{Key: "askapplseqnum", Value: t.AskApplSeqNum},
				)
			}
		}
	case feedv1.ExecTypeCancel:
		if t.BidApplSeqNum != 0 {
			s.book.Remove(feedv1.SideBuy, t.BidApplSeqNum)
		}
		if t.AskApplSeqNum != 0 {
			s.book.Remove(feedv1.SideSell, t.AskApplSeqNum)
		}
	default:
		s.logger.Warn("unknown exec type",
			logger.Field{Key: "exectype", Value: string(t.ExecType)},
			logger.Field{Key: "applseqnum", Value: t.ApplSeqNum},
		)
	}

	return s.emit(ctx, t.ClockAtArrival, t.TransactTime)
}

// emit materializes the level sequences and stats into a row and hands it to
// every sink. Sink failure is the only fatal condition of the replay.
func (s *Session) emit(ctx context.Context, clockAtArrival, transactTime int64) error {
	row := &snapshotv1.Row{
		ClockAtArrival: clockAtArrival,
		TransactTime:   transactTime,
		BestBids:       s.book.TopBids(s.opts.Depth),
		BestAsks:       s.book.TopAsks(s.opts.Depth),
		WorstBids:      s.book.BottomBids(s.opts.Depth),
		WorstAsks:      s.book.BottomAsks(s.opts.Depth),
		Stats:          s.stats.Snapshot(),
	}

	for _, sink := range s.sinks {
		if err := sink.Write(ctx, row); err != nil {
			return err
		}
	}
	s.emitted++
	return nil
}

// Emitted returns the number of snapshot rows emitted so far.
func (s *Session) Emitted() int64 {
	return s.emitted
}

// MarketOpened reports whether the one-time market-open signal has fired.
func (s *Session) MarketOpened() bool {
	return s.marketOpened
}

// Book exposes the resting book for inspection.
func (s *Session) Book() *orderbook.Book {
	return s.book
}
