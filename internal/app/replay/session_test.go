package replay

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	feedv1 "github.com/quantfeed/bookreplay/internal/domain/feed/v1"
	orderbookv1 "github.com/quantfeed/bookreplay/internal/domain/orderbook/v1"
	snapshotv1 "github.com/quantfeed/bookreplay/internal/domain/snapshot/v1"
	"github.com/quantfeed/bookreplay/internal/usecase/snapshot"
	"github.com/quantfeed/bookreplay/pkg/logger"
)

// captureSink records every emitted row in memory.
type captureSink struct {
	rows []snapshotv1.Row
}

func (c *captureSink) Write(_ context.Context, row *snapshotv1.Row) error {
	c.rows = append(c.rows, *row)
	return nil
}

func (c *captureSink) Close() error { return nil }

func newTestSession(t *testing.T) (*Session, *captureSink) {
	t.Helper()
	log, err := logger.NewLogger(logger.WithLoggingLevel(logger.ErrorLevel))
	require.NoError(t, err)

	sink := &captureSink{}
	return NewSession(log, DefaultOptions(), sink), sink
}

func order(seq, transactTime int64, side feedv1.Side, typ feedv1.OrderType, price, qty int64) feedv1.OrderRecord {
	return feedv1.OrderRecord{
		ClockAtArrival: transactTime,
		TransactTime:   transactTime,
		ApplSeqNum:     seq,
		Side:           side,
		Type:           typ,
		Price:          price,
		Qty:            qty,
	}
}

func fill(seq, transactTime, price, qty, bidRef, askRef int64) feedv1.TradeRecord {
	return feedv1.TradeRecord{
		ClockAtArrival: transactTime,
		TransactTime:   transactTime,
		ApplSeqNum:     seq,
		ExecType:       feedv1.ExecTypeFill,
		Price:          price,
		Qty:            qty,
		BidApplSeqNum:  bidRef,
		AskApplSeqNum:  askRef,
	}
}

func cancel(seq, transactTime, bidRef, askRef int64) feedv1.TradeRecord {
	return feedv1.TradeRecord{
		ClockAtArrival: transactTime,
		TransactTime:   transactTime,
		ApplSeqNum:     seq,
		ExecType:       feedv1.ExecTypeCancel,
		BidApplSeqNum:  bidRef,
		AskApplSeqNum:  askRef,
	}
}

// Scenario 1: Pre-open orders cross at the opening trade
func TestSession_PreOpenThenSingleCross(t *testing.T) {
	s, sink := newTestSession(t)

	orders := []feedv1.OrderRecord{
		order(1, 92500000, feedv1.SideBuy, feedv1.OrderTypeLimit, 1000, 100),
		order(2, 92500001, feedv1.SideSell, feedv1.OrderTypeLimit, 1000, 100),
	}
	trades := []feedv1.TradeRecord{fill(3, 93000000, 1000, 100, 1, 2)}

	require.NoError(t, s.Run(context.Background(), orders, trades))

	// No snapshots before opening; exactly one at the trade.
	require.Len(t, sink.rows, 1)
	row := sink.rows[0]
	assert.Empty(t, row.BestBids)
	assert.Empty(t, row.BestAsks)
	assert.Equal(t, int64(100), row.Stats.CumulativeVolume)
	assert.Equal(t, int64(1000), row.Stats.LastPrice)
	assert.Equal(t, int64(1), row.Stats.Trades)
	assert.Equal(t, int64(2), row.Stats.TradeOrders)
	assert.Equal(t, int64(1000), row.Stats.OpeningPrice)

	assert.Equal(t, 0, s.Book().BidCount())
	assert.Equal(t, 0, s.Book().AskCount())
}

// Scenario 2: Market order resolves against the best ask and never rests
func TestSession_MarketOrderImmediateExecution(t *testing.T) {
	s, sink := newTestSession(t)

	orders := []feedv1.OrderRecord{
		order(7, 93050000, feedv1.SideSell, feedv1.OrderTypeLimit, 1100, 50),
		order(8, 93100000, feedv1.SideBuy, feedv1.OrderTypeMarket, 0, 30),
	}
	trades := []feedv1.TradeRecord{fill(9, 93100000, 1100, 30, 8, 7)}

	require.NoError(t, s.Run(context.Background(), orders, trades))

	// Order 8 executed on arrival: no snapshot for it, no resting entry.
	require.Len(t, sink.rows, 2)
	_, resident := s.Book().Resting(feedv1.SideBuy, 8)
	assert.False(t, resident)

	last := sink.rows[1]
	require.Len(t, last.BestAsks, 1)
	assert.Equal(t, orderbookv1.Level{Price: 1100, Qty: 20}, last.BestAsks[0])
	assert.Equal(t, int64(30), last.Stats.CumulativeVolume)
	assert.Equal(t, int64(1100), last.Stats.LastPrice)
}

// Scenario 3: Cancel removes the resting order without touching stats
func TestSession_CancelRestingOrder(t *testing.T) {
	s, sink := newTestSession(t)

	orders := []feedv1.OrderRecord{
		order(5, 93050000, feedv1.SideBuy, feedv1.OrderTypeLimit, 998, 200),
	}
	trades := []feedv1.TradeRecord{cancel(6, 93060000, 5, 0)}

	require.NoError(t, s.Run(context.Background(), orders, trades))

	require.Len(t, sink.rows, 2)
	last := sink.rows[1]
	assert.Empty(t, last.BestBids)
	assert.Equal(t, snapshotv1.SessionStats{}, last.Stats)
	assert.Equal(t, 0, s.Book().BidCount())
}

// Scenario 4: Orders at one price aggregate into a single level
func TestSession_SamePriceAggregation(t *testing.T) {
	s, sink := newTestSession(t)

	orders := []feedv1.OrderRecord{
		order(1, 93050000, feedv1.SideBuy, feedv1.OrderTypeLimit, 1005, 10),
		order(2, 93050001, feedv1.SideBuy, feedv1.OrderTypeLimit, 1005, 20),
		order(3, 93050002, feedv1.SideBuy, feedv1.OrderTypeLimit, 1005, 30),
	}

	require.NoError(t, s.Run(context.Background(), orders, nil))

	require.Len(t, sink.rows, 3)
	last := sink.rows[2]
	require.Len(t, last.BestBids, 1)
	assert.Equal(t, orderbookv1.Level{Price: 1005, Qty: 60}, last.BestBids[0])
}

// Scenario 5: Worst asks walk down from the top of the price range
func TestSession_WorstLevels(t *testing.T) {
	s, sink := newTestSession(t)

	orders := []feedv1.OrderRecord{
		order(1, 93050000, feedv1.SideSell, feedv1.OrderTypeLimit, 1100, 10),
		order(2, 93050001, feedv1.SideSell, feedv1.OrderTypeLimit, 1105, 10),
		order(3, 93050002, feedv1.SideSell, feedv1.OrderTypeLimit, 1110, 10),
	}

	require.NoError(t, s.Run(context.Background(), orders, nil))

	last := sink.rows[len(sink.rows)-1]
	require.Len(t, last.WorstAsks, 3)
	assert.Equal(t, orderbookv1.Level{Price: 1110, Qty: 10}, last.WorstAsks[0])
	assert.Equal(t, orderbookv1.Level{Price: 1105, Qty: 10}, last.WorstAsks[1])
	assert.Equal(t, orderbookv1.Level{Price: 1100, Qty: 10}, last.WorstAsks[2])
}

// Scenario 6: Order lands before the trade sharing its transact-time
func TestSession_OrderBeforeTradeTieBreak(t *testing.T) {
	s, sink := newTestSession(t)

	orders := []feedv1.OrderRecord{
		order(9, 93200000, feedv1.SideSell, feedv1.OrderTypeLimit, 1000, 100),
	}
	trades := []feedv1.TradeRecord{fill(10, 93200000, 1000, 100, 0, 9)}

	require.NoError(t, s.Run(context.Background(), orders, trades))

	// Insert snapshot then trade snapshot; the book ends clean.
	require.Len(t, sink.rows, 2)
	require.Len(t, sink.rows[0].BestAsks, 1)
	assert.Empty(t, sink.rows[1].BestAsks)
	assert.Equal(t, 0, s.Book().AskCount())
}

// A best order pegs to its own side and is skipped when classified immediate
func TestSession_BestOrderImmediateSkipped(t *testing.T) {
	s, sink := newTestSession(t)

	orders := []feedv1.OrderRecord{
		order(1, 93050000, feedv1.SideBuy, feedv1.OrderTypeLimit, 1000, 100),
		order(2, 93100000, feedv1.SideBuy, feedv1.OrderTypeBest, 0, 50),
	}
	trades := []feedv1.TradeRecord{fill(3, 93100000, 1000, 50, 2, 0)}

	require.NoError(t, s.Run(context.Background(), orders, trades))

	_, resident := s.Book().Resting(feedv1.SideBuy, 2)
	assert.False(t, resident)

	// Snapshots: order 1 insert, trade. Order 2 contributes nothing.
	assert.Len(t, sink.rows, 2)
}

// Pre-open orders insert even when classified immediate
func TestSession_PreOpenImmediateStillInserts(t *testing.T) {
	s, _ := newTestSession(t)

	orders := []feedv1.OrderRecord{
		order(1, 92400000, feedv1.SideSell, feedv1.OrderTypeLimit, 1000, 100),
		order(2, 92500000, feedv1.SideBuy, feedv1.OrderTypeMarket, 0, 100),
	}
	trades := []feedv1.TradeRecord{fill(3, 92500000, 1000, 100, 2, 1)}

	require.NoError(t, s.Run(context.Background(), orders, trades))

	// The auction cross consumed both entries.
	assert.Equal(t, 0, s.Book().BidCount())
	assert.Equal(t, 0, s.Book().AskCount())
	assert.False(t, s.MarketOpened())
}

// Replay determinism: identical inputs produce byte-identical output files
func TestSession_Deterministic(t *testing.T) {
	log, err := logger.NewLogger(logger.WithLoggingLevel(logger.ErrorLevel))
	require.NoError(t, err)

	orders := []feedv1.OrderRecord{
		order(1, 92500000, feedv1.SideBuy, feedv1.OrderTypeLimit, 1000, 100),
		order(2, 93050000, feedv1.SideSell, feedv1.OrderTypeLimit, 1100, 50),
		order(3, 93050000, feedv1.SideBuy, feedv1.OrderTypeLimit, 1095, 80),
		order(4, 93100000, feedv1.SideBuy, feedv1.OrderTypeMarket, 0, 30),
	}
	trades := []feedv1.TradeRecord{
		fill(5, 93100000, 1100, 30, 4, 2),
		cancel(6, 93150000, 3, 0),
	}

	dir := t.TempDir()
	paths := []string{filepath.Join(dir, "a.csv"), filepath.Join(dir, "b.csv")}
	for _, path := range paths {
		w, err := snapshot.NewCSVWriter(path, 5)
		require.NoError(t, err)

		s := NewSession(log, DefaultOptions(), w)
		require.NoError(t, s.Run(context.Background(), orders, trades))
		require.NoError(t, w.Close())
	}

	a, err := os.ReadFile(paths[0])
	require.NoError(t, err)
	b, err := os.ReadFile(paths[1])
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.NotEmpty(t, a)
}
