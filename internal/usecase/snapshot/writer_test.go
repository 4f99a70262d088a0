package snapshot

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	orderbookv1 "github.com/quantfeed/bookreplay/internal/domain/orderbook/v1"
	snapshotv1 "github.com/quantfeed/bookreplay/internal/domain/snapshot/v1"
)

// Test 1: The header carries every level pair plus the session stats
func TestHeader(t *testing.T) {
	h := header(5)

	cols := strings.Split(h, ",")
	require.Len(t, cols, 47)
	assert.Equal(t, "clockatarrival", cols[0])
	assert.Equal(t, "transacttime", cols[1])
	assert.Equal(t, "best_bid_1_price", cols[2])
	assert.Equal(t, "best_bid_1_qty", cols[3])
	assert.Equal(t, "best_ask_1_price", cols[12])
	assert.Equal(t, "worst_bid_1_price", cols[22])
	assert.Equal(t, "worst_ask_1_price", cols[32])
	assert.Equal(t, "worst_ask_5_qty", cols[41])
	assert.Equal(t, []string{"cvl", "lpr", "cto", "nts", "opx"}, cols[42:])
}

// Test 2: A full row renders prices with two decimals and integer quantities
func TestRenderRow_Full(t *testing.T) {
	row := &snapshotv1.Row{
		ClockAtArrival: 170001,
		TransactTime:   93100000,
		BestBids:       orderbookv1.Levels{{Price: 1005, Qty: 60}},
		BestAsks:       orderbookv1.Levels{{Price: 1100, Qty: 20}},
		WorstBids:      orderbookv1.Levels{{Price: 1005, Qty: 60}},
		WorstAsks:      orderbookv1.Levels{{Price: 1100, Qty: 20}},
		Stats: snapshotv1.SessionStats{
			CumulativeVolume: 30,
			LastPrice:        1100,
			TradeOrders:      2,
			Trades:           1,
			OpeningPrice:     1000,
		},
	}

	line := renderRow(row, 5)
	cols := strings.Split(line, ",")
	require.Len(t, cols, 47)

	assert.Equal(t, "170001", cols[0])
	assert.Equal(t, "93100000", cols[1])
	assert.Equal(t, "10.05", cols[2])
	assert.Equal(t, "60", cols[3])
	// Levels 2..5 of best bids are empty.
	for i := 4; i < 12; i++ {
		assert.Empty(t, cols[i])
	}
	assert.Equal(t, "11.00", cols[12])
	assert.Equal(t, "20", cols[13])

	assert.Equal(t, "30", cols[42])    // cvl
	assert.Equal(t, "11.00", cols[43]) // lpr
	assert.Equal(t, "2", cols[44])     // cto
	assert.Equal(t, "1", cols[45])     // nts
	assert.Equal(t, "10.00", cols[46]) // opx
}

// Test 3: An empty book renders only empty level fields
func TestRenderRow_EmptyBook(t *testing.T) {
	row := &snapshotv1.Row{ClockAtArrival: 1, TransactTime: 93000000}

	cols := strings.Split(renderRow(row, 5), ",")
	require.Len(t, cols, 47)
	for i := 2; i < 42; i++ {
		assert.Empty(t, cols[i])
	}
	assert.Equal(t, "0", cols[42])
	assert.Equal(t, "0.00", cols[43])
	assert.Equal(t, "0.00", cols[46])
}

// Test 4: Writer round-trip through the filesystem
func TestCSVWriter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "book_new.csv")

	w, err := NewCSVWriter(path, 5)
	require.NoError(t, err)

	row := &snapshotv1.Row{
		ClockAtArrival: 42,
		TransactTime:   93000000,
		BestBids:       orderbookv1.Levels{{Price: 998, Qty: 200}},
	}
	require.NoError(t, w.Write(context.Background(), row))
	require.NoError(t, w.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, header(5), lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "42,93000000,9.98,200,,"))
}
