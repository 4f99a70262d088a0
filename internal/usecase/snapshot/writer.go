package snapshot

import (
	"bufio"
	"context"
	"os"
	"strconv"
	"strings"

	orderbookv1 "github.com/quantfeed/bookreplay/internal/domain/orderbook/v1"
	snapshotv1 "github.com/quantfeed/bookreplay/internal/domain/snapshot/v1"
	"github.com/quantfeed/bookreplay/pkg/errors"
)

// CSVWriter streams snapshot rows to the output file as they are emitted.
// With depth 5 the schema is clockatarrival, transacttime, four groups of
// five (price, qty) level pairs, then cvl, lpr, cto, nts, opx.
// Prices render with two decimal places; absent levels render as two empty
// fields.
type CSVWriter struct {
	f     *os.File
	w     *bufio.Writer
	depth int
}

// NewCSVWriter creates the output file and writes the header line.
func NewCSVWriter(path string, depth int) (*CSVWriter, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, errors.NewTracer("creating snapshot output " + path).
			WithCode(errors.SnapshotWriteError).Wrap(err)
	}

	w := &CSVWriter{
		f:     f,
		w:     bufio.NewWriter(f),
		depth: depth,
	}
	if _, err := w.w.WriteString(header(depth) + "\n"); err != nil {
		f.Close()
		return nil, errors.NewTracer("writing snapshot header").
			WithCode(errors.SnapshotWriteError).Wrap(err)
	}
	return w, nil
}

// Write appends one snapshot row. Any failure here is fatal to the replay.
func (w *CSVWriter) Write(_ context.Context, row *snapshotv1.Row) error {
	if _, err := w.w.WriteString(renderRow(row, w.depth) + "\n"); err != nil {
		return errors.NewTracer("writing snapshot row").
			WithCode(errors.SnapshotWriteError).Wrap(err)
	}
	return nil
}

// Close flushes buffered rows and closes the file.
func (w *CSVWriter) Close() error {
	if err := w.w.Flush(); err != nil {
		w.f.Close()
		return errors.NewTracer("flushing snapshot output").
			WithCode(errors.SnapshotWriteError).Wrap(err)
	}
	return w.f.Close()
}

func header(depth int) string {
	var b strings.Builder
	b.WriteString("clockatarrival,transacttime")
	for _, group := range []string{"best_bid", "best_ask", "worst_bid", "worst_ask"} {
		for i := 1; i <= depth; i++ {
			b.WriteString("," + group + "_" + strconv.Itoa(i) + "_price")
			b.WriteString("," + group + "_" + strconv.Itoa(i) + "_qty")
		}
	}
	b.WriteString(",cvl,lpr,cto,nts,opx")
	return b.String()
}

func renderRow(row *snapshotv1.Row, depth int) string {
	var b strings.Builder
	b.WriteString(strconv.FormatInt(row.ClockAtArrival, 10))
	b.WriteString(",")
	b.WriteString(strconv.FormatInt(row.TransactTime, 10))

	writeLevels(&b, row.BestBids, depth)
	writeLevels(&b, row.BestAsks, depth)
	writeLevels(&b, row.WorstBids, depth)
	writeLevels(&b, row.WorstAsks, depth)

	b.WriteString(",")
	b.WriteString(strconv.FormatInt(row.Stats.CumulativeVolume, 10))
	b.WriteString(",")
	b.WriteString(orderbookv1.FormatPrice(row.Stats.LastPrice))
	b.WriteString(",")
	b.WriteString(strconv.FormatInt(row.Stats.TradeOrders, 10))
	b.WriteString(",")
	b.WriteString(strconv.FormatInt(row.Stats.Trades, 10))
	b.WriteString(",")
	b.WriteString(orderbookv1.FormatPrice(row.Stats.OpeningPrice))
	return b.String()
}

func writeLevels(b *strings.Builder, levels orderbookv1.Levels, depth int) {
	for i := 0; i < depth; i++ {
		if i < len(levels) {
			b.WriteString(",")
			b.WriteString(orderbookv1.FormatPrice(levels[i].Price))
			b.WriteString(",")
			b.WriteString(strconv.FormatInt(levels[i].Qty, 10))
		} else {
			b.WriteString(",,")
		}
	}
}
