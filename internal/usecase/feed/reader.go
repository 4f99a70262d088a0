package feed

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"strings"

	feedv1 "github.com/quantfeed/bookreplay/internal/domain/feed/v1"
	orderbookv1 "github.com/quantfeed/bookreplay/internal/domain/orderbook/v1"
	"github.com/quantfeed/bookreplay/pkg/errors"
	"github.com/quantfeed/bookreplay/pkg/logger"
)

const (
	orderFieldCount = 8
	tradeFieldCount = 10
)

// ReadOrders loads the full order feed from a CSV file. The first line is the
// header. Rows with fewer than the required field count, and rows whose
// numeric fields do not parse, are skipped with a diagnostic.
func ReadOrders(path string, log *logger.Logger) ([]feedv1.OrderRecord, error) {
	var orders []feedv1.OrderRecord

	err := readRows(path, orderFieldCount, log, func(row []string, line int) error {
		rec, err := parseOrderRow(row)
		if err != nil {
			return err
		}
		orders = append(orders, rec)
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info("order feed loaded",
		logger.Field{Key: "path", Value: path},
		logger.Field{Key: "orders", Value: len(orders)},
	)
	return orders, nil
}

// ReadTrades loads the full trade feed from a CSV file with the same
// tolerance rules as ReadOrders.
func ReadTrades(path string, log *logger.Logger) ([]feedv1.TradeRecord, error) {
	var trades []feedv1.TradeRecord

	err := readRows(path, tradeFieldCount, log, func(row []string, line int) error {
		rec, err := parseTradeRow(row)
		if err != nil {
			return err
		}
		trades = append(trades, rec)
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info("trade feed loaded",
		logger.Field{Key: "path", Value: path},
		logger.Field{Key: "trades", Value: len(trades)},
	)
	return trades, nil
}

// readRows streams the data rows of a CSV file to parse, skipping the header
// line, blank lines, and rows shorter than want.
func readRows(path string, want int, log *logger.Logger, parse func(row []string, line int) error) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.NewTracer("opening feed file " + path).WithCode(errors.FeedOpenError).Wrap(err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	line := 0
	for {
		row, err := r.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return errors.NewTracer("reading feed file " + path).WithCode(errors.FeedParseError).Wrap(err)
		}
		line++
		if line == 1 {
			continue // header
		}
		if len(row) < want {
			log.Warn("skipping short row",
				logger.Field{Key: "path", Value: path},
				logger.Field{Key: "line", Value: line},
				logger.Field{Key: "fields", Value: len(row)},
			)
			continue
		}
		if err := parse(row, line); err != nil {
			log.Warn("skipping malformed row",
				logger.Field{Key: "path", Value: path},
				logger.Field{Key: "line", Value: line},
				logger.Field{Key: "error", Value: err.Error()},
			)
		}
	}
}

func parseOrderRow(row []string) (feedv1.OrderRecord, error) {
	var rec feedv1.OrderRecord
	var err error

	if rec.ClockAtArrival, err = parseInt(row[0]); err != nil {
		return rec, err
	}
	if rec.SequenceNo, err = parseInt(row[1]); err != nil {
		return rec, err
	}
	if rec.TransactTime, err = parseInt(row[2]); err != nil {
		return rec, err
	}
	if rec.ApplSeqNum, err = parseInt(row[3]); err != nil {
		return rec, err
	}
	side, err := parseInt(row[4])
	if err != nil {
		return rec, err
	}
	rec.Side = feedv1.Side(side)
	rec.Type = parseOrderType(row[5])
	if rec.Price, err = parsePrice(row[6]); err != nil {
		return rec, err
	}
	if rec.Qty, err = parseIntDefault(row[7], 0); err != nil {
		return rec, err
	}
	return rec, nil
}

func parseTradeRow(row []string) (feedv1.TradeRecord, error) {
	var rec feedv1.TradeRecord
	var err error

	if rec.ClockAtArrival, err = parseInt(row[0]); err != nil {
		return rec, err
	}
	if rec.SequenceNo, err = parseInt(row[1]); err != nil {
		return rec, err
	}
	if rec.TransactTime, err = parseInt(row[2]); err != nil {
		return rec, err
	}
	if rec.ApplSeqNum, err = parseInt(row[3]); err != nil {
		return rec, err
	}
	rec.ExecType = parseExecType(row[4])
	if rec.Price, err = parsePrice(row[5]); err != nil {
		return rec, err
	}
	if rec.Qty, err = parseIntDefault(row[6], 0); err != nil {
		return rec, err
	}
	if rec.Money, err = parsePrice(row[7]); err != nil {
		return rec, err
	}
	if rec.BidApplSeqNum, err = parseIntDefault(row[8], 0); err != nil {
		return rec, err
	}
	if rec.AskApplSeqNum, err = parseIntDefault(row[9], 0); err != nil {
		return rec, err
	}
	return rec, nil
}

// parseOrderType takes the first character of the field; an empty field
// defaults to limit, matching the feed's dominant record type.
func parseOrderType(s string) feedv1.OrderType {
	s = strings.TrimSpace(s)
	if s == "" {
		return feedv1.OrderTypeLimit
	}
	return feedv1.OrderType(s[0])
}

func parseExecType(s string) feedv1.ExecType {
	s = strings.TrimSpace(s)
	if s == "" {
		return feedv1.ExecTypeFill
	}
	return feedv1.ExecType(s[0])
}

func parseInt(s string) (int64, error) {
	return strconv.ParseInt(strings.TrimSpace(s), 10, 64)
}

func parseIntDefault(s string, def int64) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return def, nil
	}
	return strconv.ParseInt(s, 10, 64)
}

func parsePrice(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	return orderbookv1.ParsePrice(s)
}
