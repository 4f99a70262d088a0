package snapshotpublisher

import (
	"context"
	"encoding/json"

	"github.com/segmentio/kafka-go"

	orderbookv1 "github.com/quantfeed/bookreplay/internal/domain/orderbook/v1"
	snapshotv1 "github.com/quantfeed/bookreplay/internal/domain/snapshot/v1"
	"github.com/quantfeed/bookreplay/pkg/config"
	"github.com/quantfeed/bookreplay/pkg/errors"
	"github.com/quantfeed/bookreplay/pkg/logger"
	"github.com/quantfeed/bookreplay/pkg/util"
)

// Publisher mirrors the emitted snapshot stream onto a Kafka topic as JSON.
// The CSV sink stays the canonical output; this is a secondary observer for
// downstream consumers that want the feed live.
type Publisher struct {
	kafkaWriter *kafka.Writer
	logger      *logger.Logger
}

// NewPublisher creates a Kafka publisher for emitted snapshots.
func NewPublisher(cfg config.PublisherConfig, log *logger.Logger) *Publisher {
	kafkaWriter := kafka.NewWriter(kafka.WriterConfig{
		Brokers: cfg.Brokers,
		Topic:   cfg.Topic,
	})

	return &Publisher{
		kafkaWriter: kafkaWriter,
		logger:      log,
	}
}

type levelPayload struct {
	Price string `json:"price"`
	Qty   int64  `json:"qty"`
}

type rowPayload struct {
	ClockAtArrival int64          `json:"clockAtArrival"`
	TransactTime   int64          `json:"transactTime"`
	BestBids       []levelPayload `json:"bestBids"`
	BestAsks       []levelPayload `json:"bestAsks"`
	WorstBids      []levelPayload `json:"worstBids"`
	WorstAsks      []levelPayload `json:"worstAsks"`

	CumulativeVolume int64  `json:"cvl"`
	LastPrice        string `json:"lpr"`
	TradeOrders      int64  `json:"cto"`
	Trades           int64  `json:"nts"`
	OpeningPrice     string `json:"opx"`
}

// Write publishes one snapshot row to the topic.
func (p *Publisher) Write(ctx context.Context, row *snapshotv1.Row) error {
	value, err := json.Marshal(payloadFrom(row))
	if err != nil {
		return errors.NewTracer("marshalling snapshot payload").
			WithCode(errors.SnapshotPublishError).Wrap(err)
	}

	msg := kafka.Message{
		Key:   []byte(util.NewEventID()),
		Value: value,
	}

	if err := p.kafkaWriter.WriteMessages(ctx, msg); err != nil {
		p.logger.Error(err,
			logger.Field{Key: "transacttime", Value: row.TransactTime},
		)
		return errors.NewTracer("failed to publish snapshot").
			WithCode(errors.SnapshotPublishError).Wrap(err)
	}
	return nil
}

// Close closes the underlying Kafka writer.
func (p *Publisher) Close() error {
	return p.kafkaWriter.Close()
}

func payloadFrom(row *snapshotv1.Row) rowPayload {
	return rowPayload{
		ClockAtArrival:   row.ClockAtArrival,
		TransactTime:     row.TransactTime,
		BestBids:         levelsFrom(row.BestBids),
		BestAsks:         levelsFrom(row.BestAsks),
		WorstBids:        levelsFrom(row.WorstBids),
		WorstAsks:        levelsFrom(row.WorstAsks),
		CumulativeVolume: row.Stats.CumulativeVolume,
		LastPrice:        orderbookv1.FormatPrice(row.Stats.LastPrice),
		TradeOrders:      row.Stats.TradeOrders,
		Trades:           row.Stats.Trades,
		OpeningPrice:     orderbookv1.FormatPrice(row.Stats.OpeningPrice),
	}
}

func levelsFrom(levels orderbookv1.Levels) []levelPayload {
	out := make([]levelPayload, 0, len(levels))
	for _, lvl := range levels {
		out = append(out, levelPayload{
			Price: orderbookv1.FormatPrice(lvl.Price),
			Qty:   lvl.Qty,
		})
	}
	return out
}
