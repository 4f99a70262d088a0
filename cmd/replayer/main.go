package main

import (
	"context"
	"log"
	"os"

	"github.com/quantfeed/bookreplay/internal/app/replay"
	snapshotv1 "github.com/quantfeed/bookreplay/internal/domain/snapshot/v1"
	"github.com/quantfeed/bookreplay/internal/usecase/feed"
	"github.com/quantfeed/bookreplay/internal/usecase/snapshot"
	snapshotpublisher "github.com/quantfeed/bookreplay/internal/usecase/snapshot-publisher"
	"github.com/quantfeed/bookreplay/pkg/config"
	"github.com/quantfeed/bookreplay/pkg/logger"
	"github.com/quantfeed/bookreplay/pkg/util"
)

func main() {
	var cfg config.Config
	if err := config.Load(&cfg); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logg, err := logger.NewLogger(logger.WithLoggingLevel(logger.Level(cfg.App.LogLevel)))
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logg.Sync()

	ctx := util.WithRunID(context.Background(), util.NewRunID())

	if err := run(ctx, &cfg, logg); err != nil {
		logg.ErrorContext(ctx, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logg *logger.Logger) error {
	orderPath, err := feed.Locate(cfg.Replay.OrderFile, cfg.Replay.SearchDepth)
	if err != nil {
		return err
	}
	tradePath := feed.Sibling(orderPath, cfg.Replay.TradeFile)
	bookPath := feed.Sibling(orderPath, cfg.Replay.BookFile)

	logg.InfoContext(ctx, "input feeds located",
		logger.Field{Key: "orders", Value: orderPath},
		logger.Field{Key: "trades", Value: tradePath},
		logger.Field{Key: "output", Value: bookPath},
	)

	orders, err := feed.ReadOrders(orderPath, logg)
	if err != nil {
		return err
	}
	trades, err := feed.ReadTrades(tradePath, logg)
	if err != nil {
		return err
	}

	csvSink, err := snapshot.NewCSVWriter(bookPath, cfg.Replay.Depth)
	if err != nil {
		return err
	}
	sinks := []snapshotv1.Sink{csvSink}

	if cfg.Publisher.Enabled {
		pub := snapshotpublisher.NewPublisher(cfg.Publisher, logg)
		sinks = append(sinks, pub)
	}

	opts := &replay.Options{
		OpeningTime:     cfg.Replay.OpeningTime,
		ImmediateWindow: cfg.Replay.ImmediateWindow,
		Depth:           cfg.Replay.Depth,
	}
	session := replay.NewSession(logg, opts, sinks...)

	runErr := session.Run(ctx, orders, trades)
	for _, sink := range sinks {
		if err := sink.Close(); err != nil && runErr == nil {
			runErr = err
		}
	}
	if runErr != nil {
		return runErr
	}

	logg.InfoContext(ctx, "output written",
		logger.Field{Key: "path", Value: bookPath},
		logger.Field{Key: "snapshots", Value: session.Emitted()},
	)
	return nil
}
