package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/fran0x/dixit/internal/config"
	"github.com/fran0x/dixit/internal/logx"
	"github.com/fran0x/dixit/internal/marketdata"
	"github.com/fran0x/dixit/persist"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file (defaults built in if omitted)")
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			logx.Error("failed to load config", "err", err)
			os.Exit(1)
		}
		cfg = loaded
	}
	logx.SetLevel(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	books, err := persist.New("order_books", cfg.Persist)
	if err != nil {
		logx.Error("failed to open order_books writer", "err", err)
		os.Exit(1)
	}
	defer closeWriter(books)

	trades, err := persist.New("trades", cfg.Persist)
	if err != nil {
		logx.Error("failed to open trades writer", "err", err)
		os.Exit(1)
	}
	defer closeWriter(trades)

	producer := marketdata.NewProducer(cfg.Feed.Symbol, cfg.Feed.RecordsPerSecond)
	go producer.Run(ctx)

	logx.Info("recorder started", "symbol", cfg.Feed.Symbol, "directory", cfg.Persist.Directory)

	for producer.Books != nil || producer.Trades != nil {
		select {
		case book, ok := <-producer.Books:
			if !ok {
				producer.Books = nil
				continue
			}
			if err := recordOne(books, book); err != nil {
				logx.Error("failed to record order book", "err", err)
			}
		case trade, ok := <-producer.Trades:
			if !ok {
				producer.Trades = nil
				continue
			}
			if err := recordOne(trades, trade); err != nil {
				logx.Error("failed to record trade", "err", err)
			}
		}
	}

	logx.Info("recorder shutting down")
}

func recordOne(w *persist.TableWriter, value any) error {
	row, err := w.Begin()
	if err != nil {
		return err
	}
	if _, err := row.Record(value); err != nil {
		return err
	}
	return row.End()
}

func closeWriter(w *persist.TableWriter) {
	if err := w.Close(); err != nil {
		logx.Error("failed to close writer", "err", err)
	}
}
