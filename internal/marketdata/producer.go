package marketdata

import (
	"context"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/fran0x/dixit/internal/logx"
	"github.com/fran0x/dixit/persist"
)

// Producer stands in for a venue WebSocket client: it emits synthetic
// OrderBook and Trade records onto its channels at roughly the configured
// rate, until ctx is cancelled. Wiring a real feed in is a matter of
// replacing this type, not the persistence layer it feeds.
type Producer struct {
	Symbol           string
	RecordsPerSecond int

	Books  chan OrderBook
	Trades chan Trade
}

// NewProducer builds a producer for symbol, buffering a handful of records
// per channel so a slow consumer doesn't immediately stall the generator.
func NewProducer(symbol string, recordsPerSecond int) *Producer {
	if recordsPerSecond <= 0 {
		recordsPerSecond = 1
	}
	return &Producer{
		Symbol:           symbol,
		RecordsPerSecond: recordsPerSecond,
		Books:            make(chan OrderBook, 16),
		Trades:           make(chan Trade, 16),
	}
}

// Run generates records until ctx is done, then closes both channels.
// Cancellation is a normal, expected exit rather than an error: observed
// between ticks it logs an info record with the record count; observed
// while a record is waiting to be sent it returns without logging.
func (p *Producer) Run(ctx context.Context) {
	defer close(p.Books)
	defer close(p.Trades)

	interval := time.Second / time.Duration(p.RecordsPerSecond)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	mid := 100.0
	seq := 0

	for {
		select {
		case <-ctx.Done():
			logx.Info("producer stopped", "symbol", p.Symbol, "records", seq)
			return
		case <-ticker.C:
			seq++
			mid += (rand.Float64() - 0.5) * 0.1
			book := p.nextBook(mid)
			trade := p.nextTrade(mid)

			select {
			case p.Books <- book:
			case <-ctx.Done():
				return
			}
			select {
			case p.Trades <- trade:
			case <-ctx.Done():
				return
			}
		}
	}
}

func (p *Producer) nextBook(mid float64) OrderBook {
	now := time.Now()
	return OrderBook{
		Symbol: p.Symbol,
		Tob: persist.NewPair(
			PriceLevel{Price: mid - 0.01, Quantity: 10 + rand.Float64()*5},
			PriceLevel{Price: mid + 0.01, Quantity: 10 + rand.Float64()*5},
		),
		Buys: []PriceLevel{
			{Price: mid - 0.01, Quantity: 10},
			{Price: mid - 0.02, Quantity: 20},
		},
		Sells: []PriceLevel{
			{Price: mid + 0.01, Quantity: 10},
			{Price: mid + 0.02, Quantity: 20},
		},
		Properties: map[string]string{
			"venue": "synthetic",
			"id":    uuid.NewString(),
		},
		Healthy:    true,
		Stale:      false,
		ExchangeTS: now,
		InternalTS: &now,
	}
}

func (p *Producer) nextTrade(mid float64) Trade {
	side := "buy"
	if rand.Intn(2) == 0 {
		side = "sell"
	}
	return Trade{
		Price:      mid,
		Quantity:   1 + rand.Float64()*3,
		Side:       side,
		ExecutedAt: time.Now(),
	}
}
