// Package marketdata holds the record types this demonstration persists,
// and a synthetic producer that stands in for a real venue feed (out of
// scope per SPEC_FULL.md §1 Non-goals: no WebSocket client, no venue JSON
// parsing lives here).
package marketdata

import (
	"time"

	"github.com/fran0x/dixit/persist"
)

// PriceLevel is the smallest record this demonstration persists: a single
// resting order book level.
type PriceLevel struct {
	Price    float64
	Quantity float64
}

// OrderBook is the richest fixture, exercising nearly every built-in type
// mapping at once: a tuple (Tob), stringified slice and map fallbacks
// (Buys/Sells/Properties), a plain timestamp (ExchangeTS), an optional
// timestamp (InternalTS, a pointer; the synthetic producer always sets it),
// and an ignored field (Ignore).
type OrderBook struct {
	Symbol string

	Tob persist.Pair[PriceLevel, PriceLevel] `persist:"tob"`

	Buys       []PriceLevel      `persist:"buys"`
	Sells      []PriceLevel      `persist:"sells"`
	Properties map[string]string `persist:"properties"`

	Healthy bool
	Stale   bool

	ExchangeTS time.Time  `persist:"exchange_ts"`
	InternalTS *time.Time `persist:"internal_ts"`

	Ignore bool `persist:"-"`
}

// Trade is a single executed print, reusing PriceLevel's shape (price and
// quantity) under its own name so it derives its own, independent schema.
type Trade struct {
	Price     float64
	Quantity  float64
	Side      string
	ExecutedAt time.Time `persist:"executed_at"`
}

// Simple is a minimal fixture that isolates two behaviors (an ignored field
// sitting between two recorded ones, and a timestamp attribute applied to a
// plain integer) without OrderBook's full surface. No test in this module
// uses it; the persist tests declare their own equivalent fixtures.
type Simple struct {
	A      int64
	Hidden string `persist:"-"`
	B      int64
	Ts     uint64 `persist:"ts,timestamp=ns"`
}
