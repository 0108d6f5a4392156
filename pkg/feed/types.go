// Package feed provides upstream market data sources and the bounded-deadline
// fallback adapter consumed by the basket engine.
package feed

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// GoldInstrument is the window-store key for the gold leg.
const GoldInstrument = "XAU"

// Source defines the lifecycle contract shared by all market data feeds.
type Source interface {
	// Initialize prepares the source for operation
	Initialize(ctx context.Context) error

	// Start begins the background refresh loop
	Start(ctx context.Context) error

	// Stop halts the source and cleans up resources
	Stop() error

	// FetchNow performs one synchronous fetch within the context deadline
	FetchNow(ctx context.Context) error

	// Name returns the unique name of this source
	Name() string

	// IsHealthy returns whether the source is currently healthy
	IsHealthy() bool

	// LastUpdate returns the timestamp of the last successful update
	LastUpdate() time.Time
}

// GoldSource supplies a spot gold price in USD per troy ounce.
type GoldSource interface {
	Source

	// GoldPrice returns the latest spot price and whether one is available
	GoldPrice() (decimal.Decimal, bool)
}

// FXSource supplies USD-denominated FX rates: units of currency per 1 USD.
type FXSource interface {
	Source

	// Rates returns a copy of the latest rate table
	Rates() map[string]decimal.Decimal
}
