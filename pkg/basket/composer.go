package basket

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"tc.com/unit-oracle/pkg/logging"
)

// Strategy names for NewComposer.
const (
	StrategyGoldAnchored = "gold_anchored"
	StrategyGenesis      = "genesis"
)

var (
	// GoldGramsPerOunce is the gram weight of one troy ounce.
	GoldGramsPerOunce = decimal.RequireFromString("31.1034768")
	// GoldWeight is the share of total unit value carried by the gold leg.
	GoldWeight = decimal.RequireFromString("0.4")
	// FXWeight is the share of total unit value carried by each FX leg.
	FXWeight = decimal.RequireFromString("0.12")

	hundred = decimal.NewFromInt(100)
	one     = decimal.NewFromInt(1)
)

// Quote is the published unit price record. Created fresh on every compute
// cycle and carried by a single response; never persisted.
type Quote struct {
	TimestampUTC     time.Time          `json:"timestamp_utc"`
	GoldUSDPerOzTWAP float64            `json:"gold_usd_per_oz_twap"`
	UnitGoldGrams    float64            `json:"unit_gold_grams"`
	UnitUSD          float64            `json:"unit_usd"`
	HundredUnitsUSD  float64            `json:"hundred_units_usd"`
	FXUSDTWAP        map[string]float64 `json:"fx_usd_twap"`
	Legs             []FXLeg            `json:"legs,omitempty"`
	Strategy         string             `json:"strategy,omitempty"`
}

// FXLeg reports one FX leg of the basket. LocalAmount is nil when the leg's
// rate was zero or missing; the USD allocation is still known.
type FXLeg struct {
	Currency      string   `json:"currency"`
	USDAllocation float64  `json:"usd_allocation"`
	LocalAmount   *float64 `json:"local_amount,omitempty"`
}

// Composer combines the gold TWAP and FX TWAPs into a unit quote.
// fxTWAP rates are USD-denominated: units of currency per 1 USD. A missing or
// non-positive rate degrades that leg, never the whole quote.
type Composer interface {
	Compose(goldTWAP decimal.Decimal, fxTWAP map[string]decimal.Decimal, now time.Time) Quote
	Name() string
}

// NewComposer creates a composer for the given strategy. genesisRates is only
// consulted by the genesis strategy and must then cover every currency.
func NewComposer(strategy string, goldGrams decimal.Decimal, currencies []string, genesisRates map[string]decimal.Decimal, logger *logging.Logger) (Composer, error) {
	switch strategy {
	case StrategyGoldAnchored:
		return NewGoldAnchoredComposer(goldGrams, currencies, logger), nil
	case StrategyGenesis:
		return NewGenesisComposer(goldGrams, currencies, genesisRates, logger), nil
	default:
		return nil, fmt.Errorf("%w: %s (supported: %s, %s)",
			ErrUnknownStrategy, strategy, StrategyGoldAnchored, StrategyGenesis)
	}
}

// GoldAnchoredComposer derives the total unit value from the gold leg alone:
// the gold leg is GoldWeight of the unit by construction, so the 40/60 split
// holds exactly regardless of floating drift in the FX legs. FX legs are
// informational allocations, not independently additive.
type GoldAnchoredComposer struct {
	goldGrams  decimal.Decimal
	currencies []string
	logger     *logging.Logger
}

var _ Composer = (*GoldAnchoredComposer)(nil)

// NewGoldAnchoredComposer creates the default composer.
func NewGoldAnchoredComposer(goldGrams decimal.Decimal, currencies []string, logger *logging.Logger) *GoldAnchoredComposer {
	return &GoldAnchoredComposer{
		goldGrams:  goldGrams,
		currencies: currencies,
		logger:     logger,
	}
}

// Name returns the strategy name.
func (c *GoldAnchoredComposer) Name() string {
	return StrategyGoldAnchored
}

// Compose builds a quote from the smoothed gold price and FX rates.
func (c *GoldAnchoredComposer) Compose(goldTWAP decimal.Decimal, fxTWAP map[string]decimal.Decimal, now time.Time) Quote {
	goldOz := c.goldGrams.Div(GoldGramsPerOunce)
	goldLegUSD := goldOz.Mul(goldTWAP)
	unitUSD := goldLegUSD.Div(GoldWeight)
	fxLegUSD := unitUSD.Mul(FXWeight)

	fxOut := make(map[string]float64, len(c.currencies))
	legs := make([]FXLeg, 0, len(c.currencies))
	for _, currency := range c.currencies {
		leg := FXLeg{
			Currency:      currency,
			USDAllocation: fxLegUSD.InexactFloat64(),
		}

		rate, ok := fxTWAP[currency]
		if ok && rate.IsPositive() {
			local := fxLegUSD.Mul(rate).InexactFloat64()
			leg.LocalAmount = &local
			fxOut[currency] = rate.InexactFloat64()
		} else {
			c.logger.Warn("FX rate unavailable, reporting USD allocation only",
				"currency", currency)
		}

		legs = append(legs, leg)
	}

	return Quote{
		TimestampUTC:     now.UTC(),
		GoldUSDPerOzTWAP: goldTWAP.InexactFloat64(),
		UnitGoldGrams:    c.goldGrams.InexactFloat64(),
		UnitUSD:          unitUSD.InexactFloat64(),
		HundredUnitsUSD:  unitUSD.Mul(hundred).InexactFloat64(),
		FXUSDTWAP:        fxOut,
		Legs:             legs,
		Strategy:         c.Name(),
	}
}

// GenesisComposer is the alternate ratio-based strategy: each FX leg's genesis
// USD allocation is scaled by currentRate/referenceRate against a frozen
// baseline recorded at basket inception, and the scaled legs are summed with
// the gold leg. With all rates at their baseline this reproduces the
// gold-anchored total.
type GenesisComposer struct {
	goldGrams    decimal.Decimal
	currencies   []string
	genesisRates map[string]decimal.Decimal
	logger       *logging.Logger
}

var _ Composer = (*GenesisComposer)(nil)

// NewGenesisComposer creates the genesis-baseline composer.
func NewGenesisComposer(goldGrams decimal.Decimal, currencies []string, genesisRates map[string]decimal.Decimal, logger *logging.Logger) *GenesisComposer {
	return &GenesisComposer{
		goldGrams:    goldGrams,
		currencies:   currencies,
		genesisRates: genesisRates,
		logger:       logger,
	}
}

// Name returns the strategy name.
func (c *GenesisComposer) Name() string {
	return StrategyGenesis
}

// Compose builds a quote by summing the gold leg with ratio-scaled FX legs.
func (c *GenesisComposer) Compose(goldTWAP decimal.Decimal, fxTWAP map[string]decimal.Decimal, now time.Time) Quote {
	goldOz := c.goldGrams.Div(GoldGramsPerOunce)
	goldLegUSD := goldOz.Mul(goldTWAP)

	// Genesis unit value implied by the gold leg; each FX leg's baseline
	// allocation is its weight share of that.
	genesisUnit := goldLegUSD.Div(GoldWeight)
	baseAllocation := genesisUnit.Mul(FXWeight)

	unitUSD := goldLegUSD
	fxOut := make(map[string]float64, len(c.currencies))
	legs := make([]FXLeg, 0, len(c.currencies))
	for _, currency := range c.currencies {
		ratio := one
		rate, haveRate := fxTWAP[currency]
		reference, haveRef := c.genesisRates[currency]
		if haveRate && rate.IsPositive() && haveRef && reference.IsPositive() {
			ratio = rate.Div(reference)
		} else {
			// Degrade to the unscaled genesis allocation for this leg.
			c.logger.Warn("FX rate or baseline unavailable, using genesis allocation",
				"currency", currency)
		}

		legUSD := baseAllocation.Mul(ratio)
		unitUSD = unitUSD.Add(legUSD)

		leg := FXLeg{
			Currency:      currency,
			USDAllocation: legUSD.InexactFloat64(),
		}
		if haveRate && rate.IsPositive() {
			local := legUSD.Mul(rate).InexactFloat64()
			leg.LocalAmount = &local
			fxOut[currency] = rate.InexactFloat64()
		}
		legs = append(legs, leg)
	}

	return Quote{
		TimestampUTC:     now.UTC(),
		GoldUSDPerOzTWAP: goldTWAP.InexactFloat64(),
		UnitGoldGrams:    c.goldGrams.InexactFloat64(),
		UnitUSD:          unitUSD.InexactFloat64(),
		HundredUnitsUSD:  unitUSD.Mul(hundred).InexactFloat64(),
		FXUSDTWAP:        fxOut,
		Legs:             legs,
		Strategy:         c.Name(),
	}
}
