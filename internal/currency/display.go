// Package currency renders base-currency prices in the shopper's chosen
// display currency.
package currency

import (
	"context"
	"fmt"
	"io"
	"log"
	"maps"
	"math"
	"slices"
	"strings"
	"sync"

	"github.com/shopspring/decimal"
)

// Base is the currency product prices are stored in.
const Base = "USD"

var fallbackRates = map[string]float64{
	"USD": 1.0,
	"EUR": 0.92,
	"GBP": 0.79,
	"JPY": 149.5,
	"ZAR": 18.5,
}

var symbols = map[string]string{
	"USD": "$",
	"EUR": "€",
	"GBP": "£",
	"JPY": "¥",
	"ZAR": "R",
}

// RatesFetcher returns factors relative to Base.
type RatesFetcher interface {
	Rates(ctx context.Context) (map[string]float64, error)
}

type Display struct {
	mu       sync.RWMutex
	currency string
	rates    map[string]float64
	logger   *log.Logger
}

// New starts in Base with the built-in rate table.
func New(logger *log.Logger) *Display {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Display{currency: Base, rates: maps.Clone(fallbackRates), logger: logger}
}

// Supported lists the codes with a known symbol.
func Supported() []string {
	return slices.Sorted(maps.Keys(symbols))
}

// InitRates fetches the authoritative table and merges it over the built-in
// one. On failure the current table stays in force.
func (d *Display) InitRates(ctx context.Context, fetcher RatesFetcher) error {
	fetched, err := fetcher.Rates(ctx)
	if err != nil {
		d.logger.Printf("currency: fetch rates error=%v, using fallback", err)
		return fmt.Errorf("fetch rates: %w", err)
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	for code, factor := range fetched {
		if factor <= 0 || !finite(factor) {
			continue
		}
		d.rates[strings.ToUpper(code)] = factor
	}
	return nil
}

func (d *Display) SetCurrency(code string) {
	d.mu.Lock()
	d.currency = strings.ToUpper(strings.TrimSpace(code))
	d.mu.Unlock()
}

func (d *Display) Currency() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.currency
}

func (d *Display) Rates() map[string]float64 {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return maps.Clone(d.rates)
}

// Convert renders amount in the display currency with exactly two decimals,
// rounding half away from zero. A currency without a symbol converts at
// factor 1 so the figure matches the Base symbol it is shown with.
// Non-finite amounts render as 0.00.
func (d *Display) Convert(amount float64) string {
	d.mu.RLock()
	factor := d.factorLocked()
	d.mu.RUnlock()
	return convert(amount, factor)
}

func (d *Display) Symbol() string {
	return SymbolFor(d.Currency())
}

// Format is Symbol followed by Convert.
func (d *Display) Format(amount float64) string {
	d.mu.RLock()
	code, factor := d.currency, d.factorLocked()
	d.mu.RUnlock()
	return SymbolFor(code) + convert(amount, factor)
}

func convert(amount, factor float64) string {
	if !finite(amount) || !finite(factor) {
		return "0.00"
	}
	return decimal.NewFromFloat(amount).Mul(decimal.NewFromFloat(factor)).StringFixed(2)
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// SymbolFor falls back to the Base symbol for unknown codes.
func SymbolFor(code string) string {
	if s, ok := symbols[strings.ToUpper(code)]; ok {
		return s
	}
	return symbols[Base]
}

// ParseAmount reads back a Convert result. Order totals go through this
// round trip, so they carry the two-decimal rounding of the display.
func ParseAmount(s string) (float64, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("parse amount %q: %w", s, err)
	}
	return d.InexactFloat64(), nil
}

func (d *Display) factorLocked() float64 {
	if _, ok := symbols[d.currency]; !ok {
		return 1
	}
	if f, ok := d.rates[d.currency]; ok && f > 0 {
		return f
	}
	return 1
}
