package currency

import (
	"context"
	"maps"
	"strings"
)

// Base is the canonical currency product prices are stored in.
const Base = "USD"

// Service serves the exchange-rate table relative to Base.
type Service struct {
	rates map[string]float64
}

// New copies rates, upper-casing codes. The base currency is always present with factor 1.
func New(rates map[string]float64) *Service {
	table := make(map[string]float64, len(rates)+1)
	for code, factor := range rates {
		code = strings.ToUpper(strings.TrimSpace(code))
		if code == "" || factor <= 0 {
			continue
		}
		table[code] = factor
	}
	table[Base] = 1
	return &Service{rates: table}
}

func (s *Service) Rates(_ context.Context) map[string]float64 {
	return maps.Clone(s.rates)
}
