package currency

import (
	"context"
	"testing"
)

func TestNewNormalizesTable(t *testing.T) {
	svc := New(map[string]float64{"eur": 0.92, " gbp ": 0.79, "bad": 0, "USD": 3})
	rates := svc.Rates(context.Background())
	if rates["EUR"] != 0.92 || rates["GBP"] != 0.79 {
		t.Fatalf("unexpected rates %+v", rates)
	}
	if _, ok := rates["BAD"]; ok {
		t.Fatalf("non-positive factors must be dropped")
	}
	if rates["USD"] != 1 {
		t.Fatalf("base factor must be 1, got %v", rates["USD"])
	}
}

func TestRatesReturnsCopy(t *testing.T) {
	svc := New(map[string]float64{"EUR": 0.92})
	svc.Rates(context.Background())["EUR"] = 5
	if svc.Rates(context.Background())["EUR"] != 0.92 {
		t.Fatalf("caller mutated the service table")
	}
}
