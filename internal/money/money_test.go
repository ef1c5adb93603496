package money

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestParseAmountMalformed(t *testing.T) {
	cases := map[string]string{
		"":       "0",
		"abc":    "0",
		"-12.50": "0",
		" 19.99": "19.99",
		"0":      "0",
	}
	for input, want := range cases {
		got := ParseAmount(input)
		if got.String() != want {
			t.Fatalf("ParseAmount(%q) = %s, want %s", input, got, want)
		}
	}
}

func TestParsePercentClamps(t *testing.T) {
	if got := ParsePercent("-5"); !got.IsZero() {
		t.Fatalf("negative percent should clamp to 0, got %s", got)
	}
	if got := ParsePercent("150"); !got.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("oversized percent should clamp to 100, got %s", got)
	}
	if got := ParsePercent(""); !got.IsZero() {
		t.Fatalf("empty percent should be 0, got %s", got)
	}
	if got := ParsePercent("12.5"); got.String() != "12.5" {
		t.Fatalf("valid percent mangled: %s", got)
	}
}

func TestRoundCurrencyHalfUp(t *testing.T) {
	d := decimal.RequireFromString("10.005")
	if got := RoundCurrency(d); got.String() != "10.01" {
		t.Fatalf("expected 10.01, got %s", got)
	}
	d = decimal.RequireFromString("10.004")
	if got := RoundCurrency(d); got.String() != "10" {
		t.Fatalf("expected 10, got %s", got)
	}
}

func TestParseQty(t *testing.T) {
	if got := ParseQty("3"); got != 3 {
		t.Fatalf("expected 3, got %d", got)
	}
	if got := ParseQty("x"); got != 0 {
		t.Fatalf("expected 0, got %d", got)
	}
}
