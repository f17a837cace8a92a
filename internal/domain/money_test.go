package domain

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestCentsFromDecimal(t *testing.T) {
	tests := []struct {
		in   string
		want Cents
	}{
		{"0", 0},
		{"0.01", 1},
		{"1", 100},
		{"33.33", 3333},
		{"33.335", 3334}, // half rounds away from zero
		{"33.334", 3333},
		{"-12.50", -1250},
		{"1000000.00", 100000000},
	}

	for _, tt := range tests {
		d := decimal.RequireFromString(tt.in)
		if got := CentsFromDecimal(d); got != tt.want {
			t.Errorf("CentsFromDecimal(%s) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestCentsRoundTrip(t *testing.T) {
	for _, c := range []Cents{0, 1, 99, 100, 3334, -1250, 100000000} {
		if got := CentsFromDecimal(c.Decimal()); got != c {
			t.Errorf("round trip of %d gave %d", c, got)
		}
	}
}

func TestCentsString(t *testing.T) {
	if got := Cents(3334).String(); got != "33.34" {
		t.Errorf("got %q, want %q", got, "33.34")
	}
	if got := Cents(-5).String(); got != "-0.05" {
		t.Errorf("got %q, want %q", got, "-0.05")
	}
}
