// internal/domain/cart/pricing_test.go
package cart

import (
	"math"
	"testing"
)

func TestRecalculateTotal(t *testing.T) {
	c := &Cart{
		Items: []CartItem{
			{Price: 19.99, Quantity: 2},
			{Price: 5.50, Quantity: 3},
		},
	}

	RecalculateTotal(c)

	want := 19.99*2 + 5.50*3
	if c.TotalPrice != want {
		t.Errorf("TotalPrice = %v, want %v", c.TotalPrice, want)
	}
	if c.TotalPriceAfterDiscount != nil {
		t.Errorf("TotalPriceAfterDiscount = %v, want nil", *c.TotalPriceAfterDiscount)
	}
}

func TestRecalculateTotalCoercesNonFinitePrices(t *testing.T) {
	tests := []struct {
		name  string
		price float64
	}{
		{"nan", math.NaN()},
		{"positive infinity", math.Inf(1)},
		{"negative infinity", math.Inf(-1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Cart{
				Items: []CartItem{
					{Price: tt.price, Quantity: 3},
					{Price: 10, Quantity: 1},
				},
			}

			RecalculateTotal(c)

			if c.TotalPrice != 10 {
				t.Errorf("TotalPrice = %v, want 10", c.TotalPrice)
			}
		})
	}
}

func TestRecalculateTotalClearsDiscount(t *testing.T) {
	discounted := 80.0
	c := &Cart{
		TotalPrice:              100,
		TotalPriceAfterDiscount: &discounted,
		Items:                   []CartItem{{Price: 50, Quantity: 2}},
	}

	RecalculateTotal(c)

	if c.TotalPriceAfterDiscount != nil {
		t.Errorf("discount survived a recalculation: %v", *c.TotalPriceAfterDiscount)
	}
}

func TestApplyDiscount(t *testing.T) {
	tests := []struct {
		name        string
		total       float64
		percent     float64
		maxDiscount float64
		want        float64
	}{
		{"capped discount", 1000, 20, 50, 950},
		{"uncapped discount", 1000, 10, 500, 900},
		{"discount equals cap", 1000, 5, 50, 950},
		{"rounds to two decimals", 33.33, 10, 100, 30},
		{"zero total", 0, 25, 100, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Cart{TotalPrice: tt.total}
			ApplyDiscount(c, tt.percent, tt.maxDiscount)

			if c.TotalPriceAfterDiscount == nil {
				t.Fatal("TotalPriceAfterDiscount is nil")
			}
			if *c.TotalPriceAfterDiscount != tt.want {
				t.Errorf("TotalPriceAfterDiscount = %v, want %v", *c.TotalPriceAfterDiscount, tt.want)
			}
		})
	}
}

func TestRound2(t *testing.T) {
	if got := Round2(949.999); got != 950 {
		t.Errorf("Round2(949.999) = %v, want 950", got)
	}
	if got := Round2(10.344); got != 10.34 {
		t.Errorf("Round2(10.344) = %v, want 10.34", got)
	}
	if got := Round2(10.346); got != 10.35 {
		t.Errorf("Round2(10.346) = %v, want 10.35", got)
	}
}
