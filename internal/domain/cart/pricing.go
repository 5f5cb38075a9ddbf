// internal/domain/cart/pricing.go
package cart

import "math"

// sanitize coerces NaN and infinities to zero so a corrupt price can
// never poison the cart total.
func sanitize(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// Round2 rounds to two decimal places, the resolution money is stored at.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// RecalculateTotal recomputes the cart total from its lines and clears
// any previously applied discount. Every cart mutation must go through
// here: a stale discounted total must never survive a content change.
func RecalculateTotal(c *Cart) {
	total := 0.0
	for i := range c.Items {
		total += sanitize(c.Items[i].Price) * float64(c.Items[i].Quantity)
	}
	c.TotalPrice = sanitize(total)
	c.TotalPriceAfterDiscount = nil
}

// ApplyDiscount computes the discounted total for the given percentage,
// capping the discount amount at maxDiscount, and records it on the cart.
func ApplyDiscount(c *Cart, percent, maxDiscount float64) {
	discount := c.TotalPrice * percent / 100
	if discount > maxDiscount {
		discount = maxDiscount
	}
	after := Round2(sanitize(c.TotalPrice - discount))
	c.TotalPriceAfterDiscount = &after
}
