package handlers

import (
	"fmt"
	"strings"
	"time"

	"backend/internal/models"
)

// normalizeCouponCode maps user input to the stored form. Codes are
// kept uppercase so SUMMER20 and summer20 resolve to the same record.
func normalizeCouponCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// couponUsable reports whether a coupon can still be redeemed at the
// given instant: it must be active, unexpired, and under its usage cap.
func couponUsable(c models.Coupon, now time.Time) bool {
	if !c.IsActive {
		return false
	}
	if c.ExpiresAt != nil && now.After(*c.ExpiresAt) {
		return false
	}
	if c.UsageLimit != nil && c.UsageCount >= *c.UsageLimit {
		return false
	}
	return true
}

// discountedPrice applies a coupon to a base price, clamped at zero.
// A nil coupon leaves the price untouched.
func discountedPrice(basePrice float64, c *models.Coupon) float64 {
	if c == nil {
		return basePrice
	}

	final := basePrice
	switch c.DiscountType {
	case models.DiscountPercentage:
		final = basePrice * (1 - c.DiscountValue/100)
	case models.DiscountFixed:
		final = basePrice - c.DiscountValue
	}
	if final < 0 {
		final = 0
	}
	return final
}

// formatPrice renders the persisted price string, two decimals.
func formatPrice(price float64) string {
	return fmt.Sprintf("$%.2f", price)
}

// couponDiscountLabel is the display form stored on the order,
// e.g. "10%" or "$5".
func couponDiscountLabel(c *models.Coupon) string {
	if c == nil {
		return ""
	}
	if c.DiscountType == models.DiscountPercentage {
		return fmt.Sprintf("%g%%", c.DiscountValue)
	}
	return fmt.Sprintf("$%g", c.DiscountValue)
}
