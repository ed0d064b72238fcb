package handlers

import (
	"testing"
	"time"

	"backend/internal/models"
)

func activeCoupon() models.Coupon {
	return models.Coupon{
		Code:          "WELCOME10",
		DiscountType:  models.DiscountPercentage,
		DiscountValue: 10,
		IsActive:      true,
	}
}

func TestCouponUsableWithinExpiryWindow(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	expires := now.Add(24 * time.Hour)

	c := activeCoupon()
	c.ExpiresAt = &expires

	if !couponUsable(c, now) {
		t.Fatal("expected coupon to be usable before expiry")
	}
	if !couponUsable(c, expires) {
		t.Fatal("expected coupon to be usable at the exact expiry instant")
	}
	if couponUsable(c, expires.Add(time.Second)) {
		t.Fatal("expected coupon to be unusable after expiry")
	}
}

func TestCouponUsableNoExpiryNeverExpires(t *testing.T) {
	c := activeCoupon()
	if !couponUsable(c, time.Date(2100, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatal("expected coupon without expiry to stay usable")
	}
}

func TestCouponUsableUsageCap(t *testing.T) {
	limit := int64(3)
	c := activeCoupon()
	c.UsageLimit = &limit

	for count := int64(0); count < limit; count++ {
		c.UsageCount = count
		if !couponUsable(c, time.Now()) {
			t.Fatalf("expected coupon usable at usageCount=%d", count)
		}
	}

	c.UsageCount = limit
	if couponUsable(c, time.Now()) {
		t.Fatal("expected coupon unusable once usageCount reaches usageLimit")
	}
	c.UsageCount = limit + 5
	if couponUsable(c, time.Now()) {
		t.Fatal("expected coupon unusable past usageLimit")
	}
}

func TestCouponUsableInactiveShortCircuits(t *testing.T) {
	c := activeCoupon()
	c.IsActive = false

	if couponUsable(c, time.Now()) {
		t.Fatal("expected inactive coupon to be unusable regardless of other gates")
	}
}

func TestNormalizeCouponCode(t *testing.T) {
	if got := normalizeCouponCode("  summer20 "); got != "SUMMER20" {
		t.Fatalf("expected SUMMER20, got %q", got)
	}
	if normalizeCouponCode("summer20") != normalizeCouponCode("SUMMER20") {
		t.Fatal("expected case-insensitive codes to normalize identically")
	}
}

func TestDiscountedPricePercentage(t *testing.T) {
	c := activeCoupon()
	c.DiscountType = models.DiscountPercentage
	c.DiscountValue = 20

	if got := discountedPrice(100, &c); got != 80 {
		t.Fatalf("expected 80, got %v", got)
	}
}

func TestDiscountedPriceFixedClampsAtZero(t *testing.T) {
	c := activeCoupon()
	c.DiscountType = models.DiscountFixed
	c.DiscountValue = 20

	if got := discountedPrice(15, &c); got != 0 {
		t.Fatalf("expected clamp to 0, got %v", got)
	}
	if got := discountedPrice(50, &c); got != 30 {
		t.Fatalf("expected 30, got %v", got)
	}
}

func TestDiscountedPriceNilCoupon(t *testing.T) {
	if got := discountedPrice(42.5, nil); got != 42.5 {
		t.Fatalf("expected base price untouched, got %v", got)
	}
}

func TestFormatPriceTwoDecimals(t *testing.T) {
	if got := formatPrice(9); got != "$9.00" {
		t.Fatalf("expected $9.00, got %q", got)
	}
	if got := formatPrice(79.999); got != "$80.00" {
		t.Fatalf("expected $80.00, got %q", got)
	}
}

func TestCouponDiscountLabel(t *testing.T) {
	c := activeCoupon()
	if got := couponDiscountLabel(&c); got != "10%" {
		t.Fatalf("expected 10%%, got %q", got)
	}

	c.DiscountType = models.DiscountFixed
	c.DiscountValue = 5
	if got := couponDiscountLabel(&c); got != "$5" {
		t.Fatalf("expected $5, got %q", got)
	}

	if got := couponDiscountLabel(nil); got != "" {
		t.Fatalf("expected empty label for nil coupon, got %q", got)
	}
}
