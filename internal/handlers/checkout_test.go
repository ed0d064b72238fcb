package handlers

import (
	"regexp"
	"strconv"
	"strings"
	"testing"
	"time"

	"backend/internal/models"
)

func TestGenerateOrderIDFormat(t *testing.T) {
	now := time.UnixMilli(1700000000000)

	tests := map[string]string{
		models.OrderTypeMinecraft: "MC",
		models.OrderTypeVPS:       "VPS",
		models.OrderTypeDomain:    "DOM",
	}
	pattern := regexp.MustCompile(`^[A-Z]+-\d+-[0-9A-Z]{6}$`)

	for orderType, prefix := range tests {
		id := generateOrderID(orderType, now)
		if !pattern.MatchString(id) {
			t.Fatalf("order id %q does not match expected format", id)
		}
		parts := strings.SplitN(id, "-", 3)
		if parts[0] != prefix {
			t.Fatalf("expected prefix %s for type %s, got %s", prefix, orderType, parts[0])
		}
		ms, err := strconv.ParseInt(parts[1], 10, 64)
		if err != nil || ms != now.UnixMilli() {
			t.Fatalf("expected unix-ms %d in order id, got %s", now.UnixMilli(), parts[1])
		}
	}
}

func TestGenerateOrderIDsDiffer(t *testing.T) {
	now := time.Now()
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		id := generateOrderID(models.OrderTypeVPS, now)
		if seen[id] {
			t.Fatalf("duplicate order id generated: %s", id)
		}
		seen[id] = true
	}
}

func TestBuildOrderForcesPendingAndServerTimestamp(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	req := createOrderRequest{
		Type:      models.OrderTypeVPS,
		PlanName:  "India - Xeon Budget S",
		BasePrice: 6,
		Customer: checkoutCustomerRequest{
			FirstName: "Alex",
			LastName:  "Steve",
			Email:     "alex@example.com",
		},
	}

	order := buildOrder(req, "123456789", "alex#0001", nil, now)

	if order.Status != models.OrderStatusPending {
		t.Fatalf("expected pending status, got %s", order.Status)
	}
	if !order.Timestamp.Equal(now) {
		t.Fatalf("expected server-assigned timestamp %v, got %v", now, order.Timestamp)
	}
	if order.UserID != "123456789" {
		t.Fatalf("expected userId from session, got %s", order.UserID)
	}
	if order.Customer.DiscordUsername != "alex#0001" {
		t.Fatalf("expected discord username from session, got %s", order.Customer.DiscordUsername)
	}
	if order.Price != "$6.00" {
		t.Fatalf("expected $6.00 without coupon, got %s", order.Price)
	}
	if order.CouponUsed != nil {
		t.Fatal("expected no couponUsed reference")
	}
}

func TestBuildOrderAppliesCoupon(t *testing.T) {
	now := time.Now()
	coupon := models.Coupon{
		Code:          "WELCOME10",
		DiscountType:  models.DiscountPercentage,
		DiscountValue: 10,
		IsActive:      true,
	}
	req := createOrderRequest{
		Type:      models.OrderTypeMinecraft,
		PlanName:  "Diamond",
		BasePrice: 10,
		Customer: checkoutCustomerRequest{
			FirstName: "Alex",
			LastName:  "Steve",
			Email:     "alex@example.com",
		},
		CouponCode: "WELCOME10",
		ServerDetails: &checkoutServerDetailsRequest{
			Name:     "survival-1",
			Location: "Mumbai",
		},
	}

	order := buildOrder(req, "123456789", "alex#0001", &coupon, now)

	if order.Price != "$9.00" {
		t.Fatalf("expected $9.00 after 10%% off $10.00, got %s", order.Price)
	}
	if order.CouponUsed == nil || *order.CouponUsed != "WELCOME10" {
		t.Fatal("expected couponUsed to record the applied code")
	}
	if order.CouponDiscount != "10%" {
		t.Fatalf("expected couponDiscount label 10%%, got %s", order.CouponDiscount)
	}
	if order.ServerDetails == nil || order.ServerDetails.Name != "survival-1" {
		t.Fatal("expected server details to be carried onto the order")
	}
	if !strings.HasPrefix(order.OrderID, "MC-") {
		t.Fatalf("expected MC order id prefix, got %s", order.OrderID)
	}
}

func TestValidateProductDetails(t *testing.T) {
	base := createOrderRequest{
		Type:      models.OrderTypeMinecraft,
		PlanName:  "Diamond",
		BasePrice: 8,
	}
	if err := validateProductDetails(base); err == nil {
		t.Fatal("expected error for minecraft order without serverDetails")
	}

	base.Type = models.OrderTypeDomain
	if err := validateProductDetails(base); err == nil {
		t.Fatal("expected error for domain order without domainDetails")
	}

	base.Type = models.OrderTypeVPS
	if err := validateProductDetails(base); err != nil {
		t.Fatalf("expected vps order to pass without extra details, got %v", err)
	}
}
