package discord

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestNotifyOrderPostsEmbedPayload(t *testing.T) {
	var gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("expected application/json content type, got %s", ct)
		}
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	n := NewNotifier(srv.URL)
	err := n.NotifyOrder(context.Background(), OrderNotification{
		OrderID:         "MC-1700000000000-AB12CD",
		Type:            "minecraft",
		PlanName:        "Diamond",
		Price:           "$9.00",
		FirstName:       "Alex",
		LastName:        "Steve",
		Email:           "alex@example.com",
		DiscordUsername: "alex#0001",
		ServerName:      "survival-1",
		ServerLocation:  "Mumbai",
		CouponCode:      "WELCOME10",
		CouponDiscount:  "10%",
	})
	if err != nil {
		t.Fatalf("NotifyOrder returned error: %v", err)
	}

	var payload struct {
		Embeds []struct {
			Title  string `json:"title"`
			Fields []struct {
				Name  string `json:"name"`
				Value string `json:"value"`
			} `json:"fields"`
		} `json:"embeds"`
	}
	if err := json.Unmarshal([]byte(gotBody), &payload); err != nil {
		t.Fatalf("payload is not valid json: %v", err)
	}
	if len(payload.Embeds) != 1 {
		t.Fatalf("expected 1 embed, got %d", len(payload.Embeds))
	}
	if payload.Embeds[0].Title != "New Minecraft Server Order!" {
		t.Fatalf("unexpected embed title: %s", payload.Embeds[0].Title)
	}
	if !strings.Contains(gotBody, "MC-1700000000000-AB12CD") {
		t.Fatal("expected order id in payload")
	}
	if !strings.Contains(gotBody, "WELCOME10 (-10%)") {
		t.Fatalf("expected coupon summary in payload, got %s", gotBody)
	}
}

func TestNotifyOrderWithoutCouponReportsNone(t *testing.T) {
	var gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := NewNotifier(srv.URL)
	if err := n.NotifyOrder(context.Background(), OrderNotification{
		OrderID: "DOM-1700000000000-XY34ZW",
		Type:    "domain",
		Domain:  "example.dev",
		Price:   "$12.00/year",
	}); err != nil {
		t.Fatalf("NotifyOrder returned error: %v", err)
	}
	if !strings.Contains(gotBody, "None") {
		t.Fatal("expected coupon field to report None")
	}
}

func TestNotifyOrderNon2xxIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	n := NewNotifier(srv.URL)
	if err := n.NotifyOrder(context.Background(), OrderNotification{OrderID: "VPS-1-A"}); err == nil {
		t.Fatal("expected error on non-2xx response")
	}
}

func TestNotifyOrderNoURLIsNoop(t *testing.T) {
	n := NewNotifier("")
	if err := n.NotifyOrder(context.Background(), OrderNotification{OrderID: "MC-1-A"}); err != nil {
		t.Fatalf("expected nil error when webhook not configured, got %v", err)
	}
}
