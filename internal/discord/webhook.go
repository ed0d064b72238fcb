package discord

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Notifier posts order summaries to a Discord webhook. Delivery is
// best effort: callers fire it after the order is durably recorded and
// only log failures.
type Notifier struct {
	URL    string
	Client *http.Client
}

func NewNotifier(url string) *Notifier {
	return &Notifier{
		URL:    url,
		Client: &http.Client{Timeout: 10 * time.Second},
	}
}

// OrderNotification carries the order summary sent to the webhook.
type OrderNotification struct {
	OrderID         string
	Type            string
	PlanName        string
	Price           string
	FirstName       string
	LastName        string
	Email           string
	DiscordUsername string
	ServerName      string
	ServerLocation  string
	Domain          string
	CouponCode      string
	CouponDiscount  string
}

type embedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

type embed struct {
	Title     string       `json:"title"`
	Color     int          `json:"color"`
	Fields    []embedField `json:"fields"`
	Timestamp string       `json:"timestamp"`
	Footer    struct {
		Text string `json:"text"`
	} `json:"footer"`
}

type webhookPayload struct {
	Embeds []embed `json:"embeds"`
}

func embedTitle(orderType string) string {
	switch orderType {
	case "minecraft":
		return "New Minecraft Server Order!"
	case "vps":
		return "New VPS Order!"
	case "domain":
		return "New Domain Registration Order!"
	}
	return "New Order!"
}

// NotifyOrder posts one order embed. A non-2xx response is an error so
// callers can log the miss.
func (n *Notifier) NotifyOrder(ctx context.Context, o OrderNotification) error {
	if n.URL == "" {
		return nil // webhook not configured, nothing to do
	}

	fields := []embedField{
		{Name: "Order ID", Value: fmt.Sprintf("**%s**", o.OrderID)},
		{
			Name: "Customer Information",
			Value: fmt.Sprintf("**Name:** %s %s\n**Email:** %s\n**Discord:** %s",
				o.FirstName, o.LastName, o.Email, o.DiscordUsername),
		},
		{Name: "Plan", Value: o.PlanName, Inline: true},
		{Name: "Total Price", Value: o.Price, Inline: true},
	}

	if o.ServerName != "" || o.ServerLocation != "" {
		fields = append(fields, embedField{
			Name:  "Server Details",
			Value: fmt.Sprintf("**Name:** %s\n**Location:** %s", o.ServerName, o.ServerLocation),
		})
	}
	if o.Domain != "" {
		fields = append(fields, embedField{Name: "Domain", Value: o.Domain})
	}

	couponValue := "None"
	if o.CouponCode != "" {
		couponValue = fmt.Sprintf("%s (-%s)", o.CouponCode, o.CouponDiscount)
	}
	fields = append(fields, embedField{Name: "Coupon Applied", Value: couponValue})

	e := embed{
		Title:     embedTitle(o.Type),
		Color:     0x7c3aed,
		Fields:    fields,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	e.Footer.Text = "JXFRCloud™ Orders"

	body, err := json.Marshal(webhookPayload{Embeds: []embed{e}})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.URL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("webhook rejected notification: status %d", resp.StatusCode)
	}
	return nil
}
