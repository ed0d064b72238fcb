package handlers

import (
	"context"
	"crypto/rand"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"

	"backend/internal/discord"
	"backend/internal/models"
)

/* =========================
   REQUEST DTOs
========================= */

type checkoutCustomerRequest struct {
	FirstName string `json:"firstName" binding:"required"`
	LastName  string `json:"lastName" binding:"required"`
	Email     string `json:"email" binding:"required,email"`
}

type checkoutServerDetailsRequest struct {
	Name     string `json:"name" binding:"required"`
	Location string `json:"location" binding:"required"`
}

type checkoutDomainDetailsRequest struct {
	Domain    string `json:"domain" binding:"required"`
	Extension string `json:"extension"`
}

type createOrderRequest struct {
	Type          string                        `json:"type" binding:"required,oneof=minecraft vps domain"`
	PlanName      string                        `json:"planName" binding:"required"`
	BasePrice     float64                       `json:"basePrice" binding:"required,gt=0"`
	Customer      checkoutCustomerRequest       `json:"customerInfo" binding:"required"`
	CouponCode    string                        `json:"couponCode"`
	ServerDetails *checkoutServerDetailsRequest `json:"serverDetails"`
	DomainDetails *checkoutDomainDetailsRequest `json:"domainDetails"`
}

/* =========================
   CREATE ORDER
========================= */

// CreateOrder drives one checkout: re-validate the coupon server-side,
// price the order, record it pending, redeem the coupon, then notify
// the webhook without holding up the response.
func CreateOrder(db *mongo.Database, notifier *discord.Notifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /orders"
		defer handlePanic(c, route)

		if err := ensureDBConnection(c.Request.Context(), db); err != nil {
			respondWithError(c, http.StatusServiceUnavailable, route, "database unavailable")
			return
		}

		var req createOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}
		if err := validateProductDetails(req); err != nil {
			respondWithError(c, http.StatusBadRequest, route, err.Error())
			return
		}

		discordID := c.GetString("discordId")
		username := c.GetString("username")
		if discordID == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var coupon *models.Coupon
		if strings.TrimSpace(req.CouponCode) != "" {
			found, err := findCouponByCode(ctx, db, req.CouponCode)
			if err != nil {
				log.Println("[ORDER] [ERROR] coupon lookup failed:", err)
				respondWithError(c, http.StatusInternalServerError, route, "failed to validate coupon")
				return
			}
			if found == nil || !couponUsable(*found, time.Now()) {
				respondWithError(c, http.StatusBadRequest, route, couponRejectedMessage)
				return
			}
			coupon = found
		}

		order := buildOrder(req, discordID, username, coupon, time.Now())

		if _, err := db.Collection("orders").InsertOne(ctx, order); err != nil {
			log.Println("[ORDER] [ERROR] insert failed:", err)
			respondWithError(c, http.StatusInternalServerError, route, "failed to place order")
			return
		}

		// The order is already durable; a redemption miss is logged, never
		// bounced back to the customer.
		if coupon != nil {
			if err := redeemCoupon(ctx, db, coupon.ID); err != nil {
				log.Printf("[ORDER] [ERROR] coupon %s redemption failed: %v", coupon.Code, err)
			}
		}

		go notifyOrder(notifier, order)

		log.Println("[ORDER] [INFO] order created:", order.OrderID, "for user:", discordID)
		c.JSON(http.StatusCreated, gin.H{
			"orderId": order.OrderID,
			"message": "order created",
		})
	}
}

func validateProductDetails(req createOrderRequest) error {
	switch req.Type {
	case models.OrderTypeMinecraft:
		if req.ServerDetails == nil {
			return fmt.Errorf("serverDetails is required for minecraft orders")
		}
	case models.OrderTypeDomain:
		if req.DomainDetails == nil {
			return fmt.Errorf("domainDetails is required for domain orders")
		}
	}
	return nil
}

// buildOrder assembles the persisted document. Status is always
// pending and the timestamp is server-assigned; the caller has no say
// in either.
func buildOrder(req createOrderRequest, discordID, username string, coupon *models.Coupon, now time.Time) models.Order {
	order := models.Order{
		OrderID:  generateOrderID(req.Type, now),
		UserID:   discordID,
		Type:     req.Type,
		PlanName: strings.TrimSpace(req.PlanName),
		Price:    formatPrice(discountedPrice(req.BasePrice, coupon)),
		Customer: models.OrderCustomer{
			FirstName:       strings.TrimSpace(req.Customer.FirstName),
			LastName:        strings.TrimSpace(req.Customer.LastName),
			Email:           strings.TrimSpace(req.Customer.Email),
			DiscordUsername: username,
		},
		Status:    models.OrderStatusPending,
		Timestamp: now,
	}

	if req.ServerDetails != nil {
		order.ServerDetails = &models.OrderServerDetails{
			Name:     strings.TrimSpace(req.ServerDetails.Name),
			Location: strings.TrimSpace(req.ServerDetails.Location),
		}
	}
	if req.DomainDetails != nil {
		order.DomainDetails = &models.OrderDomainDetails{
			Domain:    strings.TrimSpace(req.DomainDetails.Domain),
			Extension: strings.TrimSpace(req.DomainDetails.Extension),
		}
	}
	if coupon != nil {
		code := coupon.Code
		order.CouponUsed = &code
		order.CouponDiscount = couponDiscountLabel(coupon)
	}

	return order
}

/* =========================
   ORDER IDS
========================= */

const base36Alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

func orderIDPrefix(orderType string) string {
	switch orderType {
	case models.OrderTypeMinecraft:
		return "MC"
	case models.OrderTypeVPS:
		return "VPS"
	case models.OrderTypeDomain:
		return "DOM"
	}
	return "ORD"
}

// generateOrderID produces the human-readable ticket id, e.g.
// MC-1700000000000-AB12CD.
func generateOrderID(orderType string, now time.Time) string {
	return fmt.Sprintf("%s-%d-%s", orderIDPrefix(orderType), now.UnixMilli(), randomBase36(6))
}

func randomBase36(n int) string {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		for i := range buf {
			buf[i] = byte(time.Now().UnixNano() >> (i * 8))
		}
	}
	out := make([]byte, n)
	for i, b := range buf {
		out[i] = base36Alphabet[int(b)%len(base36Alphabet)]
	}
	return string(out)
}

/* =========================
   NOTIFICATION
========================= */

// notifyOrder runs detached from the request; the order is already
// committed, so webhook failures only make noise in the logs.
func notifyOrder(notifier *discord.Notifier, order models.Order) {
	if notifier == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	n := discord.OrderNotification{
		OrderID:         order.OrderID,
		Type:            order.Type,
		PlanName:        order.PlanName,
		Price:           order.Price,
		FirstName:       order.Customer.FirstName,
		LastName:        order.Customer.LastName,
		Email:           order.Customer.Email,
		DiscordUsername: order.Customer.DiscordUsername,
		CouponDiscount:  order.CouponDiscount,
	}
	if order.CouponUsed != nil {
		n.CouponCode = *order.CouponUsed
	}
	if order.ServerDetails != nil {
		n.ServerName = order.ServerDetails.Name
		n.ServerLocation = order.ServerDetails.Location
	}
	if order.DomainDetails != nil {
		n.Domain = order.DomainDetails.Domain
	}

	if err := notifier.NotifyOrder(ctx, n); err != nil {
		log.Println("[ORDER] [ERROR] webhook notification failed:", err)
	}
}
