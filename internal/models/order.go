package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Order statuses. Transitions are admin-driven and unconstrained.
const (
	OrderStatusPending   = "pending"
	OrderStatusConfirmed = "confirmed"
	OrderStatusCancelled = "cancelled"
)

// Product categories a checkout can target.
const (
	OrderTypeMinecraft = "minecraft"
	OrderTypeVPS       = "vps"
	OrderTypeDomain    = "domain"
)

// OrderCustomer captures the customer contact block on an order.
type OrderCustomer struct {
	FirstName       string `bson:"firstName" json:"firstName"`
	LastName        string `bson:"lastName" json:"lastName"`
	Email           string `bson:"email" json:"email"`
	DiscordUsername string `bson:"discordUsername" json:"discordUsername"`
}

// OrderServerDetails holds Minecraft-specific order fields.
type OrderServerDetails struct {
	Name     string `bson:"name" json:"name"`
	Location string `bson:"location" json:"location"`
}

// OrderDomainDetails holds domain-registration-specific order fields.
type OrderDomainDetails struct {
	Domain    string `bson:"domain" json:"domain"`
	Extension string `bson:"extension,omitempty" json:"extension,omitempty"`
}

// Order is the persisted order document. OrderID is the human-readable
// ticket identifier shown to the customer, distinct from the Mongo id.
// UserID references the Discord account id without FK enforcement.
type Order struct {
	ID             primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	OrderID        string              `bson:"orderId" json:"orderId"`
	UserID         string              `bson:"userId" json:"userId"`
	Type           string              `bson:"type" json:"type"`
	PlanName       string              `bson:"planName" json:"planName"`
	Price          string              `bson:"price" json:"price"`
	Customer       OrderCustomer       `bson:"customerInfo" json:"customerInfo"`
	ServerDetails  *OrderServerDetails `bson:"serverDetails,omitempty" json:"serverDetails,omitempty"`
	DomainDetails  *OrderDomainDetails `bson:"domainDetails,omitempty" json:"domainDetails,omitempty"`
	Status         string              `bson:"status" json:"status"`
	CouponUsed     *string             `bson:"couponUsed" json:"couponUsed"`
	CouponDiscount string              `bson:"couponDiscount,omitempty" json:"couponDiscount,omitempty"`
	Timestamp      time.Time           `bson:"timestamp" json:"timestamp"`
}
