package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Discount types accepted on a coupon.
const (
	DiscountPercentage = "percentage"
	DiscountFixed      = "fixed"
)

// Coupon is a discount rule gated by activity, expiry and a usage cap.
// A nil ExpiresAt means the coupon never expires; a nil UsageLimit
// means unlimited redemptions.
type Coupon struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Code          string             `bson:"code" json:"code"`
	DiscountType  string             `bson:"discountType" json:"discountType"`
	DiscountValue float64            `bson:"discountValue" json:"discountValue"`
	ExpiresAt     *time.Time         `bson:"expiresAt" json:"expiresAt"`
	UsageLimit    *int64             `bson:"usageLimit" json:"usageLimit"`
	UsageCount    int64              `bson:"usageCount" json:"usageCount"`
	IsActive      bool               `bson:"isActive" json:"isActive"`
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time          `bson:"updatedAt" json:"updatedAt"`
}
