package handlers

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"backend/internal/models"
)

var errCouponExhausted = errors.New("coupon usage limit reached")

// findCouponByCode looks a coupon up by its normalized code.
// Returns (nil, nil) when no coupon matches.
func findCouponByCode(ctx context.Context, db *mongo.Database, code string) (*models.Coupon, error) {
	var coupon models.Coupon
	err := db.Collection("coupons").FindOne(ctx, bson.M{
		"code": normalizeCouponCode(code),
	}).Decode(&coupon)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &coupon, nil
}

// redeemCoupon advances the usage counter by one. The filter keeps the
// increment atomic: a coupon at its cap no longer matches, so racing
// redemptions near the limit cannot push usageCount past usageLimit.
func redeemCoupon(ctx context.Context, db *mongo.Database, couponID primitive.ObjectID) error {
	filter := bson.M{
		"_id": couponID,
		"$or": []bson.M{
			{"usageLimit": nil},
			{"$expr": bson.M{"$lt": bson.A{"$usageCount", "$usageLimit"}}},
		},
	}
	update := bson.M{
		"$inc": bson.M{"usageCount": 1},
		"$set": bson.M{"updatedAt": time.Now()},
	}

	res, err := db.Collection("coupons").UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return errCouponExhausted
	}
	return nil
}
