package handlers

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"backend/internal/models"
)

// The customer never learns which gate failed; not found, inactive,
// expired and exhausted all collapse into this one message.
const couponRejectedMessage = "invalid, expired, or used coupon code"

type validateCouponRequest struct {
	Code string `json:"code" binding:"required"`
}

type createCouponRequest struct {
	Code          string  `json:"code" binding:"required"`
	DiscountType  string  `json:"discountType" binding:"required,oneof=percentage fixed"`
	DiscountValue float64 `json:"discountValue" binding:"required,gt=0"`
	ExpiresAt     *string `json:"expiresAt"`
	UsageLimit    *int64  `json:"usageLimit"`
}

type updateCouponRequest struct {
	Code          *string  `json:"code"`
	DiscountType  *string  `json:"discountType"`
	DiscountValue *float64 `json:"discountValue"`
	ExpiresAt     *string  `json:"expiresAt"`
	UsageLimit    *int64   `json:"usageLimit"`
	IsActive      *bool    `json:"isActive"`
}

/* =========================
   VALIDATE (public)
========================= */

// ValidateCoupon is the interactive apply-coupon check. It never
// mutates state, so the storefront may call it per keystroke.
func ValidateCoupon(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /coupons/validate"
		defer handlePanic(c, route)

		var req validateCouponRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithError(c, http.StatusBadRequest, route, "coupon code is required")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		coupon, err := findCouponByCode(ctx, db, req.Code)
		if err != nil {
			log.Println("[COUPON] [ERROR] lookup failed:", err)
			respondWithError(c, http.StatusInternalServerError, route, "failed to validate coupon")
			return
		}
		if coupon == nil || !couponUsable(*coupon, time.Now()) {
			c.JSON(http.StatusNotFound, gin.H{"error": couponRejectedMessage})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"id":            coupon.ID.Hex(),
			"code":          coupon.Code,
			"discountType":  coupon.DiscountType,
			"discountValue": coupon.DiscountValue,
		})
	}
}

/* =========================
   ADMIN CRUD
========================= */

func CreateCoupon(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /admin/api/coupons"
		defer handlePanic(c, route)

		var req createCouponRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		if req.DiscountType == models.DiscountPercentage && req.DiscountValue > 100 {
			respondWithError(c, http.StatusBadRequest, route, "percentage discount cannot exceed 100")
			return
		}
		if req.UsageLimit != nil && *req.UsageLimit <= 0 {
			respondWithError(c, http.StatusBadRequest, route, "usageLimit must be greater than zero")
			return
		}

		var expiresAt *time.Time
		if req.ExpiresAt != nil && *req.ExpiresAt != "" {
			parsed, err := time.Parse(time.RFC3339, *req.ExpiresAt)
			if err != nil {
				respondWithError(c, http.StatusBadRequest, route, "expiresAt must be RFC3339")
				return
			}
			if parsed.Before(time.Now()) {
				respondWithError(c, http.StatusBadRequest, route, "expiresAt cannot be in the past")
				return
			}
			expiresAt = &parsed
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		code := normalizeCouponCode(req.Code)
		count, err := db.Collection("coupons").CountDocuments(ctx, bson.M{"code": code})
		if err != nil {
			log.Println("[COUPON] [ERROR] create lookup failed:", err)
			respondWithError(c, http.StatusInternalServerError, route, "failed to create coupon")
			return
		}
		if count > 0 {
			respondWithError(c, http.StatusConflict, route, "coupon code already exists")
			return
		}

		now := time.Now()
		coupon := models.Coupon{
			Code:          code,
			DiscountType:  req.DiscountType,
			DiscountValue: req.DiscountValue,
			ExpiresAt:     expiresAt,
			UsageLimit:    req.UsageLimit,
			UsageCount:    0,
			IsActive:      true,
			CreatedAt:     now,
			UpdatedAt:     now,
		}

		res, err := db.Collection("coupons").InsertOne(ctx, coupon)
		if err != nil {
			log.Println("[COUPON] [ERROR] create insert failed:", err)
			respondWithError(c, http.StatusInternalServerError, route, "failed to create coupon")
			return
		}

		id, _ := res.InsertedID.(primitive.ObjectID)
		log.Println("[COUPON] [INFO] coupon created:", code)
		c.JSON(http.StatusCreated, gin.H{
			"id":      id.Hex(),
			"message": "coupon " + code + " created",
		})
	}
}

func UpdateCoupon(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /admin/api/coupons/:id"
		defer handlePanic(c, route)

		couponID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid id")
			return
		}

		var req updateCouponRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid body")
			return
		}

		set := bson.M{"updatedAt": time.Now()}
		if req.Code != nil {
			code := normalizeCouponCode(*req.Code)
			if code == "" {
				respondWithError(c, http.StatusBadRequest, route, "code cannot be empty")
				return
			}
			set["code"] = code
		}
		if req.DiscountType != nil {
			if *req.DiscountType != models.DiscountPercentage && *req.DiscountType != models.DiscountFixed {
				respondWithError(c, http.StatusBadRequest, route, "invalid discountType")
				return
			}
			set["discountType"] = *req.DiscountType
		}
		if req.DiscountValue != nil {
			if *req.DiscountValue <= 0 {
				respondWithError(c, http.StatusBadRequest, route, "discountValue must be greater than zero")
				return
			}
			set["discountValue"] = *req.DiscountValue
		}
		if req.ExpiresAt != nil {
			if *req.ExpiresAt == "" {
				set["expiresAt"] = nil
			} else {
				parsed, err := time.Parse(time.RFC3339, *req.ExpiresAt)
				if err != nil {
					respondWithError(c, http.StatusBadRequest, route, "expiresAt must be RFC3339")
					return
				}
				set["expiresAt"] = parsed
			}
		}
		if req.UsageLimit != nil {
			set["usageLimit"] = *req.UsageLimit
		}
		if req.IsActive != nil {
			set["isActive"] = *req.IsActive
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		res, err := db.Collection("coupons").UpdateByID(ctx, couponID, bson.M{"$set": set})
		if err != nil {
			log.Println("[COUPON] [ERROR] update failed:", err)
			respondWithError(c, http.StatusInternalServerError, route, "failed to update coupon")
			return
		}
		if res.MatchedCount == 0 {
			respondWithError(c, http.StatusNotFound, route, "coupon not found")
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "coupon updated"})
	}
}

func DeleteCoupon(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /admin/api/coupons/:id"
		defer handlePanic(c, route)

		couponID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid id")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		res, err := db.Collection("coupons").DeleteOne(ctx, bson.M{"_id": couponID})
		if err != nil {
			log.Println("[COUPON] [ERROR] delete failed:", err)
			respondWithError(c, http.StatusInternalServerError, route, "failed to delete coupon")
			return
		}
		if res.DeletedCount == 0 {
			respondWithError(c, http.StatusNotFound, route, "coupon not found")
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "coupon deleted"})
	}
}

// GetCoupons lists all coupons, newest first. Fetch errors are logged
// and surfaced as an empty list so the dashboard still renders.
func GetCoupons(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
		cursor, err := db.Collection("coupons").Find(ctx, bson.M{}, opts)
		if err != nil {
			log.Println("[COUPON] [ERROR] list failed:", err)
			c.JSON(http.StatusOK, []models.Coupon{})
			return
		}
		defer cursor.Close(ctx)

		coupons := []models.Coupon{}
		if err := cursor.All(ctx, &coupons); err != nil {
			log.Println("[COUPON] [ERROR] list decode failed:", err)
			c.JSON(http.StatusOK, []models.Coupon{})
			return
		}

		c.JSON(http.StatusOK, coupons)
	}
}
