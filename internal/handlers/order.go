package handlers

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"backend/internal/models"
)

type updateOrderStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=pending confirmed cancelled"`
}

// GetMyOrders returns the authenticated customer's orders, newest first.
func GetMyOrders(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		discordID := c.GetString("discordId")
		if discordID == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}})
		cursor, err := db.Collection("orders").Find(ctx, bson.M{"userId": discordID}, opts)
		if err != nil {
			log.Println("[ORDER] [ERROR] user order list failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch orders"})
			return
		}
		defer cursor.Close(ctx)

		orders := []models.Order{}
		if err := cursor.All(ctx, &orders); err != nil {
			log.Println("[ORDER] [ERROR] user order decode failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch orders"})
			return
		}

		c.JSON(http.StatusOK, orders)
	}
}

// GetOrders is the paginated admin listing, newest first.
func GetOrders(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, limit, err := parsePaginationParams(c.Query("page"), c.Query("limit"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid pagination params"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		opts := options.Find().
			SetSort(bson.D{{Key: "timestamp", Value: -1}}).
			SetSkip((page - 1) * limit).
			SetLimit(limit)

		cursor, err := db.Collection("orders").Find(ctx, bson.M{}, opts)
		if err != nil {
			log.Println("[ORDER] [ERROR] admin order list failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch orders"})
			return
		}
		defer cursor.Close(ctx)

		orders := []models.Order{}
		if err := cursor.All(ctx, &orders); err != nil {
			log.Println("[ORDER] [ERROR] admin order decode failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch orders"})
			return
		}

		total, err := db.Collection("orders").CountDocuments(ctx, bson.M{})
		if err != nil {
			log.Println("[ORDER] [ERROR] admin order count failed:", err)
			total = int64(len(orders))
		}

		c.JSON(http.StatusOK, gin.H{
			"orders": orders,
			"page":   page,
			"limit":  limit,
			"total":  total,
		})
	}
}

// UpdateOrderStatus sets a new status on an order, keyed by the
// human-readable orderId. Any of the three statuses may follow any
// other; the dashboard is trusted here.
func UpdateOrderStatus(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PATCH /admin/api/orders/:orderId/status"
		defer handlePanic(c, route)

		orderID := c.Param("orderId")
		if orderID == "" {
			respondWithError(c, http.StatusBadRequest, route, "orderId is required")
			return
		}

		var req updateOrderStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		res, err := db.Collection("orders").UpdateOne(ctx,
			bson.M{"orderId": orderID},
			bson.M{"$set": bson.M{"status": req.Status}},
		)
		if err != nil {
			log.Println("[ORDER] [ERROR] status update failed:", err)
			respondWithError(c, http.StatusInternalServerError, route, "failed to update order status")
			return
		}
		if res.MatchedCount == 0 {
			respondWithError(c, http.StatusNotFound, route, "order not found")
			return
		}

		log.Printf("[ORDER] [INFO] order %s status set to %s", orderID, req.Status)
		c.JSON(http.StatusOK, gin.H{"message": "order " + orderID + " status updated to " + req.Status})
	}
}

// GetStats backs the dashboard counters.
func GetStats(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		totalUsers, err := db.Collection("users").CountDocuments(ctx, bson.M{})
		if err != nil {
			log.Println("[STATS] [ERROR] user count failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch stats"})
			return
		}

		totalOrders, err := db.Collection("orders").CountDocuments(ctx, bson.M{})
		if err != nil {
			log.Println("[STATS] [ERROR] order count failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch stats"})
			return
		}

		pendingOrders, err := db.Collection("orders").CountDocuments(ctx, bson.M{"status": models.OrderStatusPending})
		if err != nil {
			log.Println("[STATS] [ERROR] pending count failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch stats"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"totalUsers":    totalUsers,
			"totalOrders":   totalOrders,
			"pendingOrders": pendingOrders,
		})
	}
}
