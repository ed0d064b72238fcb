package main

import (
	"log"
	"os"

	"github.com/gin-gonic/gin"

	"backend/internal/config"
	"backend/internal/database"
	"backend/internal/discord"
	"backend/internal/handlers"
	"backend/internal/middleware"
)

func main() {
	config.Load()

	client, err := database.Connect(config.AppEnv.MongoURI)
	if err != nil {
		log.Fatal(err)
	}

	db := client.Database(config.AppEnv.DBName)

	log.Println("MongoDB connected to:", db.Name())

	if err := database.EnsureCouponIndexes(db); err != nil {
		log.Printf("⚠️ coupon index warning: %v", err)
	}
	if err := database.EnsureOrderIndexes(db); err != nil {
		log.Printf("⚠️ order index warning: %v", err)
	}
	if err := database.EnsureUserIndexes(db); err != nil {
		log.Printf("⚠️ user index warning: %v", err)
	}
	if err := database.EnsureRefreshTokenIndexes(db); err != nil {
		log.Printf("⚠️ refresh token index warning: %v", err)
	}

	oauthConfig := discord.OAuthConfig(
		config.AppEnv.DiscordClientID,
		config.AppEnv.DiscordClientSecret,
		config.AppEnv.DiscordRedirectURI,
	)
	notifier := discord.NewNotifier(config.AppEnv.OrderWebhookURL)

	r := gin.Default()

	r.GET("/health", handlers.Health(db))

	r.GET("/auth/discord/login", handlers.DiscordLoginURL(oauthConfig))
	r.GET("/auth/discord/callback", handlers.DiscordCallback(
		db,
		oauthConfig,
		config.AppEnv.JWTSecret,
		config.AppEnv.AccessTokenTTL,
		config.AppEnv.RefreshTokenTTL,
	))
	r.POST("/auth/refresh", handlers.Refresh(
		db,
		config.AppEnv.JWTSecret,
		config.AppEnv.AccessTokenTTL,
		config.AppEnv.RefreshTokenTTL,
	))
	r.POST("/auth/logout", handlers.Logout(db))
	r.GET("/auth/me", middleware.UserAuth(config.AppEnv.JWTSecret), handlers.GetMe(db))

	r.POST("/coupons/validate", handlers.ValidateCoupon(db))

	r.POST("/admin/login", handlers.AdminLogin(db, config.AppEnv.JWTSecret, config.AppEnv.AccessTokenTTL))

	user := r.Group("/")
	user.Use(middleware.UserAuth(config.AppEnv.JWTSecret))
	{
		user.POST("/orders", handlers.CreateOrder(db, notifier))
		user.GET("/orders/my", handlers.GetMyOrders(db))
		user.POST("/discord/join-server", handlers.JoinServer(
			config.AppEnv.DiscordBotToken,
			config.AppEnv.DiscordGuildID,
		))
	}

	admin := r.Group("/admin/api")
	admin.Use(middleware.AdminAuth(config.AppEnv.JWTSecret))
	{
		admin.GET("/me", func(c *gin.Context) {
			c.JSON(200, gin.H{"ok": true})
		})

		admin.GET("/coupons", handlers.GetCoupons(db))
		admin.POST("/coupons", handlers.CreateCoupon(db))
		admin.PUT("/coupons/:id", handlers.UpdateCoupon(db))
		admin.DELETE("/coupons/:id", handlers.DeleteCoupon(db))

		admin.GET("/orders", handlers.GetOrders(db))
		admin.PATCH("/orders/:orderId/status", handlers.UpdateOrderStatus(db))

		admin.GET("/stats", handlers.GetStats(db))
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	r.Run(":" + port)
}
