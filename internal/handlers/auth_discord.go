package handlers

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/oauth2"

	"backend/internal/discord"
	"backend/internal/models"
)

type refreshRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

type joinServerRequest struct {
	AccessToken string `json:"accessToken" binding:"required"`
}

type sessionUser struct {
	ID        string `json:"id"`
	DiscordID string `json:"discordId"`
	Username  string `json:"username"`
	Email     string `json:"email,omitempty"`
}

/* =========================
   LOGIN FLOW
========================= */

// DiscordLoginURL hands the storefront the authorize URL to redirect to.
func DiscordLoginURL(cfg *oauth2.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		state := strings.TrimSpace(c.Query("state"))
		if state == "" {
			state = generateOpaqueToken(16)
		}
		c.JSON(http.StatusOK, gin.H{
			"url":   cfg.AuthCodeURL(state),
			"state": state,
		})
	}
}

// DiscordCallback finishes the login: exchange the code, resolve the
// Discord identity, upsert the local user, and issue session tokens.
// The raw Discord access token is returned so the client can opt into
// the guild auto-join afterwards.
func DiscordCallback(db *mongo.Database, cfg *oauth2.Config, jwtSecret string, accessTTL, refreshTTL time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /auth/discord/callback"
		defer handlePanic(c, route)

		code := strings.TrimSpace(c.Query("code"))
		if code == "" {
			respondWithError(c, http.StatusBadRequest, route, "no code provided")
			return
		}

		exchangeCtx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
		defer cancel()

		token, err := discord.ExchangeCode(exchangeCtx, cfg, code)
		if err != nil {
			log.Println("[AUTH] [ERROR] discord token exchange failed:", err)
			respondWithError(c, http.StatusBadGateway, route, "failed to exchange code for token")
			return
		}

		identity, err := discord.FetchIdentity(exchangeCtx, cfg, token)
		if err != nil {
			log.Println("[AUTH] [ERROR] discord identity fetch failed:", err)
			respondWithError(c, http.StatusBadGateway, route, "failed to fetch discord identity")
			return
		}

		user, err := upsertDiscordUser(c.Request.Context(), db, identity)
		if err != nil {
			log.Println("[AUTH] [ERROR] user upsert failed:", err)
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		tokens, err := issueSessionTokens(db, user, jwtSecret, accessTTL, refreshTTL)
		if err != nil {
			log.Println("[AUTH] [ERROR] session token generation failed:", err)
			respondWithError(c, http.StatusInternalServerError, route, "token generation failed")
			return
		}

		log.Println("[AUTH] [INFO] discord login succeeded:", identity.Username)
		c.JSON(http.StatusOK, gin.H{
			"accessToken":        tokens.AccessToken,
			"refreshToken":       tokens.RefreshToken,
			"expiresIn":          tokens.ExpiresIn,
			"discordAccessToken": token.AccessToken,
			"user": sessionUser{
				ID:        user.ID.Hex(),
				DiscordID: user.DiscordID,
				Username:  user.Username,
				Email:     user.Email,
			},
		})
	}
}

func Refresh(db *mongo.Database, jwtSecret string, accessTTL, refreshTTL time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req refreshRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "refreshToken is required"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		hash := hashToken(strings.TrimSpace(req.RefreshToken))
		var stored models.RefreshToken
		if err := db.Collection("refresh_tokens").FindOne(ctx, bson.M{
			"tokenHash": hash,
			"revoked":   false,
		}).Decode(&stored); err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid refresh token"})
			return
		}

		if time.Now().After(stored.ExpiresAt) {
			_, _ = db.Collection("refresh_tokens").UpdateByID(ctx, stored.ID, bson.M{"$set": bson.M{"revoked": true}})
			c.JSON(http.StatusUnauthorized, gin.H{"error": "refresh token expired"})
			return
		}

		var user models.User
		if err := db.Collection("users").FindOne(ctx, bson.M{"_id": stored.UserID}).Decode(&user); err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
			return
		}

		tokens, err := issueSessionTokens(db, &user, jwtSecret, accessTTL, refreshTTL)
		if err != nil {
			log.Println("[AUTH] [ERROR] refresh token rotation failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "token generation failed"})
			return
		}

		_, _ = db.Collection("refresh_tokens").UpdateByID(ctx, stored.ID, bson.M{
			"$set": bson.M{
				"revoked":         true,
				"replacedByToken": tokens.RefreshTokenID,
			},
		})

		c.JSON(http.StatusOK, gin.H{
			"accessToken":  tokens.AccessToken,
			"refreshToken": tokens.RefreshToken,
			"expiresIn":    tokens.ExpiresIn,
			"user": sessionUser{
				ID:        user.ID.Hex(),
				DiscordID: user.DiscordID,
				Username:  user.Username,
				Email:     user.Email,
			},
		})
	}
}

func Logout(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req refreshRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "refreshToken is required"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		hash := hashToken(strings.TrimSpace(req.RefreshToken))
		res, err := db.Collection("refresh_tokens").UpdateOne(ctx, bson.M{
			"tokenHash": hash,
			"revoked":   false,
		}, bson.M{"$set": bson.M{"revoked": true}})

		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}
		if res.MatchedCount == 0 {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid refresh token"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "logged out"})
	}
}

// GetMe resolves the session identity for pre-filling checkout forms.
func GetMe(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		discordID := c.GetString("discordId")
		if discordID == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var user models.User
		if err := db.Collection("users").FindOne(ctx, bson.M{"discordId": discordID}).Decode(&user); err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}

		c.JSON(http.StatusOK, sessionUser{
			ID:        user.ID.Hex(),
			DiscordID: user.DiscordID,
			Username:  user.Username,
			Email:     user.Email,
		})
	}
}

// JoinServer pulls the customer into the support guild. Best effort:
// the session stays valid whatever Discord answers.
func JoinServer(botToken, guildID string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req joinServerRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "missing parameters"})
			return
		}

		discordID := c.GetString("discordId")
		if discordID == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
		defer cancel()

		if err := discord.AddGuildMember(ctx, botToken, guildID, discordID, req.AccessToken); err != nil {
			log.Println("[AUTH] [ERROR] guild join failed:", err)
			c.JSON(http.StatusBadGateway, gin.H{"error": "failed to add user to guild"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "user added to guild"})
	}
}

/* =========================
   SESSION HELPERS
========================= */

func upsertDiscordUser(ctx context.Context, db *mongo.Database, identity *discord.Identity) (*models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	now := time.Now()
	filter := bson.M{"discordId": identity.ID}
	update := bson.M{
		"$set": bson.M{
			"username":  identity.Username,
			"email":     identity.Email,
			"updatedAt": now,
		},
		"$setOnInsert": bson.M{
			"discordId": identity.ID,
			"createdAt": now,
		},
	}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var user models.User
	if err := db.Collection("users").FindOneAndUpdate(ctx, filter, update, opts).Decode(&user); err != nil {
		return nil, err
	}
	return &user, nil
}

type issuedTokens struct {
	AccessToken    string
	RefreshToken   string
	RefreshTokenID primitive.ObjectID
	ExpiresIn      int64
}

func issueSessionTokens(db *mongo.Database, user *models.User, secret string, accessTTL, refreshTTL time.Duration) (*issuedTokens, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"userId":    user.ID.Hex(),
		"discordId": user.DiscordID,
		"username":  user.Username,
		"exp":       now.Add(accessTTL).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	accessToken, err := token.SignedString([]byte(secret))
	if err != nil {
		return nil, err
	}

	plainRefresh := generateOpaqueToken(32)
	if plainRefresh == "" {
		return nil, errors.New("could not generate refresh token")
	}

	refresh := models.RefreshToken{
		UserID:    user.ID,
		TokenHash: hashToken(plainRefresh),
		ExpiresAt: now.Add(refreshTTL),
		Revoked:   false,
		CreatedAt: now,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	res, err := db.Collection("refresh_tokens").InsertOne(ctx, refresh)
	if err != nil {
		return nil, err
	}

	refreshID, _ := res.InsertedID.(primitive.ObjectID)
	return &issuedTokens{
		AccessToken:    accessToken,
		RefreshToken:   plainRefresh,
		RefreshTokenID: refreshID,
		ExpiresIn:      int64(accessTTL.Seconds()),
	}, nil
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func generateOpaqueToken(size int) string {
	buf := make([]byte, size)
	if _, err := rand.Read(buf); err != nil {
		return ""
	}
	return hex.EncodeToString(buf)
}
