package handlers

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"storefront/internal/models"
)

type addressRequest struct {
	Title     string `json:"title" binding:"required"`
	Detail    string `json:"detail" binding:"required"`
	Note      string `json:"note"`
	IsDefault bool   `json:"isDefault"`
}

func GetUserAddresses(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /user/addresses"
		defer handlePanic(c, route)

		userID, ok := c.Get("userId")
		if !ok {
			respondWithError(c, http.StatusUnauthorized, route, "unauthorized")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var user models.User
		if err := db.Collection("users").FindOne(ctx, bson.M{"_id": userID}).Decode(&user); err != nil {
			respondWithError(c, http.StatusNotFound, route, "user not found")
			return
		}

		if user.Addresses == nil {
			user.Addresses = []models.Address{}
		}
		c.JSON(http.StatusOK, gin.H{"addresses": user.Addresses})
	}
}

func CreateUserAddress(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /user/addresses"
		defer handlePanic(c, route)

		userID, ok := c.Get("userId")
		if !ok {
			respondWithError(c, http.StatusUnauthorized, route, "unauthorized")
			return
		}

		var req addressRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithError(c, http.StatusBadRequest, route, "title and detail are required")
			return
		}

		addr := models.Address{
			ID:        uuid.NewString(),
			Title:     strings.TrimSpace(req.Title),
			Detail:    strings.TrimSpace(req.Detail),
			Note:      strings.TrimSpace(req.Note),
			IsDefault: req.IsDefault,
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		// A new default demotes any existing default first.
		if addr.IsDefault {
			if _, err := db.Collection("users").UpdateOne(ctx,
				bson.M{"_id": userID},
				bson.M{"$set": bson.M{"addresses.$[].isDefault": false}},
			); err != nil {
				log.Println("[USER] [ERROR] demoting default address failed:", err)
			}
		}

		res, err := db.Collection("users").UpdateOne(ctx,
			bson.M{"_id": userID},
			bson.M{
				"$push": bson.M{"addresses": addr},
				"$set":  bson.M{"updatedAt": time.Now()},
			},
		)
		if err != nil {
			log.Println("[USER] [ERROR] create address failed:", err)
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		if res.MatchedCount == 0 {
			respondWithError(c, http.StatusNotFound, route, "user not found")
			return
		}

		c.JSON(http.StatusCreated, gin.H{"address": addr})
	}
}

func UpdateUserAddress(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /user/addresses/:addressId"
		defer handlePanic(c, route)

		userID, ok := c.Get("userId")
		if !ok {
			respondWithError(c, http.StatusUnauthorized, route, "unauthorized")
			return
		}

		addressID := c.Param("addressId")

		var req addressRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithError(c, http.StatusBadRequest, route, "title and detail are required")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		if req.IsDefault {
			if _, err := db.Collection("users").UpdateOne(ctx,
				bson.M{"_id": userID},
				bson.M{"$set": bson.M{"addresses.$[].isDefault": false}},
			); err != nil {
				log.Println("[USER] [ERROR] demoting default address failed:", err)
			}
		}

		res, err := db.Collection("users").UpdateOne(ctx,
			bson.M{"_id": userID, "addresses.id": addressID},
			bson.M{"$set": bson.M{
				"addresses.$.title":     strings.TrimSpace(req.Title),
				"addresses.$.detail":    strings.TrimSpace(req.Detail),
				"addresses.$.note":      strings.TrimSpace(req.Note),
				"addresses.$.isDefault": req.IsDefault,
				"updatedAt":             time.Now(),
			}},
		)
		if err != nil {
			log.Println("[USER] [ERROR] update address failed:", err)
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		if res.MatchedCount == 0 {
			respondWithError(c, http.StatusNotFound, route, "address not found")
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "address updated"})
	}
}

func DeleteUserAddress(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /user/addresses/:addressId"
		defer handlePanic(c, route)

		userID, ok := c.Get("userId")
		if !ok {
			respondWithError(c, http.StatusUnauthorized, route, "unauthorized")
			return
		}

		addressID := c.Param("addressId")

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		res, err := db.Collection("users").UpdateOne(ctx,
			bson.M{"_id": userID},
			bson.M{
				"$pull": bson.M{"addresses": bson.M{"id": addressID}},
				"$set":  bson.M{"updatedAt": time.Now()},
			},
		)
		if err != nil {
			log.Println("[USER] [ERROR] delete address failed:", err)
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		if res.ModifiedCount == 0 {
			respondWithError(c, http.StatusNotFound, route, "address not found")
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "address deleted"})
	}
}
