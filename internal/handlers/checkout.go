package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"storefront/internal/checkout"
	"storefront/internal/middleware"
	"storefront/internal/models"
)

type applyCouponRequest struct {
	Code string `json:"code" binding:"required"`
}

type placeOrderRequest struct {
	ShippingOption string               `json:"shippingOption" binding:"required"`
	PaymentMethod  string               `json:"paymentMethod" binding:"required"`
	Guest          *models.GuestContact `json:"guest"`
	Bkash          *models.BkashPayment `json:"bkash"`
}

func GetQuote(manager *checkout.Manager, jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /checkout/quote"
		defer handlePanic(c, route)

		key, _, err := resolveSession(c, jwtSecret)
		if err != nil {
			respondWithError(c, http.StatusUnauthorized, route, "unauthorized")
			return
		}

		option := checkout.ShippingOption(c.DefaultQuery("shippingOption", string(checkout.ShippingLocalPickup)))
		method := checkout.PaymentMethod(c.DefaultQuery("paymentMethod", string(checkout.PaymentCashOnDelivery)))
		if !option.Valid() {
			respondWithError(c, http.StatusBadRequest, route, "invalid shipping option")
			return
		}
		if !method.Valid() {
			respondWithError(c, http.StatusBadRequest, route, "invalid payment method")
			return
		}

		session := manager.Session(key)
		quote := session.Quote(c.Request.Context(), option, method)
		c.JSON(http.StatusOK, gin.H{
			"quote":  quote,
			"coupon": session.Coupon(),
		})
	}
}

func ApplyCoupon(manager *checkout.Manager, jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /checkout/coupon"
		defer handlePanic(c, route)

		key, _, err := resolveSession(c, jwtSecret)
		if err != nil {
			respondWithError(c, http.StatusUnauthorized, route, "unauthorized")
			return
		}

		var req applyCouponRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid request body")
			return
		}

		session := manager.Session(key)
		coupon, err := session.ApplyCoupon(c.Request.Context(), req.Code)
		if err != nil {
			if errors.Is(err, checkout.ErrCouponSuperseded) {
				c.JSON(http.StatusConflict, gin.H{"error": "a newer coupon request replaced this one"})
				return
			}
			// Invalid or expired codes come back with the endpoint's own
			// message; a previously applied coupon stays in effect.
			log.Println("[CHECKOUT] [ERROR] coupon validation failed:", err)
			c.JSON(http.StatusBadRequest, gin.H{"error": couponFailureMessage(err)})
			return
		}

		c.JSON(http.StatusOK, gin.H{"coupon": coupon})
	}
}

func PlaceOrder(manager *checkout.Manager, db *mongo.Database, jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /checkout/orders"
		defer handlePanic(c, route)

		key, userID, err := resolveSession(c, jwtSecret)
		if err != nil {
			respondWithError(c, http.StatusUnauthorized, route, "unauthorized")
			return
		}

		var req placeOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid request body")
			return
		}

		input := checkout.SubmitInput{
			Shipping: checkout.ShippingOption(req.ShippingOption),
			Payment:  checkout.PaymentMethod(req.PaymentMethod),
			Bkash:    req.Bkash,
		}

		if userID != nil {
			if err := ensureDBConnection(c.Request.Context(), db); err != nil {
				respondWithError(c, http.StatusServiceUnavailable, route, "database unavailable")
				return
			}
			identity, err := resolveIdentity(c.Request.Context(), db, c, *userID)
			if err != nil {
				respondWithError(c, http.StatusNotFound, route, "user not found")
				return
			}
			input.Identity = identity
		} else {
			input.Guest = req.Guest
		}

		draft, err := manager.Session(key).Submit(c.Request.Context(), input)
		if err != nil {
			respondSubmitError(c, route, err)
			return
		}

		c.JSON(http.StatusCreated, gin.H{
			"message": "order placed",
			"total":   draft.Total,
		})
	}
}

func resolveIdentity(ctx context.Context, db *mongo.Database, c *gin.Context, userID primitive.ObjectID) (*checkout.Identity, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var user models.User
	if err := db.Collection("users").FindOne(ctx, bson.M{"_id": userID}).Decode(&user); err != nil {
		return nil, err
	}

	return &checkout.Identity{
		UserID:          user.ID.Hex(),
		Bearer:          middleware.RawBearer(c.GetHeader("Authorization")),
		DeliveryAddress: user.DeliveryAddress(),
	}, nil
}

func respondSubmitError(c *gin.Context, route string, err error) {
	var validation checkout.ValidationError
	if errors.As(err, &validation) {
		log.Printf("[%s] validation failed: %s", route, validation.Message)
		c.JSON(http.StatusBadRequest, gin.H{
			"error": validation.Message,
			"field": validation.Field,
		})
		return
	}

	if errors.Is(err, checkout.ErrSubmitInFlight) {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}

	var rejected checkout.ErrOrderRejected
	if errors.As(err, &rejected) {
		log.Printf("[%s] order rejected: %s", route, rejected.Message)
		c.JSON(http.StatusBadGateway, gin.H{"error": rejected.Message})
		return
	}

	respondWithError(c, http.StatusInternalServerError, route, "order could not be placed")
}

func couponFailureMessage(err error) string {
	var upstream interface{ UpstreamMessage() string }
	if errors.As(err, &upstream) && upstream.UpstreamMessage() != "" {
		return upstream.UpstreamMessage()
	}
	return "coupon could not be validated"
}
