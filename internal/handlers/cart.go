package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront/internal/cart"
)

type addToCartRequest struct {
	ProductID           string   `json:"productId" binding:"required"`
	Name                string   `json:"name" binding:"required"`
	UnitPrice           float64  `json:"unitPrice" binding:"required"`
	DiscountedUnitPrice *float64 `json:"discountedUnitPrice"`
	ImageRef            string   `json:"imageRef"`
	Quantity            int      `json:"quantity"`
}

type updateQuantityRequest struct {
	Quantity int `json:"quantity" binding:"required"`
}

func GetCart(store *cart.Store, jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /cart"
		defer handlePanic(c, route)

		key, _, err := resolveSession(c, jwtSecret)
		if err != nil {
			respondWithError(c, http.StatusUnauthorized, route, "unauthorized")
			return
		}

		snap := store.Get(c.Request.Context(), key)
		c.JSON(http.StatusOK, gin.H{
			"cart":      snap,
			"cartTotal": snap.Total(),
			"cartCount": snap.Count(),
		})
	}
}

func AddToCart(store *cart.Store, jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /cart/items"
		defer handlePanic(c, route)

		key, _, err := resolveSession(c, jwtSecret)
		if err != nil {
			respondWithError(c, http.StatusUnauthorized, route, "unauthorized")
			return
		}

		var req addToCartRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid request body")
			return
		}

		quantity := req.Quantity
		if quantity == 0 {
			quantity = 1
		}

		snap := store.Add(c.Request.Context(), key, cart.Product{
			ID:                  req.ProductID,
			Name:                req.Name,
			UnitPrice:           req.UnitPrice,
			DiscountedUnitPrice: req.DiscountedUnitPrice,
			ImageRef:            req.ImageRef,
		}, quantity)

		c.JSON(http.StatusOK, gin.H{
			"cart":      snap,
			"cartTotal": snap.Total(),
			"cartCount": snap.Count(),
		})
	}
}

func UpdateCartItem(store *cart.Store, jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /cart/items/:productId"
		defer handlePanic(c, route)

		key, _, err := resolveSession(c, jwtSecret)
		if err != nil {
			respondWithError(c, http.StatusUnauthorized, route, "unauthorized")
			return
		}

		var req updateQuantityRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid request body")
			return
		}

		// Quantities below 1 are a no-op by contract, the current quantity
		// stays in place and the unchanged cart is returned.
		snap := store.UpdateQuantity(c.Request.Context(), key, c.Param("productId"), req.Quantity)
		c.JSON(http.StatusOK, gin.H{
			"cart":      snap,
			"cartTotal": snap.Total(),
			"cartCount": snap.Count(),
		})
	}
}

func RemoveCartItem(store *cart.Store, jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /cart/items/:productId"
		defer handlePanic(c, route)

		key, _, err := resolveSession(c, jwtSecret)
		if err != nil {
			respondWithError(c, http.StatusUnauthorized, route, "unauthorized")
			return
		}

		snap := store.Remove(c.Request.Context(), key, c.Param("productId"))
		c.JSON(http.StatusOK, gin.H{
			"cart":      snap,
			"cartTotal": snap.Total(),
			"cartCount": snap.Count(),
		})
	}
}

func ClearCart(store *cart.Store, jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /cart"
		defer handlePanic(c, route)

		key, _, err := resolveSession(c, jwtSecret)
		if err != nil {
			respondWithError(c, http.StatusUnauthorized, route, "unauthorized")
			return
		}

		snap := store.Clear(c.Request.Context(), key)
		c.JSON(http.StatusOK, gin.H{
			"cart":      snap,
			"cartTotal": snap.Total(),
			"cartCount": snap.Count(),
		})
	}
}
