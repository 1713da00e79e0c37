package main

import (
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"storefront/internal/cart"
	"storefront/internal/checkout"
	"storefront/internal/config"
	"storefront/internal/database"
	"storefront/internal/gateway"
	"storefront/internal/handlers"
	"storefront/internal/middleware"
)

func main() {
	config.Load()

	client, err := database.Connect(config.AppEnv.MongoURI)
	if err != nil {
		log.Fatal(err)
	}

	db := client.Database(config.AppEnv.DBName)

	log.Println("MongoDB connected to:", db.Name())

	if err := database.EnsureCartIndexes(db); err != nil {
		log.Println("⚠️ cart index warning:", err)
	}
	if err := database.EnsureUserIndexes(db); err != nil {
		log.Println("⚠️ user index warning:", err)
	}
	if err := database.EnsureRefreshTokenIndexes(db); err != nil {
		log.Println("⚠️ refresh token index warning:", err)
	}

	var storage cart.Storage = cart.NewMongoStorage(db)
	if config.AppEnv.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{Addr: config.AppEnv.RedisAddr})
		storage = cart.NewCachedStorage(storage, redisClient)
		log.Println("Redis cart cache enabled:", config.AppEnv.RedisAddr)
	}

	store := cart.NewStore(storage)

	api := gateway.NewClient(config.AppEnv.APIBaseURL)
	manager := checkout.NewManager(
		store,
		gateway.NewCouponClient(api),
		gateway.NewOrderClient(api),
		gateway.NewRatesClient(api),
	)

	r := gin.Default()

	jwtSecret := config.AppEnv.JWTSecret

	r.POST("/auth/register", handlers.Register(db, jwtSecret, config.AppEnv.AccessTokenTTL, config.AppEnv.RefreshTokenTTL))
	r.POST("/auth/login", handlers.Login(db, jwtSecret, config.AppEnv.AccessTokenTTL, config.AppEnv.RefreshTokenTTL))
	r.POST("/auth/refresh", handlers.Refresh(db, jwtSecret, config.AppEnv.AccessTokenTTL, config.AppEnv.RefreshTokenTTL))
	r.POST("/auth/logout", handlers.Logout(db))
	r.GET("/auth/me", middleware.UserAuth(jwtSecret), handlers.GetMe(db))

	r.GET("/cart", handlers.GetCart(store, jwtSecret))
	r.DELETE("/cart", handlers.ClearCart(store, jwtSecret))
	r.POST("/cart/items", handlers.AddToCart(store, jwtSecret))
	r.PUT("/cart/items/:productId", handlers.UpdateCartItem(store, jwtSecret))
	r.DELETE("/cart/items/:productId", handlers.RemoveCartItem(store, jwtSecret))

	r.GET("/checkout/quote", handlers.GetQuote(manager, jwtSecret))
	r.POST("/checkout/coupon", handlers.ApplyCoupon(manager, jwtSecret))
	r.POST("/checkout/orders", handlers.PlaceOrder(manager, db, jwtSecret))

	user := r.Group("/user")
	user.Use(middleware.UserAuth(jwtSecret))
	{
		user.GET("/addresses", handlers.GetUserAddresses(db))
		user.POST("/addresses", handlers.CreateUserAddress(db))
		user.PUT("/addresses/:addressId", handlers.UpdateUserAddress(db))
		user.DELETE("/addresses/:addressId", handlers.DeleteUserAddress(db))
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Println("listening on :" + port)
	if err := r.Run(":" + port); err != nil {
		log.Fatal(err)
	}
}
