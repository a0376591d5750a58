package main

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"storefront/internal/config"
	"storefront/internal/database"
	"storefront/internal/handlers"
	"storefront/internal/middleware"
	"storefront/internal/session"
)

func main() {
	config.Load()

	client, err := database.Connect(config.AppEnv.MongoURI)
	if err != nil {
		log.Fatal(err)
	}

	db := client.Database(config.AppEnv.DBName)
	log.Println("MongoDB connected to:", db.Name())

	if err := database.EnsureUserIndexes(db); err != nil {
		log.Printf("user index warning: %v", err)
	}
	if err := database.EnsureProductIndexes(db); err != nil {
		log.Printf("product index warning: %v", err)
	}
	if err := database.EnsureOrderIndexes(db); err != nil {
		log.Printf("order index warning: %v", err)
	}
	if err := database.EnsureCouponIndexes(db); err != nil {
		log.Printf("coupon index warning: %v", err)
	}
	if err := database.EnsureWalletIndexes(db); err != nil {
		log.Printf("wallet index warning: %v", err)
	}
	if err := database.EnsureOfferIndexes(db); err != nil {
		log.Printf("offer index warning: %v", err)
	}

	redisClient, err := session.NewRedisClient(config.AppEnv.RedisAddr, config.AppEnv.RedisPassword)
	if err != nil {
		log.Fatal(err)
	}
	coupons := session.NewCouponStore(redisClient, config.AppEnv.CouponSlotTTL)

	r := gin.Default()

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.POST("/auth/register", handlers.Register(db, config.AppEnv.JWTSecret, config.AppEnv.AccessTokenTTL))
	r.POST("/auth/login", handlers.Login(
		db,
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

	r.POST("/admin/login", handlers.AdminLogin(db, config.AppEnv.JWTSecret, config.AppEnv.AccessTokenTTL))

	r.GET("/products", handlers.GetProducts(db))
	r.GET("/products/:id", handlers.GetProduct(db))
	r.GET("/categories", handlers.GetCategories(db))

	user := r.Group("/user")
	user.Use(middleware.UserAuth(db, config.AppEnv.JWTSecret))
	{
		user.GET("/me", handlers.GetMe(db))

		user.GET("/addresses", handlers.GetUserAddresses(db))
		user.POST("/addresses", handlers.CreateUserAddress(db))
		user.PUT("/addresses/:id", handlers.UpdateUserAddress(db))
		user.DELETE("/addresses/:id", handlers.DeleteUserAddress(db))

		user.GET("/cart", handlers.GetCart(db, coupons))
		user.POST("/cart", handlers.AddToCart(db, coupons))
		user.PUT("/cart", handlers.UpdateCartItem(db, coupons))
		user.DELETE("/cart/:productId", handlers.RemoveCartItem(db, coupons))
		user.POST("/cart/coupon", handlers.ApplyCoupon(db, coupons))
		user.DELETE("/cart/coupon", handlers.RemoveCoupon(db, coupons))

		user.POST("/orders", handlers.CreateOrder(db, coupons))
		user.GET("/orders", handlers.GetMyOrders(db))
		user.GET("/orders/:id", handlers.GetMyOrder(db))
		user.POST("/orders/:id/cancel", handlers.CancelOrder(db))
		user.POST("/orders/:id/return", handlers.ReturnOrder(db))
		user.POST("/orders/:id/items/:itemId/cancel", handlers.CancelOrderItem(db))
		user.POST("/orders/:id/items/:itemId/return", handlers.ReturnOrderItem(db))

		user.GET("/wallet", handlers.GetWallet(db))
	}

	admin := r.Group("/admin/api")
	admin.Use(middleware.AdminAuth(config.AppEnv.JWTSecret))
	{
		admin.GET("/me", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"ok": true})
		})

		admin.GET("/products", handlers.AdminGetProducts(db))
		admin.POST("/products", handlers.AdminCreateProduct(db))
		admin.PUT("/products/:id", handlers.AdminUpdateProduct(db))
		admin.PATCH("/products/:id/listing", handlers.AdminToggleProductListing(db))

		admin.GET("/categories", handlers.AdminGetCategories(db))
		admin.POST("/categories", handlers.AdminCreateCategory(db))
		admin.PUT("/categories/:id", handlers.AdminUpdateCategory(db))

		admin.GET("/coupons", handlers.AdminGetCoupons(db))
		admin.POST("/coupons", handlers.AdminCreateCoupon(db))
		admin.PUT("/coupons/:id", handlers.AdminUpdateCoupon(db))
		admin.PATCH("/coupons/:id/toggle", handlers.AdminToggleCoupon(db))

		admin.GET("/offers", handlers.AdminGetOffers(db))
		admin.POST("/offers/product", handlers.AdminCreateProductOffer(db))
		admin.POST("/offers/category", handlers.AdminCreateCategoryOffer(db))
		admin.PUT("/offers/product/:id", handlers.AdminUpdateProductOffer(db))
		admin.PUT("/offers/category/:id", handlers.AdminUpdateCategoryOffer(db))
		admin.DELETE("/offers/product/:id", handlers.AdminDeleteProductOffer(db))
		admin.DELETE("/offers/category/:id", handlers.AdminDeleteCategoryOffer(db))

		admin.GET("/orders", handlers.AdminGetOrders(db))
		admin.GET("/orders/:id", handlers.AdminGetOrder(db))
		admin.PUT("/orders/:id/status", handlers.AdminUpdateOrderStatus(db))
		admin.POST("/orders/:id/return-action", handlers.AdminHandleReturnAction(db))

		admin.GET("/users", handlers.AdminGetUsers(db))
		admin.PATCH("/users/:id/block", handlers.AdminToggleUserBlock(db))

		admin.GET("/sales/report", handlers.AdminSalesReport(db))
	}

	if err := r.Run(":" + config.AppEnv.Port); err != nil {
		log.Fatal(err)
	}
}
