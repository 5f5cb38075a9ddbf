// internal/interfaces/http/routes/routes.go
package routes

import (
	"github.com/Youssef-Tamer-Abdelhalim/Backend-EaseShopping-System/internal/config"
	"github.com/Youssef-Tamer-Abdelhalim/Backend-EaseShopping-System/internal/domain/cart"
	"github.com/Youssef-Tamer-Abdelhalim/Backend-EaseShopping-System/internal/domain/coupon"
	"github.com/Youssef-Tamer-Abdelhalim/Backend-EaseShopping-System/internal/domain/order"
	"github.com/Youssef-Tamer-Abdelhalim/Backend-EaseShopping-System/internal/domain/payment"
	"github.com/Youssef-Tamer-Abdelhalim/Backend-EaseShopping-System/internal/domain/product"
	"github.com/Youssef-Tamer-Abdelhalim/Backend-EaseShopping-System/internal/domain/user"
	"github.com/Youssef-Tamer-Abdelhalim/Backend-EaseShopping-System/internal/interfaces/http/handlers"
	"github.com/Youssef-Tamer-Abdelhalim/Backend-EaseShopping-System/internal/interfaces/http/middleware"
	"github.com/Youssef-Tamer-Abdelhalim/Backend-EaseShopping-System/internal/pkg/pdf"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// SetupRoutes wires every service and handler into the API group, plus
// the webhook endpoint on the bare engine: payment providers sign raw
// bodies and carry no user token, so it lives outside /api/v1 auth.
func SetupRoutes(engine *gin.Engine, rg *gin.RouterGroup, db *gorm.DB, redisClient *redis.Client, cfg *config.Config) {
	// Services
	userService := user.NewService(db, cfg)
	productService := product.NewService(db, cfg)
	couponService := coupon.NewService(db, redisClient, cfg)
	cartService := cart.NewService(db, cfg, couponService)
	orderService := order.NewService(db, cfg)
	paymentService := payment.NewService(cfg)
	pdfService := pdf.NewService(cfg)

	// Handlers
	authHandler := handlers.NewAuthHandler(userService)
	productHandler := handlers.NewProductHandler(productService)
	couponHandler := handlers.NewCouponHandler(couponService)
	cartHandler := handlers.NewCartHandler(cartService)
	orderHandler := handlers.NewOrderHandler(orderService, paymentService, userService, pdfService)
	webhookHandler := handlers.NewWebhookHandler(paymentService, orderService)
	userAdminHandler := handlers.NewUserAdminHandler(userService)

	// Payment provider webhook (raw body, signature-verified)
	engine.POST("/webhook-checkout", webhookHandler.HandleCheckoutWebhook)

	// Public auth endpoints
	auth := rg.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh", authHandler.Refresh)
	}

	// Public catalog endpoints
	products := rg.Group("/products")
	{
		products.GET("", productHandler.GetProducts)
		products.GET("/:id", productHandler.GetProduct)
	}
	rg.GET("/categories", productHandler.GetCategories)

	// Authenticated endpoints
	authenticated := rg.Group("")
	authenticated.Use(middleware.AuthMiddleware(cfg))
	{
		users := authenticated.Group("/users")
		{
			users.GET("/me", authHandler.GetProfile)
			users.PUT("/me", authHandler.UpdateProfile)
		}

		cartGroup := authenticated.Group("/cart")
		{
			cartGroup.POST("", cartHandler.AddItem)
			cartGroup.GET("", cartHandler.GetCart)
			cartGroup.DELETE("", cartHandler.ClearCart)
			cartGroup.PATCH("/applyCoupon", cartHandler.ApplyCoupon)
			cartGroup.PATCH("/:itemId", cartHandler.EditQuantity)
			cartGroup.PATCH("/:itemId/color", cartHandler.ChangeItemColor)
			cartGroup.DELETE("/:itemId", cartHandler.RemoveItem)
		}

		orders := authenticated.Group("/orders")
		{
			orders.POST("/:cartId", orderHandler.CreateCashOrder)
			orders.POST("/checkout-session/:cartId", orderHandler.CreateCheckoutSession)
			orders.GET("", orderHandler.GetOrders)
			orders.GET("/:id", orderHandler.GetOrder)
			orders.GET("/:id/invoice", orderHandler.DownloadInvoice)
			orders.PATCH("/:id/pay", middleware.AdminMiddleware(), orderHandler.MarkPaid)
			orders.PATCH("/:id/deliver", middleware.AdminMiddleware(), orderHandler.MarkDelivered)
		}
	}

	// Admin endpoints
	admin := rg.Group("/admin")
	admin.Use(middleware.AuthMiddleware(cfg))
	admin.Use(middleware.AdminMiddleware())
	{
		adminProducts := admin.Group("/products")
		{
			adminProducts.POST("", productHandler.CreateProduct)
			adminProducts.PUT("/:id", productHandler.UpdateProduct)
			adminProducts.DELETE("/:id", productHandler.DeleteProduct)
		}

		adminCategories := admin.Group("/categories")
		{
			adminCategories.POST("", productHandler.CreateCategory)
			adminCategories.DELETE("/:id", productHandler.DeleteCategory)
		}

		adminCoupons := admin.Group("/coupons")
		{
			adminCoupons.GET("", couponHandler.ListCoupons)
			adminCoupons.POST("", couponHandler.CreateCoupon)
			adminCoupons.PUT("/:id", couponHandler.UpdateCoupon)
			adminCoupons.DELETE("/:id", couponHandler.DeleteCoupon)
		}

		adminUsers := admin.Group("/users")
		{
			adminUsers.GET("", userAdminHandler.ListUsers)
			adminUsers.PUT("/:id/active", userAdminHandler.SetUserActive)
			adminUsers.DELETE("/:id", userAdminHandler.DeleteUser)
		}
	}
}
