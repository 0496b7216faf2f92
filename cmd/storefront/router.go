package main

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/MikeMC777/storefront/internal/analytics"
	"github.com/MikeMC777/storefront/internal/auth"
	"github.com/MikeMC777/storefront/internal/banner"
	"github.com/MikeMC777/storefront/internal/cart"
	"github.com/MikeMC777/storefront/internal/httpx"
	"github.com/MikeMC777/storefront/internal/notification"
	"github.com/MikeMC777/storefront/internal/order"
	"github.com/MikeMC777/storefront/internal/payment"
	"github.com/MikeMC777/storefront/internal/product"
	"github.com/MikeMC777/storefront/internal/review"
	"github.com/MikeMC777/storefront/internal/settings"
	"github.com/MikeMC777/storefront/internal/user"
)

// app holds the services the handlers are built from.
type app struct {
	users         *user.Service
	google        *user.Google
	sessions      *auth.Sessions
	products      *product.Service
	carts         *cart.Service
	orders        *order.Service
	payments      *payment.Service
	notifications *notification.Service
	analytics     *analytics.Service
	banners       *banner.Service
	reviews       *review.Service
	upi           *settings.Service

	staticDir string
	secret    []byte
	ping      func(ctx context.Context) error
}

func newRouter(a *app) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), httpx.RequestID(), httpx.Session(a.sessions), httpx.Logger())
	r.MaxMultipartMemory = 16 << 20

	r.GET("/healthz", healthHandler(a.ping))
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	if a.staticDir != "" {
		r.Static("/static", a.staticDir)
	}

	// shop
	r.GET("/", homeHandler(a.products, a.banners))
	r.GET("/products", listOnlyHandler(a.products))
	r.GET("/products/search", searchHandler(a.products))
	r.GET("/categories", categoriesHandler(a.products))
	r.GET("/category/:name", categoryHandler(a.products))
	r.GET("/product/:id", productDetailHandler(a.products, a.reviews))
	r.POST("/product/:id/review", addReviewHandler(a.reviews))
	r.POST("/review/:id/edit", editReviewHandler(a.reviews))
	r.POST("/review/:id/delete", deleteReviewHandler(a.reviews))

	// accounts
	r.POST("/register", registerHandler(a.users))
	r.POST("/verify-otp", verifyOTPHandler(a.users))
	r.POST("/login", loginHandler(a.users, a.sessions))
	r.POST("/logout", logoutHandler(a.sessions))
	r.GET("/me", meHandler())
	r.GET("/google/login", googleLoginHandler(a.google, a.secret))
	r.GET("/google/login/callback", googleCallbackHandler(a.google, a.secret, a.users, a.sessions))

	// cart
	r.GET("/cart", viewCartHandler(a.carts))
	r.GET("/cart/count", cartCountHandler(a.carts))
	r.POST("/cart/add", addToCartHandler(a.carts))
	r.POST("/cart/add/:id", addOneHandler(a.carts))
	r.POST("/cart/buy-now/:id", buyNowHandler(a.orders))
	r.POST("/cart/update/:id/:action", updateCartHandler(a.carts))
	r.POST("/cart/remove/:id", removeFromCartHandler(a.carts))

	// checkout and orders
	r.GET("/checkout", checkoutHandler(a.orders))
	r.POST("/place-order", placeOrderHandler(a.orders))
	r.GET("/orders", orderHistoryHandler(a.orders))
	r.GET("/orders/:id", getOrderHandler(a.orders))
	r.POST("/orders/cancel/:id", cancelOrderHandler(a.orders))
	r.POST("/payment/submit", submitPaymentHandler(a.payments))
	r.GET("/payments", paymentHistoryHandler(a.payments))

	// notifications
	r.GET("/notifications", notificationsHandler(a.notifications))
	r.POST("/notifications/mark-read", markReadHandler(a.notifications))
	r.POST("/notifications/clear", clearNotificationsHandler(a.notifications))

	// back office
	adm := r.Group("/admin")
	{
		adm.GET("/dashboard", dashboardHandler(a.analytics))
		adm.GET("/analytics", productAnalyticsHandler(a.analytics))
		adm.GET("/analytics/download", productAnalyticsPDFHandler(a.analytics))

		adm.GET("/products", adminProductsHandler(a.products))
		adm.POST("/products", createProductHandler(a.products))
		adm.POST("/products/edit/:id", updateProductHandler(a.products))
		adm.POST("/products/delete/:id", deleteProductHandler(a.products))

		adm.GET("/payments", paymentQueuesHandler(a.payments))
		adm.POST("/payments/verify", reviewPaymentHandler(a.orders))

		adm.GET("/orders", adminOrdersHandler(a.orders))
		adm.POST("/orders/update-status", updateOrderStatusHandler(a.orders))
		adm.POST("/orders/override-status", overrideOrderStatusHandler(a.orders))
		adm.GET("/orders/view/:id", adminOrderHandler(a.orders))
		adm.GET("/orders/print/:id", printOrderHandler(a.orders, a.upi))

		adm.GET("/banners", listBannersHandler(a.banners))
		adm.POST("/banners", createBannerHandler(a.banners))
		adm.POST("/banners/delete/:id", deleteBannerHandler(a.banners))

		adm.GET("/upi-settings", getUPIHandler(a.upi))
		adm.POST("/upi-settings", saveUPIHandler(a.upi))
	}
	return r
}

// @Summary  Liveness and database reachability
// @Tags     health
// @Produce  json
// @Success  200 {object} map[string]string
// @Failure  503 {object} httpx.HTTPError
// @Router   /healthz [get]
func healthHandler(ping func(ctx context.Context) error) gin.HandlerFunc {
	return func(c *gin.Context) {
		if ping != nil {
			if err := ping(c.Request.Context()); err != nil {
				c.JSON(http.StatusServiceUnavailable, httpx.HTTPError{Error: "database unavailable"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
