package http

import (
	"context"
	"log/slog"
	"time"

	"github.com/geocoder89/storefront/internal/auth"
	"github.com/geocoder89/storefront/internal/config"
	"github.com/geocoder89/storefront/internal/http/handlers"
	"github.com/geocoder89/storefront/internal/http/middlewares"
	"github.com/geocoder89/storefront/internal/notifications"
	"github.com/geocoder89/storefront/internal/observability"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

const maxBodyBytes = 1 << 20

// ProductStore is everything the catalog, seller and order handlers need from products.
type ProductStore interface {
	handlers.CatalogStore
	handlers.StockStore
}

type Deps struct {
	Config   config.Config
	Users    handlers.UserStore
	Products ProductStore
	Orders   handlers.OrderStore
	Tokens   *auth.Manager
	Cache    handlers.AnalyticsCache
	Notifier notifications.Notifier
	Ping     func(ctx context.Context) error

	// Prom and Gatherer are optional; /metrics is mounted only when both are set.
	Prom     *observability.Prom
	Gatherer prometheus.Gatherer
}

func NewRouter(deps Deps) *gin.Engine {
	if deps.Config.Env != "dev" && gin.Mode() == gin.DebugMode {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	// ClientIP only reads X-Forwarded-For from configured proxies; nil trusts none.
	if err := r.SetTrustedProxies(deps.Config.TrustedProxies); err != nil {
		slog.Error("invalid trusted proxies, trusting none", "err", err)
		_ = r.SetTrustedProxies(nil)
	}

	r.Use(gin.CustomRecovery(handlers.RecoverPanic))
	r.Use(middlewares.RequestID())
	if deps.Config.OTelEnabled {
		r.Use(otelgin.Middleware("storefront-api"))
	}
	r.Use(middlewares.RequestLogger())
	if deps.Prom != nil {
		r.Use(deps.Prom.GinHandleMiddleware())
	}
	r.Use(middlewares.SecurityHeaders(deps.Config.Env == "production"))
	r.Use(middlewares.CORSMiddleware(deps.Config.CORSAllowedOrigins))
	r.Use(middlewares.MaxBodyBytes(maxBodyBytes))
	r.Use(middlewares.RequireJSON())
	r.Use(middlewares.RequestTimeout(deps.Config.RequestTimeout))

	r.NoRoute(handlers.NoRoute)

	health := handlers.NewHealthHandler(deps.Ping)
	r.GET("/healthz", health.Healthz)
	r.GET("/readyz", health.Readyz)

	if deps.Prom != nil && deps.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))
	}

	guard := middlewares.NewAuthMiddleware(deps.Tokens, deps.Users)

	signInLimit := deps.Config.SignInRateLimit
	if signInLimit <= 0 {
		signInLimit = 20
	}
	signInLimiter := middlewares.NewRateLimiter(signInLimit, time.Minute).RateLimiterMiddleware(middlewares.KeyByIP)

	writeLimit := deps.Config.WriteRateLimit
	if writeLimit <= 0 {
		writeLimit = 60
	}
	writeLimiter := middlewares.NewRateLimiter(writeLimit, time.Minute).RateLimiterMiddleware(middlewares.KeyByUserOrIP)

	authHandler := handlers.NewAuthHandler(deps.Users, deps.Tokens)
	productsHandler := handlers.NewProductsHandler(deps.Products)
	sellerHandler := handlers.NewSellerHandler(deps.Products, deps.Orders, deps.Cache, deps.Notifier).WithMetrics(deps.Prom)
	ordersHandler := handlers.NewOrdersHandler(deps.Products, deps.Orders, deps.Cache).WithMetrics(deps.Prom)

	// identity
	r.POST("/api/signup", authHandler.SignUp)
	r.POST("/api/signin", signInLimiter, authHandler.SignIn)
	r.POST("/api/seller/signup", authHandler.SellerSignUp)
	r.POST("/api/seller/signin", signInLimiter, authHandler.SignIn)
	r.POST("/token-is-valid", authHandler.TokenIsValid)
	r.GET("/", guard.RequireAuth(), authHandler.Me)

	// seller
	seller := r.Group("/seller", guard.RequireSeller())
	{
		seller.POST("/add-product", sellerHandler.AddProduct)
		seller.GET("/get-products", sellerHandler.GetProducts)
		seller.POST("/delete-product", sellerHandler.DeleteProduct)
		seller.GET("/get-orders", sellerHandler.GetOrders)
		seller.POST("/change-order-status", sellerHandler.ChangeOrderStatus)
		seller.GET("/analytics", sellerHandler.Analytics)
	}

	// buyer
	api := r.Group("/api", guard.RequireAuth())
	{
		api.GET("/products", productsHandler.ListProducts)
		api.GET("/products/search/:name", productsHandler.SearchProducts)
		api.GET("/products/:id", productsHandler.GetProduct)
		api.POST("/rate-product", writeLimiter, productsHandler.RateProduct)
		api.GET("/deal-of-day", productsHandler.DealOfDay)
		api.POST("/order", writeLimiter, ordersHandler.PlaceOrder)
		api.GET("/orders/me", ordersHandler.MyOrders)
	}

	return r
}
