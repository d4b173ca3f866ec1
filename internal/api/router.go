package api

import (
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/lacanteen/canteen-system/internal/api/handler"
	"github.com/lacanteen/canteen-system/internal/api/middleware"
	"github.com/lacanteen/canteen-system/internal/core/domain"
	"github.com/lacanteen/canteen-system/internal/core/ports"
	"github.com/lacanteen/canteen-system/internal/core/service"
	mongostore "github.com/lacanteen/canteen-system/internal/infrastructure/db/mongo"
	redisstore "github.com/lacanteen/canteen-system/internal/infrastructure/db/redis"
	"github.com/lacanteen/canteen-system/internal/infrastructure/http/handlers"
	"github.com/lacanteen/canteen-system/pkg/logger"
)

// NewRouter builds and returns the Echo instance with all routes registered.
// The notifier is passed in because its worker pool lifecycle belongs to
// main, not to the router.
func NewRouter(client *mongo.Client, db *mongo.Database, rdb *redis.Client, notifier ports.Notifier, jwtSecret string) *echo.Echo {
	log := logger.Get()

	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echoprometheus.NewMiddleware("canteen"))

	// --- Dependencies ---
	authRepo := mongostore.NewAuthRepository(db)
	studentRepo := mongostore.NewStudentRepository(db)
	productRepo := mongostore.NewProductRepository(db)
	ledgerRepo := mongostore.NewLedgerRepository(client, db)
	replayGuard := redisstore.NewReplayGuard(rdb)

	authService := service.NewAuthService(authRepo, jwtSecret, 8*time.Hour)
	studentService := service.NewStudentService(studentRepo, notifier, nil, log)
	catalogService := service.NewCatalogService(productRepo, log)
	checkoutService := service.NewCheckoutService(studentRepo, productRepo, ledgerRepo, notifier, replayGuard, log)
	insightsService := service.NewInsightsService(studentRepo, productRepo, ledgerRepo, log)

	authHandler := handler.NewAuthHandler(authService)
	studentHandler := handler.NewStudentHandler(studentService)
	productHandler := handler.NewProductHandler(catalogService)
	checkoutHandler := handler.NewCheckoutHandler(checkoutService)
	insightsHandler := handler.NewInsightsHandler(insightsService)

	authRequired := middleware.Auth(jwtSecret)
	adminOnly := middleware.RBAC(domain.RoleAdmin)

	// --- Auth routes ---
	e.POST("/auth/login", authHandler.Login)
	e.POST("/auth/register", authHandler.Register, authRequired, adminOnly)

	// --- Catalog ---
	e.GET("/products", productHandler.List, authRequired)
	e.POST("/products", productHandler.Create, authRequired, adminOnly)
	e.PUT("/products/:id", productHandler.Update, authRequired, adminOnly)

	// --- Students ---
	e.GET("/students/card/:cardId", studentHandler.GetByCard, authRequired)
	e.POST("/students", studentHandler.Create, authRequired, adminOnly)
	e.POST("/students/:id/credit", studentHandler.AddCredit, authRequired)
	e.PUT("/students/:externalCode/photo", studentHandler.SetPhoto, authRequired)

	// --- Checkout & ledger ---
	e.POST("/checkout", checkoutHandler.Checkout, authRequired)
	e.POST("/transactions", checkoutHandler.CreateTransaction, authRequired)
	e.GET("/transactions/history", insightsHandler.History, authRequired)
	e.GET("/insights", insightsHandler.Summary, authRequired)

	// --- Operational surfaces ---
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// --- Health probes (no auth required) ---
	healthHandler := handlers.NewHealthHandler()
	healthDepsHandler := handlers.NewHealthDependenciesHandler(db, rdb)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?

	return e
}
