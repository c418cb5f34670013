package api

import (
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/adboard/ad-directory/internal/api/handler"
	"github.com/adboard/ad-directory/internal/api/middleware"
	"github.com/adboard/ad-directory/internal/core/domain"
	"github.com/adboard/ad-directory/internal/core/service"
	mongorepo "github.com/adboard/ad-directory/internal/infrastructure/db/mongo"
	"github.com/adboard/ad-directory/internal/infrastructure/relay"
)

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(db *mongo.Database, rdb *redis.Client, buffer *relay.Buffer, jwtSecret string, tokenTTL time.Duration, log zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("addirectory"))

	// --- Dependencies ---
	users := mongorepo.NewUserRepository(db)
	cities := mongorepo.NewCityRepository(db)
	categories := mongorepo.NewCategoryRepository(db)
	offers := mongorepo.NewOfferRepository(db)

	tokens := service.NewTokenService(jwtSecret, tokenTTL)
	resolver := service.NewIdentityResolver(users, tokens, log)
	authService := service.NewAuthService(users, tokens, log)
	catalogService := service.NewCatalogService(cities, categories, offers, log)
	directoryService := service.NewDirectoryService(offers, resolver, log)

	authHandler := handler.NewAuthHandler(authService, resolver)
	cityHandler := handler.NewCityHandler(catalogService)
	categoryHandler := handler.NewCategoryHandler(catalogService)
	offerHandler := handler.NewOfferHandler(catalogService, directoryService)
	eventHandler := handler.NewEventHandler(buffer)

	authenticated := middleware.Authenticate(resolver)
	admin := middleware.RequireRole(domain.RoleAdmin)
	superadmin := middleware.RequireRole(domain.RoleSuperadmin)

	// --- Auth routes ---
	auth := e.Group("/api/auth")
	auth.POST("/signup", authHandler.Signup)
	auth.POST("/token", authHandler.Token)
	auth.GET("/me", authHandler.Me, authenticated)

	// --- Cities ---
	citiesGroup := e.Group("/api/cities")
	citiesGroup.GET("", cityHandler.List)
	citiesGroup.GET("/search", cityHandler.Search)
	citiesGroup.POST("", cityHandler.Create, authenticated, admin)
	citiesGroup.DELETE("/:id", cityHandler.Delete, authenticated, superadmin)

	// --- Categories ---
	categoriesGroup := e.Group("/api/categories")
	categoriesGroup.GET("", categoryHandler.List)
	categoriesGroup.GET("/search", categoryHandler.Search)
	categoriesGroup.POST("", categoryHandler.Create, authenticated, admin)
	categoriesGroup.DELETE("/:id", categoryHandler.Delete, authenticated, superadmin)

	// --- Offers ---
	offersGroup := e.Group("/api/offers")
	offersGroup.GET("", offerHandler.List)
	offersGroup.GET("/search", offerHandler.Search)
	offersGroup.POST("", offerHandler.Create, authenticated, admin)
	offersGroup.DELETE("/:id", offerHandler.Delete, authenticated, superadmin)
	offersGroup.POST("/:id/cities/:cityID", offerHandler.LinkCity, authenticated, admin)
	offersGroup.DELETE("/:id/cities/:cityID", offerHandler.UnlinkCity, authenticated, superadmin)

	// --- Relayed events (read-only mirror) ---
	e.GET("/api/events", eventHandler.List)

	// --- Operational endpoints ---
	e.GET("/metrics", echoprometheus.NewHandler())

	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(db, rdb)
	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", readinessHandler.Readiness)

	return e
}
