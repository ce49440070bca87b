package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/UnicornIn/distribuidores/internal/api"
	"github.com/UnicornIn/distribuidores/internal/config"
	"github.com/UnicornIn/distribuidores/internal/database"
	"github.com/UnicornIn/distribuidores/internal/email"
	"github.com/UnicornIn/distribuidores/internal/models"
	"github.com/UnicornIn/distribuidores/internal/orders"
	"github.com/UnicornIn/distribuidores/internal/pricing"
	"github.com/UnicornIn/distribuidores/internal/services"
	"github.com/UnicornIn/distribuidores/internal/stock"
	"github.com/UnicornIn/distribuidores/internal/workflows"
)

func main() {
	// Cargar configuración
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Error loading configuration: %v", err)
	}

	// Configurar logging
	logger := setupLogger(cfg)
	logger.Info("Starting distribuidores API...")

	// Configurar modo de Gin
	if cfg.IsDevelopment() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	// Conectar a la base de datos
	db, err := database.Connect(cfg)
	if err != nil {
		logger.Fatalf("Error connecting to database: %v", err)
	}
	defer db.Close()

	// Conectar a Redis
	redis, err := database.ConnectRedis(cfg)
	if err != nil {
		logger.Warnf("Error connecting to Redis: %v", err)
		redis = nil
	} else {
		defer redis.Close()
	}

	// Repositorios
	productRepo := database.NewProductRepository(db, logger)
	orderRepo := database.NewOrderRepository(db, logger)
	userRepo := database.NewUserRepository(db, logger)

	// Notificadores de pedidos
	var notifiers []services.OrderNotifier
	if cfg.Email.ResendAPIKey != "" {
		notifiers = append(notifiers, email.NewResendService(cfg, logger))
		logger.Info("Resend service initialized successfully")
	} else {
		logger.Warn("Resend API key not provided, email notifications will not be available")
	}

	inngestClient, err := workflows.NewInngestClient(cfg, logger)
	if err != nil {
		logger.Warnf("Error initializing Inngest client: %v", err)
	} else {
		notifiers = append(notifiers, inngestClient)
	}

	// Servicios
	var cache services.CatalogCache
	if redis != nil {
		cache = redis
	}
	productService := services.NewProductService(productRepo, cache, cfg.Catalog.CacheTTL, logger)

	builder := orders.NewBuilder(pricing.NewResolver(), stock.NewView(), orders.NewIDGenerator())
	orderService := services.NewOrderService(productRepo, orderRepo, builder, stock.NewLockMap(), logger, notifiers...)
	statsService := services.NewStatsService(productRepo, orderRepo, logger)

	// Inicializar API
	apiHandler := api.NewAPI(productService, orderService, statsService, userRepo, logger)

	// Configurar router
	router := setupRouter(apiHandler, userRepo, db, redis, cfg, logger)

	// Crear servidor HTTP
	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Canal para señales de terminación
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	// Iniciar servidor en goroutine
	go func() {
		logger.Infof("Server starting on %s:%s", cfg.Server.Host, cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Error starting server: %v", err)
		}
	}()

	// Esperar señal de terminación
	<-quit
	logger.Info("Shutting down server...")

	// Contexto con timeout para shutdown graceful
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Errorf("Server forced to shutdown: %v", err)
	}

	logger.Info("Server exited")
}

// setupLogger configura el logger según la configuración
func setupLogger(cfg *config.Config) *logrus.Logger {
	logger := logrus.New()

	level, err := logrus.ParseLevel(cfg.Logging.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if cfg.Logging.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	}

	return logger
}

// setupRouter configura el router principal
func setupRouter(apiHandler *api.API, userRepo *database.UserRepository, db *database.DB, redis *database.Redis, cfg *config.Config, logger *logrus.Logger) *gin.Engine {
	router := gin.New()

	// Middleware global
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	// Middleware de CORS para desarrollo
	if cfg.IsDevelopment() {
		router.Use(func(c *gin.Context) {
			c.Header("Access-Control-Allow-Origin", "*")
			c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
			c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Content-Length, Accept-Encoding, Authorization, X-API-Key")

			if c.Request.Method == "OPTIONS" {
				c.AbortWithStatus(204)
				return
			}

			c.Next()
		})
	}

	// Health check
	router.GET("/health", func(c *gin.Context) {
		if err := db.HealthCheck(); err != nil {
			logger.WithError(err).Error("Health check falló contra la base de datos")
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":    "unavailable",
				"timestamp": time.Now().UTC(),
				"service":   "distribuidores-api",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"timestamp": time.Now().UTC(),
			"service":   "distribuidores-api",
			"version":   "1.0.0",
		})
	})

	// API v1: todo requiere API key; el rol del usuario gobierna cada grupo
	v1 := router.Group("/v1")
	v1.Use(api.AuthMiddleware(userRepo, logger))
	v1.Use(api.RateLimitMiddleware(redis, cfg, logger))
	{
		// Catálogo para distribuidores
		distributor := v1.Group("")
		distributor.Use(api.RequireRoles(models.RoleDistributor))
		{
			distributor.GET("/catalog", apiHandler.GetAvailableProducts)
			distributor.POST("/orders", apiHandler.CreateOrder)
		}

		// Pedidos visibles según rol
		v1.GET("/orders", apiHandler.ListOrders)
		v1.GET("/orders/:id", apiHandler.GetOrder)

		// Avance de estados por producción y facturación
		fulfillment := v1.Group("")
		fulfillment.Use(api.RequireRoles(models.RoleProduction, models.RoleBilling))
		{
			fulfillment.PATCH("/orders/:id/status", apiHandler.TransitionOrder)
		}

		// Inventario por sede para bodegas y administración
		warehouse := v1.Group("")
		warehouse.Use(api.RequireRoles(models.RoleWarehouse, models.RoleAdmin))
		{
			warehouse.GET("/stock", apiHandler.GetWarehouseCatalog)
		}

		// Administración
		admin := v1.Group("")
		admin.Use(api.RequireRoles(models.RoleAdmin))
		{
			admin.GET("/products", apiHandler.GetProducts)
			admin.GET("/products/:id", apiHandler.GetProduct)
			admin.POST("/products", apiHandler.CreateProduct)
			admin.PATCH("/products/:id", apiHandler.UpdateProduct)
			admin.PUT("/products/:id/stock", apiHandler.SetProductStock)
			admin.DELETE("/products/:id", apiHandler.DeleteProduct)

			admin.GET("/dashboard", apiHandler.GetDashboard)
			admin.GET("/dashboard/recent-orders", apiHandler.GetRecentOrders)
			admin.GET("/dashboard/popular-products", apiHandler.GetPopularProducts)

			admin.POST("/users", apiHandler.CreateUser)
			admin.GET("/users", apiHandler.ListUsers)
			admin.POST("/users/:id/apikeys", apiHandler.CreateAPIKey)
			admin.DELETE("/apikeys/:keyId", apiHandler.DeactivateAPIKey)
		}
	}

	return router
}
