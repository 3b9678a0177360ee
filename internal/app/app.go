package app

import (
	"fmt"
	"log"
	"time"

	"storefront/internal/broadcast"
	"storefront/internal/cache"
	"storefront/internal/config"
	"storefront/internal/database"
	"storefront/internal/handlers"
	"storefront/internal/middleware"
	"storefront/internal/repositories"
	"storefront/internal/services"
	"storefront/internal/uploads"
	"storefront/pkg/kafka"
	"storefront/pkg/rabbitmq"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

// Dependencies are the collaborators New wires together.
type Dependencies struct {
	OrderRepo   repositories.OrderRepository
	ProductRepo repositories.ProductRepository
	UserRepo    repositories.UserRepository
	// Images stores uploaded product images; nil disables uploads.
	Images *uploads.Store
	// Relays receive every order event in addition to the websocket hub.
	Relays []broadcast.Publisher
}

// App is the assembled HTTP application and its services.
type App struct {
	Fiber    *fiber.App
	Hub      *broadcast.Hub
	Orders   *services.OrderService
	Products *services.ProductService
	Auth     *services.AuthService
	Users    *services.UserService

	closers []func() error
}

// New builds the Fiber application from cfg and deps.
func New(cfg *config.Config, deps Dependencies) *App {
	hub := broadcast.NewHub(cfg.BroadcastBuffer)
	publisher := broadcast.Multi{hub}
	publisher = append(publisher, deps.Relays...)

	var imageStore handlers.ImageStore
	var imageRemover services.ImageRemover
	if deps.Images != nil {
		imageStore = deps.Images
		imageRemover = deps.Images
	}

	orderService := services.NewOrderService(deps.OrderRepo, publisher,
		services.WithTransitionPolicy(services.PolicyByName(cfg.OrderStatusPolicy)))
	productService := services.NewProductService(deps.ProductRepo, imageRemover)
	authService := services.NewAuthService(deps.UserRepo, cfg.JWTSecret, cfg.TokenTTL, cfg.AllowAdminSignup)
	userService := services.NewUserService(deps.UserRepo)

	bodyLimit := 4 * 1024 * 1024
	if cfg.MaxUploadBytes > 0 {
		bodyLimit = int(cfg.MaxUploadBytes) + 1024*1024
	}
	app := fiber.New(fiber.Config{BodyLimit: bodyLimit})

	app.Use(recover.New())
	app.Use(logger.New())

	if deps.Images != nil {
		app.Static("/uploads", deps.Images.Dir())
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status":      "healthy",
			"time":        time.Now().Format(time.RFC3339),
			"subscribers": hub.Subscribers(),
		})
	})

	authenticated := middleware.AuthRequired(authService)
	adminOnly := middleware.AdminOnly()

	apiV1 := app.Group("/api/v1")
	handlers.NewAuthHandler(authService).RegisterRoutes(apiV1)
	handlers.NewProductHandler(productService, imageStore).RegisterRoutes(apiV1, authenticated, adminOnly)
	handlers.NewOrderHandler(orderService, productService).RegisterRoutes(apiV1, authenticated, adminOnly)
	handlers.NewUserHandler(userService).RegisterRoutes(apiV1, authenticated, adminOnly)
	handlers.NewRealtimeHandler(hub).RegisterRoutes(app, authenticated, adminOnly)

	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": "Route not found",
		})
	})

	return &App{
		Fiber:    app,
		Hub:      hub,
		Orders:   orderService,
		Products: productService,
		Auth:     authService,
		Users:    userService,
	}
}

// OnClose registers a cleanup function run by Close in reverse order.
func (a *App) OnClose(fn func() error) {
	a.closers = append(a.closers, fn)
}

// Close shuts the HTTP server down and releases every registered resource.
func (a *App) Close() {
	if err := a.Fiber.Shutdown(); err != nil {
		log.Printf("Error during Fiber shutdown: %v", err)
	}
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			log.Printf("Error during shutdown: %v", err)
		}
	}
}

// Bootstrap connects every backing service named in cfg and returns the assembled App.
func Bootstrap(cfg *config.Config) (*App, error) {
	var cleanups []func() error
	fail := func(err error) (*App, error) {
		for i := len(cleanups) - 1; i >= 0; i-- {
			_ = cleanups[i]()
		}
		return nil, err
	}

	db, err := database.Open(cfg.DBDriver, cfg.DatabaseDSN)
	if err != nil {
		return nil, err
	}
	if sqlDB, err := db.DB(); err == nil {
		cleanups = append(cleanups, sqlDB.Close)
	}

	var productRepo repositories.ProductRepository = repositories.NewGORMProductRepository(db)
	if cfg.RedisAddr != "" {
		rdb, err := cache.Connect(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return fail(fmt.Errorf("failed to initialize product cache: %w", err))
		}
		cleanups = append(cleanups, rdb.Close)
		productRepo = cache.NewCachedProductRepository(productRepo, rdb, cfg.ProductCacheTTL)
		log.Printf("Product cache enabled on %s", cfg.RedisAddr)
	}

	images, err := uploads.NewStore(cfg.UploadDir, cfg.MaxUploadBytes)
	if err != nil {
		return fail(err)
	}

	var relays []broadcast.Publisher
	if cfg.RabbitMQURL != "" {
		mqClient, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL, Exchange: cfg.RabbitMQExchange})
		if err != nil {
			return fail(fmt.Errorf("failed to initialize RabbitMQ client: %w", err))
		}
		cleanups = append(cleanups, mqClient.Close)
		relay := broadcast.NewRelay("rabbitmq", broadcast.RabbitSink{Client: mqClient}, cfg.BroadcastBuffer)
		cleanups = append(cleanups, func() error { relay.Close(); return nil })
		relays = append(relays, relay)

		if err := mqClient.ConsumeOrderEvents(rabbitmq.LogOrderEvent); err != nil {
			log.Printf("Failed to start RabbitMQ audit consumer: %v", err)
		}
	}
	if len(cfg.KafkaBrokers) > 0 {
		producer := kafka.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopic)
		cleanups = append(cleanups, producer.Close)
		relay := broadcast.NewRelay("kafka", broadcast.KafkaSink{Producer: producer}, cfg.BroadcastBuffer)
		cleanups = append(cleanups, func() error { relay.Close(); return nil })
		relays = append(relays, relay)
	}

	a := New(cfg, Dependencies{
		OrderRepo:   repositories.NewGORMOrderRepository(db),
		ProductRepo: productRepo,
		UserRepo:    repositories.NewGORMUserRepository(db),
		Images:      images,
		Relays:      relays,
	})
	a.closers = cleanups
	return a, nil
}
