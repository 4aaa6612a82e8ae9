// Package app builds the fiber application and its dependencies from config.
package app

import (
	"errors"
	"fmt"
	"log"
	"time"

	"productapi/internal/config"
	"productapi/internal/database"
	"productapi/internal/docs"
	"productapi/internal/handlers"
	"productapi/internal/metrics"
	"productapi/internal/repositories"
	"productapi/internal/services"
	"productapi/pkg/rabbitmq"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"gorm.io/gorm"
)

// App is the HTTP application together with the resources it owns.
type App struct {
	Fiber *fiber.App

	db       *gorm.DB
	mqClient *rabbitmq.Client
}

// New wires repositories, services, handlers and middleware according to cfg.
func New(cfg config.Config) (*App, error) {
	a := &App{}

	repo, err := a.initRepository(cfg)
	if err != nil {
		return nil, err
	}

	var publisher services.EventPublisher
	if cfg.RabbitMQURL != "" {
		mqClient, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL, Queue: cfg.RabbitMQQueue})
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("failed to initialize RabbitMQ client: %w", err)
		}
		a.mqClient = mqClient
		publisher = mqClient
	} else {
		log.Println("RABBITMQ_URL is not set. Product events will not be published.")
	}

	productService := services.NewProductService(repo, publisher)
	productHandler := handlers.NewProductHandler(productService)
	m := metrics.New()

	app := fiber.New(fiber.Config{
		AppName:      "products-api",
		ErrorHandler: handlers.ErrorHandler,
	})

	// --- Middleware ---
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(corsConfig(cfg.FrontendURL)))
	app.Use(m.Middleware())

	// --- API Routes ---
	products := app.Group(cfg.BasePath)
	if err := productHandler.RegisterRoutes(products); err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to register product routes: %w", err)
	}

	// --- Docs, health and metrics ---
	apiDoc := docs.Build(docs.DefaultInfo, cfg.BasePath, productHandler.Routes())
	app.Get("/docs/openapi.json", func(c *fiber.Ctx) error {
		return c.JSON(apiDoc)
	})
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})
	app.Get("/metrics", m.Handler())

	a.Fiber = app
	return a, nil
}

func (a *App) initRepository(cfg config.Config) (repositories.ProductRepository, error) {
	if cfg.DBDriver == database.DriverMemory {
		log.Println("Using in-memory product repository")
		return repositories.NewMemoryProductRepository(), nil
	}

	db, err := database.Open(cfg.DBDriver, cfg.DatabaseDSN)
	if err != nil {
		return nil, err
	}
	a.db = db
	return repositories.NewGORMProductRepository(db), nil
}

func corsConfig(frontendURL string) cors.Config {
	origins := "*"
	if frontendURL != "" {
		origins = frontendURL
	}
	return cors.Config{
		AllowOrigins: origins,
		AllowMethods: "GET,POST,PUT,PATCH,DELETE",
	}
}

// StartEventLog consumes the product event queue and logs each event.
// It does nothing when events are disabled.
func (a *App) StartEventLog() error {
	if a.mqClient == nil {
		return nil
	}
	return a.mqClient.ConsumeProductEvents(rabbitmq.LogProductEvent)
}

// Close releases the database pool and the RabbitMQ connection.
func (a *App) Close() error {
	var errs []error
	if a.mqClient != nil {
		if err := a.mqClient.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if a.db != nil {
		if err := database.Close(a.db); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
