package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"

	"rentdesk_backend/internal/controller"
	"rentdesk_backend/internal/middleware"
	"rentdesk_backend/internal/model"
	"rentdesk_backend/internal/refdata"
	"rentdesk_backend/internal/repository"
	"rentdesk_backend/internal/service"
	"rentdesk_backend/pkg/config"
	"rentdesk_backend/pkg/cron"
	"rentdesk_backend/pkg/database"
	"rentdesk_backend/pkg/email"
	"rentdesk_backend/pkg/logger"
	"rentdesk_backend/pkg/metrics"
	"rentdesk_backend/pkg/seed"
	"rentdesk_backend/pkg/sms"
	"rentdesk_backend/pkg/utils/apperror"
	"rentdesk_backend/pkg/utils/cloudflare"
	"rentdesk_backend/pkg/utils/jwt"
)

func setupRoutes(app *fiber.App, auth *service.AuthService) {
	app.Get("/health", controller.Health)
	app.Get("/metrics", metrics.Handler())

	api := app.Group("/api")
	api.Get("/health", controller.Health)

	// Auth Routes
	api.Post("/auth/login", controller.Login)

	// Protected Routes
	protected := api.Group("/", middleware.AuthMiddleware(auth))
	protected.Get("/me", controller.GetMe)
	protected.Get("/imports", controller.ListImports)

	// Reference data
	protected.Get("/reference-data", controller.GetReferenceData)
	protected.Get("/rental-unit-types", controller.ListRentalUnitTypes)
	protected.Post("/rental-unit-types", middleware.RequireRole(model.RoleAdmin), controller.CreateRentalUnitType)
	protected.Put("/rental-unit-types/:id", middleware.RequireRole(model.RoleAdmin), controller.UpdateRentalUnitType)

	// Property Routes
	properties := protected.Group("/properties")
	properties.Get("/import/template", controller.GetPropertyTemplate)
	properties.Post("/import/preview", controller.PreviewPropertyImport)
	properties.Post("/import", controller.ImportProperties)
	properties.Get("/export", controller.ExportProperties)
	properties.Post("/bulk", controller.BulkCreateProperties)
	properties.Get("/", controller.ListProperties)
	properties.Post("/", controller.CreateProperty)
	properties.Get("/:id", controller.GetProperty)
	properties.Put("/:id", controller.UpdateProperty)
	properties.Delete("/:id", controller.DeleteProperty)
	properties.Get("/:id/capacity", controller.GetPropertyCapacity)
	properties.Get("/:id/rental-units", controller.ListPropertyRentalUnits)
	properties.Post("/:id/photos", controller.UploadPropertyPhoto)

	// Rental unit routes
	units := protected.Group("/rental-units")
	units.Get("/import/template", controller.GetRentalUnitTemplate)
	units.Post("/import/preview", controller.PreviewRentalUnitImport)
	units.Post("/import", controller.ImportRentalUnits)
	units.Post("/bulk", controller.BulkCreateRentalUnits)
	units.Post("/assets/bulk-assign", controller.BulkAssignRentalUnitAssets)
	units.Get("/", controller.ListRentalUnits)
	units.Post("/", controller.CreateRentalUnit)
	units.Get("/:id", controller.GetRentalUnit)
	units.Put("/:id", controller.UpdateRentalUnit)
	units.Delete("/:id", controller.DeleteRentalUnit)
	units.Patch("/:id/status", controller.UpdateRentalUnitStatus)
	units.Get("/:id/assets", controller.ListRentalUnitAssets)
	units.Post("/:id/assets", controller.AddRentalUnitAssets)
	units.Patch("/:id/assets/:placement_id", controller.UpdateRentalUnitAsset)
	units.Delete("/:id/assets/:placement_id", controller.RemoveRentalUnitAsset)

	// Asset routes
	assets := protected.Group("/assets")
	assets.Get("/import/template", controller.GetAssetTemplate)
	assets.Post("/import/preview", controller.PreviewAssetImport)
	assets.Post("/import/file", controller.ImportAssetFile)
	assets.Post("/import", controller.ImportAssets)
	assets.Get("/export", controller.ExportAssets)
	assets.Get("/", controller.ListAssets)
	assets.Post("/", controller.CreateAsset)
	assets.Get("/:id", controller.GetAsset)
	assets.Put("/:id", controller.UpdateAsset)
	assets.Delete("/:id", controller.DeleteAsset)
	assets.Patch("/:id/status", controller.UpdateAssetStatus)
}

func openStore(cfg *config.Config) (repository.Store, error) {
	if cfg.Server.Store == "memory" {
		logger.Get().Warn("Using the in-memory store; data is lost on restart")
		return repository.NewMemoryStore(), nil
	}

	db, err := database.InitDB(cfg.Database)
	if err != nil {
		return nil, err
	}
	if err := database.MigrateDatabase(db, database.Models()...); err != nil {
		logger.Get().Warn("Migration warning", zap.Error(err))
	}
	return repository.NewGormStore(db), nil
}

func newApp(cfg *config.Config) *fiber.App {
	app := fiber.New(fiber.Config{
		BodyLimit: 12 * 1024 * 1024,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if appErr, ok := apperror.As(err); ok {
				return c.Status(appErr.StatusCode).JSON(fiber.Map{"message": appErr.Message})
			}
			code := fiber.StatusInternalServerError
			if fe, ok := err.(*fiber.Error); ok {
				code = fe.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"message": "Request failed",
				"error":   err.Error(),
			})
		},
	})

	app.Use(recover.New())
	app.Use(middleware.RequestLogger())
	app.Use(metrics.NewHTTPMetrics(cfg.Server.ServiceName).Middleware())
	app.Use(cors.New(cors.Config{AllowOrigins: cfg.Server.CORSOrigins}))
	return app
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Could not load configuration:", err)
	}

	if err := logger.Init(logger.Config{
		Level:       cfg.Server.LogLevel,
		Environment: cfg.Server.Environment,
		ServiceName: cfg.Server.ServiceName,
	}); err != nil {
		log.Fatal("Could not initialize logger:", err)
	}
	defer logger.Sync()
	zlog := logger.Get()

	ctx := context.Background()
	jwt.Init(cfg.JWT.Secret, cfg.JWT.TTL)
	metrics.Register()

	store, err := openStore(cfg)
	if err != nil {
		zlog.Fatal("Could not open store", zap.Error(err))
	}

	if cfg.Seed.OnStart {
		if err := seed.Run(ctx, store, cfg.Seed); err != nil {
			zlog.Error("Seeding failed", zap.Error(err))
		}
	}

	// Object storage is optional; without it photos are refused and imports
	// are not archived.
	var photos, archive service.ObjectStorage
	if cfg.Storage.Enabled() {
		r2, err := cloudflare.NewR2Storage(ctx, cfg.Storage)
		if err != nil {
			zlog.Fatal("Could not initialize object storage", zap.Error(err))
		}
		photos = r2
		if cfg.Storage.ArchiveImports {
			archive = r2
		}
	}

	notifier := &service.ImportNotifier{SMS: sms.New(cfg.Notify)}
	if cfg.Notify.SendGridAPIKey != "" {
		if err := email.InitEmailService(cfg.Notify); err != nil {
			zlog.Fatal("Could not initialize email service", zap.Error(err))
		}
		notifier.Email = email.GlobalEmailService
		zlog.Info("Email service initialized", zap.Bool("sandbox", cfg.Notify.SendGridSandbox))
	}

	ref := refdata.New(store)
	audit := service.NewImportAudit(store, archive, notifier)
	authService := service.NewAuthService(store)

	controller.InitAuthController(authService)
	controller.InitReferenceController(ref, service.NewUnitTypeService(store))
	controller.InitPropertyController(service.NewPropertyService(store, ref, audit, photos))
	controller.InitRentalUnitController(service.NewRentalUnitService(store, ref, audit))
	controller.InitAssetController(service.NewAssetService(store, ref, audit))
	controller.InitImportController(audit)

	scheduler, err := cron.Init(cfg.Cron, store, email.GlobalEmailService)
	if err != nil {
		zlog.Fatal("Could not schedule cron jobs", zap.Error(err))
	}

	app := newApp(cfg)
	setupRoutes(app, authService)

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		zlog.Info("Shutting down")
		<-scheduler.Stop().Done()
		_ = app.Shutdown()
	}()

	zlog.Info("Server is running", zap.String("port", cfg.Server.Port), zap.String("store", cfg.Server.Store))
	if err := app.Listen(":" + cfg.Server.Port); err != nil {
		zlog.Fatal("Server stopped", zap.Error(err))
	}
}
