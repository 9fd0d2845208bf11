package cmd

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"portfolio-api/core/loader"
	"portfolio-api/core/logger"
	"portfolio-api/core/mail"
	"portfolio-api/core/middleware/auth"
	"portfolio-api/core/middleware/rayid"
	"portfolio-api/core/reconcile"
	"portfolio-api/core/response"
	"portfolio-api/feature/admin"
	"portfolio-api/feature/chatbot"
	"portfolio-api/feature/contact"
	"portfolio-api/feature/flipbooks"
	"portfolio-api/feature/integrity"
	"portfolio-api/feature/projects"
	"portfolio-api/feature/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/swagger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	_ "portfolio-api/docs/swagger"
)

// @title Portfolio API
// @version 1.0
// @description API for a portfolio site: projects, services, flipbooks, chatbot and contact form.
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

// startCmd represents the start command
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the portfolio API server",
	Long:  `Starts the HTTP server and initializes all enabled features.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		// 1. Configuration, logger, database and storage
		d, err := loadDeps(ctx, true)
		if err != nil {
			log.Fatalf("Failed to start: %v", err)
		}
		logg := d.logger
		defer logg.Sync()
		zap.ReplaceGlobals(logg)

		if d.cfg.Database.AutoMigrate {
			if err := migrate(ctx, d); err != nil {
				logg.Fatal("Migration failed", zap.Error(err))
			}
			logg.Info("Database migrated")
		}

		// 2. Services shared by features
		authSvc, err := newAuth(d)
		if err != nil {
			logg.Fatal("Failed to initialize auth", zap.Error(err))
		}
		images := reconcile.New(d.store, logg, d.cfg.Reconcile)
		mailer := mail.New(d.cfg.Mail, logg)
		adminOnly := auth.New(auth.Config{Verifier: authSvc})

		// 3. Fiber app
		app := fiber.New(fiber.Config{
			DisableStartupMessage: true,
			ErrorHandler:          response.ErrorHandler,
			BodyLimit:             d.cfg.Server.BodyLimit(),
		})

		// 4. Feature loader
		mgr := loader.NewManager(logg)
		mgr.Register(admin.NewFeature(authSvc, adminOnly, logg))
		mgr.Register(projects.NewFeature(d.db, images, adminOnly, logg))
		mgr.Register(services.NewFeature(d.db, images, adminOnly, logg))
		mgr.Register(flipbooks.NewFeature(d.db, images, adminOnly, logg))
		mgr.Register(chatbot.NewFeature(d.db, d.cfg.Cache, adminOnly, logg))
		mgr.Register(contact.NewFeature(d.db, mailer, adminOnly, logg))
		mgr.Register(integrity.NewFeature(d.store, d.db, allModels(), adminOnly, logg))

		// Middleware Registration
		app.Use(recover.New())
		app.Use(cors.New(cors.Config{
			AllowOrigins: d.cfg.Server.AllowedOrigins(),
			AllowHeaders: "Origin, Content-Type, Accept, Authorization, " + rayid.Header,
		}))

		// RayID must come before logging to trace everything.
		app.Use(rayid.New())

		app.Use(func(c *fiber.Ctx) error {
			l := logger.WithRayID(logg, c)
			start := time.Now()
			err := c.Next()
			if err != nil {
				l.Error("Request error", zap.Error(err))
			}
			fields := append(logger.RequestFields(c), zap.Duration("duration", time.Since(start)))
			l.Info("Request completed", fields...)
			return err
		})

		// Storage and database calls made by handlers use the user context.
		timeout := time.Duration(d.cfg.Server.RequestTimeoutSeconds) * time.Second
		app.Use(func(c *fiber.Ctx) error {
			if timeout <= 0 {
				return c.Next()
			}
			reqCtx, cancel := context.WithTimeout(c.UserContext(), timeout)
			defer cancel()
			c.SetUserContext(reqCtx)
			return c.Next()
		})

		app.Get("/swagger/*", swagger.HandlerDefault)
		app.Get("/health", func(c *fiber.Ctx) error {
			return response.OK(c, "ok", nil)
		})

		if err := mgr.LoadAll(app.Group("/api")); err != nil {
			logg.Fatal("Failed to load features", zap.Error(err))
		}

		// Start Server
		go func() {
			logg.Info("Starting server", zap.String("port", d.cfg.Server.Port))
			if err := app.Listen(":" + d.cfg.Server.Port); err != nil {
				logg.Fatal("Server failed to start", zap.Error(err))
			}
		}()

		// Graceful Shutdown
		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt, syscall.SIGTERM)
		<-c
		logg.Info("Shutting down server...")
		_ = app.ShutdownWithTimeout(10 * time.Second)
	},
}

func init() {
	RootCmd.AddCommand(startCmd)
}
