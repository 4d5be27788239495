package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"asset-catalog/core/config"
	"asset-catalog/core/loader"
	"asset-catalog/core/logger"
	"asset-catalog/core/middleware/auth"
	"asset-catalog/core/middleware/rayid"
	"asset-catalog/feature/catalog"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// startCmd represents the start command
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the asset catalog server",
	Long:  `Starts the HTTP server and the catalog owner loop, and shuts both down on SIGINT or SIGTERM.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig(".")
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}

		logg, err := logger.New(&cfg.Log)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		defer logg.Sync()
		zap.ReplaceGlobals(logg)

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return runServer(ctx, cfg, logg)
	},
}

func init() {
	RootCmd.AddCommand(startCmd)
}

func runServer(ctx context.Context, cfg *config.Config, logg *zap.Logger) error {
	src, closeSrc, err := openSource(ctx, cfg, logg)
	if err != nil {
		return err
	}
	defer closeSrc()

	svc, err := catalog.NewService(cfg.Catalog, src, nil, logg)
	if err != nil {
		return fmt.Errorf("failed to create catalog service: %w", err)
	}
	// No-op once Run has shut the service down.
	defer svc.Close()

	app := newApp(cfg, logg)

	mgr := loader.NewManager(logg)
	mgr.Register(catalog.NewFeature(svc))
	if err := mgr.LoadAll(app); err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return svc.Run(gctx)
	})
	g.Go(func() error {
		logg.Info("Starting server", zap.String("port", cfg.Server.Port))
		if err := app.Listen(cfg.Server.Addr()); err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logg.Info("Shutting down server...")
		return app.ShutdownWithTimeout(cfg.Server.ShutdownTimeout())
	})

	return g.Wait()
}

// newApp creates the Fiber app with the global middleware chain.
func newApp(cfg *config.Config, logg *zap.Logger) *fiber.App {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		JSONEncoder:           json.Marshal,
		JSONDecoder:           json.Unmarshal,
	})

	// RayID must come first so every later log line carries it.
	app.Use(rayid.New())

	app.Use(func(c *fiber.Ctx) error {
		l := logger.WithRayID(logg, c)
		l.Info("Request started",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.String("ip", c.IP()),
		)
		err := c.Next()
		if err != nil {
			l.Error("Request error", zap.Error(err))
		}
		return err
	})

	app.Use(auth.New(auth.Config{ApiKey: cfg.Server.ApiKey}))

	return app
}
