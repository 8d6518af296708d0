package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/go-extras/cobraflags"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/dashlite/dashlite/internal/config"
	"github.com/dashlite/dashlite/internal/handlers"
	"github.com/dashlite/dashlite/internal/server"
	"github.com/dashlite/dashlite/internal/services"
	"github.com/dashlite/dashlite/internal/store"
	"github.com/dashlite/dashlite/internal/store/migrations"
	"github.com/dashlite/dashlite/pkg/scheduler"
)

const envPrefix = "DASHLITE"

// NewRunCommand wires the run subcommand's flags into cfg. Every flag can
// also be set through a DASHLITE_ environment variable, flags win.
func NewRunCommand(cfg *config.Configuration) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Start the dashlite server",
		PreRunE: func(cmd *cobra.Command, args []string) error {
			viper.AutomaticEnv()
			viper.SetEnvPrefix(envPrefix)
			viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
			cobraflags.PresetRequiredFlags(envPrefix, make(map[*pflag.Flag]bool), cmd)

			return validateConfiguration(cfg)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), cfg)
		},
	}

	flags := cmd.Flags()
	flags.IntVar(&cfg.Server.HTTPPort, "server-http-port", cfg.Server.HTTPPort,
		"port the HTTP server listens on")
	flags.StringVar(&cfg.Server.StaticsFolder, "server-statics-folder", cfg.Server.StaticsFolder,
		"folder holding the viewer statics, required in prod mode")
	flags.StringVar(&cfg.Server.ServerMode, "server-mode", cfg.Server.ServerMode,
		"server mode, dev or prod")
	flags.StringVar(&cfg.Database.Path, "database-path", cfg.Database.Path,
		"path of the DuckDB database file")
	flags.IntVar(&cfg.Render.NumWorkers, "num-workers", cfg.Render.NumWorkers,
		"size of the chart execution worker pool")
	flags.IntVar(&cfg.Render.MaxRowsPerChart, "max-rows-per-chart", cfg.Render.MaxRowsPerChart,
		"row cap per rendered chart")
	flags.DurationVar(&cfg.Render.DefaultTimeout, "default-timeout", cfg.Render.DefaultTimeout,
		"execution timeout per chart")

	return cmd
}

func validateConfiguration(cfg *config.Configuration) error {
	if cfg.Server.HTTPPort < 1 || cfg.Server.HTTPPort > 65535 {
		return fmt.Errorf("invalid http-port: %d", cfg.Server.HTTPPort)
	}

	switch cfg.Server.ServerMode {
	case server.DevServer:
	case server.ProductionServer:
		if cfg.Server.StaticsFolder == "" {
			return fmt.Errorf("statics folder must be set in prod mode")
		}
	default:
		return fmt.Errorf("invalid server mode: %s", cfg.Server.ServerMode)
	}

	if cfg.Database.Path == "" {
		return fmt.Errorf("database-path cannot be empty")
	}
	if cfg.Render.NumWorkers < 1 {
		return fmt.Errorf("invalid num-workers: %d", cfg.Render.NumWorkers)
	}
	if cfg.Render.MaxRowsPerChart < 1 {
		return fmt.Errorf("invalid max-rows-per-chart: %d", cfg.Render.MaxRowsPerChart)
	}
	if cfg.Render.DefaultTimeout <= 0 {
		return fmt.Errorf("invalid default-timeout: %s", cfg.Render.DefaultTimeout)
	}
	return nil
}

func runServer(ctx context.Context, cfg *config.Configuration) error {
	logger, err := newLogger(cfg.Server.ServerMode)
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()
	zap.ReplaceGlobals(logger)

	db, err := store.NewDB(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	if err := migrations.Run(ctx, db); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	st := store.NewStore(db)
	sched := scheduler.NewScheduler(cfg.Render.NumWorkers)
	defer sched.Close()

	composer := services.NewComposerService(st)
	executor := services.NewExecutorService(st, composer, sched,
		cfg.Render.MaxRowsPerChart, cfg.Render.DefaultTimeout)

	handler := handlers.New(
		services.NewDashboardService(st),
		services.NewChartService(st),
		services.NewSelectorService(st),
		services.NewMappingService(st),
		services.NewOptionService(st),
		composer,
		executor,
		services.NewExportService(executor),
	)

	srv, err := server.NewServer(cfg, handler.RegisterRoutes)
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}

	if cfg.Server.ServerMode == server.DevServer {
		color.Cyan("dashlite listening on http://localhost:%d", cfg.Server.HTTPPort)
	}
	zap.S().Infow("starting server",
		"port", cfg.Server.HTTPPort,
		"mode", cfg.Server.ServerMode,
		"database", cfg.Database.Path,
		"workers", cfg.Render.NumWorkers,
	)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start(ctx)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	zap.S().Infow("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	srv.Stop(shutdownCtx)
	return nil
}

func newLogger(mode string) (*zap.Logger, error) {
	if mode == server.ProductionServer {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
