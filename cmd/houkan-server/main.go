package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/houkan/houkan/internal/config"
	"github.com/houkan/houkan/internal/domain/admin"
	"github.com/houkan/houkan/internal/domain/board"
	"github.com/houkan/houkan/internal/domain/identity"
	"github.com/houkan/houkan/internal/domain/pattern"
	"github.com/houkan/houkan/internal/domain/visit"
	"github.com/houkan/houkan/internal/platform/auth"
	"github.com/houkan/houkan/internal/platform/careapi"
	"github.com/houkan/houkan/internal/platform/middleware"
	"github.com/houkan/houkan/internal/platform/telemetry"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "houkan-server",
		Short: "Home-visit scheduling gateway",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(expandCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the scheduling API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

// expandCmd runs one pattern expansion batch from the command line,
// useful for cron-driven generation without going through the API.
func expandCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "expand",
		Short: "Expand recurring visit patterns over a date range",
		RunE: func(cmd *cobra.Command, args []string) error {
			startStr, _ := cmd.Flags().GetString("start")
			endStr, _ := cmd.Flags().GetString("end")
			weekdayInts, _ := cmd.Flags().GetIntSlice("weekdays")
			dryRun, _ := cmd.Flags().GetBool("dry-run")

			start, err := time.Parse(visit.DateLayout, startStr)
			if err != nil {
				return fmt.Errorf("invalid --start: %w", err)
			}
			end, err := time.Parse(visit.DateLayout, endStr)
			if err != nil {
				return fmt.Errorf("invalid --end: %w", err)
			}
			weekdays := make([]time.Weekday, 0, len(weekdayInts))
			for _, d := range weekdayInts {
				if d < 0 || d > 6 {
					return fmt.Errorf("invalid weekday %d: must be 0 (Sunday) through 6 (Saturday)", d)
				}
				weekdays = append(weekdays, time.Weekday(d))
			}

			logger := newLogger()
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			api := newCareAPIClient(cfg, logger)
			metrics := telemetry.New()
			visitRepo := visit.NewHTTPRepository(api)
			patternRepo := pattern.NewHTTPRepository(api)
			patternSvc := pattern.NewService(patternRepo, visitRepo, metrics, logger)

			result, err := patternSvc.Generate(context.Background(), pattern.GenerateInput{
				Start:    start,
				End:      end,
				Weekdays: weekdays,
				DryRun:   dryRun,
			})
			if err != nil {
				return err
			}

			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(result)
		},
	}
	cmd.Flags().String("start", "", "Range start date (YYYY-MM-DD)")
	cmd.Flags().String("end", "", "Range end date (YYYY-MM-DD)")
	cmd.Flags().IntSlice("weekdays", nil, "Weekdays to fill, 0=Sunday through 6=Saturday")
	cmd.Flags().Bool("dry-run", false, "Report what would be created without creating")
	return cmd
}

func newLogger() zerolog.Logger {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if strings.EqualFold(os.Getenv("ENV"), "development") {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}
	return logger
}

func newCareAPIClient(cfg *config.Config, logger zerolog.Logger) *careapi.Client {
	return careapi.NewClient(cfg.CareAPIURL,
		careapi.WithToken(cfg.CareAPIToken),
		careapi.WithLogger(logger),
		careapi.WithBreakerMaxFailures(cfg.BreakerMaxFailures),
		careapi.WithHTTPClient(&http.Client{Timeout: cfg.CareAPITimeout}),
	)
}

func runServer() error {
	// Logger
	logger := newLogger()

	// Config
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid config")
	}

	// Upstream care-record API client
	api := newCareAPIClient(cfg, logger)
	logger.Info().Str("url", cfg.CareAPIURL).Msg("care API client ready")

	// Metrics
	metrics := telemetry.New()

	// Echo server
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Global middleware
	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(metrics.Middleware())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete},
		AllowHeaders: []string{"Authorization", "Content-Type", "X-Request-ID"},
	}))

	// Auth middleware
	switch cfg.ResolvedAuthMode() {
	case "development":
		e.Use(auth.DevAuthMiddleware())
	default:
		e.Use(auth.BearerMiddleware([]byte(cfg.JWTSecret)))
	}

	// Health check
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"version": "0.1.0",
		})
	})

	// Prometheus scrape endpoint
	e.GET("/metrics", metrics.Handler())

	apiV1 := e.Group("/api/v1")

	// Visit domain
	visitRepo := visit.NewHTTPRepository(api)
	visitSvc := visit.NewService(visitRepo, metrics, logger, cfg.DefaultDuration)
	visitHandler := visit.NewHandler(visitSvc)
	visitHandler.RegisterRoutes(apiV1)

	// Pattern domain
	patternRepo := pattern.NewHTTPRepository(api)
	patternSvc := pattern.NewService(patternRepo, visitRepo, metrics, logger)
	patternHandler := pattern.NewHandler(patternSvc)
	patternHandler.RegisterRoutes(apiV1)

	// Identity domain
	identityRepo := identity.NewHTTPRepository(api)
	identitySvc := identity.NewService(identityRepo)
	identityHandler := identity.NewHandler(identitySvc)
	identityHandler.RegisterRoutes(apiV1)

	// Admin domain
	adminRepo := admin.NewHTTPRepository(api)
	adminSvc := admin.NewService(adminRepo, identityRepo)
	adminHandler := admin.NewHandler(adminSvc)
	adminHandler.RegisterRoutes(apiV1)

	// Board view
	boardHandler := board.NewHandler(visitSvc, adminSvc)
	boardHandler.RegisterRoutes(apiV1)

	// Start server
	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Str("env", cfg.Env).Msg("starting server")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("forced shutdown")
		return err
	}
	logger.Info().Msg("server stopped")
	return nil
}
