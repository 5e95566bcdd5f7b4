package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"slices"
	"syscall"
	"time"

	"class-records/attendance"
	"class-records/common"
	"class-records/exports"
	"class-records/grades"
	"class-records/imports"
	"class-records/records"
	"class-records/web"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// App holds everything the server needs after startup.
type App struct {
	Config  *common.Config
	DB      *gorm.DB
	Engine  *gin.Engine
	Imports *imports.Handler
	Mirror  *attendance.RedisMirror
}

// Migrate creates every table the service uses.
func Migrate(db *gorm.DB) error {
	if err := records.AutoMigrate(db); err != nil {
		return fmt.Errorf("migrate records: %w", err)
	}
	if err := attendance.AutoMigrate(db); err != nil {
		return fmt.Errorf("migrate attendance: %w", err)
	}
	if err := common.AutoMigrateJobs(db); err != nil {
		return fmt.Errorf("migrate jobs: %w", err)
	}
	return nil
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods: []string{"GET", "POST", "DELETE"},
		AllowHeaders: []string{"Origin", "Content-Type", "Idempotency-Key"},
		MaxAge:       12 * time.Hour,
	}
	if len(origins) == 0 || slices.Contains(origins, "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}

// NewApp opens the database, loads the seed roster and builds the router.
func NewApp(ctx context.Context, cfg *common.Config) (*App, error) {
	db, err := common.Init(cfg.Database.DSN)
	if err != nil {
		return nil, err
	}
	if err := Migrate(db); err != nil {
		return nil, err
	}

	store := records.NewStore(db)
	if cfg.Records.Seed {
		n, err := records.LoadSeed(ctx, store)
		if err != nil {
			return nil, fmt.Errorf("load seed roster: %w", err)
		}
		common.L().Info("seed roster loaded", zap.Int("records", n))
	}

	app := &App{Config: cfg, DB: db}
	opts := []attendance.Option{attendance.WithSigner(attendance.NewSigner(cfg.Attendance.ReceiptSecret))}
	if cfg.Attendance.RedisAddr != "" {
		app.Mirror = attendance.NewRedisMirror(cfg.Attendance.RedisAddr, cfg.Attendance.RedisKey)
		if err := app.Mirror.Ping(ctx); err != nil {
			common.L().Warn("attendance mirror unavailable", zap.String("addr", cfg.Attendance.RedisAddr), zap.Error(err))
		}
		opts = append(opts, attendance.WithSink(app.Mirror))
	}
	tracker, err := attendance.NewTracker(db, cfg.Attendance.BcryptCost, opts...)
	if err != nil {
		return nil, err
	}

	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}
	r := gin.New()
	r.RedirectTrailingSlash = false
	r.Use(gin.Recovery(), common.RequestLogger(), cors.New(corsConfig(cfg.Server.CORSOrigins)), common.MetricsMiddleware(db))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	app.Imports = imports.NewHandler(db, store, cfg.Records.UploadsDir)

	v1 := r.Group("/api/v1")
	records.NewHandler(store).RegisterRoutes(v1.Group("/records"))
	attendance.NewHandler(tracker).RegisterRoutes(v1)
	app.Imports.RegisterRoutes(v1.Group("/imports"))
	exports.NewHandler(store, tracker, cfg.Records.Title).RegisterRoutes(v1.Group("/exports"))
	grades.RegisterRoutes(v1.Group("/grades"))

	pages := &web.Pages{Store: store, Tracker: tracker, Title: cfg.Records.Title}
	if err := pages.Mount(r); err != nil {
		return nil, fmt.Errorf("load templates: %w", err)
	}

	app.Engine = r
	return app, nil
}

// Close waits for running imports and releases connections.
func (a *App) Close() {
	a.Imports.Wait()
	if a.Mirror != nil {
		if err := a.Mirror.Close(); err != nil {
			common.L().Warn("closing redis", zap.Error(err))
		}
	}
	if sqlDB, err := a.DB.DB(); err == nil {
		sqlDB.Close()
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := common.LoadConfig(configPath)
	if err != nil {
		return err
	}
	logger, err := common.InitLogger(cfg.Log.Level, cfg.Log.Development)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := NewApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer app.Close()

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           app.Engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
	case <-ctx.Done():
		logger.Info("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
