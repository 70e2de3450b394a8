package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/bannerworks/alertbanner/internal/api"
	"github.com/bannerworks/alertbanner/internal/app"
	"github.com/bannerworks/alertbanner/internal/app/maintenance"
	iauth "github.com/bannerworks/alertbanner/internal/auth"
	"github.com/bannerworks/alertbanner/internal/database"
	"github.com/bannerworks/alertbanner/internal/realtime"
	"github.com/bannerworks/alertbanner/internal/services"
	"github.com/bannerworks/alertbanner/pkg/logger"
	"github.com/bannerworks/alertbanner/pkg/mail"
)

const shutdownTimeout = 15 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	if err := run(ctx, os.Args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("alertbanner-server", flag.ContinueOnError)
	fs.SetOutput(os.Stdout)

	var configPath string
	fs.StringVar(&configPath, "config", "", "Path to configuration directory or file")

	if err := fs.Parse(args); err != nil {
		return err
	}

	// Local development convenience; absence of a .env file is not an error.
	_ = godotenv.Load()

	cfg, err := loadApplicationConfig(configPath)
	if err != nil {
		return err
	}

	if err := app.ConfigureLogging(cfg.Server.LogLevel); err != nil {
		return fmt.Errorf("configure logging: %w", err)
	}
	defer logger.Sync() // best effort

	log := logger.WithModule("bootstrap")

	cfg.Auth.JWT.Secret = strings.TrimSpace(cfg.Auth.JWT.Secret)
	if cfg.Auth.JWT.Secret == "" {
		return errors.New("auth.jwt.secret must be configured")
	}

	db, err := initialiseDatabase(cfg)
	if err != nil {
		return err
	}
	defer closeDatabase(db, log)

	jwtService, err := iauth.NewJWTService(cfg.Auth.JWTServiceConfig())
	if err != nil {
		return fmt.Errorf("initialise jwt service: %w", err)
	}

	mailer, err := mail.NewSMTPMailer(cfg.Email.SMTPSettings())
	if err != nil {
		return fmt.Errorf("initialise mailer: %w", err)
	}

	var hub *realtime.Hub
	if cfg.Features.Realtime.Enabled {
		hub = realtime.NewHub()
	}

	var recipients []string
	if cfg.Features.Notifications.Enabled {
		recipients = cfg.Features.Notifications.Recipients
	}
	notifier := services.NewNotifierService(mailer, hub, recipients)

	var cleaner *maintenance.Cleaner
	if cfg.Maintenance.Enabled {
		cleaner = maintenance.NewCleaner(db,
			maintenance.WithArchiveSchedule(cfg.Maintenance.ArchiveSchedule),
			maintenance.WithDraftSchedule(cfg.Maintenance.DraftSchedule),
			maintenance.WithDraftRetentionDays(cfg.Maintenance.DraftRetentionDays),
		)
		if err := cleaner.Start(); err != nil {
			return fmt.Errorf("start maintenance jobs: %w", err)
		}
		defer func() {
			stopCtx := cleaner.Stop()
			if err := cleaner.RunOnce(stopCtx); err != nil {
				log.Warn("maintenance shutdown cleanup failed", zap.Error(err))
			}
		}()
	}

	router, err := api.NewRouter(db, jwtService, cfg, hub, notifier)
	if err != nil {
		return fmt.Errorf("build api router: %w", err)
	}

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info("server listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received")
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("graceful shutdown: %w", err)
	}

	if err, ok := <-serverErr; ok && err != nil {
		return fmt.Errorf("server error: %w", err)
	}

	log.Info("server stopped gracefully")
	return nil
}

func loadApplicationConfig(path string) (*app.Config, error) {
	switch {
	case strings.TrimSpace(path) == "":
		return app.LoadConfig()
	default:
		info, err := os.Stat(path)
		if err == nil {
			if info.IsDir() {
				return app.LoadConfig(path)
			}
			return app.LoadConfig(filepath.Dir(path))
		}
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("config path %q does not exist", path)
		}
		return nil, fmt.Errorf("stat config path: %w", err)
	}
}

func initialiseDatabase(cfg *app.Config) (*gorm.DB, error) {
	dbCfg := convertDatabaseConfig(cfg)
	db, err := database.Open(dbCfg)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := database.AutoMigrateAndSeed(db); err != nil {
		return nil, fmt.Errorf("auto-migrate database: %w", err)
	}

	log := logger.WithModule("database")
	log.Info("database connected", zap.String("driver", dbCfg.Driver))

	return db, nil
}

func convertDatabaseConfig(cfg *app.Config) database.Config {
	dbCfg := database.Config{
		Driver: strings.ToLower(strings.TrimSpace(cfg.Database.Driver)),
		Path:   strings.TrimSpace(cfg.Database.Path),
		DSN:    strings.TrimSpace(cfg.Database.DSN),
	}

	switch dbCfg.Driver {
	case "", "sqlite":
		dbCfg.Driver = "sqlite"
	case "postgres", "postgresql":
		dbCfg.Driver = "postgres"
		dbCfg.Host = strings.TrimSpace(cfg.Database.Postgres.Host)
		dbCfg.Port = cfg.Database.Postgres.Port
		dbCfg.Name = strings.TrimSpace(cfg.Database.Postgres.Database)
		dbCfg.User = strings.TrimSpace(cfg.Database.Postgres.Username)
		dbCfg.Password = cfg.Database.Postgres.Password
	case "mysql":
		dbCfg.Host = strings.TrimSpace(cfg.Database.MySQL.Host)
		dbCfg.Port = cfg.Database.MySQL.Port
		dbCfg.Name = strings.TrimSpace(cfg.Database.MySQL.Database)
		dbCfg.User = strings.TrimSpace(cfg.Database.MySQL.Username)
		dbCfg.Password = cfg.Database.MySQL.Password
	}

	return dbCfg
}

func closeDatabase(db *gorm.DB, log *zap.Logger) {
	if db == nil {
		return
	}
	sqlDB, err := db.DB()
	if err != nil {
		log.Warn("database close failed", zap.Error(err))
		return
	}
	if err := sqlDB.Close(); err != nil {
		log.Warn("database close failed", zap.Error(err))
	}
}
