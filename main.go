package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lendora/backoffice/config"
	mysqldb "github.com/lendora/backoffice/infra/mysql"
	redisdb "github.com/lendora/backoffice/infra/redis"
	"github.com/lendora/backoffice/internal/model"
	"github.com/lendora/backoffice/pkg/password"
	ratelimiter "github.com/lendora/backoffice/pkg/rate-limiter"
	"github.com/lendora/backoffice/pkg/telemetry"
	"github.com/lendora/backoffice/presenter"
	"github.com/lendora/backoffice/router"

	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func main() {
	slog.Info("Starting application setup...")

	ctx := context.Background()

	if err := godotenv.Load(); err != nil {
		slog.Error("No .env file found, using system environment variables", "error", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		panic(fmt.Sprintf("Failed to load configuration: %v", err))
	}

	tel, err := telemetry.New(ctx, cfg)
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize monitoring: %v", err))
	}

	db, err := mysqldb.InitializeDatabase()
	if err != nil {
		slog.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}

	defer func() {
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancelShutdown()

		zap.L().Info("Closing MySQL Connection...")
		if err := mysqldb.Close(db, shutdownCtx); err != nil {
			zap.L().Error("Error disconnecting from MySQL", zap.Error(err))
		} else {
			zap.L().Info("Disconnected from MySQL.")
		}

		zap.L().Info("Shutting down monitoring...")
		if err := tel.Shutdown(shutdownCtx); err != nil {
			zap.L().Error("Error during monitoring shutdown", zap.Error(err))
		} else {
			zap.L().Info("Monitoring shutdown complete.")
		}
	}()

	if err := model.AutoMigrate(db); err != nil {
		slog.Error("Failed to migrate database", "error", err)
		os.Exit(1)
	}
	slog.Info("Database migration completed!")

	SeedTenant(db)
	SeedAdmin(db)

	if err := mysqldb.Ping(db, ctx); err != nil {
		slog.Error("Database ping failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Database connection successful!")

	stats := mysqldb.GetStats(db)
	slog.Info("Database stats:", "stats", stats)

	redisClient, err := redisdb.NewRedis(cfg)
	if err != nil {
		slog.Error("Failed to connect to Redis", "error", err)
		os.Exit(1)
	}
	go redisdb.WatchConnectionRedis(&redisClient, cfg)

	limiter := ratelimiter.NewRateLimiter(redisClient, 20, 40, 5*time.Minute)
	store := session.New(session.Config{
		Expiration:     24 * time.Hour,
		CookieHTTPOnly: true,
		CookieSameSite: "Strict",
	})

	presenter := presenter.NewPresenter(db, cfg, tel)
	router := router.NewRouter(presenter, db, tel, cfg, limiter, store)

	// Close out matured loans in the background for as long as the
	// process lives.
	sweepCtx, stopSweep := context.WithCancel(ctx)
	defer stopSweep()
	go func() {
		ticker := time.NewTicker(cfg.SWEEP_INTERVAL)
		defer ticker.Stop()

		for {
			select {
			case <-sweepCtx.Done():
				return
			case <-ticker.C:
				closed, err := presenter.LoanService.SweepMatured(sweepCtx)
				if err != nil {
					zap.L().Error("Matured loan sweep failed", zap.Error(err))
					continue
				}
				if closed > 0 {
					zap.L().Info("Matured loan sweep finished", zap.Int("closed", closed))
				}
			}
		}
	}()

	addr := ":" + cfg.SERVER_PORT

	listenErr := make(chan error, 1)

	go func() {
		zap.L().Info("Server starting", zap.String("address", addr))
		if err := router.Listen(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			listenErr <- err
		} else {
			listenErr <- nil
		}
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-shutdown:
		zap.L().Info("Received shutdown signal", zap.String("signal", sig.String()))
	case err := <-listenErr:
		if err != nil {
			zap.L().Error("Server listen error", zap.Error(err))
			os.Exit(1)
		}
	}

	zap.L().Info("Starting graceful shutdown...")
	stopSweep()
	if err := router.ShutdownWithTimeout(cfg.SHUTDOWN_TIMEOUT); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			zap.L().Warn("Server shutdown timed out", zap.Duration("timeout", cfg.SHUTDOWN_TIMEOUT))
		} else {
			zap.L().Error("Server shutdown error", zap.Error(err))
		}
	} else {
		zap.L().Info("Server gracefully stopped.")
	}

	zap.L().Info("Application shutdown complete.")
}

const (
	DefaultTenantID  uint64 = 1
	DefaultAdminID   uint64 = 1
	DefaultAdminMail string = "admin@lendora.io"
)

func SeedTenant(db *gorm.DB) {
	slog.Info("Checking for default tenant...")

	var tenant model.Tenant
	err := db.First(&tenant, DefaultTenantID).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		slog.Info("Default tenant not found, creating one...")

		newTenant := model.Tenant{
			ID:   DefaultTenantID,
			Name: "Lendora",
			Slug: "lendora",
		}

		if err := db.Create(&newTenant).Error; err != nil {
			slog.Error("Failed to seed default tenant", "error", err)
			os.Exit(1)
		}
		slog.Info("Default tenant created successfully.")
	} else if err != nil {
		slog.Error("Error checking for default tenant", "error", err)
		os.Exit(1)
	} else {
		slog.Info("Default tenant already exists.")
	}
}

func SeedAdmin(db *gorm.DB) {
	slog.Info("Checking for admin user...")

	var adminUser model.StaffMember
	err := db.First(&adminUser, DefaultAdminID).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		slog.Info("Admin user not found, creating one...")

		initialPassword := os.Getenv("ADMIN_INITIAL_PASSWORD")
		if initialPassword == "" {
			slog.Error("ADMIN_INITIAL_PASSWORD must be set to seed the admin user")
			os.Exit(1)
		}

		hashed, err := password.HashPassword(initialPassword)
		if err != nil {
			slog.Error("Failed to hash admin password", "error", err)
			os.Exit(1)
		}

		newAdmin := model.StaffMember{
			ID:            DefaultAdminID,
			TenantID:      DefaultTenantID,
			Email:         DefaultAdminMail,
			Password:      hashed,
			FullName:      "System Administrator",
			Role:          model.RoleAdmin,
			Active:        true,
			EmailVerified: true,
		}

		if err := db.Create(&newAdmin).Error; err != nil {
			slog.Error("Failed to seed admin user", "error", err)
			os.Exit(1)
		}
		slog.Info("Admin user created successfully.")
	} else if err != nil {
		slog.Error("Error checking for admin user", "error", err)
		os.Exit(1)
	} else {
		slog.Info("Admin user already exists.")
	}
}
