package router

import (
	"errors"
	"time"

	"github.com/lendora/backoffice/config"
	mysqldb "github.com/lendora/backoffice/infra/mysql"
	"github.com/lendora/backoffice/internal/domain"
	"github.com/lendora/backoffice/middleware"
	ratelimiter "github.com/lendora/backoffice/pkg/rate-limiter"
	"github.com/lendora/backoffice/pkg/telemetry"
	"github.com/lendora/backoffice/presenter"

	"github.com/gofiber/contrib/otelfiber/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/session"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func NewRouter(
	presenter presenter.Presenter,
	db *gorm.DB,
	tel *telemetry.OpenTelemetry,
	cfg *config.Config,
	limiter *ratelimiter.RateLimiter,
	store *session.Store,
) *fiber.App {

	jwtAuth := middleware.NewJWTAuthMiddleware(cfg.JWT_SECRET_KEY)
	customCSRF := middleware.NewCustomCSRFMiddleware(store)
	requireAdmin := middleware.RequireRole(domain.AdminRole)
	requireReviewer := middleware.RequireRole(domain.AdminRole, domain.CreditOfficerRole)
	requireStaff := middleware.RequireRole(domain.AdminRole, domain.LoanAgentRole, domain.CreditOfficerRole)

	app := fiber.New(fiber.Config{
		BodyLimit:    10 * 1024 * 1024,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
		ErrorHandler: ErrorCustomHandler(tel.Log),
	})

	app.Use(recover.New(recover.Config{EnableStackTrace: true}))
	app.Use(helmet.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "http://localhost:5000",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-CSRF-Token",
		AllowMethods: "GET, POST, PUT, DELETE, PATCH, OPTIONS",
	}))

	app.Use(logger.New(logger.Config{
		Format:     "[${time}] ${ip} ${status} - ${latency} ${method} ${path}\n",
		TimeFormat: "2006-01-02 15:04:05",
	}))

	app.Use(otelfiber.Middleware(
		otelfiber.WithTracerProvider(tel.TracerProvider),
		otelfiber.WithPropagators(otel.GetTextMapPropagator()),
	))

	if cfg.REQUESTS_METRIC {
		zap.L().Info("Enabling HTTP request metrics middleware")
		otelMw := middleware.NewOtelMiddleware()
		app.Use(otelMw.Handle())
	} else {
		zap.L().Info("HTTP request metrics middleware is disabled")
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		if err := mysqldb.Ping(db, c.Context()); err != nil {
			zap.L().Error("Health check failed: database ping error", zap.Error(err))
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"status": "unhealthy",
				"error":  "database connection failed",
			})
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status":      "healthy",
			"service":     cfg.SERVICE_NAME,
			"version":     cfg.SERVICE_VERSION,
			"environment": cfg.ENVIRONMENT,
			"timestamp":   time.Now().UTC().Format(time.RFC3339),
		})
	})

	api := app.Group("/api/v1")

	api.Use(limiter.RateLimitMiddleware())

	authAPI := api.Group("/auth")
	{
		authAPI.Post("/login", presenter.PrivatePresenter.Login)
		authAPI.Post("/logout", jwtAuth, presenter.PrivatePresenter.Logout)
		authAPI.Get("/csrf-token", func(c *fiber.Ctx) error {
			sess, err := store.Get(c)
			if err != nil {
				return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Session error"})
			}

			token := sess.Get("csrf_token")
			if token == nil {
				newToken, err := middleware.GenerateCSRFToken()
				if err != nil {
					return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to generate CSRF token"})
				}
				sess.Set("csrf_token", newToken)
				sess.Save()
				token = newToken
			}
			return c.JSON(fiber.Map{"csrf_token": token})
		})
	}

	adminAPI := api.Group("/admin", jwtAuth, customCSRF, requireAdmin)

	adminSegmentsAPI := adminAPI.Group("/segment-configs")
	{
		adminSegmentsAPI.Post("/", presenter.AdminPresenter.SaveSegmentConfig)
		adminSegmentsAPI.Put("/:id", presenter.AdminPresenter.SaveSegmentConfig)
		adminSegmentsAPI.Get("/", presenter.AdminPresenter.ListSegmentConfigs)
	}

	adminStaffAPI := adminAPI.Group("/staff")
	{
		adminStaffAPI.Post("/", presenter.AdminPresenter.CreateStaff)
		adminStaffAPI.Post("/:id/verify", presenter.AdminPresenter.VerifyStaff)
		adminStaffAPI.Get("/", presenter.AdminPresenter.ListStaff)
	}

	customersAPI := api.Group("/customers", jwtAuth, customCSRF, requireStaff)
	{
		customersAPI.Post("/", presenter.AdminPresenter.CreateCustomer)
		customersAPI.Get("/", presenter.AdminPresenter.ListCustomers)
		customersAPI.Get("/:id", presenter.AdminPresenter.GetCustomer)
	}

	loansAPI := api.Group("/loans", jwtAuth, customCSRF, requireStaff)
	{
		loansAPI.Post("/", presenter.LendingPresenter.CreateLoan)
		loansAPI.Get("/", presenter.LendingPresenter.ListLoans)
		loansAPI.Get("/:id", presenter.LendingPresenter.GetLoan)
		loansAPI.Put("/:id/terms", presenter.LendingPresenter.UpdateLoanTerms)
		loansAPI.Post("/:id/transition", middleware.RequireRole(domain.AdminRole, domain.CreditOfficerRole), presenter.LendingPresenter.TransitionLoan)
	}

	editsAPI := api.Group("/pending-edits", jwtAuth, customCSRF, requireStaff)
	{
		editsAPI.Post("/", presenter.EditPresenter.SubmitEdit)
		editsAPI.Get("/", presenter.EditPresenter.ListEdits)
		editsAPI.Post("/:id/resolve", requireReviewer, presenter.EditPresenter.ResolveEdit)
	}

	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error":   true,
			"message": "Resource not found",
			"path":    c.Path(),
		})
	})

	return app
}

func ErrorCustomHandler(log *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		message := "Internal Server Error"

		var e *fiber.Error
		if errors.As(err, &e) {
			code = e.Code
			message = e.Message
		}

		log.Error("Request error occured",
			zap.Error(err),
			zap.String("path", c.Path()),
			zap.String("method", c.Method()),
			zap.Int("status_code", code),
		)

		return c.Status(code).JSON(fiber.Map{
			"error":   true,
			"message": message,
			"code":    code,
		})
	}
}
