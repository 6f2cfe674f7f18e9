package lendinghandler

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/lendora/backoffice/internal/domain"
	"github.com/lendora/backoffice/internal/dto"
	"github.com/lendora/backoffice/internal/service"
	"github.com/lendora/backoffice/middleware"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type LendingHandler struct {
	loanService     service.LoanServices
	validate        *validator.Validate
	meter           metric.Meter
	tracer          trace.Tracer
	log             *zap.Logger
	requestCount    metric.Int64Counter
	requestDuration metric.Float64Histogram
	errorCount      metric.Int64Counter
	responseSize    metric.Int64Histogram
}

func NewLendingHandler(
	loanService service.LoanServices,
	meter metric.Meter,
	tracer trace.Tracer,
	log *zap.Logger,
) *LendingHandler {
	requestCount, err := meter.Int64Counter(
		"api.request.count",
		metric.WithDescription("Number of API requests received"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		zap.L().Fatal("Failed to create request count metric", zap.Error(err))
	}

	requestDuration, err := meter.Float64Histogram(
		"api.request.duration",
		metric.WithDescription("Duration of API requests"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		zap.L().Fatal("Failed to create request duration metric", zap.Error(err))
	}

	errorCount, err := meter.Int64Counter(
		"api.error.count",
		metric.WithDescription("Number of API errors"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		zap.L().Fatal("Failed to create error count metric", zap.Error(err))
	}

	responseSize, err := meter.Int64Histogram(
		"api.response.size",
		metric.WithDescription("Size of API responses in bytes"),
		metric.WithUnit("By"),
	)
	if err != nil {
		zap.L().Fatal("Failed to create response size metric", zap.Error(err))
	}

	return &LendingHandler{
		loanService:     loanService,
		validate:        validator.New(validator.WithRequiredStructEnabled()),
		meter:           meter,
		tracer:          tracer,
		log:             log,
		requestCount:    requestCount,
		requestDuration: requestDuration,
		errorCount:      errorCount,
		responseSize:    responseSize,
	}
}

// recordError helper function to record errors with observability
func (h *LendingHandler) recordError(
	ctx context.Context, span trace.Span, c *fiber.Ctx,
	start time.Time, err error, statusCode int, errorType, message string, fields ...zap.Field) error {
	h.errorCount.Add(ctx, 1, metric.WithAttributes(
		attribute.String("endpoint", c.Path()),
		attribute.String("method", c.Method()),
		attribute.String("error_type", errorType),
		attribute.Int("status_code", statusCode),
	))

	duration := float64(time.Since(start).Nanoseconds()) / 1e6
	h.requestDuration.Record(ctx, duration, metric.WithAttributes(
		attribute.String("endpoint", c.Path()),
		attribute.String("method", c.Method()),
		attribute.Int("status_code", statusCode),
	))

	span.SetAttributes(
		attribute.String("error.type", errorType),
		attribute.String("error.message", err.Error()),
		attribute.Int("http.status_code", statusCode),
	)
	span.RecordError(err)

	logFields := append([]zap.Field{
		zap.String("trace_id", span.SpanContext().TraceID().String()),
		zap.String("span_id", span.SpanContext().SpanID().String()),
		zap.Int("status_code", statusCode),
		zap.String("error_type", errorType),
		zap.Float64("duration_ms", duration),
		zap.Error(err),
	}, fields...)

	h.log.Warn(message, logFields...)

	return c.Status(statusCode).JSON(fiber.Map{"error": err.Error()})
}

// recordSuccess helper function to record successful responses with observability
func (h *LendingHandler) recordSuccess(
	ctx context.Context, span trace.Span, c *fiber.Ctx,
	start time.Time, statusCode int, responseData interface{}, fields ...zap.Field) error {
	duration := float64(time.Since(start).Nanoseconds()) / 1e6
	h.requestDuration.Record(ctx, duration, metric.WithAttributes(
		attribute.String("endpoint", c.Path()),
		attribute.String("method", c.Method()),
		attribute.Int("status_code", statusCode),
	))

	span.SetAttributes(
		attribute.Int("http.status_code", statusCode),
		attribute.Float64("request.duration_ms", duration),
	)

	logFields := append([]zap.Field{
		zap.String("trace_id", span.SpanContext().TraceID().String()),
		zap.String("span_id", span.SpanContext().SpanID().String()),
		zap.Int("status_code", statusCode),
		zap.Float64("duration_ms", duration),
	}, fields...)

	h.log.Info("Request completed successfully", logFields...)

	return c.Status(statusCode).JSON(responseData)
}

// mapServiceError translates the error taxonomy into HTTP codes. Validation
// failures are unprocessable input, state conflicts are 409, hard lookups
// are 404.
func (h *LendingHandler) mapServiceError(
	ctx context.Context, span trace.Span, c *fiber.Ctx, start time.Time, err error) error {
	var validationErr *domain.ValidationError
	var domainErr *domain.DomainError
	var notFoundErr *domain.NotFoundError

	switch {
	case errors.As(err, &validationErr):
		return h.recordError(
			ctx, span, c, start, err,
			fiber.StatusUnprocessableEntity, "validation_error", "Request rejected by validation",
			zap.String("kind", string(validationErr.Kind)))
	case errors.As(err, &domainErr):
		return h.recordError(
			ctx, span, c, start, err,
			fiber.StatusConflict, "domain_error", "Request conflicts with current state",
			zap.String("current", domainErr.Current))
	case errors.As(err, &notFoundErr):
		return h.recordError(
			ctx, span, c, start, err,
			fiber.StatusNotFound, "not_found", "Resource not found",
			zap.String("resource", notFoundErr.Resource))
	default:
		return h.recordError(
			ctx, span, c, start, err,
			fiber.StatusInternalServerError, "service_error", "Internal server error")
	}
}

func (h *LendingHandler) CreateLoan(c *fiber.Ctx) error {
	ctx := c.UserContext()
	ctx, span := h.tracer.Start(ctx, "handler.CreateLoan")
	defer span.End()
	start := time.Now()

	span.SetAttributes(
		attribute.String("http.method", c.Method()),
		attribute.String("http.route", c.Path()),
		attribute.String("http.client_ip", c.IP()),
	)

	h.requestCount.Add(ctx, 1, metric.WithAttributes(
		attribute.String("endpoint", c.Path()),
		attribute.String("method", c.Method()),
	))

	claims, err := middleware.GetClaimsFromLocals(c)
	if err != nil {
		return h.recordError(
			ctx, span, c, start, err,
			fiber.StatusUnauthorized, "auth_error", "Missing staff claims")
	}

	var req dto.CreateLoanRequest
	if err := c.BodyParser(&req); err != nil {
		return h.recordError(
			ctx, span, c, start, err,
			fiber.StatusBadRequest, "parse_error", "Cannot parse request body", zap.Error(err))
	}

	if err := h.validate.Struct(req); err != nil {
		return h.recordError(
			ctx, span, c, start, err,
			fiber.StatusBadRequest, "validation_error", "Validation failed", zap.Error(err))
	}

	span.SetAttributes(
		attribute.Int64("customer.id", int64(req.CustomerID)),
		attribute.Float64("loan.amount", req.Amount),
		attribute.Int("loan.tenor_months", req.TenorMonths),
	)

	h.log.Debug("Processing loan creation",
		zap.Uint64("customer_id", req.CustomerID),
		zap.Uint64("tenant_id", claims.TenantID),
		zap.String("trace_id", span.SpanContext().TraceID().String()),
	)

	serviceCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	loan, err := h.loanService.Create(serviceCtx, claims.TenantID, req)
	if err != nil {
		return h.mapServiceError(ctx, span, c, start, err)
	}

	span.SetAttributes(attribute.String("loan.reference", loan.Reference))

	return h.recordSuccess(ctx, span, c, start, fiber.StatusCreated, loan,
		zap.Uint64("loan_id", loan.ID),
		zap.String("reference", loan.Reference),
	)
}

func (h *LendingHandler) TransitionLoan(c *fiber.Ctx) error {
	ctx := c.UserContext()
	ctx, span := h.tracer.Start(ctx, "handler.TransitionLoan")
	defer span.End()
	start := time.Now()

	h.requestCount.Add(ctx, 1, metric.WithAttributes(
		attribute.String("endpoint", c.Path()),
		attribute.String("method", c.Method()),
	))

	loanID, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return h.recordError(
			ctx, span, c, start, err,
			fiber.StatusBadRequest, "parse_error", "Invalid loan id")
	}

	var req dto.TransitionLoanRequest
	if err := c.BodyParser(&req); err != nil {
		return h.recordError(
			ctx, span, c, start, err,
			fiber.StatusBadRequest, "parse_error", "Cannot parse request body", zap.Error(err))
	}

	if err := h.validate.Struct(req); err != nil {
		return h.recordError(
			ctx, span, c, start, err,
			fiber.StatusBadRequest, "validation_error", "Validation failed", zap.Error(err))
	}

	span.SetAttributes(
		attribute.Int64("loan.id", int64(loanID)),
		attribute.String("loan.target_status", req.Status),
	)

	serviceCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	loan, err := h.loanService.Transition(serviceCtx, loanID, domain.LoanStatus(req.Status), req.Remark)
	if err != nil {
		return h.mapServiceError(ctx, span, c, start, err)
	}

	return h.recordSuccess(ctx, span, c, start, fiber.StatusOK, loan,
		zap.Uint64("loan_id", loan.ID),
		zap.String("status", string(loan.Status)),
	)
}

func (h *LendingHandler) UpdateLoanTerms(c *fiber.Ctx) error {
	ctx := c.UserContext()
	ctx, span := h.tracer.Start(ctx, "handler.UpdateLoanTerms")
	defer span.End()
	start := time.Now()

	h.requestCount.Add(ctx, 1, metric.WithAttributes(
		attribute.String("endpoint", c.Path()),
		attribute.String("method", c.Method()),
	))

	loanID, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return h.recordError(
			ctx, span, c, start, err,
			fiber.StatusBadRequest, "parse_error", "Invalid loan id")
	}

	var req dto.UpdateLoanTermsRequest
	if err := c.BodyParser(&req); err != nil {
		return h.recordError(
			ctx, span, c, start, err,
			fiber.StatusBadRequest, "parse_error", "Cannot parse request body", zap.Error(err))
	}

	if err := h.validate.Struct(req); err != nil {
		return h.recordError(
			ctx, span, c, start, err,
			fiber.StatusBadRequest, "validation_error", "Validation failed", zap.Error(err))
	}

	serviceCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	loan, err := h.loanService.UpdateTerms(serviceCtx, loanID, req.Amount, req.TenorMonths)
	if err != nil {
		return h.mapServiceError(ctx, span, c, start, err)
	}

	return h.recordSuccess(ctx, span, c, start, fiber.StatusOK, loan,
		zap.Uint64("loan_id", loan.ID),
		zap.Float64("amount", loan.Amount),
		zap.Int("tenor_months", loan.TenorMonths),
	)
}

func (h *LendingHandler) GetLoan(c *fiber.Ctx) error {
	ctx := c.UserContext()
	ctx, span := h.tracer.Start(ctx, "handler.GetLoan")
	defer span.End()
	start := time.Now()

	loanID, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return h.recordError(
			ctx, span, c, start, err,
			fiber.StatusBadRequest, "parse_error", "Invalid loan id")
	}

	loan, err := h.loanService.Get(ctx, loanID)
	if err != nil {
		return h.mapServiceError(ctx, span, c, start, err)
	}

	return h.recordSuccess(ctx, span, c, start, fiber.StatusOK, loan,
		zap.Uint64("loan_id", loan.ID),
	)
}

func (h *LendingHandler) ListLoans(c *fiber.Ctx) error {
	ctx := c.UserContext()
	ctx, span := h.tracer.Start(ctx, "handler.ListLoans")
	defer span.End()
	start := time.Now()

	claims, err := middleware.GetClaimsFromLocals(c)
	if err != nil {
		return h.recordError(
			ctx, span, c, start, err,
			fiber.StatusUnauthorized, "auth_error", "Missing staff claims")
	}

	params := domain.Params{
		Status: c.Query("status"),
		Page:   c.QueryInt("page", 1),
		Limit:  c.QueryInt("limit", 20),
	}

	page, err := h.loanService.List(ctx, claims.TenantID, params)
	if err != nil {
		return h.mapServiceError(ctx, span, c, start, err)
	}

	return h.recordSuccess(ctx, span, c, start, fiber.StatusOK, page,
		zap.Int64("total", page.Total),
	)
}
