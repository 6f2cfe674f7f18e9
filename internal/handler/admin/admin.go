package adminhandler

import (
	"errors"
	"strconv"

	"github.com/lendora/backoffice/internal/domain"
	"github.com/lendora/backoffice/internal/dto"
	"github.com/lendora/backoffice/internal/service"
	"github.com/lendora/backoffice/middleware"
	"github.com/lendora/backoffice/pkg/common"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type AdminHandler struct {
	segmentService  service.SegmentServices
	staffService    service.StaffServices
	customerService service.CustomerServices
	validate        *validator.Validate

	meter        metric.Meter
	tracer       trace.Tracer
	log          *zap.Logger
	requestCount metric.Int64Counter
	errorCount   metric.Int64Counter
}

func NewAdminHandler(
	segmentService service.SegmentServices,
	staffService service.StaffServices,
	customerService service.CustomerServices,
	meter metric.Meter,
	tracer trace.Tracer,
	log *zap.Logger,
) *AdminHandler {
	requestCount, err := meter.Int64Counter(
		"api.request.count",
		metric.WithDescription("Number of API requests received"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		zap.L().Fatal("Failed to create request count metric", zap.Error(err))
	}

	errorCount, err := meter.Int64Counter(
		"api.error.count",
		metric.WithDescription("Number of API errors"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		zap.L().Fatal("Failed to create error count metric", zap.Error(err))
	}

	return &AdminHandler{
		segmentService:  segmentService,
		staffService:    staffService,
		customerService: customerService,
		validate:        validator.New(validator.WithRequiredStructEnabled()),
		meter:           meter,
		tracer:          tracer,
		log:             log,
		requestCount:    requestCount,
		errorCount:      errorCount,
	}
}

func (h *AdminHandler) respondError(c *fiber.Ctx, err error) error {
	var validationErr *domain.ValidationError
	var domainErr *domain.DomainError
	var notFoundErr *domain.NotFoundError

	switch {
	case errors.As(err, &validationErr):
		return common.ErrorResponse(c, fiber.StatusUnprocessableEntity, err.Error())
	case errors.As(err, &domainErr):
		return common.ErrorResponse(c, fiber.StatusConflict, err.Error())
	case errors.As(err, &notFoundErr):
		return common.ErrorResponse(c, fiber.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrEmailExists):
		return common.ErrorResponse(c, fiber.StatusConflict, err.Error())
	default:
		return common.ErrorResponse(c, fiber.StatusInternalServerError, err.Error())
	}
}

func (h *AdminHandler) SaveSegmentConfig(c *fiber.Ctx) error {
	ctx := c.UserContext()
	ctx, span := h.tracer.Start(ctx, "handler.SaveSegmentConfig")
	defer span.End()

	h.requestCount.Add(ctx, 1, metric.WithAttributes(
		attribute.String("endpoint", c.Path()),
		attribute.String("method", c.Method()),
	))

	claims, err := middleware.GetClaimsFromLocals(c)
	if err != nil {
		return common.ErrorResponse(c, fiber.StatusUnauthorized, err.Error())
	}

	var req dto.SegmentConfigRequest
	if err := c.BodyParser(&req); err != nil {
		return common.ErrorResponse(c, fiber.StatusBadRequest, err.Error())
	}
	if err := h.validate.Struct(req); err != nil {
		return common.ErrorResponse(c, fiber.StatusBadRequest, err.Error())
	}

	config := dto.SegmentConfigToEntity(req, claims.TenantID)

	if id, err := strconv.ParseUint(c.Params("id", "0"), 10, 64); err == nil && id != 0 {
		config.ID = id
	}

	saved, err := h.segmentService.ValidateAndSave(ctx, config)
	if err != nil {
		h.errorCount.Add(ctx, 1, metric.WithAttributes(
			attribute.String("endpoint", c.Path()),
			attribute.String("error_type", "save_failed"),
		))
		return h.respondError(c, err)
	}

	status := fiber.StatusCreated
	if saved.ID != 0 && c.Method() == fiber.MethodPut {
		status = fiber.StatusOK
	}
	return common.SuccessResponse(c, status, saved)
}

func (h *AdminHandler) ListSegmentConfigs(c *fiber.Ctx) error {
	ctx := c.UserContext()
	ctx, span := h.tracer.Start(ctx, "handler.ListSegmentConfigs")
	defer span.End()

	claims, err := middleware.GetClaimsFromLocals(c)
	if err != nil {
		return common.ErrorResponse(c, fiber.StatusUnauthorized, err.Error())
	}

	segmentID, err := strconv.ParseUint(c.Query("segment_id"), 10, 64)
	if err != nil {
		return common.ErrorResponse(c, fiber.StatusBadRequest, "segment_id query parameter is required")
	}

	configs, err := h.segmentService.ListBands(ctx, claims.TenantID, segmentID)
	if err != nil {
		return h.respondError(c, err)
	}

	return common.SuccessResponse(c, fiber.StatusOK, configs)
}

func (h *AdminHandler) CreateStaff(c *fiber.Ctx) error {
	ctx := c.UserContext()
	ctx, span := h.tracer.Start(ctx, "handler.CreateStaff")
	defer span.End()

	h.requestCount.Add(ctx, 1, metric.WithAttributes(
		attribute.String("endpoint", c.Path()),
		attribute.String("method", c.Method()),
	))

	claims, err := middleware.GetClaimsFromLocals(c)
	if err != nil {
		return common.ErrorResponse(c, fiber.StatusUnauthorized, err.Error())
	}

	var req dto.CreateStaffRequest
	if err := c.BodyParser(&req); err != nil {
		return common.ErrorResponse(c, fiber.StatusBadRequest, err.Error())
	}
	if err := h.validate.Struct(req); err != nil {
		return common.ErrorResponse(c, fiber.StatusBadRequest, err.Error())
	}

	staff := &domain.StaffMember{
		TenantID:   claims.TenantID,
		Email:      req.Email,
		FullName:   req.FullName,
		Role:       domain.Role(req.Role),
		SegmentIDs: req.SegmentIDs,
	}

	created, err := h.staffService.Create(ctx, staff, req.Password)
	if err != nil {
		return h.respondError(c, err)
	}

	created.Password = ""
	return common.SuccessResponse(c, fiber.StatusCreated, created)
}

func (h *AdminHandler) VerifyStaff(c *fiber.Ctx) error {
	ctx := c.UserContext()
	ctx, span := h.tracer.Start(ctx, "handler.VerifyStaff")
	defer span.End()

	staffID, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return common.ErrorResponse(c, fiber.StatusBadRequest, "invalid staff id")
	}

	if err := h.staffService.Verify(ctx, staffID); err != nil {
		return h.respondError(c, err)
	}

	return common.SuccessResponse(c, fiber.StatusOK, fiber.Map{"verified": true})
}

func (h *AdminHandler) ListStaff(c *fiber.Ctx) error {
	ctx := c.UserContext()
	ctx, span := h.tracer.Start(ctx, "handler.ListStaff")
	defer span.End()

	claims, err := middleware.GetClaimsFromLocals(c)
	if err != nil {
		return common.ErrorResponse(c, fiber.StatusUnauthorized, err.Error())
	}

	params := domain.Params{
		Page:  c.QueryInt("page", 1),
		Limit: c.QueryInt("limit", 20),
	}

	page, err := h.staffService.List(ctx, claims.TenantID, params)
	if err != nil {
		return h.respondError(c, err)
	}

	return common.SuccessResponse(c, fiber.StatusOK, page)
}

func (h *AdminHandler) CreateCustomer(c *fiber.Ctx) error {
	ctx := c.UserContext()
	ctx, span := h.tracer.Start(ctx, "handler.CreateCustomer")
	defer span.End()

	h.requestCount.Add(ctx, 1, metric.WithAttributes(
		attribute.String("endpoint", c.Path()),
		attribute.String("method", c.Method()),
	))

	claims, err := middleware.GetClaimsFromLocals(c)
	if err != nil {
		return common.ErrorResponse(c, fiber.StatusUnauthorized, err.Error())
	}

	var req dto.CreateCustomerRequest
	if err := c.BodyParser(&req); err != nil {
		return common.ErrorResponse(c, fiber.StatusBadRequest, err.Error())
	}
	if err := h.validate.Struct(req); err != nil {
		return common.ErrorResponse(c, fiber.StatusBadRequest, err.Error())
	}

	created, err := h.customerService.Create(ctx, dto.CustomerToEntity(req, claims.TenantID))
	if err != nil {
		return h.respondError(c, err)
	}

	return common.SuccessResponse(c, fiber.StatusCreated, created)
}

func (h *AdminHandler) GetCustomer(c *fiber.Ctx) error {
	ctx := c.UserContext()
	ctx, span := h.tracer.Start(ctx, "handler.GetCustomer")
	defer span.End()

	customerID, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return common.ErrorResponse(c, fiber.StatusBadRequest, "invalid customer id")
	}

	customer, err := h.customerService.Get(ctx, customerID)
	if err != nil {
		return h.respondError(c, err)
	}

	return common.SuccessResponse(c, fiber.StatusOK, customer)
}

func (h *AdminHandler) ListCustomers(c *fiber.Ctx) error {
	ctx := c.UserContext()
	ctx, span := h.tracer.Start(ctx, "handler.ListCustomers")
	defer span.End()

	claims, err := middleware.GetClaimsFromLocals(c)
	if err != nil {
		return common.ErrorResponse(c, fiber.StatusUnauthorized, err.Error())
	}

	params := domain.Params{
		Page:  c.QueryInt("page", 1),
		Limit: c.QueryInt("limit", 20),
	}

	page, err := h.customerService.List(ctx, claims.TenantID, params)
	if err != nil {
		return h.respondError(c, err)
	}

	return common.SuccessResponse(c, fiber.StatusOK, page)
}
