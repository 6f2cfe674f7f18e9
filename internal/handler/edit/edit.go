package edithandler

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

type EditHandler struct {
	editService service.EditServices
	validate    *validator.Validate

	meter        metric.Meter
	tracer       trace.Tracer
	log          *zap.Logger
	requestCount metric.Int64Counter
	errorCount   metric.Int64Counter
}

func NewEditHandler(
	editService service.EditServices,
	meter metric.Meter,
	tracer trace.Tracer,
	log *zap.Logger,
) *EditHandler {
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

	return &EditHandler{
		editService:  editService,
		validate:     validator.New(validator.WithRequiredStructEnabled()),
		meter:        meter,
		tracer:       tracer,
		log:          log,
		requestCount: requestCount,
		errorCount:   errorCount,
	}
}

func (h *EditHandler) respondError(c *fiber.Ctx, err error) error {
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
	default:
		return common.ErrorResponse(c, fiber.StatusInternalServerError, err.Error())
	}
}

func (h *EditHandler) SubmitEdit(c *fiber.Ctx) error {
	ctx := c.UserContext()
	ctx, span := h.tracer.Start(ctx, "handler.SubmitEdit")
	defer span.End()

	h.requestCount.Add(ctx, 1, metric.WithAttributes(
		attribute.String("endpoint", c.Path()),
		attribute.String("method", c.Method()),
	))

	claims, err := middleware.GetClaimsFromLocals(c)
	if err != nil {
		return common.ErrorResponse(c, fiber.StatusUnauthorized, err.Error())
	}

	var req dto.SubmitEditRequest
	if err := c.BodyParser(&req); err != nil {
		return common.ErrorResponse(c, fiber.StatusBadRequest, err.Error())
	}
	if err := h.validate.Struct(req); err != nil {
		return common.ErrorResponse(c, fiber.StatusBadRequest, err.Error())
	}

	edit := &domain.PendingEdit{
		TenantID:    claims.TenantID,
		TargetType:  domain.EditTargetType(req.TargetType),
		TargetID:    req.TargetID,
		Alteration:  req.Alteration,
		SubmitterID: claims.StaffID,
	}

	created, err := h.editService.Submit(ctx, edit)
	if err != nil {
		h.errorCount.Add(ctx, 1, metric.WithAttributes(
			attribute.String("endpoint", c.Path()),
			attribute.String("error_type", "submit_failed"),
		))
		return h.respondError(c, err)
	}

	return common.SuccessResponse(c, fiber.StatusCreated, created)
}

func (h *EditHandler) ResolveEdit(c *fiber.Ctx) error {
	ctx := c.UserContext()
	ctx, span := h.tracer.Start(ctx, "handler.ResolveEdit")
	defer span.End()

	h.requestCount.Add(ctx, 1, metric.WithAttributes(
		attribute.String("endpoint", c.Path()),
		attribute.String("method", c.Method()),
	))

	claims, err := middleware.GetClaimsFromLocals(c)
	if err != nil {
		return common.ErrorResponse(c, fiber.StatusUnauthorized, err.Error())
	}

	editID, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return common.ErrorResponse(c, fiber.StatusBadRequest, "invalid edit id")
	}

	var req dto.ResolveEditRequest
	if err := c.BodyParser(&req); err != nil {
		return common.ErrorResponse(c, fiber.StatusBadRequest, err.Error())
	}
	if err := h.validate.Struct(req); err != nil {
		return common.ErrorResponse(c, fiber.StatusBadRequest, err.Error())
	}

	span.SetAttributes(
		attribute.Int64("edit.id", int64(editID)),
		attribute.String("edit.decision", req.Decision),
	)

	resolved, err := h.editService.Resolve(ctx, editID, req.Decision, req.Remark, claims.StaffID)
	if err != nil {
		h.errorCount.Add(ctx, 1, metric.WithAttributes(
			attribute.String("endpoint", c.Path()),
			attribute.String("error_type", "resolve_failed"),
		))
		return h.respondError(c, err)
	}

	return common.SuccessResponse(c, fiber.StatusOK, resolved)
}

func (h *EditHandler) ListEdits(c *fiber.Ctx) error {
	ctx := c.UserContext()
	ctx, span := h.tracer.Start(ctx, "handler.ListEdits")
	defer span.End()

	claims, err := middleware.GetClaimsFromLocals(c)
	if err != nil {
		return common.ErrorResponse(c, fiber.StatusUnauthorized, err.Error())
	}

	params := domain.Params{
		Status: c.Query("status"),
		Page:   c.QueryInt("page", 1),
		Limit:  c.QueryInt("limit", 20),
	}

	page, err := h.editService.List(ctx, claims.TenantID, params)
	if err != nil {
		return h.respondError(c, err)
	}

	return common.SuccessResponse(c, fiber.StatusOK, page)
}
