package editrepo

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/lendora/backoffice/internal/domain"
	"github.com/lendora/backoffice/internal/model"
	"github.com/lendora/backoffice/internal/repository"
)

type pendingEditRepository struct {
	db     *gorm.DB
	meter  metric.Meter
	tracer trace.Tracer
	log    *zap.Logger
}

// Create implements PendingEditRepository.
func (p *pendingEditRepository) Create(ctx context.Context, edit *domain.PendingEdit) (*domain.PendingEdit, error) {
	ctx, span := p.tracer.Start(ctx, "repository.CreatePendingEdit")
	defer span.End()

	span.SetAttributes(
		attribute.String("db.operation", "insert"),
		attribute.String("db.table", "pending_edits"),
		attribute.String("edit.target_type", string(edit.TargetType)),
	)

	record := model.PendingEditFromEntity(edit)
	if err := p.db.WithContext(ctx).Create(&record).Error; err != nil {
		span.SetStatus(codes.Error, "Error creating pending edit")
		span.RecordError(err)

		p.log.Error("Error creating pending edit",
			zap.Uint64("target_id", edit.TargetID),
			zap.String("target_type", string(edit.TargetType)),
			zap.String("trace_id", span.SpanContext().TraceID().String()),
			zap.Error(err),
		)
		return nil, err
	}

	span.SetStatus(codes.Ok, "Pending edit created")
	return model.PendingEditToEntity(record), nil
}

// FindByID implements PendingEditRepository.
func (p *pendingEditRepository) FindByID(ctx context.Context, id uint64) (*domain.PendingEdit, error) {
	ctx, span := p.tracer.Start(ctx, "repository.FindPendingEditByID")
	defer span.End()

	var record model.PendingEdit
	err := p.db.WithContext(ctx).First(&record, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		span.RecordError(err)
		return nil, err
	}

	return model.PendingEditToEntity(record), nil
}

// FindByIDForUpdate locks the edit row for the surrounding transaction.
func (p *pendingEditRepository) FindByIDForUpdate(ctx context.Context, id uint64) (*domain.PendingEdit, error) {
	ctx, span := p.tracer.Start(ctx, "repository.FindPendingEditByIDForUpdate")
	defer span.End()

	var record model.PendingEdit
	err := p.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&record, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		span.RecordError(err)

		p.log.Error("Error locking pending edit",
			zap.Uint64("edit_id", id),
			zap.String("trace_id", span.SpanContext().TraceID().String()),
			zap.Error(err),
		)
		return nil, err
	}

	return model.PendingEditToEntity(record), nil
}

// Save implements PendingEditRepository.
func (p *pendingEditRepository) Save(ctx context.Context, edit *domain.PendingEdit) error {
	ctx, span := p.tracer.Start(ctx, "repository.SavePendingEdit")
	defer span.End()

	record := model.PendingEditFromEntity(edit)
	if err := p.db.WithContext(ctx).Save(&record).Error; err != nil {
		span.SetStatus(codes.Error, "Error saving pending edit")
		span.RecordError(err)

		p.log.Error("Error saving pending edit",
			zap.Uint64("edit_id", edit.ID),
			zap.String("trace_id", span.SpanContext().TraceID().String()),
			zap.Error(err),
		)
		return err
	}

	span.SetStatus(codes.Ok, "Pending edit saved")
	return nil
}

// FindPaginated implements PendingEditRepository.
func (p *pendingEditRepository) FindPaginated(ctx context.Context, tenantID uint64, params domain.Params) ([]domain.PendingEdit, int64, error) {
	ctx, span := p.tracer.Start(ctx, "repository.FindPaginatedPendingEdits")
	defer span.End()

	query := p.db.WithContext(ctx).Model(&model.PendingEdit{}).Where("tenant_id = ?", tenantID)
	if params.Status != "" {
		query = query.Where("status = ?", params.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		span.RecordError(err)
		return nil, 0, err
	}

	offset := (params.Page - 1) * params.Limit

	var records []model.PendingEdit
	err := query.Order("created_at DESC").Limit(params.Limit).Offset(offset).Find(&records).Error
	if err != nil {
		span.RecordError(err)
		return nil, 0, err
	}

	return model.PendingEditsToEntity(records), total, nil
}

func NewPendingEditRepository(
	db *gorm.DB,
	meter metric.Meter,
	tracer trace.Tracer,
	log *zap.Logger,
) repository.PendingEditRepository {
	return &pendingEditRepository{
		db:     db,
		meter:  meter,
		tracer: tracer,
		log:    log,
	}
}
