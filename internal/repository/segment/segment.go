package segmentrepo

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/lendora/backoffice/internal/domain"
	"github.com/lendora/backoffice/internal/model"
	"github.com/lendora/backoffice/internal/repository"
)

type segmentConfigRepository struct {
	db         *gorm.DB
	meter      metric.Meter
	tracer     trace.Tracer
	log        *zap.Logger
	queryCount metric.Int64Counter
	errorCount metric.Int64Counter
}

// Create implements SegmentConfigRepository.
func (s *segmentConfigRepository) Create(ctx context.Context, config *domain.SegmentConfig) (*domain.SegmentConfig, error) {
	ctx, span := s.tracer.Start(ctx, "repository.CreateSegmentConfig")
	defer span.End()

	s.queryCount.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("operation", "insert"),
			attribute.String("table", "segment_configs"),
		),
	)

	span.SetAttributes(
		attribute.String("db.operation", "insert"),
		attribute.String("db.table", "segment_configs"),
		attribute.Int64("tenant.id", int64(config.TenantID)),
		attribute.Int64("segment.id", int64(config.SegmentID)),
	)

	record := model.SegmentConfigFromEntity(config)
	if err := s.db.WithContext(ctx).Create(&record).Error; err != nil {
		span.SetStatus(codes.Error, "Error creating segment config")
		span.RecordError(err)

		s.log.Error("Error creating segment config",
			zap.Uint64("tenant_id", config.TenantID),
			zap.Uint64("segment_id", config.SegmentID),
			zap.String("trace_id", span.SpanContext().TraceID().String()),
			zap.Error(err),
		)

		s.errorCount.Add(ctx, 1,
			metric.WithAttributes(
				attribute.String("operation", "insert"),
				attribute.String("table", "segment_configs"),
			),
		)
		return nil, err
	}

	span.SetStatus(codes.Ok, "Segment config created successfully")
	return model.SegmentConfigToEntity(record), nil
}

// Update implements SegmentConfigRepository.
func (s *segmentConfigRepository) Update(ctx context.Context, config *domain.SegmentConfig) error {
	ctx, span := s.tracer.Start(ctx, "repository.UpdateSegmentConfig")
	defer span.End()

	s.queryCount.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("operation", "update"),
			attribute.String("table", "segment_configs"),
		),
	)

	record := model.SegmentConfigFromEntity(config)
	if err := s.db.WithContext(ctx).Save(&record).Error; err != nil {
		span.SetStatus(codes.Error, "Error updating segment config")
		span.RecordError(err)

		s.log.Error("Error updating segment config",
			zap.Uint64("config_id", config.ID),
			zap.String("trace_id", span.SpanContext().TraceID().String()),
			zap.Error(err),
		)

		s.errorCount.Add(ctx, 1,
			metric.WithAttributes(
				attribute.String("operation", "update"),
				attribute.String("table", "segment_configs"),
			),
		)
		return err
	}

	span.SetStatus(codes.Ok, "Segment config updated successfully")
	return nil
}

// FindByID implements SegmentConfigRepository.
func (s *segmentConfigRepository) FindByID(ctx context.Context, id uint64) (*domain.SegmentConfig, error) {
	ctx, span := s.tracer.Start(ctx, "repository.FindSegmentConfigByID")
	defer span.End()

	var record model.SegmentConfig
	err := s.db.WithContext(ctx).First(&record, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			span.SetStatus(codes.Ok, "Segment config not found")
			return nil, nil
		}

		span.SetStatus(codes.Error, "Error finding segment config")
		span.RecordError(err)

		s.log.Error("Error finding segment config",
			zap.Uint64("config_id", id),
			zap.String("trace_id", span.SpanContext().TraceID().String()),
			zap.Error(err),
		)
		return nil, err
	}

	span.SetStatus(codes.Ok, "Segment config found")
	return model.SegmentConfigToEntity(record), nil
}

// FindActiveByTenantAndSegment implements SegmentConfigRepository.
func (s *segmentConfigRepository) FindActiveByTenantAndSegment(ctx context.Context, tenantID, segmentID uint64) ([]domain.SegmentConfig, error) {
	ctx, span := s.tracer.Start(ctx, "repository.FindActiveSegmentConfigs")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("tenant.id", int64(tenantID)),
		attribute.Int64("segment.id", int64(segmentID)),
	)

	var records []model.SegmentConfig
	err := s.db.WithContext(ctx).
		Where("tenant_id = ? AND segment_id = ? AND active = ?", tenantID, segmentID, true).
		Order("min_net_pay ASC").
		Find(&records).Error
	if err != nil {
		span.SetStatus(codes.Error, "Error finding segment configs")
		span.RecordError(err)

		s.log.Error("Error finding segment configs",
			zap.Uint64("tenant_id", tenantID),
			zap.Uint64("segment_id", segmentID),
			zap.String("trace_id", span.SpanContext().TraceID().String()),
			zap.Error(err),
		)
		return nil, err
	}

	span.SetStatus(codes.Ok, "Segment configs found")
	span.SetAttributes(attribute.Int("result.retrieved", len(records)))

	return model.SegmentConfigsToEntity(records), nil
}

// FindBandForNetPay returns the active config whose net-pay band covers the
// given net pay, or nil when no band matches.
func (s *segmentConfigRepository) FindBandForNetPay(ctx context.Context, tenantID, segmentID uint64, netPay float64) (*domain.SegmentConfig, error) {
	ctx, span := s.tracer.Start(ctx, "repository.FindBandForNetPay")
	defer span.End()

	var record model.SegmentConfig
	err := s.db.WithContext(ctx).
		Where("tenant_id = ? AND segment_id = ? AND active = ? AND min_net_pay <= ? AND max_net_pay > ?",
			tenantID, segmentID, true, netPay, netPay).
		First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		// Band edges are half-open so a shared boundary matches exactly one
		// band; the topmost band keeps its upper edge inclusive.
		err = s.db.WithContext(ctx).
			Where("tenant_id = ? AND segment_id = ? AND active = ? AND max_net_pay = ?",
				tenantID, segmentID, true, netPay).
			Where("max_net_pay = (?)", s.db.Model(&model.SegmentConfig{}).
				Select("MAX(max_net_pay)").
				Where("tenant_id = ? AND segment_id = ? AND active = ?", tenantID, segmentID, true)).
			First(&record).Error
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			span.SetStatus(codes.Ok, "No band covers net pay")
			return nil, nil
		}

		span.SetStatus(codes.Error, "Error finding band for net pay")
		span.RecordError(err)

		s.log.Error("Error finding band for net pay",
			zap.Uint64("tenant_id", tenantID),
			zap.Uint64("segment_id", segmentID),
			zap.String("trace_id", span.SpanContext().TraceID().String()),
			zap.Error(err),
		)
		return nil, err
	}

	span.SetStatus(codes.Ok, "Band found")
	return model.SegmentConfigToEntity(record), nil
}

func NewSegmentConfigRepository(
	db *gorm.DB,
	meter metric.Meter,
	tracer trace.Tracer,
	log *zap.Logger,
) repository.SegmentConfigRepository {
	queryCount, _ := meter.Int64Counter(
		"repository.query.count",
		metric.WithDescription("Number of repository queries"),
		metric.WithUnit("{query}"),
	)

	errorCount, _ := meter.Int64Counter(
		"repository.error.count",
		metric.WithDescription("Number of repository errors"),
		metric.WithUnit("{error}"),
	)

	return &segmentConfigRepository{
		db:         db,
		meter:      meter,
		tracer:     tracer,
		log:        log,
		queryCount: queryCount,
		errorCount: errorCount,
	}
}
