package segmentsrv

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/lendora/backoffice/internal/domain"
	"github.com/lendora/backoffice/internal/repository"
	segmentrepo "github.com/lendora/backoffice/internal/repository/segment"
	"github.com/lendora/backoffice/internal/service"
	"github.com/lendora/backoffice/internal/underwriting"
)

type segmentService struct {
	db                *gorm.DB
	segmentRepository repository.SegmentConfigRepository

	meter          metric.Meter
	tracer         trace.Tracer
	log            *zap.Logger
	operationCount metric.Int64Counter
	rejectedCount  metric.Int64Counter
}

// ValidateAndSave admits a segment config only if, together with its active
// siblings, the net-pay bands still tile the axis without gap or overlap.
// The check and the write run in one database transaction so two concurrent
// saves cannot both pass against the same snapshot.
func (s *segmentService) ValidateAndSave(ctx context.Context, config *domain.SegmentConfig) (*domain.SegmentConfig, error) {
	ctx, span := s.tracer.Start(ctx, "service.ValidateAndSaveSegmentConfig")
	defer span.End()

	s.operationCount.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("operation", "validate_and_save"),
			attribute.String("service", "segment"),
		),
	)

	span.SetAttributes(
		attribute.Int64("tenant.id", int64(config.TenantID)),
		attribute.Int64("segment.id", int64(config.SegmentID)),
	)

	tx := s.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", tx.Error)
	}
	defer tx.Rollback()

	repoTx := segmentrepo.NewSegmentConfigRepository(tx, s.meter, s.tracer, s.log)

	siblings, err := repoTx.FindActiveByTenantAndSegment(ctx, config.TenantID, config.SegmentID)
	if err != nil {
		span.SetStatus(codes.Error, "Failed to fetch sibling bands")
		span.RecordError(err)
		return nil, err
	}

	existing := make([]underwriting.Band, 0, len(siblings))
	for _, sib := range siblings {
		if config.ID != 0 && sib.ID == config.ID {
			continue
		}
		existing = append(existing, underwriting.Band{Min: sib.MinNetPay, Max: sib.MaxNetPay})
	}

	candidate := underwriting.Band{Min: config.MinNetPay, Max: config.MaxNetPay}
	if pair, err := underwriting.ValidateBands(candidate, existing); err != nil {
		span.SetStatus(codes.Error, "Band layout rejected")

		s.log.Warn("Segment config rejected",
			zap.Uint64("tenant_id", config.TenantID),
			zap.Uint64("segment_id", config.SegmentID),
			zap.Int("pair_index", pair),
			zap.String("trace_id", span.SpanContext().TraceID().String()),
			zap.Error(err),
		)

		s.rejectedCount.Add(ctx, 1,
			metric.WithAttributes(
				attribute.String("service", "segment"),
				attribute.String("reason", "band_layout"),
			),
		)
		return nil, err
	}

	config.Active = true
	if config.ID == 0 {
		if _, err := repoTx.Create(ctx, config); err != nil {
			span.SetStatus(codes.Error, "Failed to create segment config")
			span.RecordError(err)
			return nil, err
		}
	} else {
		if err := repoTx.Update(ctx, config); err != nil {
			span.SetStatus(codes.Error, "Failed to update segment config")
			span.RecordError(err)
			return nil, err
		}
	}

	if err := tx.Commit().Error; err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.log.Info("Segment config saved",
		zap.Uint64("config_id", config.ID),
		zap.Uint64("tenant_id", config.TenantID),
		zap.Uint64("segment_id", config.SegmentID),
		zap.Float64("min_net_pay", config.MinNetPay),
		zap.Float64("max_net_pay", config.MaxNetPay),
		zap.String("trace_id", span.SpanContext().TraceID().String()),
	)

	span.SetStatus(codes.Ok, "Segment config saved")
	return config, nil
}

// ListBands implements service.SegmentServices.
func (s *segmentService) ListBands(ctx context.Context, tenantID, segmentID uint64) ([]domain.SegmentConfig, error) {
	ctx, span := s.tracer.Start(ctx, "service.ListBands")
	defer span.End()

	configs, err := s.segmentRepository.FindActiveByTenantAndSegment(ctx, tenantID, segmentID)
	if err != nil {
		span.SetStatus(codes.Error, "Failed to fetch segment configs")
		span.RecordError(err)
		return nil, err
	}

	span.SetStatus(codes.Ok, "Segment configs retrieved")
	return configs, nil
}

func NewSegmentService(
	db *gorm.DB,
	segmentRepository repository.SegmentConfigRepository,
	meter metric.Meter,
	tracer trace.Tracer,
	log *zap.Logger,
) service.SegmentServices {
	operationCount, _ := meter.Int64Counter(
		"service.operation.count",
		metric.WithDescription("Number of service operations"),
		metric.WithUnit("{operation}"),
	)

	rejectedCount, _ := meter.Int64Counter(
		"service.config.rejected",
		metric.WithDescription("Number of segment configs rejected by band validation"),
		metric.WithUnit("{config}"),
	)

	return &segmentService{
		db:                db,
		segmentRepository: segmentRepository,

		meter:          meter,
		tracer:         tracer,
		log:            log,
		operationCount: operationCount,
		rejectedCount:  rejectedCount,
	}
}
