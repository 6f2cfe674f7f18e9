package staffrepo

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

type staffRepository struct {
	db     *gorm.DB
	meter  metric.Meter
	tracer trace.Tracer
	log    *zap.Logger
}

// Create implements StaffRepository.
func (s *staffRepository) Create(ctx context.Context, staff *domain.StaffMember) error {
	ctx, span := s.tracer.Start(ctx, "repository.CreateStaff")
	defer span.End()

	record := model.StaffFromEntity(staff)
	if err := s.db.WithContext(ctx).Create(&record).Error; err != nil {
		span.SetStatus(codes.Error, "Error creating staff member")
		span.RecordError(err)

		s.log.Error("Error creating staff member",
			zap.String("email", staff.Email),
			zap.String("trace_id", span.SpanContext().TraceID().String()),
			zap.Error(err),
		)
		return err
	}

	staff.ID = record.ID
	span.SetStatus(codes.Ok, "Staff member created")
	return nil
}

// FindByID implements StaffRepository.
func (s *staffRepository) FindByID(ctx context.Context, id uint64) (*domain.StaffMember, error) {
	ctx, span := s.tracer.Start(ctx, "repository.FindStaffByID")
	defer span.End()

	var record model.StaffMember
	err := s.db.WithContext(ctx).First(&record, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		span.RecordError(err)
		return nil, err
	}

	return model.StaffToEntity(record), nil
}

// FindByEmail implements StaffRepository.
func (s *staffRepository) FindByEmail(ctx context.Context, email string) (*domain.StaffMember, error) {
	ctx, span := s.tracer.Start(ctx, "repository.FindStaffByEmail")
	defer span.End()

	var record model.StaffMember
	err := s.db.WithContext(ctx).Where("email = ?", email).First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		span.RecordError(err)
		return nil, err
	}

	return model.StaffToEntity(record), nil
}

// FindPool returns active, email-verified staff of the given role for a
// tenant. Segment membership is filtered in memory because it lives in a
// JSON column.
func (s *staffRepository) FindPool(ctx context.Context, tenantID uint64, role domain.Role) ([]domain.StaffMember, error) {
	ctx, span := s.tracer.Start(ctx, "repository.FindStaffPool")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("tenant.id", int64(tenantID)),
		attribute.String("staff.role", string(role)),
	)

	var records []model.StaffMember
	err := s.db.WithContext(ctx).
		Where("tenant_id = ? AND role = ? AND active = ? AND email_verified = ?",
			tenantID, model.Role(role), true, true).
		Find(&records).Error
	if err != nil {
		span.SetStatus(codes.Error, "Error finding staff pool")
		span.RecordError(err)

		s.log.Error("Error finding staff pool",
			zap.Uint64("tenant_id", tenantID),
			zap.String("role", string(role)),
			zap.String("trace_id", span.SpanContext().TraceID().String()),
			zap.Error(err),
		)
		return nil, err
	}

	span.SetStatus(codes.Ok, "Staff pool found")
	span.SetAttributes(attribute.Int("result.retrieved", len(records)))

	return model.StaffMembersToEntity(records), nil
}

// Update implements StaffRepository.
func (s *staffRepository) Update(ctx context.Context, staff *domain.StaffMember) error {
	ctx, span := s.tracer.Start(ctx, "repository.UpdateStaff")
	defer span.End()

	record := model.StaffFromEntity(staff)
	if err := s.db.WithContext(ctx).Save(&record).Error; err != nil {
		span.SetStatus(codes.Error, "Error updating staff member")
		span.RecordError(err)

		s.log.Error("Error updating staff member",
			zap.Uint64("staff_id", staff.ID),
			zap.String("trace_id", span.SpanContext().TraceID().String()),
			zap.Error(err),
		)
		return err
	}

	span.SetStatus(codes.Ok, "Staff member updated")
	return nil
}

// FindPaginated implements StaffRepository.
func (s *staffRepository) FindPaginated(ctx context.Context, tenantID uint64, params domain.Params) ([]domain.StaffMember, int64, error) {
	ctx, span := s.tracer.Start(ctx, "repository.FindPaginatedStaff")
	defer span.End()

	query := s.db.WithContext(ctx).Model(&model.StaffMember{}).Where("tenant_id = ?", tenantID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		span.RecordError(err)
		return nil, 0, err
	}

	offset := (params.Page - 1) * params.Limit

	var records []model.StaffMember
	err := query.Order("created_at DESC").Limit(params.Limit).Offset(offset).Find(&records).Error
	if err != nil {
		span.RecordError(err)
		return nil, 0, err
	}

	return model.StaffMembersToEntity(records), total, nil
}

func NewStaffRepository(
	db *gorm.DB,
	meter metric.Meter,
	tracer trace.Tracer,
	log *zap.Logger,
) repository.StaffRepository {
	return &staffRepository{
		db:     db,
		meter:  meter,
		tracer: tracer,
		log:    log,
	}
}
