package staffsrv

import (
	"context"
	"math"
	"math/rand/v2"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/lendora/backoffice/internal/domain"
	"github.com/lendora/backoffice/internal/repository"
	"github.com/lendora/backoffice/internal/service"
	"github.com/lendora/backoffice/pkg/password"
)

type staffService struct {
	db              *gorm.DB
	staffRepository repository.StaffRepository

	meter             metric.Meter
	tracer            trace.Tracer
	log               *zap.Logger
	operationCount    metric.Int64Counter
	errorCount        metric.Int64Counter
	assignmentsPicked metric.Int64Counter
}

// Create implements service.StaffServices.
func (s *staffService) Create(ctx context.Context, staff *domain.StaffMember, plainPassword string) (*domain.StaffMember, error) {
	ctx, span := s.tracer.Start(ctx, "service.CreateStaff")
	defer span.End()

	s.operationCount.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("operation", "create_staff"),
			attribute.String("service", "staff"),
		),
	)

	existing, err := s.staffRepository.FindByEmail(ctx, staff.Email)
	if err != nil {
		span.SetStatus(codes.Error, "Failed to check existing staff")
		span.RecordError(err)
		return nil, err
	}
	if existing != nil {
		span.SetStatus(codes.Error, "Staff email already registered")
		return nil, domain.ErrEmailExists
	}

	hashed, err := password.HashPassword(plainPassword)
	if err != nil {
		span.SetStatus(codes.Error, "Failed to hash password")
		span.RecordError(err)
		return nil, err
	}
	staff.Password = hashed
	staff.Active = true
	staff.EmailVerified = false

	if err := s.staffRepository.Create(ctx, staff); err != nil {
		span.SetStatus(codes.Error, "Failed to create staff member")
		span.RecordError(err)

		s.log.Error("Failed to create staff member",
			zap.String("email", staff.Email),
			zap.String("trace_id", span.SpanContext().TraceID().String()),
			zap.Error(err),
		)

		s.errorCount.Add(ctx, 1,
			metric.WithAttributes(
				attribute.String("operation", "create_staff"),
				attribute.String("service", "staff"),
				attribute.String("error_type", "create_failed"),
			),
		)
		return nil, err
	}

	s.log.Info("Staff member created",
		zap.Uint64("staff_id", staff.ID),
		zap.String("role", string(staff.Role)),
		zap.String("trace_id", span.SpanContext().TraceID().String()),
	)

	span.SetStatus(codes.Ok, "Staff member created")
	return staff, nil
}

// Verify implements service.StaffServices.
func (s *staffService) Verify(ctx context.Context, staffID uint64) error {
	ctx, span := s.tracer.Start(ctx, "service.VerifyStaff")
	defer span.End()

	staff, err := s.staffRepository.FindByID(ctx, staffID)
	if err != nil {
		span.RecordError(err)
		return err
	}
	if staff == nil {
		return domain.ErrStaffNotFound
	}

	staff.EmailVerified = true
	if err := s.staffRepository.Update(ctx, staff); err != nil {
		span.SetStatus(codes.Error, "Failed to verify staff member")
		span.RecordError(err)
		return err
	}

	span.SetStatus(codes.Ok, "Staff member verified")
	return nil
}

// Select picks a servicing staff member for a new loan: same tenant and
// role, active, email-verified, assigned to the segment. The pick among
// survivors is uniform random; an empty pool is a hard failure so the
// caller never creates a loan without an assignee.
func (s *staffService) Select(ctx context.Context, tenantID uint64, role domain.Role, segmentID uint64) (*domain.StaffMember, error) {
	ctx, span := s.tracer.Start(ctx, "service.SelectStaff")
	defer span.End()

	s.operationCount.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("operation", "select_staff"),
			attribute.String("service", "staff"),
		),
	)

	span.SetAttributes(
		attribute.Int64("tenant.id", int64(tenantID)),
		attribute.String("staff.role", string(role)),
		attribute.Int64("segment.id", int64(segmentID)),
	)

	pool, err := s.staffRepository.FindPool(ctx, tenantID, role)
	if err != nil {
		span.SetStatus(codes.Error, "Failed to fetch staff pool")
		span.RecordError(err)

		s.log.Error("Failed to fetch staff pool",
			zap.Uint64("tenant_id", tenantID),
			zap.String("role", string(role)),
			zap.String("trace_id", span.SpanContext().TraceID().String()),
			zap.Error(err),
		)
		return nil, err
	}

	candidates := make([]domain.StaffMember, 0, len(pool))
	for _, member := range pool {
		if member.InSegment(segmentID) {
			candidates = append(candidates, member)
		}
	}

	if len(candidates) == 0 {
		span.SetStatus(codes.Error, "No eligible staff in pool")

		s.log.Warn("No eligible staff in pool",
			zap.Uint64("tenant_id", tenantID),
			zap.String("role", string(role)),
			zap.Uint64("segment_id", segmentID),
			zap.String("trace_id", span.SpanContext().TraceID().String()),
		)

		s.errorCount.Add(ctx, 1,
			metric.WithAttributes(
				attribute.String("operation", "select_staff"),
				attribute.String("service", "staff"),
				attribute.String("error_type", "empty_pool"),
			),
		)
		return nil, domain.ErrStaffNotFound
	}

	picked := candidates[rand.IntN(len(candidates))]

	s.assignmentsPicked.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("service", "staff"),
			attribute.String("staff.role", string(role)),
		),
	)

	span.SetStatus(codes.Ok, "Staff member selected")
	span.SetAttributes(attribute.Int64("staff.id", int64(picked.ID)))

	return &picked, nil
}

// List implements service.StaffServices.
func (s *staffService) List(ctx context.Context, tenantID uint64, params domain.Params) (*domain.Paginated, error) {
	ctx, span := s.tracer.Start(ctx, "service.ListStaff")
	defer span.End()

	start := time.Now()

	members, total, err := s.staffRepository.FindPaginated(ctx, tenantID, params)
	if err != nil {
		span.SetStatus(codes.Error, "Failed to fetch staff members")
		span.RecordError(err)
		return nil, err
	}

	totalPages := 0
	if params.Limit > 0 {
		totalPages = int(math.Ceil(float64(total) / float64(params.Limit)))
	}

	s.log.Info("Staff members retrieved",
		zap.Uint64("tenant_id", tenantID),
		zap.Int64("total", total),
		zap.Float64("duration_ms", float64(time.Since(start).Milliseconds())),
		zap.String("trace_id", span.SpanContext().TraceID().String()),
	)

	span.SetStatus(codes.Ok, "Staff members retrieved")
	return &domain.Paginated{
		Data:       members,
		Total:      total,
		Page:       params.Page,
		Limit:      params.Limit,
		TotalPages: totalPages,
	}, nil
}

func NewStaffService(
	db *gorm.DB,
	staffRepository repository.StaffRepository,
	meter metric.Meter,
	tracer trace.Tracer,
	log *zap.Logger,
) service.StaffServices {
	operationCount, _ := meter.Int64Counter(
		"service.operation.count",
		metric.WithDescription("Number of service operations"),
		metric.WithUnit("{operation}"),
	)

	errorCount, _ := meter.Int64Counter(
		"service.error.count",
		metric.WithDescription("Number of service errors"),
		metric.WithUnit("{error}"),
	)

	assignmentsPicked, _ := meter.Int64Counter(
		"service.assignments.picked",
		metric.WithDescription("Number of staff assignments picked"),
		metric.WithUnit("{assignment}"),
	)

	return &staffService{
		db:              db,
		staffRepository: staffRepository,

		meter:             meter,
		tracer:            tracer,
		log:               log,
		operationCount:    operationCount,
		errorCount:        errorCount,
		assignmentsPicked: assignmentsPicked,
	}
}
