package editsrv

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/lendora/backoffice/internal/domain"
	"github.com/lendora/backoffice/internal/repository"
	customerrepo "github.com/lendora/backoffice/internal/repository/customer"
	editrepo "github.com/lendora/backoffice/internal/repository/edit"
	loanrepo "github.com/lendora/backoffice/internal/repository/loan"
	segmentrepo "github.com/lendora/backoffice/internal/repository/segment"
	"github.com/lendora/backoffice/internal/service"
	"github.com/lendora/backoffice/internal/underwriting"
)

const (
	EditDecisionApprove = "APPROVE"
	EditDecisionDeny    = "DENY"
)

type editService struct {
	db             *gorm.DB
	editRepository repository.PendingEditRepository
	now            func() time.Time

	meter          metric.Meter
	tracer         trace.Tracer
	log            *zap.Logger
	operationCount metric.Int64Counter
	resolvedCount  metric.Int64Counter
}

// Submit stages a proposed mutation for review. The target record is not
// touched until a reviewer approves.
func (s *editService) Submit(ctx context.Context, edit *domain.PendingEdit) (*domain.PendingEdit, error) {
	ctx, span := s.tracer.Start(ctx, "service.SubmitEdit")
	defer span.End()

	s.operationCount.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("operation", "submit_edit"),
			attribute.String("service", "edit"),
		),
	)

	edit.Reference = uuid.NewString()
	edit.Status = domain.EditPending

	created, err := s.editRepository.Create(ctx, edit)
	if err != nil {
		span.SetStatus(codes.Error, "Failed to create pending edit")
		span.RecordError(err)

		s.log.Error("Failed to create pending edit",
			zap.String("target_type", string(edit.TargetType)),
			zap.Uint64("target_id", edit.TargetID),
			zap.String("trace_id", span.SpanContext().TraceID().String()),
			zap.Error(err),
		)
		return nil, err
	}

	s.log.Info("Pending edit submitted",
		zap.Uint64("edit_id", created.ID),
		zap.String("reference", created.Reference),
		zap.String("target_type", string(created.TargetType)),
		zap.Uint64("target_id", created.TargetID),
		zap.Uint64("submitter_id", created.SubmitterID),
		zap.String("trace_id", span.SpanContext().TraceID().String()),
	)

	span.SetStatus(codes.Ok, "Pending edit submitted")
	return created, nil
}

// Resolve decides a pending edit under a row lock. A resolved edit is
// immutable: re-resolving fails whatever the decision. Approval applies the
// staged alteration to the target record in the same transaction, so the
// decision and its effect commit or roll back together. Denial requires a
// remark.
func (s *editService) Resolve(ctx context.Context, editID uint64, decision string, remark string, reviewerID uint64) (*domain.PendingEdit, error) {
	ctx, span := s.tracer.Start(ctx, "service.ResolveEdit")
	defer span.End()

	s.operationCount.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("operation", "resolve_edit"),
			attribute.String("service", "edit"),
		),
	)

	span.SetAttributes(
		attribute.Int64("edit.id", int64(editID)),
		attribute.String("edit.decision", decision),
	)

	if decision != EditDecisionApprove && decision != EditDecisionDeny {
		span.SetStatus(codes.Error, "Unknown decision")
		return nil, &domain.ValidationError{Kind: domain.ValidationOutOfRange, Field: "decision"}
	}
	if decision == EditDecisionDeny && remark == "" {
		span.SetStatus(codes.Error, "Denial requires a remark")
		return nil, &domain.ValidationError{Kind: domain.ValidationMissingRemark, Field: "remark"}
	}

	tx := s.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", tx.Error)
	}
	defer tx.Rollback()

	repoTx := editrepo.NewPendingEditRepository(tx, s.meter, s.tracer, s.log)

	edit, err := repoTx.FindByIDForUpdate(ctx, editID)
	if err != nil {
		span.SetStatus(codes.Error, "Failed to lock pending edit")
		span.RecordError(err)
		return nil, err
	}
	if edit == nil {
		span.SetStatus(codes.Error, "Pending edit not found")
		return nil, domain.ErrEditNotFound
	}

	if edit.Resolved() {
		span.SetStatus(codes.Error, "Edit already resolved")

		s.log.Warn("Re-resolution of pending edit rejected",
			zap.Uint64("edit_id", edit.ID),
			zap.String("status", string(edit.Status)),
			zap.String("trace_id", span.SpanContext().TraceID().String()),
		)
		return nil, &domain.DomainError{Op: "resolve edit", Current: string(edit.Status)}
	}

	if decision == EditDecisionApprove {
		if err := s.apply(ctx, tx, edit); err != nil {
			span.SetStatus(codes.Error, "Failed to apply alteration")
			span.RecordError(err)
			return nil, err
		}
		edit.Status = domain.EditApproved
	} else {
		edit.Status = domain.EditDenied
	}

	now := s.now()
	edit.ReviewerID = reviewerID
	edit.Remark = remark
	edit.ResolvedAt = &now

	if err := repoTx.Save(ctx, edit); err != nil {
		span.SetStatus(codes.Error, "Failed to save pending edit")
		span.RecordError(err)
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.resolvedCount.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("service", "edit"),
			attribute.String("edit.status", string(edit.Status)),
		),
	)

	s.log.Info("Pending edit resolved",
		zap.Uint64("edit_id", edit.ID),
		zap.String("status", string(edit.Status)),
		zap.Uint64("reviewer_id", reviewerID),
		zap.String("trace_id", span.SpanContext().TraceID().String()),
	)

	span.SetStatus(codes.Ok, "Pending edit resolved")
	return edit, nil
}

func (s *editService) apply(ctx context.Context, tx *gorm.DB, edit *domain.PendingEdit) error {
	switch edit.TargetType {
	case domain.EditTargetCustomer:
		repo := customerrepo.NewCustomerRepository(tx, s.meter, s.tracer, s.log)
		target, err := repo.FindByID(ctx, edit.TargetID)
		if err != nil {
			return err
		}
		if target == nil {
			return domain.ErrCustomerNotFound
		}
		if err := repo.UpdateFields(ctx, edit.TargetID, edit.Alteration); err != nil {
			return err
		}
		if !altersEligibility(edit.Alteration) {
			return nil
		}
		return s.refreshOpenLoans(ctx, tx, edit.TargetID)

	case domain.EditTargetLoan:
		repo := loanrepo.NewLoanRepository(tx, s.meter, s.tracer, s.log)
		target, err := repo.FindByID(ctx, edit.TargetID)
		if err != nil {
			return err
		}
		if target == nil {
			return domain.ErrLoanNotFound
		}
		return repo.UpdateFields(ctx, edit.TargetID, edit.Alteration)

	default:
		return fmt.Errorf("unsupported edit target type %q", edit.TargetType)
	}
}

// eligibilityFields are the customer columns feeding the underwriting
// checks. Altering any of them re-evaluates the customer's open loans.
var eligibilityFields = []string{"net_pay", "date_of_birth", "date_of_enlistment"}

func altersEligibility(alteration map[string]any) bool {
	for _, field := range eligibilityFields {
		if _, ok := alteration[field]; ok {
			return true
		}
	}
	return false
}

// refreshOpenLoans re-runs pricing and eligibility for the customer's
// unlocked loans after an approved alteration changed an underwriting
// input. Runs on the alteration's transaction, so an approval never
// commits with a stale snapshot.
func (s *editService) refreshOpenLoans(ctx context.Context, tx *gorm.DB, customerID uint64) error {
	customers := customerrepo.NewCustomerRepository(tx, s.meter, s.tracer, s.log)
	customer, err := customers.FindByID(ctx, customerID)
	if err != nil {
		return err
	}
	if customer == nil {
		return domain.ErrCustomerNotFound
	}

	loans := loanrepo.NewLoanRepository(tx, s.meter, s.tracer, s.log)
	open, err := loans.FindOpenByCustomerID(ctx, customerID)
	if err != nil {
		return err
	}
	if len(open) == 0 {
		return nil
	}

	segments := segmentrepo.NewSegmentConfigRepository(tx, s.meter, s.tracer, s.log)
	policy, err := segments.FindBandForNetPay(ctx, customer.TenantID, customer.SegmentID, customer.NetPay)
	if err != nil {
		return err
	}
	if policy == nil {
		return domain.ErrSegmentPolicyNotFound
	}

	now := s.now()
	for i := range open {
		underwriting.Reprice(&open[i], *customer, *policy, now)
		if err := loans.Save(ctx, &open[i]); err != nil {
			return err
		}
	}

	s.log.Info("Open loans re-evaluated after customer alteration",
		zap.Uint64("customer_id", customerID),
		zap.Int("loans", len(open)),
	)
	return nil
}

// List implements service.EditServices.
func (s *editService) List(ctx context.Context, tenantID uint64, params domain.Params) (*domain.Paginated, error) {
	ctx, span := s.tracer.Start(ctx, "service.ListEdits")
	defer span.End()

	edits, total, err := s.editRepository.FindPaginated(ctx, tenantID, params)
	if err != nil {
		span.SetStatus(codes.Error, "Failed to fetch pending edits")
		span.RecordError(err)
		return nil, err
	}

	totalPages := 0
	if params.Limit > 0 {
		totalPages = int(math.Ceil(float64(total) / float64(params.Limit)))
	}

	span.SetStatus(codes.Ok, "Pending edits retrieved")
	return &domain.Paginated{
		Data:       edits,
		Total:      total,
		Page:       params.Page,
		Limit:      params.Limit,
		TotalPages: totalPages,
	}, nil
}

func NewEditService(
	db *gorm.DB,
	editRepository repository.PendingEditRepository,
	now func() time.Time,
	meter metric.Meter,
	tracer trace.Tracer,
	log *zap.Logger,
) service.EditServices {
	if now == nil {
		now = time.Now
	}

	operationCount, _ := meter.Int64Counter(
		"service.operation.count",
		metric.WithDescription("Number of service operations"),
		metric.WithUnit("{operation}"),
	)

	resolvedCount, _ := meter.Int64Counter(
		"service.edits.resolved",
		metric.WithDescription("Number of pending edits resolved"),
		metric.WithUnit("{edit}"),
	)

	return &editService{
		db:             db,
		editRepository: editRepository,
		now:            now,

		meter:          meter,
		tracer:         tracer,
		log:            log,
		operationCount: operationCount,
		resolvedCount:  resolvedCount,
	}
}
