package loansrv

import (
	"context"
	"errors"
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
	"github.com/lendora/backoffice/internal/dto"
	"github.com/lendora/backoffice/internal/repository"
	loanrepo "github.com/lendora/backoffice/internal/repository/loan"
	"github.com/lendora/backoffice/internal/service"
	"github.com/lendora/backoffice/internal/underwriting"
	"github.com/lendora/backoffice/pkg/notify"
)

type loanService struct {
	db                 *gorm.DB
	loanRepository     repository.LoanRepository
	customerRepository repository.CustomerRepository
	segmentRepository  repository.SegmentConfigRepository
	staffRepository    repository.StaffRepository
	staffService       service.StaffServices
	sender             notify.Sender
	now                func() time.Time

	meter           metric.Meter
	tracer          trace.Tracer
	log             *zap.Logger
	operationCount  metric.Int64Counter
	errorCount      metric.Int64Counter
	loansCreated    metric.Int64Counter
	transitionCount metric.Int64Counter
	sweepCompleted  metric.Int64Counter
	requestDuration metric.Float64Histogram
}

func (s *loanService) recordDuration(ctx context.Context, operation string, start time.Time) {
	s.requestDuration.Record(ctx, float64(time.Since(start).Milliseconds()),
		metric.WithAttributes(
			attribute.String("operation", operation),
			attribute.String("service", "loan"),
		),
	)
}

// Create books a new application: the customer's net pay picks the policy
// band, the requested terms are range-checked against it, servicing staff
// are assigned, and the priced quote plus the full eligibility pass are
// stored on the loan. Nothing is persisted unless every step succeeds.
func (s *loanService) Create(ctx context.Context, tenantID uint64, req dto.CreateLoanRequest) (*domain.Loan, error) {
	ctx, span := s.tracer.Start(ctx, "service.CreateLoan")
	defer span.End()

	start := s.now()
	defer s.recordDuration(ctx, "create_loan", start)

	s.operationCount.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("operation", "create_loan"),
			attribute.String("service", "loan"),
		),
	)

	span.SetAttributes(
		attribute.Int64("tenant.id", int64(tenantID)),
		attribute.Int64("customer.id", int64(req.CustomerID)),
		attribute.Float64("loan.amount", req.Amount),
		attribute.Int("loan.tenor_months", req.TenorMonths),
	)

	s.log.Debug("Creating loan",
		zap.Uint64("tenant_id", tenantID),
		zap.Uint64("customer_id", req.CustomerID),
		zap.Float64("amount", req.Amount),
		zap.Int("tenor_months", req.TenorMonths),
		zap.String("trace_id", span.SpanContext().TraceID().String()),
	)

	customer, err := s.customerRepository.FindByID(ctx, req.CustomerID)
	if err != nil {
		span.SetStatus(codes.Error, "Failed to fetch customer")
		span.RecordError(err)
		return nil, err
	}
	if customer == nil || customer.TenantID != tenantID {
		span.SetStatus(codes.Error, "Customer not found")
		return nil, domain.ErrCustomerNotFound
	}

	policy, err := s.segmentRepository.FindBandForNetPay(ctx, tenantID, customer.SegmentID, customer.NetPay)
	if err != nil {
		span.SetStatus(codes.Error, "Failed to fetch segment policy")
		span.RecordError(err)
		return nil, err
	}
	if policy == nil {
		span.SetStatus(codes.Error, "No policy band covers customer net pay")

		s.log.Warn("No policy band covers customer net pay",
			zap.Uint64("tenant_id", tenantID),
			zap.Uint64("segment_id", customer.SegmentID),
			zap.Float64("net_pay", customer.NetPay),
			zap.String("trace_id", span.SpanContext().TraceID().String()),
		)
		return nil, domain.ErrSegmentPolicyNotFound
	}

	if req.Amount < policy.MinLoanAmount || req.Amount > policy.MaxLoanAmount {
		span.SetStatus(codes.Error, "Amount outside policy range")
		return nil, &domain.ValidationError{Kind: domain.ValidationOutOfRange, Field: "amount"}
	}
	if req.TenorMonths < policy.MinTenorMonths || req.TenorMonths > policy.MaxTenorMonths {
		span.SetStatus(codes.Error, "Tenor outside policy range")
		return nil, &domain.ValidationError{Kind: domain.ValidationOutOfRange, Field: "tenor_months"}
	}

	agent, topUp, err := s.pickAgent(ctx, tenantID, customer)
	if err != nil {
		return nil, err
	}

	officer, err := s.staffService.Select(ctx, tenantID, domain.CreditOfficerRole, customer.SegmentID)
	if err != nil {
		span.SetStatus(codes.Error, "No credit officer available")
		span.RecordError(err)

		s.errorCount.Add(ctx, 1,
			metric.WithAttributes(
				attribute.String("operation", "create_loan"),
				attribute.String("service", "loan"),
				attribute.String("error_type", "no_officer"),
			),
		)
		return nil, err
	}

	loan := &domain.Loan{
		Reference:  uuid.NewString(),
		TenantID:   tenantID,
		CustomerID: customer.ID,
		SegmentID:  customer.SegmentID,
		AgentID:    agent.ID,
		OfficerID:  officer.ID,

		Amount:         req.Amount,
		TenorMonths:    req.TenorMonths,
		ProposedAmount: req.Amount,
		ProposedTenor:  req.TenorMonths,

		Status: domain.LoanPending,
		TopUp:  topUp,
	}
	underwriting.Reprice(loan, *customer, *policy, start)

	if err := s.loanRepository.Create(ctx, loan); err != nil {
		span.SetStatus(codes.Error, "Failed to create loan")
		span.RecordError(err)

		s.log.Error("Failed to create loan",
			zap.Uint64("customer_id", customer.ID),
			zap.String("trace_id", span.SpanContext().TraceID().String()),
			zap.Error(err),
		)

		s.errorCount.Add(ctx, 1,
			metric.WithAttributes(
				attribute.String("operation", "create_loan"),
				attribute.String("service", "loan"),
				attribute.String("error_type", "create_failed"),
			),
		)
		return nil, err
	}

	s.loansCreated.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("service", "loan"),
			attribute.Bool("loan.top_up", topUp),
		),
	)

	s.log.Info("Loan created",
		zap.Uint64("loan_id", loan.ID),
		zap.String("reference", loan.Reference),
		zap.Uint64("agent_id", agent.ID),
		zap.Uint64("officer_id", officer.ID),
		zap.Bool("top_up", topUp),
		zap.String("trace_id", span.SpanContext().TraceID().String()),
	)

	go s.dispatch(agent.Email, "New loan assigned",
		fmt.Sprintf("Loan %s for customer %s is awaiting review.", loan.Reference, customer.FullName))

	span.SetStatus(codes.Ok, "Loan created")
	span.SetAttributes(attribute.String("loan.reference", loan.Reference))

	return loan, nil
}

// pickAgent reuses the agent of the customer's active loan when one exists,
// marking the new application a top-up. A stale agent record falls back to
// a fresh pick.
func (s *loanService) pickAgent(ctx context.Context, tenantID uint64, customer *domain.Customer) (*domain.StaffMember, bool, error) {
	prior, err := s.loanRepository.FindActiveByCustomerID(ctx, customer.ID)
	if err != nil {
		return nil, false, err
	}

	if prior != nil {
		agent, err := s.staffRepository.FindByID(ctx, prior.AgentID)
		if err != nil {
			return nil, false, err
		}
		if agent != nil && agent.Active {
			return agent, true, nil
		}

		s.log.Warn("Prior agent unavailable, selecting a new one",
			zap.Uint64("customer_id", customer.ID),
			zap.Uint64("prior_agent_id", prior.AgentID),
		)

		agent, err = s.staffService.Select(ctx, tenantID, domain.LoanAgentRole, customer.SegmentID)
		if err != nil {
			return nil, false, err
		}
		return agent, true, nil
	}

	agent, err := s.staffService.Select(ctx, tenantID, domain.LoanAgentRole, customer.SegmentID)
	if err != nil {
		return nil, false, err
	}
	return agent, false, nil
}

// Transition moves a loan through its lifecycle under a row lock. Remark
// rules are enforced before any mutation: leaving PENDING or ON_HOLD needs
// a remark from the underwriting taxonomy. Re-approving an already active
// loan is a no-op so retried webhooks cannot double-activate.
func (s *loanService) Transition(ctx context.Context, loanID uint64, target domain.LoanStatus, remark string) (*domain.Loan, error) {
	ctx, span := s.tracer.Start(ctx, "service.TransitionLoan")
	defer span.End()

	start := s.now()
	defer s.recordDuration(ctx, "transition_loan", start)

	s.operationCount.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("operation", "transition_loan"),
			attribute.String("service", "loan"),
		),
	)

	span.SetAttributes(
		attribute.Int64("loan.id", int64(loanID)),
		attribute.String("loan.target_status", string(target)),
	)

	tx := s.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", tx.Error)
	}
	defer tx.Rollback()

	repoTx := loanrepo.NewLoanRepository(tx, s.meter, s.tracer, s.log)

	loan, err := repoTx.FindByIDForUpdate(ctx, loanID)
	if err != nil {
		span.SetStatus(codes.Error, "Failed to lock loan")
		span.RecordError(err)
		return nil, err
	}
	if loan == nil {
		span.SetStatus(codes.Error, "Loan not found")
		return nil, domain.ErrLoanNotFound
	}

	from := loan.Status
	changed, err := underwriting.ApplyTransition(loan, target, remark, s.now())
	if err != nil {
		span.SetStatus(codes.Error, "Transition rejected")

		var derr *domain.DomainError
		if errors.As(err, &derr) {
			s.log.Warn("Illegal loan transition rejected",
				zap.Uint64("loan_id", loan.ID),
				zap.String("current", string(loan.Status)),
				zap.String("target", string(target)),
				zap.String("trace_id", span.SpanContext().TraceID().String()),
			)

			s.errorCount.Add(ctx, 1,
				metric.WithAttributes(
					attribute.String("operation", "transition_loan"),
					attribute.String("service", "loan"),
					attribute.String("error_type", "illegal_transition"),
				),
			)
		}
		return nil, err
	}
	if !changed {
		span.SetStatus(codes.Ok, "Loan already active, no-op")
		return loan, nil
	}

	if err := repoTx.Save(ctx, loan); err != nil {
		span.SetStatus(codes.Error, "Failed to save loan")
		span.RecordError(err)
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.transitionCount.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("service", "loan"),
			attribute.String("loan.from_status", string(from)),
			attribute.String("loan.to_status", string(target)),
		),
	)

	s.log.Info("Loan transitioned",
		zap.Uint64("loan_id", loan.ID),
		zap.String("from", string(from)),
		zap.String("to", string(target)),
		zap.String("remark", loan.Remark),
		zap.String("trace_id", span.SpanContext().TraceID().String()),
	)

	s.notifyCustomer(ctx, loan, target)

	span.SetStatus(codes.Ok, "Loan transitioned")
	return loan, nil
}

func (s *loanService) notifyCustomer(ctx context.Context, loan *domain.Loan, target domain.LoanStatus) {
	var subject string
	switch target {
	case domain.LoanApproved:
		subject = "Your loan has been approved"
	case domain.LoanDenied:
		subject = "Your loan application was declined"
	default:
		return
	}

	customer, err := s.customerRepository.FindByID(ctx, loan.CustomerID)
	if err != nil || customer == nil || customer.Email == "" {
		return
	}

	go s.dispatch(customer.Email, subject,
		fmt.Sprintf("Reference %s. Decision recorded on %s.", loan.Reference, s.now().Format("2006-01-02")))
}

func (s *loanService) dispatch(recipient, subject, body string) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.sender.Send(ctx, recipient, subject, body); err != nil {
		s.log.Warn("Notification delivery failed",
			zap.String("recipient", recipient),
			zap.String("subject", subject),
			zap.Error(err),
		)
	}
}

// UpdateTerms overwrites the recommended amount and tenor of an unlocked
// application, range-checks them against the policy band, and reprices and
// re-evaluates so the stored economics never drift from the stored terms.
func (s *loanService) UpdateTerms(ctx context.Context, loanID uint64, amount float64, tenorMonths int) (*domain.Loan, error) {
	ctx, span := s.tracer.Start(ctx, "service.UpdateLoanTerms")
	defer span.End()

	start := s.now()
	defer s.recordDuration(ctx, "update_terms", start)

	s.operationCount.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("operation", "update_terms"),
			attribute.String("service", "loan"),
		),
	)

	tx := s.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", tx.Error)
	}
	defer tx.Rollback()

	repoTx := loanrepo.NewLoanRepository(tx, s.meter, s.tracer, s.log)

	loan, err := repoTx.FindByIDForUpdate(ctx, loanID)
	if err != nil {
		span.SetStatus(codes.Error, "Failed to lock loan")
		span.RecordError(err)
		return nil, err
	}
	if loan == nil {
		span.SetStatus(codes.Error, "Loan not found")
		return nil, domain.ErrLoanNotFound
	}

	if err := loan.CanEditTerms(); err != nil {
		span.SetStatus(codes.Error, "Loan terms are locked")
		return nil, err
	}

	customer, err := s.customerRepository.FindByID(ctx, loan.CustomerID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	if customer == nil {
		return nil, domain.ErrCustomerNotFound
	}

	policy, err := s.segmentRepository.FindBandForNetPay(ctx, loan.TenantID, loan.SegmentID, customer.NetPay)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	if policy == nil {
		return nil, domain.ErrSegmentPolicyNotFound
	}

	if amount < policy.MinLoanAmount || amount > policy.MaxLoanAmount {
		span.SetStatus(codes.Error, "Amount outside policy range")
		return nil, &domain.ValidationError{Kind: domain.ValidationOutOfRange, Field: "amount"}
	}
	if tenorMonths < policy.MinTenorMonths || tenorMonths > policy.MaxTenorMonths {
		span.SetStatus(codes.Error, "Tenor outside policy range")
		return nil, &domain.ValidationError{Kind: domain.ValidationOutOfRange, Field: "tenor_months"}
	}

	loan.Amount = amount
	loan.TenorMonths = tenorMonths
	loan.ProposedAmount = amount
	loan.ProposedTenor = tenorMonths
	underwriting.Reprice(loan, *customer, *policy, s.now())

	if err := repoTx.Save(ctx, loan); err != nil {
		span.SetStatus(codes.Error, "Failed to save loan")
		span.RecordError(err)
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.log.Info("Loan terms updated",
		zap.Uint64("loan_id", loan.ID),
		zap.Float64("amount", amount),
		zap.Int("tenor_months", tenorMonths),
		zap.Float64("repayment", loan.Repayment),
		zap.String("trace_id", span.SpanContext().TraceID().String()),
	)

	span.SetStatus(codes.Ok, "Loan terms updated")
	return loan, nil
}

// Get implements service.LoanServices.
func (s *loanService) Get(ctx context.Context, loanID uint64) (*domain.Loan, error) {
	ctx, span := s.tracer.Start(ctx, "service.GetLoan")
	defer span.End()

	loan, err := s.loanRepository.FindByID(ctx, loanID)
	if err != nil {
		span.SetStatus(codes.Error, "Failed to fetch loan")
		span.RecordError(err)
		return nil, err
	}
	if loan == nil {
		return nil, domain.ErrLoanNotFound
	}

	span.SetStatus(codes.Ok, "Loan retrieved")
	return loan, nil
}

// List implements service.LoanServices.
func (s *loanService) List(ctx context.Context, tenantID uint64, params domain.Params) (*domain.Paginated, error) {
	ctx, span := s.tracer.Start(ctx, "service.ListLoans")
	defer span.End()

	loans, total, err := s.loanRepository.FindPaginated(ctx, tenantID, params)
	if err != nil {
		span.SetStatus(codes.Error, "Failed to fetch loans")
		span.RecordError(err)
		return nil, err
	}

	totalPages := 0
	if params.Limit > 0 {
		totalPages = int(math.Ceil(float64(total) / float64(params.Limit)))
	}

	span.SetStatus(codes.Ok, "Loans retrieved")
	return &domain.Paginated{
		Data:       loans,
		Total:      total,
		Page:       params.Page,
		Limit:      params.Limit,
		TotalPages: totalPages,
	}, nil
}

// SweepMatured closes every active loan whose maturity date has passed.
// Each loan is re-locked and re-checked inside its own transaction, so a
// concurrent liquidation between the scan and the close wins.
func (s *loanService) SweepMatured(ctx context.Context) (int, error) {
	ctx, span := s.tracer.Start(ctx, "service.SweepMaturedLoans")
	defer span.End()

	start := s.now()
	defer s.recordDuration(ctx, "sweep_matured", start)

	matured, err := s.loanRepository.FindMatured(ctx, start)
	if err != nil {
		span.SetStatus(codes.Error, "Failed to scan matured loans")
		span.RecordError(err)
		return 0, err
	}

	closed := 0
	for _, candidate := range matured {
		if err := s.closeMatured(ctx, candidate.ID); err != nil {
			s.log.Error("Failed to close matured loan",
				zap.Uint64("loan_id", candidate.ID),
				zap.String("trace_id", span.SpanContext().TraceID().String()),
				zap.Error(err),
			)
			continue
		}
		closed++
	}

	if closed > 0 {
		s.sweepCompleted.Add(ctx, int64(closed),
			metric.WithAttributes(attribute.String("service", "loan")),
		)

		s.log.Info("Matured loans completed",
			zap.Int("scanned", len(matured)),
			zap.Int("closed", closed),
			zap.String("trace_id", span.SpanContext().TraceID().String()),
		)
	}

	span.SetStatus(codes.Ok, "Sweep finished")
	span.SetAttributes(attribute.Int("loans.closed", closed))

	return closed, nil
}

func (s *loanService) closeMatured(ctx context.Context, loanID uint64) error {
	tx := s.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return fmt.Errorf("failed to begin transaction: %w", tx.Error)
	}
	defer tx.Rollback()

	repoTx := loanrepo.NewLoanRepository(tx, s.meter, s.tracer, s.log)

	loan, err := repoTx.FindByIDForUpdate(ctx, loanID)
	if err != nil {
		return err
	}
	if loan == nil || !loan.Active {
		return nil
	}

	if _, err := underwriting.ApplyTransition(loan, domain.LoanCompleted, "", s.now()); err != nil {
		return nil
	}

	if err := repoTx.Save(ctx, loan); err != nil {
		return err
	}
	return tx.Commit().Error
}

func NewLoanService(
	db *gorm.DB,
	loanRepository repository.LoanRepository,
	customerRepository repository.CustomerRepository,
	segmentRepository repository.SegmentConfigRepository,
	staffRepository repository.StaffRepository,
	staffService service.StaffServices,
	sender notify.Sender,
	now func() time.Time,
	meter metric.Meter,
	tracer trace.Tracer,
	log *zap.Logger,
) service.LoanServices {
	if now == nil {
		now = time.Now
	}

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

	loansCreated, _ := meter.Int64Counter(
		"service.loans.created",
		metric.WithDescription("Number of loans created"),
		metric.WithUnit("{loan}"),
	)

	transitionCount, _ := meter.Int64Counter(
		"service.loans.transitioned",
		metric.WithDescription("Number of loan lifecycle transitions"),
		metric.WithUnit("{transition}"),
	)

	sweepCompleted, _ := meter.Int64Counter(
		"service.loans.swept",
		metric.WithDescription("Number of matured loans completed by the sweeper"),
		metric.WithUnit("{loan}"),
	)

	requestDuration, _ := meter.Float64Histogram(
		"service.operation.duration",
		metric.WithDescription("Duration of service operations"),
		metric.WithUnit("ms"),
	)

	return &loanService{
		db:                 db,
		loanRepository:     loanRepository,
		customerRepository: customerRepository,
		segmentRepository:  segmentRepository,
		staffRepository:    staffRepository,
		staffService:       staffService,
		sender:             sender,
		now:                now,

		meter:           meter,
		tracer:          tracer,
		log:             log,
		operationCount:  operationCount,
		errorCount:      errorCount,
		loansCreated:    loansCreated,
		transitionCount: transitionCount,
		sweepCompleted:  sweepCompleted,
		requestDuration: requestDuration,
	}
}
