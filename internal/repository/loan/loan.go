package loanrepo

import (
	"context"
	"errors"
	"time"

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

type loanRepository struct {
	db                 *gorm.DB
	meter              metric.Meter
	tracer             trace.Tracer
	log                *zap.Logger
	queryDuration      metric.Float64Histogram
	queryCount         metric.Int64Counter
	errorCount         metric.Int64Counter
	documentsInserted  metric.Int64Counter
	documentsRetrieved metric.Int64Counter
}

// Create implements LoanRepository.
func (l *loanRepository) Create(ctx context.Context, loan *domain.Loan) error {
	ctx, span := l.tracer.Start(ctx, "repository.CreateLoan")
	defer span.End()

	start := time.Now()

	l.log.Debug("Creating loan",
		zap.Uint64("tenant_id", loan.TenantID),
		zap.Uint64("customer_id", loan.CustomerID),
		zap.String("trace_id", span.SpanContext().TraceID().String()),
	)

	l.queryCount.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("operation", "insert"),
			attribute.String("table", "loans"),
		),
	)

	span.SetAttributes(
		attribute.String("db.operation", "insert"),
		attribute.String("db.table", "loans"),
		attribute.Int64("tenant.id", int64(loan.TenantID)),
	)

	record := model.LoanFromEntity(loan)
	if err := l.db.WithContext(ctx).Create(&record).Error; err != nil {
		span.SetStatus(codes.Error, "Error creating loan")
		span.RecordError(err)

		l.log.Error("Error creating loan",
			zap.Uint64("customer_id", loan.CustomerID),
			zap.String("trace_id", span.SpanContext().TraceID().String()),
			zap.Error(err),
		)

		l.errorCount.Add(ctx, 1,
			metric.WithAttributes(
				attribute.String("operation", "insert"),
				attribute.String("table", "loans"),
				attribute.String("error", err.Error()),
			),
		)

		l.recordDuration(ctx, start, "insert", "error")
		return err
	}

	loan.ID = record.ID
	loan.CreatedAt = record.CreatedAt
	loan.UpdatedAt = record.UpdatedAt

	l.documentsInserted.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("table", "loans"),
		),
	)

	l.recordDuration(ctx, start, "insert", "success")

	span.SetStatus(codes.Ok, "Loan created successfully")
	span.SetAttributes(attribute.Int64("loan.id", int64(record.ID)))

	return nil
}

// FindByID implements LoanRepository.
func (l *loanRepository) FindByID(ctx context.Context, id uint64) (*domain.Loan, error) {
	ctx, span := l.tracer.Start(ctx, "repository.FindLoanByID")
	defer span.End()

	start := time.Now()

	l.queryCount.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("operation", "select"),
			attribute.String("table", "loans"),
		),
	)

	span.SetAttributes(
		attribute.String("db.operation", "select"),
		attribute.String("db.table", "loans"),
		attribute.Int64("loan.id", int64(id)),
	)

	var record model.Loan
	err := l.db.WithContext(ctx).First(&record, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			span.SetStatus(codes.Ok, "Loan not found")
			l.recordDuration(ctx, start, "select", "success")
			return nil, nil
		}

		span.SetStatus(codes.Error, "Error finding loan by ID")
		span.RecordError(err)

		l.log.Error("Error finding loan by ID",
			zap.Uint64("loan_id", id),
			zap.String("trace_id", span.SpanContext().TraceID().String()),
			zap.Error(err),
		)

		l.errorCount.Add(ctx, 1,
			metric.WithAttributes(
				attribute.String("operation", "select"),
				attribute.String("table", "loans"),
				attribute.String("error", err.Error()),
			),
		)

		l.recordDuration(ctx, start, "select", "error")
		return nil, err
	}

	l.documentsRetrieved.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("table", "loans"),
		),
	)

	l.recordDuration(ctx, start, "select", "success")
	span.SetStatus(codes.Ok, "Loan found successfully")

	return model.LoanToEntity(record), nil
}

// FindByIDForUpdate locks the loan row for the duration of the surrounding
// transaction. Callers must run inside one.
func (l *loanRepository) FindByIDForUpdate(ctx context.Context, id uint64) (*domain.Loan, error) {
	ctx, span := l.tracer.Start(ctx, "repository.FindLoanByIDForUpdate")
	defer span.End()

	span.SetAttributes(
		attribute.String("db.operation", "select_for_update"),
		attribute.String("db.table", "loans"),
		attribute.Int64("loan.id", int64(id)),
	)

	var record model.Loan
	err := l.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&record, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			span.SetStatus(codes.Ok, "Loan not found")
			return nil, nil
		}

		span.SetStatus(codes.Error, "Error locking loan row")
		span.RecordError(err)

		l.log.Error("Error locking loan row",
			zap.Uint64("loan_id", id),
			zap.String("trace_id", span.SpanContext().TraceID().String()),
			zap.Error(err),
		)
		return nil, err
	}

	span.SetStatus(codes.Ok, "Loan row locked")
	return model.LoanToEntity(record), nil
}

// Save implements LoanRepository.
func (l *loanRepository) Save(ctx context.Context, loan *domain.Loan) error {
	ctx, span := l.tracer.Start(ctx, "repository.SaveLoan")
	defer span.End()

	start := time.Now()

	l.queryCount.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("operation", "update"),
			attribute.String("table", "loans"),
		),
	)

	record := model.LoanFromEntity(loan)
	if err := l.db.WithContext(ctx).Save(&record).Error; err != nil {
		span.SetStatus(codes.Error, "Error saving loan")
		span.RecordError(err)

		l.log.Error("Error saving loan",
			zap.Uint64("loan_id", loan.ID),
			zap.String("trace_id", span.SpanContext().TraceID().String()),
			zap.Error(err),
		)

		l.errorCount.Add(ctx, 1,
			metric.WithAttributes(
				attribute.String("operation", "update"),
				attribute.String("table", "loans"),
				attribute.String("error", err.Error()),
			),
		)

		l.recordDuration(ctx, start, "update", "error")
		return err
	}

	l.recordDuration(ctx, start, "update", "success")
	span.SetStatus(codes.Ok, "Loan saved successfully")

	return nil
}

// UpdateFields implements LoanRepository.
func (l *loanRepository) UpdateFields(ctx context.Context, id uint64, fields map[string]any) error {
	ctx, span := l.tracer.Start(ctx, "repository.UpdateLoanFields")
	defer span.End()

	span.SetAttributes(
		attribute.String("db.operation", "update"),
		attribute.String("db.table", "loans"),
		attribute.Int64("loan.id", int64(id)),
		attribute.Int("fields.count", len(fields)),
	)

	result := l.db.WithContext(ctx).Model(&model.Loan{}).Where("id = ?", id).Updates(fields)
	if result.Error != nil {
		span.SetStatus(codes.Error, "Error updating loan fields")
		span.RecordError(result.Error)

		l.log.Error("Error updating loan fields",
			zap.Uint64("loan_id", id),
			zap.String("trace_id", span.SpanContext().TraceID().String()),
			zap.Error(result.Error),
		)
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	span.SetStatus(codes.Ok, "Loan fields updated")
	return nil
}

// FindActiveByCustomerID returns the customer's currently active loan, or
// nil when none exists.
func (l *loanRepository) FindActiveByCustomerID(ctx context.Context, customerID uint64) (*domain.Loan, error) {
	ctx, span := l.tracer.Start(ctx, "repository.FindActiveLoanByCustomerID")
	defer span.End()

	span.SetAttributes(
		attribute.String("db.operation", "select"),
		attribute.String("db.table", "loans"),
		attribute.Int64("customer.id", int64(customerID)),
	)

	var record model.Loan
	err := l.db.WithContext(ctx).
		Where("customer_id = ? AND active = ?", customerID, true).
		Order("created_at DESC").
		First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			span.SetStatus(codes.Ok, "No active loan")
			return nil, nil
		}

		span.SetStatus(codes.Error, "Error finding active loan")
		span.RecordError(err)

		l.log.Error("Error finding active loan",
			zap.Uint64("customer_id", customerID),
			zap.String("trace_id", span.SpanContext().TraceID().String()),
			zap.Error(err),
		)
		return nil, err
	}

	span.SetStatus(codes.Ok, "Active loan found")
	return model.LoanToEntity(record), nil
}

// FindOpenByCustomerID returns the customer's loans still under review,
// i.e. unlocked and awaiting a decision.
func (l *loanRepository) FindOpenByCustomerID(ctx context.Context, customerID uint64) ([]domain.Loan, error) {
	ctx, span := l.tracer.Start(ctx, "repository.FindOpenLoansByCustomerID")
	defer span.End()

	span.SetAttributes(
		attribute.String("db.operation", "select"),
		attribute.String("db.table", "loans"),
		attribute.Int64("customer.id", int64(customerID)),
	)

	var records []model.Loan
	err := l.db.WithContext(ctx).
		Where("customer_id = ? AND locked = ? AND status IN ?",
			customerID, false, []string{string(domain.LoanPending), string(domain.LoanOnHold)}).
		Find(&records).Error
	if err != nil {
		span.SetStatus(codes.Error, "Error finding open loans")
		span.RecordError(err)

		l.log.Error("Error finding open loans",
			zap.Uint64("customer_id", customerID),
			zap.String("trace_id", span.SpanContext().TraceID().String()),
			zap.Error(err),
		)
		return nil, err
	}

	span.SetStatus(codes.Ok, "Open loans found")
	span.SetAttributes(attribute.Int("result.retrieved", len(records)))

	return model.LoansToEntity(records), nil
}

// FindMatured returns active loans whose maturity date has arrived as of
// the given day.
func (l *loanRepository) FindMatured(ctx context.Context, asOf time.Time) ([]domain.Loan, error) {
	ctx, span := l.tracer.Start(ctx, "repository.FindMaturedLoans")
	defer span.End()

	start := time.Now()

	l.queryCount.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("operation", "select"),
			attribute.String("table", "loans"),
		),
	)

	day := time.Date(asOf.Year(), asOf.Month(), asOf.Day(), 0, 0, 0, 0, time.UTC)

	var records []model.Loan
	err := l.db.WithContext(ctx).
		Where("active = ? AND maturity_date IS NOT NULL AND maturity_date <= ?", true, day).
		Find(&records).Error
	if err != nil {
		span.SetStatus(codes.Error, "Error finding matured loans")
		span.RecordError(err)

		l.log.Error("Error finding matured loans",
			zap.Time("as_of", day),
			zap.String("trace_id", span.SpanContext().TraceID().String()),
			zap.Error(err),
		)

		l.errorCount.Add(ctx, 1,
			metric.WithAttributes(
				attribute.String("operation", "select"),
				attribute.String("table", "loans"),
				attribute.String("error", err.Error()),
			),
		)

		l.recordDuration(ctx, start, "select", "error")
		return nil, err
	}

	l.documentsRetrieved.Add(ctx, int64(len(records)),
		metric.WithAttributes(
			attribute.String("table", "loans"),
		),
	)

	l.recordDuration(ctx, start, "select", "success")
	span.SetStatus(codes.Ok, "Matured loans found")
	span.SetAttributes(attribute.Int("result.retrieved", len(records)))

	return model.LoansToEntity(records), nil
}

// FindPaginated implements LoanRepository.
func (l *loanRepository) FindPaginated(ctx context.Context, tenantID uint64, params domain.Params) ([]domain.Loan, int64, error) {
	ctx, span := l.tracer.Start(ctx, "repository.FindPaginatedLoans")
	defer span.End()

	query := l.db.WithContext(ctx).Model(&model.Loan{}).Where("tenant_id = ?", tenantID)
	if params.Status != "" {
		query = query.Where("status = ?", params.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		span.SetStatus(codes.Error, "Error counting loans")
		span.RecordError(err)
		return nil, 0, err
	}

	offset := (params.Page - 1) * params.Limit

	var records []model.Loan
	err := query.Order("created_at DESC").Limit(params.Limit).Offset(offset).Find(&records).Error
	if err != nil {
		span.SetStatus(codes.Error, "Error finding loans")
		span.RecordError(err)

		l.log.Error("Error finding paginated loans",
			zap.Uint64("tenant_id", tenantID),
			zap.String("trace_id", span.SpanContext().TraceID().String()),
			zap.Error(err),
		)
		return nil, 0, err
	}

	span.SetStatus(codes.Ok, "Loans found successfully")
	span.SetAttributes(attribute.Int("result.retrieved", len(records)))

	return model.LoansToEntity(records), total, nil
}

func (l *loanRepository) recordDuration(ctx context.Context, start time.Time, operation, status string) {
	duration := float64(time.Since(start).Milliseconds())
	l.queryDuration.Record(ctx, duration,
		metric.WithAttributes(
			attribute.String("operation", operation),
			attribute.String("table", "loans"),
			attribute.String("status", status),
		),
	)
}

func NewLoanRepository(
	db *gorm.DB,
	meter metric.Meter,
	tracer trace.Tracer,
	log *zap.Logger,
) repository.LoanRepository {
	queryDuration, _ := meter.Float64Histogram(
		"repository.query.duration",
		metric.WithDescription("Duration of repository queries"),
		metric.WithUnit("ms"),
	)

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

	documentsInserted, _ := meter.Int64Counter(
		"repository.documents.inserted",
		metric.WithDescription("Number of documents inserted"),
		metric.WithUnit("{document}"),
	)

	documentsRetrieved, _ := meter.Int64Counter(
		"repository.documents.retrieved",
		metric.WithDescription("Number of documents retrieved"),
		metric.WithUnit("{document}"),
	)

	return &loanRepository{
		db:                 db,
		meter:              meter,
		tracer:             tracer,
		log:                log,
		queryDuration:      queryDuration,
		queryCount:         queryCount,
		errorCount:         errorCount,
		documentsInserted:  documentsInserted,
		documentsRetrieved: documentsRetrieved,
	}
}
