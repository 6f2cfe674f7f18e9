package customerrepo

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

type customerRepository struct {
	db     *gorm.DB
	meter  metric.Meter
	tracer trace.Tracer
	log    *zap.Logger
}

// Create implements CustomerRepository.
func (c *customerRepository) Create(ctx context.Context, customer *domain.Customer) (*domain.Customer, error) {
	ctx, span := c.tracer.Start(ctx, "repository.CreateCustomer")
	defer span.End()

	span.SetAttributes(
		attribute.String("db.operation", "insert"),
		attribute.String("db.table", "customers"),
		attribute.Int64("tenant.id", int64(customer.TenantID)),
	)

	record := model.CustomerFromEntity(customer)
	if err := c.db.WithContext(ctx).Create(&record).Error; err != nil {
		span.SetStatus(codes.Error, "Error creating customer")
		span.RecordError(err)

		c.log.Error("Error creating customer",
			zap.Uint64("tenant_id", customer.TenantID),
			zap.String("trace_id", span.SpanContext().TraceID().String()),
			zap.Error(err),
		)
		return nil, err
	}

	span.SetStatus(codes.Ok, "Customer created successfully")
	span.SetAttributes(attribute.Int64("customer.id", int64(record.ID)))

	return model.CustomerToEntity(record), nil
}

// FindByID implements CustomerRepository.
func (c *customerRepository) FindByID(ctx context.Context, id uint64) (*domain.Customer, error) {
	ctx, span := c.tracer.Start(ctx, "repository.FindCustomerByID")
	defer span.End()

	var record model.Customer
	err := c.db.WithContext(ctx).First(&record, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		span.RecordError(err)

		c.log.Error("Error finding customer by ID",
			zap.Uint64("customer_id", id),
			zap.String("trace_id", span.SpanContext().TraceID().String()),
			zap.Error(err),
		)
		return nil, err
	}

	return model.CustomerToEntity(record), nil
}

// UpdateFields applies a partial update to a customer record.
func (c *customerRepository) UpdateFields(ctx context.Context, id uint64, fields map[string]any) error {
	ctx, span := c.tracer.Start(ctx, "repository.UpdateCustomerFields")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("customer.id", int64(id)),
		attribute.Int("fields.count", len(fields)),
	)

	result := c.db.WithContext(ctx).Model(&model.Customer{}).Where("id = ?", id).Updates(fields)
	if result.Error != nil {
		span.SetStatus(codes.Error, "Error updating customer fields")
		span.RecordError(result.Error)

		c.log.Error("Error updating customer fields",
			zap.Uint64("customer_id", id),
			zap.String("trace_id", span.SpanContext().TraceID().String()),
			zap.Error(result.Error),
		)
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	span.SetStatus(codes.Ok, "Customer fields updated")
	return nil
}

// FindPaginated implements CustomerRepository.
func (c *customerRepository) FindPaginated(ctx context.Context, tenantID uint64, params domain.Params) ([]domain.Customer, int64, error) {
	ctx, span := c.tracer.Start(ctx, "repository.FindPaginatedCustomers")
	defer span.End()

	query := c.db.WithContext(ctx).Model(&model.Customer{}).Where("tenant_id = ?", tenantID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		span.RecordError(err)
		return nil, 0, err
	}

	offset := (params.Page - 1) * params.Limit

	var records []model.Customer
	err := query.Order("created_at DESC").Limit(params.Limit).Offset(offset).Find(&records).Error
	if err != nil {
		span.RecordError(err)

		c.log.Error("Error finding paginated customers",
			zap.Uint64("tenant_id", tenantID),
			zap.String("trace_id", span.SpanContext().TraceID().String()),
			zap.Error(err),
		)
		return nil, 0, err
	}

	return model.CustomersToEntity(records), total, nil
}

func NewCustomerRepository(
	db *gorm.DB,
	meter metric.Meter,
	tracer trace.Tracer,
	log *zap.Logger,
) repository.CustomerRepository {
	return &customerRepository{
		db:     db,
		meter:  meter,
		tracer: tracer,
		log:    log,
	}
}
