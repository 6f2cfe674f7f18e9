package customersrv

import (
	"context"
	"math"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/lendora/backoffice/internal/domain"
	"github.com/lendora/backoffice/internal/repository"
	"github.com/lendora/backoffice/internal/service"
)

type customerService struct {
	db                 *gorm.DB
	customerRepository repository.CustomerRepository

	meter            metric.Meter
	tracer           trace.Tracer
	log              *zap.Logger
	operationCount   metric.Int64Counter
	customersCreated metric.Int64Counter
}

// Create implements service.CustomerServices.
func (s *customerService) Create(ctx context.Context, customer *domain.Customer) (*domain.Customer, error) {
	ctx, span := s.tracer.Start(ctx, "service.CreateCustomer")
	defer span.End()

	s.operationCount.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("operation", "create_customer"),
			attribute.String("service", "customer"),
		),
	)

	created, err := s.customerRepository.Create(ctx, customer)
	if err != nil {
		span.SetStatus(codes.Error, "Failed to create customer")
		span.RecordError(err)

		s.log.Error("Failed to create customer",
			zap.Uint64("tenant_id", customer.TenantID),
			zap.String("trace_id", span.SpanContext().TraceID().String()),
			zap.Error(err),
		)
		return nil, err
	}

	s.customersCreated.Add(ctx, 1,
		metric.WithAttributes(attribute.String("service", "customer")),
	)

	s.log.Info("Customer created",
		zap.Uint64("customer_id", created.ID),
		zap.Uint64("tenant_id", created.TenantID),
		zap.Uint64("segment_id", created.SegmentID),
		zap.String("trace_id", span.SpanContext().TraceID().String()),
	)

	span.SetStatus(codes.Ok, "Customer created")
	return created, nil
}

// Get implements service.CustomerServices.
func (s *customerService) Get(ctx context.Context, customerID uint64) (*domain.Customer, error) {
	ctx, span := s.tracer.Start(ctx, "service.GetCustomer")
	defer span.End()

	customer, err := s.customerRepository.FindByID(ctx, customerID)
	if err != nil {
		span.SetStatus(codes.Error, "Failed to fetch customer")
		span.RecordError(err)
		return nil, err
	}
	if customer == nil {
		return nil, domain.ErrCustomerNotFound
	}

	span.SetStatus(codes.Ok, "Customer retrieved")
	return customer, nil
}

// List implements service.CustomerServices.
func (s *customerService) List(ctx context.Context, tenantID uint64, params domain.Params) (*domain.Paginated, error) {
	ctx, span := s.tracer.Start(ctx, "service.ListCustomers")
	defer span.End()

	customers, total, err := s.customerRepository.FindPaginated(ctx, tenantID, params)
	if err != nil {
		span.SetStatus(codes.Error, "Failed to fetch customers")
		span.RecordError(err)
		return nil, err
	}

	totalPages := 0
	if params.Limit > 0 {
		totalPages = int(math.Ceil(float64(total) / float64(params.Limit)))
	}

	span.SetStatus(codes.Ok, "Customers retrieved")
	return &domain.Paginated{
		Data:       customers,
		Total:      total,
		Page:       params.Page,
		Limit:      params.Limit,
		TotalPages: totalPages,
	}, nil
}

func NewCustomerService(
	db *gorm.DB,
	customerRepository repository.CustomerRepository,
	meter metric.Meter,
	tracer trace.Tracer,
	log *zap.Logger,
) service.CustomerServices {
	operationCount, _ := meter.Int64Counter(
		"service.operation.count",
		metric.WithDescription("Number of service operations"),
		metric.WithUnit("{operation}"),
	)

	customersCreated, _ := meter.Int64Counter(
		"service.customers.created",
		metric.WithDescription("Number of customers created"),
		metric.WithUnit("{customer}"),
	)

	return &customerService{
		db:                 db,
		customerRepository: customerRepository,

		meter:            meter,
		tracer:           tracer,
		log:              log,
		operationCount:   operationCount,
		customersCreated: customersCreated,
	}
}
