package privatesrv

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/lendora/backoffice/internal/domain"
	"github.com/lendora/backoffice/internal/dto"
	"github.com/lendora/backoffice/internal/repository"
	"github.com/lendora/backoffice/internal/service"
	"github.com/lendora/backoffice/pkg/password"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type privateService struct {
	db              *gorm.DB
	staffRepository repository.StaffRepository

	jwtSecret string

	meter          metric.Meter
	tracer         trace.Tracer
	log            *zap.Logger
	operationCount metric.Int64Counter
	errorCount     metric.Int64Counter
	loginsIssued   metric.Int64Counter
}

// Login implements service.PrivateService.
func (p *privateService) Login(ctx context.Context, data dto.LoginRequest) (*dto.LoginResponse, error) {
	ctx, span := p.tracer.Start(ctx, "service.Login")
	defer span.End()

	p.operationCount.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("operation", "login"),
			attribute.String("service", "private"),
		),
	)

	staff, err := p.staffRepository.FindByEmail(ctx, data.Email)
	if err != nil {
		span.SetStatus(codes.Error, "Failed to fetch staff member")
		span.RecordError(err)
		return nil, err
	}
	if staff == nil || !staff.Active || !password.CheckPasswordHash(data.Password, staff.Password) {
		p.errorCount.Add(ctx, 1,
			metric.WithAttributes(
				attribute.String("operation", "login"),
				attribute.String("service", "private"),
				attribute.String("error_type", "invalid_credentials"),
			),
		)
		return nil, domain.ErrInvalidCredentials
	}

	claims := &domain.JwtCustomClaims{
		StaffID:  staff.ID,
		TenantID: staff.TenantID,
		Role:     staff.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour * 72)),
			Issuer:    "lendora",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString([]byte(p.jwtSecret))
	if err != nil {
		span.SetStatus(codes.Error, "Failed to sign token")
		span.RecordError(err)
		return nil, err
	}

	p.loginsIssued.Add(ctx, 1,
		metric.WithAttributes(attribute.String("service", "private")),
	)

	p.log.Info("Staff login",
		zap.Uint64("staff_id", staff.ID),
		zap.Uint64("tenant_id", staff.TenantID),
		zap.String("role", string(staff.Role)),
		zap.String("trace_id", span.SpanContext().TraceID().String()),
	)

	span.SetStatus(codes.Ok, "Login succeeded")
	return &dto.LoginResponse{Token: signedToken}, nil
}

func NewPrivateService(
	db *gorm.DB,
	jwtSecret string,
	staffRepository repository.StaffRepository,
	meter metric.Meter,
	tracer trace.Tracer,
	log *zap.Logger,
) service.PrivateService {
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

	loginsIssued, _ := meter.Int64Counter(
		"service.logins.issued",
		metric.WithDescription("Number of successful staff logins"),
		metric.WithUnit("{login}"),
	)

	return &privateService{
		db:              db,
		staffRepository: staffRepository,

		jwtSecret: jwtSecret,

		meter:          meter,
		tracer:         tracer,
		log:            log,
		operationCount: operationCount,
		errorCount:     errorCount,
		loginsIssued:   loginsIssued,
	}
}
