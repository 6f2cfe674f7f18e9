package repository

import (
	"context"
	"time"

	"github.com/lendora/backoffice/internal/domain"
)

type StaffRepository interface {
	Create(ctx context.Context, staff *domain.StaffMember) error
	FindByID(ctx context.Context, id uint64) (*domain.StaffMember, error)
	FindByEmail(ctx context.Context, email string) (*domain.StaffMember, error)
	FindPool(ctx context.Context, tenantID uint64, role domain.Role) ([]domain.StaffMember, error)
	Update(ctx context.Context, staff *domain.StaffMember) error
	FindPaginated(ctx context.Context, tenantID uint64, params domain.Params) ([]domain.StaffMember, int64, error)
}

type CustomerRepository interface {
	Create(ctx context.Context, customer *domain.Customer) (*domain.Customer, error)
	FindByID(ctx context.Context, id uint64) (*domain.Customer, error)
	UpdateFields(ctx context.Context, id uint64, fields map[string]any) error
	FindPaginated(ctx context.Context, tenantID uint64, params domain.Params) ([]domain.Customer, int64, error)
}

type SegmentConfigRepository interface {
	Create(ctx context.Context, config *domain.SegmentConfig) (*domain.SegmentConfig, error)
	Update(ctx context.Context, config *domain.SegmentConfig) error
	FindByID(ctx context.Context, id uint64) (*domain.SegmentConfig, error)
	FindActiveByTenantAndSegment(ctx context.Context, tenantID, segmentID uint64) ([]domain.SegmentConfig, error)
	FindBandForNetPay(ctx context.Context, tenantID, segmentID uint64, netPay float64) (*domain.SegmentConfig, error)
}

type LoanRepository interface {
	Create(ctx context.Context, loan *domain.Loan) error
	FindByID(ctx context.Context, id uint64) (*domain.Loan, error)
	FindByIDForUpdate(ctx context.Context, id uint64) (*domain.Loan, error)
	Save(ctx context.Context, loan *domain.Loan) error
	UpdateFields(ctx context.Context, id uint64, fields map[string]any) error
	FindActiveByCustomerID(ctx context.Context, customerID uint64) (*domain.Loan, error)
	FindOpenByCustomerID(ctx context.Context, customerID uint64) ([]domain.Loan, error)
	FindMatured(ctx context.Context, asOf time.Time) ([]domain.Loan, error)
	FindPaginated(ctx context.Context, tenantID uint64, params domain.Params) ([]domain.Loan, int64, error)
}

type PendingEditRepository interface {
	Create(ctx context.Context, edit *domain.PendingEdit) (*domain.PendingEdit, error)
	FindByID(ctx context.Context, id uint64) (*domain.PendingEdit, error)
	FindByIDForUpdate(ctx context.Context, id uint64) (*domain.PendingEdit, error)
	Save(ctx context.Context, edit *domain.PendingEdit) error
	FindPaginated(ctx context.Context, tenantID uint64, params domain.Params) ([]domain.PendingEdit, int64, error)
}
