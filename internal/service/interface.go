package service

import (
	"context"

	"github.com/lendora/backoffice/internal/domain"
	"github.com/lendora/backoffice/internal/dto"
)

type PrivateService interface {
	Login(ctx context.Context, data dto.LoginRequest) (*dto.LoginResponse, error)
}

type SegmentServices interface {
	ValidateAndSave(ctx context.Context, config *domain.SegmentConfig) (*domain.SegmentConfig, error)
	ListBands(ctx context.Context, tenantID, segmentID uint64) ([]domain.SegmentConfig, error)
}

type StaffServices interface {
	Create(ctx context.Context, staff *domain.StaffMember, plainPassword string) (*domain.StaffMember, error)
	Verify(ctx context.Context, staffID uint64) error
	Select(ctx context.Context, tenantID uint64, role domain.Role, segmentID uint64) (*domain.StaffMember, error)
	List(ctx context.Context, tenantID uint64, params domain.Params) (*domain.Paginated, error)
}

type LoanServices interface {
	Create(ctx context.Context, tenantID uint64, req dto.CreateLoanRequest) (*domain.Loan, error)
	Transition(ctx context.Context, loanID uint64, target domain.LoanStatus, remark string) (*domain.Loan, error)
	UpdateTerms(ctx context.Context, loanID uint64, amount float64, tenorMonths int) (*domain.Loan, error)
	Get(ctx context.Context, loanID uint64) (*domain.Loan, error)
	List(ctx context.Context, tenantID uint64, params domain.Params) (*domain.Paginated, error)
	SweepMatured(ctx context.Context) (int, error)
}

type EditServices interface {
	Submit(ctx context.Context, edit *domain.PendingEdit) (*domain.PendingEdit, error)
	Resolve(ctx context.Context, editID uint64, decision string, remark string, reviewerID uint64) (*domain.PendingEdit, error)
	List(ctx context.Context, tenantID uint64, params domain.Params) (*domain.Paginated, error)
}

type CustomerServices interface {
	Create(ctx context.Context, customer *domain.Customer) (*domain.Customer, error)
	Get(ctx context.Context, customerID uint64) (*domain.Customer, error)
	List(ctx context.Context, tenantID uint64, params domain.Params) (*domain.Paginated, error)
}
