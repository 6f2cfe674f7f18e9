package service_test

import (
	"context"
	"time"

	"github.com/lendora/backoffice/internal/domain"
)

type mockStaffRepository struct {
	// Fields to control mock behavior
	MockFindByIDData    *domain.StaffMember
	MockFindByEmailData *domain.StaffMember
	MockFindPoolData    []domain.StaffMember
	MockError           error

	// Fields to capture calls
	CreateCalledWith       *domain.StaffMember
	FindByIDCalledWith     uint64
	FindPoolCalledWithRole domain.Role
	UpdateCalledWith       *domain.StaffMember
}

func (m *mockStaffRepository) Create(ctx context.Context, staff *domain.StaffMember) error {
	m.CreateCalledWith = staff
	staff.ID = 101
	return m.MockError
}

func (m *mockStaffRepository) FindByID(ctx context.Context, id uint64) (*domain.StaffMember, error) {
	m.FindByIDCalledWith = id
	if m.MockError != nil {
		return nil, m.MockError
	}
	if m.MockFindByIDData != nil && m.MockFindByIDData.ID == id {
		return m.MockFindByIDData, nil
	}
	return nil, nil
}

func (m *mockStaffRepository) FindByEmail(ctx context.Context, email string) (*domain.StaffMember, error) {
	if m.MockError != nil {
		return nil, m.MockError
	}
	if m.MockFindByEmailData != nil && m.MockFindByEmailData.Email == email {
		return m.MockFindByEmailData, nil
	}
	return nil, nil
}

func (m *mockStaffRepository) FindPool(ctx context.Context, tenantID uint64, role domain.Role) ([]domain.StaffMember, error) {
	m.FindPoolCalledWithRole = role
	return m.MockFindPoolData, m.MockError
}

func (m *mockStaffRepository) Update(ctx context.Context, staff *domain.StaffMember) error {
	m.UpdateCalledWith = staff
	return m.MockError
}

func (m *mockStaffRepository) FindPaginated(ctx context.Context, tenantID uint64, params domain.Params) ([]domain.StaffMember, int64, error) {
	return m.MockFindPoolData, int64(len(m.MockFindPoolData)), m.MockError
}

type mockCustomerRepository struct {
	MockFindByIDData *domain.Customer
	MockError        error

	FindByIDCalledWith     uint64
	UpdateFieldsCalledWith map[string]any
}

func (m *mockCustomerRepository) Create(ctx context.Context, customer *domain.Customer) (*domain.Customer, error) {
	customer.ID = 55
	return customer, m.MockError
}

func (m *mockCustomerRepository) FindByID(ctx context.Context, id uint64) (*domain.Customer, error) {
	m.FindByIDCalledWith = id
	if m.MockError != nil {
		return nil, m.MockError
	}
	if m.MockFindByIDData != nil && m.MockFindByIDData.ID == id {
		return m.MockFindByIDData, nil
	}
	return nil, nil
}

func (m *mockCustomerRepository) UpdateFields(ctx context.Context, id uint64, fields map[string]any) error {
	m.UpdateFieldsCalledWith = fields
	return m.MockError
}

func (m *mockCustomerRepository) FindPaginated(ctx context.Context, tenantID uint64, params domain.Params) ([]domain.Customer, int64, error) {
	return nil, 0, m.MockError
}

type mockSegmentConfigRepository struct {
	MockBandData *domain.SegmentConfig
	MockListData []domain.SegmentConfig
	MockError    error

	FindBandCalledWithNetPay float64
}

func (m *mockSegmentConfigRepository) Create(ctx context.Context, config *domain.SegmentConfig) (*domain.SegmentConfig, error) {
	return config, m.MockError
}

func (m *mockSegmentConfigRepository) Update(ctx context.Context, config *domain.SegmentConfig) error {
	return m.MockError
}

func (m *mockSegmentConfigRepository) FindByID(ctx context.Context, id uint64) (*domain.SegmentConfig, error) {
	return m.MockBandData, m.MockError
}

func (m *mockSegmentConfigRepository) FindActiveByTenantAndSegment(ctx context.Context, tenantID, segmentID uint64) ([]domain.SegmentConfig, error) {
	return m.MockListData, m.MockError
}

func (m *mockSegmentConfigRepository) FindBandForNetPay(ctx context.Context, tenantID, segmentID uint64, netPay float64) (*domain.SegmentConfig, error) {
	m.FindBandCalledWithNetPay = netPay
	return m.MockBandData, m.MockError
}

type mockLoanRepository struct {
	MockFindByIDData   *domain.Loan
	MockActiveLoanData *domain.Loan
	MockOpenLoansData  []domain.Loan
	MockMaturedData    []domain.Loan
	MockError          error

	CreateCalledWith *domain.Loan
	SaveCalledWith   *domain.Loan
}

func (m *mockLoanRepository) Create(ctx context.Context, loan *domain.Loan) error {
	m.CreateCalledWith = loan
	loan.ID = 900
	return m.MockError
}

func (m *mockLoanRepository) FindByID(ctx context.Context, id uint64) (*domain.Loan, error) {
	if m.MockError != nil {
		return nil, m.MockError
	}
	if m.MockFindByIDData != nil && m.MockFindByIDData.ID == id {
		return m.MockFindByIDData, nil
	}
	return nil, nil
}

func (m *mockLoanRepository) FindByIDForUpdate(ctx context.Context, id uint64) (*domain.Loan, error) {
	return m.FindByID(ctx, id)
}

func (m *mockLoanRepository) Save(ctx context.Context, loan *domain.Loan) error {
	m.SaveCalledWith = loan
	return m.MockError
}

func (m *mockLoanRepository) UpdateFields(ctx context.Context, id uint64, fields map[string]any) error {
	return m.MockError
}

func (m *mockLoanRepository) FindActiveByCustomerID(ctx context.Context, customerID uint64) (*domain.Loan, error) {
	return m.MockActiveLoanData, m.MockError
}

func (m *mockLoanRepository) FindOpenByCustomerID(ctx context.Context, customerID uint64) ([]domain.Loan, error) {
	return m.MockOpenLoansData, m.MockError
}

func (m *mockLoanRepository) FindMatured(ctx context.Context, asOf time.Time) ([]domain.Loan, error) {
	return m.MockMaturedData, m.MockError
}

func (m *mockLoanRepository) FindPaginated(ctx context.Context, tenantID uint64, params domain.Params) ([]domain.Loan, int64, error) {
	return nil, 0, m.MockError
}

type mockPendingEditRepository struct {
	MockFindByIDData *domain.PendingEdit
	MockError        error

	CreateCalledWith *domain.PendingEdit
	SaveCalledWith   *domain.PendingEdit
}

func (m *mockPendingEditRepository) Create(ctx context.Context, edit *domain.PendingEdit) (*domain.PendingEdit, error) {
	m.CreateCalledWith = edit
	edit.ID = 77
	return edit, m.MockError
}

func (m *mockPendingEditRepository) FindByID(ctx context.Context, id uint64) (*domain.PendingEdit, error) {
	if m.MockError != nil {
		return nil, m.MockError
	}
	if m.MockFindByIDData != nil && m.MockFindByIDData.ID == id {
		return m.MockFindByIDData, nil
	}
	return nil, nil
}

func (m *mockPendingEditRepository) FindByIDForUpdate(ctx context.Context, id uint64) (*domain.PendingEdit, error) {
	return m.FindByID(ctx, id)
}

func (m *mockPendingEditRepository) Save(ctx context.Context, edit *domain.PendingEdit) error {
	m.SaveCalledWith = edit
	return m.MockError
}

func (m *mockPendingEditRepository) FindPaginated(ctx context.Context, tenantID uint64, params domain.Params) ([]domain.PendingEdit, int64, error) {
	return nil, 0, m.MockError
}

// mockStaffService stands in for the assignment selector so loan creation
// tests control exactly who gets picked.
type mockStaffService struct {
	MockAgent   *domain.StaffMember
	MockOfficer *domain.StaffMember
	MockError   error

	SelectCalledWithRoles []domain.Role
}

func (m *mockStaffService) Create(ctx context.Context, staff *domain.StaffMember, plainPassword string) (*domain.StaffMember, error) {
	return staff, m.MockError
}

func (m *mockStaffService) Verify(ctx context.Context, staffID uint64) error {
	return m.MockError
}

func (m *mockStaffService) Select(ctx context.Context, tenantID uint64, role domain.Role, segmentID uint64) (*domain.StaffMember, error) {
	m.SelectCalledWithRoles = append(m.SelectCalledWithRoles, role)
	if m.MockError != nil {
		return nil, m.MockError
	}
	if role == domain.LoanAgentRole {
		return m.MockAgent, nil
	}
	return m.MockOfficer, nil
}

func (m *mockStaffService) List(ctx context.Context, tenantID uint64, params domain.Params) (*domain.Paginated, error) {
	return nil, m.MockError
}
