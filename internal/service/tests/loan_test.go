package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	noop_metric "go.opentelemetry.io/otel/metric/noop"
	noop_trace "go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"

	"github.com/lendora/backoffice/internal/domain"
	"github.com/lendora/backoffice/internal/dto"
	"github.com/lendora/backoffice/internal/service"
	loansrv "github.com/lendora/backoffice/internal/service/loan"
	"github.com/lendora/backoffice/pkg/notify"
)

var fixedNow = time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)

type loanFixture struct {
	loanRepo     *mockLoanRepository
	customerRepo *mockCustomerRepository
	segmentRepo  *mockSegmentConfigRepository
	staffRepo    *mockStaffRepository
	staffSvc     *mockStaffService
}

func newLoanFixture() *loanFixture {
	return &loanFixture{
		loanRepo:     &mockLoanRepository{},
		customerRepo: &mockCustomerRepository{},
		segmentRepo:  &mockSegmentConfigRepository{},
		staffRepo:    &mockStaffRepository{},
		staffSvc: &mockStaffService{
			MockAgent:   &domain.StaffMember{ID: 10, TenantID: 1, Email: "agent@lendora.io", Role: domain.LoanAgentRole, Active: true},
			MockOfficer: &domain.StaffMember{ID: 20, TenantID: 1, Email: "officer@lendora.io", Role: domain.CreditOfficerRole, Active: true},
		},
	}
}

func (f *loanFixture) service() service.LoanServices {
	return loansrv.NewLoanService(
		nil,
		f.loanRepo,
		f.customerRepo,
		f.segmentRepo,
		f.staffRepo,
		f.staffSvc,
		notify.NewLogSender(zap.NewNop()),
		func() time.Time { return fixedNow },
		noop_metric.NewMeterProvider().Meter("loan-test"),
		noop_trace.NewTracerProvider().Tracer("loan-test"),
		zap.NewNop(),
	)
}

func testCustomer() *domain.Customer {
	return &domain.Customer{
		ID:               5,
		TenantID:         1,
		SegmentID:        2,
		FullName:         "Ada Obi",
		Email:            "ada@example.com",
		NetPay:           80000,
		DateOfBirth:      time.Date(1990, 3, 1, 0, 0, 0, 0, time.UTC),
		DateOfEnlistment: time.Date(2010, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func testPolicy() *domain.SegmentConfig {
	return &domain.SegmentConfig{
		ID:             3,
		TenantID:       1,
		SegmentID:      2,
		Active:         true,
		MinLoanAmount:  10000,
		MaxLoanAmount:  500000,
		MinTenorMonths: 3,
		MaxTenorMonths: 24,
		InterestRate:   0.03,
		Fees: []domain.Fee{
			{Name: "processing", Percent: 0.02},
			{Name: "insurance", Percent: 0.01},
		},
		TransferFee: 100,
		MinNetPay:   50000,
		MaxNetPay:   100000,
		MaxDTI:      0.4,
	}
}

func TestCreateLoan(t *testing.T) {
	f := newLoanFixture()
	f.customerRepo.MockFindByIDData = testCustomer()
	f.segmentRepo.MockBandData = testPolicy()

	loan, err := f.service().Create(context.Background(), 1, dto.CreateLoanRequest{
		CustomerID:  5,
		Amount:      120000,
		TenorMonths: 12,
	})

	require.NoError(t, err)
	require.NotNil(t, loan)

	t.Run("BooksPendingApplication", func(t *testing.T) {
		assert.Equal(t, domain.LoanPending, loan.Status)
		assert.NotEmpty(t, loan.Reference)
		assert.False(t, loan.Active)
		assert.False(t, loan.Locked)
		assert.False(t, loan.TopUp)
		assert.Equal(t, uint64(1), loan.TenantID)
		assert.Equal(t, uint64(5), loan.CustomerID)
		assert.Equal(t, uint64(2), loan.SegmentID)
		assert.NotNil(t, f.loanRepo.CreateCalledWith)
	})

	t.Run("AssignsAgentAndOfficer", func(t *testing.T) {
		assert.Equal(t, uint64(10), loan.AgentID)
		assert.Equal(t, uint64(20), loan.OfficerID)
		assert.Equal(t, []domain.Role{domain.LoanAgentRole, domain.CreditOfficerRole}, f.staffSvc.SelectCalledWithRoles)
	})

	t.Run("StoresPricedQuote", func(t *testing.T) {
		// 120000 at 3% flat over 12 months, 3% total upfront fees.
		assert.Equal(t, 3600.0, loan.UpfrontFee)
		assert.Equal(t, 13600.0, loan.Repayment)
		assert.Equal(t, 163200.0, loan.TotalRepayment)
		assert.Equal(t, 116300.0, loan.NetValue)
		assert.Equal(t, 0.03, loan.InterestRate)
	})

	t.Run("StoresEligibilityChecks", func(t *testing.T) {
		assert.True(t, loan.AgeValid)
		assert.Equal(t, float64(35), loan.AgeValue)
		assert.True(t, loan.ServiceValid)
		assert.Equal(t, float64(15), loan.ServiceValue)
		assert.True(t, loan.NetPayValid)
		assert.Equal(t, float64(80000), loan.NetPayValue)
		assert.True(t, loan.DTIValid)
		assert.InDelta(t, 0.17, loan.DTI, 0.0001)
	})

	t.Run("MirrorsProposedTerms", func(t *testing.T) {
		assert.Equal(t, loan.Amount, loan.ProposedAmount)
		assert.Equal(t, loan.TenorMonths, loan.ProposedTenor)
	})
}

func TestCreateLoan_TopUpReusesAgent(t *testing.T) {
	f := newLoanFixture()
	f.customerRepo.MockFindByIDData = testCustomer()
	f.segmentRepo.MockBandData = testPolicy()
	f.loanRepo.MockActiveLoanData = &domain.Loan{ID: 800, CustomerID: 5, AgentID: 7, Active: true}
	f.staffRepo.MockFindByIDData = &domain.StaffMember{ID: 7, TenantID: 1, Email: "prior@lendora.io", Role: domain.LoanAgentRole, Active: true}

	loan, err := f.service().Create(context.Background(), 1, dto.CreateLoanRequest{
		CustomerID:  5,
		Amount:      120000,
		TenorMonths: 12,
	})

	require.NoError(t, err)
	assert.True(t, loan.TopUp)
	assert.Equal(t, uint64(7), loan.AgentID)
	// Only the officer pick goes through the selector.
	assert.Equal(t, []domain.Role{domain.CreditOfficerRole}, f.staffSvc.SelectCalledWithRoles)
}

func TestCreateLoan_StaleAgentFallsBackToFreshPick(t *testing.T) {
	f := newLoanFixture()
	f.customerRepo.MockFindByIDData = testCustomer()
	f.segmentRepo.MockBandData = testPolicy()
	f.loanRepo.MockActiveLoanData = &domain.Loan{ID: 800, CustomerID: 5, AgentID: 7, Active: true}
	f.staffRepo.MockFindByIDData = &domain.StaffMember{ID: 7, Active: false}

	loan, err := f.service().Create(context.Background(), 1, dto.CreateLoanRequest{
		CustomerID:  5,
		Amount:      120000,
		TenorMonths: 12,
	})

	require.NoError(t, err)
	assert.True(t, loan.TopUp)
	assert.Equal(t, uint64(10), loan.AgentID)
	assert.Equal(t, []domain.Role{domain.LoanAgentRole, domain.CreditOfficerRole}, f.staffSvc.SelectCalledWithRoles)
}

func TestCreateLoan_CustomerNotFound(t *testing.T) {
	t.Run("unknown customer", func(t *testing.T) {
		f := newLoanFixture()

		_, err := f.service().Create(context.Background(), 1, dto.CreateLoanRequest{CustomerID: 99, Amount: 120000, TenorMonths: 12})

		assert.ErrorIs(t, err, domain.ErrCustomerNotFound)
		assert.Nil(t, f.loanRepo.CreateCalledWith)
	})

	t.Run("wrong tenant", func(t *testing.T) {
		f := newLoanFixture()
		f.customerRepo.MockFindByIDData = testCustomer()

		_, err := f.service().Create(context.Background(), 2, dto.CreateLoanRequest{CustomerID: 5, Amount: 120000, TenorMonths: 12})

		assert.ErrorIs(t, err, domain.ErrCustomerNotFound)
	})
}

func TestCreateLoan_NoBandCoversNetPay(t *testing.T) {
	f := newLoanFixture()
	f.customerRepo.MockFindByIDData = testCustomer()

	_, err := f.service().Create(context.Background(), 1, dto.CreateLoanRequest{CustomerID: 5, Amount: 120000, TenorMonths: 12})

	assert.ErrorIs(t, err, domain.ErrSegmentPolicyNotFound)
	assert.Equal(t, float64(80000), f.segmentRepo.FindBandCalledWithNetPay)
	assert.Nil(t, f.loanRepo.CreateCalledWith)
}

func TestCreateLoan_TermsOutsidePolicyRange(t *testing.T) {
	tests := []struct {
		name      string
		amount    float64
		tenor     int
		wantField string
	}{
		{"amount below minimum", 5000, 12, "amount"},
		{"amount above maximum", 600000, 12, "amount"},
		{"tenor below minimum", 120000, 2, "tenor_months"},
		{"tenor above maximum", 120000, 25, "tenor_months"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newLoanFixture()
			f.customerRepo.MockFindByIDData = testCustomer()
			f.segmentRepo.MockBandData = testPolicy()

			_, err := f.service().Create(context.Background(), 1, dto.CreateLoanRequest{
				CustomerID:  5,
				Amount:      tt.amount,
				TenorMonths: tt.tenor,
			})

			var verr *domain.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, domain.ValidationOutOfRange, verr.Kind)
			assert.Equal(t, tt.wantField, verr.Field)
			assert.Nil(t, f.loanRepo.CreateCalledWith)
		})
	}
}

func TestCreateLoan_NoOfficerAvailable(t *testing.T) {
	f := newLoanFixture()
	f.customerRepo.MockFindByIDData = testCustomer()
	f.segmentRepo.MockBandData = testPolicy()
	f.loanRepo.MockActiveLoanData = &domain.Loan{ID: 800, CustomerID: 5, AgentID: 7, Active: true}
	f.staffRepo.MockFindByIDData = &domain.StaffMember{ID: 7, Active: true}
	f.staffSvc.MockError = domain.ErrStaffNotFound

	_, err := f.service().Create(context.Background(), 1, dto.CreateLoanRequest{CustomerID: 5, Amount: 120000, TenorMonths: 12})

	assert.ErrorIs(t, err, domain.ErrStaffNotFound)
	assert.Nil(t, f.loanRepo.CreateCalledWith)
}

func TestCreateLoan_RepositoryFailure(t *testing.T) {
	f := newLoanFixture()
	f.customerRepo.MockFindByIDData = testCustomer()
	f.segmentRepo.MockBandData = testPolicy()
	f.loanRepo.MockError = errors.New("connection refused")

	_, err := f.service().Create(context.Background(), 1, dto.CreateLoanRequest{CustomerID: 5, Amount: 120000, TenorMonths: 12})

	assert.Error(t, err)
}

func TestGetLoan(t *testing.T) {
	f := newLoanFixture()
	f.loanRepo.MockFindByIDData = &domain.Loan{ID: 900, Reference: "ref-900", Status: domain.LoanPending}

	loan, err := f.service().Get(context.Background(), 900)

	require.NoError(t, err)
	assert.Equal(t, "ref-900", loan.Reference)
}

func TestGetLoan_NotFound(t *testing.T) {
	f := newLoanFixture()

	_, err := f.service().Get(context.Background(), 900)

	assert.ErrorIs(t, err, domain.ErrLoanNotFound)
}

func TestListLoans_Pagination(t *testing.T) {
	f := newLoanFixture()

	page, err := f.service().List(context.Background(), 1, domain.Params{Page: 1, Limit: 20})

	require.NoError(t, err)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 20, page.Limit)
	assert.Zero(t, page.Total)
	assert.Zero(t, page.TotalPages)
}
