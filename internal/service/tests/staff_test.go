package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	noop_metric "go.opentelemetry.io/otel/metric/noop"
	noop_trace "go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"

	"github.com/lendora/backoffice/internal/domain"
	"github.com/lendora/backoffice/internal/service"
	staffsrv "github.com/lendora/backoffice/internal/service/staff"
	"github.com/lendora/backoffice/pkg/password"
)

func newStaffService(repo *mockStaffRepository) service.StaffServices {
	return staffsrv.NewStaffService(
		nil,
		repo,
		noop_metric.NewMeterProvider().Meter("staff-test"),
		noop_trace.NewTracerProvider().Tracer("staff-test"),
		zap.NewNop(),
	)
}

func TestSelectStaff_FiltersBySegment(t *testing.T) {
	repo := &mockStaffRepository{
		MockFindPoolData: []domain.StaffMember{
			{ID: 1, Role: domain.LoanAgentRole, SegmentIDs: []uint64{3, 4}},
			{ID: 2, Role: domain.LoanAgentRole, SegmentIDs: []uint64{2}},
			{ID: 3, Role: domain.LoanAgentRole, SegmentIDs: []uint64{5}},
		},
	}

	picked, err := newStaffService(repo).Select(context.Background(), 1, domain.LoanAgentRole, 2)

	require.NoError(t, err)
	assert.Equal(t, uint64(2), picked.ID)
	assert.Equal(t, domain.LoanAgentRole, repo.FindPoolCalledWithRole)
}

func TestSelectStaff_PicksWithinCandidates(t *testing.T) {
	repo := &mockStaffRepository{
		MockFindPoolData: []domain.StaffMember{
			{ID: 1, Role: domain.CreditOfficerRole, SegmentIDs: []uint64{2}},
			{ID: 2, Role: domain.CreditOfficerRole, SegmentIDs: []uint64{2}},
			{ID: 3, Role: domain.CreditOfficerRole, SegmentIDs: []uint64{9}},
		},
	}
	svc := newStaffService(repo)

	for i := 0; i < 20; i++ {
		picked, err := svc.Select(context.Background(), 1, domain.CreditOfficerRole, 2)

		require.NoError(t, err)
		assert.Contains(t, []uint64{1, 2}, picked.ID)
	}
}

func TestSelectStaff_EmptyPool(t *testing.T) {
	t.Run("no pool at all", func(t *testing.T) {
		repo := &mockStaffRepository{}

		_, err := newStaffService(repo).Select(context.Background(), 1, domain.LoanAgentRole, 2)

		assert.ErrorIs(t, err, domain.ErrStaffNotFound)
	})

	t.Run("nobody covers the segment", func(t *testing.T) {
		repo := &mockStaffRepository{
			MockFindPoolData: []domain.StaffMember{
				{ID: 1, Role: domain.LoanAgentRole, SegmentIDs: []uint64{3}},
			},
		}

		_, err := newStaffService(repo).Select(context.Background(), 1, domain.LoanAgentRole, 2)

		assert.ErrorIs(t, err, domain.ErrStaffNotFound)
	})
}

func TestCreateStaff(t *testing.T) {
	repo := &mockStaffRepository{}
	staff := &domain.StaffMember{
		TenantID: 1,
		Email:    "new.agent@lendora.io",
		FullName: "New Agent",
		Role:     domain.LoanAgentRole,
	}

	created, err := newStaffService(repo).Create(context.Background(), staff, "s3cret-pass")

	require.NoError(t, err)
	assert.True(t, created.Active)
	assert.False(t, created.EmailVerified)
	assert.NotEqual(t, "s3cret-pass", created.Password)
	assert.True(t, password.CheckPasswordHash("s3cret-pass", created.Password))
	assert.NotNil(t, repo.CreateCalledWith)
}

func TestCreateStaff_DuplicateEmail(t *testing.T) {
	repo := &mockStaffRepository{
		MockFindByEmailData: &domain.StaffMember{ID: 4, Email: "new.agent@lendora.io"},
	}

	_, err := newStaffService(repo).Create(context.Background(), &domain.StaffMember{Email: "new.agent@lendora.io"}, "s3cret-pass")

	assert.ErrorIs(t, err, domain.ErrEmailExists)
	assert.Nil(t, repo.CreateCalledWith)
}

func TestVerifyStaff(t *testing.T) {
	repo := &mockStaffRepository{
		MockFindByIDData: &domain.StaffMember{ID: 4, Email: "agent@lendora.io", Active: true},
	}

	err := newStaffService(repo).Verify(context.Background(), 4)

	require.NoError(t, err)
	require.NotNil(t, repo.UpdateCalledWith)
	assert.True(t, repo.UpdateCalledWith.EmailVerified)
}

func TestVerifyStaff_NotFound(t *testing.T) {
	repo := &mockStaffRepository{}

	err := newStaffService(repo).Verify(context.Background(), 4)

	assert.ErrorIs(t, err, domain.ErrStaffNotFound)
}
