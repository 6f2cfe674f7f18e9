package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	noop_metric "go.opentelemetry.io/otel/metric/noop"
	noop_trace "go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"

	"github.com/lendora/backoffice/internal/domain"
	"github.com/lendora/backoffice/internal/service"
	editsrv "github.com/lendora/backoffice/internal/service/edit"
)

func newEditService(repo *mockPendingEditRepository) service.EditServices {
	return editsrv.NewEditService(
		nil,
		repo,
		func() time.Time { return fixedNow },
		noop_metric.NewMeterProvider().Meter("edit-test"),
		noop_trace.NewTracerProvider().Tracer("edit-test"),
		zap.NewNop(),
	)
}

func TestSubmitEdit(t *testing.T) {
	repo := &mockPendingEditRepository{}

	created, err := newEditService(repo).Submit(context.Background(), &domain.PendingEdit{
		TenantID:    1,
		TargetType:  domain.EditTargetCustomer,
		TargetID:    5,
		Alteration:  map[string]any{"phone": "08030000000"},
		SubmitterID: 10,
	})

	require.NoError(t, err)
	assert.Equal(t, domain.EditPending, created.Status)
	assert.NotEmpty(t, created.Reference)
	assert.False(t, created.Resolved())
	require.NotNil(t, repo.CreateCalledWith)
	assert.Equal(t, map[string]any{"phone": "08030000000"}, repo.CreateCalledWith.Alteration)
}

func TestResolveEdit_UnknownDecision(t *testing.T) {
	repo := &mockPendingEditRepository{
		MockFindByIDData: &domain.PendingEdit{ID: 77, Status: domain.EditPending},
	}

	_, err := newEditService(repo).Resolve(context.Background(), 77, "REJECT", "Incomplete documentation", 20)

	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, domain.ValidationOutOfRange, verr.Kind)
	assert.Equal(t, "decision", verr.Field)
	assert.Nil(t, repo.SaveCalledWith)
}

func TestResolveEdit_DenyRequiresRemark(t *testing.T) {
	repo := &mockPendingEditRepository{
		MockFindByIDData: &domain.PendingEdit{ID: 77, Status: domain.EditPending},
	}

	_, err := newEditService(repo).Resolve(context.Background(), 77, editsrv.EditDecisionDeny, "", 20)

	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, domain.ValidationMissingRemark, verr.Kind)
	assert.Nil(t, repo.SaveCalledWith)
}

func TestListEdits_Pagination(t *testing.T) {
	repo := &mockPendingEditRepository{}

	page, err := newEditService(repo).List(context.Background(), 1, domain.Params{Page: 2, Limit: 10})

	require.NoError(t, err)
	assert.Equal(t, 2, page.Page)
	assert.Equal(t, 10, page.Limit)
	assert.Zero(t, page.TotalPages)
}
