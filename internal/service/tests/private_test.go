package service_test

import (
	"context"
	"sync"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	noop_metric "go.opentelemetry.io/otel/metric/noop"
	noop_trace "go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"

	"github.com/lendora/backoffice/internal/domain"
	"github.com/lendora/backoffice/internal/dto"
	"github.com/lendora/backoffice/internal/service"
	privatesrv "github.com/lendora/backoffice/internal/service/private"
	"github.com/lendora/backoffice/pkg/password"
)

const testJwtSecret = "test-signing-secret"

var (
	hashOnce   sync.Once
	hashedPass string
)

// testPasswordHash hashes once per run; the cost factor makes repeated
// hashing too slow for a unit suite.
func testPasswordHash(t *testing.T) string {
	hashOnce.Do(func() {
		var err error
		hashedPass, err = password.HashPassword("correct-horse")
		require.NoError(t, err)
	})
	return hashedPass
}

func newPrivateService(repo *mockStaffRepository) service.PrivateService {
	return privatesrv.NewPrivateService(
		nil,
		testJwtSecret,
		repo,
		noop_metric.NewMeterProvider().Meter("private-test"),
		noop_trace.NewTracerProvider().Tracer("private-test"),
		zap.NewNop(),
	)
}

func TestLogin(t *testing.T) {
	repo := &mockStaffRepository{
		MockFindByEmailData: &domain.StaffMember{
			ID:       4,
			TenantID: 1,
			Email:    "officer@lendora.io",
			Password: testPasswordHash(t),
			Role:     domain.CreditOfficerRole,
			Active:   true,
		},
	}

	resp, err := newPrivateService(repo).Login(context.Background(), dto.LoginRequest{
		Email:    "officer@lendora.io",
		Password: "correct-horse",
	})

	require.NoError(t, err)
	require.NotEmpty(t, resp.Token)

	claims := &domain.JwtCustomClaims{}
	parsed, err := jwt.ParseWithClaims(resp.Token, claims, func(token *jwt.Token) (any, error) {
		return []byte(testJwtSecret), nil
	})

	require.NoError(t, err)
	assert.True(t, parsed.Valid)
	assert.Equal(t, uint64(4), claims.StaffID)
	assert.Equal(t, uint64(1), claims.TenantID)
	assert.Equal(t, domain.CreditOfficerRole, claims.Role)
	assert.Equal(t, "lendora", claims.Issuer)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	active := &domain.StaffMember{
		ID:       4,
		Email:    "officer@lendora.io",
		Password: testPasswordHash(t),
		Role:     domain.CreditOfficerRole,
		Active:   true,
	}
	inactive := *active
	inactive.Active = false

	tests := []struct {
		name     string
		existing *domain.StaffMember
		email    string
		pass     string
	}{
		{"unknown email", active, "nobody@lendora.io", "correct-horse"},
		{"wrong password", active, "officer@lendora.io", "wrong-horse"},
		{"deactivated staff", &inactive, "officer@lendora.io", "correct-horse"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mockStaffRepository{MockFindByEmailData: tt.existing}

			_, err := newPrivateService(repo).Login(context.Background(), dto.LoginRequest{
				Email:    tt.email,
				Password: tt.pass,
			})

			assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
		})
	}
}
