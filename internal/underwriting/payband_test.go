package underwriting_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lendora/backoffice/internal/domain"
	"github.com/lendora/backoffice/internal/underwriting"
)

func TestValidateBands_SingleBandPasses(t *testing.T) {
	idx, err := underwriting.ValidateBands(underwriting.Band{Min: 0, Max: 50000}, nil)

	assert.NoError(t, err)
	assert.Equal(t, -1, idx)
}

func TestValidateBands_AdjacentBandsPass(t *testing.T) {
	existing := []underwriting.Band{
		{Min: 0, Max: 50000},
		{Min: 50000, Max: 100000},
	}

	idx, err := underwriting.ValidateBands(underwriting.Band{Min: 100000, Max: 150000}, existing)

	assert.NoError(t, err)
	assert.Equal(t, -1, idx)
}

func TestValidateBands_OverlapRejected(t *testing.T) {
	existing := []underwriting.Band{
		{Min: 0, Max: 50000},
		{Min: 50000, Max: 100000},
	}

	idx, err := underwriting.ValidateBands(underwriting.Band{Min: 40000, Max: 90000}, existing)

	require.Error(t, err)
	var verr *domain.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, domain.ValidationOverlap, verr.Kind)
	assert.Equal(t, 0, idx)
}

func TestValidateBands_GapRejected(t *testing.T) {
	existing := []underwriting.Band{
		{Min: 0, Max: 50000},
	}

	idx, err := underwriting.ValidateBands(underwriting.Band{Min: 60000, Max: 100000}, existing)

	require.Error(t, err)
	var verr *domain.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, domain.ValidationGap, verr.Kind)
	assert.Equal(t, 0, idx)
}

func TestValidateBands_ExactDecimalBoundary(t *testing.T) {
	existing := []underwriting.Band{
		{Min: 0, Max: 49999.99},
	}

	// Shares the boundary exactly at two decimals: valid partition.
	_, err := underwriting.ValidateBands(underwriting.Band{Min: 49999.99, Max: 100000}, existing)
	assert.NoError(t, err)

	// One cent short is a gap, not a float rounding artifact.
	_, err = underwriting.ValidateBands(underwriting.Band{Min: 50000.00, Max: 100000}, existing)
	require.Error(t, err)
	var verr *domain.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, domain.ValidationGap, verr.Kind)
}

func TestValidateBands_CandidateInsertedInMiddle(t *testing.T) {
	existing := []underwriting.Band{
		{Min: 0, Max: 50000},
		{Min: 100000, Max: 150000},
	}

	idx, err := underwriting.ValidateBands(underwriting.Band{Min: 50000, Max: 100000}, existing)

	assert.NoError(t, err)
	assert.Equal(t, -1, idx)
}
