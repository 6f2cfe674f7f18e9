package model

import (
	"github.com/lendora/backoffice/internal/domain"
)

func SegmentConfigFromEntity(data *domain.SegmentConfig) SegmentConfig {
	return SegmentConfig{
		ID:              data.ID,
		TenantID:        data.TenantID,
		SegmentID:       data.SegmentID,
		Active:          data.Active,
		MinLoanAmount:   data.MinLoanAmount,
		MaxLoanAmount:   data.MaxLoanAmount,
		MinTenorMonths:  data.MinTenorMonths,
		MaxTenorMonths:  data.MaxTenorMonths,
		InterestRate:    data.InterestRate,
		Fees:            data.Fees,
		TransferFee:     data.TransferFee,
		MinNetPay:       data.MinNetPay,
		MaxNetPay:       data.MaxNetPay,
		MaxDTI:          data.MaxDTI,
		MinAge:          data.MinAge,
		MaxAge:          data.MaxAge,
		MaxServiceYears: data.MaxServiceYears,
	}
}

func SegmentConfigToEntity(data SegmentConfig) *domain.SegmentConfig {
	return &domain.SegmentConfig{
		ID:              data.ID,
		TenantID:        data.TenantID,
		SegmentID:       data.SegmentID,
		Active:          data.Active,
		MinLoanAmount:   data.MinLoanAmount,
		MaxLoanAmount:   data.MaxLoanAmount,
		MinTenorMonths:  data.MinTenorMonths,
		MaxTenorMonths:  data.MaxTenorMonths,
		InterestRate:    data.InterestRate,
		Fees:            data.Fees,
		TransferFee:     data.TransferFee,
		MinNetPay:       data.MinNetPay,
		MaxNetPay:       data.MaxNetPay,
		MaxDTI:          data.MaxDTI,
		MinAge:          data.MinAge,
		MaxAge:          data.MaxAge,
		MaxServiceYears: data.MaxServiceYears,
		CreatedAt:       data.CreatedAt,
		UpdatedAt:       data.UpdatedAt,
	}
}

func SegmentConfigsToEntity(data []SegmentConfig) []domain.SegmentConfig {
	responses := make([]domain.SegmentConfig, len(data))
	for i, s := range data {
		responses[i] = *SegmentConfigToEntity(s)
	}

	return responses
}
