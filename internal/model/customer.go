package model

import (
	"github.com/lendora/backoffice/internal/domain"
)

func CustomerFromEntity(data *domain.Customer) Customer {
	return Customer{
		ID:               data.ID,
		TenantID:         data.TenantID,
		SegmentID:        data.SegmentID,
		AgentID:          data.AgentID,
		FullName:         data.FullName,
		Email:            data.Email,
		Phone:            data.Phone,
		BVN:              data.BVN,
		NetPay:           data.NetPay,
		DateOfBirth:      data.DateOfBirth,
		DateOfEnlistment: data.DateOfEnlistment,
	}
}

func CustomerToEntity(data Customer) *domain.Customer {
	return &domain.Customer{
		ID:               data.ID,
		TenantID:         data.TenantID,
		SegmentID:        data.SegmentID,
		AgentID:          data.AgentID,
		FullName:         data.FullName,
		Email:            data.Email,
		Phone:            data.Phone,
		BVN:              data.BVN,
		NetPay:           data.NetPay,
		DateOfBirth:      data.DateOfBirth,
		DateOfEnlistment: data.DateOfEnlistment,
		CreatedAt:        data.CreatedAt,
		UpdatedAt:        data.UpdatedAt,
	}
}

func CustomersToEntity(data []Customer) []domain.Customer {
	responses := make([]domain.Customer, len(data))
	for i, c := range data {
		responses[i] = *CustomerToEntity(c)
	}

	return responses
}
