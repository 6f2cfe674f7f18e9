package model

import (
	"github.com/lendora/backoffice/internal/domain"
)

func StaffFromEntity(data *domain.StaffMember) StaffMember {
	return StaffMember{
		ID:            data.ID,
		TenantID:      data.TenantID,
		Email:         data.Email,
		Password:      data.Password,
		FullName:      data.FullName,
		Role:          Role(data.Role),
		Active:        data.Active,
		EmailVerified: data.EmailVerified,
		SegmentIDs:    data.SegmentIDs,
	}
}

func StaffToEntity(data StaffMember) *domain.StaffMember {
	return &domain.StaffMember{
		ID:            data.ID,
		TenantID:      data.TenantID,
		Email:         data.Email,
		Password:      data.Password,
		FullName:      data.FullName,
		Role:          domain.Role(data.Role),
		Active:        data.Active,
		EmailVerified: data.EmailVerified,
		SegmentIDs:    data.SegmentIDs,
		CreatedAt:     data.CreatedAt,
		UpdatedAt:     data.UpdatedAt,
	}
}

func StaffMembersToEntity(data []StaffMember) []domain.StaffMember {
	responses := make([]domain.StaffMember, len(data))
	for i, s := range data {
		responses[i] = *StaffToEntity(s)
	}

	return responses
}
