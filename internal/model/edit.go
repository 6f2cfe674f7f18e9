package model

import (
	"github.com/lendora/backoffice/internal/domain"
)

func PendingEditFromEntity(data *domain.PendingEdit) PendingEdit {
	return PendingEdit{
		ID:          data.ID,
		Reference:   data.Reference,
		TenantID:    data.TenantID,
		TargetType:  string(data.TargetType),
		TargetID:    data.TargetID,
		Alteration:  data.Alteration,
		SubmitterID: data.SubmitterID,
		ReviewerID:  data.ReviewerID,
		Status:      string(data.Status),
		Remark:      data.Remark,
		ResolvedAt:  data.ResolvedAt,
	}
}

func PendingEditToEntity(data PendingEdit) *domain.PendingEdit {
	return &domain.PendingEdit{
		ID:          data.ID,
		Reference:   data.Reference,
		TenantID:    data.TenantID,
		TargetType:  domain.EditTargetType(data.TargetType),
		TargetID:    data.TargetID,
		Alteration:  data.Alteration,
		SubmitterID: data.SubmitterID,
		ReviewerID:  data.ReviewerID,
		Status:      domain.EditStatus(data.Status),
		Remark:      data.Remark,
		ResolvedAt:  data.ResolvedAt,
		CreatedAt:   data.CreatedAt,
		UpdatedAt:   data.UpdatedAt,
	}
}

func PendingEditsToEntity(data []PendingEdit) []domain.PendingEdit {
	responses := make([]domain.PendingEdit, len(data))
	for i, e := range data {
		responses[i] = *PendingEditToEntity(e)
	}

	return responses
}
