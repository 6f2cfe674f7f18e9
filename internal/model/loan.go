package model

import (
	"github.com/lendora/backoffice/internal/domain"
)

func LoanFromEntity(data *domain.Loan) Loan {
	return Loan{
		ID:         data.ID,
		Reference:  data.Reference,
		TenantID:   data.TenantID,
		CustomerID: data.CustomerID,
		SegmentID:  data.SegmentID,
		AgentID:    data.AgentID,
		OfficerID:  data.OfficerID,

		Amount:         data.Amount,
		TenorMonths:    data.TenorMonths,
		ProposedAmount: data.ProposedAmount,
		ProposedTenor:  data.ProposedTenor,
		InterestRate:   data.InterestRate,

		UpfrontFee:     data.UpfrontFee,
		Repayment:      data.Repayment,
		TotalRepayment: data.TotalRepayment,
		NetValue:       data.NetValue,
		DTI:            data.DTI,

		AgeValid:     data.AgeValid,
		AgeValue:     data.AgeValue,
		ServiceValid: data.ServiceValid,
		ServiceValue: data.ServiceValue,
		NetPayValid:  data.NetPayValid,
		NetPayValue:  data.NetPayValue,
		DTIValid:     data.DTIValid,

		Status:               LoanStatus(data.Status),
		Remark:               data.Remark,
		DateApprovedOrDenied: data.DateApprovedOrDenied,
		DateLiquidated:       data.DateLiquidated,
		MaturityDate:         data.MaturityDate,

		Active:    data.Active,
		Booked:    data.Booked,
		Disbursed: data.Disbursed,
		Locked:    data.Locked,
		TopUp:     data.TopUp,
	}
}

func LoanToEntity(data Loan) *domain.Loan {
	return &domain.Loan{
		ID:         data.ID,
		Reference:  data.Reference,
		TenantID:   data.TenantID,
		CustomerID: data.CustomerID,
		SegmentID:  data.SegmentID,
		AgentID:    data.AgentID,
		OfficerID:  data.OfficerID,

		Amount:         data.Amount,
		TenorMonths:    data.TenorMonths,
		ProposedAmount: data.ProposedAmount,
		ProposedTenor:  data.ProposedTenor,
		InterestRate:   data.InterestRate,

		UpfrontFee:     data.UpfrontFee,
		Repayment:      data.Repayment,
		TotalRepayment: data.TotalRepayment,
		NetValue:       data.NetValue,
		DTI:            data.DTI,

		AgeValid:     data.AgeValid,
		AgeValue:     data.AgeValue,
		ServiceValid: data.ServiceValid,
		ServiceValue: data.ServiceValue,
		NetPayValid:  data.NetPayValid,
		NetPayValue:  data.NetPayValue,
		DTIValid:     data.DTIValid,

		Status:               domain.LoanStatus(data.Status),
		Remark:               data.Remark,
		DateApprovedOrDenied: data.DateApprovedOrDenied,
		DateLiquidated:       data.DateLiquidated,
		MaturityDate:         data.MaturityDate,

		Active:    data.Active,
		Booked:    data.Booked,
		Disbursed: data.Disbursed,
		Locked:    data.Locked,
		TopUp:     data.TopUp,

		CreatedAt: data.CreatedAt,
		UpdatedAt: data.UpdatedAt,
	}
}

func LoansToEntity(data []Loan) []domain.Loan {
	responses := make([]domain.Loan, len(data))
	for i, l := range data {
		responses[i] = *LoanToEntity(l)
	}

	return responses
}
