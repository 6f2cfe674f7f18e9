package dto

import (
	"time"

	"github.com/lendora/backoffice/internal/domain"
)

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type CreateStaffRequest struct {
	Email      string   `json:"email" validate:"required,email"`
	Password   string   `json:"password" validate:"required,min=8"`
	FullName   string   `json:"full_name" validate:"required"`
	Role       string   `json:"role" validate:"required,oneof=admin loan_agent credit_officer"`
	SegmentIDs []uint64 `json:"segment_ids" validate:"required,min=1"`
}

type SegmentConfigRequest struct {
	SegmentID       uint64       `json:"segment_id" validate:"required"`
	MinLoanAmount   float64      `json:"min_loan_amount" validate:"required,gt=0"`
	MaxLoanAmount   float64      `json:"max_loan_amount" validate:"required,gtfield=MinLoanAmount"`
	MinTenorMonths  int          `json:"min_tenor_months" validate:"required,gt=0"`
	MaxTenorMonths  int          `json:"max_tenor_months" validate:"required,gtefield=MinTenorMonths"`
	InterestRate    float64      `json:"interest_rate" validate:"required,gt=0"`
	Fees            []domain.Fee `json:"fees" validate:"dive"`
	TransferFee     float64      `json:"transfer_fee" validate:"gte=0"`
	MinNetPay       float64      `json:"min_net_pay" validate:"gte=0"`
	MaxNetPay       float64      `json:"max_net_pay" validate:"required,gtfield=MinNetPay"`
	MaxDTI          float64      `json:"max_dti" validate:"required,gt=0,lte=1"`
	MinAge          int          `json:"min_age" validate:"gte=0"`
	MaxAge          int          `json:"max_age" validate:"gte=0"`
	MaxServiceYears int          `json:"max_service_years" validate:"gte=0"`
}

type CreateCustomerRequest struct {
	SegmentID        uint64  `json:"segment_id" validate:"required"`
	FullName         string  `json:"full_name" validate:"required"`
	Email            string  `json:"email" validate:"omitempty,email"`
	Phone            string  `json:"phone" validate:"omitempty"`
	BVN              string  `json:"bvn" validate:"required,len=11,numeric"`
	NetPay           float64 `json:"net_pay" validate:"required,gt=0"`
	DateOfBirth      string  `json:"date_of_birth" validate:"required,datetime=2006-01-02"`
	DateOfEnlistment string  `json:"date_of_enlistment" validate:"required,datetime=2006-01-02"`
}

type CreateLoanRequest struct {
	CustomerID  uint64  `json:"customer_id" validate:"required"`
	Amount      float64 `json:"amount" validate:"required,gt=0"`
	TenorMonths int     `json:"tenor_months" validate:"required,gt=0"`
}

type TransitionLoanRequest struct {
	Status string `json:"status" validate:"required,oneof=APPROVED DENIED ON_HOLD LIQUIDATED DISCONTINUED COMPLETED"`
	Remark string `json:"remark,omitempty"`
}

type UpdateLoanTermsRequest struct {
	Amount      float64 `json:"amount" validate:"required,gt=0"`
	TenorMonths int     `json:"tenor_months" validate:"required,gt=0"`
}

type SubmitEditRequest struct {
	TargetType string         `json:"target_type" validate:"required,oneof=customer loan"`
	TargetID   uint64         `json:"target_id" validate:"required"`
	Alteration map[string]any `json:"alteration" validate:"required,min=1"`
}

type ResolveEditRequest struct {
	Decision string `json:"decision" validate:"required,oneof=APPROVE DENY"`
	Remark   string `json:"remark,omitempty"`
}

// --- Mapping --- //

func CustomerToEntity(req CreateCustomerRequest, tenantID uint64) *domain.Customer {
	dob, _ := time.Parse("2006-01-02", req.DateOfBirth)
	enlisted, _ := time.Parse("2006-01-02", req.DateOfEnlistment)
	return &domain.Customer{
		TenantID:         tenantID,
		SegmentID:        req.SegmentID,
		FullName:         req.FullName,
		Email:            req.Email,
		Phone:            req.Phone,
		BVN:              req.BVN,
		NetPay:           req.NetPay,
		DateOfBirth:      dob,
		DateOfEnlistment: enlisted,
	}
}

func SegmentConfigToEntity(req SegmentConfigRequest, tenantID uint64) *domain.SegmentConfig {
	return &domain.SegmentConfig{
		TenantID:        tenantID,
		SegmentID:       req.SegmentID,
		Active:          true,
		MinLoanAmount:   req.MinLoanAmount,
		MaxLoanAmount:   req.MaxLoanAmount,
		MinTenorMonths:  req.MinTenorMonths,
		MaxTenorMonths:  req.MaxTenorMonths,
		InterestRate:    req.InterestRate,
		Fees:            req.Fees,
		TransferFee:     req.TransferFee,
		MinNetPay:       req.MinNetPay,
		MaxNetPay:       req.MaxNetPay,
		MaxDTI:          req.MaxDTI,
		MinAge:          req.MinAge,
		MaxAge:          req.MaxAge,
		MaxServiceYears: req.MaxServiceYears,
	}
}
