package domain

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type Role string

const (
	AdminRole         Role = "admin"
	LoanAgentRole     Role = "loan_agent"
	CreditOfficerRole Role = "credit_officer"
)

type Tenant struct {
	ID        uint64
	Name      string
	Slug      string
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

type StaffMember struct {
	ID            uint64
	TenantID      uint64
	Email         string
	Password      string
	FullName      string
	Role          Role
	Active        bool
	EmailVerified bool
	SegmentIDs    []uint64
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (s StaffMember) InSegment(segmentID uint64) bool {
	for _, id := range s.SegmentIDs {
		if id == segmentID {
			return true
		}
	}
	return false
}

type Customer struct {
	ID               uint64
	TenantID         uint64
	SegmentID        uint64
	AgentID          uint64
	FullName         string
	Email            string
	Phone            string
	BVN              string
	NetPay           float64
	DateOfBirth      time.Time
	DateOfEnlistment time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Fee is one entry of a segment's fee schedule. Percent is a fraction of
// principal (0.05 means 5%).
type Fee struct {
	Name    string  `json:"name"`
	Percent float64 `json:"percent"`
}

// SegmentConfig is a tenant's lending policy for one net-pay band of a
// market segment. All configs of the same (tenant, segment) must partition
// the net-pay axis with no gap and no overlap.
type SegmentConfig struct {
	ID              uint64
	TenantID        uint64
	SegmentID       uint64
	Active          bool
	MinLoanAmount   float64
	MaxLoanAmount   float64
	MinTenorMonths  int
	MaxTenorMonths  int
	InterestRate    float64
	Fees            []Fee
	TransferFee     float64
	MinNetPay       float64
	MaxNetPay       float64
	MaxDTI          float64
	MinAge          int
	MaxAge          int
	MaxServiceYears int
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// UpfrontFeePercent is the sum of the fee schedule percents.
func (s SegmentConfig) UpfrontFeePercent() float64 {
	var total float64
	for _, f := range s.Fees {
		total += f.Percent
	}
	return total
}

type Loan struct {
	ID         uint64
	Reference  string
	TenantID   uint64
	CustomerID uint64
	SegmentID  uint64
	AgentID    uint64
	OfficerID  uint64

	Amount         float64
	TenorMonths    int
	ProposedAmount float64
	ProposedTenor  int
	InterestRate   float64

	UpfrontFee     float64
	Repayment      float64
	TotalRepayment float64
	NetValue       float64
	DTI            float64

	AgeValid     bool
	AgeValue     float64
	ServiceValid bool
	ServiceValue float64
	NetPayValid  bool
	NetPayValue  float64
	DTIValid     bool

	Status               LoanStatus
	Remark               string
	DateApprovedOrDenied *time.Time
	DateLiquidated       *time.Time
	MaturityDate         *time.Time

	Active    bool
	Booked    bool
	Disbursed bool
	Locked    bool
	TopUp     bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

type EditTargetType string

const (
	EditTargetCustomer EditTargetType = "customer"
	EditTargetLoan     EditTargetType = "loan"
)

type EditStatus string

const (
	EditPending  EditStatus = "PENDING"
	EditApproved EditStatus = "APPROVED"
	EditDenied   EditStatus = "DENIED"
)

// PendingEdit is a staged mutation awaiting review. Alteration holds the
// proposed field -> value mapping exactly as submitted.
type PendingEdit struct {
	ID          uint64
	Reference   string
	TenantID    uint64
	TargetType  EditTargetType
	TargetID    uint64
	Alteration  map[string]any
	SubmitterID uint64
	ReviewerID  uint64
	Status      EditStatus
	Remark      string
	ResolvedAt  *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (e PendingEdit) Resolved() bool {
	return e.Status != EditPending
}

type JwtCustomClaims struct {
	StaffID  uint64 `json:"staff_id"`
	TenantID uint64 `json:"tenant_id"`
	Role     Role   `json:"role"`
	jwt.RegisteredClaims
}

type Params struct {
	Status string
	Page   int
	Limit  int
}

type Paginated struct {
	Data       any
	Total      int64
	Page       int
	Limit      int
	TotalPages int
}
