package model

import (
	"time"

	"gorm.io/gorm"

	"github.com/lendora/backoffice/internal/domain"
)

// Tenant represents the tenants table
type Tenant struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	Name      string    `gorm:"type:varchar(255);not null" json:"name"`
	Slug      string    `gorm:"type:varchar(100);not null;uniqueIndex" json:"slug"`
	Active    bool      `gorm:"default:true;not null" json:"active"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	Staff          []StaffMember   `gorm:"foreignKey:TenantID" json:"staff,omitempty"`
	SegmentConfigs []SegmentConfig `gorm:"foreignKey:TenantID" json:"segment_configs,omitempty"`
}

// StaffMember represents the staff_members table
type StaffMember struct {
	ID            uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	TenantID      uint64    `gorm:"not null;index" json:"tenant_id"`
	Email         string    `gorm:"type:varchar(255);not null;uniqueIndex" json:"email"`
	Password      string    `gorm:"type:varchar(255);not null" json:"-"`
	FullName      string    `gorm:"type:varchar(255);not null" json:"full_name"`
	Role          Role      `gorm:"type:enum('admin','loan_agent','credit_officer');not null" json:"role"`
	Active        bool      `gorm:"default:true;not null" json:"active"`
	EmailVerified bool      `gorm:"default:false;not null" json:"email_verified"`
	SegmentIDs    []uint64  `gorm:"serializer:json;type:json" json:"segment_ids"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	Tenant Tenant `gorm:"foreignKey:TenantID;constraint:OnDelete:CASCADE" json:"tenant,omitempty"`
}

// Role enum for staff members
type Role string

const (
	RoleAdmin         Role = "admin"
	RoleLoanAgent     Role = "loan_agent"
	RoleCreditOfficer Role = "credit_officer"
)

// Customer represents the customers table
type Customer struct {
	ID               uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	TenantID         uint64    `gorm:"not null;index" json:"tenant_id"`
	SegmentID        uint64    `gorm:"not null;index" json:"segment_id"`
	AgentID          uint64    `gorm:"index" json:"agent_id"`
	FullName         string    `gorm:"type:varchar(255);not null" json:"full_name"`
	Email            string    `gorm:"type:varchar(255)" json:"email"`
	Phone            string    `gorm:"type:varchar(32)" json:"phone"`
	BVN              string    `gorm:"type:varchar(11);index" json:"bvn"`
	NetPay           float64   `gorm:"type:decimal(15,2);not null" json:"net_pay"`
	DateOfBirth      time.Time `gorm:"type:date;not null" json:"date_of_birth"`
	DateOfEnlistment time.Time `gorm:"type:date" json:"date_of_enlistment"`
	CreatedAt        time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	Loans []Loan `gorm:"foreignKey:CustomerID" json:"loans,omitempty"`
}

// SegmentConfig represents the segment_configs table
type SegmentConfig struct {
	ID              uint64       `gorm:"primaryKey;autoIncrement" json:"id"`
	TenantID        uint64       `gorm:"not null;index:idx_tenant_segment" json:"tenant_id"`
	SegmentID       uint64       `gorm:"not null;index:idx_tenant_segment" json:"segment_id"`
	Active          bool         `gorm:"default:true;not null" json:"active"`
	MinLoanAmount   float64      `gorm:"type:decimal(15,2);not null" json:"min_loan_amount"`
	MaxLoanAmount   float64      `gorm:"type:decimal(15,2);not null" json:"max_loan_amount"`
	MinTenorMonths  int          `gorm:"not null" json:"min_tenor_months"`
	MaxTenorMonths  int          `gorm:"not null" json:"max_tenor_months"`
	InterestRate    float64      `gorm:"type:decimal(8,6);not null" json:"interest_rate"`
	Fees            []domain.Fee `gorm:"serializer:json;type:json" json:"fees"`
	TransferFee     float64      `gorm:"type:decimal(15,2);default:0" json:"transfer_fee"`
	MinNetPay       float64      `gorm:"type:decimal(15,2);not null" json:"min_net_pay"`
	MaxNetPay       float64      `gorm:"type:decimal(15,2);not null" json:"max_net_pay"`
	MaxDTI          float64      `gorm:"type:decimal(6,4);not null" json:"max_dti"`
	MinAge          int          `gorm:"default:0" json:"min_age"`
	MaxAge          int          `gorm:"default:0" json:"max_age"`
	MaxServiceYears int          `gorm:"default:0" json:"max_service_years"`
	CreatedAt       time.Time    `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time    `gorm:"autoUpdateTime" json:"updated_at"`
}

// Loan represents the loans table
type Loan struct {
	ID         uint64 `gorm:"primaryKey;autoIncrement" json:"id"`
	Reference  string `gorm:"type:char(36);not null;uniqueIndex" json:"reference"`
	TenantID   uint64 `gorm:"not null;index" json:"tenant_id"`
	CustomerID uint64 `gorm:"not null;index" json:"customer_id"`
	SegmentID  uint64 `gorm:"not null" json:"segment_id"`
	AgentID    uint64 `gorm:"not null" json:"agent_id"`
	OfficerID  uint64 `gorm:"not null" json:"officer_id"`

	Amount         float64 `gorm:"type:decimal(15,2);not null" json:"amount"`
	TenorMonths    int     `gorm:"not null" json:"tenor_months"`
	ProposedAmount float64 `gorm:"type:decimal(15,2);not null" json:"proposed_amount"`
	ProposedTenor  int     `gorm:"not null" json:"proposed_tenor"`
	InterestRate   float64 `gorm:"type:decimal(8,6);not null" json:"interest_rate"`

	UpfrontFee     float64 `gorm:"type:decimal(15,2);not null" json:"upfront_fee"`
	Repayment      float64 `gorm:"type:decimal(15,2);not null" json:"repayment"`
	TotalRepayment float64 `gorm:"type:decimal(15,2);not null" json:"total_repayment"`
	NetValue       float64 `gorm:"type:decimal(15,2);not null" json:"net_value"`
	DTI            float64 `gorm:"type:decimal(8,6);not null" json:"dti"`

	AgeValid     bool    `gorm:"not null" json:"age_valid"`
	AgeValue     float64 `gorm:"type:decimal(6,2);not null" json:"age_value"`
	ServiceValid bool    `gorm:"not null" json:"service_valid"`
	ServiceValue float64 `gorm:"type:decimal(6,2);not null" json:"service_value"`
	NetPayValid  bool    `gorm:"not null" json:"net_pay_valid"`
	NetPayValue  float64 `gorm:"type:decimal(15,2);not null" json:"net_pay_value"`
	DTIValid     bool    `gorm:"not null" json:"dti_valid"`

	Status               LoanStatus `gorm:"type:enum('PENDING','APPROVED','DENIED','ON_HOLD','LIQUIDATED','DISCONTINUED','COMPLETED');default:'PENDING';not null" json:"status"`
	Remark               string     `gorm:"type:varchar(255)" json:"remark"`
	DateApprovedOrDenied *time.Time `gorm:"type:date" json:"date_approved_or_denied"`
	DateLiquidated       *time.Time `gorm:"type:date" json:"date_liquidated"`
	MaturityDate         *time.Time `gorm:"type:date;index" json:"maturity_date"`

	Active    bool `gorm:"default:false;not null;index" json:"active"`
	Booked    bool `gorm:"default:false;not null" json:"booked"`
	Disbursed bool `gorm:"default:false;not null" json:"disbursed"`
	Locked    bool `gorm:"default:false;not null" json:"locked"`
	TopUp     bool `gorm:"default:false;not null" json:"top_up"`

	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Customer Customer `gorm:"foreignKey:CustomerID;constraint:OnDelete:RESTRICT" json:"customer,omitempty"`
}

// LoanStatus enum for loan lifecycle
type LoanStatus string

const (
	LoanPending      LoanStatus = "PENDING"
	LoanApproved     LoanStatus = "APPROVED"
	LoanDenied       LoanStatus = "DENIED"
	LoanOnHold       LoanStatus = "ON_HOLD"
	LoanLiquidated   LoanStatus = "LIQUIDATED"
	LoanDiscontinued LoanStatus = "DISCONTINUED"
	LoanCompleted    LoanStatus = "COMPLETED"
)

// PendingEdit represents the pending_edits table
type PendingEdit struct {
	ID          uint64         `gorm:"primaryKey;autoIncrement" json:"id"`
	Reference   string         `gorm:"type:char(36);not null;uniqueIndex" json:"reference"`
	TenantID    uint64         `gorm:"not null;index" json:"tenant_id"`
	TargetType  string         `gorm:"type:enum('customer','loan');not null" json:"target_type"`
	TargetID    uint64         `gorm:"not null;index" json:"target_id"`
	Alteration  map[string]any `gorm:"serializer:json;type:json;not null" json:"alteration"`
	SubmitterID uint64         `gorm:"not null" json:"submitter_id"`
	ReviewerID  uint64         `json:"reviewer_id"`
	Status      string         `gorm:"type:enum('PENDING','APPROVED','DENIED');default:'PENDING';not null" json:"status"`
	Remark      string         `gorm:"type:varchar(255)" json:"remark"`
	ResolvedAt  *time.Time     `json:"resolved_at"`
	CreatedAt   time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName methods to specify custom table names if needed
func (Tenant) TableName() string {
	return "tenants"
}

func (StaffMember) TableName() string {
	return "staff_members"
}

func (Customer) TableName() string {
	return "customers"
}

func (SegmentConfig) TableName() string {
	return "segment_configs"
}

func (Loan) TableName() string {
	return "loans"
}

func (PendingEdit) TableName() string {
	return "pending_edits"
}

// Database migration function
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&Tenant{},
		&StaffMember{},
		&Customer{},
		&SegmentConfig{},
		&Loan{},
		&PendingEdit{},
	)
}
