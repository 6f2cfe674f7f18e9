package domain

import (
	"errors"
	"fmt"
)

// ValidationKind classifies policy-violating input.
type ValidationKind string

const (
	ValidationGap           ValidationKind = "GAP"
	ValidationOverlap       ValidationKind = "OVERLAP"
	ValidationMissingRemark ValidationKind = "MISSING_REMARK"
	ValidationUnknownRemark ValidationKind = "UNKNOWN_REMARK"
	ValidationOutOfRange    ValidationKind = "OUT_OF_RANGE"
)

// ValidationError is rejected input: the operation is refused before any
// mutation. Index points at the offending band pair for GAP/OVERLAP.
type ValidationError struct {
	Kind  ValidationKind
	Field string
	Index int
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed: %s on %s", e.Kind, e.Field)
	}
	return fmt.Sprintf("validation failed: %s", e.Kind)
}

// DomainError is a legal request that the current state disallows, e.g. an
// illegal lifecycle transition or editing a locked loan.
type DomainError struct {
	Op      string
	Current string
}

func (e *DomainError) Error() string {
	return fmt.Sprintf("%s not allowed in state %s", e.Op, e.Current)
}

// NotFoundError is a hard failure; the caller must not substitute defaults.
type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string {
	return e.Resource + " not found"
}

var (
	ErrTenantNotFound        = &NotFoundError{Resource: "tenant"}
	ErrCustomerNotFound      = &NotFoundError{Resource: "customer"}
	ErrLoanNotFound          = &NotFoundError{Resource: "loan"}
	ErrSegmentPolicyNotFound = &NotFoundError{Resource: "segment policy"}
	ErrStaffNotFound         = &NotFoundError{Resource: "eligible staff"}
	ErrEditNotFound          = &NotFoundError{Resource: "pending edit"}

	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailExists        = errors.New("staff email already registered")
)
