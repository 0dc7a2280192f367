package domain

import (
	"fmt"
	"strings"
)

// Role is a user role.
type Role string

const (
	RoleAdmin     Role = "ADMIN"
	RoleAnnotator Role = "ANNOTATOR"
)

// ParseRole accepts a role name in any case. Empty defaults to ANNOTATOR.
func ParseRole(s string) (Role, error) {
	switch Role(strings.ToUpper(strings.TrimSpace(s))) {
	case "", RoleAnnotator:
		return RoleAnnotator, nil
	case RoleAdmin:
		return RoleAdmin, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidRole, s)
}

// ClaimStatus is the payer-reported outcome of a claim.
type ClaimStatus string

const (
	StatusPaid            ClaimStatus = "PAID"
	StatusDenied          ClaimStatus = "DENIED"
	StatusPartiallyPaid   ClaimStatus = "PARTIALLY_PAID"
	StatusInProcess       ClaimStatus = "IN_PROCESS"
	StatusNotOnFile       ClaimStatus = "NOT_ON_FILE"
	StatusPatientNotFound ClaimStatus = "PATIENT_NOT_FOUND"
	StatusNoPortalAccess  ClaimStatus = "NO_PORTAL_ACCESS"
	StatusPending         ClaimStatus = "PENDING"
)

var claimStatuses = []ClaimStatus{
	StatusPaid,
	StatusDenied,
	StatusPartiallyPaid,
	StatusInProcess,
	StatusNotOnFile,
	StatusPatientNotFound,
	StatusNoPortalAccess,
	StatusPending,
}

// ClaimStatuses returns every known status in display order.
func ClaimStatuses() []ClaimStatus {
	out := make([]ClaimStatus, len(claimStatuses))
	copy(out, claimStatuses)
	return out
}

// IsValid reports whether s is a known status.
func (s ClaimStatus) IsValid() bool {
	for _, known := range claimStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// IsPaid reports whether the status carries payment details.
func (s ClaimStatus) IsPaid() bool {
	return s == StatusPaid || s == StatusPartiallyPaid
}

// IsDenied reports whether the status carries denial details.
func (s ClaimStatus) IsDenied() bool {
	return s == StatusDenied || s == StatusPartiallyPaid
}

// ParseClaimStatus validates a status name.
func ParseClaimStatus(s string) (ClaimStatus, error) {
	status := ClaimStatus(strings.TrimSpace(s))
	if !status.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidClaimStatus, s)
	}
	return status, nil
}

// Side selects the primary or secondary coverage of a claim.
type Side string

const (
	SidePrimary   Side = "primary"
	SideSecondary Side = "secondary"
)

// ParseSide accepts "primary", "secondary" or empty (primary).
func ParseSide(s string) (Side, error) {
	switch Side(strings.ToLower(strings.TrimSpace(s))) {
	case "", SidePrimary:
		return SidePrimary, nil
	case SideSecondary:
		return SideSecondary, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidSide, s)
}
