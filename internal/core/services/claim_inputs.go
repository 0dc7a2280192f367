package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"claims-dashboard/internal/core/domain"
	"claims-dashboard/internal/pkg/dates"

	"github.com/oapi-codegen/nullable"
	"github.com/shopspring/decimal"
)

// CreateClaimInput represents create claim input
type CreateClaimInput struct {
	ClaimID            string          `json:"claimId"`
	MRN                string          `json:"mrn"`
	PatientFirstName   string          `json:"patientFirstName"`
	PatientLastName    string          `json:"patientLastName"`
	DateOfBirth        string          `json:"dateOfBirth"`
	DateOfService      string          `json:"dateOfService"`
	ChargeAmount       decimal.Decimal `json:"chargeAmount"`
	PrimaryInsurance   string          `json:"primaryInsurance"`
	PrimaryMemberID    string          `json:"primaryMemberId"`
	SecondaryInsurance *string         `json:"secondaryInsurance"`
	SecondaryMemberID  *string         `json:"secondaryMemberId"`
	ProviderFirstName  string          `json:"providerFirstName"`
	ProviderLastName   string          `json:"providerLastName"`
	ProviderNPI        string          `json:"providerNpi"`
	Stage              string          `json:"stage"`
	ClaimStatus        *string         `json:"claimStatus"`
	AssignedToID       *string         `json:"assignedToId"`
}

// UpdateClaimInput is a partial update. Omitted keys are left untouched,
// null or "" clears a column, any other value sets it. Amounts accept a JSON
// number or a numeric string.
type UpdateClaimInput struct {
	ClaimID            nullable.Nullable[string]          `json:"claimId"`
	MRN                nullable.Nullable[string]          `json:"mrn"`
	PatientFirstName   nullable.Nullable[string]          `json:"patientFirstName"`
	PatientLastName    nullable.Nullable[string]          `json:"patientLastName"`
	DateOfBirth        nullable.Nullable[string]          `json:"dateOfBirth"`
	DateOfService      nullable.Nullable[string]          `json:"dateOfService"`
	ChargeAmount       nullable.Nullable[json.RawMessage] `json:"chargeAmount"`
	PrimaryInsurance   nullable.Nullable[string]          `json:"primaryInsurance"`
	PrimaryMemberID    nullable.Nullable[string]          `json:"primaryMemberId"`
	SecondaryInsurance nullable.Nullable[string]          `json:"secondaryInsurance"`
	SecondaryMemberID  nullable.Nullable[string]          `json:"secondaryMemberId"`
	ProviderFirstName  nullable.Nullable[string]          `json:"providerFirstName"`
	ProviderLastName   nullable.Nullable[string]          `json:"providerLastName"`
	ProviderNPI        nullable.Nullable[string]          `json:"providerNpi"`
	AssignedToID       nullable.Nullable[string]          `json:"assignedToId"`

	Stage nullable.Nullable[string] `json:"stage"`
	domain.Confirmation

	ClaimNumber       nullable.Nullable[string]          `json:"claimNumber"`
	ClaimReceivedDate nullable.Nullable[string]          `json:"claimReceivedDate"`
	ClaimStatus       nullable.Nullable[string]          `json:"claimStatus"`
	CheckNumber       nullable.Nullable[string]          `json:"checkNumber"`
	CheckDate         nullable.Nullable[string]          `json:"checkDate"`
	PaidAmount        nullable.Nullable[json.RawMessage] `json:"paidAmount"`
	PaymentDate       nullable.Nullable[string]          `json:"paymentDate"`
	DenialCodes       nullable.Nullable[string]          `json:"denialCodes"`
	DeniedLineItems   nullable.Nullable[string]          `json:"deniedLineItems"`
	DenialDescription nullable.Nullable[string]          `json:"denialDescription"`
	Remarks           nullable.Nullable[string]          `json:"remarks"`

	SecondaryClaimNumber       nullable.Nullable[string]          `json:"secondaryClaimNumber"`
	SecondaryClaimReceivedDate nullable.Nullable[string]          `json:"secondaryClaimReceivedDate"`
	SecondaryClaimStatus       nullable.Nullable[string]          `json:"secondaryClaimStatus"`
	SecondaryCheckNumber       nullable.Nullable[string]          `json:"secondaryCheckNumber"`
	SecondaryCheckDate         nullable.Nullable[string]          `json:"secondaryCheckDate"`
	SecondaryPaidAmount        nullable.Nullable[json.RawMessage] `json:"secondaryPaidAmount"`
	SecondaryPaymentDate       nullable.Nullable[string]          `json:"secondaryPaymentDate"`
	SecondaryDenialCodes       nullable.Nullable[string]          `json:"secondaryDenialCodes"`
	SecondaryDeniedLineItems   nullable.Nullable[string]          `json:"secondaryDeniedLineItems"`
	SecondaryDenialDescription nullable.Nullable[string]          `json:"secondaryDenialDescription"`
	SecondaryRemarks           nullable.Nullable[string]          `json:"secondaryRemarks"`
}

// columns converts every field except stage and assignee into a column map.
func (in *UpdateClaimInput) columns() (map[string]interface{}, error) {
	b := &columnBuilder{values: map[string]interface{}{}}

	b.required("claim_id", "claimId", in.ClaimID)
	b.required("mrn", "mrn", in.MRN)
	b.required("patient_first_name", "patientFirstName", in.PatientFirstName)
	b.required("patient_last_name", "patientLastName", in.PatientLastName)
	b.requiredDate("date_of_birth", "dateOfBirth", in.DateOfBirth)
	b.requiredDate("date_of_service", "dateOfService", in.DateOfService)
	b.amount("charge_amount", "chargeAmount", in.ChargeAmount, true)
	b.required("primary_insurance", "primaryInsurance", in.PrimaryInsurance)
	b.text("primary_member_id", in.PrimaryMemberID)
	b.nullable("secondary_insurance", in.SecondaryInsurance)
	b.nullable("secondary_member_id", in.SecondaryMemberID)
	b.required("provider_first_name", "providerFirstName", in.ProviderFirstName)
	b.required("provider_last_name", "providerLastName", in.ProviderLastName)
	b.required("provider_npi", "providerNpi", in.ProviderNPI)
	b.nullable("assigned_to_id", in.AssignedToID)

	b.nullable("claim_number", in.ClaimNumber)
	b.date("claim_received_date", "claimReceivedDate", in.ClaimReceivedDate)
	b.status("claim_status", "claimStatus", in.ClaimStatus)
	b.nullable("check_number", in.CheckNumber)
	b.date("check_date", "checkDate", in.CheckDate)
	b.amount("paid_amount", "paidAmount", in.PaidAmount, false)
	b.date("payment_date", "paymentDate", in.PaymentDate)
	b.nullable("denial_codes", in.DenialCodes)
	b.nullable("denied_line_items", in.DeniedLineItems)
	b.nullable("denial_description", in.DenialDescription)
	b.nullable("remarks", in.Remarks)

	b.nullable("secondary_claim_number", in.SecondaryClaimNumber)
	b.date("secondary_claim_received_date", "secondaryClaimReceivedDate", in.SecondaryClaimReceivedDate)
	b.status("secondary_claim_status", "secondaryClaimStatus", in.SecondaryClaimStatus)
	b.nullable("secondary_check_number", in.SecondaryCheckNumber)
	b.date("secondary_check_date", "secondaryCheckDate", in.SecondaryCheckDate)
	b.amount("secondary_paid_amount", "secondaryPaidAmount", in.SecondaryPaidAmount, false)
	b.date("secondary_payment_date", "secondaryPaymentDate", in.SecondaryPaymentDate)
	b.nullable("secondary_denial_codes", in.SecondaryDenialCodes)
	b.nullable("secondary_denied_line_items", in.SecondaryDeniedLineItems)
	b.nullable("secondary_denial_description", in.SecondaryDenialDescription)
	b.nullable("secondary_remarks", in.SecondaryRemarks)

	return b.values, b.err
}

// columnBuilder collects column assignments and keeps the first error.
type columnBuilder struct {
	values map[string]interface{}
	err    error
}

func (b *columnBuilder) fail(err error) {
	if b.err == nil {
		b.err = err
	}
}

// patchText unpacks a text member of a patch. set reports that the key was
// sent; null and blank strings come back as cleared.
func patchText(f nullable.Nullable[string]) (value string, set, cleared bool) {
	if !f.IsSpecified() {
		return "", false, false
	}
	if f.IsNull() {
		return "", true, true
	}
	value = strings.TrimSpace(f.MustGet())
	return value, true, value == ""
}

func (b *columnBuilder) required(column, name string, f nullable.Nullable[string]) {
	v, set, cleared := patchText(f)
	if !set {
		return
	}
	if cleared {
		b.fail(fmt.Errorf("%w: %s", domain.ErrRequiredField, name))
		return
	}
	b.values[column] = v
}

// text is a non-null column where clearing stores "".
func (b *columnBuilder) text(column string, f nullable.Nullable[string]) {
	if v, set, _ := patchText(f); set {
		b.values[column] = v
	}
}

func (b *columnBuilder) nullable(column string, f nullable.Nullable[string]) {
	v, set, cleared := patchText(f)
	switch {
	case !set:
	case cleared:
		b.values[column] = nil
	default:
		b.values[column] = v
	}
}

func (b *columnBuilder) requiredDate(column, name string, f nullable.Nullable[string]) {
	if _, set, cleared := patchText(f); set && cleared {
		b.fail(fmt.Errorf("%w: %s", domain.ErrRequiredField, name))
		return
	}
	b.date(column, name, f)
}

func (b *columnBuilder) date(column, name string, f nullable.Nullable[string]) {
	v, set, cleared := patchText(f)
	if !set {
		return
	}
	if cleared {
		b.values[column] = nil
		return
	}
	t, err := dates.Parse(v)
	if err != nil {
		b.fail(fmt.Errorf("%w: %s: %v", domain.ErrInvalidDate, name, err))
		return
	}
	b.values[column] = t
}

func (b *columnBuilder) amount(column, name string, f nullable.Nullable[json.RawMessage], required bool) {
	if !f.IsSpecified() {
		return
	}
	var raw []byte
	if !f.IsNull() {
		raw = bytes.TrimSpace(f.MustGet())
	}
	if len(raw) == 0 || bytes.Equal(raw, []byte(`""`)) {
		if required {
			b.fail(fmt.Errorf("%w: %s", domain.ErrRequiredField, name))
			return
		}
		b.values[column] = nil
		return
	}

	var d decimal.Decimal
	if err := d.UnmarshalJSON(raw); err != nil {
		b.fail(fmt.Errorf("%w: %s: %s", domain.ErrInvalidAmount, name, raw))
		return
	}
	if d.IsNegative() {
		b.fail(fmt.Errorf("%w: %s must not be negative", domain.ErrInvalidAmount, name))
		return
	}
	b.values[column] = d
}

func (b *columnBuilder) status(column, name string, f nullable.Nullable[string]) {
	v, set, cleared := patchText(f)
	if !set {
		return
	}
	if cleared {
		b.values[column] = nil
		return
	}
	status, err := domain.ParseClaimStatus(v)
	if err != nil {
		b.fail(fmt.Errorf("%s: %w", name, err))
		return
	}
	b.values[column] = string(status)
}

// AdvanceStageInput represents a stage change request
type AdvanceStageInput struct {
	Stage string `json:"stage"`
	domain.Confirmation
}

// BulkAssignInput represents bulk assign input
type BulkAssignInput struct {
	ClaimIDs []string `json:"claimIds"`
	UserID   string   `json:"userId"`
}

// BulkAssignResult reports how many claims were assigned
type BulkAssignResult struct {
	Requested int   `json:"requested"`
	Updated   int64 `json:"updated"`
}

// Provider is one distinct provider for filter pick lists
type Provider struct {
	Name string `json:"name"`
	NPI  string `json:"npi"`
}
