package models

import (
	"time"

	"claims-dashboard/internal/core/domain"
	"claims-dashboard/internal/pkg/dates"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Claim represents claims table. Outcome columns exist once per coverage
// side; the secondary set only carries meaning when SecondaryInsurance is set.
type Claim struct {
	ID                 string          `gorm:"primaryKey;size:36" json:"id"`
	ClaimID            string          `gorm:"size:100;not null;index" json:"claimId"`
	MRN                string          `gorm:"column:mrn;size:50;not null;index" json:"mrn"`
	PatientFirstName   string          `gorm:"size:100;not null" json:"patientFirstName"`
	PatientLastName    string          `gorm:"size:100;not null" json:"patientLastName"`
	DateOfBirth        time.Time       `gorm:"not null" json:"dateOfBirth"`
	DateOfService      time.Time       `gorm:"not null;index" json:"dateOfService"`
	ChargeAmount       decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"chargeAmount"`
	PrimaryInsurance   string          `gorm:"size:150;not null;index" json:"primaryInsurance"`
	PrimaryMemberID    string          `gorm:"size:100;not null" json:"primaryMemberId"`
	SecondaryInsurance *string         `gorm:"size:150;index" json:"secondaryInsurance"`
	SecondaryMemberID  *string         `gorm:"size:100" json:"secondaryMemberId"`
	ProviderFirstName  string          `gorm:"size:100;not null" json:"providerFirstName"`
	ProviderLastName   string          `gorm:"size:100;not null" json:"providerLastName"`
	ProviderNPI        string          `gorm:"column:provider_npi;size:20;not null;index" json:"providerNpi"`
	Stage              domain.Stage    `gorm:"size:30;not null;default:PENDING;index" json:"stage"`

	ClaimNumber       *string             `gorm:"size:100" json:"claimNumber"`
	ClaimReceivedDate *time.Time          `json:"claimReceivedDate"`
	ClaimStatus       *domain.ClaimStatus `gorm:"size:30;index" json:"claimStatus"`
	CheckNumber       *string             `gorm:"size:100" json:"checkNumber"`
	CheckDate         *time.Time          `json:"checkDate"`
	PaidAmount        *decimal.Decimal    `gorm:"type:decimal(12,2)" json:"paidAmount"`
	PaymentDate       *time.Time          `json:"paymentDate"`
	DenialCodes       *string             `gorm:"size:255" json:"denialCodes"`
	DeniedLineItems   *string             `gorm:"size:255" json:"deniedLineItems"`
	DenialDescription *string             `gorm:"type:text" json:"denialDescription"`
	Remarks           *string             `gorm:"type:text" json:"remarks"`

	SecondaryClaimNumber       *string             `gorm:"size:100" json:"secondaryClaimNumber"`
	SecondaryClaimReceivedDate *time.Time          `json:"secondaryClaimReceivedDate"`
	SecondaryClaimStatus       *domain.ClaimStatus `gorm:"size:30" json:"secondaryClaimStatus"`
	SecondaryCheckNumber       *string             `gorm:"size:100" json:"secondaryCheckNumber"`
	SecondaryCheckDate         *time.Time          `json:"secondaryCheckDate"`
	SecondaryPaidAmount        *decimal.Decimal    `gorm:"type:decimal(12,2)" json:"secondaryPaidAmount"`
	SecondaryPaymentDate       *time.Time          `json:"secondaryPaymentDate"`
	SecondaryDenialCodes       *string             `gorm:"size:255" json:"secondaryDenialCodes"`
	SecondaryDeniedLineItems   *string             `gorm:"size:255" json:"secondaryDeniedLineItems"`
	SecondaryDenialDescription *string             `gorm:"type:text" json:"secondaryDenialDescription"`
	SecondaryRemarks           *string             `gorm:"type:text" json:"secondaryRemarks"`

	AssignedToID *string   `gorm:"size:36;index" json:"assignedToId"`
	AssignedTo   *User     `gorm:"foreignKey:AssignedToID;constraint:OnDelete:SET NULL" json:"-"`
	CreatedAt    time.Time `gorm:"autoCreateTime;index" json:"createdAt"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

// TableName specifies the table name
func (Claim) TableName() string {
	return "claims"
}

// BeforeCreate assigns a UUID and the initial stage
func (c *Claim) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.Stage == "" {
		c.Stage = domain.StagePending
	}
	return nil
}

// ClaimResponse is a claim with its assignee summary
type ClaimResponse struct {
	*Claim
	AssignedTo *UserSummary `json:"assignedTo"`
}

// ToResponse converts Claim to ClaimResponse
func (c *Claim) ToResponse() *ClaimResponse {
	return &ClaimResponse{
		Claim:      c,
		AssignedTo: c.AssignedTo.ToSummary(),
	}
}

// ToResponses converts a slice of claims
func ToResponses(claims []*Claim) []*ClaimResponse {
	out := make([]*ClaimResponse, len(claims))
	for i, c := range claims {
		out[i] = c.ToResponse()
	}
	return out
}

// Outcome is the payer result for one coverage side
type Outcome struct {
	Plan              *string
	MemberID          *string
	ClaimNumber       *string
	ClaimReceivedDate *time.Time
	ClaimStatus       *domain.ClaimStatus
	CheckNumber       *string
	CheckDate         *time.Time
	PaidAmount        *decimal.Decimal
	PaymentDate       *time.Time
	DenialCodes       *string
	DeniedLineItems   *string
	DenialDescription *string
	Remarks           *string
}

// Outcome returns the outcome columns for a side
func (c *Claim) Outcome(side domain.Side) Outcome {
	if side == domain.SideSecondary {
		return Outcome{
			Plan:              c.SecondaryInsurance,
			MemberID:          c.SecondaryMemberID,
			ClaimNumber:       c.SecondaryClaimNumber,
			ClaimReceivedDate: c.SecondaryClaimReceivedDate,
			ClaimStatus:       c.SecondaryClaimStatus,
			CheckNumber:       c.SecondaryCheckNumber,
			CheckDate:         c.SecondaryCheckDate,
			PaidAmount:        c.SecondaryPaidAmount,
			PaymentDate:       c.SecondaryPaymentDate,
			DenialCodes:       c.SecondaryDenialCodes,
			DeniedLineItems:   c.SecondaryDeniedLineItems,
			DenialDescription: c.SecondaryDenialDescription,
			Remarks:           c.SecondaryRemarks,
		}
	}

	plan := c.PrimaryInsurance
	member := c.PrimaryMemberID
	return Outcome{
		Plan:              &plan,
		MemberID:          &member,
		ClaimNumber:       c.ClaimNumber,
		ClaimReceivedDate: c.ClaimReceivedDate,
		ClaimStatus:       c.ClaimStatus,
		CheckNumber:       c.CheckNumber,
		CheckDate:         c.CheckDate,
		PaidAmount:        c.PaidAmount,
		PaymentDate:       c.PaymentDate,
		DenialCodes:       c.DenialCodes,
		DeniedLineItems:   c.DeniedLineItems,
		DenialDescription: c.DenialDescription,
		Remarks:           c.Remarks,
	}
}

// ExportRecord renders the claim as one export row in export column order
func (c *Claim) ExportRecord() []string {
	assignee := ""
	if c.AssignedTo != nil {
		assignee = c.AssignedTo.Name
	}
	status := ""
	if c.ClaimStatus != nil {
		status = string(*c.ClaimStatus)
	}

	return []string{
		c.PatientFirstName,
		c.PatientLastName,
		c.MRN,
		dates.ISO(c.DateOfBirth),
		dates.ISO(c.DateOfService),
		c.ChargeAmount.String(),
		c.PrimaryInsurance,
		c.PrimaryMemberID,
		str(c.SecondaryInsurance),
		str(c.SecondaryMemberID),
		c.ProviderFirstName,
		c.ProviderLastName,
		c.ProviderNPI,
		c.ClaimID,
		string(c.Stage),
		status,
		str(c.ClaimNumber),
		dates.ISOPtr(c.ClaimReceivedDate),
		str(c.CheckNumber),
		dates.ISOPtr(c.CheckDate),
		decimalStr(c.PaidAmount),
		dates.ISOPtr(c.PaymentDate),
		str(c.DenialCodes),
		str(c.DeniedLineItems),
		str(c.DenialDescription),
		str(c.Remarks),
		assignee,
	}
}

func str(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func decimalStr(d *decimal.Decimal) string {
	if d == nil {
		return ""
	}
	return d.String()
}
