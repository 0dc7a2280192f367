package models

import (
	"time"

	"claims-dashboard/internal/core/domain"
)

// ClaimTransition represents claim_transitions table, one row per accepted
// stage change.
type ClaimTransition struct {
	ID                 uint         `gorm:"primaryKey" json:"id"`
	ClaimRecordID      string       `gorm:"size:36;not null;index" json:"claimRecordId"`
	FromStage          domain.Stage `gorm:"size:30;not null" json:"fromStage"`
	ToStage            domain.Stage `gorm:"size:30;not null" json:"toStage"`
	PerformedBy        *string      `gorm:"size:36;index" json:"performedBy"`
	ValidatedViaPortal bool         `gorm:"not null;default:false" json:"validatedViaPortal"`
	TemplatePasted     bool         `gorm:"not null;default:false" json:"templatePasted"`
	CreatedAt          time.Time    `gorm:"autoCreateTime;index" json:"createdAt"`

	Claim     *Claim `gorm:"foreignKey:ClaimRecordID;constraint:OnDelete:CASCADE" json:"-"`
	Performer *User  `gorm:"foreignKey:PerformedBy;constraint:OnDelete:SET NULL" json:"performer,omitempty"`
}

// TableName specifies the table name
func (ClaimTransition) TableName() string {
	return "claim_transitions"
}
