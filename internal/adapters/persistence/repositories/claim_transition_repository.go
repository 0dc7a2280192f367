package repositories

import (
	"context"

	"claims-dashboard/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// claimTransitionRepository implements ClaimTransitionRepository interface
type claimTransitionRepository struct {
	db *gorm.DB
}

// NewClaimTransitionRepository creates a new claim transition repository
func NewClaimTransitionRepository(db *gorm.DB) ClaimTransitionRepository {
	return &claimTransitionRepository{db: db}
}

// ListByClaim lists the stage history of a claim, newest first
func (r *claimTransitionRepository) ListByClaim(ctx context.Context, claimID string) ([]*models.ClaimTransition, error) {
	var transitions []*models.ClaimTransition
	err := r.db.WithContext(ctx).
		Preload("Performer", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "name", "email", "role")
		}).
		Where("claim_record_id = ?", claimID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&transitions).Error
	if err != nil {
		return nil, err
	}
	return transitions, nil
}
