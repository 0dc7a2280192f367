package repositories

import (
	"context"
	"strings"

	"claims-dashboard/internal/adapters/persistence/models"
	"claims-dashboard/internal/core/domain"

	"gorm.io/gorm"
)

// searchColumns are matched case-insensitively by the free-text search
var searchColumns = []string{
	"patient_first_name",
	"patient_last_name",
	"primary_member_id",
	"secondary_member_id",
	"claim_id",
	"mrn",
}

var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

// claimRepository implements ClaimRepository interface
type claimRepository struct {
	db *gorm.DB
}

// NewClaimRepository creates a new claim repository
func NewClaimRepository(db *gorm.DB) ClaimRepository {
	return &claimRepository{db: db}
}

func withAssignee(db *gorm.DB) *gorm.DB {
	return db.Preload("AssignedTo", func(db *gorm.DB) *gorm.DB {
		return db.Select("id", "name", "email")
	})
}

// Create creates a new claim
func (r *claimRepository) Create(ctx context.Context, claim *models.Claim) error {
	return r.db.WithContext(ctx).Create(claim).Error
}

// CreateBatch inserts claims in batches inside one transaction
func (r *claimRepository) CreateBatch(ctx context.Context, claims []*models.Claim, batchSize int) (int64, error) {
	if len(claims) == 0 {
		return 0, nil
	}

	var created int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.CreateInBatches(claims, batchSize)
		if result.Error != nil {
			return result.Error
		}
		created = result.RowsAffected
		return nil
	})
	if err != nil {
		return 0, err
	}
	return created, nil
}

// GetByID gets a claim with its assignee
func (r *claimRepository) GetByID(ctx context.Context, id string) (*models.Claim, error) {
	var claim models.Claim
	err := withAssignee(r.db.WithContext(ctx)).Where("id = ?", id).First(&claim).Error
	if err != nil {
		return nil, err
	}
	return &claim, nil
}

// List lists claims matching the filter, newest first
func (r *claimRepository) List(ctx context.Context, filter domain.ClaimFilter) ([]*models.Claim, error) {
	var claims []*models.Claim

	query := r.applyFilter(ctx, r.db.WithContext(ctx).Model(&models.Claim{}), filter)
	err := withAssignee(query).
		Order("created_at DESC").
		Find(&claims).Error
	if err != nil {
		return nil, err
	}
	return claims, nil
}

func (r *claimRepository) applyFilter(ctx context.Context, q *gorm.DB, f domain.ClaimFilter) *gorm.DB {
	if search := strings.TrimSpace(f.Search); search != "" {
		conds := make([]string, len(searchColumns))
		for i, col := range searchColumns {
			conds[i] = "LOWER(" + col + ") LIKE @q ESCAPE '!'"
		}
		pattern := "%" + likeEscaper.Replace(strings.ToLower(search)) + "%"
		q = q.Where("("+strings.Join(conds, " OR ")+")", map[string]interface{}{"q": pattern})
	}

	if len(f.Stages) > 0 {
		q = q.Where("stage IN ?", toStrings(f.Stages))
	}
	if len(f.Statuses) > 0 {
		q = q.Where("claim_status IN ?", toStrings(f.Statuses))
	}

	if f.AssigneeID != "" {
		q = q.Where("assigned_to_id = ?", f.AssigneeID)
	}
	if f.Assignee != "" {
		users := r.db.WithContext(ctx).Model(&models.User{}).Select("id").Where("name = ?", f.Assignee)
		q = q.Where("assigned_to_id IN (?)", users)
	}

	if len(f.PrimaryPlans) > 0 {
		q = q.Where("primary_insurance IN ?", f.PrimaryPlans)
	}
	if len(f.SecondaryPlans) > 0 {
		q = q.Where("secondary_insurance IN ?", f.SecondaryPlans)
	}
	if len(f.ProviderNPIs) > 0 {
		q = q.Where("provider_npi IN ?", f.ProviderNPIs)
	}

	if f.DateFrom != nil {
		q = q.Where("date_of_service >= ?", *f.DateFrom)
	}
	if f.DateTo != nil {
		q = q.Where("date_of_service <= ?", *f.DateTo)
	}

	return q
}

func toStrings[T ~string](values []T) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = string(v)
	}
	return out
}

// Apply updates the given columns and, when transition is set, moves the
// stage and records the transition. The stage only moves if it still equals
// transition.FromStage; otherwise ErrStageChanged is returned.
func (r *claimRepository) Apply(ctx context.Context, id string, values map[string]interface{}, transition *models.ClaimTransition) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		query := tx.Model(&models.Claim{}).Where("id = ?", id)
		if transition != nil {
			if values == nil {
				values = map[string]interface{}{}
			}
			values["stage"] = string(transition.ToStage)
			query = query.Where("stage = ?", string(transition.FromStage))
		}
		if len(values) == 0 {
			return nil
		}

		result := query.Updates(values)
		if result.Error != nil {
			return result.Error
		}
		if transition == nil {
			return nil
		}
		if result.RowsAffected == 0 {
			return domain.ErrStageChanged
		}

		transition.ClaimRecordID = id
		return tx.Create(transition).Error
	})
}

// Delete hard-deletes a claim and its stage history
func (r *claimRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("claim_record_id = ?", id).Delete(&models.ClaimTransition{}).Error; err != nil {
			return err
		}
		result := tx.Where("id = ?", id).Delete(&models.Claim{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

// AssignMany sets the assignee on every listed claim in one statement.
// Unknown ids are skipped.
func (r *claimRepository) AssignMany(ctx context.Context, ids []string, userID string) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Claim{}).
		Where("id IN ?", ids).
		Update("assigned_to_id", userID)
	return result.RowsAffected, result.Error
}

// Providers returns distinct provider name/NPI combinations
func (r *claimRepository) Providers(ctx context.Context) ([]ProviderRow, error) {
	var rows []ProviderRow
	err := r.db.WithContext(ctx).
		Model(&models.Claim{}).
		Distinct("provider_npi", "provider_first_name", "provider_last_name").
		Order("provider_npi").
		Order("provider_last_name").
		Order("provider_first_name").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// Count counts all claims
func (r *claimRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Claim{}).Count(&count).Error
	return count, err
}
