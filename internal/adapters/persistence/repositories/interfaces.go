package repositories

import (
	"context"
	"time"

	"claims-dashboard/internal/adapters/persistence/models"
	"claims-dashboard/internal/core/domain"
)

// UserRepository defines user repository interface
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	List(ctx context.Context, q UserQuery, offset, limit int) ([]*models.User, int64, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}

// RefreshTokenRepository defines refresh token repository interface
type RefreshTokenRepository interface {
	Create(ctx context.Context, token *models.RefreshToken) error
	GetByTokenHash(ctx context.Context, tokenHash string) (*models.RefreshToken, error)
	Revoke(ctx context.Context, id uint) error
	RevokeByTokenHash(ctx context.Context, tokenHash string) error
	RevokeAllByUserID(ctx context.Context, userID string) error
	DeleteStale(ctx context.Context, revokedBefore time.Time) (int64, error)
}

// ClaimRepository defines claim repository interface
type ClaimRepository interface {
	Create(ctx context.Context, claim *models.Claim) error
	CreateBatch(ctx context.Context, claims []*models.Claim, batchSize int) (int64, error)
	GetByID(ctx context.Context, id string) (*models.Claim, error)
	List(ctx context.Context, filter domain.ClaimFilter) ([]*models.Claim, error)
	Apply(ctx context.Context, id string, values map[string]interface{}, transition *models.ClaimTransition) error
	Delete(ctx context.Context, id string) error
	AssignMany(ctx context.Context, ids []string, userID string) (int64, error)
	Providers(ctx context.Context) ([]ProviderRow, error)
	Count(ctx context.Context) (int64, error)
}

// ClaimTransitionRepository defines stage history repository interface
type ClaimTransitionRepository interface {
	ListByClaim(ctx context.Context, claimID string) ([]*models.ClaimTransition, error)
}

// ProviderRow is one distinct provider as stored on claims
type ProviderRow struct {
	ProviderNPI       string
	ProviderFirstName string
	ProviderLastName  string
}
