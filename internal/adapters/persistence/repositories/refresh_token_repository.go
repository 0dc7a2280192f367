package repositories

import (
	"context"
	"time"

	"claims-dashboard/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// refreshTokenRepository stores hashed refresh tokens. Rows are revoked
// rather than deleted so a replayed token can still be recognized; the purge
// job removes them later through DeleteStale.
type refreshTokenRepository struct {
	db  *gorm.DB
	now func() time.Time
}

// NewRefreshTokenRepository creates a new refresh token repository
func NewRefreshTokenRepository(db *gorm.DB) RefreshTokenRepository {
	return &refreshTokenRepository{db: db, now: time.Now}
}

func (r *refreshTokenRepository) Create(ctx context.Context, token *models.RefreshToken) error {
	return r.db.WithContext(ctx).Create(token).Error
}

// GetByTokenHash finds a token by hash, revoked or not
func (r *refreshTokenRepository) GetByTokenHash(ctx context.Context, tokenHash string) (*models.RefreshToken, error) {
	var token models.RefreshToken
	if err := r.db.WithContext(ctx).Where("token_hash = ?", tokenHash).First(&token).Error; err != nil {
		return nil, err
	}
	return &token, nil
}

func (r *refreshTokenRepository) Revoke(ctx context.Context, id uint) error {
	return r.revokeWhere(ctx, "id = ?", id)
}

func (r *refreshTokenRepository) RevokeByTokenHash(ctx context.Context, tokenHash string) error {
	return r.revokeWhere(ctx, "token_hash = ?", tokenHash)
}

func (r *refreshTokenRepository) RevokeAllByUserID(ctx context.Context, userID string) error {
	return r.revokeWhere(ctx, "user_id = ?", userID)
}

// revokeWhere stamps revoked_at on matching live tokens; already revoked
// rows keep their original timestamp.
func (r *refreshTokenRepository) revokeWhere(ctx context.Context, cond string, arg interface{}) error {
	return r.db.WithContext(ctx).
		Model(&models.RefreshToken{}).
		Where(cond, arg).
		Where("revoked_at IS NULL").
		Update("revoked_at", r.now()).Error
}

// DeleteStale deletes expired tokens and tokens revoked before the cutoff
func (r *refreshTokenRepository) DeleteStale(ctx context.Context, revokedBefore time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("expires_at < ? OR (revoked_at IS NOT NULL AND revoked_at < ?)", r.now(), revokedBefore).
		Delete(&models.RefreshToken{})
	return result.RowsAffected, result.Error
}
