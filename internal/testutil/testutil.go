// Package testutil holds fixtures shared by package tests.
package testutil

import (
	"testing"
	"time"

	"claims-dashboard/internal/adapters/persistence/models"
	"claims-dashboard/internal/core/domain"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDB opens a migrated in-memory sqlite database private to the test.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared&_pragma=foreign_keys(1)"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:                 logger.Default.LogMode(logger.Silent),
		SkipDefaultTransaction: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := models.AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// CreateUser inserts a user with an unusable password hash.
func CreateUser(t testing.TB, db *gorm.DB, name, email string) *models.User {
	t.Helper()

	user := &models.User{Name: name, Email: email, Password: "-", Role: domain.RoleAnnotator}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user
}

// NewClaim returns an unsaved claim with every required column filled.
func NewClaim(claimID string, opts ...func(*models.Claim)) *models.Claim {
	claim := &models.Claim{
		ClaimID:           claimID,
		MRN:               "MRN-" + claimID,
		PatientFirstName:  "Jane",
		PatientLastName:   "Doe",
		DateOfBirth:       time.Date(1980, 3, 4, 0, 0, 0, 0, time.UTC),
		DateOfService:     time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
		ChargeAmount:      decimal.RequireFromString("150.25"),
		PrimaryInsurance:  "Aetna",
		PrimaryMemberID:   "M-" + claimID,
		ProviderFirstName: "Greg",
		ProviderLastName:  "House",
		ProviderNPI:       "1234567890",
		Stage:             domain.StagePending,
	}
	for _, opt := range opts {
		opt(claim)
	}
	return claim
}

// CreateClaim inserts NewClaim(claimID, opts...).
func CreateClaim(t testing.TB, db *gorm.DB, claimID string, opts ...func(*models.Claim)) *models.Claim {
	t.Helper()

	claim := NewClaim(claimID, opts...)
	if err := db.Create(claim).Error; err != nil {
		t.Fatalf("create claim: %v", err)
	}
	return claim
}

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T {
	return &v
}
