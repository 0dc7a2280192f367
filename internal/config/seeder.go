package config

import (
	"bytes"
	"context"
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"claims-dashboard/internal/adapters/persistence/models"
	"claims-dashboard/internal/core/domain"
	"claims-dashboard/internal/pkg/claimcsv"
	"claims-dashboard/internal/pkg/dates"
	"claims-dashboard/internal/pkg/password"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DemoPassword is the password of every seeded account
const DemoPassword = "password123"

//go:embed seed_claims.csv
var seedClaimsCSV []byte

var demoUsers = []struct {
	Name  string
	Email string
	Role  domain.Role
}{
	{"Admin", "admin@example.com", domain.RoleAdmin},
	{"Alex Brown", "alex@example.com", domain.RoleAnnotator},
	{"Jane Smith", "jane@example.com", domain.RoleAnnotator},
	{"Sarah Williams", "sarah@example.com", domain.RoleAnnotator},
	{"Mike Johnson", "mike@example.com", domain.RoleAnnotator},
	{"John Doe", "john@example.com", domain.RoleAnnotator},
}

// Seeder handles database seeding
type Seeder struct {
	db  *gorm.DB
	log *zap.Logger
}

// NewSeeder creates a new seeder instance
func NewSeeder(db *gorm.DB, log *zap.Logger) *Seeder {
	return &Seeder{db: db, log: log}
}

// SeedResult reports what a seeding run created
type SeedResult struct {
	Users  int
	Claims int
}

// Run seeds the demo accounts and, when the claims table is empty or reset is
// set, the demo claims. Claims are assigned round-robin to the annotators.
func (s *Seeder) Run(ctx context.Context, reset bool) (*SeedResult, error) {
	s.log.Info("running database seeders")

	annotators, created, err := s.seedUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("seed users: %w", err)
	}
	result := &SeedResult{Users: created}

	db := s.db.WithContext(ctx)
	if reset {
		if err := db.Where("1 = 1").Delete(&models.ClaimTransition{}).Error; err != nil {
			return nil, err
		}
		if err := db.Where("1 = 1").Delete(&models.Claim{}).Error; err != nil {
			return nil, err
		}
	}

	var count int64
	if err := db.Model(&models.Claim{}).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		s.log.Info("claims already present, skipping claim seed", zap.Int64("count", count))
		return result, nil
	}

	claims, err := DemoClaims()
	if err != nil {
		return nil, fmt.Errorf("seed claims: %w", err)
	}
	for i, claim := range claims {
		if len(annotators) > 0 {
			claim.AssignedToID = &annotators[i%len(annotators)].ID
		}
	}
	if err := db.CreateInBatches(claims, 100).Error; err != nil {
		return nil, fmt.Errorf("seed claims: %w", err)
	}
	result.Claims = len(claims)

	s.log.Info("database seeding completed", zap.Int("users", result.Users), zap.Int("claims", result.Claims))
	return result, nil
}

// seedUsers creates missing demo accounts and returns every annotator
func (s *Seeder) seedUsers(ctx context.Context) ([]*models.User, int, error) {
	db := s.db.WithContext(ctx)

	hashed, err := password.Hash(DemoPassword)
	if err != nil {
		return nil, 0, err
	}

	created := 0
	var annotators []*models.User
	for _, u := range demoUsers {
		user := &models.User{}
		err := db.Where("email = ?", u.Email).First(user).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			user = &models.User{Name: u.Name, Email: u.Email, Password: hashed, Role: u.Role}
			err = db.Create(user).Error
			created++
		}
		if err != nil {
			return nil, 0, err
		}
		if user.Role == domain.RoleAnnotator {
			annotators = append(annotators, user)
		}
	}
	return annotators, created, nil
}

// DemoClaims parses the embedded demo claim set
func DemoClaims() ([]*models.Claim, error) {
	rows, err := claimcsv.ReadRows(bytes.NewReader(seedClaimsCSV))
	if err != nil {
		return nil, err
	}

	claims := make([]*models.Claim, 0, len(rows))
	for i, row := range rows {
		claim, err := demoClaim(row)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		claims = append(claims, claim)
	}
	return claims, nil
}

func demoClaim(row claimcsv.Row) (*models.Claim, error) {
	p := seedParser{row: row}
	claim := &models.Claim{
		ClaimID:           row.Get("claimId"),
		MRN:               row.Get("mrn"),
		PatientFirstName:  row.Get("patientFirstName"),
		PatientLastName:   row.Get("patientLastName"),
		DateOfBirth:       p.requiredDate("dateOfBirth"),
		DateOfService:     p.requiredDate("dateOfService"),
		ChargeAmount:      claimcsv.ParseAmount(row.Get("chargeAmount")),
		PrimaryInsurance:  row.Get("primaryInsurance"),
		PrimaryMemberID:   row.Get("primaryMemberId"),
		ProviderFirstName: row.Get("providerFirstName"),
		ProviderLastName:  row.Get("providerLastName"),
		ProviderNPI:       row.Get("providerNpi"),
		Stage:             p.stage("stage"),

		SecondaryInsurance: p.text("secondaryInsurance"),
		SecondaryMemberID:  p.text("secondaryMemberId"),

		ClaimNumber:       p.text("claimNumber"),
		ClaimReceivedDate: p.date("claimReceivedDate"),
		ClaimStatus:       p.status("claimStatus"),
		CheckNumber:       p.text("checkNumber"),
		CheckDate:         p.date("checkDate"),
		PaidAmount:        p.amount("paidAmount"),
		PaymentDate:       p.date("paidDate"),
		DenialCodes:       p.text("deniedCode"),
		DeniedLineItems:   p.text("deniedLineItems"),
		DenialDescription: p.text("denialDescription"),

		SecondaryClaimNumber:       p.text("secondaryClaimNumber"),
		SecondaryClaimReceivedDate: p.date("secondaryClaimReceivedDate"),
		SecondaryClaimStatus:       p.status("secondaryClaimStatus"),
		SecondaryCheckNumber:       p.text("secondaryCheckNumber"),
		SecondaryCheckDate:         p.date("secondaryCheckDate"),
		SecondaryPaidAmount:        p.amount("secondaryPaidAmount"),
		SecondaryPaymentDate:       p.date("secondaryPaidDate"),
		SecondaryDenialCodes:       p.text("secondaryDeniedCode"),
		SecondaryDeniedLineItems:   p.text("secondaryDeniedLineItems"),
		SecondaryDenialDescription: p.text("secondaryDenialDescription"),
	}
	if p.err != nil {
		return nil, p.err
	}
	return claim, nil
}

// seedParser reads typed cells and keeps the first error
type seedParser struct {
	row claimcsv.Row
	err error
}

func (p *seedParser) fail(err error) {
	if p.err == nil {
		p.err = err
	}
}

func (p *seedParser) text(key string) *string {
	v := strings.TrimSpace(p.row.Get(key))
	if v == "" {
		return nil
	}
	return &v
}

func (p *seedParser) date(key string) *time.Time {
	v := p.row.Get(key)
	if v == "" {
		return nil
	}
	t, err := dates.Parse(v)
	if err != nil {
		p.fail(fmt.Errorf("%s: %w", key, err))
		return nil
	}
	return &t
}

func (p *seedParser) requiredDate(key string) time.Time {
	t := p.date(key)
	if t == nil {
		p.fail(fmt.Errorf("%s: %w", key, domain.ErrRequiredField))
		return time.Time{}
	}
	return *t
}

// amount treats zero as absent
func (p *seedParser) amount(key string) *decimal.Decimal {
	d := claimcsv.ParseAmount(p.row.Get(key))
	if d.IsZero() {
		return nil
	}
	return &d
}

func (p *seedParser) status(key string) *domain.ClaimStatus {
	v := p.row.Get(key)
	if v == "" {
		return nil
	}
	s, err := domain.ParseClaimStatus(v)
	if err != nil {
		p.fail(err)
		return nil
	}
	return &s
}

func (p *seedParser) stage(key string) domain.Stage {
	s, err := domain.ParseStage(p.row.Get(key))
	if err != nil {
		p.fail(err)
	}
	return s
}
