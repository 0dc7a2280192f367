package services

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"claims-dashboard/internal/adapters/archive"
	"claims-dashboard/internal/adapters/persistence/models"
	"claims-dashboard/internal/adapters/persistence/repositories"
	"claims-dashboard/internal/core/domain"
	"claims-dashboard/internal/pkg/claimcsv"

	"go.uber.org/zap"
)

const importBatchSize = 200

// ImportResult reports an import: rows inserted and data rows read
type ImportResult struct {
	Imported int64 `json:"imported"`
	Total    int   `json:"total"`
}

// ImportService turns uploaded CSV files into claims
type ImportService struct {
	claimRepo  repositories.ClaimRepository
	archiver   archive.Archiver
	automation *Automation
	log        *zap.Logger
	now        func() time.Time
}

// NewImportService creates a new import service. archiver may be nil;
// automation is nil unless demo mode is on.
func NewImportService(
	claimRepo repositories.ClaimRepository,
	archiver archive.Archiver,
	automation *Automation,
	log *zap.Logger,
) *ImportService {
	if archiver == nil {
		archiver = archive.Nop{}
	}
	return &ImportService{
		claimRepo:  claimRepo,
		archiver:   archiver,
		automation: automation,
		log:        log,
		now:        time.Now,
	}
}

// Import archives the raw file, parses it and inserts every valid row.
// Rows missing a required column are skipped; the result's Total counts
// every data row read.
func (s *ImportService) Import(ctx context.Context, filename string, content []byte) (*ImportResult, error) {
	now := s.now()

	key := archive.UploadKey(filename, now)
	if err := s.archiver.Archive(ctx, key, content, archive.ContentTypeCSV); err != nil {
		s.log.Warn("upload archive failed", zap.String("key", key), zap.Error(err))
	}

	rows, err := claimcsv.ReadRows(bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidCSV, err)
	}
	if len(rows) == 0 {
		return nil, domain.ErrNoRows
	}

	claims := make([]*models.Claim, 0, len(rows))
	for _, row := range rows {
		rec, ok := claimcsv.MapRow(row, now.UTC())
		if !ok {
			continue
		}
		claims = append(claims, claimFromRecord(rec))
	}
	if len(claims) == 0 {
		return nil, domain.ErrNoValidClaims
	}

	automated := 0
	if s.automation != nil {
		automated = s.automation.Apply(claims)
	}

	imported, err := s.claimRepo.CreateBatch(ctx, claims, importBatchSize)
	if err != nil {
		s.log.Error("claim import failed", zap.String("file", filename), zap.Error(err))
		return nil, fmt.Errorf("import claims: %w: %w", domain.ErrInternal, err)
	}

	s.log.Info("claims imported",
		zap.String("file", filename),
		zap.Int("rows", len(rows)),
		zap.Int64("imported", imported),
		zap.Int("automated", automated),
	)
	return &ImportResult{Imported: imported, Total: len(rows)}, nil
}

func claimFromRecord(rec claimcsv.Record) *models.Claim {
	claim := &models.Claim{
		ClaimID:           rec.ClaimID,
		MRN:               rec.MRN,
		PatientFirstName:  rec.PatientFirstName,
		PatientLastName:   rec.PatientLastName,
		DateOfBirth:       rec.DateOfBirth,
		DateOfService:     rec.DateOfService,
		ChargeAmount:      rec.ChargeAmount,
		PrimaryInsurance:  rec.PrimaryInsurance,
		PrimaryMemberID:   rec.PrimaryMemberID,
		ProviderFirstName: rec.ProviderFirstName,
		ProviderLastName:  rec.ProviderLastName,
		ProviderNPI:       rec.ProviderNPI,
		Stage:             domain.StagePending,
	}
	if rec.SecondaryInsurance != "" {
		secondary := rec.SecondaryInsurance
		claim.SecondaryInsurance = &secondary
		if rec.SecondaryMemberID != "" {
			member := rec.SecondaryMemberID
			claim.SecondaryMemberID = &member
		}
	}
	return claim
}
