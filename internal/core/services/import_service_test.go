package services

import (
	"context"
	"errors"
	"math/rand"
	"strings"
	"testing"
	"time"

	"claims-dashboard/internal/adapters/persistence/models"
	"claims-dashboard/internal/adapters/persistence/repositories"
	"claims-dashboard/internal/core/domain"
	"claims-dashboard/internal/testutil"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeArchiver struct {
	keys []string
	err  error
}

func (f *fakeArchiver) Archive(_ context.Context, key string, _ []byte, _ string) error {
	f.keys = append(f.keys, key)
	return f.err
}

const importCSV = `Patient First Name,Patient Last Name,MRN,Date of Birth,Date of Service,Charge Amount,Primary Insurance,Primary Member ID,Secondary Insurance,Provider NPI,Claim ID
Jane,Doe,MRN-1,1980-03-04,01/15/2024,"$1,250.00",Aetna,M-1,Cigna,1112223333,C-1
John,Smith,MRN-2,1975-07-01,2024-02-01,80,BlueCross,M-2,,,C-2
Missing,ClaimID,MRN-3,1990-01-01,2024-02-02,10,Aetna,M-3,,,
,,,,,,,,,,
`

func TestImportService(t *testing.T) {
	db := testutil.NewDB(t)
	claimRepo := repositories.NewClaimRepository(db)
	arch := &fakeArchiver{}
	svc := NewImportService(claimRepo, arch, nil, zap.NewNop())
	ctx := context.Background()

	result, err := svc.Import(ctx, "batch.csv", []byte(importCSV))
	require.NoError(t, err)
	assert.EqualValues(t, 2, result.Imported)
	assert.Equal(t, 4, result.Total, "blank and incomplete rows count but are not imported")

	require.Len(t, arch.keys, 1)
	assert.True(t, strings.HasPrefix(arch.keys[0], "uploads/"))
	assert.True(t, strings.HasSuffix(arch.keys[0], "-batch.csv"))

	claims, err := claimRepo.List(ctx, domain.ClaimFilter{Search: "MRN-1"})
	require.NoError(t, err)
	require.Len(t, claims, 1)
	c := claims[0]
	assert.Equal(t, "C-1", c.ClaimID)
	assert.True(t, decimal.RequireFromString("1250").Equal(c.ChargeAmount))
	assert.Equal(t, domain.StagePending, c.Stage)
	require.NotNil(t, c.SecondaryInsurance)
	assert.Equal(t, "Cigna", *c.SecondaryInsurance)
	assert.Equal(t, "1112223333", c.ProviderNPI)
	assert.Nil(t, c.ClaimStatus)

	claims, err = claimRepo.List(ctx, domain.ClaimFilter{Search: "MRN-2"})
	require.NoError(t, err)
	require.Len(t, claims, 1)
	assert.Nil(t, claims[0].SecondaryInsurance)
	assert.Equal(t, "0000000000", claims[0].ProviderNPI)
	assert.Equal(t, "Unknown", claims[0].ProviderFirstName)
}

func TestImportServiceErrors(t *testing.T) {
	db := testutil.NewDB(t)
	svc := NewImportService(repositories.NewClaimRepository(db), nil, nil, zap.NewNop())
	ctx := context.Background()

	_, err := svc.Import(ctx, "empty.csv", []byte("Claim ID,MRN\n"))
	require.ErrorIs(t, err, domain.ErrNoRows)
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = svc.Import(ctx, "bad.csv", []byte("Claim ID,MRN\nC-1,MRN-1\n"))
	assert.ErrorIs(t, err, domain.ErrNoValidClaims)
}

func TestImportServiceArchiveFailureIsNotFatal(t *testing.T) {
	db := testutil.NewDB(t)
	arch := &fakeArchiver{err: errors.New("bucket unavailable")}
	svc := NewImportService(repositories.NewClaimRepository(db), arch, nil, zap.NewNop())

	result, err := svc.Import(context.Background(), "batch.csv", []byte(importCSV))
	require.NoError(t, err)
	assert.EqualValues(t, 2, result.Imported)
	assert.Len(t, arch.keys, 1)
}

func TestImportServiceWithAutomation(t *testing.T) {
	db := testutil.NewDB(t)
	claimRepo := repositories.NewClaimRepository(db)
	automation := NewAutomation(rand.New(rand.NewSource(1)))
	automation.rate = 1
	svc := NewImportService(claimRepo, nil, automation, zap.NewNop())
	ctx := context.Background()

	_, err := svc.Import(ctx, "batch.csv", []byte(importCSV))
	require.NoError(t, err)

	claims, err := claimRepo.List(ctx, domain.ClaimFilter{})
	require.NoError(t, err)
	require.Len(t, claims, 2)
	for _, c := range claims {
		assert.Equal(t, domain.StagePendingValidation, c.Stage)
		require.NotNil(t, c.ClaimStatus)
		require.NotNil(t, c.ClaimNumber)
	}
}

func TestAutomationApply(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	automation := NewAutomation(rand.New(rand.NewSource(7)))
	automation.rate = 1
	automation.now = func() time.Time { return now }

	claims := make([]*models.Claim, 50)
	for i := range claims {
		claims[i] = testutil.NewClaim("C")
	}
	assert.Equal(t, len(claims), automation.Apply(claims))

	for _, c := range claims {
		require.NotNil(t, c.ClaimStatus)
		status := *c.ClaimStatus
		assert.Equal(t, domain.StagePendingValidation, c.Stage)
		assert.Regexp(t, `^CLM\d{6}$`, *c.ClaimNumber)

		require.NotNil(t, c.ClaimReceivedDate)
		assert.False(t, c.ClaimReceivedDate.After(now))
		assert.True(t, c.ClaimReceivedDate.After(now.AddDate(0, 0, -31)))

		if status.IsPaid() {
			require.NotNil(t, c.PaidAmount)
			assert.True(t, c.PaidAmount.LessThanOrEqual(c.ChargeAmount))
			assert.Regexp(t, `^CHK\d+$`, *c.CheckNumber)
			assert.True(t, c.CheckDate.After(now.AddDate(0, 0, -16)))
		} else {
			assert.Nil(t, c.PaidAmount)
		}

		if status.IsDenied() {
			require.NotNil(t, c.DenialCodes)
			assert.True(t, strings.HasPrefix(*c.DenialCodes, "CO-4"))
			assert.True(t, strings.HasPrefix(*c.DeniedLineItems, "1"))
			assert.Equal(t, automatedDenialDescription, *c.DenialDescription)
		} else {
			assert.Nil(t, c.DenialCodes)
		}
	}
}

func TestAutomationRateZeroTouchesNothing(t *testing.T) {
	automation := NewAutomation(rand.New(rand.NewSource(1)))
	automation.rate = 0

	claim := testutil.NewClaim("C-1")
	assert.Zero(t, automation.Apply([]*models.Claim{claim}))
	assert.Equal(t, domain.StagePending, claim.Stage)
	assert.Nil(t, claim.ClaimStatus)
}
