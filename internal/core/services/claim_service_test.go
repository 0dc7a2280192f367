package services

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"claims-dashboard/internal/adapters/persistence/models"
	"claims-dashboard/internal/adapters/persistence/repositories"
	"claims-dashboard/internal/core/domain"
	"claims-dashboard/internal/pkg/claimcsv"
	"claims-dashboard/internal/testutil"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newClaimService(t *testing.T) (*ClaimService, *gorm.DB) {
	t.Helper()
	db := testutil.NewDB(t)
	svc := NewClaimService(
		repositories.NewClaimRepository(db),
		repositories.NewClaimTransitionRepository(db),
		repositories.NewUserRepository(db),
		zap.NewNop(),
	)
	return svc, db
}

func validCreateInput() *CreateClaimInput {
	return &CreateClaimInput{
		ClaimID:           "C-100",
		MRN:               "MRN-100",
		PatientFirstName:  "Jane",
		PatientLastName:   "Doe",
		DateOfBirth:       "1980-03-04",
		DateOfService:     "01/15/2024",
		ChargeAmount:      decimal.RequireFromString("250.00"),
		PrimaryInsurance:  "Aetna",
		PrimaryMemberID:   "M-1",
		ProviderFirstName: "Greg",
		ProviderLastName:  "House",
		ProviderNPI:       "1234567890",
	}
}

func decodeUpdate(t *testing.T, body string) *UpdateClaimInput {
	t.Helper()
	var input UpdateClaimInput
	require.NoError(t, json.Unmarshal([]byte(body), &input))
	return &input
}

func TestClaimServiceCreate(t *testing.T) {
	svc, _ := newClaimService(t)
	ctx := context.Background()

	claim, err := svc.Create(ctx, validCreateInput())
	require.NoError(t, err)
	assert.NotEmpty(t, claim.ID)
	assert.Equal(t, domain.StagePending, claim.Stage)
	assert.Equal(t, 2024, claim.DateOfService.Year())
	assert.Nil(t, claim.SecondaryInsurance)

	t.Run("missing required field", func(t *testing.T) {
		input := validCreateInput()
		input.MRN = "  "
		_, err := svc.Create(ctx, input)
		require.ErrorIs(t, err, domain.ErrRequiredField)
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("bad date", func(t *testing.T) {
		input := validCreateInput()
		input.DateOfService = "yesterday"
		_, err := svc.Create(ctx, input)
		assert.ErrorIs(t, err, domain.ErrInvalidDate)
	})

	t.Run("bad stage", func(t *testing.T) {
		input := validCreateInput()
		input.Stage = "ARCHIVED"
		_, err := svc.Create(ctx, input)
		assert.ErrorIs(t, err, domain.ErrInvalidStage)
	})

	t.Run("unknown assignee", func(t *testing.T) {
		input := validCreateInput()
		input.AssignedToID = testutil.Ptr("nobody")
		_, err := svc.Create(ctx, input)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestClaimServiceGetByIDNotFound(t *testing.T) {
	svc, _ := newClaimService(t)

	_, err := svc.GetByID(context.Background(), "missing")
	require.ErrorIs(t, err, domain.ErrClaimNotFound)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestClaimServiceUpdatePresence(t *testing.T) {
	svc, db := newClaimService(t)
	ctx := context.Background()
	claim := testutil.CreateClaim(t, db, "C-1", func(c *models.Claim) {
		c.SecondaryInsurance = testutil.Ptr("Cigna")
		c.Remarks = testutil.Ptr("call back")
	})

	updated, err := svc.Update(ctx, claim.ID, decodeUpdate(t, `{
		"patientFirstName": "Janet",
		"secondaryInsurance": null,
		"remarks": "",
		"paidAmount": "99.50"
	}`), "")
	require.NoError(t, err)

	assert.Equal(t, "Janet", updated.PatientFirstName)
	assert.Equal(t, "Doe", updated.PatientLastName)
	assert.Nil(t, updated.SecondaryInsurance)
	assert.Nil(t, updated.Remarks)
	require.NotNil(t, updated.PaidAmount)
	assert.True(t, decimal.RequireFromString("99.5").Equal(*updated.PaidAmount))
	assert.Equal(t, domain.StagePending, updated.Stage)

	t.Run("required column cannot be cleared", func(t *testing.T) {
		_, err := svc.Update(ctx, claim.ID, decodeUpdate(t, `{"mrn": null}`), "")
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("unknown claim", func(t *testing.T) {
		_, err := svc.Update(ctx, "missing", decodeUpdate(t, `{"mrn": "x"}`), "")
		assert.ErrorIs(t, err, domain.ErrClaimNotFound)
	})

	t.Run("amounts", func(t *testing.T) {
		updated, err := svc.Update(ctx, claim.ID, decodeUpdate(t, `{"chargeAmount": 1200.5, "paidAmount": ""}`), "")
		require.NoError(t, err)
		assert.True(t, decimal.RequireFromString("1200.50").Equal(updated.ChargeAmount))
		assert.Nil(t, updated.PaidAmount, "blank clears")

		updated, err = svc.Update(ctx, claim.ID, decodeUpdate(t, `{"secondaryPaidAmount": "10.25", "paidAmount": null}`), "")
		require.NoError(t, err)
		require.NotNil(t, updated.SecondaryPaidAmount)
		assert.Equal(t, "10.25", updated.SecondaryPaidAmount.StringFixed(2))
		assert.Nil(t, updated.PaidAmount)

		_, err = svc.Update(ctx, claim.ID, decodeUpdate(t, `{"chargeAmount": ""}`), "")
		assert.ErrorIs(t, err, domain.ErrRequiredField)

		_, err = svc.Update(ctx, claim.ID, decodeUpdate(t, `{"chargeAmount": "a lot"}`), "")
		assert.ErrorIs(t, err, domain.ErrInvalidAmount)

		_, err = svc.Update(ctx, claim.ID, decodeUpdate(t, `{"paidAmount": -1}`), "")
		assert.ErrorIs(t, err, domain.ErrInvalidAmount)
	})

	t.Run("blank text clears nullable and rejects required", func(t *testing.T) {
		updated, err := svc.Update(ctx, claim.ID, decodeUpdate(t, `{"denialCodes": "CO-4", "claimStatus": "DENIED"}`), "")
		require.NoError(t, err)
		require.NotNil(t, updated.DenialCodes)

		updated, err = svc.Update(ctx, claim.ID, decodeUpdate(t, `{"denialCodes": "  ", "claimStatus": null}`), "")
		require.NoError(t, err)
		assert.Nil(t, updated.DenialCodes)
		assert.Nil(t, updated.ClaimStatus)

		_, err = svc.Update(ctx, claim.ID, decodeUpdate(t, `{"patientLastName": " "}`), "")
		assert.ErrorIs(t, err, domain.ErrRequiredField)
	})
}

func TestClaimServiceUpdateStage(t *testing.T) {
	svc, db := newClaimService(t)
	ctx := context.Background()
	actor := testutil.CreateUser(t, db, "Alex Brown", "alex@example.com")
	claim := testutil.CreateClaim(t, db, "C-1")

	updated, err := svc.Update(ctx, claim.ID, decodeUpdate(t, `{"stage": "PENDING_VALIDATION"}`), actor.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StagePendingValidation, updated.Stage)

	_, err = svc.Update(ctx, claim.ID, decodeUpdate(t, `{"stage": "PENDING"}`), actor.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidStageTransition)

	_, err = svc.Update(ctx, claim.ID, decodeUpdate(t, `{"stage": "VALIDATED"}`), actor.ID)
	assert.ErrorIs(t, err, domain.ErrConfirmationRequired)

	// Same stage again leaves history untouched.
	_, err = svc.Update(ctx, claim.ID, decodeUpdate(t, `{"stage": "PENDING_VALIDATION", "remarks": "ok"}`), actor.ID)
	require.NoError(t, err)

	history, err := svc.History(ctx, claim.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, domain.StagePending, history[0].FromStage)
	assert.Equal(t, domain.StagePendingValidation, history[0].ToStage)
	require.NotNil(t, history[0].Performer)
	assert.Equal(t, "Alex Brown", history[0].Performer.Name)
}

func TestClaimServiceAdvanceStage(t *testing.T) {
	svc, db := newClaimService(t)
	ctx := context.Background()
	claim := testutil.CreateClaim(t, db, "C-1")

	_, err := svc.AdvanceStage(ctx, claim.ID, &AdvanceStageInput{Stage: "VALIDATED"}, "")
	require.ErrorIs(t, err, domain.ErrConfirmationRequired)

	updated, err := svc.AdvanceStage(ctx, claim.ID, &AdvanceStageInput{
		Stage:        "VALIDATED",
		Confirmation: domain.Confirmation{ValidatedViaPortal: true},
	}, "")
	require.NoError(t, err)
	assert.Equal(t, domain.StageValidated, updated.Stage)

	_, err = svc.AdvanceStage(ctx, claim.ID, &AdvanceStageInput{
		Stage:        "PROCESSED",
		Confirmation: domain.Confirmation{TemplatePasted: true},
	}, "")
	require.ErrorIs(t, err, domain.ErrConfirmationRequired)

	updated, err = svc.AdvanceStage(ctx, claim.ID, &AdvanceStageInput{
		Stage:        "PROCESSED",
		Confirmation: domain.Confirmation{ValidatedViaPortal: true, TemplatePasted: true},
	}, "")
	require.NoError(t, err)
	assert.Equal(t, domain.StageProcessed, updated.Stage)

	_, err = svc.AdvanceStage(ctx, claim.ID, &AdvanceStageInput{Stage: "VALIDATED"}, "")
	assert.ErrorIs(t, err, domain.ErrConflict)

	_, err = svc.AdvanceStage(ctx, claim.ID, &AdvanceStageInput{Stage: "bogus"}, "")
	assert.ErrorIs(t, err, domain.ErrInvalidStage)

	history, err := svc.History(ctx, claim.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, domain.StageProcessed, history[0].ToStage)
	assert.True(t, history[0].TemplatePasted)
	assert.Nil(t, history[0].PerformedBy)
}

func TestClaimServiceDelete(t *testing.T) {
	svc, db := newClaimService(t)
	ctx := context.Background()
	claim := testutil.CreateClaim(t, db, "C-1")

	require.NoError(t, svc.Delete(ctx, claim.ID))
	assert.ErrorIs(t, svc.Delete(ctx, claim.ID), domain.ErrClaimNotFound)

	_, err := svc.History(ctx, claim.ID)
	assert.ErrorIs(t, err, domain.ErrClaimNotFound)
}

func TestClaimServiceBulkAssign(t *testing.T) {
	svc, db := newClaimService(t)
	ctx := context.Background()
	user := testutil.CreateUser(t, db, "Jane Smith", "jane@example.com")
	a := testutil.CreateClaim(t, db, "C-1")
	b := testutil.CreateClaim(t, db, "C-2")

	result, err := svc.BulkAssign(ctx, &BulkAssignInput{
		ClaimIDs: []string{a.ID, b.ID, a.ID, "missing"},
		UserID:   user.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, 3, result.Requested)
	assert.EqualValues(t, 2, result.Updated)

	got, err := svc.GetByID(ctx, b.ID)
	require.NoError(t, err)
	require.NotNil(t, got.AssignedTo)
	assert.Equal(t, "Jane Smith", got.AssignedTo.Name)

	_, err = svc.BulkAssign(ctx, &BulkAssignInput{UserID: user.ID})
	assert.ErrorIs(t, err, ErrNoClaimsSpecified)

	_, err = svc.BulkAssign(ctx, &BulkAssignInput{ClaimIDs: []string{a.ID}})
	assert.ErrorIs(t, err, ErrNoUserSpecified)

	_, err = svc.BulkAssign(ctx, &BulkAssignInput{ClaimIDs: []string{a.ID}, UserID: "ghost"})
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestClaimServiceProviders(t *testing.T) {
	svc, db := newClaimService(t)
	ctx := context.Background()
	provider := func(first, last, npi string) func(*models.Claim) {
		return func(c *models.Claim) {
			c.ProviderFirstName = first
			c.ProviderLastName = last
			c.ProviderNPI = npi
		}
	}
	testutil.CreateClaim(t, db, "C-1", provider("greg", "house", "1"))
	testutil.CreateClaim(t, db, "C-2", provider("Greg", "House", "1"))
	testutil.CreateClaim(t, db, "C-3", provider("Allison", "Cameron", "2"))

	providers, err := svc.Providers(ctx)
	require.NoError(t, err)
	require.Len(t, providers, 2)
	assert.Equal(t, Provider{Name: "Dr. Allison Cameron", NPI: "2"}, providers[0])
	assert.Equal(t, "1", providers[1].NPI)
}

func TestClaimServiceTemplate(t *testing.T) {
	svc, db := newClaimService(t)
	ctx := context.Background()
	denied := domain.StatusDenied
	claim := testutil.CreateClaim(t, db, "C-1", func(c *models.Claim) {
		c.ClaimStatus = &denied
		c.DenialCodes = testutil.Ptr("CO-4")
		c.SecondaryInsurance = testutil.Ptr("Cigna")
	})

	primary, err := svc.Template(ctx, claim.ID, domain.SidePrimary)
	require.NoError(t, err)
	assert.Equal(t,
		"(DENIED) RISA:_ DC: 01/15/2024_ PN: Aetna_ DCR: _ CN:_ DC/RM: CO-4_ DCD: _ PA: _ CKN: _ CKD: _ LI: ",
		primary)

	secondary, err := svc.Template(ctx, claim.ID, domain.SideSecondary)
	require.NoError(t, err)
	assert.Equal(t,
		"(PENDING) RISA:_ DC: 01/15/2024_ PN: Cigna_ DCR: _ CN:_ DC/RM: _ DCD: _ PA: _ CKN: _ CKD: _ LI: ",
		secondary)

	plain := testutil.NewClaim("C-2")
	assert.Contains(t, TemplateFor(plain, domain.SidePrimary), "(Unknown) RISA:_")
}

func TestClaimServiceExportRoundTrip(t *testing.T) {
	svc, db := newClaimService(t)
	ctx := context.Background()
	testutil.CreateClaim(t, db, "C-1", func(c *models.Claim) { c.PatientLastName = `O"Brien, Jr` })
	testutil.CreateClaim(t, db, "C-2", func(c *models.Claim) { c.Stage = domain.StageValidated })

	var buf bytes.Buffer
	n, err := svc.Export(ctx, domain.ClaimFilter{Stages: []domain.Stage{domain.StagePending}}, &buf)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	rows, err := claimcsv.ReadRows(&buf)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "C-1", rows[0].Get("Claim ID"))
	assert.Equal(t, `O"Brien, Jr`, rows[0].Get("Patient Last Name"))
	assert.Equal(t, "PENDING", rows[0].Get("Stage"))
}
