package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"claims-dashboard/internal/adapters/persistence/models"
	"claims-dashboard/internal/adapters/persistence/repositories"
	"claims-dashboard/internal/core/domain"
	"claims-dashboard/internal/pkg/claimcsv"
	"claims-dashboard/internal/pkg/dates"
	"claims-dashboard/internal/pkg/template"

	"go.uber.org/zap"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
	"gorm.io/gorm"
)

// Claim service errors
var (
	ErrNoClaimsSpecified = domain.NewKindError(domain.ErrValidation, "No claims specified")
	ErrNoUserSpecified   = domain.NewKindError(domain.ErrValidation, "No user specified")
)

// ClaimService handles claim business logic
type ClaimService struct {
	claimRepo      repositories.ClaimRepository
	transitionRepo repositories.ClaimTransitionRepository
	userRepo       repositories.UserRepository
	log            *zap.Logger
}

// NewClaimService creates a new claim service
func NewClaimService(
	claimRepo repositories.ClaimRepository,
	transitionRepo repositories.ClaimTransitionRepository,
	userRepo repositories.UserRepository,
	log *zap.Logger,
) *ClaimService {
	return &ClaimService{
		claimRepo:      claimRepo,
		transitionRepo: transitionRepo,
		userRepo:       userRepo,
		log:            log,
	}
}

// storageError marks a repository failure as internal and logs it.
func (s *ClaimService) storageError(op string, err error) error {
	s.log.Error("claim storage failure", zap.String("op", op), zap.Error(err))
	return fmt.Errorf("%s: %w: %w", op, domain.ErrInternal, err)
}

// Create creates a claim. Stage defaults to PENDING.
func (s *ClaimService) Create(ctx context.Context, input *CreateClaimInput) (*models.Claim, error) {
	claim, err := s.claimFromInput(input)
	if err != nil {
		return nil, err
	}

	if claim.AssignedToID != nil {
		if err := s.ensureUser(ctx, *claim.AssignedToID); err != nil {
			return nil, err
		}
	}

	if err := s.claimRepo.Create(ctx, claim); err != nil {
		return nil, s.storageError("create claim", err)
	}

	s.log.Info("claim created", zap.String("id", claim.ID), zap.String("claimId", claim.ClaimID))
	return s.GetByID(ctx, claim.ID)
}

func (s *ClaimService) claimFromInput(input *CreateClaimInput) (*models.Claim, error) {
	required := []struct {
		name  string
		value *string
	}{
		{"claimId", &input.ClaimID},
		{"mrn", &input.MRN},
		{"patientFirstName", &input.PatientFirstName},
		{"patientLastName", &input.PatientLastName},
		{"primaryInsurance", &input.PrimaryInsurance},
		{"providerFirstName", &input.ProviderFirstName},
		{"providerLastName", &input.ProviderLastName},
		{"providerNpi", &input.ProviderNPI},
	}
	for _, f := range required {
		*f.value = strings.TrimSpace(*f.value)
		if *f.value == "" {
			return nil, fmt.Errorf("%w: %s", domain.ErrRequiredField, f.name)
		}
	}

	dob, err := parseRequiredDate("dateOfBirth", input.DateOfBirth)
	if err != nil {
		return nil, err
	}
	dos, err := parseRequiredDate("dateOfService", input.DateOfService)
	if err != nil {
		return nil, err
	}
	if input.ChargeAmount.IsNegative() {
		return nil, fmt.Errorf("%w: chargeAmount must not be negative", domain.ErrInvalidAmount)
	}

	stage := domain.StagePending
	if input.Stage != "" {
		if stage, err = domain.ParseStage(input.Stage); err != nil {
			return nil, err
		}
	}

	claim := &models.Claim{
		ClaimID:            input.ClaimID,
		MRN:                input.MRN,
		PatientFirstName:   input.PatientFirstName,
		PatientLastName:    input.PatientLastName,
		DateOfBirth:        dob,
		DateOfService:      dos,
		ChargeAmount:       input.ChargeAmount,
		PrimaryInsurance:   input.PrimaryInsurance,
		PrimaryMemberID:    strings.TrimSpace(input.PrimaryMemberID),
		SecondaryInsurance: nonEmpty(input.SecondaryInsurance),
		SecondaryMemberID:  nonEmpty(input.SecondaryMemberID),
		ProviderFirstName:  input.ProviderFirstName,
		ProviderLastName:   input.ProviderLastName,
		ProviderNPI:        input.ProviderNPI,
		Stage:              stage,
		AssignedToID:       nonEmpty(input.AssignedToID),
	}

	if status := nonEmpty(input.ClaimStatus); status != nil {
		parsed, err := domain.ParseClaimStatus(*status)
		if err != nil {
			return nil, err
		}
		claim.ClaimStatus = &parsed
	}

	return claim, nil
}

func parseRequiredDate(name, value string) (time.Time, error) {
	if strings.TrimSpace(value) == "" {
		return time.Time{}, fmt.Errorf("%w: %s", domain.ErrRequiredField, name)
	}
	t, err := dates.Parse(value)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s: %v", domain.ErrInvalidDate, name, err)
	}
	return t, nil
}

func nonEmpty(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

// GetByID gets a claim with its assignee
func (s *ClaimService) GetByID(ctx context.Context, id string) (*models.Claim, error) {
	claim, err := s.claimRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrClaimNotFound
		}
		return nil, s.storageError("get claim", err)
	}
	return claim, nil
}

// List lists claims matching the filter, newest first
func (s *ClaimService) List(ctx context.Context, filter domain.ClaimFilter) ([]*models.Claim, error) {
	claims, err := s.claimRepo.List(ctx, filter)
	if err != nil {
		return nil, s.storageError("list claims", err)
	}
	return claims, nil
}

// Update applies a partial update. A stage in the payload goes through the
// same transition rules as AdvanceStage; repeating the current stage is a
// no-op for the stage.
func (s *ClaimService) Update(ctx context.Context, id string, input *UpdateClaimInput, actorID string) (*models.Claim, error) {
	claim, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	values, err := input.columns()
	if err != nil {
		return nil, err
	}

	if assignee, set, cleared := patchText(input.AssignedToID); set && !cleared {
		if err := s.ensureUser(ctx, assignee); err != nil {
			return nil, err
		}
	}

	var transition *models.ClaimTransition
	if stage, set, cleared := patchText(input.Stage); set {
		if cleared {
			return nil, fmt.Errorf("%w: stage cannot be cleared", domain.ErrInvalidStage)
		}
		next, err := domain.ParseStage(stage)
		if err != nil {
			return nil, err
		}
		if next != claim.Stage {
			if transition, err = s.transition(claim, next, input.Confirmation, actorID); err != nil {
				return nil, err
			}
		}
	}

	if err := s.claimRepo.Apply(ctx, id, values, transition); err != nil {
		if errors.Is(err, domain.ErrStageChanged) {
			return nil, err
		}
		return nil, s.storageError("update claim", err)
	}

	s.logTransition(transition, actorID)
	return s.GetByID(ctx, id)
}

// AdvanceStage moves a claim forward in the workflow and records the change
func (s *ClaimService) AdvanceStage(ctx context.Context, id string, input *AdvanceStageInput, actorID string) (*models.Claim, error) {
	next, err := domain.ParseStage(input.Stage)
	if err != nil {
		return nil, err
	}

	claim, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	transition, err := s.transition(claim, next, input.Confirmation, actorID)
	if err != nil {
		return nil, err
	}

	if err := s.claimRepo.Apply(ctx, id, nil, transition); err != nil {
		if errors.Is(err, domain.ErrStageChanged) {
			return nil, err
		}
		return nil, s.storageError("advance stage", err)
	}

	s.logTransition(transition, actorID)
	return s.GetByID(ctx, id)
}

func (s *ClaimService) transition(claim *models.Claim, next domain.Stage, confirm domain.Confirmation, actorID string) (*models.ClaimTransition, error) {
	if err := claim.Stage.TransitionTo(next, confirm); err != nil {
		return nil, err
	}

	t := &models.ClaimTransition{
		ClaimRecordID:      claim.ID,
		FromStage:          claim.Stage,
		ToStage:            next,
		ValidatedViaPortal: confirm.ValidatedViaPortal,
		TemplatePasted:     confirm.TemplatePasted,
	}
	if actorID != "" {
		t.PerformedBy = &actorID
	}
	return t, nil
}

func (s *ClaimService) logTransition(t *models.ClaimTransition, actorID string) {
	if t == nil {
		return
	}
	s.log.Info("claim stage changed",
		zap.String("id", t.ClaimRecordID),
		zap.String("from", string(t.FromStage)),
		zap.String("to", string(t.ToStage)),
		zap.String("actor", actorID),
	)
}

// History lists the stage transitions of a claim, newest first
func (s *ClaimService) History(ctx context.Context, id string) ([]*models.ClaimTransition, error) {
	if _, err := s.GetByID(ctx, id); err != nil {
		return nil, err
	}

	transitions, err := s.transitionRepo.ListByClaim(ctx, id)
	if err != nil {
		return nil, s.storageError("claim history", err)
	}
	return transitions, nil
}

// Delete hard-deletes a claim
func (s *ClaimService) Delete(ctx context.Context, id string) error {
	if err := s.claimRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrClaimNotFound
		}
		return s.storageError("delete claim", err)
	}

	s.log.Info("claim deleted", zap.String("id", id))
	return nil
}

// BulkAssign assigns every listed claim to one user. Unknown claim ids are
// skipped; the result reports how many claims changed.
func (s *ClaimService) BulkAssign(ctx context.Context, input *BulkAssignInput) (*BulkAssignResult, error) {
	ids := uniqueNonEmpty(input.ClaimIDs)
	if len(ids) == 0 {
		return nil, ErrNoClaimsSpecified
	}
	userID := strings.TrimSpace(input.UserID)
	if userID == "" {
		return nil, ErrNoUserSpecified
	}

	if err := s.ensureUser(ctx, userID); err != nil {
		return nil, err
	}

	updated, err := s.claimRepo.AssignMany(ctx, ids, userID)
	if err != nil {
		return nil, s.storageError("bulk assign", err)
	}

	s.log.Info("claims assigned",
		zap.String("userId", userID),
		zap.Int("requested", len(ids)),
		zap.Int64("updated", updated),
	)
	return &BulkAssignResult{Requested: len(ids), Updated: updated}, nil
}

func uniqueNonEmpty(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

func (s *ClaimService) ensureUser(ctx context.Context, id string) error {
	if _, err := s.userRepo.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrUserNotFound
		}
		return s.storageError("get user", err)
	}
	return nil
}

// Providers lists distinct providers by NPI as "Dr. <first> <last>",
// sorted by display name.
func (s *ClaimService) Providers(ctx context.Context) ([]Provider, error) {
	rows, err := s.claimRepo.Providers(ctx)
	if err != nil {
		return nil, s.storageError("list providers", err)
	}

	seen := make(map[string]struct{}, len(rows))
	providers := make([]Provider, 0, len(rows))
	for _, row := range rows {
		if _, ok := seen[row.ProviderNPI]; ok {
			continue
		}
		seen[row.ProviderNPI] = struct{}{}
		providers = append(providers, Provider{
			Name: fmt.Sprintf("Dr. %s %s", row.ProviderFirstName, row.ProviderLastName),
			NPI:  row.ProviderNPI,
		})
	}

	coll := collate.New(language.English, collate.IgnoreCase)
	sort.SliceStable(providers, func(i, j int) bool {
		return coll.CompareString(providers[i].Name, providers[j].Name) < 0
	})
	return providers, nil
}

// Template renders the billing-system note for one side of a claim
func (s *ClaimService) Template(ctx context.Context, id string, side domain.Side) (string, error) {
	claim, err := s.GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	return TemplateFor(claim, side), nil
}

// TemplateFor renders the template for a loaded claim
func TemplateFor(claim *models.Claim, side domain.Side) string {
	outcome := claim.Outcome(side)

	status := "Unknown"
	if side == domain.SideSecondary {
		status = string(domain.StatusPending)
	}
	if outcome.ClaimStatus != nil {
		status = string(*outcome.ClaimStatus)
	}

	return template.Generate(template.Fields{
		Status:            status,
		DateOfService:     claim.DateOfService,
		Plan:              deref(outcome.Plan),
		ClaimReceivedDate: outcome.ClaimReceivedDate,
		ClaimNumber:       deref(outcome.ClaimNumber),
		DenialCodes:       deref(outcome.DenialCodes),
		DenialDescription: deref(outcome.DenialDescription),
		PaidAmount:        outcome.PaidAmount,
		CheckNumber:       deref(outcome.CheckNumber),
		CheckDate:         outcome.CheckDate,
		DeniedLineItems:   deref(outcome.DeniedLineItems),
	})
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// Export writes every claim matching the filter as CSV and returns the
// number of rows written
func (s *ClaimService) Export(ctx context.Context, filter domain.ClaimFilter, w io.Writer) (int, error) {
	claims, err := s.List(ctx, filter)
	if err != nil {
		return 0, err
	}

	cw := claimcsv.NewWriter(w)
	for _, claim := range claims {
		if err := cw.Write(claim.ExportRecord()); err != nil {
			return 0, err
		}
	}
	if err := cw.Flush(); err != nil {
		return 0, err
	}

	s.log.Info("claims exported", zap.Int("rows", cw.Rows()))
	return cw.Rows(), nil
}
