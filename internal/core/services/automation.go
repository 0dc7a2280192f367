package services

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"claims-dashboard/internal/adapters/persistence/models"
	"claims-dashboard/internal/core/domain"

	"github.com/shopspring/decimal"
)

// DefaultAutomationRate is the share of imported claims the demo automation
// fills in.
const DefaultAutomationRate = 0.3

const automatedDenialDescription = "Service not covered under plan benefits"

var (
	automatedStatuses = []domain.ClaimStatus{
		domain.StatusPaid,
		domain.StatusDenied,
		domain.StatusPartiallyPaid,
		domain.StatusInProcess,
		domain.StatusNotOnFile,
	}
	automatedDenialCodes = []string{"CO-4", "PR-1", "CO-16", "PR-96", "CO-45"}
)

// Randomizer is the random source used by the automation.
type Randomizer interface {
	Float64() float64
	Intn(n int) int
}

// globalRand uses the goroutine-safe package-level source.
type globalRand struct{}

func (globalRand) Float64() float64 { return rand.Float64() }
func (globalRand) Intn(n int) int   { return rand.Intn(n) }

// Automation simulates a payer-portal lookup on freshly imported claims. It
// is a demo feature and only runs when demo mode is enabled.
type Automation struct {
	rng  Randomizer
	now  func() time.Time
	rate float64
}

// NewAutomation creates the demo automation. A nil rng uses math/rand.
func NewAutomation(rng Randomizer) *Automation {
	if rng == nil {
		rng = globalRand{}
	}
	return &Automation{rng: rng, now: time.Now, rate: DefaultAutomationRate}
}

// Apply fills outcome fields on a random subset of claims and returns how
// many were touched.
func (a *Automation) Apply(claims []*models.Claim) int {
	touched := 0
	for _, claim := range claims {
		if a.rng.Float64() >= a.rate {
			continue
		}
		a.fill(claim)
		touched++
	}
	return touched
}

func (a *Automation) fill(claim *models.Claim) {
	now := a.now().UTC()
	status := automatedStatuses[a.rng.Intn(len(automatedStatuses))]

	claim.Stage = domain.StagePendingValidation
	claim.ClaimStatus = &status
	claimNumber := fmt.Sprintf("CLM%06d", a.rng.Intn(1000000))
	claim.ClaimNumber = &claimNumber
	received := a.daysAgo(now, 30)
	claim.ClaimReceivedDate = &received

	if status.IsPaid() {
		paid := claim.ChargeAmount.Mul(decimal.NewFromFloat(a.rng.Float64())).Round(2)
		claim.PaidAmount = &paid
		check := fmt.Sprintf("CHK%d", a.rng.Intn(100000))
		claim.CheckNumber = &check
		checkDate := a.daysAgo(now, 15)
		claim.CheckDate = &checkDate
		claim.PaymentDate = &checkDate
	}

	if status.IsDenied() {
		codes := strings.Join(automatedDenialCodes[:a.rng.Intn(2)+1], ", ")
		claim.DenialCodes = &codes

		n := a.rng.Intn(3) + 1
		items := make([]string, n)
		for i := range items {
			items[i] = fmt.Sprint(i + 1)
		}
		lineItems := strings.Join(items, ", ")
		claim.DeniedLineItems = &lineItems

		description := automatedDenialDescription
		claim.DenialDescription = &description
	}
}

func (a *Automation) daysAgo(now time.Time, maxDays int) time.Time {
	offset := time.Duration(a.rng.Float64() * float64(maxDays) * float64(24*time.Hour))
	return now.Add(-offset)
}
