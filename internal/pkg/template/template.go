// Package template renders the single-line status note reviewers paste into
// the billing system.
package template

import (
	"fmt"
	"time"

	"claims-dashboard/internal/pkg/dates"

	"github.com/shopspring/decimal"
)

// Fields are the values for one coverage side of a claim. Nil and empty
// values render as empty segments.
type Fields struct {
	Status            string
	DateOfService     time.Time
	Plan              string
	ClaimReceivedDate *time.Time
	ClaimNumber       string
	DenialCodes       string
	DenialDescription string
	PaidAmount        *decimal.Decimal
	CheckNumber       string
	CheckDate         *time.Time
	DeniedLineItems   string
}

const layout = "(%s) RISA:_ DC: %s_ PN: %s_ DCR: %s_ CN:%s_ DC/RM: %s_ DCD: %s_ PA: %s_ CKN:%s _ CKD: %s_ LI: %s"

// Generate builds the template text. The segment layout is fixed; only the
// values vary.
func Generate(f Fields) string {
	dos := ""
	if !f.DateOfService.IsZero() {
		dos = dates.US(f.DateOfService)
	}

	return fmt.Sprintf(layout,
		f.Status,
		dos,
		f.Plan,
		dates.USPtr(f.ClaimReceivedDate),
		f.ClaimNumber,
		f.DenialCodes,
		f.DenialDescription,
		formatPaid(f.PaidAmount),
		f.CheckNumber,
		dates.USPtr(f.CheckDate),
		f.DeniedLineItems,
	)
}

// formatPaid renders "$<amount>" for a present, non-zero amount.
func formatPaid(amount *decimal.Decimal) string {
	if amount == nil || amount.IsZero() {
		return ""
	}
	return "$" + amount.String()
}
