package claimcsv

import (
	"strings"
	"time"

	"claims-dashboard/internal/pkg/dates"

	"github.com/shopspring/decimal"
)

// Header aliases accepted on import. The first non-empty alias wins.
var (
	PatientFirstNameAliases   = []string{"Patient First Name", "patientFirstName", "FirstName", "First Name"}
	PatientLastNameAliases    = []string{"Patient Last Name", "patientLastName", "LastName", "Last Name"}
	MRNAliases                = []string{"MRN", "mrn", "Medical Record Number"}
	DateOfBirthAliases        = []string{"Date of Birth", "dateOfBirth", "DOB", "dob"}
	DateOfServiceAliases      = []string{"Date of Service", "dateOfService", "DOS", "dos"}
	ChargeAmountAliases       = []string{"Charge Amount", "chargeAmount", "Charge", "Amount"}
	PrimaryInsuranceAliases   = []string{"Primary Insurance", "primaryInsurance", "Primary Plan", "Payer"}
	PrimaryMemberIDAliases    = []string{"Primary Member ID", "primaryMemberId", "Member ID", "MemberID"}
	SecondaryInsuranceAliases = []string{"Secondary Insurance", "secondaryInsurance", "Secondary Plan"}
	SecondaryMemberIDAliases  = []string{"Secondary Member ID", "secondaryMemberId"}
	ProviderFirstNameAliases  = []string{"Provider First Name", "providerFirstName", "Provider FirstName"}
	ProviderLastNameAliases   = []string{"Provider Last Name", "providerLastName", "Provider LastName"}
	ProviderNPIAliases        = []string{"Provider NPI", "providerNpi", "NPI", "npi"}
	ClaimIDAliases            = []string{"Claim ID", "claimId", "ClaimID", "Claim Number"}
)

// Defaults applied to missing provider columns.
const (
	DefaultProviderFirstName = "Unknown"
	DefaultProviderLastName  = "Provider"
	DefaultProviderNPI       = "0000000000"
)

// Record is a row mapped onto claim fields. SecondaryInsurance and
// SecondaryMemberID are empty when the claim has no secondary coverage.
type Record struct {
	PatientFirstName   string
	PatientLastName    string
	MRN                string
	DateOfBirth        time.Time
	DateOfService      time.Time
	ChargeAmount       decimal.Decimal
	PrimaryInsurance   string
	PrimaryMemberID    string
	SecondaryInsurance string
	SecondaryMemberID  string
	ProviderFirstName  string
	ProviderLastName   string
	ProviderNPI        string
	ClaimID            string
}

// MapRow resolves aliases and defaults for one row. It reports false when any
// of first name, last name, MRN, primary insurance or claim id is missing.
// Empty or unparseable dates fall back to now.
func MapRow(row Row, now time.Time) (Record, bool) {
	rec := Record{
		PatientFirstName:  row.Get(PatientFirstNameAliases...),
		PatientLastName:   row.Get(PatientLastNameAliases...),
		MRN:               row.Get(MRNAliases...),
		DateOfBirth:       parseDate(row.Get(DateOfBirthAliases...), now),
		DateOfService:     parseDate(row.Get(DateOfServiceAliases...), now),
		ChargeAmount:      ParseAmount(row.Get(ChargeAmountAliases...)),
		PrimaryInsurance:  row.Get(PrimaryInsuranceAliases...),
		PrimaryMemberID:   row.Get(PrimaryMemberIDAliases...),
		ProviderFirstName: orDefault(row.Get(ProviderFirstNameAliases...), DefaultProviderFirstName),
		ProviderLastName:  orDefault(row.Get(ProviderLastNameAliases...), DefaultProviderLastName),
		ProviderNPI:       orDefault(row.Get(ProviderNPIAliases...), DefaultProviderNPI),
		ClaimID:           row.Get(ClaimIDAliases...),
	}

	if secondary := row.Get(SecondaryInsuranceAliases...); secondary != "" {
		rec.SecondaryInsurance = secondary
		rec.SecondaryMemberID = row.Get(SecondaryMemberIDAliases...)
	}

	if rec.PatientFirstName == "" || rec.PatientLastName == "" || rec.MRN == "" ||
		rec.PrimaryInsurance == "" || rec.ClaimID == "" {
		return Record{}, false
	}
	return rec, true
}

// ParseAmount reads a money cell. Currency symbols and thousands separators
// are ignored; anything unparseable or negative yields zero.
func ParseAmount(s string) decimal.Decimal {
	s = strings.NewReplacer("$", "", ",", "").Replace(strings.TrimSpace(s))
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil || d.IsNegative() {
		return decimal.Zero
	}
	return d
}

func parseDate(s string, now time.Time) time.Time {
	if s == "" {
		return now
	}
	t, err := dates.ParseLoose(s)
	if err != nil {
		return now
	}
	return t
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
