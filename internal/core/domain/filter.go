package domain

import "time"

// ClaimFilter holds the list criteria for claims. Every set criterion is
// ANDed with the others; multi-value criteria match any of their values.
type ClaimFilter struct {
	Search         string
	Stages         []Stage
	Statuses       []ClaimStatus
	Assignee       string
	AssigneeID     string
	PrimaryPlans   []string
	SecondaryPlans []string
	ProviderNPIs   []string
	DateFrom       *time.Time
	DateTo         *time.Time
}

// IsEmpty reports whether the filter matches every claim.
func (f ClaimFilter) IsEmpty() bool {
	return f.Search == "" &&
		len(f.Stages) == 0 &&
		len(f.Statuses) == 0 &&
		f.Assignee == "" &&
		f.AssigneeID == "" &&
		len(f.PrimaryPlans) == 0 &&
		len(f.SecondaryPlans) == 0 &&
		len(f.ProviderNPIs) == 0 &&
		f.DateFrom == nil &&
		f.DateTo == nil
}
