package handlers

import (
	"fmt"
	"strings"

	"claims-dashboard/internal/core/domain"
	"claims-dashboard/internal/pkg/dates"

	"github.com/gofiber/fiber/v2"
)

// parseClaimFilter reads the list criteria from the query string. Unknown
// stage or status values and malformed dates are validation errors.
func parseClaimFilter(c *fiber.Ctx) (domain.ClaimFilter, error) {
	f := domain.ClaimFilter{
		Search:         strings.TrimSpace(c.Query("search")),
		Assignee:       strings.TrimSpace(c.Query("assignee")),
		AssigneeID:     strings.TrimSpace(c.Query("assigneeId")),
		PrimaryPlans:   splitList(c.Query("primaryPlan")),
		SecondaryPlans: splitList(c.Query("secondaryPlan")),
		ProviderNPIs:   splitList(c.Query("providerNpi")),
	}

	for _, v := range splitList(c.Query("stages")) {
		stage, err := domain.ParseStage(v)
		if err != nil {
			return f, err
		}
		f.Stages = append(f.Stages, stage)
	}

	for _, v := range splitList(c.Query("statuses")) {
		status, err := domain.ParseClaimStatus(v)
		if err != nil {
			return f, err
		}
		f.Statuses = append(f.Statuses, status)
	}

	if v := strings.TrimSpace(c.Query("dateFrom")); v != "" {
		t, err := dates.Parse(v)
		if err != nil {
			return f, fmt.Errorf("%w: dateFrom: %v", domain.ErrInvalidDate, err)
		}
		f.DateFrom = &t
	}
	if v := strings.TrimSpace(c.Query("dateTo")); v != "" {
		t, err := dates.ParseEnd(v)
		if err != nil {
			return f, fmt.Errorf("%w: dateTo: %v", domain.ErrInvalidDate, err)
		}
		f.DateTo = &t
	}

	return f, nil
}

// parseExportFilter is parseClaimFilter plus the single `stage` parameter
// used by export links; "ALL" means no stage restriction.
func parseExportFilter(c *fiber.Ctx) (domain.ClaimFilter, error) {
	f, err := parseClaimFilter(c)
	if err != nil {
		return f, err
	}

	if v := strings.TrimSpace(c.Query("stage")); v != "" && !strings.EqualFold(v, "ALL") {
		stage, err := domain.ParseStage(v)
		if err != nil {
			return f, err
		}
		f.Stages = append(f.Stages, stage)
	}
	return f, nil
}

// splitList splits a comma-separated query value, dropping blanks
func splitList(raw string) []string {
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
