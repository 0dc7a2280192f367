package handlers

import (
	"bufio"
	"fmt"

	"claims-dashboard/internal/adapters/http/middleware"
	"claims-dashboard/internal/adapters/persistence/models"
	"claims-dashboard/internal/core/domain"
	"claims-dashboard/internal/core/services"
	"claims-dashboard/internal/pkg/claimcsv"
	"claims-dashboard/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// ClaimHandler handles claim endpoints
type ClaimHandler struct {
	claimService *services.ClaimService
}

// NewClaimHandler creates a new claim handler
func NewClaimHandler(claimService *services.ClaimService) *ClaimHandler {
	return &ClaimHandler{claimService: claimService}
}

// TemplateResponse is the rendered billing note for one side of a claim
type TemplateResponse struct {
	Side     domain.Side `json:"side"`
	Template string      `json:"template"`
}

// List returns claims matching the query filters, newest first
// @Summary List claims
// @Description Filter claims by search text, stage, status, assignee, plan, provider and service date
// @Tags Claims
// @Produce json
// @Security BearerAuth
// @Param search query string false "Name, member id, claim id or MRN substring"
// @Param stages query string false "Comma-separated stages"
// @Param statuses query string false "Comma-separated claim statuses"
// @Param assignee query string false "Assignee display name"
// @Param assigneeId query string false "Assignee user id"
// @Param primaryPlan query string false "Comma-separated primary plans"
// @Param secondaryPlan query string false "Comma-separated secondary plans"
// @Param providerNpi query string false "Comma-separated provider NPIs"
// @Param dateFrom query string false "Service date lower bound (inclusive)"
// @Param dateTo query string false "Service date upper bound (inclusive)"
// @Success 200 {object} response.Response{data=[]models.ClaimResponse}
// @Failure 400 {object} response.Response
// @Router /claims [get]
func (h *ClaimHandler) List(c *fiber.Ctx) error {
	filter, err := parseClaimFilter(c)
	if err != nil {
		return respondError(c, err, "Failed to list claims")
	}

	claims, err := h.claimService.List(c.UserContext(), filter)
	if err != nil {
		return respondError(c, err, "Failed to list claims")
	}

	return response.Success(c, "Claims retrieved successfully", models.ToResponses(claims))
}

// Create creates a claim
// @Summary Create claim
// @Tags Claims
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.CreateClaimInput true "Claim"
// @Success 201 {object} response.Response{data=models.ClaimResponse}
// @Failure 400 {object} response.Response
// @Router /claims [post]
func (h *ClaimHandler) Create(c *fiber.Ctx) error {
	var input services.CreateClaimInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	claim, err := h.claimService.Create(c.UserContext(), &input)
	if err != nil {
		return respondError(c, err, "Failed to create claim")
	}

	return response.Created(c, "Claim created successfully", claim.ToResponse())
}

// Get returns one claim with its assignee
// @Summary Get claim
// @Tags Claims
// @Produce json
// @Security BearerAuth
// @Param id path string true "Claim record ID"
// @Success 200 {object} response.Response{data=models.ClaimResponse}
// @Failure 404 {object} response.Response
// @Router /claims/{id} [get]
func (h *ClaimHandler) Get(c *fiber.Ctx) error {
	claim, err := h.claimService.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err, "Failed to get claim")
	}

	return response.Success(c, "Claim retrieved successfully", claim.ToResponse())
}

// Update applies a partial update
// @Summary Update claim
// @Description Omitted keys are untouched; null or "" clears a field. A stage change follows the workflow rules.
// @Tags Claims
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Claim record ID"
// @Param body body services.UpdateClaimInput true "Fields to change"
// @Success 200 {object} response.Response{data=models.ClaimResponse}
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /claims/{id} [patch]
func (h *ClaimHandler) Update(c *fiber.Ctx) error {
	var input services.UpdateClaimInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	claim, err := h.claimService.Update(c.UserContext(), c.Params("id"), &input, middleware.CurrentUserID(c))
	if err != nil {
		return respondError(c, err, "Failed to update claim")
	}

	return response.Success(c, "Claim updated successfully", claim.ToResponse())
}

// Delete removes a claim and its history
// @Summary Delete claim
// @Tags Claims
// @Produce json
// @Security BearerAuth
// @Param id path string true "Claim record ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /claims/{id} [delete]
func (h *ClaimHandler) Delete(c *fiber.Ctx) error {
	if err := h.claimService.Delete(c.UserContext(), c.Params("id")); err != nil {
		return respondError(c, err, "Failed to delete claim")
	}

	return response.Success(c, "Claim deleted successfully", nil)
}

// AdvanceStage moves a claim forward in the workflow
// @Summary Change claim stage
// @Description VALIDATED requires validatedViaPortal; PROCESSED requires validatedViaPortal and templatePasted
// @Tags Claims
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Claim record ID"
// @Param body body services.AdvanceStageInput true "Target stage and confirmations"
// @Success 200 {object} response.Response{data=models.ClaimResponse}
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /claims/{id}/stage [put]
func (h *ClaimHandler) AdvanceStage(c *fiber.Ctx) error {
	var input services.AdvanceStageInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	claim, err := h.claimService.AdvanceStage(c.UserContext(), c.Params("id"), &input, middleware.CurrentUserID(c))
	if err != nil {
		return respondError(c, err, "Failed to change stage")
	}

	return response.Success(c, "Stage updated successfully", claim.ToResponse())
}

// History lists the stage transitions of a claim
// @Summary Claim stage history
// @Tags Claims
// @Produce json
// @Security BearerAuth
// @Param id path string true "Claim record ID"
// @Success 200 {object} response.Response{data=[]models.ClaimTransition}
// @Failure 404 {object} response.Response
// @Router /claims/{id}/history [get]
func (h *ClaimHandler) History(c *fiber.Ctx) error {
	history, err := h.claimService.History(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err, "Failed to get claim history")
	}

	return response.Success(c, "History retrieved successfully", history)
}

// Template renders the billing-system note for a claim
// @Summary Claim template
// @Tags Claims
// @Produce json
// @Security BearerAuth
// @Param id path string true "Claim record ID"
// @Param side query string false "primary (default) or secondary"
// @Success 200 {object} response.Response{data=TemplateResponse}
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /claims/{id}/template [get]
func (h *ClaimHandler) Template(c *fiber.Ctx) error {
	side, err := domain.ParseSide(c.Query("side"))
	if err != nil {
		return respondError(c, err, "Failed to render template")
	}

	text, err := h.claimService.Template(c.UserContext(), c.Params("id"), side)
	if err != nil {
		return respondError(c, err, "Failed to render template")
	}

	return response.Success(c, "Template generated successfully", TemplateResponse{Side: side, Template: text})
}

// BulkAssign assigns many claims to one user
// @Summary Bulk assign claims
// @Tags Claims
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.BulkAssignInput true "Claim ids and user"
// @Success 200 {object} response.Response{data=services.BulkAssignResult}
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /claims/bulk-assign [post]
func (h *ClaimHandler) BulkAssign(c *fiber.Ctx) error {
	var input services.BulkAssignInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	result, err := h.claimService.BulkAssign(c.UserContext(), &input)
	if err != nil {
		return respondError(c, err, "Failed to assign claims")
	}

	return response.Success(c, fmt.Sprintf("%d claims assigned", result.Updated), result)
}

// Export downloads the filtered claims as CSV
// @Summary Export claims
// @Description Same filters as the list, plus a single stage parameter where ALL means every stage
// @Tags Claims
// @Produce text/csv
// @Security BearerAuth
// @Param stage query string false "Single stage or ALL"
// @Success 200 {string} string "CSV file"
// @Failure 400 {object} response.Response
// @Router /claims/export [get]
func (h *ClaimHandler) Export(c *fiber.Ctx) error {
	filter, err := parseExportFilter(c)
	if err != nil {
		return respondError(c, err, "Failed to export claims")
	}

	c.Set(fiber.HeaderContentType, "text/csv")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, claimcsv.ExportFilename))

	// The status is committed once streaming starts, so failures past this
	// point can only be logged.
	ctx := c.UserContext()
	path := c.Path()
	c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		if _, err := h.claimService.Export(ctx, filter, w); err != nil {
			zap.L().Error("Failed to export claims", zap.String("path", path), zap.Error(err))
		}
		if err := w.Flush(); err != nil {
			zap.L().Warn("export stream closed early", zap.String("path", path), zap.Error(err))
		}
	})
	return nil
}

// Providers lists distinct providers for filter pickers
// @Summary List providers
// @Tags Claims
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response{data=[]services.Provider}
// @Router /providers [get]
func (h *ClaimHandler) Providers(c *fiber.Ctx) error {
	providers, err := h.claimService.Providers(c.UserContext())
	if err != nil {
		return respondError(c, err, "Failed to list providers")
	}

	return response.Success(c, "Providers retrieved successfully", providers)
}
