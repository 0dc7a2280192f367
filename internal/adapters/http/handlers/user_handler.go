package handlers

import (
	"claims-dashboard/internal/adapters/persistence/repositories"
	"claims-dashboard/internal/core/domain"
	"claims-dashboard/internal/core/services"
	"claims-dashboard/internal/pkg/pagination"
	"claims-dashboard/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// UserHandler handles user management endpoints
type UserHandler struct {
	userService *services.UserService
}

// NewUserHandler creates a new user handler
func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
	}
}

// ListUsers lists users for assignee pickers
// @Summary List users
// @Description Paginated user list ordered by name
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Param role query string false "ADMIN or ANNOTATOR"
// @Param search query string false "Name or email substring"
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(50)
// @Success 200 {object} response.Response{data=[]models.UserResponse,meta=pagination.Meta}
// @Failure 401 {object} response.Response
// @Router /users [get]
func (h *UserHandler) ListUsers(c *fiber.Ctx) error {
	q := repositories.UserQuery{Search: c.Query("search")}
	if v := c.Query("role"); v != "" {
		role, err := domain.ParseRole(v)
		if err != nil {
			return respondError(c, err, "Failed to list users")
		}
		q.Role = role
	}

	users, meta, err := h.userService.List(c.UserContext(), q, pagination.GetParams(c))
	if err != nil {
		return respondError(c, err, "Failed to list users")
	}

	return response.Paginated(c, "Users retrieved successfully", users, meta)
}

// CreateUser creates an account (Admin only)
// @Summary Create user
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.CreateUserInput true "User"
// @Success 201 {object} response.Response{data=models.UserResponse}
// @Failure 400 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /users [post]
func (h *UserHandler) CreateUser(c *fiber.Ctx) error {
	var input services.CreateUserInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	user, err := h.userService.Create(c.UserContext(), &input)
	if err != nil {
		return respondError(c, err, "Failed to create user")
	}

	return response.Created(c, "User created successfully", user.ToResponse())
}
