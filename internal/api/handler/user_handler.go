package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/identium/auth-system/internal/core/domain"
	"github.com/identium/auth-system/internal/core/ports"
)

// UserHandler exposes the administrative user-management endpoints plus
// the self-service password change.
type UserHandler struct {
	users      ports.UserService
	dispatcher EventDispatcher
}

func NewUserHandler(users ports.UserService, dispatcher EventDispatcher) *UserHandler {
	return &UserHandler{users: users, dispatcher: dispatcher}
}

type createUserRequest struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Password string `json:"password" validate:"required,min=8"`
	Role     string `json:"role" validate:"required,oneof=admin user"`
	IsActive *bool  `json:"is_active"`
}

type updateUserRequest struct {
	Username *string `json:"username" validate:"omitempty,min=3,max=50"`
	Password *string `json:"password" validate:"omitempty,min=8"`
	Role     *string `json:"role" validate:"omitempty,oneof=admin user"`
	IsActive *bool   `json:"is_active"`
}

type changePasswordRequest struct {
	NewPassword string `json:"new_password" validate:"required,min=8"`
}

type userListResponse struct {
	Items      []*userResponse `json:"items"`
	Total      int64           `json:"total"`
	Page       int             `json:"page"`
	Limit      int             `json:"limit"`
	TotalPages int             `json:"total_pages"`
}

// Create handles POST /users — admin-created account with explicit role.
//
// @Summary      Create a user
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createUserRequest  true  "User details"
// @Success      201   {object}  userResponse
// @Failure      400   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /users [post]
func (h *UserHandler) Create(c echo.Context) error {
	var req createUserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}

	user, err := h.users.Create(c.Request().Context(), ports.CreateUserInput{
		Username: req.Username,
		Password: req.Password,
		Role:     domain.Role(req.Role),
		IsActive: active,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toUserResponse(user))
}

// List handles GET /users with role/is_active filters and pagination.
//
// @Summary      List users
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        role       query  string  false  "Filter by role"
// @Param        is_active  query  bool    false  "Filter by activity"
// @Param        page       query  int     false  "Page (1-based)"
// @Param        limit      query  int     false  "Page size (max 100)"
// @Success      200  {object}  userListResponse
// @Router       /users [get]
func (h *UserHandler) List(c echo.Context) error {
	filter := ports.ListUsersFilter{
		Role: domain.Role(c.QueryParam("role")),
	}
	if raw := c.QueryParam("is_active"); raw != "" {
		active, err := strconv.ParseBool(raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "is_active must be a boolean")
		}
		filter.IsActive = &active
	}
	filter.Page, _ = strconv.Atoi(c.QueryParam("page"))
	filter.Limit, _ = strconv.Atoi(c.QueryParam("limit"))

	result, err := h.users.List(c.Request().Context(), filter)
	if err != nil {
		return err
	}

	items := make([]*userResponse, 0, len(result.Items))
	for _, u := range result.Items {
		items = append(items, toUserResponse(u))
	}
	return c.JSON(http.StatusOK, userListResponse{
		Items:      items,
		Total:      result.Total,
		Page:       result.Page,
		Limit:      result.Limit,
		TotalPages: result.TotalPages,
	})
}

// Get handles GET /users/:id.
//
// @Summary      Get a user by id
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  userResponse
// @Failure      404  {object}  errorResponse
// @Router       /users/{id} [get]
func (h *UserHandler) Get(c echo.Context) error {
	user, err := h.users.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toUserResponse(user))
}

// Update handles PUT /users/:id — partial update of username, password,
// role and activity. Each provided field maps onto its named domain
// operation; updated_at bumps per mutation.
//
// @Summary      Update a user
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      updateUserRequest  true  "Fields to update"
// @Success      200   {object}  userResponse
// @Failure      404   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /users/{id} [put]
func (h *UserHandler) Update(c echo.Context) error {
	var req updateUserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ctx := c.Request().Context()
	id := c.Param("id")

	user, err := h.users.Get(ctx, id)
	if err != nil {
		return err
	}

	if req.Username != nil {
		if user, err = h.users.ChangeUsername(ctx, id, *req.Username); err != nil {
			return err
		}
	}
	if req.Password != nil {
		if user, err = h.users.ChangePassword(ctx, id, *req.Password); err != nil {
			return err
		}
		h.dispatcher.Enqueue(domain.UserEvent{
			UserID:   user.ID,
			Username: user.Username.String(),
			Type:     domain.EventPasswordChanged,
			Source:   c.RealIP(),
		})
	}
	if req.Role != nil {
		if user, err = h.users.ChangeRole(ctx, id, domain.Role(*req.Role)); err != nil {
			return err
		}
	}
	if req.IsActive != nil {
		if user, err = h.users.SetActive(ctx, id, *req.IsActive); err != nil {
			return err
		}
		if !*req.IsActive {
			h.dispatcher.Enqueue(domain.UserEvent{
				UserID:   user.ID,
				Username: user.Username.String(),
				Type:     domain.EventUserDeactivated,
				Source:   c.RealIP(),
			})
		}
	}

	return c.JSON(http.StatusOK, toUserResponse(user))
}

// Delete handles DELETE /users/:id.
//
// @Summary      Delete a user
// @Tags         users
// @Security     BearerAuth
// @Success      204
// @Failure      404  {object}  errorResponse
// @Router       /users/{id} [delete]
func (h *UserHandler) Delete(c echo.Context) error {
	if err := h.users.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// ChangeOwnPassword handles PUT /users/me/password for the authenticated
// user.
//
// @Summary      Change own password
// @Tags         users
// @Accept       json
// @Security     BearerAuth
// @Param        body  body  changePasswordRequest  true  "New password"
// @Success      204
// @Failure      400  {object}  errorResponse
// @Router       /users/me/password [put]
func (h *UserHandler) ChangeOwnPassword(c echo.Context) error {
	userID, _, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	var req changePasswordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	user, err := h.users.ChangePassword(c.Request().Context(), userID, req.NewPassword)
	if err != nil {
		return err
	}

	h.dispatcher.Enqueue(domain.UserEvent{
		UserID:   user.ID,
		Username: user.Username.String(),
		Type:     domain.EventPasswordChanged,
		Source:   c.RealIP(),
	})
	return c.NoContent(http.StatusNoContent)
}
