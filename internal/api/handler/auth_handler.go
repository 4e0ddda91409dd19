package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/nexerp/edge-access/internal/api/middleware"
	"github.com/nexerp/edge-access/internal/core/domain"
	"github.com/nexerp/edge-access/internal/core/ports"
)

// AuthHandler exposes login, account creation and the current principal.
type AuthHandler struct {
	authService ports.AuthService
}

func NewAuthHandler(authService ports.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Login authenticates a user and returns a signed token.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  loginResponse
// @Failure      400   {object}  respond.Envelope
// @Failure      401   {object}  respond.Envelope
// @Failure      429   {object}  respond.Envelope
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	token, user, err := h.authService.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, loginResponse{Success: true, Token: token, User: user})
}

// CreateUser creates an account. Mounted behind RequireRole(ADMIN, HR).
//
// @Summary      Create a user
// @Tags         auth
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createUserRequest  true  "New account"
// @Success      201   {object}  userResponse
// @Failure      400   {object}  respond.Envelope
// @Failure      401   {object}  respond.Envelope
// @Failure      403   {object}  respond.Envelope
// @Failure      409   {object}  respond.Envelope
// @Router       /auth/users [post]
func (h *AuthHandler) CreateUser(c echo.Context) error {
	var req createUserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	user, err := h.authService.CreateUser(c.Request().Context(), ports.CreateUserInput{
		Email:       req.Email,
		Name:        req.Name,
		Password:    req.Password,
		Role:        domain.Role(req.Role),
		EmployeeJob: domain.EmployeeJob(req.EmployeeJob),
		BranchID:    req.BranchID,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, userResponse{Success: true, User: user})
}

// Me returns the verified principal of the caller.
//
// @Summary      Current principal
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  principalResponse
// @Failure      401  {object}  respond.Envelope
// @Router       /auth/me [get]
func (h *AuthHandler) Me(c echo.Context) error {
	p, ok := middleware.CurrentPrincipal(c)
	if !ok {
		return domain.ErrUnauthenticated
	}
	return c.JSON(http.StatusOK, principalResponse{
		Success:     true,
		UserID:      p.UserID,
		Role:        string(p.Role),
		EmployeeJob: string(p.EmployeeJob),
		BranchID:    p.BranchID,
		ExpiresAt:   p.ExpiresAt,
	})
}
