package v1

import (
	"net/http"
	"time"

	"go-studio-backend/config"
	"go-studio-backend/internal/delivery/http/response"
	"go-studio-backend/internal/domain"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	authUC domain.AuthUsecase
	config *config.Config
}

func NewAuthHandler(public *gin.RouterGroup, protected *gin.RouterGroup, authUC domain.AuthUsecase, cfg *config.Config) {
	handler := &AuthHandler{authUC: authUC, config: cfg}

	publicAuth := public.Group("/auth")
	{
		publicAuth.POST("/signup", handler.Signup)
		publicAuth.POST("/login", handler.Login)
		publicAuth.POST("/logout", handler.Logout)
	}

	protectedAuth := protected.Group("/auth")
	{
		protectedAuth.GET("/me", handler.Me)
	}
}

// Signup godoc
// @Summary      User Registration
// @Description  Register a new client or home user account. Staff roles cannot self-register.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        signup  body      domain.SignupRequest  true  "Registration Details"
// @Success      201     {object}  response.Response{data=domain.TokenPair}
// @Failure      400     {object}  response.Response
// @Failure      409     {object}  response.Response
// @Router       /auth/signup [post]
func (h *AuthHandler) Signup(c *gin.Context) {
	var req domain.SignupRequest
	if !bindAndValidate(c, &req) {
		return
	}

	pair, err := h.authUC.Signup(c, &req)
	if err != nil {
		c.Error(err)
		return
	}

	h.setAuthCookie(c, pair)
	response.Success(c, http.StatusCreated, "Registration successful", pair)
}

// Login godoc
// @Summary      User Login
// @Description  Login with email and password
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        login  body      domain.LoginRequest  true  "Login Credentials"
// @Success      200    {object}  response.Response{data=domain.TokenPair}
// @Failure      400    {object}  response.Response
// @Failure      401    {object}  response.Response
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req domain.LoginRequest
	if !bindAndValidate(c, &req) {
		return
	}

	pair, err := h.authUC.Login(c, &req)
	if err != nil {
		c.Error(err)
		return
	}

	h.setAuthCookie(c, pair)
	response.Success(c, http.StatusOK, "Login successful", pair)
}

// Logout godoc
// @Summary      Logout
// @Description  Clear the auth cookie. Bearer clients just discard the token.
// @Tags         auth
// @Produce      json
// @Success      200  {object}  response.Response
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie("auth_token", "", -1, "/", "", h.config.IsProduction(), true)
	response.Success(c, http.StatusOK, "Logged out", nil)
}

// Me godoc
// @Summary      Current User
// @Description  Return the authenticated user's profile
// @Tags         auth
// @Produce      json
// @Success      200  {object}  response.Response{data=domain.User}
// @Failure      401  {object}  response.Response
// @Router       /auth/me [get]
// @Security     BearerAuth
func (h *AuthHandler) Me(c *gin.Context) {
	userID := c.GetInt64(string(domain.KeyUserID))

	user, err := h.authUC.GetCurrentUser(c, userID)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "User details", user)
}

// setAuthCookie mirrors the token into an HttpOnly cookie so browser clients
// don't have to store it in JS-accessible storage.
func (h *AuthHandler) setAuthCookie(c *gin.Context, pair *domain.TokenPair) {
	maxAge := int(time.Until(pair.ExpiresAt).Seconds())
	if maxAge < 0 {
		maxAge = 0
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie("auth_token", pair.AccessToken, maxAge, "/", "", h.config.IsProduction(), true)
}
