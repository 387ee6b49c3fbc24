package v1

import (
	"net/http"

	"go-recruiting-platform/internal/delivery/http/response"
	"go-recruiting-platform/internal/domain"
	"go-recruiting-platform/pkg/apperror"
	"go-recruiting-platform/pkg/metrics"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	authUC domain.AuthUsecase
}

// AuthLimits are the rate limiters applied in front of the public auth routes.
type AuthLimits struct {
	Login gin.HandlerFunc
	Other gin.HandlerFunc
}

func NewAuthHandler(r *gin.RouterGroup, gates Gates, limits AuthLimits, authUC domain.AuthUsecase) {
	handler := &AuthHandler{authUC: authUC}

	auth := r.Group("/auth")
	{
		auth.POST("/register", limits.Other, handler.Register)
		auth.POST("/login", limits.Login, handler.Login)
		auth.POST("/refresh", limits.Other, handler.Refresh)
		auth.GET("/me", gates.Authenticated, handler.Me)
	}
}

// RegisterRequest has no role field; every new account is a candidate.
type RegisterRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// Register godoc
// @Summary      Register a candidate
// @Description  Create a candidate account. Any role in the body is ignored.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        register  body      RegisterRequest  true  "Registration details"
// @Success      201       {object}  response.Response{data=AuthResponse}
// @Failure      400       {object}  response.Response
// @Failure      409       {object}  response.Response
// @Router       /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if !bindJSON(c, nil, &req) {
		return
	}

	result, err := h.authUC.Register(c.Request.Context(), domain.RegisterInput{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusCreated, "User registered successfully", toAuthResponse(result))
}

// Login godoc
// @Summary      Log in
// @Description  Exchange email and password for an access and refresh token
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        login  body      LoginRequest  true  "Credentials"
// @Success      200    {object}  response.Response{data=AuthResponse}
// @Failure      400    {object}  response.Response
// @Failure      401    {object}  response.Response
// @Failure      429    {object}  response.Response
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if !bindJSON(c, nil, &req) {
		return
	}

	result, err := h.authUC.Login(c.Request.Context(), domain.LoginInput{
		Email:     req.Email,
		Password:  req.Password,
		IP:        c.ClientIP(),
		UserAgent: c.GetHeader("User-Agent"),
		RequestID: c.GetString(string(domain.KeyRequestID)),
	})
	if err != nil {
		switch apperror.KindOf(err) {
		case apperror.KindRateLimited:
			metrics.LoginAttempts.WithLabelValues(metrics.LoginBlocked).Inc()
		case apperror.KindUnauthenticated:
			metrics.LoginAttempts.WithLabelValues(metrics.LoginFailure).Inc()
		}
		c.Error(err)
		return
	}

	metrics.LoginAttempts.WithLabelValues(metrics.LoginSuccess).Inc()
	response.Success(c, http.StatusOK, "Login successful", toAuthResponse(result))
}

// Refresh godoc
// @Summary      Refresh tokens
// @Description  Exchange a refresh token for a new token pair carrying the user's current role
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        refresh  body      RefreshRequest  true  "Refresh token"
// @Success      200      {object}  response.Response{data=AuthResponse}
// @Failure      401      {object}  response.Response
// @Router       /auth/refresh [post]
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req RefreshRequest
	if !bindJSON(c, nil, &req) {
		return
	}
	if req.RefreshToken == "" {
		c.Error(apperror.Validation("refreshToken is required"))
		return
	}

	result, err := h.authUC.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Token refreshed", toAuthResponse(result))
}

// Me godoc
// @Summary      Current user
// @Tags         auth
// @Produce      json
// @Success      200  {object}  response.Response{data=UserResponse}
// @Failure      401  {object}  response.Response
// @Router       /auth/me [get]
// @Security     BearerAuth
func (h *AuthHandler) Me(c *gin.Context) {
	user, err := h.authUC.GetCurrentUser(c.Request.Context(), identity(c).UserID)
	if err != nil {
		if apperror.Is(err, apperror.KindNotFound) {
			c.Error(apperror.Unauthorized("Authentication required"))
			return
		}
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "User profile", toUserResponse(user))
}
