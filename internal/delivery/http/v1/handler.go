package v1

import (
	"bytes"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go-recruiting-platform/internal/delivery/http/middleware"
	"go-recruiting-platform/internal/domain"
	"go-recruiting-platform/pkg/apperror"
	"go-recruiting-platform/pkg/validation"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

const maxBodyBytes = 1 << 20

// Gates are the per-route authentication and role chains.
type Gates struct {
	Authenticated gin.HandlerFunc
	Optional      gin.HandlerFunc
	Candidate     gin.HandlerFunc
	Recruiter     gin.HandlerFunc
}

func NewGates(tokens domain.TokenService) Gates {
	return Gates{
		Authenticated: middleware.Authenticate(tokens),
		Optional:      middleware.OptionalAuthenticate(tokens),
		Candidate:     middleware.Authorize(tokens, domain.RoleCandidate),
		Recruiter:     middleware.Authorize(tokens, domain.RoleRecruiter, domain.RoleAdmin),
	}
}

// bindJSON decodes the body into dst. When schema is set the raw body is
// checked against it first, so unknown fields are rejected rather than dropped.
// An empty body decodes as an empty object.
func bindJSON(c *gin.Context, schema *validation.Schema, dst any) bool {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes)
	raw, err := c.GetRawData()
	if err != nil {
		c.Error(apperror.BadRequest("Request body could not be read"))
		return false
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		raw = []byte("{}")
	}
	if schema != nil {
		if err := schema.Validate(raw); err != nil {
			c.Error(err)
			return false
		}
	}
	if err := binding.JSON.BindBody(raw, dst); err != nil {
		c.Error(apperror.BadRequest("Request body must be valid JSON"))
		return false
	}
	return true
}

func pageFrom(c *gin.Context, defaultLimit int) domain.Page {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit"))
	return domain.NewPage(page, limit, defaultLimit)
}

// listQuery splits a comma separated query value.
func listQuery(c *gin.Context, key string) []string {
	var out []string
	for _, v := range c.QueryArray(key) {
		for _, part := range strings.Split(v, ",") {
			if p := strings.TrimSpace(part); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}

// identity is only called behind a gate, which guarantees it is set.
func identity(c *gin.Context) domain.Identity {
	id, _ := middleware.IdentityFrom(c)
	return id
}

func optionalIdentity(c *gin.Context) *domain.Identity {
	id, ok := middleware.IdentityFrom(c)
	if !ok {
		return nil
	}
	return &id
}

// UserResponse is the rendered user; the password digest never leaves the server.
type UserResponse struct {
	ID        string      `json:"id"`
	Email     string      `json:"email"`
	Role      domain.Role `json:"role"`
	TenantID  *string     `json:"tenantId"`
	FirstName string      `json:"firstName"`
	LastName  string      `json:"lastName"`
	CreatedAt time.Time   `json:"createdAt"`
	UpdatedAt time.Time   `json:"updatedAt"`
}

func toUserResponse(u *domain.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		Role:      u.Role,
		TenantID:  u.TenantID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

type AuthResponse struct {
	User         UserResponse `json:"user"`
	AccessToken  string       `json:"accessToken"`
	RefreshToken string       `json:"refreshToken"`
}

func toAuthResponse(r *domain.AuthResult) AuthResponse {
	return AuthResponse{
		User:         toUserResponse(r.User),
		AccessToken:  r.Tokens.AccessToken,
		RefreshToken: r.Tokens.RefreshToken,
	}
}
