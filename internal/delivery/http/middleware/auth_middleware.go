package middleware

import (
	"strings"

	"go-recruiting-platform/internal/domain"
	"go-recruiting-platform/pkg/apperror"
	"go-recruiting-platform/pkg/metrics"
	"go-recruiting-platform/pkg/security"

	"github.com/ecodeclub/ekit/slice"
	"github.com/gin-gonic/gin"
)

// unauthenticatedMessage is shared by every authentication failure so the
// response never reveals which check failed.
const unauthenticatedMessage = "Authentication required"

// Authenticate requires a valid bearer access token and attaches the caller's
// identity to both the gin context and the request context.
func Authenticate(tokens domain.TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !authenticate(c, tokens) {
			return
		}
		c.Next()
	}
}

// OptionalAuthenticate attaches the identity when a valid token is present
// and lets anonymous requests through. An invalid token is treated as absent.
func OptionalAuthenticate(tokens domain.TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if identity, ok := verifyBearer(c, tokens); ok {
			setIdentity(c, identity)
		}
		c.Next()
	}
}

// Authorize authenticates and then requires one of roles. The wrapped
// handler is never reached on failure.
func Authorize(tokens domain.TokenService, roles ...domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !authenticate(c, tokens) {
			return
		}
		identity, _ := IdentityFrom(c)
		if !slice.Contains(roles, identity.Role) {
			metrics.AuthRejections.WithLabelValues(metrics.ReasonForbidden).Inc()
			security.DefaultLogger().LogForbiddenAccess(c.Request.Context(), identity.UserID, string(identity.Role), requestIDFrom(c), c.FullPath())
			abortWithError(c, apperror.Forbidden("You do not have permission to perform this action"))
			return
		}
		c.Next()
	}
}

// authenticate attaches the identity or aborts with Unauthenticated.
func authenticate(c *gin.Context, tokens domain.TokenService) bool {
	identity, ok := verifyBearer(c, tokens)
	if !ok {
		metrics.AuthRejections.WithLabelValues(metrics.ReasonUnauthenticated).Inc()
		security.DefaultLogger().LogUnauthorizedAccess(c.Request.Context(), c.ClientIP(), requestIDFrom(c), c.FullPath())
		abortWithError(c, apperror.Unauthorized(unauthenticatedMessage))
		return false
	}
	setIdentity(c, identity)
	return true
}

// IdentityFrom returns the identity attached by Authenticate or OptionalAuthenticate.
func IdentityFrom(c *gin.Context) (domain.Identity, bool) {
	v, ok := c.Get(string(domain.KeyIdentity))
	if !ok {
		return domain.Identity{}, false
	}
	identity, ok := v.(domain.Identity)
	return identity, ok
}

func verifyBearer(c *gin.Context, tokens domain.TokenService) (domain.Identity, bool) {
	header := c.GetHeader("Authorization")
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return domain.Identity{}, false
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return domain.Identity{}, false
	}
	return tokens.VerifyAccess(token)
}

func setIdentity(c *gin.Context, identity domain.Identity) {
	c.Set(string(domain.KeyIdentity), identity)
	c.Set(string(domain.KeyUserID), identity.UserID)
	c.Set(string(domain.KeyUserEmail), identity.Email)
	c.Set(string(domain.KeyUserRole), string(identity.Role))
	c.Request = c.Request.WithContext(domain.WithIdentity(c.Request.Context(), identity))
}
