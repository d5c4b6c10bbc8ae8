package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/yukikurage/membership-api/internal/constants"
	apierrors "github.com/yukikurage/membership-api/internal/errors"
	"github.com/yukikurage/membership-api/internal/models"
	"github.com/yukikurage/membership-api/internal/security"
	"github.com/yukikurage/membership-api/internal/services"
)

// UserChecker loads the account behind an authenticated request.
type UserChecker interface {
	GetUser(ctx context.Context, id uint64) (*models.User, error)
}

// RequireAuth accepts a bearer access token, falling back to the session
// cookie set at sign-in. The account must be active and must not be holding
// a temporary password.
func RequireAuth(tokens security.TokenIssuer, users UserChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := authenticate(c, tokens)
		if !ok {
			c.Abort()
			return
		}

		user, err := users.GetUser(c.Request.Context(), userID)
		if err != nil {
			if errors.Is(err, services.ErrUserNotFound) {
				apierrors.Unauthorized(c, "")
			} else {
				apierrors.InternalError(c, "Failed to load user")
			}
			c.Abort()
			return
		}

		if user.MustRotatePassword {
			apierrors.PasswordRotationRequired(c)
			c.Abort()
			return
		}
		if user.Status != models.UserStatusActive {
			apierrors.InactiveUser(c)
			c.Abort()
			return
		}

		c.Set(constants.ContextKeyUserID, user.ID)
		c.Next()
	}
}

// authenticate resolves the user id from the bearer token or the session,
// writing the 401 itself when neither holds one.
func authenticate(c *gin.Context, tokens security.TokenIssuer) (uint64, bool) {
	if header := c.GetHeader("Authorization"); header != "" {
		raw, ok := bearerToken(header)
		if !ok {
			apierrors.Unauthorized(c, "Invalid authorization header")
			return 0, false
		}

		claims, err := tokens.Verify(raw)
		if err != nil {
			apierrors.Unauthorized(c, "Invalid or expired token")
			return 0, false
		}

		userID, err := claims.UserID()
		if err != nil {
			apierrors.Unauthorized(c, "Invalid or expired token")
			return 0, false
		}
		return userID, true
	}

	session := sessions.Default(c)
	c.Set(constants.ContextKeyUserID, session.Get(constants.ContextKeyUserID))
	userID, ok := GetUserID(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return 0, false
	}
	return userID, true
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// GetUserID retrieves the current user ID from context
func GetUserID(c *gin.Context) (uint64, bool) {
	userID, exists := c.Get(constants.ContextKeyUserID)
	if !exists {
		return 0, false
	}

	switch v := userID.(type) {
	case uint64:
		return v, true
	case uint:
		return uint64(v), true
	case int:
		if v < 0 {
			return 0, false
		}
		return uint64(v), true
	case int64:
		if v < 0 {
			return 0, false
		}
		return uint64(v), true
	default:
		return 0, false
	}
}
