package middleware

import (
	"context"
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	apierrors "github.com/yukikurage/membership-api/internal/errors"
	"github.com/yukikurage/membership-api/internal/models"
	"github.com/yukikurage/membership-api/internal/services"
)

// ContextKeyMembership holds the caller's *models.MemberDetail for the organization in the path.
const ContextKeyMembership = "organization_member"

// MembershipChecker resolves the caller's membership and role in an organization.
type MembershipChecker interface {
	RequireRole(ctx context.Context, orgID, userID uint64, roleNames ...string) (*models.MemberDetail, error)
}

// RequireOrganizationAccess checks that the caller is a member of the
// organization named by the :id path parameter.
func RequireOrganizationAccess(checker MembershipChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		orgID, err := strconv.ParseUint(c.Param("id"), 10, 64)
		if err != nil {
			apierrors.BadRequest(c, "Invalid organization ID")
			c.Abort()
			return
		}

		userID, exists := GetUserID(c)
		if !exists {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		member, err := checker.RequireRole(c.Request.Context(), orgID, userID)
		if err != nil {
			if errors.Is(err, services.ErrNotOrganizationMember) {
				// 404 rather than 403 so organization ids cannot be enumerated
				apierrors.NotFound(c, "Organization not found")
			} else {
				apierrors.InternalError(c, "")
			}
			c.Abort()
			return
		}

		c.Set(ContextKeyMembership, member)
		c.Next()
	}
}

// RequireOrganizationRole allows the request only when the membership loaded by
// RequireOrganizationAccess holds one of roleNames.
func RequireOrganizationRole(roleNames ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		member, ok := GetMembership(c)
		if !ok {
			apierrors.Forbidden(c, "Organization access required")
			c.Abort()
			return
		}

		for _, name := range roleNames {
			if member.RoleName == name {
				c.Next()
				return
			}
		}

		apierrors.Forbidden(c, "Your role does not allow this action")
		c.Abort()
	}
}

// GetMembership returns the membership stored by RequireOrganizationAccess.
func GetMembership(c *gin.Context) (*models.MemberDetail, bool) {
	value, exists := c.Get(ContextKeyMembership)
	if !exists {
		return nil, false
	}
	member, ok := value.(*models.MemberDetail)
	return member, ok
}
