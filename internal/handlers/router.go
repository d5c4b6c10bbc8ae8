package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yukikurage/membership-api/internal/middleware"
	"github.com/yukikurage/membership-api/internal/models"
)

// Handlers bundles the route handlers registered by RegisterRoutes.
type Handlers struct {
	Auth          *AuthHandler
	Organizations *OrganizationHandler
	Memberships   *MembershipHandler
	Stats         *StatsHandler
}

// RegisterRoutes mounts every route on r. Session middleware must already be
// installed on r.
func RegisterRoutes(r gin.IRouter, h Handlers, requireAuth gin.HandlerFunc, checker middleware.MembershipChecker) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "Membership API is running",
		})
	})

	// Auth routes (public)
	r.POST("/signup", h.Auth.Signup)
	r.POST("/token", h.Auth.Token)
	r.POST("/reset-password", h.Auth.ResetPassword)
	r.POST("/logout", h.Auth.Logout)
	r.GET("/me", requireAuth, h.Auth.GetCurrentUser)

	// Organization routes (protected)
	access := middleware.RequireOrganizationAccess(checker)
	managers := middleware.RequireOrganizationRole(models.RoleOwner, models.RoleAdmin)
	owners := middleware.RequireOrganizationRole(models.RoleOwner)

	orgs := r.Group("/organizations")
	orgs.Use(requireAuth)
	{
		orgs.POST("", h.Organizations.CreateOrganization)
		orgs.GET("", h.Organizations.ListOrganizations)
		orgs.GET("/:id", access, h.Organizations.GetOrganization)
		orgs.DELETE("/:id", access, owners, h.Organizations.DeleteOrganization)
		orgs.GET("/:id/members", access, h.Organizations.ListMembers)
		orgs.GET("/:id/roles", access, h.Organizations.ListRoles)
		orgs.POST("/:id/roles", access, managers, h.Organizations.CreateRole)
	}

	// Member management (authorized per organization inside the handler)
	members := r.Group("")
	members.Use(requireAuth)
	{
		members.POST("/invite-member", h.Memberships.InviteMember)
		members.DELETE("/delete-member/:member_id", h.Memberships.DeleteMember)
		members.PUT("/update-member-role/:member_id", h.Memberships.UpdateMemberRole)
	}

	stats := r.Group("/stats")
	stats.Use(requireAuth)
	{
		stats.GET("/role-wise-users", h.Stats.RoleWiseUsers)
		stats.GET("/org-wise-members", h.Stats.OrgWiseMembers)
		stats.GET("/org-role-wise-users", h.Stats.OrgRoleWiseUsers)
	}
}
