package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/yukikurage/membership-api/internal/dto"
	apierrors "github.com/yukikurage/membership-api/internal/errors"
	"github.com/yukikurage/membership-api/internal/middleware"
	"github.com/yukikurage/membership-api/internal/services"
	"github.com/yukikurage/membership-api/internal/utils"
)

// OrganizationHandler serves organization, role and member listing routes.
type OrganizationHandler struct {
	orgService        *services.OrganizationService
	roleService       *services.RoleService
	membershipService *services.MembershipService
	log               *zap.Logger
}

func NewOrganizationHandler(orgService *services.OrganizationService, roleService *services.RoleService, membershipService *services.MembershipService, log *zap.Logger) *OrganizationHandler {
	return &OrganizationHandler{
		orgService:        orgService,
		roleService:       roleService,
		membershipService: membershipService,
		log:               log,
	}
}

// CreateOrganization creates an organization owned by the caller
func (h *OrganizationHandler) CreateOrganization(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	type CreateOrgRequest struct {
		Name     string `json:"name" binding:"required"`
		Personal bool   `json:"personal"`
	}

	var req CreateOrgRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	org, member, err := h.orgService.CreateWithOwner(c.Request.Context(), req.Name, req.Personal, userID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"organization": dto.ToOrganizationDTO(*org),
		"member":       dto.ToMemberDTO(*member),
	})
}

// ListOrganizations returns the caller's memberships
func (h *OrganizationHandler) ListOrganizations(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	memberships, err := h.orgService.ListForUser(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"organizations": dto.FromMemberDetails(memberships),
	})
}

// GetOrganization returns organization details with every member
func (h *OrganizationHandler) GetOrganization(c *gin.Context) {
	membership, ok := middleware.GetMembership(c)
	if !ok {
		apierrors.Forbidden(c, "Organization access required")
		return
	}

	org, err := h.orgService.GetOrganization(c.Request.Context(), membership.OrgID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	members, _, err := h.membershipService.ListByOrg(c.Request.Context(), org.ID, nil)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToOrganizationDetailDTO(*org, members, membership.RoleName))
}

// DeleteOrganization removes the organization with its roles and members
func (h *OrganizationHandler) DeleteOrganization(c *gin.Context) {
	membership, ok := middleware.GetMembership(c)
	if !ok {
		apierrors.Forbidden(c, "Organization access required")
		return
	}

	if err := h.orgService.DeleteOrganization(c.Request.Context(), membership.OrgID); err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Organization deleted successfully",
	})
}

// ListMembers returns one page of the organization's members
func (h *OrganizationHandler) ListMembers(c *gin.Context) {
	membership, ok := middleware.GetMembership(c)
	if !ok {
		apierrors.Forbidden(c, "Organization access required")
		return
	}

	page := utils.GetPaginationParams(c)
	members, total, err := h.membershipService.ListByOrg(c.Request.Context(), membership.OrgID, &page)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, dto.MemberListResponse{
		Members:    dto.FromMemberDetails(members),
		Pagination: page.Response(total),
	})
}

// ListRoles returns the organization's roles
func (h *OrganizationHandler) ListRoles(c *gin.Context) {
	membership, ok := middleware.GetMembership(c)
	if !ok {
		apierrors.Forbidden(c, "Organization access required")
		return
	}

	roles, err := h.roleService.ListByOrg(c.Request.Context(), membership.OrgID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"roles": dto.ToRoleDTOs(roles),
	})
}

// CreateRole adds a custom role to the organization
func (h *OrganizationHandler) CreateRole(c *gin.Context) {
	membership, ok := middleware.GetMembership(c)
	if !ok {
		apierrors.Forbidden(c, "Organization access required")
		return
	}

	type CreateRoleRequest struct {
		Name        string `json:"name" binding:"required"`
		Description string `json:"description"`
	}

	var req CreateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	role, err := h.roleService.Create(c.Request.Context(), membership.OrgID, req.Name, req.Description)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToRoleDTO(*role))
}
