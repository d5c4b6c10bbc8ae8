package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/yukikurage/membership-api/internal/dto"
	apierrors "github.com/yukikurage/membership-api/internal/errors"
	"github.com/yukikurage/membership-api/internal/middleware"
	"github.com/yukikurage/membership-api/internal/models"
	"github.com/yukikurage/membership-api/internal/services"
)

// managerRoles may invite, remove and re-role members. Only an Owner may
// touch an Owner membership or hand out the Owner role.
var managerRoles = []string{models.RoleOwner, models.RoleAdmin}

// MembershipHandler serves the member management routes that are addressed by
// member id or carry the organization in the body.
type MembershipHandler struct {
	orgService        *services.OrganizationService
	roleService       *services.RoleService
	membershipService *services.MembershipService
	log               *zap.Logger
}

func NewMembershipHandler(orgService *services.OrganizationService, roleService *services.RoleService, membershipService *services.MembershipService, log *zap.Logger) *MembershipHandler {
	return &MembershipHandler{
		orgService:        orgService,
		roleService:       roleService,
		membershipService: membershipService,
		log:               log,
	}
}

// authorize requires the caller to be an Owner or Admin of orgID. When any of
// roleNames is Owner the caller must be an Owner too.
func (h *MembershipHandler) authorize(c *gin.Context, orgID uint64, roleNames ...string) bool {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return false
	}

	caller, err := h.membershipService.RequireRole(c.Request.Context(), orgID, userID, managerRoles...)
	if err != nil {
		respondError(c, h.log, err)
		return false
	}

	if caller.RoleName != models.RoleOwner {
		for _, name := range roleNames {
			if name == models.RoleOwner {
				apierrors.Forbidden(c, "Only an Owner can manage Owner memberships")
				return false
			}
		}
	}
	return true
}

// roleName resolves roleID for the Owner check in authorize.
func (h *MembershipHandler) roleName(c *gin.Context, roleID uint64) (string, bool) {
	role, err := h.roleService.GetRole(c.Request.Context(), roleID)
	if err != nil {
		respondError(c, h.log, err)
		return "", false
	}
	return role.Name, true
}

// InviteMember adds a member either by email and role name, creating the user
// when needed, or by existing user id and role id.
func (h *MembershipHandler) InviteMember(c *gin.Context) {
	type InviteRequest struct {
		OrgID    uint64 `json:"org_id" form:"org_id" binding:"required"`
		Email    string `json:"email" form:"email"`
		RoleName string `json:"role_name" form:"role_name"`
		UserID   uint64 `json:"user_id" form:"user_id"`
		RoleID   uint64 `json:"role_id" form:"role_id"`
	}

	var req InviteRequest
	if err := c.ShouldBind(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	var invite func(ctx context.Context) (*models.MemberDetail, error)
	var grantedRole string
	switch {
	case req.Email != "" && req.RoleName != "":
		grantedRole = req.RoleName
		invite = func(ctx context.Context) (*models.MemberDetail, error) {
			return h.orgService.InviteExisting(ctx, req.Email, req.OrgID, req.RoleName)
		}
	case req.UserID != 0 && req.RoleID != 0:
		invite = func(ctx context.Context) (*models.MemberDetail, error) {
			member, err := h.membershipService.AddMember(ctx, req.OrgID, req.UserID, req.RoleID)
			if err != nil {
				return nil, err
			}
			return h.membershipService.GetMember(ctx, member.ID)
		}
	default:
		apierrors.BadRequest(c, "Either email and role_name or user_id and role_id are required")
		return
	}

	if grantedRole == "" {
		var ok bool
		if grantedRole, ok = h.roleName(c, req.RoleID); !ok {
			return
		}
	}

	if !h.authorize(c, req.OrgID, grantedRole) {
		return
	}

	member, err := invite(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusCreated, dto.FromMemberDetail(*member))
}

// DeleteMember removes a membership
func (h *MembershipHandler) DeleteMember(c *gin.Context) {
	memberID, ok := parseIDParam(c, "member_id")
	if !ok {
		return
	}

	member, err := h.membershipService.GetMember(c.Request.Context(), memberID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	if !h.authorize(c, member.OrgID, member.RoleName) {
		return
	}

	if err := h.membershipService.RemoveMember(c.Request.Context(), memberID); err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Member deleted successfully",
	})
}

// UpdateMemberRole moves a member to another role of its organization
func (h *MembershipHandler) UpdateMemberRole(c *gin.Context) {
	memberID, ok := parseIDParam(c, "member_id")
	if !ok {
		return
	}

	type UpdateRoleRequest struct {
		RoleID      uint64 `json:"role_id" form:"role_id"`
		NewRoleName string `json:"new_role_name" form:"new_role_name"`
	}

	var req UpdateRoleRequest
	if err := c.ShouldBind(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}
	if req.RoleID == 0 && req.NewRoleName == "" {
		apierrors.BadRequest(c, "role_id or new_role_name is required")
		return
	}

	member, err := h.membershipService.GetMember(c.Request.Context(), memberID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	newRole := req.NewRoleName
	if req.RoleID != 0 {
		if newRole, ok = h.roleName(c, req.RoleID); !ok {
			return
		}
	}

	if !h.authorize(c, member.OrgID, member.RoleName, newRole) {
		return
	}

	var updated *models.MemberDetail
	if req.RoleID != 0 {
		updated, err = h.membershipService.ChangeRole(c.Request.Context(), memberID, req.RoleID)
	} else {
		updated, err = h.membershipService.ChangeRoleByName(c.Request.Context(), memberID, req.NewRoleName)
	}
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromMemberDetail(*updated))
}
