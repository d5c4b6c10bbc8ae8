package handlers

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apierrors "github.com/yukikurage/membership-api/internal/errors"
	"github.com/yukikurage/membership-api/internal/logger"
	"github.com/yukikurage/membership-api/internal/services"
)

// respondError maps service errors to API errors. Anything unrecognized is
// logged and answered with a bare 500.
func respondError(c *gin.Context, log *zap.Logger, err error) {
	switch {
	case errors.Is(err, services.ErrDuplicateEmail):
		apierrors.DuplicateEmail(c)
	case errors.Is(err, services.ErrInvalidCredentials):
		apierrors.InvalidCredentials(c)
	case errors.Is(err, services.ErrInvalidEmail),
		errors.Is(err, services.ErrPasswordRequired),
		errors.Is(err, services.ErrInvalidOrganizationName),
		errors.Is(err, services.ErrInvalidRoleName):
		apierrors.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrUserNotFound),
		errors.Is(err, services.ErrMemberNotFound),
		errors.Is(err, services.ErrOrganizationNotFound),
		errors.Is(err, services.ErrNotOrganizationMember):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrRoleNotFound):
		apierrors.RoleNotFound(c, err.Error())
	case errors.Is(err, services.ErrRoleOrgMismatch):
		apierrors.RoleOrgMismatch(c, err.Error())
	case errors.Is(err, services.ErrAlreadyMember):
		apierrors.AlreadyMember(c)
	case errors.Is(err, services.ErrDuplicateRoleName):
		apierrors.DuplicateRoleName(c)
	case errors.Is(err, services.ErrInsufficientRole):
		apierrors.Forbidden(c, err.Error())
	default:
		logger.FromContext(c, log).Error("request failed", zap.Error(err))
		apierrors.InternalError(c, "")
	}
}

func parseIDParam(c *gin.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		apierrors.BadRequest(c, "Invalid "+name)
		return 0, false
	}
	return id, true
}
