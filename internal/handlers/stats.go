package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apierrors "github.com/yukikurage/membership-api/internal/errors"
	"github.com/yukikurage/membership-api/internal/repository"
	"github.com/yukikurage/membership-api/internal/services"
)

type StatsHandler struct {
	statsService *services.StatsService
	log          *zap.Logger
}

func NewStatsHandler(statsService *services.StatsService, log *zap.Logger) *StatsHandler {
	return &StatsHandler{
		statsService: statsService,
		log:          log,
	}
}

// RoleWiseUsers counts members per role name
func (h *StatsHandler) RoleWiseUsers(c *gin.Context) {
	counts, err := h.statsService.CountByRole(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, counts)
}

// OrgWiseMembers counts members per organization name
func (h *StatsHandler) OrgWiseMembers(c *gin.Context) {
	counts, err := h.statsService.CountByOrg(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, counts)
}

// OrgRoleWiseUsers counts members per organization and role, optionally
// filtered by from_time, to_time (inclusive, epoch seconds) and status.
func (h *StatsHandler) OrgRoleWiseUsers(c *gin.Context) {
	var filter repository.StatsFilter
	var err error

	if filter.FromTime, err = optionalInt64(c, "from_time"); err != nil {
		apierrors.BadRequest(c, "from_time must be an integer")
		return
	}
	if filter.ToTime, err = optionalInt64(c, "to_time"); err != nil {
		apierrors.BadRequest(c, "to_time must be an integer")
		return
	}
	status, err := optionalInt64(c, "status")
	if err != nil {
		apierrors.BadRequest(c, "status must be an integer")
		return
	}
	if status != nil {
		s := int(*status)
		filter.Status = &s
	}

	counts, err := h.statsService.CountByOrgAndRole(c.Request.Context(), filter)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, counts)
}

func optionalInt64(c *gin.Context, key string) (*int64, error) {
	raw, ok := c.GetQuery(key)
	if !ok || raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, err
	}
	return &v, nil
}
