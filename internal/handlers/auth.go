package handlers

import (
	"net/http"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/yukikurage/membership-api/internal/constants"
	"github.com/yukikurage/membership-api/internal/dto"
	apierrors "github.com/yukikurage/membership-api/internal/errors"
	"github.com/yukikurage/membership-api/internal/middleware"
	"github.com/yukikurage/membership-api/internal/security"
	"github.com/yukikurage/membership-api/internal/services"
)

// AuthHandler coordinates authentication-related HTTP handlers.
type AuthHandler struct {
	authService *services.AuthService
	tokens      security.TokenIssuer
	tokenTTL    time.Duration
	log         *zap.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService, tokens security.TokenIssuer, tokenTTL time.Duration, log *zap.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		tokens:      tokens,
		tokenTTL:    tokenTTL,
		log:         log,
	}
}

// Signup registers a user together with their first organization.
func (h *AuthHandler) Signup(c *gin.Context) {
	type SignupRequest struct {
		Email            string `json:"email" binding:"required,email"`
		Password         string `json:"password" binding:"required"`
		OrganizationName string `json:"organization_name"`
		Personal         bool   `json:"personal"`
	}

	var req SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	result, err := h.authService.Signup(c.Request.Context(), services.SignupInput{
		Email:            req.Email,
		Password:         req.Password,
		OrganizationName: req.OrganizationName,
		Personal:         req.Personal,
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusCreated, dto.SignupResponse{
		User:         dto.ToUserDTO(*result.User),
		Organization: dto.ToOrganizationDTO(*result.Organization),
		Member:       dto.ToMemberDTO(*result.Member),
	})
}

// Token exchanges form credentials for a bearer token and also starts a session.
func (h *AuthHandler) Token(c *gin.Context) {
	type TokenRequest struct {
		Username string `form:"username" binding:"required"`
		Password string `form:"password" binding:"required"`
	}

	var req TokenRequest
	if err := c.ShouldBind(&req); err != nil {
		apierrors.BadRequest(c, "username and password are required")
		return
	}

	user, err := h.authService.Authenticate(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	token, _, err := h.tokens.Issue(user.ID, user.Email, h.tokenTTL)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	session := sessions.Default(c)
	session.Set(constants.ContextKeyUserID, user.ID)
	if err := session.Save(); err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, dto.TokenResponse{
		AccessToken:           token,
		TokenType:             constants.TokenTypeBearer,
		ExpiresIn:             int64(h.tokenTTL / time.Second),
		PasswordResetRequired: user.MustRotatePassword,
	})
}

// ResetPassword sets a new password for the account with the given email.
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	type ResetPasswordRequest struct {
		Email       string `json:"email" binding:"required"`
		NewPassword string `json:"new_password" binding:"required"`
	}

	var req ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	if err := h.authService.ResetPassword(c.Request.Context(), req.Email, req.NewPassword); err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Password reset successfully",
	})
}

// Logout removes the authentication session.
func (h *AuthHandler) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	session.Options(sessions.Options{Path: "/", MaxAge: -1})
	if err := session.Save(); err != nil {
		apierrors.InternalError(c, "Failed to logout")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Logged out successfully",
	})
}

// GetCurrentUser returns the authenticated user.
func (h *AuthHandler) GetCurrentUser(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	user, err := h.authService.GetUser(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToUserDTO(*user))
}
