package errors

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Error codes
const (
	// Authentication errors
	ErrCodeUnauthorized       = "UNAUTHORIZED"
	ErrCodeInvalidCredentials = "INVALID_CREDENTIALS"

	// Authorization errors
	ErrCodeForbidden               = "FORBIDDEN"
	ErrCodeInsufficientPermissions = "INSUFFICIENT_PERMISSIONS"
	ErrCodePasswordRotation        = "PASSWORD_ROTATION_REQUIRED"
	ErrCodeInactiveUser            = "INACTIVE_USER"

	// Validation errors
	ErrCodeInvalidInput = "INVALID_INPUT"

	// Resource errors
	ErrCodeNotFound          = "NOT_FOUND"
	ErrCodeRoleNotFound      = "ROLE_NOT_FOUND"
	ErrCodeRoleOrgMismatch   = "ROLE_ORG_MISMATCH"
	ErrCodeDuplicateEmail    = "DUPLICATE_EMAIL"
	ErrCodeDuplicateRoleName = "DUPLICATE_ROLE_NAME"
	ErrCodeAlreadyMember     = "ALREADY_MEMBER"

	// Service errors
	ErrCodeInternalError = "INTERNAL_ERROR"
)

// APIError represents a standardized API error response
type APIError struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	return e.Message
}

// NewAPIError creates a new APIError
func NewAPIError(code, message string) *APIError {
	return &APIError{
		Code:    code,
		Message: message,
	}
}

// NewAPIErrorWithDetails creates a new APIError with details
func NewAPIErrorWithDetails(code, message string, details interface{}) *APIError {
	return &APIError{
		Code:    code,
		Message: message,
		Details: details,
	}
}

// RespondWithError sends an error response
func RespondWithError(c *gin.Context, statusCode int, err *APIError) {
	c.JSON(statusCode, err)
}

// respond writes an APIError, using fallback when message is empty
func respond(c *gin.Context, status int, code, message, fallback string) {
	if message == "" {
		message = fallback
	}
	RespondWithError(c, status, NewAPIError(code, message))
}

// Unauthorized sends a 401 response
func Unauthorized(c *gin.Context, message string) {
	respond(c, http.StatusUnauthorized, ErrCodeUnauthorized, message, "Authentication required")
}

// Forbidden sends a 403 response
func Forbidden(c *gin.Context, message string) {
	respond(c, http.StatusForbidden, ErrCodeInsufficientPermissions, message, "Access denied")
}

// PasswordRotationRequired sends a 403 response for a user still holding a temporary password
func PasswordRotationRequired(c *gin.Context) {
	respond(c, http.StatusForbidden, ErrCodePasswordRotation, "", "Password must be reset before continuing")
}

// InactiveUser sends a 403 response
func InactiveUser(c *gin.Context) {
	respond(c, http.StatusForbidden, ErrCodeInactiveUser, "", "Inactive user")
}

// NotFound sends a 404 response
func NotFound(c *gin.Context, message string) {
	respond(c, http.StatusNotFound, ErrCodeNotFound, message, "Resource not found")
}

// RoleNotFound sends a 404 response for a role that does not exist
func RoleNotFound(c *gin.Context, message string) {
	respond(c, http.StatusNotFound, ErrCodeRoleNotFound, message, "Role not found")
}

// RoleOrgMismatch sends a 404 response for a role that belongs to another organization
func RoleOrgMismatch(c *gin.Context, message string) {
	respond(c, http.StatusNotFound, ErrCodeRoleOrgMismatch, message, "Role not found in organization")
}

// BadRequest sends a 400 response
func BadRequest(c *gin.Context, message string) {
	respond(c, http.StatusBadRequest, ErrCodeInvalidInput, message, "Invalid request")
}

// BadRequestWithDetails sends a 400 response with details
func BadRequestWithDetails(c *gin.Context, message string, details interface{}) {
	RespondWithError(c, http.StatusBadRequest, NewAPIErrorWithDetails(ErrCodeInvalidInput, message, details))
}

// InvalidCredentials sends a 400 response; unknown email and wrong password look the same
func InvalidCredentials(c *gin.Context) {
	respond(c, http.StatusBadRequest, ErrCodeInvalidCredentials, "", "Incorrect email or password")
}

// DuplicateEmail sends a 400 response
func DuplicateEmail(c *gin.Context) {
	respond(c, http.StatusBadRequest, ErrCodeDuplicateEmail, "", "Email already registered")
}

// DuplicateRoleName sends a 409 response
func DuplicateRoleName(c *gin.Context) {
	respond(c, http.StatusConflict, ErrCodeDuplicateRoleName, "", "Role name already exists in organization")
}

// AlreadyMember sends a 409 response
func AlreadyMember(c *gin.Context) {
	respond(c, http.StatusConflict, ErrCodeAlreadyMember, "", "User is already a member of this organization")
}

// InternalError sends a 500 response
func InternalError(c *gin.Context, message string) {
	respond(c, http.StatusInternalServerError, ErrCodeInternalError, message, "Internal server error")
}
