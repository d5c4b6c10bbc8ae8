package constants

// Session and context keys
const (
	SessionCookieName = "membership_session"
	ContextKeyUserID  = "user_id"
	ContextKeyRequest = "request_id"
)

// TemporaryPasswordBytes is the entropy used for invite-created credentials.
const TemporaryPasswordBytes = 12

// Pagination
const (
	MinPageSize     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Token response
const (
	TokenTypeBearer = "bearer"
)
