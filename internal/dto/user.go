package dto

import "github.com/yukikurage/membership-api/internal/models"

// UserDTO represents a user in API responses
type UserDTO struct {
	ID                 uint64            `json:"id"`
	Email              string            `json:"email"`
	Status             models.UserStatus `json:"status"`
	MustRotatePassword bool              `json:"must_rotate_password"`
	CreatedAt          int64             `json:"created_at"`
}

// TokenResponse is returned by the token endpoint
type TokenResponse struct {
	AccessToken           string `json:"access_token"`
	TokenType             string `json:"token_type"`
	ExpiresIn             int64  `json:"expires_in"`
	PasswordResetRequired bool   `json:"password_reset_required"`
}

// SignupResponse is returned after a successful signup
type SignupResponse struct {
	User         UserDTO         `json:"user"`
	Organization OrganizationDTO `json:"organization"`
	Member       MemberDTO       `json:"member"`
}

// ToUserDTO converts a User model to UserDTO
func ToUserDTO(user models.User) UserDTO {
	return UserDTO{
		ID:                 user.ID,
		Email:              user.Email,
		Status:             user.Status,
		MustRotatePassword: user.MustRotatePassword,
		CreatedAt:          user.CreatedAt,
	}
}
