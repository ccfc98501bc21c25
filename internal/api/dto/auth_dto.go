package dto

import (
	"net/mail"
	"strings"

	"github.com/ticketdesk/cookie-auth/internal/domain"
)

// SignUpRequest payload for new accounts.
type SignUpRequest struct {
	Username string   `json:"username"`
	Email    string   `json:"email"`
	Password string   `json:"password"`
	Roles    []string `json:"role"`
}

// Normalize trims surrounding whitespace from identifiers.
func (r *SignUpRequest) Normalize() {
	r.Username = strings.TrimSpace(r.Username)
	r.Email = strings.TrimSpace(r.Email)
}

// Validate returns per-field problems; an empty map means the request is acceptable.
func (r SignUpRequest) Validate() map[string]any {
	problems := map[string]any{}
	if n := len(r.Username); n < 3 || n > 20 {
		problems["username"] = "must be between 3 and 20 characters"
	}
	if _, err := mail.ParseAddress(r.Email); err != nil || len(r.Email) > 50 {
		problems["email"] = "must be a valid address of at most 50 characters"
	}
	if n := len(r.Password); n < 6 || n > 40 {
		problems["password"] = "must be between 6 and 40 characters"
	}
	return problems
}

// SignInRequest payload for login.
type SignInRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// UserInfoResponse is the public view of an account.
type UserInfoResponse struct {
	ID       string   `json:"id"`
	Username string   `json:"username"`
	Email    string   `json:"email"`
	Roles    []string `json:"roles"`
}

// NewUserInfo maps a domain user, dropping the password hash.
func NewUserInfo(user *domain.User) UserInfoResponse {
	roles := make([]string, 0, len(user.Roles))
	for _, role := range user.Roles {
		roles = append(roles, string(role))
	}
	return UserInfoResponse{ID: user.ID, Username: user.Username, Email: user.Email, Roles: roles}
}

// MessageResponse carries a human readable message.
type MessageResponse struct {
	Message string `json:"message"`
}
