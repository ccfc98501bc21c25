package domain

import "time"

// User is an account that can sign in and hold a session cookie. The password
// hash never leaves the process in JSON form.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Roles        []Role    `json:"roles"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// HasAnyRole reports whether the user holds at least one of roles.
func (u *User) HasAnyRole(roles ...Role) bool {
	if u == nil {
		return false
	}
	for _, held := range u.Roles {
		for _, want := range roles {
			if held == want {
				return true
			}
		}
	}
	return false
}
