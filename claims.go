package auth

import (
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	claimUserID = "id"
	claimName   = "name"
	claimEmail  = "email"
	claimRole   = "role"
)

// AccessClaims is the typed view of an access token
type AccessClaims struct {
	jwt.RegisteredClaims
	UID   string `json:"id,omitempty"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
	// Role holds the comma separated authorities, ie ROLE_ADMIN
	Role string `json:"role,omitempty"`
}

// Login returns the subject, which is the user's login
func (c *AccessClaims) Login() string {
	return c.RegisteredClaims.Subject
}

// UserID returns the user ID
func (c *AccessClaims) UserID() string {
	if c.UID != "" {
		return c.UID
	}
	return c.Login()
}

// Authorities splits the role claim
func (c *AccessClaims) Authorities() []string {
	if c.Role == "" {
		return nil
	}
	out := []string{}
	for _, a := range strings.Split(c.Role, ",") {
		if a = strings.TrimSpace(a); a != "" {
			out = append(out, a)
		}
	}
	return out
}

// HasRole checks the authorities for role, with or without the ROLE_ prefix
func (c *AccessClaims) HasRole(role Role) bool {
	for _, a := range c.Authorities() {
		if a == role.Authority() || a == string(role) {
			return true
		}
	}
	return false
}

// Expires returns the expiration time
func (c *AccessClaims) Expires() time.Time {
	if c.RegisteredClaims.ExpiresAt != nil {
		return c.RegisteredClaims.ExpiresAt.Time
	}
	return time.Time{}
}

// IssuedAt returns the issued at time
func (c *AccessClaims) IssuedAt() time.Time {
	if c.RegisteredClaims.IssuedAt != nil {
		return c.RegisteredClaims.IssuedAt.Time
	}
	return time.Time{}
}

// userClaims builds the extra claims of an access token for user
func userClaims(user *User) map[string]any {
	return map[string]any{
		claimUserID: user.ID.String(),
		claimName:   user.Person.Name,
		claimEmail:  user.Email,
		claimRole:   strings.Join(user.Authorities(), ","),
	}
}
