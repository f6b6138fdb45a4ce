package models

import "github.com/golang-jwt/jwt/v5"

// UserClaims represents the JWT claims structure issued by the auth
// provider. The same token the shell presents to the gateway is forwarded
// to the draft backend.
type UserClaims struct {
	jwt.RegisteredClaims        // Standard JWT claims (sub, iss, aud, exp, iat, etc.)
	Email                string `json:"email"`
	Role                 string `json:"role"` // "authenticated" or "anon"
	SessionID            string `json:"session_id"`
	IsAnonymous          bool   `json:"is_anonymous"`

	UserMetadata map[string]interface{} `json:"user_metadata"`
}

// GetUserID returns the user ID from the JWT subject claim.
// This is the primary identifier for the authenticated user.
func (c *UserClaims) GetUserID() string {
	return c.Subject
}

// DisplayName returns the user's display name from metadata, falling back
// to the email address.
func (c *UserClaims) DisplayName() string {
	if name, ok := c.UserMetadata["full_name"].(string); ok && name != "" {
		return name
	}
	return c.Email
}
