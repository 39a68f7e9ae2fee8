package models

import "github.com/golang-jwt/jwt/v5"

// JWTClaims is the payload of a Supabase access token.
type JWTClaims struct {
	Email       string                 `json:"email"`
	Role        UserRole               `json:"role"`
	AppMetadata map[string]interface{} `json:"app_metadata,omitempty"`
	SessionID   string                 `json:"session_id,omitempty"`
	jwt.RegisteredClaims
}

// UserID returns the Supabase user id carried in the subject claim.
func (c *JWTClaims) UserID() string {
	if c == nil {
		return ""
	}
	return c.Subject
}

// IsService reports whether the token belongs to a backend service key.
func (c *JWTClaims) IsService() bool {
	return c != nil && c.Role == RoleServiceRole
}
