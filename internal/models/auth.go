package models

import "github.com/golang-jwt/jwt/v5"

// Claims are the bearer-token claims issued by the external auth service.
// The API only decodes them; it never issues or refreshes tokens.
type Claims struct {
	UserID      string `json:"user_id"`
	WorkspaceID string `json:"workspace_id"`
	Email       string `json:"email"`
	jwt.RegisteredClaims
}
