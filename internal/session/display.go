package session

import (
	"github.com/golang-jwt/jwt/v5"
)

// DisplayClaims are the fields a UI may show about the logged-in user.
type DisplayClaims struct {
	Name string `json:"name"`
	Role string `json:"role"`
}

// Display decodes a token payload WITHOUT verifying its signature or
// expiry, exactly enough to put a name and role on screen without a round
// trip. Its output must never feed an authorization decision; access is
// always re-checked through Manager.Validate on the server side.
func Display(tokenString string) DisplayClaims {
	claims := &Claims{}
	_, _, err := jwt.NewParser().ParseUnverified(tokenString, claims)
	if err != nil {
		return DisplayClaims{}
	}
	return DisplayClaims{Name: claims.Name, Role: claims.Role}
}
