package auth

import (
	"slices"

	"github.com/golang-jwt/jwt/v5"
)

// ScopeCheckout grants access to the checkout decisioning API.
const ScopeCheckout = "checkout"

// Claims are the JWT claims carried by API clients. Subject identifies the
// client; MerchantID is informational and only logged.
type Claims struct {
	jwt.RegisteredClaims
	MerchantID string   `json:"merchant_id,omitempty"`
	Scopes     []string `json:"scopes"`
}

// HasScope checks if the claims include the specified scope.
func (c Claims) HasScope(scope string) bool {
	return slices.Contains(c.Scopes, scope)
}
