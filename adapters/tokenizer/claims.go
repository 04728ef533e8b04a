package tokenizer

import "github.com/golang-jwt/jwt/v5"

// AdminClaims are the claims of a bearer token allowed to manage assertions
type AdminClaims struct {
	jwt.RegisteredClaims
}
