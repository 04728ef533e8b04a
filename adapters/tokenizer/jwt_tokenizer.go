package tokenizer

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/matehackers/badges-engine/core"
	"github.com/matehackers/badges-engine/ports"
)

const AudienceAdmin = "badges:admin"

// DefaultAdminTTL is how long an issued admin token stays valid
const DefaultAdminTTL = time.Hour

// JWTTokenizer implements the Tokenizer interface using HMAC-signed JWTs
type JWTTokenizer struct {
	secret []byte
	ttl    time.Duration
}

// NewJWTTokenizer creates a new JWT tokenizer
func NewJWTTokenizer(secret []byte, ttl time.Duration) ports.Tokenizer {
	if ttl <= 0 {
		ttl = DefaultAdminTTL
	}
	return &JWTTokenizer{secret: secret, ttl: ttl}
}

// IssueAdminToken signs a token for subject
func (j *JWTTokenizer) IssueAdminToken(subject string) (string, error) {
	now := time.Now()
	claims := AdminClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ID:        uuid.New().String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(j.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Audience:  jwt.ClaimStrings{AudienceAdmin},
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signedToken, err := token.SignedString(j.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return signedToken, nil
}

// VerifyAdminToken checks signature, expiry and audience and returns the subject
func (j *JWTTokenizer) VerifyAdminToken(tokenStr string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &AdminClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return j.secret, nil
	}, jwt.WithAudience(AudienceAdmin))

	if err != nil {
		return "", fmt.Errorf("failed to parse token: %w", core.ErrInvalidToken)
	}

	if !token.Valid {
		return "", core.ErrInvalidToken
	}

	claims, ok := token.Claims.(*AdminClaims)
	if !ok {
		return "", fmt.Errorf("invalid claims type")
	}

	return claims.Subject, nil
}
