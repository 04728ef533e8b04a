package core

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"
)

// TokenBytes is the amount of randomness in an assertion token (128 bits)
const TokenBytes = 16

// TokenGenerator produces URL-safe capability tokens
type TokenGenerator struct {
	rand io.Reader
}

// NewTokenGenerator returns a generator reading from crypto/rand
func NewTokenGenerator() *TokenGenerator {
	return &TokenGenerator{rand: rand.Reader}
}

// NewTokenGeneratorFrom returns a generator reading from r
func NewTokenGeneratorFrom(r io.Reader) *TokenGenerator {
	return &TokenGenerator{rand: r}
}

// Generate returns a fresh unpadded base64url token
func (g *TokenGenerator) Generate() (string, error) {
	b := make([]byte, TokenBytes)
	if _, err := io.ReadFull(g.rand, b); err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
