package core

import (
	"crypto/sha256"
	"encoding/hex"
)

// RecipientHashPrefix names the algorithm in a hashed recipient identifier
const RecipientHashPrefix = "sha256$"

// HashRecipient derives the public recipient identifier from an email and the deployment salt.
// An empty email is hashed as is.
func HashRecipient(email, salt string) string {
	sum := sha256.Sum256([]byte(email + salt))
	return RecipientHashPrefix + hex.EncodeToString(sum[:])
}
