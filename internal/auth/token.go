// Package auth guards the HTTP API: bearer tokens checked against a bcrypt
// hash from the config, and per-client rate limiting.
package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/crypto/bcrypt"
)

const (
	// TokenPrefix marks botlint API tokens
	TokenPrefix = "blt_" // #nosec G101 -- prefix pattern, not a credential

	// TokenPrefixLength is the number of secret characters shown when masking
	TokenPrefixLength = 8

	// TokenLength is the random part of a token in bytes (hex encoded)
	TokenLength = 32
)

// bcryptCost is the cost factor for token hashes
var bcryptCost = bcrypt.DefaultCost

// GenerateToken generates a new API token.
// Format: blt_<64 hex chars>
func GenerateToken() (string, error) {
	bytes := make([]byte, TokenLength)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	return TokenPrefix + hex.EncodeToString(bytes), nil
}

// HashToken creates a bcrypt hash of a token's secret part
func HashToken(token string) (string, error) {
	secret := strings.TrimPrefix(token, TokenPrefix)
	if secret == "" {
		return "", fmt.Errorf("hash token: empty token")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcryptCost)
	if err != nil {
		return "", fmt.Errorf("hash token: %w", err)
	}
	return string(hash), nil
}

// VerifyToken checks if a token matches a hash
func VerifyToken(token, hash string) bool {
	secret := strings.TrimPrefix(token, TokenPrefix)
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(secret)) == nil
}

// IsValidTokenFormat checks if a token has the generated shape
func IsValidTokenFormat(token string) bool {
	if !strings.HasPrefix(token, TokenPrefix) {
		return false
	}
	secret := strings.TrimPrefix(token, TokenPrefix)
	if len(secret) != TokenLength*2 {
		return false
	}
	_, err := hex.DecodeString(secret)
	return err == nil
}

// MaskToken returns a masked version of a token for display
// Example: blt_a1b2c3d4****...****
func MaskToken(token string) string {
	if len(token) < len(TokenPrefix)+TokenPrefixLength {
		return "****"
	}
	return token[:len(TokenPrefix)+TokenPrefixLength] + "****...****"
}

// Verifier checks tokens against one configured hash. Tokens that passed
// bcrypt once are remembered by digest so repeat requests skip the hash.
type Verifier struct {
	hash     string
	mu       sync.RWMutex
	accepted map[[sha256.Size]byte]struct{}
}

// NewVerifier returns a Verifier for hash. An empty hash disables auth.
func NewVerifier(hash string) *Verifier {
	return &Verifier{
		hash:     strings.TrimSpace(hash),
		accepted: make(map[[sha256.Size]byte]struct{}),
	}
}

// Enabled reports whether a token is required.
func (v *Verifier) Enabled() bool {
	return v != nil && v.hash != ""
}

// Verify reports whether token is accepted. Always true when disabled.
func (v *Verifier) Verify(token string) bool {
	if !v.Enabled() {
		return true
	}
	if token == "" {
		return false
	}

	digest := sha256.Sum256([]byte(token))
	v.mu.RLock()
	_, ok := v.accepted[digest]
	v.mu.RUnlock()
	if ok {
		return true
	}

	if !VerifyToken(token, v.hash) {
		return false
	}
	v.mu.Lock()
	v.accepted[digest] = struct{}{}
	v.mu.Unlock()
	return true
}
