package explainengine

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// callbackBcryptCost mirrors the cost the rest of this codebase's token
// hashing uses; the callback channel is low-traffic so bcrypt's overhead is
// fine, unlike a per-request auth path.
const callbackBcryptCost = 12

// CallbackAuthenticator verifies the shared API key an external explanation
// engine presents when it dials into this process's WebSocket callback
// endpoint (§6, "a single shared channel to the explanation engine"),
// following the bcrypt-hashed-secret idiom of auth/tokenhash.go.
type CallbackAuthenticator struct {
	cost int
}

// NewCallbackAuthenticator builds an authenticator at the default cost.
func NewCallbackAuthenticator() *CallbackAuthenticator {
	return &CallbackAuthenticator{cost: callbackBcryptCost}
}

// GenerateAPIKey produces a fresh random key to hand the external engine
// operator out of band, plus its bcrypt hash for storage.
func (a *CallbackAuthenticator) GenerateAPIKey() (plain string, hash string, err error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", "", fmt.Errorf("explainengine: generate api key: %w", err)
	}
	plain = base64.RawURLEncoding.EncodeToString(raw)
	hash, err = a.HashAPIKey(plain)
	if err != nil {
		return "", "", err
	}
	return plain, hash, nil
}

// HashAPIKey bcrypt-hashes a plaintext key for storage.
func (a *CallbackAuthenticator) HashAPIKey(plain string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(plain), a.cost)
	if err != nil {
		return "", fmt.Errorf("explainengine: hash api key: %w", err)
	}
	return string(h), nil
}

// VerifyAPIKey reports whether plain matches hash.
func (a *CallbackAuthenticator) VerifyAPIKey(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}

// FastFingerprint returns the first 8 bytes of the key's SHA-256 digest as
// hex (16 characters), used only to log
// which key authenticated without ever logging the key itself.
func FastFingerprint(plain string) string {
	sum := sha256.Sum256([]byte(plain))
	return hex.EncodeToString(sum[:8])
}
