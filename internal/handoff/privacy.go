package handoff

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// NewSalt returns a random hex salt for IP hashing. A fresh salt per process
// means hashes cannot be joined across restarts.
func NewSalt() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// HashIP returns a short salted hash of ip. The raw address is never stored.
func HashIP(ip, salt string) string {
	sum := sha256.Sum256([]byte(ip + salt))
	return hex.EncodeToString(sum[:])[:16]
}

type clientKey struct{}

// WithClient attaches the hashed client address to ctx so handoffs recorded
// further down can be counted per visitor.
func WithClient(ctx context.Context, hashedIP string) context.Context {
	return context.WithValue(ctx, clientKey{}, hashedIP)
}

func clientFrom(ctx context.Context) string {
	v, _ := ctx.Value(clientKey{}).(string)
	return v
}
