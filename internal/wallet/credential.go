package wallet

import (
	"crypto/rand"

	"golang.org/x/crypto/blake2b"
)

const (
	credentialLength   = 42
	credentialAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"
	// largest multiple of len(credentialAlphabet) below 256, keeps the draw unbiased
	credentialCutoff = 252
)

// NewCredential draws a random bearer token of lowercase letters and digits.
func NewCredential() (string, error) {
	out := make([]byte, 0, credentialLength)
	buf := make([]byte, credentialLength*2)
	for len(out) < credentialLength {
		if _, err := rand.Read(buf); err != nil {
			return "", err
		}
		for _, b := range buf {
			if b >= credentialCutoff {
				continue
			}
			out = append(out, credentialAlphabet[int(b)%len(credentialAlphabet)])
			if len(out) == credentialLength {
				break
			}
		}
	}
	return string(out), nil
}

// HashCredential returns the digest stored in place of the token.
func HashCredential(credential string) []byte {
	sum := blake2b.Sum256([]byte(credential))
	return sum[:]
}
