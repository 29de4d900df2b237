package random

import (
	"crypto/rand"
	"math/big"

	"github.com/google/uuid"
)

// MatchIDAlphabet is the character set used for generated match IDs
const MatchIDAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// Random provides identifier generation that can be mocked for testing
type Random interface {
	// String generates a random string of the given length from the given alphabet
	String(length int, alphabet string) string

	// UUID returns a new random UUID string
	UUID() string
}

// CryptoRandom implements Random using crypto/rand and google/uuid
type CryptoRandom struct{}

// New creates a new CryptoRandom
func New() *CryptoRandom {
	return &CryptoRandom{}
}

// String generates a random string of the given length from the given alphabet
func (r *CryptoRandom) String(length int, alphabet string) string {
	if length <= 0 || len(alphabet) == 0 {
		return ""
	}
	max := big.NewInt(int64(len(alphabet)))
	result := make([]byte, length)
	for i := range result {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			// crypto/rand does not fail on supported platforms
			n = big.NewInt(0)
		}
		result[i] = alphabet[n.Int64()]
	}
	return string(result)
}

// UUID returns a new version 4 UUID
func (r *CryptoRandom) UUID() string {
	return uuid.NewString()
}
