// Package joincode generates and validates the short codes households are
// shared by.
package joincode

import (
	crand "crypto/rand"
	"fmt"
	"math/big"
	"strings"
)

const (
	Length   = 6
	alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

var alphabetSize = big.NewInt(int64(len(alphabet)))

// Generate returns a code of Length characters drawn uniformly from A-Z0-9.
// It does not check for collisions with existing households.
func Generate() (string, error) {
	var b strings.Builder
	b.Grow(Length)
	for i := 0; i < Length; i++ {
		n, err := crand.Int(crand.Reader, alphabetSize)
		if err != nil {
			return "", fmt.Errorf("read random join code: %w", err)
		}
		b.WriteByte(alphabet[n.Int64()])
	}
	return b.String(), nil
}

// Normalize trims whitespace and upper-cases user input.
func Normalize(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// Valid reports whether s is a well-formed join code.
func Valid(s string) bool {
	if len(s) != Length {
		return false
	}
	for i := 0; i < len(s); i++ {
		if strings.IndexByte(alphabet, s[i]) < 0 {
			return false
		}
	}
	return true
}
