package invitation

import (
	"crypto/rand"
	"math/big"
	"strings"
)

const (
	CodeLength   = 6
	codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// Generator returns a new candidate invitation code
type Generator func() (string, error)

// RandomCode draws CodeLength symbols uniformly from A-Z and 0-9
func RandomCode() (string, error) {
	var code strings.Builder
	max := big.NewInt(int64(len(codeAlphabet)))
	for i := 0; i < CodeLength; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		code.WriteByte(codeAlphabet[n.Int64()])
	}
	return code.String(), nil
}

// ValidCode reports whether code has the shape of an invitation code, ignoring case
func ValidCode(code string) bool {
	code = strings.ToUpper(strings.TrimSpace(code))
	if len(code) != CodeLength {
		return false
	}
	for _, r := range code {
		if !strings.ContainsRune(codeAlphabet, r) {
			return false
		}
	}
	return true
}
