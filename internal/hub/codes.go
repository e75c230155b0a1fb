package hub

import (
	"crypto/rand"
	"math/big"
	"strings"

	"github.com/DoyleJ11/impostor/internal/persist"
)

const (
	CodeLength  = 6
	codeCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

func GenerateCode() (string, error) {
	code := make([]byte, CodeLength)
	for i := range code {
		num, err := rand.Int(rand.Reader, big.NewInt(int64(len(codeCharset))))
		if err != nil {
			return "", err
		}
		code[i] = codeCharset[num.Int64()]
	}
	return string(code), nil
}

// ValidCode accepts generated codes and the single-device session.
func ValidCode(code string) bool {
	if code == persist.DefaultSession {
		return true
	}
	if len(code) != CodeLength {
		return false
	}
	for _, c := range code {
		if !strings.ContainsRune(codeCharset, c) {
			return false
		}
	}
	return true
}
