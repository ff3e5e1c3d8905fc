package utils

import (
	"crypto/rand"
	"math/big"
	"strings"
)

var ten = big.NewInt(10)

// RandomDigits returns a string of n uniformly random decimal digits.
func RandomDigits(n int) (string, error) {
	var b strings.Builder
	b.Grow(n)
	for i := 0; i < n; i++ {
		d, err := rand.Int(rand.Reader, ten)
		if err != nil {
			return "", err
		}
		b.WriteByte(byte('0' + d.Int64()))
	}
	return b.String(), nil
}
