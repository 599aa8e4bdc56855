// Package random generates random strings for secrets.
package random

import (
	"crypto/rand"
	"math/big"
)

const alphanumeric = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

// Seq generates a random alphanumeric string of length n.
func Seq(n int) string {
	max := big.NewInt(int64(len(alphanumeric)))
	b := make([]byte, n)
	for i := range b {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			panic("crypto/rand failed: " + err.Error())
		}
		b[i] = alphanumeric[idx.Int64()]
	}
	return string(b)
}
