// Package crypto provides cryptographic utilities for password hashing and verification.
package crypto

import (
	"golang.org/x/crypto/bcrypt"
)

// HashPasswordAsBcrypt generates a salted bcrypt hash of the given password.
func HashPasswordAsBcrypt(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(hash), err
}

// CheckPasswordHash verifies if the given password matches the bcrypt hash.
// Malformed or empty hashes never match.
func CheckPasswordHash(hash, password string) bool {
	if hash == "" {
		return false
	}
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}
