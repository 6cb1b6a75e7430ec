// Copyright (c) 2026 Rolegate. All rights reserved.

// Package sec provides cryptographic primitives and token management.
//
// # Architecture
//
// This package isolates security-sensitive code (random token generation,
// session token signing) from the domain logic. It acts as an infrastructure
// service injected into the application layer.
package sec

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// tokenAlphabet is the alphanumeric alphabet used for CSRF state tokens.
const tokenAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// GenerateSecureToken returns a cryptographically random string of the given
// length over an alphanumeric alphabet.
//
// # Usage
//
// Single-use tokens that travel in URLs: CSRF state, correlation handles.
func GenerateSecureToken(length int) (string, error) {
	if length <= 0 {
		return "", fmt.Errorf("sec: token length must be positive, got %d", length)
	}

	alphabetSize := big.NewInt(int64(len(tokenAlphabet)))
	token := make([]byte, length)
	for i := range token {
		index, err := rand.Int(rand.Reader, alphabetSize)
		if err != nil {
			return "", fmt.Errorf("sec: failed to read randomness: %w", err)
		}
		token[i] = tokenAlphabet[index.Int64()]
	}

	return string(token), nil
}
