// Package auth implements the client side of the VIIPER API authentication:
// a PBKDF2-derived key, an HMAC nonce handshake and a chacha20poly1305
// framed connection.
package auth

import (
	"crypto/pbkdf2"
	"crypto/sha256"
	"errors"
)

const (
	PBKDF2Iterations = 100000
	PBKDF2Salt       = "VIIPER-Key-v1"
)

// DeriveKey uses PBKDF2 to stretch any password to 32 bytes
func DeriveKey(password string) ([]byte, error) {
	if password == "" {
		return nil, errors.New("password cannot be empty")
	}
	return pbkdf2.Key(
		sha256.New,
		password,
		[]byte(PBKDF2Salt),
		PBKDF2Iterations,
		32,
	)
}

// DeriveSessionKey creates unique session key from key and nonces
func DeriveSessionKey(key, serverNonce, clientNonce []byte) []byte {
	h := sha256.New()
	h.Write(key)
	h.Write(serverNonce)
	h.Write(clientNonce)
	h.Write([]byte("VIIPER-Session-v1"))
	return h.Sum(nil)
}
