package auth

import (
	"bufio"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"strings"

	"github.com/phonepad/phonepad/apitypes"
)

const (
	HandshakeMagic = "eVI1\x00"
	NonceSize      = 32
	authContext    = "VIIPER-Auth-v1"
)

// ClientMAC is the proof of key possession sent with the client nonce.
func ClientMAC(key, clientNonce []byte) []byte {
	mac := hmac.New(sha256.New, key)
	_, _ = mac.Write([]byte(authContext))
	_, _ = mac.Write(clientNonce)
	return mac.Sum(nil)
}

// ClientHandshake sends "eVI1\0" + client_nonce[32] + hmac[32] and expects
// "OK\0" + server_nonce[32] back. A server rejecting the password answers
// with a problem+json line instead, which is returned as *apitypes.ApiError.
func ClientHandshake(r *bufio.Reader, w io.Writer, key []byte) (clientNonce, serverNonce []byte, err error) {
	if len(key) == 0 {
		return nil, nil, fmt.Errorf("handshake: missing key")
	}
	clientNonce = make([]byte, NonceSize)
	if _, err := rand.Read(clientNonce); err != nil {
		return nil, nil, fmt.Errorf("generate client nonce: %w", err)
	}

	msg := append([]byte(HandshakeMagic), clientNonce...)
	msg = append(msg, ClientMAC(key, clientNonce)...)
	if _, err := w.Write(msg); err != nil {
		return nil, nil, fmt.Errorf("write handshake: %w", err)
	}

	respPrefix := make([]byte, 3)
	if _, err := io.ReadFull(r, respPrefix); err != nil {
		if err == io.EOF {
			return nil, nil, apitypes.ErrUnauthorized("invalid password")
		}
		return nil, nil, fmt.Errorf("read handshake response: %w", err)
	}
	if string(respPrefix) != "OK\x00" {
		rest, _ := io.ReadAll(r)
		line := strings.TrimSuffix(string(append(respPrefix, rest...)), "\n")

		var apiErr apitypes.ApiError
		if err := json.Unmarshal([]byte(line), &apiErr); err == nil && (apiErr.Status != 0 || apiErr.Title != "") {
			return nil, nil, &apiErr
		}
		return nil, nil, fmt.Errorf("invalid handshake response from server: %s", line)
	}

	serverNonce = make([]byte, NonceSize)
	if _, err := io.ReadFull(r, serverNonce); err != nil {
		return nil, nil, fmt.Errorf("read server nonce: %w", err)
	}
	return clientNonce, serverNonce, nil
}

// Secure runs the handshake on conn and returns the encrypted connection.
func Secure(conn net.Conn, password string) (net.Conn, error) {
	key, err := DeriveKey(password)
	if err != nil {
		return nil, err
	}
	clientNonce, serverNonce, err := ClientHandshake(bufio.NewReader(conn), conn, key)
	if err != nil {
		return nil, err
	}
	return WrapConn(conn, DeriveSessionKey(key, serverNonce, clientNonce))
}
