package auth

import (
	"bytes"
	"crypto/cipher"
	"encoding/binary"
	"fmt"
	"io"
	"net"
	"sync"

	"golang.org/x/crypto/chacha20poly1305"
)

// maxFrameSize bounds a single encrypted frame.
const maxFrameSize = 2 * 1024 * 1024

// secureConn frames every Write as len[4, big endian] + nonce[12] + ciphertext.
// The nonce is a per-direction counter.
type secureConn struct {
	net.Conn
	aead cipher.AEAD

	wmu     sync.Mutex
	sendCtr uint64

	rmu     sync.Mutex
	recvBuf bytes.Buffer
}

// WrapConn returns conn encrypted with sessionKey.
func WrapConn(conn net.Conn, sessionKey []byte) (net.Conn, error) {
	aead, err := chacha20poly1305.New(sessionKey)
	if err != nil {
		return nil, fmt.Errorf("session cipher: %w", err)
	}
	return &secureConn{Conn: conn, aead: aead}, nil
}

func (s *secureConn) Write(p []byte) (int, error) {
	s.wmu.Lock()
	defer s.wmu.Unlock()

	nonce := make([]byte, chacha20poly1305.NonceSize)
	binary.BigEndian.PutUint64(nonce[4:], s.sendCtr)
	s.sendCtr++

	ct := s.aead.Seal(nil, nonce, p, nil)

	frame := make([]byte, 4, 4+len(nonce)+len(ct))
	binary.BigEndian.PutUint32(frame, uint32(len(nonce)+len(ct)))
	frame = append(frame, nonce...)
	frame = append(frame, ct...)
	if _, err := s.Conn.Write(frame); err != nil {
		return 0, err
	}
	return len(p), nil
}

func (s *secureConn) Read(p []byte) (int, error) {
	s.rmu.Lock()
	defer s.rmu.Unlock()

	if s.recvBuf.Len() == 0 {
		var hdr [4]byte
		if _, err := io.ReadFull(s.Conn, hdr[:]); err != nil {
			return 0, err
		}
		length := binary.BigEndian.Uint32(hdr[:])
		if length > maxFrameSize || length < chacha20poly1305.NonceSize {
			return 0, io.ErrUnexpectedEOF
		}

		frame := make([]byte, length)
		if _, err := io.ReadFull(s.Conn, frame); err != nil {
			return 0, err
		}
		pt, err := s.aead.Open(nil, frame[:chacha20poly1305.NonceSize], frame[chacha20poly1305.NonceSize:], nil)
		if err != nil {
			return 0, err
		}
		s.recvBuf.Write(pt)
	}
	return s.recvBuf.Read(p)
}
