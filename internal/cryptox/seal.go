// Package cryptox seals stored click patterns at rest. Tolerance matching
// needs the plaintext coordinates on the server, so patterns are encrypted
// rather than hashed.
package cryptox

import (
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/dmitrijs2005/clickpass/internal/common"
	"github.com/dmitrijs2005/clickpass/internal/pattern"
	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"
)

const sealInfo = "clickpass pattern seal v1"

// ErrOpen is returned for ciphertexts that fail authentication.
var ErrOpen = errors.New("cannot open sealed pattern")

// Sealer encrypts patterns with XChaCha20-Poly1305. The additional data binds
// every ciphertext to its owner, so a sealed pattern copied onto another
// user's row does not open.
type Sealer struct {
	key []byte
}

// NewSealer derives the sealing key from secret with HKDF-SHA256.
func NewSealer(secret []byte) (*Sealer, error) {
	if len(secret) == 0 {
		return nil, errors.New("empty sealing secret")
	}
	key := make([]byte, chacha20poly1305.KeySize)
	if _, err := io.ReadFull(hkdf.New(sha256.New, secret, nil, []byte(sealInfo)), key); err != nil {
		return nil, err
	}
	return &Sealer{key: key}, nil
}

// Seal encodes p and encrypts it for owner. The nonce is prepended.
func (s *Sealer) Seal(owner string, p pattern.Pattern) ([]byte, error) {
	plaintext, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	aead, err := chacha20poly1305.NewX(s.key)
	if err != nil {
		return nil, err
	}
	nonce := common.GenerateRandByteArray(aead.NonceSize())
	return aead.Seal(nonce, nonce, plaintext, []byte(owner)), nil
}

// Open reverses Seal.
func (s *Sealer) Open(owner string, sealed []byte) (pattern.Pattern, error) {
	aead, err := chacha20poly1305.NewX(s.key)
	if err != nil {
		return nil, err
	}
	if len(sealed) < aead.NonceSize()+aead.Overhead() {
		return nil, ErrOpen
	}
	nonce, ciphertext := sealed[:aead.NonceSize()], sealed[aead.NonceSize():]
	plaintext, err := aead.Open(nil, nonce, ciphertext, []byte(owner))
	if err != nil {
		return nil, ErrOpen
	}
	var p pattern.Pattern
	if err := json.Unmarshal(plaintext, &p); err != nil {
		return nil, fmt.Errorf("decode sealed pattern: %w", err)
	}
	return p, nil
}
