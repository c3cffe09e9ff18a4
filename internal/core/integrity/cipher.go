package integrity

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/srgjo27/feria_ticket/internal/core/domain"
)

var ErrInvalidKey = errors.New("integrity: encryption key must be 16, 24 or at least 32 bytes")

// Cipher turns a field set into an opaque, text-safe QR payload and back.
// Decode reports every malformed input as domain.ErrDecodeFailure.
type Cipher interface {
	Encode(f Fields) (string, error)
	Decode(payload string) (Fields, error)
}

// blockKey keeps the first 32 bytes of long secrets and accepts exact AES
// key sizes as-is.
func blockKey(key []byte) ([]byte, error) {
	switch n := len(key); {
	case n >= 32:
		return key[:32], nil
	case n == 16 || n == 24:
		return key, nil
	}
	return nil, ErrInvalidKey
}

// NewCipher selects the payload format by name: "gcm" (default) or the legacy
// "cfb" format used by already printed codes.
func NewCipher(mode string, key []byte) (Cipher, error) {
	switch mode {
	case "", "gcm":
		return NewGCMCipher(key)
	case "cfb":
		return NewCFBCipher(key)
	}
	return nil, fmt.Errorf("integrity: unknown cipher mode %q", mode)
}

// GCMCipher encodes base64(nonce || AES-GCM(json)).
type GCMCipher struct {
	aead cipher.AEAD
	rand io.Reader
}

func NewGCMCipher(key []byte) (*GCMCipher, error) {
	k, err := blockKey(key)
	if err != nil {
		return nil, err
	}
	block, err := aes.NewCipher(k)
	if err != nil {
		return nil, err
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	return &GCMCipher{aead: aead, rand: rand.Reader}, nil
}

func (c *GCMCipher) Encode(f Fields) (string, error) {
	plain, err := json.Marshal(map[string]any(f))
	if err != nil {
		return "", fmt.Errorf("encode payload: %w", err)
	}
	nonce := make([]byte, c.aead.NonceSize())
	if _, err := io.ReadFull(c.rand, nonce); err != nil {
		return "", fmt.Errorf("encode payload nonce: %w", err)
	}
	sealed := c.aead.Seal(nonce, nonce, plain, nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

func (c *GCMCipher) Decode(payload string) (Fields, error) {
	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: base64: %v", domain.ErrDecodeFailure, err)
	}
	ns := c.aead.NonceSize()
	if len(raw) < ns {
		return nil, fmt.Errorf("%w: payload too short", domain.ErrDecodeFailure)
	}
	plain, err := c.aead.Open(nil, raw[:ns], raw[ns:], nil)
	if err != nil {
		return nil, fmt.Errorf("%w: open: %v", domain.ErrDecodeFailure, err)
	}
	return unmarshalFields(plain)
}

// CFBCipher encodes base64(iv || AES-CFB(json)). It carries no
// authentication tag; tampering is caught by the fingerprint comparison.
type CFBCipher struct {
	block cipher.Block
	rand  io.Reader
}

func NewCFBCipher(key []byte) (*CFBCipher, error) {
	k, err := blockKey(key)
	if err != nil {
		return nil, err
	}
	block, err := aes.NewCipher(k)
	if err != nil {
		return nil, err
	}
	return &CFBCipher{block: block, rand: rand.Reader}, nil
}

func (c *CFBCipher) Encode(f Fields) (string, error) {
	plain, err := json.Marshal(map[string]any(f))
	if err != nil {
		return "", fmt.Errorf("encode payload: %w", err)
	}
	out := make([]byte, aes.BlockSize+len(plain))
	iv := out[:aes.BlockSize]
	if _, err := io.ReadFull(c.rand, iv); err != nil {
		return "", fmt.Errorf("encode payload iv: %w", err)
	}
	cipher.NewCFBEncrypter(c.block, iv).XORKeyStream(out[aes.BlockSize:], plain)
	return base64.StdEncoding.EncodeToString(out), nil
}

func (c *CFBCipher) Decode(payload string) (Fields, error) {
	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: base64: %v", domain.ErrDecodeFailure, err)
	}
	if len(raw) <= aes.BlockSize {
		return nil, fmt.Errorf("%w: payload too short", domain.ErrDecodeFailure)
	}
	plain := make([]byte, len(raw)-aes.BlockSize)
	cipher.NewCFBDecrypter(c.block, raw[:aes.BlockSize]).XORKeyStream(plain, raw[aes.BlockSize:])
	return unmarshalFields(plain)
}

func unmarshalFields(plain []byte) (Fields, error) {
	dec := json.NewDecoder(bytes.NewReader(plain))
	dec.UseNumber()
	var m map[string]any
	if err := dec.Decode(&m); err != nil {
		return nil, fmt.Errorf("%w: json: %v", domain.ErrDecodeFailure, err)
	}
	if m == nil {
		return nil, fmt.Errorf("%w: payload is not an object", domain.ErrDecodeFailure)
	}
	return Fields(m), nil
}
