package integrity_test

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"encoding/base64"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/srgjo27/feria_ticket/internal/core/domain"
	"github.com/srgjo27/feria_ticket/internal/core/integrity"
)

var testKey = []byte("ciudad_feria_secret_key_2026_tachira_venezuela")

func ciphers(t *testing.T) map[string]integrity.Cipher {
	t.Helper()
	gcm, err := integrity.NewCipher("gcm", testKey)
	require.NoError(t, err)
	cfb, err := integrity.NewCipher("cfb", testKey)
	require.NoError(t, err)
	return map[string]integrity.Cipher{"gcm": gcm, "cfb": cfb}
}

func TestCipher_RoundTrip(t *testing.T) {
	record := integrity.Fields{
		"kind":      "ticket",
		"entity_id": "4b1c7c0e-5d0a-4a39-9a53-7f1f0c3a2b10",
		"seat":      "M1-S3",
		"sequence":  json.Number("3"),
		"empty":     nil,
		"nested":    map[string]any{"zone": "VIP"},
		"accents":   "Ana Rodríguez <ana@example.com>",
	}

	for name, c := range ciphers(t) {
		t.Run(name, func(t *testing.T) {
			payload, err := c.Encode(record)
			require.NoError(t, err)

			decoded, err := c.Decode(payload)
			require.NoError(t, err)
			assert.Equal(t, record, decoded)
		})
	}
}

func TestCipher_FreshIVPerCall(t *testing.T) {
	record := integrity.Fields{"entity_id": "same"}
	for name, c := range ciphers(t) {
		t.Run(name, func(t *testing.T) {
			a, err := c.Encode(record)
			require.NoError(t, err)
			b, err := c.Encode(record)
			require.NoError(t, err)
			assert.NotEqual(t, a, b)
		})
	}
}

func TestCipher_CorruptPayloadIsDecodeFailure(t *testing.T) {
	inputs := []string{
		"not-base64!!!",
		"",
		base64.StdEncoding.EncodeToString([]byte("short")),
		base64.StdEncoding.EncodeToString(make([]byte, 64)),
	}
	for name, c := range ciphers(t) {
		for _, in := range inputs {
			_, err := c.Decode(in)
			assert.ErrorIs(t, err, domain.ErrDecodeFailure, "%s: %q", name, in)
		}
	}
}

func TestCipher_WrongKeyCannotDecode(t *testing.T) {
	a, err := integrity.NewGCMCipher(testKey)
	require.NoError(t, err)
	b, err := integrity.NewGCMCipher([]byte("another_secret_key_that_is_32_bytes_long"))
	require.NoError(t, err)

	payload, err := a.Encode(integrity.Fields{"entity_id": "x"})
	require.NoError(t, err)

	_, err = b.Decode(payload)
	assert.ErrorIs(t, err, domain.ErrDecodeFailure)
}

func TestCipher_GCMRejectsBitFlips(t *testing.T) {
	c, err := integrity.NewGCMCipher(testKey)
	require.NoError(t, err)

	payload, err := c.Encode(integrity.Fields{"seat": "M1-S3"})
	require.NoError(t, err)

	raw, err := base64.StdEncoding.DecodeString(payload)
	require.NoError(t, err)
	raw[len(raw)-1] ^= 0x01

	_, err = c.Decode(base64.StdEncoding.EncodeToString(raw))
	assert.ErrorIs(t, err, domain.ErrDecodeFailure)
}

// The cfb envelope is base64(iv || AES-CFB(json)) under the first 32 key
// bytes. Only the envelope matches older codes: their field names and hash
// input differ, so they decode but never pass verification.
func TestCFBCipher_Envelope(t *testing.T) {
	block, err := aes.NewCipher(testKey[:32])
	require.NoError(t, err)
	c, err := integrity.NewCFBCipher(testKey)
	require.NoError(t, err)

	payload, err := c.Encode(integrity.Fields{"seat": "M1-S3"})
	require.NoError(t, err)
	raw, err := base64.StdEncoding.DecodeString(payload)
	require.NoError(t, err)
	require.Greater(t, len(raw), aes.BlockSize)

	plain := make([]byte, len(raw)-aes.BlockSize)
	cipher.NewCFBDecrypter(block, raw[:aes.BlockSize]).XORKeyStream(plain, raw[aes.BlockSize:])
	assert.JSONEq(t, `{"seat":"M1-S3"}`, string(plain))

	// spaced separators as older encoders wrote them
	legacy := []byte(`{"entrada_id": "e-1", "hash": "abc", "numero_entrada": 4}`)
	iv := bytes.Repeat([]byte{7}, aes.BlockSize)
	sealed := make([]byte, len(legacy))
	cipher.NewCFBEncrypter(block, iv).XORKeyStream(sealed, legacy)

	decoded, err := c.Decode(base64.StdEncoding.EncodeToString(append(iv, sealed...)))
	require.NoError(t, err)
	assert.Equal(t, "e-1", decoded["entrada_id"])
	assert.Equal(t, json.Number("4"), decoded["numero_entrada"])
	assert.NotContains(t, decoded, integrity.KeyEntityID)
}

func TestNewCipher_KeyRules(t *testing.T) {
	_, err := integrity.NewGCMCipher([]byte("short"))
	assert.ErrorIs(t, err, integrity.ErrInvalidKey)

	_, err = integrity.NewCFBCipher(make([]byte, 16))
	assert.NoError(t, err)

	_, err = integrity.NewCipher("ecb", testKey)
	assert.Error(t, err)
}
