package integrity_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/srgjo27/feria_ticket/internal/core/integrity"
)

func TestSigner_SignVerify(t *testing.T) {
	s, err := integrity.NewSigner([]byte("signing-key"))
	require.NoError(t, err)

	sig := s.Sign("id", "event", "CF-GEN-0001ABCD", "00ff")
	assert.Len(t, sig, integrity.SignatureLen)
	assert.True(t, s.Verify(sig, "id", "event", "CF-GEN-0001ABCD", "00ff"))
	assert.False(t, s.Verify(sig, "id", "event", "CF-GEN-0002ABCD", "00ff"))
	assert.False(t, s.Verify("", "id", "event", "CF-GEN-0001ABCD", "00ff"))

	other, err := integrity.NewSigner([]byte("other-key"))
	require.NoError(t, err)
	assert.False(t, other.Verify(sig, "id", "event", "CF-GEN-0001ABCD", "00ff"))
}

func TestSigner_RequiresKey(t *testing.T) {
	_, err := integrity.NewSigner(nil)
	assert.ErrorIs(t, err, integrity.ErrMissingSigningKey)
}
