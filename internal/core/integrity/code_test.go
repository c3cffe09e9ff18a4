package integrity_test

import (
	"regexp"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/srgjo27/feria_ticket/internal/core/integrity"
)

func TestCodeGenerator_Formats(t *testing.T) {
	g := integrity.NewCodeGenerator()
	id := uuid.MustParse("4b1c7c0e-5d0a-4a39-9a53-7f1f0c3a2b10")

	code, err := g.TicketCode(id)
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^CF-4B1C7C0E-[A-Z2-9]{4}$`), code)

	code, err = g.AccreditationCode(id)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(code, "AC-4B1C7C0E-"))

	code, err = g.WalkInCode("Premium", 12)
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^CF-PRE-0012[A-Z2-9]{4}$`), code)
	assert.GreaterOrEqual(t, len(strings.Split(code, "-")), 3)

	code, err = g.WalkInCode("¡!", 1)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(code, "CF-GEN-"))
}

func TestCodeGenerator_BatchCodesDiffer(t *testing.T) {
	g := integrity.NewCodeGenerator()
	seen := map[string]bool{}
	for i := 1; i <= 50; i++ {
		code, err := g.WalkInCode("VIP", i)
		require.NoError(t, err)
		assert.False(t, seen[code], "duplicate %s", code)
		seen[code] = true
	}
}

func TestNormalizeCode(t *testing.T) {
	assert.Equal(t, "CF-ABC-0001WXYZ", integrity.NormalizeCode("  cf-abc-0001wxyz "))
}
