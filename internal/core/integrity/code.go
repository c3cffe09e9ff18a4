package integrity

import (
	"crypto/rand"
	"fmt"
	"io"
	"math/big"
	"strings"

	"github.com/google/uuid"
)

// codeAlphabet drops 0/O and 1/I, which operators misread when typing.
const codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// CodeGenerator builds the short codes typed in when a QR cannot be scanned.
// Uniqueness is probabilistic: the random suffix is not checked against
// issued codes.
type CodeGenerator struct {
	rand io.Reader
}

func NewCodeGenerator() *CodeGenerator {
	return &CodeGenerator{rand: rand.Reader}
}

func (g *CodeGenerator) suffix(n int) (string, error) {
	var b strings.Builder
	max := big.NewInt(int64(len(codeAlphabet)))
	for i := 0; i < n; i++ {
		idx, err := rand.Int(g.rand, max)
		if err != nil {
			return "", fmt.Errorf("code suffix: %w", err)
		}
		b.WriteByte(codeAlphabet[idx.Int64()])
	}
	return b.String(), nil
}

func idSlice(id uuid.UUID) string {
	return strings.ToUpper(strings.ReplaceAll(id.String(), "-", "")[:8])
}

// TicketCode: CF-<8 id chars>-<4 random>.
func (g *CodeGenerator) TicketCode(id uuid.UUID) (string, error) {
	s, err := g.suffix(4)
	if err != nil {
		return "", err
	}
	return "CF-" + idSlice(id) + "-" + s, nil
}

// AccreditationCode: AC-<8 id chars>-<4 random>.
func (g *CodeGenerator) AccreditationCode(id uuid.UUID) (string, error) {
	s, err := g.suffix(4)
	if err != nil {
		return "", err
	}
	return "AC-" + idSlice(id) + "-" + s, nil
}

// WalkInCode: CF-<CAT>-<sequence><4 random>, CAT being the first three
// letters of the category.
func (g *CodeGenerator) WalkInCode(category string, seq int) (string, error) {
	s, err := g.suffix(4)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("CF-%s-%04d%s", categoryTag(category), seq, s), nil
}

func categoryTag(category string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(category) {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
		if b.Len() == 3 {
			break
		}
	}
	if b.Len() == 0 {
		return "GEN"
	}
	return b.String()
}

// NormalizeCode uppercases and trims a typed code.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
