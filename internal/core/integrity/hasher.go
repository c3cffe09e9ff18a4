package integrity

import (
	"bytes"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
)

// Fingerprint is the SHA-256 hex digest of f serialized as JSON with keys in
// lexicographic order, so insertion order never changes the result.
func Fingerprint(f Fields) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	// encoding/json writes map keys sorted; values are plain JSON scalars.
	if err := enc.Encode(map[string]any(f)); err != nil {
		// Unencodable values cannot come from a decoded payload; hash the
		// error text so the digest never matches a stored one.
		sum := sha256.Sum256([]byte("unencodable:" + err.Error()))
		return hex.EncodeToString(sum[:])
	}
	sum := sha256.Sum256(bytes.TrimRight(buf.Bytes(), "\n"))
	return hex.EncodeToString(sum[:])
}

// EqualDigest compares two hex digests in constant time.
func EqualDigest(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
