// Package integrity issues and checks the tamper-evident material carried by
// every credential: the canonical field set, its SHA-256 fingerprint, the
// encrypted QR payload, the optional HMAC signature and the manual code.
package integrity

import (
	"encoding/json"
	"strings"

	"github.com/srgjo27/feria_ticket/internal/core/domain"
)

// Fields is a decoded payload or a canonical field set.
type Fields map[string]any

// Wire keys that are not part of any canonical set.
const (
	KeyKind    = "kind"
	KeyCode    = "code"
	KeyHash    = "hash"
	KeyVersion = "v"
	KeyNonce   = "nonce"
	KeySig     = "sig"
)

// Canonical keys. entity_id, event_id and seat double as routing metadata.
const (
	KeyEntityID     = "entity_id"
	KeyEventID      = "event_id"
	KeyEventName    = "event_name"
	KeyHolderName   = "holder_name"
	KeyHolderEmail  = "holder_email"
	KeySequence     = "sequence"
	KeySeat         = "seat"
	KeyCategory     = "category"
	KeyOrganization = "organization"
)

var canonicalKeys = map[domain.Kind][]string{
	domain.KindTicket: {
		KeyEntityID, KeyEventID, KeyEventName, KeyHolderName,
		KeyHolderEmail, KeySequence, KeySeat, KeyCategory,
	},
	domain.KindWalkIn: {
		KeyEntityID, KeyEventID, KeyEventName, KeySequence, KeyCategory,
	},
	domain.KindAccreditation: {
		KeyEntityID, KeyEventID, KeyHolderName, KeyOrganization, KeyCategory,
	},
}

// CanonicalKeys returns the fixed, ordered field list hashed for kind.
func CanonicalKeys(kind domain.Kind) []string {
	return append([]string(nil), canonicalKeys[kind]...)
}

// Canonical projects src onto the canonical keys of kind. Absent keys become
// nil so issuance and validation serialize them identically.
func Canonical(kind domain.Kind, src Fields) Fields {
	keys := canonicalKeys[kind]
	out := make(Fields, len(keys))
	for _, k := range keys {
		v, ok := src[k]
		if !ok {
			v = nil
		}
		out[k] = v
	}
	return out
}

// CredentialFields derives the canonical field set from a stored credential.
func CredentialFields(c *domain.Credential) Fields {
	f := Fields{
		KeyEntityID: c.ID.String(),
		KeyEventID:  c.EventID.String(),
	}
	switch c.Kind {
	case domain.KindTicket:
		f[KeyHolderName] = c.Holder.Name
		f[KeyHolderEmail] = c.Holder.Email
	case domain.KindAccreditation:
		f[KeyHolderName] = c.Holder.Name
	}
	if t := c.Ticket; t != nil {
		f[KeyEventName] = t.EventName
		f[KeySequence] = t.Sequence
		f[KeyCategory] = t.Category
		if c.Kind == domain.KindTicket {
			f[KeySeat] = t.Seat
		}
	}
	if a := c.Accreditation; a != nil {
		f[KeyOrganization] = a.Organization
		f[KeyCategory] = a.Category
	}
	return Canonical(c.Kind, f)
}

// String returns f[key] when it is a string.
func (f Fields) String(key string) string {
	s, _ := f[key].(string)
	return s
}

// Int returns f[key] as an int, accepting json.Number and float64.
func (f Fields) Int(key string) int {
	switch v := f[key].(type) {
	case int:
		return v
	case float64:
		return int(v)
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			return 0
		}
		return int(n)
	}
	return 0
}

func (f Fields) Kind() domain.Kind {
	return domain.Kind(strings.ToLower(f.String(KeyKind)))
}

// Clone returns a shallow copy.
func (f Fields) Clone() Fields {
	out := make(Fields, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}
