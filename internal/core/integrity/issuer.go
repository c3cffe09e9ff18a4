package integrity

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/srgjo27/feria_ticket/internal/core/domain"
)

// QREncoder renders a payload string as a scannable PNG.
type QREncoder interface {
	PNG(content string) ([]byte, error)
}

type Issued struct {
	QRImage []byte
	Payload string
	Code    string
	Hash    string
}

// Issuer produces the hash, payload, code and QR image for a credential and
// checks them again at the gate.
type Issuer struct {
	cipher Cipher
	signer *Signer
	codes  *CodeGenerator
	qr     QREncoder
}

// NewIssuer wires the issuing primitives. signer may be nil, in which case
// walk-in payloads are issued unsigned.
func NewIssuer(c Cipher, signer *Signer, codes *CodeGenerator, qr QREncoder) *Issuer {
	return &Issuer{cipher: c, signer: signer, codes: codes, qr: qr}
}

func (i *Issuer) Cipher() Cipher { return i.cipher }

// Issue hashes the canonical fields of kind, embeds the hash, encrypts the
// result and renders it. An empty code is generated; a non-empty one is kept,
// which is how regeneration preserves the printed code.
func (i *Issuer) Issue(kind domain.Kind, fields Fields, code string) (Issued, error) {
	if !kind.Valid() {
		return Issued{}, fmt.Errorf("%w: unknown kind %q", domain.ErrInvalidInput, kind)
	}
	canonical := Canonical(kind, fields)
	hash := Fingerprint(canonical)

	if code == "" {
		var err error
		code, err = i.newCode(kind, canonical)
		if err != nil {
			return Issued{}, err
		}
	}

	payload := canonical.Clone()
	payload[KeyKind] = string(kind)
	payload[KeyCode] = code
	payload[KeyHash] = hash

	if kind == domain.KindWalkIn && i.signer != nil {
		nonce, err := NewNonce()
		if err != nil {
			return Issued{}, fmt.Errorf("issue nonce: %w", err)
		}
		payload[KeyVersion] = PayloadV2
		payload[KeyNonce] = nonce
		payload[KeySig] = i.signer.Sign(signedParts(payload)...)
	}

	encoded, err := i.cipher.Encode(payload)
	if err != nil {
		return Issued{}, err
	}

	var img []byte
	if i.qr != nil {
		img, err = i.qr.PNG(encoded)
		if err != nil {
			return Issued{}, fmt.Errorf("render qr: %w", err)
		}
	}

	return Issued{QRImage: img, Payload: encoded, Code: code, Hash: hash}, nil
}

// IssueCredential issues c in place: hash, payload and code are written back.
func (i *Issuer) IssueCredential(c *domain.Credential) (Issued, error) {
	issued, err := i.Issue(c.Kind, CredentialFields(c), c.Code)
	if err != nil {
		return Issued{}, err
	}
	c.IntegrityHash = issued.Hash
	c.QRPayload = issued.Payload
	c.Code = issued.Code
	return issued, nil
}

// Render draws the QR symbol for an already issued payload.
func (i *Issuer) Render(payload string) ([]byte, error) {
	if i.qr == nil {
		return nil, fmt.Errorf("render qr: no encoder configured")
	}
	return i.qr.PNG(payload)
}

func (i *Issuer) newCode(kind domain.Kind, f Fields) (string, error) {
	switch kind {
	case domain.KindWalkIn:
		return i.codes.WalkInCode(f.String(KeyCategory), f.Int(KeySequence))
	case domain.KindAccreditation:
		id, err := uuid.Parse(f.String(KeyEntityID))
		if err != nil {
			return "", fmt.Errorf("%w: entity_id: %v", domain.ErrInvalidInput, err)
		}
		return i.codes.AccreditationCode(id)
	default:
		id, err := uuid.Parse(f.String(KeyEntityID))
		if err != nil {
			return "", fmt.Errorf("%w: entity_id: %v", domain.ErrInvalidInput, err)
		}
		return i.codes.TicketCode(id)
	}
}

// Decode opens a scanned payload.
func (i *Issuer) Decode(payload string) (Fields, error) {
	return i.cipher.Decode(payload)
}

// VerifyPayload checks a decoded payload against the stored hash. Signed
// payloads must also carry a valid signature. Any difference is
// domain.ErrIntegrityMismatch.
func (i *Issuer) VerifyPayload(decoded Fields, storedHash string) error {
	kind := decoded.Kind()
	if decoded.Int(KeyVersion) == PayloadV2 {
		if i.signer == nil || !i.signer.Verify(decoded.String(KeySig), signedParts(decoded)...) {
			return fmt.Errorf("%w: bad signature", domain.ErrIntegrityMismatch)
		}
	}
	if !EqualDigest(Fingerprint(Canonical(kind, decoded)), storedHash) {
		return fmt.Errorf("%w: payload hash", domain.ErrIntegrityMismatch)
	}
	return nil
}

// VerifyCredential recomputes the hash from stored fields, catching records
// edited behind the issuer's back.
func (i *Issuer) VerifyCredential(c *domain.Credential) error {
	if !EqualDigest(Fingerprint(CredentialFields(c)), c.IntegrityHash) {
		return fmt.Errorf("%w: record hash", domain.ErrIntegrityMismatch)
	}
	return nil
}
