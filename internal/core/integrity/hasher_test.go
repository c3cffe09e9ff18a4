package integrity_test

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/srgjo27/feria_ticket/internal/core/domain"
	"github.com/srgjo27/feria_ticket/internal/core/integrity"
)

func TestFingerprint_OrderIndependent(t *testing.T) {
	a := integrity.Fields{}
	a["entity_id"] = "e-1"
	a["holder_name"] = "Ana"
	a["sequence"] = 1

	b := integrity.Fields{}
	b["sequence"] = 1
	b["holder_name"] = "Ana"
	b["entity_id"] = "e-1"

	assert.Equal(t, integrity.Fingerprint(a), integrity.Fingerprint(b))
	assert.Len(t, integrity.Fingerprint(a), 64)
}

func TestFingerprint_NumberRepresentationsAgree(t *testing.T) {
	issued := integrity.Fields{"sequence": 2}
	decoded := integrity.Fields{"sequence": json.Number("2")}
	assert.Equal(t, integrity.Fingerprint(issued), integrity.Fingerprint(decoded))
}

func TestFingerprint_TypeChangeIsMismatch(t *testing.T) {
	issued := integrity.Fields{"sequence": 2}
	forged := integrity.Fields{"sequence": "2"}
	assert.NotEqual(t, integrity.Fingerprint(issued), integrity.Fingerprint(forged))
}

func TestCanonical_MissingFieldsAreStableSentinels(t *testing.T) {
	full := integrity.Canonical(domain.KindTicket, integrity.Fields{
		"entity_id": "e-1",
		"extra":     "ignored",
	})

	assert.Len(t, full, len(integrity.CanonicalKeys(domain.KindTicket)))
	assert.Nil(t, full["seat"])
	assert.NotContains(t, full, "extra")

	again := integrity.Canonical(domain.KindTicket, integrity.Fields{"entity_id": "e-1"})
	assert.Equal(t, integrity.Fingerprint(full), integrity.Fingerprint(again))

	withSeat := integrity.Canonical(domain.KindTicket, integrity.Fields{"entity_id": "e-1", "seat": ""})
	assert.NotEqual(t, integrity.Fingerprint(full), integrity.Fingerprint(withSeat))
}

func TestCredentialFields_PerKind(t *testing.T) {
	ticket := &domain.Credential{
		ID:      uuid.New(),
		Kind:    domain.KindTicket,
		EventID: uuid.New(),
		Holder:  domain.Holder{Name: "Ana", Email: "ana@example.com"},
		Ticket:  &domain.TicketDetails{EventName: "Toros", Sequence: 1, Seat: "M1-S3", Category: "VIP"},
	}
	f := integrity.CredentialFields(ticket)
	assert.Equal(t, "M1-S3", f["seat"])
	assert.Equal(t, "ana@example.com", f["holder_email"])
	assert.Equal(t, 1, f["sequence"])

	walkIn := &domain.Credential{
		ID:      uuid.New(),
		Kind:    domain.KindWalkIn,
		EventID: uuid.New(),
		Ticket:  &domain.TicketDetails{EventName: "Toros", Sequence: 7, Category: "General"},
	}
	f = integrity.CredentialFields(walkIn)
	assert.NotContains(t, f, "holder_name")
	assert.Equal(t, 7, f["sequence"])

	badge := &domain.Credential{
		ID:            uuid.New(),
		Kind:          domain.KindAccreditation,
		EventID:       uuid.New(),
		Holder:        domain.Holder{Name: "Luis"},
		Accreditation: &domain.AccreditationDetails{Category: "Prensa", Organization: "Diario"},
	}
	f = integrity.CredentialFields(badge)
	assert.Equal(t, "Prensa", f["category"])
	assert.Equal(t, "Diario", f["organization"])
}
