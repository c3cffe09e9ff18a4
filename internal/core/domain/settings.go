package domain

import (
	"time"

	"github.com/google/uuid"
)

// SiteConfig is the single branding document the public site renders.
type SiteConfig struct {
	Banner         string            `json:"banner,omitempty"`
	Logo           string            `json:"logo,omitempty"`
	PrimaryColor   string            `json:"primary_color"`
	SecondaryColor string            `json:"secondary_color"`
	AccentColor    string            `json:"accent_color"`
	SocialLinks    map[string]string `json:"social_links"`
	UpdatedAt      time.Time         `json:"updated_at"`
}

var SocialNetworks = []string{"facebook", "instagram", "twitter", "youtube", "tiktok", "whatsapp"}

func DefaultSiteConfig(now time.Time) *SiteConfig {
	links := make(map[string]string, len(SocialNetworks))
	for _, n := range SocialNetworks {
		links[n] = ""
	}
	return &SiteConfig{
		PrimaryColor:   "#FACC15",
		SecondaryColor: "#3B82F6",
		AccentColor:    "#EF4444",
		SocialLinks:    links,
		UpdatedAt:      now,
	}
}

func (c *SiteConfig) Clone() *SiteConfig {
	out := *c
	out.SocialLinks = make(map[string]string, len(c.SocialLinks))
	for k, v := range c.SocialLinks {
		out.SocialLinks[k] = v
	}
	return &out
}

type PaymentMethodType string

const (
	PaymentBank   PaymentMethodType = "bank"
	PaymentMobile PaymentMethodType = "mobile"
	PaymentCash   PaymentMethodType = "cash"
	PaymentOther  PaymentMethodType = "other"
)

func (t PaymentMethodType) Valid() bool {
	switch t {
	case PaymentBank, PaymentMobile, PaymentCash, PaymentOther:
		return true
	}
	return false
}

// PaymentMethod is an account buyers pay into before an admin approves the
// purchase. Details holds the account data shown to the buyer.
type PaymentMethod struct {
	ID        uuid.UUID         `json:"id"`
	Name      string            `json:"name"`
	Type      PaymentMethodType `json:"type"`
	Details   string            `json:"details"`
	Icon      string            `json:"icon,omitempty"`
	ImageURL  string            `json:"image_url,omitempty"`
	Order     int               `json:"order"`
	Active    bool              `json:"active"`
	CreatedAt time.Time         `json:"created_at"`
}

// TableCategory labels tables on a seat layout (VIP, Preferencial...).
type TableCategory struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Color     string    `json:"color"`
	CreatedAt time.Time `json:"created_at"`
}

type Role string

const (
	RoleAdmin     Role = "admin"
	RoleValidator Role = "validator"
)

func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleValidator
}

// Principal is the authenticated caller behind a token.
type Principal struct {
	Username string
	Role     Role
}

// AdminUser is an account as listed to admins, without its password hash.
type AdminUser struct {
	Username  string    `json:"username"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}
