package accounts

import "time"

// Tenant represents a single store and its isolated data partition.
// A Tenant may be created by the webhook ingestion pipeline before its
// owner ever registers a credential.
type Tenant struct {
	ID            string // uuid
	ShopDomain    string // unique, e.g. acme.myshopify.com
	WebhookSecret string // rotating secret for inbound webhook verification
	CreatedAt     time.Time
}

// Credential is the login record for a Tenant (1:1 by shop domain).
// UpdatedAt doubles as the last-login marker.
type Credential struct {
	ID           string // uuid
	TenantID     string
	ShopDomain   string
	PasswordHash string // bcrypt, never the plaintext
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
