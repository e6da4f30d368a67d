package accounts

import (
	"context"
	"errors"
)

var (
	ErrNotFound      = errors.New("accounts: not found")
	ErrAlreadyExists = errors.New("accounts: already exists")
)

type Store interface {
	// Tenant registry.
	FindTenantByDomain(ctx context.Context, domain string) (Tenant, error)
	TenantByID(ctx context.Context, id string) (Tenant, error)
	RotateWebhookSecret(ctx context.Context, tenantID, secret string) (Tenant, error)

	// Credential store.
	FindCredentialByDomain(ctx context.Context, domain string) (Credential, error)
	CredentialByID(ctx context.Context, id string) (Credential, error)
	// TouchLastLogin refreshes UpdatedAt on successful login.
	TouchLastLogin(ctx context.Context, credentialID string) error
	// SetActive toggles login without deleting history. Managed out-of-band
	// (support tooling); no HTTP surface exposes it.
	SetActive(ctx context.Context, credentialID string, active bool) error

	// SeedTenant records an ingestion-created tenant (no credential yet).
	// Existing tenants are left untouched.
	SeedTenant(ctx context.Context, domain, secret string) (Tenant, error)

	// RegisterCredential is the atomic reconciliation primitive: it finds or
	// creates the Tenant for domain (rotating its webhook secret to secret
	// when it pre-exists), then creates the Credential bound to it. The whole
	// sequence either commits or leaves no trace. existed reports whether the
	// Tenant predated this registration (prior ingested data).
	// A second credential for the same domain fails with ErrAlreadyExists.
	RegisterCredential(ctx context.Context, domain, passwordHash, secret string) (cred Credential, t Tenant, existed bool, err error)
}
