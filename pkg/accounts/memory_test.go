package accounts

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterCredentialFreshTenant(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	cred, tenant, existed, err := store.RegisterCredential(ctx, "acme.myshopify.com", "hash", "secret-1")
	require.NoError(t, err)
	assert.False(t, existed)
	assert.Equal(t, tenant.ID, cred.TenantID)
	assert.Equal(t, "acme.myshopify.com", tenant.ShopDomain)
	assert.Equal(t, "secret-1", tenant.WebhookSecret)
	assert.True(t, cred.Active)

	got, err := store.FindCredentialByDomain(ctx, "acme.myshopify.com")
	require.NoError(t, err)
	assert.Equal(t, cred.ID, got.ID)
}

func TestRegisterCredentialReconcilesSeededTenant(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	seeded, err := store.SeedTenant(ctx, "acme.myshopify.com", "ingested-secret")
	require.NoError(t, err)

	cred, tenant, existed, err := store.RegisterCredential(ctx, "acme.myshopify.com", "hash", "rotated-secret")
	require.NoError(t, err)
	assert.True(t, existed)
	assert.Equal(t, seeded.ID, tenant.ID, "must unify with the ingested tenant, not create a duplicate")
	assert.Equal(t, "rotated-secret", tenant.WebhookSecret)
	assert.Equal(t, seeded.ID, cred.TenantID)
}

func TestRegisterCredentialDuplicate(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	_, first, _, err := store.RegisterCredential(ctx, "acme.myshopify.com", "hash", "s1")
	require.NoError(t, err)

	_, _, _, err = store.RegisterCredential(ctx, "acme.myshopify.com", "hash2", "s2")
	assert.ErrorIs(t, err, ErrAlreadyExists)

	// No partial state: the original tenant survives untouched.
	tenant, err := store.FindTenantByDomain(ctx, "acme.myshopify.com")
	require.NoError(t, err)
	assert.Equal(t, first.ID, tenant.ID)
	assert.Equal(t, "s1", tenant.WebhookSecret)
}

func TestTouchLastLogin(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore().(*memStore)
	cred, _, _, err := store.RegisterCredential(ctx, "acme.myshopify.com", "hash", "s")
	require.NoError(t, err)

	store.now = func() time.Time { return cred.UpdatedAt.Add(time.Hour) }
	require.NoError(t, store.TouchLastLogin(ctx, cred.ID))

	got, err := store.CredentialByID(ctx, cred.ID)
	require.NoError(t, err)
	assert.True(t, got.UpdatedAt.After(cred.UpdatedAt))

	assert.ErrorIs(t, store.TouchLastLogin(ctx, "nope"), ErrNotFound)
}

func TestSetActive(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	cred, _, _, err := store.RegisterCredential(ctx, "acme.myshopify.com", "hash", "s")
	require.NoError(t, err)

	require.NoError(t, store.SetActive(ctx, cred.ID, false))
	got, err := store.CredentialByID(ctx, cred.ID)
	require.NoError(t, err)
	assert.False(t, got.Active)
}

func TestRotateWebhookSecret(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	_, tenant, _, err := store.RegisterCredential(ctx, "acme.myshopify.com", "hash", "s1")
	require.NoError(t, err)

	rotated, err := store.RotateWebhookSecret(ctx, tenant.ID, "s2")
	require.NoError(t, err)
	assert.Equal(t, "s2", rotated.WebhookSecret)

	_, err = store.RotateWebhookSecret(ctx, "missing", "x")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSeedTenantIdempotent(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	a, err := store.SeedTenant(ctx, "acme.myshopify.com", "s1")
	require.NoError(t, err)
	b, err := store.SeedTenant(ctx, "acme.myshopify.com", "s2")
	require.NoError(t, err)
	assert.Equal(t, a.ID, b.ID)
	assert.Equal(t, "s1", b.WebhookSecret, "re-seeding must not clobber an existing tenant")
}
