package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"storesight/pkg/accounts"
	"storesight/pkg/commerce"
	"storesight/pkg/logger"
	"storesight/pkg/token"
)

func newTestService(t *testing.T) (*Service, accounts.Store, commerce.Store) {
	t.Helper()
	store := accounts.NewMemoryStore()
	data := commerce.NewMemoryStore()
	iss, err := token.New("test-secret", time.Hour)
	require.NoError(t, err)
	svc := NewService(store, data, iss, logger.Nop(), bcrypt.MinCost, time.Second)
	return svc, store, data
}

func TestRegisterThenLogin(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)

	reg, err := svc.Register(ctx, "shop-a.myshopify.com", "pw1")
	require.NoError(t, err)
	assert.NotEmpty(t, reg.Token)
	assert.False(t, reg.HasExistingData)

	login, err := svc.Login(ctx, "shop-a.myshopify.com", "pw1")
	require.NoError(t, err)
	assert.Equal(t, reg.Tenant.ID, login.Tenant.ID)

	// Both tokens resolve to the same tenant identity.
	iss := svc.issuer
	c1, err := iss.Verify(reg.Token)
	require.NoError(t, err)
	c2, err := iss.Verify(login.Token)
	require.NoError(t, err)
	assert.Equal(t, c1.TenantID, c2.TenantID)
	assert.Equal(t, "shop-a.myshopify.com", c2.ShopDomain)
}

func TestRegisterValidation(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)

	_, err := svc.Register(ctx, "", "pw")
	assert.ErrorIs(t, err, ErrMissingFields)
	_, err = svc.Register(ctx, "shop.myshopify.com", "")
	assert.ErrorIs(t, err, ErrMissingFields)
	_, err = svc.Register(ctx, "shop.example.com", "pw")
	assert.ErrorIs(t, err, ErrInvalidDomain)
	_, err = svc.Register(ctx, "shop.myshopify.com.evil.com", "pw")
	assert.ErrorIs(t, err, ErrInvalidDomain)
}

func TestRegisterDuplicate(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)

	_, err := svc.Register(ctx, "shop-a.myshopify.com", "pw1")
	require.NoError(t, err)
	_, err = svc.Register(ctx, "shop-a.myshopify.com", "pw2")
	assert.ErrorIs(t, err, ErrAlreadyRegistered)
}

func TestRegisterReconcilesIngestedTenant(t *testing.T) {
	ctx := context.Background()
	svc, store, _ := newTestService(t)

	seeded, err := store.SeedTenant(ctx, "shop-a.myshopify.com", "ingested-secret")
	require.NoError(t, err)

	reg, err := svc.Register(ctx, "shop-a.myshopify.com", "pw1")
	require.NoError(t, err)
	assert.True(t, reg.HasExistingData)
	assert.Equal(t, seeded.ID, reg.Tenant.ID)
	assert.NotEqual(t, "ingested-secret", reg.Tenant.WebhookSecret, "registration must rotate the webhook secret")
}

func TestLoginFailuresAreUniform(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)

	_, err := svc.Register(ctx, "shop-a.myshopify.com", "pw1")
	require.NoError(t, err)

	_, wrongPw := svc.Login(ctx, "shop-a.myshopify.com", "nope")
	_, unknown := svc.Login(ctx, "ghost.myshopify.com", "pw1")
	assert.ErrorIs(t, wrongPw, ErrInvalidCredentials)
	assert.ErrorIs(t, unknown, ErrInvalidCredentials)
}

func TestLoginFailureDoesNotTouchLastLogin(t *testing.T) {
	ctx := context.Background()
	svc, store, _ := newTestService(t)

	reg, err := svc.Register(ctx, "shop-a.myshopify.com", "pw1")
	require.NoError(t, err)
	before, err := store.CredentialByID(ctx, reg.Credential.ID)
	require.NoError(t, err)

	_, err = svc.Login(ctx, "shop-a.myshopify.com", "wrong")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	after, err := store.CredentialByID(ctx, reg.Credential.ID)
	require.NoError(t, err)
	assert.Equal(t, before.UpdatedAt, after.UpdatedAt)
}

func TestLoginDisabledAccount(t *testing.T) {
	ctx := context.Background()
	svc, store, _ := newTestService(t)

	reg, err := svc.Register(ctx, "shop-a.myshopify.com", "pw1")
	require.NoError(t, err)
	require.NoError(t, store.SetActive(ctx, reg.Credential.ID, false))

	_, err = svc.Login(ctx, "shop-a.myshopify.com", "pw1")
	assert.ErrorIs(t, err, ErrAccountDisabled)
}

func TestMe(t *testing.T) {
	ctx := context.Background()
	svc, _, data := newTestService(t)

	reg, err := svc.Register(ctx, "shop-a.myshopify.com", "pw1")
	require.NoError(t, err)
	_, err = data.AddProduct(ctx, reg.Tenant.ID, commerce.Product{Title: "Widget"})
	require.NoError(t, err)

	acct, err := svc.Me(ctx, reg.Credential.ID)
	require.NoError(t, err)
	assert.Equal(t, reg.Tenant.ID, acct.Tenant.ID)
	assert.Equal(t, 1, acct.Stats.Products)

	_, err = svc.Me(ctx, "gone")
	assert.ErrorIs(t, err, ErrAccountGone)
}

func TestUpdateWebhookSecret(t *testing.T) {
	ctx := context.Background()
	svc, store, _ := newTestService(t)

	reg, err := svc.Register(ctx, "shop-a.myshopify.com", "pw1")
	require.NoError(t, err)

	_, err = svc.UpdateWebhookSecret(ctx, reg.Tenant.ID, "")
	assert.ErrorIs(t, err, ErrMissingFields)

	updated, err := svc.UpdateWebhookSecret(ctx, reg.Tenant.ID, "new-secret")
	require.NoError(t, err)
	assert.Equal(t, "new-secret", updated.WebhookSecret)

	got, err := store.TenantByID(ctx, reg.Tenant.ID)
	require.NoError(t, err)
	assert.Equal(t, "new-secret", got.WebhookSecret)
}

func TestDashboardDataIsTenantScoped(t *testing.T) {
	ctx := context.Background()
	svc, _, data := newTestService(t)

	a, err := svc.Register(ctx, "shop-a.myshopify.com", "pw")
	require.NoError(t, err)
	b, err := svc.Register(ctx, "shop-b.myshopify.com", "pw")
	require.NoError(t, err)

	_, err = data.AddProduct(ctx, a.Tenant.ID, commerce.Product{Title: "A-only"})
	require.NoError(t, err)
	_, err = data.AddProduct(ctx, b.Tenant.ID, commerce.Product{Title: "B-only"})
	require.NoError(t, err)

	da, err := svc.DashboardData(ctx, a.Tenant.ID)
	require.NoError(t, err)
	require.Len(t, da.RecentProducts, 1)
	assert.Equal(t, "A-only", da.RecentProducts[0].Title)

	db, err := svc.DashboardData(ctx, b.Tenant.ID)
	require.NoError(t, err)
	require.Len(t, db.RecentProducts, 1)
	assert.Equal(t, "B-only", db.RecentProducts[0].Title)
}
