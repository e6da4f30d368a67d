package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"storesight/pkg/accounts"
	"storesight/pkg/commerce"
	"storesight/pkg/config"
	"storesight/pkg/logger"
)

func newTestApp(t *testing.T) (*App, accounts.Store, commerce.Store) {
	t.Helper()
	cfg := config.Config{
		Env:          "test",
		TokenSecret:  "test-secret",
		TokenTTL:     time.Hour,
		BcryptCost:   bcrypt.MinCost,
		StoreTimeout: time.Second,
		CORSOrigins:  "*",
	}
	store := accounts.NewMemoryStore()
	data := commerce.NewMemoryStore()
	app, err := New(logger.Nop(), cfg, store, data)
	require.NoError(t, err)
	return app, store, data
}

func doJSON(t *testing.T, h http.Handler, method, path, bearer string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &m))
	return m
}

func TestRegisterLoginMeFlow(t *testing.T) {
	app, _, _ := newTestApp(t)
	h := app.Handler()

	rec := doJSON(t, h, http.MethodPost, "/register", "", map[string]string{
		"shopDomain": "shop-a.myshopify.com", "password": "pw1",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	reg := decodeBody(t, rec)
	tok, _ := reg["token"].(string)
	require.NotEmpty(t, tok)
	assert.Equal(t, "shop-a.myshopify.com", reg["shopDomain"])
	assert.Equal(t, false, reg["hasExistingData"])

	rec = doJSON(t, h, http.MethodGet, "/me", tok, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	me := decodeBody(t, rec)
	assert.Equal(t, reg["tenantId"], me["tenantId"])
	tenant, _ := me["tenant"].(map[string]any)
	require.NotNil(t, tenant)
	assert.Equal(t, "shop-a.myshopify.com", tenant["shopDomain"])
	assert.NotEmpty(t, tenant["webhookSecret"])

	// Duplicate registration conflicts.
	rec = doJSON(t, h, http.MethodPost, "/register", "", map[string]string{
		"shopDomain": "shop-a.myshopify.com", "password": "pw2",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "already_registered", decodeBody(t, rec)["code"])

	// Wrong password gets the uniform message.
	rec = doJSON(t, h, http.MethodPost, "/login", "", map[string]string{
		"shopDomain": "shop-a.myshopify.com", "password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "invalid_credentials", body["code"])
	assert.Equal(t, "Invalid credentials", body["error"])

	// Unknown domain is indistinguishable from a wrong password.
	rec = doJSON(t, h, http.MethodPost, "/login", "", map[string]string{
		"shopDomain": "ghost.myshopify.com", "password": "pw1",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "invalid_credentials", decodeBody(t, rec)["code"])

	rec = doJSON(t, h, http.MethodPost, "/login", "", map[string]string{
		"shopDomain": "shop-a.myshopify.com", "password": "pw1",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, decodeBody(t, rec)["token"])
}

func TestRegisterValidationErrors(t *testing.T) {
	app, _, _ := newTestApp(t)
	h := app.Handler()

	rec := doJSON(t, h, http.MethodPost, "/register", "", map[string]string{
		"shopDomain": "", "password": "pw",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_input", decodeBody(t, rec)["code"])

	rec = doJSON(t, h, http.MethodPost, "/register", "", map[string]string{
		"shopDomain": "not-a-shop.example.com", "password": "pw",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRegisterAgainstIngestedTenant(t *testing.T) {
	app, store, _ := newTestApp(t)
	h := app.Handler()

	_, err := store.SeedTenant(context.Background(), "shop-a.myshopify.com", "ingested")
	require.NoError(t, err)

	rec := doJSON(t, h, http.MethodPost, "/register", "", map[string]string{
		"shopDomain": "shop-a.myshopify.com", "password": "pw1",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, decodeBody(t, rec)["hasExistingData"])
}

func TestAccessGate(t *testing.T) {
	app, _, _ := newTestApp(t)
	h := app.Handler()

	rec := doJSON(t, h, http.MethodGet, "/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "missing_token", decodeBody(t, rec)["code"])

	rec = doJSON(t, h, http.MethodGet, "/me", "not-a-token", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "invalid_token", body["code"])
	assert.Equal(t, "Invalid or expired token", body["error"])
}

func TestDashboardDataIsolation(t *testing.T) {
	app, _, data := newTestApp(t)
	h := app.Handler()
	ctx := context.Background()

	tokens := map[string]string{}
	tenantIDs := map[string]string{}
	for _, dom := range []string{"shop-a.myshopify.com", "shop-b.myshopify.com"} {
		rec := doJSON(t, h, http.MethodPost, "/register", "", map[string]string{
			"shopDomain": dom, "password": "pw",
		})
		require.Equal(t, http.StatusOK, rec.Code)
		body := decodeBody(t, rec)
		tokens[dom] = body["token"].(string)
		tenantIDs[dom] = body["tenantId"].(string)
	}

	for dom, tid := range tenantIDs {
		cust, err := data.AddCustomer(ctx, tid, commerce.Customer{Email: dom + "-customer"})
		require.NoError(t, err)
		_, err = data.AddOrder(ctx, tid, commerce.Order{ShopifyOrderID: dom + "-order", TotalPrice: "10.00"}, cust.ID)
		require.NoError(t, err)
		_, err = data.AddProduct(ctx, tid, commerce.Product{Title: dom + "-product"})
		require.NoError(t, err)
	}

	for dom, tok := range tokens {
		rec := doJSON(t, h, http.MethodGet, "/dashboard-data", tok, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		var body struct {
			RecentProducts  []commerce.Product  `json:"recentProducts"`
			RecentOrders    []commerce.Order    `json:"recentOrders"`
			RecentCustomers []commerce.Customer `json:"recentCustomers"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		require.Len(t, body.RecentProducts, 1)
		require.Len(t, body.RecentOrders, 1)
		require.Len(t, body.RecentCustomers, 1)
		assert.Equal(t, dom+"-product", body.RecentProducts[0].Title)
		assert.Equal(t, dom+"-order", body.RecentOrders[0].ShopifyOrderID)
		assert.Equal(t, dom+"-customer", body.RecentCustomers[0].Email)
	}
}

func TestWebhookSecretUpdate(t *testing.T) {
	app, store, _ := newTestApp(t)
	h := app.Handler()

	rec := doJSON(t, h, http.MethodPost, "/register", "", map[string]string{
		"shopDomain": "shop-a.myshopify.com", "password": "pw",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	tok := body["token"].(string)
	tid := body["tenantId"].(string)

	rec = doJSON(t, h, http.MethodPost, "/webhook-secret", tok, map[string]string{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, h, http.MethodPost, "/webhook-secret", tok, map[string]string{
		"webhookSecret": "rotated",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, tid, decodeBody(t, rec)["tenantId"])

	tenant, err := store.TenantByID(context.Background(), tid)
	require.NoError(t, err)
	assert.Equal(t, "rotated", tenant.WebhookSecret)
}

func TestLogout(t *testing.T) {
	app, _, _ := newTestApp(t)
	h := app.Handler()

	rec := doJSON(t, h, http.MethodPost, "/register", "", map[string]string{
		"shopDomain": "shop-a.myshopify.com", "password": "pw",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	tok := decodeBody(t, rec)["token"].(string)

	rec = doJSON(t, h, http.MethodPost, "/logout", tok, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Logged out successfully", decodeBody(t, rec)["message"])

	// No server-side revocation: the token still works afterwards.
	rec = doJSON(t, h, http.MethodGet, "/me", tok, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}
