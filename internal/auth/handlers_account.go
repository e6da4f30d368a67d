package auth

import (
	"encoding/json"
	"net/http"

	"storesight/pkg/middleware"
	"storesight/pkg/problems"
)

func (a *App) me(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFrom(r.Context())
	if !ok {
		problems.Write(w, http.StatusUnauthorized, problems.CodeMissingToken, "Access token required")
		return
	}
	acct, err := a.svc.Me(r.Context(), claims.CredentialID)
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, map[string]any{
		"shopDomain":   acct.Credential.ShopDomain,
		"tenantId":     acct.Credential.TenantID,
		"registeredAt": acct.Credential.CreatedAt,
		"lastLogin":    acct.Credential.UpdatedAt,
		"tenant": map[string]any{
			"id":            acct.Tenant.ID,
			"shopDomain":    acct.Tenant.ShopDomain,
			"webhookSecret": acct.Tenant.WebhookSecret,
			"createdAt":     acct.Tenant.CreatedAt,
			"stats":         acct.Stats,
		},
	}, http.StatusOK)
}

func (a *App) updateWebhookSecret(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFrom(r.Context())
	if !ok {
		problems.Write(w, http.StatusUnauthorized, problems.CodeMissingToken, "Access token required")
		return
	}
	var b struct {
		WebhookSecret string `json:"webhookSecret"`
	}
	if err := json.NewDecoder(r.Body).Decode(&b); err != nil || b.WebhookSecret == "" {
		problems.Write(w, http.StatusBadRequest, problems.CodeInvalidInput, "Webhook secret is required")
		return
	}
	t, err := a.svc.UpdateWebhookSecret(r.Context(), claims.TenantID, b.WebhookSecret)
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, map[string]any{
		"message":  "Webhook secret updated successfully",
		"tenantId": t.ID,
	}, http.StatusOK)
}

func (a *App) dashboardData(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFrom(r.Context())
	if !ok {
		problems.Write(w, http.StatusUnauthorized, problems.CodeMissingToken, "Access token required")
		return
	}
	d, err := a.svc.DashboardData(r.Context(), claims.TenantID)
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, map[string]any{
		"recentProducts":  d.RecentProducts,
		"recentOrders":    d.RecentOrders,
		"recentCustomers": d.RecentCustomers,
	}, http.StatusOK)
}
