package auth

import (
	"encoding/json"
	"errors"
	"net/http"

	"storesight/pkg/problems"
)

type credentialsBody struct {
	ShopDomain string `json:"shopDomain"`
	Password   string `json:"password"`
}

func (a *App) register(w http.ResponseWriter, r *http.Request) {
	var b credentialsBody
	if err := json.NewDecoder(r.Body).Decode(&b); err != nil {
		problems.Write(w, http.StatusBadRequest, problems.CodeInvalidInput, "Invalid JSON body")
		return
	}
	sess, err := a.svc.Register(r.Context(), b.ShopDomain, b.Password)
	if err != nil {
		registrationsTotal.WithLabelValues(resultLabel(err)).Inc()
		a.writeError(w, err)
		return
	}
	registrationsTotal.WithLabelValues("ok").Inc()
	writeJSON(w, map[string]any{
		"message":         "Store registered successfully",
		"token":           sess.Token,
		"tenantId":        sess.Tenant.ID,
		"shopDomain":      sess.Tenant.ShopDomain,
		"hasExistingData": sess.HasExistingData,
	}, http.StatusOK)
}

func (a *App) login(w http.ResponseWriter, r *http.Request) {
	var b credentialsBody
	if err := json.NewDecoder(r.Body).Decode(&b); err != nil {
		problems.Write(w, http.StatusBadRequest, problems.CodeInvalidInput, "Invalid JSON body")
		return
	}
	sess, err := a.svc.Login(r.Context(), b.ShopDomain, b.Password)
	if err != nil {
		loginsTotal.WithLabelValues(resultLabel(err)).Inc()
		a.writeError(w, err)
		return
	}
	loginsTotal.WithLabelValues("ok").Inc()
	writeJSON(w, map[string]any{
		"message":    "Login successful",
		"token":      sess.Token,
		"tenantId":   sess.Tenant.ID,
		"shopDomain": sess.Tenant.ShopDomain,
	}, http.StatusOK)
}

func (a *App) logout(w http.ResponseWriter, r *http.Request) {
	// Stateless tokens: logout is client-side token disposal.
	writeJSON(w, map[string]any{"message": "Logged out successfully"}, http.StatusOK)
}

// writeError maps service failures to the response taxonomy. Unknown errors
// become a generic 500; their detail stays in the server log.
func (a *App) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrMissingFields):
		problems.Write(w, http.StatusBadRequest, problems.CodeInvalidInput, "shopDomain and password are required")
	case errors.Is(err, ErrInvalidDomain):
		problems.Write(w, http.StatusBadRequest, problems.CodeInvalidInput, "Please provide a valid Shopify domain (e.g., yourstore.myshopify.com)")
	case errors.Is(err, ErrAlreadyRegistered):
		problems.Write(w, http.StatusConflict, problems.CodeAlreadyRegistered, "Store already registered. Please login.")
	case errors.Is(err, ErrInvalidCredentials):
		problems.Write(w, http.StatusUnauthorized, problems.CodeInvalidCredentials, "Invalid credentials")
	case errors.Is(err, ErrAccountDisabled):
		problems.Write(w, http.StatusUnauthorized, problems.CodeAccountDisabled, "Account is deactivated. Please contact support.")
	case errors.Is(err, ErrAccountGone):
		problems.Write(w, http.StatusNotFound, problems.CodeNotFound, "Account record not found")
	case errors.Is(err, ErrStorageUnavailable):
		problems.Write(w, http.StatusServiceUnavailable, problems.CodeStorageUnavailable, "Temporary storage failure, please retry")
	default:
		a.log.Errorw("unexpected error", "err", err)
		problems.Write(w, http.StatusInternalServerError, problems.CodeInternal, "Unexpected server error")
	}
}

func resultLabel(err error) string {
	switch {
	case errors.Is(err, ErrAlreadyRegistered):
		return "conflict"
	case errors.Is(err, ErrMissingFields), errors.Is(err, ErrInvalidDomain):
		return "invalid"
	case errors.Is(err, ErrInvalidCredentials):
		return "rejected"
	case errors.Is(err, ErrAccountDisabled):
		return "disabled"
	default:
		return "error"
	}
}
