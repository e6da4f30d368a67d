package problems

import (
	"encoding/json"
	"net/http"
	"os"
	"strings"
)

// Stable machine-checkable reason codes returned to clients.
// Authentication failures share invalid_credentials so responses do not
// reveal whether the domain or the password was wrong.
const (
	CodeInvalidInput       = "invalid_input"
	CodeAlreadyRegistered  = "already_registered"
	CodeInvalidCredentials = "invalid_credentials"
	CodeAccountDisabled    = "account_disabled"
	CodeMissingToken       = "missing_token"
	CodeInvalidToken       = "invalid_token"
	CodeNotFound           = "not_found"
	CodeStorageUnavailable = "storage_unavailable"
	CodeInternal           = "internal_error"
)

// Base returns the base URL for problem type identifiers.
// Order of precedence:
// 1. PROBLEM_BASE_URL (exact base, e.g. https://mydomain.com/problems)
// 2. BASE_PUBLIC_URL + "/problems" (if set)
// 3. https://example.com/problems (fallback)
func Base() string {
	if b := os.Getenv("PROBLEM_BASE_URL"); b != "" {
		return strings.TrimRight(b, "/")
	}
	if b := os.Getenv("BASE_PUBLIC_URL"); b != "" {
		return strings.TrimRight(b, "/") + "/problems"
	}
	return "https://example.com/problems"
}

// Type builds a full problem type URL for the given slug.
func Type(slug string) string { return Base() + "/" + slug }

type body struct {
	Type  string `json:"type"`
	Code  string `json:"code"`
	Error string `json:"error"`
}

// Write emits the client-facing error body. msg is the human message; code is
// one of the Code* constants. Backend error text must never be passed as msg.
func Write(w http.ResponseWriter, status int, code, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body{Type: Type(code), Code: code, Error: msg})
}
