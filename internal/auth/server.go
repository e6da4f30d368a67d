package auth

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"storesight/pkg/middleware"
)

// Handler builds the HTTP handler with routes and middleware.
func (a *App) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID())
	r.Use(middleware.Recover(a.log))
	r.Use(middleware.CORS(splitOrigins(a.cfg.CORSOrigins)))
	r.Use(middleware.Tracing(a.cfg))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true}`))
	})
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	r.Post("/register", a.register)
	r.Post("/login", a.login)

	// Everything below the gate sees a verified tenant identity in context.
	r.Group(func(gr chi.Router) {
		gr.Use(middleware.BearerAuth(a.issuer))
		gr.Get("/me", a.me)
		gr.Post("/webhook-secret", a.updateWebhookSecret)
		gr.Get("/dashboard-data", a.dashboardData)
		gr.Post("/logout", a.logout)
	})

	return r
}

func splitOrigins(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if v := strings.TrimSpace(p); v != "" {
			out = append(out, v)
		}
	}
	return out
}
