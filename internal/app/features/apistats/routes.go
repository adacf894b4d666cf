package apistats

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Routes returns the router for the admin stats endpoints. The caller
// mounts it behind auth.RequireAdmin.
func Routes(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Get("/", h.ServeSummary)
	r.Get("/{statType}", h.ServeSeries)
	return r
}
