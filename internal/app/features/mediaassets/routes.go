package mediaassets

import (
	"net/http"

	apistatsstore "github.com/dalemusser/stratacms/internal/app/store/apistats"
	apistatsystem "github.com/dalemusser/stratacms/internal/app/system/apistats"
	"github.com/go-chi/chi/v5"
)

// Routes returns the router mounted at /api/media-assets.
//
// Public reads are recorded in API stats; every write goes through
// requireAdmin.
func Routes(h *Handler, requireAdmin func(http.Handler) http.Handler, stats *apistatsystem.Recorder) http.Handler {
	r := chi.NewRouter()

	r.With(apistatsystem.MiddlewareWithRecorder(stats, apistatsstore.StatTypeMediaList)).Get("/", h.ListPublic)
	r.With(apistatsystem.MiddlewareWithRecorder(stats, apistatsstore.StatTypeMediaGet)).Get("/{id}", h.GetPublic)

	r.Group(func(r chi.Router) {
		r.Use(requireAdmin)
		r.Get("/admin", h.ListAdmin)
		r.Get("/admin/{id}", h.GetAdmin)
		r.Post("/", h.Create)
		r.Post("/upload", h.Upload)
		r.Patch("/{id}", h.Update)
		r.Delete("/{id}", h.Delete)
	})

	return r
}
