package debug

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func (h *Handler) Init() *chi.Mux {
	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Use(h.requestLogger)

	router.Group(func(r chi.Router) {
		r.Get("/debug/sync/status", h.syncStatus)
		r.Get("/debug/sync/offline", h.offlineStatus)
		r.Get("/debug/sync/dump", h.dumpTables)
		r.Post("/debug/sync/force", h.forceSync)
	})

	return router
}
