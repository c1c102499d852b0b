package debug

import (
	"encoding/json"
	"net/http"

	"github.com/MKhiriev/go-event-companion/internal/logger"
	"github.com/MKhiriev/go-event-companion/internal/service"
)

// Handler exposes the local debug HTTP surface over the client services. It
// binds to loopback only and carries no authentication; it exists for
// development and support tooling, not for end users.
type Handler struct {
	services *service.ClientServices

	logger *logger.Logger
}

func NewHandler(services *service.ClientServices, logger *logger.Logger) *Handler {
	logger.Info().Msg("debug http handler created")
	return &Handler{
		services: services,
		logger:   logger,
	}
}

// requestLogger stores the handler's logger in the request context so the
// endpoints can recover a request-scoped logger via logger.FromRequest.
func (h *Handler) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r.WithContext(h.logger.WithContext(r.Context())))
	})
}

func writeJSON(w http.ResponseWriter, v any, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
