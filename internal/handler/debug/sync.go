package debug

import (
	"encoding/json"
	"net/http"

	"github.com/MKhiriev/go-event-companion/internal/logger"
)

func (h *Handler) syncStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.services.Engine.Status(), http.StatusOK)
}

func (h *Handler) offlineStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.services.Engine.OfflineStatus(r.Context()), http.StatusOK)
}

func (h *Handler) dumpTables(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	// the engine's registry is the only table list; the handler never keeps
	// one of its own
	dump := make(map[string]json.RawMessage)
	for _, name := range h.services.Engine.Tables() {
		data, err := h.services.Engine.Get(ctx, name)
		if err != nil {
			log.Error().Err(err).Str("table", name).Msg("error dumping cached table")
			http.Error(w, "error dumping cached table "+name, http.StatusInternalServerError)
			return
		}
		if data == nil {
			data = json.RawMessage("null")
		}
		dump[name] = data
	}

	writeJSON(w, dump, http.StatusOK)
}

func (h *Handler) forceSync(w http.ResponseWriter, r *http.Request) {
	result := h.services.Engine.ForceSync(r.Context())

	status := http.StatusOK
	if result.Skipped != "" {
		status = http.StatusConflict
	}
	writeJSON(w, result, status)
}
