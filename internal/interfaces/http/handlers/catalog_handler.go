package handlers

import (
	"net/http"

	appcatalog "github.com/turtacn/LabelScan-Intelligence/internal/application/catalog"
	"github.com/turtacn/LabelScan-Intelligence/internal/infrastructure/monitoring/logging"
)

// CatalogState exposes the live catalog.
type CatalogState interface {
	Snapshot() (*appcatalog.Snapshot, error)
}

// CatalogHandler serves catalog metadata.
type CatalogHandler struct {
	state CatalogState
	log   logging.Logger
}

// NewCatalogHandler creates a CatalogHandler.
func NewCatalogHandler(state CatalogState, log logging.Logger) *CatalogHandler {
	return &CatalogHandler{state: state, log: log}
}

// Get handles GET /api/v1/catalog: version, entry count and load-time issues.
func (h *CatalogHandler) Get(w http.ResponseWriter, _ *http.Request) {
	snap, err := h.state.Snapshot()
	if err != nil {
		writeAppError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

//Personal.AI order the ending
