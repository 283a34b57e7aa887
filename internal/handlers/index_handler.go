package handlers

import (
	"net/http"
	"time"

	"plp-bookstore/internal/catalog"
	"plp-bookstore/internal/constants"
	"plp-bookstore/internal/models"
	"plp-bookstore/internal/utils"
)

type IndexHandler struct {
	Catalog     *catalog.Catalog
	AuditLogger utils.Logger
	Timeout     time.Duration
}

// POST /admin/indexes
func (h *IndexHandler) CreateIndexes(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := withTimeout(r, h.Timeout)
	defer cancel()

	names, err := h.Catalog.EnsureIndexes(ctx)
	if err != nil {
		utils.JSONError(w, "Index creation failed: "+err.Error(), http.StatusInternalServerError)
		return
	}

	h.AuditLogger.Log(ctx, models.IndexEntity, constants.CreateIndex, names)
	utils.JSON(w, http.StatusCreated, map[string]interface{}{"indexes": names})
}

// GET /admin/indexes
func (h *IndexHandler) ListIndexes(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := withTimeout(r, h.Timeout)
	defer cancel()

	names, err := h.Catalog.ListIndexes(ctx)
	if err != nil {
		utils.JSONError(w, "Failed to list indexes", http.StatusInternalServerError)
		return
	}
	utils.JSON(w, http.StatusOK, map[string]interface{}{"indexes": names})
}

// GET /admin/explain?title=The+Hobbit&verbosity=executionStats
func (h *IndexHandler) Explain(w http.ResponseWriter, r *http.Request) {
	title := r.URL.Query().Get("title")
	if title == "" {
		utils.JSONError(w, "title is required", http.StatusBadRequest)
		return
	}
	verbosity := r.URL.Query().Get("verbosity")
	if verbosity != "" && !catalog.IsValidVerbosity(verbosity) {
		utils.JSONError(w, "Invalid verbosity", http.StatusBadRequest)
		return
	}

	ctx, cancel := withTimeout(r, h.Timeout)
	defer cancel()

	raw, summary, err := h.Catalog.ExplainFindByTitle(ctx, title, verbosity)
	if err != nil {
		utils.JSONError(w, "Explain failed: "+err.Error(), http.StatusInternalServerError)
		return
	}
	utils.JSON(w, http.StatusOK, map[string]interface{}{
		"summary": summary,
		"plan":    raw,
	})
}
