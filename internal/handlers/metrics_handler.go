package handlers

import (
	"net/http"
	"time"

	"plp-bookstore/internal/catalog"
	"plp-bookstore/internal/utils"
)

type MetricsHandler struct {
	Catalog *catalog.Catalog
	Timeout time.Duration
}

// GET /admin/metrics
func (h *MetricsHandler) GetMetrics(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := withTimeout(r, h.Timeout)
	defer cancel()

	inv, err := h.Catalog.Inventory(ctx)
	if err != nil {
		utils.JSONError(w, "Failed to compute metrics", http.StatusInternalServerError)
		return
	}
	utils.JSON(w, http.StatusOK, inv)
}
