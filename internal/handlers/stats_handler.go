package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"plp-bookstore/internal/catalog"
	"plp-bookstore/internal/utils"
)

const (
	statsAvgPriceKey  = "stats:avg-price-by-genre"
	statsTopAuthorKey = "stats:top-author"
	statsDecadesKey   = "stats:decades"
)

// StatsHandler serves the aggregation pipelines. Results are cached until the
// TTL passes or a mutation flushes the cache.
type StatsHandler struct {
	Catalog *catalog.Catalog
	Cache   *cache.Cache
	Timeout time.Duration
}

func NewStatsCache(ttl time.Duration) *cache.Cache {
	return cache.New(ttl, 2*ttl)
}

func (h *StatsHandler) cached(ctx context.Context, key string, load func(context.Context) (any, error)) (any, error) {
	if h.Cache != nil {
		if v, ok := h.Cache.Get(key); ok {
			zap.S().Debugf("Stats cache hit for %s", key)
			return v, nil
		}
	}
	v, err := load(ctx)
	if err != nil {
		return nil, err
	}
	if h.Cache != nil {
		h.Cache.SetDefault(key, v)
	}
	return v, nil
}

func (h *StatsHandler) serve(w http.ResponseWriter, r *http.Request, key string, load func(context.Context) (any, error)) {
	ctx, cancel := withTimeout(r, h.Timeout)
	defer cancel()

	v, err := h.cached(ctx, key, load)
	if err != nil {
		utils.JSONError(w, "Aggregation failed: "+err.Error(), http.StatusInternalServerError)
		return
	}
	utils.JSON(w, http.StatusOK, v)
}

// GET /stats/genres/avg-price
func (h *StatsHandler) AveragePriceByGenre(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, statsAvgPriceKey, func(ctx context.Context) (any, error) {
		return h.Catalog.AveragePriceByGenre(ctx)
	})
}

// GET /stats/decades
func (h *StatsHandler) CountByDecade(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, statsDecadesKey, func(ctx context.Context) (any, error) {
		return h.Catalog.CountByDecade(ctx)
	})
}

// GET /stats/authors/top
func (h *StatsHandler) TopAuthor(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := withTimeout(r, h.Timeout)
	defer cancel()

	v, err := h.cached(ctx, statsTopAuthorKey, func(ctx context.Context) (any, error) {
		top, ok, err := h.Catalog.TopAuthor(ctx)
		if err != nil || !ok {
			return nil, err
		}
		return top, nil
	})
	if err != nil {
		utils.JSONError(w, "Aggregation failed: "+err.Error(), http.StatusInternalServerError)
		return
	}
	if v == nil {
		utils.JSONError(w, "No books found", http.StatusNotFound)
		return
	}
	utils.JSON(w, http.StatusOK, v)
}
