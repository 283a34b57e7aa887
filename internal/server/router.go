package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/patrickmn/go-cache"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.mongodb.org/mongo-driver/mongo"

	"plp-bookstore/internal/catalog"
	"plp-bookstore/internal/handlers"
	"plp-bookstore/internal/middleware"
	"plp-bookstore/internal/utils"
)

type Deps struct {
	Books       *mongo.Collection
	AuditLogger utils.Logger
	StatsCache  *cache.Cache
	Timeout     time.Duration
	Credentials struct {
		UserId       string
		Username     string
		UserPassword string
	}
	// Ping backs /healthz.
	Ping func(ctx context.Context) error
}

// NewRouter wires every bookstore route. Reads are public; mutations and
// /admin need a bearer token from /login.
func NewRouter(d Deps) *mux.Router {
	cat := catalog.New(d.Books)

	r := mux.NewRouter()
	r.Use(middleware.RequestLogger)

	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	api := r.PathPrefix("/").Subrouter()
	api.Use(middleware.JSONMiddleware)

	api.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if d.Ping != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := d.Ping(ctx); err != nil {
				utils.JSONError(w, "database unavailable", http.StatusServiceUnavailable)
				return
			}
		}
		utils.JSON(w, http.StatusOK, map[string]string{"status": "OK"})
	}).Methods(http.MethodGet)

	authHandler := &handlers.AuthHandler{ConfigCreds: d.Credentials}
	api.HandleFunc("/login", authHandler.Login).Methods(http.MethodPost)

	bookHandler := handlers.NewBookHandler(d.Books, d.AuditLogger, d.StatsCache)
	bookHandler.Timeout = d.Timeout
	api.HandleFunc("/books", bookHandler.GetBooks).Methods(http.MethodGet)
	api.HandleFunc("/books/summaries", bookHandler.GetSummaries).Methods(http.MethodGet)
	api.HandleFunc("/books/in-stock", bookHandler.GetInStock).Methods(http.MethodGet)
	api.HandleFunc("/books/{title}", bookHandler.GetBook).Methods(http.MethodGet)

	statsHandler := &handlers.StatsHandler{Catalog: cat, Cache: d.StatsCache, Timeout: d.Timeout}
	api.HandleFunc("/stats/genres/avg-price", statsHandler.AveragePriceByGenre).Methods(http.MethodGet)
	api.HandleFunc("/stats/authors/top", statsHandler.TopAuthor).Methods(http.MethodGet)
	api.HandleFunc("/stats/decades", statsHandler.CountByDecade).Methods(http.MethodGet)

	protected := api.PathPrefix("/").Subrouter()
	protected.Use(middleware.JWTAuthMiddleware)

	protected.HandleFunc("/books", bookHandler.AddBook).Methods(http.MethodPost)
	protected.HandleFunc("/books/{title}/price", bookHandler.UpdatePrice).Methods(http.MethodPut)
	protected.HandleFunc("/books/{title}", bookHandler.DeleteBook).Methods(http.MethodDelete)

	indexHandler := &handlers.IndexHandler{Catalog: cat, AuditLogger: d.AuditLogger, Timeout: d.Timeout}
	protected.HandleFunc("/admin/indexes", indexHandler.CreateIndexes).Methods(http.MethodPost)
	protected.HandleFunc("/admin/indexes", indexHandler.ListIndexes).Methods(http.MethodGet)
	protected.HandleFunc("/admin/explain", indexHandler.Explain).Methods(http.MethodGet)

	metricsHandler := &handlers.MetricsHandler{Catalog: cat, Timeout: d.Timeout}
	protected.HandleFunc("/admin/metrics", metricsHandler.GetMetrics).Methods(http.MethodGet)

	return r
}
