package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"plp-bookstore/internal/catalog"
	"plp-bookstore/internal/handlers"
)

func indexRouter(h *handlers.IndexHandler) *mux.Router {
	router := mux.NewRouter()
	router.HandleFunc("/admin/indexes", h.CreateIndexes).Methods("POST")
	router.HandleFunc("/admin/indexes", h.ListIndexes).Methods("GET")
	router.HandleFunc("/admin/explain", h.Explain).Methods("GET")
	return router
}

func TestIndexHandler(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("create indexes", func(mt *mtest.T) {
		h := &handlers.IndexHandler{Catalog: catalog.New(mt.Coll)}
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		w := httptest.NewRecorder()
		indexRouter(h).ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/admin/indexes", nil))

		require.Equal(t, http.StatusCreated, w.Code)
		assert.JSONEq(t, `{"indexes":["title_1","author_1_published_year_-1"]}`, w.Body.String())
	})

	mt.Run("list indexes", func(mt *mtest.T) {
		h := &handlers.IndexHandler{Catalog: catalog.New(mt.Coll)}
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "test.books", mtest.FirstBatch,
			bson.D{{Key: "name", Value: "_id_"}},
		))

		w := httptest.NewRecorder()
		indexRouter(h).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin/indexes", nil))

		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"indexes":["_id_"]}`, w.Body.String())
	})

	mt.Run("explain", func(mt *mtest.T) {
		h := &handlers.IndexHandler{Catalog: catalog.New(mt.Coll)}
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "queryPlanner", Value: bson.D{
				{Key: "winningPlan", Value: bson.D{{Key: "stage", Value: "COLLSCAN"}}},
			}},
			bson.E{Key: "executionStats", Value: bson.D{
				{Key: "nReturned", Value: 1},
				{Key: "totalDocsExamined", Value: 15},
			}},
		))

		w := httptest.NewRecorder()
		indexRouter(h).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin/explain?title=The+Hobbit", nil))

		require.Equal(t, http.StatusOK, w.Code)
		var body struct {
			Summary struct {
				WinningStage      string `json:"winning_stage"`
				UsesIndex         bool   `json:"uses_index"`
				TotalDocsExamined int64  `json:"total_docs_examined"`
			} `json:"summary"`
		}
		require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
		assert.Equal(t, "COLLSCAN", body.Summary.WinningStage)
		assert.False(t, body.Summary.UsesIndex)
		assert.Equal(t, int64(15), body.Summary.TotalDocsExamined)
	})

	mt.Run("explain needs a title", func(mt *mtest.T) {
		h := &handlers.IndexHandler{Catalog: catalog.New(mt.Coll)}

		w := httptest.NewRecorder()
		indexRouter(h).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin/explain", nil))
		assert.Equal(t, http.StatusBadRequest, w.Code)

		w = httptest.NewRecorder()
		indexRouter(h).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin/explain?title=X&verbosity=all", nil))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestMetricsHandler_GetMetrics(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("inventory totals", func(mt *mtest.T) {
		h := &handlers.MetricsHandler{Catalog: catalog.New(mt.Coll)}
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "test.books", mtest.FirstBatch,
			bson.D{
				{Key: "_id", Value: nil},
				{Key: "total", Value: 15},
				{Key: "inStock", Value: 10},
				{Key: "stockValue", Value: 131.5},
				{Key: "genres", Value: bson.A{"Fiction"}},
			},
		))

		router := mux.NewRouter()
		router.HandleFunc("/admin/metrics", h.GetMetrics).Methods("GET")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin/metrics", nil))

		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"total_books":15,"in_stock":10,"stock_value":131.5,"distinct_genres":1}`, w.Body.String())
	})
}
