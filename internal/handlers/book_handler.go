package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/patrickmn/go-cache"
	"go.mongodb.org/mongo-driver/mongo"

	"plp-bookstore/internal/catalog"
	"plp-bookstore/internal/constants"
	"plp-bookstore/internal/models"
	"plp-bookstore/internal/utils"
)

const defaultTimeout = 5 * time.Second

type BookHandler struct {
	Catalog     *catalog.Catalog
	AuditLogger utils.Logger
	// Stats is flushed after every successful mutation.
	Stats   *cache.Cache
	Timeout time.Duration
}

func NewBookHandler(bookColl *mongo.Collection, logger utils.Logger, stats *cache.Cache) *BookHandler {
	return &BookHandler{
		Catalog:     catalog.New(bookColl),
		AuditLogger: logger,
		Stats:       stats,
	}
}

func withTimeout(r *http.Request, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		d = defaultTimeout
	}
	return context.WithTimeout(r.Context(), d)
}

func (h *BookHandler) invalidateStats() {
	if h.Stats != nil {
		h.Stats.Flush()
	}
}

// POST /books
func (h *BookHandler) AddBook(w http.ResponseWriter, r *http.Request) {
	var book models.Book
	if err := json.NewDecoder(r.Body).Decode(&book); err != nil {
		utils.JSONError(w, "Invalid JSON payload", http.StatusBadRequest)
		return
	}
	if err := book.Validate(); err != nil {
		utils.JSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	ctx, cancel := withTimeout(r, h.Timeout)
	defer cancel()

	created, err := h.Catalog.Insert(ctx, book)
	if err != nil {
		utils.JSONError(w, "Insert failed: "+err.Error(), http.StatusInternalServerError)
		return
	}

	h.AuditLogger.Log(ctx, models.BookEntity, constants.Create, created)
	h.invalidateStats()

	utils.JSON(w, http.StatusCreated, created)
}

// GET /books
func (h *BookHandler) GetBooks(w http.ResponseWriter, r *http.Request) {
	q, err := parseQuery(r.URL.Query())
	if err != nil {
		utils.JSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := q.Validate(); err != nil {
		utils.JSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	ctx, cancel := withTimeout(r, h.Timeout)
	defer cancel()

	if len(q.Fields) > 0 {
		rows, err := h.Catalog.FindProjected(ctx, q)
		if err != nil {
			utils.JSONError(w, "Failed to fetch books", http.StatusInternalServerError)
			return
		}
		utils.JSON(w, http.StatusOK, rows)
		return
	}

	books, err := h.Catalog.Find(ctx, q)
	if err != nil {
		utils.JSONError(w, "Failed to fetch books", http.StatusInternalServerError)
		return
	}
	utils.JSON(w, http.StatusOK, books)
}

// GET /books/summaries
func (h *BookHandler) GetSummaries(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := withTimeout(r, h.Timeout)
	defer cancel()

	rows, err := h.Catalog.Summaries(ctx)
	if err != nil {
		utils.JSONError(w, "Failed to fetch books", http.StatusInternalServerError)
		return
	}
	utils.JSON(w, http.StatusOK, rows)
}

// GET /books/in-stock?published_after=2010
func (h *BookHandler) GetInStock(w http.ResponseWriter, r *http.Request) {
	year := 2010
	if v := r.URL.Query().Get("published_after"); v != "" {
		var err error
		if year, err = strconv.Atoi(v); err != nil {
			utils.JSONError(w, "Invalid published_after", http.StatusBadRequest)
			return
		}
	}

	ctx, cancel := withTimeout(r, h.Timeout)
	defer cancel()

	books, err := h.Catalog.FindInStockPublishedAfter(ctx, year)
	if err != nil {
		utils.JSONError(w, "Failed to fetch books", http.StatusInternalServerError)
		return
	}
	utils.JSON(w, http.StatusOK, books)
}

// GET /books/{title}
func (h *BookHandler) GetBook(w http.ResponseWriter, r *http.Request) {
	title := mux.Vars(r)["title"]

	ctx, cancel := withTimeout(r, h.Timeout)
	defer cancel()

	book, err := h.Catalog.FindByTitle(ctx, title)
	if errors.Is(err, mongo.ErrNoDocuments) {
		utils.JSONError(w, "Book not found", http.StatusNotFound)
		return
	}
	if err != nil {
		utils.JSONError(w, "Failed to fetch book", http.StatusInternalServerError)
		return
	}
	utils.JSON(w, http.StatusOK, book)
}

type UpdatePriceRequest struct {
	Price *float64 `json:"price"`
}

// PUT /books/{title}/price
func (h *BookHandler) UpdatePrice(w http.ResponseWriter, r *http.Request) {
	title := mux.Vars(r)["title"]

	var req UpdatePriceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.JSONError(w, "Invalid JSON payload", http.StatusBadRequest)
		return
	}
	if req.Price == nil || *req.Price < 0 {
		utils.JSONError(w, "price must be a non-negative number", http.StatusBadRequest)
		return
	}

	ctx, cancel := withTimeout(r, h.Timeout)
	defer cancel()

	result, err := h.Catalog.UpdatePrice(ctx, title, *req.Price)
	if err != nil {
		utils.JSONError(w, "Update failed: "+err.Error(), http.StatusInternalServerError)
		return
	}
	if result.MatchedCount == 0 {
		utils.JSONError(w, "Book not found", http.StatusNotFound)
		return
	}

	h.AuditLogger.Log(ctx, models.BookEntity, constants.Update, map[string]interface{}{
		"title": title,
		"price": *req.Price,
	})
	if result.ModifiedCount > 0 {
		h.invalidateStats()
	}

	utils.JSON(w, http.StatusOK, map[string]interface{}{
		"message":       "Price updated successfully",
		"matchedCount":  result.MatchedCount,
		"modifiedCount": result.ModifiedCount,
	})
}

// DELETE /books/{title}
func (h *BookHandler) DeleteBook(w http.ResponseWriter, r *http.Request) {
	title := mux.Vars(r)["title"]

	ctx, cancel := withTimeout(r, h.Timeout)
	defer cancel()

	result, err := h.Catalog.DeleteByTitle(ctx, title)
	if err != nil {
		utils.JSONError(w, "Delete failed", http.StatusInternalServerError)
		return
	}
	if result.DeletedCount == 0 {
		utils.JSONError(w, "Book not found", http.StatusNotFound)
		return
	}

	h.AuditLogger.Log(ctx, models.BookEntity, constants.Delete, title)
	h.invalidateStats()

	w.WriteHeader(http.StatusNoContent)
}

// parseQuery maps /books query parameters onto a catalog query. page and
// limit follow the catalog's pagination: 1-based pages of limit books, with a
// default page size when only page is given.
func parseQuery(v url.Values) (catalog.Query, error) {
	q := catalog.Query{
		Genre:     v.Get("genre"),
		Author:    v.Get("author"),
		SortField: v.Get("sort"),
	}

	if s := v.Get("published_after"); s != "" {
		year, err := strconv.Atoi(s)
		if err != nil {
			return q, errors.New("invalid published_after")
		}
		q.PublishedAfter = &year
	}
	if s := v.Get("in_stock"); s != "" {
		inStock, err := strconv.ParseBool(s)
		if err != nil {
			return q, errors.New("invalid in_stock")
		}
		q.InStock = &inStock
	}
	if s := v.Get("fields"); s != "" {
		for _, f := range strings.Split(s, ",") {
			if f = strings.TrimSpace(f); f != "" {
				q.Fields = append(q.Fields, f)
			}
		}
	}

	order, err := models.ParseSortOrder(v.Get("order"))
	if err != nil {
		return q, err
	}
	q.Order = order

	pageStr, limitStr := v.Get("page"), v.Get("limit")
	if pageStr == "" && limitStr == "" {
		return q, nil
	}
	page, size := 1, catalog.DefaultPageSize
	if pageStr != "" {
		if page, err = strconv.Atoi(pageStr); err != nil {
			return q, errors.New("invalid page")
		}
	}
	if limitStr != "" {
		if size, err = strconv.Atoi(limitStr); err != nil {
			return q, errors.New("invalid limit")
		}
	}
	if q.Skip, q.Limit, err = catalog.PageBounds(page, size); err != nil {
		return q, err
	}
	return q, nil
}
