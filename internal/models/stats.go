package models

import (
	"fmt"
	"strings"
)

type GenreAveragePrice struct {
	Genre    string  `json:"genre" bson:"_id"`
	AvgPrice float64 `json:"avg_price" bson:"avgPrice"`
}

type AuthorCount struct {
	Author string `json:"author" bson:"_id"`
	Count  int    `json:"count" bson:"count"`
}

type DecadeCount struct {
	Decade string `json:"decade" bson:"_id"`
	Count  int    `json:"count" bson:"count"`
}

type InventoryMetrics struct {
	TotalBooks     int64   `json:"total_books"`
	InStock        int64   `json:"in_stock"`
	StockValue     float64 `json:"stock_value"`
	DistinctGenres int     `json:"distinct_genres"`
}

// DecadeLabel mirrors the $concat/$toString/$mod expression used by the decade
// pipeline, so 1949 becomes "1940s".
func DecadeLabel(year int) string {
	return fmt.Sprintf("%ds", year-year%10)
}

type SortOrder int

const (
	Ascending  SortOrder = 1
	Descending SortOrder = -1
)

func ParseSortOrder(s string) (SortOrder, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "asc", "ascending", "1":
		return Ascending, nil
	case "desc", "descending", "-1":
		return Descending, nil
	}
	return 0, fmt.Errorf("invalid sort order %q", s)
}
