package catalog

import (
	"fmt"
	"math"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"plp-bookstore/internal/models"
)

// The builders below return ordered documents so that the exact request sent
// to the server can be asserted on without one.

func GenreFilter(genre string) bson.D {
	return bson.D{{Key: models.FieldGenre, Value: genre}}
}

func AuthorFilter(author string) bson.D {
	return bson.D{{Key: models.FieldAuthor, Value: author}}
}

func TitleFilter(title string) bson.D {
	return bson.D{{Key: models.FieldTitle, Value: title}}
}

func PublishedAfterFilter(year int) bson.D {
	return bson.D{{Key: models.FieldPublishedYear, Value: bson.D{{Key: "$gt", Value: year}}}}
}

func InStockPublishedAfterFilter(year int) bson.D {
	return bson.D{
		{Key: models.FieldInStock, Value: true},
		{Key: models.FieldPublishedYear, Value: bson.D{{Key: "$gt", Value: year}}},
	}
}

// SummaryProjection keeps title, author and price and drops _id.
func SummaryProjection() bson.D {
	return bson.D{
		{Key: models.FieldTitle, Value: 1},
		{Key: models.FieldAuthor, Value: 1},
		{Key: models.FieldPrice, Value: 1},
		{Key: models.FieldID, Value: 0},
	}
}

func PriceSort(order models.SortOrder) bson.D {
	return bson.D{{Key: models.FieldPrice, Value: int(order)}}
}

func SetPriceUpdate(price float64) bson.D {
	return bson.D{{Key: "$set", Value: bson.D{{Key: models.FieldPrice, Value: price}}}}
}

// PageBounds turns a 1-based page number into skip/limit values.
func PageBounds(page, size int) (skip, limit int64, err error) {
	if page < 1 {
		return 0, 0, fmt.Errorf("page must be >= 1, got %d", page)
	}
	if size < 1 {
		return 0, 0, fmt.Errorf("page size must be >= 1, got %d", size)
	}
	if int64(page-1) > math.MaxInt64/int64(size) {
		return 0, 0, fmt.Errorf("page must be <= %d for page size %d, got %d", math.MaxInt64/int64(size)+1, size, page)
	}
	return int64(page-1) * int64(size), int64(size), nil
}

func AveragePriceByGenrePipeline() mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$" + models.FieldGenre},
			{Key: "avgPrice", Value: bson.D{{Key: "$avg", Value: "$" + models.FieldPrice}}},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "_id", Value: 1}}}},
	}
}

// TopAuthorPipeline counts books per author and keeps the largest group.
// Ties go to the alphabetically first author.
func TopAuthorPipeline() mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$" + models.FieldAuthor},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "count", Value: -1}, {Key: "_id", Value: 1}}}},
		{{Key: "$limit", Value: 1}},
	}
}

// DecadeExpression renders published_year as "<decade>s", e.g. 1949 -> "1940s".
func DecadeExpression() bson.D {
	year := "$" + models.FieldPublishedYear
	return bson.D{{Key: "$concat", Value: bson.A{
		bson.D{{Key: "$toString", Value: bson.D{{Key: "$subtract", Value: bson.A{
			year,
			bson.D{{Key: "$mod", Value: bson.A{year, 10}}},
		}}}}},
		"s",
	}}}
}

func CountByDecadePipeline() mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: DecadeExpression()},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "_id", Value: 1}}}},
	}
}

// InventoryPipeline totals the collection in a single pass.
func InventoryPipeline() mongo.Pipeline {
	inStock := bson.D{{Key: "$cond", Value: bson.A{"$" + models.FieldInStock, 1, 0}}}
	stockValue := bson.D{{Key: "$cond", Value: bson.A{"$" + models.FieldInStock, "$" + models.FieldPrice, 0}}}
	return mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: nil},
			{Key: "total", Value: bson.D{{Key: "$sum", Value: 1}}},
			{Key: "inStock", Value: bson.D{{Key: "$sum", Value: inStock}}},
			{Key: "stockValue", Value: bson.D{{Key: "$sum", Value: stockValue}}},
			{Key: "genres", Value: bson.D{{Key: "$addToSet", Value: "$" + models.FieldGenre}}},
		}}},
	}
}

func TitleIndexModel() mongo.IndexModel {
	return mongo.IndexModel{Keys: bson.D{{Key: models.FieldTitle, Value: 1}}}
}

func AuthorYearIndexModel() mongo.IndexModel {
	return mongo.IndexModel{Keys: bson.D{
		{Key: models.FieldAuthor, Value: 1},
		{Key: models.FieldPublishedYear, Value: -1},
	}}
}

const (
	TitleIndexName      = "title_1"
	AuthorYearIndexName = "author_1_published_year_-1"
)

const (
	VerbosityQueryPlanner      = "queryPlanner"
	VerbosityExecutionStats    = "executionStats"
	VerbosityAllPlansExecution = "allPlansExecution"
)

var validVerbosity = map[string]bool{
	VerbosityQueryPlanner:      true,
	VerbosityExecutionStats:    true,
	VerbosityAllPlansExecution: true,
}

func IsValidVerbosity(v string) bool {
	return validVerbosity[v]
}

// ExplainFindCommand wraps a find on collection in an explain command.
func ExplainFindCommand(collection string, filter bson.D, verbosity string) bson.D {
	return bson.D{
		{Key: "explain", Value: bson.D{
			{Key: "find", Value: collection},
			{Key: "filter", Value: filter},
		}},
		{Key: "verbosity", Value: verbosity},
	}
}

// Query is the general find used by the HTTP and CLI layers. Zero values mean
// "not set".
type Query struct {
	Genre          string
	Author         string
	Title          string
	PublishedAfter *int
	InStock        *bool
	Fields         []string
	SortField      string
	Order          models.SortOrder
	Skip           int64
	Limit          int64
}

func (q Query) Filter() bson.D {
	filter := bson.D{}
	if q.Title != "" {
		filter = append(filter, bson.E{Key: models.FieldTitle, Value: q.Title})
	}
	if q.Genre != "" {
		filter = append(filter, bson.E{Key: models.FieldGenre, Value: q.Genre})
	}
	if q.Author != "" {
		filter = append(filter, bson.E{Key: models.FieldAuthor, Value: q.Author})
	}
	if q.InStock != nil {
		filter = append(filter, bson.E{Key: models.FieldInStock, Value: *q.InStock})
	}
	if q.PublishedAfter != nil {
		filter = append(filter, bson.E{Key: models.FieldPublishedYear, Value: bson.D{{Key: "$gt", Value: *q.PublishedAfter}}})
	}
	return filter
}

func (q Query) Projection() bson.D {
	if len(q.Fields) == 0 {
		return nil
	}
	projection := bson.D{}
	for _, f := range q.Fields {
		projection = append(projection, bson.E{Key: f, Value: 1})
	}
	return append(projection, bson.E{Key: models.FieldID, Value: 0})
}

func (q Query) Validate() error {
	seen := make(map[string]bool, len(q.Fields))
	for _, f := range q.Fields {
		if !models.IsValidBookField(f) {
			return fmt.Errorf("unknown field %q", f)
		}
		if seen[f] {
			return fmt.Errorf("field %q listed twice", f)
		}
		seen[f] = true
	}
	if q.SortField != "" && !models.IsValidBookField(q.SortField) {
		return fmt.Errorf("unknown sort field %q", q.SortField)
	}
	if q.Skip < 0 || q.Limit < 0 {
		return fmt.Errorf("skip and limit must not be negative")
	}
	return nil
}

func (q Query) FindOptions() *options.FindOptions {
	opts := options.Find()
	if p := q.Projection(); p != nil {
		opts.SetProjection(p)
	}
	sort := bson.D{}
	if q.SortField != "" {
		order := q.Order
		if order == 0 {
			order = models.Ascending
		}
		sort = append(sort, bson.E{Key: q.SortField, Value: int(order)})
	}
	// Paged reads need a total order or pages may overlap.
	if q.Skip > 0 || q.Limit > 0 {
		sort = append(sort, bson.E{Key: models.FieldID, Value: 1})
	}
	if len(sort) > 0 {
		opts.SetSort(sort)
	}
	if q.Skip > 0 {
		opts.SetSkip(q.Skip)
	}
	if q.Limit > 0 {
		opts.SetLimit(q.Limit)
	}
	return opts
}
