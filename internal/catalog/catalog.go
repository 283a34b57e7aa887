// Package catalog holds the bookstore queries: filters, mutations, aggregation
// pipelines and index management against the books collection.
package catalog

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"plp-bookstore/internal/models"
)

type Catalog struct {
	Books *mongo.Collection
}

func New(books *mongo.Collection) *Catalog {
	return &Catalog{Books: books}
}

func decodeAll[T any](ctx context.Context, cursor *mongo.Cursor) ([]T, error) {
	defer cursor.Close(ctx)

	results := []T{}
	if err := cursor.All(ctx, &results); err != nil {
		return nil, fmt.Errorf("decode results: %w", err)
	}
	return results, nil
}

func (c *Catalog) findBooks(ctx context.Context, filter any, opts ...*options.FindOptions) ([]models.Book, error) {
	cursor, err := c.Books.Find(ctx, filter, opts...)
	if err != nil {
		return nil, fmt.Errorf("find books: %w", err)
	}
	return decodeAll[models.Book](ctx, cursor)
}

func (c *Catalog) FindByGenre(ctx context.Context, genre string) ([]models.Book, error) {
	return c.findBooks(ctx, GenreFilter(genre))
}

func (c *Catalog) FindPublishedAfter(ctx context.Context, year int) ([]models.Book, error) {
	return c.findBooks(ctx, PublishedAfterFilter(year))
}

func (c *Catalog) FindByAuthor(ctx context.Context, author string) ([]models.Book, error) {
	return c.findBooks(ctx, AuthorFilter(author))
}

func (c *Catalog) FindInStockPublishedAfter(ctx context.Context, year int) ([]models.Book, error) {
	return c.findBooks(ctx, InStockPublishedAfterFilter(year))
}

// FindByTitle returns mongo.ErrNoDocuments when no book has the title.
func (c *Catalog) FindByTitle(ctx context.Context, title string) (models.Book, error) {
	var book models.Book
	err := c.Books.FindOne(ctx, TitleFilter(title)).Decode(&book)
	return book, err
}

func (c *Catalog) Summaries(ctx context.Context) ([]models.BookSummary, error) {
	cursor, err := c.Books.Find(ctx, bson.D{}, options.Find().SetProjection(SummaryProjection()))
	if err != nil {
		return nil, fmt.Errorf("find summaries: %w", err)
	}
	return decodeAll[models.BookSummary](ctx, cursor)
}

func (c *Catalog) SortedByPrice(ctx context.Context, order models.SortOrder) ([]models.Book, error) {
	return c.findBooks(ctx, bson.D{}, options.Find().SetSort(PriceSort(order)))
}

// Page returns the 1-based page of the collection in _id order.
func (c *Catalog) Page(ctx context.Context, page, size int) ([]models.Book, error) {
	skip, limit, err := PageBounds(page, size)
	if err != nil {
		return nil, err
	}
	opts := options.Find().
		SetSort(bson.D{{Key: models.FieldID, Value: 1}}).
		SetSkip(skip).
		SetLimit(limit)
	return c.findBooks(ctx, bson.D{}, opts)
}

func (c *Catalog) Find(ctx context.Context, q Query) ([]models.Book, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	return c.findBooks(ctx, q.Filter(), q.FindOptions())
}

// FindProjected is Find for queries with a field list; rows only carry the
// projected fields.
func (c *Catalog) FindProjected(ctx context.Context, q Query) ([]bson.M, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	cursor, err := c.Books.Find(ctx, q.Filter(), q.FindOptions())
	if err != nil {
		return nil, fmt.Errorf("find books: %w", err)
	}
	return decodeAll[bson.M](ctx, cursor)
}

// Insert adds a single validated book and returns it with its new _id.
func (c *Catalog) Insert(ctx context.Context, book models.Book) (models.Book, error) {
	if err := book.Validate(); err != nil {
		return models.Book{}, err
	}
	res, err := c.Books.InsertOne(ctx, book)
	if err != nil {
		return models.Book{}, fmt.Errorf("insert %q: %w", book.Title, err)
	}
	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		book.ID = id
	}
	return book, nil
}

// UpdatePrice sets the price of the first book with the given title. A missing
// title is not an error; MatchedCount is zero.
func (c *Catalog) UpdatePrice(ctx context.Context, title string, price float64) (*mongo.UpdateResult, error) {
	if price < 0 {
		return nil, fmt.Errorf("price must not be negative, got %v", price)
	}
	res, err := c.Books.UpdateOne(ctx, TitleFilter(title), SetPriceUpdate(price))
	if err != nil {
		return nil, fmt.Errorf("update price of %q: %w", title, err)
	}
	return res, nil
}

// DeleteByTitle removes the first book with the given title.
func (c *Catalog) DeleteByTitle(ctx context.Context, title string) (*mongo.DeleteResult, error) {
	res, err := c.Books.DeleteOne(ctx, TitleFilter(title))
	if err != nil {
		return nil, fmt.Errorf("delete %q: %w", title, err)
	}
	return res, nil
}

func aggregate[T any](ctx context.Context, coll *mongo.Collection, pipeline mongo.Pipeline) ([]T, error) {
	cursor, err := coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("aggregate: %w", err)
	}
	return decodeAll[T](ctx, cursor)
}

func (c *Catalog) AveragePriceByGenre(ctx context.Context) ([]models.GenreAveragePrice, error) {
	return aggregate[models.GenreAveragePrice](ctx, c.Books, AveragePriceByGenrePipeline())
}

// TopAuthor reports false when the collection is empty.
func (c *Catalog) TopAuthor(ctx context.Context) (models.AuthorCount, bool, error) {
	rows, err := aggregate[models.AuthorCount](ctx, c.Books, TopAuthorPipeline())
	if err != nil || len(rows) == 0 {
		return models.AuthorCount{}, false, err
	}
	return rows[0], true, nil
}

func (c *Catalog) CountByDecade(ctx context.Context) ([]models.DecadeCount, error) {
	return aggregate[models.DecadeCount](ctx, c.Books, CountByDecadePipeline())
}

func (c *Catalog) Inventory(ctx context.Context) (models.InventoryMetrics, error) {
	rows, err := aggregate[struct {
		Total      int64    `bson:"total"`
		InStock    int64    `bson:"inStock"`
		StockValue float64  `bson:"stockValue"`
		Genres     []string `bson:"genres"`
	}](ctx, c.Books, InventoryPipeline())
	if err != nil || len(rows) == 0 {
		return models.InventoryMetrics{}, err
	}
	return models.InventoryMetrics{
		TotalBooks:     rows[0].Total,
		InStock:        rows[0].InStock,
		StockValue:     rows[0].StockValue,
		DistinctGenres: len(rows[0].Genres),
	}, nil
}

func (c *Catalog) createIndex(ctx context.Context, model mongo.IndexModel) (string, error) {
	name, err := c.Books.Indexes().CreateOne(ctx, model)
	if err != nil {
		return "", fmt.Errorf("create index: %w", err)
	}
	return name, nil
}

func (c *Catalog) CreateTitleIndex(ctx context.Context) (string, error) {
	return c.createIndex(ctx, TitleIndexModel())
}

func (c *Catalog) CreateAuthorYearIndex(ctx context.Context) (string, error) {
	return c.createIndex(ctx, AuthorYearIndexModel())
}

// EnsureIndexes creates the title and author/year indexes in one command.
// Existing indexes with the same keys are left untouched by the server.
func (c *Catalog) EnsureIndexes(ctx context.Context) ([]string, error) {
	names, err := c.Books.Indexes().CreateMany(ctx, []mongo.IndexModel{TitleIndexModel(), AuthorYearIndexModel()})
	if err != nil {
		return nil, fmt.Errorf("create indexes: %w", err)
	}
	return names, nil
}

func (c *Catalog) ListIndexes(ctx context.Context) ([]string, error) {
	cursor, err := c.Books.Indexes().List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list indexes: %w", err)
	}
	specs, err := decodeAll[struct {
		Name string `bson:"name"`
	}](ctx, cursor)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(specs))
	for _, s := range specs {
		names = append(names, s.Name)
	}
	return names, nil
}
