package catalog_test

import (
	"context"
	"os"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"plp-bookstore/internal/catalog"
	"plp-bookstore/internal/models"
	"plp-bookstore/internal/seed"
)

// These tests need a real server: BOOKSTORE_TEST_MONGO_URI=mongodb://localhost:27017
func seededCatalog(t *testing.T) (*catalog.Catalog, []models.Book) {
	t.Helper()

	uri := os.Getenv("BOOKSTORE_TEST_MONGO_URI")
	if uri == "" {
		t.Skip("BOOKSTORE_TEST_MONGO_URI not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	require.NoError(t, err)

	database := client.Database("bookstore_test_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:12])
	t.Cleanup(func() {
		_ = database.Drop(context.Background())
		_ = client.Disconnect(context.Background())
	})

	books, err := seed.Load("")
	require.NoError(t, err)
	_, err = seed.Insert(ctx, database.Collection("books"), books, true)
	require.NoError(t, err)

	return catalog.New(database.Collection("books")), books
}

func titles(books []models.Book) []string {
	out := make([]string, 0, len(books))
	for _, b := range books {
		out = append(out, b.Title)
	}
	sort.Strings(out)
	return out
}

func TestIntegration_FilterQueries(t *testing.T) {
	c, _ := seededCatalog(t)
	ctx := context.Background()

	fiction, err := c.FindByGenre(ctx, "Fiction")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"The Alchemist", "The Catcher in the Rye", "The Great Gatsby",
		"The Midnight Library", "To Kill a Mockingbird",
	}, titles(fiction))

	after1950, err := c.FindPublishedAfter(ctx, 1950)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"Project Hail Mary", "The Alchemist", "The Catcher in the Rye",
		"The Lord of the Rings", "The Midnight Library", "To Kill a Mockingbird",
	}, titles(after1950))

	orwell, err := c.FindByAuthor(ctx, "George Orwell")
	require.NoError(t, err)
	assert.Equal(t, []string{"1984", "Animal Farm", "Down and Out in Paris and London"}, titles(orwell))

	recent, err := c.FindInStockPublishedAfter(ctx, 2010)
	require.NoError(t, err)
	assert.Equal(t, []string{"The Midnight Library"}, titles(recent))

	summaries, err := c.Summaries(ctx)
	require.NoError(t, err)
	assert.Len(t, summaries, 15)

	asc, err := c.SortedByPrice(ctx, models.Ascending)
	require.NoError(t, err)
	assert.Equal(t, "Pride and Prejudice", asc[0].Title)
	desc, err := c.SortedByPrice(ctx, models.Descending)
	require.NoError(t, err)
	assert.Equal(t, "The Lord of the Rings", desc[0].Title)
	for i := 1; i < len(asc); i++ {
		assert.LessOrEqual(t, asc[i-1].Price, asc[i].Price)
	}
}

func TestIntegration_Pagination(t *testing.T) {
	c, books := seededCatalog(t)
	ctx := context.Background()

	seen := map[string]bool{}
	var union []models.Book
	for page := 1; ; page++ {
		rows, err := c.Page(ctx, page, catalog.DefaultPageSize)
		require.NoError(t, err)
		if len(rows) == 0 {
			break
		}
		for _, b := range rows {
			assert.False(t, seen[b.ID.Hex()], "%s appears on more than one page", b.Title)
			seen[b.ID.Hex()] = true
		}
		union = append(union, rows...)
	}

	assert.Len(t, union, len(books))
	for i := 1; i < len(union); i++ {
		assert.Less(t, union[i-1].ID.Hex(), union[i].ID.Hex())
	}
}

func TestIntegration_Aggregations(t *testing.T) {
	c, books := seededCatalog(t)
	ctx := context.Background()

	avg, err := c.AveragePriceByGenre(ctx)
	require.NoError(t, err)
	byGenre := map[string]float64{}
	for _, row := range avg {
		byGenre[row.Genre] = row.AvgPrice
	}
	assert.Len(t, byGenre, 9)
	assert.InDelta(t, 11.79, byGenre["Fiction"], 1e-9)
	assert.InDelta(t, 11.245, byGenre["Dystopian"], 1e-9)
	assert.InDelta(t, 17.49, byGenre["Fantasy"], 1e-9)
	assert.InDelta(t, 7.99, byGenre["Romance"], 1e-9)

	top, ok, err := c.TopAuthor(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, models.AuthorCount{Author: "George Orwell", Count: 3}, top)

	decades, err := c.CountByDecade(ctx)
	require.NoError(t, err)
	assert.Equal(t, []models.DecadeCount{
		{Decade: "1810s", Count: 1},
		{Decade: "1840s", Count: 1},
		{Decade: "1850s", Count: 1},
		{Decade: "1920s", Count: 1},
		{Decade: "1930s", Count: 3},
		{Decade: "1940s", Count: 2},
		{Decade: "1950s", Count: 2},
		{Decade: "1960s", Count: 1},
		{Decade: "1980s", Count: 1},
		{Decade: "2020s", Count: 2},
	}, decades)

	perDecade := map[string]int{}
	for _, b := range books {
		perDecade[models.DecadeLabel(b.PublishedYear)]++
	}
	for _, d := range decades {
		assert.Equal(t, perDecade[d.Decade], d.Count, d.Decade)
	}
}

func TestIntegration_MutationsAreIdempotent(t *testing.T) {
	c, _ := seededCatalog(t)
	ctx := context.Background()

	res, err := c.UpdatePrice(ctx, "The Alchemist", 12.99)
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.ModifiedCount)
	res, err = c.UpdatePrice(ctx, "The Alchemist", 12.99)
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.MatchedCount)
	assert.Equal(t, int64(0), res.ModifiedCount)

	alchemist, err := c.FindByTitle(ctx, "The Alchemist")
	require.NoError(t, err)
	assert.Equal(t, 12.99, alchemist.Price)

	del, err := c.DeleteByTitle(ctx, "Moby Dick")
	require.NoError(t, err)
	assert.Equal(t, int64(1), del.DeletedCount)
	del, err = c.DeleteByTitle(ctx, "Moby Dick")
	require.NoError(t, err)
	assert.Equal(t, int64(0), del.DeletedCount)

	_, err = c.FindByTitle(ctx, "Moby Dick")
	assert.ErrorIs(t, err, mongo.ErrNoDocuments)
}

func TestIntegration_IndexesKeepResults(t *testing.T) {
	c, _ := seededCatalog(t)
	ctx := context.Background()

	before, err := c.FindByAuthor(ctx, "J.R.R. Tolkien")
	require.NoError(t, err)
	_, summary, err := c.ExplainFindByTitle(ctx, "The Hobbit", "")
	require.NoError(t, err)
	assert.False(t, summary.UsesIndex)
	assert.Equal(t, int64(1), summary.NReturned)

	names, err := c.EnsureIndexes(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{catalog.TitleIndexName, catalog.AuthorYearIndexName}, names)

	after, err := c.FindByAuthor(ctx, "J.R.R. Tolkien")
	require.NoError(t, err)
	assert.Equal(t, titles(before), titles(after))

	_, summary, err = c.ExplainFindByTitle(ctx, "The Hobbit", "")
	require.NoError(t, err)
	assert.True(t, summary.UsesIndex)
	assert.Equal(t, catalog.TitleIndexName, summary.IndexName)
	assert.Equal(t, int64(1), summary.NReturned)

	listed, err := c.ListIndexes(ctx)
	require.NoError(t, err)
	assert.Subset(t, listed, []string{"_id_", catalog.TitleIndexName, catalog.AuthorYearIndexName})
}
