package catalog_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"plp-bookstore/internal/catalog"
	"plp-bookstore/internal/models"
)

func TestStatementsOrder(t *testing.T) {
	want := []string{
		"find-fiction",
		"find-published-after-1950",
		"find-by-george-orwell",
		"update-alchemist-price",
		"delete-moby-dick",
		"find-in-stock-after-2010",
		"project-title-author-price",
		"sort-price-asc",
		"sort-price-desc",
		"page-1",
		"page-2",
		"avg-price-by-genre",
		"top-author",
		"count-by-decade",
		"create-title-index",
		"create-author-year-index",
		"explain-the-hobbit",
	}

	var got []string
	for _, s := range catalog.Statements() {
		got = append(got, s.Name)
		assert.NotEmpty(t, s.Description, s.Name)
		assert.NotNil(t, s.Exec, s.Name)
	}
	assert.Equal(t, want, got)
}

func TestSelect(t *testing.T) {
	all := catalog.Statements()

	t.Run("empty keeps all", func(t *testing.T) {
		got, err := catalog.Select(all, nil)
		require.NoError(t, err)
		assert.Len(t, got, len(all))
	})

	t.Run("by section", func(t *testing.T) {
		got, err := catalog.Select(all, []string{catalog.SectionAggregation})
		require.NoError(t, err)
		require.Len(t, got, 3)
		assert.Equal(t, "avg-price-by-genre", got[0].Name)
	})

	t.Run("by name keeps catalog order", func(t *testing.T) {
		got, err := catalog.Select(all, []string{"page-2", "find-fiction"})
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "find-fiction", got[0].Name)
		assert.Equal(t, "page-2", got[1].Name)
	})

	t.Run("unknown name", func(t *testing.T) {
		_, err := catalog.Select(all, []string{"drop-everything"})
		assert.Error(t, err)
	})
}

func TestRunner_Run(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("crud section", func(mt *mtest.T) {
		stmts, err := catalog.Select(catalog.Statements(), []string{catalog.SectionCRUD})
		require.NoError(t, err)

		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, "test.books", mtest.FirstBatch,
				bookDoc("To Kill a Mockingbird", "Harper Lee", "Fiction", 1960, 12.99, true)),
			mtest.CreateCursorResponse(0, "test.books", mtest.FirstBatch,
				bookDoc("To Kill a Mockingbird", "Harper Lee", "Fiction", 1960, 12.99, true),
				bookDoc("The Alchemist", "Paulo Coelho", "Fiction", 1988, 10.99, true)),
			mtest.CreateCursorResponse(0, "test.books", mtest.FirstBatch,
				bookDoc("1984", "George Orwell", "Dystopian", 1949, 10.99, true)),
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}, bson.E{Key: "nModified", Value: 1}),
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}),
		)

		var results []catalog.Result
		r := &catalog.Runner{Catalog: catalog.New(mt.Coll)}
		err = r.Run(context.Background(), stmts, func(res catalog.Result) {
			results = append(results, res)
		})
		require.NoError(t, err)
		require.Len(t, results, 5)

		assert.Len(t, results[0].Value, 1)
		assert.Len(t, results[1].Value, 2)
		orwell := results[2].Value.([]models.Book)
		assert.Equal(t, "1984", orwell[0].Title)
		assert.Equal(t, int64(1), results[3].Value.(*mongo.UpdateResult).ModifiedCount)
		assert.Equal(t, int64(1), results[4].Value.(*mongo.DeleteResult).DeletedCount)
		for _, res := range results {
			assert.Equal(t, catalog.SectionCRUD, res.Section)
			assert.Empty(t, res.Error)
		}
	})

	mt.Run("failure does not stop the run", func(mt *mtest.T) {
		stmts, err := catalog.Select(catalog.Statements(), []string{"find-fiction", "find-by-george-orwell"})
		require.NoError(t, err)

		mt.AddMockResponses(
			mtest.CreateCommandErrorResponse(mtest.CommandError{Code: 13, Name: "Unauthorized", Message: "not authorized"}),
			mtest.CreateCursorResponse(0, "test.books", mtest.FirstBatch,
				bookDoc("Animal Farm", "George Orwell", "Political Satire", 1945, 8.50, false)),
		)

		var results []catalog.Result
		r := &catalog.Runner{Catalog: catalog.New(mt.Coll)}
		err = r.Run(context.Background(), stmts, func(res catalog.Result) {
			results = append(results, res)
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "find-fiction")
		require.Len(t, results, 2)
		assert.Error(t, results[0].Err)
		assert.NotEmpty(t, results[0].Error)
		assert.NoError(t, results[1].Err)
	})

	mt.Run("cancelled context stops before the next statement", func(mt *mtest.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		called := false
		r := &catalog.Runner{Catalog: catalog.New(mt.Coll)}
		err := r.Run(ctx, catalog.Statements(), func(catalog.Result) { called = true })
		assert.ErrorIs(t, err, context.Canceled)
		assert.False(t, called)
	})
}
