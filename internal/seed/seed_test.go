package seed

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"plp-bookstore/internal/models"
)

func TestLoadDefault(t *testing.T) {
	books, err := Load("")
	require.NoError(t, err)
	require.Len(t, books, 15)

	byTitle := map[string]models.Book{}
	for _, b := range books {
		byTitle[b.Title] = b
	}

	assert.Equal(t, models.Book{
		Title: "1984", Author: "George Orwell", Genre: "Dystopian",
		PublishedYear: 1949, Price: 10.99, InStock: true,
	}, byTitle["1984"])
	assert.Contains(t, byTitle, "The Alchemist")
	assert.Contains(t, byTitle, "Moby Dick")
	assert.Contains(t, byTitle, "The Hobbit")
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "books.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
books:
  - title: Dune
    author: Frank Herbert
    genre: Science Fiction
    published_year: 1965
    price: 9.99
    in_stock: true
`), 0o600))

	books, err := Load(path)
	require.NoError(t, err)
	require.Len(t, books, 1)
	assert.Equal(t, "Frank Herbert", books[0].Author)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"empty", "books: []"},
		{"unknown field", "books:\n  - title: X\n    author: Y\n    published_year: 1\n    isbn: 123\n"},
		{"missing title", "books:\n  - author: Y\n    published_year: 1\n"},
		{"missing author", "books:\n  - title: X\n    published_year: 1\n"},
		{"bad year", "books:\n  - title: X\n    author: Y\n"},
		{"negative price", "books:\n  - title: X\n    author: Y\n    published_year: 1\n    price: -2\n"},
		{"not yaml", "books: [\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data))
			assert.Error(t, err)
		})
	}
}

func TestInsert(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("drop and insert", func(mt *mtest.T) {
		books, err := Load("")
		require.NoError(t, err)

		mt.AddMockResponses(
			mtest.CreateSuccessResponse(),
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: len(books)}),
		)

		n, err := Insert(context.Background(), mt.Coll, books, true)
		require.NoError(t, err)
		assert.Equal(t, len(books), n)
	})

	mt.Run("insert failure", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code: 11000, Name: "DuplicateKey", Message: "duplicate key",
		}))

		_, err := Insert(context.Background(), mt.Coll, []models.Book{{Title: "X", Author: "Y", PublishedYear: 1}}, false)
		assert.Error(t, err)
	})
}
