package seed

import (
	"bytes"
	"context"
	_ "embed"
	"errors"
	"fmt"
	"os"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"plp-bookstore/internal/models"
)

//go:embed books.yaml
var defaultBooks []byte

type file struct {
	Books []models.Book `yaml:"books"`
}

// Load reads a seed file. An empty path loads the embedded default dataset.
func Load(path string) ([]models.Book, error) {
	data := defaultBooks
	if path != "" {
		var err error
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read seed file: %w", err)
		}
	}
	return Parse(data)
}

func Parse(data []byte) ([]models.Book, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var f file
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("parse seed file: %w", err)
	}
	if len(f.Books) == 0 {
		return nil, errors.New("seed file has no books")
	}
	for i, b := range f.Books {
		if err := b.Validate(); err != nil {
			return nil, fmt.Errorf("book %d: %w", i, err)
		}
	}
	return f.Books, nil
}

// Insert writes books into coll, dropping the collection first when drop is
// set. It returns the number of inserted documents.
func Insert(ctx context.Context, coll *mongo.Collection, books []models.Book, drop bool) (int, error) {
	if drop {
		if err := coll.Drop(ctx); err != nil {
			return 0, fmt.Errorf("drop %s: %w", coll.Name(), err)
		}
		zap.S().Infof("Dropped collection %s", coll.Name())
	}

	docs := make([]interface{}, len(books))
	for i := range books {
		docs[i] = books[i]
	}
	res, err := coll.InsertMany(ctx, docs)
	if err != nil {
		return 0, fmt.Errorf("insert books: %w", err)
	}

	zap.S().Infof("Inserted %d books into %s", len(res.InsertedIDs), coll.Name())
	return len(res.InsertedIDs), nil
}
