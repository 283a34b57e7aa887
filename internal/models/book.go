package models

import (
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Book struct {
	ID            primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty" yaml:"-"`
	Title         string             `json:"title" bson:"title" yaml:"title"`
	Author        string             `json:"author" bson:"author" yaml:"author"`
	Genre         string             `json:"genre" bson:"genre" yaml:"genre"`
	PublishedYear int                `json:"published_year" bson:"published_year" yaml:"published_year"`
	Price         float64            `json:"price" bson:"price" yaml:"price"`
	InStock       bool               `json:"in_stock" bson:"in_stock" yaml:"in_stock"`
}

// BookSummary is what the title/author/price projection decodes into.
type BookSummary struct {
	Title  string  `json:"title" bson:"title"`
	Author string  `json:"author" bson:"author"`
	Price  float64 `json:"price" bson:"price"`
}

const (
	BookEntity  = "book"
	IndexEntity = "index"
)

// Field names as stored in the books collection.
const (
	FieldID            = "_id"
	FieldTitle         = "title"
	FieldAuthor        = "author"
	FieldGenre         = "genre"
	FieldPublishedYear = "published_year"
	FieldPrice         = "price"
	FieldInStock       = "in_stock"
)

var bookFields = map[string]bool{
	FieldTitle:         true,
	FieldAuthor:        true,
	FieldGenre:         true,
	FieldPublishedYear: true,
	FieldPrice:         true,
	FieldInStock:       true,
}

func IsValidBookField(field string) bool {
	return bookFields[field]
}

// Validate checks the fields every query in the catalog relies on.
func (b Book) Validate() error {
	switch {
	case b.Title == "":
		return errors.New("title is required")
	case b.Author == "":
		return fmt.Errorf("%q: author is required", b.Title)
	case b.PublishedYear <= 0:
		return fmt.Errorf("%q: published_year must be positive", b.Title)
	case b.Price < 0:
		return fmt.Errorf("%q: price must not be negative", b.Title)
	}
	return nil
}
