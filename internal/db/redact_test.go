package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRedact(t *testing.T) {
	tests := []struct {
		name string
		uri  string
		want string
	}{
		{"no credentials", "mongodb://localhost:27017", "mongodb://localhost:27017"},
		{"user only", "mongodb://reader@localhost:27017", "mongodb://reader@localhost:27017"},
		{"user and password", "mongodb://admin:s3cret@db:27017/plp_bookstore", "mongodb://admin:xxxxx@db:27017/plp_bookstore"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, redact(tt.uri))
		})
	}
}
