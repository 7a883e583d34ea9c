package store

import (
	"context"
	"errors"
)

// ErrDocumentNotFound is returned when a document id does not exist in a collection.
var ErrDocumentNotFound = errors.New("document not found")

// Document is the generic string-keyed representation of a stored record.
type Document map[string]any

// Filter matches documents whose field equals the given value.
type Filter struct {
	Field string
	Value any
}

// Query describes a filtered, optionally ordered lookup over a collection.
type Query struct {
	Filters    []Filter
	OrderBy    string
	Descending bool
}

// Store is a collection-addressed document store. Implementations must be
// safe for concurrent use.
type Store interface {
	// NewID returns a fresh document identifier.
	NewID() string
	// Get returns the document with the given id, or ErrDocumentNotFound.
	Get(ctx context.Context, collection, id string) (Document, error)
	// Set writes the full document under the given id, creating or replacing it.
	Set(ctx context.Context, collection, id string, doc Document) error
	// Update merges the given fields into an existing document.
	// Returns ErrDocumentNotFound if the id does not exist.
	Update(ctx context.Context, collection, id string, fields Document) error
	// Delete removes the document. Deleting an absent id is not an error.
	Delete(ctx context.Context, collection, id string) error
	// Find returns all documents in the collection matching the query.
	Find(ctx context.Context, collection string, q Query) ([]Document, error)
}
