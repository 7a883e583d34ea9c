package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/recetario/backend/internal/store"
)

// MockStore is a mock implementation of the document store
type MockStore struct {
	mock.Mock
}

// NewID mocks the NewID method
func (m *MockStore) NewID() string {
	args := m.Called()
	return args.String(0)
}

// Get mocks the Get method
func (m *MockStore) Get(ctx context.Context, collection, id string) (store.Document, error) {
	args := m.Called(ctx, collection, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(store.Document), args.Error(1)
}

// Set mocks the Set method
func (m *MockStore) Set(ctx context.Context, collection, id string, doc store.Document) error {
	args := m.Called(ctx, collection, id, doc)
	return args.Error(0)
}

// Update mocks the Update method
func (m *MockStore) Update(ctx context.Context, collection, id string, fields store.Document) error {
	args := m.Called(ctx, collection, id, fields)
	return args.Error(0)
}

// Delete mocks the Delete method
func (m *MockStore) Delete(ctx context.Context, collection, id string) error {
	args := m.Called(ctx, collection, id)
	return args.Error(0)
}

// Find mocks the Find method
func (m *MockStore) Find(ctx context.Context, collection string, q store.Query) ([]store.Document, error) {
	args := m.Called(ctx, collection, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]store.Document), args.Error(1)
}
