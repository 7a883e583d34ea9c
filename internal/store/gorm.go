package store

import (
	"context"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// JSONBDocument is a custom type for persisting a Document in a JSONB column
type JSONBDocument Document

// Value implements the driver.Valuer interface
func (d JSONBDocument) Value() (driver.Value, error) {
	if len(d) == 0 {
		return "{}", nil
	}
	return json.Marshal(d)
}

// Scan implements the sql.Scanner interface
func (d *JSONBDocument) Scan(value interface{}) error {
	if value == nil {
		*d = JSONBDocument{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return nil
	}

	return json.Unmarshal(bytes, d)
}

type documentRecord struct {
	Collection string        `gorm:"primaryKey;size:64"`
	DocID      string        `gorm:"primaryKey;size:64;column:doc_id"`
	Data       JSONBDocument `gorm:"type:jsonb;not null;default:'{}'"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (documentRecord) TableName() string {
	return "documents"
}

var fieldNamePattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]*$`)

// GormStore is a Store backed by a relational database through gorm, with
// one row per document and the field map held in a JSONB column.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore migrates the documents table and returns a ready store.
func NewGormStore(db *gorm.DB) (*GormStore, error) {
	if err := db.AutoMigrate(&documentRecord{}); err != nil {
		return nil, fmt.Errorf("failed to migrate documents table: %w", err)
	}
	return &GormStore{db: db}, nil
}

// NewID returns a fresh document identifier.
func (s *GormStore) NewID() string {
	return uuid.NewString()
}

// Get returns the document with the given id.
func (s *GormStore) Get(ctx context.Context, collection, id string) (Document, error) {
	var rec documentRecord
	err := s.db.WithContext(ctx).
		First(&rec, "collection = ? AND doc_id = ?", collection, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDocumentNotFound
		}
		return nil, err
	}
	return Document(rec.Data), nil
}

// Set creates or replaces the document under the given id.
func (s *GormStore) Set(ctx context.Context, collection, id string, doc Document) error {
	rec := documentRecord{
		Collection: collection,
		DocID:      id,
		Data:       JSONBDocument(doc),
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "collection"}, {Name: "doc_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"data", "updated_at"}),
	}).Create(&rec).Error
}

// Update merges the given fields into an existing document.
func (s *GormStore) Update(ctx context.Context, collection, id string, fields Document) error {
	existing, err := s.Get(ctx, collection, id)
	if err != nil {
		return err
	}
	for k, v := range fields {
		existing[k] = v
	}
	return s.db.WithContext(ctx).Model(&documentRecord{}).
		Where("collection = ? AND doc_id = ?", collection, id).
		Update("data", JSONBDocument(existing)).Error
}

// Delete removes the document if present.
func (s *GormStore) Delete(ctx context.Context, collection, id string) error {
	return s.db.WithContext(ctx).
		Where("collection = ? AND doc_id = ?", collection, id).
		Delete(&documentRecord{}).Error
}

// Find returns the documents matching the query. Equality filters and
// single-field ordering are pushed down to the database.
func (s *GormStore) Find(ctx context.Context, collection string, q Query) ([]Document, error) {
	dbQuery := s.db.WithContext(ctx).Model(&documentRecord{}).
		Where("collection = ?", collection)

	for _, f := range q.Filters {
		if !fieldNamePattern.MatchString(f.Field) {
			return nil, fmt.Errorf("invalid filter field %q", f.Field)
		}
		if s.db.Dialector.Name() == "postgres" {
			match, err := json.Marshal(Document{f.Field: f.Value})
			if err != nil {
				return nil, err
			}
			dbQuery = dbQuery.Where("data @> ?::jsonb", string(match))
		} else {
			dbQuery = dbQuery.Where("json_extract(data, ?) = ?", "$."+f.Field, f.Value)
		}
	}

	if q.OrderBy != "" {
		if !fieldNamePattern.MatchString(q.OrderBy) {
			return nil, fmt.Errorf("invalid order field %q", q.OrderBy)
		}
		dir := "ASC"
		if q.Descending {
			dir = "DESC"
		}
		if s.db.Dialector.Name() == "postgres" {
			dbQuery = dbQuery.Order(fmt.Sprintf("data -> '%s' %s", q.OrderBy, dir))
		} else {
			dbQuery = dbQuery.Order(fmt.Sprintf("json_extract(data, '$.%s') %s", q.OrderBy, dir))
		}
	}

	var recs []documentRecord
	if err := dbQuery.Find(&recs).Error; err != nil {
		return nil, err
	}

	docs := make([]Document, len(recs))
	for i := range recs {
		docs[i] = Document(recs[i].Data)
	}
	return docs, nil
}
