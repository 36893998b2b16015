package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// documentRow is the persistence shape of an Entry. One row per
// (document, locale, status) variant.
type documentRow struct {
	ID          uint   `gorm:"primaryKey"`
	DocumentID  string `gorm:"size:64;uniqueIndex:idx_document_variant,priority:1"`
	ContentType string `gorm:"size:191;index"`
	Locale      string `gorm:"size:16;uniqueIndex:idx_document_variant,priority:2"`
	Status      string `gorm:"size:16;uniqueIndex:idx_document_variant,priority:3"`
	Data        string `gorm:"type:json"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
	PublishedAt *time.Time
}

func (documentRow) TableName() string { return "porter_documents" }

// mediaRow is the persistence shape of a Media record.
type mediaRow struct {
	ID              uint   `gorm:"primaryKey"`
	DocumentID      string `gorm:"size:64;uniqueIndex"`
	Name            string `gorm:"size:255;index"`
	Hash            string `gorm:"size:64;index"`
	URL             string `gorm:"size:1024"`
	AlternativeText string `gorm:"size:255"`
	Caption         string `gorm:"size:255"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (mediaRow) TableName() string { return "porter_media" }

type gormStore struct {
	db *gorm.DB
}

// New creates a GORM-backed store and migrates its tables.
func New(db *gorm.DB) (Store, error) {
	if err := db.AutoMigrate(&documentRow{}, &mediaRow{}); err != nil {
		return nil, fmt.Errorf("failed to migrate store tables: %w", err)
	}
	return &gormStore{db: db}, nil
}

// Tables returns the table names the store owns, for schema inspection.
func Tables() []string {
	return []string{documentRow{}.TableName(), mediaRow{}.TableName()}
}

// jsonField builds a dialect-specific expression extracting an attribute
// from the JSON body. The field name is validated to keep attribute names
// out of SQL text unescaped.
func jsonField(db *gorm.DB, field string) (string, error) {
	for _, r := range field {
		ok := r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
		if !ok {
			return "", fmt.Errorf("invalid attribute name %q in query", field)
		}
	}
	if db.Dialector.Name() == "sqlite" {
		return fmt.Sprintf("json_extract(data, '$.%s')", field), nil
	}
	// MySQL: unquote so string comparisons work against plain values.
	return fmt.Sprintf("JSON_UNQUOTE(JSON_EXTRACT(data, '$.%s'))", field), nil
}

func (s *gormStore) buildQuery(ctx context.Context, contentType string, q Query) (*gorm.DB, error) {
	tx := s.db.WithContext(ctx).Model(&documentRow{}).Where("content_type = ?", contentType)
	if q.Status != "" {
		tx = tx.Where("status = ?", string(q.Status))
	}
	if q.Locale != "" {
		tx = tx.Where("locale = ?", q.Locale)
	}
	if len(q.DocumentIDs) > 0 {
		tx = tx.Where("document_id IN ?", q.DocumentIDs)
	}
	if q.Field != "" {
		expr, err := jsonField(s.db, q.Field)
		if err != nil {
			return nil, err
		}
		tx = tx.Where(expr+" = ?", fmt.Sprintf("%v", q.Value))
	}
	if q.Sort != "" {
		expr, err := jsonField(s.db, q.Sort)
		if err != nil {
			return nil, err
		}
		tx = tx.Order(expr)
	} else {
		tx = tx.Order("id")
	}
	return tx, nil
}

func (s *gormStore) FindMany(ctx context.Context, contentType string, q Query) ([]*Entry, error) {
	tx, err := s.buildQuery(ctx, contentType, q)
	if err != nil {
		return nil, err
	}
	var rows []documentRow
	if err := tx.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", contentType, err)
	}
	entries := make([]*Entry, 0, len(rows))
	for i := range rows {
		e, err := rowToEntry(&rows[i])
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func (s *gormStore) FindOne(ctx context.Context, contentType string, q Query) (*Entry, error) {
	tx, err := s.buildQuery(ctx, contentType, q)
	if err != nil {
		return nil, err
	}
	var row documentRow
	if err := tx.First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%s: %w", contentType, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to query %s: %w", contentType, err)
	}
	return rowToEntry(&row)
}

func (s *gormStore) Create(ctx context.Context, e *Entry) (*Entry, error) {
	if e.DocumentID == "" {
		e.DocumentID = uuid.NewString()
	}
	row, err := entryToRow(e)
	if err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Create(row).Error; err != nil {
		return nil, fmt.Errorf("failed to create %s entry: %w", e.ContentType, err)
	}
	return rowToEntry(row)
}

func (s *gormStore) Update(ctx context.Context, e *Entry) (*Entry, error) {
	data, err := json.Marshal(e.Data)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s entry: %w", e.ContentType, err)
	}
	updates := map[string]any{
		"data":         string(data),
		"published_at": e.PublishedAt,
	}
	tx := s.db.WithContext(ctx).Model(&documentRow{}).
		Where("document_id = ? AND locale = ? AND status = ?", e.DocumentID, e.Locale, string(e.Status)).
		Updates(updates)
	if tx.Error != nil {
		return nil, fmt.Errorf("failed to update %s entry: %w", e.ContentType, tx.Error)
	}
	if tx.RowsAffected == 0 {
		return nil, fmt.Errorf("%s %s (%s/%s): %w", e.ContentType, e.DocumentID, e.Locale, e.Status, ErrNotFound)
	}
	return s.FindOne(ctx, e.ContentType, Query{
		Status:      e.Status,
		Locale:      e.Locale,
		DocumentIDs: []string{e.DocumentID},
	})
}

func (s *gormStore) FindMediaByHash(ctx context.Context, hash string) (*Media, error) {
	return s.findMedia(ctx, "hash = ?", hash)
}

func (s *gormStore) FindMediaByName(ctx context.Context, name string) (*Media, error) {
	return s.findMedia(ctx, "name = ?", name)
}

func (s *gormStore) FindMediaByDocumentID(ctx context.Context, documentID string) (*Media, error) {
	return s.findMedia(ctx, "document_id = ?", documentID)
}

func (s *gormStore) findMedia(ctx context.Context, cond string, arg any) (*Media, error) {
	var row mediaRow
	err := s.db.WithContext(ctx).Where(cond, arg).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query media: %w", err)
	}
	return mediaFromRow(&row), nil
}

func (s *gormStore) CreateMedia(ctx context.Context, m *Media) (*Media, error) {
	if m.DocumentID == "" {
		m.DocumentID = uuid.NewString()
	}
	row := &mediaRow{
		DocumentID:      m.DocumentID,
		Name:            m.Name,
		Hash:            m.Hash,
		URL:             m.URL,
		AlternativeText: m.AlternativeText,
		Caption:         m.Caption,
	}
	if err := s.db.WithContext(ctx).Create(row).Error; err != nil {
		return nil, fmt.Errorf("failed to create media %s: %w", m.Name, err)
	}
	return mediaFromRow(row), nil
}

func rowToEntry(row *documentRow) (*Entry, error) {
	data := make(map[string]any)
	if row.Data != "" {
		if err := json.Unmarshal([]byte(row.Data), &data); err != nil {
			return nil, fmt.Errorf("corrupt body for %s %s: %w", row.ContentType, row.DocumentID, err)
		}
	}
	return &Entry{
		ID:          row.ID,
		DocumentID:  row.DocumentID,
		ContentType: row.ContentType,
		Locale:      row.Locale,
		Status:      Status(row.Status),
		Data:        data,
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
		PublishedAt: row.PublishedAt,
	}, nil
}

func entryToRow(e *Entry) (*documentRow, error) {
	data, err := json.Marshal(e.Data)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s entry: %w", e.ContentType, err)
	}
	locale := e.Locale
	if locale == "" {
		locale = DefaultLocale
	}
	return &documentRow{
		ID:          e.ID,
		DocumentID:  e.DocumentID,
		ContentType: e.ContentType,
		Locale:      locale,
		Status:      string(e.Status),
		Data:        string(data),
		PublishedAt: e.PublishedAt,
	}, nil
}

func mediaFromRow(row *mediaRow) *Media {
	return &Media{
		ID:              row.ID,
		DocumentID:      row.DocumentID,
		Name:            row.Name,
		Hash:            row.Hash,
		URL:             row.URL,
		AlternativeText: row.AlternativeText,
		Caption:         row.Caption,
		CreatedAt:       row.CreatedAt,
		UpdatedAt:       row.UpdatedAt,
	}
}
