package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/angelmondragon/scancart-backend/pkg/db/models"
)

// SQLStore keeps blobs in the cart_blobs table (postgres or sqlite).
type SQLStore struct {
	db  *gorm.DB
	now func() time.Time
}

func NewSQLStore(db *gorm.DB) (*SQLStore, error) {
	if db == nil {
		return nil, fmt.Errorf("gorm db required")
	}
	return &SQLStore{db: db, now: time.Now}, nil
}

func (s *SQLStore) Get(ctx context.Context, key string) (string, bool, error) {
	var blob models.CartBlob
	err := s.db.WithContext(ctx).Where(&models.CartBlob{Key: key}).Take(&blob).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("select cart blob: %w", err)
	}
	return blob.Value, true, nil
}

// Set upserts the blob; last writer wins.
func (s *SQLStore) Set(ctx context.Context, key, value string) error {
	blob := models.CartBlob{Key: key, Value: value, UpdatedAt: s.now().UTC()}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&blob).Error
	if err != nil {
		return fmt.Errorf("upsert cart blob: %w", err)
	}
	return nil
}
