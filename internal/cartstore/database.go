package cartstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/freshsouq/freshsouq-backend/internal/cart"
	pkgdb "github.com/freshsouq/freshsouq-backend/pkg/db"
	"gorm.io/gorm"
)

// CartBlob is the single-row-per-session storage shape for the database
// backend. The payload is the same JSON array the other backends store.
type CartBlob struct {
	Key       string `gorm:"primaryKey;size:128"`
	Payload   []byte
	UpdatedAt time.Time
}

// TableName pins the table name.
func (CartBlob) TableName() string {
	return "cart_blobs"
}

// AutoMigrateCartBlobs creates the blob table. Run once at boot when the
// database backend is selected.
func AutoMigrateCartBlobs(client *pkgdb.Client) error {
	if client == nil {
		return fmt.Errorf("db client required")
	}
	return client.DB().AutoMigrate(&CartBlob{})
}

// Database stores the cart blob in a relational row keyed by session.
type Database struct {
	client *pkgdb.Client
	key    string
}

func NewDatabase(client *pkgdb.Client, key string) (*Database, error) {
	if client == nil {
		return nil, fmt.Errorf("db client required")
	}
	if key == "" {
		return nil, fmt.Errorf("storage key required")
	}
	return &Database{client: client, key: key}, nil
}

func (s *Database) Load(ctx context.Context) ([]cart.LineItem, error) {
	var blob CartBlob
	err := s.client.DB().WithContext(ctx).First(&blob, "key = ?", s.key).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("load cart blob: %w", err)
	}
	return decodeItems(blob.Payload), nil
}

func (s *Database) Save(ctx context.Context, items []cart.LineItem) error {
	data, err := encodeItems(items)
	if err != nil {
		return err
	}
	return s.client.WithTx(ctx, func(tx *gorm.DB) error {
		if err := tx.Delete(&CartBlob{}, "key = ?", s.key).Error; err != nil {
			return fmt.Errorf("replace cart blob: %w", err)
		}
		if err := tx.Create(&CartBlob{Key: s.key, Payload: data}).Error; err != nil {
			return fmt.Errorf("save cart blob: %w", err)
		}
		return nil
	})
}

func (s *Database) Clear(ctx context.Context) error {
	err := s.client.DB().WithContext(ctx).Delete(&CartBlob{}, "key = ?", s.key).Error
	if err != nil {
		return fmt.Errorf("clear cart blob: %w", err)
	}
	return nil
}
