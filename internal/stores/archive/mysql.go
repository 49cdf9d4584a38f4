package archive

import (
	"context"
	"fmt"

	"github.com/ethanbaker/mitra/pkg/chat"
	"github.com/google/uuid"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

// MySqlStore archives transcripts using GORM
type MySqlStore struct {
	db *gorm.DB
}

// NewMySqlStore creates a new archive with a GORM connection and migrates its table
func NewMySqlStore(databaseURL string) (*MySqlStore, error) {
	db, err := gorm.Open(mysql.Open(databaseURL), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Auto-migrate tables
	if err := db.AutoMigrate(&Record{}); err != nil {
		return nil, fmt.Errorf("failed to migrate tables: %w", err)
	}

	return &MySqlStore{db: db}, nil
}

// SaveMessage stores a transcript message for a view
func (s *MySqlStore) SaveMessage(ctx context.Context, viewID uuid.UUID, msg chat.Message) error {
	result := s.db.WithContext(ctx).Create(NewRecord(viewID, msg))
	if result.Error != nil {
		return fmt.Errorf("failed to save message: %w", result.Error)
	}

	return nil
}

// GetMessages returns the archived transcript of a view in the order it was written
func (s *MySqlStore) GetMessages(ctx context.Context, viewID uuid.UUID) ([]chat.Message, error) {
	var records []*Record
	result := s.db.WithContext(ctx).Where("view_id = ?", viewID).Order("sent_at ASC").Order("id ASC").Find(&records)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to query messages: %w", result.Error)
	}

	messages := make([]chat.Message, 0, len(records))
	for _, record := range records {
		messages = append(messages, record.Message())
	}

	return messages, nil
}

// DeleteMessages removes the archived transcript of a view
func (s *MySqlStore) DeleteMessages(ctx context.Context, viewID uuid.UUID) error {
	if err := s.db.WithContext(ctx).Where("view_id = ?", viewID).Delete(&Record{}).Error; err != nil {
		return fmt.Errorf("failed to delete messages: %w", err)
	}

	return nil
}

// Close closes the database connection
func (s *MySqlStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql.DB from gorm.DB: %w", err)
	}
	return sqlDB.Close()
}
