package dialogue

import (
	"context"
	"errors"
	"fmt"
	"time"

	"jarvis/backend/go/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SQLStateStore stores dialogue state in the dialogue_states table.
type SQLStateStore struct {
	db  *gorm.DB
	now func() time.Time
}

// NewSQLStateStore creates a SQLStateStore. The table is created by
// knowledge.Store.Migrate.
func NewSQLStateStore(db *gorm.DB) *SQLStateStore {
	return &SQLStateStore{db: db, now: time.Now}
}

func (s *SQLStateStore) Get(ctx context.Context, conversationID string) (models.DialogueState, error) {
	var rec models.DialogueStateRecord
	err := s.db.WithContext(ctx).Where("conversation_id = ?", conversationID).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.StateNone, nil
	}
	if err != nil {
		return models.StateNone, fmt.Errorf("load dialogue state: %w", err)
	}
	if !rec.ExpiresAt.After(s.now()) {
		return models.StateNone, nil
	}
	return rec.State, nil
}

func (s *SQLStateStore) Set(ctx context.Context, conversationID string, state models.DialogueState, ttl time.Duration) error {
	if state == models.StateNone {
		return s.Clear(ctx, conversationID)
	}
	now := s.now()
	rec := models.DialogueStateRecord{
		ConversationID: conversationID,
		State:          state,
		ExpiresAt:      now.Add(ttl),
		UpdatedAt:      now,
	}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(&rec).Error
	if err != nil {
		return fmt.Errorf("save dialogue state: %w", err)
	}
	return nil
}

func (s *SQLStateStore) Clear(ctx context.Context, conversationID string) error {
	err := s.db.WithContext(ctx).Where("conversation_id = ?", conversationID).Delete(&models.DialogueStateRecord{}).Error
	if err != nil {
		return fmt.Errorf("clear dialogue state: %w", err)
	}
	return nil
}

// PurgeExpired removes rows whose TTL has passed and reports how many went.
func (s *SQLStateStore) PurgeExpired(ctx context.Context) (int64, error) {
	res := s.db.WithContext(ctx).Where("expires_at <= ?", s.now()).Delete(&models.DialogueStateRecord{})
	return res.RowsAffected, res.Error
}
