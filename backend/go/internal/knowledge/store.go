// Package knowledge persists facts, rules, conversation turns and audit logs.
// It holds no business logic.
package knowledge

import (
	"context"
	"errors"
	"fmt"
	"time"

	"jarvis/backend/go/internal/models"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ErrNotFound is returned when a record addressed by id does not exist.
var ErrNotFound = errors.New("knowledge: record not found")

// Store 封装了知识库的所有数据库操作。
type Store struct {
	DB  *gorm.DB
	now func() time.Time
}

// NewStore 创建一个新的 Store 实例。
func NewStore(db *gorm.DB) *Store {
	return &Store{DB: db, now: func() time.Time { return time.Now().UTC() }}
}

// Migrate 创建或更新所有表结构。
func (s *Store) Migrate() error {
	return s.DB.AutoMigrate(
		&models.Fact{},
		&models.Rule{},
		&models.Turn{},
		&models.LogEntry{},
		&models.DialogueStateRecord{},
	)
}

// --- Facts ---

// AddFact 保存一条新事实，并写入第一条修改记录。
func (s *Store) AddFact(ctx context.Context, fact *models.Fact) error {
	now := s.now()
	if fact.Metadata == nil {
		fact.Metadata = datatypes.JSONMap{}
	}
	if len(fact.ModificationHistory) == 0 {
		fact.ModificationHistory = datatypes.NewJSONSlice([]models.Modification{{Timestamp: now, Change: "Created"}})
	}
	fact.CreatedAt = now
	if err := s.DB.WithContext(ctx).Create(fact).Error; err != nil {
		return fmt.Errorf("add fact: %w", err)
	}
	return nil
}

// FactsByConcept 返回某个概念下的所有事实，按创建顺序排列。
func (s *Store) FactsByConcept(ctx context.Context, concept string) ([]models.Fact, error) {
	var facts []models.Fact
	err := s.DB.WithContext(ctx).
		Where("concept = ?", concept).
		Order("id ASC").
		Find(&facts).Error
	if err != nil {
		return nil, fmt.Errorf("facts by concept %q: %w", concept, err)
	}
	return facts, nil
}

// --- Rules ---

// AddRule 保存一条新规则。
func (s *Store) AddRule(ctx context.Context, rule *models.Rule) error {
	rule.CreatedAt = s.now()
	if err := s.DB.WithContext(ctx).Create(rule).Error; err != nil {
		return fmt.Errorf("add rule: %w", err)
	}
	return nil
}

// ActiveRules 返回所有启用的规则，优先级从高到低，同优先级按创建顺序。
func (s *Store) ActiveRules(ctx context.Context) ([]models.Rule, error) {
	var rules []models.Rule
	err := s.DB.WithContext(ctx).
		Where("is_active = ?", true).
		Order("priority DESC").
		Order("id ASC").
		Find(&rules).Error
	if err != nil {
		return nil, fmt.Errorf("active rules: %w", err)
	}
	return rules, nil
}

// ListRules 返回所有规则（包括已停用的），按 id 排序。
func (s *Store) ListRules(ctx context.Context) ([]models.Rule, error) {
	var rules []models.Rule
	if err := s.DB.WithContext(ctx).Order("id ASC").Find(&rules).Error; err != nil {
		return nil, fmt.Errorf("list rules: %w", err)
	}
	return rules, nil
}

// SetRuleActive 启用或停用一条规则。
func (s *Store) SetRuleActive(ctx context.Context, id uint, active bool) error {
	res := s.DB.WithContext(ctx).Model(&models.Rule{}).Where("id = ?", id).Update("is_active", active)
	if res.Error != nil {
		return fmt.Errorf("set rule %d active=%t: %w", id, active, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("rule %d: %w", id, ErrNotFound)
	}
	return nil
}

// --- Conversation history ---

// AppendTurn 追加一条对话记录。时间戳由存储层统一生成。
func (s *Store) AppendTurn(ctx context.Context, turn *models.Turn) error {
	turn.Timestamp = s.now()
	if err := s.DB.WithContext(ctx).Create(turn).Error; err != nil {
		return fmt.Errorf("append turn to %s: %w", turn.ConversationID, err)
	}
	return nil
}

// RecentTurns 返回某个对话最近的 limit 条记录，按时间正序排列。
func (s *Store) RecentTurns(ctx context.Context, conversationID string, limit int) ([]models.Turn, error) {
	var turns []models.Turn
	err := s.DB.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Order("timestamp DESC").
		Order("id DESC").
		Limit(limit).
		Find(&turns).Error
	if err != nil {
		return nil, fmt.Errorf("recent turns of %s: %w", conversationID, err)
	}
	// 倒序查询后再反转，保持时间顺序
	for i, j := 0, len(turns)-1; i < j; i, j = i+1, j-1 {
		turns[i], turns[j] = turns[j], turns[i]
	}
	return turns, nil
}

// --- Logs ---

// AddLog 写入一条审计日志。
func (s *Store) AddLog(ctx context.Context, entry *models.LogEntry) error {
	if entry.Timestamp.IsZero() {
		entry.Timestamp = s.now()
	}
	if err := s.DB.WithContext(ctx).Create(entry).Error; err != nil {
		return fmt.Errorf("add log: %w", err)
	}
	return nil
}
