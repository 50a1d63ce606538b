package models

import "time"

// DialogueState 标记一个对话是否处于多轮教学流程中。
type DialogueState string

const (
	StateNone                   DialogueState = ""
	StateAwaitingRuleDefinition DialogueState = "awaiting_rule_definition"
)

// DialogueStateRecord 是对话状态在关系库中的持久化形式，过期后视为 StateNone。
type DialogueStateRecord struct {
	ConversationID string        `gorm:"primaryKey;size:64"`
	State          DialogueState `gorm:"size:64;not null"`
	ExpiresAt      time.Time     `gorm:"not null;index"`
	UpdatedAt      time.Time
}

// TableName 指定 DialogueStateRecord 模型对应的表名。
func (DialogueStateRecord) TableName() string { return "dialogue_states" }
