package models

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"gorm.io/datatypes"
)

// MaxConversationIDLength 与 conversation_id 列的 size:64 保持一致。
const MaxConversationIDLength = 64

// ErrConversationIDTooLong 表示客户端提供的对话 ID 超出了列宽。
var ErrConversationIDTooLong = fmt.Errorf("conversation_id must be at most %d characters", MaxConversationIDLength)

// ValidateConversationID 检查对话 ID 能否存入 conversation_id 列（按字符计）。
func ValidateConversationID(id string) error {
	if utf8.RuneCountInString(id) > MaxConversationIDLength {
		return ErrConversationIDTooLong
	}
	return nil
}

// TurnPart 是一轮对话中的一个内容片段。
type TurnPart struct {
	Text string `json:"text"`
}

// Turn 是对话历史中的一条记录，只追加不修改。
type Turn struct {
	ID             uint                          `gorm:"primaryKey" json:"id"`
	ConversationID string                        `gorm:"size:64;not null;index:idx_conversation_ts,priority:1" json:"conversation_id"`
	Role           SpeakerRole                   `gorm:"size:16;not null" json:"role"`
	Parts          datatypes.JSONSlice[TurnPart] `gorm:"not null" json:"parts"`
	Timestamp      time.Time                     `gorm:"not null;index:idx_conversation_ts,priority:2" json:"timestamp"`
}

// TableName 指定 Turn 模型对应的表名。
func (Turn) TableName() string { return "conversation_history" }

// NewTextTurn 创建一条只包含单个文本片段的对话记录。
func NewTextTurn(conversationID string, role SpeakerRole, text string) *Turn {
	return &Turn{
		ConversationID: conversationID,
		Role:           role,
		Parts:          datatypes.NewJSONSlice([]TurnPart{{Text: text}}),
	}
}

// Text 拼接所有片段的文本。
func (t Turn) Text() string {
	var sb strings.Builder
	for _, p := range t.Parts {
		sb.WriteString(p.Text)
	}
	return sb.String()
}
