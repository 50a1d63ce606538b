package models

import (
	"time"

	"gorm.io/datatypes"
)

// Modification 记录了一条事实的一次变更。
type Modification struct {
	Timestamp time.Time `json:"timestamp"`
	Change    string    `json:"change"`
}

// Fact 是知识库中的一条事实。创建后只允许通过追加 ModificationHistory 来修改。
type Fact struct {
	ID                  uint                              `gorm:"primaryKey" json:"id"`
	Fact                string                            `gorm:"type:text;not null" json:"fact"`
	Concept             string                            `gorm:"size:255;not null;index" json:"concept"`
	Relationship        string                            `gorm:"size:255;not null" json:"relationship"`
	Source              string                            `gorm:"size:255" json:"source"`
	Confidence          float64                           `json:"confidence"`
	Metadata            datatypes.JSONMap                 `json:"metadata"`
	ModificationHistory datatypes.JSONSlice[Modification] `json:"modification_history"`
	CreatedAt           time.Time                         `json:"created_at"`
}

// TableName 指定 Fact 模型对应的表名。
func (Fact) TableName() string { return "knowledge_base" }
