package models

import "time"

// Rule 是用户教授的一条 条件/动作 规则。Condition 在匹配时被当作正则表达式使用。
type Rule struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Condition string    `gorm:"column:rule_condition;type:text;not null" json:"condition"`
	Action    string    `gorm:"column:rule_action;type:text;not null" json:"action"`
	Priority  int       `gorm:"not null;index" json:"priority"` // 数值越大越先匹配
	IsActive  bool      `gorm:"not null;index" json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName 指定 Rule 模型对应的表名。
func (Rule) TableName() string { return "rule_set" }
