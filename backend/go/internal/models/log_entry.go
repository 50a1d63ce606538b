package models

import "time"

// LogType 是审计日志的级别。
type LogType string

const (
	LogInfo     LogType = "INFO"
	LogWarn     LogType = "WARN"
	LogError    LogType = "ERROR"
	LogCritical LogType = "CRITICAL"
)

// LogEntry 是写入 logs 表的审计记录，只写不读。
type LogEntry struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	LogType   LogType   `gorm:"size:16;not null;index" json:"log_type"`
	Message   string    `gorm:"type:text;not null" json:"message"`
	Timestamp time.Time `gorm:"not null" json:"timestamp"`
}

// TableName 指定 LogEntry 模型对应的表名。
func (LogEntry) TableName() string { return "logs" }

// RequestInfo 存储了关于 HTTP 请求的上下文信息。
type RequestInfo struct {
	Method     string `json:"method"`
	Path       string `json:"path"`
	RemoteAddr string `json:"remote_addr"`
	UserAgent  string `json:"user_agent"`
	Status     int    `json:"status,omitempty"`
	LatencyMS  int64  `json:"latency_ms,omitempty"`
}
