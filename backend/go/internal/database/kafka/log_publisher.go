package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"jarvis/backend/go/internal/config"
	"jarvis/backend/go/internal/models"

	"github.com/segmentio/kafka-go"
)

// MessageWriter 是 kafka.Writer 中 LogPublisher 用到的部分。
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// LogPublisher 把审计日志序列化为 JSON 后投递到 Kafka。
type LogPublisher struct {
	writer MessageWriter
}

// NewLogPublisher 根据配置创建 LogPublisher。
func NewLogPublisher(cfg config.KafkaConfig) *LogPublisher {
	return &LogPublisher{writer: &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 10 * time.Millisecond,
		BatchSize:    100,
	}}
}

// NewLogPublisherWithWriter 使用自定义的 writer 创建 LogPublisher。
func NewLogPublisherWithWriter(w MessageWriter) *LogPublisher {
	return &LogPublisher{writer: w}
}

// Write 发送一条审计日志，消息键为日志级别。
func (p *LogPublisher) Write(ctx context.Context, entry *models.LogEntry) error {
	jsonData, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal log entry: %w", err)
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(entry.LogType),
		Value: jsonData,
		Time:  entry.Timestamp,
	})
	if err != nil {
		return fmt.Errorf("failed to write message to kafka: %w", err)
	}
	return nil
}

// Close 关闭底层的 writer 连接。
func (p *LogPublisher) Close() error {
	return p.writer.Close()
}
