// Package audit records operational events both to the structured logger and
// to durable sinks such as the logs table or a Kafka topic.
package audit

import (
	"context"
	"time"

	"jarvis/backend/go/internal/models"
	"jarvis/backend/go/pkg/logger"

	"github.com/sirupsen/logrus"
)

// Sink receives every recorded entry.
type Sink interface {
	Write(ctx context.Context, entry *models.LogEntry) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, entry *models.LogEntry) error

func (f SinkFunc) Write(ctx context.Context, entry *models.LogEntry) error { return f(ctx, entry) }

// Journal fans log entries out to its sinks. A failing sink is reported on the
// logger and never surfaces to the caller.
type Journal struct {
	log   *logger.Logger
	sinks []Sink
	now   func() time.Time
}

// NewJournal creates a Journal writing to the given sinks.
func NewJournal(log *logger.Logger, sinks ...Sink) *Journal {
	return &Journal{log: log, sinks: sinks, now: func() time.Time { return time.Now().UTC() }}
}

// Record logs message at the given level.
func (j *Journal) Record(ctx context.Context, level models.LogType, message string) {
	j.log.WithField("log_type", string(level)).Log(logrusLevel(level), message)

	entry := &models.LogEntry{LogType: level, Message: message, Timestamp: j.now()}
	for _, s := range j.sinks {
		// each sink gets its own copy so ID assignment by one does not leak into another
		e := *entry
		if err := s.Write(ctx, &e); err != nil {
			j.log.WithErr(err).Error("audit sink write failed")
		}
	}
}

func (j *Journal) Info(ctx context.Context, message string)  { j.Record(ctx, models.LogInfo, message) }
func (j *Journal) Warn(ctx context.Context, message string)  { j.Record(ctx, models.LogWarn, message) }
func (j *Journal) Error(ctx context.Context, message string) { j.Record(ctx, models.LogError, message) }
func (j *Journal) Critical(ctx context.Context, message string) {
	j.Record(ctx, models.LogCritical, message)
}

// logrus has no CRITICAL; it is logged at error level with log_type=CRITICAL.
func logrusLevel(level models.LogType) logrus.Level {
	switch level {
	case models.LogWarn:
		return logrus.WarnLevel
	case models.LogError, models.LogCritical:
		return logrus.ErrorLevel
	default:
		return logrus.InfoLevel
	}
}
