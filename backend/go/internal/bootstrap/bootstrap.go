// Package bootstrap 按配置组装存储、审计、模型与对话编排器。
// 服务端、MCP 服务和管理命令共用同一套装配逻辑。
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"io"

	"jarvis/backend/go/internal/audit"
	"jarvis/backend/go/internal/config"
	"jarvis/backend/go/internal/database/kafka"
	redisdb "jarvis/backend/go/internal/database/redis"
	"jarvis/backend/go/internal/database/sqldb"
	"jarvis/backend/go/internal/dialogue"
	"jarvis/backend/go/internal/intent"
	"jarvis/backend/go/internal/knowledge"
	"jarvis/backend/go/internal/learning"
	"jarvis/backend/go/internal/llm"
	"jarvis/backend/go/internal/orchestrator"
	"jarvis/backend/go/internal/rules"
	"jarvis/backend/go/pkg/circuitbreaker"
	"jarvis/backend/go/pkg/logger"

	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

// App 持有装配完成的组件。
type App struct {
	Config       *config.AppConfig
	Log          *logger.Logger
	DB           *gorm.DB
	Store        *knowledge.Store
	Journal      *audit.Journal
	Oracle       *llm.Oracle
	Learner      *learning.Learner
	Engine       *rules.Engine
	Orchestrator *orchestrator.Orchestrator

	closers []func() error
}

// New 初始化所有依赖 (Store -> Journal -> Oracle -> Core)。出错时已打开的资源会被释放。
func New(ctx context.Context, cfg *config.AppConfig, log *logger.Logger) (app *App, err error) {
	app = &App{Config: cfg, Log: log}
	defer func() {
		if err != nil {
			_ = app.Close()
			app = nil
		}
	}()

	if err := app.openStore(); err != nil {
		return app, err
	}
	app.openJournal()

	var rdb *redis.Client
	if cfg.Dialogue.Store == "redis" || cfg.Dialogue.Lock == "redis" {
		rdb, err = redisdb.NewClient(ctx, cfg.Databases.Redis)
		if err != nil {
			return app, err
		}
		app.closers = append(app.closers, rdb.Close)
		log.Info("Redis connection established")
	}

	states, locker, err := dialogueBackends(cfg.Dialogue, app.DB, rdb, log)
	if err != nil {
		return app, err
	}

	if err := app.openOracle(ctx); err != nil {
		return app, err
	}

	var classifier intent.Classifier
	if cfg.Intent.Classifier == "keyword" {
		classifier = intent.NewKeywordClassifier()
	} else {
		classifier = intent.NewOracleClassifier(app.Oracle, app.Journal)
	}

	app.Engine, err = rules.NewEngine(app.Store, cfg.Rules.PatternCacheSize, log)
	if err != nil {
		return app, err
	}
	app.Learner = learning.NewLearner(app.Store, app.Journal)

	stateTTL, _ := cfg.Dialogue.StateTTLDuration()
	app.Orchestrator = orchestrator.New(
		app.Store, states, locker, classifier, app.Learner, app.Engine, app.Oracle, app.Journal, log,
		orchestrator.Options{StateTTL: stateTTL, HistoryLimit: cfg.Conversation.HistoryLimit},
	)
	log.Info("Dependencies injected")
	return app, nil
}

func (a *App) openStore() error {
	db, err := sqldb.Open(a.Config.Databases.SQL)
	if err != nil {
		return err
	}
	a.DB = db
	a.closers = append(a.closers, func() error { return sqldb.Close(db) })
	a.Log.Info("Database connection established")

	a.Store = knowledge.NewStore(db)
	if err := a.Store.Migrate(); err != nil {
		return fmt.Errorf("database migration failed: %w", err)
	}
	a.Log.Info("Database migration completed")
	return nil
}

func (a *App) openJournal() {
	sinks := []audit.Sink{audit.SinkFunc(a.Store.AddLog)}
	if kc := a.Config.Databases.Kafka; kc.Enabled {
		if err := kafka.EnsureTopic(kc); err != nil {
			// Kafka 不可用时仍然写数据库日志
			a.Log.WithErr(err).Warn("Kafka topic check failed")
		}
		publisher := kafka.NewLogPublisher(kc)
		sinks = append(sinks, publisher)
		a.closers = append(a.closers, publisher.Close)
	}
	a.Journal = audit.NewJournal(a.Log, sinks...)
}

func (a *App) openOracle(ctx context.Context) error {
	client, err := llm.NewClient(ctx, a.Config.LLM)
	switch {
	case errors.Is(err, llm.ErrNotConfigured):
		a.Journal.Warn(ctx, fmt.Sprintf(
			"Server started without an API key for the %s provider. Generative AI will not work.", providerName(a.Config.LLM)))
	case err != nil:
		return fmt.Errorf("create LLM client: %w", err)
	}
	if c, ok := client.(io.Closer); ok {
		a.closers = append(a.closers, c.Close)
	}

	breaker, err := circuitbreaker.FromConfig(a.Config.LLM.CircuitBreaker)
	if err != nil {
		return err
	}
	a.Oracle = llm.NewOracle(client, breaker)
	return nil
}

func providerName(cfg config.LLMConfig) string {
	if cfg.Provider == "" {
		return "gemini"
	}
	return cfg.Provider
}

func dialogueBackends(cfg config.DialogueConfig, db *gorm.DB, rdb *redis.Client, log *logger.Logger) (dialogue.StateStore, dialogue.Locker, error) {
	var states dialogue.StateStore = dialogue.NewSQLStateStore(db)
	if cfg.Store == "redis" {
		states = dialogue.NewRedisStateStore(rdb)
	}

	var locker dialogue.Locker = dialogue.NewLocalLocker()
	if cfg.Lock == "redis" {
		lease, err := cfg.LockTTLDuration()
		if err != nil {
			return nil, nil, err
		}
		locker = dialogue.NewRedisLocker(rdb, lease, log)
	}
	return states, locker, nil
}

// Close 按打开顺序的逆序释放资源。
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
