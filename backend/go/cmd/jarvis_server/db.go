package main

import (
	"jarvis/backend/go/internal/config"
	"jarvis/backend/go/internal/database/sqldb"
	"jarvis/backend/go/internal/knowledge"
	"jarvis/backend/go/pkg/logger"
)

func loadConfig(path string) (*config.AppConfig, *logger.Logger, error) {
	cfg, err := config.LoadConfig(path)
	if err != nil {
		return nil, nil, err
	}
	logger.Init(logger.ParseLevel(cfg.Logger.Level))
	return cfg, logger.New(cfg.App.Name), nil
}

// openStore opens the knowledge store without the language model, for admin commands.
func openStore(path string) (*knowledge.Store, func(), error) {
	cfg, _, err := loadConfig(path)
	if err != nil {
		return nil, nil, err
	}
	db, err := sqldb.Open(cfg.Databases.SQL)
	if err != nil {
		return nil, nil, err
	}
	store := knowledge.NewStore(db)
	if err := store.Migrate(); err != nil {
		_ = sqldb.Close(db)
		return nil, nil, err
	}
	return store, func() { _ = sqldb.Close(db) }, nil
}
