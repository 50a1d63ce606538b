// Command jarvis_mcp serves the JARVIS conversation core as MCP tools over stdio.
package main

import (
	"context"
	"flag"
	"log"
	"os"

	"jarvis/backend/go/internal/bootstrap"
	"jarvis/backend/go/internal/config"
	"jarvis/backend/go/internal/jarvis_service/mcptools"
	"jarvis/backend/go/pkg/logger"

	"github.com/mark3labs/mcp-go/server"
)

func main() {
	configPath := flag.String("config", os.Getenv("JARVIS_CONFIG"), "path to the YAML config file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	// stdout carries the MCP protocol
	logger.Init(logger.ParseLevel(cfg.Logger.Level))
	logger.SetOutput(os.Stderr)
	appLogger := logger.New("jarvis_mcp")

	app, err := bootstrap.New(context.Background(), cfg, appLogger)
	if err != nil {
		appLogger.Fatal(err.Error())
	}
	defer app.Close()

	h := mcptools.NewHandler(app.Orchestrator, app.Learner, app.Store, app.Journal)
	s := mcptools.NewServer(h)

	appLogger.Info("Starting JARVIS MCP server with STDIO transport")
	if err := server.ServeStdio(s); err != nil {
		appLogger.WithErr(err).Error("STDIO server error")
	}
}
