// File path: cmd/povd/main.go
package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/fieldscale/povd/internal/api"
	"github.com/fieldscale/povd/internal/common"
	"github.com/fieldscale/povd/internal/config"
	"github.com/fieldscale/povd/internal/data/orchestrator"
)

func main() {
	logger := common.Logger()

	if err := godotenv.Load(); err != nil {
		logger.Warn("povd: .env file not loaded", "error", err)
	} else {
		logger.Info("povd: environment loaded from .env")
	}

	addr := flag.String("addr", "", "listen address (overrides configuration)")
	dbPath := flag.String("db", "", "path to the SQLite database (overrides configuration)")
	provider := flag.String("provider", "", "completion provider: openai, langchain, or local")
	model := flag.String("model", "", "default completion model")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("povd: configuration load failed", "error", err)
		fmt.Println("configuration error:", err)
		os.Exit(1)
	}
	if trimmed := strings.TrimSpace(*addr); trimmed != "" {
		cfg.Addr = trimmed
	}
	if trimmed := strings.TrimSpace(*dbPath); trimmed != "" {
		cfg.DatabasePath = trimmed
	}
	if trimmed := strings.TrimSpace(*provider); trimmed != "" {
		cfg.Provider = trimmed
	}
	if trimmed := strings.TrimSpace(*model); trimmed != "" {
		cfg.Model = trimmed
	}

	logger.Info("povd: startup initiated", "addr", cfg.Addr, "db", cfg.DatabasePath, "provider", cfg.Provider)

	orch, err := orchestrator.New(cfg)
	if err != nil {
		logger.Error("povd: orchestrator initialization failed", "error", err)
		fmt.Println("orchestrator error:", err)
		os.Exit(1)
	}
	defer orch.Close()
	logger.Info("povd: provider ready", "provider", orch.Provider().Name())

	server, err := api.NewServer(orch, strings.TrimSpace(os.Getenv("POVD_API_KEY")))
	if err != nil {
		logger.Error("povd: server construction failed", "error", err)
		fmt.Println("server error:", err)
		os.Exit(1)
	}

	logger.Info("povd: server listening", "addr", cfg.Addr, "health", "/healthz")
	fmt.Printf("Serving on %s\n", cfg.Addr)
	reachable := cfg.Addr
	if strings.HasPrefix(reachable, ":") {
		reachable = "localhost" + reachable
	}
	logger.Info("povd: verify reachability", "suggestion", fmt.Sprintf("curl http://%s/healthz", reachable))
	if err := http.ListenAndServe(cfg.Addr, server); err != nil {
		logger.Error("povd: server stopped", "error", err)
		fmt.Println("server stopped:", err)
	}
}
