// File path: cmd/projectvault/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"projectvault/internal/api"
	"projectvault/internal/auth"
	"projectvault/internal/common"
	"projectvault/internal/store"
)

func main() {
	logger := common.Logger()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := godotenv.Load(); err != nil {
		logger.Warn("vault: .env file not loaded", "error", err)
	} else {
		logger.Info("vault: environment loaded from .env")
	}

	addr := flag.String("addr", ":8082", "listen address")
	dbPath := flag.String("db", defaultDBPath(), "path to the project vault database")
	saveTimeout := flag.String("save-timeout", "", "time budget for one save transaction (e.g. 30s)")
	flag.Parse()

	logger.Info("vault: startup initiated", "addr", *addr, "db", *dbPath)

	st, err := store.Open(*dbPath)
	if err != nil {
		logger.Error("vault: store open failed", "error", err)
		fmt.Println("store error:", err)
		os.Exit(1)
	}
	defer st.Close()

	if err := bootstrapToken(ctx, st); err != nil {
		logger.Error("vault: token bootstrap failed", "error", err)
		fmt.Println("token bootstrap error:", err)
		os.Exit(1)
	}

	cfg := api.DefaultConfig()
	if trimmed := strings.TrimSpace(*saveTimeout); trimmed != "" {
		dur, err := time.ParseDuration(trimmed)
		if err != nil {
			logger.Error("vault: invalid save timeout", "value", trimmed, "error", err)
			fmt.Println("save timeout error:", err)
			os.Exit(1)
		}
		cfg.SaveTimeout = dur
	}

	server, err := api.NewServer(st, &cfg)
	if err != nil {
		logger.Error("vault: server construction failed", "error", err)
		fmt.Println("server error:", err)
		os.Exit(1)
	}

	logger.Info("vault: server listening", "addr", *addr, "health", "/healthz")
	fmt.Printf("Serving on %s\n", *addr)
	if err := http.ListenAndServe(*addr, server); err != nil {
		logger.Error("vault: server stopped", "error", err)
		fmt.Println("server stopped:", err)
	}
}

// bootstrapToken registers the owner credential supplied via VAULT_API_TOKEN
// so authenticated endpoints are usable out of the box.
func bootstrapToken(ctx context.Context, st *store.Store) error {
	token := strings.TrimSpace(os.Getenv("VAULT_API_TOKEN"))
	if token == "" {
		return nil
	}
	owner := strings.TrimSpace(os.Getenv("VAULT_API_OWNER"))
	if owner == "" {
		owner = "owner"
	}
	return st.EnsureToken(ctx, auth.HashToken(token), owner, "bootstrap")
}

func defaultDBPath() string {
	return filepath.Join("data", "vault.db")
}
