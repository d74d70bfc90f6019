package main

import (
	"log"
	"os"
	"path/filepath"

	"warden-bot/bot"
	"warden-bot/config"
	"warden-bot/handlers"
	"warden-bot/storage"
	"warden-bot/utils/database"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Error loading configuration: %v", err)
	}

	if err := os.MkdirAll(cfg.DataDir, os.ModePerm); err != nil {
		log.Fatalf("Failed to create data directory: %v", err)
	}

	store, err := storage.NewGuildStore(filepath.Join(cfg.DataDir, "guild_configs"))
	if err != nil {
		log.Fatalf("Error initializing guild store: %v", err)
	}

	auditDB, err := database.InitIsolationDB(cfg.AuditDBPath)
	if err != nil {
		log.Fatalf("Error initializing isolation audit database: %v", err)
	}

	b, err := bot.New(cfg, store, auditDB)
	if err != nil {
		log.Fatalf("Error creating bot: %v", err)
	}

	handlers.Register(b)

	b.Run()

	defer b.Close()
}
