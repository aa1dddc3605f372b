package main

import (
	"context"
	"log"
	"time"

	"ai-docrouter-be/internal/config"
	"ai-docrouter-be/internal/repository/implementation"
	"ai-docrouter-be/pkg/database"
)

func main() {
	// 1. Load Environment Variables
	cfg := config.Load()
	if !cfg.UseDurableStorage() {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}

	// 2. Connect to Database using existing GORM helpers
	db, err := database.NewGormDBFromDSN(cfg.Database.Connection, cfg.IsProduction())
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	// 3. Create tables and indexes. Safe to run repeatedly and from several processes at once.
	log.Println("Initializing shared memory schema...")
	if err := implementation.NewMemoryRepository(db).EnsureSchema(ctx); err != nil {
		log.Fatal("Error: Schema initialization failed:", err)
	}

	log.Println("Migration complete: shared_memory, agent_logs")
}
