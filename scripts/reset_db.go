package main

import (
	"context"
	"fmt"
	"log"

	"watts-backend/internal/config"
	"watts-backend/internal/db"
	"watts-backend/internal/models"
)

// Tables in dependency order; readings reference meters and cycles.
var tables = []string{
	"readings",
	"billing_cycles",
	"meters",
	"slab_rate_configs",
	"settings",
}

func main() {
	cfg := config.Load()

	fmt.Println("========================================")
	fmt.Println("   Reset Watts Database")
	fmt.Println("========================================")
	fmt.Println()
	fmt.Printf("Database: %s@%s:%d/%s\n", cfg.Database.User, cfg.Database.Host, cfg.Database.Port, cfg.Database.Name)
	fmt.Println()
	fmt.Println("WARNING: this deletes every meter, billing cycle, reading,")
	fmt.Println("slab rate configuration and the consumption target.")
	fmt.Println()
	fmt.Print("Type 'yes' to confirm: ")

	var confirm string
	fmt.Scanln(&confirm)
	if confirm != "yes" {
		fmt.Println("Reset cancelled.")
		return
	}

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		log.Fatalf("Unable to connect to database: %v\n", err)
	}
	defer pool.Close()

	tx, err := pool.Begin(ctx)
	if err != nil {
		log.Fatalf("Failed to begin transaction: %v\n", err)
	}
	defer tx.Rollback(ctx)

	for _, table := range tables {
		if _, err := tx.Exec(ctx, fmt.Sprintf("TRUNCATE TABLE %s RESTART IDENTITY CASCADE", table)); err != nil {
			log.Fatalf("Failed to truncate %s: %v\n", table, err)
		}
		fmt.Printf("  cleared %s\n", table)
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO settings (setting_key, consumption_target) VALUES ($1, $2)`,
		models.SettingsKey, models.DefaultConsumptionTarget,
	)
	if err != nil {
		log.Fatalf("Failed to seed settings: %v\n", err)
	}
	fmt.Printf("  consumption target reset to %d units\n", models.DefaultConsumptionTarget)

	if err := tx.Commit(ctx); err != nil {
		log.Fatalf("Failed to commit transaction: %v\n", err)
	}

	fmt.Println()
	fmt.Println("Database reset. Start a billing cycle before recording readings.")
}
