package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/evenground/evenground-api/internal/config"
	"github.com/evenground/evenground-api/internal/database"
	"github.com/evenground/evenground-api/internal/services"
)

const usage = "Usage: evenground-admin <migrate|purge-tokens>"

func main() {
	if len(os.Args) != 2 {
		fmt.Println(usage)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx := context.Background()

	db, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	switch os.Args[1] {
	case "migrate":
		if err := db.Migrate(ctx); err != nil {
			log.Fatalf("Failed to run migrations: %v", err)
		}
		fmt.Println("Migrations applied")
	case "purge-tokens":
		if err := services.NewTokenService(db).CleanupExpired(ctx); err != nil {
			log.Fatalf("Failed to purge tokens: %v", err)
		}
		fmt.Println("Expired refresh and login tokens purged")
	default:
		fmt.Println(usage)
		os.Exit(1)
	}
}
