// Command migrate applies the SQL files under MIGRATIONS_DIR.
//
//	migrate        # up
//	migrate down
package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/MikeMC777/storefront/internal/config"
	"github.com/MikeMC777/storefront/internal/db"
)

func main() {
	direction := db.Up
	if len(os.Args) > 1 {
		direction = os.Args[1]
	}

	cfg := config.Load()
	conn, err := db.Open(cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("[migrate] %v", err)
	}
	defer conn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	n, err := db.Migrate(ctx, conn, os.DirFS(cfg.MigrationsDir), direction)
	if err != nil {
		log.Fatalf("[migrate] %v (%d files applied before the failure)", err, n)
	}
	log.Printf("[migrate] %s: %d files applied from %s", direction, n, cfg.MigrationsDir)
}
