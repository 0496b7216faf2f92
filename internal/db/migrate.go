package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"sort"
	"strings"

	"github.com/lib/pq"
)

const (
	Up   = "up"
	Down = "down"
)

// Open returns a database/sql handle on the lib/pq driver. Only the migration
// runner uses it; the service talks to Postgres through pgx.
func Open(dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return db, nil
}

// MigrationFiles lists the *.<direction>.sql files of dir in execution order.
func MigrationFiles(dir fs.FS, direction string) ([]string, error) {
	if direction != Up && direction != Down {
		return nil, fmt.Errorf("direction must be %q or %q", Up, Down)
	}
	entries, err := fs.ReadDir(dir, ".")
	if err != nil {
		return nil, fmt.Errorf("read migration directory: %w", err)
	}

	var files []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), "."+direction+".sql") {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)
	if direction == Down {
		for i, j := 0, len(files)-1; i < j; i, j = i+1, j-1 {
			files[i], files[j] = files[j], files[i]
		}
	}
	return files, nil
}

// Migrate runs every migration file of the given direction and returns how many ran.
func Migrate(ctx context.Context, db *sql.DB, dir fs.FS, direction string) (int, error) {
	files, err := MigrationFiles(dir, direction)
	if err != nil {
		return 0, err
	}
	for i, name := range files {
		content, err := fs.ReadFile(dir, name)
		if err != nil {
			return i, fmt.Errorf("read migration file %s: %w", name, err)
		}
		log.Printf("[migrate] running %s", name)
		if _, err := db.ExecContext(ctx, string(content)); err != nil {
			var pqErr *pq.Error
			if errors.As(err, &pqErr) {
				return i, fmt.Errorf("execute migration %s: %s (code %s)", name, pqErr.Message, pqErr.Code)
			}
			return i, fmt.Errorf("execute migration %s: %w", name, err)
		}
	}
	return len(files), nil
}
