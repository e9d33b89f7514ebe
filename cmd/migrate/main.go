package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"egabank/internal/config"
	"egabank/internal/db"

	"github.com/jmoiron/sqlx"
)

const downMarker = "-- +migrate Down"

func main() {
	cfg := config.Load()
	database, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}
	defer database.Close()

	if _, err := database.Exec(`CREATE TABLE IF NOT EXISTS schema_migrations (filename text primary key, applied_at timestamptz default now())`); err != nil {
		log.Fatalf("failed to ensure schema_migrations: %v", err)
	}

	pending, err := pendingMigrations(database)
	if err != nil {
		log.Fatalf("failed to list migrations: %v", err)
	}
	if len(pending) == 0 {
		fmt.Println("schema up to date")
		return
	}

	for _, file := range pending {
		if err := apply(database, file); err != nil {
			log.Fatalf("failed to apply %s: %v", filepath.Base(file), err)
		}
		fmt.Printf("applied %s\n", filepath.Base(file))
	}
}

func pendingMigrations(database *sqlx.DB) ([]string, error) {
	files, err := filepath.Glob("migrations/*.sql")
	if err != nil {
		return nil, err
	}
	sort.Strings(files)

	applied := map[string]bool{}
	var names []string
	if err := database.Select(&names, `SELECT filename FROM schema_migrations`); err != nil {
		return nil, err
	}
	for _, name := range names {
		applied[name] = true
	}

	var pending []string
	for _, file := range files {
		if !applied[filepath.Base(file)] {
			pending = append(pending, file)
		}
	}
	return pending, nil
}

// apply runs the Up section of one migration file and records it, all in
// a single transaction.
func apply(database *sqlx.DB, file string) error {
	content, err := os.ReadFile(file)
	if err != nil {
		return err
	}
	up, _, _ := strings.Cut(string(content), downMarker)

	tx, err := database.Beginx()
	if err != nil {
		return err
	}
	if _, err := tx.Exec(up); err != nil {
		_ = tx.Rollback()
		return err
	}
	if _, err := tx.Exec(`INSERT INTO schema_migrations (filename) VALUES ($1)`, filepath.Base(file)); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}
