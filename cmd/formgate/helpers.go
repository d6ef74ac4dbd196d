package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/artpar/formgate/adapters/sqlite"
	"github.com/artpar/formgate/config"
)

const checkMark = "\033[32m✓\033[0m"

// openDatabase loads configuration and opens the migrated database for
// management commands that bypass the HTTP server.
func openDatabase() (*sqlite.DB, error) {
	cfg, err := config.LoadWithFallback(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	db, err := sqlite.Open(cfg.Database.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return db, nil
}

func confirm(message string) bool {
	reader := bufio.NewReader(os.Stdin)
	fmt.Printf("? %s [y/N]: ", message)
	input, _ := reader.ReadString('\n')
	input = strings.ToLower(strings.TrimSpace(input))
	return input == "y" || input == "yes"
}
