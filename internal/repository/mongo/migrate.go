package mongo

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/Rrens/aura-chat/internal/config"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/mongodb"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/rs/zerolog/log"
)

// RunMigrations applies the JSON command migrations found at sourceURL
func RunMigrations(cfg config.DatabaseConfig, sourceURL string) error {
	uri, err := migrationURI(cfg)
	if err != nil {
		return err
	}

	m, err := migrate.New(sourceURL, uri)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			log.Info().Msg("Database migration: no changes")
			return nil
		}
		return fmt.Errorf("failed to run migrate up: %w", err)
	}

	log.Info().Msg("Database migration: success")
	return nil
}

// migrationURI puts the database name into the URI path, where the
// migrate driver expects it. A name already present in the URI wins.
func migrationURI(cfg config.DatabaseConfig) (string, error) {
	u, err := url.Parse(cfg.URI)
	if err != nil {
		return "", fmt.Errorf("invalid database uri: %w", err)
	}
	if strings.Trim(u.Path, "/") == "" {
		u.Path = "/" + cfg.Name
	}
	return u.String(), nil
}
