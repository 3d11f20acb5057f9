package designsystem

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// LoadPostgres reads the most recently updated design-system document from
// the design_systems table. The document column is jsonb; rule authoring and
// row maintenance are owned elsewhere, this is a read-once source.
func LoadPostgres(dsn string) (*System, error) {
	db, err := sql.Open("pgx", strings.TrimSpace(dsn))
	if err != nil {
		return nil, fmt.Errorf("open design system db: %w", err)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping design system db: %w", err)
	}

	var doc []byte
	err = db.QueryRow(`SELECT document FROM design_systems ORDER BY updated_at DESC LIMIT 1`).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoDocument
	}
	if err != nil {
		return nil, fmt.Errorf("query design system: %w", err)
	}
	return Parse(doc)
}
