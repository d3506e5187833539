// Package pgstore stores rendered definitions in PostgreSQL.
package pgstore

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/specialistvlad/extforge/internal/model"
	"github.com/specialistvlad/extforge/internal/output"
	"github.com/specialistvlad/extforge/internal/synth"
)

// ErrNotFound is returned by Get for an unknown definition.
var ErrNotFound = errors.New("definition not found")

// Store implements output.Writer on a definitions table.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

var _ output.Writer = (*Store)(nil)

// New wraps an open database handle.
func New(db *sql.DB) *Store {
	return &Store{db: db, now: time.Now}
}

// Open connects to databaseURL and verifies the connection.
func Open(ctx context.Context, databaseURL string) (*Store, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return New(db), nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Write upserts the document in its own transaction. Unchanged bodies keep
// their updated_at.
func (s *Store) Write(ctx context.Context, doc synth.Document) error {
	if err := s.upsert(ctx, doc); err != nil {
		return &output.WriteError{Kind: doc.Kind, Name: doc.Name, Err: err}
	}
	return nil
}

func (s *Store) upsert(ctx context.Context, doc synth.Document) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	sum := sha256.Sum256(doc.Data)
	_, err = tx.ExecContext(ctx, `
		INSERT INTO definitions (kind, name, logical_name, body, checksum, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (kind, name) DO UPDATE
		SET logical_name = EXCLUDED.logical_name,
		    body = EXCLUDED.body,
		    checksum = EXCLUDED.checksum,
		    updated_at = EXCLUDED.updated_at
		WHERE definitions.checksum <> EXCLUDED.checksum
	`, string(doc.Kind), doc.Name, doc.LogicalName, doc.Data, hex.EncodeToString(sum[:]), s.now())
	if err != nil {
		return fmt.Errorf("failed to upsert definition: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}

// Get loads a stored definition.
func (s *Store) Get(ctx context.Context, kind model.ObjectKind, name string) (synth.Document, error) {
	doc := synth.Document{Kind: kind, Name: name}
	err := s.db.QueryRowContext(ctx, `
		SELECT logical_name, body
		FROM definitions
		WHERE kind = $1 AND name = $2
	`, string(kind), name).Scan(&doc.LogicalName, &doc.Data)

	if errors.Is(err, sql.ErrNoRows) {
		return synth.Document{}, fmt.Errorf("%w: %s %q", ErrNotFound, kind, name)
	}
	if err != nil {
		return synth.Document{}, fmt.Errorf("failed to get definition: %w", err)
	}
	return doc, nil
}

// List returns the logical names of every stored definition.
func (s *Store) List(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT logical_name FROM definitions ORDER BY logical_name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list definitions: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, fmt.Errorf("failed to scan definition: %w", err)
		}
		names = append(names, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating definitions: %w", err)
	}
	return names, nil
}
