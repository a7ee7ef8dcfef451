// Package duckstore persists the annotation store to DuckDB: one row per
// (domain, category, entity_index) holding its term set as a delimited
// list column rather than a separate join table. Schema is ensured at
// Open; Load and Snapshot move whole (domain, category) slices at once.
package duckstore

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	_ "github.com/marcboeker/go-duckdb"

	"github.com/bionetslab/digest-go/internal/annotstore"
	"github.com/bionetslab/digest-go/internal/coefficient"
	"github.com/bionetslab/digest-go/internal/registry"
)

const termDelim = ","

// Store provides DuckDB-backed load/snapshot of an annotation store.
type Store struct {
	db *sql.DB
}

// Open opens or creates a DuckDB database for annotation data at the
// given path. An empty path opens an in-memory database.
func Open(path string) (*Store, error) {
	if path != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("create annotation store directory: %w", err)
		}
	}

	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("open annotation duckdb: %w", err)
	}

	s := &Store{db: db}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure annotation schema: %w", err)
	}
	return s, nil
}

func (s *Store) ensureSchema() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS annotations (
		domain VARCHAR,
		category VARCHAR,
		entity_index UINTEGER,
		terms VARCHAR,
		PRIMARY KEY (domain, category, entity_index)
	)`)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Snapshot persists every (entity, term-set) row for a (domain, category)
// pair, overwriting any prior snapshot for that pair.
func (s *Store) Snapshot(domain registry.Domain, category annotstore.Category, store *annotstore.Store) error {
	if _, err := s.db.Exec("DELETE FROM annotations WHERE domain=? AND category=?",
		domain.String(), string(category)); err != nil {
		return fmt.Errorf("clear annotations: %w", err)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin annotation snapshot: %w", err)
	}

	stmt, err := tx.Prepare("INSERT INTO annotations (domain, category, entity_index, terms) VALUES (?, ?, ?, ?)")
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("prepare annotation insert: %w", err)
	}
	defer stmt.Close()

	var writeErr error
	store.IterAll(domain, category, func(e registry.EntityIndex, terms coefficient.TermSet) {
		if writeErr != nil {
			return
		}
		_, writeErr = stmt.Exec(domain.String(), string(category), uint32(e), encodeTerms(terms))
	})
	if writeErr != nil {
		tx.Rollback()
		return fmt.Errorf("write annotation row: %w", writeErr)
	}

	return tx.Commit()
}

// Load reads back a persisted (domain, category) snapshot into an
// annotation store via Extend, so loading twice is idempotent.
func (s *Store) Load(domain registry.Domain, category annotstore.Category, store *annotstore.Store) error {
	rows, err := s.db.Query("SELECT entity_index, terms FROM annotations WHERE domain=? AND category=?",
		domain.String(), string(category))
	if err != nil {
		return fmt.Errorf("query annotations: %w", err)
	}
	defer rows.Close()

	var batch []annotstore.Row
	for rows.Next() {
		var entity uint32
		var terms string
		if err := rows.Scan(&entity, &terms); err != nil {
			return fmt.Errorf("scan annotation row: %w", err)
		}
		batch = append(batch, annotstore.Row{
			Entity:   registry.EntityIndex(entity),
			Category: category,
			Terms:    decodeTerms(terms),
		})
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("read annotation rows: %w", err)
	}

	store.Extend(domain, batch)
	return nil
}

func encodeTerms(terms coefficient.TermSet) string {
	parts := make([]string, 0, len(terms))
	for id := range terms {
		parts = append(parts, strconv.FormatUint(uint64(id), 10))
	}
	return strings.Join(parts, termDelim)
}

func decodeTerms(encoded string) coefficient.TermSet {
	if encoded == "" {
		return coefficient.TermSet{}
	}
	parts := strings.Split(encoded, termDelim)
	terms := make(coefficient.TermSet, len(parts))
	for _, p := range parts {
		id, err := strconv.ParseUint(p, 10, 32)
		if err != nil {
			continue
		}
		terms[uint32(id)] = struct{}{}
	}
	return terms
}
