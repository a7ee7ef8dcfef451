// Package duckstore persists the sparse distance store to DuckDB: one
// triples table holding (domain, category, coef, row, col, value) and one
// directory table holding (domain, coef, entity_index, matrix_row).
// Schema is ensured at Open; snapshots are batch writes through the
// go-duckdb Appender.
package duckstore

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"os"
	"path/filepath"

	goduckdb "github.com/marcboeker/go-duckdb"

	"github.com/bionetslab/digest-go/internal/coefficient"
	"github.com/bionetslab/digest-go/internal/distmat"
	"github.com/bionetslab/digest-go/internal/registry"
)

// Store manages a DuckDB connection used to snapshot and reload a sparse
// distance store.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens or creates a DuckDB database at the given path. An empty path
// opens an in-memory database.
func Open(path string) (*Store, error) {
	if path != "" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create distance store directory: %w", err)
		}
	}

	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("open distance duckdb: %w", err)
	}

	s := &Store{db: db, path: path}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure distance schema: %w", err)
	}
	return s, nil
}

func (s *Store) ensureSchema() error {
	if _, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS distances (
		domain VARCHAR,
		category VARCHAR,
		coef VARCHAR,
		row_idx UINTEGER,
		col_idx UINTEGER,
		value FLOAT,
		PRIMARY KEY (domain, category, coef, row_idx, col_idx)
	)`); err != nil {
		return err
	}
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS directory (
		domain VARCHAR,
		coef VARCHAR,
		entity_index UINTEGER,
		matrix_row UINTEGER,
		PRIMARY KEY (domain, coef, entity_index)
	)`)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// PersistDirectory snapshots the directory for one (domain, coefficient)
// as a single clear-then-append batch on one connection.
func (s *Store) PersistDirectory(domain registry.Domain, coef coefficient.Coefficient, entities []registry.EntityIndex) error {
	conn, err := s.db.Conn(context.Background())
	if err != nil {
		return fmt.Errorf("get connection: %w", err)
	}
	defer conn.Close()

	if _, err := conn.ExecContext(context.Background(),
		"DELETE FROM directory WHERE domain=? AND coef=?", domain.String(), coef.String()); err != nil {
		return fmt.Errorf("clear directory: %w", err)
	}

	var appender *goduckdb.Appender
	if err := conn.Raw(func(driverConn any) error {
		var err error
		appender, err = goduckdb.NewAppenderFromConn(driverConn.(driver.Conn), "", "directory")
		return err
	}); err != nil {
		return fmt.Errorf("create directory appender: %w", err)
	}
	defer appender.Close()

	for row, e := range entities {
		if err := appender.AppendRow(domain.String(), coef.String(), uint32(e), uint32(row)); err != nil {
			return fmt.Errorf("append directory row: %w", err)
		}
	}
	return appender.Flush()
}

// PersistTriples snapshots one (domain, category, coefficient) matrix.
func (s *Store) PersistTriples(domain registry.Domain, category string, coef coefficient.Coefficient, view distmat.SparseView, rowOf map[registry.EntityIndex]uint32) error {
	conn, err := s.db.Conn(context.Background())
	if err != nil {
		return fmt.Errorf("get connection: %w", err)
	}
	defer conn.Close()

	if _, err := conn.ExecContext(context.Background(),
		"DELETE FROM distances WHERE domain=? AND category=? AND coef=?", domain.String(), category, coef.String()); err != nil {
		return fmt.Errorf("clear distances: %w", err)
	}

	var appender *goduckdb.Appender
	if err := conn.Raw(func(driverConn any) error {
		var err error
		appender, err = goduckdb.NewAppenderFromConn(driverConn.(driver.Conn), "", "distances")
		return err
	}); err != nil {
		return fmt.Errorf("create distances appender: %w", err)
	}
	defer appender.Close()

	for _, t := range view.Triples {
		ri, rj := rowOf[t.I], rowOf[t.J]
		row, col := ri, rj
		if row > col {
			row, col = col, row
		}
		if err := appender.AppendRow(domain.String(), category, coef.String(), row, col, float32(t.Value)); err != nil {
			return fmt.Errorf("append distance triple: %w", err)
		}
	}
	return appender.Flush()
}

// LoadDirectory reads back a persisted directory as entity order by row.
func (s *Store) LoadDirectory(domain registry.Domain, coef coefficient.Coefficient) ([]registry.EntityIndex, error) {
	rows, err := s.db.Query(
		`SELECT entity_index FROM directory WHERE domain=? AND coef=? ORDER BY matrix_row`,
		domain.String(), coef.String())
	if err != nil {
		return nil, fmt.Errorf("query directory: %w", err)
	}
	defer rows.Close()

	var entities []registry.EntityIndex
	for rows.Next() {
		var e uint32
		if err := rows.Scan(&e); err != nil {
			return nil, fmt.Errorf("scan directory row: %w", err)
		}
		entities = append(entities, registry.EntityIndex(e))
	}
	return entities, rows.Err()
}

// LoadTriples reads back a persisted matrix's stored triples, resolved to
// entity indices via the supplied row->entity mapping.
func (s *Store) LoadTriples(domain registry.Domain, category string, coef coefficient.Coefficient, entityAt []registry.EntityIndex) ([]distmat.Triple, error) {
	rows, err := s.db.Query(
		`SELECT row_idx, col_idx, value FROM distances WHERE domain=? AND category=? AND coef=?`,
		domain.String(), category, coef.String())
	if err != nil {
		return nil, fmt.Errorf("query distances: %w", err)
	}
	defer rows.Close()

	var out []distmat.Triple
	for rows.Next() {
		var row, col uint32
		var value float32
		if err := rows.Scan(&row, &col, &value); err != nil {
			return nil, fmt.Errorf("scan distance triple: %w", err)
		}
		if int(row) >= len(entityAt) || int(col) >= len(entityAt) {
			continue
		}
		out = append(out, distmat.Triple{I: entityAt[row], J: entityAt[col], Value: float64(value)})
	}
	return out, rows.Err()
}
