// Package store persists retained pivots to a local sqlite database so
// repeated scans can be compared across runs.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"pivotscan/pkg/model"
)

const schema = `
CREATE TABLE IF NOT EXISTS pivots (
	symbol    TEXT NOT NULL,
	date      TEXT NOT NULL,
	frequency TEXT NOT NULL,
	kind      TEXT NOT NULL,
	price     REAL NOT NULL,
	score     REAL NOT NULL,
	run_id    TEXT NOT NULL,
	PRIMARY KEY (symbol, date, frequency, kind)
);
`

// Store wraps the sqlite pivot database.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at path and ensures the
// schema exists.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening pivot store %s: %w", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing pivot store: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// SavePivots upserts one symbol's retained pivots under the given run ID.
// A pivot at an existing (symbol, date, frequency, kind) key is overwritten
// with the newer score and run.
func (s *Store) SavePivots(ctx context.Context, symbol string, freq model.Frequency, runID string, pivots []model.Pivot) error {
	if len(pivots) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO pivots (symbol, date, frequency, kind, price, score, run_id)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (symbol, date, frequency, kind)
		DO UPDATE SET price = excluded.price, score = excluded.score, run_id = excluded.run_id`)
	if err != nil {
		return fmt.Errorf("preparing upsert: %w", err)
	}
	defer stmt.Close()

	for _, p := range pivots {
		_, err := stmt.ExecContext(ctx,
			symbol, p.Time.Format("2006-01-02"), string(freq), string(p.Kind), p.Price, p.Score, runID)
		if err != nil {
			return fmt.Errorf("upserting pivot %s %s: %w", symbol, p.Time.Format("2006-01-02"), err)
		}
	}
	return tx.Commit()
}

// Pivots loads a symbol's stored pivots for one frequency, ordered by date.
func (s *Store) Pivots(ctx context.Context, symbol string, freq model.Frequency) ([]model.Pivot, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT date, kind, price, score FROM pivots
		WHERE symbol = ? AND frequency = ?
		ORDER BY date`, symbol, string(freq))
	if err != nil {
		return nil, fmt.Errorf("querying pivots for %s: %w", symbol, err)
	}
	defer rows.Close()

	var pivots []model.Pivot
	for rows.Next() {
		var date, kind string
		var p model.Pivot
		if err := rows.Scan(&date, &kind, &p.Price, &p.Score); err != nil {
			return nil, fmt.Errorf("scanning pivot row: %w", err)
		}
		t, err := time.Parse("2006-01-02", date)
		if err != nil {
			return nil, fmt.Errorf("stored date %q: %w", date, err)
		}
		p.Time = t
		p.Kind = model.PivotKind(kind)
		pivots = append(pivots, p)
	}
	return pivots, rows.Err()
}
