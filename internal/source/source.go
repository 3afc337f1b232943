// Package source provides the plaintext record sources the benchmark draws from.
package source

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dbsmedya/encbench/internal/sqlutil"
	"github.com/dbsmedya/encbench/internal/types"
)

// ErrNullRecord is returned when the source column contains NULL.
var ErrNullRecord = errors.New("source column contains NULL")

// RecordSource yields plaintext records in a stable order: Fetch(ctx, N)
// is always a prefix of Fetch(ctx, M) for N < M.
type RecordSource interface {
	// Fetch returns at most limit records. Callers must check the length.
	Fetch(ctx context.Context, limit int) (types.Batch, error)
}

// SQLSource reads one column of a relational table ordered by a key column.
type SQLSource struct {
	db    *sql.DB
	query string
	table string
}

// NewSQLSource validates the identifiers and prepares the selection query.
func NewSQLSource(db *sql.DB, table, column, orderBy string) (*SQLSource, error) {
	if db == nil {
		return nil, fmt.Errorf("database is nil")
	}
	query, err := sqlutil.SelectOrderedLimit(table, column, orderBy)
	if err != nil {
		return nil, fmt.Errorf("invalid source selection: %w", err)
	}
	return &SQLSource{db: db, query: query, table: table}, nil
}

// Fetch runs SELECT column FROM table ORDER BY key LIMIT limit.
func (s *SQLSource) Fetch(ctx context.Context, limit int) (types.Batch, error) {
	rows, err := s.db.QueryContext(ctx, s.query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch records from %s: %w", s.table, err)
	}
	defer rows.Close()

	batch := make(types.Batch, 0, limit)
	for rows.Next() {
		var value sql.NullString
		if err := rows.Scan(&value); err != nil {
			return nil, fmt.Errorf("failed to scan record from %s: %w", s.table, err)
		}
		if !value.Valid {
			return nil, fmt.Errorf("%w: %s row %d", ErrNullRecord, s.table, len(batch)+1)
		}
		batch = append(batch, types.PlaintextRecord(value.String))
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating records from %s: %w", s.table, err)
	}

	return batch, nil
}

// SliceSource serves records from memory.
type SliceSource struct {
	records types.Batch
}

// NewSliceSource copies the given values into a source.
func NewSliceSource(values ...string) *SliceSource {
	records := make(types.Batch, len(values))
	for i, v := range values {
		records[i] = types.PlaintextRecord(v)
	}
	return &SliceSource{records: records}
}

func (s *SliceSource) Fetch(_ context.Context, limit int) (types.Batch, error) {
	if limit > len(s.records) {
		limit = len(s.records)
	}
	if limit < 0 {
		limit = 0
	}
	out := make(types.Batch, limit)
	copy(out, s.records[:limit])
	return out, nil
}
