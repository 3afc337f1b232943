// Package sink persists benchmark outputs: snapshot triples to a relational
// table and timing rows to CSV.
package sink

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dbsmedya/encbench/internal/sqlutil"
	"github.com/dbsmedya/encbench/internal/types"
)

// Column names of the results table.
const (
	ColumnPlaintext  = "Original_SSN"
	ColumnSymmetric  = "AES_Encrypted_Hex"
	ColumnAsymmetric = "RSA_Encrypted_Hex"
)

// ErrResultsMissing is returned when the results table has not been written yet.
var ErrResultsMissing = errors.New("results table not found")

// ResultTable replaces the contents of the results table with a snapshot.
type ResultTable struct {
	db    *sql.DB
	table string
}

// NewResultTable validates the table name.
func NewResultTable(db *sql.DB, table string) (*ResultTable, error) {
	if db == nil {
		return nil, fmt.Errorf("database is nil")
	}
	if !sqlutil.IsValidIdentifier(table) {
		return nil, &sqlutil.InvalidIdentifierError{Name: table}
	}
	return &ResultTable{db: db, table: table}, nil
}

// Table returns the results table name.
func (r *ResultTable) Table() string {
	return r.table
}

// Write drops and recreates the results table and inserts every triple of
// the snapshot in one transaction.
func (r *ResultTable) Write(ctx context.Context, snap *types.Snapshot) error {
	if snap == nil {
		return fmt.Errorf("snapshot is nil")
	}

	quoted := sqlutil.QuoteIdentifier(r.table)
	insert, err := sqlutil.InsertPlaceholders(r.table, ColumnPlaintext, ColumnSymmetric, ColumnAsymmetric)
	if err != nil {
		return err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DROP TABLE IF EXISTS "+quoted); err != nil {
		return fmt.Errorf("failed to drop %s: %w", r.table, err)
	}

	create := fmt.Sprintf("CREATE TABLE %s (%s TEXT, %s TEXT, %s TEXT)", quoted,
		sqlutil.QuoteIdentifier(ColumnPlaintext),
		sqlutil.QuoteIdentifier(ColumnSymmetric),
		sqlutil.QuoteIdentifier(ColumnAsymmetric))
	if _, err := tx.ExecContext(ctx, create); err != nil {
		return fmt.Errorf("failed to create %s: %w", r.table, err)
	}

	stmt, err := tx.PrepareContext(ctx, insert)
	if err != nil {
		return fmt.Errorf("failed to prepare insert into %s: %w", r.table, err)
	}
	defer stmt.Close()

	for i, t := range snap.Triples {
		if _, err := stmt.ExecContext(ctx, t.Plaintext, t.SymHex, t.AsymHex); err != nil {
			return fmt.Errorf("failed to insert row %d into %s: %w", i+1, r.table, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit %s: %w", r.table, err)
	}
	return nil
}

// LoadTriples reads every row of the results table.
func (r *ResultTable) LoadTriples(ctx context.Context) ([]types.Triple, error) {
	query := fmt.Sprintf("SELECT %s, %s, %s FROM %s",
		sqlutil.QuoteIdentifier(ColumnPlaintext),
		sqlutil.QuoteIdentifier(ColumnSymmetric),
		sqlutil.QuoteIdentifier(ColumnAsymmetric),
		sqlutil.QuoteIdentifier(r.table))

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		if sqlutil.IsNoSuchTable(err) {
			return nil, fmt.Errorf("%w: %s (run the benchmark first)", ErrResultsMissing, r.table)
		}
		return nil, fmt.Errorf("failed to read %s: %w", r.table, err)
	}
	defer rows.Close()

	var triples []types.Triple
	for rows.Next() {
		var t types.Triple
		if err := rows.Scan(&t.Plaintext, &t.SymHex, &t.AsymHex); err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", r.table, err)
		}
		triples = append(triples, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating %s: %w", r.table, err)
	}

	return triples, nil
}

