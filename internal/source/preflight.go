package source

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dbsmedya/encbench/internal/sqlutil"
)

// ErrInsufficientRecords is returned when the source holds fewer records than a batch needs.
var ErrInsufficientRecords = errors.New("insufficient plaintext records")

// ErrSourceMissing is returned when the source table does not exist.
var ErrSourceMissing = errors.New("source table not found")

// Preflight verifies the source table can serve the largest batch size before
// any key material is generated.
func Preflight(ctx context.Context, db *sql.DB, table string, batchSizes []int) (int64, error) {
	query, err := sqlutil.CountRows(table)
	if err != nil {
		return 0, err
	}

	var available int64
	if err := db.QueryRowContext(ctx, query).Scan(&available); err != nil {
		if sqlutil.IsNoSuchTable(err) {
			return 0, fmt.Errorf("%w: %s: %v", ErrSourceMissing, table, err)
		}
		return 0, fmt.Errorf("failed to count records in %s: %w", table, err)
	}

	for _, n := range batchSizes {
		if int64(n) > available {
			return available, fmt.Errorf("%w: batch size %d needs %d records, %s has %d",
				ErrInsufficientRecords, n, n, table, available)
		}
	}

	return available, nil
}
