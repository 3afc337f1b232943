package sink

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dbsmedya/encbench/internal/types"
)

func testSnapshot() *types.Snapshot {
	return &types.Snapshot{
		BatchSize: 2,
		Triples: []types.Triple{
			{Plaintext: "123456789", SymHex: "aa01", AsymHex: "bb01"},
			{Plaintext: "234567890", SymHex: "aa02", AsymHex: "bb02"},
		},
	}
}

func TestNewResultTable(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	_, err = NewResultTable(db, "Encryption Results")
	assert.Error(t, err)

	_, err = NewResultTable(nil, "Encryption_Results")
	assert.Error(t, err)

	rt, err := NewResultTable(db, "Encryption_Results")
	require.NoError(t, err)
	assert.Equal(t, "Encryption_Results", rt.Table())
}

func TestResultTable_Write(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DROP TABLE IF EXISTS `Encryption_Results`")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE `Encryption_Results` (`Original_SSN` TEXT, `AES_Encrypted_Hex` TEXT, `RSA_Encrypted_Hex` TEXT)")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	prep := mock.ExpectPrepare(regexp.QuoteMeta(
		"INSERT INTO `Encryption_Results` (`Original_SSN`, `AES_Encrypted_Hex`, `RSA_Encrypted_Hex`) VALUES (?, ?, ?)"))
	prep.ExpectExec().WithArgs("123456789", "aa01", "bb01").WillReturnResult(sqlmock.NewResult(1, 1))
	prep.ExpectExec().WithArgs("234567890", "aa02", "bb02").WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectCommit()

	rt, err := NewResultTable(db, "Encryption_Results")
	require.NoError(t, err)
	require.NoError(t, rt.Write(context.Background(), testSnapshot()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResultTable_WriteRollsBackOnInsertFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec("DROP TABLE").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("CREATE TABLE").WillReturnResult(sqlmock.NewResult(0, 0))
	prep := mock.ExpectPrepare("INSERT INTO")
	prep.ExpectExec().WillReturnError(errors.New("disk I/O error"))
	mock.ExpectRollback()

	rt, err := NewResultTable(db, "Encryption_Results")
	require.NoError(t, err)

	err = rt.Write(context.Background(), testSnapshot())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to insert row 1")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResultTable_LoadMissingMySQL(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT").WillReturnError(&mysql.MySQLError{Number: 1146, Message: "Table 'hospital.Encryption_Results' doesn't exist"})

	rt, err := NewResultTable(db, "Encryption_Results")
	require.NoError(t, err)

	_, err = rt.LoadTriples(context.Background())
	assert.ErrorIs(t, err, ErrResultsMissing)
}

func TestResultTable_SQLiteRoundTrip(t *testing.T) {
	db, err := sql.Open("sqlite3", filepath.Join(t.TempDir(), "hospital.db"))
	require.NoError(t, err)
	defer db.Close()
	db.SetMaxOpenConns(1)

	rt, err := NewResultTable(db, "Encryption_Results")
	require.NoError(t, err)

	_, err = rt.LoadTriples(context.Background())
	assert.ErrorIs(t, err, ErrResultsMissing)

	require.NoError(t, rt.Write(context.Background(), testSnapshot()))
	// A second write replaces the first.
	require.NoError(t, rt.Write(context.Background(), testSnapshot()))

	triples, err := rt.LoadTriples(context.Background())
	require.NoError(t, err)
	assert.Equal(t, testSnapshot().Triples, triples)
}
