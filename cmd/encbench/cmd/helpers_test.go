package cmd

import (
	"bytes"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"
)

// testEnv is a temp directory holding a config file and a sqlite source.
type testEnv struct {
	dir    string
	dbPath string
	out    *bytes.Buffer
}

// newTestEnv seeds a Patients table with records rows and points the
// command flags at a config file in a temp directory. extra is appended to
// the generated YAML.
func newTestEnv(t *testing.T, records int, batch string, extra string) *testEnv {
	t.Helper()

	dir := t.TempDir()
	env := &testEnv{
		dir:    dir,
		dbPath: filepath.Join(dir, "hospital.db"),
		out:    &bytes.Buffer{},
	}
	seedPatients(t, env.dbPath, records)

	yaml := fmt.Sprintf(`source:
  driver: sqlite3
  path: %s
  table: Patients
  column: ssn
  order_by: id
benchmark:
  batch_sizes: [%s]
asymmetric:
  scheme: rsa-oaep-sha256
  key_bits: 1024
results:
  table: Encryption_Results
  csv_path: %s
storage:
  output_dir: %s
logging:
  level: error
  output: stderr
%s`, env.dbPath, batch, filepath.Join(dir, "timings.csv"), dir, extra)

	cfgPath := filepath.Join(dir, "encbench.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(yaml), 0o600))

	originalCfgFile := cfgFile
	originalBatchSizes := batchSizes
	originalSkipVerify := skipVerify
	originalNoColor := noColor
	t.Cleanup(func() {
		cfgFile = originalCfgFile
		batchSizes = originalBatchSizes
		skipVerify = originalSkipVerify
		noColor = originalNoColor
		resetOutputWriter()
	})

	cfgFile = cfgPath
	batchSizes = nil
	skipVerify = false
	noColor = true
	setOutputWriter(env.out)

	return env
}

func seedPatients(t *testing.T, path string, n int) {
	t.Helper()

	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Exec("CREATE TABLE Patients (id INTEGER PRIMARY KEY, ssn TEXT)")
	require.NoError(t, err)
	for i := 1; i <= n; i++ {
		_, err = db.Exec("INSERT INTO Patients (id, ssn) VALUES (?, ?)", i, fmt.Sprintf("%09d", 100000000+i))
		require.NoError(t, err)
	}
}

func countRows(t *testing.T, path, table string) int {
	t.Helper()

	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	defer db.Close()

	var n int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM "+table).Scan(&n))
	return n
}

func dropTable(t *testing.T, path, table string) {
	t.Helper()

	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Exec("DROP TABLE " + table)
	require.NoError(t, err)
}
