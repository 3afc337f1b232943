package sqlutil

import (
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
)

// mysqlNoSuchTable is ER_NO_SUCH_TABLE.
const mysqlNoSuchTable = 1146

// IsNoSuchTable reports whether err means the queried table does not exist,
// for both MySQL and SQLite.
func IsNoSuchTable(err error) bool {
	if err == nil {
		return false
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == mysqlNoSuchTable
	}
	return strings.Contains(err.Error(), "no such table")
}
