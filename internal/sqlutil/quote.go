// Package sqlutil provides SQL utility functions for encbench.
package sqlutil

import (
	"fmt"
	"regexp"
	"strings"
)

// QuoteIdentifier quotes an identifier (table name, column name) with backticks.
// It escapes any existing backticks by doubling them. Both MySQL and SQLite
// accept backtick quoting.
// Example: "my_table" -> "`my_table`"
func QuoteIdentifier(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}

// validIdentifierRegex restricts identifiers to alphanumerics and underscore.
var validIdentifierRegex = regexp.MustCompile("^[a-zA-Z0-9_]+$")

// IsValidIdentifier checks if a name only contains alphanumeric characters and underscores.
func IsValidIdentifier(name string) bool {
	return validIdentifierRegex.MatchString(name)
}

// QuoteIdentifierSafe quotes an identifier after validating it.
// Returns an error if the identifier contains invalid characters.
func QuoteIdentifierSafe(name string) (string, error) {
	if !IsValidIdentifier(name) {
		return "", &InvalidIdentifierError{Name: name}
	}
	return QuoteIdentifier(name), nil
}

// InvalidIdentifierError is returned when an identifier contains invalid characters.
type InvalidIdentifierError struct {
	Name string
}

func (e *InvalidIdentifierError) Error() string {
	return "invalid identifier: " + e.Name + " (must contain only alphanumeric characters and underscores)"
}

// SelectOrderedLimit builds
//
//	SELECT `column` FROM `table` ORDER BY `orderBy` ASC LIMIT ?
//
// The explicit ordering makes the first N rows a prefix of the first M rows for N < M.
func SelectOrderedLimit(table, column, orderBy string) (string, error) {
	quoted, err := quoteAll(table, column, orderBy)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("SELECT %s FROM %s ORDER BY %s ASC LIMIT ?", quoted[1], quoted[0], quoted[2]), nil
}

// CountRows builds a SELECT COUNT(*) query for the table.
func CountRows(table string) (string, error) {
	quoted, err := QuoteIdentifierSafe(table)
	if err != nil {
		return "", err
	}
	return "SELECT COUNT(*) FROM " + quoted, nil
}

// InsertPlaceholders builds an INSERT statement with one placeholder per column.
func InsertPlaceholders(table string, columns ...string) (string, error) {
	quoted, err := quoteAll(append([]string{table}, columns...)...)
	if err != nil {
		return "", err
	}
	marks := strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", ")
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		quoted[0], strings.Join(quoted[1:], ", "), marks), nil
}

func quoteAll(names ...string) ([]string, error) {
	out := make([]string, len(names))
	for i, name := range names {
		q, err := QuoteIdentifierSafe(name)
		if err != nil {
			return nil, err
		}
		out[i] = q
	}
	return out, nil
}
