// Package tabular reads uploaded spreadsheets into a Dataset using DuckDB's
// CSV sniffer for delimiter, quoting and header detection.
package tabular

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"strings"

	"github.com/company-brain/backend/internal/models"
	"github.com/marcboeker/go-duckdb"
)

// ErrUnreadable is returned when the file cannot be parsed as CSV.
var ErrUnreadable = errors.New("spreadsheet could not be read")

// Reader parses CSV files through an in-memory DuckDB database.
type Reader struct {
	db          *sql.DB
	previewRows int
}

// NewReader opens an in-memory DuckDB database. previewRows bounds the
// number of value rows kept for display.
func NewReader(previewRows, threads int) (*Reader, error) {
	if threads <= 0 {
		threads = 2
	}
	connector, err := duckdb.NewConnector("", func(execer driver.ExecerContext) error {
		pragmas := []string{
			fmt.Sprintf("PRAGMA threads=%d", threads),
			"PRAGMA enable_progress_bar=false",
		}
		for _, pragma := range pragmas {
			if _, err := execer.ExecContext(context.Background(), pragma, nil); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create DuckDB connector: %w", err)
	}

	return &Reader{db: sql.OpenDB(connector), previewRows: previewRows}, nil
}

// quoteLiteral renders s as a SQL string literal.
func quoteLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// Parse reads the CSV at path. Column names come from the header row, in
// file order; values are kept as text.
func (r *Reader) Parse(ctx context.Context, path string) (*models.Dataset, error) {
	query := fmt.Sprintf(
		"SELECT * FROM read_csv_auto(%s, header = true, all_varchar = true) LIMIT %d",
		quoteLiteral(path), r.previewRows)

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadable, err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadable, err)
	}

	ds := &models.Dataset{Columns: cols, Rows: [][]string{}}
	for rows.Next() {
		vals := make([]sql.NullString, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		row := make([]string, len(cols))
		for i, v := range vals {
			row[i] = v.String
		}
		ds.Rows = append(ds.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadable, err)
	}

	return ds, nil
}

// Close closes the underlying database.
func (r *Reader) Close() error {
	return r.db.Close()
}
