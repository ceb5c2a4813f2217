package sqlguard

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/matehq/mate/internal/security"
)

// Column describes one column of a result set.
type Column struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// ResultSet is the fully materialized outcome of a read-only query.
type ResultSet struct {
	Columns []Column `json:"columns"`
	Rows    [][]any  `json:"rows"`
}

const listTablesQuery = `
SELECT TABLE_SCHEMA, TABLE_NAME, TABLE_TYPE
FROM INFORMATION_SCHEMA.TABLES
WHERE TABLE_TYPE IN ('BASE TABLE', 'VIEW')
ORDER BY TABLE_SCHEMA, TABLE_NAME`

const describeTableQuery = `
SELECT COLUMN_NAME, DATA_TYPE, CHARACTER_MAXIMUM_LENGTH, IS_NULLABLE, COLUMN_DEFAULT
FROM INFORMATION_SCHEMA.COLUMNS
WHERE TABLE_SCHEMA = @p1 AND TABLE_NAME = @p2
ORDER BY ORDINAL_POSITION`

// Query runs a read-only statement on the connection identified by id.
// The guard classifies the statement first; only a statement classified
// read-only ever reaches the session. Execution is bounded by the
// manager's query timeout, and statements on the same connection id are
// serialized.
func (m *Manager) Query(ctx context.Context, id, query string) (*ResultSet, error) {
	if err := ValidateReadOnly(query); err != nil {
		m.audit.Log(security.Event{
			Type:     security.EventGuardReject,
			Detail:   query,
			Metadata: map[string]string{"connection_id": id},
		})
		return nil, err
	}

	conn, err := m.get(id)
	if err != nil {
		return nil, err
	}
	return m.run(ctx, conn, query)
}

// ListTables returns all tables and views in the connected database.
// Metadata calls are inherently read-only but still require a valid id.
func (m *Manager) ListTables(ctx context.Context, id string) (*ResultSet, error) {
	conn, err := m.get(id)
	if err != nil {
		return nil, err
	}
	return m.run(ctx, conn, listTablesQuery)
}

// DescribeTable returns the column structure of one table.
func (m *Manager) DescribeTable(ctx context.Context, id, schema, table string) (*ResultSet, error) {
	conn, err := m.get(id)
	if err != nil {
		return nil, err
	}
	return m.run(ctx, conn, describeTableQuery, schema, table)
}

// run executes an already-classified statement with the bounded wait and
// per-connection serialization.
func (m *Manager) run(ctx context.Context, conn *Conn, query string, args ...any) (*ResultSet, error) {
	conn.execMu.Lock()
	defer conn.execMu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, m.queryTimeout)
	defer cancel()

	rows, err := conn.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, classifyExecErr(err)
	}
	defer func() { _ = rows.Close() }()

	rs, err := scanRows(rows)
	if err != nil {
		return nil, classifyExecErr(err)
	}
	return rs, nil
}

// classifyExecErr converts a deadline expiry into the classified timeout
// error; everything else passes through as an execution failure.
func classifyExecErr(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	return err
}

// scanRows materializes a sql.Rows into a ResultSet. Byte slices become
// strings so results serialize cleanly into conversation text.
func scanRows(rows *sql.Rows) (*ResultSet, error) {
	names, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	types, err := rows.ColumnTypes()
	if err != nil {
		return nil, err
	}

	rs := &ResultSet{Columns: make([]Column, len(names))}
	for i, name := range names {
		rs.Columns[i] = Column{Name: name, Type: types[i].DatabaseTypeName()}
	}

	for rows.Next() {
		values := make([]any, len(names))
		ptrs := make([]any, len(names))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		for i, v := range values {
			if b, ok := v.([]byte); ok {
				values[i] = string(b)
			}
		}
		rs.Rows = append(rs.Rows, values)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return rs, nil
}
