// database/schema.go
package database

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"strings"
)

const (
	DialectMySQL  = "mysql"
	DialectSQLite = "sqlite"
)

//go:embed schema_mysql.sql
var schemaMySQL string

//go:embed schema_sqlite.sql
var schemaSQLite string

// EnsureSchema creates the routes and sync_runs tables if they do not exist.
// Statements run one at a time since the MySQL driver rejects multi-statement
// exec by default.
func EnsureSchema(ctx context.Context, db *sql.DB, dialect string) error {
	var ddl string
	switch dialect {
	case DialectMySQL:
		ddl = schemaMySQL
	case DialectSQLite:
		ddl = schemaSQLite
	default:
		return fmt.Errorf("unknown database dialect %q", dialect)
	}

	for _, stmt := range strings.Split(ddl, ";") {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema statement %q: %w", firstLine(stmt), err)
		}
	}
	return nil
}

func firstLine(stmt string) string {
	stmt = strings.TrimSpace(stmt)
	if i := strings.IndexByte(stmt, '\n'); i >= 0 {
		return stmt[:i]
	}
	return stmt
}
