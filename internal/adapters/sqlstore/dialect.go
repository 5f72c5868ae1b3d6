package sqlstore

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// Dialect isolates the syntax that differs between the supported engines. Queries are written once
// with '?' placeholders and passed through the dialect before execution.
type Dialect interface {
	Name() string

	// Rebind rewrites '?' placeholders into the engine's native form.
	Rebind(query string) string

	// InsertIfAbsent completes "INSERT INTO table <body>" so that a row colliding on keys is skipped
	// and the existing row is left untouched.
	InsertIfAbsent(table, body string, keys ...string) string

	// Upsert builds a single-row insert that overwrites the update columns on a key collision.
	Upsert(table string, cols, keys, update []string) string

	// ReturningID reports whether inserts must use "RETURNING id" instead of LastInsertId.
	ReturningID() bool

	// Time and Date encode values for the engine's column types.
	Time(t time.Time) any
	Date(t time.Time) any

	// IsUniqueViolation reports whether err is a unique or primary key constraint failure.
	IsUniqueViolation(err error) bool

	// Schema returns the DDL statements, each safe to re-run.
	Schema() []string
}

// DialectFor returns the dialect for a backend name.
func DialectFor(backend string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(backend)) {
	case "postgres", "postgresql", "pgx":
		return postgresDialect{}, nil
	case "mysql":
		return mysqlDialect{}, nil
	case "sqlite", "sqlite3":
		return sqliteDialect{}, nil
	default:
		return nil, fmt.Errorf("unsupported sql backend %q", backend)
	}
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

// onConflictUpsert is the ON CONFLICT form shared by postgres and sqlite.
func onConflictUpsert(table string, cols, keys, update []string) string {
	sets := make([]string, 0, len(update))
	for _, c := range update {
		sets = append(sets, fmt.Sprintf("%s = excluded.%s", c, c))
	}
	return fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s) ON CONFLICT (%s) DO UPDATE SET %s",
		table,
		strings.Join(cols, ", "),
		placeholders(len(cols)),
		strings.Join(keys, ", "),
		strings.Join(sets, ", "),
	)
}

type postgresDialect struct{}

func (postgresDialect) Name() string { return "postgres" }

func (postgresDialect) Rebind(query string) string {
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			fmt.Fprintf(&b, "$%d", n)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (postgresDialect) InsertIfAbsent(table, body string, keys ...string) string {
	return fmt.Sprintf("INSERT INTO %s %s ON CONFLICT (%s) DO NOTHING", table, body, strings.Join(keys, ", "))
}

func (postgresDialect) Upsert(table string, cols, keys, update []string) string {
	return onConflictUpsert(table, cols, keys, update)
}

func (postgresDialect) ReturningID() bool    { return true }
func (postgresDialect) Time(t time.Time) any { return t.UTC() }
func (postgresDialect) Date(t time.Time) any { return t.UTC().Format(dateLayout) }
func (postgresDialect) Schema() []string     { return postgresSchema }

func (postgresDialect) IsUniqueViolation(err error) bool {
	var pe *pgconn.PgError
	return errors.As(err, &pe) && pe.Code == "23505"
}

type mysqlDialect struct{}

func (mysqlDialect) Name() string               { return "mysql" }
func (mysqlDialect) Rebind(query string) string { return query }

// InsertIfAbsent uses a self-assignment so that only duplicate keys are absorbed; INSERT IGNORE
// would also hide foreign key failures.
func (mysqlDialect) InsertIfAbsent(table, body string, keys ...string) string {
	k := keys[0]
	return fmt.Sprintf("INSERT INTO %s %s ON DUPLICATE KEY UPDATE %s = %s", table, body, k, k)
}

func (mysqlDialect) Upsert(table string, cols, keys, update []string) string {
	_ = keys // MySQL resolves the conflict against every unique key of the table.
	sets := make([]string, 0, len(update))
	for _, c := range update {
		sets = append(sets, fmt.Sprintf("%s = VALUES(%s)", c, c))
	}
	return fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s) ON DUPLICATE KEY UPDATE %s",
		table,
		strings.Join(cols, ", "),
		placeholders(len(cols)),
		strings.Join(sets, ", "),
	)
}

func (mysqlDialect) ReturningID() bool    { return false }
func (mysqlDialect) Time(t time.Time) any { return t.UTC() }
func (mysqlDialect) Date(t time.Time) any { return t.UTC().Format(dateLayout) }
func (mysqlDialect) Schema() []string     { return mysqlSchema }

func (mysqlDialect) IsUniqueViolation(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == 1062
}

type sqliteDialect struct{}

func (sqliteDialect) Name() string               { return "sqlite" }
func (sqliteDialect) Rebind(query string) string { return query }

// InsertIfAbsent relies on the body of an INSERT ... SELECT carrying a WHERE clause; without one
// SQLite cannot tell the ON CONFLICT clause from a join constraint.
func (sqliteDialect) InsertIfAbsent(table, body string, keys ...string) string {
	return fmt.Sprintf("INSERT INTO %s %s ON CONFLICT (%s) DO NOTHING", table, body, strings.Join(keys, ", "))
}

func (sqliteDialect) Upsert(table string, cols, keys, update []string) string {
	return onConflictUpsert(table, cols, keys, update)
}

// sqliteTimeLayout is fixed width so that text comparison in ORDER BY matches time order.
const sqliteTimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func (sqliteDialect) ReturningID() bool    { return false }
func (sqliteDialect) Time(t time.Time) any { return t.UTC().Format(sqliteTimeLayout) }
func (sqliteDialect) Date(t time.Time) any { return t.UTC().Format(dateLayout) }
func (sqliteDialect) Schema() []string     { return sqliteSchema }

func (sqliteDialect) IsUniqueViolation(err error) bool {
	var se *sqlite.Error
	if !errors.As(err, &se) {
		return false
	}
	switch se.Code() {
	case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
		return true
	default:
		return false
	}
}
