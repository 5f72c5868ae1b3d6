// Package sqlstore implements every repository port once, over database/sql, for postgres, mysql
// and sqlite. Engine differences live behind Dialect.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

// Options tunes the connection pool. Zero values keep database/sql defaults.
type Options struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// Store owns the *sql.DB and the dialect shared by the repositories it hands out.
type Store struct {
	db *sql.DB
	d  Dialect
}

// Open connects to the backend ("postgres", "mysql" or "sqlite") and pings it.
func Open(ctx context.Context, backend, dsn string, opts Options) (*Store, error) {
	d, err := DialectFor(backend)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(dsn) == "" {
		return nil, errors.New("missing database DSN")
	}

	var db *sql.DB
	switch d.Name() {
	case "postgres":
		cfg, err := pgx.ParseConfig(dsn)
		if err != nil {
			return nil, fmt.Errorf("parse postgres dsn: %w", err)
		}
		db = stdlib.OpenDB(*cfg)
	case "mysql":
		cfg, err := mysql.ParseDSN(dsn)
		if err != nil {
			return nil, fmt.Errorf("parse mysql dsn: %w", err)
		}
		cfg.ParseTime = true
		cfg.Loc = time.UTC
		// Report matched rather than changed rows so a no-op UPDATE is not mistaken for a miss.
		cfg.ClientFoundRows = true
		connector, err := mysql.NewConnector(cfg)
		if err != nil {
			return nil, fmt.Errorf("mysql connector: %w", err)
		}
		db = sql.OpenDB(connector)
	case "sqlite":
		db, err = sql.Open("sqlite", sqliteDSN(dsn))
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		// Each connection to ":memory:" is a separate database.
		if isSQLiteMemory(dsn) {
			opts.MaxOpenConns = 1
			opts.MaxIdleConns = 1
			opts.ConnMaxLifetime = 0
		}
	}

	if opts.MaxOpenConns > 0 {
		db.SetMaxOpenConns(opts.MaxOpenConns)
	}
	if opts.MaxIdleConns > 0 {
		db.SetMaxIdleConns(opts.MaxIdleConns)
	}
	if opts.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(opts.ConnMaxLifetime)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", d.Name(), err)
	}
	return &Store{db: db, d: d}, nil
}

// New wraps an existing handle. The caller keeps responsibility for driver options.
func New(db *sql.DB, d Dialect) *Store {
	return &Store{db: db, d: d}
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) Dialect() Dialect { return s.d }

// Migrate applies the dialect schema. Every statement is idempotent.
func (s *Store) Migrate(ctx context.Context) error {
	for _, stmt := range s.d.Schema() {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate %s: %w", s.d.Name(), err)
		}
	}
	return nil
}

func (s *Store) Members() *MemberRepo             { return &MemberRepo{s: s} }
func (s *Store) Captains() *CaptainRepo           { return &CaptainRepo{s: s} }
func (s *Store) Miqaats() *MiqaatRepo             { return &MiqaatRepo{s: s} }
func (s *Store) MiqaatMembers() *MiqaatMemberRepo { return &MiqaatMemberRepo{s: s} }
func (s *Store) Snapshots() *SnapshotRepo         { return &SnapshotRepo{s: s} }

func (s *Store) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return s.db.ExecContext(ctx, s.d.Rebind(query), args...)
}

func (s *Store) query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return s.db.QueryContext(ctx, s.d.Rebind(query), args...)
}

func (s *Store) queryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return s.db.QueryRowContext(ctx, s.d.Rebind(query), args...)
}

// insertID runs an INSERT and returns the generated id column.
func (s *Store) insertID(ctx context.Context, query string, args ...any) (int64, error) {
	if s.d.ReturningID() {
		var id int64
		if err := s.queryRow(ctx, query+" RETURNING id", args...).Scan(&id); err != nil {
			return 0, err
		}
		return id, nil
	}
	res, err := s.exec(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// affected maps a zero-row UPDATE/DELETE to notFound.
func affected(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound
	}
	return nil
}

func isSQLiteMemory(dsn string) bool {
	return strings.HasPrefix(dsn, ":memory:") || strings.Contains(dsn, "mode=memory")
}

// sqliteDSN turns on foreign keys (needed for the miqaat_members cascade) and a busy timeout.
func sqliteDSN(dsn string) string {
	if strings.Contains(dsn, "foreign_keys") {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	pragmas := "_pragma=foreign_keys(ON)&_pragma=busy_timeout(5000)"
	if !isSQLiteMemory(dsn) {
		pragmas += "&_pragma=journal_mode(WAL)"
	}
	return dsn + sep + pragmas
}
