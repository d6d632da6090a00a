package sqlstore

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib" // Postgres driver (pgx)
	"github.com/lib/pq"                // Postgres driver
	"github.com/mattn/go-sqlite3"      // SQLite driver
	"github.com/pliu/messenger/internal/store"
)

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	Exec(query string, args ...any) (sql.Result, error)
	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
}

type SQLStore struct {
	db         *sql.DB
	q          querier
	inTx       bool
	driverName string
}

var _ store.Store = (*SQLStore)(nil)

func New(driverName, dataSourceName string) (*SQLStore, error) {
	db, err := sql.Open(driverName, dataSourceName)
	if err != nil {
		return nil, err
	}
	if driverName == "sqlite3" {
		// A single connection serializes transactions and keeps :memory:
		// databases shared across calls.
		db.SetMaxOpenConns(1)
	}
	if err = db.Ping(); err != nil {
		db.Close()
		return nil, err
	}

	s := &SQLStore{db: db, q: db, driverName: driverName}
	if err := s.createTables(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLStore) isPostgres() bool {
	return s.driverName == "postgres" || s.driverName == "pgx"
}

func (s *SQLStore) createTables() error {
	// Foreign keys are deliberately absent: user deletion leaves dangling
	// references and role rows are removed before their members.
	query := `
	CREATE TABLE IF NOT EXISTS users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT UNIQUE NOT NULL,
		email TEXT UNIQUE NOT NULL,
		password TEXT NOT NULL,
		image BLOB
	);

	CREATE TABLE IF NOT EXISTS chats (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		first_user INTEGER NOT NULL,
		second_user INTEGER NOT NULL,
		user_low INTEGER NOT NULL,
		user_high INTEGER NOT NULL,
		UNIQUE (user_low, user_high)
	);

	CREATE TABLE IF NOT EXISTS channels (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT UNIQUE NOT NULL,
		creator INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS roles (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		is_admin BOOLEAN NOT NULL DEFAULT FALSE,
		is_creator BOOLEAN NOT NULL DEFAULT FALSE
	);

	CREATE TABLE IF NOT EXISTS members (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		channel_id INTEGER NOT NULL,
		user_id INTEGER NOT NULL,
		role_id INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS messages (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		sender INTEGER NOT NULL,
		chat_id INTEGER,
		channel_id INTEGER,
		data TEXT NOT NULL,
		created_at DATETIME NOT NULL,
		CHECK ((chat_id IS NULL) <> (channel_id IS NULL))
	);

	CREATE TABLE IF NOT EXISTS saved_messages (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		message_id INTEGER NOT NULL,
		user_id INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_members_channel ON members (channel_id);
	CREATE INDEX IF NOT EXISTS idx_members_user ON members (user_id);
	CREATE INDEX IF NOT EXISTS idx_messages_chat ON messages (chat_id);
	CREATE INDEX IF NOT EXISTS idx_messages_channel ON messages (channel_id);
	CREATE INDEX IF NOT EXISTS idx_saved_messages_user ON saved_messages (user_id);
	`

	if s.isPostgres() {
		// Adjust for Postgres syntax
		query = strings.ReplaceAll(query, "INTEGER PRIMARY KEY AUTOINCREMENT", "BIGSERIAL PRIMARY KEY")
		query = strings.ReplaceAll(query, "INTEGER", "BIGINT")
		query = strings.ReplaceAll(query, "DATETIME", "TIMESTAMPTZ")
		query = strings.ReplaceAll(query, "BLOB", "BYTEA")
	}

	if _, err := s.db.Exec(query); err != nil {
		slog.Error("storage: Failed to create tables", "error", err, "driver", s.driverName)
		return fmt.Errorf("failed to create tables: %w", err)
	}
	return nil
}

// Helper to handle placeholders
func (s *SQLStore) rebind(query string) string {
	if s.isPostgres() {
		// Replace ? with $1, $2, etc.
		n := strings.Count(query, "?")
		for i := 1; i <= n; i++ {
			query = strings.Replace(query, "?", fmt.Sprintf("$%d", i), 1)
		}
	}
	return query
}

func (s *SQLStore) WithTx(fn func(tx store.Store) error) error {
	return s.withTx(func(tx *SQLStore) error { return fn(tx) })
}

func (s *SQLStore) withTx(fn func(tx *SQLStore) error) error {
	if s.inTx {
		return fn(s)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	txStore := &SQLStore{db: s.db, q: tx, inTx: true, driverName: s.driverName}
	if err := fn(txStore); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			slog.Error("storage: Failed to roll back transaction", "error", rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return translate(fmt.Errorf("failed to commit transaction: %w", err))
	}
	return nil
}

func (s *SQLStore) Close() error {
	if s.inTx {
		return nil
	}
	return s.db.Close()
}

// insert runs an INSERT ... RETURNING id statement.
func (s *SQLStore) insert(query string, args ...any) (int64, error) {
	var id int64
	if err := s.q.QueryRow(s.rebind(query+" RETURNING id"), args...).Scan(&id); err != nil {
		return 0, translate(err)
	}
	return id, nil
}

// execAffecting runs a statement that must touch at least one row.
func (s *SQLStore) execAffecting(query string, args ...any) error {
	result, err := s.q.Exec(s.rebind(query), args...)
	if err != nil {
		return translate(err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *SQLStore) exec(query string, args ...any) error {
	_, err := s.q.Exec(s.rebind(query), args...)
	return translate(err)
}

// translate maps driver errors onto the store's sentinel errors.
func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrNotFound
	}
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: %v", store.ErrConflict, err)
	}
	return err
}

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

func nullableID(n sql.NullInt64) *int64 {
	if !n.Valid {
		return nil
	}
	id := n.Int64
	return &id
}
