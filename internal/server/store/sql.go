package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/dmitrijs2005/filehub/internal/common"
	"github.com/dmitrijs2005/filehub/internal/dbx"
	"github.com/dmitrijs2005/filehub/internal/server/store/migrations"
)

// sqlTables maps logical table names to SQL table names. Doubles as a
// whitelist so a table name can never reach the query text unchecked.
var sqlTables = map[string]string{
	TableUsers: "users",
	TableCore:  "core",
}

// SQLStore implements Store on top of a SQL database. Every table is a
// two-column relation (key text primary key, data bytea).
type SQLStore struct {
	db dbx.DBTX
}

func NewSQLStore(db dbx.DBTX) *SQLStore {
	return &SQLStore{db: db}
}

func (s *SQLStore) tableName(table string) (string, error) {
	name, ok := sqlTables[table]
	if !ok {
		return "", fmt.Errorf("%w: %q", common.ErrorUnknownTable, table)
	}
	return name, nil
}

func (s *SQLStore) Get(ctx context.Context, table, key string) ([]byte, error) {
	name, err := s.tableName(table)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`SELECT data FROM %s WHERE key = $1`, name)

	var data []byte
	if err := s.db.QueryRowContext(ctx, query, key).Scan(&data); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return data, nil
}

func (s *SQLStore) Put(ctx context.Context, table, key string, data []byte) error {
	name, err := s.tableName(table)
	if err != nil {
		return err
	}

	query := fmt.Sprintf(
		`INSERT INTO %s (key, data) VALUES ($1, $2)
		 ON CONFLICT (key) DO UPDATE SET data = EXCLUDED.data`, name)

	if _, err := s.db.ExecContext(ctx, query, key, data); err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}

func (s *SQLStore) Exists(ctx context.Context, table, key string) (bool, error) {
	name, err := s.tableName(table)
	if err != nil {
		return false, err
	}

	query := fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM %s WHERE key = $1)`, name)

	var exists bool
	if err := s.db.QueryRowContext(ctx, query, key).Scan(&exists); err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}

	return exists, nil
}

func (s *SQLStore) Scan(ctx context.Context, table string) ([]Record, error) {
	name, err := s.tableName(table)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`SELECT key, data FROM %s ORDER BY key`, name)

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var r Record
		if err := rows.Scan(&r.Key, &r.Data); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return records, nil
}

// PostgresStore owns the database connection behind a SQLStore.
type PostgresStore struct {
	*SQLStore
	conn *sql.DB
}

// NewPostgresStore opens a Postgres connection with the pgx driver and runs
// the embedded migrations.
func NewPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}

	s := &PostgresStore{SQLStore: NewSQLStore(db), conn: db}

	if err := s.RunMigrations(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migration error: %w", err)
	}

	return s, nil
}

func (s *PostgresStore) RunMigrations(ctx context.Context) error {
	goose.SetBaseFS(migrations.Migrations)

	if err := goose.UpContext(ctx, s.conn, "."); err != nil {
		return err
	}

	return nil
}

func (s *PostgresStore) Close() error {
	return s.conn.Close()
}
