package addons

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mattn/go-sqlite3"
	"github.com/pressly/goose/v3"

	"streamhub/models"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

const timeLayout = time.RFC3339Nano

// Store persists addon records in SQLite.
type Store struct {
	db *sql.DB
}

// OpenStore opens (creating if needed) the database at path and applies migrations.
func OpenStore(ctx context.Context, path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("database path not set")
	}
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create database dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// SQLite allows a single writer.
	db.SetMaxOpenConns(1)

	if err := migrate(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

func migrate(ctx context.Context, db *sql.DB) error {
	migrations, err := fs.Sub(embedMigrations, "migrations")
	if err != nil {
		return err
	}
	provider, err := goose.NewProvider(goose.DialectSQLite3, db, migrations)
	if err != nil {
		return fmt.Errorf("init migrations: %w", err)
	}
	if _, err := provider.Up(ctx); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

const addonColumns = `id, base_url, manifest_id, name, version, types, id_prefixes, enabled, position, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAddon(row rowScanner) (models.Addon, error) {
	var (
		a                models.Addon
		types, prefixes  string
		enabled          int
		created, updated string
	)
	if err := row.Scan(&a.ID, &a.BaseURL, &a.ManifestID, &a.Name, &a.Version, &types, &prefixes, &enabled, &a.Position, &created, &updated); err != nil {
		return models.Addon{}, err
	}
	if err := json.Unmarshal([]byte(types), &a.Types); err != nil {
		return models.Addon{}, fmt.Errorf("decode types for addon %s: %w", a.ID, err)
	}
	if err := json.Unmarshal([]byte(prefixes), &a.IDPrefixes); err != nil {
		return models.Addon{}, fmt.Errorf("decode id prefixes for addon %s: %w", a.ID, err)
	}
	a.Enabled = enabled != 0
	var err error
	if a.CreatedAt, err = time.Parse(timeLayout, created); err != nil {
		return models.Addon{}, fmt.Errorf("decode created_at for addon %s: %w", a.ID, err)
	}
	if a.UpdatedAt, err = time.Parse(timeLayout, updated); err != nil {
		return models.Addon{}, fmt.Errorf("decode updated_at for addon %s: %w", a.ID, err)
	}
	return a, nil
}

// List returns every addon ordered by position.
func (s *Store) List(ctx context.Context) ([]models.Addon, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+addonColumns+` FROM addons ORDER BY position, created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("list addons: %w", err)
	}
	defer rows.Close()

	addons := []models.Addon{}
	for rows.Next() {
		a, err := scanAddon(rows)
		if err != nil {
			return nil, err
		}
		addons = append(addons, a)
	}
	return addons, rows.Err()
}

// Get returns the addon with id.
func (s *Store) Get(ctx context.Context, id string) (models.Addon, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+addonColumns+` FROM addons WHERE id = ?`, id)
	a, err := scanAddon(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Addon{}, ErrAddonNotFound
	}
	return a, err
}

// FindByBaseURL returns the addon registered at baseURL.
func (s *Store) FindByBaseURL(ctx context.Context, baseURL string) (models.Addon, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+addonColumns+` FROM addons WHERE base_url = ?`, baseURL)
	a, err := scanAddon(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Addon{}, ErrAddonNotFound
	}
	return a, err
}

// NextPosition returns the position after the last addon.
func (s *Store) NextPosition(ctx context.Context) (int, error) {
	var pos sql.NullInt64
	if err := s.db.QueryRowContext(ctx, `SELECT MAX(position) FROM addons`).Scan(&pos); err != nil {
		return 0, err
	}
	if !pos.Valid {
		return 0, nil
	}
	return int(pos.Int64) + 1, nil
}

// Insert stores a new addon.
func (s *Store) Insert(ctx context.Context, a models.Addon) error {
	types, prefixes, err := encodeLists(a)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO addons (`+addonColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.BaseURL, a.ManifestID, a.Name, a.Version, types, prefixes, boolToInt(a.Enabled), a.Position,
		a.CreatedAt.UTC().Format(timeLayout), a.UpdatedAt.UTC().Format(timeLayout),
	)
	if isUniqueViolation(err) {
		return ErrAddonExists
	}
	if err != nil {
		return fmt.Errorf("insert addon: %w", err)
	}
	return nil
}

// Update overwrites the mutable fields of an addon.
func (s *Store) Update(ctx context.Context, a models.Addon) error {
	types, prefixes, err := encodeLists(a)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE addons SET manifest_id = ?, name = ?, version = ?, types = ?, id_prefixes = ?, enabled = ?, position = ?, updated_at = ? WHERE id = ?`,
		a.ManifestID, a.Name, a.Version, types, prefixes, boolToInt(a.Enabled), a.Position,
		a.UpdatedAt.UTC().Format(timeLayout), a.ID,
	)
	if err != nil {
		return fmt.Errorf("update addon: %w", err)
	}
	return requireAffected(res)
}

// Delete removes an addon.
func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM addons WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete addon: %w", err)
	}
	return requireAffected(res)
}

// SetPositions assigns position i to ids[i] in one transaction.
func (s *Store) SetPositions(ctx context.Context, ids []string, now time.Time) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck

	stamp := now.UTC().Format(timeLayout)
	for i, id := range ids {
		res, err := tx.ExecContext(ctx, `UPDATE addons SET position = ?, updated_at = ? WHERE id = ?`, i, stamp, id)
		if err != nil {
			return fmt.Errorf("reorder addons: %w", err)
		}
		if err := requireAffected(res); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func encodeLists(a models.Addon) (string, string, error) {
	types := a.Types
	if types == nil {
		types = []string{}
	}
	prefixes := a.IDPrefixes
	if prefixes == nil {
		prefixes = []string{}
	}
	t, err := json.Marshal(types)
	if err != nil {
		return "", "", err
	}
	p, err := json.Marshal(prefixes)
	if err != nil {
		return "", "", err
	}
	return string(t), string(p), nil
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrAddonNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
