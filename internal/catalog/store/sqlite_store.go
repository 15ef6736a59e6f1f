package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"

	"github.com/mkravets/brewcart/internal/catalog"
)

var ErrEntryNotFound = errors.New("catalog entry not found")

// Store is the catalog's system of record, maintained through the admin
// CRUD operations and read by the storefront as a Fetcher.
type Store interface {
	ListEntries(ctx context.Context) ([]catalog.Record, error)
	GetEntry(ctx context.Context, id string) (catalog.Record, error)
	CreateEntry(ctx context.Context, rec catalog.Record) error
	UpdateEntry(ctx context.Context, rec catalog.Record) error
	DeleteEntry(ctx context.Context, id string) error
	Fetch(ctx context.Context) (*catalog.Snapshot, error)
	Close() error
}

type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) RunMigrations(migrationsPath string) error {
	driver, err := sqlite.WithInstance(s.db, &sqlite.Config{})
	if err != nil {
		return fmt.Errorf("could not create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		fmt.Sprintf("file://%s", migrationsPath),
		"sqlite",
		driver,
	)
	if err != nil {
		return fmt.Errorf("could not create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("could not run migrations: %w", err)
	}

	return nil
}

func (s *SQLiteStore) ListEntries(ctx context.Context) ([]catalog.Record, error) {
	query := `SELECT id, name, kind, price, description, rating, image, size_prices
	          FROM catalog_entries ORDER BY rowid`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list catalog entries: %w", err)
	}
	defer rows.Close()

	var entries []catalog.Record
	for rows.Next() {
		rec, scanErr := scanEntry(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		entries = append(entries, rec)
	}
	return entries, rows.Err()
}

func (s *SQLiteStore) GetEntry(ctx context.Context, id string) (catalog.Record, error) {
	query := `SELECT id, name, kind, price, description, rating, image, size_prices
	          FROM catalog_entries WHERE id = ?`

	rec, err := scanEntry(s.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return catalog.Record{}, ErrEntryNotFound
	}
	return rec, err
}

func (s *SQLiteStore) CreateEntry(ctx context.Context, rec catalog.Record) error {
	sizesJSON, err := marshalSizes(rec.SizePrices)
	if err != nil {
		return err
	}

	query := `INSERT INTO catalog_entries (id, name, kind, price, description, rating, image, size_prices)
	          VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	_, execErr := s.db.ExecContext(ctx, query,
		rec.ID, rec.Name, string(rec.Kind), rec.Price.String(),
		rec.Description, rec.Rating, rec.Image, sizesJSON)
	if execErr != nil {
		return fmt.Errorf("failed to create catalog entry: %w", execErr)
	}
	return nil
}

func (s *SQLiteStore) UpdateEntry(ctx context.Context, rec catalog.Record) error {
	sizesJSON, err := marshalSizes(rec.SizePrices)
	if err != nil {
		return err
	}

	query := `UPDATE catalog_entries
	          SET name = ?, kind = ?, price = ?, description = ?, rating = ?, image = ?, size_prices = ?
	          WHERE id = ?`
	res, execErr := s.db.ExecContext(ctx, query,
		rec.Name, string(rec.Kind), rec.Price.String(),
		rec.Description, rec.Rating, rec.Image, sizesJSON, rec.ID)
	if execErr != nil {
		return fmt.Errorf("failed to update catalog entry: %w", execErr)
	}

	affected, raErr := res.RowsAffected()
	if raErr != nil {
		return fmt.Errorf("failed to read update result: %w", raErr)
	}
	if affected == 0 {
		return ErrEntryNotFound
	}
	return nil
}

func (s *SQLiteStore) DeleteEntry(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM catalog_entries WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete catalog entry: %w", err)
	}

	affected, raErr := res.RowsAffected()
	if raErr != nil {
		return fmt.Errorf("failed to read delete result: %w", raErr)
	}
	if affected == 0 {
		return ErrEntryNotFound
	}
	return nil
}

// Fetch makes the store usable as a catalog.Fetcher.
func (s *SQLiteStore) Fetch(ctx context.Context) (*catalog.Snapshot, error) {
	entries, err := s.ListEntries(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", catalog.ErrUnavailable, err)
	}
	return &catalog.Snapshot{Entries: entries, FetchedAt: time.Now()}, nil
}

// SeedIfEmpty loads the given entries when the table has none.
func (s *SQLiteStore) SeedIfEmpty(ctx context.Context, entries []catalog.Record) error {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM catalog_entries`).Scan(&count); err != nil {
		return fmt.Errorf("failed to count catalog entries: %w", err)
	}
	if count > 0 {
		return nil
	}

	for _, rec := range entries {
		if err := s.CreateEntry(ctx, rec); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func marshalSizes(sizes map[string]decimal.Decimal) (string, error) {
	if len(sizes) == 0 {
		return "", nil
	}
	data, err := json.Marshal(sizes)
	if err != nil {
		return "", fmt.Errorf("failed to marshal size prices: %w", err)
	}
	return string(data), nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (catalog.Record, error) {
	var rec catalog.Record
	var kind, priceStr, sizesJSON string

	err := row.Scan(&rec.ID, &rec.Name, &kind, &priceStr,
		&rec.Description, &rec.Rating, &rec.Image, &sizesJSON)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return catalog.Record{}, err
		}
		return catalog.Record{}, fmt.Errorf("failed to scan catalog entry: %w", err)
	}

	rec.Kind = catalog.Kind(kind)
	rec.Price, err = decimal.NewFromString(priceStr)
	if err != nil {
		return catalog.Record{}, fmt.Errorf("bad stored price %q: %w", priceStr, err)
	}

	if sizesJSON != "" {
		if err := json.Unmarshal([]byte(sizesJSON), &rec.SizePrices); err != nil {
			return catalog.Record{}, fmt.Errorf("bad stored size prices: %w", err)
		}
	}
	return rec, nil
}
