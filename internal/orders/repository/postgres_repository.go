package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/google/uuid"
	_ "github.com/lib/pq"

	"github.com/mkravets/brewcart/internal/orders"
)

type Credentials struct {
	Host              string
	Port              int
	User              string
	Password          string
	DBName            string
	MigrationsDirPath string
}

// Repository is the durable order archive backing orders.Store with
// postgres. Items are stored as a JSONB column; money columns are NUMERIC
// and scan straight into decimals.
type Repository struct {
	db *sql.DB
}

func NewRepository(cred *Credentials) (*Repository, error) {
	psqlconn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		cred.Host,
		cred.Port,
		cred.User,
		cred.Password,
		cred.DBName)

	db, err := sql.Open("postgres", psqlconn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if e2 := db.Ping(); e2 != nil {
		return nil, fmt.Errorf("failed to ping database: %w", e2)
	}

	db.SetMaxOpenConns(100)
	db.SetMaxIdleConns(10)
	return &Repository{db: db}, nil
}

func (r *Repository) RunMigrations(cred *Credentials) error {
	driver, err := postgres.WithInstance(r.db, &postgres.Config{
		MigrationsTable: "orders_schema_migrations",
	})
	if err != nil {
		return fmt.Errorf("could not create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		fmt.Sprintf("file://%s", cred.MigrationsDirPath),
		"postgres",
		driver,
	)
	if err != nil {
		return fmt.Errorf("could not create migrate instance: %w", err)
	}

	if e2 := m.Up(); e2 != nil && !errors.Is(e2, migrate.ErrNoChange) {
		return fmt.Errorf("could not run migrations: %w", e2)
	}

	return nil
}

func (r *Repository) AddOrder(ctx context.Context, order *orders.Order) error {
	itemsJSON, err := json.Marshal(order.Items)
	if err != nil {
		return fmt.Errorf("failed to marshal order items: %w", err)
	}

	query := `INSERT INTO orders (id, created_at, status, items, subtotal, shipping_fee, tax, total, payment_method, payment_ref)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, insertErr := r.db.ExecContext(ctx, query,
		order.ID,
		order.CreatedAt,
		order.Status,
		itemsJSON,
		order.Subtotal,
		order.ShippingFee,
		order.Tax,
		order.Total,
		order.PaymentMethod,
		order.PaymentRef)

	if insertErr != nil {
		return fmt.Errorf("failed to insert order: %w", insertErr)
	}
	return nil
}

func (r *Repository) GetOrders(ctx context.Context) ([]*orders.Order, error) {
	query := `SELECT id, created_at, status, items, subtotal, shipping_fee, tax, total, payment_method, payment_ref
	          FROM orders ORDER BY created_at DESC, id DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	defer rows.Close()

	var result []*orders.Order
	for rows.Next() {
		order, scanErr := scanOrder(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		result = append(result, order)
	}
	return result, rows.Err()
}

func (r *Repository) GetOrderByID(ctx context.Context, id uuid.UUID) (*orders.Order, error) {
	query := `SELECT id, created_at, status, items, subtotal, shipping_fee, tax, total, payment_method, payment_ref
	          FROM orders WHERE id = $1`

	row := r.db.QueryRowContext(ctx, query, id)
	order, err := scanOrder(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, orders.ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	return order, nil
}

// UpdateStatus applies the transition inside a transaction so a
// concurrent update cannot slip between the check and the write.
func (r *Repository) UpdateStatus(ctx context.Context, id uuid.UUID, to orders.Status) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var current orders.Status
	row := tx.QueryRowContext(ctx, `SELECT status FROM orders WHERE id = $1 FOR UPDATE`, id)
	if scanErr := row.Scan(&current); scanErr != nil {
		if errors.Is(scanErr, sql.ErrNoRows) {
			return orders.ErrOrderNotFound
		}
		return fmt.Errorf("failed to read order status: %w", scanErr)
	}

	if !orders.CanTransitionTo(current, to) {
		return orders.ErrInvalidTransition
	}

	if _, execErr := tx.ExecContext(ctx, `UPDATE orders SET status = $1 WHERE id = $2`, to, id); execErr != nil {
		return fmt.Errorf("failed to update order status: %w", execErr)
	}

	return tx.Commit()
}

func (r *Repository) ClearOrders(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM orders`); err != nil {
		return fmt.Errorf("failed to clear orders: %w", err)
	}
	return nil
}

func (r *Repository) Close() error {
	return r.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (*orders.Order, error) {
	var order orders.Order
	var itemsJSON []byte

	err := row.Scan(
		&order.ID,
		&order.CreatedAt,
		&order.Status,
		&itemsJSON,
		&order.Subtotal,
		&order.ShippingFee,
		&order.Tax,
		&order.Total,
		&order.PaymentMethod,
		&order.PaymentRef)
	if err != nil {
		return nil, err
	}

	if unmarshalErr := json.Unmarshal(itemsJSON, &order.Items); unmarshalErr != nil {
		return nil, fmt.Errorf("failed to unmarshal order items: %w", unmarshalErr)
	}
	return &order, nil
}
