package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rihemtrigui/Customer-Support-Bot/internal/domain"
	_ "modernc.org/sqlite"
)

// firstOrderNumber is the number assigned to the very first order.
const firstOrderNumber = 1000

// SQLiteStore implements Repository using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite creates a new SQLite-backed repository.
func NewSQLite(dbPath string) (Repository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	// Open database with WAL mode for better concurrency.
	dsn := dbPath + "?_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	query := `
	PRAGMA busy_timeout = 5000;
	CREATE TABLE IF NOT EXISTS orders (
		order_number INTEGER PRIMARY KEY,
		clients_name TEXT NOT NULL,
		product_type TEXT NOT NULL,
		product_name TEXT NOT NULL,
		product_number TEXT NOT NULL,
		payment_method TEXT NOT NULL,
		shipping_address TEXT NOT NULL,
		email_address TEXT NOT NULL,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS order_counter (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		value INTEGER NOT NULL
	);
	`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}

	// Seed the counter so the first assigned number is firstOrderNumber.
	seed := `INSERT INTO order_counter (id, value) VALUES (1, ?) ON CONFLICT(id) DO NOTHING`
	if _, err := s.db.Exec(seed, firstOrderNumber-1); err != nil {
		return fmt.Errorf("seed order counter: %w", err)
	}
	return nil
}

// Ping verifies database connectivity.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// GetOrder retrieves an order by its order number.
func (s *SQLiteStore) GetOrder(ctx context.Context, orderNumber int) (*domain.Order, error) {
	query := `
		SELECT order_number, clients_name, product_type, product_name,
		       product_number, payment_method, shipping_address, email_address
		FROM orders WHERE order_number = ?`

	row := s.db.QueryRowContext(ctx, query, orderNumber)

	var order domain.Order
	err := row.Scan(
		&order.OrderNumber, &order.ClientName, &order.ProductType, &order.ProductName,
		&order.ProductNumber, &order.PaymentMethod, &order.ShippingAddress, &order.EmailAddress,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan order row: %w", err)
	}

	return &order, nil
}

// PutOrder inserts a new order record.
func (s *SQLiteStore) PutOrder(ctx context.Context, order *domain.Order) error {
	query := `
	INSERT INTO orders (order_number, clients_name, product_type, product_name,
		product_number, payment_method, shipping_address, email_address,
		created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	now := time.Now().Unix()
	_, err := s.db.ExecContext(ctx, query,
		order.OrderNumber, order.ClientName, order.ProductType, order.ProductName,
		order.ProductNumber, order.PaymentMethod, order.ShippingAddress, order.EmailAddress,
		now, now,
	)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}

// DeleteOrder removes an order.
func (s *SQLiteStore) DeleteOrder(ctx context.Context, orderNumber int) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM orders WHERE order_number = ?`, orderNumber)
	if err != nil {
		return fmt.Errorf("delete order: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrOrderNotFound
	}
	return nil
}

// UpdateShippingAddress changes the shipping address of an order.
func (s *SQLiteStore) UpdateShippingAddress(ctx context.Context, orderNumber int, address string) error {
	return s.updateField(ctx, orderNumber, "shipping_address", address)
}

// UpdatePaymentMethod changes the payment method of an order.
func (s *SQLiteStore) UpdatePaymentMethod(ctx context.Context, orderNumber int, method string) error {
	return s.updateField(ctx, orderNumber, "payment_method", method)
}

func (s *SQLiteStore) updateField(ctx context.Context, orderNumber int, column, value string) error {
	// column is always one of the fixed names above, never user input.
	query := fmt.Sprintf(`UPDATE orders SET %s = ?, updated_at = ? WHERE order_number = ?`, column)
	result, err := s.db.ExecContext(ctx, query, value, time.Now().Unix(), orderNumber)
	if err != nil {
		return fmt.Errorf("update %s: %w", column, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		slog.Warn("order update affected 0 rows", "order_number", orderNumber, "column", column)
		return ErrOrderNotFound
	}
	return nil
}

// NextOrderNumber atomically assigns the next order number. The counter row
// replaces the original scan-for-max scheme, which raced under concurrent
// order creation. Retries a few times on SQLITE_BUSY.
func (s *SQLiteStore) NextOrderNumber(ctx context.Context) (int, error) {
	maxRetries := 3
	baseDelay := 100 * time.Millisecond

	var lastErr error
	for i := 0; i < maxRetries; i++ {
		n, err := s.nextOrderNumberOnce(ctx)
		if err == nil {
			return n, nil
		}
		lastErr = err

		if strings.Contains(err.Error(), "database is locked") || strings.Contains(err.Error(), "SQLITE_BUSY") {
			if i < maxRetries-1 {
				delay := baseDelay * time.Duration(1<<i)
				slog.Debug("NextOrderNumber hit SQLITE_BUSY, retrying", "attempt", i+1, "delay", delay)
				time.Sleep(delay)
				continue
			}
		}
		break
	}

	return 0, fmt.Errorf("assign order number: %w", lastErr)
}

func (s *SQLiteStore) nextOrderNumberOnce(ctx context.Context) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `UPDATE order_counter SET value = value + 1 WHERE id = 1`); err != nil {
		return 0, fmt.Errorf("increment counter: %w", err)
	}

	var value int
	if err := tx.QueryRowContext(ctx, `SELECT value FROM order_counter WHERE id = 1`).Scan(&value); err != nil {
		return 0, fmt.Errorf("read counter: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit counter: %w", err)
	}
	return value, nil
}

// ListOrders returns all orders, newest first.
func (s *SQLiteStore) ListOrders(ctx context.Context) ([]*domain.Order, error) {
	query := `
		SELECT order_number, clients_name, product_type, product_name,
		       product_number, payment_method, shipping_address, email_address
		FROM orders ORDER BY order_number DESC`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query orders: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			slog.Warn("failed to close order rows", "error", closeErr)
		}
	}()

	var orders []*domain.Order
	for rows.Next() {
		var order domain.Order
		if err := rows.Scan(
			&order.OrderNumber, &order.ClientName, &order.ProductType, &order.ProductName,
			&order.ProductNumber, &order.PaymentMethod, &order.ShippingAddress, &order.EmailAddress,
		); err != nil {
			return nil, fmt.Errorf("scan order row: %w", err)
		}
		orders = append(orders, &order)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate orders: %w", err)
	}

	return orders, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close database: %w", err)
	}
	return nil
}
