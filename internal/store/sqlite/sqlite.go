// Package sqlite is the default file-backed Repository. The database path is
// the process's one external configuration point; ":memory:" gives an
// ephemeral store for tests.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"warungku/backend/internal/domain"
	"warungku/backend/internal/store"
)

type Store struct {
	db *sql.DB
	mu sync.Mutex
}

// New opens (creating if absent) the database at dbPath and ensures the
// schema exists. Safe to call on every startup.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// The design assumes exactly one writer; a single connection also keeps
	// modernc's sqlite happy under the stdlib pool.
	db.SetMaxOpenConns(1)

	s := &Store{db: db}
	if err := s.initSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// initSchema creates both tables idempotently. AUTOINCREMENT keeps SQLite
// from recycling rowids, so an id is never reused after its row is deleted.
func (s *Store) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS items (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		weight TEXT NOT NULL DEFAULT '',
		cost REAL NOT NULL,
		price REAL NOT NULL
	);

	CREATE TABLE IF NOT EXISTS sales (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		item_id INTEGER NOT NULL,
		date TEXT NOT NULL,
		qty INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_sales_date ON sales(date);
	CREATE INDEX IF NOT EXISTS idx_sales_item ON sales(item_id);
	`

	_, err := s.db.Exec(schema)
	return err
}

func (s *Store) CreateItem(ctx context.Context, item domain.Item) (*domain.Item, error) {
	if strings.TrimSpace(item.Name) == "" || item.Cost < 0 || item.Price < 0 {
		return nil, store.ErrValidation
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO items (name, weight, cost, price)
		VALUES (?, ?, ?, ?)
	`, item.Name, item.Weight, item.Cost, item.Price)
	if err != nil {
		return nil, fmt.Errorf("insert item: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("insert item id: %w", err)
	}

	created := item
	created.ID = id
	return &created, nil
}

func (s *Store) ListItems(ctx context.Context) ([]domain.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, weight, cost, price
		FROM items
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()

	items := make([]domain.Item, 0, 32)
	for rows.Next() {
		var item domain.Item
		if err := rows.Scan(&item.ID, &item.Name, &item.Weight, &item.Cost, &item.Price); err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	return items, nil
}

// DeleteItem is an idempotent no-op when the id does not exist. Referencing
// sales are not cascade-deleted; they simply drop out of every joined read.
func (s *Store) DeleteItem(ctx context.Context, itemID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.ExecContext(ctx, `DELETE FROM items WHERE id = ?`, itemID); err != nil {
		return fmt.Errorf("delete item: %w", err)
	}
	return nil
}

func (s *Store) CreateSale(ctx context.Context, sale domain.Sale) (*domain.Sale, error) {
	if sale.ItemID < 1 || sale.Qty < 1 {
		return nil, store.ErrValidation
	}
	if _, err := time.Parse(domain.DateLayout, sale.Date); err != nil {
		return nil, store.ErrValidation
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO sales (item_id, date, qty)
		VALUES (?, ?, ?)
	`, sale.ItemID, sale.Date, sale.Qty)
	if err != nil {
		return nil, fmt.Errorf("insert sale: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("insert sale id: %w", err)
	}

	created := sale
	created.ID = id
	return &created, nil
}

func (s *Store) DeleteSale(ctx context.Context, saleID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.ExecContext(ctx, `DELETE FROM sales WHERE id = ?`, saleID); err != nil {
		return fmt.Errorf("delete sale: %w", err)
	}
	return nil
}

func (s *Store) SalesForDate(ctx context.Context, date string) ([]domain.SaleRow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT sales.id, items.name, sales.qty, items.price
		FROM sales JOIN items ON sales.item_id = items.id
		WHERE sales.date = ?
		ORDER BY sales.id
	`, date)
	if err != nil {
		return nil, fmt.Errorf("sales for date: %w", err)
	}
	defer rows.Close()

	result := make([]domain.SaleRow, 0, 16)
	for rows.Next() {
		var row domain.SaleRow
		if err := rows.Scan(&row.SaleID, &row.ItemName, &row.Qty, &row.Price); err != nil {
			return nil, fmt.Errorf("scan sale row: %w", err)
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sales for date: %w", err)
	}
	return result, nil
}

func (s *Store) SaleFinancials(ctx context.Context) ([]domain.SaleFinancial, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT items.cost, items.price, sales.qty
		FROM sales JOIN items ON sales.item_id = items.id
	`)
	if err != nil {
		return nil, fmt.Errorf("sale financials: %w", err)
	}
	defer rows.Close()

	result := make([]domain.SaleFinancial, 0, 64)
	for rows.Next() {
		var row domain.SaleFinancial
		if err := rows.Scan(&row.Cost, &row.Price, &row.Qty); err != nil {
			return nil, fmt.Errorf("scan sale financial: %w", err)
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sale financials: %w", err)
	}
	return result, nil
}

func (s *Store) SalesByPeriod(ctx context.Context, granularity domain.Granularity) ([]domain.PeriodBucket, error) {
	format, err := periodFormat(granularity)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// The label is zero-padded ISO-like, so lexicographic DESC coincides with
	// chronological DESC.
	query := fmt.Sprintf(`
		SELECT strftime('%s', sales.date) AS period, SUM(items.price * sales.qty)
		FROM sales JOIN items ON sales.item_id = items.id
		GROUP BY period
		ORDER BY period DESC
	`, format)

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("sales by period: %w", err)
	}
	defer rows.Close()

	buckets := make([]domain.PeriodBucket, 0, 16)
	for rows.Next() {
		var bucket domain.PeriodBucket
		if err := rows.Scan(&bucket.Period, &bucket.Revenue); err != nil {
			return nil, fmt.Errorf("scan period bucket: %w", err)
		}
		buckets = append(buckets, bucket)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sales by period: %w", err)
	}
	return buckets, nil
}

func periodFormat(granularity domain.Granularity) (string, error) {
	switch granularity {
	case domain.GranularityMonth:
		return "%Y-%m", nil
	case domain.GranularityYear:
		return "%Y", nil
	}
	return "", store.ErrValidation
}
