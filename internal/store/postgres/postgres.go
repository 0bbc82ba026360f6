package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"warungku/backend/internal/domain"
	"warungku/backend/internal/store"
)

type Store struct {
	db *sql.DB
}

// New connects to the database at databaseURL and ensures the schema exists.
func New(ctx context.Context, databaseURL string) (*Store, error) {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, err
	}

	db.SetMaxIdleConns(4)
	db.SetMaxOpenConns(8)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 6*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, err
	}

	s := &Store{db: db}
	if err := s.initSchema(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// BIGSERIAL sequences only move forward, so ids are never reused after a
// delete.
func (s *Store) initSchema(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS items (
		id BIGSERIAL PRIMARY KEY,
		name TEXT NOT NULL,
		weight TEXT NOT NULL DEFAULT '',
		cost DOUBLE PRECISION NOT NULL,
		price DOUBLE PRECISION NOT NULL
	);

	CREATE TABLE IF NOT EXISTS sales (
		id BIGSERIAL PRIMARY KEY,
		item_id BIGINT NOT NULL,
		date DATE NOT NULL,
		qty INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_sales_date ON sales(date);
	CREATE INDEX IF NOT EXISTS idx_sales_item ON sales(item_id);
	`

	_, err := s.db.ExecContext(ctx, schema)
	return err
}

func (s *Store) CreateItem(ctx context.Context, item domain.Item) (*domain.Item, error) {
	if strings.TrimSpace(item.Name) == "" || item.Cost < 0 || item.Price < 0 {
		return nil, store.ErrValidation
	}

	created := item
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO items (name, weight, cost, price)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, item.Name, item.Weight, item.Cost, item.Price).Scan(&created.ID)
	if err != nil {
		return nil, fmt.Errorf("insert item: %w", err)
	}
	return &created, nil
}

func (s *Store) ListItems(ctx context.Context) ([]domain.Item, error) {
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

func (s *Store) DeleteItem(ctx context.Context, itemID int64) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM items WHERE id = $1`, itemID); err != nil {
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

	created := sale
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO sales (item_id, date, qty)
		VALUES ($1, $2::date, $3)
		RETURNING id
	`, sale.ItemID, sale.Date, sale.Qty).Scan(&created.ID)
	if err != nil {
		return nil, fmt.Errorf("insert sale: %w", err)
	}
	return &created, nil
}

func (s *Store) DeleteSale(ctx context.Context, saleID int64) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM sales WHERE id = $1`, saleID); err != nil {
		return fmt.Errorf("delete sale: %w", err)
	}
	return nil
}

func (s *Store) SalesForDate(ctx context.Context, date string) ([]domain.SaleRow, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT sales.id, items.name, sales.qty, items.price
		FROM sales JOIN items ON sales.item_id = items.id
		WHERE sales.date = $1::date
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
	var format string
	switch granularity {
	case domain.GranularityMonth:
		format = "YYYY-MM"
	case domain.GranularityYear:
		format = "YYYY"
	default:
		return nil, store.ErrValidation
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT to_char(sales.date, $1) AS period, SUM(items.price * sales.qty)
		FROM sales JOIN items ON sales.item_id = items.id
		GROUP BY period
		ORDER BY period DESC
	`, format)
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
