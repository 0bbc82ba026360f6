// Package memory is an in-memory Repository used by tests and by dev mode
// (STORE_DB_PATH=memory). Semantics match the SQL backends: inner-join reads,
// idempotent deletes, ids that are never reused.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"warungku/backend/internal/domain"
	"warungku/backend/internal/store"
)

type Store struct {
	mu         sync.RWMutex
	items      map[int64]domain.Item
	sales      map[int64]domain.Sale
	itemOrder  []int64
	saleOrder  []int64
	nextItemID int64
	nextSaleID int64
}

func New() *Store {
	return &Store{
		items: make(map[int64]domain.Item),
		sales: make(map[int64]domain.Sale),
	}
}

// NewSeeded returns a store preloaded with a small demo inventory.
func NewSeeded() *Store {
	s := New()
	seed := []domain.Item{
		{Name: "Beras Premium", Weight: "5kg", Cost: 62000, Price: 70000},
		{Name: "Minyak Goreng", Weight: "1L", Cost: 15000, Price: 18000},
		{Name: "Gula Pasir", Weight: "1kg", Cost: 13500, Price: 16000},
	}
	for _, item := range seed {
		_, _ = s.CreateItem(context.Background(), item)
	}
	return s
}

func (s *Store) CreateItem(_ context.Context, item domain.Item) (*domain.Item, error) {
	if strings.TrimSpace(item.Name) == "" || item.Cost < 0 || item.Price < 0 {
		return nil, store.ErrValidation
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextItemID++
	item.ID = s.nextItemID
	s.items[item.ID] = item
	s.itemOrder = append(s.itemOrder, item.ID)

	created := item
	return &created, nil
}

func (s *Store) ListItems(_ context.Context) ([]domain.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]domain.Item, 0, len(s.itemOrder))
	for _, id := range s.itemOrder {
		if item, ok := s.items[id]; ok {
			items = append(items, item)
		}
	}
	return items, nil
}

func (s *Store) DeleteItem(_ context.Context, itemID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.items[itemID]; !ok {
		return nil
	}
	delete(s.items, itemID)
	for i, id := range s.itemOrder {
		if id == itemID {
			s.itemOrder = append(s.itemOrder[:i], s.itemOrder[i+1:]...)
			break
		}
	}
	// Sales referencing itemID stay behind; joined reads skip them.
	return nil
}

func (s *Store) CreateSale(_ context.Context, sale domain.Sale) (*domain.Sale, error) {
	if sale.ItemID < 1 || sale.Qty < 1 {
		return nil, store.ErrValidation
	}
	if _, err := time.Parse(domain.DateLayout, sale.Date); err != nil {
		return nil, store.ErrValidation
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextSaleID++
	sale.ID = s.nextSaleID
	s.sales[sale.ID] = sale
	s.saleOrder = append(s.saleOrder, sale.ID)

	created := sale
	return &created, nil
}

func (s *Store) DeleteSale(_ context.Context, saleID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sales[saleID]; !ok {
		return nil
	}
	delete(s.sales, saleID)
	for i, id := range s.saleOrder {
		if id == saleID {
			s.saleOrder = append(s.saleOrder[:i], s.saleOrder[i+1:]...)
			break
		}
	}
	return nil
}

func (s *Store) SalesForDate(_ context.Context, date string) ([]domain.SaleRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.SaleRow, 0, 16)
	for _, id := range s.saleOrder {
		sale, ok := s.sales[id]
		if !ok || sale.Date != date {
			continue
		}
		item, ok := s.items[sale.ItemID]
		if !ok {
			continue
		}
		result = append(result, domain.SaleRow{
			SaleID:   sale.ID,
			ItemName: item.Name,
			Qty:      sale.Qty,
			Price:    item.Price,
		})
	}
	return result, nil
}

func (s *Store) SaleFinancials(_ context.Context) ([]domain.SaleFinancial, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.SaleFinancial, 0, len(s.saleOrder))
	for _, id := range s.saleOrder {
		sale, ok := s.sales[id]
		if !ok {
			continue
		}
		item, ok := s.items[sale.ItemID]
		if !ok {
			continue
		}
		result = append(result, domain.SaleFinancial{
			Cost:  item.Cost,
			Price: item.Price,
			Qty:   sale.Qty,
		})
	}
	return result, nil
}

func (s *Store) SalesByPeriod(_ context.Context, granularity domain.Granularity) ([]domain.PeriodBucket, error) {
	var labelLen int
	switch granularity {
	case domain.GranularityMonth:
		labelLen = len("2006-01")
	case domain.GranularityYear:
		labelLen = len("2006")
	default:
		return nil, store.ErrValidation
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	sums := make(map[string]float64)
	for _, id := range s.saleOrder {
		sale, ok := s.sales[id]
		if !ok {
			continue
		}
		item, ok := s.items[sale.ItemID]
		if !ok {
			continue
		}
		label := sale.Date
		if len(label) > labelLen {
			label = label[:labelLen]
		}
		sums[label] += item.Price * float64(sale.Qty)
	}

	buckets := make([]domain.PeriodBucket, 0, len(sums))
	for label, revenue := range sums {
		buckets = append(buckets, domain.PeriodBucket{Period: label, Revenue: revenue})
	}
	sort.Slice(buckets, func(i, j int) bool {
		return buckets[i].Period > buckets[j].Period
	})
	return buckets, nil
}
