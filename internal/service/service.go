package service

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"warungku/backend/internal/analytics"
	"warungku/backend/internal/currency"
	"warungku/backend/internal/domain"
	"warungku/backend/internal/store"
)

// Service validates caller input, delegates persistence to the Repository and
// derived figures to the analytics engine, and attaches the display strings
// the presentation layer renders verbatim.
type Service struct {
	repo   store.Repository
	engine *analytics.Engine
}

func New(repo store.Repository, engine *analytics.Engine) *Service {
	return &Service{repo: repo, engine: engine}
}

// AddItem parses and validates the inventory form fields and persists the
// item. Nothing is written when validation fails.
func (s *Service) AddItem(ctx context.Context, req domain.ItemCreateRequest) (domain.Item, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.Item{}, fmt.Errorf("%w: item name is required", store.ErrValidation)
	}

	cost, err := parseAmount(req.Cost)
	if err != nil {
		return domain.Item{}, fmt.Errorf("%w: cost must be a non-negative number", store.ErrValidation)
	}
	price, err := parseAmount(req.Price)
	if err != nil {
		return domain.Item{}, fmt.Errorf("%w: price must be a non-negative number", store.ErrValidation)
	}

	item := domain.Item{
		Name:   name,
		Weight: strings.TrimSpace(req.Weight),
		Cost:   cost,
		Price:  price,
	}

	created, err := s.repo.CreateItem(ctx, item)
	if err != nil {
		return domain.Item{}, err
	}
	return *created, nil
}

// ListItems returns the inventory with the per-row summary line the
// inventory screen renders ("Buy: Rp. X | Sell: Rp. Y").
func (s *Service) ListItems(ctx context.Context) ([]domain.ItemListEntry, error) {
	items, err := s.repo.ListItems(ctx)
	if err != nil {
		return nil, err
	}

	entries := make([]domain.ItemListEntry, 0, len(items))
	for _, item := range items {
		entries = append(entries, domain.ItemListEntry{
			Item:    item,
			Summary: fmt.Sprintf("Buy: %s | Sell: %s", currency.Format(item.Cost), currency.Format(item.Price)),
		})
	}
	return entries, nil
}

// DeleteItem removes the item; deleting an unknown id is a no-op. Sales that
// referenced the item are not removed, but become invisible to every joined
// read and to the analytics totals.
func (s *Service) DeleteItem(ctx context.Context, itemID int64) error {
	return s.repo.DeleteItem(ctx, itemID)
}

// LogSale validates the sale dialog inputs and persists the sale. The item id
// must be selected and the quantity a positive integer; whether the item
// still exists is deliberately not checked here.
func (s *Service) LogSale(ctx context.Context, req domain.SaleCreateRequest) (domain.Sale, error) {
	if req.ItemID < 1 {
		return domain.Sale{}, fmt.Errorf("%w: item selection is required", store.ErrValidation)
	}

	qty, err := strconv.Atoi(strings.TrimSpace(req.Qty))
	if err != nil || qty < 1 {
		return domain.Sale{}, fmt.Errorf("%w: quantity must be a positive integer", store.ErrValidation)
	}

	date := strings.TrimSpace(req.Date)
	if _, err := time.Parse(domain.DateLayout, date); err != nil {
		return domain.Sale{}, fmt.Errorf("%w: date must be YYYY-MM-DD", store.ErrValidation)
	}

	sale := domain.Sale{ItemID: req.ItemID, Date: date, Qty: qty}
	created, err := s.repo.CreateSale(ctx, sale)
	if err != nil {
		return domain.Sale{}, err
	}
	return *created, nil
}

// DeleteSale removes the sale; deleting an unknown id is a no-op.
func (s *Service) DeleteSale(ctx context.Context, saleID int64) error {
	return s.repo.DeleteSale(ctx, saleID)
}

// SalesForDate returns the daily sales screen for an explicit date: each sale
// joined to its item with the computed line total, plus the formatted day
// header and day total. Sales whose item was deleted are excluded.
func (s *Service) SalesForDate(ctx context.Context, date string) (domain.DaySales, error) {
	date = strings.TrimSpace(date)
	day, err := time.Parse(domain.DateLayout, date)
	if err != nil {
		return domain.DaySales{}, fmt.Errorf("%w: date must be YYYY-MM-DD", store.ErrValidation)
	}

	rows, err := s.repo.SalesForDate(ctx, date)
	if err != nil {
		return domain.DaySales{}, err
	}

	lines := make([]domain.SaleLine, 0, len(rows))
	var total float64
	for _, row := range rows {
		lineTotal := row.Price * float64(row.Qty)
		total += lineTotal
		lines = append(lines, domain.SaleLine{
			SaleID:           row.SaleID,
			ItemName:         row.ItemName,
			Qty:              row.Qty,
			Price:            row.Price,
			LineTotal:        lineTotal,
			LineTotalDisplay: currency.Format(lineTotal),
		})
	}

	return domain.DaySales{
		Date:         date,
		DateDisplay:  day.Format("02 January 2006"),
		Lines:        lines,
		Total:        total,
		TotalDisplay: currency.Format(total),
	}, nil
}

// MetricsSummary recomputes the two headline totals from current store state.
func (s *Service) MetricsSummary(ctx context.Context) (domain.MetricsSummary, error) {
	totals, err := s.engine.Totals(ctx)
	if err != nil {
		return domain.MetricsSummary{}, err
	}

	return domain.MetricsSummary{
		Revenue:        totals.Revenue,
		Profit:         totals.Profit,
		RevenueDisplay: currency.Format(totals.Revenue),
		ProfitDisplay:  currency.Format(totals.Profit),
	}, nil
}

// MetricsSeries recomputes the full series for the requested granularity and
// normalizes it for rendering. An empty result means "no data", not zero.
func (s *Service) MetricsSeries(ctx context.Context, mode string) ([]domain.SeriesEntry, error) {
	granularity, ok := domain.ParseGranularity(strings.TrimSpace(mode))
	if !ok {
		return nil, fmt.Errorf("%w: granularity must be month or year", store.ErrValidation)
	}

	buckets, err := s.engine.Series(ctx, granularity)
	if err != nil {
		return nil, err
	}

	points := analytics.NormalizeSeries(buckets)
	entries := make([]domain.SeriesEntry, 0, len(points))
	for _, point := range points {
		label := point.Label
		if granularity == domain.GranularityYear {
			label = "Year " + label
		}
		entries = append(entries, domain.SeriesEntry{
			Label:         label,
			Revenue:       point.Revenue,
			AmountDisplay: currency.Format(point.Revenue),
			BarPercent:    point.PercentOfMax,
		})
	}
	return entries, nil
}

func parseAmount(raw string) (float64, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return 0, fmt.Errorf("empty amount")
	}
	amount, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return 0, err
	}
	if amount < 0 || math.IsNaN(amount) || math.IsInf(amount, 0) {
		return 0, fmt.Errorf("amount out of range")
	}
	return amount, nil
}
