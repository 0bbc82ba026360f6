// Package analytics rolls per-sale records into revenue/profit totals and a
// period-bucketed revenue series. Everything is recomputed from current store
// state on every call; nothing here caches or persists a derived figure.
package analytics

import (
	"context"

	"warungku/backend/internal/domain"
	"warungku/backend/internal/store"
)

type Engine struct {
	repo store.Repository
}

func NewEngine(repo store.Repository) *Engine {
	return &Engine{repo: repo}
}

// Totals computes revenue and profit over every sale still joined to a live
// item. An empty sale set yields (0, 0).
func (e *Engine) Totals(ctx context.Context) (domain.Totals, error) {
	rows, err := e.repo.SaleFinancials(ctx)
	if err != nil {
		return domain.Totals{}, err
	}

	var totals domain.Totals
	for _, row := range rows {
		qty := float64(row.Qty)
		totals.Revenue += row.Price * qty
		totals.Profit += (row.Price - row.Cost) * qty
	}
	return totals, nil
}

// Series returns the revenue series for the given granularity, most recent
// period first. No data yields an empty slice, which callers must treat as
// distinct from an all-zero series.
func (e *Engine) Series(ctx context.Context, granularity domain.Granularity) ([]domain.PeriodBucket, error) {
	return e.repo.SalesByPeriod(ctx, granularity)
}

// NormalizeSeries scales each bucket against the maximum of the given set:
// percent = revenue / max * 100. The max is taken over this call's buckets
// only. An empty input produces an empty output.
func NormalizeSeries(buckets []domain.PeriodBucket) []domain.SeriesPoint {
	points := make([]domain.SeriesPoint, 0, len(buckets))
	if len(buckets) == 0 {
		return points
	}

	max := buckets[0].Revenue
	for _, bucket := range buckets[1:] {
		if bucket.Revenue > max {
			max = bucket.Revenue
		}
	}

	for _, bucket := range buckets {
		percent := 0.0
		if max > 0 {
			percent = bucket.Revenue / max * 100
		}
		points = append(points, domain.SeriesPoint{
			Label:        bucket.Period,
			Revenue:      bucket.Revenue,
			PercentOfMax: percent,
		})
	}
	return points
}
