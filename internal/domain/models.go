package domain

// Item is a sellable product: cost is what the store paid per unit, price is
// what it charges. Weight is free-form display text ("500g", "1kg") and never
// enters a computation. Price below cost is allowed.
type Item struct {
	ID     int64   `json:"id"`
	Name   string  `json:"name"`
	Weight string  `json:"weight"`
	Cost   float64 `json:"cost"`
	Price  float64 `json:"price"`
}

// ItemCreateRequest carries the raw text-field inputs of the inventory form.
// Cost and price arrive as strings so that unparseable input is rejected as a
// validation error before anything is written.
type ItemCreateRequest struct {
	Name   string `json:"name"`
	Weight string `json:"weight"`
	Cost   string `json:"cost"`
	Price  string `json:"price"`
}

// ItemListEntry is one row of the inventory screen.
type ItemListEntry struct {
	Item    Item   `json:"item"`
	Summary string `json:"summary"`
}

// Sale records units of one item sold on a calendar date (no time component,
// stored as YYYY-MM-DD). ItemID is an unenforced reference: the item may have
// been deleted since.
type Sale struct {
	ID     int64  `json:"id"`
	ItemID int64  `json:"item_id"`
	Date   string `json:"date"`
	Qty    int    `json:"qty"`
}

// SaleCreateRequest carries the sale dialog inputs. Qty is a string for the
// same reason as ItemCreateRequest. Date is always caller-supplied; the core
// never assumes a "currently selected" day.
type SaleCreateRequest struct {
	ItemID int64  `json:"item_id"`
	Date   string `json:"date"`
	Qty    string `json:"qty"`
}

// SaleRow is one sale joined to its item, as returned by the store for a
// single date. Sales whose item was deleted never appear here.
type SaleRow struct {
	SaleID   int64   `json:"sale_id"`
	ItemName string  `json:"item_name"`
	Qty      int     `json:"qty"`
	Price    float64 `json:"price"`
}

// SaleLine is a SaleRow with its computed line total.
type SaleLine struct {
	SaleID           int64   `json:"sale_id"`
	ItemName         string  `json:"item_name"`
	Qty              int     `json:"qty"`
	Price            float64 `json:"price"`
	LineTotal        float64 `json:"line_total"`
	LineTotalDisplay string  `json:"line_total_display"`
}

// DaySales is the daily sales screen: all lines for one date plus the day
// header (formatted date and day total).
type DaySales struct {
	Date         string     `json:"date"`
	DateDisplay  string     `json:"date_display"`
	Lines        []SaleLine `json:"lines"`
	Total        float64    `json:"total"`
	TotalDisplay string     `json:"total_display"`
}

// SaleFinancial is the minimal joined row the analytics engine aggregates
// over: acquisition cost, sale price and quantity of one sale.
type SaleFinancial struct {
	Cost  float64
	Price float64
	Qty   int
}

// PeriodBucket is one row of the aggregated revenue series: a period label
// (YYYY-MM or YYYY) and the revenue summed over it.
type PeriodBucket struct {
	Period  string  `json:"period"`
	Revenue float64 `json:"revenue"`
}

// SeriesPoint is a PeriodBucket normalized against the maximum of its set.
type SeriesPoint struct {
	Label        string  `json:"label"`
	Revenue      float64 `json:"revenue"`
	PercentOfMax float64 `json:"percent_of_max"`
}

// Totals are the two headline figures of the metrics screen.
type Totals struct {
	Revenue float64 `json:"revenue"`
	Profit  float64 `json:"profit"`
}

// MetricsSummary is Totals plus display strings for the stat cards.
type MetricsSummary struct {
	Revenue        float64 `json:"revenue"`
	Profit         float64 `json:"profit"`
	RevenueDisplay string  `json:"revenue_display"`
	ProfitDisplay  string  `json:"profit_display"`
}

// SeriesEntry is one bar of the metrics graph: display label, raw and
// formatted revenue, and bar length as percent of the tallest bar.
type SeriesEntry struct {
	Label         string  `json:"label"`
	Revenue       float64 `json:"revenue"`
	AmountDisplay string  `json:"amount_display"`
	BarPercent    float64 `json:"bar_percent"`
}

// Granularity selects the time-bucket size of the analytics series.
type Granularity string

const (
	GranularityMonth Granularity = "month"
	GranularityYear  Granularity = "year"
)

// ParseGranularity maps the caller-facing mode string to a Granularity.
func ParseGranularity(raw string) (Granularity, bool) {
	switch Granularity(raw) {
	case GranularityMonth:
		return GranularityMonth, true
	case GranularityYear:
		return GranularityYear, true
	}
	return "", false
}

// DateLayout is the canonical on-disk and wire format for sale dates.
const DateLayout = "2006-01-02"
