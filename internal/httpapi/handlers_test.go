package httpapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"

	"warungku/backend/internal/analytics"
	"warungku/backend/internal/domain"
	"warungku/backend/internal/service"
	"warungku/backend/internal/store/memory"
)

// newTestAPI builds a full API over an in-memory store and a real Service so
// handler tests exercise the complete request path.
func newTestAPI(t *testing.T) http.Handler {
	t.Helper()

	repo := memory.New()
	svc := service.New(repo, analytics.NewEngine(repo))
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	return New(svc, "*", logger).Handler()
}

func doJSON(t *testing.T, handler http.Handler, method, path string, payload any) *httptest.ResponseRecorder {
	t.Helper()

	var body *bytes.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
		body = bytes.NewReader(raw)
	} else {
		body = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func createItem(t *testing.T, handler http.Handler, name, cost, price string) domain.Item {
	t.Helper()

	rec := doJSON(t, handler, http.MethodPost, "/api/v1/items", map[string]string{
		"name":  name,
		"cost":  cost,
		"price": price,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create item: expected 201, got %d (body: %s)", rec.Code, rec.Body.String())
	}

	var resp struct {
		Item domain.Item `json:"item"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode item response: %v", err)
	}
	return resp.Item
}

func TestHandleHealth(t *testing.T) {
	handler := newTestAPI(t)

	rec := doJSON(t, handler, http.MethodGet, "/healthz", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var body map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["ok"] != true {
		t.Fatalf("expected ok:true, got %v", body["ok"])
	}
}

func TestItemsCreateAndList(t *testing.T) {
	handler := newTestAPI(t)

	item := createItem(t, handler, "Beras Premium", "62000", "70000")
	if item.ID < 1 {
		t.Fatalf("expected assigned id, got %d", item.ID)
	}

	rec := doJSON(t, handler, http.MethodGet, "/api/v1/items", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp struct {
		Items []domain.ItemListEntry `json:"items"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if len(resp.Items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(resp.Items))
	}
	if resp.Items[0].Summary != "Buy: Rp. 62,000 | Sell: Rp. 70,000" {
		t.Fatalf("unexpected summary: %q", resp.Items[0].Summary)
	}
}

func TestItemsCreateValidation(t *testing.T) {
	handler := newTestAPI(t)

	rec := doJSON(t, handler, http.MethodPost, "/api/v1/items", map[string]string{
		"name":  "Teh",
		"cost":  "abc",
		"price": "5000",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d (body: %s)", rec.Code, rec.Body.String())
	}
}

func TestItemsCreateRejectsUnknownFields(t *testing.T) {
	handler := newTestAPI(t)

	rec := doJSON(t, handler, http.MethodPost, "/api/v1/items", map[string]string{
		"name":  "Teh",
		"cost":  "4000",
		"price": "5000",
		"sku":   "TEH-01",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown field, got %d", rec.Code)
	}
}

func TestItemsDelete(t *testing.T) {
	handler := newTestAPI(t)
	item := createItem(t, handler, "Sabun", "3000", "4000")

	rec := doJSON(t, handler, http.MethodDelete, fmt.Sprintf("/api/v1/items/%d", item.ID), nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}

	// Deleting again is a no-op.
	rec = doJSON(t, handler, http.MethodDelete, fmt.Sprintf("/api/v1/items/%d", item.ID), nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204 on repeat, got %d", rec.Code)
	}

	rec = doJSON(t, handler, http.MethodDelete, "/api/v1/items/abc", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for non-numeric id, got %d", rec.Code)
	}
}

func TestSalesRequireDateParam(t *testing.T) {
	handler := newTestAPI(t)

	rec := doJSON(t, handler, http.MethodGet, "/api/v1/sales", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without date, got %d", rec.Code)
	}

	rec = doJSON(t, handler, http.MethodGet, "/api/v1/sales?date=not-a-date", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed date, got %d", rec.Code)
	}
}

func TestSalesCreateAndListByDate(t *testing.T) {
	handler := newTestAPI(t)
	item := createItem(t, handler, "Mie Instan", "2500", "3500")

	rec := doJSON(t, handler, http.MethodPost, "/api/v1/sales", map[string]any{
		"item_id": item.ID,
		"date":    "2024-01-10",
		"qty":     "2",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d (body: %s)", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, handler, http.MethodGet, "/api/v1/sales?date=2024-01-10", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var day domain.DaySales
	if err := json.NewDecoder(rec.Body).Decode(&day); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if len(day.Lines) != 1 {
		t.Fatalf("expected 1 line, got %d", len(day.Lines))
	}
	if day.Total != 7000 {
		t.Fatalf("expected day total 7000, got %v", day.Total)
	}
	if day.DateDisplay != "10 January 2024" {
		t.Fatalf("unexpected date display: %q", day.DateDisplay)
	}

	// Another date has its own, empty view.
	rec = doJSON(t, handler, http.MethodGet, "/api/v1/sales?date=2024-01-11", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if err := json.NewDecoder(rec.Body).Decode(&day); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if len(day.Lines) != 0 || day.Total != 0 {
		t.Fatalf("expected empty day, got %+v", day)
	}
}

func TestSalesCreateValidation(t *testing.T) {
	handler := newTestAPI(t)

	rec := doJSON(t, handler, http.MethodPost, "/api/v1/sales", map[string]any{
		"item_id": 0,
		"date":    "2024-01-10",
		"qty":     "1",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without item, got %d", rec.Code)
	}

	rec = doJSON(t, handler, http.MethodPost, "/api/v1/sales", map[string]any{
		"item_id": 1,
		"date":    "2024-01-10",
		"qty":     "zero",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad qty, got %d", rec.Code)
	}
}

func TestSalesDelete(t *testing.T) {
	handler := newTestAPI(t)
	item := createItem(t, handler, "Roti", "4000", "5000")

	rec := doJSON(t, handler, http.MethodPost, "/api/v1/sales", map[string]any{
		"item_id": item.ID,
		"date":    "2024-04-01",
		"qty":     "1",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	var created struct {
		Sale domain.Sale `json:"sale"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&created); err != nil {
		t.Fatalf("decode body: %v", err)
	}

	rec = doJSON(t, handler, http.MethodDelete, fmt.Sprintf("/api/v1/sales/%d", created.Sale.ID), nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}

	rec = doJSON(t, handler, http.MethodGet, "/api/v1/sales?date=2024-04-01", nil)
	var day domain.DaySales
	if err := json.NewDecoder(rec.Body).Decode(&day); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if len(day.Lines) != 0 {
		t.Fatalf("expected no lines after delete, got %d", len(day.Lines))
	}
}

func TestMetricsEndpoints(t *testing.T) {
	handler := newTestAPI(t)
	item := createItem(t, handler, "Beras", "1000", "1500")

	for _, sale := range []map[string]any{
		{"item_id": item.ID, "date": "2024-01-10", "qty": "3"},
		{"item_id": item.ID, "date": "2024-02-05", "qty": "2"},
	} {
		rec := doJSON(t, handler, http.MethodPost, "/api/v1/sales", sale)
		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d", rec.Code)
		}
	}

	rec := doJSON(t, handler, http.MethodGet, "/api/v1/metrics/summary", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var summary domain.MetricsSummary
	if err := json.NewDecoder(rec.Body).Decode(&summary); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if summary.Revenue != 7500 || summary.Profit != 2500 {
		t.Fatalf("unexpected totals: %+v", summary)
	}
	if summary.RevenueDisplay != "Rp. 7,500" {
		t.Fatalf("unexpected revenue display: %q", summary.RevenueDisplay)
	}

	rec = doJSON(t, handler, http.MethodGet, "/api/v1/metrics/series?granularity=month", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var series struct {
		Series []domain.SeriesEntry `json:"series"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&series); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if len(series.Series) != 2 {
		t.Fatalf("expected 2 buckets, got %d", len(series.Series))
	}
	if series.Series[0].Label != "2024-02" {
		t.Fatalf("expected newest bucket first, got %q", series.Series[0].Label)
	}

	rec = doJSON(t, handler, http.MethodGet, "/api/v1/metrics/series?granularity=week", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown granularity, got %d", rec.Code)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	handler := newTestAPI(t)

	rec := doJSON(t, handler, http.MethodPut, "/api/v1/items", nil)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rec.Code)
	}
}

func TestCORSPreflight(t *testing.T) {
	handler := newTestAPI(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/items", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204 preflight, got %d", rec.Code)
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Fatalf("missing CORS origin header")
	}
}
