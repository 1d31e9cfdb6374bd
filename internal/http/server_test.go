package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"caixa/internal/auth"
	"caixa/internal/gateway/memory"
	"caixa/internal/notify"
	"caixa/internal/store"
)

const testToken = "tok-123"

func newTestServer(t *testing.T) *Server {
	t.Helper()
	gw := memory.New()
	gw.GrantSession(testToken, "u1")

	st := store.New(gw, auth.ContextSource{}, store.Options{Notifier: &notify.Recorder{}})
	srv := NewServer(":0", st, gw, nil)
	t.Cleanup(func() { srv.cacheMgr.Stop(); srv.rateLimiter.Stop() })
	return srv
}

func doRequest(srv *Server, method, path, body string, authorized bool) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if authorized {
		req.Header.Set("Authorization", "Bearer "+testToken)
	}
	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, req)
	return rec
}

func TestHealthEndpoints(t *testing.T) {
	srv := newTestServer(t)
	for _, path := range []string{"/healthz", "/readyz"} {
		rec := doRequest(srv, http.MethodGet, path, "", false)
		if rec.Code != http.StatusOK {
			t.Errorf("%s status = %d", path, rec.Code)
		}
	}
}

func TestCreateProductRequiresAuth(t *testing.T) {
	srv := newTestServer(t)
	rec := doRequest(srv, http.MethodPost, "/api/products",
		`{"name":"Coxinha","price":"4.50"}`, false)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestUnknownTokenIsUnauthorized(t *testing.T) {
	srv := newTestServer(t)
	req := httptest.NewRequest(http.MethodPost, "/api/products", strings.NewReader(`{"name":"X","price":"1.00"}`))
	req.Header.Set("Authorization", "Bearer nope")
	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestProductLifecycle(t *testing.T) {
	srv := newTestServer(t)

	rec := doRequest(srv, http.MethodPost, "/api/products",
		`{"name":"Coxinha","description":"frita","price":"4.50"}`, true)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d: %s", rec.Code, rec.Body.String())
	}
	var created apiProduct
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode created: %v", err)
	}
	if created.Price != "4.50" || created.ID == "" {
		t.Errorf("created = %+v", created)
	}

	rec = doRequest(srv, http.MethodGet, "/api/products", "", true)
	var listed []apiProduct
	if err := json.Unmarshal(rec.Body.Bytes(), &listed); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(listed) != 1 {
		t.Fatalf("listed %d products", len(listed))
	}

	rec = doRequest(srv, http.MethodPut, "/api/products/"+created.ID, `{"price":"5.00"}`, true)
	if rec.Code != http.StatusOK {
		t.Errorf("update status = %d: %s", rec.Code, rec.Body.String())
	}

	rec = doRequest(srv, http.MethodPut, "/api/products/missing", `{"price":"5.00"}`, true)
	if rec.Code != http.StatusNotFound {
		t.Errorf("update missing status = %d", rec.Code)
	}

	rec = doRequest(srv, http.MethodDelete, "/api/products/"+created.ID, "", true)
	if rec.Code != http.StatusOK {
		t.Errorf("delete status = %d", rec.Code)
	}
}

func TestCreateProductRejectsBadPrice(t *testing.T) {
	srv := newTestServer(t)
	rec := doRequest(srv, http.MethodPost, "/api/products", `{"name":"X","price":"abc"}`, true)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422", rec.Code)
	}
}

func TestCreateSaleComputesTotal(t *testing.T) {
	srv := newTestServer(t)

	rec := doRequest(srv, http.MethodPost, "/api/products", `{"name":"Pastel","price":"10.00"}`, true)
	var product apiProduct
	if err := json.Unmarshal(rec.Body.Bytes(), &product); err != nil {
		t.Fatalf("decode product: %v", err)
	}

	rec = doRequest(srv, http.MethodPost, "/api/sales",
		`{"items":[{"product_id":"`+product.ID+`","quantity":2}],"payment_method":"pix"}`, true)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create sale status = %d: %s", rec.Code, rec.Body.String())
	}
	var sale apiSale
	if err := json.Unmarshal(rec.Body.Bytes(), &sale); err != nil {
		t.Fatalf("decode sale: %v", err)
	}
	if sale.Total != "20.00" {
		t.Errorf("total = %s, want 20.00", sale.Total)
	}
}

func TestCreateSaleUnknownProductFails(t *testing.T) {
	srv := newTestServer(t)
	rec := doRequest(srv, http.MethodPost, "/api/sales",
		`{"items":[{"product_id":"ghost","quantity":1}],"payment_method":"cash"}`, true)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422", rec.Code)
	}
}

func TestRenameDefaultPaymentMethodRejected(t *testing.T) {
	srv := newTestServer(t)
	rec := doRequest(srv, http.MethodPut, "/api/payment-methods/cash", `{"name":"dinheiro"}`, true)
	if rec.Code != http.StatusConflict {
		t.Errorf("status = %d, want 409", rec.Code)
	}
}

func TestRenameTagApplied(t *testing.T) {
	srv := newTestServer(t)
	rec := doRequest(srv, http.MethodPut, "/api/tags/rent", `{"name":"aluguel"}`, true)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}

	rec = doRequest(srv, http.MethodGet, "/api/tags", "", true)
	var tags []string
	if err := json.Unmarshal(rec.Body.Bytes(), &tags); err != nil {
		t.Fatalf("decode tags: %v", err)
	}
	for _, tag := range tags {
		if tag == "rent" {
			t.Error("rent should have been renamed")
		}
	}
}

func TestDashboardEndpoint(t *testing.T) {
	srv := newTestServer(t)
	rec := doRequest(srv, http.MethodGet, "/api/dashboard", "", true)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body map[string]json.RawMessage
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode dashboard: %v", err)
	}
	for _, key := range []string{"sales_today", "product_count", "expenses_this_month", "profit", "recent"} {
		if _, ok := body[key]; !ok {
			t.Errorf("dashboard missing %q", key)
		}
	}
}

func TestMonthlyReportOffsetValidation(t *testing.T) {
	srv := newTestServer(t)

	rec := doRequest(srv, http.MethodGet, "/api/reports/monthly?month_offset=3", "", true)
	if rec.Code != http.StatusOK {
		t.Errorf("offset 3 status = %d", rec.Code)
	}

	rec = doRequest(srv, http.MethodGet, "/api/reports/monthly?month_offset=12", "", true)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("offset 12 status = %d, want 422", rec.Code)
	}
}

func TestExportUnconfigured(t *testing.T) {
	srv := newTestServer(t)
	rec := doRequest(srv, http.MethodPost, "/api/reports/export", "", true)
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}
}

func TestReportCacheKeyedByUser(t *testing.T) {
	u1 := auth.WithUser(context.Background(), "u1")
	u2 := auth.WithUser(context.Background(), "u2")
	if reportCacheKey(u1, "dashboard") == reportCacheKey(u2, "dashboard") {
		t.Error("cache keys must differ per user")
	}
	if reportCacheKey(u1, "monthly-3") == reportCacheKey(context.Background(), "monthly-3") {
		t.Error("anonymous requests must not share a user's cache entry")
	}
}

func TestMutationInvalidatesDashboardCache(t *testing.T) {
	srv := newTestServer(t)

	rec := doRequest(srv, http.MethodGet, "/api/dashboard", "", true)
	var before map[string]json.RawMessage
	_ = json.Unmarshal(rec.Body.Bytes(), &before)

	doRequest(srv, http.MethodPost, "/api/products", `{"name":"Suco","price":"6.00"}`, true)

	rec = doRequest(srv, http.MethodGet, "/api/dashboard", "", true)
	var after struct {
		ProductCount int `json:"product_count"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &after); err != nil {
		t.Fatalf("decode dashboard: %v", err)
	}
	if after.ProductCount != 1 {
		t.Errorf("product_count = %d, want 1 after mutation", after.ProductCount)
	}
}
