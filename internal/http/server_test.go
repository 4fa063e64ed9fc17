package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"fiscal/internal/bills"
	"fiscal/internal/cache"
	"fiscal/internal/core"
	"fiscal/internal/ledger"
	"fiscal/internal/log"
	"fiscal/internal/report"
	"fiscal/internal/services"
)

var today = core.NewDate(2024, 5, 20)

type notReady struct{ *services.LedgerService }

func (notReady) Ready(context.Context) error { return errors.New("database is locked") }

func newTestServer(t *testing.T, rpm int) (*Server, *services.LedgerService) {
	t.Helper()
	store := ledger.New()
	book := bills.NewBook()
	ledgerSvc := services.NewLedgerService(store, book, nil, nil, log.Discard())
	insights := services.NewInsightsService(store, book, report.DefaultOptions(),
		cache.NewLRUCache[report.Dashboard](16, 0), cache.NewLRUCache[report.Insights](16, 0), log.Discard())

	srv := NewServer(Config{Addr: ":0", RateLimitRPM: rpm, UpcomingBills: 2, Today: func() core.Date { return today }}, ledgerSvc, insights, log.Discard())
	t.Cleanup(func() { srv.Shutdown(context.Background()) })
	return srv, ledgerSvc
}

func do(t *testing.T, srv *Server, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rr.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", rr.Body.String(), err)
	}
	return v
}

func TestHealthAndReady(t *testing.T) {
	srv, _ := newTestServer(t, 0)
	for _, path := range []string{"/healthz", "/readyz"} {
		rr := do(t, srv, http.MethodGet, path, "")
		if rr.Code != http.StatusOK {
			t.Fatalf("%s status=%d", path, rr.Code)
		}
		if rr.Header().Get("X-Content-Type-Options") != "nosniff" || rr.Header().Get("X-Request-ID") == "" {
			t.Fatalf("%s missing middleware headers: %v", path, rr.Header())
		}
	}
}

func TestReadyReportsStorageFailure(t *testing.T) {
	_, ledgerSvc := newTestServer(t, 0)
	srv := NewServer(Config{}, notReady{ledgerSvc}, nil, log.Discard())
	defer srv.Shutdown(context.Background())

	rr := do(t, srv, http.MethodGet, "/readyz", "")
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rr.Code)
	}
}

func TestCreateTransaction(t *testing.T) {
	srv, ledgerSvc := newTestServer(t, 0)

	rr := do(t, srv, http.MethodPost, "/api/transactions",
		`{"kind":"expense","amount":"12,50","category":"Food & Dining","description":"  Lunch ","date":"2024-05-18"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
	tx := decode[core.Transaction](t, rr)
	if tx.ID != 1 || tx.Amount.Cents != 1250 || tx.Description != "Lunch" || tx.Date.String() != "2024-05-18" {
		t.Fatalf("unexpected transaction %+v", tx)
	}

	rr = do(t, srv, http.MethodPost, "/api/transactions",
		`{"kind":"income","amount":3000,"category":"Salary/Stipend","description":"pay","date":"2024-05-01"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("numeric amount: expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
	if got := len(ledgerSvc.Transactions()); got != 2 {
		t.Fatalf("expected 2 transactions, got %d", got)
	}
}

func TestCreateTransactionValidation(t *testing.T) {
	srv, ledgerSvc := newTestServer(t, 0)
	tests := []struct {
		name   string
		body   string
		status int
		field  string
	}{
		{"bad kind", `{"kind":"transfer","amount":"1","category":"Other","description":"x","date":"2024-05-01"}`, 422, "kind"},
		{"zero amount", `{"kind":"expense","amount":"0","category":"Other","description":"x","date":"2024-05-01"}`, 422, "amount"},
		{"negative amount", `{"kind":"expense","amount":-5,"category":"Other","description":"x","date":"2024-05-01"}`, 422, "amount"},
		{"text amount", `{"kind":"expense","amount":"abc","category":"Other","description":"x","date":"2024-05-01"}`, 422, "amount"},
		{"wrong category for kind", `{"kind":"income","amount":"1","category":"Rent/PG","description":"x","date":"2024-05-01"}`, 422, "category"},
		{"blank description", `{"kind":"expense","amount":"1","category":"Other","description":"   ","date":"2024-05-01"}`, 422, "description"},
		{"impossible date", `{"kind":"expense","amount":"1","category":"Other","description":"x","date":"2024-02-30"}`, 422, "date"},
		{"malformed json", `{"kind":`, 400, ""},
		{"unknown field", `{"kind":"expense","amount":"1","category":"Other","description":"x","date":"2024-05-01","id":9}`, 400, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := do(t, srv, http.MethodPost, "/api/transactions", tt.body)
			if rr.Code != tt.status {
				t.Fatalf("expected %d, got %d: %s", tt.status, rr.Code, rr.Body.String())
			}
			if tt.field != "" {
				if got := decode[errorResponse](t, rr); got.Field != tt.field {
					t.Fatalf("expected field %q, got %+v", tt.field, got)
				}
			}
		})
	}
	if n := len(ledgerSvc.Transactions()); n != 0 {
		t.Fatalf("rejected candidates must not be stored, found %d", n)
	}
}

func TestListTransactionsAndCategories(t *testing.T) {
	srv, _ := newTestServer(t, 0)

	list := decode[transactionList](t, do(t, srv, http.MethodGet, "/api/transactions", ""))
	if list.Count != 0 || list.Transactions == nil {
		t.Fatalf("expected empty non-nil list, got %+v", list)
	}

	cats := decode[map[string][]string](t, do(t, srv, http.MethodGet, "/api/categories", ""))
	if len(cats["income"]) != len(core.IncomeCategories) || len(cats["expense"]) != len(core.ExpenseCategories) {
		t.Fatalf("unexpected categories %+v", cats)
	}

	rr := do(t, srv, http.MethodDelete, "/api/transactions", "")
	if rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rr.Code)
	}
}

func TestDashboardAndInsights(t *testing.T) {
	srv, _ := newTestServer(t, 0)
	do(t, srv, http.MethodPost, "/api/transactions", `{"kind":"income","amount":"1000","category":"Freelance","description":"gig","date":"2024-05-02"}`)
	do(t, srv, http.MethodPost, "/api/transactions", `{"kind":"expense","amount":"250","category":"Transport","description":"metro","date":"2024-05-03"}`)

	rr := do(t, srv, http.MethodGet, "/api/dashboard", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("dashboard status %d: %s", rr.Code, rr.Body.String())
	}
	var dash struct {
		Date    string `json:"date"`
		Balance struct {
			CurrentBalance float64 `json:"currentBalance"`
		} `json:"balance"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &dash); err != nil {
		t.Fatal(err)
	}
	if dash.Date != "2024-05-20" || dash.Balance.CurrentBalance != 750 {
		t.Fatalf("unexpected dashboard %+v", dash)
	}

	rr = do(t, srv, http.MethodGet, "/api/insights?date=2024-06-01", "")
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), `"projection"`) {
		t.Fatalf("insights status %d: %s", rr.Code, rr.Body.String())
	}

	for _, window := range []int{3, 6, 12} {
		rr = do(t, srv, http.MethodGet, fmt.Sprintf("/api/insights?date=2024-06-01&window=%d", window), "")
		if rr.Code != http.StatusOK {
			t.Fatalf("window %d status %d: %s", window, rr.Code, rr.Body.String())
		}
		var in struct {
			Trend struct {
				Points []json.RawMessage `json:"points"`
			} `json:"trend"`
		}
		if err := json.Unmarshal(rr.Body.Bytes(), &in); err != nil {
			t.Fatal(err)
		}
		if len(in.Trend.Points) != window {
			t.Fatalf("window %d: expected %d trend points, got %d", window, window, len(in.Trend.Points))
		}
	}
	for _, bad := range []string{"4", "year", "-3"} {
		if rr = do(t, srv, http.MethodGet, "/api/insights?window="+bad, ""); rr.Code != http.StatusBadRequest {
			t.Fatalf("window %q: expected 400, got %d", bad, rr.Code)
		}
	}

	rr = do(t, srv, http.MethodGet, "/api/dashboard?date=yesterday", "")
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad date, got %d", rr.Code)
	}
}

func TestBills(t *testing.T) {
	srv, _ := newTestServer(t, 0)

	rr := do(t, srv, http.MethodPost, "/api/bills", `{"name":"Rent","amount":"900","dueDate":"2024-01-31","every":"monthly"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
	rr = do(t, srv, http.MethodPost, "/api/bills", `{"name":"Gym","amount":"30","dueDate":"2024-05-25","every":"fortnightly"}`)
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for unknown frequency, got %d", rr.Code)
	}

	list := decode[billList](t, do(t, srv, http.MethodGet, "/api/bills", ""))
	if len(list.Bills) != 1 || len(list.Upcoming) != 1 {
		t.Fatalf("unexpected bills %+v", list)
	}
	if got := list.Upcoming[0].NextDue.String(); got != "2024-05-31" {
		t.Fatalf("expected month-end clamp to 2024-05-31, got %s", got)
	}
	if list.Upcoming[0].DaysLeft != 11 {
		t.Fatalf("expected 11 days left, got %d", list.Upcoming[0].DaysLeft)
	}

	for i := 0; i < 3; i++ {
		do(t, srv, http.MethodPost, "/api/bills", fmt.Sprintf(`{"name":"Bill %d","amount":"10","dueDate":"2024-06-0%d"}`, i, i+1))
	}
	list = decode[billList](t, do(t, srv, http.MethodGet, "/api/bills", ""))
	if len(list.Bills) != 4 || len(list.Upcoming) != 2 {
		t.Fatalf("expected the configured default of 2 upcoming bills, got %d of %d", len(list.Upcoming), len(list.Bills))
	}
	list = decode[billList](t, do(t, srv, http.MethodGet, "/api/bills?limit=4", ""))
	if len(list.Upcoming) != 4 {
		t.Fatalf("expected 4 upcoming bills, got %d", len(list.Upcoming))
	}

	rr = do(t, srv, http.MethodGet, "/api/bills?limit=-1", "")
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for negative limit, got %d", rr.Code)
	}
}

func TestRateLimit(t *testing.T) {
	srv, _ := newTestServer(t, 2)
	for i := 0; i < 2; i++ {
		if rr := do(t, srv, http.MethodGet, "/healthz", ""); rr.Code != http.StatusOK {
			t.Fatalf("request %d status %d", i, rr.Code)
		}
	}
	rr := do(t, srv, http.MethodGet, "/healthz", "")
	if rr.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rr.Code)
	}
	if got := decode[errorResponse](t, rr); got.Error == "" {
		t.Fatal("expected JSON error body")
	}
}
