package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"expenses/internal/core"
	"expenses/internal/store"
)

// memStore is an in-memory store.Store used to exercise the handlers.
type memStore struct {
	nextID       int64
	rows         map[string][]core.Expense
	failAll      error // returned by every operation when set
	failInsertAt int   // 1-based insert call number that fails; 0 disables
	insertCalls  int
	summaryCalls int
}

func newMemStore() *memStore {
	return &memStore{rows: make(map[string][]core.Expense)}
}

func (m *memStore) ExpensesForDate(ctx context.Context, date core.Date) ([]core.Expense, error) {
	if m.failAll != nil {
		return nil, m.failAll
	}
	return m.rows[date.String()], nil
}

func (m *memStore) InsertExpense(ctx context.Context, e core.Expense) (int64, error) {
	m.insertCalls++
	if m.failAll != nil {
		return 0, m.failAll
	}
	if m.failInsertAt > 0 && m.insertCalls >= m.failInsertAt {
		return 0, &store.StorageError{Op: "insert expense", Err: errors.New("connection reset")}
	}
	m.nextID++
	e.ID = m.nextID
	m.rows[e.Date.String()] = append(m.rows[e.Date.String()], e)
	return e.ID, nil
}

func (m *memStore) DeleteExpensesForDate(ctx context.Context, date core.Date) (int64, error) {
	if m.failAll != nil {
		return 0, m.failAll
	}
	n := int64(len(m.rows[date.String()]))
	delete(m.rows, date.String())
	return n, nil
}

func (m *memStore) ExpenseSummary(ctx context.Context, start, end core.Date) ([]core.CategoryTotal, error) {
	m.summaryCalls++
	if m.failAll != nil {
		return nil, m.failAll
	}
	sums := make(map[string]int64)
	var order []string
	for day, expenses := range m.rows {
		d, _ := core.ParseDate(day)
		if d.Before(start.Time) || d.Time.After(end.Time) {
			continue
		}
		for _, e := range expenses {
			if _, seen := sums[e.Category]; !seen {
				order = append(order, e.Category)
			}
			sums[e.Category] += e.Amount.Cents
		}
	}
	var totals []core.CategoryTotal
	for _, cat := range order {
		totals = append(totals, core.CategoryTotal{Category: cat, TotalAmount: core.Money{Cents: sums[cat]}})
	}
	return totals, nil
}

func (m *memStore) Ping(ctx context.Context) error { return m.failAll }
func (m *memStore) Close() error                   { return nil }

func doRequest(t *testing.T, srv *Server, method, target, body string) *httptest.ResponseRecorder {
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

func TestRootMetadata(t *testing.T) {
	srv := NewServer(":0", newMemStore())
	rr := doRequest(t, srv, http.MethodGet, "/", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("root status=%d", rr.Code)
	}
	var meta struct {
		Name      string            `json:"name"`
		Status    string            `json:"status"`
		Endpoints map[string]string `json:"endpoints"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &meta); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if meta.Name != "Expense Manager API" || meta.Status != "operational" {
		t.Fatalf("unexpected metadata: %+v", meta)
	}
	if len(meta.Endpoints) == 0 {
		t.Fatal("expected endpoint map")
	}
}

func TestHealthStates(t *testing.T) {
	check := func(t *testing.T, srv *Server, wantStatus, wantDatabase string) {
		t.Helper()
		rr := doRequest(t, srv, http.MethodGet, "/health", "")
		if rr.Code != http.StatusOK {
			t.Fatalf("health status=%d", rr.Code)
		}
		var h struct {
			Status   string `json:"status"`
			Database string `json:"database"`
		}
		if err := json.Unmarshal(rr.Body.Bytes(), &h); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if h.Status != wantStatus || h.Database != wantDatabase {
			t.Fatalf("expected %s/%s, got %s/%s", wantStatus, wantDatabase, h.Status, h.Database)
		}
	}

	t.Run("healthy", func(t *testing.T) {
		check(t, NewServer(":0", newMemStore()), "healthy", "connected")
	})
	t.Run("unhealthy without store", func(t *testing.T) {
		check(t, NewServer(":0", nil), "unhealthy", "disconnected")
	})
	t.Run("degraded when probe read fails", func(t *testing.T) {
		st := newMemStore()
		st.failAll = &store.StorageError{Op: "fetch expenses for date", Err: errors.New("dial tcp: refused")}
		check(t, NewServer(":0", st), "degraded", "error")
	})
}

func TestListExpensesEmptyDate(t *testing.T) {
	srv := NewServer(":0", newMemStore())
	rr := doRequest(t, srv, http.MethodGet, "/expenses/2024-08-01", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rr.Code, rr.Body.String())
	}
	if got := strings.TrimSpace(rr.Body.String()); got != "[]" {
		t.Fatalf("expected empty array, got %s", got)
	}
}

func TestInvalidDatePath(t *testing.T) {
	srv := NewServer(":0", newMemStore())
	for _, method := range []string{http.MethodGet, http.MethodPost, http.MethodDelete} {
		rr := doRequest(t, srv, method, "/expenses/not-a-date", "")
		if rr.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", method, rr.Code)
		}
	}
}

func TestCreateBatchReturnsIDsInOrder(t *testing.T) {
	st := newMemStore()
	srv := NewServer(":0", st)

	body := `[
		{"category":"Food","notes":"Lunch","amount":25.50},
		{"category":"Transport","notes":"Bus","amount":5.00},
		{"category":"Food","notes":"Coffee","amount":2.00}
	]`
	rr := doRequest(t, srv, http.MethodPost, "/expenses/2024-08-01", body)
	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rr.Code, rr.Body.String())
	}

	var resp createExpensesResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.InsertedCount != 3 || len(resp.InsertedIDs) != 3 {
		t.Fatalf("expected 3 inserted, got %+v", resp)
	}
	for i := 1; i < len(resp.InsertedIDs); i++ {
		if resp.InsertedIDs[i] <= resp.InsertedIDs[i-1] {
			t.Fatalf("ids not in submission order: %v", resp.InsertedIDs)
		}
	}
}

func TestCreateBatchRejectedEntirelyOnValidationError(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"zero amount", `[{"category":"Food","notes":"ok","amount":10.00},{"category":"Food","notes":"bad","amount":0}]`},
		{"negative amount", `[{"category":"Food","notes":"bad","amount":-5.00}]`},
		{"empty category", `[{"category":"","notes":"x","amount":1.00}]`},
		{"empty notes", `[{"category":"Food","notes":"","amount":1.00}]`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			st := newMemStore()
			srv := NewServer(":0", st)
			rr := doRequest(t, srv, http.MethodPost, "/expenses/2024-08-01", tc.body)
			if rr.Code != http.StatusUnprocessableEntity {
				t.Fatalf("expected 422, got %d: %s", rr.Code, rr.Body.String())
			}
			if st.insertCalls != 0 {
				t.Fatalf("expected zero inserts, got %d", st.insertCalls)
			}
		})
	}
}

func TestCreateBatchMalformedBody(t *testing.T) {
	st := newMemStore()
	srv := NewServer(":0", st)
	rr := doRequest(t, srv, http.MethodPost, "/expenses/2024-08-01", `{"category":"Food"}`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for non-array body, got %d", rr.Code)
	}
	if st.insertCalls != 0 {
		t.Fatalf("expected zero inserts, got %d", st.insertCalls)
	}
}

func TestCreateBatchMidFailureKeepsCommittedRows(t *testing.T) {
	st := newMemStore()
	st.failInsertAt = 2
	srv := NewServer(":0", st)

	body := `[
		{"category":"Food","notes":"Lunch","amount":25.50},
		{"category":"Transport","notes":"Bus","amount":5.00}
	]`
	rr := doRequest(t, srv, http.MethodPost, "/expenses/2024-08-01", body)
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rr.Code)
	}
	// No driver detail leaks to the caller.
	if strings.Contains(rr.Body.String(), "connection reset") {
		t.Fatalf("driver error leaked: %s", rr.Body.String())
	}
	// The first insert committed and stays committed.
	if got := len(st.rows["2024-08-01"]); got != 1 {
		t.Fatalf("expected 1 committed row, got %d", got)
	}
}

func TestDeleteForDateIsIdempotent(t *testing.T) {
	st := newMemStore()
	srv := NewServer(":0", st)

	doRequest(t, srv, http.MethodPost, "/expenses/2024-08-01", `[{"category":"Food","notes":"Lunch","amount":25.50}]`)

	rr := doRequest(t, srv, http.MethodDelete, "/expenses/2024-08-01", "")
	var resp deleteExpensesResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.DeletedCount != 1 {
		t.Fatalf("expected 1 deleted, got %d", resp.DeletedCount)
	}

	// Repeating the delete on the now-empty date is a no-op, not an error.
	rr = doRequest(t, srv, http.MethodDelete, "/expenses/2024-08-01", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("second delete status=%d", rr.Code)
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.DeletedCount != 0 {
		t.Fatalf("expected 0 deleted, got %d", resp.DeletedCount)
	}
}

func TestInsertThenListAndSummaryScenario(t *testing.T) {
	st := newMemStore()
	srv := NewServer(":0", st)

	body := `[
		{"category":"Food","notes":"Lunch","amount":25.50},
		{"category":"Transport","notes":"Bus","amount":5.00}
	]`
	rr := doRequest(t, srv, http.MethodPost, "/expenses/2024-08-01", body)
	if rr.Code != http.StatusOK {
		t.Fatalf("create status=%d body=%s", rr.Code, rr.Body.String())
	}

	rr = doRequest(t, srv, http.MethodGet, "/expenses/2024-08-01", "")
	var listed []core.Expense
	if err := json.Unmarshal(rr.Body.Bytes(), &listed); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(listed) != 2 {
		t.Fatalf("expected 2 records, got %d", len(listed))
	}
	if listed[0].ID == listed[1].ID {
		t.Fatalf("expected distinct ids, got %d twice", listed[0].ID)
	}
	seen := make(map[string]int64)
	for _, e := range listed {
		seen[e.Category] = e.Amount.Cents
		if e.Date.String() != "2024-08-01" {
			t.Fatalf("expected stored date echoed, got %s", e.Date)
		}
	}
	if seen["Food"] != 2550 || seen["Transport"] != 500 {
		t.Fatalf("unexpected records: %+v", listed)
	}

	rr = doRequest(t, srv, http.MethodGet, "/summary?start_date=2024-08-01&end_date=2024-08-31", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("summary status=%d", rr.Code)
	}
	var totals []core.CategoryTotal
	if err := json.Unmarshal(rr.Body.Bytes(), &totals); err != nil {
		t.Fatalf("decode summary: %v", err)
	}
	want := map[string]int64{"Food": 2550, "Transport": 500}
	if len(totals) != len(want) {
		t.Fatalf("expected %d categories, got %+v", len(want), totals)
	}
	for _, ct := range totals {
		if want[ct.Category] != ct.TotalAmount.Cents {
			t.Fatalf("category %s: expected %d, got %d", ct.Category, want[ct.Category], ct.TotalAmount.Cents)
		}
	}
}

func TestSummaryValidation(t *testing.T) {
	st := newMemStore()
	srv := NewServer(":0", st)

	cases := []struct {
		name   string
		target string
	}{
		{"missing params", "/summary"},
		{"missing end", "/summary?start_date=2024-08-01"},
		{"malformed start", "/summary?start_date=bogus&end_date=2024-08-31"},
		{"start after end", "/summary?start_date=2024-08-31&end_date=2024-08-01"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rr := doRequest(t, srv, http.MethodGet, tc.target, "")
			if rr.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", rr.Code)
			}
		})
	}
	// None of the rejected requests reached storage.
	if st.summaryCalls != 0 {
		t.Fatalf("expected storage untouched, got %d summary calls", st.summaryCalls)
	}

	rr := doRequest(t, srv, http.MethodPost, "/summary?start_date=2024-08-01&end_date=2024-08-31", "")
	if rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rr.Code)
	}
}

func TestDataRoutesUnavailableWithoutStore(t *testing.T) {
	srv := NewServer(":0", nil)
	requests := []struct {
		method, target, body string
	}{
		{http.MethodGet, "/expenses/2024-08-01", ""},
		{http.MethodPost, "/expenses/2024-08-01", `[{"category":"Food","notes":"Lunch","amount":1.00}]`},
		{http.MethodDelete, "/expenses/2024-08-01", ""},
		{http.MethodGet, "/summary?start_date=2024-08-01&end_date=2024-08-31", ""},
	}
	for _, req := range requests {
		rr := doRequest(t, srv, req.method, req.target, req.body)
		if rr.Code != http.StatusServiceUnavailable {
			t.Fatalf("%s %s: expected 503, got %d", req.method, req.target, rr.Code)
		}
	}
}

func TestStorageFailureIsOpaque(t *testing.T) {
	st := newMemStore()
	st.failAll = &store.StorageError{Op: "fetch expenses for date", Err: errors.New("driver: bad packet")}
	srv := NewServer(":0", st)

	rr := doRequest(t, srv, http.MethodGet, "/expenses/2024-08-01", "")
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rr.Code)
	}
	if strings.Contains(rr.Body.String(), "bad packet") {
		t.Fatalf("driver error leaked: %s", rr.Body.String())
	}
}
