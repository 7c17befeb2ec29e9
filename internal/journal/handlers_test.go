package journal

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"mood-journal-backend/internal/db/dbtest"
)

type recorded struct {
	names []string
}

func (r *recorded) Record(_ *http.Request, name string, _ map[string]any) {
	r.names = append(r.names, name)
}

func newJournalMux(t *testing.T) (*http.ServeMux, *recorded) {
	t.Helper()
	store := NewStore(dbtest.Open(t))
	rec := &recorded{}
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/journal", SaveHandler(store, rec, nil))
	mux.HandleFunc("GET /api/journal", ListHandler(store, nil))
	mux.HandleFunc("GET /api/journal/{dateKey}", GetHandler(store, nil))
	return mux, rec
}

func serve(mux http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func TestSaveHandler(t *testing.T) {
	mux, analytics := newJournalMux(t)

	rec := serve(mux, http.MethodPost, "/api/journal", `{"dateKey":"2026-10-15","mood":3,"note":"ok day"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body = %s", rec.Code, rec.Body)
	}
	var body map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	for _, key := range []string{"id", "date_key", "mood", "note", "created_at", "updated_at"} {
		if _, ok := body[key]; !ok {
			t.Fatalf("missing %q in %v", key, body)
		}
	}
	if body["mood"] != float64(3) || body["note"] != "ok day" {
		t.Fatalf("body = %v", body)
	}

	rec = serve(mux, http.MethodPost, "/api/journal", `{"dateKey":"2026-10-15","mood":null,"note":""}`)
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["mood"] != nil || body["note"] != nil {
		t.Fatalf("want nulls, got %v", body)
	}

	if len(analytics.names) != 2 || analytics.names[0] != "journal_saved" {
		t.Fatalf("analytics = %v", analytics.names)
	}
}

func TestSaveHandler_BadRequests(t *testing.T) {
	mux, analytics := newJournalMux(t)
	for _, body := range []string{`{}`, `{"mood":3}`, `{"dateKey":"2026-10-15","mood":"happy"}`, `{"dateKey":"2026-10-15","mood":9}`, `[`} {
		rec := serve(mux, http.MethodPost, "/api/journal", body)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("body %s: status = %d", body, rec.Code)
		}
	}
	if len(analytics.names) != 0 {
		t.Fatalf("analytics recorded for rejected requests: %v", analytics.names)
	}
}

func TestGetAndListHandlers(t *testing.T) {
	mux, _ := newJournalMux(t)

	if rec := serve(mux, http.MethodGet, "/api/journal/2026-10-14", ""); rec.Code != http.StatusNotFound {
		t.Fatalf("missing status = %d", rec.Code)
	}
	if rec := serve(mux, http.MethodGet, "/api/journal/tomorrow", ""); rec.Code != http.StatusBadRequest {
		t.Fatalf("bad key status = %d", rec.Code)
	}

	serve(mux, http.MethodPost, "/api/journal", `{"dateKey":"2026-10-14","mood":5}`)
	serve(mux, http.MethodPost, "/api/journal", `{"dateKey":"2026-10-15","mood":1}`)

	if rec := serve(mux, http.MethodGet, "/api/journal/2026-10-14", ""); rec.Code != http.StatusOK {
		t.Fatalf("get status = %d", rec.Code)
	}

	rec := serve(mux, http.MethodGet, "/api/journal?from=2026-10-15&to=2026-10-31", "")
	var list []Entry
	if err := json.NewDecoder(rec.Body).Decode(&list); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(list) != 1 || list[0].DateKey != "2026-10-15" {
		t.Fatalf("list = %+v", list)
	}
}
