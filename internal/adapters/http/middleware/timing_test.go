package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"shepherd/internal/adapters/http/perf"
)

// TestTiming_RecordsEntry verifies that a request entry is recorded with a request ID.
func TestTiming_RecordsEntry(t *testing.T) {
	collector := perf.NewCollector(100)
	handler := Timing(collector, 0)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest("GET", "/api/missing", nil))

	if rr.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rr.Code)
	}
	if collector.TotalRecorded() != 1 {
		t.Errorf("TotalRecorded = %d, want 1", collector.TotalRecorded())
	}
	if rr.Header().Get(RequestIDHeader) == "" {
		t.Error("missing request ID header")
	}
}

// TestTiming_NilCollector verifies middleware works without a collector.
func TestTiming_NilCollector(t *testing.T) {
	handler := Timing(nil, 0)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest("GET", "/api/test", nil))

	if rr.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rr.Code)
	}
}

// TestTiming_HandlerPanic verifies the deferred timing runs before a panic propagates.
func TestTiming_HandlerPanic(t *testing.T) {
	collector := perf.NewCollector(100)
	handler := Timing(collector, 0)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	defer func() {
		if r := recover(); r == nil {
			t.Fatal("expected panic to propagate, got nil")
		}
		if collector.TotalRecorded() != 1 {
			t.Errorf("TotalRecorded = %d, want 1 (defer must run even on panic)", collector.TotalRecorded())
		}
	}()

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/api/panic", nil))
}

// TestTiming_LabelsByRoutePattern verifies path parameters collapse into one perf entry.
func TestTiming_LabelsByRoutePattern(t *testing.T) {
	collector := perf.NewCollector(10)
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/first-timers/{id}/feedback", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	})
	handler := Timing(collector, 0)(mux)

	for _, id := range []string{"a", "b", "c"} {
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("POST", "/api/first-timers/"+id+"/feedback", nil))
	}

	snap := collector.Snapshot(time.Now().Add(-time.Minute), 10)
	if len(snap.SlowestPaths) != 1 {
		t.Fatalf("SlowestPaths = %+v, want one route", snap.SlowestPaths)
	}
	if got := snap.SlowestPaths[0]; got.Path != "POST /api/first-timers/{id}/feedback" || got.Count != 3 {
		t.Errorf("route stat = %+v, want pattern x3", got)
	}
}

// TestTiming_UnmatchedPathLabel verifies requests outside a mux fall back to method and path.
func TestTiming_UnmatchedPathLabel(t *testing.T) {
	collector := perf.NewCollector(1)
	handler := Timing(collector, 0)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("POST", "/api/attendance", nil))

	snap := collector.Snapshot(time.Now().Add(-time.Minute), 10)
	if len(snap.SlowestPaths) != 1 || snap.SlowestPaths[0].Path != "POST /api/attendance" {
		t.Errorf("SlowestPaths = %+v, want \"POST /api/attendance\"", snap.SlowestPaths)
	}
}

// TestTiming_PoolNoStateLeak verifies pooled writers do not leak status codes.
func TestTiming_PoolNoStateLeak(t *testing.T) {
	collector := perf.NewCollector(100)

	fail := Timing(collector, 0)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	fail.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/api/fail", nil))

	ok := Timing(collector, 0)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	}))
	rr := httptest.NewRecorder()
	ok.ServeHTTP(rr, httptest.NewRequest("GET", "/api/ok", nil))

	if rr.Code != http.StatusOK {
		t.Errorf("status = %d, want 200 (pool must not leak 500)", rr.Code)
	}
}

// BenchmarkTiming measures per-request overhead.
func BenchmarkTiming(b *testing.B) {
	collector := perf.NewCollector(perf.DefaultRingSize)
	handler := Timing(collector, 0)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	req := httptest.NewRequest("GET", "/api/bench", nil)

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		handler.ServeHTTP(httptest.NewRecorder(), req)
	}
}
