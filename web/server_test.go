package web

import (
	"bytes"
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/uyouii/fanchart/model"
	"github.com/uyouii/fanchart/store"
	"github.com/uyouii/fanchart/utils"
	"go.uber.org/zap"
)

func init() {
	utils.SetLogger(zap.NewNop())
}

func newTestServer(t *testing.T) http.Handler {
	t.Helper()
	repo := store.NewMemoryRepository()
	ctx := context.Background()
	runs := []store.Run{
		{ID: "run_done", ExperimentID: "exp_1", Name: "balanced", Status: store.StatusComplete,
			Stats: &model.StatisticsSnapshot{P5: 80_000, P25: 95_000, P50: 1_234_567.6, P75: 1_300_000, P95: 1_500_000}},
		{ID: "run_busy", ExperimentID: "exp_1", Status: store.StatusRunning},
		{ID: "run_empty", ExperimentID: "exp_2", Status: store.StatusComplete},
	}
	for _, run := range runs {
		if err := repo.SaveRun(ctx, run); err != nil {
			t.Fatalf("SaveRun: %v", err)
		}
	}
	srv, err := NewServer(repo)
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	return srv.Handler()
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestRunResultsPage(t *testing.T) {
	h := newTestServer(t)

	tests := []struct {
		name      string
		path      string
		status    int
		wantChart bool
		contains  []string
	}{
		{"complete run", "/runs/run_done", http.StatusOK, true, []string{`<canvas id="fanChart">`, "$1,234,568"}},
		{"running run", "/runs/run_busy", http.StatusOK, false, []string{"available once the run completes"}},
		{"complete run without stats", "/runs/run_empty", http.StatusOK, false, []string{`<canvas id="fanChart">`, "No statistics"}},
		{"unknown run", "/runs/nope", http.StatusNotFound, false, nil},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := get(t, h, tc.path)
			if rec.Code != tc.status {
				t.Fatalf("status = %d, want %d", rec.Code, tc.status)
			}
			body := rec.Body.String()
			if got := strings.Count(body, "new Chart("); got != boolToCount(tc.wantChart) {
				t.Errorf("chart constructors = %d, want chart %v", got, tc.wantChart)
			}
			for _, want := range tc.contains {
				if !strings.Contains(body, want) {
					t.Errorf("body missing %q", want)
				}
			}
		})
	}
}

func boolToCount(b bool) int {
	if b {
		return 1
	}
	return 0
}

func TestRunResultsPageUnencodableStats(t *testing.T) {
	repo := store.NewMemoryRepository()
	run := store.Run{ID: "run_nan", ExperimentID: "exp_1", Status: store.StatusComplete,
		Stats: &model.StatisticsSnapshot{P5: 1, P25: 2, P50: math.NaN(), P75: 4, P95: 5}}
	if err := repo.SaveRun(context.Background(), run); err != nil {
		t.Fatalf("SaveRun: %v", err)
	}
	srv, err := NewServer(repo)
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}

	rec := get(t, srv.Handler(), "/runs/run_nan")
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "new Chart(") {
		t.Error("broken chart script served")
	}
}

func TestListRuns(t *testing.T) {
	h := newTestServer(t)

	rec := get(t, h, "/runs?experiment=exp_1")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "balanced") || !strings.Contains(body, "run_busy") {
		t.Errorf("runs of exp_1 missing:\n%s", body)
	}
	if strings.Contains(body, "run_empty") {
		t.Error("run of another experiment listed")
	}
}

func TestFanConfig(t *testing.T) {
	h := newTestServer(t)

	rec := get(t, h, "/runs/run_done/fan.json")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var raw map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &raw); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if raw["type"] != "bar" {
		t.Errorf("type = %v", raw["type"])
	}
	data := raw["data"].(map[string]any)
	if labels := data["labels"].([]any); len(labels) != 5 || labels[0] != "p5" || labels[4] != "p95" {
		t.Errorf("labels = %v", labels)
	}

	if rec := get(t, h, "/runs/run_busy/fan.json"); rec.Code != http.StatusNotFound {
		t.Errorf("running run config status = %d, want 404", rec.Code)
	}
}

func TestFanImage(t *testing.T) {
	h := newTestServer(t)

	rec := get(t, h, "/runs/run_done/fan.png?width=400&height=200")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "image/png" {
		t.Errorf("content type = %q", ct)
	}
	if !bytes.HasPrefix(rec.Body.Bytes(), []byte("\x89PNG")) {
		t.Error("body is not a PNG")
	}

	rec = get(t, h, "/runs/run_done/fan.svg")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "<svg") {
		t.Errorf("svg status = %d", rec.Code)
	}

	if rec := get(t, h, "/runs/run_empty/fan.png"); rec.Code != http.StatusNotFound {
		t.Errorf("no-stats image status = %d, want 404", rec.Code)
	}
	if rec := get(t, h, "/runs/nope/fan.png"); rec.Code != http.StatusNotFound {
		t.Errorf("unknown run image status = %d, want 404", rec.Code)
	}
}

func TestSizeParam(t *testing.T) {
	tests := map[string]int{
		"/x":              0,
		"/x?width=abc":    0,
		"/x?width=-5":     0,
		"/x?width=640":    640,
		"/x?width=100000": maxImageSide,
	}
	for path, want := range tests {
		r := httptest.NewRequest(http.MethodGet, path, nil)
		if got := sizeParam(r, "width"); got != want {
			t.Errorf("sizeParam(%s) = %d, want %d", path, got, want)
		}
	}
}
