package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/uyouii/fanchart/fanchart"
	"github.com/uyouii/fanchart/gochart"
	"github.com/uyouii/fanchart/model"
	"github.com/uyouii/fanchart/store"
	"github.com/uyouii/fanchart/utils"
	"go.uber.org/zap"
)

func init() {
	utils.SetLogger(zap.NewNop())
}

func writeSnapshot(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "stats.json")
	body := `{"P5":80000,"P25":95000,"P50":107000,"P75":121000,"P95":146000,"Mean":108000,"StdDev":20000}`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write snapshot: %v", err)
	}
	return path
}

func TestReadSnapshotIgnoresExtraFields(t *testing.T) {
	snap, err := readSnapshot(writeSnapshot(t))
	if err != nil {
		t.Fatalf("readSnapshot: %v", err)
	}
	if snap.P5 != 80000 || snap.P95 != 146000 {
		t.Errorf("snapshot = %+v", snap)
	}
}

func TestRenderCommand(t *testing.T) {
	out := filepath.Join(t.TempDir(), "fan.png")
	if err := render(context.Background(), []string{"-in", writeSnapshot(t), "-out", out}); err != nil {
		t.Fatalf("render: %v", err)
	}
	b, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if !bytes.HasPrefix(b, []byte("\x89PNG")) {
		t.Error("output is not a PNG")
	}
}

type failingCharter struct{ err error }

func (c failingCharter) NewChart(ctx context.Context, canvas fanchart.Canvas, cfg *model.ChartConfig) error {
	if s, ok := canvas.(*gochart.Surface); ok {
		_, _ = s.W.Write([]byte("\x89PNG partial"))
	}
	return c.err
}

func TestWriteChartRemovesOutputOnFailure(t *testing.T) {
	out := filepath.Join(t.TempDir(), "fan.png")
	boom := errors.New("boom")
	surface := gochart.Surface{Name: fanchart.CanvasID, Width: 400, Height: 200, Format: gochart.PNG}
	snap := &model.StatisticsSnapshot{P5: 1, P25: 2, P50: 3, P75: 4, P95: 5}

	outcome, err := writeChart(context.Background(), out, surface, snap, failingCharter{err: boom})
	if !errors.Is(err, boom) || outcome != fanchart.Failed {
		t.Fatalf("writeChart = %v, %v; want failed with boom", outcome, err)
	}
	if _, err := os.Stat(out); !os.IsNotExist(err) {
		t.Errorf("output left behind after failed render: %v", err)
	}
}

func TestRun(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name  string
		args  []string
		code  int
		usage bool
	}{
		{"no command", nil, 2, true},
		{"unknown command", []string{"draw"}, 2, true},
		{"help", []string{"render", "-h"}, 0, false},
		{"bad format", []string{"render", "-in", writeSnapshot(t), "-format", "gif"}, 1, false},
		{"render", []string{"render", "-in", writeSnapshot(t), "-out", filepath.Join(dir, "fan.svg"), "-format", "svg"}, 0, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var stderr bytes.Buffer
			if got := run(tc.args, &stderr); got != tc.code {
				t.Errorf("run(%v) = %d, want %d", tc.args, got, tc.code)
			}
			if got := strings.Contains(stderr.String(), "usage: fanchart"); got != tc.usage {
				t.Errorf("usage printed = %v, want %v", got, tc.usage)
			}
		})
	}
	if _, err := os.Stat(filepath.Join(dir, "fan.svg")); err != nil {
		t.Errorf("render output missing: %v", err)
	}
}

func TestImportCommand(t *testing.T) {
	db := filepath.Join(t.TempDir(), "runs.db")
	args := []string{"-db", db, "-id", "run_1", "-experiment", "exp_1", "-in", writeSnapshot(t)}
	if err := importRun(context.Background(), args); err != nil {
		t.Fatalf("import: %v", err)
	}

	repo, err := store.NewSQLiteRepository(db)
	if err != nil {
		t.Fatalf("open repo: %v", err)
	}
	defer repo.Close()
	run, err := repo.GetRun(context.Background(), "run_1")
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if run.Status != store.StatusComplete || run.Stats == nil || run.Stats.P50 != 107000 {
		t.Errorf("imported run = %+v", run)
	}
}

func TestImportRequiresID(t *testing.T) {
	if err := importRun(context.Background(), []string{"-db", filepath.Join(t.TempDir(), "x.db")}); err == nil {
		t.Error("import without -id should fail")
	}
}

func TestEnvOr(t *testing.T) {
	t.Setenv("FANCHART_TEST_ADDR", ":9999")
	if got := envOr("FANCHART_TEST_ADDR", ":8080"); got != ":9999" {
		t.Errorf("envOr = %q", got)
	}
	if got := envOr("FANCHART_TEST_UNSET", ":8080"); got != ":8080" {
		t.Errorf("envOr default = %q", got)
	}
}
