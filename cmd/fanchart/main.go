// Command fanchart serves drift run results and renders percentile fan
// charts from statistics snapshots.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/uyouii/fanchart/fanchart"
	"github.com/uyouii/fanchart/gochart"
	"github.com/uyouii/fanchart/model"
	"github.com/uyouii/fanchart/store"
	"github.com/uyouii/fanchart/utils"
	"github.com/uyouii/fanchart/web"
	"go.uber.org/zap"
)

const usage = `usage: fanchart <command> [flags]

commands:
  serve    serve run results pages
  render   render a statistics snapshot file to an image
  import   store a statistics snapshot file as a completed run
`

func main() {
	os.Exit(run(os.Args[1:], os.Stderr))
}

// run executes one command and returns the process exit code.
func run(args []string, stderr io.Writer) int {
	if len(args) < 1 {
		fmt.Fprint(stderr, usage)
		return 2
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	logger := utils.GetLogger(ctx)
	defer func() { _ = logger.Sync() }()

	var err error
	switch cmd, rest := args[0], args[1:]; cmd {
	case "serve":
		err = serve(ctx, rest)
	case "render":
		err = render(ctx, rest)
	case "import":
		err = importRun(ctx, rest)
	default:
		fmt.Fprint(stderr, usage)
		return 2
	}
	switch {
	case errors.Is(err, flag.ErrHelp):
		return 0
	case err != nil:
		logger.Error("fanchart failed", zap.String("command", args[0]), zap.Error(err))
		return 1
	}
	return 0
}

func serve(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	addr := fs.String("addr", envOr("FANCHART_ADDR", ":8080"), "listen address")
	dbPath := fs.String("db", envOr("FANCHART_DB", "fanchart.db"), "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}
	logger := utils.GetLogger(ctx)

	repo, err := store.NewSQLiteRepository(*dbPath)
	if err != nil {
		return err
	}
	defer repo.Close()

	srv, err := web.NewServer(repo)
	if err != nil {
		return err
	}
	httpServer := &http.Server{
		Addr:              *addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("fanchart serving", zap.String("addr", *addr), zap.String("db", *dbPath))
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		logger.Info("fanchart shutting down")
		return httpServer.Shutdown(shutdownCtx)
	}
}

func render(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("render", flag.ContinueOnError)
	in := fs.String("in", "", "statistics snapshot JSON file, - for stdin")
	out := fs.String("out", "fan.png", "output image path")
	formatName := fs.String("format", "png", "image format: png or svg")
	width := fs.Int("width", gochart.DefaultWidth, "image width in pixels")
	height := fs.Int("height", gochart.DefaultHeight, "image height in pixels")
	if err := fs.Parse(args); err != nil {
		return err
	}
	format, err := gochart.ParseFormat(*formatName)
	if err != nil {
		return err
	}
	snap, err := readSnapshot(*in)
	if err != nil {
		return err
	}

	surface := gochart.Surface{Name: fanchart.CanvasID, Width: *width, Height: *height, Format: format}
	outcome, err := writeChart(ctx, *out, surface, snap, gochart.NewCharter())
	if err != nil {
		return err
	}
	utils.GetLogger(ctx).Info("fan chart written", zap.String("out", *out), zap.Stringer("outcome", outcome))
	return nil
}

// writeChart renders snap into a new file at path. The file is removed when
// rendering fails so no truncated image is left behind.
func writeChart(ctx context.Context, path string, surface gochart.Surface, snap *model.StatisticsSnapshot,
	charter fanchart.Charter) (outcome fanchart.Outcome, err error) {
	f, err := os.Create(path)
	if err != nil {
		return fanchart.Failed, fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if closeErr := f.Close(); err == nil && closeErr != nil {
			outcome, err = fanchart.Failed, fmt.Errorf("close %s: %w", path, closeErr)
		}
		if err != nil {
			_ = os.Remove(path)
		}
	}()

	surface.W = f
	return fanchart.Render(ctx, gochart.NewDocument(&surface), snap, charter)
}

func importRun(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("import", flag.ContinueOnError)
	dbPath := fs.String("db", envOr("FANCHART_DB", "fanchart.db"), "sqlite database path")
	id := fs.String("id", "", "run id")
	experiment := fs.String("experiment", "", "experiment id")
	name := fs.String("name", "", "display name")
	in := fs.String("in", "", "statistics snapshot JSON file, - for stdin")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *id == "" {
		return errors.New("import: -id is required")
	}
	snap, err := readSnapshot(*in)
	if err != nil {
		return err
	}

	repo, err := store.NewSQLiteRepository(*dbPath)
	if err != nil {
		return err
	}
	defer repo.Close()

	now := time.Now().UTC()
	run := store.Run{
		ID:           *id,
		ExperimentID: *experiment,
		Name:         *name,
		Status:       store.StatusComplete,
		Stats:        snap,
		FinishedAt:   &now,
	}
	if err := repo.SaveRun(ctx, run); err != nil {
		return err
	}
	utils.GetLogger(ctx).Info("run imported", zap.String("id", *id), zap.String("db", *dbPath))
	return nil
}

// readSnapshot decodes a snapshot in the shape the simulation engine writes,
// extra fields such as Mean or StdDev are ignored.
func readSnapshot(path string) (*model.StatisticsSnapshot, error) {
	var r io.Reader = os.Stdin
	if path != "" && path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open snapshot: %w", err)
		}
		defer f.Close()
		r = f
	}
	var snap model.StatisticsSnapshot
	if err := json.NewDecoder(r).Decode(&snap); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return &snap, nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
