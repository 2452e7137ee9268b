package web

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/uyouii/fanchart/chartjs"
	"github.com/uyouii/fanchart/common"
	"github.com/uyouii/fanchart/fanchart"
	"github.com/uyouii/fanchart/gochart"
	"github.com/uyouii/fanchart/store"
	"github.com/uyouii/fanchart/utils"
	"go.uber.org/zap"
)

const maxImageSide = 4096

type pageData struct {
	Title string
	Run   *store.Run
	Runs  []store.Run
}

func (s *Server) ListRuns(w http.ResponseWriter, r *http.Request) {
	runs, err := s.repo.ListRuns(r.Context(), r.URL.Query().Get("experiment"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	var buf bytes.Buffer
	if err := s.pages["runs"].ExecuteTemplate(&buf, "layout", pageData{Title: "Runs", Runs: runs}); err != nil {
		s.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

// RunResults renders the results page and binds the fan chart to its canvas
// when the page has one.
func (s *Server) RunResults(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	run, ok := s.run(w, r)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := s.pages["results"].ExecuteTemplate(&buf, "layout", pageData{Title: "Results", Run: run}); err != nil {
		s.fail(w, r, err)
		return
	}
	page, err := chartjs.ParsePage(&buf)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	outcome, err := fanchart.Render(ctx, page, run.Stats, s.browser)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	utils.GetLogger(ctx).Debug("results page chart", zap.String("run", run.ID), zap.Stringer("outcome", outcome))

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := page.Render(w); err != nil {
		utils.GetLogger(ctx).Error("write results page failed", zap.Error(err))
	}
}

func (s *Server) FanConfig(w http.ResponseWriter, r *http.Request) {
	run, ok := s.run(w, r)
	if !ok {
		return
	}
	if run.Stats == nil {
		http.Error(w, "run has no statistics", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(fanchart.BuildConfig(*run.Stats)); err != nil {
		utils.GetLogger(r.Context()).Error("encode chart config failed", zap.Error(err))
	}
}

func (s *Server) FanImage(format gochart.Format) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		run, ok := s.run(w, r)
		if !ok {
			return
		}

		var buf bytes.Buffer
		surface := &gochart.Surface{
			Name:   fanchart.CanvasID,
			Width:  sizeParam(r, "width"),
			Height: sizeParam(r, "height"),
			Format: format,
			W:      &buf,
		}
		outcome, err := fanchart.Render(ctx, gochart.NewDocument(surface), run.Stats, s.images)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		if outcome != fanchart.Rendered {
			http.Error(w, "run has no statistics", http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", format.ContentType())
		_, _ = buf.WriteTo(w)
	}
}

func (s *Server) run(w http.ResponseWriter, r *http.Request) (*store.Run, bool) {
	id := chi.URLParam(r, "id")
	run, err := s.repo.GetRun(r.Context(), id)
	if errors.Is(err, common.ErrorNotFound) {
		http.Error(w, "run not found", http.StatusNotFound)
		return nil, false
	}
	if err != nil {
		s.fail(w, r, err)
		return nil, false
	}
	return run, true
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	utils.GetLogger(r.Context()).Error("request failed", zap.String("path", r.URL.Path), zap.Error(err))
	http.Error(w, "internal server error", http.StatusInternalServerError)
}

// sizeParam reads an optional pixel size, zero means the renderer default.
func sizeParam(r *http.Request, key string) int {
	v, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil || v <= 0 {
		return 0
	}
	return min(v, maxImageSide)
}
