// Package web serves the run results pages and their fan charts.
package web

import (
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/uyouii/fanchart/chartjs"
	"github.com/uyouii/fanchart/fanchart"
	"github.com/uyouii/fanchart/gochart"
	"github.com/uyouii/fanchart/store"
	"github.com/uyouii/fanchart/utils"
	"go.uber.org/zap"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageNames = []string{"results", "runs"}

type Server struct {
	repo    store.Repository
	pages   map[string]*template.Template
	browser fanchart.Charter
	images  fanchart.Charter
}

func NewServer(repo store.Repository) (*Server, error) {
	pages, err := loadPages()
	if err != nil {
		return nil, err
	}
	return &Server{
		repo:    repo,
		pages:   pages,
		browser: chartjs.NewCharter(),
		images:  gochart.NewCharter(),
	}, nil
}

// loadPages parses every page into its own copy of the layout so the pages'
// {{define "content"}} blocks do not collide.
func loadPages() (map[string]*template.Template, error) {
	funcs := template.FuncMap{
		"money": fanchart.FormatCurrency,
	}
	base, err := template.New("").Funcs(funcs).ParseFS(templateFS, "templates/layout.html")
	if err != nil {
		return nil, fmt.Errorf("parse layout: %w", err)
	}
	pages := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		t, err := base.Clone()
		if err != nil {
			return nil, fmt.Errorf("clone layout: %w", err)
		}
		if _, err := t.ParseFS(templateFS, "templates/"+name+".html"); err != nil {
			return nil, fmt.Errorf("parse page %s: %w", name, err)
		}
		pages[name] = t
	}
	return pages, nil
}

func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/runs", http.StatusSeeOther)
	})

	r.Route("/runs", func(r chi.Router) {
		r.Get("/", s.ListRuns)
		r.Get("/{id}", s.RunResults)
		r.Get("/{id}/fan.json", s.FanConfig)
		r.Get("/{id}/fan.png", s.FanImage(gochart.PNG))
		r.Get("/{id}/fan.svg", s.FanImage(gochart.SVG))
	})
	return r
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := utils.WithRequestID(r.Context(), middleware.GetReqID(r.Context()))
		r = r.WithContext(ctx)
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		utils.GetLogger(ctx).Info("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Int("bytes", ww.BytesWritten()),
			zap.Duration("elapsed", time.Since(start)))
	})
}
