// Package dashboard serves the interactive cycle selector: a checklist of
// cycles, select-all / deselect-all buttons, the EN scatter chart and an
// info box. Every request recomputes from the session's immutable dataset.
package dashboard

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"net/url"
	"time"

	"github.com/15226124477/enulog"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	log "github.com/sirupsen/logrus"
)

// Query parameters of the selection form.
const (
	paramCycle     = "cycle"
	paramAction    = "action"
	paramSubmitted = "submitted"

	actionAll  = "all"
	actionNone = "none"
)

// Server hosts the dashboard for one session.
type Server struct {
	session *enulog.Session
	page    *template.Template
	router  chi.Router
}

// New builds the router for session.
func New(session *enulog.Session) *Server {
	s := &Server{
		session: session,
		page:    template.Must(template.New("dashboard").Parse(dashboardHTML)),
	}
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(session.Log))
	r.Get("/", s.handleIndex)
	r.Get("/chart", s.handleChart)
	r.Get("/api/view", s.handleView)
	r.Get("/api/metrics", s.handleMetrics)
	s.router = r
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe runs the dashboard until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.session.Log.Infof("Open http://%s in your browser", addr)
		errCh <- srv.ListenAndServe()
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
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	}
}

// SelectionFromQuery applies the form state in q to the known cycles. With no
// submitted form every cycle is selected.
func SelectionFromQuery(known []string, q url.Values) enulog.Selection {
	sel := enulog.NewSelection(known)
	switch q.Get(paramAction) {
	case actionAll:
		return sel.All()
	case actionNone:
		return sel.None()
	}
	if q.Get(paramSubmitted) == "" && len(q[paramCycle]) == 0 {
		return sel
	}
	return sel.Replace(q[paramCycle])
}

// selectionQuery encodes sel so that the chart frame renders the same state.
func selectionQuery(sel enulog.Selection) string {
	q := url.Values{}
	q.Set(paramSubmitted, "1")
	for _, c := range sel.Cycles() {
		q.Add(paramCycle, c)
	}
	return q.Encode()
}

type checkbox struct {
	ID      string
	Checked bool
}

type pageData struct {
	Title       string
	Cycles      []checkbox
	ChartURL    string
	ChartHeight string
	Summary     enulog.Summary
	Text        string
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	sel := SelectionFromQuery(s.session.Dataset.Cycles, r.URL.Query())
	view := s.session.Render(sel)

	data := pageData{
		Title:       "EN dispersion per cycle - interactive view",
		ChartURL:    "/chart?" + selectionQuery(sel),
		ChartHeight: s.session.Chart.Height,
		Summary:     view.Summary,
		Text:        view.Text,
	}
	if data.ChartHeight == "" {
		data.ChartHeight = "70vh"
	}
	for _, c := range sel.Known() {
		data.Cycles = append(data.Cycles, checkbox{ID: c, Checked: sel.Has(c)})
	}

	var buf bytes.Buffer
	if err := s.page.Execute(&buf, data); err != nil {
		s.writeError(w, http.StatusInternalServerError, fmt.Errorf("render page: %w", err))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	sel := SelectionFromQuery(s.session.Dataset.Cycles, r.URL.Query())
	view := s.session.Render(sel)
	chartOpts := s.session.Chart
	chartOpts.Height = "95vh"
	scatter := enulog.ScatterChart(view, chartOpts)

	var buf bytes.Buffer
	if err := scatter.Render(&buf); err != nil {
		s.writeError(w, http.StatusInternalServerError, fmt.Errorf("failed to render chart: %w", err))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	sel := SelectionFromQuery(s.session.Dataset.Cycles, r.URL.Query())
	s.writeJSON(w, s.session.Render(sel))
}

type metricsResponse struct {
	Cycles []enulog.CycleMetrics `json:"cycles"`
	Global enulog.MetricsSummary `json:"global"`
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	perCycle, global, err := s.session.Metrics()
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	s.writeJSON(w, metricsResponse{Cycles: perCycle, Global: global})
}

func (s *Server) writeJSON(w http.ResponseWriter, v interface{}) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	s.session.Log.Error(err)
	http.Error(w, err.Error(), status)
}

// requestLogger logs one line per request at debug level.
func requestLogger(entry *log.Entry) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			entry.WithFields(log.Fields{
				"method":   r.Method,
				"path":     r.URL.Path,
				"status":   ww.Status(),
				"duration": time.Since(start).String(),
			}).Debug("request")
		})
	}
}
