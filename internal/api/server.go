package api

import (
	"context"
	"html/template"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"github.com/lox/airwatch/internal/advice"
	"github.com/lox/airwatch/internal/chart"
	"github.com/lox/airwatch/internal/metrics"
	"github.com/lox/airwatch/internal/models"
	"github.com/lox/airwatch/internal/search"
	"github.com/lox/airwatch/internal/session"
	"github.com/lox/airwatch/internal/source"
	"github.com/lox/airwatch/internal/store"
)

type Server struct {
	store   *store.Store
	source  source.Source
	advisor *advice.Advisor
	port    string
	tmpl    *template.Template
	charts  *chart.Cache
	limiter *rate.Limiter
	session *session.Controller
}

func NewServer(st *store.Store, src source.Source, advisor *advice.Advisor, port string) *Server {
	if advisor == nil {
		advisor = advice.NewAdvisor(nil)
	}
	return &Server{
		store:   st,
		source:  src,
		advisor: advisor,
		port:    port,
		tmpl:    newTemplates(),
		charts:  chart.NewCache(time.Minute),
		limiter: rate.NewLimiter(rate.Inf, 0),
		session: session.New(src),
	}
}

// Session returns the controller backing /api/session.
func (s *Server) Session() *session.Controller {
	return s.session
}

// SetRateLimit caps /api and /chart requests to rps per second with the
// given burst. Excess requests get 429.
func (s *Server) SetRateLimit(rps float64, burst int) {
	if rps <= 0 {
		s.limiter = rate.NewLimiter(rate.Inf, 0)
		return
	}
	s.limiter = rate.NewLimiter(rate.Limit(rps), burst)
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.handle(mux, "GET /{$}", s.handleIndex)
	s.handle(mux, "GET /health", s.handleHealth)
	mux.Handle("GET /metrics", promhttp.Handler())

	s.handleLimited(mux, "GET /api/locations", s.handleLocations)
	s.handleLimited(mux, "GET /api/current", s.handleCurrent)
	s.handleLimited(mux, "GET /api/forecast", s.handleForecast)
	s.handleLimited(mux, "GET /api/trends", s.handleTrends)
	s.handleLimited(mux, "GET /api/advice", s.handleAdvice)
	s.handleLimited(mux, "GET /api/alerts", s.handleListAlerts)
	s.handleLimited(mux, "POST /api/alerts", s.handleAddAlert)
	s.handleLimited(mux, "POST /api/alerts/{id}/toggle", s.handleToggleAlert)
	s.handleLimited(mux, "GET /api/alerts/history", s.handleAlertHistory)
	s.handleLimited(mux, "GET /api/settings", s.handleGetSettings)
	s.handleLimited(mux, "PUT /api/settings", s.handlePutSettings)
	s.handleLimited(mux, "GET /api/session", s.handleSession)
	s.handleLimited(mux, "POST /api/session/location", s.handleSelectLocation)
	s.handleLimited(mux, "DELETE /api/session/location", s.handleClearLocation)
	s.handleLimited(mux, "POST /api/session/view", s.handleNavigate)
	s.handleLimited(mux, "POST /api/session/pollutants/{id}/toggle", s.handleTogglePollutant)
	s.handleLimited(mux, "POST /api/session/source", s.handleDataSource)
	s.handleLimited(mux, "GET /chart/trends.png", s.handleTrendsChart)
	s.handleLimited(mux, "GET /chart/forecast.png", s.handleForecastChart)
	return mux
}

func (s *Server) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:    ":" + s.port,
		Handler: s.Handler(),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) handle(mux *http.ServeMux, pattern string, h http.HandlerFunc) {
	mux.Handle(pattern, instrument(pattern, h))
}

func (s *Server) handleLimited(mux *http.ServeMux, pattern string, h http.HandlerFunc) {
	s.handle(mux, pattern, func(w http.ResponseWriter, r *http.Request) {
		if !s.limiter.Allow() {
			http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
			return
		}
		h(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func instrument(route string, h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		h.ServeHTTP(rec, r)
		metrics.HTTPRequestsTotal.WithLabelValues(route, strconv.Itoa(rec.status)).Inc()
	})
}

// locationParam resolves ?location= to a known location, or a bare
// location carrying just the name. ok is false when the parameter is empty.
func locationParam(r *http.Request) (models.Location, bool) {
	name := r.URL.Query().Get("location")
	if name == "" {
		return models.Location{}, false
	}
	return resolveName(name), true
}

func resolveName(name string) models.Location {
	if loc, ok := search.Find(name); ok {
		return loc
	}
	return models.Location{Name: name}
}

func logError(route string, err error) {
	log.Printf("api: %s: %v", route, err)
}
