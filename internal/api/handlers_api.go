package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/lox/airwatch/internal/advice"
	"github.com/lox/airwatch/internal/alerts"
	"github.com/lox/airwatch/internal/httputil"
	"github.com/lox/airwatch/internal/models"
	"github.com/lox/airwatch/internal/search"
	"github.com/lox/airwatch/internal/settings"
	"github.com/lox/airwatch/internal/store"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Ping(); err != nil {
		logError("health", err)
		httputil.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "error", "error": err.Error()})
		return
	}
	version, err := s.store.MigrationVersion()
	if err != nil {
		httputil.WriteJSON(w, http.StatusInternalServerError, map[string]string{"status": "error", "error": err.Error()})
		return
	}

	health := HealthStatus{
		Status:           "ok",
		MigrationVersion: version,
		Source:           s.source.Name(),
	}
	runs, err := s.store.RecentMonitorRuns(1)
	if err != nil {
		logError("health", err)
	}
	if len(runs) > 0 {
		run := runs[0]
		health.LastMonitorRun = &Run{
			Location:    run.Location,
			StartedAt:   run.StartedAt.UTC().Format(time.RFC3339),
			Success:     run.Success,
			EventsFired: run.EventsFired,
			Error:       run.ErrorMessage.String,
		}
	}
	httputil.WriteJSON(w, http.StatusOK, health)
}

func (s *Server) handleLocations(w http.ResponseWriter, r *http.Request) {
	locs := search.Match(r.URL.Query().Get("q"))
	if locs == nil {
		locs = []models.Location{}
	}
	httputil.WriteJSON(w, http.StatusOK, locs)
}

func (s *Server) handleCurrent(w http.ResponseWriter, r *http.Request) {
	loc, ok := locationParam(r)
	if !ok {
		httputil.WriteJSON(w, http.StatusOK, noLocation{Status: "no_location"})
		return
	}
	reading, err := s.source.Current(r.Context(), loc)
	if err != nil {
		logError("current", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, reading)
}

func (s *Server) handleForecast(w http.ResponseWriter, r *http.Request) {
	loc, ok := locationParam(r)
	if !ok {
		httputil.WriteJSON(w, http.StatusOK, noLocation{Status: "no_location"})
		return
	}
	forecast, err := s.source.Forecast(r.Context(), loc)
	if err != nil {
		logError("forecast", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, forecast)
}

func (s *Server) handleTrends(w http.ResponseWriter, r *http.Request) {
	loc, ok := locationParam(r)
	if !ok {
		httputil.WriteJSON(w, http.StatusOK, noLocation{Status: "no_location"})
		return
	}
	points, err := s.source.History(r.Context(), loc)
	if err != nil {
		logError("trends", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, points)
}

func (s *Server) handleAdvice(w http.ResponseWriter, r *http.Request) {
	loc, ok := locationParam(r)
	if !ok {
		httputil.WriteJSON(w, http.StatusOK, noLocation{Status: "no_location"})
		return
	}
	a, err := s.adviceFor(r, loc)
	if err != nil {
		logError("advice", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, a)
}

func (s *Server) adviceFor(r *http.Request, loc models.Location) (advice.Advice, error) {
	reading, err := s.source.Current(r.Context(), loc)
	if err != nil {
		return advice.Advice{}, fmt.Errorf("current reading: %w", err)
	}
	st, err := s.store.GetSettings()
	if err != nil {
		return advice.Advice{}, fmt.Errorf("load settings: %w", err)
	}
	return s.advisor.Advise(r.Context(), advice.Request{
		Location:    loc.Name,
		AQI:         reading.Air.AQI,
		Pollutant:   string(reading.Air.PrimaryPollutant),
		Sensitivity: st.Sensitivity,
		Persona:     st.Persona,
	}), nil
}

func (s *Server) handleListAlerts(w http.ResponseWriter, r *http.Request) {
	list, err := s.store.ListAlerts()
	if err != nil {
		logError("alerts", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if list == nil {
		list = []models.Alert{}
	}
	httputil.WriteJSON(w, http.StatusOK, list)
}

func (s *Server) handleAddAlert(w http.ResponseWriter, r *http.Request) {
	var req newAlertRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := alerts.ValidateNew(req.Pollutant, req.Threshold); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	a, err := s.store.AddAlert(req.Pollutant, req.Threshold)
	if err != nil {
		logError("add alert", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, a)
}

func (s *Server) handleToggleAlert(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid alert id", http.StatusBadRequest)
		return
	}
	a, err := s.store.ToggleAlert(id)
	if errors.Is(err, store.ErrNotFound) {
		http.Error(w, "alert not found", http.StatusNotFound)
		return
	}
	if err != nil {
		logError("toggle alert", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, a)
}

func (s *Server) handleAlertHistory(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
		limit = min(n, 500)
	}
	events, err := s.store.RecentAlertEvents(limit)
	if err != nil {
		logError("alert history", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if events == nil {
		events = []models.AlertEvent{}
	}
	httputil.WriteJSON(w, http.StatusOK, events)
}

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	st, err := s.store.GetSettings()
	if err != nil {
		logError("settings", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, st)
}

func (s *Server) handlePutSettings(w http.ResponseWriter, r *http.Request) {
	var st settings.Settings
	if err := httputil.DecodeJSON(r, &st); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := st.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := s.store.SaveSettings(st); err != nil {
		logError("save settings", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, st)
}
