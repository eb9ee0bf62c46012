package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/lox/airwatch/internal/httputil"
	"github.com/lox/airwatch/internal/models"
	"github.com/lox/airwatch/internal/search"
	"github.com/lox/airwatch/internal/session"
)

type selectLocationRequest struct {
	Location string `json:"location"`
}

type viewRequest struct {
	View session.View `json:"view"`
}

type dataSourceRequest struct {
	Source session.DataSource `json:"source"`
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, s.session.Snapshot())
}

func (s *Server) handleSelectLocation(w http.ResponseWriter, r *http.Request) {
	var req selectLocationRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	loc, ok := search.Find(req.Location)
	if !ok {
		http.Error(w, fmt.Sprintf("unknown location %q", req.Location), http.StatusBadRequest)
		return
	}
	// The lookup outlives this request.
	s.session.SelectLocation(context.WithoutCancel(r.Context()), loc)
	httputil.WriteJSON(w, http.StatusAccepted, s.session.Snapshot())
}

func (s *Server) handleClearLocation(w http.ResponseWriter, r *http.Request) {
	s.session.ClearLocation()
	httputil.WriteJSON(w, http.StatusOK, s.session.Snapshot())
}

func (s *Server) handleNavigate(w http.ResponseWriter, r *http.Request) {
	var req viewRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := s.session.Navigate(req.View); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, s.session.Snapshot())
}

func (s *Server) handleTogglePollutant(w http.ResponseWriter, r *http.Request) {
	p := models.Pollutant(r.PathValue("id"))
	if _, ok := models.LayerByID(p); !ok {
		http.Error(w, "unknown pollutant", http.StatusBadRequest)
		return
	}
	s.session.TogglePollutant(p)
	httputil.WriteJSON(w, http.StatusOK, s.session.Snapshot())
}

func (s *Server) handleDataSource(w http.ResponseWriter, r *http.Request) {
	var req dataSourceRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := s.session.SetDataSource(req.Source); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, s.session.Snapshot())
}
