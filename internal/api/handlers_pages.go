package api

import (
	"context"
	"net/http"

	"github.com/lox/airwatch/internal/aqi"
	"github.com/lox/airwatch/internal/chart"
	"github.com/lox/airwatch/internal/httputil"
	"github.com/lox/airwatch/internal/models"
	"github.com/lox/airwatch/internal/search"
	"github.com/lox/airwatch/internal/settings"
)

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	st, err := s.store.GetSettings()
	if err != nil {
		logError("index", err)
		st = settings.Default()
	}

	q := r.URL.Query()
	data := IndexData{
		Status:    "no_location",
		Query:     q.Get("q"),
		Locations: search.Locations,
		Settings:  st,
		Persona:   settings.Describe(st.Persona),
	}
	if data.Query != "" {
		data.Locations = search.Match(data.Query)
	}

	name := q.Get("location")
	if name == "" {
		name = st.Location
	}
	if name != "" {
		loc := resolveName(name)
		data.Location = &loc

		reading, err := s.source.Current(r.Context(), loc)
		if err != nil {
			logError("index", err)
			data.Status = "loading"
		} else {
			data.Status = "ready"
			data.Reading = &reading
			data.Color = aqi.Color(reading.Air.AQI)

			selected := map[models.Pollutant]bool{models.PM25: true}
			if layers := q["layer"]; len(layers) > 0 {
				selected = map[models.Pollutant]bool{}
				for _, l := range layers {
					selected[models.Pollutant(l)] = true
				}
			}
			data.Layers = layerReadings(&reading.Air, selected)

			if a, err := s.adviceFor(r, loc); err == nil {
				data.Advice = &a
			}
		}
	}

	if data.Alerts, err = s.store.ListAlerts(); err != nil {
		logError("index", err)
	}
	if data.Events, err = s.store.RecentAlertEvents(10); err != nil {
		logError("index", err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.tmpl.ExecuteTemplate(w, "index.html", data); err != nil {
		logError("index template", err)
	}
}

func (s *Server) handleTrendsChart(w http.ResponseWriter, r *http.Request) {
	s.serveChart(w, r, "trends", func(ctx context.Context, loc models.Location) ([]byte, error) {
		points, err := s.source.History(ctx, loc)
		if err != nil {
			return nil, err
		}
		return chart.Trends(loc.Name, points)
	})
}

func (s *Server) handleForecastChart(w http.ResponseWriter, r *http.Request) {
	s.serveChart(w, r, "forecast", func(ctx context.Context, loc models.Location) ([]byte, error) {
		f, err := s.source.Forecast(ctx, loc)
		if err != nil {
			return nil, err
		}
		return chart.Forecast(loc.Name, f.Hourly)
	})
}

func (s *Server) serveChart(w http.ResponseWriter, r *http.Request, kind string, render func(context.Context, models.Location) ([]byte, error)) {
	loc, ok := locationParam(r)
	if !ok {
		httputil.WriteJSON(w, http.StatusOK, noLocation{Status: "no_location"})
		return
	}

	key := kind + ":" + loc.Name
	data, ok := s.charts.Get(key)
	if !ok {
		var err error
		data, err = render(r.Context(), loc)
		if err != nil {
			logError(kind+" chart", err)
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		s.charts.Set(key, data)
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "public, max-age=60")
	w.Write(data)
}
