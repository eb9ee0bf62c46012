package api

import (
	"embed"
	"fmt"
	"html/template"

	"github.com/lox/airwatch/internal/aqi"
)

//go:embed templates/*
var templateFS embed.FS

func newTemplates() *template.Template {
	funcs := template.FuncMap{
		"color": aqi.Color,
		"num": func(f float64) string {
			return fmt.Sprintf("%.1f", f)
		},
	}
	return template.Must(template.New("").Funcs(funcs).ParseFS(templateFS, "templates/*.html"))
}
