// Package export writes forecast and trend series as CSV reports and
// publishes them to a directory or an FTP server.
package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/lox/airwatch/internal/models"
)

// File is a named report ready to publish.
type File struct {
	Name string
	Data []byte
}

var columns = []models.Pollutant{models.PM25, models.O3}

// Hourly renders the 24-hour forecast.
func Hourly(points []models.HourlyPoint) ([]byte, error) {
	rows := make([]row, len(points))
	for i, p := range points {
		rows[i] = row{p.Time, p.Values}
	}
	return write("time", rows)
}

// Daily renders the 7-day forecast.
func Daily(points []models.DailyPoint) ([]byte, error) {
	rows := make([]row, len(points))
	for i, p := range points {
		rows[i] = row{p.Day, p.Values}
	}
	return write("day", rows)
}

// Monthly renders the 12-month history.
func Monthly(points []models.MonthlyPoint) ([]byte, error) {
	rows := make([]row, len(points))
	for i, p := range points {
		rows[i] = row{p.Month, p.Values}
	}
	return write("month", rows)
}

type row struct {
	label  string
	values map[models.Pollutant]float64
}

func write(first string, rows []row) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := []string{first}
	for _, p := range columns {
		header = append(header, string(p))
	}
	if err := w.Write(header); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}

	for _, r := range rows {
		record := []string{r.label}
		for _, p := range columns {
			record = append(record, strconv.FormatFloat(r.values[p], 'f', -1, 64))
		}
		if err := w.Write(record); err != nil {
			return nil, fmt.Errorf("write row %s: %w", r.label, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}

// Build produces the hourly, daily and monthly reports for a location.
func Build(location string, forecast models.ForecastSeries, history []models.MonthlyPoint) ([]File, error) {
	slug := Slug(location)

	hourly, err := Hourly(forecast.Hourly)
	if err != nil {
		return nil, fmt.Errorf("hourly report: %w", err)
	}
	daily, err := Daily(forecast.Daily)
	if err != nil {
		return nil, fmt.Errorf("daily report: %w", err)
	}
	monthly, err := Monthly(history)
	if err != nil {
		return nil, fmt.Errorf("monthly report: %w", err)
	}

	return []File{
		{Name: slug + "-hourly.csv", Data: hourly},
		{Name: slug + "-daily.csv", Data: daily},
		{Name: slug + "-monthly.csv", Data: monthly},
	}, nil
}

// Slug turns a location name into an ASCII file name stem,
// e.g. "Hồ Chí Minh, Việt Nam" becomes "ho-chi-minh-viet-nam".
func Slug(name string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	plain, _, err := transform.String(t, name)
	if err != nil {
		plain = name
	}

	var sb strings.Builder
	dash := false
	for _, r := range strings.ToLower(plain) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			sb.WriteRune(r)
			dash = false
		case r == 'đ':
			sb.WriteRune('d')
			dash = false
		default:
			if sb.Len() > 0 && !dash {
				sb.WriteByte('-')
				dash = true
			}
		}
	}
	slug := strings.TrimSuffix(sb.String(), "-")
	if slug == "" {
		return "location"
	}
	return slug
}
