package synth

import (
	"math"
	"math/rand/v2"
	"strconv"

	"github.com/lox/airwatch/internal/aqi"
	"github.com/lox/airwatch/internal/models"
)

var (
	Weekdays = []string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}
	Months   = []string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

	compass = []string{"N", "NE", "E", "SE", "S", "SW", "W", "NW"}
)

const (
	hourlyPM25Jitter = 5.0
	hourlyO3Jitter   = 8.0

	dailySpan = 41 // offsets land in [-20, 20]

	monthlyPM25Baseline  = 40.0
	monthlyPM25Amplitude = 20.0
	monthlyO3Baseline    = 45.0
	monthlyO3Amplitude   = 25.0
	monthlyJitterSpan    = 11 // jitter lands in [-5, 5]
	monthlyFloor         = 5.0
)

// Bases are the seed-derived pollutant levels every series is built around.
type Bases struct {
	PM25 float64
	O3   float64
	NO2  float64
}

// BaseLevels derives the pollutant bases for a location name.
// PM2.5 is in [20,79] µg/m³, O3 in [30,99] ppb and NO2 in [10,49] ppb.
func BaseLevels(name string) Bases {
	seed := Hash(name)
	return Bases{
		PM25: float64(20 + seed%60),
		O3:   float64(30 + seed%70),
		NO2:  float64(10 + (seed/7)%40),
	}
}

// WindDirectionIndex returns the compass point index (0 = N, clockwise) for a name.
func WindDirectionIndex(name string) int {
	return int(Hash(name) % 8)
}

// CurrentWeather derives weather figures for a location name.
func CurrentWeather(name string) models.Weather {
	seed := Hash(name)
	temp := float64(60 + seed%25)
	return models.Weather{
		Temperature:   temp,
		FeelsLike:     temp + float64((seed/11)%7) - 3,
		WindSpeed:     float64(3 + seed%10),
		WindDirection: "from " + compass[seed%8],
	}
}

// CurrentAir derives the current air quality reading for a location name.
func CurrentAir(name string) models.CurrentAirQuality {
	b := BaseLevels(name)
	measurements := []models.Measurement{
		{Parameter: models.PM25, Value: b.PM25, Unit: "µg/m³"},
		{Parameter: models.O3, Value: b.O3, Unit: "ppb"},
		{Parameter: models.NO2, Value: b.NO2, Unit: "ppb"},
	}
	index, primary := aqi.Aggregate(measurements)
	measurements = append(measurements, models.Measurement{Parameter: models.AQI, Value: float64(index)})

	return models.CurrentAirQuality{
		AQI:              index,
		PrimaryPollutant: primary,
		Category:         aqi.Label(index),
		Summary:          aqi.Summary(index),
		Measurements:     measurements,
	}
}

// Current derives the full current-conditions reading for a location.
func Current(loc models.Location) models.Reading {
	return models.Reading{
		Location: loc,
		Air:      CurrentAir(loc.Name),
		Weather:  CurrentWeather(loc.Name),
	}
}

// Generator produces the series that carry random jitter. Everything else in
// this package is a pure function of the location name.
type Generator struct {
	rnd func() float64
}

type Option func(*Generator)

// WithRand draws jitter from r instead of the global source.
func WithRand(r *rand.Rand) Option {
	return func(g *Generator) { g.rnd = r.Float64 }
}

// WithJitter draws jitter from f, which must return values in [0, 1).
// 0 yields the maximal negative jitter and 0.5 yields none.
func WithJitter(f func() float64) Option {
	return func(g *Generator) { g.rnd = f }
}

func New(opts ...Option) *Generator {
	g := &Generator{rnd: rand.Float64}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func (g *Generator) jitter(span float64) float64 {
	return (g.rnd()*2 - 1) * span
}

// DiurnalPM25 is the traffic-driven shape: two half-waves peaking at the
// 8:00 and 18:00 commutes.
func DiurnalPM25(hour int) float64 {
	h := float64(hour)
	morning := math.Max(0, math.Sin(math.Pi*(h-5)/6))
	evening := math.Max(0, math.Sin(math.Pi*(h-15)/6))
	if hour < 5 || hour > 11 {
		morning = 0
	}
	if hour < 15 || hour > 21 {
		evening = 0
	}
	return 15*morning + 12*evening
}

// DiurnalO3 is the sunlight-driven shape: a half-wave starting at 6:00 and
// peaking at noon.
func DiurnalO3(hour int) float64 {
	return 25 * math.Max(0, math.Sin(math.Pi*(float64(hour)-6)/12))
}

// Hourly returns 24 points labelled "0:00" through "23:00".
func (g *Generator) Hourly(name string) []models.HourlyPoint {
	b := BaseLevels(name)
	points := make([]models.HourlyPoint, 0, 24)
	for i := 0; i < 24; i++ {
		pm := b.PM25 + DiurnalPM25(i) + g.jitter(hourlyPM25Jitter)
		o3 := b.O3 + DiurnalO3(i) + g.jitter(hourlyO3Jitter)
		points = append(points, models.HourlyPoint{
			Time: hourLabel(i),
			Values: map[models.Pollutant]float64{
				models.PM25: clampRound(pm, 0),
				models.O3:   clampRound(o3, 0),
			},
		})
	}
	return points
}

// Daily returns Mon..Sun points. Each day's offset comes from a per-day hash,
// so repeated calls agree exactly.
func Daily(name string) []models.DailyPoint {
	b := BaseLevels(name)
	points := make([]models.DailyPoint, 0, len(Weekdays))
	for _, day := range Weekdays {
		offset := DailyOffset(name, day)
		points = append(points, models.DailyPoint{
			Day: day,
			Values: map[models.Pollutant]float64{
				models.PM25: math.Max(0, b.PM25+offset),
				models.O3:   math.Max(0, b.O3-offset),
			},
		})
	}
	return points
}

// DailyOffset is the PM2.5 offset for one weekday; O3 moves the other way.
func DailyOffset(name, day string) float64 {
	s := Hash(name + "-" + day)
	return float64(int(s%dailySpan) - dailySpan/2)
}

// Forecast bundles the hourly and daily series.
func (g *Generator) Forecast(name string) models.ForecastSeries {
	return models.ForecastSeries{
		Hourly: g.Hourly(name),
		Daily:  Daily(name),
	}
}

// SeasonalPhase runs from -1 in January (winter) to +1 in July (summer).
func SeasonalPhase(month int) float64 {
	return math.Sin(float64(month)/12*2*math.Pi - math.Pi/2)
}

// Monthly returns Jan..Dec points. Particulates peak in winter and ozone in
// summer.
func Monthly(name string) []models.MonthlyPoint {
	points := make([]models.MonthlyPoint, 0, len(Months))
	for i, month := range Months {
		phase := SeasonalPhase(i)
		j := monthlyJitter(name, month)
		points = append(points, models.MonthlyPoint{
			Month: month,
			Values: map[models.Pollutant]float64{
				models.PM25: clampRound(monthlyPM25Baseline-phase*monthlyPM25Amplitude+j, monthlyFloor),
				models.O3:   clampRound(monthlyO3Baseline+phase*monthlyO3Amplitude+j, monthlyFloor),
			},
		})
	}
	return points
}

func monthlyJitter(name, month string) float64 {
	s := Hash(name + "-" + month)
	return float64(int(s%monthlyJitterSpan) - monthlyJitterSpan/2)
}

func clampRound(v, floor float64) float64 {
	return math.Max(floor, math.Round(v))
}

func hourLabel(h int) string {
	return strconv.Itoa(h) + ":00"
}
