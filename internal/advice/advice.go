package advice

import (
	"context"

	"github.com/lox/airwatch/internal/aqi"
	"github.com/lox/airwatch/internal/metrics"
	"github.com/lox/airwatch/internal/settings"
)

type guidance struct {
	general   string
	sensitive string
}

var table = map[aqi.Category]guidance{
	aqi.CategoryGood: {
		general:   "It's a great day to be active outside.",
		sensitive: "Enjoy outdoor activities.",
	},
	aqi.CategoryModerate: {
		general:   "Air quality is acceptable. Unusually sensitive people should consider reducing prolonged or heavy exertion.",
		sensitive: "Consider reducing intense outdoor activities.",
	},
	aqi.CategoryUnhealthySensitive: {
		general:   "The general public is not likely to be affected. Members of sensitive groups may experience health effects.",
		sensitive: "Reduce prolonged or heavy exertion outdoors. Take more breaks.",
	},
	aqi.CategoryUnhealthy: {
		general:   "Everyone may begin to experience health effects. Members of sensitive groups may experience more serious health effects.",
		sensitive: "Avoid prolonged or heavy exertion. Consider moving activities indoors.",
	},
	aqi.CategoryVeryUnhealthy: {
		general:   "Health alert: everyone may experience more serious health effects.",
		sensitive: "Avoid all physical activity outdoors. Keep outdoor activities short.",
	},
	aqi.CategoryHazardous: {
		general:   "Health warnings of emergency conditions. The entire population is more likely to be affected.",
		sensitive: "Remain indoors and keep activity levels low.",
	},
}

// For returns the static health advice for an index and sensitivity.
func For(index int, s settings.Sensitivity) string {
	g := table[aqi.Categorize(index)]
	if s.Sensitive() {
		return g.sensitive
	}
	return g.general
}

// Request is everything a narrator needs to phrase advice.
type Request struct {
	Location    string
	AQI         int
	Pollutant   string
	Sensitivity settings.Sensitivity
	Persona     settings.Persona
}

type Advice struct {
	Category string `json:"category"`
	Text     string `json:"text"`
	Source   string `json:"source"`
}

// Narrator turns a reading into advice text.
type Narrator interface {
	Name() string
	Narrate(ctx context.Context, req Request) (string, error)
}

// Static narrates from the built-in table.
type Static struct{}

func (Static) Name() string { return "static" }

func (Static) Narrate(_ context.Context, req Request) (string, error) {
	return For(req.AQI, req.Sensitivity), nil
}

// Advisor asks its narrator first and falls back to the static table.
type Advisor struct {
	narrator Narrator
}

func NewAdvisor(n Narrator) *Advisor {
	if n == nil {
		n = Static{}
	}
	return &Advisor{narrator: n}
}

func (a *Advisor) Advise(ctx context.Context, req Request) Advice {
	label := aqi.Label(req.AQI)
	text, err := a.narrator.Narrate(ctx, req)
	if err == nil && text != "" {
		metrics.AdviceRequests.WithLabelValues(a.narrator.Name(), "ok").Inc()
		return Advice{Category: label, Text: text, Source: a.narrator.Name()}
	}
	metrics.AdviceRequests.WithLabelValues(a.narrator.Name(), "fallback").Inc()
	return Advice{Category: label, Text: For(req.AQI, req.Sensitivity), Source: Static{}.Name()}
}
