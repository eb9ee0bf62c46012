package models

type Pollutant string

const (
	PM25         Pollutant = "PM2.5"
	O3           Pollutant = "O3"
	NO2          Pollutant = "NO2"
	SO2          Pollutant = "SO2"
	CH2O         Pollutant = "CH2O"
	AerosolIndex Pollutant = "Aerosol Index"
	AQI          Pollutant = "AQI"
)

// Alertable lists the pollutants a user can set thresholds on. Each one is
// measured in every current reading and has a sub-index table.
var Alertable = []Pollutant{PM25, O3, NO2}

func IsAlertable(p Pollutant) bool {
	for _, a := range Alertable {
		if a == p {
			return true
		}
	}
	return false
}

type Layer struct {
	ID   Pollutant `json:"id"`
	Name string    `json:"name"`
	Unit string    `json:"unit"`
}

var Layers = []Layer{
	{ID: AQI, Name: "Combined AQI", Unit: "AQI"},
	{ID: PM25, Name: "PM2.5", Unit: "µg/m³"},
	{ID: O3, Name: "Ozone (O₃)", Unit: "ppb"},
	{ID: NO2, Name: "Nitrogen Dioxide (NO₂)", Unit: "ppb"},
	{ID: CH2O, Name: "Formaldehyde (CH₂O)", Unit: "ppb"},
	{ID: AerosolIndex, Name: "Aerosol Index", Unit: "index"},
}

func LayerByID(id Pollutant) (Layer, bool) {
	for _, l := range Layers {
		if l.ID == id {
			return l, true
		}
	}
	return Layer{}, false
}

// LayerValue picks the value a map marker shows for a layer. Layers without
// a measurement fall back to the aggregate index.
func LayerValue(c *CurrentAirQuality, layer Pollutant) (Measurement, bool) {
	if m, ok := c.Measurement(layer); ok {
		return m, true
	}
	return c.Measurement(AQI)
}
