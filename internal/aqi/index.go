package aqi

import (
	"math"

	"github.com/lox/airwatch/internal/models"
)

// MaxIndex caps every sub-index.
const MaxIndex = 500

type breakpoint struct {
	cLo, cHi float64
	iLo, iHi float64
}

// US EPA breakpoints. PM2.5 is 24h µg/m³, O3 is 8h ppb, NO2 is 1h ppb.
// The 8h ozone table stops at 200 ppb; the last row extends it to the
// 1h table's upper bound so high synthetic values still map to an index.
var breakpoints = map[models.Pollutant][]breakpoint{
	models.PM25: {
		{0, 9.0, 0, 50},
		{9.1, 35.4, 51, 100},
		{35.5, 55.4, 101, 150},
		{55.5, 125.4, 151, 200},
		{125.5, 225.4, 201, 300},
		{225.5, 325.4, 301, 500},
	},
	models.O3: {
		{0, 54, 0, 50},
		{55, 70, 51, 100},
		{71, 85, 101, 150},
		{86, 105, 151, 200},
		{106, 200, 201, 300},
		{201, 604, 301, 500},
	},
	models.NO2: {
		{0, 53, 0, 50},
		{54, 100, 51, 100},
		{101, 360, 101, 150},
		{361, 649, 151, 200},
		{650, 1249, 201, 300},
		{1250, 2049, 301, 500},
	},
}

// Supported reports whether a sub-index can be computed for p.
func Supported(p models.Pollutant) bool {
	_, ok := breakpoints[p]
	return ok
}

// SubIndex converts a concentration to its AQI sub-index. Concentrations are
// truncated to the table's precision first (one decimal for PM2.5, whole ppb
// for gases). Unsupported pollutants return -1.
func SubIndex(p models.Pollutant, concentration float64) int {
	table, ok := breakpoints[p]
	if !ok {
		return -1
	}
	c := truncate(p, concentration)
	if c <= 0 {
		return 0
	}
	for _, bp := range table {
		if c <= bp.cHi {
			if c < bp.cLo {
				c = bp.cLo
			}
			i := (bp.iHi-bp.iLo)/(bp.cHi-bp.cLo)*(c-bp.cLo) + bp.iLo
			return int(math.Round(i))
		}
	}
	return MaxIndex
}

func truncate(p models.Pollutant, c float64) float64 {
	if p == models.PM25 {
		return math.Floor(c*10) / 10
	}
	return math.Floor(c)
}

// Aggregate returns the overall index and the pollutant that drives it.
// Ties go to the earlier measurement.
func Aggregate(measurements []models.Measurement) (int, models.Pollutant) {
	best, primary := -1, models.Pollutant("")
	for _, m := range measurements {
		i := SubIndex(m.Parameter, m.Value)
		if i > best {
			best, primary = i, m.Parameter
		}
	}
	if best < 0 {
		return 0, primary
	}
	return best, primary
}
