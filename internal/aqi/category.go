package aqi

// Category is an AQI severity bucket.
type Category string

const (
	CategoryGood               Category = "good"
	CategoryModerate           Category = "moderate"
	CategoryUnhealthySensitive Category = "unhealthy_sensitive"
	CategoryUnhealthy          Category = "unhealthy"
	CategoryVeryUnhealthy      Category = "very_unhealthy"
	CategoryHazardous          Category = "hazardous"
)

type band struct {
	max      int
	category Category
	label    string
	summary  string
	color    string
}

// bands is ordered by upper bound. Anything above the last finite bound is hazardous.
var bands = []band{
	{50, CategoryGood, "Good",
		"It's a great day to be active outside. Air quality is considered satisfactory.", "#22c55e"},
	{100, CategoryModerate, "Moderate",
		"Air quality is acceptable; however, for some pollutants there may be a moderate health concern for a very small number of people.", "#eab308"},
	{150, CategoryUnhealthySensitive, "Unhealthy for Sensitive Groups",
		"Members of sensitive groups may experience health effects. The general public is not likely to be affected.", "#f97316"},
	{200, CategoryUnhealthy, "Unhealthy",
		"Everyone may begin to experience health effects; members of sensitive groups may experience more serious health effects.", "#ef4444"},
	{300, CategoryVeryUnhealthy, "Very Unhealthy",
		"Health alert: everyone may experience more serious health effects.", "#a855f7"},
}

var hazardous = band{
	category: CategoryHazardous,
	label:    "Hazardous",
	summary:  "Health warnings of emergency conditions. The entire population is more likely to be affected.",
	color:    "#b91c1c",
}

func lookup(index int) band {
	for _, b := range bands {
		if index <= b.max {
			return b
		}
	}
	return hazardous
}

// Categorize maps an index to its category.
func Categorize(index int) Category {
	return lookup(index).category
}

// Label returns the display label for an index, e.g. "Unhealthy for Sensitive Groups".
func Label(index int) string {
	return lookup(index).label
}

// Summary returns the short description shown with the index.
func Summary(index int) string {
	return lookup(index).summary
}

// Color returns a hex fill color for charts and markers.
func Color(index int) string {
	return lookup(index).color
}
