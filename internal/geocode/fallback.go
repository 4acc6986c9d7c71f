package geocode

import "strings"

// fallbackLocations covers cities the provider has intermittently failed to
// resolve, so lookups for them degrade gracefully instead of erroring.
var fallbackLocations = map[string]Result{
	"dallas": {
		Formatted:  "Dallas, Texas, United States",
		Geometry:   Geometry{Lat: 32.7767, Lng: -96.7970},
		Components: Components{City: "Dallas", State: "Texas", Country: "United States"},
	},
	"london": {
		Formatted:  "London, England, United Kingdom",
		Geometry:   Geometry{Lat: 51.5074, Lng: -0.1278},
		Components: Components{City: "London", State: "England", Country: "United Kingdom"},
	},
	"tokyo": {
		Formatted:  "Tokyo, Japan",
		Geometry:   Geometry{Lat: 35.6762, Lng: 139.6503},
		Components: Components{City: "Tokyo", Country: "Japan"},
	},
	"paris": {
		Formatted:  "Paris, Île-de-France, France",
		Geometry:   Geometry{Lat: 48.8566, Lng: 2.3522},
		Components: Components{City: "Paris", Country: "France"},
	},
	"new york": {
		Formatted:  "New York, NY, United States",
		Geometry:   Geometry{Lat: 40.7128, Lng: -74.0060},
		Components: Components{City: "New York", Country: "United States"},
	},
	"hyderabad": {
		Formatted:  "Hyderabad, Telangana, India",
		Geometry:   Geometry{Lat: 17.385044, Lng: 78.486671},
		Components: Components{City: "Hyderabad", State: "Telangana", Country: "India"},
	},
	"delhi": {
		Formatted:  "New Delhi, Delhi, India",
		Geometry:   Geometry{Lat: 28.613939, Lng: 77.209021},
		Components: Components{City: "New Delhi", State: "Delhi", Country: "India"},
	},
	"mumbai": {
		Formatted:  "Mumbai, Maharashtra, India",
		Geometry:   Geometry{Lat: 19.075984, Lng: 72.877656},
		Components: Components{City: "Mumbai", State: "Maharashtra", Country: "India"},
	},
}

func fallbackFor(query string) (Envelope, bool) {
	r, ok := fallbackLocations[strings.ToLower(strings.TrimSpace(query))]
	if !ok {
		return Envelope{}, false
	}
	return Envelope{
		Results: []Result{r},
		Status:  Status{Message: "OK (fallback data)"},
	}, true
}
