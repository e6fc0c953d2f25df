package types

import "strings"

// Canonical display categories. Free-form values are accepted anywhere;
// NormalizeCategory folds the extraction service's raw labels into this
// set for consistent grouping.
const (
	CategoryEvents    = "Events"
	CategoryTravel    = "Travel"
	CategoryDateNight = "Date night"
	CategoryHikes     = "Hikes"
	CategoryFood      = "Food"
	CategoryShopping  = "Shopping"
	CategoryMovies    = "Movies"
	CategoryOther     = "Other"
)

// NormalizeCategory maps a raw extracted category ("restaurant", "bar",
// "hike", ...) onto a canonical display category. Unknown values fall
// through to Other.
func NormalizeCategory(raw string) string {
	c := strings.ToLower(strings.TrimSpace(raw))
	switch {
	case c == "":
		return CategoryOther
	case c == "event" || strings.Contains(c, "concert") || strings.Contains(c, "festival"):
		return CategoryEvents
	case c == "restaurant" || c == "cafe" || c == "bar":
		return CategoryFood
	case c == "hotel" || strings.Contains(c, "travel"):
		return CategoryTravel
	case c == "hike" || c == "park" || c == "beach":
		return CategoryHikes
	case c == "shop":
		return CategoryShopping
	case c == "museum" || c == "attraction":
		return CategoryDateNight
	case strings.Contains(c, "movie") || c == "cinema":
		return CategoryMovies
	default:
		return CategoryOther
	}
}
