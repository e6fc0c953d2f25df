// Package geo resolves free-text place queries to map coordinates.
package geo

import (
	"context"
	"net/url"
	"strconv"
)

// Result is a resolved location. Latitude/Longitude are nil when the
// resolver could not place the query with confidence.
type Result struct {
	Latitude         *float64
	Longitude        *float64
	FormattedAddress string
	MapsURL          string
}

// Resolved reports whether the result carries a usable coordinate
// pair.
func (r Result) Resolved() bool {
	return r.Latitude != nil && r.Longitude != nil
}

// Hints narrows a lookup. All fields are optional; the more that are
// set, the likelier the resolver pins the right branch of a
// multi-location venue.
type Hints struct {
	Title         string
	Context       string
	StreetAddress string
	Neighborhood  string
	City          string
	State         string
	Country       string
}

// Resolver turns place queries into coordinates.
type Resolver interface {
	// Resolve geocodes a free-text query. A nil-coordinate Result with
	// a nil error means "confidently unknown"; an error means the
	// lookup itself failed and may be worth retrying later.
	Resolve(ctx context.Context, query string, hints Hints) (Result, error)

	// ResolveByPlaceID geocodes a known place id.
	ResolveByPlaceID(ctx context.Context, placeID string) (Result, error)
}

// MapsSearchURL builds a Google Maps search link for coordinates
// and/or a query. Returns "" when there is nothing to link to.
func MapsSearchURL(lat, lng *float64, query string) string {
	switch {
	case lat != nil && lng != nil:
		q := query
		if q == "" {
			q = strconv.FormatFloat(*lat, 'f', -1, 64) + "," + strconv.FormatFloat(*lng, 'f', -1, 64)
		}
		return "https://www.google.com/maps/search/?api=1&query=" + url.QueryEscape(q)
	case query != "":
		return "https://www.google.com/maps/search/?api=1&query=" + url.QueryEscape(query)
	default:
		return ""
	}
}
