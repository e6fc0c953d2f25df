// Package types holds the domain entities shared across the SDK.
package types

import "errors"

// ------------------------------
// Core Domain Entities
// ------------------------------

// Coordinates is a resolved latitude/longitude pair.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// SavedItem is a user's bookmark captured from a screenshot.
// id and createdAt are assigned at creation and immutable. Everything
// past the core fields is optional enrichment populated by external
// collaborators and never required for validity.
type SavedItem struct {
	ID          string       `json:"id"`
	CreatedAt   string       `json:"createdAt"`
	Title       string       `json:"title" validate:"required"`
	Category    string       `json:"category,omitempty"`
	DateTimeISO string       `json:"dateTimeISO,omitempty"`
	Location    string       `json:"location,omitempty"`
	Coordinates *Coordinates `json:"coordinates,omitempty"`
	MapsURL     string       `json:"mapsUrl,omitempty"`
	ImageURI    string       `json:"imageUri,omitempty"`
	Notes       string       `json:"notes,omitempty"`
	Source      string       `json:"source,omitempty"`
	TripID      string       `json:"tripId,omitempty"`

	// Place enrichment
	PlaceID        string `json:"placeId,omitempty"`
	PlaceMapsURI   string `json:"placeMapsUri,omitempty"`
	Rating         string `json:"rating,omitempty"`
	OpenNow        *bool  `json:"openNow,omitempty"`
	OpeningHours   string `json:"openingHours,omitempty"`
	ReviewSnippet  string `json:"reviewSnippet,omitempty"`
	WebsiteURI     string `json:"websiteUri,omitempty"`
	ReservationURL string `json:"reservationUrl,omitempty"`
	Instagram      string `json:"instagram,omitempty"`
	TikTok         string `json:"tiktok,omitempty"`
}

// Trip is an optional named grouping of items. An item's TripID is a
// weak reference: deleting a trip does not cascade and dangling
// references are tolerated.
type Trip struct {
	ID            string `json:"id"`
	UserID        string `json:"userId"`
	Name          string `json:"name" validate:"required"`
	Description   string `json:"description,omitempty"`
	StartDate     string `json:"startDate,omitempty"`
	EndDate       string `json:"endDate,omitempty"`
	CoverImageURI string `json:"coverImageUri,omitempty"`
	CreatedAt     string `json:"createdAt"`
	UpdatedAt     string `json:"updatedAt"`
}

// ErrNotFound is returned when an item or trip id is unknown.
var ErrNotFound = errors.New("not found")
