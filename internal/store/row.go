package store

import "github.com/JaggerB/rork-snapkeep-organizer/internal/types"

// Row is the remote table shape of a SavedItem (snake_case columns).
// Older deployments may lack the enrichment columns; decoding
// tolerates any subset.
type Row struct {
	ID          string   `json:"id"`
	UserID      string   `json:"user_id"`
	CreatedAt   string   `json:"created_at"`
	Title       string   `json:"title"`
	Category    string   `json:"category"`
	DateTimeISO string   `json:"date_time_iso"`
	Location    string   `json:"location"`
	Latitude    *float64 `json:"latitude"`
	Longitude   *float64 `json:"longitude"`
	MapsURL     string   `json:"maps_url"`
	ImageURI    string   `json:"image_uri"`
	Notes       string   `json:"notes"`
	Source      string   `json:"source"`
	TripID      string   `json:"trip_id"`

	PlaceID        string `json:"place_id"`
	PlaceMapsURI   string `json:"place_maps_uri"`
	Rating         string `json:"rating"`
	OpenNow        *bool  `json:"open_now"`
	OpeningHours   string `json:"opening_hours"`
	ReviewSnippet  string `json:"review_snippet"`
	WebsiteURI     string `json:"website_uri"`
	ReservationURL string `json:"reservation_url"`
	Instagram      string `json:"instagram"`
	TikTok         string `json:"tiktok"`
}

// Item converts the row back to the in-memory shape.
func (r Row) Item() types.SavedItem {
	it := types.SavedItem{
		ID:          r.ID,
		CreatedAt:   r.CreatedAt,
		Title:       r.Title,
		Category:    r.Category,
		DateTimeISO: r.DateTimeISO,
		Location:    r.Location,
		MapsURL:     r.MapsURL,
		ImageURI:    r.ImageURI,
		Notes:       r.Notes,
		Source:      r.Source,
		TripID:      r.TripID,

		PlaceID:        r.PlaceID,
		PlaceMapsURI:   r.PlaceMapsURI,
		Rating:         r.Rating,
		OpenNow:        r.OpenNow,
		OpeningHours:   r.OpeningHours,
		ReviewSnippet:  r.ReviewSnippet,
		WebsiteURI:     r.WebsiteURI,
		ReservationURL: r.ReservationURL,
		Instagram:      r.Instagram,
		TikTok:         r.TikTok,
	}
	if r.Latitude != nil && r.Longitude != nil {
		it.Coordinates = &types.Coordinates{Latitude: *r.Latitude, Longitude: *r.Longitude}
	}
	return it
}

// TripRow is the remote table shape of a Trip.
type TripRow struct {
	ID            string `json:"id"`
	UserID        string `json:"user_id"`
	Name          string `json:"name"`
	Description   string `json:"description"`
	StartDate     string `json:"start_date"`
	EndDate       string `json:"end_date"`
	CoverImageURI string `json:"cover_image_uri"`
	CreatedAt     string `json:"created_at"`
	UpdatedAt     string `json:"updated_at"`
}

// Trip converts the row back to the in-memory shape.
func (r TripRow) Trip() types.Trip {
	return types.Trip{
		ID:            r.ID,
		UserID:        r.UserID,
		Name:          r.Name,
		Description:   r.Description,
		StartDate:     r.StartDate,
		EndDate:       r.EndDate,
		CoverImageURI: r.CoverImageURI,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
}
