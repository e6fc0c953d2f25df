package types

// ItemPatch is a partial update for a SavedItem. Nil fields are left
// untouched; pointer-to-zero values clear the field.
type ItemPatch struct {
	Title       *string      `json:"title,omitempty"`
	Category    *string      `json:"category,omitempty"`
	DateTimeISO *string      `json:"dateTimeISO,omitempty"`
	Location    *string      `json:"location,omitempty"`
	Coordinates *Coordinates `json:"coordinates,omitempty"`
	MapsURL     *string      `json:"mapsUrl,omitempty"`
	ImageURI    *string      `json:"imageUri,omitempty"`
	Notes       *string      `json:"notes,omitempty"`
	Source      *string      `json:"source,omitempty"`
	TripID      *string      `json:"tripId,omitempty"`

	PlaceID        *string `json:"placeId,omitempty"`
	PlaceMapsURI   *string `json:"placeMapsUri,omitempty"`
	Rating         *string `json:"rating,omitempty"`
	OpenNow        *bool   `json:"openNow,omitempty"`
	OpeningHours   *string `json:"openingHours,omitempty"`
	ReviewSnippet  *string `json:"reviewSnippet,omitempty"`
	WebsiteURI     *string `json:"websiteUri,omitempty"`
	ReservationURL *string `json:"reservationUrl,omitempty"`
	Instagram      *string `json:"instagram,omitempty"`
	TikTok         *string `json:"tiktok,omitempty"`
}

// Apply returns a copy of it with the patch merged in.
func (p ItemPatch) Apply(it SavedItem) SavedItem {
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	set(&it.Title, p.Title)
	set(&it.Category, p.Category)
	set(&it.DateTimeISO, p.DateTimeISO)
	set(&it.Location, p.Location)
	set(&it.MapsURL, p.MapsURL)
	set(&it.ImageURI, p.ImageURI)
	set(&it.Notes, p.Notes)
	set(&it.Source, p.Source)
	set(&it.TripID, p.TripID)
	set(&it.PlaceID, p.PlaceID)
	set(&it.PlaceMapsURI, p.PlaceMapsURI)
	set(&it.Rating, p.Rating)
	set(&it.OpeningHours, p.OpeningHours)
	set(&it.ReviewSnippet, p.ReviewSnippet)
	set(&it.WebsiteURI, p.WebsiteURI)
	set(&it.ReservationURL, p.ReservationURL)
	set(&it.Instagram, p.Instagram)
	set(&it.TikTok, p.TikTok)
	if p.Coordinates != nil {
		c := *p.Coordinates
		it.Coordinates = &c
	}
	if p.OpenNow != nil {
		v := *p.OpenNow
		it.OpenNow = &v
	}
	return it
}

// IsZero reports whether the patch changes nothing.
func (p ItemPatch) IsZero() bool {
	return p == ItemPatch{}
}

// TripPatch is a partial update for a Trip.
type TripPatch struct {
	Name          *string `json:"name,omitempty"`
	Description   *string `json:"description,omitempty"`
	StartDate     *string `json:"startDate,omitempty"`
	EndDate       *string `json:"endDate,omitempty"`
	CoverImageURI *string `json:"coverImageUri,omitempty"`
}

// Apply returns a copy of t with the patch merged in.
func (p TripPatch) Apply(t Trip) Trip {
	if p.Name != nil {
		t.Name = *p.Name
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.StartDate != nil {
		t.StartDate = *p.StartDate
	}
	if p.EndDate != nil {
		t.EndDate = *p.EndDate
	}
	if p.CoverImageURI != nil {
		t.CoverImageURI = *p.CoverImageURI
	}
	return t
}
