package types

// Shapes exchanged with the external AI collaborators. All fields are
// optional except where noted; a missing title from extraction is
// treated as extraction failure by the caller.

// Extraction is the structured result of reading a screenshot.
type Extraction struct {
	Title       string   `json:"title"`
	Category    string   `json:"category"`
	Location    string   `json:"location"`
	DateTimeISO string   `json:"dateTimeISO"`
	Description string   `json:"description"`
	Notes       string   `json:"notes"`
	Source      string   `json:"source"`
	Website     string   `json:"website"`
	Instagram   string   `json:"instagram"`
	TikTok      string   `json:"tiktok"`
	PriceRange  string   `json:"priceRange"`
	Rating      string   `json:"rating"`
	Tags        []string `json:"tags"`
}

// PlaceEnrichment is the result of verifying a place against the maps
// grounding collaborator.
type PlaceEnrichment struct {
	PlaceID        string `json:"placeId"`
	PlaceMapsURI   string `json:"placeMapsUri"`
	Rating         string `json:"rating"`
	OpenNow        *bool  `json:"openNow"`
	OpeningHours   string `json:"openingHours"`
	ReviewSnippet  string `json:"reviewSnippet"`
	WebsiteURI     string `json:"websiteUri"`
	ReservationURL string `json:"reservationUrl"`
}

// PlaceLiveStatus is the subset refreshed on demand for a single place.
type PlaceLiveStatus struct {
	OpenNow       *bool  `json:"openNow"`
	Rating        string `json:"rating"`
	OpeningHours  string `json:"openingHours"`
	ReviewSnippet string `json:"reviewSnippet"`
}
