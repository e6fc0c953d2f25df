package store

import "github.com/JaggerB/rork-snapkeep-organizer/internal/types"

// Tier selects how many columns a write sends. The set shrinks as the
// client degrades against older remote schemas: full carries every
// enrichment column, core drops enrichment, minimal is just what the
// persistence invariant requires.
type Tier int

const (
	TierFull Tier = iota
	TierCore
	TierMinimal
)

func (t Tier) String() string {
	switch t {
	case TierFull:
		return "full"
	case TierCore:
		return "core"
	case TierMinimal:
		return "minimal"
	default:
		return "unknown"
	}
}

// WriteTiers is the degrade order: at most two fallbacks after the
// full-column attempt.
func WriteTiers() [3]Tier {
	return [3]Tier{TierFull, TierCore, TierMinimal}
}

var minimalColumns = []string{
	"id", "user_id", "created_at", "title", "category", "image_uri",
}

var coreColumns = append(minimalColumns,
	"date_time_iso", "location", "latitude", "longitude",
	"maps_url", "notes", "source", "trip_id",
)

var fullColumns = append(coreColumns,
	"place_id", "place_maps_uri", "rating", "open_now", "opening_hours",
	"review_snippet", "website_uri", "reservation_url", "instagram", "tiktok",
)

// Columns returns the column names allowed at tier t.
func (t Tier) Columns() []string {
	switch t {
	case TierMinimal:
		return minimalColumns
	case TierCore:
		return coreColumns
	default:
		return fullColumns
	}
}

func (t Tier) allows(column string) bool {
	for _, c := range t.Columns() {
		if c == column {
			return true
		}
	}
	return false
}

// ItemColumns builds the column→value payload for inserting it at tier
// t. Empty optional fields are omitted so older schemas only see the
// columns the client actually needs.
func ItemColumns(userID string, it types.SavedItem, t Tier) map[string]any {
	full := map[string]any{
		"id":         it.ID,
		"user_id":    userID,
		"created_at": it.CreatedAt,
		"title":      it.Title,
		"category":   it.Category,
	}
	putStr := func(col, v string) {
		if v != "" {
			full[col] = v
		}
	}
	putStr("image_uri", it.ImageURI)
	putStr("date_time_iso", it.DateTimeISO)
	putStr("location", it.Location)
	putStr("maps_url", it.MapsURL)
	putStr("notes", it.Notes)
	putStr("source", it.Source)
	putStr("trip_id", it.TripID)
	putStr("place_id", it.PlaceID)
	putStr("place_maps_uri", it.PlaceMapsURI)
	putStr("rating", it.Rating)
	putStr("opening_hours", it.OpeningHours)
	putStr("review_snippet", it.ReviewSnippet)
	putStr("website_uri", it.WebsiteURI)
	putStr("reservation_url", it.ReservationURL)
	putStr("instagram", it.Instagram)
	putStr("tiktok", it.TikTok)
	if it.Coordinates != nil {
		full["latitude"] = it.Coordinates.Latitude
		full["longitude"] = it.Coordinates.Longitude
	}
	if it.OpenNow != nil {
		full["open_now"] = *it.OpenNow
	}

	out := make(map[string]any, len(full))
	for col, v := range full {
		if t.allows(col) {
			out[col] = v
		}
	}
	return out
}

// PatchColumns builds the column→value payload for a partial update at
// tier t. A set pointer with a zero value writes NULL; nil pointers
// are left out entirely.
func PatchColumns(patch types.ItemPatch, t Tier) map[string]any {
	full := map[string]any{}
	putStr := func(col string, v *string) {
		if v == nil {
			return
		}
		if *v == "" {
			full[col] = nil
		} else {
			full[col] = *v
		}
	}
	putStr("title", patch.Title)
	putStr("category", patch.Category)
	putStr("date_time_iso", patch.DateTimeISO)
	putStr("location", patch.Location)
	putStr("maps_url", patch.MapsURL)
	putStr("image_uri", patch.ImageURI)
	putStr("notes", patch.Notes)
	putStr("source", patch.Source)
	putStr("trip_id", patch.TripID)
	putStr("place_id", patch.PlaceID)
	putStr("place_maps_uri", patch.PlaceMapsURI)
	putStr("rating", patch.Rating)
	putStr("opening_hours", patch.OpeningHours)
	putStr("review_snippet", patch.ReviewSnippet)
	putStr("website_uri", patch.WebsiteURI)
	putStr("reservation_url", patch.ReservationURL)
	putStr("instagram", patch.Instagram)
	putStr("tiktok", patch.TikTok)
	if patch.Coordinates != nil {
		full["latitude"] = patch.Coordinates.Latitude
		full["longitude"] = patch.Coordinates.Longitude
	}
	if patch.OpenNow != nil {
		full["open_now"] = *patch.OpenNow
	}

	out := make(map[string]any, len(full))
	for col, v := range full {
		if t.allows(col) {
			out[col] = v
		}
	}
	return out
}

// TripColumns builds the column→value payload for a trip. Trips
// predate every schema migration, so they carry a single column set.
func TripColumns(t types.Trip) map[string]any {
	out := map[string]any{
		"id":      t.ID,
		"user_id": t.UserID,
		"name":    t.Name,
	}
	putStr := func(col, v string) {
		if v != "" {
			out[col] = v
		}
	}
	putStr("description", t.Description)
	putStr("start_date", t.StartDate)
	putStr("end_date", t.EndDate)
	putStr("cover_image_uri", t.CoverImageURI)
	putStr("created_at", t.CreatedAt)
	putStr("updated_at", t.UpdatedAt)
	return out
}

// TripPatchColumns builds the column→value payload for a trip patch.
func TripPatchColumns(patch types.TripPatch, updatedAt string) map[string]any {
	out := map[string]any{"updated_at": updatedAt}
	putStr := func(col string, v *string) {
		if v == nil {
			return
		}
		if *v == "" {
			out[col] = nil
		} else {
			out[col] = *v
		}
	}
	putStr("name", patch.Name)
	putStr("description", patch.Description)
	putStr("start_date", patch.StartDate)
	putStr("end_date", patch.EndDate)
	putStr("cover_image_uri", patch.CoverImageURI)
	return out
}
