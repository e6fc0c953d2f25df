package snapkeep

import (
	"context"
	"encoding/base64"
	"os"
	"strings"

	"github.com/JaggerB/rork-snapkeep-organizer/internal/enrich"
	"github.com/JaggerB/rork-snapkeep-organizer/internal/geo"
	"github.com/JaggerB/rork-snapkeep-organizer/internal/types"
)

// SaveScreenshot runs the full capture pipeline on a screenshot:
// extract the structured fields, verify the place against the maps
// backend, resolve coordinates, then save through the normal AddItem
// path. Extraction failure aborts the save; enrichment and geocoding
// failures degrade silently to an item without those fields.
func (c *Client) SaveScreenshot(ctx context.Context, uri string) (types.SavedItem, error) {
	if _, err := c.userID(); err != nil {
		return types.SavedItem{}, err
	}
	if c.extract == nil {
		return types.SavedItem{}, ErrExtractionDisabled
	}

	extraction, err := c.extract.Extract(ctx, uri)
	if err != nil {
		return types.SavedItem{}, err
	}

	imageBytes, imageMIME := readCaptureImage(uri)

	var enrichment types.PlaceEnrichment
	if extraction.Title != "" || extraction.Location != "" || len(imageBytes) > 0 {
		enrichment, err = c.enrich.Verify(ctx, enrich.VerifyRequest{
			Title:     extraction.Title,
			Location:  extraction.Location,
			Image:     imageBytes,
			ImageMIME: imageMIME,
		})
		if err != nil {
			c.logger.Warn().Err(err).Msg("place verification failed")
			enrichment = types.PlaceEnrichment{}
		}
	}

	coords, mapsURL := c.resolveCaptureCoords(ctx, extraction, enrichment)
	if mapsURL == "" {
		mapsURL = enrichment.PlaceMapsURI
	}

	notes := extraction.Notes
	if notes == "" {
		notes = extraction.Description
	}

	it := types.SavedItem{
		Title:       extraction.Title,
		Category:    types.NormalizeCategory(extraction.Category),
		DateTimeISO: extraction.DateTimeISO,
		Location:    extraction.Location,
		Coordinates: coords,
		MapsURL:     mapsURL,
		ImageURI:    uri,
		Notes:       notes,
		Source:      extraction.Source,
		Instagram:   extraction.Instagram,
		TikTok:      extraction.TikTok,

		PlaceID:        enrichment.PlaceID,
		PlaceMapsURI:   enrichment.PlaceMapsURI,
		Rating:         firstNonEmpty(enrichment.Rating, extraction.Rating),
		OpenNow:        enrichment.OpenNow,
		OpeningHours:   enrichment.OpeningHours,
		ReviewSnippet:  enrichment.ReviewSnippet,
		WebsiteURI:     firstNonEmpty(enrichment.WebsiteURI, extraction.Website),
		ReservationURL: enrichment.ReservationURL,
	}
	return c.AddItem(ctx, it)
}

// resolveCaptureCoords finds coordinates for a fresh capture: place id
// first, then the text-query ladder. All failures are swallowed.
func (c *Client) resolveCaptureCoords(ctx context.Context, ex types.Extraction, en types.PlaceEnrichment) (*types.Coordinates, string) {
	if c.geo == nil {
		return nil, ""
	}

	if en.PlaceID != "" {
		if res, err := c.geo.ResolveByPlaceID(ctx, en.PlaceID); err == nil && res.Resolved() {
			return &types.Coordinates{Latitude: *res.Latitude, Longitude: *res.Longitude}, res.MapsURL
		}
	}

	hints := geo.Hints{Title: ex.Title}
	for _, q := range backfillQueries(types.SavedItem{Title: ex.Title, Location: ex.Location}) {
		res, err := c.geo.Resolve(ctx, q, hints)
		if err != nil {
			continue
		}
		if res.Resolved() {
			return &types.Coordinates{Latitude: *res.Latitude, Longitude: *res.Longitude}, res.MapsURL
		}
	}
	return nil, ""
}

// RefreshLiveStatus fetches the current open/rating state for one item
// and persists the changed fields. Items with neither a place id nor
// coordinates are left untouched.
func (c *Client) RefreshLiveStatus(ctx context.Context, id string) (types.SavedItem, error) {
	it, err := c.Item(id)
	if err != nil {
		return types.SavedItem{}, err
	}
	if it.PlaceID == "" && it.Coordinates == nil {
		return it, nil
	}

	status, err := c.enrich.LiveStatus(ctx, enrich.LiveStatusRequest{
		PlaceID:     it.PlaceID,
		Title:       it.Title,
		Coordinates: it.Coordinates,
	})
	if err != nil {
		// Live status is enhancement data; a failed refresh never
		// disturbs the saved item.
		c.logger.Warn().Err(err).Str("itemId", id).Msg("live status refresh failed")
		return it, nil
	}

	patch := types.ItemPatch{OpenNow: status.OpenNow}
	if status.Rating != "" {
		patch.Rating = &status.Rating
	}
	if status.OpeningHours != "" {
		patch.OpeningHours = &status.OpeningHours
	}
	if status.ReviewSnippet != "" {
		patch.ReviewSnippet = &status.ReviewSnippet
	}
	if patch.IsZero() {
		return it, nil
	}
	return c.UpdateItem(ctx, id, patch)
}

// readCaptureImage loads the screenshot bytes for enrichment when the
// reference is inline or local. Remote URLs are skipped; the backend
// can fetch those itself if it needs to.
func readCaptureImage(uri string) ([]byte, string) {
	switch {
	case strings.HasPrefix(uri, "data:"):
		meta, payload, ok := strings.Cut(strings.TrimPrefix(uri, "data:"), ",")
		if !ok || !strings.HasSuffix(meta, ";base64") {
			return nil, ""
		}
		data, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return nil, ""
		}
		return data, strings.TrimSuffix(meta, ";base64")
	case strings.HasPrefix(uri, "http://"), strings.HasPrefix(uri, "https://"):
		return nil, ""
	default:
		path := strings.TrimPrefix(uri, "file://")
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, ""
		}
		mime := "image/jpeg"
		if strings.HasSuffix(strings.ToLower(path), ".png") {
			mime = "image/png"
		}
		return data, mime
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
