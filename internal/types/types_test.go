package types

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidateItem(t *testing.T) {
	ok := SavedItem{ID: "it_1", Title: "Tatiana", ImageURI: "file:///tmp/a.jpg"}
	require.NoError(t, ValidateItem(ok))

	missingTitle := ok
	missingTitle.Title = "  "
	require.ErrorIs(t, ValidateItem(missingTitle), ErrMissingTitle)

	missingImage := ok
	missingImage.ImageURI = ""
	require.ErrorIs(t, ValidateItem(missingImage), ErrMissingImage)
}

func TestValidateTrip(t *testing.T) {
	require.NoError(t, ValidateTrip(Trip{ID: "trip_1", Name: "Tokyo"}))
	require.ErrorIs(t, ValidateTrip(Trip{ID: "trip_2"}), ErrMissingName)
}

func TestIsInlineImage(t *testing.T) {
	require.True(t, IsInlineImage("data:image/png;base64,AAAA"))
	require.False(t, IsInlineImage("https://cdn/x/a.jpg"))
	require.False(t, IsInlineImage("file:///tmp/a.jpg"))
	require.False(t, IsInlineImage(""))
}

func TestItemPatch_Apply(t *testing.T) {
	it := SavedItem{ID: "it_1", Title: "Old", Notes: "keep me"}
	title := "New"
	coords := Coordinates{Latitude: 40.727, Longitude: -73.983}
	open := true

	got := ItemPatch{Title: &title, Coordinates: &coords, OpenNow: &open}.Apply(it)
	require.Equal(t, "New", got.Title)
	require.Equal(t, "keep me", got.Notes)
	require.NotNil(t, got.Coordinates)
	require.Equal(t, 40.727, got.Coordinates.Latitude)
	require.NotNil(t, got.OpenNow)
	require.True(t, *got.OpenNow)

	// untouched source
	require.Equal(t, "Old", it.Title)
	require.Nil(t, it.Coordinates)
}

func TestItemPatch_ClearField(t *testing.T) {
	it := SavedItem{ID: "it_1", Title: "T", Location: "NYC"}
	empty := ""
	got := ItemPatch{Location: &empty}.Apply(it)
	require.Empty(t, got.Location)
}

func TestTripPatch_Apply(t *testing.T) {
	tr := Trip{ID: "trip_1", Name: "Tokyo", Description: "spring"}
	name := "Kyoto"
	got := TripPatch{Name: &name}.Apply(tr)
	require.Equal(t, "Kyoto", got.Name)
	require.Equal(t, "spring", got.Description)
}

func TestNormalizeCategory(t *testing.T) {
	cases := map[string]string{
		"restaurant":   CategoryFood,
		"cafe":         CategoryFood,
		"bar":          CategoryFood,
		"event":        CategoryEvents,
		"rock concert": CategoryEvents,
		"hotel":        CategoryTravel,
		"hike":         CategoryHikes,
		"beach":        CategoryHikes,
		"shop":         CategoryShopping,
		"museum":       CategoryDateNight,
		"cinema":       CategoryMovies,
		"":             CategoryOther,
		"whatever":     CategoryOther,
	}
	for raw, want := range cases {
		require.Equal(t, want, NormalizeCategory(raw), "raw=%q", raw)
	}
}
