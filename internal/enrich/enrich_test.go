package enrich

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/JaggerB/rork-snapkeep-organizer/internal/auth"
	"github.com/JaggerB/rork-snapkeep-organizer/internal/types"
)

func session() auth.SessionSource {
	return auth.StaticSession{User: "user-1", Token: "jwt-token"}
}

func TestVerify_IdentifiesPlace(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Bearer jwt-token", r.Header.Get("Authorization"))
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "verify", body["action"])
		require.Equal(t, "Tatiana", body["title"])
		require.Equal(t, "Lincoln Center, NYC", body["location"])
		require.NotEmpty(t, body["imageBase64"])
		require.Equal(t, "image/png", body["imageMimeType"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"placeId": "ChIJtatiana",
			"placeMapsUri": "https://maps.google.com/?cid=1",
			"rating": "4.8",
			"openNow": true,
			"openingHours": "Open until 10pm",
			"reviewSnippet": "Incredible tasting menu",
			"websiteUri": "https://tatiananyc.com",
			"reservationUrl": "https://resy.com/tatiana"
		}`))
	}))
	defer srv.Close()

	c := New(srv.URL, session())
	got, err := c.Verify(context.Background(), VerifyRequest{
		Title:     "Tatiana",
		Location:  "Lincoln Center, NYC",
		Image:     []byte{0x89, 0x50, 0x4e, 0x47},
		ImageMIME: "image/png",
	})
	require.NoError(t, err)
	require.Equal(t, "ChIJtatiana", got.PlaceID)
	require.Equal(t, "4.8", got.Rating)
	require.NotNil(t, got.OpenNow)
	require.True(t, *got.OpenNow)
	require.Equal(t, "https://resy.com/tatiana", got.ReservationURL)
}

func TestVerify_DefaultsEmptyTitle(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "Place", body["title"])
		require.Nil(t, body["location"])
		_, _ = w.Write([]byte(`{"placeId":null,"placeMapsUri":null,"rating":null,"openNow":null}`))
	}))
	defer srv.Close()

	c := New(srv.URL, session())
	got, err := c.Verify(context.Background(), VerifyRequest{})
	require.NoError(t, err)
	require.Empty(t, got.PlaceID)
	require.Nil(t, got.OpenNow)
}

func TestVerify_BackendError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := New(srv.URL, session())
	_, err := c.Verify(context.Background(), VerifyRequest{Title: "X"})
	require.Error(t, err)
}

func TestLiveStatus_PrefersPlaceID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "live-status", body["action"])
		require.Equal(t, "ChIJdeathco", body["placeId"])
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"openNow":false,"rating":"4.6","openingHours":"Opens 6pm","reviewSnippet":"Moody cocktails"}`))
	}))
	defer srv.Close()

	c := New(srv.URL, session())
	got, err := c.LiveStatus(context.Background(), LiveStatusRequest{PlaceID: "ChIJdeathco", Title: "Death & Co"})
	require.NoError(t, err)
	require.NotNil(t, got.OpenNow)
	require.False(t, *got.OpenNow)
	require.Equal(t, "4.6", got.Rating)
}

func TestLiveStatus_NoIdentityShortCircuits(t *testing.T) {
	c := New("http://never-called.invalid", session())
	got, err := c.LiveStatus(context.Background(), LiveStatusRequest{Title: "Unknown"})
	require.NoError(t, err)
	require.Nil(t, got.OpenNow)
}

func TestLiveStatus_CoordinatesAreEnoughIdentity(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Nil(t, body["placeId"])
		require.NotNil(t, body["coordinates"])
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"openNow":true}`))
	}))
	defer srv.Close()

	c := New(srv.URL, session())
	got, err := c.LiveStatus(context.Background(), LiveStatusRequest{
		Title:       "Somewhere",
		Coordinates: &types.Coordinates{Latitude: 1, Longitude: 2},
	})
	require.NoError(t, err)
	require.NotNil(t, got.OpenNow)
}
