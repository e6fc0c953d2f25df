package geo

import (
	"context"
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

func geminiReply(text string) string {
	body := map[string]any{
		"candidates": []any{
			map[string]any{"content": map[string]any{"parts": []any{map[string]any{"text": text}}}},
		},
	}
	raw, _ := json.Marshal(body)
	return string(raw)
}

func TestResolve_ParsesCoordinates(t *testing.T) {
	var gotPath, gotPrompt string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		require.Equal(t, "test-key", r.URL.Query().Get("key"))
		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		var buf bytes.Buffer
		enc := json.NewEncoder(&buf)
		enc.SetEscapeHTML(false)
		require.NoError(t, enc.Encode(req))
		gotPrompt = buf.String()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(geminiReply(`{"latitude":40.7262,"longitude":-73.9846,"formattedAddress":"433 E 6th St, New York, NY 10009","city":"New York","country":"USA"}`)))
	}))
	defer srv.Close()

	g := NewGeminiResolver("test-key", "gemini-2.0-flash", WithBaseURL(srv.URL))
	res, err := g.Resolve(context.Background(), "Death & Co", Hints{City: "New York"})
	require.NoError(t, err)
	require.True(t, res.Resolved())
	require.Equal(t, 40.7262, *res.Latitude)
	require.Equal(t, "433 E 6th St, New York, NY 10009", res.FormattedAddress)
	require.Contains(t, res.MapsURL, "google.com/maps/search")
	require.Equal(t, "/v1beta/models/gemini-2.0-flash:generateContent", gotPath)
	require.Contains(t, gotPrompt, "Death & Co")
	require.Contains(t, gotPrompt, "City: New York")
}

func TestResolve_NullCoordinatesIsNotAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(geminiReply(`{"latitude":null,"longitude":null,"formattedAddress":null,"city":null,"country":null}`)))
	}))
	defer srv.Close()

	g := NewGeminiResolver("test-key", "gemini-2.0-flash", WithBaseURL(srv.URL))
	res, err := g.Resolve(context.Background(), "nowhere in particular", Hints{})
	require.NoError(t, err)
	require.False(t, res.Resolved())
	require.Empty(t, res.MapsURL)
}

func TestResolve_StripsCodeFence(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(geminiReply("```json\n{\"latitude\":35.6595,\"longitude\":139.7005,\"formattedAddress\":\"Shibuya\"}\n```")))
	}))
	defer srv.Close()

	g := NewGeminiResolver("test-key", "gemini-2.0-flash", WithBaseURL(srv.URL))
	res, err := g.Resolve(context.Background(), "Shibuya Crossing", Hints{})
	require.NoError(t, err)
	require.True(t, res.Resolved())
	require.Equal(t, 35.6595, *res.Latitude)
}

func TestResolve_FallsBackToSecondaryModel(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		if strings.Contains(r.URL.Path, "gemini-2.0-flash") {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		require.Contains(t, r.URL.Path, "gemini-1.5-flash")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(geminiReply(`{"latitude":48.8584,"longitude":2.2945,"formattedAddress":"Champ de Mars"}`)))
	}))
	defer srv.Close()

	g := NewGeminiResolver("test-key", "gemini-2.0-flash",
		WithBaseURL(srv.URL), WithFallbackModel("gemini-1.5-flash"))
	res, err := g.Resolve(context.Background(), "Eiffel Tower", Hints{})
	require.NoError(t, err)
	require.True(t, res.Resolved())
	require.EqualValues(t, 2, calls)
}

func TestResolve_BothModelsFailing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	g := NewGeminiResolver("test-key", "gemini-2.0-flash",
		WithBaseURL(srv.URL), WithFallbackModel("gemini-1.5-flash"))
	_, err := g.Resolve(context.Background(), "anywhere", Hints{})
	require.Error(t, err)
}

func TestResolve_EmptyQuery(t *testing.T) {
	g := NewGeminiResolver("test-key", "gemini-2.0-flash")
	_, err := g.Resolve(context.Background(), "   ", Hints{})
	require.Error(t, err)
}

func TestMapsSearchURL(t *testing.T) {
	lat, lng := 40.7262, -73.9846

	got := MapsSearchURL(&lat, &lng, "Death & Co, New York")
	require.Equal(t, "https://www.google.com/maps/search/?api=1&query=Death+%26+Co%2C+New+York", got)

	got = MapsSearchURL(&lat, &lng, "")
	require.Equal(t, "https://www.google.com/maps/search/?api=1&query=40.7262%2C-73.9846", got)

	got = MapsSearchURL(nil, nil, "Tatiana Brooklyn")
	require.Equal(t, "https://www.google.com/maps/search/?api=1&query=Tatiana+Brooklyn", got)

	require.Empty(t, MapsSearchURL(nil, nil, ""))
}
