// Package extract reads a screenshot and pulls out the structured
// fields of the place or event it shows.
package extract

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/JaggerB/rork-snapkeep-organizer/internal/types"
)

// ErrNoTitle marks an extraction that produced no usable title. The
// capture pipeline treats this as a failed read rather than saving a
// nameless item.
var ErrNoTitle = errors.New("extraction produced no title")

// Extractor reads an image into structured place data.
type Extractor interface {
	// Extract analyzes the image at uri (a local path, file:// URI or
	// data: URL) and returns the structured fields it found.
	Extract(ctx context.Context, uri string) (types.Extraction, error)
}

const defaultGeminiBase = "https://generativelanguage.googleapis.com"

// GeminiExtractor sends the screenshot to the Gemini vision API.
type GeminiExtractor struct {
	http   *resty.Client
	apiKey string
	model  string
	logger zerolog.Logger
	now    func() time.Time
}

// Option customizes the extractor.
type Option func(*GeminiExtractor)

// WithBaseURL overrides the API endpoint, used by tests.
func WithBaseURL(base string) Option {
	return func(g *GeminiExtractor) { g.http.SetBaseURL(base) }
}

// WithTimeout sets the per-extraction timeout.
func WithTimeout(d time.Duration) Option {
	return func(g *GeminiExtractor) { g.http.SetTimeout(d) }
}

// WithLogger sets the extractor's logger.
func WithLogger(l zerolog.Logger) Option {
	return func(g *GeminiExtractor) { g.logger = l }
}

// WithClock overrides the date used in the prompt context, for tests.
func WithClock(now func() time.Time) Option {
	return func(g *GeminiExtractor) { g.now = now }
}

// NewGeminiExtractor builds an extractor for the given vision model.
func NewGeminiExtractor(apiKey, model string, opts ...Option) *GeminiExtractor {
	c := resty.New().
		SetBaseURL(defaultGeminiBase).
		SetHeader("Content-Type", "application/json").
		SetTimeout(60 * time.Second)

	g := &GeminiExtractor{
		http:   c,
		apiKey: apiKey,
		model:  model,
		logger: zerolog.Nop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func (g *GeminiExtractor) Extract(ctx context.Context, uri string) (types.Extraction, error) {
	data, mimeType, err := readImage(uri)
	if err != nil {
		return types.Extraction{}, errors.Wrap(err, "read screenshot")
	}

	body := map[string]any{
		"contents": []any{map[string]any{
			"parts": []any{
				map[string]any{"text": extractionPrompt(g.now())},
				map[string]any{"inlineData": map[string]any{
					"mimeType": mimeType,
					"data":     base64.StdEncoding.EncodeToString(data),
				}},
			},
		}},
		"generationConfig": map[string]any{
			"temperature":     0.2,
			"maxOutputTokens": 2048,
		},
	}

	var out struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
	}
	resp, err := g.http.R().
		SetContext(ctx).
		SetQueryParam("key", g.apiKey).
		SetBody(body).
		SetResult(&out).
		Post("/v1beta/models/" + url.PathEscape(g.model) + ":generateContent")
	if err != nil {
		return types.Extraction{}, errors.Wrap(err, "gemini request")
	}
	if resp.IsError() {
		return types.Extraction{}, errors.Errorf("gemini status %d: %s", resp.StatusCode(), resp.String())
	}
	if len(out.Candidates) == 0 || len(out.Candidates[0].Content.Parts) == 0 {
		return types.Extraction{}, errors.New("no content in gemini response")
	}

	text := stripCodeFence(out.Candidates[0].Content.Parts[0].Text)
	var extraction types.Extraction
	if err := json.Unmarshal([]byte(text), &extraction); err != nil {
		return types.Extraction{}, errors.Wrap(err, "decode extraction")
	}
	if strings.TrimSpace(extraction.Title) == "" {
		return types.Extraction{}, ErrNoTitle
	}
	return extraction, nil
}

// readImage loads the screenshot bytes. Inline data: URLs are decoded
// in place; everything else is treated as a local file path.
func readImage(uri string) ([]byte, string, error) {
	if strings.HasPrefix(uri, "data:") {
		meta, payload, ok := strings.Cut(strings.TrimPrefix(uri, "data:"), ",")
		if !ok || !strings.HasSuffix(meta, ";base64") {
			return nil, "", errors.New("malformed data url")
		}
		data, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return nil, "", errors.Wrap(err, "base64 decode")
		}
		mimeType := strings.TrimSuffix(meta, ";base64")
		if mimeType == "" {
			mimeType = "image/jpeg"
		}
		return data, mimeType, nil
	}

	path := strings.TrimPrefix(uri, "file://")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", err
	}
	mimeType := "image/jpeg"
	if strings.HasSuffix(strings.ToLower(path), ".png") {
		mimeType = "image/png"
	}
	return data, mimeType, nil
}

func extractionPrompt(now time.Time) string {
	dateContext := fmt.Sprintf("Current date context: %s %d", now.Month().String(), now.Year())
	return strings.Join([]string{
		"You are an expert assistant that extracts comprehensive information from screenshots of places, events, restaurants, travel destinations, and activities.",
		"",
		dateContext,
		"",
		"Analyze this screenshot thoroughly and extract ALL available information:",
		"",
		`1. **title**: The exact name of the place, event, venue, or activity. Be precise.`,
		"",
		`2. **category**: Classify as ONE of these (choose the most specific): "restaurant", "cafe", "bar", "event", "attraction", "museum", "hotel", "shop", "activity", "hike", "beach", "park", "nightlife", "wellness", "other".`,
		"",
		`3. **location**: Extract the MOST PRECISE address or location for pin-perfect mapping. Full street address if visible, else neighborhood and city. Prioritize precision - a full address maps to an exact pin; a vague neighborhood does not.`,
		"",
		`4. **dateTimeISO**: ONLY extract dates for actual EVENTS. DO NOT use social media post dates as event dates. For restaurants, cafes, bars, shops return null.`,
		"",
		`5. **description**: Write exactly 2-3 sentences as if you've researched this place online.`,
		"",
		`6. **notes**: Any additional practical details.`,
		"",
		`7. **source**: The app or platform (Instagram, Google Maps, TikTok, etc.)`,
		"",
		`8. **website**, **instagram**, **tiktok**: Extract if visible for the place/venue.`,
		"",
		`9. **priceRange**, **rating**: If visible.`,
		"",
		`10. **tags**: Array of 2-5 relevant keywords.`,
		"",
		"Respond ONLY with valid JSON with fields: title, category, location, dateTimeISO, description, notes, source, website, instagram, tiktok, priceRange, rating (string or null each) and tags (array of strings).",
	}, "\n")
}

func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
