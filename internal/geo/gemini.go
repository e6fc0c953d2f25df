package geo

import (
	"context"
	"encoding/json"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

const defaultGeminiBase = "https://generativelanguage.googleapis.com"

// locationPrompt instructs the model to behave as a geocoder. Chain
// venues are the tricky case: without the city hint the model tends to
// return the flagship location.
const locationPrompt = `You are a precise location lookup assistant. Given location details, provide exact geographic coordinates.

Instructions:
- Use ALL provided address components (street, neighborhood, city, state) to find the EXACT location.
- Many businesses have multiple locations (e.g. Death & Co has NYC, LA, Denver locations). Use city/neighborhood to identify the correct one.
- If a street address is provided, use it for precision - don't just return city center coordinates.
- For well-known restaurants/bars/venues, use your knowledge of their actual street addresses.
- If you cannot determine coordinates with reasonable confidence, return null values.
- Be as precise as possible - accuracy matters for map pins.

IMPORTANT: Return ONLY valid JSON with these fields: latitude (number or null), longitude (number or null), formattedAddress (string or null), city (string or null), country (string or null).`

// GeminiResolver geocodes through the Gemini generateContent API,
// trying the primary model first and falling back to a secondary model
// when the primary call fails.
type GeminiResolver struct {
	http     *resty.Client
	apiKey   string
	model    string
	fallback string
	logger   zerolog.Logger
}

// GeminiOption customizes the resolver.
type GeminiOption func(*GeminiResolver)

// WithBaseURL overrides the API endpoint, used by tests.
func WithBaseURL(base string) GeminiOption {
	return func(g *GeminiResolver) { g.http.SetBaseURL(base) }
}

// WithFallbackModel sets the model tried when the primary fails.
func WithFallbackModel(model string) GeminiOption {
	return func(g *GeminiResolver) { g.fallback = model }
}

// WithTimeout sets the per-lookup timeout.
func WithTimeout(d time.Duration) GeminiOption {
	return func(g *GeminiResolver) { g.http.SetTimeout(d) }
}

// WithLogger sets the resolver's logger.
func WithLogger(l zerolog.Logger) GeminiOption {
	return func(g *GeminiResolver) { g.logger = l }
}

// NewGeminiResolver builds a resolver for the given model.
func NewGeminiResolver(apiKey, model string, opts ...GeminiOption) *GeminiResolver {
	c := resty.New().
		SetBaseURL(defaultGeminiBase).
		SetHeader("Content-Type", "application/json").
		SetTimeout(30 * time.Second)

	g := &GeminiResolver{
		http:   c,
		apiKey: apiKey,
		model:  model,
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

type promptPart struct {
	Text string `json:"text"`
}

type promptContent struct {
	Parts []promptPart `json:"parts"`
}

type generateRequest struct {
	Contents         []promptContent `json:"contents"`
	GenerationConfig struct {
		Temperature     float64 `json:"temperature"`
		MaxOutputTokens int     `json:"maxOutputTokens"`
	} `json:"generationConfig"`
}

type generateResponse struct {
	Candidates []struct {
		Content promptContent `json:"content"`
	} `json:"candidates"`
}

type locationPayload struct {
	Latitude         *float64 `json:"latitude"`
	Longitude        *float64 `json:"longitude"`
	FormattedAddress *string  `json:"formattedAddress"`
	City             *string  `json:"city"`
	Country          *string  `json:"country"`
}

func (g *GeminiResolver) Resolve(ctx context.Context, query string, hints Hints) (Result, error) {
	if strings.TrimSpace(query) == "" {
		return Result{}, errors.New("empty query")
	}
	prompt := buildPrompt(query, hints)

	payload, err := g.generate(ctx, g.model, prompt)
	if err != nil && g.fallback != "" && g.fallback != g.model {
		g.logger.Debug().Err(err).Str("model", g.model).Msg("primary model failed, trying fallback")
		payload, err = g.generate(ctx, g.fallback, prompt)
	}
	if err != nil {
		return Result{}, err
	}
	return toResult(payload, query), nil
}

func (g *GeminiResolver) ResolveByPlaceID(ctx context.Context, placeID string) (Result, error) {
	if placeID == "" {
		return Result{}, errors.New("empty place id")
	}
	prompt := locationPrompt + "\n\nFind the exact coordinates for the place with Google Maps place ID: " + placeID

	payload, err := g.generate(ctx, g.model, prompt)
	if err != nil && g.fallback != "" && g.fallback != g.model {
		payload, err = g.generate(ctx, g.fallback, prompt)
	}
	if err != nil {
		return Result{}, err
	}
	return toResult(payload, ""), nil
}

func (g *GeminiResolver) generate(ctx context.Context, model, prompt string) (locationPayload, error) {
	var req generateRequest
	req.Contents = []promptContent{{Parts: []promptPart{{Text: prompt}}}}
	req.GenerationConfig.Temperature = 0.2
	req.GenerationConfig.MaxOutputTokens = 512

	var out generateResponse
	resp, err := g.http.R().
		SetContext(ctx).
		SetQueryParam("key", g.apiKey).
		SetBody(&req).
		SetResult(&out).
		Post("/v1beta/models/" + url.PathEscape(model) + ":generateContent")
	if err != nil {
		return locationPayload{}, errors.Wrap(err, "gemini request")
	}
	if resp.IsError() {
		return locationPayload{}, errors.Errorf("gemini status %d: %s", resp.StatusCode(), resp.String())
	}
	if len(out.Candidates) == 0 || len(out.Candidates[0].Content.Parts) == 0 {
		return locationPayload{}, errors.New("no content in gemini response")
	}

	text := stripCodeFence(out.Candidates[0].Content.Parts[0].Text)
	var payload locationPayload
	if err := json.Unmarshal([]byte(text), &payload); err != nil {
		return locationPayload{}, errors.Wrap(err, "decode location payload")
	}
	return payload, nil
}

func buildPrompt(query string, hints Hints) string {
	lines := []string{locationPrompt, "", "Place/Venue Name: " + query}
	add := func(label, v string) {
		if v != "" {
			lines = append(lines, label+": "+v)
		}
	}
	add("Street Address", hints.StreetAddress)
	add("Neighborhood", hints.Neighborhood)
	add("City", hints.City)
	add("State", hints.State)
	add("Country", hints.Country)
	add("Context (title)", hints.Title)
	add("Additional context", hints.Context)

	var addressParts []string
	for _, p := range []string{hints.StreetAddress, hints.Neighborhood, hints.City, hints.State, hints.Country} {
		if p != "" {
			addressParts = append(addressParts, p)
		}
	}
	lines = append(lines, "")
	if len(addressParts) > 0 {
		lines = append(lines, "Find the exact coordinates for: "+query+" at "+strings.Join(addressParts, ", "))
	} else {
		lines = append(lines, "Find the exact coordinates for: "+query)
	}
	return strings.Join(lines, "\n")
}

// stripCodeFence removes a markdown fence the model sometimes wraps
// around its JSON.
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

func toResult(p locationPayload, query string) Result {
	r := Result{Latitude: p.Latitude, Longitude: p.Longitude}
	if p.FormattedAddress != nil {
		r.FormattedAddress = *p.FormattedAddress
	}
	if r.Resolved() {
		q := r.FormattedAddress
		if q == "" {
			q = query
		}
		r.MapsURL = MapsSearchURL(r.Latitude, r.Longitude, q)
	}
	return r
}
