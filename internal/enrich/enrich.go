// Package enrich verifies saved places against the maps-grounding
// backend and refreshes their live status. The backend is an edge
// function that fronts Vertex AI with Google Maps grounding; the
// client only ever sees the distilled place fields.
package enrich

import (
	"context"
	"encoding/base64"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/JaggerB/rork-snapkeep-organizer/internal/auth"
	"github.com/JaggerB/rork-snapkeep-organizer/internal/types"
)

// Enricher looks up place facts that only the maps backend knows.
type Enricher interface {
	// Verify identifies the place shown by title/location (and
	// optionally the screenshot itself) and returns its enrichment
	// fields. A zero PlaceEnrichment with nil error means the place
	// could not be identified.
	Verify(ctx context.Context, req VerifyRequest) (types.PlaceEnrichment, error)

	// LiveStatus fetches the current open/rating state of a known
	// place.
	LiveStatus(ctx context.Context, req LiveStatusRequest) (types.PlaceLiveStatus, error)
}

// VerifyRequest carries what the capture pipeline knows about a place
// before verification.
type VerifyRequest struct {
	Title       string
	Location    string
	Coordinates *types.Coordinates
	Image       []byte
	ImageMIME   string
}

// LiveStatusRequest identifies a place for a status refresh. PlaceID
// is preferred; title and coordinates are the fallback identity.
type LiveStatusRequest struct {
	PlaceID     string
	Title       string
	Coordinates *types.Coordinates
}

// Client calls the gemini-maps edge function.
type Client struct {
	http    *resty.Client
	session auth.SessionSource
	logger  zerolog.Logger
}

// Option customizes the client.
type Option func(*Client)

// WithTimeout sets the per-call timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.SetTimeout(d) }
}

// WithLogger sets the client's logger.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// New builds a client against functionURL, the full URL of the
// gemini-maps function (e.g. {project}/functions/v1/gemini-maps).
func New(functionURL string, session auth.SessionSource, opts ...Option) *Client {
	c := resty.New().
		SetBaseURL(functionURL).
		SetHeader("Content-Type", "application/json").
		SetTimeout(45 * time.Second)

	cl := &Client{http: c, session: session, logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(cl)
	}
	return cl
}

func (c *Client) call(ctx context.Context, action string, body map[string]any, out any) error {
	body["action"] = action
	req := c.http.R().SetContext(ctx).SetBody(body).SetResult(out)
	if tok := c.session.AccessToken(); tok != "" {
		req.SetHeader("Authorization", "Bearer "+tok)
	}
	resp, err := req.Post("")
	if err != nil {
		return errors.Wrapf(err, "maps backend %s", action)
	}
	if resp.IsError() {
		return errors.Errorf("maps backend %s: HTTP %d: %s", action, resp.StatusCode(), resp.String())
	}
	return nil
}

func (c *Client) Verify(ctx context.Context, req VerifyRequest) (types.PlaceEnrichment, error) {
	title := req.Title
	if title == "" {
		title = "Place"
	}
	body := map[string]any{
		"title":       title,
		"location":    nullable(req.Location),
		"coordinates": req.Coordinates,
	}
	if len(req.Image) > 0 && req.ImageMIME != "" {
		body["imageBase64"] = base64.StdEncoding.EncodeToString(req.Image)
		body["imageMimeType"] = req.ImageMIME
	}

	var enrichment types.PlaceEnrichment
	if err := c.call(ctx, "verify", body, &enrichment); err != nil {
		return types.PlaceEnrichment{}, err
	}
	return enrichment, nil
}

func (c *Client) LiveStatus(ctx context.Context, req LiveStatusRequest) (types.PlaceLiveStatus, error) {
	if req.PlaceID == "" && req.Coordinates == nil {
		return types.PlaceLiveStatus{}, nil
	}
	body := map[string]any{
		"placeId":     nullable(req.PlaceID),
		"title":       req.Title,
		"coordinates": req.Coordinates,
	}

	var status types.PlaceLiveStatus
	if err := c.call(ctx, "live-status", body, &status); err != nil {
		return types.PlaceLiveStatus{}, err
	}
	return status, nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// Disabled is an Enricher that identifies nothing, used when no maps
// backend is configured.
type Disabled struct{}

func (Disabled) Verify(context.Context, VerifyRequest) (types.PlaceEnrichment, error) {
	return types.PlaceEnrichment{}, nil
}

func (Disabled) LiveStatus(context.Context, LiveStatusRequest) (types.PlaceLiveStatus, error) {
	return types.PlaceLiveStatus{}, nil
}
