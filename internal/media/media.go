// Package media turns capture-time image references into durable URIs.
// Inline base64 payloads are megabytes of JSON if written to the
// backend, so they are uploaded to object storage (or spooled to the
// local media dir) and replaced with a fetchable URL before any row is
// persisted.
package media

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/JaggerB/rork-snapkeep-organizer/internal/auth"
)

// Materializer converts an image reference into a URI that is safe to
// persist remotely. The returned URI is "" when the image could not be
// materialized at all; callers treat that as a missing image, not a
// failed save.
type Materializer interface {
	Materialize(ctx context.Context, userID, itemID, uri string) (string, error)
}

// Uploader pushes screenshot bytes to Supabase-style object storage
// and falls back to the local media directory when the upload fails.
type Uploader struct {
	http     *resty.Client
	session  auth.SessionSource
	bucket   string
	localDir string
	logger   zerolog.Logger
}

// Option customizes the uploader.
type Option func(*Uploader)

// WithLocalDir sets the directory used when remote upload fails. An
// empty dir disables the local fallback.
func WithLocalDir(dir string) Option {
	return func(u *Uploader) { u.localDir = dir }
}

// WithTimeout sets the per-upload timeout.
func WithTimeout(d time.Duration) Option {
	return func(u *Uploader) { u.http.SetTimeout(d) }
}

// WithLogger sets the uploader's logger.
func WithLogger(l zerolog.Logger) Option {
	return func(u *Uploader) { u.logger = l }
}

// NewUploader builds an Uploader against {baseURL}/storage/v1.
func NewUploader(baseURL, apiKey, bucket string, session auth.SessionSource, opts ...Option) *Uploader {
	c := resty.New().
		SetBaseURL(baseURL+"/storage/v1").
		SetHeader("apikey", apiKey).
		SetTimeout(60 * time.Second)

	u := &Uploader{
		http:    c,
		session: session,
		bucket:  bucket,
		logger:  zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// Materialize resolves uri to something persistable:
//   - http(s) URLs pass through untouched
//   - data: URLs are decoded and uploaded
//   - anything else is treated as a local file path, read and uploaded
func (u *Uploader) Materialize(ctx context.Context, userID, itemID, uri string) (string, error) {
	switch {
	case uri == "":
		return "", nil
	case strings.HasPrefix(uri, "http://"), strings.HasPrefix(uri, "https://"):
		return uri, nil
	case strings.HasPrefix(uri, "data:"):
		data, contentType, err := decodeDataURL(uri)
		if err != nil {
			return "", errors.Wrap(err, "decode inline image")
		}
		return u.store(ctx, userID, itemID, data, contentType)
	default:
		path := strings.TrimPrefix(uri, "file://")
		data, err := os.ReadFile(path)
		if err != nil {
			return "", errors.Wrap(err, "read local image")
		}
		return u.store(ctx, userID, itemID, data, sniffContentType(data))
	}
}

// store uploads data, falling back to the local media dir. Only when
// both fail does the image go missing.
func (u *Uploader) store(ctx context.Context, userID, itemID string, data []byte, contentType string) (string, error) {
	url, uploadErr := u.upload(ctx, userID, itemID, data, contentType)
	if uploadErr == nil {
		return url, nil
	}
	u.logger.Warn().Err(uploadErr).Str("itemId", itemID).Msg("storage upload failed, spooling locally")

	if u.localDir == "" {
		return "", uploadErr
	}
	local, localErr := u.spool(userID, itemID, data, contentType)
	if localErr != nil {
		return "", errors.Wrapf(uploadErr, "local spool also failed: %v", localErr)
	}
	return local, nil
}

func (u *Uploader) upload(ctx context.Context, userID, itemID string, data []byte, contentType string) (string, error) {
	objectPath := objectName(userID, itemID, contentType)
	req := u.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", contentType).
		SetBody(data)
	if tok := u.session.AccessToken(); tok != "" {
		req.SetHeader("Authorization", "Bearer "+tok)
	}

	resp, err := req.Post("/object/" + u.bucket + "/" + objectPath)
	if err != nil {
		return "", errors.Wrap(err, "upload image")
	}
	if resp.IsError() {
		return "", errors.Errorf("upload image: HTTP %d: %s", resp.StatusCode(), resp.String())
	}
	return u.http.BaseURL + "/object/public/" + u.bucket + "/" + objectPath, nil
}

func (u *Uploader) spool(userID, itemID string, data []byte, contentType string) (string, error) {
	dir := filepath.Join(u.localDir, userID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(dir, itemID+extFor(contentType))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", err
	}
	return "file://" + path, nil
}

func objectName(userID, itemID, contentType string) string {
	return userID + "/" + itemID + extFor(contentType)
}

func extFor(contentType string) string {
	switch contentType {
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	case "image/gif":
		return ".gif"
	default:
		return ".jpg"
	}
}

// decodeDataURL splits a data: URL into payload bytes and media type.
// Only base64 payloads are accepted; percent-encoded data URLs do not
// occur in screenshot captures.
func decodeDataURL(uri string) ([]byte, string, error) {
	rest := strings.TrimPrefix(uri, "data:")
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return nil, "", errors.New("malformed data url")
	}
	if !strings.HasSuffix(meta, ";base64") {
		return nil, "", errors.New("unsupported data url encoding")
	}
	contentType := strings.TrimSuffix(meta, ";base64")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, "", errors.Wrap(err, "base64 decode")
	}
	if len(data) == 0 {
		return nil, "", errors.New("empty image payload")
	}
	if !strings.HasPrefix(contentType, "image/") {
		contentType = sniffContentType(data)
	}
	return data, contentType, nil
}

func sniffContentType(data []byte) string {
	ct := http.DetectContentType(data)
	if strings.HasPrefix(ct, "image/") {
		return ct
	}
	return "image/jpeg"
}

// Passthrough is a Materializer that keeps every URI as-is except
// inline payloads, which it rejects. Used when no storage backend is
// configured.
type Passthrough struct{}

func (Passthrough) Materialize(_ context.Context, _, _, uri string) (string, error) {
	if strings.HasPrefix(uri, "data:") {
		return "", fmt.Errorf("no storage backend for inline image")
	}
	return uri, nil
}
