// Package youtube resolves video metadata for YouTube quests through the
// YouTube Data API.
package youtube

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	yt "google.golang.org/api/youtube/v3"

	"questctl/internal/config"
	"questctl/internal/service"
)

// APITimeout is the timeout for a single lookup.
const APITimeout = 5 * time.Second

// ErrInvalidURL is returned when no video ID can be read from a URL.
var ErrInvalidURL = errors.New("not a youtube video url")

// Client implements service.VideoResolver.
type Client struct {
	svc *yt.Service
}

// New creates a client from the configured API key.
// Returns service.ErrVideoLookupDisabled when no key is set.
func New(ctx context.Context, cfg *config.Config) (*Client, error) {
	key := cfg.Settings.YouTubeAPIKey
	if key == "" {
		return nil, service.ErrVideoLookupDisabled
	}
	svc, err := yt.NewService(ctx, option.WithAPIKey(key))
	if err != nil {
		return nil, fmt.Errorf("failed to create youtube service: %w", err)
	}
	return &Client{svc: svc}, nil
}

// NewWithHTTPClient creates a client against a custom endpoint (for testing).
func NewWithHTTPClient(ctx context.Context, endpoint string, httpClient *http.Client) (*Client, error) {
	svc, err := yt.NewService(ctx,
		option.WithHTTPClient(httpClient),
		option.WithEndpoint(endpoint),
	)
	if err != nil {
		return nil, err
	}
	return &Client{svc: svc}, nil
}

// ResolveVideo looks up the title, channel and duration of the video a URL points at.
func (c *Client) ResolveVideo(ctx context.Context, rawURL string) (service.Video, error) {
	id, err := VideoID(rawURL)
	if err != nil {
		return service.Video{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	resp, err := c.svc.Videos.List([]string{"snippet", "contentDetails"}).Id(id).Context(ctx).Do()
	if err != nil {
		return service.Video{}, wrapError(err)
	}
	if len(resp.Items) == 0 {
		return service.Video{}, fmt.Errorf("video %s: %w", id, service.ErrNotFound)
	}

	item := resp.Items[0]
	v := service.Video{ID: item.Id}
	if item.Snippet != nil {
		v.Title = item.Snippet.Title
		v.ChannelTitle = item.Snippet.ChannelTitle
	}
	if item.ContentDetails != nil {
		v.Duration = item.ContentDetails.Duration
	}
	return v, nil
}

// VideoID extracts the video ID from watch, short-link, shorts and embed URLs.
func VideoID(rawURL string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || u.Host == "" {
		return "", ErrInvalidURL
	}
	host := strings.TrimPrefix(strings.ToLower(u.Host), "www.")
	host = strings.TrimPrefix(host, "m.")
	path := strings.Trim(u.Path, "/")

	var id string
	switch host {
	case "youtu.be":
		id = path
	case "youtube.com", "music.youtube.com":
		switch {
		case path == "watch":
			id = u.Query().Get("v")
		case strings.HasPrefix(path, "shorts/"):
			id = strings.TrimPrefix(path, "shorts/")
		case strings.HasPrefix(path, "embed/"):
			id = strings.TrimPrefix(path, "embed/")
		case strings.HasPrefix(path, "live/"):
			id = strings.TrimPrefix(path, "live/")
		}
	}
	if i := strings.IndexByte(id, '/'); i >= 0 {
		id = id[:i]
	}
	if id == "" {
		return "", ErrInvalidURL
	}
	return id, nil
}

// wrapError maps API errors to service errors.
func wrapError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("request timed out: %w", err)
	}
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		switch gerr.Code {
		case http.StatusNotFound:
			return service.ErrNotFound
		case http.StatusBadRequest, http.StatusForbidden:
			return &service.APIError{Status: gerr.Code, Detail: "youtube: " + gerr.Message}
		}
	}
	return fmt.Errorf("youtube lookup failed: %w", err)
}

var _ service.VideoResolver = (*Client)(nil)
