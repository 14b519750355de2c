// Package stream resolves watch URLs into short-lived playable stream URLs
// through the external song API.
package stream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Strum355/log"
)

const (
	attemptTimeout = 10 * time.Second
	maxAttempts    = 2
	retryDelay     = 500 * time.Millisecond
)

var (
	ErrMalformedLink = errors.New("could not extract video ID from link")
	ErrNotConfigured = errors.New("API_KEY or API_URL missing in config")
)

// Status classifies a resolution outcome
type Status int

const (
	// Ok carries a playable URL
	Ok Status = iota
	// NotFound means the stream is not available, either definitively or
	// after the retry budget was spent
	NotFound
	// Failure means the request could not be made at all
	Failure
)

// Result is the outcome of GetStreamURL. URL is set for Ok, Err for Failure.
type Result struct {
	Status Status
	URL    string
	Err    error
}

type songResponse struct {
	Status    string `json:"status"`
	StreamURL string `json:"stream_url"`
}

// Resolver calls {API_URL}/song/{id}?key={API_KEY}
type Resolver struct {
	client     *http.Client
	apiURL     string
	apiKey     string
	retryDelay time.Duration
}

// NewResolver returns a Resolver for the given API endpoint and key
func NewResolver(apiURL, apiKey string) *Resolver {
	return &Resolver{
		client:     &http.Client{Timeout: attemptTimeout},
		apiURL:     strings.TrimRight(apiURL, "/"),
		apiKey:     apiKey,
		retryDelay: retryDelay,
	}
}

// ExtractVideoID returns the text after the last "v=" up to the next "&".
// A link without "v=" is taken whole.
func ExtractVideoID(link string) (string, error) {
	id := link
	if idx := strings.LastIndex(link, "v="); idx >= 0 {
		id = link[idx+len("v="):]
	}
	if idx := strings.Index(id, "&"); idx >= 0 {
		id = id[:idx]
	}
	if id == "" {
		return "", fmt.Errorf("%w: %s", ErrMalformedLink, link)
	}
	return id, nil
}

// GetStreamURL resolves videoURL. A 404 is final. Any other failure is
// retried once after a short delay and then reported as NotFound.
func (r *Resolver) GetStreamURL(ctx context.Context, videoURL string) Result {
	videoID, err := ExtractVideoID(videoURL)
	if err != nil {
		return Result{Status: Failure, Err: err}
	}
	if r.apiURL == "" || r.apiKey == "" {
		return Result{Status: Failure, Err: ErrNotConfigured}
	}

	endpoint := fmt.Sprintf("%s/song/%s?key=%s", r.apiURL, url.PathEscape(videoID), url.QueryEscape(r.apiKey))

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		streamURL, final, err := r.fetch(ctx, endpoint)
		if err != nil {
			log.WithError(err).Error(fmt.Sprintf("Stream request failed (attempt %d/%d)", attempt, maxAttempts))
		}
		if streamURL != "" {
			return Result{Status: Ok, URL: streamURL}
		}
		if final {
			return Result{Status: NotFound}
		}

		if attempt < maxAttempts {
			select {
			case <-ctx.Done():
				return Result{Status: NotFound}
			case <-time.After(r.retryDelay):
			}
		}
	}

	return Result{Status: NotFound}
}

// fetch performs one attempt. final is set when the API answered 404.
func (r *Resolver) fetch(ctx context.Context, endpoint string) (streamURL string, final bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", false, err
	}

	res, err := r.client.Do(req)
	if err != nil {
		return "", false, err
	}
	defer res.Body.Close()

	switch res.StatusCode {
	case http.StatusOK:
		var body songResponse
		if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
			return "", false, fmt.Errorf("decoding song response: %w", err)
		}
		if body.Status == "done" && body.StreamURL != "" {
			return body.StreamURL, false, nil
		}
		return "", false, nil
	case http.StatusNotFound:
		return "", true, nil
	default:
		return "", false, fmt.Errorf("unexpected status %d", res.StatusCode)
	}
}
