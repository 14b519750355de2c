package web

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"Cadence/yt"
)

type searchRequest struct {
	Query string `json:"query"`
}

type urlRequest struct {
	URL string `json:"url"`
}

type indexRequest struct {
	Index *int `json:"index"`
}

type searchResponse struct {
	Success bool       `json:"success"`
	Results []yt.Track `json:"results"`
}

type addResponse struct {
	Success        bool     `json:"success"`
	Track          yt.Track `json:"track"`
	PlaylistLength int      `json:"playlist_length"`
}

type streamResponse struct {
	Success   bool   `json:"success"`
	StreamURL string `json:"stream_url"`
}

type currentResponse struct {
	Success      bool     `json:"success"`
	CurrentTrack yt.Track `json:"current_track"`
}

type removeResponse struct {
	Success        bool     `json:"success"`
	RemovedTrack   yt.Track `json:"removed_track"`
	PlaylistLength int      `json:"playlist_length"`
}

type playlistResponse struct {
	Success      bool       `json:"success"`
	Playlist     []yt.Track `json:"playlist"`
	CurrentTrack *yt.Track  `json:"current_track"`
	IsPlaying    bool       `json:"is_playing"`
	CurrentIndex int        `json:"current_index"`
}

type errorResponse struct {
	Error string `json:"error"`
}

var errEmptyBody = errors.New("request body is required")

// decodeStrict reads exactly one JSON object into v, rejecting unknown fields
func decodeStrict(body io.Reader, v any) error {
	if body == nil {
		return errEmptyBody
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return errEmptyBody
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	if dec.More() {
		return errors.New("invalid request body: trailing data")
	}
	return nil
}
