package web

import (
	"errors"
	"net/http"
	"strings"

	"Cadence/playlist"
	"Cadence/stream"
	"Cadence/yt"

	"github.com/gin-gonic/gin"
)

// POST /search
func (s *Server) searchHandler(c *gin.Context) {
	var req searchRequest
	if err := decodeStrict(c.Request.Body, &req); err != nil {
		abort(c, http.StatusBadRequest, err.Error())
		return
	}
	query := strings.TrimSpace(req.Query)
	if query == "" {
		abort(c, http.StatusBadRequest, "Query is required")
		return
	}

	results, err := s.lookup.Search(c.Request.Context(), query, s.searchLimit)
	if err != nil {
		abortWithError(c, err)
		return
	}
	if results == nil {
		results = []yt.Track{}
	}

	c.JSON(http.StatusOK, searchResponse{Success: true, Results: results})
}

// POST /add_to_playlist
func (s *Server) addToPlaylistHandler(c *gin.Context) {
	var req urlRequest
	if err := decodeStrict(c.Request.Body, &req); err != nil {
		abort(c, http.StatusBadRequest, err.Error())
		return
	}
	link := strings.TrimSpace(req.URL)
	if link == "" {
		abort(c, http.StatusBadRequest, "URL is required")
		return
	}

	track, _, err := s.lookup.Resolve(c.Request.Context(), link)
	if errors.Is(err, yt.ErrInvalidLink) {
		abort(c, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		abortWithError(c, err)
		return
	}

	length := s.session.Append(track)
	c.JSON(http.StatusOK, addResponse{Success: true, Track: track, PlaylistLength: length})
}

// POST /get_stream_url
func (s *Server) getStreamURLHandler(c *gin.Context) {
	var req urlRequest
	if err := decodeStrict(c.Request.Body, &req); err != nil {
		abort(c, http.StatusBadRequest, err.Error())
		return
	}
	link := strings.TrimSpace(req.URL)
	if link == "" {
		abort(c, http.StatusBadRequest, "URL is required")
		return
	}

	res := s.streams.GetStreamURL(c.Request.Context(), link)
	switch {
	case res.Status == stream.Ok:
		c.JSON(http.StatusOK, streamResponse{Success: true, StreamURL: res.URL})
	case res.Status == stream.NotFound:
		abort(c, http.StatusNotFound, "Could not get stream URL")
	case errors.Is(res.Err, stream.ErrMalformedLink):
		abort(c, http.StatusBadRequest, res.Err.Error())
	default:
		abortWithError(c, res.Err)
	}
}

// GET /playlist
func (s *Server) playlistHandler(c *gin.Context) {
	snap := s.session.List()
	c.JSON(http.StatusOK, playlistResponse{
		Success:      true,
		Playlist:     snap.Playlist,
		CurrentTrack: snap.CurrentTrack,
		IsPlaying:    snap.IsPlaying,
		CurrentIndex: snap.CurrentIndex,
	})
}

// POST /play
func (s *Server) playHandler(c *gin.Context) {
	index, ok := bindIndex(c)
	if !ok {
		return
	}

	track, err := s.session.SelectAndPlay(index)
	if err != nil {
		abort(c, http.StatusBadRequest, "Invalid track index")
		return
	}
	c.JSON(http.StatusOK, currentResponse{Success: true, CurrentTrack: track})
}

// POST /next and /previous
func (s *Server) advanceHandler(dir playlist.Direction) gin.HandlerFunc {
	return func(c *gin.Context) {
		track, err := s.session.Advance(dir)
		if err != nil {
			abort(c, http.StatusBadRequest, "No tracks in playlist")
			return
		}
		c.JSON(http.StatusOK, currentResponse{Success: true, CurrentTrack: track})
	}
}

// POST /remove_track
func (s *Server) removeTrackHandler(c *gin.Context) {
	index, ok := bindIndex(c)
	if !ok {
		return
	}

	removed, length, err := s.session.Remove(index)
	if err != nil {
		abort(c, http.StatusBadRequest, "Invalid track index")
		return
	}
	c.JSON(http.StatusOK, removeResponse{Success: true, RemovedTrack: removed, PlaylistLength: length})
}

// bindIndex decodes an {index} body, writing a 400 when it is missing
func bindIndex(c *gin.Context) (int, bool) {
	var req indexRequest
	if err := decodeStrict(c.Request.Body, &req); err != nil {
		abort(c, http.StatusBadRequest, err.Error())
		return 0, false
	}
	if req.Index == nil {
		abort(c, http.StatusBadRequest, "Index is required")
		return 0, false
	}
	return *req.Index, true
}
