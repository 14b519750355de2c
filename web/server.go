// Package web serves the JSON playlist API over the shared session.
package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"Cadence/playlist"
	"Cadence/stream"
	"Cadence/yt"

	"github.com/Strum355/log"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Lookup finds and resolves media
type Lookup interface {
	Search(ctx context.Context, query string, limit int) ([]yt.Track, error)
	Resolve(ctx context.Context, link string) (yt.Track, bool, error)
}

// StreamResolver turns watch URLs into playable stream URLs
type StreamResolver interface {
	GetStreamURL(ctx context.Context, videoURL string) stream.Result
}

// Server holds the handlers' collaborators
type Server struct {
	session     *playlist.Session
	lookup      Lookup
	streams     StreamResolver
	searchLimit int
}

// NewServer returns a Server operating on session
func NewServer(session *playlist.Session, lookup Lookup, streams StreamResolver, searchLimit int) *Server {
	return &Server{
		session:     session,
		lookup:      lookup,
		streams:     streams,
		searchLimit: searchLimit,
	}
}

// Router builds the gin engine with every route registered
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.POST("/search", s.searchHandler)
	r.POST("/add_to_playlist", s.addToPlaylistHandler)
	r.POST("/get_stream_url", s.getStreamURLHandler)
	r.GET("/playlist", s.playlistHandler)
	r.POST("/play", s.playHandler)
	r.POST("/next", s.advanceHandler(playlist.Next))
	r.POST("/previous", s.advanceHandler(playlist.Previous))
	r.POST("/remove_track", s.removeTrackHandler)

	return r
}

// Run serves on addr until ctx is cancelled
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:    addr,
		Handler: s.Router(),
	}

	errs := make(chan error, 1)
	go func() {
		errs <- srv.ListenAndServe()
	}()
	log.Info("HTTP server listening on " + addr)

	select {
	case err := <-errs:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errs; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// requestLogger tags each request with an ID and logs its outcome
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := uuid.NewString()
		ctx := context.WithValue(c.Request.Context(), log.Key, log.Fields{
			"request_id": requestID,
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
		})
		c.Request = c.Request.WithContext(ctx)
		c.Header("X-Request-ID", requestID)

		start := time.Now()
		c.Next()

		log.WithContext(ctx).Info(fmt.Sprintf("Handled request: %d in %s", c.Writer.Status(), time.Since(start)))
	}
}

// abort writes the error envelope
func abort(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, errorResponse{Error: message})
}

// abortWithError logs an internal failure and writes it as a 500
func abortWithError(c *gin.Context, err error) {
	log.WithContext(c.Request.Context()).WithError(err).Error("Request failed")
	abort(c, http.StatusInternalServerError, err.Error())
}
