package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RegisterDataRoutes registers GET /data
func RegisterDataRoutes(r *gin.Engine, s *Server) {
	r.GET("/data", s.handleData)
}

// handleData returns the latest ranked posts per subreddit.
// The t query parameter sent by clients is a cache-buster and is ignored.
func (s *Server) handleData(c *gin.Context) {
	c.Header("Cache-Control", "no-store")

	if s.source == nil {
		s.metrics.dataRequests.WithLabelValues("error").Inc()
		respondWithError(c, http.StatusInternalServerError, ErrNoSource.Error())
		return
	}

	listing, err := s.source.LatestPosts(c.Request.Context(), s.subreddits, s.limit)
	if err != nil {
		s.metrics.dataRequests.WithLabelValues("error").Inc()
		s.log.WithError(err).Error("Failed to load posts")
		respondWithError(c, http.StatusInternalServerError, err.Error())
		return
	}

	s.metrics.dataRequests.WithLabelValues("ok").Inc()
	c.JSON(http.StatusOK, listing)
}

func respondWithError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"status": "error", "message": message})
}
