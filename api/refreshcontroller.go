package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
)

// RegisterRefreshRoutes registers POST /refresh
func RegisterRefreshRoutes(r *gin.Engine, s *Server) {
	r.POST("/refresh", s.handleRefresh)
}

// handleRefresh runs the collect cycle and replies once it has finished.
// Any request body is ignored. A client that goes away does not cut the cycle short.
func (s *Server) handleRefresh(c *gin.Context) {
	if err := s.Refresh(context.WithoutCancel(c.Request.Context())); err != nil {
		s.log.WithError(err).Error("Refresh failed")
		respondWithError(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "message": "Data refreshed successfully"})
}
