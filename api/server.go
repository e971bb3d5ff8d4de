package api

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"redditinsights/types"
)

// ErrNoSource is returned by GET /data when no data source is configured
var ErrNoSource = errors.New("Database not connected")

// DataSource serves the latest ranked posts
type DataSource interface {
	LatestPosts(ctx context.Context, subreddits []string, limit int) (types.Listing, error)
}

// Refresher regenerates the data behind DataSource
type Refresher interface {
	RunOnce(ctx context.Context) (types.Listing, error)
}

// Server holds the handlers' dependencies
type Server struct {
	source     DataSource
	refresher  Refresher
	subreddits []string
	limit      int
	log        *logrus.Logger
	metrics    *metrics

	// refreshMu serializes refresh cycles from HTTP and the scheduler
	refreshMu sync.Mutex
}

// NewServer creates a server. source may be nil, in which case GET /data fails.
func NewServer(source DataSource, refresher Refresher, subreddits []string, limit int, logger *logrus.Logger) *Server {
	return &Server{
		source:     source,
		refresher:  refresher,
		subreddits: subreddits,
		limit:      limit,
		log:        logger,
		metrics:    newMetrics(),
	}
}

// Refresh runs one refresh cycle. Concurrent callers wait for each other.
func (s *Server) Refresh(ctx context.Context) error {
	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()

	start := time.Now()
	_, err := s.refresher.RunOnce(ctx)
	s.metrics.observeRefresh(time.Since(start), err)
	return err
}

// Registry exposes the server's metrics registry
func (s *Server) Registry() *prometheus.Registry {
	return s.metrics.registry
}

// NewRouter constructs a Gin engine with registered routes.
func NewRouter(s *Server, allowedOrigins []string) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestLogger(s.log))
	r.Use(CORS(allowedOrigins))

	RegisterDataRoutes(r, s)
	RegisterRefreshRoutes(r, s)
	RegisterHealthRoutes(r)
	RegisterMetricsRoutes(r, s)
	return r
}
