// Package api exposes the opportunity tracker over HTTP with gin.
package api

import (
	"context"
	stderrors "errors"
	"net"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/michaelprosario/career-catalyst/internal/activity"
	"github.com/michaelprosario/career-catalyst/internal/coverletter"
	"github.com/michaelprosario/career-catalyst/internal/jobsearch"
	"github.com/michaelprosario/career-catalyst/internal/models"
	"github.com/michaelprosario/career-catalyst/internal/profile"
	"github.com/michaelprosario/career-catalyst/internal/repository"
	"github.com/michaelprosario/career-catalyst/internal/service"
)

// Opportunities is the management service as the handlers use it.
type Opportunities interface {
	Save(ctx context.Context, params models.UserOpportunityParams) service.AppResult
	UpdateUserOpportunity(ctx context.Context, o *models.UserOpportunity) service.AppResult
	GetUserOpportunityByID(ctx context.Context, id string) service.GetDocumentResult
	DeleteUserOpportunityByID(ctx context.Context, id string) service.AppResult
	Apply(ctx context.Context, id, resumeID, coverLetterID string) (*models.UserOpportunity, error)
	UpdateApplicationStatus(ctx context.Context, id string, status models.ApplicationStatus) (*models.UserOpportunity, error)
	AddNotes(ctx context.Context, id, notes string) (*models.UserOpportunity, error)
	Search(ctx context.Context, criteria repository.SearchCriteria) ([]*models.UserOpportunity, error)
	GetByType(ctx context.Context, t models.OpportunityType) ([]*models.UserOpportunity, error)
	GetActive(ctx context.Context) ([]*models.UserOpportunity, error)
	GetUserOpportunities(ctx context.Context, userID string) ([]*models.UserOpportunity, error)
	GetByApplicationStatus(ctx context.Context, userID string, status models.ApplicationStatus) ([]*models.UserOpportunity, error)
}

type Profiles interface {
	Load(ctx context.Context, userID string) (*profile.Profile, error)
	Save(ctx context.Context, p profile.Profile) error
	Delete(ctx context.Context, userID string) error
}

type CoverLetters interface {
	Generate(ctx context.Context, userID, opportunityID string) coverletter.Result
}

// Deps are the collaborators behind the routes. Opportunities is required;
// a nil optional collaborator turns its routes into 503 responses.
type Deps struct {
	Opportunities Opportunities
	Profiles      Profiles
	CoverLetters  CoverLetters
	Searcher      jobsearch.Searcher
	Journal       activity.Journal
}

type Options struct {
	Addr           string
	AllowedOrigins []string
	ServiceName    string
	Version        string
}

type Server struct {
	opts   Options
	logger *zap.Logger
	engine *gin.Engine
	http   *http.Server
	now    func() time.Time
}

type handler struct {
	Deps
	opts   Options
	logger *zap.Logger
	now    func() time.Time
}

type Option func(*Server)

func WithClock(now func() time.Time) Option {
	return func(s *Server) {
		s.now = now
	}
}

func NewServer(opts Options, deps Deps, logger *zap.Logger, options ...Option) *Server {
	s := &Server{
		opts:   opts,
		logger: logger,
		now:    time.Now,
	}
	for _, o := range options {
		o(s)
	}

	engine := gin.New()
	engine.Use(gin.Recovery(), requestLogger(logger))
	if c, ok := corsConfig(opts.AllowedOrigins); ok {
		engine.Use(cors.New(c))
	}

	h := &handler{Deps: deps, opts: opts, logger: logger, now: s.now}
	h.register(engine)

	s.engine = engine
	s.http = &http.Server{
		Addr:              opts.Addr,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

func (s *Server) Handler() http.Handler {
	return s.engine
}

// Start binds the listener and serves in the background, so a bad address
// fails the caller instead of the goroutine.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.opts.Addr)
	if err != nil {
		return err
	}
	s.logger.Info("http server listening", zap.String("addr", ln.Addr().String()))
	go func() {
		if err := s.http.Serve(ln); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			s.logger.Error("http server stopped", zap.Error(err))
		}
	}()
	return nil
}

func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	return s.http.Shutdown(ctx)
}

func (h *handler) register(r *gin.Engine) {
	r.GET("/api/v1/health", h.health)

	opps := r.Group("/api/user-opportunities")
	{
		opps.POST("", h.createOpportunity)
		opps.POST("/search", h.searchOpportunities)
		opps.GET("/user/:user_id", h.listUserOpportunities)
		opps.GET("/:id", h.getOpportunity)
		opps.PUT("/:id", h.updateOpportunity)
		opps.DELETE("/:id", h.deleteOpportunity)
		opps.POST("/:id/apply", h.apply)
		opps.PATCH("/:id/status", h.updateStatus)
		opps.PUT("/:id/notes", h.addNotes)
		opps.GET("/:id/history", h.history)
	}

	r.GET("/api/opportunities/active", h.listActive)
	r.GET("/api/opportunities/type/:type", h.listByType)

	myData := r.Group("/api/my-data")
	{
		myData.GET("/:user_id", h.getProfile)
		myData.PUT("/:user_id", h.saveProfile)
		myData.DELETE("/:user_id", h.deleteProfile)
	}

	r.POST("/api/cover-letter/generate", h.generateCoverLetter)

	jobs := r.Group("/api/job-search")
	{
		jobs.POST("/search", h.searchJobs)
		jobs.POST("/bookmark", h.bookmarkJob)
	}
}

func (h *handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": h.opts.ServiceName,
		"version": h.opts.Version,
	})
}

func corsConfig(origins []string) (cors.Config, bool) {
	if len(origins) == 0 {
		return cors.Config{}, false
	}
	c := cors.DefaultConfig()
	c.AllowMethods = []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions}
	c.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}
	for _, o := range origins {
		if o == "*" {
			c.AllowAllOrigins = true
			return c, true
		}
	}
	c.AllowOrigins = origins
	c.AllowCredentials = true
	return c, true
}

func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debug("handled request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)))
	}
}
