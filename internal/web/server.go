// Package web serves the portfolio contact pages and turns contact intents
// into browser handoffs over HTTP.
package web

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Zachkp/portfolio-contact/internal/config"
	"github.com/Zachkp/portfolio-contact/internal/contactform"
	"github.com/Zachkp/portfolio-contact/internal/dispatch"
	"github.com/Zachkp/portfolio-contact/internal/handoff"
	"github.com/Zachkp/portfolio-contact/internal/metrics"
	"github.com/Zachkp/portfolio-contact/internal/site"
	"github.com/Zachkp/portfolio-contact/pkg/logging"
)

//go:embed templates/*.html
var templatesFS embed.FS

// Deps are the collaborators a Server needs. Store and Gatherer may be nil.
type Deps struct {
	Config   *config.Config
	Owner    site.Profile
	Logger   *logging.Logger
	Store    *handoff.Store
	Metrics  *metrics.ContactMetrics
	Gatherer prometheus.Gatherer
}

// Server is the HTTP front end.
type Server struct {
	cfg      *config.Config
	owner    site.Profile
	logger   *logging.Logger
	store    *handoff.Store
	metrics  *metrics.ContactMetrics
	gatherer prometheus.Gatherer
	router   *dispatch.Router
	limiter  *RateLimiter
	forms    *formRegistry

	adminToken    string
	adminUsername string
	adminPassword string
}

func New(deps Deps) (*Server, error) {
	if deps.Config == nil {
		return nil, errors.New("web: config is required")
	}
	if deps.Logger == nil {
		deps.Logger = logging.Default()
	}
	if err := deps.Owner.Validate(); err != nil {
		return nil, fmt.Errorf("web: %w", err)
	}

	var recorder dispatch.Recorder
	if deps.Store != nil {
		recorder = deps.Store
	}

	s := &Server{
		cfg:      deps.Config,
		owner:    deps.Owner,
		logger:   deps.Logger,
		store:    deps.Store,
		metrics:  deps.Metrics,
		gatherer: deps.Gatherer,
		router:   dispatch.NewRouter(deps.Logger, deps.Metrics, recorder),
		limiter:  NewRateLimiter(deps.Config.RateLimitRPS, deps.Config.RateLimitBurst),
	}
	s.forms = newFormRegistry(func() *contactform.Form {
		return contactform.NewForm(contactform.WithTimings(s.cfg.SubmitDelay, s.cfg.SuccessWindow))
	})
	if err := s.initAdmin(); err != nil {
		return nil, err
	}
	return s, nil
}

// Engine builds the gin engine with every route registered.
func (s *Server) Engine() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), RequestLogger(s.logger))
	r.SetHTMLTemplate(template.Must(template.New("").ParseFS(templatesFS, "templates/*.html")))

	if s.store != nil && s.cfg.TrackVisits {
		r.Use(VisitTracking(s.store, s.logger))
	}

	r.GET("/", s.handleIndex)
	r.GET("/contact-form", s.handleContactForm)
	r.GET("/resume", s.handleResume)
	r.GET("/privacy", s.handlePrivacy)
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if s.gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{})))
	}

	api := r.Group("/api")
	api.GET("/contact-info", s.handleContactInfo)
	api.GET("/classify", s.handleClassify)

	contact := r.Group("/contact", s.limiter.Middleware())
	contact.POST("", s.handleContactSubmit)
	contact.POST("/start-project", s.handleStartProject)
	contact.POST("/schedule-call", s.handleScheduleCall)

	s.setupAdminRoutes(r)
	return r
}

// Run serves until ctx is cancelled, then shuts down gracefully. It also
// runs the retention cleanup once a day.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              ":" + s.cfg.Port,
		Handler:           s.Engine(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	if s.store != nil {
		go s.cleanupLoop(ctx, 24*time.Hour)
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", "addr", srv.Addr, "env", s.cfg.Env)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.logger.Info("http server shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func (s *Server) cleanupLoop(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		if _, err := s.store.Cleanup(ctx, s.cfg.VisitRetention); err != nil && ctx.Err() == nil {
			s.logger.Warn("privacy cleanup failed", "error", err)
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// visitorKey identifies the caller for per-visitor state. The raw address
// is only used when there is no store to salt the hash.
func (s *Server) visitorKey(c *gin.Context) string {
	if s.store == nil {
		return c.ClientIP()
	}
	return s.store.HashIP(c.ClientIP())
}

func (s *Server) hashIP(ip string) string {
	if s.store == nil {
		return ""
	}
	return s.store.HashIP(ip)
}
