package server

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/cors"

	"taskboard/internal/access"
	"taskboard/internal/auth"
)

// Services are the collaborators the HTTP layer dispatches to.
type Services struct {
	Auth     *auth.Service
	Projects *access.Projects
	Tasks    *access.Tasks
	Users    *access.Users
	// Ping reports store health; nil means always healthy.
	Ping func(ctx context.Context) error
}

// Options configure the HTTP layer.
type Options struct {
	StaticDir   string
	CORSOrigins []string
}

// Server provides HTTP handlers for the task tracker.
type Server struct {
	engine *gin.Engine
	svc    Services
	opts   Options
	logger *slog.Logger
}

// New constructs the HTTP server with routes and middleware configured.
func New(svc Services, logger *slog.Logger, opts Options) *Server {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	srv := &Server{
		engine: router,
		svc:    svc,
		opts:   opts,
		logger: logger,
	}
	router.Use(srv.logRequests)

	srv.registerRoutes()
	return srv
}

// Engine exposes the underlying Gin engine.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// Handler wraps the engine with CORS handling for the configured origins.
func (s *Server) Handler() http.Handler {
	if len(s.opts.CORSOrigins) == 0 {
		return s.engine
	}
	return cors.New(cors.Options{
		AllowedOrigins:   s.opts.CORSOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	}).Handler(s.engine)
}

// registerRoutes wires all API and static handlers together.
func (s *Server) registerRoutes() {
	api := s.engine.Group("/api")
	{
		api.GET("/healthz", s.handleHealth)

		authRoutes := api.Group("/auth")
		{
			authRoutes.POST("/register", s.handleRegister)
			authRoutes.POST("/login", s.handleLogin)
			authRoutes.GET("/me", s.requireAuth, s.handleMe)
		}

		projects := api.Group("/projects", s.requireAuth)
		{
			projects.GET("", s.handleListProjects)
			projects.POST("", s.handleCreateProject)
			projects.GET(":id", s.handleGetProject)
			projects.PUT(":id", s.handleUpdateProject)
			projects.DELETE(":id", s.handleDeleteProject)
			projects.GET(":id/board", s.handleBoard)
		}

		tasks := api.Group("/tasks", s.requireAuth)
		{
			tasks.GET("", s.handleListTasks)
			tasks.GET("/mine", s.handleMyTasks)
			tasks.POST("", s.handleCreateTask)
			tasks.GET(":id", s.handleGetTask)
			tasks.PUT(":id", s.handleUpdateTask)
			tasks.PATCH(":id/status", s.handleUpdateTaskStatus)
			tasks.DELETE(":id", s.handleDeleteTask)
		}

		users := api.Group("/users", s.requireAuth)
		{
			users.GET("", s.handleListUsers)
			users.GET(":id", s.handleGetUser)
			users.PUT(":id", s.handleUpdateUser)
			users.DELETE(":id", s.handleDeleteUser)
		}
	}

	s.mountStatic()
}

// handleHealth provides a basic readiness endpoint.
func (s *Server) handleHealth(c *gin.Context) {
	if s.svc.Ping != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := s.svc.Ping(ctx); err != nil {
			s.logger.Error("health check failed", slog.String("error", err.Error()))
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// logRequests writes one structured line per API request.
func (s *Server) logRequests(c *gin.Context) {
	start := time.Now()
	c.Next()

	attrs := []any{
		slog.String("method", c.Request.Method),
		slog.String("path", c.Request.URL.Path),
		slog.Int("status", c.Writer.Status()),
		slog.Duration("duration", time.Since(start)),
	}
	if u, ok := userFrom(c); ok {
		attrs = append(attrs, slog.String("user_id", u.ID))
	}
	s.logger.Debug("request", attrs...)
}

// respondSuccess writes payload as JSON, or only the status when payload is nil.
func respondSuccess(c *gin.Context, status int, payload any) {
	if payload == nil {
		c.Status(status)
		return
	}
	c.JSON(status, payload)
}
