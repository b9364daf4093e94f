package api

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/proptycoon/backend/internal/api/handlers"
	"github.com/proptycoon/backend/internal/api/middleware/auth"
	"github.com/proptycoon/backend/internal/config"
	"github.com/proptycoon/backend/internal/db/mongodb"
	redisdb "github.com/proptycoon/backend/internal/db/redis"
	"github.com/proptycoon/backend/internal/game/manager"
	gamews "github.com/proptycoon/backend/internal/game/websocket"
)

// CustomValidator wraps go-playground/validator for echo
type CustomValidator struct {
	validator *validator.Validate
}

// Validate validates the request payload
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

// RequestMetrics tracks simple request counters, exposed on /metrics.
type RequestMetrics struct {
	mu             sync.Mutex
	TotalRequests  int64
	FailedRequests int64
	ByRoute        map[string]int64
}

func newRequestMetrics() *RequestMetrics {
	return &RequestMetrics{ByRoute: make(map[string]int64)}
}

func (m *RequestMetrics) record(route string, failed bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.TotalRequests++
	if failed {
		m.FailedRequests++
	}
	m.ByRoute[route]++
}

func (m *RequestMetrics) snapshot() map[string]interface{} {
	m.mu.Lock()
	defer m.mu.Unlock()
	byRoute := make(map[string]int64, len(m.ByRoute))
	for route, count := range m.ByRoute {
		byRoute[route] = count
	}
	return map[string]interface{}{
		"totalRequests":  m.TotalRequests,
		"failedRequests": m.FailedRequests,
		"byRoute":        byRoute,
	}
}

// Server is the HTTP API server
type Server struct {
	echo    *echo.Echo
	cfg     *config.Config
	logger  *zap.SugaredLogger
	metrics *RequestMetrics

	gameManager *manager.GameManager
	hub         *gamews.Hub
	userStore   *mongodb.UserStore
	mongoClient *mongodb.CircuitBreakerClient
	redisClient *redisdb.CircuitBreakerClient
}

// NewServer creates the API server on top of already-connected dependencies.
func NewServer(
	cfg *config.Config,
	logger *zap.SugaredLogger,
	gameManager *manager.GameManager,
	hub *gamews.Hub,
	userStore *mongodb.UserStore,
	mongoClient *mongodb.CircuitBreakerClient,
	redisClient *redisdb.CircuitBreakerClient,
) *Server {
	s := &Server{
		echo:        echo.New(),
		cfg:         cfg,
		logger:      logger,
		metrics:     newRequestMetrics(),
		gameManager: gameManager,
		hub:         hub,
		userStore:   userStore,
		mongoClient: mongoClient,
		redisClient: redisClient,
	}

	s.echo.HideBanner = true
	s.echo.Validator = &CustomValidator{validator: validator.New()}

	s.configureMiddleware()
	s.configureRoutes()

	return s
}

func (s *Server) configureMiddleware() {
	s.echo.Use(middleware.Recover())
	s.echo.Use(middleware.RequestID())
	s.echo.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAuthorization},
	}))

	// Request logging plus the metrics counter, one middleware so each
	// request is counted exactly once.
	s.echo.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			route := c.Path()
			status := c.Response().Status
			if err != nil {
				if he, ok := err.(*echo.HTTPError); ok {
					status = he.Code
				} else {
					status = http.StatusInternalServerError
				}
			}
			s.metrics.record(route, status >= http.StatusInternalServerError)

			s.logger.Infow("request",
				"method", c.Request().Method,
				"route", route,
				"status", status,
				"durationMs", time.Since(start).Milliseconds(),
				"requestId", c.Response().Header().Get(echo.HeaderXRequestID),
			)
			return err
		}
	})
}

func (s *Server) configureRoutes() {
	authHandler := handlers.NewAuthHandler(s.cfg, s.userStore, s.logger)
	userHandler := handlers.NewUserHandler(s.userStore, s.logger)
	gameHandler := handlers.NewGameHandler(s.gameManager, s.logger)
	wsHandler := handlers.NewWebSocketHandler(s.hub, s.gameManager, s.logger)
	healthHandler := handlers.NewHealthHandler(s.mongoClient, s.redisClient, s.logger)

	jwtMiddleware := auth.JWTMiddleware(s.cfg.JWT.Secret)

	// Auth routes, no JWT required
	authGroup := s.echo.Group("/api/v1/auth")
	authGroup.POST("/register", authHandler.Register)
	authGroup.POST("/login", authHandler.Login)
	authGroup.POST("/refresh-token", authHandler.RefreshToken, jwtMiddleware)
	authGroup.POST("/logout", authHandler.Logout, jwtMiddleware)

	// User routes
	userGroup := s.echo.Group("/api/v1/users", jwtMiddleware)
	userGroup.GET("/me", userHandler.GetProfile)
	userGroup.PUT("/me", userHandler.UpdateProfile)

	// Lobby and game routes
	gamesGroup := s.echo.Group("/api/v1/games", jwtMiddleware)
	gamesGroup.POST("", gameHandler.CreateGame)
	gamesGroup.GET("", gameHandler.ListGames)
	gamesGroup.POST("/join", gameHandler.JoinGame)
	gamesGroup.GET("/code/:code", gameHandler.GetGameByCode)
	gamesGroup.GET("/:gameId", gameHandler.GetGame)
	gamesGroup.GET("/:gameId/state", gameHandler.GetGameState)
	gamesGroup.POST("/:gameId/start", gameHandler.StartGame)
	gamesGroup.POST("/:gameId/bots", gameHandler.AddBot)

	// In-game action routes
	actions := gamesGroup.Group("/:gameId/actions")
	actions.POST("/roll-dice", gameHandler.RollDice)
	actions.POST("/buy-property", gameHandler.BuyProperty)
	actions.POST("/decline-property", gameHandler.DeclineProperty)
	actions.POST("/pay", gameHandler.Pay)
	actions.POST("/apply-card", gameHandler.ApplyCard)
	actions.POST("/pay-jail-fine", gameHandler.PayJailFine)
	actions.POST("/use-jail-card", gameHandler.UseJailCard)
	actions.POST("/end-turn", gameHandler.EndTurn)
	actions.POST("/propose-trade", gameHandler.ProposeTrade)
	actions.POST("/respond-trade", gameHandler.RespondToTrade)

	// WebSocket endpoint; the JWT middleware accepts ?token= for upgrades
	s.echo.GET("/ws/:gameId", wsHandler.HandleConnection, jwtMiddleware)

	// Health and metrics
	s.echo.GET("/health", healthHandler.Liveness)
	s.echo.GET("/health/detailed", healthHandler.Check)
	s.echo.GET("/metrics", func(c echo.Context) error {
		return c.JSON(http.StatusOK, s.metrics.snapshot())
	})
}

// Start begins listening for requests
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Server.Host, s.cfg.Server.Port)
	s.logger.Infow("starting API server", "address", addr)

	s.echo.Server.ReadTimeout = time.Duration(s.cfg.Server.ReadTimeout) * time.Second
	s.echo.Server.WriteTimeout = time.Duration(s.cfg.Server.WriteTimeout) * time.Second

	if err := s.echo.Start(addr); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
