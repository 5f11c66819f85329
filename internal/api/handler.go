package api

import (
	"net/http"

	"stockparty/internal/events"
	"stockparty/internal/game"
	"stockparty/internal/monitor"
	"stockparty/pkg/config"
	"stockparty/pkg/db"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

// Server wires HTTP endpoints around the game state and the event bus.
type Server struct {
	Router  *gin.Engine
	Bus     *events.Bus
	DB      *db.Database
	Game    *game.State
	Metrics *monitor.SystemMetrics
	Cfg     *config.Config

	adminHash []byte // nil disables the admin surface
}

// NewServer builds the router with the full middleware stack.
func NewServer(cfg *config.Config, bus *events.Bus, database *db.Database, state *game.State, metrics *monitor.SystemMetrics) *Server {
	r := gin.New()

	// Middleware stack (order matters!)
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(RequestLogger(metrics))
	r.Use(RateLimitMiddleware())
	r.Use(CORSMiddleware())

	s := &Server{
		Router:  r,
		Bus:     bus,
		DB:      database,
		Game:    state,
		Metrics: metrics,
		Cfg:     cfg,
	}
	if cfg.AdminPassword != "" {
		if hash, err := bcrypt.GenerateFromPassword([]byte(cfg.AdminPassword), bcrypt.DefaultCost); err == nil {
			s.adminHash = hash
		}
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.Router.GET("/health", s.health)
	s.Router.GET("/ws", s.websocket)

	api := s.Router.Group("/api")
	{
		api.POST("/message", s.postMessage)
		api.POST("/gift", s.postGift)
		api.GET("/state", s.getState)
		api.GET("/config", s.getConfig)
		api.GET("/leaderboard", s.getLeaderboard)
		api.GET("/metrics", s.getMetrics)

		api.POST("/auth/login", s.adminLogin)

		admin := api.Group("/admin")
		admin.Use(AuthMiddleware(s.Cfg.JWTSecret))
		{
			admin.POST("/reset", s.adminReset)
			admin.GET("/trades", s.adminTrades)
			admin.GET("/gifts", s.adminGifts)
		}
	}

	// Overlay page, if one is configured. API and /ws routes win; everything
	// else falls through to the static dir.
	if s.Cfg.StaticDir != "" {
		s.Router.NoRoute(gin.WrapH(http.FileServer(http.Dir(s.Cfg.StaticDir))))
	}
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) Start(addr string) error {
	return s.Router.Run(addr)
}
