package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"token-sentry/config"
	"token-sentry/database"
	"token-sentry/database/models"
	"token-sentry/tracker"
)

// Server exposes the operational status endpoints. It carries no bot
// functionality, just read-only counters for dashboards.
type Server struct {
	router *gin.Engine
	srv    *http.Server

	db  *database.RawDB
	trk *tracker.Tracker
}

func New(cfg *config.ServerConfig, db *database.RawDB, trk *tracker.Tracker) *Server {
	router := gin.Default()
	router.Use(cors.Default())

	port := cfg.HttpPort
	if port == 0 {
		port = 8080
	}
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: router,
	}

	return &Server{
		router: router,
		srv:    srv,
		db:     db,
		trk:    trk,
	}
}

func (s *Server) Start() {
	s.router.GET("/health", s.health)
	s.router.GET("/stats", s.stats)
	s.router.GET("/kol", s.kol)

	go func() {
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			panic(err)
		}
	}()
}

func (s *Server) Stop() {
	if err := s.srv.Shutdown(context.Background()); err != nil {
		panic(err)
	}
}

func (s *Server) health(c *gin.Context) {
	c.JSON(200, gin.H{
		"status": "ok",
	})
}

func (s *Server) stats(c *gin.Context) {
	c.JSON(200, gin.H{
		"tracker":              s.trk.Stats(),
		"users":                s.db.CountUsers(),
		"premium_users":        s.db.CountPremiumUsers(),
		"active_subscriptions": s.db.CountActiveSubscriptions(),
		"last_premium_sweep":   s.db.GetMeta(models.LastPremiumSweepAt, ""),
	})
}

func (s *Server) kol(c *gin.Context) {
	c.JSON(200, gin.H{
		"kol_wallets": s.db.GetKOLWallets(),
	})
}
