package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"tradebattle/internal/battle"
	"tradebattle/internal/decision"
	"tradebattle/internal/logger"
	"tradebattle/internal/store"

	"github.com/gin-gonic/gin"
)

// BattleService is the slice of the orchestrator the HTTP surface needs.
type BattleService interface {
	StartRound() error
	SubmitTrade(req decision.TradeRequest) error
	State() (battle.StateView, error)
}

// Server exposes battle control, the human trade intake and stored results.
type Server struct {
	addr   string
	router *gin.Engine
}

type ServerConfig struct {
	Addr     string
	Battle   BattleService
	Sessions store.Reader
}

func NewServer(cfg ServerConfig) (*Server, error) {
	if cfg.Battle == nil {
		return nil, errors.New("http server requires a battle service")
	}
	if cfg.Addr == "" {
		cfg.Addr = ":9992"
	}
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger())

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	h := &handlers{battle: cfg.Battle, sessions: cfg.Sessions}
	api := router.Group("/api/battle")
	api.POST("/start", h.handleStart)
	api.POST("/trades", h.handleTrade)
	api.GET("/state", h.handleState)
	api.GET("/results", h.handleResults)
	api.GET("/results/:id", h.handleResultDetail)

	return &Server{addr: cfg.Addr, router: router}, nil
}

// Addr returns the configured listen address.
func (s *Server) Addr() string {
	if s == nil {
		return ""
	}
	return s.addr
}

// Router exposes the handler for tests.
func (s *Server) Router() http.Handler { return s.router }

// Start serves HTTP until ctx is cancelled or the listener fails.
func (s *Server) Start(ctx context.Context) error {
	if s == nil {
		return nil
	}
	srv := &http.Server{Addr: s.addr, Handler: s.router}
	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		shCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shCtx)
		return nil
	case err := <-errCh:
		return err
	}
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debugf("%s %s -> %d (%s)", c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start).Truncate(time.Millisecond))
	}
}
