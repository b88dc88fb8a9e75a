package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"helmsman/internal/logger"
	"helmsman/internal/orchestrator"
	"helmsman/internal/risk"
	"helmsman/internal/session"
	"helmsman/internal/store"
)

// Server exposes operator-facing status endpoints: orchestrator phase,
// effective strategy, risk counters and recent decisions.
type Server struct {
	addr  string
	orch  *orchestrator.Orchestrator
	sess  *session.Session
	guard *risk.Guard
	st    *store.Store
	srv   *http.Server
}

func NewServer(addr string, orch *orchestrator.Orchestrator, sess *session.Session, guard *risk.Guard, st *store.Store) *Server {
	return &Server{addr: addr, orch: orch, sess: sess, guard: guard, st: st}
}

func (s *Server) Run(ctx context.Context) error {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/api/status", s.handleStatus)
	router.GET("/api/decisions", s.handleDecisions)

	s.srv = &http.Server{Addr: s.addr, Handler: router}
	errCh := make(chan error, 1)
	go func() {
		logger.Infof("status server listening on %s", s.addr)
		errCh <- s.srv.ListenAndServe()
	}()
	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.srv.Shutdown(shutdownCtx)
		return ctx.Err()
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func (s *Server) handleStatus(c *gin.Context) {
	resp := gin.H{"phase": s.orch.Phase().String()}
	if s.sess != nil {
		sel := s.sess.Selection()
		resp["strategy"] = sel.Strategy.String()
		resp["symbols"] = sel.Symbols
		resp["size_multiplier"] = sel.SizeMultiplier
		resp["reasons"] = sel.Reasons
	}
	if s.guard != nil {
		resp["risk"] = s.guard.Snapshot()
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleDecisions(c *gin.Context) {
	if s.st == nil {
		c.JSON(http.StatusOK, []any{})
		return
	}
	rows, err := s.st.RecentDecisions(50)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, rows)
}
