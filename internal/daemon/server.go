// Package daemon serves the websocket mutation protocol and the REST
// surface for the shared boards
package daemon

import (
	"context"
	"errors"
	"net/http"
	"slices"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	log "github.com/sirupsen/logrus"

	"github.com/thenoetrevino/tablero/internal/api"
	"github.com/thenoetrevino/tablero/internal/app"
	"github.com/thenoetrevino/tablero/internal/config"
	"github.com/thenoetrevino/tablero/internal/events"
)

// Server represents the tablero daemon
type Server struct {
	app      *app.App
	cfg      config.ServerConfig
	echo     *echo.Echo
	upgrader websocket.Upgrader
	dispatch map[events.EventType]handlerFunc

	sessions map[*session]struct{}
	mu       sync.RWMutex

	ctx          context.Context
	cancel       context.CancelFunc
	metrics      *Metrics
	logger       *log.Logger
	shutdownOnce sync.Once
}

// NewServer creates a daemon serving the given application
func NewServer(a *app.App, cfg config.ServerConfig) *Server {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{
		app:      a,
		cfg:      cfg,
		sessions: make(map[*session]struct{}),
		ctx:      ctx,
		cancel:   cancel,
		metrics:  NewMetrics(),
		logger:   a.Logger,
	}
	s.dispatch = s.handlers()
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin:     s.checkOrigin,
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	if len(cfg.AllowedOrigins) > 0 {
		e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins: cfg.AllowedOrigins,
			AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept},
		}))
	}

	e.GET("/ws", s.handleWebsocket)
	e.GET("/healthz", s.healthz)
	e.GET("/api/metrics", s.getMetrics)
	api.Register(e, api.Services{Boards: a.BoardService, Cards: a.CardService}, a.Logger)

	s.echo = e
	return s
}

// Handler exposes the HTTP handler, mainly for httptest servers
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Metrics returns the live counters
func (s *Server) Metrics() *Metrics {
	return s.metrics
}

// Start listens on the configured address until ctx is cancelled, then
// shuts down gracefully
func (s *Server) Start(ctx context.Context) error {
	s.logger.WithField("addr", s.cfg.ListenAddr).Info("daemon starting")

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.echo.Start(s.cfg.ListenAddr)
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("daemon context cancelled, shutting down")
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			_ = s.Shutdown(context.Background())
			return err
		}
	}

	return s.Shutdown(context.Background())
}

// Shutdown closes every session and stops the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.logger.Info("shutting down daemon")
		s.cancel()

		s.mu.Lock()
		sessions := make([]*session, 0, len(s.sessions))
		for c := range s.sessions {
			sessions = append(sessions, c)
		}
		s.mu.Unlock()

		for _, c := range sessions {
			c.Close()
		}

		err = s.echo.Shutdown(ctx)
	})
	return err
}

func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" || len(s.cfg.AllowedOrigins) == 0 {
		return true
	}
	return slices.Contains(s.cfg.AllowedOrigins, "*") || slices.Contains(s.cfg.AllowedOrigins, origin)
}

// handleWebsocket upgrades the request and runs the session until it ends.
// The reader runs on the request goroutine.
func (s *Server) handleWebsocket(c echo.Context) error {
	conn, err := s.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// the upgrader has already replied
		s.logger.WithError(err).Debug("websocket upgrade failed")
		return nil
	}

	sess := newSession(s, uuid.NewString(), conn)
	s.addSession(sess)
	sess.log.Info("client connected")

	go sess.writeLoop()
	sess.readLoop(s.ctx)

	s.removeSession(sess)
	sess.log.Info("client disconnected")
	return nil
}

func (s *Server) healthz(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) getMetrics(c echo.Context) error {
	return c.JSON(http.StatusOK, s.metrics.GetSnapshot(s.app.Router.Stats()))
}

// Helper methods

func (s *Server) addSession(c *session) {
	s.mu.Lock()
	s.sessions[c] = struct{}{}
	count := len(s.sessions)
	s.mu.Unlock()

	s.metrics.IncConnections()
	s.metrics.SetConnectedClients(int32(count))
}

// removeSession drops a finished session from every room
func (s *Server) removeSession(c *session) {
	c.Close()
	s.app.Router.LeaveAll(c)

	s.mu.Lock()
	delete(s.sessions, c)
	count := len(s.sessions)
	s.mu.Unlock()

	s.metrics.SetConnectedClients(int32(count))
}
