package server

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/teleroom/teleroom/internal/broadcast"
	"github.com/teleroom/teleroom/internal/gateway"
	"github.com/teleroom/teleroom/internal/presence"
	"github.com/teleroom/teleroom/internal/server/middleware"
	"github.com/teleroom/teleroom/internal/store"
	"github.com/teleroom/teleroom/pkg/config"
	"github.com/teleroom/teleroom/pkg/registry"
	"github.com/teleroom/teleroom/pkg/transport"
)

type App struct {
	logger      *slog.Logger
	registry    *registry.Registry
	broadcaster *broadcast.Broadcaster
	presence    *presence.Tracker
	gateway     *gateway.Gateway
	store       store.Store
	wg          sync.WaitGroup
	http        *http.Server
	config      *config.Config

	ctx context.Context
}

func NewApp(logger *slog.Logger, rootCtx context.Context, cfg *config.Config, st store.Store) *App {
	reg := registry.New(logger)
	bcast := broadcast.New(reg, logger)
	pres := presence.New(reg, bcast, logger)
	gw := gateway.New(reg, bcast, pres, gateway.Config{MalformedFrameMax: cfg.Chat.MalformedFrameMax}, logger)

	app := &App{
		logger:      logger,
		registry:    reg,
		broadcaster: bcast,
		presence:    pres,
		gateway:     gw,
		store:       st,
		config:      cfg,
		ctx:         rootCtx,
	}

	authed := func(h http.HandlerFunc) http.Handler {
		return middleware.Chain(h,
			middleware.RequestMetadataMiddleware(),
			middleware.NewRequestLogger(logger),
			middleware.NewAuthMiddleware(logger, cfg.Server.Auth.JWTSecret),
		)
	}

	mux := http.NewServeMux()
	mux.Handle("/ws",
		middleware.Chain(http.HandlerFunc(app.upgradeHandler),
			middleware.RequestMetadataMiddleware(),
			middleware.NewRequestLogger(logger),
			middleware.NewIPLimiter(logger, cfg.Server.MaxConnsPerIP),
			middleware.NewAuthMiddleware(logger, cfg.Server.Auth.JWTSecret),
		),
	)
	mux.HandleFunc("GET /api/health", app.healthHandler)
	mux.Handle("GET /api/chat/messages", authed(app.messagesHandler))
	mux.Handle("POST /api/chat/send", authed(app.sendHandler))
	mux.Handle("POST /api/admin/ban", authed(app.banHandler))

	app.http = &http.Server{Addr: cfg.Server.Address, Handler: mux, BaseContext: func(l net.Listener) context.Context {
		return app.ctx
	}}

	return app
}

func (a *App) Run() error {
	go func() {
		a.logger.Info("server starting", slog.String("addr", a.http.Addr))
		if err := a.http.ListenAndServe(); err != http.ErrServerClosed {
			a.logger.Error("HTTP server failed", slog.Any("error", err))
		}
	}()

	<-a.ctx.Done()
	return a.Shutdown()
}

// roomFromRequest resolves the room query parameter, defaulting to the
// configured global room.
func (a *App) roomFromRequest(r *http.Request) string {
	if room := r.URL.Query().Get("room"); room != "" {
		return room
	}
	return a.config.Chat.DefaultRoom
}

func (a *App) upgradeHandler(w http.ResponseWriter, r *http.Request) {
	reqMeta, _ := middleware.ReqMetadataFrom(r.Context())
	room := a.roomFromRequest(r)
	connLogger := a.logger.With(
		slog.String("remoteAddr", reqMeta.IP),
		slog.Int64("userID", reqMeta.UserID),
		slog.String("room", room),
	)

	wsConn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true,
	})
	if err != nil {
		a.logger.Error("failed to accept websocket connection", slog.Any("error", err))
		return
	}

	conn := transport.NewConnection(
		r.Context(),
		&a.wg,
		wsConn,
		transport.ConnectionConfig{
			PingInterval:  a.config.Transport.PingInterval,
			ReadTimeout:   a.config.Transport.ReadTimeout,
			SendQueueSize: a.config.Transport.SendQueueSize,
		},
		nil,
		nil,
		a.logger,
	)

	a.gateway.Admit(room, reqMeta.UserID, conn)
	connLogger.Info("user connection fully established")
	conn.Run()
	<-conn.Done()
}

// Shutdown runs the graceful shutdown sequence.
func (a *App) Shutdown() error {
	a.logger.Info("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := a.http.Shutdown(shutdownCtx); err != nil {
		return err
	}

	a.logger.Info("closing all active sessions...")
	a.gateway.DisconnectAll(gateway.ErrShutdown)

	// wait for all connection goroutines to finish their cleanup.
	a.wg.Wait()
	if err := a.store.Close(); err != nil {
		a.logger.Warn("store close failed", slog.Any("error", err))
	}
	a.logger.Info("server shut down gracefully.")
	return nil
}
