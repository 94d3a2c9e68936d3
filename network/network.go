// Package network serves Shapley rooms over websockets, plus a small JSON
// API for listing and creating rooms and a Prometheus metrics endpoint.
package network

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/shenxiangzhuang/shapley/config"
	"github.com/shenxiangzhuang/shapley/protocol"
	"github.com/shenxiangzhuang/shapley/room"
)

type Server struct {
	cfg      config.Config
	rooms    *room.Manager
	log      *slog.Logger
	upgrader websocket.Upgrader
}

func NewServer(cfg config.Config, rooms *room.Manager, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		cfg:   cfg,
		rooms: rooms,
		log:   logger,
		upgrader: websocket.Upgrader{
			// Rooms carry no credentials; any origin may connect.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /ws", s.handleWS)
	mux.HandleFunc("GET /rooms", s.handleListRooms)
	mux.HandleFunc("POST /rooms", s.handleCreateRoom)
	mux.Handle("GET "+s.cfg.MetricsPath, promhttp.Handler())
	return mux
}

// Run serves until ctx is done, then shuts the HTTP server down.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("listening", "addr", s.cfg.Addr, "ws", "/ws", "metrics", s.cfg.MetricsPath)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve: %w", err)
	}
	return nil
}

func (s *Server) handleListRooms(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.rooms.ListRooms())
}

func (s *Server) handleCreateRoom(w http.ResponseWriter, r *http.Request) {
	code := s.rooms.CreateRoom()
	writeJSON(w, http.StatusCreated, map[string]string{"code": code})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	// Upgrade HTTP -> WebSocket
	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("upgrade failed", "error", err)
		return
	}
	conn := newWSConn(ws)
	defer conn.Close()

	ws.SetReadLimit(s.cfg.ReadLimit)
	_ = ws.SetReadDeadline(time.Now().Add(pongWait))
	ws.SetPongHandler(func(string) error {
		return ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	done := make(chan struct{})
	defer close(done)
	go conn.pingLoop(done)

	hello, err := readHello(ws)
	if err != nil {
		_ = conn.Send(protocol.EncodeError(protocol.CodeBadRequest, err.Error(), nil))
		return
	}

	code := r.URL.Query().Get("room")
	if code == "" {
		code = s.rooms.CreateRoom()
	}
	rm, clientID, ok := s.joinRoom(code, conn, hello.Name)
	if !ok {
		_ = conn.Send(protocol.EncodeError(protocol.CodeBadRequest, "room closed", map[string]string{"room": code}))
		return
	}
	defer rm.Send(room.Leave{ClientID: clientID})

	for {
		_, msg, err := ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.log.Warn("read failed", "room", code, "client", clientID, "error", err)
			}
			return
		}

		cmd, err := decodeCommand(clientID, msg)
		if err != nil {
			_ = conn.Send(protocol.EncodeError(protocol.CodeBadRequest, err.Error(), nil))
			continue
		}
		if !rm.Send(cmd) {
			return
		}
	}
}

// joinAttempts bounds how often joinRoom looks a room up again after the
// one it found stopped underneath it.
const joinAttempts = 3

// joinRoom joins conn to the room with code. A room that stops while the
// join is in flight has already been removed from the manager, so the next
// lookup starts a fresh room under the same code.
func (s *Server) joinRoom(code string, conn room.Conn, name string) (*room.Room, string, bool) {
	for range joinAttempts {
		rm := s.rooms.GetOrCreateRoom(code)
		reply := make(chan room.JoinResult, 1)
		if !rm.Send(room.Join{Conn: conn, Name: name, Reply: reply}) {
			continue
		}
		select {
		case res := <-reply:
			return rm, res.ClientID, true
		case <-rm.Done():
			s.log.Debug("room stopped during join", "room", code)
		}
	}
	return nil, "", false
}

func readHello(ws *websocket.Conn) (protocol.Hello, error) {
	_, msg, err := ws.ReadMessage()
	if err != nil {
		return protocol.Hello{}, fmt.Errorf("read hello: %w", err)
	}
	env, err := protocol.DecodeEnvelope(msg)
	if err != nil {
		return protocol.Hello{}, err
	}
	if env.T != protocol.MsgHello {
		return protocol.Hello{}, fmt.Errorf("expected %q message first, got %q", protocol.MsgHello, env.T)
	}
	return protocol.DecodeValid[protocol.Hello](env)
}

// decodeCommand turns a client message into the room command it requests.
func decodeCommand(clientID string, msg []byte) (any, error) {
	env, err := protocol.DecodeEnvelope(msg)
	if err != nil {
		return nil, err
	}
	switch env.T {
	case protocol.MsgDefine:
		def, err := protocol.DecodeValid[protocol.Define](env)
		if err != nil {
			return nil, err
		}
		return room.Define{ClientID: clientID, Game: def}, nil
	case protocol.MsgQuery:
		q, err := protocol.DecodeValid[protocol.Query](env)
		if err != nil {
			return nil, err
		}
		return room.Query{ClientID: clientID, Player: q.Player}, nil
	case protocol.MsgValues:
		return room.Values{ClientID: clientID}, nil
	default:
		return nil, fmt.Errorf("unknown message type %q", env.T)
	}
}
