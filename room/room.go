package room

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/shenxiangzhuang/shapley/game"
	"github.com/shenxiangzhuang/shapley/protocol"
	"github.com/shenxiangzhuang/shapley/telemetry"
)

// Room owns at most one game and serializes every command against it on a
// single goroutine. Defining a game replaces the previous one; a constructed
// game is never modified.
type Room struct {
	Inbox      chan any
	maxPlayers int
	log        *slog.Logger
	game       *game.Game[uint64]
	clients    map[string]Conn
	numClients atomic.Int32
	quit       chan struct{}
	stopOnce   sync.Once

	Code    string            // room code (e.g. "ABC123")
	OnEmpty func(code string) // called when last client leaves
}

func New(maxPlayers int, logger *slog.Logger) *Room {
	if logger == nil {
		logger = slog.Default()
	}
	return &Room{
		Inbox:      make(chan any, 256),
		maxPlayers: maxPlayers,
		log:        logger,
		clients:    make(map[string]Conn),
		quit:       make(chan struct{}),
	}
}

func (r *Room) Stop() {
	r.stopOnce.Do(func() { close(r.quit) })
}

// Done is closed once the room has been stopped.
func (r *Room) Done() <-chan struct{} {
	return r.quit
}

// Send delivers cmd to the room, or reports false if the room has stopped.
// A command queued just as the room stops is dropped by Run, so callers
// waiting on a reply must also watch Done.
func (r *Room) Send(cmd any) bool {
	select {
	case <-r.quit:
		return false
	default:
	}
	select {
	case r.Inbox <- cmd:
		return true
	case <-r.quit:
		return false
	}
}

// NumPlayers returns the current number of connected clients.
func (r *Room) NumPlayers() int {
	return int(r.numClients.Load())
}

func (r *Room) Run() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		select {
		case <-r.quit:
			cancel()
		case <-ctx.Done():
		}
	}()

	for {
		select {
		case <-r.quit:
			return
		case cmd := <-r.Inbox:
			// Stop wins over anything still queued.
			select {
			case <-r.quit:
				return
			default:
			}
			r.handleCommand(ctx, cmd)
		}
	}
}

func (r *Room) handleCommand(ctx context.Context, cmd any) {
	switch c := cmd.(type) {
	case Join:
		clientID := uuid.NewString()
		r.clients[clientID] = c.Conn
		r.numClients.Add(1)
		r.log.Info("client joined", "room", r.Code, "client", clientID, "name", c.Name)
		c.Reply <- JoinResult{ClientID: clientID}
		r.sendTo(c.Conn, protocol.MsgWelcome, protocol.Welcome{
			V:        protocol.Version,
			ClientID: clientID,
			Room:     r.Code,
		})
		if r.game != nil {
			r.sendTo(c.Conn, protocol.MsgDefined, r.definedSnapshot())
		}
	case Define:
		if conn, ok := r.clients[c.ClientID]; ok {
			r.handleDefine(conn, c)
		}
	case Query:
		if conn, ok := r.clients[c.ClientID]; ok {
			r.handleQuery(conn, c.Player)
		}
	case Values:
		if conn, ok := r.clients[c.ClientID]; ok {
			r.handleValues(ctx, conn)
		}
	case Leave:
		r.handleLeave(c.ClientID)
	}
}

func (r *Room) handleDefine(conn Conn, c Define) {
	if len(c.Game.Players) > r.maxPlayers {
		telemetry.ObserveDefine(telemetry.ResultError)
		_ = conn.Send(protocol.EncodeError(string(game.CodeInvalidInput),
			"roster exceeds the server's player limit", map[string]string{
				"players": strconv.Itoa(len(c.Game.Players)),
				"limit":   strconv.Itoa(r.maxPlayers),
			}))
		return
	}

	worths := make([]game.Worth[uint64], len(c.Game.Coalitions))
	for i, cw := range c.Game.Coalitions {
		worths[i] = game.Worth[uint64]{Members: cw.Members, Value: cw.Worth}
	}
	g, err := game.New(c.Game.Players, worths)
	if err != nil {
		telemetry.ObserveDefine(telemetry.ResultError)
		r.log.Debug("define rejected", "room", r.Code, "client", c.ClientID, "error", err)
		r.sendError(conn, err)
		return
	}

	telemetry.ObserveDefine(telemetry.ResultOK)
	r.game = g
	r.log.Info("game defined", "room", r.Code, "client", c.ClientID,
		"players", g.NumPlayers(), "coalitions", g.NumCoalitions())
	r.broadcast(protocol.MsgDefined, r.definedSnapshot())
}

func (r *Room) handleQuery(conn Conn, player uint64) {
	if r.game == nil {
		r.sendNoGame(conn)
		return
	}

	start := time.Now()
	v, err := r.game.ShapleyValue(player)
	telemetry.ObserveQuery(queryResult(err), r.game.BaseSize(player), time.Since(start))
	if err != nil {
		r.sendError(conn, err)
		return
	}
	r.sendTo(conn, protocol.MsgValue, protocol.Value{Player: player, Value: v})
}

func (r *Room) handleValues(ctx context.Context, conn Conn) {
	if r.game == nil {
		r.sendNoGame(conn)
		return
	}

	start := time.Now()
	values, err := r.game.Values(ctx)
	telemetry.ObserveQuery(queryResult(err), r.game.NumPlayers(), time.Since(start))
	if err != nil {
		r.sendError(conn, err)
		return
	}
	surplus, err := r.game.Surplus()
	if err != nil {
		r.sendError(conn, err)
		return
	}

	alloc := protocol.Allocation{
		Values:  make([]protocol.Value, 0, len(values)),
		Surplus: surplus,
	}
	for _, p := range r.game.Players() {
		alloc.Values = append(alloc.Values, protocol.Value{Player: p, Value: values[p]})
		alloc.Sum += values[p]
	}
	r.sendTo(conn, protocol.MsgAllocation, alloc)
}

func (r *Room) handleLeave(clientID string) {
	c, ok := r.clients[clientID]
	if ok {
		_ = c.Close()
		delete(r.clients, clientID)
		r.numClients.Add(-1)
		r.log.Info("client left", "room", r.Code, "client", clientID)
	}
	if len(r.clients) == 0 && r.OnEmpty != nil && r.Code != "" {
		r.OnEmpty(r.Code)
	}
}

func (r *Room) removeClient(clientID string) {
	if c, ok := r.clients[clientID]; ok {
		_ = c.Close()
		delete(r.clients, clientID)
		r.numClients.Add(-1)
	}
}

func (r *Room) definedSnapshot() protocol.Defined {
	coalitions := r.game.Coalitions()
	out := protocol.Defined{
		Players:    r.game.Players(),
		Coalitions: make([]protocol.CoalitionWorth, 0, len(coalitions)),
	}
	for _, c := range coalitions {
		members := c.Members()
		v, _ := r.game.Worth(members...)
		out.Coalitions = append(out.Coalitions, protocol.CoalitionWorth{Members: members, Worth: v})
	}
	return out
}

func (r *Room) broadcast(t string, payload any) {
	b, err := protocol.Encode(t, payload)
	if err != nil {
		r.log.Error("encode broadcast", "room", r.Code, "type", t, "error", err)
		return
	}

	var failed []string
	for id, c := range r.clients {
		if err := c.Send(b); err != nil {
			failed = append(failed, id)
		}
	}
	for _, id := range failed {
		r.removeClient(id)
	}
}

func (r *Room) sendTo(c Conn, t string, payload any) {
	b, err := protocol.Encode(t, payload)
	if err != nil {
		r.log.Error("encode reply", "room", r.Code, "type", t, "error", err)
		return
	}
	_ = c.Send(b)
}

func (r *Room) sendError(c Conn, err error) {
	var gameErr *game.Error
	if errors.As(err, &gameErr) {
		_ = c.Send(protocol.EncodeError(string(gameErr.Code), gameErr.Message, gameErr.Metadata))
		return
	}
	_ = c.Send(protocol.EncodeError(protocol.CodeBadRequest, err.Error(), nil))
}

func (r *Room) sendNoGame(c Conn) {
	_ = c.Send(protocol.EncodeError(protocol.CodeNoGame, "no game defined in this room",
		map[string]string{"room": r.Code}))
}

func queryResult(err error) string {
	switch {
	case err == nil:
		return telemetry.ResultOK
	case errors.Is(err, game.ErrMissingCoalitionValue):
		return telemetry.ResultMissing
	default:
		return telemetry.ResultError
	}
}
