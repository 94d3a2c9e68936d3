package room

import "github.com/shenxiangzhuang/shapley/protocol"

type Conn interface {
	Send([]byte) error
	Close() error
}

// Join: issued once after hello parsed
type Join struct {
	Conn  Conn
	Name  string
	Reply chan<- JoinResult
}

type JoinResult struct {
	ClientID string
}

// Define: replace the room's game
type Define struct {
	ClientID string
	Game     protocol.Define
}

// Query: one player's Shapley value, answered to the sender only
type Query struct {
	ClientID string
	Player   uint64
}

// Values: every roster player's Shapley value, answered to the sender only
type Values struct {
	ClientID string
}

// Leave: issued on disconnect
type Leave struct {
	ClientID string
}
