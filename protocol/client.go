package protocol

// Messages coming in from the client.

type Hello struct {
	V    int    `json:"v" validate:"eq=1"`                // version
	Name string `json:"name,omitempty" validate:"max=64"` // optional name
}

// Define replaces the room's game with a new one.
type Define struct {
	Players    []uint64         `json:"players" validate:"required,min=1,max=64,unique"`
	Coalitions []CoalitionWorth `json:"coalitions" validate:"max=100000,dive"`
}

// CoalitionWorth is one coalition entry. Members may be in any order.
type CoalitionWorth struct {
	Members []uint64 `json:"members" validate:"max=64"`
	Worth   float64  `json:"worth"`
}

// Query asks for one player's Shapley value. The player need not be on the
// roster.
type Query struct {
	Player uint64 `json:"player"`
}

// ValuesRequest asks for the Shapley value of every roster player.
type ValuesRequest struct{}
