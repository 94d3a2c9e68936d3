package protocol

// Messages sent by the server.

type Welcome struct {
	V        int    `json:"v"`
	ClientID string `json:"clientId"`
	Room     string `json:"room"`
}

// Defined echoes the canonicalized game every client in the room now
// queries against.
type Defined struct {
	Players    []uint64         `json:"players"`
	Coalitions []CoalitionWorth `json:"coalitions"`
}

type Value struct {
	Player uint64  `json:"player"`
	Value  float64 `json:"value"`
}

// Allocation is the Shapley value of every roster player, in roster order.
// Surplus is worth(grand) - worth(empty); Sum is the sum of Values.
type Allocation struct {
	Values  []Value `json:"values"`
	Surplus float64 `json:"surplus"`
	Sum     float64 `json:"sum"`
}

type Error struct {
	Code     string            `json:"code"`
	Message  string            `json:"message"`
	Metadata map[string]string `json:"metadata,omitempty"`
}
