// Package game computes exact Shapley values for cooperative games given by
// a player roster and the worth of every coalition.
//
// # Representation
//
// A Game interns every player it sees, roster first and then the members of
// each coalition entry in input order, into a bit position of a uint64. A
// coalition is stored as the mask of its members, so the order in which a
// caller listed the members never matters. This caps a game at MaxPlayers
// distinct players.
//
// # Validation
//
// New rejects malformed input (repeated roster players, coalitions that
// repeat a member, too many players) but does not check that the worth
// mapping is complete. Missing coalitions are found lazily, by the query
// that needs them, and reported with ErrMissingCoalitionValue.
//
// # Thread Safety
//
// A Game is never written after New returns. Any number of goroutines may
// query the same Game concurrently.
package game

import (
	"cmp"
	"fmt"
	"math/bits"
	"slices"
)

// MaxPlayers is the number of distinct players a Game can hold, counting
// players that appear only in coalition entries.
const MaxPlayers = 64

// Worth is one caller-supplied coalition entry. Members may be listed in any
// order.
type Worth[P cmp.Ordered] struct {
	Members []P
	Value   float64
}

// Game holds a player roster and a canonicalized coalition-worth mapping.
type Game[P cmp.Ordered] struct {
	players []P        // roster, declared order
	index   map[P]uint // player -> bit position
	byBit   []P        // bit position -> player
	roster  uint64     // mask of roster players
	worth   map[uint64]float64
}

// New builds a Game from a roster and coalition entries.
//
// Each entry is canonicalized before it is stored. When two entries name the
// same coalition the later one wins. If no entry names the empty coalition,
// it is bound to 0; an explicit empty-coalition entry is never overwritten.
//
// New fails with ErrInvalidInput when the roster lists a player twice, when
// an entry lists a member twice, or when more than MaxPlayers distinct
// players appear. It does not check that every coalition is present.
func New[P cmp.Ordered](players []P, worths []Worth[P]) (*Game[P], error) {
	g := &Game[P]{
		players: slices.Clone(players),
		index:   make(map[P]uint, len(players)),
		byBit:   make([]P, 0, len(players)),
		worth:   make(map[uint64]float64, len(worths)+1),
	}

	for _, p := range players {
		if _, dup := g.index[p]; dup {
			return nil, invalidInput(
				fmt.Sprintf("roster lists player %v more than once", p),
				map[string]string{"player": fmt.Sprint(p)},
			)
		}
		bit, err := g.intern(p)
		if err != nil {
			return nil, err
		}
		g.roster |= bit
	}

	for i, w := range worths {
		mask, err := g.internCoalition(w.Members)
		if err != nil {
			err.Metadata["entry"] = fmt.Sprint(i)
			return nil, err
		}
		g.worth[mask] = w.Value
	}

	if _, ok := g.worth[0]; !ok {
		g.worth[0] = 0
	}
	return g, nil
}

func (g *Game[P]) intern(p P) (uint64, *Error) {
	if pos, ok := g.index[p]; ok {
		return 1 << pos, nil
	}
	if len(g.byBit) == MaxPlayers {
		return 0, invalidInput(
			fmt.Sprintf("game has more than %d distinct players", MaxPlayers),
			map[string]string{"player": fmt.Sprint(p)},
		)
	}
	pos := uint(len(g.byBit))
	g.index[p] = pos
	g.byBit = append(g.byBit, p)
	return 1 << pos, nil
}

func (g *Game[P]) internCoalition(members []P) (uint64, *Error) {
	var mask uint64
	for _, m := range members {
		bit, err := g.intern(m)
		if err != nil {
			return 0, err
		}
		if mask&bit != 0 {
			return 0, invalidInput(
				fmt.Sprintf("coalition lists player %v more than once", m),
				map[string]string{"player": fmt.Sprint(m)},
			)
		}
		mask |= bit
	}
	return mask, nil
}

// maskOf returns the mask for members, or false when a member was never
// seen by the game or is repeated.
func (g *Game[P]) maskOf(members []P) (uint64, bool) {
	var mask uint64
	for _, m := range members {
		pos, ok := g.index[m]
		if !ok || mask&(1<<pos) != 0 {
			return 0, false
		}
		mask |= 1 << pos
	}
	return mask, true
}

// coalition expands a mask into its canonical Coalition, adding extra
// members that the game never interned.
func (g *Game[P]) coalition(mask uint64, extra ...P) Coalition[P] {
	members := make([]P, 0, bits.OnesCount64(mask)+len(extra))
	for m := mask; m != 0; m &= m - 1 {
		members = append(members, g.byBit[bits.TrailingZeros64(m)])
	}
	members = append(members, extra...)
	slices.Sort(members)
	return Coalition[P]{members: members}
}

// Players returns the roster in declared order.
func (g *Game[P]) Players() []P {
	return slices.Clone(g.players)
}

func (g *Game[P]) NumPlayers() int {
	return len(g.players)
}

// NumCoalitions returns the number of distinct coalitions with a worth,
// including the empty coalition.
func (g *Game[P]) NumCoalitions() int {
	return len(g.worth)
}

// Worth returns the worth of the coalition formed by members, listed in any
// order, and whether the game defines it.
func (g *Game[P]) Worth(members ...P) (float64, bool) {
	mask, ok := g.maskOf(members)
	if !ok {
		return 0, false
	}
	v, ok := g.worth[mask]
	return v, ok
}

// GrandCoalition returns the coalition of every roster player.
func (g *Game[P]) GrandCoalition() Coalition[P] {
	return g.coalition(g.roster)
}

// Coalitions returns every coalition the game defines, ordered by size and
// then by members.
func (g *Game[P]) Coalitions() []Coalition[P] {
	out := make([]Coalition[P], 0, len(g.worth))
	for mask := range g.worth {
		out = append(out, g.coalition(mask))
	}
	slices.SortFunc(out, compareCoalitions[P])
	return out
}

// Surplus returns worth(grand coalition) - worth(empty coalition): the total
// the Shapley values of all roster players add up to.
func (g *Game[P]) Surplus() (float64, error) {
	grand, ok := g.worth[g.roster]
	if !ok {
		return 0, g.missing(g.roster, "")
	}
	return grand - g.worth[0], nil
}

func (g *Game[P]) missing(mask uint64, player string, extra ...P) *Error {
	c := g.coalition(mask, extra...)
	md := map[string]string{"coalition": c.String()}
	if player != "" {
		md["player"] = player
	}
	return &Error{
		Code:     CodeMissingCoalitionValue,
		Message:  fmt.Sprintf("no worth defined for coalition %s", c),
		Metadata: md,
	}
}
