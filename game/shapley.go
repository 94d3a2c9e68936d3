package game

import (
	"cmp"
	"context"
	"fmt"
	"math/bits"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// factorials holds k! for k in [0, MaxPlayers].
var factorials = func() [MaxPlayers + 1]float64 {
	var f [MaxPlayers + 1]float64
	f[0] = 1
	for k := 1; k <= MaxPlayers; k++ {
		f[k] = f[k-1] * float64(k)
	}
	return f
}()

// Weight returns k!(n-k-1)!/n!, the Shapley weight of a coalition of size k
// in a game of n players. It is zero when no such coalition can precede a
// player in an ordering of n players (k < 0 or k >= n) and when n exceeds
// MaxPlayers.
func Weight(k, n int) float64 {
	if k < 0 || k >= n || n > MaxPlayers {
		return 0
	}
	return factorials[k] * factorials[n-k-1] / factorials[n]
}

// ShapleyValue returns player's Shapley value in g. See Game.ShapleyValue.
func ShapleyValue[P cmp.Ordered](g *Game[P], player P) (float64, error) {
	return g.ShapleyValue(player)
}

// ShapleyValue returns the exact Shapley value of player:
//
//	sum over S in subsets(roster \ {player}) of
//	    Weight(|S|, n) * (worth(S ∪ {player}) - worth(S))
//
// where n is the roster size.
//
// # Complexity
//
// Every subset of the base set is visited once: 2^(n-1) subsets when player
// is on the roster, 2^n when it is not. Callers must bound n themselves;
// there is no cancellation.
//
// # Errors
//
// Both worths of every term must be defined. The first coalition found
// missing, in ascending subset order, is reported with
// ErrMissingCoalitionValue; no partial sum is returned. The player is not
// checked against the roster: an undeclared player fails naturally because
// the coalition {player} is missing.
func (g *Game[P]) ShapleyValue(player P) (float64, error) {
	n := len(g.players)
	pos, known := g.index[player]
	var bit uint64
	if known {
		bit = 1 << pos
	}
	base := g.roster &^ bit
	name := fmt.Sprint(player)

	var total float64
	for s := uint64(0); ; {
		without, ok := g.worth[s]
		if !ok {
			return 0, g.missing(s, name)
		}
		if !known {
			return 0, g.missing(s, name, player)
		}
		with, ok := g.worth[s|bit]
		if !ok {
			return 0, g.missing(s|bit, name)
		}
		total += Weight(bits.OnesCount64(s), n) * (with - without)

		// Next subset of base in ascending order; wraps to 0 after base.
		s = (s - base) & base
		if s == 0 {
			break
		}
	}
	return total, nil
}

// BaseSize returns how many players a query for player enumerates subsets
// of: n-1 when player is on the roster, n otherwise.
func (g *Game[P]) BaseSize(player P) int {
	n := len(g.players)
	if pos, ok := g.index[player]; ok && g.roster&(1<<pos) != 0 {
		return n - 1
	}
	return n
}

// Values returns the Shapley value of every roster player. Players are
// evaluated concurrently, at most GOMAXPROCS at a time. The first failure is
// returned and no values are; cancelling ctx stops evaluation of players not
// yet started.
func (g *Game[P]) Values(ctx context.Context) (map[P]float64, error) {
	values := make([]float64, len(g.players))

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(runtime.GOMAXPROCS(0))
	for i, p := range g.players {
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}
			v, err := g.ShapleyValue(p)
			if err != nil {
				return err
			}
			values[i] = v
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	out := make(map[P]float64, len(g.players))
	for i, p := range g.players {
		out[p] = values[i]
	}
	return out, nil
}
