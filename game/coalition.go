package game

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
)

// Coalition is a set of players held in canonical form: members sorted
// ascending with no duplicates. Two coalitions built from the same members in
// any order are equal member for member.
type Coalition[P cmp.Ordered] struct {
	members []P
}

// NewCoalition canonicalizes members into a Coalition. A member listed more
// than once is rejected with ErrInvalidInput.
func NewCoalition[P cmp.Ordered](members ...P) (Coalition[P], error) {
	sorted := slices.Clone(members)
	slices.Sort(sorted)
	for i := 1; i < len(sorted); i++ {
		if sorted[i] == sorted[i-1] {
			return Coalition[P]{}, invalidInput(
				fmt.Sprintf("coalition lists player %v more than once", sorted[i]),
				map[string]string{"player": fmt.Sprint(sorted[i])},
			)
		}
	}
	return Coalition[P]{members: sorted}, nil
}

// Members returns a copy of the sorted members.
func (c Coalition[P]) Members() []P {
	return slices.Clone(c.members)
}

func (c Coalition[P]) Len() int {
	return len(c.members)
}

// String formats the coalition in set notation, e.g. "{1, 2}" or "{}".
func (c Coalition[P]) String() string {
	var b strings.Builder
	b.WriteByte('{')
	for i, m := range c.members {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprint(&b, m)
	}
	b.WriteByte('}')
	return b.String()
}

// compareCoalitions orders by size, then member by member.
func compareCoalitions[P cmp.Ordered](a, b Coalition[P]) int {
	if c := cmp.Compare(len(a.members), len(b.members)); c != 0 {
		return c
	}
	return slices.Compare(a.members, b.members)
}
