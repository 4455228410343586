package core

import (
	"reflect"

	"github.com/feltnet/felt/state"
)

// AddCost adds two costs, saturating at Infinity.
func AddCost(a, b state.Cost) state.Cost {
	if a >= state.Infinity || b >= state.Infinity {
		return state.Infinity
	}
	return min(a+b, state.Infinity)
}

func Get[T state.Module](s *state.State) T {
	t := reflect.TypeFor[T]()
	return s.Modules[t.String()].(T)
}
