package timeline

import (
	"math"

	"github.com/rs/zerolog"

	"github.com/ivlev/svganim/internal/anim"
)

// ResolveBegins returns the absolute begin time of every description,
// following "ref.end+delay" chains. A chain through an unknown id never
// begins (NaN); a cyclic chain is logged and resolves to +Inf.
func ResolveBegins(ds []anim.Description, log zerolog.Logger) []float64 {
	index := make(map[string]int, len(ds))
	for i, d := range ds {
		if d.ID != "" {
			index[d.ID] = i
		}
	}

	const (
		unvisited = iota
		visiting
		done
	)
	out := make([]float64, len(ds))
	state := make([]int, len(ds))

	var resolve func(i int) float64
	resolve = func(i int) float64 {
		switch state[i] {
		case done:
			return out[i]
		case visiting:
			log.Warn().Str("animation", ds[i].ID).Msg("begin chain forms a cycle")
			return math.Inf(1)
		}
		state[i] = visiting

		d := &ds[i]
		v := d.Begin.Offset
		if d.Begin.IsChained() {
			j, ok := index[d.Begin.Ref]
			if !ok {
				log.Warn().Str("animation", d.ID).Str("ref", d.Begin.Ref).Msg("begin references unknown animation")
				v = math.NaN()
			} else {
				v = resolve(j) + ds[j].TotalDuration() + d.Begin.Delay
			}
		}
		out[i], state[i] = v, done
		return v
	}
	for i := range ds {
		resolve(i)
	}
	return out
}

// MaxDuration is the end of the last animation: the greatest begin plus
// total duration. Any unbounded animation makes it +Inf.
func MaxDuration(ds []anim.Description, log zerolog.Logger) float64 {
	begins := ResolveBegins(ds, log)
	var maxEnd float64
	for i := range ds {
		if math.IsNaN(begins[i]) {
			continue
		}
		maxEnd = math.Max(maxEnd, begins[i]+ds[i].TotalDuration())
	}
	return maxEnd
}
