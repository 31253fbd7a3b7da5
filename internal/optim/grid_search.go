// Package optim searches controller settings for the lowest run cost.
package optim

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/san-kum/moldtherm/internal/sim"
)

var ErrNoTrials = errors.New("optim: no successful trials")

// Build returns a ready driver for one point of the grid.
type Build func(params map[string]float64) (*sim.Driver, error)

// Objective scores a finished run; lower is better.
type Objective func(res *sim.Result) float64

type Trial struct {
	Params map[string]float64
	Cost   float64
	Err    error
}

type GridSearch struct {
	paramNames []string
	ranges     [][]float64
}

func NewGridSearch(params []string, ranges [][]float64) (*GridSearch, error) {
	if len(params) != len(ranges) {
		return nil, fmt.Errorf("optim: %d parameters but %d ranges", len(params), len(ranges))
	}
	for i, r := range ranges {
		if len(r) == 0 {
			return nil, fmt.Errorf("optim: empty range for %q", params[i])
		}
	}
	return &GridSearch{paramNames: params, ranges: ranges}, nil
}

// Size is the number of grid points.
func (g *GridSearch) Size() int {
	n := 1
	for _, r := range g.ranges {
		n *= len(r)
	}
	return n
}

// Search runs every grid point for ticks ticks and returns all trials sorted
// by cost, best first. Failed trials sort last and keep their error.
func (g *GridSearch) Search(ctx context.Context, build Build, ticks int, objective Objective) ([]Trial, error) {
	trials := make([]Trial, 0, g.Size())
	err := g.searchRecursive(ctx, 0, make(map[string]float64), func(params map[string]float64) {
		trials = append(trials, g.run(ctx, params, build, ticks, objective))
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(trials, func(i, j int) bool { return trials[i].Cost < trials[j].Cost })
	if len(trials) == 0 || trials[0].Err != nil {
		return trials, ErrNoTrials
	}
	return trials, nil
}

func (g *GridSearch) run(ctx context.Context, params map[string]float64, build Build, ticks int, objective Objective) Trial {
	t := Trial{Params: params, Cost: math.Inf(1)}
	d, err := build(params)
	if err != nil {
		t.Err = err
		return t
	}
	res, err := d.Run(ctx, ticks)
	if err != nil {
		t.Err = err
		return t
	}
	t.Cost = objective(res)
	return t
}

func (g *GridSearch) searchRecursive(ctx context.Context, depth int, current map[string]float64, visit func(map[string]float64)) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if depth == len(g.paramNames) {
		visit(current)
		return nil
	}

	name := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		next := make(map[string]float64, len(current)+1)
		for k, v := range current {
			next[k] = v
		}
		next[name] = val

		if err := g.searchRecursive(ctx, depth+1, next, visit); err != nil {
			return err
		}
	}
	return nil
}
