package verify

import (
	"cmp"
	"errors"
	"fmt"
	"slices"

	"github.com/crillab/gophergap/gap"
)

// MaxPairs is the maximum number of free pairs BruteForce accepts.
// Every subset of the free pairs may be enumerated, so the cost doubles with each pair.
const MaxPairs = 20

// ErrTooLarge is returned by BruteForce when a problem has too many free pairs.
var ErrTooLarge = errors.New("problem too large for brute force")

// ErrNegativeCost is returned by BruteForce when a pair has a negative agent or task cost.
var ErrNegativeCost = errors.New("negative costs are not supported by brute force")

// BruteForce enumerates every assignment containing the mandatory pairs, and returns the maximal ones
// with the best profit, sorted by their representation.
// An agent whose budget is exhausted by its mandatory pairs is never extended.
// Costs must be non-negative, so that the order in which pairs are assigned does not matter:
// ErrNegativeCost is returned otherwise.
func BruteForce[A, T cmp.Ordered, C gap.Cost, P gap.Profit](pb *gap.Problem[A, T, C, P]) ([]*gap.Assignment[A, T, C, P], error) {
	if err := pb.Validate(); err != nil {
		return nil, err
	}
	if err := nonNegativeCosts(pb); err != nil {
		return nil, err
	}
	initial, err := pb.Initial()
	if err != nil {
		return nil, err
	}
	var free []gap.Pair[A, T]
	for _, a := range pb.Agents() {
		if left, _ := initial.AgentBudget(a); left <= 0 {
			continue
		}
		for _, t := range pb.Tasks() {
			if !initial.Has(a, t) {
				free = append(free, gap.Pair[A, T]{Agent: a, Task: t})
			}
		}
	}
	if len(free) > MaxPairs {
		return nil, fmt.Errorf("%d free pairs, at most %d allowed: %w", len(free), MaxPairs, ErrTooLarge)
	}
	bf := bruteForce[A, T, C, P]{pb: pb, free: free}
	bf.explore(0, initial)
	slices.SortFunc(bf.best, func(x, y *gap.Assignment[A, T, C, P]) int {
		return cmp.Compare(x.String(), y.String())
	})
	return bf.best, nil
}

func nonNegativeCosts[A, T cmp.Ordered, C gap.Cost, P gap.Profit](pb *gap.Problem[A, T, C, P]) error {
	for _, a := range pb.Agents() {
		for _, t := range pb.Tasks() {
			ac, _ := pb.AgentCost(a, t)
			tc, _ := pb.TaskCost(a, t)
			if ac < 0 || tc < 0 {
				return fmt.Errorf("pair (%v, %v) costs %v for the agent and %v for the task: %w", a, t, ac, tc, ErrNegativeCost)
			}
		}
	}
	return nil
}

type bruteForce[A, T cmp.Ordered, C gap.Cost, P gap.Profit] struct {
	pb   *gap.Problem[A, T, C, P]
	free []gap.Pair[A, T]
	best []*gap.Assignment[A, T, C, P]
}

// explore decides, for each free pair from i on, whether it is part of the assignment or not.
func (bf *bruteForce[A, T, C, P]) explore(i int, as *gap.Assignment[A, T, C, P]) {
	if i == len(bf.free) {
		if Maximal(bf.pb, as) != nil {
			return
		}
		switch {
		case len(bf.best) == 0 || as.Profit() > bf.best[0].Profit():
			bf.best = []*gap.Assignment[A, T, C, P]{as}
		case as.Profit() == bf.best[0].Profit():
			bf.best = append(bf.best, as)
		}
		return
	}
	bf.explore(i+1, as)
	p := bf.free[i]
	next := as.Clone()
	if next.Assign(p.Agent, p.Task) == nil {
		bf.explore(i+1, next)
	}
}
