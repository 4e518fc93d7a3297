// Package verify provides facilities to audit the assignments returned by a search.
//
// It does not share any code with the search itself: every budget, cost and profit
// is recomputed from the problem tables, so that a bug in the solver cannot hide itself.
package verify

import (
	"cmp"
	"fmt"
	"math"

	"github.com/crillab/gophergap/gap"
)

// An Error describes why an assignment is not a valid solution.
type Error struct {
	Assignment string // Representation of the faulty assignment, empty if the error is about the whole result set
	Reason     string
}

func (e *Error) Error() string {
	if e.Assignment == "" {
		return fmt.Sprintf("invalid result: %s", e.Reason)
	}
	return fmt.Sprintf("invalid assignment %s: %s", e.Assignment, e.Reason)
}

func fail[A, T cmp.Ordered, C gap.Cost, P gap.Profit](as *gap.Assignment[A, T, C, P], format string, args ...any) *Error {
	return &Error{Assignment: as.String(), Reason: fmt.Sprintf(format, args...)}
}

// near is true iff x and y are equal, modulo rounding errors for floats.
func near[V gap.Cost | gap.Profit](x, y V) bool {
	if x == y {
		return true
	}
	var one V = 1
	if one/2 == 0 {
		return false // Integers
	}
	fx, fy := float64(x), float64(y)
	return math.Abs(fx-fy) <= 1e-9*math.Max(1, math.Abs(fx))
}

// usage holds what an assignment consumes, recomputed from the problem tables.
type usage[A, T cmp.Ordered, C gap.Cost, P gap.Profit] struct {
	agentLeft map[A]C
	taskLeft  map[T]C
	profit    P
}

func recompute[A, T cmp.Ordered, C gap.Cost, P gap.Profit](pb *gap.Problem[A, T, C, P], as *gap.Assignment[A, T, C, P]) (*usage[A, T, C, P], error) {
	u := &usage[A, T, C, P]{agentLeft: make(map[A]C), taskLeft: make(map[T]C)}
	for _, a := range pb.Agents() {
		b, err := pb.AgentBudget(a)
		if err != nil {
			return nil, err
		}
		u.agentLeft[a] = b
	}
	for _, t := range pb.Tasks() {
		b, err := pb.TaskBudget(t)
		if err != nil {
			return nil, err
		}
		u.taskLeft[t] = b
	}
	for _, p := range as.Pairs() {
		ac, err := pb.AgentCost(p.Agent, p.Task)
		if err != nil {
			return nil, err
		}
		tc, err := pb.TaskCost(p.Agent, p.Task)
		if err != nil {
			return nil, err
		}
		profit, err := pb.Profit(p.Agent, p.Task)
		if err != nil {
			return nil, err
		}
		u.agentLeft[p.Agent] -= ac
		u.taskLeft[p.Task] -= tc
		u.profit += profit
	}
	return u, nil
}

// Feasible returns an *Error if the assignment exceeds a budget, misses a mandatory pair
// or does not yield the profit it claims.
func Feasible[A, T cmp.Ordered, C gap.Cost, P gap.Profit](pb *gap.Problem[A, T, C, P], as *gap.Assignment[A, T, C, P]) error {
	u, err := recompute(pb, as)
	if err != nil {
		return err
	}
	for a, left := range u.agentLeft {
		if left < 0 {
			return fail(as, "agent %v exceeds its budget by %v", a, -left)
		}
	}
	for t, left := range u.taskLeft {
		if left < 0 {
			return fail(as, "task %v exceeds its budget by %v", t, -left)
		}
	}
	for a, tasks := range pb.Mandatory() {
		for _, t := range tasks {
			if !as.Has(a, t) {
				return fail(as, "mandatory pair %v is missing", gap.Pair[A, T]{Agent: a, Task: t})
			}
		}
	}
	if !near(u.profit, as.Profit()) {
		return fail(as, "profit should be %v", u.profit)
	}
	return nil
}

// Maximal returns an *Error if a single pair can still be added to the assignment.
// Agents without any budget left are not extended, even by free pairs.
func Maximal[A, T cmp.Ordered, C gap.Cost, P gap.Profit](pb *gap.Problem[A, T, C, P], as *gap.Assignment[A, T, C, P]) error {
	u, err := recompute(pb, as)
	if err != nil {
		return err
	}
	for _, a := range pb.Agents() {
		if u.agentLeft[a] <= 0 {
			continue
		}
		for _, t := range pb.Tasks() {
			if as.Has(a, t) {
				continue
			}
			ac, err := pb.AgentCost(a, t)
			if err != nil {
				return err
			}
			tc, err := pb.TaskCost(a, t)
			if err != nil {
				return err
			}
			if ac <= u.agentLeft[a] && tc <= u.taskLeft[t] {
				return fail(as, "pair %v can still be assigned", gap.Pair[A, T]{Agent: a, Task: t})
			}
		}
	}
	return nil
}

// Check returns an error if res is not a plausible result for pb: it must not be empty,
// all its assignments must be feasible, maximal, distinct and share the same profit.
// It does not prove optimality; see BruteForce for that.
func Check[A, T cmp.Ordered, C gap.Cost, P gap.Profit](pb *gap.Problem[A, T, C, P], res []*gap.Assignment[A, T, C, P]) error {
	if len(res) == 0 {
		return &Error{Reason: "no assignment"}
	}
	seen := make(map[string]bool, len(res))
	for _, as := range res {
		if err := Feasible(pb, as); err != nil {
			return err
		}
		if err := Maximal(pb, as); err != nil {
			return err
		}
		if seen[as.Key()] {
			return fail(as, "duplicate shape")
		}
		seen[as.Key()] = true
		if as.Profit() != res[0].Profit() {
			return fail(as, "profit differs from %v", res[0].Profit())
		}
	}
	return nil
}
