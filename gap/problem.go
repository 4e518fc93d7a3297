package gap

import (
	"cmp"
	"fmt"
	"slices"

	"golang.org/x/exp/constraints"
)

// Cost is the type of budgets and of the costs consumed from them.
type Cost interface {
	constraints.Integer | constraints.Float
}

// Profit is the type of the objective function.
type Profit interface {
	constraints.Integer | constraints.Float
}

// A Pair is an (agent, task) couple, used as a key in cost and profit tables.
type Pair[A, T cmp.Ordered] struct {
	Agent A
	Task  T
}

func (p Pair[A, T]) String() string {
	return fmt.Sprintf("(%v, %v)", p.Agent, p.Task)
}

// A table is a dense array of values, each of them being either set or missing.
type table[V Cost | Profit] struct {
	vals []V
	set  []bool
}

func newTable[V Cost | Profit](size int) table[V] {
	return table[V]{vals: make([]V, size), set: make([]bool, size)}
}

func (t *table[V]) fill(v V) {
	for i := range t.vals {
		t.vals[i] = v
		t.set[i] = true
	}
}

func (t *table[V]) get(i int) (V, bool) {
	return t.vals[i], t.set[i]
}

// A Problem describes agents, tasks, budgets, costs and profits,
// and the pairs that must be part of any solution.
//
// Agents and tasks are kept sorted, and are identified internally by their index.
// A pair (agent i, task j) has the index i*nbTasks + j.
//
// A Problem must not be modified once it is used by a Solver.
// It can be shared by several solvers, though, as long as nobody modifies it.
type Problem[A, T cmp.Ordered, C Cost, P Profit] struct {
	agents       []A
	tasks        []T
	agentIdx     map[A]int
	taskIdx      map[T]int
	agentBudgets table[C]
	taskBudgets  table[C]
	agentCosts   table[C] // Indexed by pair
	taskCosts    table[C] // Indexed by pair
	profits      table[P] // Indexed by pair
	mandatory    [][]int  // For each agent, its mandatory tasks, in the order they were given
}

// NewProblem returns a problem for the given agents and tasks.
// Duplicate identifiers are ignored.
// All budgets and costs are set to 1, i.e each agent can do one task and each task
// can be done by one agent. Profits are not set.
func NewProblem[A, T cmp.Ordered, C Cost, P Profit](agents []A, tasks []T) *Problem[A, T, C, P] {
	as := slices.Compact(slices.Sorted(slices.Values(agents)))
	ts := slices.Compact(slices.Sorted(slices.Values(tasks)))
	pb := &Problem[A, T, C, P]{
		agents:       as,
		tasks:        ts,
		agentIdx:     make(map[A]int, len(as)),
		taskIdx:      make(map[T]int, len(ts)),
		agentBudgets: newTable[C](len(as)),
		taskBudgets:  newTable[C](len(ts)),
		agentCosts:   newTable[C](len(as) * len(ts)),
		taskCosts:    newTable[C](len(as) * len(ts)),
		profits:      newTable[P](len(as) * len(ts)),
		mandatory:    make([][]int, len(as)),
	}
	for i, a := range as {
		pb.agentIdx[a] = i
	}
	for j, t := range ts {
		pb.taskIdx[t] = j
	}
	pb.agentBudgets.fill(1)
	pb.taskBudgets.fill(1)
	pb.agentCosts.fill(1)
	pb.taskCosts.fill(1)
	return pb
}

// Agents returns the sorted list of agents.
func (pb *Problem[A, T, C, P]) Agents() []A {
	return slices.Clone(pb.agents)
}

// Tasks returns the sorted list of tasks.
func (pb *Problem[A, T, C, P]) Tasks() []T {
	return slices.Clone(pb.tasks)
}

func (pb *Problem[A, T, C, P]) nbPairs() int {
	return len(pb.agents) * len(pb.tasks)
}

func (pb *Problem[A, T, C, P]) pair(i, j int) int {
	return i*len(pb.tasks) + j
}

func (pb *Problem[A, T, C, P]) agentIndex(a A) (int, error) {
	i, ok := pb.agentIdx[a]
	if !ok {
		return 0, fmt.Errorf("agent %v: %w", a, ErrUnknownEntity)
	}
	return i, nil
}

func (pb *Problem[A, T, C, P]) taskIndex(t T) (int, error) {
	j, ok := pb.taskIdx[t]
	if !ok {
		return 0, fmt.Errorf("task %v: %w", t, ErrUnknownEntity)
	}
	return j, nil
}

func (pb *Problem[A, T, C, P]) indices(a A, t T) (i, j int, err error) {
	if i, err = pb.agentIndex(a); err != nil {
		return 0, 0, err
	}
	if j, err = pb.taskIndex(t); err != nil {
		return 0, 0, err
	}
	return i, j, nil
}

func lookup[V Cost | Profit](tbl *table[V], idx int, what string, key any) (V, error) {
	v, ok := tbl.get(idx)
	if !ok {
		return v, fmt.Errorf("%s for %v: %w", what, key, ErrMissingEntry)
	}
	return v, nil
}

// AgentCost returns the part of the agent's budget consumed when the agent is assigned to the task.
func (pb *Problem[A, T, C, P]) AgentCost(a A, t T) (C, error) {
	i, j, err := pb.indices(a, t)
	if err != nil {
		return 0, err
	}
	return lookup(&pb.agentCosts, pb.pair(i, j), "agent cost", Pair[A, T]{a, t})
}

// TaskCost returns the part of the task's budget consumed when the agent is assigned to the task.
func (pb *Problem[A, T, C, P]) TaskCost(a A, t T) (C, error) {
	i, j, err := pb.indices(a, t)
	if err != nil {
		return 0, err
	}
	return lookup(&pb.taskCosts, pb.pair(i, j), "task cost", Pair[A, T]{a, t})
}

// Profit returns the profit yielded when the agent is assigned to the task.
func (pb *Problem[A, T, C, P]) Profit(a A, t T) (P, error) {
	i, j, err := pb.indices(a, t)
	if err != nil {
		return 0, err
	}
	return lookup(&pb.profits, pb.pair(i, j), "profit", Pair[A, T]{a, t})
}

// AgentBudget returns the initial budget of the agent.
func (pb *Problem[A, T, C, P]) AgentBudget(a A) (C, error) {
	i, err := pb.agentIndex(a)
	if err != nil {
		return 0, err
	}
	return lookup(&pb.agentBudgets, i, "budget", a)
}

// TaskBudget returns the initial budget of the task.
func (pb *Problem[A, T, C, P]) TaskBudget(t T) (C, error) {
	j, err := pb.taskIndex(t)
	if err != nil {
		return 0, err
	}
	return lookup(&pb.taskBudgets, j, "budget", t)
}

// SetAgentBudgets replaces all agent budgets.
// Agents absent from budgets have no budget anymore.
// If an agent is unknown or a budget is negative, nothing is modified.
func (pb *Problem[A, T, C, P]) SetAgentBudgets(budgets map[A]C) error {
	tbl := newTable[C](len(pb.agents))
	for a, b := range budgets {
		i, err := pb.agentIndex(a)
		if err != nil {
			return err
		}
		if b < 0 {
			return fmt.Errorf("agent %v has budget %v: %w", a, b, ErrNegativeBudget)
		}
		tbl.vals[i], tbl.set[i] = b, true
	}
	pb.agentBudgets = tbl
	return nil
}

// SetTaskBudgets replaces all task budgets.
// Tasks absent from budgets have no budget anymore.
// If a task is unknown or a budget is negative, nothing is modified.
func (pb *Problem[A, T, C, P]) SetTaskBudgets(budgets map[T]C) error {
	tbl := newTable[C](len(pb.tasks))
	for t, b := range budgets {
		j, err := pb.taskIndex(t)
		if err != nil {
			return err
		}
		if b < 0 {
			return fmt.Errorf("task %v has budget %v: %w", t, b, ErrNegativeBudget)
		}
		tbl.vals[j], tbl.set[j] = b, true
	}
	pb.taskBudgets = tbl
	return nil
}

// SetAgentBudget sets the budget of a single agent.
func (pb *Problem[A, T, C, P]) SetAgentBudget(a A, budget C) error {
	i, err := pb.agentIndex(a)
	if err != nil {
		return err
	}
	if budget < 0 {
		return fmt.Errorf("agent %v has budget %v: %w", a, budget, ErrNegativeBudget)
	}
	pb.agentBudgets.vals[i], pb.agentBudgets.set[i] = budget, true
	return nil
}

// SetTaskBudget sets the budget of a single task.
func (pb *Problem[A, T, C, P]) SetTaskBudget(t T, budget C) error {
	j, err := pb.taskIndex(t)
	if err != nil {
		return err
	}
	if budget < 0 {
		return fmt.Errorf("task %v has budget %v: %w", t, budget, ErrNegativeBudget)
	}
	pb.taskBudgets.vals[j], pb.taskBudgets.set[j] = budget, true
	return nil
}

// pairTable builds a table indexed by pairs from the given map.
func pairTable[A, T cmp.Ordered, C Cost, P Profit, V Cost | Profit](pb *Problem[A, T, C, P], vals map[Pair[A, T]]V) (table[V], error) {
	tbl := newTable[V](pb.nbPairs())
	for p, v := range vals {
		i, j, err := pb.indices(p.Agent, p.Task)
		if err != nil {
			return tbl, err
		}
		idx := pb.pair(i, j)
		tbl.vals[idx], tbl.set[idx] = v, true
	}
	return tbl, nil
}

// SetAgentCosts replaces the agent-side costs of all pairs.
func (pb *Problem[A, T, C, P]) SetAgentCosts(costs map[Pair[A, T]]C) error {
	tbl, err := pairTable(pb, costs)
	if err != nil {
		return err
	}
	pb.agentCosts = tbl
	return nil
}

// SetTaskCosts replaces the task-side costs of all pairs.
func (pb *Problem[A, T, C, P]) SetTaskCosts(costs map[Pair[A, T]]C) error {
	tbl, err := pairTable(pb, costs)
	if err != nil {
		return err
	}
	pb.taskCosts = tbl
	return nil
}

// SetCosts replaces both the agent-side and the task-side costs of all pairs
// with the same values.
func (pb *Problem[A, T, C, P]) SetCosts(costs map[Pair[A, T]]C) error {
	tbl, err := pairTable(pb, costs)
	if err != nil {
		return err
	}
	pb.agentCosts = tbl
	pb.taskCosts = table[C]{vals: slices.Clone(tbl.vals), set: slices.Clone(tbl.set)}
	return nil
}

// SetProfits replaces the profits of all pairs.
func (pb *Problem[A, T, C, P]) SetProfits(profits map[Pair[A, T]]P) error {
	tbl, err := pairTable(pb, profits)
	if err != nil {
		return err
	}
	pb.profits = tbl
	return nil
}

// SetProfit sets the profit of a single pair.
func (pb *Problem[A, T, C, P]) SetProfit(a A, t T, profit P) error {
	i, j, err := pb.indices(a, t)
	if err != nil {
		return err
	}
	idx := pb.pair(i, j)
	pb.profits.vals[idx], pb.profits.set[idx] = profit, true
	return nil
}

// SetMandatory replaces the set of pairs that must be part of every solution.
// Tasks are applied in the given order, agent by agent; a task listed twice
// for the same agent makes the problem infeasible.
func (pb *Problem[A, T, C, P]) SetMandatory(mandatory map[A][]T) error {
	res := make([][]int, len(pb.agents))
	for a, tasks := range mandatory {
		i, err := pb.agentIndex(a)
		if err != nil {
			return err
		}
		for _, t := range tasks {
			j, err := pb.taskIndex(t)
			if err != nil {
				return err
			}
			res[i] = append(res[i], j)
		}
	}
	pb.mandatory = res
	return nil
}

// Mandatory returns the mandatory tasks of each agent.
// Agents with no mandatory task are not part of the result.
func (pb *Problem[A, T, C, P]) Mandatory() map[A][]T {
	res := make(map[A][]T)
	for i, tasks := range pb.mandatory {
		for _, j := range tasks {
			res[pb.agents[i]] = append(res[pb.agents[i]], pb.tasks[j])
		}
	}
	return res
}

// Validate checks every agent and task has a budget, and every pair has
// both costs and a profit.
// The first missing value is reported as an ErrMissingEntry.
func (pb *Problem[A, T, C, P]) Validate() error {
	for i, a := range pb.agents {
		if _, err := lookup(&pb.agentBudgets, i, "budget", a); err != nil {
			return err
		}
	}
	for j, t := range pb.tasks {
		if _, err := lookup(&pb.taskBudgets, j, "budget", t); err != nil {
			return err
		}
	}
	for i, a := range pb.agents {
		for j, t := range pb.tasks {
			idx := pb.pair(i, j)
			key := Pair[A, T]{a, t}
			if _, err := lookup(&pb.agentCosts, idx, "agent cost", key); err != nil {
				return err
			}
			if _, err := lookup(&pb.taskCosts, idx, "task cost", key); err != nil {
				return err
			}
			if _, err := lookup(&pb.profits, idx, "profit", key); err != nil {
				return err
			}
		}
	}
	return nil
}
