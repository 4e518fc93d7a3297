package gap

import (
	"cmp"
	"encoding/binary"
	"fmt"
	"math/bits"
	"slices"
	"strings"
)

// An Assignment is a partial solution to a problem: a set of (agent, task) pairs,
// along with the budgets remaining once these pairs were assigned and the profit they yield.
//
// Two assignments are equal iff they contain the same pairs: budgets and profit
// derive from the pairs and the problem, so they are not part of the identity.
//
// Reading an assignment from several goroutines is safe; modifying it while
// it is being read is not.
type Assignment[A, T cmp.Ordered, C Cost, P Profit] struct {
	pb           *Problem[A, T, C, P]
	shape        []uint64 // Bit i*nbTasks+j is set iff agent i is assigned to task j
	agentBudgets []C      // Remaining budget for each agent
	taskBudgets  []C      // Remaining budget for each task
	profit       P
	nbPairs      int
	key          string // Shape as bytes, kept in sync by add
}

// Empty returns an assignment where no agent is assigned to any task.
func (pb *Problem[A, T, C, P]) Empty() (*Assignment[A, T, C, P], error) {
	as := &Assignment[A, T, C, P]{
		pb:           pb,
		shape:        make([]uint64, (pb.nbPairs()+63)/64),
		agentBudgets: make([]C, len(pb.agents)),
		taskBudgets:  make([]C, len(pb.tasks)),
	}
	for i, a := range pb.agents {
		b, err := lookup(&pb.agentBudgets, i, "budget", a)
		if err != nil {
			return nil, err
		}
		as.agentBudgets[i] = b
	}
	for j, t := range pb.tasks {
		b, err := lookup(&pb.taskBudgets, j, "budget", t)
		if err != nil {
			return nil, err
		}
		as.taskBudgets[j] = b
	}
	as.updateKey()
	return as, nil
}

// Initial returns the assignment every search starts from: all mandatory pairs are assigned.
// If one of them cannot be assigned, the returned error wraps both ErrInfeasibleMandatory
// and the reason why the pair was rejected.
func (pb *Problem[A, T, C, P]) Initial() (*Assignment[A, T, C, P], error) {
	as, err := pb.Empty()
	if err != nil {
		return nil, err
	}
	for i, tasks := range pb.mandatory {
		for _, j := range tasks {
			if err := as.assign(i, j); err != nil {
				return nil, fmt.Errorf("%w: %w", ErrInfeasibleMandatory, err)
			}
		}
	}
	return as, nil
}

// AssignmentOf returns the assignment made of the given pairs, ignoring mandatory pairs.
// Pairs are assigned agent by agent, in the given task order.
func (pb *Problem[A, T, C, P]) AssignmentOf(assigned map[A][]T) (*Assignment[A, T, C, P], error) {
	for a := range assigned {
		if _, err := pb.agentIndex(a); err != nil {
			return nil, err
		}
	}
	as, err := pb.Empty()
	if err != nil {
		return nil, err
	}
	for _, a := range pb.agents {
		for _, t := range assigned[a] {
			if err := as.Assign(a, t); err != nil {
				return nil, err
			}
		}
	}
	return as, nil
}

// Clone returns a deep copy of the assignment.
func (as *Assignment[A, T, C, P]) Clone() *Assignment[A, T, C, P] {
	res := &Assignment[A, T, C, P]{
		pb:           as.pb,
		shape:        make([]uint64, len(as.shape)),
		agentBudgets: make([]C, len(as.agentBudgets)),
		taskBudgets:  make([]C, len(as.taskBudgets)),
		profit:       as.profit,
		nbPairs:      as.nbPairs,
		key:          as.key,
	}
	copy(res.shape, as.shape)
	copy(res.agentBudgets, as.agentBudgets)
	copy(res.taskBudgets, as.taskBudgets)
	return res
}

// Assign assigns the agent to the task.
// It fails, without modifying the assignment, if the agent was already assigned to the task
// or if the agent or the task does not have enough budget left.
func (as *Assignment[A, T, C, P]) Assign(a A, t T) error {
	i, j, err := as.pb.indices(a, t)
	if err != nil {
		return err
	}
	return as.assign(i, j)
}

func (as *Assignment[A, T, C, P]) assign(i, j int) error {
	pb := as.pb
	idx := pb.pair(i, j)
	key := Pair[A, T]{pb.agents[i], pb.tasks[j]}
	if as.has(idx) {
		return fmt.Errorf("pair %v: %w", key, ErrDuplicatePair)
	}
	ac, err := lookup(&pb.agentCosts, idx, "agent cost", key)
	if err != nil {
		return err
	}
	tc, err := lookup(&pb.taskCosts, idx, "task cost", key)
	if err != nil {
		return err
	}
	profit, err := lookup(&pb.profits, idx, "profit", key)
	if err != nil {
		return err
	}
	if ac > as.agentBudgets[i] {
		return fmt.Errorf("pair %v costs %v, agent has %v left: %w", key, ac, as.agentBudgets[i], ErrAgentBudgetExceeded)
	}
	if tc > as.taskBudgets[j] {
		return fmt.Errorf("pair %v costs %v, task has %v left: %w", key, tc, as.taskBudgets[j], ErrTaskBudgetExceeded)
	}
	as.add(i, j, ac, tc, profit)
	return nil
}

// add assigns agent i to task j, without checking anything.
func (as *Assignment[A, T, C, P]) add(i, j int, agentCost, taskCost C, profit P) {
	idx := as.pb.pair(i, j)
	as.shape[idx/64] |= 1 << (idx % 64)
	as.agentBudgets[i] -= agentCost
	as.taskBudgets[j] -= taskCost
	as.profit += profit
	as.nbPairs++
	as.updateKey()
}

func (as *Assignment[A, T, C, P]) updateKey() {
	buf := make([]byte, 8*len(as.shape))
	for i, word := range as.shape {
		binary.LittleEndian.PutUint64(buf[8*i:], word)
	}
	as.key = string(buf)
}

func (as *Assignment[A, T, C, P]) has(idx int) bool {
	return as.shape[idx/64]&(1<<(idx%64)) != 0
}

// Has returns true iff the agent is assigned to the task.
func (as *Assignment[A, T, C, P]) Has(a A, t T) bool {
	i, j, err := as.pb.indices(a, t)
	if err != nil {
		return false
	}
	return as.has(as.pb.pair(i, j))
}

// forEach calls f on each assigned pair, in increasing pair index order,
// i.e sorted by agent then by task.
func (as *Assignment[A, T, C, P]) forEach(f func(i, j int)) {
	nbTasks := len(as.pb.tasks)
	for w, word := range as.shape {
		for word != 0 {
			idx := w*64 + bits.TrailingZeros64(word)
			f(idx/nbTasks, idx%nbTasks)
			word &= word - 1
		}
	}
}

// Pairs returns the assigned pairs, sorted by agent then task.
func (as *Assignment[A, T, C, P]) Pairs() []Pair[A, T] {
	res := make([]Pair[A, T], 0, as.nbPairs)
	as.forEach(func(i, j int) {
		res = append(res, Pair[A, T]{as.pb.agents[i], as.pb.tasks[j]})
	})
	return res
}

// Assigned returns, for each agent with at least one task, its sorted list of tasks.
func (as *Assignment[A, T, C, P]) Assigned() map[A][]T {
	res := make(map[A][]T)
	as.forEach(func(i, j int) {
		a := as.pb.agents[i]
		res[a] = append(res[a], as.pb.tasks[j])
	})
	return res
}

// Tasks returns the sorted list of tasks the agent is assigned to.
func (as *Assignment[A, T, C, P]) Tasks(a A) []T {
	i, ok := as.pb.agentIdx[a]
	if !ok {
		return nil
	}
	var res []T
	for j, t := range as.pb.tasks {
		if as.has(as.pb.pair(i, j)) {
			res = append(res, t)
		}
	}
	return res
}

// Len returns the number of assigned pairs.
func (as *Assignment[A, T, C, P]) Len() int {
	return as.nbPairs
}

// Profit returns the sum of the profits of all assigned pairs.
func (as *Assignment[A, T, C, P]) Profit() P {
	return as.profit
}

// AgentBudget returns what is left of the agent's budget.
func (as *Assignment[A, T, C, P]) AgentBudget(a A) (C, error) {
	i, err := as.pb.agentIndex(a)
	if err != nil {
		return 0, err
	}
	return as.agentBudgets[i], nil
}

// TaskBudget returns what is left of the task's budget.
func (as *Assignment[A, T, C, P]) TaskBudget(t T) (C, error) {
	j, err := as.pb.taskIndex(t)
	if err != nil {
		return 0, err
	}
	return as.taskBudgets[j], nil
}

// Key returns a string identifying the shape of the assignment, i.e its set of pairs.
// Two assignments of the same problem have the same key iff they are equal.
func (as *Assignment[A, T, C, P]) Key() string {
	return as.key
}

// Equal returns true iff both assignments contain the same pairs.
func (as *Assignment[A, T, C, P]) Equal(other *Assignment[A, T, C, P]) bool {
	if as.nbPairs != other.nbPairs || len(as.shape) != len(other.shape) {
		return false
	}
	for i := range as.shape {
		if as.shape[i] != other.shape[i] {
			return false
		}
	}
	return true
}

// indices returns the sorted list of assigned pair indices.
func (as *Assignment[A, T, C, P]) indices() []int {
	res := make([]int, 0, as.nbPairs)
	nbTasks := len(as.pb.tasks)
	as.forEach(func(i, j int) {
		res = append(res, i*nbTasks+j)
	})
	return res
}

// compare orders assignments lexicographically by their sorted list of pairs.
func (as *Assignment[A, T, C, P]) compare(other *Assignment[A, T, C, P]) int {
	return slices.Compare(as.indices(), other.indices())
}

// String returns a representation of the assignment and its profit, like "{a:[1] b:[1 2] c:[2]} 9".
func (as *Assignment[A, T, C, P]) String() string {
	var sb strings.Builder
	sb.WriteByte('{')
	last := -1
	as.forEach(func(i, j int) {
		if i != last {
			if last != -1 {
				sb.WriteString("] ")
			}
			fmt.Fprintf(&sb, "%v:[%v", as.pb.agents[i], as.pb.tasks[j])
			last = i
		} else {
			fmt.Fprintf(&sb, " %v", as.pb.tasks[j])
		}
	})
	if last != -1 {
		sb.WriteByte(']')
	}
	fmt.Fprintf(&sb, "} %v", as.profit)
	return sb.String()
}
