package gap

import (
	"cmp"
	"context"
	"log/slog"
	"slices"
	"time"
)

// How many expansions are done between two checks of the context.
const ctxCheckInterval = 256

// Status is the status of a search.
type Status byte

const (
	// Indet means the search was stopped before the whole search space was explored.
	// The assignments found so far are not guaranteed to be optimal.
	Indet = Status(iota)
	// Optimal means the search space was entirely explored:
	// the assignments found are all the optimal, maximal ones.
	Optimal
)

func (s Status) String() string {
	switch s {
	case Indet:
		return "INDETERMINATE"
	case Optimal:
		return "OPTIMAL"
	default:
		panic("invalid status")
	}
}

// Stats are statistics about the search.
// They are provided for information purpose only.
type Stats struct {
	NbExpanded   int           // How many assignments were expanded
	NbGenerated  int           // How many new assignments were pushed to the open set
	NbDuplicates int           // How many successors were dropped because their shape was already known
	NbMaximal    int           // How many maximal assignments were met
	NbImproved   int           // How many times the best profit was improved
	MaxOpen      int           // Maximum size of the open set
	Duration     time.Duration // Time spent searching
}

// A Solver looks for all the optimal, maximal assignments of a problem.
//
// Assignments are explored best profit first. Every time an assignment is expanded, all assignments
// containing one more pair are generated, unless an assignment with the same pairs was already met.
// An assignment with no legal successor is maximal; the maximal assignments with the best profit
// are the result of the search.
//
// The best profit is only taken over maximal assignments: it starts from the profit of the first
// maximal assignment found, not from the profit of the initial assignment. Both are the same when
// no profit is negative; otherwise, the result is still the best maximal assignments, even when
// their profit is lower than the initial one.
//
// Profits are summed pair by pair and compared exactly, so floating-point profits may make
// assignments with the same real profit look different. Use integer or fixed-point profits
// when that matters.
type Solver[A, T cmp.Ordered, C Cost, P Profit] struct {
	Logger        *slog.Logger // Where search events are logged. Discarded by default.
	MaxExpansions int          // If > 0, the search stops with the Indet status after that many expansions.
	Stats         Stats        // Statistics about the search.
	pb            *Problem[A, T, C, P]
	status        Status
	started       bool
	open          queue[A, T, C, P]
	inOpen        map[string]struct{} // Keys of the assignments in open
	closed        map[string]struct{} // Keys of the assignments already expanded
	results       []*Assignment[A, T, C, P]
	best          P // Best profit among maximal assignments, meaningful iff len(results) > 0
}

// New returns a solver for the given problem.
// It fails if the problem is incomplete or if its mandatory pairs cannot all be assigned.
// The problem must not be modified while the solver is in use.
func New[A, T cmp.Ordered, C Cost, P Profit](pb *Problem[A, T, C, P]) (*Solver[A, T, C, P], error) {
	if err := pb.Validate(); err != nil {
		return nil, err
	}
	initial, err := pb.Initial()
	if err != nil {
		return nil, err
	}
	s := &Solver[A, T, C, P]{
		Logger: slog.New(slog.DiscardHandler),
		pb:     pb,
		status: Indet,
		inOpen: make(map[string]struct{}),
		closed: make(map[string]struct{}),
	}
	s.pushOpen(initial)
	return s, nil
}

// Solve returns the optimal, maximal assignments of the problem,
// sorted by decreasing profit then by pairs.
func Solve[A, T cmp.Ordered, C Cost, P Profit](pb *Problem[A, T, C, P]) ([]*Assignment[A, T, C, P], error) {
	s, err := New(pb)
	if err != nil {
		return nil, err
	}
	s.Solve()
	return s.Assignments(), nil
}

// Solve explores the search space until it is exhausted or MaxExpansions is reached.
func (s *Solver[A, T, C, P]) Solve() Status {
	return s.SolveContext(context.Background())
}

// SolveContext is like Solve, but also stops, with the Indet status, once ctx is done.
// A stopped search can be resumed by calling SolveContext or Solve again.
func (s *Solver[A, T, C, P]) SolveContext(ctx context.Context) Status {
	if s.status == Optimal {
		return Optimal
	}
	if !s.started {
		s.started = true
		s.Logger.Debug("search started",
			"agents", len(s.pb.agents), "tasks", len(s.pb.tasks))
	}
	start := time.Now()
	defer func() { s.Stats.Duration += time.Since(start) }()
	for !s.open.empty() {
		if s.MaxExpansions > 0 && s.Stats.NbExpanded >= s.MaxExpansions {
			s.Logger.Info("search interrupted", "reason", "max expansions", "expanded", s.Stats.NbExpanded)
			return Indet
		}
		if s.Stats.NbExpanded%ctxCheckInterval == 0 && ctx.Err() != nil {
			s.Logger.Info("search interrupted", "reason", ctx.Err(), "expanded", s.Stats.NbExpanded)
			return Indet
		}
		current := s.open.pop()
		key := current.Key()
		delete(s.inOpen, key)
		s.closed[key] = struct{}{}
		s.Stats.NbExpanded++
		if !s.expand(current) {
			s.record(current)
		}
	}
	s.status = Optimal
	s.Logger.Info("search done",
		"expanded", s.Stats.NbExpanded,
		"generated", s.Stats.NbGenerated,
		"duplicates", s.Stats.NbDuplicates,
		"maximal", s.Stats.NbMaximal,
		"solutions", len(s.results))
	return Optimal
}

func (s *Solver[A, T, C, P]) pushOpen(as *Assignment[A, T, C, P]) {
	s.open.push(as)
	s.inOpen[as.Key()] = struct{}{}
	if s.open.len() > s.Stats.MaxOpen {
		s.Stats.MaxOpen = s.open.len()
	}
}

// expand pushes all unknown successors of the assignment to the open set.
// It returns false iff the assignment has no successor at all, i.e is maximal.
func (s *Solver[A, T, C, P]) expand(as *Assignment[A, T, C, P]) bool {
	pb := s.pb
	expanded := false
	for i := range pb.agents {
		agentBudget := as.agentBudgets[i]
		if agentBudget <= 0 {
			continue
		}
		for j := range pb.tasks {
			idx := pb.pair(i, j)
			if as.has(idx) {
				continue
			}
			agentCost := pb.agentCosts.vals[idx]
			if agentCost > agentBudget {
				continue
			}
			taskCost := pb.taskCosts.vals[idx]
			if taskCost > as.taskBudgets[j] {
				continue
			}
			expanded = true
			next := as.Clone()
			next.add(i, j, agentCost, taskCost, pb.profits.vals[idx])
			key := next.Key()
			if _, ok := s.closed[key]; ok {
				s.Stats.NbDuplicates++
				continue
			}
			if _, ok := s.inOpen[key]; ok {
				s.Stats.NbDuplicates++
				continue
			}
			s.Stats.NbGenerated++
			s.pushOpen(next)
		}
	}
	return expanded
}

// record compares a maximal assignment to the best ones found so far.
func (s *Solver[A, T, C, P]) record(as *Assignment[A, T, C, P]) {
	s.Stats.NbMaximal++
	switch {
	case len(s.results) == 0 || as.profit > s.best:
		s.best = as.profit
		s.results = []*Assignment[A, T, C, P]{as}
		s.Stats.NbImproved++
		s.Logger.Debug("new best profit", "profit", as.profit, "assignment", as.String())
	case as.profit == s.best:
		s.results = append(s.results, as)
	}
}

// Status returns the status of the last search.
func (s *Solver[A, T, C, P]) Status() Status {
	return s.status
}

// Best returns the best profit found so far.
// ok is false if no maximal assignment was found yet.
func (s *Solver[A, T, C, P]) Best() (profit P, ok bool) {
	return s.best, len(s.results) > 0
}

// Assignments returns the best maximal assignments found so far,
// sorted by decreasing profit then by pairs.
// Once the status is Optimal, these are all the optimal, maximal assignments.
func (s *Solver[A, T, C, P]) Assignments() []*Assignment[A, T, C, P] {
	res := slices.Clone(s.results)
	slices.SortFunc(res, func(x, y *Assignment[A, T, C, P]) int {
		if c := cmp.Compare(y.profit, x.profit); c != 0 {
			return c
		}
		return x.compare(y)
	})
	return res
}

// Problem returns the problem being solved.
func (s *Solver[A, T, C, P]) Problem() *Problem[A, T, C, P] {
	return s.pb
}
