package gap

import "errors"

// Setup errors. They are returned while building a problem or its initial assignment.
var (
	// ErrMissingEntry means a cost, a profit or a budget was never registered.
	ErrMissingEntry = errors.New("missing entry")
	// ErrUnknownEntity means an agent or a task is not part of the problem.
	ErrUnknownEntity = errors.New("unknown agent or task")
	// ErrNegativeBudget means a budget was set to a negative value.
	ErrNegativeBudget = errors.New("negative budget")
	// ErrInfeasibleMandatory means mandatory pairs could not all be assigned.
	ErrInfeasibleMandatory = errors.New("infeasible mandatory assignment")
)

// Expansion errors, returned by Assignment.Assign.
// The solver never triggers them since it only tries legal pairs.
var (
	ErrDuplicatePair       = errors.New("agent already assigned to task")
	ErrAgentBudgetExceeded = errors.New("agent budget exceeded")
	ErrTaskBudgetExceeded  = errors.New("task budget exceeded")
)
