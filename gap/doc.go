/*
Package gap solves generalized assignment problems where tasks can be shared.

A problem is made of agents and tasks. Assigning an agent to a task consumes
part of the agent's budget and part of the task's budget, and yields a profit.
Contrary to the classical GAP, a task is not limited to a single agent: its own
budget decides how many agents can work on it.

The solver does not look for one good assignment, it enumerates every maximal
assignment (i.e an assignment that cannot be extended by any single pair without
exceeding a budget) whose profit is the best possible one.

Describing a problem

A problem is created from its agents and tasks, then its tables are filled:

    pb := gap.NewProblem[string, string, int, float64]([]string{"a", "b", "c"}, []string{"1", "2"})
    pb.SetAgentBudgets(map[string]int{"a": 1, "b": 2, "c": 1})
    pb.SetTaskBudgets(map[string]int{"1": 2, "2": 2})
    pb.SetProfits(map[gap.Pair[string, string]]float64{
        {"a", "1"}: 3, {"a", "2"}: 1,
        {"b", "1"}: 1, {"b", "2"}: 3,
        {"c", "1"}: 2, {"c", "2"}: 2,
    })
    pb.SetMandatory(map[string][]string{"a": {"1"}})

By default, every budget and every cost is 1, i.e each agent does at most one
task and each task is done by at most one agent. Profits have no default and
must be provided for every pair.

Costs and profits can have different numeric types, so that integer budgets
can be associated with fractional profits. Profits are compared exactly, though:
since floating-point sums depend on the order of the terms, two assignments with
the same decimal profit may be told apart. Scaling decimal values to integers,
as the gapfile package does, avoids the issue.

Solving a problem

    res, err := gap.Solve(pb)

For the above problem, res contains one assignment:

    {a:[1] b:[1 2] c:[2]} 9

The solver can also be used directly, to get statistics or to bound the search:

    s, err := gap.New(pb)
    s.MaxExpansions = 100000
    if s.Solve() == gap.Optimal {
        res = s.Assignments()
    }

The search is exhaustive: states are explored best profit first, and every
distinct assignment shape is expanded at most once. It is exact but its cost
grows with the number of reachable shapes, so it is meant for small to medium
sized problems.
*/
package gap
