package gap

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// workedExample is the problem used throughout the documentation.
func workedExample(t testing.TB) *Problem[string, string, int, float64] {
	pb := NewProblem[string, string, int, float64]([]string{"a", "b", "c"}, []string{"1", "2"})
	require.NoError(t, pb.SetAgentBudgets(map[string]int{"a": 1, "b": 2, "c": 1}))
	require.NoError(t, pb.SetTaskBudgets(map[string]int{"1": 2, "2": 2}))
	require.NoError(t, pb.SetProfits(map[pair]float64{
		{"a", "1"}: 3, {"a", "2"}: 1,
		{"b", "1"}: 1, {"b", "2"}: 3,
		{"c", "1"}: 2, {"c", "2"}: 2,
	}))
	require.NoError(t, pb.SetMandatory(map[string][]string{"a": {"1"}}))
	return pb
}

func TestInitial(t *testing.T) {
	pb := workedExample(t)
	as, err := pb.Initial()
	require.NoError(t, err)
	assert.Equal(t, map[string][]string{"a": {"1"}}, as.Assigned())
	assert.Equal(t, 3.0, as.Profit())
	assert.Equal(t, 1, as.Len())
	b, _ := as.AgentBudget("a")
	assert.Equal(t, 0, b)
	b, _ = as.TaskBudget("1")
	assert.Equal(t, 1, b)
}

func TestInitialInfeasible(t *testing.T) {
	pb := workedExample(t)
	require.NoError(t, pb.SetMandatory(map[string][]string{"a": {"1", "2"}}))
	_, err := pb.Initial()
	assert.ErrorIs(t, err, ErrInfeasibleMandatory)
	assert.ErrorIs(t, err, ErrAgentBudgetExceeded)

	require.NoError(t, pb.SetMandatory(map[string][]string{"b": {"1", "1"}}))
	_, err = pb.Initial()
	assert.ErrorIs(t, err, ErrInfeasibleMandatory)
	assert.ErrorIs(t, err, ErrDuplicatePair)

	require.NoError(t, pb.SetMandatory(map[string][]string{"a": {"1"}, "b": {"1"}, "c": {"1"}}))
	_, err = pb.Initial()
	assert.ErrorIs(t, err, ErrInfeasibleMandatory)
	assert.ErrorIs(t, err, ErrTaskBudgetExceeded)

	_, err = New(pb)
	assert.ErrorIs(t, err, ErrInfeasibleMandatory)
}

func TestAssign(t *testing.T) {
	pb := workedExample(t)
	as, err := pb.Empty()
	require.NoError(t, err)

	require.NoError(t, as.Assign("b", "1"))
	assert.True(t, as.Has("b", "1"))
	assert.False(t, as.Has("b", "2"))
	assert.False(t, as.Has("z", "2"))
	assert.Equal(t, 1.0, as.Profit())

	require.NoError(t, as.Assign("b", "2"))
	assert.Equal(t, []string{"1", "2"}, as.Tasks("b"))
	assert.Nil(t, as.Tasks("a"))
	assert.Nil(t, as.Tasks("z"))
	assert.Equal(t, 4.0, as.Profit())
	b, _ := as.AgentBudget("b")
	assert.Equal(t, 0, b)

	require.NoError(t, as.Assign("a", "1"))
	err = as.Assign("c", "1")
	assert.ErrorIs(t, err, ErrTaskBudgetExceeded)
	err = as.Assign("a", "2")
	assert.ErrorIs(t, err, ErrAgentBudgetExceeded)
	err = as.Assign("z", "1")
	assert.ErrorIs(t, err, ErrUnknownEntity)
	assert.Equal(t, []pair{{"a", "1"}, {"b", "1"}, {"b", "2"}}, as.Pairs())
}

func TestAssignDuplicateLeavesStateUnchanged(t *testing.T) {
	pb := NewProblem[string, string, int, int]([]string{"a"}, []string{"1"})
	require.NoError(t, pb.SetAgentBudgets(map[string]int{"a": 10}))
	require.NoError(t, pb.SetTaskBudgets(map[string]int{"1": 10}))
	require.NoError(t, pb.SetProfits(map[pair]int{{"a", "1"}: 7}))
	as, err := pb.Empty()
	require.NoError(t, err)
	require.NoError(t, as.Assign("a", "1"))
	before := as.Clone()
	key := as.Key()

	for i := 0; i < 3; i++ {
		assert.ErrorIs(t, as.Assign("a", "1"), ErrDuplicatePair)
	}
	assert.Equal(t, key, as.Key())
	assert.Equal(t, before.Profit(), as.Profit())
	ab, _ := as.AgentBudget("a")
	assert.Equal(t, 9, ab)
	tb, _ := as.TaskBudget("1")
	assert.Equal(t, 9, tb)
}

func TestAssignChecksDuplicateFirst(t *testing.T) {
	pb := workedExample(t)
	as, err := pb.Initial()
	require.NoError(t, err)
	// a has no budget left, but the duplicate must be reported.
	assert.ErrorIs(t, as.Assign("a", "1"), ErrDuplicatePair)
}

func TestAssignMissingEntry(t *testing.T) {
	pb := NewProblem[string, string, int, int]([]string{"a"}, []string{"1"})
	as, err := pb.Empty()
	require.NoError(t, err)
	assert.ErrorIs(t, as.Assign("a", "1"), ErrMissingEntry)
	assert.Equal(t, 0, as.Len())
}

func TestMonotonicBudgets(t *testing.T) {
	pb := NewProblem[int, int, float64, float64]([]int{1, 2, 3}, []int{1, 2, 3})
	costs := make(map[Pair[int, int]]float64)
	profits := make(map[Pair[int, int]]float64)
	for a := 1; a <= 3; a++ {
		for task := 1; task <= 3; task++ {
			costs[Pair[int, int]{a, task}] = float64(a*task) / 4
			profits[Pair[int, int]{a, task}] = float64(a + task)
		}
	}
	require.NoError(t, pb.SetCosts(costs))
	require.NoError(t, pb.SetProfits(profits))
	require.NoError(t, pb.SetAgentBudgets(map[int]float64{1: 2, 2: 2, 3: 2}))
	require.NoError(t, pb.SetTaskBudgets(map[int]float64{1: 2, 2: 2, 3: 2}))
	as, err := pb.Empty()
	require.NoError(t, err)
	for a := 1; a <= 3; a++ {
		for task := 1; task <= 3; task++ {
			before := as.Clone()
			if err := as.Assign(a, task); err != nil {
				assert.True(t, as.Equal(before))
				continue
			}
			for x := 1; x <= 3; x++ {
				b1, _ := before.AgentBudget(x)
				b2, _ := as.AgentBudget(x)
				assert.LessOrEqual(t, b2, b1)
				b1, _ = before.TaskBudget(x)
				b2, _ = as.TaskBudget(x)
				assert.LessOrEqual(t, b2, b1)
			}
		}
	}
}

func TestAssignmentOf(t *testing.T) {
	pb := workedExample(t)
	as, err := pb.AssignmentOf(map[string][]string{"b": {"2", "1"}, "c": {"2"}})
	require.NoError(t, err)
	assert.Equal(t, map[string][]string{"b": {"1", "2"}, "c": {"2"}}, as.Assigned())
	assert.Equal(t, 6.0, as.Profit())

	_, err = pb.AssignmentOf(map[string][]string{"z": {"1"}})
	assert.ErrorIs(t, err, ErrUnknownEntity)
	_, err = pb.AssignmentOf(map[string][]string{"a": {"1", "2"}})
	assert.ErrorIs(t, err, ErrAgentBudgetExceeded)
}

func TestShapeIdentity(t *testing.T) {
	pb := workedExample(t)
	x, err := pb.AssignmentOf(map[string][]string{"b": {"1", "2"}, "c": {"2"}})
	require.NoError(t, err)
	y, err := pb.AssignmentOf(map[string][]string{"c": {"2"}, "b": {"2", "1"}})
	require.NoError(t, err)
	z, err := pb.AssignmentOf(map[string][]string{"b": {"1", "2"}, "c": {"1"}})
	require.NoError(t, err)

	assert.True(t, x.Equal(y))
	assert.Equal(t, x.Key(), y.Key())
	assert.False(t, x.Equal(z))
	assert.NotEqual(t, x.Key(), z.Key())
	assert.Equal(t, 0, x.compare(y))
	assert.Equal(t, 1, x.compare(z), "c1 comes before c2")
	assert.Equal(t, -1, z.compare(x))

	clone := x.Clone()
	require.NoError(t, clone.Assign("a", "1"))
	assert.False(t, clone.Equal(x))
	assert.NotEqual(t, clone.Key(), x.Key())
	assert.Equal(t, 3, x.Len())
}

func TestConcurrentReads(t *testing.T) {
	pb := workedExample(t)
	as, err := pb.AssignmentOf(map[string][]string{"a": {"1"}, "b": {"2"}})
	require.NoError(t, err)
	want, err := pb.AssignmentOf(map[string][]string{"b": {"2"}, "a": {"1"}})
	require.NoError(t, err)

	var wg sync.WaitGroup
	keys := make([]string, 8)
	for i := range keys {
		wg.Add(1)
		go func() {
			defer wg.Done()
			keys[i] = as.Key()
			_ = as.String()
		}()
	}
	wg.Wait()
	for _, key := range keys {
		assert.Equal(t, want.Key(), key)
	}
}

func TestAssignmentString(t *testing.T) {
	pb := workedExample(t)
	as, err := pb.AssignmentOf(map[string][]string{"a": {"1"}, "b": {"2", "1"}, "c": {"2"}})
	require.NoError(t, err)
	assert.Equal(t, "{a:[1] b:[1 2] c:[2]} 9", as.String())

	empty, err := pb.Empty()
	require.NoError(t, err)
	assert.Equal(t, "{} 0", empty.String())
}

func TestLargeShape(t *testing.T) {
	// More than 64 pairs, so that shapes span several words.
	agents := make([]int, 12)
	tasks := make([]int, 12)
	for i := range agents {
		agents[i], tasks[i] = i, i
	}
	pb := NewProblem[int, int, int, int](agents, tasks)
	profits := make(map[Pair[int, int]]int)
	for _, a := range agents {
		for _, task := range tasks {
			profits[Pair[int, int]{a, task}] = 1
		}
	}
	require.NoError(t, pb.SetProfits(profits))
	as, err := pb.Empty()
	require.NoError(t, err)
	require.NoError(t, as.Assign(11, 11))
	require.NoError(t, as.Assign(0, 0))
	assert.Equal(t, []Pair[int, int]{{0, 0}, {11, 11}}, as.Pairs())
	assert.Len(t, as.Key(), 8*3)
	assert.True(t, as.Has(11, 11))
}
