package gap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueueOrder(t *testing.T) {
	pb := NewProblem[int, int, int, int]([]int{0}, []int{0})
	require.NoError(t, pb.SetProfits(map[Pair[int, int]]int{{0, 0}: 1}))
	var q queue[int, int, int, int]
	profits := []int{3, 1, 4, 1, 5, 9, 2, 6, 5, 3, 5}
	items := make([]*Assignment[int, int, int, int], len(profits))
	for i, p := range profits {
		as, err := pb.Empty()
		require.NoError(t, err)
		as.profit = p
		items[i] = as
		q.push(as)
	}
	assert.Equal(t, len(profits), q.len())

	var got []*Assignment[int, int, int, int]
	for !q.empty() {
		got = append(got, q.pop())
	}
	require.Len(t, got, len(profits))
	for i := 1; i < len(got); i++ {
		assert.GreaterOrEqual(t, got[i-1].profit, got[i].profit)
	}
	// Equal profits come out in insertion order.
	assert.Same(t, items[4], got[2])
	assert.Same(t, items[8], got[3])
	assert.Same(t, items[10], got[4])
	assert.Same(t, items[1], got[len(got)-2])
	assert.Same(t, items[3], got[len(got)-1])
}

func TestQueueInterleaved(t *testing.T) {
	pb := NewProblem[int, int, int, float64]([]int{0}, []int{0})
	require.NoError(t, pb.SetProfits(map[Pair[int, int]]float64{{0, 0}: 1}))
	var q queue[int, int, int, float64]
	push := func(p float64) *Assignment[int, int, int, float64] {
		as, err := pb.Empty()
		require.NoError(t, err)
		as.profit = p
		q.push(as)
		return as
	}
	first := push(1)
	push(0.5)
	assert.Same(t, first, q.pop())
	second := push(1)
	assert.Same(t, second, q.pop())
	assert.Equal(t, 0.5, q.pop().profit)
	assert.True(t, q.empty())
}
