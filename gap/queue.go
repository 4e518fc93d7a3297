/******************************************************************************************[Heap.h]
Copyright (c) 2003-2006, Niklas Een, Niklas Sorensson
Copyright (c) 2007-2010, Niklas Sorensson

Permission is hereby granted, free of charge, to any person obtaining a copy of this software and
associated documentation files (the "Software"), to deal in the Software without restriction,
including without limitation the rights to use, copy, modify, merge, publish, distribute,
sublicense, and/or sell copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in all copies or
substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR IMPLIED, INCLUDING BUT
NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY, FITNESS FOR A PARTICULAR PURPOSE AND
NONINFRINGEMENT. IN NO EVENT SHALL THE AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM,
DAMAGES OR OTHER LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM, OUT
OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE SOFTWARE.
**************************************************************************************************/

package gap

import "cmp"

// A binary heap of assignments waiting to be expanded, strongly inspired from Minisat's mtl/Heap.h.
// The most profitable assignment is on top; among assignments with the same profit,
// the one that was pushed first comes first, so that the exploration order is reproducible.

type queueItem[A, T cmp.Ordered, C Cost, P Profit] struct {
	as  *Assignment[A, T, C, P]
	seq uint64 // Insertion rank
}

type queue[A, T cmp.Ordered, C Cost, P Profit] struct {
	content []queueItem[A, T, C, P]
	nbPush  uint64
}

// lt is true iff x must be expanded before y.
func (q *queue[A, T, C, P]) lt(x, y queueItem[A, T, C, P]) bool {
	if x.as.profit != y.as.profit {
		return x.as.profit > y.as.profit
	}
	return x.seq < y.seq
}

// Traversal functions.
func left(i int) int   { return i*2 + 1 }
func right(i int) int  { return (i + 1) * 2 }
func parent(i int) int { return (i - 1) >> 1 }

func (q *queue[A, T, C, P]) percolateUp(i int) {
	x := q.content[i]
	for i != 0 && q.lt(x, q.content[parent(i)]) {
		q.content[i] = q.content[parent(i)]
		i = parent(i)
	}
	q.content[i] = x
}

func (q *queue[A, T, C, P]) percolateDown(i int) {
	x := q.content[i]
	for left(i) < len(q.content) {
		child := left(i)
		if right(i) < len(q.content) && q.lt(q.content[right(i)], q.content[child]) {
			child = right(i)
		}
		if !q.lt(q.content[child], x) {
			break
		}
		q.content[i] = q.content[child]
		i = child
	}
	q.content[i] = x
}

func (q *queue[A, T, C, P]) len() int    { return len(q.content) }
func (q *queue[A, T, C, P]) empty() bool { return len(q.content) == 0 }

func (q *queue[A, T, C, P]) push(as *Assignment[A, T, C, P]) {
	q.content = append(q.content, queueItem[A, T, C, P]{as: as, seq: q.nbPush})
	q.nbPush++
	q.percolateUp(len(q.content) - 1)
}

// pop removes and returns the top assignment. The queue must not be empty.
func (q *queue[A, T, C, P]) pop() *Assignment[A, T, C, P] {
	x := q.content[0].as
	last := len(q.content) - 1
	q.content[0] = q.content[last]
	q.content[last] = queueItem[A, T, C, P]{}
	q.content = q.content[:last]
	if len(q.content) > 1 {
		q.percolateDown(0)
	}
	return x
}
