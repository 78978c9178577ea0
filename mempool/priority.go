// Copyright (C) 2019-2024 Algorand, Inc.
// This file is part of go-algorand
//
// go-algorand is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// go-algorand is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with go-algorand.  If not, see <https://www.gnu.org/licenses/>.

package mempool

import "sort"

// priorityQueue is a container/heap.Interface over pendingTx, ordered by
// fee descending and, within equal fees, insertion order ascending (FIFO).
type priorityQueue []*pendingTx

func (pq priorityQueue) Len() int { return len(pq) }

func (pq priorityQueue) Less(i, j int) bool {
	if pq[i].tx.Fee != pq[j].tx.Fee {
		return pq[i].tx.Fee > pq[j].tx.Fee
	}
	return pq[i].seq < pq[j].seq
}

func (pq priorityQueue) Swap(i, j int) {
	pq[i], pq[j] = pq[j], pq[i]
	pq[i].index = i
	pq[j].index = j
}

func (pq *priorityQueue) Push(x any) {
	p := x.(*pendingTx)
	p.index = len(*pq)
	*pq = append(*pq, p)
}

func (pq *priorityQueue) Pop() any {
	old := *pq
	n := len(old)
	p := old[n-1]
	old[n-1] = nil
	p.index = -1
	*pq = old[:n-1]
	return p
}

// sortByPriority orders a snapshot slice the same way the heap would pop
// it, without mutating the heap itself.
func sortByPriority(ps []*pendingTx) {
	sort.Slice(ps, func(i, j int) bool {
		if ps[i].tx.Fee != ps[j].tx.Fee {
			return ps[i].tx.Fee > ps[j].tx.Fee
		}
		return ps[i].seq < ps[j].seq
	})
}
