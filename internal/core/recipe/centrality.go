package recipe

import (
	"container/heap"
	"math"
)

// Centrality 食材子圖的加權介數中心性
// 權重為負或非數值時改用度中心性
func (g *IngredientGraph) Centrality() map[string]float64 {
	nodes, neighbors, ok := g.ingredientSubgraph()
	if !ok {
		return degreeCentrality(nodes, neighbors)
	}
	return betweenness(nodes, neighbors)
}

type weightedEdge struct {
	to     int
	weight float64
}

// ingredientSubgraph 以索引表示只含食材節點的子圖，第三個回傳值表示權重皆合法
func (g *IngredientGraph) ingredientSubgraph() ([]string, [][]weightedEdge, bool) {
	var nodes []string
	index := make(map[string]int)
	for _, id := range g.nodes {
		if g.kinds[id] == kindIngredient {
			index[id] = len(nodes)
			nodes = append(nodes, id)
		}
	}

	valid := true
	neighbors := make([][]weightedEdge, len(nodes))
	for i, id := range nodes {
		for _, other := range g.nodes {
			w, linked := g.adj[id][other]
			if !linked {
				continue
			}
			j, isIngredient := index[other]
			if !isIngredient {
				continue
			}
			if w < 0 || math.IsNaN(w) {
				valid = false
			}
			neighbors[i] = append(neighbors[i], weightedEdge{to: j, weight: w})
		}
	}
	return nodes, neighbors, valid
}

func degreeCentrality(nodes []string, neighbors [][]weightedEdge) map[string]float64 {
	out := make(map[string]float64, len(nodes))
	if len(nodes) == 1 {
		out[nodes[0]] = 1
		return out
	}
	for i, id := range nodes {
		out[id] = float64(len(neighbors[i])) / float64(len(nodes)-1)
	}
	return out
}

// betweenness Brandes 演算法，單源最短路徑使用 Dijkstra
func betweenness(nodes []string, neighbors [][]weightedEdge) map[string]float64 {
	n := len(nodes)
	bc := make([]float64, n)

	for s := 0; s < n; s++ {
		stack, preds, sigma := shortestPaths(s, neighbors)

		delta := make([]float64, n)
		for k := len(stack) - 1; k >= 0; k-- {
			w := stack[k]
			coeff := (1 + delta[w]) / sigma[w]
			for _, v := range preds[w] {
				delta[v] += sigma[v] * coeff
			}
			if w != s {
				bc[w] += delta[w]
			}
		}
	}

	scale := 1.0
	if n > 2 {
		scale = 1 / float64((n-1)*(n-2))
	}
	out := make(map[string]float64, n)
	for i, id := range nodes {
		out[id] = bc[i] * scale
	}
	return out
}

func shortestPaths(s int, neighbors [][]weightedEdge) ([]int, [][]int, []float64) {
	n := len(neighbors)
	preds := make([][]int, n)
	sigma := make([]float64, n)
	final := make([]bool, n)
	dist := make([]float64, n)
	seen := make(map[int]float64, n)
	var stack []int

	sigma[s] = 1
	seen[s] = 0
	pq := &pathQueue{{dist: 0, pred: s, node: s}}
	seq := 1

	for pq.Len() > 0 {
		item := heap.Pop(pq).(pathItem)
		v := item.node
		if final[v] {
			continue
		}
		if v != s {
			sigma[v] += sigma[item.pred]
		}
		stack = append(stack, v)
		final[v] = true
		dist[v] = item.dist

		for _, e := range neighbors[v] {
			w := e.to
			vw := dist[v] + e.weight
			prev, wasSeen := seen[w]
			switch {
			case !final[w] && (!wasSeen || vw < prev):
				seen[w] = vw
				heap.Push(pq, pathItem{dist: vw, seq: seq, pred: v, node: w})
				seq++
				sigma[w] = 0
				preds[w] = []int{v}
			case wasSeen && vw == prev:
				sigma[w] += sigma[v]
				preds[w] = append(preds[w], v)
			}
		}
	}
	return stack, preds, sigma
}

type pathItem struct {
	dist float64
	seq  int
	pred int
	node int
}

type pathQueue []pathItem

func (q pathQueue) Len() int { return len(q) }
func (q pathQueue) Less(i, j int) bool {
	if q[i].dist != q[j].dist {
		return q[i].dist < q[j].dist
	}
	return q[i].seq < q[j].seq
}
func (q pathQueue) Swap(i, j int)       { q[i], q[j] = q[j], q[i] }
func (q *pathQueue) Push(x interface{}) { *q = append(*q, x.(pathItem)) }
func (q *pathQueue) Pop() interface{} {
	old := *q
	item := old[len(old)-1]
	*q = old[:len(old)-1]
	return item
}
