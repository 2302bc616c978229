package server

import (
	"container/heap"
	"errors"
	"strings"

	"github.com/lsrouted/lsrouted/protocols/lsr/packet"
)

// ErrInvalidGraph is returned when a negative edge weight is discovered
// while building or traversing the SPF graph. It aborts only the
// recompute in progress; the next one retries from a fresh snapshot.
var ErrInvalidGraph = errors.New("invalid graph: negative edge weight")

// buildGraph derives an undirected adjacency map from an LSDB snapshot.
// Nodes are router IPs and subnet CIDRs sharing one key space,
// distinguished by the presence of '/' (isSubnet), never by a variant
// discriminant. Router↔router edges are added only when the claimed
// neighbor IP is itself an LSDB originator, so a one-sided neighbor claim
// never creates a usable edge (S3). Router↔subnet edges always cost 0.
func buildGraph(snapshot map[string]*packet.LSA) map[string]map[string]int {
	graph := make(map[string]map[string]int)

	ensure := func(id string) {
		if _, ok := graph[id]; !ok {
			graph[id] = make(map[string]int)
		}
	}

	for id := range snapshot {
		ensure(id)
	}

	for originator, lsa := range snapshot {
		for _, nb := range lsa.Neighbors {
			if _, isOriginator := snapshot[nb.IP]; !isOriginator {
				continue
			}

			ensure(nb.IP)
			graph[originator][nb.IP] = nb.Cost

			// Prefer the neighbor's own claimed cost for the reverse
			// direction if it has one; only fall back to this
			// originator's claim when the neighbor hasn't reported yet.
			if _, exists := graph[nb.IP][originator]; !exists {
				graph[nb.IP][originator] = nb.Cost
			}
		}

		for _, subnet := range lsa.Subnets {
			ensure(subnet)
			graph[originator][subnet] = 0
			graph[subnet][originator] = 0
		}
	}

	return graph
}

func isSubnet(node string) bool {
	return strings.Contains(node, "/")
}

// pqItem is one entry of the Dijkstra frontier.
type pqItem struct {
	node string
	dist int
}

type priorityQueue []pqItem

func (pq priorityQueue) Len() int            { return len(pq) }
func (pq priorityQueue) Less(i, j int) bool  { return pq[i].dist < pq[j].dist }
func (pq priorityQueue) Swap(i, j int)       { pq[i], pq[j] = pq[j], pq[i] }
func (pq *priorityQueue) Push(x interface{}) { *pq = append(*pq, x.(pqItem)) }
func (pq *priorityQueue) Pop() interface{} {
	old := *pq
	n := len(old)
	item := old[n-1]
	*pq = old[:n-1]
	return item
}

// dijkstra runs a heap-based shortest-path search from origin and
// returns the first-popped-wins predecessor tree.
func dijkstra(graph map[string]map[string]int, origin string) (prev map[string]string, err error) {
	dist := map[string]int{origin: 0}
	prev = make(map[string]string)
	visited := make(map[string]bool)

	pq := &priorityQueue{{node: origin, dist: 0}}
	heap.Init(pq)

	for pq.Len() > 0 {
		item := heap.Pop(pq).(pqItem)
		if visited[item.node] {
			continue
		}
		visited[item.node] = true

		for neighbor, weight := range graph[item.node] {
			if weight < 0 {
				return nil, ErrInvalidGraph
			}

			alt := dist[item.node] + weight
			if d, ok := dist[neighbor]; !ok || alt < d {
				dist[neighbor] = alt
				prev[neighbor] = item.node
				heap.Push(pq, pqItem{node: neighbor, dist: alt})
			}
		}
	}

	return prev, nil
}

// firstHopFor walks the predecessor chain from dest back toward origin;
// the node whose predecessor is origin is the first hop. Returns "" if
// dest is unreachable from origin.
func firstHopFor(dest, origin string, prev map[string]string) string {
	node := dest
	for {
		p, ok := prev[node]
		if !ok {
			return ""
		}
		if p == origin {
			return node
		}
		node = p
	}
}

// computeRoutes runs SPF from origin over the given LSDB snapshot and
// returns destination subnet CIDR → next-hop router IP for every
// reachable subnet other than those directly connected (§4.5 (a)(b)(c)).
// A subnet listed in origin's own LSA has itself as first hop and is
// dropped by (b); a connected subnet that origin's LSA does not list yet
// can still appear here, which is why the reconciler also filters
// against the locally connected set (§4.7).
func computeRoutes(snapshot map[string]*packet.LSA, origin string) (map[string]string, error) {
	graph := buildGraph(snapshot)

	for _, edges := range graph {
		for _, w := range edges {
			if w < 0 {
				return nil, ErrInvalidGraph
			}
		}
	}

	if _, ok := graph[origin]; !ok {
		return map[string]string{}, nil
	}

	prev, err := dijkstra(graph, origin)
	if err != nil {
		return nil, err
	}

	routes := make(map[string]string)
	for dest := range graph {
		if dest == origin || !isSubnet(dest) {
			continue
		}

		firstHop := firstHopFor(dest, origin, prev)
		if firstHop == "" || isSubnet(firstHop) || dest == firstHop {
			continue
		}

		routes[dest] = firstHop
	}

	return routes, nil
}
