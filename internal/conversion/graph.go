package conversion

import (
	"sort"

	"pos-inventory/internal/model"

	"github.com/shopspring/decimal"
)

// edge priorities, higher wins when two rules connect the same pair of units.
const (
	genericInverse = iota
	genericForward
	specificInverse
	specificForward
)

type edge struct {
	to       string
	factor   decimal.Decimal
	priority int
}

// graph is the deduplicated adjacency list for one ingredient scope.
type graph struct {
	adjacency map[string][]edge
}

// buildGraph keeps the rules that apply to ingredientID, adds the inverse of
// each, and keeps one edge per (from, to) pair. Specific rules beat generic
// ones, and stored rules beat synthesized inverses of the same specificity.
// Rules must be sorted by id so ties keep the lowest id.
func buildGraph(rules []model.ConversionRule, ingredientID *int64) *graph {
	best := make(map[string]map[string]edge)

	put := func(from string, e edge) {
		targets, ok := best[from]
		if !ok {
			targets = make(map[string]edge)
			best[from] = targets
		}
		if current, exists := targets[e.to]; exists && current.priority >= e.priority {
			return
		}
		targets[e.to] = e
	}

	one := decimal.NewFromInt(1)
	for _, rule := range rules {
		specific := false
		switch {
		case rule.IngredientID == nil:
			// generic
		case ingredientID != nil && *rule.IngredientID == *ingredientID:
			specific = true
		default:
			continue
		}

		forward, inverse := genericForward, genericInverse
		if specific {
			forward, inverse = specificForward, specificInverse
		}

		put(rule.FromUnit, edge{to: rule.ToUnit, factor: rule.Factor, priority: forward})
		put(rule.ToUnit, edge{to: rule.FromUnit, factor: one.Div(rule.Factor), priority: inverse})
	}

	g := &graph{adjacency: make(map[string][]edge, len(best))}
	for from, targets := range best {
		edges := make([]edge, 0, len(targets))
		for _, e := range targets {
			edges = append(edges, e)
		}
		sort.Slice(edges, func(i, j int) bool {
			return edges[i].to < edges[j].to
		})
		g.adjacency[from] = edges
	}
	return g
}

type step struct {
	unit   string
	factor decimal.Decimal
	depth  int
}

// shortestPath runs a breadth-first search from one unit to another and
// returns the product of the factors along the fewest-hop path.
func (g *graph) shortestPath(from, to string, maxDepth int) (decimal.Decimal, bool) {
	visited := map[string]bool{from: true}
	queue := []step{{unit: from, factor: decimal.NewFromInt(1)}}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		if current.depth >= maxDepth {
			continue
		}

		for _, e := range g.adjacency[current.unit] {
			if visited[e.to] {
				continue
			}

			factor := current.factor.Mul(e.factor)
			if e.to == to {
				return factor, true
			}

			visited[e.to] = true
			queue = append(queue, step{unit: e.to, factor: factor, depth: current.depth + 1})
		}
	}

	return decimal.Decimal{}, false
}
