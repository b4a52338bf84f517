package inject

import (
	"sort"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

// Plan is the bootstrap order implied by the registered dependency graph.
type Plan struct {
	// Order lists every module after all of its registered dependencies.
	Order []string
	// Levels groups modules by dependency depth; level 0 has no registered
	// dependencies.
	Levels [][]string
}

// Plan computes the bootstrap order without invoking any factory. Names
// that are not registered are ignored. A cycle is reported as a
// *CyclicDependencyError.
func (i *Injector) Plan() (Plan, error) {
	names := i.registry.Names()
	ids := make(map[string]int64, len(names))
	g := simple.NewDirectedGraph()
	for n, name := range names {
		ids[name] = int64(n)
		g.AddNode(simple.Node(n))
	}
	for _, name := range names {
		rec, _ := i.registry.Get(name)
		for _, dep := range rec.Dependencies {
			from, ok := ids[dep]
			if !ok {
				continue
			}
			if dep == name {
				return Plan{}, &CyclicDependencyError{Cycle: []string{name, name}}
			}
			g.SetEdge(g.NewEdge(g.Node(from), g.Node(ids[name])))
		}
	}

	byID := func(nodes []graph.Node) {
		sort.Slice(nodes, func(a, b int) bool { return nodes[a].ID() < nodes[b].ID() })
	}
	sorted, err := topo.SortStabilized(g, byID)
	if err != nil {
		if u, ok := err.(topo.Unorderable); ok && len(u) > 0 {
			comp := u[0]
			byID(comp)
			return Plan{}, &CyclicDependencyError{Cycle: i.cycleIn(names, comp)}
		}
		return Plan{}, err
	}

	level := make(map[string]int, len(sorted))
	var p Plan
	for _, n := range sorted {
		name := names[n.ID()]
		lv := 0
		rec, _ := i.registry.Get(name)
		for _, dep := range rec.Dependencies {
			if dl, ok := level[dep]; ok && dl+1 > lv {
				lv = dl + 1
			}
		}
		level[name] = lv
		for len(p.Levels) <= lv {
			p.Levels = append(p.Levels, nil)
		}
		p.Levels[lv] = append(p.Levels[lv], name)
		p.Order = append(p.Order, name)
	}
	return p, nil
}

// cycleIn follows dependencies inside a strongly connected component,
// starting from its first node, until a name repeats.
func (i *Injector) cycleIn(names []string, comp []graph.Node) []string {
	in := make(map[string]bool, len(comp))
	for _, n := range comp {
		in[names[n.ID()]] = true
	}
	cur := names[comp[0].ID()]
	pos := make(map[string]int, len(comp))
	var path []string
	for {
		if at, ok := pos[cur]; ok {
			return append(path[at:], cur)
		}
		pos[cur] = len(path)
		path = append(path, cur)
		rec, _ := i.registry.Get(cur)
		for _, dep := range rec.Dependencies {
			if in[dep] {
				cur = dep
				break
			}
		}
	}
}
