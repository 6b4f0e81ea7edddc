package ledger

// BuildSankey turns flows into a node list and index based links. Nodes
// appear in the order they are first seen; a self transfer would be a loop
// the chart cannot draw, so it is skipped.
func BuildSankey(flows []Flow) SankeyGraph {
	g := SankeyGraph{Nodes: []SankeyNode{}, Links: []SankeyLink{}}
	index := make(map[string]int)

	node := func(name string) int {
		if i, ok := index[name]; ok {
			return i
		}
		index[name] = len(g.Nodes)
		g.Nodes = append(g.Nodes, SankeyNode{Name: name})
		return index[name]
	}

	for _, f := range flows {
		if f.From == f.To {
			continue
		}
		src := node(f.From)
		dst := node(f.To)
		g.Links = append(g.Links, SankeyLink{Source: src, Target: dst, Value: f.Volume})
	}
	return g
}
