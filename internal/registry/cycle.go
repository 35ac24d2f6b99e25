package registry

import (
	"strings"

	"axiomarium/internal/domain"
)

// findCycle checks whether registering a node with the given outgoing
// citations would close a cycle in the citation graph. The existing graph
// is acyclic, so only paths leading back to the new node matter: the check
// walks from each citation over resolved and pending (deferred) edges and
// is linear in the edges reachable from the new proof, not in the whole
// registry.
//
// Returns the deterministic witness path, or nil. Requires r.mu held.
func (r *Registry) findCycle(name string, cites []string) []string {
	for _, cite := range cites {
		if cite == name {
			return []string{name, name}
		}
		if path := r.findPath(cite, name); path != nil {
			return append([]string{name}, path...)
		}
	}
	return nil
}

// findPath walks citation edges depth-first from start and returns the
// first path reaching target, in edge order for a stable witness.
func (r *Registry) findPath(start, target string) []string {
	visited := make(map[string]struct{})

	var dfs func(n string) []string
	dfs = func(n string) []string {
		if n == target {
			return []string{n}
		}
		if _, done := visited[n]; done {
			return nil
		}
		visited[n] = struct{}{}

		for _, edges := range [][]string{r.citations[n], r.pending[n]} {
			for _, next := range edges {
				if path := dfs(next); path != nil {
					return append([]string{n}, path...)
				}
			}
		}
		return nil
	}
	return dfs(start)
}

func cycleError(path []string) error {
	return domain.NewError(domain.ErrCyclicDependency, path[0],
		"citation cycle: %s", strings.Join(path, " -> "))
}
