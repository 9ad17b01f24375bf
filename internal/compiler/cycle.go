package compiler

import (
	"fmt"
	"sort"
	"strings"

	"github.com/megant/aktion/internal/ir"
)

// Diagnostic levels.
const (
	LevelWarning = "warning"
	LevelInfo    = "info"
)

// Diagnostic is an advisory finding about a set of descriptors.
//
// Diagnostics never block activation: the scheduler ignores references to
// names that are not in a batch, and resolves ordering in a single pass even
// when constraints contradict each other.
type Diagnostic struct {
	Name    string   `json:"name"`           // Descriptor the finding is about
	Path    []string `json:"path,omitempty"` // Cycle path: ["a", "b", "a"]
	Message string   `json:"message"`
	Level   string   `json:"level"`
}

// Diagnose checks descriptor names and ordering constraints:
//   - duplicate names (activations are keyed by name)
//   - trigger-before/after references to unknown names, or to the action itself
//   - ordering cycles, where no order satisfies every constraint
//
// Output is sorted by descriptor name.
func Diagnose(descs []*ir.Descriptor) []Diagnostic {
	var diags []Diagnostic

	known := make(map[string]int, len(descs))
	for _, d := range descs {
		known[d.Name]++
	}
	for _, name := range sortedKeys(known) {
		if known[name] > 1 {
			diags = append(diags, Diagnostic{
				Name:    name,
				Message: fmt.Sprintf("action name %q is declared %d times", name, known[name]),
				Level:   LevelWarning,
			})
		}
	}

	for _, d := range descs {
		for _, ref := range []struct{ attr, name string }{
			{AttrTriggerBefore, d.TriggerBefore},
			{AttrTriggerAfter, d.TriggerAfter},
		} {
			switch {
			case ref.name == "":
			case ref.name == d.Name:
				diags = append(diags, Diagnostic{
					Name:    d.Name,
					Message: fmt.Sprintf("%s references the action itself", ref.attr),
					Level:   LevelInfo,
				})
			case known[ref.name] == 0:
				diags = append(diags, Diagnostic{
					Name:    d.Name,
					Message: fmt.Sprintf("%s references unknown action %q", ref.attr, ref.name),
					Level:   LevelWarning,
				})
			}
		}
	}

	diags = append(diags, analyzeCycles(descs)...)

	sort.SliceStable(diags, func(i, j int) bool {
		return diags[i].Name < diags[j].Name
	})
	return diags
}

// precedenceGraph maps an action name to the names that must run after it.
type precedenceGraph map[string][]string

// buildPrecedenceGraph turns ordering constraints into edges:
//   - a.trigger_before = b gives a → b
//   - a.trigger_after  = b gives b → a
//
// Self references and unknown names are left out.
func buildPrecedenceGraph(descs []*ir.Descriptor) precedenceGraph {
	graph := make(precedenceGraph)
	for _, d := range descs {
		if graph[d.Name] == nil {
			graph[d.Name] = []string{}
		}
	}
	for _, d := range descs {
		if b := d.TriggerBefore; b != "" && b != d.Name {
			if _, ok := graph[b]; ok {
				graph[d.Name] = appendUnique(graph[d.Name], b)
			}
		}
		if a := d.TriggerAfter; a != "" && a != d.Name {
			if _, ok := graph[a]; ok {
				graph[a] = appendUnique(graph[a], d.Name)
			}
		}
	}
	return graph
}

// analyzeCycles reports every strongly connected component of the
// precedence graph with more than one member.
func analyzeCycles(descs []*ir.Descriptor) []Diagnostic {
	if len(descs) == 0 {
		return nil
	}
	graph := buildPrecedenceGraph(descs)

	var diags []Diagnostic
	for _, scc := range tarjanSCC(graph) {
		if len(scc) < 2 {
			continue
		}
		path := reconstructCyclePath(scc, graph)
		diags = append(diags, Diagnostic{
			Name:    path[0],
			Path:    path,
			Message: fmt.Sprintf("ordering cycle: %s", strings.Join(path, " → ")),
			Level:   LevelWarning,
		})
	}
	return diags
}

// tarjanSCC finds strongly connected components using Tarjan's algorithm.
// Nodes are visited in sorted order so the output is stable; each SCC is
// sorted too.
func tarjanSCC(graph precedenceGraph) [][]string {
	var (
		index   = 0
		stack   []string
		indices = make(map[string]int)
		lowlink = make(map[string]int)
		onStack = make(map[string]bool)
		sccs    [][]string
	)

	var strongConnect func(string)
	strongConnect = func(v string) {
		indices[v] = index
		lowlink[v] = index
		index++
		stack = append(stack, v)
		onStack[v] = true

		for _, w := range graph[v] {
			if _, visited := indices[w]; !visited {
				strongConnect(w)
				lowlink[v] = min(lowlink[v], lowlink[w])
			} else if onStack[w] {
				lowlink[v] = min(lowlink[v], indices[w])
			}
		}

		// v is a root node: pop its component
		if lowlink[v] == indices[v] {
			var scc []string
			for {
				w := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[w] = false
				scc = append(scc, w)
				if w == v {
					break
				}
			}
			sort.Strings(scc)
			sccs = append(sccs, scc)
		}
	}

	for _, node := range sortedKeys(graph) {
		if _, visited := indices[node]; !visited {
			strongConnect(node)
		}
	}

	sort.Slice(sccs, func(i, j int) bool { return sccs[i][0] < sccs[j][0] })
	return sccs
}

// reconstructCyclePath walks edges inside the SCC from its first member until
// it returns to it.
func reconstructCyclePath(scc []string, graph precedenceGraph) []string {
	if len(scc) == 0 {
		return []string{}
	}

	members := make(map[string]bool, len(scc))
	for _, node := range scc {
		members[node] = true
	}

	start := scc[0]
	current := start
	path := []string{current}
	visited := make(map[string]bool)

	for {
		visited[current] = true

		var next string
		for _, neighbor := range graph[current] {
			if members[neighbor] && (!visited[neighbor] || neighbor == start) {
				next = neighbor
				break
			}
		}
		if next == "" {
			break
		}

		path = append(path, next)
		if next == start {
			break
		}
		current = next
	}

	return path
}

func appendUnique(list []string, s string) []string {
	for _, x := range list {
		if x == s {
			return list
		}
	}
	return append(list, s)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
