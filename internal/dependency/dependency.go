// Package dependency orders named nodes, such as instance lifecycle steps or
// compose services, by their dependencies.
package dependency

import (
	"errors"
	"fmt"
	"sort"

	"github.com/compose-spec/compose-go/v2/types"
	"github.com/dominikbraun/graph"
)

// Graph models dependencies between named nodes.
// Edge direction: dependency -> dependent (i.e., B -> A means A depends on B).
type Graph struct {
	g    graph.Graph[string, string]
	rank map[string]int
}

// New creates a new, empty dependency graph. Cycles are rejected as edges
// are added.
func New() *Graph {
	return &Graph{
		g:    graph.New(graph.StringHash, graph.Directed(), graph.PreventCycles()),
		rank: make(map[string]int),
	}
}

// AddNode ensures a node exists in the graph. Nodes without an ordering
// constraint between them keep the order in which they were added.
func (d *Graph) AddNode(name string) error {
	if name == "" {
		return fmt.Errorf("node name cannot be empty")
	}
	if err := d.g.AddVertex(name); err != nil {
		if errors.Is(err, graph.ErrVertexAlreadyExists) {
			return nil
		}
		return err
	}
	d.rank[name] = len(d.rank)
	return nil
}

// AddDependency records that dependent depends on dependency, adding either
// node if missing.
func (d *Graph) AddDependency(dependent, dependency string) error {
	if dependent == dependency {
		return fmt.Errorf("self-dependency is not allowed: %s", dependent)
	}
	if err := d.AddNode(dependency); err != nil {
		return err
	}
	if err := d.AddNode(dependent); err != nil {
		return err
	}

	if err := d.g.AddEdge(dependency, dependent); err != nil {
		switch {
		case errors.Is(err, graph.ErrEdgeAlreadyExists):
			return nil
		case errors.Is(err, graph.ErrEdgeCreatesCycle):
			return fmt.Errorf("dependency %s -> %s creates a cycle", dependency, dependent)
		default:
			return err
		}
	}
	return nil
}

// Dependencies returns the nodes that name depends on, sorted.
func (d *Graph) Dependencies(name string) ([]string, error) {
	preds, err := d.g.PredecessorMap()
	if err != nil {
		return nil, err
	}
	edges, ok := preds[name]
	if !ok {
		return nil, fmt.Errorf("unknown node: %s", name)
	}
	return sortedKeys(edges), nil
}

// Dependents returns the nodes that depend on name, sorted.
func (d *Graph) Dependents(name string) ([]string, error) {
	adj, err := d.g.AdjacencyMap()
	if err != nil {
		return nil, err
	}
	edges, ok := adj[name]
	if !ok {
		return nil, fmt.Errorf("unknown node: %s", name)
	}
	return sortedKeys(edges), nil
}

// Order returns all nodes with dependencies first. Ties are broken by
// insertion order, so the result is deterministic.
func (d *Graph) Order() ([]string, error) {
	return graph.StableTopologicalSort(d.g, func(a, b string) bool {
		return d.rank[a] < d.rank[b]
	})
}

// FromProject builds a graph of a compose project's services from their
// depends_on entries. Services are added in name order.
func FromProject(project *types.Project) (*Graph, error) {
	d := New()

	names := make([]string, 0, len(project.Services))
	for name := range project.Services {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if err := d.AddNode(name); err != nil {
			return nil, fmt.Errorf("failed to add service %s: %w", name, err)
		}
	}

	for _, name := range names {
		for depName := range project.Services[name].DependsOn {
			if err := d.AddDependency(name, depName); err != nil {
				return nil, fmt.Errorf("failed to add dependency %s -> %s: %w", name, depName, err)
			}
		}
	}

	return d, nil
}

func sortedKeys(m map[string]graph.Edge[string]) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
