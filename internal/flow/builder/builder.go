// Package builder performs the backward breadth-first traversal that
// materializes the minimal DAG needed to produce a requested target
// handle.
package builder

import (
	"github.com/flowcore/flowcore/internal/flow/status"
	"github.com/flowcore/flowcore/internal/logger"
	"github.com/flowcore/flowcore/internal/task"
)

// Graph holds the dependency and dependent relations, and the initial
// status, of every handle reachable backward from a build target.
type Graph struct {
	Dependencies map[string]map[string]struct{}
	Dependents   map[string]map[string]struct{}
	Status       map[string]status.Status
}

func newGraph() *Graph {
	return &Graph{
		Dependencies: make(map[string]map[string]struct{}),
		Dependents:   make(map[string]map[string]struct{}),
		Status:       make(map[string]status.Status),
	}
}

// Build performs a breadth-first backward traversal from targetFingerprint,
// populating dependency and dependent maps and initializing every
// reachable handle's status to Pending. Dependency fingerprints not
// present in the registry's invocation table are logged and skipped, not
// added to the traversal frontier.
func Build(reg *task.Registry, log logger.Logger, targetFingerprint string) *Graph {
	if log == nil {
		log = logger.Default
	}
	g := newGraph()

	visited := make(map[string]bool)
	frontier := []string{targetFingerprint}

	for len(frontier) > 0 {
		fp := frontier[0]
		frontier = frontier[1:]
		if visited[fp] {
			continue
		}
		visited[fp] = true

		h, ok := reg.Handle(fp)
		if !ok {
			log.Warnf("builder: unknown handle %s referenced during DAG build; skipping", fp)
			continue
		}

		deps := h.Dependencies()
		g.Dependencies[fp] = deps
		g.Status[fp] = status.Pending

		for d := range deps {
			if _, ok := reg.Handle(d); !ok {
				log.Warnf("builder: dependency %s of %s is not a known invocation; skipping", d, fp)
				continue
			}
			if g.Dependents[d] == nil {
				g.Dependents[d] = make(map[string]struct{})
			}
			g.Dependents[d][fp] = struct{}{}
			if !visited[d] {
				frontier = append(frontier, d)
			}
		}
	}

	return g
}
