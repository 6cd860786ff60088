// Package scheduler runs the event loop that picks ready tasks, submits
// them to a Runner, awaits completions, and propagates failures by
// cancelling descendants.
package scheduler

import (
	"context"
	"path/filepath"

	"github.com/flowcore/flowcore/internal/flow/builder"
	"github.com/flowcore/flowcore/internal/flow/status"
	"github.com/flowcore/flowcore/internal/flowconfig"
	"github.com/flowcore/flowcore/internal/flowerr"
	"github.com/flowcore/flowcore/internal/logger"
	"github.com/flowcore/flowcore/internal/task"
)

// Scheduler drives one run to completion. The per-run state (graph,
// results, statuses, errors) is built fresh inside each call to Run and is
// not kept on the Scheduler itself.
type Scheduler struct {
	registry *task.Registry
	runner   Runner
	rootDir  string
	bridge   *flowconfig.Bridge
	log      logger.Logger
}

// New returns a Scheduler that submits ready tasks to runner, rooting
// per-task working directories under rootDir, and forwarding bridge's
// configuration snapshot into every submission.
func New(reg *task.Registry, runner Runner, rootDir string, bridge *flowconfig.Bridge, log logger.Logger) *Scheduler {
	if log == nil {
		log = logger.Default
	}
	return &Scheduler{registry: reg, runner: runner, rootDir: rootDir, bridge: bridge, log: log}
}

// Run builds the DAG for target, executes it to completion, and returns
// the target's result. If target does not reach Completed, Run returns a
// *flowerr.WorkflowFailure summarizing every non-completed task.
func (s *Scheduler) Run(ctx context.Context, target *task.Handle) (any, error) {
	g := builder.Build(s.registry, s.log, target.Fingerprint())

	required := make(map[string]struct{}, len(g.Status))
	for fp := range g.Status {
		required[fp] = struct{}{}
	}

	result := make(map[string]any)
	failErr := make(map[string]error)
	done := make(chan Completion)
	inFlight := 0
	completed := make(map[string]struct{})

	for {
		if allTerminal(g, required, completed) {
			break
		}

		ready := s.readinessScan(g, result)
		for _, fp := range ready {
			h, _ := s.registry.Handle(fp)
			if err := s.submit(ctx, g, h, result, done); err != nil {
				g.Status[fp] = status.Failed
				failErr[fp] = err
				completed[fp] = struct{}{}
				s.propagateCancellation(g, fp, required, completed)
				continue
			}
			g.Status[fp] = status.Running
			inFlight++
		}

		if inFlight == 0 {
			if len(completed) < len(required) {
				s.reportStuck(g, required, completed)
			}
			break
		}

		c := <-done
		inFlight--
		s.processCompletion(g, c, result, failErr, required, completed)

		// Drain any further completions already available without blocking,
		// so a busy round doesn't wait once per task unnecessarily.
		for inFlight > 0 {
			select {
			case c := <-done:
				inFlight--
				s.processCompletion(g, c, result, failErr, required, completed)
			default:
				goto nextRound
			}
		}
	nextRound:
	}

	targetFP := target.Fingerprint()
	if g.Status[targetFP] != status.Completed {
		return nil, s.workflowFailure(g, targetFP, failErr)
	}
	return result[targetFP], nil
}

// readinessScan returns every Pending task whose dependencies are all
// present in the result map.
func (s *Scheduler) readinessScan(g *builder.Graph, result map[string]any) []string {
	var ready []string
	for fp, st := range g.Status {
		if st != status.Pending {
			continue
		}
		allResolved := true
		for d := range g.Dependencies[fp] {
			if _, ok := result[d]; !ok {
				allResolved = false
				break
			}
		}
		if allResolved {
			ready = append(ready, fp)
		}
	}
	return ready
}

// submit resolves h's arguments and dispatches it to the runner. It
// returns a *flowerr.DependencyMissing error if a dependency result was
// unexpectedly missing during substitution, which the caller treats as a
// local failure -- this indicates a scheduler bug or an unknown-dependency
// edge already warned about at DAG build time.
func (s *Scheduler) submit(ctx context.Context, g *builder.Graph, h *task.Handle, result map[string]any, done chan<- Completion) error {
	args, missing, ok := resolveArgs(h.Args(), result)
	if !ok {
		err := &flowerr.DependencyMissing{TaskName: h.FuncName(), Fingerprint: h.Fingerprint(), MissingFingerprint: missing}
		s.log.Errorf("scheduler: %v", err)
		return err
	}
	kwargs, missing, ok := resolveKwargs(h.Kwargs(), result)
	if !ok {
		err := &flowerr.DependencyMissing{TaskName: h.FuncName(), Fingerprint: h.Fingerprint(), MissingFingerprint: missing}
		s.log.Errorf("scheduler: %v", err)
		return err
	}

	workDir := filepath.Join(s.rootDir, h.FuncName(), h.Fingerprint())
	var cfg map[string]any
	if s.bridge != nil {
		cfg = s.bridge.Snapshot()
	}

	s.runner.Submit(ctx, task.Context{
		Fingerprint: h.Fingerprint(),
		Name:        h.FuncName(),
		Args:        args,
		Kwargs:      kwargs,
		WorkDir:     workDir,
		Config:      cfg,
	}, done)
	return nil
}

func (s *Scheduler) processCompletion(g *builder.Graph, c Completion, result map[string]any, failErr map[string]error, required, completed map[string]struct{}) {
	if c.Err != nil {
		g.Status[c.Fingerprint] = status.Failed
		failErr[c.Fingerprint] = c.Err
		completed[c.Fingerprint] = struct{}{}
		s.log.Errorf("scheduler: task %s failed: %v", c.Fingerprint, c.Err)
		s.propagateCancellation(g, c.Fingerprint, required, completed)
		return
	}
	result[c.Fingerprint] = c.Result
	g.Status[c.Fingerprint] = status.Completed
	completed[c.Fingerprint] = struct{}{}
}

// propagateCancellation performs a breadth-first traversal of the
// dependents relation starting from failedFP; every descendant still
// Pending is transitioned to Cancelled. Running descendants are not
// preempted.
func (s *Scheduler) propagateCancellation(g *builder.Graph, failedFP string, required, completed map[string]struct{}) {
	frontier := []string{failedFP}
	visited := map[string]bool{failedFP: true}

	for len(frontier) > 0 {
		fp := frontier[0]
		frontier = frontier[1:]

		for dep := range g.Dependents[fp] {
			if visited[dep] {
				continue
			}
			visited[dep] = true
			if g.Status[dep] == status.Pending {
				g.Status[dep] = status.Cancelled
				completed[dep] = struct{}{}
			}
			frontier = append(frontier, dep)
		}
	}
}

func allTerminal(g *builder.Graph, required, completed map[string]struct{}) bool {
	return len(completed) >= len(required)
}

func (s *Scheduler) reportStuck(g *builder.Graph, required, completed map[string]struct{}) {
	for fp := range required {
		if _, ok := completed[fp]; ok {
			continue
		}
		var unmet []string
		for d := range g.Dependencies[fp] {
			if g.Status[d] != status.Completed {
				unmet = append(unmet, d)
			}
		}
		s.log.Errorf("scheduler: stuck: task %s is PENDING with unmet dependencies %v", fp, unmet)
	}
}

func (s *Scheduler) workflowFailure(g *builder.Graph, targetFP string, failErr map[string]error) error {
	var failed []flowerr.FailedTask
	for fp, st := range g.Status {
		if st == status.Completed {
			continue
		}
		h, _ := s.registry.Handle(fp)
		name := fp
		if h != nil {
			name = h.FuncName()
		}
		failed = append(failed, flowerr.FailedTask{
			Name:        name,
			Fingerprint: fp,
			Status:      st.String(),
			Err:         failErr[fp],
		})
	}
	return &flowerr.WorkflowFailure{TargetFingerprint: targetFP, Failed: failed}
}

func resolveArgs(args []any, result map[string]any) ([]any, string, bool) {
	out := make([]any, len(args))
	for i, a := range args {
		v, missing, ok := resolveValue(a, result)
		if !ok {
			return nil, missing, false
		}
		out[i] = v
	}
	return out, "", true
}

func resolveKwargs(kwargs map[string]any, result map[string]any) (map[string]any, string, bool) {
	out := make(map[string]any, len(kwargs))
	for k, v := range kwargs {
		rv, missing, ok := resolveValue(v, result)
		if !ok {
			return nil, missing, false
		}
		out[k] = rv
	}
	return out, "", true
}

func resolveValue(v any, result map[string]any) (any, string, bool) {
	if h, ok := v.(*task.Handle); ok {
		r, ok := result[h.Fingerprint()]
		if !ok {
			return nil, h.Fingerprint(), false
		}
		return r, "", true
	}
	if seq, ok := v.([]any); ok {
		out := make([]any, len(seq))
		for i, e := range seq {
			if h, ok := e.(*task.Handle); ok {
				r, ok := result[h.Fingerprint()]
				if !ok {
					return nil, h.Fingerprint(), false
				}
				out[i] = r
				continue
			}
			out[i] = e
		}
		return out, "", true
	}
	return v, "", true
}
