package optimize

import "github.com/diesel-lang/diesel/internal/ast"

// DefaultMaxPasses bounds a Pipeline created with a non-positive limit.
const DefaultMaxPasses = 5

// Pipeline repeats optimizer passes until one folds nothing.
//
// A single pass already folds nested chains that sit in a folding slot, so
// a pipeline normally stops after its second pass. It exists for trees
// built by callers that rely on the check: the last pass reported by Run
// made no replacement unless MaxPasses was hit.
type Pipeline struct {
	optimizer *Optimizer
	maxPasses int
	stats     Stats
}

// NewPipeline returns a pipeline running o at most maxPasses times.
func NewPipeline(o *Optimizer, maxPasses int) *Pipeline {
	if maxPasses <= 0 {
		maxPasses = DefaultMaxPasses
	}
	return &Pipeline{optimizer: o, maxPasses: maxPasses}
}

// MaxPasses returns the pass limit.
func (p *Pipeline) MaxPasses() int { return p.maxPasses }

// Run optimizes body until a pass folds nothing or the pass limit is
// reached. It returns the number of passes made.
func (p *Pipeline) Run(body *ast.StmtList) int {
	p.stats = Stats{}
	if body == nil {
		return 0
	}

	// A node rejected in one pass is rejected again in the next; it is
	// reported once.
	rejected := make(map[*ast.Binary]struct{})
	passes := 0
	for passes < p.maxPasses {
		stats := p.optimizer.pass(body, rejected)
		p.stats.Add(stats)
		passes++

		if stats.Folded() == 0 {
			break
		}
	}

	p.optimizer.logger.Debug("constant folding converged after %d pass(es): %s", passes, p.stats)
	return passes
}

// Stats returns the statistics accumulated by the last Run.
func (p *Pipeline) Stats() Stats {
	return p.stats
}
