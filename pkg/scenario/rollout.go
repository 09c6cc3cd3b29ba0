package scenario

import (
	"sort"

	"github.com/matada/simlane/pkg/seed"
)

// Runner composes generation and scoring into scored rollouts.
//
// Runner is stateless and safe for concurrent use.
type Runner struct {
	evaluator Evaluator
}

// NewRunner creates a rollout runner with the given evaluator.
// A nil evaluator falls back to the default lookup table.
func NewRunner(e Evaluator) *Runner {
	if e == nil {
		e = NewTableEvaluator()
	}
	return &Runner{evaluator: e}
}

// Run generates the variant set for the seed, scores each variant, and
// returns the list sorted by utility descending. The sort is stable, so
// ties keep generation order.
//
// When the seed caps rollouts (max_rollouts), the list is truncated
// after sorting so the highest-utility variants survive.
func (r *Runner) Run(s *seed.Seed, traceID string) []Variant {
	variants := Generate(s, traceID)
	for i := range variants {
		variants[i].Scores = r.evaluator.Score(variants[i].Name)
	}

	sort.SliceStable(variants, func(i, j int) bool {
		return variants[i].Scores.Utility > variants[j].Scores.Utility
	})

	if max := s.Constraints.Budgets.MaxRollouts; max > 0 && max < len(variants) {
		variants = variants[:max]
	}
	return variants
}
