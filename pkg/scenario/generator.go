// Package scenario produces and scores hypothetical scenario variants
// for a simulation job.
//
// Generation is a pure function of the seed and trace id: identical
// inputs always yield identical variant lists. Scoring is pluggable via
// the Evaluator interface so a real scoring engine can replace the
// default lookup table without touching the scheduler or facade.
package scenario

import "github.com/matada/simlane/pkg/seed"

// Variant names form a fixed closed set, emitted in this order.
const (
	VariantOptimistic  = "optimistic"
	VariantBaseline    = "baseline"
	VariantAdversarial = "adversarial"
)

// VariantNames is the fixed generation order.
var VariantNames = []string{VariantOptimistic, VariantBaseline, VariantAdversarial}

// variantAssumptions is the fixed per-variant assumption set.
var variantAssumptions = map[string][]string{
	VariantOptimistic: {
		"all collaborators respond promptly",
		"no conflicting constraints surface mid-run",
		"budget headroom is available",
	},
	VariantBaseline: {
		"typical response latency",
		"one minor constraint conflict is resolved inline",
	},
	VariantAdversarial: {
		"a collaborator is unavailable",
		"constraints conflict and require re-planning",
		"budget pressure forces early consolidation",
	},
}

// Scores is the utility/risk/novelty triple attached to a variant.
// Each component is in [0,1].
type Scores struct {
	Utility float64 `json:"utility"`
	Risk    float64 `json:"risk"`
	Novelty float64 `json:"novelty"`
}

// Variant is one hypothetical scenario derived from a seed.
type Variant struct {
	// Goal is copied verbatim from the seed.
	Goal string `json:"goal"`

	// ContextKeys is the seed's context key set, sorted. Values are
	// deliberately dropped for data minimization.
	ContextKeys []string `json:"context_keys"`

	// TraceID correlates the variant with its originating job.
	TraceID string `json:"trace_id"`

	// Name is one of the fixed variant names.
	Name string `json:"variant_name"`

	// Assumptions is the fixed per-variant assumption list.
	Assumptions []string `json:"assumptions"`

	// Scores is assigned by the evaluator after generation.
	Scores Scores `json:"scores"`
}

// Generate deterministically produces the fixed variant set for a seed.
//
// Exactly three variants are returned, in fixed order: optimistic,
// baseline, adversarial. Scores are zero; the rollout runner assigns
// them.
func Generate(s *seed.Seed, traceID string) []Variant {
	keys := s.ContextKeys()
	out := make([]Variant, 0, len(VariantNames))
	for _, name := range VariantNames {
		out = append(out, Variant{
			Goal:        s.Goal,
			ContextKeys: keys,
			TraceID:     traceID,
			Name:        name,
			Assumptions: append([]string(nil), variantAssumptions[name]...),
		})
	}
	return out
}
