package scenario

// Evaluator maps a variant name to a score triple.
//
// The interface is deliberately narrow so a statistical or learned
// scoring engine can be substituted without changing callers.
type Evaluator interface {
	// Score returns the utility/risk/novelty triple for a variant name.
	// All components are in [0,1].
	Score(variantName string) Scores
}

// TableEvaluator scores variants from a fixed lookup table.
//
// This is a deterministic placeholder: optimistic and baseline have
// dedicated rows, and every other name (adversarial and any future
// variant) falls through to the conservative default.
type TableEvaluator struct{}

// NewTableEvaluator returns the default lookup-table evaluator.
func NewTableEvaluator() TableEvaluator {
	return TableEvaluator{}
}

// Score implements Evaluator.
func (TableEvaluator) Score(variantName string) Scores {
	switch variantName {
	case VariantOptimistic:
		return Scores{Utility: 0.85, Risk: 0.15, Novelty: 0.35}
	case VariantBaseline:
		return Scores{Utility: 0.70, Risk: 0.30, Novelty: 0.40}
	default:
		return Scores{Utility: 0.55, Risk: 0.60, Novelty: 0.80}
	}
}
