// Package seed provides loading and validation of simlane scenario seeds.
//
// A scenario seed is a YAML or JSON document (or a generic map payload)
// describing the goal, situational context, and constraints for one
// simulation job. Seeds are validated against a JSON Schema before use
// and are never mutated after submission.
//
// Example seed (YAML):
//
//	goal: Evaluate onboarding flow
//	context:
//	  tenant: demo
//	constraints:
//	  budgets:
//	    tokens: 500
//	    seconds: 0.5
//	  consent:
//	    scopes:
//	      - simulation.read_context
//	  flags:
//	    duress_active: false
package seed

import "sort"

// Default budgets applied when a seed omits them.
const (
	DefaultBudgetTokens  = 2000
	DefaultBudgetSeconds = 2.0
)

// Seed is a validated scenario seed.
//
// A seed is immutable once submitted: scheduling code must operate on a
// Clone so the caller's value is never shared or mutated.
type Seed struct {
	// Schema is an optional JSON Schema reference for editor support.
	Schema string `json:"$schema,omitempty" yaml:"$schema,omitempty" mapstructure:"$schema"`

	// Goal is the free-text objective for the simulation.
	Goal string `json:"goal" yaml:"goal" mapstructure:"goal"`

	// Context carries situational key/value data. Only the key set is
	// used downstream; values never leave the seed.
	Context map[string]any `json:"context,omitempty" yaml:"context,omitempty" mapstructure:"context"`

	// Constraints bound what the simulation may assume and consume.
	Constraints Constraints `json:"constraints" yaml:"constraints" mapstructure:"constraints"`
}

// Constraints groups budgets, consent, and safety flags.
type Constraints struct {
	Budgets Budgets `json:"budgets,omitempty" yaml:"budgets,omitempty" mapstructure:"budgets"`
	Consent Consent `json:"consent,omitempty" yaml:"consent,omitempty" mapstructure:"consent"`
	Flags   Flags   `json:"flags,omitempty" yaml:"flags,omitempty" mapstructure:"flags"`
}

// Budgets bounds simulation resource use. Zero values mean "absent" and
// receive defaults at admission time.
type Budgets struct {
	// Tokens is the token budget. Default: 2000.
	Tokens int `json:"tokens,omitempty" yaml:"tokens,omitempty" mapstructure:"tokens"`

	// Seconds is the wall-clock budget in seconds. Default: 2.0.
	Seconds float64 `json:"seconds,omitempty" yaml:"seconds,omitempty" mapstructure:"seconds"`

	// MaxRollouts optionally caps the rollout count. Zero means no cap.
	MaxRollouts int `json:"max_rollouts,omitempty" yaml:"max_rollouts,omitempty" mapstructure:"max_rollouts"`
}

// Consent lists the scopes the caller has granted.
type Consent struct {
	Scopes []string `json:"scopes,omitempty" yaml:"scopes,omitempty" mapstructure:"scopes"`
}

// Flags carries boolean safety signals.
type Flags struct {
	// DuressActive indicates the principal may be acting under duress.
	// A seed with this flag set is rejected unconditionally.
	DuressActive bool `json:"duress_active,omitempty" yaml:"duress_active,omitempty" mapstructure:"duress_active"`
}

// ApplyDefaults fills absent budgets with package defaults.
func (s *Seed) ApplyDefaults() {
	if s.Constraints.Budgets.Tokens <= 0 {
		s.Constraints.Budgets.Tokens = DefaultBudgetTokens
	}
	if s.Constraints.Budgets.Seconds <= 0 {
		s.Constraints.Budgets.Seconds = DefaultBudgetSeconds
	}
}

// ContextKeys returns the seed's context keys, sorted for determinism.
//
// Context values are deliberately dropped: downstream artifacts carry
// only the key set, never raw values.
func (s *Seed) ContextKeys() []string {
	keys := make([]string, 0, len(s.Context))
	for k := range s.Context {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// HasScope reports whether the consent scopes include scope.
func (s *Seed) HasScope(scope string) bool {
	for _, g := range s.Constraints.Consent.Scopes {
		if g == scope {
			return true
		}
	}
	return false
}

// Clone returns an independent copy of the seed.
//
// Scheduling code clones the seed at admission so the per-job copy is
// isolated from any later caller mutation.
func (s *Seed) Clone() *Seed {
	out := *s
	if s.Context != nil {
		out.Context = make(map[string]any, len(s.Context))
		for k, v := range s.Context {
			out.Context[k] = v
		}
	}
	if s.Constraints.Consent.Scopes != nil {
		out.Constraints.Consent.Scopes = append([]string(nil), s.Constraints.Consent.Scopes...)
	}
	return &out
}
