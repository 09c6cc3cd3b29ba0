// Package policy implements the admission-time ethics gate.
//
// The gate is the sole safety boundary for the simulation lane: every
// code path that creates a job must call Authorize first. It is a pure
// function over the seed — no state, no I/O — so identical seeds always
// produce identical decisions.
package policy

import (
	"fmt"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/matada/simlane/pkg/seed"
)

// ScopeReadContext is the consent scope every simulation seed must grant.
const ScopeReadContext = "simulation.read_context"

// forbiddenScopePatterns lists capability scope patterns that may never
// appear in a simulation seed's consent set. Matching is glob-based so a
// whole capability family (e.g. every adapter write scope) is covered by
// one pattern.
var forbiddenScopePatterns = []string{
	"adapter.*.write",
	"adapter.*.delete",
	"mail.send",
	"external.send",
	"storage.delete",
	"documents.destructive_*",
}

// unsafeGoalPhrases lists lower-case substrings that mark a goal as
// unsafe regardless of consent.
var unsafeGoalPhrases = []string{
	"delete yourself",
	"self-delete",
	"wipe memory",
	"exfiltrate",
	"leak credentials",
	"escalate privileges",
	"bypass consent",
	"disable safety",
}

// EthicsViolation is returned when a seed fails an admission check.
type EthicsViolation struct {
	// Check names the failed check (duress, consent, capability, goal).
	Check string

	// Reason is the human-readable rejection reason.
	Reason string
}

func (e *EthicsViolation) Error() string {
	return fmt.Sprintf("ethics violation (%s): %s", e.Check, e.Reason)
}

// Authorize validates a seed against the admission policy.
//
// Checks run in order and fail fast:
//  1. duress flag set → reject unconditionally
//  2. required consent scope missing → reject
//  3. consent scopes intersect the forbidden capability set → reject
//  4. goal text contains an unsafe-intent phrase → reject
//
// A nil return means the seed may be admitted to the scheduler.
func Authorize(s *seed.Seed) error {
	if s == nil {
		return &EthicsViolation{Check: "input", Reason: "seed is nil"}
	}

	if s.Constraints.Flags.DuressActive {
		return &EthicsViolation{Check: "duress", Reason: "duress active"}
	}

	if !s.HasScope(ScopeReadContext) {
		return &EthicsViolation{
			Check:  "consent",
			Reason: fmt.Sprintf("missing consent scope %q", ScopeReadContext),
		}
	}

	for _, scope := range s.Constraints.Consent.Scopes {
		if pattern, ok := matchForbiddenScope(scope); ok {
			return &EthicsViolation{
				Check:  "capability",
				Reason: fmt.Sprintf("forbidden capability requested: %s (matches %s)", scope, pattern),
			}
		}
	}

	goal := strings.ToLower(s.Goal)
	for _, phrase := range unsafeGoalPhrases {
		if strings.Contains(goal, phrase) {
			return &EthicsViolation{
				Check:  "goal",
				Reason: fmt.Sprintf("unsafe goal: contains %q", phrase),
			}
		}
	}

	return nil
}

// matchForbiddenScope reports whether scope matches any forbidden
// capability pattern, returning the matching pattern.
func matchForbiddenScope(scope string) (string, bool) {
	for _, pattern := range forbiddenScopePatterns {
		matched, err := doublestar.Match(pattern, scope)
		if err != nil {
			// Patterns are fixed literals validated by tests; an error
			// here means a malformed scope, which cannot match.
			continue
		}
		if matched {
			return pattern, true
		}
	}
	return "", false
}
