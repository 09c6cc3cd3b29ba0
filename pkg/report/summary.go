// Package report renders scored rollouts into the two parallel output
// representations of the simulation lane: a human/agent-facing result
// summary with per-variant shards, and a list of schema-conformant
// MATADA nodes for downstream machine consumption.
//
// Both renderings carry only the seed's context key set, never raw
// context values.
package report

import (
	"math"

	"github.com/matada/simlane/pkg/scenario"
	"github.com/matada/simlane/pkg/seed"
)

// planSteps is the fixed generic plan attached to every shard.
var planSteps = []string{
	"clarify success criteria with the requesting principal",
	"execute the selected variant's approach within budget",
	"review outcomes against the recorded risks",
}

// shardRisks is the fixed risk list, each with a literal mitigation.
var shardRisks = []Risk{
	{
		Label:      "oversimplification",
		Mitigation: "validate assumptions against real context before acting",
	},
	{
		Label:      "distribution-shift",
		Mitigation: "re-run the simulation when the context key set changes",
	},
}

// Risk pairs a risk label with its mitigation.
type Risk struct {
	Label      string `json:"label"`
	Mitigation string `json:"mitigation"`
}

// Proposal is the shard's rendered plan of action.
type Proposal struct {
	Problem  string   `json:"problem"`
	Approach []string `json:"approach"`
	Plan     []string `json:"plan"`
	Tags     []string `json:"tags"`
}

// Shard is the human/agent-facing rendering of one rollout.
type Shard struct {
	Type     string          `json:"type"`
	Variant  string          `json:"variant"`
	Proposal Proposal        `json:"proposal"`
	Risks    []Risk          `json:"risks"`
	Scores   scenario.Scores `json:"scores"`
}

// AggregateScores summarizes all shards: mean utility, max risk, max
// novelty, each rounded to 3 decimals.
type AggregateScores struct {
	UtilityMean float64 `json:"utility_mean"`
	RiskMax     float64 `json:"risk_max"`
	NoveltyMax  float64 `json:"novelty_max"`
}

// Summary is the compact result representation.
type Summary struct {
	Shards  []Shard         `json:"shards"`
	Scores  AggregateScores `json:"scores"`
	TraceID string          `json:"trace_id"`
}

// Summarize renders scored rollouts into a result summary.
func Summarize(s *seed.Seed, rollouts []scenario.Variant, traceID string) Summary {
	shards := make([]Shard, 0, len(rollouts))
	var utilitySum, riskMax, noveltyMax float64

	for _, v := range rollouts {
		shards = append(shards, Shard{
			Type:    TypeShard,
			Variant: v.Name,
			Proposal: Proposal{
				Problem:  s.Goal,
				Approach: append([]string(nil), v.Assumptions...),
				Plan:     append([]string(nil), planSteps...),
				Tags:     []string{"advisory", "simulation", v.Name},
			},
			Risks:  append([]Risk(nil), shardRisks...),
			Scores: v.Scores,
		})

		utilitySum += v.Scores.Utility
		riskMax = math.Max(riskMax, v.Scores.Risk)
		noveltyMax = math.Max(noveltyMax, v.Scores.Novelty)
	}

	agg := AggregateScores{RiskMax: round3(riskMax), NoveltyMax: round3(noveltyMax)}
	if len(shards) > 0 {
		agg.UtilityMean = round3(utilitySum / float64(len(shards)))
	}

	return Summary{Shards: shards, Scores: agg, TraceID: traceID}
}

func round3(x float64) float64 {
	return math.Round(x*1000) / 1000
}
