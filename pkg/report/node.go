package report

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/matada/simlane/pkg/scenario"
	"github.com/matada/simlane/pkg/seed"
)

// Node constants. NodeType follows the versioned type-tag convention
// used across simlane artifacts.
const (
	NodeType    = "simlane.advisory.plan.v1"
	NodeLane    = "simulation"
	NodeVersion = "1.0.0"

	// GeneratorIdentity names the producer recorded in provenance.
	GeneratorIdentity = "simlane/scenario-generator@v1"
)

// TraceRef correlates a node with its job and ordering.
type TraceRef struct {
	TraceID string `json:"trace_id"`
	Index   int    `json:"index"`
}

// NodeMetadata carries the variant name, schema reference, and
// classification tags.
type NodeMetadata struct {
	Variant   string   `json:"variant"`
	SchemaRef string   `json:"schema_ref"`
	Tags      []string `json:"tags,omitempty"`
}

// NodePayload is the advisory plan content.
type NodePayload struct {
	Goal        string          `json:"goal"`
	Assumptions []string        `json:"assumptions"`
	Scores      scenario.Scores `json:"scores"`
	Plan        []string        `json:"plan"`
}

// ProvenanceInputs fingerprints the node's inputs. Only the seed's
// context key list is carried — never raw context values.
type ProvenanceInputs struct {
	ContextKeys []string `json:"context_keys"`
	Fingerprint string   `json:"fingerprint"`
}

// Provenance records who produced the node and from what.
type Provenance struct {
	Generator string           `json:"generator"`
	Inputs    ProvenanceInputs `json:"inputs"`
}

// Node is one schema-governed output artifact (a MATADA node).
//
// Every node must validate against the published schema before being
// returned to a caller; a node that fails validation is never surfaced.
type Node struct {
	ID         string       `json:"id"`
	Type       string       `json:"type"`
	Lane       string       `json:"lane"`
	Version    string       `json:"version"`
	Trace      TraceRef     `json:"trace"`
	Metadata   NodeMetadata `json:"metadata"`
	Payload    NodePayload  `json:"payload"`
	Provenance Provenance   `json:"provenance"`
}

// BuildNodes renders scored rollouts into MATADA nodes, 1-indexed in
// rollout order.
func BuildNodes(s *seed.Seed, rollouts []scenario.Variant, traceID, schemaRef string) []Node {
	keys := s.ContextKeys()
	fingerprint := fingerprintKeys(keys)

	nodes := make([]Node, 0, len(rollouts))
	for i, v := range rollouts {
		ordinal := i + 1
		nodes = append(nodes, Node{
			ID:      fmt.Sprintf("%s-%d", traceID, ordinal),
			Type:    NodeType,
			Lane:    NodeLane,
			Version: NodeVersion,
			Trace:   TraceRef{TraceID: traceID, Index: ordinal},
			Metadata: NodeMetadata{
				Variant:   v.Name,
				SchemaRef: schemaRef,
				Tags:      []string{"advisory", "plan"},
			},
			Payload: NodePayload{
				Goal:        v.Goal,
				Assumptions: append([]string(nil), v.Assumptions...),
				Scores:      v.Scores,
				Plan:        append([]string(nil), planSteps...),
			},
			Provenance: Provenance{
				Generator: GeneratorIdentity,
				Inputs: ProvenanceInputs{
					ContextKeys: keys,
					Fingerprint: fingerprint,
				},
			},
		})
	}
	return nodes
}

// fingerprintKeys hashes the sorted context key list into a short stable
// hex fingerprint. Values are never part of the hash input.
func fingerprintKeys(keys []string) string {
	sum := sha256.Sum256([]byte(strings.Join(keys, "\n")))
	return hex.EncodeToString(sum[:8])
}
