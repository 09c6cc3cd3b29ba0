// Package schemasassets provides embedded JSON schemas for standalone binary behavior.
//
// Schemas are embedded at compile time so validation works correctly in
// installed binaries and library consumers without requiring schema files
// to be present on disk.
package schemasassets

import _ "embed"

// ScenarioSeedSchema is the embedded scenario-seed JSON schema.
//
// Seeds are validated against this schema before a job may be scheduled.
//
//go:embed scenario-seed.schema.json
var ScenarioSeedSchema []byte

// MatadaNodeSchema is the embedded MATADA node JSON schema.
//
// Every output node must validate against this schema before it is
// surfaced to a caller.
//
//go:embed matada-node.schema.json
var MatadaNodeSchema []byte

// MatadaNodeSchemaRef is the published URI identifying the node schema.
const MatadaNodeSchemaRef = "https://schemas.matada.dev/simlane/v1.0.0/matada-node.schema.json"
