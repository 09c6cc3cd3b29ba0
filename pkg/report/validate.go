package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/fulmenhq/gofulmen/schema"
	"go.uber.org/zap"

	schemasassets "github.com/matada/simlane/internal/assets/schemas"
	"github.com/matada/simlane/internal/observability"
)

// DefaultSchemaRef is the published URI of the MATADA node schema.
const DefaultSchemaRef = schemasassets.MatadaNodeSchemaRef

// Node validation errors.
var (
	// ErrNodeSchemaUnavailable indicates no node validator could be built.
	ErrNodeSchemaUnavailable = errors.New("matada node schema unavailable")

	// ErrNodeValidationFailed indicates a node failed schema validation.
	ErrNodeValidationFailed = errors.New("matada node validation failed")
)

var (
	nodeValidatorOnce sync.Once
	nodeValidator     *schema.Validator
	nodeValidatorErr  error
)

// NodeValidationError reports a single node's validation failure.
type NodeValidationError struct {
	NodeID  string
	Path    string
	Message string
}

func (e *NodeValidationError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("node %s: %s", e.NodeID, e.Message)
	}
	return fmt.Sprintf("node %s: %s: %s", e.NodeID, e.Path, e.Message)
}

// Unwrap returns the sentinel so callers can errors.Is against it.
func (e *NodeValidationError) Unwrap() error {
	return ErrNodeValidationFailed
}

// ValidateNodes checks every node against the embedded MATADA schema.
//
// When lenient is true and the validator itself is unavailable (missing
// or uncompilable schema), validation degrades to a logged warning and
// skip. A genuine validation failure is never suppressed in either
// mode: the first failing node aborts with a NodeValidationError.
func ValidateNodes(nodes []Node, lenient bool) error {
	v, err := getNodeValidator()
	if err != nil {
		if lenient {
			observability.Logger.Warn("node schema validator unavailable, skipping validation",
				zap.Error(err))
			return nil
		}
		return err
	}

	for i := range nodes {
		data, err := json.Marshal(&nodes[i])
		if err != nil {
			return fmt.Errorf("serialize node %s for validation: %w", nodes[i].ID, err)
		}

		diags, err := v.ValidateJSON(data)
		if err != nil {
			return fmt.Errorf("schema validation error for node %s: %w", nodes[i].ID, err)
		}
		for _, d := range diags {
			if d.Severity == schema.SeverityError {
				return &NodeValidationError{
					NodeID:  nodes[i].ID,
					Path:    d.Pointer,
					Message: d.Message,
				}
			}
		}
	}
	return nil
}

func getNodeValidator() (*schema.Validator, error) {
	nodeValidatorOnce.Do(func() {
		if len(schemasassets.MatadaNodeSchema) == 0 {
			nodeValidatorErr = fmt.Errorf("%w: embedded schema is empty", ErrNodeSchemaUnavailable)
			return
		}
		nodeValidator, nodeValidatorErr = schema.NewValidator(schemasassets.MatadaNodeSchema)
		if nodeValidatorErr != nil {
			nodeValidatorErr = fmt.Errorf("%w: %v", ErrNodeSchemaUnavailable, nodeValidatorErr)
		}
	})
	return nodeValidator, nodeValidatorErr
}
