package pricing

import (
	"fmt"

	"salesledger/internal/core/apperror"
	"salesledger/internal/core/types"
)

// Discrepancy is a recomputed amount that differs from the submitted one by
// more than types.Tolerance. Line is 1-based; 0 marks a document-level field.
type Discrepancy struct {
	Line      int
	Field     string
	Expected  types.Money
	Submitted types.Money
	Message   string
}

// String renders the human-readable message.
func (d Discrepancy) String() string {
	if d.Message != "" {
		return d.Message
	}
	msg := fmt.Sprintf("%s expected %s, submitted %s",
		d.Field, d.Expected.StringFixed(2), d.Submitted.StringFixed(2))
	if d.Line > 0 {
		return fmt.Sprintf("line %d: %s", d.Line, msg)
	}
	return msg
}

// Discrepancies is the ordered list found by Verify.
type Discrepancies []Discrepancy

// Messages renders every discrepancy.
func (ds Discrepancies) Messages() []string {
	out := make([]string, len(ds))
	for i, d := range ds {
		out[i] = d.String()
	}
	return out
}

// Err returns nil for an empty list, otherwise a COMPUTATION_DISCREPANCY error.
func (ds Discrepancies) Err() error {
	if len(ds) == 0 {
		return nil
	}
	return apperror.NewDiscrepancy(ds.Messages())
}

// AddTo appends every discrepancy to c.
func (ds Discrepancies) AddTo(c *apperror.Collector) {
	for _, d := range ds {
		c.AddDiscrepancy(d.String())
	}
}
