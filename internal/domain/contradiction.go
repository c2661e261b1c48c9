package domain

import (
	"time"

	"github.com/google/uuid"
)

type ContradictionType string

const (
	ContradictionValue    ContradictionType = "value"
	ContradictionLogical  ContradictionType = "logical"
	ContradictionTemporal ContradictionType = "temporal"
)

type Resolution string

const (
	ResolutionKeptOld Resolution = "kept_old"
	ResolutionUsedNew Resolution = "used_new"
)

// Contradiction is raised when a write conflicts with a confirmed value.
// Once Resolved is set the record is never modified again.
type Contradiction struct {
	ID          uuid.UUID         `json:"id"`
	SessionID   string            `json:"session_id"`
	Field       Field             `json:"field"`
	OldValue    any               `json:"old_value"`
	NewValue    any               `json:"new_value"`
	Type        ContradictionType `json:"type"`
	Resolved    bool              `json:"resolved"`
	Resolution  Resolution        `json:"resolution,omitempty"`
	Explanation string            `json:"explanation,omitempty"`
	DetectedAt  time.Time         `json:"detected_at"`
	ResolvedAt  *time.Time        `json:"resolved_at,omitempty"`
}

// KeptValue is the value that survived resolution.
func (c *Contradiction) KeptValue() any {
	if c.Resolution == ResolutionUsedNew {
		return c.NewValue
	}
	return c.OldValue
}
