package layout

import (
	"fmt"
	"strings"

	"reflex/internal/entity"
)

// LayoutErrorKind enumerates types of layout calculation errors.
type LayoutErrorKind uint8

const (
	// LayoutErrRecursive indicates a class that contains itself by value.
	LayoutErrRecursive LayoutErrorKind = iota + 1
	// LayoutErrIncomplete indicates an incomplete or dependent type.
	LayoutErrIncomplete
	// LayoutErrNoSize indicates void and function types.
	LayoutErrNoSize
	// LayoutErrOverflow indicates a size that does not fit the target.
	LayoutErrOverflow
	// LayoutErrNotField indicates a field query on something else.
	LayoutErrNotField
)

// LayoutError represents an error during memory layout calculation.
type LayoutError struct {
	Kind  LayoutErrorKind
	Type  entity.TypeID
	Cycle []entity.TypeID // for LayoutErrRecursive
	Err   error           // for LayoutErrOverflow
}

func (e *LayoutError) Error() string {
	if e == nil {
		return "<nil>"
	}
	switch e.Kind {
	case LayoutErrRecursive:
		if len(e.Cycle) == 0 {
			return fmt.Sprintf("recursive type has infinite size (type#%d)", e.Type)
		}
		parts := make([]string, 0, len(e.Cycle))
		for _, id := range e.Cycle {
			parts = append(parts, fmt.Sprintf("type#%d", id))
		}
		return fmt.Sprintf("recursive type has infinite size (cycle: %s)", strings.Join(parts, " -> "))
	case LayoutErrIncomplete:
		return fmt.Sprintf("incomplete type (type#%d)", e.Type)
	case LayoutErrNoSize:
		return fmt.Sprintf("type has no size (type#%d)", e.Type)
	case LayoutErrOverflow:
		if e.Err != nil {
			return fmt.Sprintf("size overflow (type#%d): %v", e.Type, e.Err)
		}
		return fmt.Sprintf("size overflow (type#%d)", e.Type)
	case LayoutErrNotField:
		return "not a data member"
	default:
		return fmt.Sprintf("layout error kind=%d type#%d", e.Kind, e.Type)
	}
}

func (e *LayoutError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}
