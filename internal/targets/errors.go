package targets

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrTargetNotFound is matched by every TargetNotFoundError.
	ErrTargetNotFound = errors.New("target not found")

	// ErrEmptyMemoryMap is matched by every EmptyMemoryMapError.
	ErrEmptyMemoryMap = errors.New("empty memory map")
)

// TargetNotFoundError represents a target name missing from the catalog.
type TargetNotFoundError struct {
	// Name is the requested target
	Name string
	// Suggestions lists similarly named targets
	Suggestions []string
}

func (e *TargetNotFoundError) Error() string {
	msg := fmt.Sprintf("target %q not found in the target catalog", e.Name)
	if len(e.Suggestions) > 0 {
		msg += fmt.Sprintf("\nDid you mean: %s", strings.Join(e.Suggestions, ", "))
	}
	msg += "\nHint: list known targets with: fwscope targets --search <text>"
	return msg
}

func (e *TargetNotFoundError) Unwrap() error {
	return ErrTargetNotFound
}

// EmptyMemoryMapError represents a target whose descriptor has no memory map.
type EmptyMemoryMapError struct {
	// Name is the target with the empty map
	Name string
}

func (e *EmptyMemoryMapError) Error() string {
	return fmt.Sprintf("no memory regions found in target %q", e.Name)
}

func (e *EmptyMemoryMapError) Unwrap() error {
	return ErrEmptyMemoryMap
}
