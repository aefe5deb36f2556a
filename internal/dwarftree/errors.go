package dwarftree

import "fmt"

// DwarfError reports malformed debug sections. It only affects the tree
// build; the rest of an image's analysis is unaffected.
type DwarfError struct {
	// Op is the step that failed
	Op string
	// Err is the underlying decoder error
	Err error
}

func (e *DwarfError) Error() string {
	return fmt.Sprintf("malformed debug info: failed to %s: %v", e.Op, e.Err)
}

func (e *DwarfError) Unwrap() error {
	return e.Err
}
