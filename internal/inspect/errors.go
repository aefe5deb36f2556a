package inspect

import "fmt"

// IoError reports an image file that could not be read.
type IoError struct {
	Path string
	Err  error
}

func (e *IoError) Error() string {
	return fmt.Sprintf("failed to read %s: %v", e.Path, e.Err)
}

func (e *IoError) Unwrap() error {
	return e.Err
}
