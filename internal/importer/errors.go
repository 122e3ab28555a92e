package importer

import "fmt"

// TransformationError reports that a source payload or file could not be
// turned into a canonical document. Source names what failed: a session
// slug for platform fetches, a path for files.
type TransformationError struct {
	Source string
	Err    error
}

func (e *TransformationError) Error() string {
	return fmt.Sprintf("transform %s: %v", e.Source, e.Err)
}

func (e *TransformationError) Unwrap() error { return e.Err }
