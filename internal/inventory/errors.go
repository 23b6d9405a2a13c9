package inventory

import "fmt"

// NotFoundError reports that the requested inventory file is absent from the
// repository snapshot.
type NotFoundError struct {
	Path string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("inventory file %q not found in repository", e.Path)
}

// ParseError reports that the inventory file is not valid YAML or does not
// have the tier -> location -> hosts shape.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse inventory file %q: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }
