package errors

import (
	"fmt"
	"strings"
)

// Append combines given errors into a single error. Nil errors are ignored
// and nested multi errors are flattened. If no error is left, nil is
// returned. A single error is returned as it is.
//
// Use it to collect all validation failures of a model instead of returning
// only the first one.
func Append(errs ...error) error {
	var flat []error
	for _, err := range errs {
		if err == nil {
			continue
		}
		if m, ok := err.(*multiErr); ok {
			flat = append(flat, m.errs...)
			continue
		}
		flat = append(flat, err)
	}
	switch len(flat) {
	case 0:
		return nil
	case 1:
		return flat[0]
	default:
		return &multiErr{errs: flat}
	}
}

type multiErr struct {
	errs []error
}

func (e *multiErr) Error() string {
	points := make([]string, len(e.errs))
	for i, err := range e.errs {
		points[i] = fmt.Sprintf("* %s", err)
	}
	return fmt.Sprintf("%d errors occurred:\n\t%s\n", len(e.errs), strings.Join(points, "\n\t"))
}
