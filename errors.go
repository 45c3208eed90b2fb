package ustar

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrIoUnavailable is wrapped by errors from opening the archive or creating an extracted file.
	ErrIoUnavailable = errors.New("io unavailable")

	// ErrNameNotFound is wrapped by NotFoundError.
	ErrNameNotFound = errors.New("not found in archive")
)

// NotFoundError is returned by Process if the archive was scanned successfully but some requested names were never
// seen.
type NotFoundError struct {
	Names []string
}

func (e *NotFoundError) Error() string {
	quoted := make([]string, len(e.Names))
	for i, name := range e.Names {
		quoted[i] = fmt.Sprintf("%q", name)
	}

	return fmt.Sprintf("%s: %v", strings.Join(quoted, ", "), ErrNameNotFound)
}

func (e *NotFoundError) Unwrap() error {
	return ErrNameNotFound
}
