package workspace

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidName is returned for an empty name, a name containing the
	// index separator, or the reserved index key.
	ErrInvalidName = errors.New("invalid file name")
	// ErrDuplicateName is returned when creating a name that is already indexed.
	ErrDuplicateName = errors.New("duplicate file name")
	// ErrNotFound is returned when a name has no content entry.
	ErrNotFound = errors.New("file not found")
)

// NameError records a failed workspace operation on a file name.
type NameError struct {
	Op   string
	Name string
	Err  error
}

func (e *NameError) Error() string {
	return fmt.Sprintf("workspace %s %q: %v", e.Op, e.Name, e.Err)
}

func (e *NameError) Unwrap() error { return e.Err }

// UserMessage returns the text shown to the user for err. Errors that are not
// workspace name errors fall back to err.Error().
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var ne *NameError
	name := ""
	if errors.As(err, &ne) {
		name = ne.Name
	}
	switch {
	case errors.Is(err, ErrInvalidName):
		if name == "" {
			return "File name cannot be empty!"
		}
		return "Special characters are not allowed!"
	case errors.Is(err, ErrDuplicateName):
		return "This file name is already in use!"
	case errors.Is(err, ErrNotFound):
		return "File not found: " + name
	}
	return err.Error()
}
