package drive

import (
	"errors"
	"fmt"
)

var (
	// ErrDuplicateName is matched by DuplicateNameError.
	ErrDuplicateName = errors.New("drive name already registered")

	// ErrNotFound is matched by NotFoundError.
	ErrNotFound = errors.New("drive not found")

	// ErrInvalidName is returned when registering a drive with an empty name.
	ErrInvalidName = errors.New("drive name must not be empty")
)

// DuplicateNameError is returned when a drive name is registered twice.
type DuplicateNameError struct {
	Name string
}

func (e *DuplicateNameError) Error() string {
	return fmt.Sprintf("drive %q already registered", e.Name)
}

func (e *DuplicateNameError) Is(target error) bool { return target == ErrDuplicateName }

// NotFoundError is returned when a lookup names an unregistered drive.
type NotFoundError struct {
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("drive %q not found", e.Name)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }
