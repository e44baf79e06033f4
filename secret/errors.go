package secret

import "fmt"

var (
	// ErrNotFound is returned when a requested secret key does not exist
	// for the given project.
	ErrNotFound = fmt.Errorf("secret not found")
)
