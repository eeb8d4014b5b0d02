package resolver

import "os"

// Environ is the narrow interface through which the pipeline reads and
// writes environment variables. The process environment is process-wide
// mutable state; routing access through this interface lets tests use an
// in-memory map and keeps env.update writes serialized in one place.
type Environ interface {
	// Lookup returns the variable's value and whether it is set.
	Lookup(name string) (string, bool)

	// Set writes the variable. Used for env.update write-backs.
	Set(name, value string) error
}

// OSEnviron is the process-environment implementation of Environ.
type OSEnviron struct{}

// Lookup implements Environ.
func (OSEnviron) Lookup(name string) (string, bool) {
	return os.LookupEnv(name)
}

// Set implements Environ.
func (OSEnviron) Set(name, value string) error {
	return os.Setenv(name, value)
}

// MapEnviron is an in-memory Environ for tests and hermetic runs.
type MapEnviron map[string]string

// Lookup implements Environ.
func (m MapEnviron) Lookup(name string) (string, bool) {
	v, ok := m[name]
	return v, ok
}

// Set implements Environ.
func (m MapEnviron) Set(name, value string) error {
	m[name] = value
	return nil
}
