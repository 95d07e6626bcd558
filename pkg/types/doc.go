// Package types defines the core types and interfaces shared by fnassist
// packages: the FS abstraction, the Container model discovered under the
// sandbox containers root, and the RelocationOutcome returned by the
// relocator.
package types
