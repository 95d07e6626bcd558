// Package filesystem provides filesystem implementations for fnassist.
//
// This package contains implementations of the types.FS interface,
// the standard OS filesystem and an afero-backed one for tests, plus the
// move primitive the relocator uses across volumes.
package filesystem
