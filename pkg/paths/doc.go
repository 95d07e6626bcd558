// Package paths provides the well-known locations fnassist works with: the
// macOS sandbox containers root, the applications directory, the
// protected directory used to probe Full Disk Access, and fnassist's own
// XDG config, cache and state directories.
package paths
