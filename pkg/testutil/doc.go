// Package testutil provides fixtures and assertions shared by fnassist
// tests: fake game containers with metadata plists, file trees, tree
// snapshots for before/after comparisons, and an FS wrapper that injects
// errors on chosen paths.
package testutil
