// Package containers finds the game's sandbox containers, helps the user
// pick one when several exist, and deletes stale ones.
//
// Discovery is best effort: a container whose metadata cannot be read is
// logged and skipped, and a missing containers root yields no results.
// Nothing here mutates the filesystem except Deleter.
package containers
