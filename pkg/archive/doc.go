// Package archive imports downloaded game assets into a container's game
// data directory.
//
// Three sources are understood: a zip archive, a gzip-compressed tarball
// and a plain folder. Archives are extracted into the target directory as
// they are laid out. A folder becomes the target's PersistentDownloadDir,
// or is merged into it when one already exists.
//
// Every import reports progress per entry and checks its context between
// entries, so a cancelled import stops at an entry boundary.
package archive
