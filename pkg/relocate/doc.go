// Package relocate moves the game's data out of its sandbox container and
// leaves a symbolic link in its place.
//
// The relocatable unit is a sub-path of the container root (by default
// Data/Documents/FortniteGame). SwitchDataFolder is idempotent: calling it
// again with the same target reports AlreadyLinked and changes nothing.
// ResetDataLocation undoes a relocation.
//
// Relocation is not atomic. A failure after a move has started is
// reported as an UNEXPECTED_OS error naming both paths, and may need
// manual recovery.
package relocate
