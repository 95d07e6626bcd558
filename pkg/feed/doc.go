// Package feed reads the remote metadata documents fnassist depends on:
// the assistant's release feed, the listing of downloadable application
// bundles and the game asset archive descriptor.
//
// Metadata responses are cached in a small sqlite database. Fresh entries
// skip the network; expired ones are still served when the network fails.
// Requests are never retried.
package feed
