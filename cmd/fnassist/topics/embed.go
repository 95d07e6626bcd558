// Package topics holds the built-in help topics of fnassist
package topics

import "embed"

// FS contains every topic file
//
//go:embed *.md *.txt
var FS embed.FS
