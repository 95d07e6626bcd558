// Package notify sends desktop notifications when long-running commands
// finish.
package notify

import (
	"github.com/arthur-debert/fnassist/pkg/logging"
	"github.com/gen2brain/beeep"
)

// AppName is shown as the sender of notifications on platforms that use it
const AppName = "fnassist"

// Notifier delivers a notification
type Notifier interface {
	Notify(title, message string) error
}

// Desktop notifies through the operating system's notification center
type Desktop struct{}

// Notify implements Notifier
func (Desktop) Notify(title, message string) error {
	beeep.AppName = AppName
	return beeep.Notify(title, message, "")
}

// Nop drops every notification
type Nop struct{}

// Notify implements Notifier
func (Nop) Notify(string, string) error { return nil }

// New returns a Desktop notifier when enabled, otherwise Nop
func New(enabled bool) Notifier {
	if enabled {
		return Desktop{}
	}
	return Nop{}
}

// Send delivers a notification and only logs failures. A missing
// notification never fails the command that produced it.
func Send(n Notifier, title, message string) {
	if n == nil {
		return
	}
	if err := n.Notify(title, message); err != nil {
		logger := logging.GetLogger("notify")
		logger.Warn().Err(err).Str("title", title).Msg("notification failed")
	}
}
