// Package access answers whether fnassist can touch macOS privacy-protected
// locations, and explains how to grant that access when it cannot.
package access

import (
	"errors"
	"io/fs"

	fnerrors "github.com/arthur-debert/fnassist/pkg/errors"
	"github.com/arthur-debert/fnassist/pkg/logging"
	"github.com/arthur-debert/fnassist/pkg/types"
)

// Guidance is shown whenever an operation needs Full Disk Access
const Guidance = `# Full Disk Access required

fnassist needs **Full Disk Access** to read and modify the game's
sandbox container under ` + "`~/Library/Containers`" + `.

1. Open **System Settings**.
2. Go to **Privacy & Security** then **Full Disk Access**.
3. Click **+** and add your terminal application (Terminal, iTerm, ...).
4. Enable the toggle next to it.
5. Quit and reopen the terminal, then run the command again.
`

// Probe checks elevated access by enumerating a protected directory
type Probe struct {
	FS  types.FS
	Dir string
}

// NewProbe creates a probe for dir
func NewProbe(fsys types.FS, dir string) *Probe {
	return &Probe{FS: fsys, Dir: dir}
}

// HasElevatedAccess returns false only when reading the protected directory
// is denied. A missing directory, or any other failure, counts as allowed:
// the probe is advisory.
func (p *Probe) HasElevatedAccess() bool {
	logger := logging.GetLogger("access")

	_, err := p.FS.ReadDir(p.Dir)
	switch {
	case err == nil:
		return true
	case errors.Is(err, fs.ErrNotExist):
		logger.Debug().Str("dir", p.Dir).Msg("protected directory absent, assuming access")
		return true
	case errors.Is(err, fs.ErrPermission):
		logger.Debug().Str("dir", p.Dir).Msg("protected directory not readable")
		return false
	default:
		logger.Warn().Err(err).Str("dir", p.Dir).Msg("access probe inconclusive, assuming access")
		return true
	}
}

// Require returns a PERMISSION error carrying the guidance text when the
// checker reports no elevated access.
func Require(checker types.AccessChecker) error {
	if checker == nil || checker.HasElevatedAccess() {
		return nil
	}
	return fnerrors.New(fnerrors.ErrPermission, "Full Disk Access is required").
		WithDetail("guidance", Guidance)
}

// GuidanceFor returns the guidance attached to a PERMISSION error, or ""
func GuidanceFor(err error) string {
	if !fnerrors.IsErrorCode(err, fnerrors.ErrPermission) {
		return ""
	}
	g, _ := fnerrors.GetErrorDetails(err)["guidance"].(string)
	return g
}

// Static reports a fixed answer. Useful for tests and for --assume-access.
type Static bool

// HasElevatedAccess implements types.AccessChecker
func (s Static) HasElevatedAccess() bool { return bool(s) }
