package fnassist

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/arthur-debert/fnassist/pkg/access"
	"github.com/arthur-debert/fnassist/pkg/bundle"
	cobratopics "github.com/arthur-debert/fnassist/pkg/cobrax/topics"
	"github.com/arthur-debert/fnassist/pkg/config"
	"github.com/arthur-debert/fnassist/pkg/containers"
	"github.com/arthur-debert/fnassist/pkg/errors"
	"github.com/arthur-debert/fnassist/pkg/feed"
	"github.com/arthur-debert/fnassist/pkg/filesystem"
	"github.com/arthur-debert/fnassist/pkg/guard"
	"github.com/arthur-debert/fnassist/pkg/lockset"
	"github.com/arthur-debert/fnassist/pkg/logging"
	"github.com/arthur-debert/fnassist/pkg/notify"
	"github.com/arthur-debert/fnassist/pkg/paths"
	"github.com/arthur-debert/fnassist/pkg/relocate"
	"github.com/arthur-debert/fnassist/pkg/types"
	"github.com/arthur-debert/fnassist/pkg/ui"
	"github.com/arthur-debert/fnassist/pkg/ui/prompt"
	"github.com/arthur-debert/fnassist/pkg/ui/styles"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// annotationConfigKey binds a command flag to a configuration key. Flags
// carrying it are applied as the last configuration layer when set.
const annotationConfigKey = "fnassist:config-key"

// The process table the write guard consults; tests replace them
var (
	gameProcesses  guard.Lister     = guard.PSLister{}
	gameTerminator guard.Terminator = guard.KillTerminator{}
)

// app is what commands share once flags are parsed: resolved paths,
// configuration, output and the collaborators built from them.
type app struct {
	opts *globalOptions

	paths    *paths.Paths
	cfg      *config.Config
	format   ui.Format
	out      ui.Renderer
	stdout   io.Writer
	stderr   io.Writer
	fs       types.FS
	access   types.AccessChecker
	locks    *lockset.Registry
	guard    types.WriteGuard
	notifier notify.Notifier

	// prompter overrides the prompter picked from the flags; tests set it
	prompter containers.Prompter
}

// setup resolves everything commands need. It runs after flag parsing so
// command flags bound to configuration keys take part.
func (a *app) setup(cmd *cobra.Command) error {
	logger := logging.GetLogger("cli")

	format, err := ui.ParseFormat(a.opts.format)
	if err != nil {
		return err
	}
	a.format = format
	a.stdout = cmd.OutOrStdout()
	a.stderr = cmd.ErrOrStderr()
	if a.out, err = ui.NewRenderer(format, a.stdout); err != nil {
		return err
	}

	if a.paths, err = paths.New(); err != nil {
		return err
	}

	configDir := a.opts.configDir
	if configDir == "" {
		configDir = a.paths.ConfigDir()
	}
	overrides := flagOverrides(cmd)
	a.cfg, err = config.LoadConfiguration(config.LoadOptions{
		ConfigDir: a.paths.ExpandHome(configDir),
		Overrides: overrides,
	})
	if err != nil {
		return err
	}
	// /Applications may be redirected through the environment
	if os.Getenv(paths.EnvApplicationsDir) != "" {
		a.cfg.Bundle.ApplicationsDir = a.paths.ApplicationsDir()
	}
	if a.cfg.Downloads.Dir == "" {
		a.cfg.Downloads.Dir = a.paths.DownloadsDir()
	}
	a.cfg.Downloads.Dir = a.paths.ExpandHome(a.cfg.Downloads.Dir)

	a.fs = filesystem.NewOS()
	a.locks = lockset.Default()
	if a.opts.assumeAccess {
		a.access = access.Static(true)
	} else {
		a.access = access.NewProbe(a.fs, a.paths.ProtectedProbeDir())
	}
	if a.cfg.Guard.Enabled {
		a.guard = &guard.Guard{
			Lister:     gameProcesses,
			Terminator: gameTerminator,
			Confirm:    a.confirm,
			NameToken:  a.cfg.App.NameToken,
			Timeout:    a.cfg.Guard.QuitTimeout,
		}
	}
	a.notifier = notify.New(a.opts.notify)

	logger.Debug().
		Str("format", a.format.String()).
		Str("config_dir", configDir).
		Int("overrides", len(overrides)).
		Msg("application ready")
	return nil
}

// flagOverrides collects the set flags of cmd that are bound to a
// configuration key
func flagOverrides(cmd *cobra.Command) map[string]interface{} {
	overrides := map[string]interface{}{}
	cmd.Flags().Visit(func(f *pflag.Flag) {
		if keys, ok := f.Annotations[annotationConfigKey]; ok && len(keys) > 0 {
			overrides[keys[0]] = f.Value.String()
		}
	})
	return overrides
}

// bindConfig ties a flag of cmd to a configuration key
func bindConfig(cmd *cobra.Command, flag, key string) {
	_ = cmd.Flags().SetAnnotation(flag, annotationConfigKey, []string{key})
}

// interactive reports whether the user can answer prompts
func (a *app) interactive() bool {
	return !a.format.Structured() && ui.IsInteractive(os.Stdin)
}

func (a *app) prompt() containers.Prompter {
	switch {
	case a.prompter != nil:
		return a.prompter
	case a.opts.yes:
		return prompt.NonInteractive{AssumeYes: true, Index: a.opts.pick - 1}
	case a.interactive():
		return prompt.NewTerminal()
	default:
		return prompt.NonInteractive{}
	}
}

// confirm asks a yes/no question, answering for the user with --yes
func (a *app) confirm(message string) (bool, error) {
	return a.prompt().Confirm(message)
}

func (a *app) relocator() *relocate.Relocator {
	r := relocate.New(a.cfg, a.access, a.locks)
	r.Guard = a.guard
	return r
}

func (a *app) deleter() *containers.Deleter {
	return &containers.Deleter{
		FS:      a.fs,
		Locks:   a.locks,
		Access:  a.access,
		GameDir: a.cfg.App.GameDir,
		Guard:   a.guard,
	}
}

// allowWrite asks the write guard whether containers may change now
func (a *app) allowWrite() error {
	if a.guard == nil {
		return nil
	}
	return a.guard.AllowWrite()
}

func (a *app) normalizer() *bundle.Normalizer {
	return bundle.NewNormalizer(a.fs, a.cfg.Bundle)
}

// findContainers lists the game containers. Listing the containers root
// needs Full Disk Access, so its absence is reported up front.
func (a *app) findContainers() ([]types.Container, error) {
	if err := access.Require(a.access); err != nil {
		return nil, err
	}
	locator := containers.NewLocator(a.fs, a.paths.ContainersRoot(), a.cfg.App.NameToken, a.cfg.App.GameDir)
	found := locator.FindContainers()
	if len(found) == 0 {
		return nil, errors.New(errors.ErrNotFound, MsgNoContainers).
			WithDetail("root", a.paths.ContainersRoot())
	}
	return found, nil
}

// chooseContainer runs the selector over the game containers. A nil
// container with a nil error means the user cancelled.
func (a *app) chooseContainer() (*types.Container, error) {
	found, err := a.findContainers()
	if err != nil {
		return nil, err
	}
	selector := &containers.Selector{
		FS:                 a.fs,
		Prompter:           a.prompt(),
		Remover:            a.deleter(),
		AlwaysDisambiguate: a.cfg.Selector.AlwaysDisambiguate,
		Locate:             a.relocator().RelocatedTo,
		DeleteFailed: func(_ string, err error) {
			a.reportError(a.stderr, err)
		},
	}
	chosen, err := selector.Choose(found)
	if err != nil || chosen == nil {
		return nil, err
	}
	if chosen.GameDir == "" {
		chosen.GameDir = a.cfg.App.GameDir
	}
	return chosen, nil
}

// feedClient opens the metadata cache and returns a feed client. The
// returned function closes the cache.
func (a *app) feedClient() (*feed.Client, func()) {
	logger := logging.GetLogger("cli")

	cache, err := feed.OpenCache(a.paths.CacheDBPath())
	if err != nil {
		logger.Warn().Err(err).Msg("feed cache unavailable, fetching without it")
		return feed.NewClient(a.cfg.Feeds, nil), func() {}
	}
	return feed.NewClient(a.cfg.Feeds, cache), func() { _ = cache.Close() }
}

// progress returns a progress bar on stderr for interactive runs, or nil
func (a *app) progress(title string, bytes bool) *prompt.Progress {
	if !a.interactive() {
		return nil
	}
	return prompt.NewProgress(title, a.stderr, bytes)
}

func progressFunc(p *prompt.Progress) types.ProgressFunc {
	if p == nil {
		return nil
	}
	return p.Func()
}

func stopProgress(p *prompt.Progress) {
	if p != nil {
		p.Stop()
	}
}

// absPath expands ~ and makes p absolute
func (a *app) absPath(p string) (string, error) {
	abs, err := filepath.Abs(a.paths.ExpandHome(p))
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrInvalidInput, "invalid path %q", p)
	}
	return abs, nil
}

// cancelled reports a cancelled selection
func (a *app) cancelled() error {
	return a.out.RenderMessage(MsgCancelled)
}

// reportError prints err on w. Setup may not have run, so the renderer is
// built from the raw flag value when needed.
func (a *app) reportError(w io.Writer, err error) {
	format := a.format
	if a.out == nil && a.opts != nil {
		if f, perr := ui.ParseFormat(a.opts.format); perr == nil {
			format = f
		}
	}
	if format == ui.FormatAuto {
		if f, ok := w.(*os.File); ok {
			format = ui.DetectFormat(f)
		} else {
			format = ui.FormatText
		}
	}

	renderer, rerr := ui.NewRenderer(format, w)
	if rerr != nil {
		fmt.Fprintln(w, styles.Render("Error", fmt.Sprintf("Error: %v", err)))
		return
	}
	_ = renderer.RenderError(err)

	// Structured formats carry the guidance in the error details
	if guidance := access.GuidanceFor(err); guidance != "" && !format.Structured() {
		var r cobratopics.Renderer = &cobratopics.PlainRenderer{}
		if format == ui.FormatTerminal {
			r = cobratopics.NewGlamourRenderer()
		}
		fmt.Fprintln(w)
		fmt.Fprint(w, r.Render(guidance, ".md"))
	}
}

func sendNotification(a *app, message string) {
	notify.Send(a.notifier, notify.AppName, message)
}
