package containers

import (
	"fmt"

	"github.com/arthur-debert/fnassist/pkg/errors"
	"github.com/arthur-debert/fnassist/pkg/logging"
	"github.com/arthur-debert/fnassist/pkg/types"
	"github.com/dustin/go-humanize"
)

// Action is what the user did with the candidate list
type Action int

const (
	// ActionCancel abandons the selection
	ActionCancel Action = iota
	// ActionSelect picks the entry at Choice.Index
	ActionSelect
	// ActionDelete removes the entry at Choice.Index from disk
	ActionDelete
)

// Choice is a prompter answer
type Choice struct {
	Action Action
	Index  int
}

// Entry is one candidate as presented to the user
type Entry struct {
	Container types.Container
	SizeBytes int64
	SizeLabel string
	// DataLocation is where the game data lives when it was relocated
	DataLocation string
}

// Label returns a one-line description of the entry
func (e Entry) Label() string {
	label := fmt.Sprintf("%s  %s  (%s)", e.Container.Name(), e.Container.RootPath, e.SizeLabel)
	if e.DataLocation != "" {
		label += "  data: " + e.DataLocation
	}
	return label
}

// Prompter asks the user to choose among entries and to confirm
type Prompter interface {
	Pick(entries []Entry) (Choice, error)
	Confirm(message string) (bool, error)
}

// Remover deletes a container from disk
type Remover interface {
	DeleteContainer(root string) error
}

// Selector turns a candidate set into one confirmed container
type Selector struct {
	FS       types.FS
	Prompter Prompter
	Remover  Remover
	// AlwaysDisambiguate prompts even for a single candidate
	AlwaysDisambiguate bool
	// Locate reports where a container's data lives when it is relocated.
	// Optional.
	Locate func(containerRoot string) string
	// DeleteFailed is told about a failed deletion; the candidate stays in
	// the list. Optional.
	DeleteFailed func(containerRoot string, err error)

	sizes map[string]int64
}

// Choose returns the container the user confirmed, or nil when the user
// cancelled or no candidate is left. Selecting needs two confirmations:
// the pick itself and an explicit yes.
func (s *Selector) Choose(candidates []types.Container) (*types.Container, error) {
	logger := logging.GetLogger("containers.selector")

	s.sizes = nil
	set := Dedupe(candidates)
	if len(set) == 0 {
		return nil, nil
	}
	if len(set) == 1 && !s.AlwaysDisambiguate {
		c := set[0]
		return &c, nil
	}

	for {
		if len(set) == 0 {
			logger.Info().Msg("no candidates left, selection cancelled")
			return nil, nil
		}

		choice, err := s.Prompter.Pick(s.entries(set))
		if err != nil {
			return nil, err
		}
		if choice.Action == ActionCancel {
			return nil, nil
		}
		if choice.Index < 0 || choice.Index >= len(set) {
			return nil, errors.Newf(errors.ErrInvalidInput, "no candidate at index %d", choice.Index)
		}
		picked := set[choice.Index]

		switch choice.Action {
		case ActionSelect:
			ok, err := s.Prompter.Confirm(fmt.Sprintf("Use container %s?", picked.RootPath))
			if err != nil {
				return nil, err
			}
			if ok {
				picked.SizeBytes = s.sizes[picked.RootPath]
				logger.Info().Str("container", picked.RootPath).Msg("container selected")
				return &picked, nil
			}

		case ActionDelete:
			ok, err := s.Prompter.Confirm(fmt.Sprintf(
				"Permanently delete %s (%s)? This cannot be undone.",
				picked.RootPath, humanize.Bytes(uint64(s.sizes[picked.RootPath]))))
			if err != nil {
				return nil, err
			}
			if !ok {
				continue
			}
			if err := s.Remover.DeleteContainer(picked.RootPath); err != nil {
				logger.Warn().Err(err).Str("container", picked.RootPath).Msg("container could not be deleted")
				if s.DeleteFailed != nil {
					s.DeleteFailed(picked.RootPath, err)
				}
				continue
			}
			delete(s.sizes, picked.RootPath)
			set = append(set[:choice.Index], set[choice.Index+1:]...)

		default:
			return nil, errors.Newf(errors.ErrInvalidInput, "unknown selector action %d", choice.Action)
		}
	}
}

func (s *Selector) entries(set []types.Container) []Entry {
	if s.sizes == nil {
		s.sizes = make(map[string]int64)
	}
	entries := make([]Entry, len(set))
	for i, c := range set {
		size, ok := s.sizes[c.RootPath]
		if !ok {
			size = ComputeDirectorySize(s.FS, c.RootPath)
			s.sizes[c.RootPath] = size
		}
		entries[i] = Entry{
			Container: c,
			SizeBytes: size,
			SizeLabel: humanize.Bytes(uint64(size)),
		}
		if s.Locate != nil {
			entries[i].DataLocation = s.Locate(c.RootPath)
		}
	}
	return entries
}
