// Package prompt implements the interactive terminal pieces of fnassist:
// choosing among containers, confirming destructive actions and showing
// progress bars.
package prompt

import (
	"fmt"

	"github.com/arthur-debert/fnassist/pkg/containers"
	"github.com/arthur-debert/fnassist/pkg/errors"
	"github.com/pterm/pterm"
)

const (
	optionCancel = "Cancel"
	optionUse    = "Use this container"
	optionDelete = "Delete this container"
	optionBack   = "Back"
)

// Terminal asks questions with pterm's interactive printers
type Terminal struct {
	// selectFn and confirmFn are swapped out in tests
	selectFn  func(title string, options []string) (string, error)
	confirmFn func(message string) (bool, error)
}

// NewTerminal creates a Terminal prompter
func NewTerminal() *Terminal {
	return &Terminal{selectFn: ptermSelect, confirmFn: ptermConfirm}
}

func ptermSelect(title string, options []string) (string, error) {
	return pterm.DefaultInteractiveSelect.
		WithOptions(options).
		WithMaxHeight(len(options)).
		WithDefaultText(title).
		Show()
}

func ptermConfirm(message string) (bool, error) {
	return pterm.DefaultInteractiveConfirm.
		WithDefaultValue(false).
		WithDefaultText(message).
		Show()
}

// Pick lets the user choose an entry, then what to do with it. Choosing
// "Back" on the second question returns to the list.
func (t *Terminal) Pick(entries []containers.Entry) (containers.Choice, error) {
	options := make([]string, 0, len(entries)+1)
	for i, e := range entries {
		options = append(options, fmt.Sprintf("%d. %s", i+1, e.Label()))
	}
	options = append(options, optionCancel)

	for {
		picked, err := t.selectFn(fmt.Sprintf("%d game containers found, pick one", len(entries)), options)
		if err != nil {
			return containers.Choice{}, errors.Wrap(err, errors.ErrInternal, "prompt failed")
		}
		index := indexOf(options, picked)
		if index < 0 || index >= len(entries) {
			return containers.Choice{Action: containers.ActionCancel}, nil
		}

		action, err := t.selectFn(entries[index].Container.RootPath, []string{optionUse, optionDelete, optionBack})
		if err != nil {
			return containers.Choice{}, errors.Wrap(err, errors.ErrInternal, "prompt failed")
		}
		switch action {
		case optionUse:
			return containers.Choice{Action: containers.ActionSelect, Index: index}, nil
		case optionDelete:
			return containers.Choice{Action: containers.ActionDelete, Index: index}, nil
		}
	}
}

// Confirm asks a yes/no question, defaulting to no
func (t *Terminal) Confirm(message string) (bool, error) {
	ok, err := t.confirmFn(message)
	if err != nil {
		return false, errors.Wrap(err, errors.ErrInternal, "prompt failed")
	}
	return ok, nil
}

func indexOf(options []string, s string) int {
	for i, o := range options {
		if o == s {
			return i
		}
	}
	return -1
}

// NonInteractive answers every prompt without asking. It picks Index when
// AssumeYes is set and cancels otherwise.
type NonInteractive struct {
	AssumeYes bool
	Index     int
}

// Pick implements containers.Prompter
func (n NonInteractive) Pick(entries []containers.Entry) (containers.Choice, error) {
	if !n.AssumeYes {
		return containers.Choice{Action: containers.ActionCancel}, nil
	}
	if n.Index < 0 || n.Index >= len(entries) {
		return containers.Choice{}, errors.Newf(errors.ErrInvalidInput,
			"container index %d out of range, %d candidates", n.Index+1, len(entries))
	}
	return containers.Choice{Action: containers.ActionSelect, Index: n.Index}, nil
}

// Confirm implements containers.Prompter
func (n NonInteractive) Confirm(string) (bool, error) {
	return n.AssumeYes, nil
}
