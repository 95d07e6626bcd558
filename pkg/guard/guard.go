// Package guard keeps container writes away from a running game. The game
// holds its container open while it runs, so relocating, resetting,
// importing into or deleting a container first asks the user to quit it.
package guard

import (
	"bufio"
	"bytes"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/arthur-debert/fnassist/pkg/errors"
	"github.com/arthur-debert/fnassist/pkg/logging"
)

// DefaultQuitTimeout is how long AllowWrite waits for the game to exit
const DefaultQuitTimeout = 5 * time.Second

// Process is one running process
type Process struct {
	PID  int
	Path string
}

// Lister enumerates running processes
type Lister interface {
	List() ([]Process, error)
}

// Terminator stops a process
type Terminator interface {
	Terminate(pid int) error
}

// PSLister lists processes with ps(1)
type PSLister struct{}

// List implements Lister
func (PSLister) List() ([]Process, error) {
	out, err := exec.Command("ps", "-axo", "pid=,comm=").Output()
	if err != nil {
		return nil, err
	}
	return ParsePS(out), nil
}

// ParsePS reads "pid command" lines. Malformed lines are skipped.
func ParsePS(out []byte) []Process {
	var procs []Process
	scanner := bufio.NewScanner(bytes.NewReader(out))
	for scanner.Scan() {
		fields := strings.SplitN(strings.TrimSpace(scanner.Text()), " ", 2)
		if len(fields) != 2 {
			continue
		}
		pid, err := strconv.Atoi(fields[0])
		if err != nil {
			continue
		}
		procs = append(procs, Process{PID: pid, Path: strings.TrimSpace(fields[1])})
	}
	return procs
}

// KillTerminator force-quits processes
type KillTerminator struct{}

// Terminate implements Terminator
func (KillTerminator) Terminate(pid int) error {
	p, err := os.FindProcess(pid)
	if err != nil {
		return err
	}
	return p.Kill()
}

// Guard refuses container writes while a process matching NameToken runs
type Guard struct {
	Lister     Lister
	Terminator Terminator
	// Confirm asks whether the game may be quit. Nil means never.
	Confirm   func(message string) (bool, error)
	NameToken string
	Timeout   time.Duration
	Poll      time.Duration
}

// New creates a Guard on the real process table
func New(nameToken string, timeout time.Duration, confirm func(string) (bool, error)) *Guard {
	return &Guard{
		Lister:     PSLister{},
		Terminator: KillTerminator{},
		Confirm:    confirm,
		NameToken:  nameToken,
		Timeout:    timeout,
	}
}

// Running returns the game processes currently alive
func (g *Guard) Running() ([]Process, error) {
	procs, err := g.Lister.List()
	if err != nil {
		return nil, err
	}
	token := strings.ToLower(g.NameToken)
	self := os.Getpid()
	var matches []Process
	for _, p := range procs {
		if p.PID == self || token == "" {
			continue
		}
		if strings.Contains(strings.ToLower(p.Path), token) {
			matches = append(matches, p)
		}
	}
	return matches, nil
}

// AllowWrite implements types.WriteGuard. When the game runs the user is
// asked to quit it; the game is then terminated and given Timeout to exit.
// A declined prompt or a game that keeps running yields a BUSY error.
// When the process table cannot be read the write is allowed.
func (g *Guard) AllowWrite() error {
	logger := logging.GetLogger("guard")

	running, err := g.Running()
	if err != nil {
		logger.Warn().Err(err).Msg("cannot list processes, assuming the game is not running")
		return nil
	}
	if len(running) == 0 {
		return nil
	}

	ok := false
	if g.Confirm != nil {
		ok, err = g.Confirm("The game is running and must be closed before its container is modified. Quit it now?")
		if err != nil {
			return err
		}
	}
	if !ok {
		return busy("the game is running, close it and try again", running)
	}

	for _, p := range running {
		if err := g.Terminator.Terminate(p.PID); err != nil {
			logger.Warn().Err(err).Int("pid", p.PID).Msg("could not terminate process")
		}
	}
	if still := g.waitForExit(); len(still) > 0 {
		return busy("the game did not quit in time", still).WithDetail("timeout", g.timeout().String())
	}
	logger.Info().Int("processes", len(running)).Msg("game quit")
	return nil
}

func (g *Guard) waitForExit() []Process {
	poll := g.Poll
	if poll <= 0 {
		poll = 100 * time.Millisecond
	}
	deadline := time.Now().Add(g.timeout())
	for {
		running, err := g.Running()
		if err != nil || len(running) == 0 {
			return nil
		}
		if !time.Now().Before(deadline) {
			return running
		}
		time.Sleep(poll)
	}
}

func (g *Guard) timeout() time.Duration {
	if g.Timeout <= 0 {
		return DefaultQuitTimeout
	}
	return g.Timeout
}

func busy(msg string, procs []Process) *errors.AssistError {
	pids := make([]int, len(procs))
	for i, p := range procs {
		pids[i] = p.PID
	}
	return errors.New(errors.ErrBusy, msg).WithDetail("pids", pids)
}
