package types

import (
	"fmt"
)

// RelocationStatus describes which branch a relocation took
type RelocationStatus int

const (
	// AlreadyLinked means the source already resolves to the target; nothing changed
	AlreadyLinked RelocationStatus = iota
	// Relinked means an existing relocation link was pointed at a new target
	Relinked
	// MovedAndLinked means the data was moved to the target and replaced by a link
	MovedAndLinked
	// BackedUpAndLinked means the source was set aside as a backup before linking
	BackedUpAndLinked
	// ReplacedAndLinked means the existing target won and the source was removed
	ReplacedAndLinked
)

var relocationStatusNames = map[RelocationStatus]string{
	AlreadyLinked:     "already_linked",
	Relinked:          "relinked",
	MovedAndLinked:    "moved_and_linked",
	BackedUpAndLinked: "backed_up_and_linked",
	ReplacedAndLinked: "replaced_and_linked",
}

func (s RelocationStatus) String() string {
	if name, ok := relocationStatusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("unknown(%d)", int(s))
}

// MarshalText renders the status by name for json and yaml output
func (s RelocationStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// RelocationOutcome is the result of a single relocation request. It is not
// persisted; callers re-probe the filesystem to learn the current state.
type RelocationOutcome struct {
	Status      RelocationStatus `json:"status" yaml:"status"`
	CurrentPath string           `json:"current_path" yaml:"current_path"`
	TargetPath  string           `json:"target_path" yaml:"target_path"`
	BackupPath  string           `json:"backup_path,omitempty" yaml:"backup_path,omitempty"`
}

// Changed reports whether the relocation mutated the filesystem
func (o RelocationOutcome) Changed() bool {
	return o.Status != AlreadyLinked
}
