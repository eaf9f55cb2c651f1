package pipeline

import (
	"errors"
	"fmt"
)

// State is a phase of a single build invocation.
type State string

// Build states in the order they are entered.
const (
	StatePending          State = "pending"
	StateAssetsGenerated  State = "assets_generated"
	StatePrePackaged      State = "pre_packaged"
	StatePostCopyComplete State = "post_copy_complete"
	StateCompleted        State = "completed"
	StateFailed           State = "failed"
)

//nolint:gochecknoglobals // Read-only ordering table.
var stateRank = map[State]int{
	StatePending:          0,
	StateAssetsGenerated:  1,
	StatePrePackaged:      2,
	StatePostCopyComplete: 3,
	StateCompleted:        4,
}

var (
	// ErrInvalidTransition is returned when a state would be re-entered or left backwards.
	ErrInvalidTransition = errors.New("invalid state transition")
	errUnknownState      = errors.New("unknown state")
)

// Machine tracks the build state. States only move forward, each at most once.
// Failed is terminal.
type Machine struct {
	current State
}

// NewMachine returns a machine in the pending state.
func NewMachine() *Machine {
	return &Machine{current: StatePending}
}

// Current returns the current state.
func (m *Machine) Current() State {
	return m.current
}

// Advance moves to the target state. Intermediate states may be skipped when
// the corresponding stage is not part of the run.
func (m *Machine) Advance(to State) error {
	if m.current == StateFailed {
		return fmt.Errorf("%w: %s is terminal", ErrInvalidTransition, StateFailed)
	}

	if to == StateFailed {
		m.current = StateFailed
		return nil
	}

	rank, ok := stateRank[to]
	if !ok {
		return fmt.Errorf("%w: %q", errUnknownState, to)
	}

	if rank <= stateRank[m.current] {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, m.current, to)
	}

	m.current = to

	return nil
}

// Fail moves the machine into the terminal failed state.
func (m *Machine) Fail() {
	m.current = StateFailed
}
