package twocaptcha

import (
	"fmt"
	"log/slog"
)

// taskState is the position of one Solve flow in the poll protocol.
type taskState int

const (
	stateSubmitted taskState = iota
	statePending
	stateReady
	stateFailed
	stateTimedOut
)

func (s taskState) String() string {
	switch s {
	case stateSubmitted:
		return "submitted"
	case statePending:
		return "pending"
	case stateReady:
		return "ready"
	case stateFailed:
		return "failed"
	case stateTimedOut:
		return "timed_out"
	default:
		return "unknown"
	}
}

func (s taskState) terminal() bool {
	switch s {
	case stateReady, stateFailed, stateTimedOut:
		return true
	default:
		return false
	}
}

func allowedTransition(from, to taskState) bool {
	switch from {
	case stateSubmitted, statePending:
		return to == statePending || to.terminal()
	default:
		return false
	}
}

// tracker owns the state of a single flow. It is never shared between
// flows, so it needs no locking.
type tracker struct {
	state  taskState
	taskID uint64
	log    *slog.Logger
}

func newTracker(taskID uint64, log *slog.Logger) *tracker {
	t := &tracker{state: stateSubmitted, taskID: taskID, log: log}
	log.Debug("task submitted", "task_id", taskID, "state", t.state)
	return t
}

// finish moves the flow to a terminal state. Only non-terminal flows
// reach a terminal move, so it cannot be disallowed; a flow that is
// already terminal keeps its first outcome.
func (t *tracker) finish(to taskState) {
	if t.state.terminal() {
		t.log.Warn("task already finished", "task_id", t.taskID, "state", t.state, "to", to)
		return
	}
	t.log.Debug("task state changed", "task_id", t.taskID, "from", t.state, "to", to)
	t.state = to
}

func (t *tracker) transition(to taskState) error {
	if !allowedTransition(t.state, to) {
		return fmt.Errorf("task %d: disallowed transition %s -> %s", t.taskID, t.state, to)
	}
	if t.state != to {
		t.log.Debug("task state changed", "task_id", t.taskID, "from", t.state, "to", to)
	}
	t.state = to
	return nil
}
