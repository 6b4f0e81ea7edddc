package dispatch

import "fmt"

// state tracks a request through the dispatcher. Transitions only move
// forward; Failed is reachable from every non-final state.
type state int

const (
	stateReceived state = iota
	stateResolving
	stateStaticStreaming
	stateDelegating
	stateCompleted
	stateFailed
)

var stateNames = [...]string{
	stateReceived:        "received",
	stateResolving:       "resolving",
	stateStaticStreaming: "static_streaming",
	stateDelegating:      "delegating",
	stateCompleted:       "completed",
	stateFailed:          "failed",
}

func (s state) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return fmt.Sprintf("state(%d)", int(s))
}

func (s state) final() bool {
	return s == stateCompleted || s == stateFailed
}

// to returns next, panicking on a transition the dispatcher must never make.
func (s state) to(next state) state {
	if !s.canMove(next) {
		panic(fmt.Sprintf("dispatch: invalid transition %s -> %s", s, next))
	}
	return next
}

func (s state) canMove(next state) bool {
	if s.final() {
		return false
	}
	if next == stateFailed {
		return true
	}
	switch s {
	case stateReceived:
		return next == stateResolving
	case stateResolving:
		return next == stateStaticStreaming || next == stateDelegating
	case stateStaticStreaming, stateDelegating:
		return next == stateCompleted
	}
	return false
}
