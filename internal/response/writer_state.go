package response

import "fmt"

// writerState is the part of the message a ResponseWriter expects next.
// It only moves forward.
type writerState uint8

const (
	stateStatusLine writerState = iota
	stateHeaders
	stateBody
	stateDone
)

var writerStateNames = [...]string{
	stateStatusLine: "status line",
	stateHeaders:    "headers",
	stateBody:       "body",
	stateDone:       "done",
}

func (s writerState) String() string {
	if int(s) < len(writerStateNames) {
		return writerStateNames[s]
	}
	return fmt.Sprintf("writerState(%d)", s)
}

func (s writerState) advance() writerState {
	if s >= stateDone {
		panic(fmt.Sprintf("response: cannot advance past %s", s))
	}
	return s + 1
}
