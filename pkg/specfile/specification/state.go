package specification

import "fmt"

// State is a stage of the specification pipeline.
type State int

const (
	StateLoaded State = iota
	StateHeaderValidated
	StateResolved
	StateValidated
)

func (s State) String() string {
	switch s {
	case StateLoaded:
		return "loaded"
	case StateHeaderValidated:
		return "header_validated"
	case StateResolved:
		return "resolved"
	case StateValidated:
		return "validated"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}
