package dashboard

import "github.com/flycharts/flycharts/internal/sim"

// Event is a tagged variant delivered by the live link. Consumers dispatch
// with a type switch rather than callback registration.
type Event interface {
	isEvent()
}

// StatusChanged carries a link status report pushed by the server or
// observed by the periodic status check
type StatusChanged struct {
	Status sim.StatusReport
}

// PositionUpdated carries a pushed aircraft position sample
type PositionUpdated struct {
	Position sim.PositionReading
}

// LinkError reports a live link failure
type LinkError struct {
	Message string
}

func (StatusChanged) isEvent()   {}
func (PositionUpdated) isEvent() {}
func (LinkError) isEvent()       {}
