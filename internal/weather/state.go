package weather

import "time"

// Phase names where a State sits in the fetch lifecycle.
type Phase string

const (
	PhaseIdle    Phase = "idle"
	PhaseLoading Phase = "loading"
	PhaseSuccess Phase = "success"
	PhaseFailure Phase = "failure"
)

// State is the snapshot the presentation layer renders. It is a value:
// transitions below return a new State and never modify their input.
type State struct {
	Loading   bool               `json:"loading"`
	Err       string             `json:"error,omitempty"`
	Place     *Place             `json:"place,omitempty"`
	Current   *CurrentConditions `json:"current,omitempty"`
	Daily     *DailyForecast     `json:"daily,omitempty"`
	UpdatedAt time.Time          `json:"updatedAt,omitzero"`
}

// Phase derives the lifecycle phase from the snapshot.
func (s State) Phase() Phase {
	switch {
	case s.Loading:
		return PhaseLoading
	case s.Err != "":
		return PhaseFailure
	case s.Renderable():
		return PhaseSuccess
	default:
		return PhaseIdle
	}
}

// Renderable reports whether a result card can be drawn. Both the place and
// the current conditions are required.
func (s State) Renderable() bool {
	return s.Place != nil && s.Current != nil
}

// Begin enters Loading and clears the error. Whatever result is on screen
// stays there until the chain completes.
func Begin(s State) State {
	s.Loading = true
	s.Err = ""
	return s
}

// Succeed replaces the whole result with a fresh lookup.
func Succeed(_ State, place Place, f Forecast, at time.Time) State {
	current := f.Current
	daily := f.Daily
	return State{
		Place:     &place,
		Current:   &current,
		Daily:     &daily,
		UpdatedAt: at,
	}
}

// Fail records msg and discards every piece of result data.
func Fail(_ State, msg string) State {
	if msg == "" {
		msg = FallbackMessage
	}
	return State{Err: msg}
}
