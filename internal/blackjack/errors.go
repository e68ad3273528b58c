package blackjack

// ValidationError reports a rejected input: a non-positive amount or a bet the
// player cannot cover. The session is left untouched.
type ValidationError struct {
	Reason string
}

func (e ValidationError) Error() string { return e.Reason }

// StateError reports an operation that is illegal in the current round phase,
// such as betting mid-round or doubling after the first action.
type StateError struct {
	Reason string
}

func (e StateError) Error() string { return e.Reason }

// ErrNoRound is returned by player actions when no round is active. Transports
// surface it as an informational message rather than a failure.
var ErrNoRound = StateError{Reason: "no active round"}
