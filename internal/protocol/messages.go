// Package protocol defines the JSON messages exchanged over the websocket
// surface. Requests name an operation; responses carry the visible table
// state plus a human-readable message or an error.
package protocol

import "github.com/lox/blackjackd/internal/blackjack"

// Operation identifiers for requests.
const (
	OpInitGame   = "init_game"
	OpAddCredits = "add_credits"
	OpGetState   = "get_state"
	OpReset      = "reset"
	OpPlaceBet   = "place_bet"
	OpHit        = "hit"
	OpStand      = "stand"
	OpDoubleDown = "double_down"
)

// Error kinds reported in responses.
const (
	ErrorKindValidation = "validation"
	ErrorKindState      = "state"
)

// Request is a client -> server message.
type Request struct {
	Op     string            `json:"op"`
	Amount int               `json:"amount,omitempty"`
	Config *blackjack.Config `json:"config,omitempty"`
}

// Response is a server -> client message. Exactly one of Error is set or the
// request succeeded; State is present either way so clients can re-sync.
type Response struct {
	Op      string          `json:"op"`
	State   *blackjack.View `json:"state,omitempty"`
	Message string          `json:"message,omitempty"`
	Error   *Error          `json:"error,omitempty"`
}

// Error describes a rejected request.
type Error struct {
	Kind   string `json:"kind"`
	Reason string `json:"reason"`
}
