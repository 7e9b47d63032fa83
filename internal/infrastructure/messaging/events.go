package messaging

import "github.com/pdoodle/pairing/internal/domain"

const (
	PairingQueue    = "pairing_events"
	DeadLetterQueue = "dead_letter_queue"
)

type PairingEventData struct {
	Room   domain.Room             `json:"room"`
	Event  domain.PairingEventType `json:"event"`
	Leaver string                  `json:"leaver,omitempty"`
}
