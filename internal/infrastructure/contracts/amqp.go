package contracts

// AmqpMessage is the message structure for AMQP.
type AmqpMessage struct {
	SubjectID string `json:"subjectId"`
	Data      []byte `json:"data"`
}

// Routing keys - using consistent event/command patterns
const (
	EventRoomCreated = "pairing.room.created"
	EventRoomPaired  = "pairing.room.paired"
	EventRoomLeft    = "pairing.room.left"
	EventRoomExpired = "pairing.room.expired"
)
