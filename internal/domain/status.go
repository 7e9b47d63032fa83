package domain

// PairingState is the state a client observes for its own identity.
type PairingState string

const (
	StateNoRoom  PairingState = "NO_ROOM"
	StateWaiting PairingState = "WAITING"
	StatePaired  PairingState = "PAIRED"
)

// PairingStatus is a tagged variant: exactly one of NoRoom, Waiting or
// Paired. Representing each state as its own type keeps illegal
// combinations (a PAIRED status without a partner) unrepresentable.
type PairingStatus interface {
	State() PairingState
}

type NoRoom struct{}

type Waiting struct {
	Code string
}

type Paired struct {
	Code         string
	PartnerName  string
	PartnerEmail string
}

func (NoRoom) State() PairingState  { return StateNoRoom }
func (Waiting) State() PairingState { return StateWaiting }
func (Paired) State() PairingState  { return StatePaired }

// StatusFor derives the caller's observable status from a room record,
// nil meaning no active room.
func StatusFor(room *Room, subject string) PairingStatus {
	if room == nil {
		return NoRoom{}
	}

	if room.Status == StatusPaired {
		partner := room.PartnerOf(subject)
		if partner == nil {
			// Non-members see nothing of a room they are not in.
			return NoRoom{}
		}
		return Paired{
			Code:         room.Code,
			PartnerName:  partner.Name,
			PartnerEmail: partner.Email,
		}
	}

	return Waiting{Code: room.Code}
}
