package pairing

import "github.com/pdoodle/pairing/internal/domain"

// joinRequest carries the invitation code; case-insensitive, the server
// owns canonical casing.
type joinRequest struct {
	Code string `json:"code" example:"ABC234"`
}

// statusResponse is the wire shape of the tagged pairing status. Code
// is present for WAITING and PAIRED; partner fields only for PAIRED.
type statusResponse struct {
	Status       string `json:"status" example:"WAITING" enum:"NO_ROOM,WAITING,PAIRED"`
	Code         string `json:"code,omitempty" example:"ABC234"`
	Partner      string `json:"partner,omitempty" example:"ada"`
	PartnerEmail string `json:"partnerEmail,omitempty" example:"ada@example.com"`
}

func noRoomResponse() statusResponse {
	return statusResponse{Status: string(domain.StateNoRoom)}
}

func waitingResponse(code string) statusResponse {
	return statusResponse{
		Status: string(domain.StateWaiting),
		Code:   code,
	}
}

func statusResponseFor(status domain.PairingStatus) statusResponse {
	switch s := status.(type) {
	case domain.Waiting:
		return waitingResponse(s.Code)
	case domain.Paired:
		return statusResponse{
			Status:       string(domain.StatePaired),
			Code:         s.Code,
			Partner:      s.PartnerName,
			PartnerEmail: s.PartnerEmail,
		}
	default:
		return noRoomResponse()
	}
}
