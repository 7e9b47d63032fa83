package domain

import (
	"context"
	"crypto/rand"
	"errors"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	CodeLength = 6

	// Ambiguous characters (0/O, 1/I) are excluded so codes survive
	// being read aloud or scribbled on paper.
	codeChars = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
)

var (
	charsetLen = big.NewInt(int64(len(codeChars)))

	ErrRoomNotFound  = errors.New("room not found")
	ErrAlreadyInRoom = errors.New("already in a room")
	ErrAlreadyPaired = errors.New("room is already paired")
	ErrSelfJoin      = errors.New("cannot join your own room")
	ErrCodeExhausted = errors.New("code generation attempts exhausted")
	ErrInvalidInput  = errors.New("invalid input")
)

// RoomStatus is the persisted state of a room. Absence of a room record
// for an identity is NO_ROOM; it is never stored.
type RoomStatus string

const (
	StatusWaiting RoomStatus = "WAITING"
	StatusPaired  RoomStatus = "PAIRED"
)

// Room is the shared pairing record. Partner is non-nil exactly when
// Status is PAIRED.
type Room struct {
	ID        string     `json:"id"`
	Code      string     `json:"code"`
	Status    RoomStatus `json:"status"`
	Creator   Identity   `json:"creator"`
	Partner   *Identity  `json:"partner,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
}

// RoomRepository is the room store plus membership index. Every
// operation is atomic with respect to the others: concurrent admits on
// the same WAITING room resolve to exactly one winner.
type RoomRepository interface {
	// CreateRoom generates a code, inserts a WAITING room and indexes
	// the creator. ErrAlreadyInRoom if the creator already occupies an
	// active room, ErrCodeExhausted if the collision budget runs out.
	CreateRoom(ctx context.Context, creator Identity) (*Room, error)

	// AdmitPartner transitions a WAITING room to PAIRED and indexes the
	// partner, all in one step. The code is matched case-insensitively.
	AdmitPartner(ctx context.Context, code string, partner Identity) (*Room, error)

	// RoomForIdentity is the reverse lookup through the membership
	// index; nil room (no error) when the identity has no active room.
	RoomForIdentity(ctx context.Context, subject string) (*Room, error)

	// DeleteRoomForMember removes the room and both membership entries,
	// but only while subject still belongs to the room under that code.
	// Nil room (no error) when the room is gone or the code has been
	// reused by strangers: leave may race with expiry, with the other
	// party's leave, and with code reuse after either.
	DeleteRoomForMember(ctx context.Context, code, subject string) (*Room, error)

	// WaitingBefore returns the codes of WAITING rooms created before
	// cutoff. PAIRED rooms are never reported.
	WaitingBefore(ctx context.Context, cutoff time.Time) ([]string, error)

	// DeleteIfWaitingBefore deletes the room only if it is still
	// WAITING and older than cutoff, so a sweep can never destroy a
	// room that paired after the scan. Nil room when the condition no
	// longer holds.
	DeleteIfWaitingBefore(ctx context.Context, code string, cutoff time.Time) (*Room, error)
}

// NewRoom builds a WAITING room for the given creator with a freshly
// generated code. Uniqueness against active rooms is the store's job.
func NewRoom(creator Identity) (*Room, error) {
	return NewRoomWithGenerator(creator, GenerateCode)
}

// NewRoomWithGenerator is NewRoom with the code source injected, so
// stores can retry against their own uniqueness view.
func NewRoomWithGenerator(creator Identity, generate func() (string, error)) (*Room, error) {
	code, err := generate()
	if err != nil {
		return nil, err
	}

	return &Room{
		ID:        uuid.NewString(),
		Code:      code,
		Status:    StatusWaiting,
		Creator:   creator,
		CreatedAt: time.Now(),
	}, nil
}

// Pair sets the partner and flips the room to PAIRED.
func (r *Room) Pair(partner Identity) {
	p := partner
	r.Partner = &p
	r.Status = StatusPaired
}

// PartnerOf returns the other participant of a PAIRED room, or nil for
// a WAITING room or a non-member subject.
func (r *Room) PartnerOf(subject string) *Identity {
	if r.Partner == nil {
		return nil
	}
	switch subject {
	case r.Creator.Subject:
		return r.Partner
	case r.Partner.Subject:
		c := r.Creator
		return &c
	}
	return nil
}

// HasMember reports whether the subject participates in the room.
func (r *Room) HasMember(subject string) bool {
	if r.Creator.Subject == subject {
		return true
	}
	return r.Partner != nil && r.Partner.Subject == subject
}

// NormalizeCode maps user input to the canonical code form: trimmed,
// uppercase. The server owns canonical casing.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// GenerateCode draws a uniformly distributed code from the fixed
// alphabet. Collision handling is the caller's responsibility.
func GenerateCode() (string, error) {
	var sb strings.Builder
	sb.Grow(CodeLength)

	for i := 0; i < CodeLength; i++ {
		n, err := rand.Int(rand.Reader, charsetLen)
		if err != nil {
			return "", err
		}
		sb.WriteByte(codeChars[n.Int64()])
	}

	return sb.String(), nil
}
