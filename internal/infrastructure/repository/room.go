package repository

import (
	"context"
	"sync"
	"time"

	"github.com/pdoodle/pairing/internal/domain"
)

const defaultCodeAttempts = 5

// CodeGenerator produces candidate room codes. Swappable in tests to
// force collisions.
type CodeGenerator func() (string, error)

type roomRepository struct {
	rooms        map[string]*domain.Room // code -> room
	memberIndex  map[string]string       // subject -> code
	generate     CodeGenerator
	codeAttempts int
	pairingTTL   time.Duration
	mu           sync.Mutex
}

// NewRoomRepository builds the in-memory room store. A single mutex
// guards both maps, so every multi-step transition (collision retry,
// admit, dual-membership delete) is one critical section.
func NewRoomRepository(generate CodeGenerator, codeAttempts int, pairingTTL time.Duration) domain.RoomRepository {
	if generate == nil {
		generate = domain.GenerateCode
	}
	if codeAttempts <= 0 {
		codeAttempts = defaultCodeAttempts
	}
	if pairingTTL <= 0 {
		pairingTTL = 10 * time.Minute
	}

	return &roomRepository{
		rooms:        make(map[string]*domain.Room),
		memberIndex:  make(map[string]string),
		generate:     generate,
		codeAttempts: codeAttempts,
		pairingTTL:   pairingTTL,
	}
}

func (r *roomRepository) CreateRoom(ctx context.Context, creator domain.Identity) (*domain.Room, error) {
	if creator.Subject == "" {
		return nil, domain.ErrInvalidInput
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.memberIndex[creator.Subject]; exists {
		return nil, domain.ErrAlreadyInRoom
	}

	room, err := r.newRoomLocked(creator)
	if err != nil {
		return nil, err
	}

	r.rooms[room.Code] = room
	r.memberIndex[creator.Subject] = room.Code

	return copyRoom(room), nil
}

// newRoomLocked generates a code that is unique among active rooms,
// retrying inside the lock so the uniqueness check and the insert
// cannot interleave with another create. Exhausting the budget is an
// operational anomaly, not a normal outcome.
func (r *roomRepository) newRoomLocked(creator domain.Identity) (*domain.Room, error) {
	for attempt := 0; attempt < r.codeAttempts; attempt++ {
		room, err := domain.NewRoomWithGenerator(creator, r.generate)
		if err != nil {
			return nil, err
		}
		if _, taken := r.rooms[room.Code]; !taken {
			return room, nil
		}
	}
	return nil, domain.ErrCodeExhausted
}

func (r *roomRepository) AdmitPartner(ctx context.Context, code string, partner domain.Identity) (*domain.Room, error) {
	if partner.Subject == "" {
		return nil, domain.ErrInvalidInput
	}
	code = domain.NormalizeCode(code)
	if code == "" {
		return nil, domain.ErrInvalidInput
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	room, exists := r.rooms[code]
	if !exists {
		return nil, domain.ErrRoomNotFound
	}

	// An expired-but-unswept code behaves like a dead code.
	if room.Status == domain.StatusWaiting && time.Since(room.CreatedAt) > r.pairingTTL {
		return nil, domain.ErrRoomNotFound
	}

	if room.Status == domain.StatusPaired {
		return nil, domain.ErrAlreadyPaired
	}
	if room.Creator.Subject == partner.Subject {
		return nil, domain.ErrSelfJoin
	}
	if _, busy := r.memberIndex[partner.Subject]; busy {
		return nil, domain.ErrAlreadyInRoom
	}

	room.Pair(partner)
	r.memberIndex[partner.Subject] = room.Code

	return copyRoom(room), nil
}

func (r *roomRepository) RoomForIdentity(ctx context.Context, subject string) (*domain.Room, error) {
	if subject == "" {
		return nil, domain.ErrInvalidInput
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	code, exists := r.memberIndex[subject]
	if !exists {
		return nil, nil
	}

	room, exists := r.rooms[code]
	if !exists {
		// Index entry without a room means a bug in this store; heal
		// and report no room.
		delete(r.memberIndex, subject)
		return nil, nil
	}

	return copyRoom(room), nil
}

func (r *roomRepository) DeleteRoomForMember(ctx context.Context, code, subject string) (*domain.Room, error) {
	code = domain.NormalizeCode(code)
	if code == "" || subject == "" {
		return nil, domain.ErrInvalidInput
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	room, exists := r.rooms[code]
	if !exists {
		return nil, nil
	}

	// The code may have been reclaimed and reissued since the caller
	// looked it up; a room the subject is no longer part of stays put.
	if !room.HasMember(subject) {
		return nil, nil
	}

	delete(r.rooms, code)
	delete(r.memberIndex, room.Creator.Subject)
	if room.Partner != nil {
		delete(r.memberIndex, room.Partner.Subject)
	}

	return copyRoom(room), nil
}

func (r *roomRepository) WaitingBefore(ctx context.Context, cutoff time.Time) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var codes []string
	for code, room := range r.rooms {
		if room.Status == domain.StatusWaiting && room.CreatedAt.Before(cutoff) {
			codes = append(codes, code)
		}
	}

	return codes, nil
}

func (r *roomRepository) DeleteIfWaitingBefore(ctx context.Context, code string, cutoff time.Time) (*domain.Room, error) {
	code = domain.NormalizeCode(code)
	if code == "" {
		return nil, domain.ErrInvalidInput
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	room, exists := r.rooms[code]
	if !exists {
		return nil, nil
	}
	if room.Status != domain.StatusWaiting || !room.CreatedAt.Before(cutoff) {
		return nil, nil
	}

	delete(r.rooms, code)
	delete(r.memberIndex, room.Creator.Subject)

	return copyRoom(room), nil
}

// copyRoom hands callers a detached record; stored rooms are only ever
// mutated under the repository lock.
func copyRoom(room *domain.Room) *domain.Room {
	c := *room
	if room.Partner != nil {
		p := *room.Partner
		c.Partner = &p
	}
	return &c
}
