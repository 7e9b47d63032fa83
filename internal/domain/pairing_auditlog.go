package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type PairingEventType string

const (
	EventRoomCreated PairingEventType = "room_created"
	EventRoomPaired  PairingEventType = "room_paired"
	EventRoomLeft    PairingEventType = "room_left"
	EventRoomExpired PairingEventType = "room_expired"
)

type PairingAuditLog struct {
	ID        string           `bson:"_id" json:"id"`
	RoomID    string           `bson:"room_id" json:"roomId"`
	Code      string           `bson:"code" json:"code"`
	EventType PairingEventType `bson:"event_type" json:"eventType"`
	Timestamp time.Time        `bson:"timestamp" json:"timestamp"`
	Metadata  map[string]any   `bson:"metadata,omitempty" json:"metadata,omitempty"`
}

type PairingAuditRepository interface {
	Log(ctx context.Context, log *PairingAuditLog) error
	GetByRoomID(ctx context.Context, roomID string, limit int) ([]PairingAuditLog, error)
	GetByEventType(ctx context.Context, eventType PairingEventType, from, to time.Time) ([]PairingAuditLog, error)
	DeleteOlderThan(ctx context.Context, before time.Time) error
	EnsureIndexes(ctx context.Context) error
}

func NewRoomCreatedLog(room *Room) *PairingAuditLog {
	return &PairingAuditLog{
		ID:        uuid.NewString(),
		RoomID:    room.ID,
		Code:      room.Code,
		EventType: EventRoomCreated,
		Timestamp: time.Now(),
		Metadata: map[string]any{
			"creator": room.Creator.Subject,
		},
	}
}

func NewRoomPairedLog(room *Room) *PairingAuditLog {
	meta := map[string]any{
		"creator": room.Creator.Subject,
	}
	if room.Partner != nil {
		meta["partner"] = room.Partner.Subject
	}

	return &PairingAuditLog{
		ID:        uuid.NewString(),
		RoomID:    room.ID,
		Code:      room.Code,
		EventType: EventRoomPaired,
		Timestamp: time.Now(),
		Metadata:  meta,
	}
}

func NewRoomLeftLog(room *Room, leaver string) *PairingAuditLog {
	return &PairingAuditLog{
		ID:        uuid.NewString(),
		RoomID:    room.ID,
		Code:      room.Code,
		EventType: EventRoomLeft,
		Timestamp: time.Now(),
		Metadata: map[string]any{
			"leaver":     leaver,
			"was_paired": room.Status == StatusPaired,
		},
	}
}

func NewRoomExpiredLog(room *Room) *PairingAuditLog {
	return &PairingAuditLog{
		ID:        uuid.NewString(),
		RoomID:    room.ID,
		Code:      room.Code,
		EventType: EventRoomExpired,
		Timestamp: time.Now(),
		Metadata: map[string]any{
			"age_seconds": time.Since(room.CreatedAt).Seconds(),
		},
	}
}
