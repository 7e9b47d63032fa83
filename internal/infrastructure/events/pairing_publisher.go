package events

import (
	"context"
	"encoding/json"

	"github.com/pdoodle/pairing/internal/domain"
	"github.com/pdoodle/pairing/internal/infrastructure/contracts"
	"github.com/pdoodle/pairing/internal/infrastructure/messaging"
)

// Publisher announces pairing lifecycle transitions for downstream
// consumers (the drawing session service, the audit writer). Publish
// failures never fail the pairing operation that produced them.
type Publisher interface {
	PublishRoomCreated(ctx context.Context, room domain.Room) error
	PublishRoomPaired(ctx context.Context, room domain.Room) error
	PublishRoomLeft(ctx context.Context, room domain.Room, leaver string) error
	PublishRoomExpired(ctx context.Context, room domain.Room) error
}

type PairingPublisher struct {
	rabbitmq *messaging.RabbitMQ
}

func NewPairingPublisher(rabbitmq *messaging.RabbitMQ) *PairingPublisher {
	return &PairingPublisher{
		rabbitmq: rabbitmq,
	}
}

func (p *PairingPublisher) PublishRoomCreated(ctx context.Context, room domain.Room) error {
	return p.publish(ctx, contracts.EventRoomCreated, messaging.PairingEventData{
		Room:  room,
		Event: domain.EventRoomCreated,
	})
}

func (p *PairingPublisher) PublishRoomPaired(ctx context.Context, room domain.Room) error {
	return p.publish(ctx, contracts.EventRoomPaired, messaging.PairingEventData{
		Room:  room,
		Event: domain.EventRoomPaired,
	})
}

func (p *PairingPublisher) PublishRoomLeft(ctx context.Context, room domain.Room, leaver string) error {
	return p.publish(ctx, contracts.EventRoomLeft, messaging.PairingEventData{
		Room:   room,
		Event:  domain.EventRoomLeft,
		Leaver: leaver,
	})
}

func (p *PairingPublisher) PublishRoomExpired(ctx context.Context, room domain.Room) error {
	return p.publish(ctx, contracts.EventRoomExpired, messaging.PairingEventData{
		Room:  room,
		Event: domain.EventRoomExpired,
	})
}

func (p *PairingPublisher) publish(ctx context.Context, routingKey string, payload messaging.PairingEventData) error {
	eventJSON, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	return p.rabbitmq.PublishMessage(ctx, routingKey, contracts.AmqpMessage{
		SubjectID: payload.Room.Creator.Subject,
		Data:      eventJSON,
	})
}

// NoopPublisher keeps the coordinator path identical when the broker is
// disabled by configuration.
type NoopPublisher struct{}

func (NoopPublisher) PublishRoomCreated(context.Context, domain.Room) error { return nil }

func (NoopPublisher) PublishRoomPaired(context.Context, domain.Room) error { return nil }

func (NoopPublisher) PublishRoomLeft(context.Context, domain.Room, string) error { return nil }

func (NoopPublisher) PublishRoomExpired(context.Context, domain.Room) error { return nil }
