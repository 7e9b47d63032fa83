package events

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/rabbitmq/amqp091-go"

	"github.com/pdoodle/pairing/internal/domain"
	"github.com/pdoodle/pairing/internal/infrastructure/contracts"
	"github.com/pdoodle/pairing/internal/infrastructure/messaging"
)

type auditConsumer struct {
	rabbitmq *messaging.RabbitMQ
	audit    domain.PairingAuditRepository
}

// NewAuditConsumer drains pairing events into the audit log.
func NewAuditConsumer(rabbitmq *messaging.RabbitMQ, audit domain.PairingAuditRepository) *auditConsumer {
	return &auditConsumer{
		rabbitmq: rabbitmq,
		audit:    audit,
	}
}

func (c *auditConsumer) Listen() error {
	return c.rabbitmq.ConsumeMessages(messaging.PairingQueue, func(ctx context.Context, msg amqp091.Delivery) error {
		var message contracts.AmqpMessage
		if err := json.Unmarshal(msg.Body, &message); err != nil {
			log.Printf("Failed to unmarshal message: %v", err)
			return err
		}

		var payload messaging.PairingEventData
		if err := json.Unmarshal(message.Data, &payload); err != nil {
			log.Printf("Failed to unmarshal event data: %v", err)
			return err
		}

		entry := auditEntryFor(payload)
		if entry == nil {
			log.Printf("Unknown pairing event type: %s", payload.Event)
			return nil
		}

		// One retry; a lost audit entry must not poison the queue.
		err := c.audit.Log(ctx, entry)
		if err != nil {
			time.Sleep(time.Second)
			err = c.audit.Log(ctx, entry)
		}
		if err != nil {
			log.Printf("Dropping audit entry for room %s: %v", payload.Room.ID, err)
		}

		return nil
	})
}

func auditEntryFor(payload messaging.PairingEventData) *domain.PairingAuditLog {
	room := payload.Room

	switch payload.Event {
	case domain.EventRoomCreated:
		return domain.NewRoomCreatedLog(&room)
	case domain.EventRoomPaired:
		return domain.NewRoomPairedLog(&room)
	case domain.EventRoomLeft:
		return domain.NewRoomLeftLog(&room, payload.Leaver)
	case domain.EventRoomExpired:
		return domain.NewRoomExpiredLog(&room)
	}

	return nil
}
