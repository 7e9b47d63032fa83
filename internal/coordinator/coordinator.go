package coordinator

import (
	"context"
	"errors"

	"github.com/pdoodle/pairing/internal/domain"
	"github.com/pdoodle/pairing/internal/infrastructure/events"
	"github.com/pdoodle/pairing/internal/infrastructure/logging"
	"github.com/pdoodle/pairing/internal/infrastructure/metrics"
)

// Coordinator enforces the pairing state machine on top of the room
// store. Conflict and not-found outcomes are business results returned
// verbatim; only code exhaustion is treated as an operational anomaly.
type Coordinator struct {
	repo      domain.RoomRepository
	publisher events.Publisher
	metrics   *metrics.Metrics
	logger    logging.Logger
}

func New(
	repo domain.RoomRepository,
	publisher events.Publisher,
	m *metrics.Metrics,
	logger logging.Logger,
) *Coordinator {
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}

	return &Coordinator{
		repo:      repo,
		publisher: publisher,
		metrics:   m,
		logger:    logger,
	}
}

// Create opens a WAITING room with the caller as creator. A caller who
// already occupies an active room must leave it first.
func (c *Coordinator) Create(ctx context.Context, caller domain.Identity) (*domain.Room, error) {
	room, err := c.repo.CreateRoom(ctx, caller)
	if err != nil {
		if errors.Is(err, domain.ErrCodeExhausted) {
			c.metrics.CodeExhaustion.Inc()
			c.logger.Error(logging.Pairing, logging.RoomLifecycle, "code generation exhausted", map[logging.ExtraKey]any{
				logging.Subject: caller.Subject,
			})
		}
		return nil, err
	}

	c.metrics.RoomsCreated.Inc()
	c.logger.Info(logging.Pairing, logging.RoomLifecycle, "room created", map[logging.ExtraKey]any{
		logging.RoomID:   room.ID,
		logging.RoomCode: room.Code,
		logging.Subject:  caller.Subject,
	})

	if err := c.publisher.PublishRoomCreated(ctx, *room); err != nil {
		c.logger.Warn(logging.RabbitMQ, logging.ExternalService, "failed to publish room created", map[logging.ExtraKey]any{
			logging.RoomID:       room.ID,
			logging.ErrorMessage: err.Error(),
		})
	}

	return room, nil
}

// Join admits the caller as partner of the WAITING room identified by
// code. Case is normalized server-side; the admit itself is a single
// atomic transition, so of two concurrent joins exactly one succeeds.
func (c *Coordinator) Join(ctx context.Context, caller domain.Identity, code string) (*domain.Room, error) {
	room, err := c.repo.AdmitPartner(ctx, domain.NormalizeCode(code), caller)
	if err != nil {
		return nil, err
	}

	c.metrics.RoomsPaired.Inc()
	c.logger.Info(logging.Pairing, logging.RoomLifecycle, "room paired", map[logging.ExtraKey]any{
		logging.RoomID:   room.ID,
		logging.RoomCode: room.Code,
		logging.Subject:  caller.Subject,
	})

	if err := c.publisher.PublishRoomPaired(ctx, *room); err != nil {
		c.logger.Warn(logging.RabbitMQ, logging.ExternalService, "failed to publish room paired", map[logging.ExtraKey]any{
			logging.RoomID:       room.ID,
			logging.ErrorMessage: err.Error(),
		})
	}

	return room, nil
}

// Status is a pure read of the caller's observable pairing state.
func (c *Coordinator) Status(ctx context.Context, caller domain.Identity) (domain.PairingStatus, error) {
	room, err := c.repo.RoomForIdentity(ctx, caller.Subject)
	if err != nil {
		return nil, err
	}
	return domain.StatusFor(room, caller.Subject), nil
}

// Leave destroys the caller's room, WAITING or PAIRED, returning both
// parties to NO_ROOM. Idempotent: leaving with no active room is a
// success, as is racing the other party's leave or the sweeper.
func (c *Coordinator) Leave(ctx context.Context, caller domain.Identity) error {
	room, err := c.repo.RoomForIdentity(ctx, caller.Subject)
	if err != nil {
		return err
	}
	if room == nil {
		return nil
	}

	deleted, err := c.repo.DeleteRoomForMember(ctx, room.Code, caller.Subject)
	if err != nil {
		return err
	}
	if deleted == nil {
		// Someone else got there first; same observable outcome.
		return nil
	}

	c.metrics.RoomsLeft.Inc()
	c.logger.Info(logging.Pairing, logging.RoomLifecycle, "room left", map[logging.ExtraKey]any{
		logging.RoomID:   deleted.ID,
		logging.RoomCode: deleted.Code,
		logging.Subject:  caller.Subject,
	})

	if err := c.publisher.PublishRoomLeft(ctx, *deleted, caller.Subject); err != nil {
		c.logger.Warn(logging.RabbitMQ, logging.ExternalService, "failed to publish room left", map[logging.ExtraKey]any{
			logging.RoomID:       deleted.ID,
			logging.ErrorMessage: err.Error(),
		})
	}

	return nil
}
