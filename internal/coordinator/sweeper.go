package coordinator

import (
	"context"
	"time"

	"github.com/pdoodle/pairing/internal/domain"
	"github.com/pdoodle/pairing/internal/infrastructure/events"
	"github.com/pdoodle/pairing/internal/infrastructure/logging"
	"github.com/pdoodle/pairing/internal/infrastructure/metrics"
)

// Sweeper reclaims WAITING rooms abandoned past the pairing TTL. It
// runs on its own interval, independent of request traffic, and deletes
// through the same store path as leave. PAIRED rooms are never swept;
// only an explicit leave ends an active collaboration.
type Sweeper struct {
	repo      domain.RoomRepository
	publisher events.Publisher
	metrics   *metrics.Metrics
	logger    logging.Logger
	ttl       time.Duration
	interval  time.Duration
}

func NewSweeper(
	repo domain.RoomRepository,
	publisher events.Publisher,
	m *metrics.Metrics,
	logger logging.Logger,
	ttl time.Duration,
	interval time.Duration,
) *Sweeper {
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	if interval <= 0 {
		interval = time.Minute
	}

	return &Sweeper{
		repo:      repo,
		publisher: publisher,
		metrics:   m,
		logger:    logger,
		ttl:       ttl,
		interval:  interval,
	}
}

// Run blocks until ctx is cancelled.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info(logging.Pairing, logging.Expiry, "sweeper started", map[logging.ExtraKey]any{
		"ttl":      s.ttl.String(),
		"interval": s.interval.String(),
	})

	for {
		select {
		case <-ticker.C:
			s.Sweep(ctx)
		case <-ctx.Done():
			return
		}
	}
}

// Sweep performs one reclamation pass and returns how many rooms it
// removed. Deletes racing a join or leave are fine: a room paired or
// gone between the scan and the delete is re-checked before removal.
func (s *Sweeper) Sweep(ctx context.Context) int {
	cutoff := time.Now().Add(-s.ttl)

	codes, err := s.repo.WaitingBefore(ctx, cutoff)
	if err != nil {
		s.logger.Error(logging.Pairing, logging.Expiry, "sweep scan failed", map[logging.ExtraKey]any{
			logging.ErrorMessage: err.Error(),
		})
		return 0
	}

	swept := 0
	for _, code := range codes {
		room, err := s.repo.DeleteIfWaitingBefore(ctx, code, cutoff)
		if err != nil {
			s.logger.Error(logging.Pairing, logging.Expiry, "sweep delete failed", map[logging.ExtraKey]any{
				logging.RoomCode:     code,
				logging.ErrorMessage: err.Error(),
			})
			continue
		}
		if room == nil {
			continue
		}

		swept++
		s.metrics.RoomsSwept.Inc()
		s.logger.Info(logging.Pairing, logging.Expiry, "room expired", map[logging.ExtraKey]any{
			logging.RoomID:   room.ID,
			logging.RoomCode: room.Code,
		})

		if err := s.publisher.PublishRoomExpired(ctx, *room); err != nil {
			s.logger.Warn(logging.RabbitMQ, logging.ExternalService, "failed to publish room expired", map[logging.ExtraKey]any{
				logging.RoomID:       room.ID,
				logging.ErrorMessage: err.Error(),
			})
		}
	}

	return swept
}
