package coordinator_test

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/pdoodle/pairing/internal/domain"
	"github.com/pdoodle/pairing/internal/infrastructure/logging"
)

// noopLogger satisfies logging.Logger without touching a sink.
type noopLogger struct{}

func (noopLogger) Init() {}

func (noopLogger) Debug(logging.Category, logging.SubCategory, string, map[logging.ExtraKey]any) {}
func (noopLogger) Debugf(string, ...any) {}

func (noopLogger) Info(logging.Category, logging.SubCategory, string, map[logging.ExtraKey]any) {}
func (noopLogger) Infof(string, ...any) {}

func (noopLogger) Warn(logging.Category, logging.SubCategory, string, map[logging.ExtraKey]any) {}
func (noopLogger) Warnf(string, ...any) {}

func (noopLogger) Error(logging.Category, logging.SubCategory, string, map[logging.ExtraKey]any) {}
func (noopLogger) Errorf(string, ...any) {}

func (noopLogger) Fatal(logging.Category, logging.SubCategory, string, map[logging.ExtraKey]any) {}
func (noopLogger) Fatalf(string, ...any) {}

// MockPublisher records which lifecycle events were published.
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) PublishRoomCreated(ctx context.Context, room domain.Room) error {
	args := m.Called(ctx, room)
	return args.Error(0)
}

func (m *MockPublisher) PublishRoomPaired(ctx context.Context, room domain.Room) error {
	args := m.Called(ctx, room)
	return args.Error(0)
}

func (m *MockPublisher) PublishRoomLeft(ctx context.Context, room domain.Room, leaver string) error {
	args := m.Called(ctx, room, leaver)
	return args.Error(0)
}

func (m *MockPublisher) PublishRoomExpired(ctx context.Context, room domain.Room) error {
	args := m.Called(ctx, room)
	return args.Error(0)
}
