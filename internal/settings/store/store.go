package store

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/legalprop/propostas/internal/settings"
)

type Redis struct {
	client *redis.Client
}

func NewRedis(client *redis.Client) *Redis {
	return &Redis{client: client}
}

func key(userID uuid.UUID) string {
	return "settings:" + userID.String()
}

func (r *Redis) Load(ctx context.Context, userID uuid.UUID) ([]byte, error) {
	data, err := r.client.Get(ctx, key(userID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, settings.ErrNotFound
		}

		return nil, fmt.Errorf("loading settings: %w", err)
	}

	return data, nil
}

// Save stores data without expiry.
func (r *Redis) Save(ctx context.Context, userID uuid.UUID, data []byte) error {
	if err := r.client.Set(ctx, key(userID), data, 0).Err(); err != nil {
		return fmt.Errorf("saving settings: %w", err)
	}

	return nil
}

// Memory keeps settings in process. Used when Redis is not configured.
type Memory struct {
	mu   sync.RWMutex
	docs map[uuid.UUID][]byte
}

func NewMemory() *Memory {
	return &Memory{docs: make(map[uuid.UUID][]byte)}
}

func (m *Memory) Load(_ context.Context, userID uuid.UUID) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, ok := m.docs[userID]
	if !ok {
		return nil, settings.ErrNotFound
	}

	return append([]byte(nil), data...), nil
}

func (m *Memory) Save(_ context.Context, userID uuid.UUID, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.docs[userID] = append([]byte(nil), data...)

	return nil
}
