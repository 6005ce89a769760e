// Package redis stores per-client prompt overrides in Redis hashes.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/davidbz/pressroom/internal/domain"
	"github.com/davidbz/pressroom/internal/observability"
)

const (
	fieldQuestions = "questions_prompt"
	fieldFollowUp  = "followup_prompt"
)

// PreferenceStore implements domain.PreferenceStore on Redis.
type PreferenceStore struct {
	client    *redis.Client
	ttl       time.Duration
	keyPrefix string
}

// NewClient connects to Redis and verifies the connection.
func NewClient(ctx context.Context, cfg Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Addr, err)
	}
	return client, nil
}

// NewPreferenceStore creates a Redis preference store. A non-positive ttl keeps entries forever.
func NewPreferenceStore(client *redis.Client, ttl time.Duration, keyPrefix string) (*PreferenceStore, error) {
	if client == nil {
		return nil, errors.New("redis client cannot be nil")
	}
	return &PreferenceStore{client: client, ttl: ttl, keyPrefix: keyPrefix}, nil
}

func (s *PreferenceStore) key(clientID string) string {
	return s.keyPrefix + clientID
}

// Get returns the overrides stored for clientID.
func (s *PreferenceStore) Get(ctx context.Context, clientID string) (domain.PromptOverrides, error) {
	if clientID == "" {
		return domain.PromptOverrides{}, domain.NewInputError("client_id", "cannot be empty")
	}

	fields, err := s.client.HGetAll(ctx, s.key(clientID)).Result()
	if err != nil {
		return domain.PromptOverrides{}, fmt.Errorf("failed to read preferences: %w", err)
	}

	return domain.PromptOverrides{
		Questions: fields[fieldQuestions],
		FollowUp:  fields[fieldFollowUp],
	}, nil
}

// Put replaces the overrides stored for clientID and refreshes the TTL.
func (s *PreferenceStore) Put(ctx context.Context, clientID string, overrides domain.PromptOverrides) error {
	if clientID == "" {
		return domain.NewInputError("client_id", "cannot be empty")
	}

	key := s.key(clientID)
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		if overrides.IsZero() {
			return nil
		}

		values := make(map[string]interface{}, 2)
		if overrides.Questions != "" {
			values[fieldQuestions] = overrides.Questions
		}
		if overrides.FollowUp != "" {
			values[fieldFollowUp] = overrides.FollowUp
		}
		pipe.HSet(ctx, key, values)
		if s.ttl > 0 {
			pipe.Expire(ctx, key, s.ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to store preferences: %w", err)
	}

	observability.FromContext(ctx).Debug("stored preferences",
		observability.String("key", key),
		observability.Duration("ttl", s.ttl))
	return nil
}

// Delete removes the overrides stored for clientID.
func (s *PreferenceStore) Delete(ctx context.Context, clientID string) error {
	if clientID == "" {
		return domain.NewInputError("client_id", "cannot be empty")
	}

	if err := s.client.Del(ctx, s.key(clientID)).Err(); err != nil {
		return fmt.Errorf("failed to delete preferences: %w", err)
	}
	return nil
}

// Close releases the underlying client.
func (s *PreferenceStore) Close() error {
	return s.client.Close()
}
