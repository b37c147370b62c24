package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/tm-acme-shop/acme-shop-pos-terminal/internal/config"
	"github.com/tm-acme-shop/acme-shop-pos-terminal/internal/logging"
	"github.com/tm-acme-shop/acme-shop-pos-terminal/internal/models"
)

const (
	cartKeyPrefix  = "pos:cart:"
	defaultCartTTL = 12 * time.Hour
)

// RedisCartStore implements CartStore using Redis, one key per terminal.
type RedisCartStore struct {
	client     *redis.Client
	terminalID string
	ttl        time.Duration
	logger     *logging.LoggerV2
}

// NewRedisClient creates a client from configuration.
func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

// NewRedisCartStore creates a Redis-backed cart store for one terminal.
func NewRedisCartStore(client *redis.Client, terminalID string, ttl time.Duration) *RedisCartStore {
	if ttl == 0 {
		ttl = defaultCartTTL
	}
	return &RedisCartStore{
		client:     client,
		terminalID: terminalID,
		ttl:        ttl,
		logger:     logging.NewLoggerV2("cart-store"),
	}
}

func (s *RedisCartStore) key() string {
	return cartKeyPrefix + s.terminalID
}

// Load returns the persisted cart; a missing key is an empty cart.
func (s *RedisCartStore) Load(ctx context.Context) ([]models.CartLine, error) {
	data, err := s.client.Get(ctx, s.key()).Bytes()
	if err == redis.Nil {
		s.logger.Debug("Cart miss", logging.Fields{"terminal_id": s.terminalID})
		return []models.CartLine{}, nil
	}
	if err != nil {
		s.logger.Error("Cart get error", logging.Fields{
			"terminal_id": s.terminalID,
			"error":       err.Error(),
		})
		return nil, err
	}

	var lines []models.CartLine
	if err := json.Unmarshal(data, &lines); err != nil {
		return nil, fmt.Errorf("decode cart: %w", err)
	}
	return lines, nil
}

// Save overwrites the persisted cart and refreshes its TTL.
func (s *RedisCartStore) Save(ctx context.Context, lines []models.CartLine) error {
	data, err := json.Marshal(lines)
	if err != nil {
		return err
	}

	if err := s.client.Set(ctx, s.key(), data, s.ttl).Err(); err != nil {
		s.logger.Error("Cart set error", logging.Fields{
			"terminal_id": s.terminalID,
			"error":       err.Error(),
		})
		return err
	}

	s.logger.Debug("Cart saved", logging.Fields{
		"terminal_id": s.terminalID,
		"lines":       len(lines),
		"ttl":         s.ttl.String(),
	})
	return nil
}

func (s *RedisCartStore) Clear(ctx context.Context) error {
	return s.client.Del(ctx, s.key()).Err()
}
