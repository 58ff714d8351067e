package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/proqure/backend/pkg/logger"
	"github.com/proqure/backend/pkg/utils"
)

type Client struct {
	client *redis.Client
}

func NewClient(host string, port int, password string, db int) (*Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", host, port),
		Password: password,
		DB:       db,
	})

	ctx := context.Background()
	if _, err := client.Ping(ctx).Result(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	logger.Info("Redis client initialized", zap.String("addr", fmt.Sprintf("%s:%d", host, port)))

	return &Client{client: client}, nil
}

func (c *Client) Close() error {
	return c.client.Close()
}

func dashboardKey(ownerID string) string {
	return "dashboard:" + utils.HashString(ownerID)
}

// SetDashboard caches an owner's dashboard aggregates for ttl.
func (c *Client) SetDashboard(ctx context.Context, ownerID string, summary interface{}, ttl time.Duration) error {
	data, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("failed to marshal dashboard summary: %w", err)
	}

	if err := c.client.Set(ctx, dashboardKey(ownerID), data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set dashboard cache: %w", err)
	}

	logger.Debug("Dashboard summary cached", zap.Duration("ttl", ttl))
	return nil
}

// GetDashboard loads an owner's cached aggregates into summary. The bool
// result reports whether the key was present.
func (c *Client) GetDashboard(ctx context.Context, ownerID string, summary interface{}) (bool, error) {
	data, err := c.client.Get(ctx, dashboardKey(ownerID)).Bytes()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to get dashboard cache: %w", err)
	}

	if err := json.Unmarshal(data, summary); err != nil {
		return false, fmt.Errorf("failed to unmarshal dashboard summary: %w", err)
	}

	return true, nil
}

// InvalidateDashboard drops an owner's cached aggregates. Called after a
// new report is persisted so the next dashboard read recomputes.
func (c *Client) InvalidateDashboard(ctx context.Context, ownerID string) error {
	if err := c.client.Del(ctx, dashboardKey(ownerID)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate dashboard cache: %w", err)
	}

	logger.Debug("Dashboard cache invalidated")
	return nil
}
