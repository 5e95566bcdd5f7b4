package attendance

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-redis/redis/v8"
)

// Sink receives a copy of every logged attendance record.
type Sink interface {
	Append(ctx context.Context, rec AttendanceModel) error
}

// RedisMirror pushes attendance records onto a Redis list as JSON.
type RedisMirror struct {
	Client *redis.Client
	Key    string
}

// NewRedisMirror creates a mirror writing to list key on the server at addr.
func NewRedisMirror(addr, key string) *RedisMirror {
	return &RedisMirror{
		Client: redis.NewClient(&redis.Options{Addr: addr}),
		Key:    key,
	}
}

// Ping checks the connection.
func (m *RedisMirror) Ping(ctx context.Context) error {
	if err := m.Client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("could not connect to redis: %w", err)
	}
	return nil
}

// Append RPUSHes rec onto the list.
func (m *RedisMirror) Append(ctx context.Context, rec AttendanceModel) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode attendance record: %w", err)
	}
	if err := m.Client.RPush(ctx, m.Key, data).Err(); err != nil {
		return fmt.Errorf("failed to mirror attendance to redis: %w", err)
	}
	return nil
}

func (m *RedisMirror) Close() error {
	return m.Client.Close()
}
