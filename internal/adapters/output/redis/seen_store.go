package redis

import (
	"context"
	"time"

	"github.com/ZHANGV25/Prune/internal/ports/output"

	"github.com/redis/go-redis/v9"
)

// Compile-time check to ensure SeenStore implements the SeenStore port
var _ output.SeenStore = (*SeenStore)(nil)

const (
	seenKey        = "prune:seen"
	commandTimeout = 5 * time.Second
)

// SeenStore struct - Output adapter persisting the seen set as a redis set
// under a single key. Chosen over PostgreSQL when several app instances
// share one seen record.
type SeenStore struct {
	client *redis.Client
}

// New func - Creates the redis-backed seen store
func New(addr, pass string, db int) *SeenStore {
	rdb := redis.NewClient(&redis.Options{
		Addr: addr, Password: pass, DB: db,
	})
	return &SeenStore{client: rdb}
}

// NewWithClient func - Wraps an existing client (tests)
func NewWithClient(client *redis.Client) *SeenStore {
	return &SeenStore{client: client}
}

// Load func - Reads every member of the seen key
func (s *SeenStore) Load() (map[string]struct{}, error) {
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	members, err := s.client.SMembers(ctx, seenKey).Result()
	if err != nil {
		return nil, err
	}

	ids := make(map[string]struct{}, len(members))
	for _, member := range members {
		ids[member] = struct{}{}
	}
	return ids, nil
}

// Save func - Replaces the seen key with the given set in one pipeline so
// concurrent readers never observe a half-written set
func (s *SeenStore) Save(ids map[string]struct{}) error {
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	pipe := s.client.TxPipeline()
	pipe.Del(ctx, seenKey)
	if len(ids) > 0 {
		members := make([]interface{}, 0, len(ids))
		for id := range ids {
			members = append(members, id)
		}
		pipe.SAdd(ctx, seenKey, members...)
	}
	_, err := pipe.Exec(ctx)
	return err
}

// Close func
func (s *SeenStore) Close() error {
	return s.client.Close()
}
