// Package redis implements store.Store on Redis.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/ha1tch/fa-toolkit/pkg/store"
	backend "github.com/redis/go-redis/v9"
)

// DefaultPrefix is the key prefix used unless WithPrefix is given.
const DefaultPrefix = "fa:record:"

// Store implements store.Store using Redis. Each record is a JSON string
// under prefix+id; a sorted set under prefix+"index" holds every ID scored
// by itself, which gives List its order and NextID its maximum.
type Store struct {
	client *backend.Client
	prefix string
}

type Option func(*Store)

// WithPrefix sets the key prefix for records.
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		s.prefix = prefix
	}
}

// New creates a new Redis store with options.
func New(address, password string, db int, opts ...Option) *Store {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(rdb, opts...)
}

// NewFromClient creates a new Redis store from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Store {
	s := &Store{
		client: client,
		prefix: DefaultPrefix,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) key(id int) string {
	return s.prefix + strconv.Itoa(id)
}

func (s *Store) indexKey() string {
	return s.prefix + "index"
}

// Create reserves the next ID by adding it to the index with ZADD NX, then
// writes the record with SETNX. Losing either race to another writer
// retries with a fresh ID.
func (s *Store) Create(ctx context.Context, r *store.Record) (int, error) {
	for attempt := 0; attempt < store.MaxCreateAttempts; attempt++ {
		id, err := s.NextID(ctx)
		if err != nil {
			return 0, err
		}
		c := store.WithID(r, id)
		if err := store.Validate(c); err != nil {
			return 0, err
		}
		data, err := json.Marshal(c)
		if err != nil {
			return 0, fmt.Errorf("failed to marshal record: %w", err)
		}

		member := strconv.Itoa(id)
		added, err := s.client.ZAddNX(ctx, s.indexKey(), backend.Z{
			Score:  float64(id),
			Member: member,
		}).Result()
		if err != nil {
			return 0, fmt.Errorf("failed to reserve id: %w", err)
		}
		if added == 0 {
			continue
		}

		ok, err := s.client.SetNX(ctx, s.key(id), data, 0).Result()
		if err != nil {
			_ = s.client.ZRem(ctx, s.indexKey(), member).Err()
			return 0, fmt.Errorf("failed to save to redis: %w", err)
		}
		if ok {
			return id, nil
		}
		// An unindexed value already sat under the key; the index entry
		// now covers it.
	}
	return 0, fmt.Errorf("failed to reserve a record id after %d attempts", store.MaxCreateAttempts)
}

// Save persists the record and indexes its ID.
func (s *Store) Save(ctx context.Context, r *store.Record) error {
	if err := store.Validate(r); err != nil {
		return err
	}
	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}

	pipe := s.client.Pipeline()
	pipe.Set(ctx, s.key(r.ID), data, 0)
	pipe.ZAdd(ctx, s.indexKey(), backend.Z{
		Score:  float64(r.ID),
		Member: strconv.Itoa(r.ID),
	})
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save to redis: %w", err)
	}
	return nil
}

// Load retrieves the record from Redis.
func (s *Store) Load(ctx context.Context, id int) (*store.Record, error) {
	val, err := s.client.Get(ctx, s.key(id)).Result()
	if err != nil {
		if errors.Is(err, backend.Nil) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get from redis: %w", err)
	}
	return decode(id, val)
}

func decode(id int, val string) (*store.Record, error) {
	var r store.Record
	if err := json.Unmarshal([]byte(val), &r); err != nil {
		return nil, fmt.Errorf("failed to unmarshal record %d: %w", id, err)
	}
	return &r, nil
}

// Delete removes the record and its index entry.
func (s *Store) Delete(ctx context.Context, id int) error {
	pipe := s.client.Pipeline()
	del := pipe.Del(ctx, s.key(id))
	pipe.ZRem(ctx, s.indexKey(), strconv.Itoa(id))
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete from redis: %w", err)
	}
	if del.Val() == 0 {
		return store.ErrNotFound
	}
	return nil
}

// List returns all indexed records in ID order.
func (s *Store) List(ctx context.Context) ([]*store.Record, error) {
	members, err := s.client.ZRange(ctx, s.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}
	if len(members) == 0 {
		return []*store.Record{}, nil
	}

	keys := make([]string, len(members))
	ids := make([]int, len(members))
	for i, m := range members {
		id, err := strconv.Atoi(m)
		if err != nil {
			return nil, fmt.Errorf("corrupt index entry %q: %w", m, err)
		}
		ids[i] = id
		keys[i] = s.key(id)
	}

	vals, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get from redis: %w", err)
	}

	records := make([]*store.Record, 0, len(vals))
	for i, v := range vals {
		str, ok := v.(string)
		if !ok {
			// indexed but the value is gone
			continue
		}
		r, err := decode(ids[i], str)
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, nil
}

// NextID returns one more than the highest indexed ID.
func (s *Store) NextID(ctx context.Context) (int, error) {
	top, err := s.client.ZRevRangeWithScores(ctx, s.indexKey(), 0, 0).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to read index: %w", err)
	}
	if len(top) == 0 {
		return 1, nil
	}
	return int(top[0].Score) + 1, nil
}

// Close closes the redis client.
func (s *Store) Close() error {
	return s.client.Close()
}
