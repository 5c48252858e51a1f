// Package redis provides a Redis-backed cart store. Each account's cart is
// held as a single JSON document, matching how the rest of the storage layer
// treats the cart as one snapshot per account.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	goredis "github.com/go-redis/redis/v8"
	"github.com/google/uuid"

	"github.com/glosslab/salon-service/internal/app/domain/cart"
	"github.com/glosslab/salon-service/internal/app/storage"
)

const keyPrefix = "salon:cart:"

// CartStore implements storage.CartStore on top of Redis.
type CartStore struct {
	client *goredis.Client
	ttl    time.Duration
}

var _ storage.CartStore = (*CartStore)(nil)

// NewCartStore connects to Redis at addr. Both "redis://..." URLs and plain
// "host:port" addresses are accepted.
func NewCartStore(addr string, ttl time.Duration) (*CartStore, error) {
	opts, err := goredis.ParseURL(addr)
	if err != nil {
		opts = &goredis.Options{
			Addr:         addr,
			MinIdleConns: 1,
			DialTimeout:  10 * time.Second,
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 5 * time.Second,
		}
	}
	return &CartStore{client: goredis.NewClient(opts), ttl: ttl}, nil
}

// Ping verifies connectivity.
func (s *CartStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close releases the underlying client.
func (s *CartStore) Close() error {
	return s.client.Close()
}

func (s *CartStore) load(ctx context.Context, accountID string) ([]cart.Entry, error) {
	raw, err := s.client.Get(ctx, keyPrefix+accountID).Bytes()
	if err == goredis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load cart %s: %w", accountID, err)
	}

	var entries []cart.Entry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("decode cart %s: %w", accountID, err)
	}
	return entries, nil
}

func (s *CartStore) save(ctx context.Context, accountID string, entries []cart.Entry) error {
	raw, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("encode cart %s: %w", accountID, err)
	}
	if err := s.client.Set(ctx, keyPrefix+accountID, raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("save cart %s: %w", accountID, err)
	}
	return nil
}

func (s *CartStore) AddCartEntry(ctx context.Context, entry cart.Entry) (cart.Entry, error) {
	if entry.AccountID == "" {
		return cart.Entry{}, fmt.Errorf("account id is required")
	}

	entries, err := s.load(ctx, entry.AccountID)
	if err != nil {
		return cart.Entry{}, err
	}

	if entry.ID == "" {
		entry.ID = uuid.NewString()
	} else {
		for _, e := range entries {
			if e.ID == entry.ID {
				return cart.Entry{}, fmt.Errorf("cart entry %s already exists", entry.ID)
			}
		}
	}
	entry.AddedAt = time.Now().UTC()

	if err := s.save(ctx, entry.AccountID, append(entries, entry)); err != nil {
		return cart.Entry{}, err
	}
	return entry, nil
}

func (s *CartStore) ListCartEntries(ctx context.Context, accountID string) ([]cart.Entry, error) {
	entries, err := s.load(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if entries == nil {
		entries = make([]cart.Entry, 0)
	}
	return entries, nil
}

func (s *CartStore) DeleteCartEntry(ctx context.Context, accountID, entryID string) error {
	entries, err := s.load(ctx, accountID)
	if err != nil {
		return err
	}

	kept := make([]cart.Entry, 0, len(entries))
	found := false
	for _, e := range entries {
		if e.ID == entryID {
			found = true
			continue
		}
		kept = append(kept, e)
	}
	if !found {
		return fmt.Errorf("cart entry %s not found", entryID)
	}
	return s.save(ctx, accountID, kept)
}

func (s *CartStore) ClearCart(ctx context.Context, accountID string) error {
	if err := s.client.Del(ctx, keyPrefix+accountID).Err(); err != nil {
		return fmt.Errorf("clear cart %s: %w", accountID, err)
	}
	return nil
}
