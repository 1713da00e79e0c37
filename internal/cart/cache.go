package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"

	"storefront/internal/models"
)

const cacheBaseTTL = 15 * time.Minute

// CachedStorage layers a Redis read cache over another Storage. Reads are
// served from the cache when possible; writes go to the inner storage and
// invalidate the cached entry. Cache errors are logged and bypassed.
type CachedStorage struct {
	inner  Storage
	client *redis.Client
}

func NewCachedStorage(inner Storage, client *redis.Client) *CachedStorage {
	return &CachedStorage{inner: inner, client: client}
}

func (c *CachedStorage) Load(ctx context.Context, sessionID string) (models.Cart, error) {
	data, err := c.client.Get(ctx, cacheKey(sessionID)).Bytes()
	if err == nil {
		var cart models.Cart
		if err := json.Unmarshal(data, &cart); err == nil {
			return cart, nil
		}
		log.Println("[CART] [WARN] cache entry corrupt, falling through:", sessionID)
	} else if !errors.Is(err, redis.Nil) {
		log.Println("[CART] [WARN] cache get failed:", err)
	}

	cart, err := c.inner.Load(ctx, sessionID)
	if err != nil {
		return models.Cart{}, err
	}

	if data, err := json.Marshal(cart); err == nil {
		jitter := time.Duration(rand.Intn(5)) * time.Minute
		if err := c.client.Set(ctx, cacheKey(sessionID), data, cacheBaseTTL+jitter).Err(); err != nil {
			log.Println("[CART] [WARN] cache set failed:", err)
		}
	}
	return cart, nil
}

func (c *CachedStorage) Save(ctx context.Context, cart models.Cart) error {
	if err := c.inner.Save(ctx, cart); err != nil {
		return err
	}
	c.invalidate(ctx, cart.SessionID)
	return nil
}

func (c *CachedStorage) Delete(ctx context.Context, sessionID string) error {
	if err := c.inner.Delete(ctx, sessionID); err != nil {
		return err
	}
	c.invalidate(ctx, sessionID)
	return nil
}

func (c *CachedStorage) invalidate(ctx context.Context, sessionID string) {
	if err := c.client.Del(ctx, cacheKey(sessionID)).Err(); err != nil {
		log.Println("[CART] [WARN] cache invalidate failed:", err)
	}
}

func cacheKey(sessionID string) string {
	return fmt.Sprintf("cart:%s", sessionID)
}
