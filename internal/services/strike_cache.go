package services

import (
	"context"
	"log"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/trove/backend/internal/models"
)

const strikeKeyPrefix = "strikes:total:"

// CachedStrikeLedger is a read-through Redis cache in front of the ledger.
// Every append invalidates the subject's cached total before returning, so a
// cached value can never outlive the entries it summarizes. Redis being down
// degrades to direct ledger reads, never to wrong totals.
type CachedStrikeLedger struct {
	inner StrikeLedger
	rdb   *redis.Client
	ttl   time.Duration
}

func NewCachedStrikeLedger(inner StrikeLedger, rdb *redis.Client, ttl time.Duration) *CachedStrikeLedger {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &CachedStrikeLedger{inner: inner, rdb: rdb, ttl: ttl}
}

func (c *CachedStrikeLedger) Append(ctx context.Context, strike *models.Strike) error {
	if err := c.inner.Append(ctx, strike); err != nil {
		return err
	}
	if err := c.rdb.Del(ctx, strikeKeyPrefix+strike.UserID).Err(); err != nil {
		// The entry is committed; a stale cache row only lives until TTL.
		log.Printf("[StrikeCache] invalidate failed user=%s: %v", strike.UserID, err)
	}
	return nil
}

func (c *CachedStrikeLedger) TotalForUser(ctx context.Context, userID string) (int, error) {
	val, err := c.rdb.Get(ctx, strikeKeyPrefix+userID).Result()
	if err == nil {
		if total, convErr := strconv.Atoi(val); convErr == nil {
			return total, nil
		}
	} else if err != redis.Nil {
		log.Printf("[StrikeCache] read failed user=%s: %v", userID, err)
	}

	total, err := c.inner.TotalForUser(ctx, userID)
	if err != nil {
		return 0, err
	}
	c.set(ctx, userID, total)
	return total, nil
}

func (c *CachedStrikeLedger) TotalsForUsers(ctx context.Context, userIDs []string) (map[string]int, error) {
	out := make(map[string]int, len(userIDs))
	if len(userIDs) == 0 {
		return out, nil
	}

	keys := make([]string, len(userIDs))
	for i, id := range userIDs {
		keys[i] = strikeKeyPrefix + id
	}

	var missing []string
	vals, err := c.rdb.MGet(ctx, keys...).Result()
	if err == nil {
		for i, v := range vals {
			s, ok := v.(string)
			if !ok {
				missing = append(missing, userIDs[i])
				continue
			}
			total, convErr := strconv.Atoi(s)
			if convErr != nil {
				missing = append(missing, userIDs[i])
				continue
			}
			out[userIDs[i]] = total
		}
	} else {
		log.Printf("[StrikeCache] bulk read failed: %v", err)
		missing = userIDs
	}

	if len(missing) == 0 {
		return out, nil
	}

	fetched, err := c.inner.TotalsForUsers(ctx, missing)
	if err != nil {
		return nil, err
	}
	for id, total := range fetched {
		out[id] = total
		c.set(ctx, id, total)
	}
	return out, nil
}

// ListForUser reads straight through. Only totals are cached; history is a
// console view, not a hot path.
func (c *CachedStrikeLedger) ListForUser(ctx context.Context, userID string, limit int) ([]models.Strike, error) {
	return c.inner.ListForUser(ctx, userID, limit)
}

func (c *CachedStrikeLedger) set(ctx context.Context, userID string, total int) {
	if err := c.rdb.Set(ctx, strikeKeyPrefix+userID, strconv.Itoa(total), c.ttl).Err(); err != nil {
		log.Printf("[StrikeCache] write failed user=%s: %v", userID, err)
	}
}
