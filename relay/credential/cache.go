package credential

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sync"
	"time"

	"github.com/prismstudio/director-core/common"
	"github.com/prismstudio/director-core/common/logger"
)

// EntitlementCache memoizes provider model-entitlement lookups keyed by
// credential+endpoint. Best-effort: entries are safe to recompute if lost.
// Backed by process memory, with Redis used alongside when enabled.
type EntitlementCache struct {
	mu      sync.RWMutex
	entries map[string]entitlementEntry
	ttl     time.Duration
}

type entitlementEntry struct {
	Models    []string  `json:"models"`
	ExpiresAt time.Time `json:"expires_at"`
}

func NewEntitlementCache(ttl time.Duration) *EntitlementCache {
	return &EntitlementCache{
		entries: make(map[string]entitlementEntry),
		ttl:     ttl,
	}
}

// cacheKey never stores raw credentials.
func cacheKey(provider string, apiKey string, endpoint string) string {
	sum := sha256.Sum256([]byte(apiKey + "|" + endpoint))
	return "entitlement:" + provider + ":" + hex.EncodeToString(sum[:])[:16]
}

func (c *EntitlementCache) GetModels(provider string, apiKey string, endpoint string) ([]string, bool) {
	key := cacheKey(provider, apiKey, endpoint)

	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if ok && time.Now().Before(entry.ExpiresAt) {
		return entry.Models, true
	}

	if common.RedisEnabled && common.RDB != nil {
		if raw, err := common.RedisGet(key); err == nil {
			var cached entitlementEntry
			if err := json.Unmarshal([]byte(raw), &cached); err == nil {
				c.mu.Lock()
				c.entries[key] = cached
				c.mu.Unlock()
				return cached.Models, true
			}
		}
	}
	return nil, false
}

func (c *EntitlementCache) SetModels(provider string, apiKey string, endpoint string, models []string) {
	key := cacheKey(provider, apiKey, endpoint)
	entry := entitlementEntry{Models: models, ExpiresAt: time.Now().Add(c.ttl)}

	c.mu.Lock()
	c.entries[key] = entry
	c.mu.Unlock()

	if common.RedisEnabled && common.RDB != nil {
		raw, err := json.Marshal(entry)
		if err == nil {
			if err := common.RedisSet(key, string(raw), c.ttl); err != nil {
				logger.SysError("failed to write entitlement cache to Redis: " + err.Error())
			}
		}
	}
}

// Invalidate drops one credential's entry, e.g. after the provider rejects it.
func (c *EntitlementCache) Invalidate(provider string, apiKey string, endpoint string) {
	key := cacheKey(provider, apiKey, endpoint)

	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()

	if common.RedisEnabled && common.RDB != nil {
		if err := common.RedisDel(key); err != nil {
			logger.SysError("failed to invalidate entitlement cache in Redis: " + err.Error())
		}
	}
}
