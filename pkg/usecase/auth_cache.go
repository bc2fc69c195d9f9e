package usecase

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"

	"github.com/secmon-lab/ifrs-modeler/pkg/domain/model/auth"
)

const (
	authCacheTTL = 5 * time.Minute
)

type cachedToken struct {
	token     *auth.Token
	expiresAt time.Time
}

// authCache remembers verified tokens so each request does not re-verify the
// signature. Keys are hashes so raw tokens are never held in memory.
type authCache struct {
	cache sync.Map
}

func newAuthCache() *authCache {
	return &authCache{}
}

func cacheKey(bearer string) string {
	sum := sha256.Sum256([]byte(bearer))
	return hex.EncodeToString(sum[:])
}

func (c *authCache) get(bearer string, now time.Time) (*auth.Token, bool) {
	key := cacheKey(bearer)
	val, ok := c.cache.Load(key)
	if !ok {
		return nil, false
	}

	cached := val.(*cachedToken)
	if !now.Before(cached.expiresAt) {
		c.cache.Delete(key)
		return nil, false
	}

	return cached.token, true
}

// set caches token until the earlier of its expiry and the cache TTL
func (c *authCache) set(bearer string, token *auth.Token, now time.Time) {
	expiresAt := now.Add(authCacheTTL)
	if !token.ExpiresAt.IsZero() && token.ExpiresAt.Before(expiresAt) {
		expiresAt = token.ExpiresAt
	}
	c.cache.Store(cacheKey(bearer), &cachedToken{
		token:     token,
		expiresAt: expiresAt,
	})
}
